// Package ledger defines what travels between the gateway, the ordering node
// and the processor: signed transactions, the blocks that order them, and
// the receipts that report what happened to each one.
//
// A Transaction wraps an opaque family payload in a header naming the family
// and version it is addressed to, the signer's compressed public key, a nonce
// and the SHA512 of the payload. The header is signed, and the signature
// doubles as the transaction id.
package ledger
