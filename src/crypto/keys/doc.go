// Package keys implements the public key cryptography used by the consent
// ledger.
//
// Two things are keyed: ledger transactions, which are signed by the gateway
// that builds them, and principals, the clients whose records permissions
// refer to. Both use ECDSA on the secp256k1 curve.
//
// A principal is identified by the lowercase hex encoding of its compressed
// public key (33 bytes, 66 hex characters, leading 02 or 03). PublicKeyHex
// produces that form and ParsePublicKeyHex is the only accepted way back,
// rejecting anything that is not a point on the curve.
package keys
