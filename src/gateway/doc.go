// Package gateway is the HTTP front of the consent ledger.
//
// A Session holds a JSON-RPC connection to a ledger node and the private key
// used to sign transactions. Submit encodes an action, wraps it in a signed
// transaction, and waits for the receipt until the request timeout expires.
//
// Service exposes a Session over HTTP with a chi router:
//
//	POST /clients                                   create a client
//	GET  /clients/{public_key}                      read a client
//	POST /consent/grant/{kind}                      grant a permission
//	POST /consent/revoke/{kind}                     revoke a permission
//	GET  /consent/{src_pkey}/{dest_pkey}            read the four permissions
//	GET  /health                                    ledger stats
//
// where kind is one of read, write, share or share_shared. A committed
// transaction answers 200, an invalid one 400, a request that ran out of time
// 504, and a ledger that could not be reached 502.
package gateway
