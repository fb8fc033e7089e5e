// Package engine assembles a consent ledger node from its configuration.
//
// An Engine owns the state store, the processor with the consent transaction
// handler registered, the in-memory proxy, the ordering node and the JSON-RPC
// server. Init builds them in that order; Run starts the node and serves RPC
// until Shutdown.
package engine
