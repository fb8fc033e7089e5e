// Package processor applies committed blocks to application state.
//
// A Processor holds a registry of TransactionHandlers, keyed by family name
// and version, and implements proxy.ProxyHandler so that a ledger node can
// drive it through an InmemProxy. Each transaction of a block is verified,
// routed to its handler and applied inside its own store transaction, with a
// context restricted to the handler's namespaces. The outcome of every
// transaction is reported in a ledger.Receipt.
//
// The processor keeps a running state hash, folding in the hash of every
// committed transaction, and a bounded set of recent snapshots.
package processor
