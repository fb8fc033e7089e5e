// Package node implements a single-node ordering service for ledger
// transactions.
//
// Transactions reach the node either through the RPC server (Ledger.SubmitTx)
// or through the AppProxy's submit channel. The node verifies each
// transaction, adds it to a pool, and cuts a block when the heartbeat timer
// fires or when the pool reaches MaxBlockSize. Blocks are committed to the
// application through the AppProxy, one at a time and in order.
//
// # Receipts
//
// Every submitted transaction gets a TxPromise that is resolved with the
// receipt returned by the application for that transaction. Recent receipts
// are also kept in a bounded cache so that clients which gave up waiting can
// come back for them with Ledger.GetReceipt.
//
// # State queries
//
// The RPC server also answers Ledger.GetState from a StateReader, normally the
// processor sitting behind the AppProxy, so that clients can read committed
// state without going through consensus.
package node
