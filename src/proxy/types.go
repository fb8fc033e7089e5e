package proxy

import "github.com/mosaicnetworks/consent/src/ledger"

// CommitResponse is returned by the application for every committed block.
// Receipts holds one entry per block transaction, in block order.
type CommitResponse struct {
	StateHash []byte
	Receipts  []ledger.Receipt
}
