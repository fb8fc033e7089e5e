package node

import (
	"github.com/mosaicnetworks/consent/src/ledger"
)

// TxResponse ...
type TxResponse struct {
	Receipt ledger.Receipt
	Err     error
}

// TxPromise is resolved once the block containing its transaction has been
// committed, or has failed to commit.
type TxPromise struct {
	ID     string
	RespCh chan TxResponse
}

// NewTxPromise ...
func NewTxPromise(id string) *TxPromise {
	return &TxPromise{
		ID: id,
		//buffered so that nobody blocks if the submitter stopped listening
		RespCh: make(chan TxResponse, 1),
	}
}

// Respond ...
func (p *TxPromise) Respond(receipt ledger.Receipt, err error) {
	p.RespCh <- TxResponse{Receipt: receipt, Err: err}
}
