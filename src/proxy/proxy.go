package proxy

import (
	"github.com/mosaicnetworks/consent/src/ledger"
)

// AppProxy is what the ledger node uses to reach the application.
type AppProxy interface {
	CommitBlock(block ledger.Block) (CommitResponse, error)
	GetSnapshot(blockIndex int) ([]byte, error)
	Restore(snapshot []byte) error
}
