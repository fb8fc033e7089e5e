package proxy

import (
	"github.com/mosaicnetworks/consent/src/ledger"
)

// ProxyHandler encapsulates callbacks to be called by the InmemProxy. This is
// the contact surface between the ledger node and the application. The
// application implements these handlers to process incoming blocks.
type ProxyHandler interface {
	// CommitHandler is called when the node commits a block to the application
	CommitHandler(block ledger.Block) (response CommitResponse, err error)

	// SnapshotHandler is called by the node to retrieve a snapshot
	// corresponding to a particular block
	SnapshotHandler(blockIndex int) (snapshot []byte, err error)

	// RestoreHandler is called by the node to restore the application to a
	// specific state
	RestoreHandler(snapshot []byte) (stateHash []byte, err error)
}
