package inmem

import (
	"fmt"

	"github.com/mosaicnetworks/consent/src/ledger"
	"github.com/mosaicnetworks/consent/src/proxy"
	"github.com/sirupsen/logrus"
)

// InmemProxy connects a node to a ProxyHandler living in the same process.
type InmemProxy struct {
	handler proxy.ProxyHandler
	logger  *logrus.Entry
}

// NewInmemProxy wraps handler. A nil logger gets a default one.
func NewInmemProxy(handler proxy.ProxyHandler,
	logger *logrus.Entry) *InmemProxy {

	if logger == nil {
		log := logrus.New()
		log.Level = logrus.DebugLevel
		logger = logrus.NewEntry(log)
	}

	return &InmemProxy{
		handler: handler,
		logger:  logger,
	}
}

// CommitBlock implements AppProxy. The handler must return exactly one receipt
// per transaction, in block order.
func (p *InmemProxy) CommitBlock(block ledger.Block) (proxy.CommitResponse, error) {
	resp, err := p.handler.CommitHandler(block)

	p.logger.WithFields(logrus.Fields{
		"block":    block.Index(),
		"txs":      len(block.Transactions()),
		"receipts": len(resp.Receipts),
		"err":      err,
	}).Debug("CommitBlock")

	if err != nil {
		return resp, err
	}

	if len(resp.Receipts) != len(block.Transactions()) {
		return proxy.CommitResponse{}, fmt.Errorf("block %d: %d receipts for %d transactions",
			block.Index(), len(resp.Receipts), len(block.Transactions()))
	}

	return resp, nil
}

// GetSnapshot implements AppProxy
func (p *InmemProxy) GetSnapshot(blockIndex int) ([]byte, error) {
	snapshot, err := p.handler.SnapshotHandler(blockIndex)

	p.logger.WithFields(logrus.Fields{
		"block": blockIndex,
		"size":  len(snapshot),
		"err":   err,
	}).Debug("GetSnapshot")

	return snapshot, err
}

// Restore implements AppProxy
func (p *InmemProxy) Restore(snapshot []byte) error {
	stateHash, err := p.handler.RestoreHandler(snapshot)

	p.logger.WithFields(logrus.Fields{
		"state_hash": fmt.Sprintf("%X", stateHash),
		"err":        err,
	}).Debug("Restore")

	return err
}
