package processor

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/mosaicnetworks/consent/src/crypto"
	"github.com/mosaicnetworks/consent/src/ledger"
	"github.com/mosaicnetworks/consent/src/proxy"
	"github.com/mosaicnetworks/consent/src/store"
	"github.com/sirupsen/logrus"
	"github.com/ugorji/go/codec"
)

// Processor implements proxy.ProxyHandler on top of a Store.
type Processor struct {
	sync.Mutex

	store     store.Store
	handlers  map[string]TransactionHandler
	stateHash []byte
	lastBlock int
	logger    *logrus.Entry
}

// NewProcessor ...
func NewProcessor(s store.Store, logger *logrus.Entry) *Processor {
	if logger == nil {
		log := logrus.New()
		log.Level = logrus.DebugLevel
		logger = logrus.NewEntry(log)
	}

	return &Processor{
		store:     s,
		handlers:  make(map[string]TransactionHandler),
		stateHash: []byte{},
		lastBlock: -1,
		logger:    logger,
	}
}

// AddHandler registers h for every version of its family.
func (p *Processor) AddHandler(h TransactionHandler) {
	p.Lock()
	defer p.Unlock()

	for _, v := range h.FamilyVersions() {
		p.handlers[handlerKey(h.FamilyName(), v)] = h

		p.logger.WithFields(logrus.Fields{
			"family":     h.FamilyName(),
			"version":    v,
			"namespaces": h.Namespaces(),
		}).Info("Registered handler")
	}
}

/*******************************************************************************
* Implement ProxyHandler                                                       *
*******************************************************************************/

// CommitHandler applies the block's transactions in order and returns one
// receipt per transaction. The whole block is written in a single store
// transaction: an error is only returned when the store itself fails, in
// which case nothing from the block is persisted.
func (p *Processor) CommitHandler(block ledger.Block) (proxy.CommitResponse, error) {
	p.Lock()
	defer p.Unlock()

	p.logger.WithFields(logrus.Fields{
		"block": block.Index(),
		"txs":   len(block.Transactions()),
	}).Debug("CommitBlock")

	hash := p.stateHash
	receipts := make([]ledger.Receipt, 0, len(block.Transactions()))

	err := p.store.Update(func(ctx store.Context) error {
		for _, raw := range block.Transactions() {
			receipt, err := p.applyTransaction(ctx, block.Index(), raw)
			if err != nil {
				return err
			}

			if receipt.IsCommitted() {
				hash = crypto.SimpleHashFromTwoHashes(hash, crypto.SHA256(raw))
			}

			receipts = append(receipts, receipt)
		}
		return nil
	})
	if err != nil {
		p.logger.WithError(err).WithField("block", block.Index()).Error("Store update")
		return proxy.CommitResponse{}, err
	}

	p.stateHash = hash
	p.lastBlock = block.Index()

	return proxy.CommitResponse{
		StateHash: hash,
		Receipts:  receipts,
	}, nil
}

// SnapshotHandler encodes the state as it stands after the given block. Only
// the last committed block can be snapshotted, -1 before the first one.
func (p *Processor) SnapshotHandler(blockIndex int) ([]byte, error) {
	p.Lock()
	defer p.Unlock()

	p.logger.WithField("block", blockIndex).Debug("GetSnapshot")

	if blockIndex != p.lastBlock {
		return nil, fmt.Errorf("Snapshot %d not found: last block is %d", blockIndex, p.lastBlock)
	}

	state, err := p.store.Snapshot()
	if err != nil {
		return nil, err
	}

	s := processorSnapshot{
		BlockIndex: p.lastBlock,
		StateHash:  p.stateHash,
		State:      state,
	}

	return s.Marshal()
}

// RestoreHandler replaces the whole state with a snapshot returned by
// SnapshotHandler.
func (p *Processor) RestoreHandler(snapshot []byte) ([]byte, error) {
	p.Lock()
	defer p.Unlock()

	var s processorSnapshot
	if err := s.Unmarshal(snapshot); err != nil {
		return nil, err
	}

	if err := p.store.Restore(s.State); err != nil {
		return nil, err
	}

	p.stateHash = s.StateHash
	p.lastBlock = s.BlockIndex

	p.logger.WithFields(logrus.Fields{
		"block":      p.lastBlock,
		"state_hash": fmt.Sprintf("%X", p.stateHash),
	}).Debug("Restored")

	return p.stateHash, nil
}

/*******************************************************************************
* Queries                                                                      *
*******************************************************************************/

// Query runs fn against a read-only view of the committed state.
func (p *Processor) Query(fn func(store.Context) error) error {
	return p.store.View(fn)
}

// GetState returns the raw bytes stored at an address.
func (p *Processor) GetState(address string) ([]byte, error) {
	var data []byte
	err := p.store.View(func(ctx store.Context) error {
		var err error
		data, err = ctx.GetState(address)
		return err
	})
	return data, err
}

// StateHash ...
func (p *Processor) StateHash() []byte {
	p.Lock()
	defer p.Unlock()
	return p.stateHash
}

/*******************************************************************************
* Private                                                                      *
*******************************************************************************/

// applyTransaction runs one transaction against the block's store context.
// A rejected transaction leaves ctx untouched.
func (p *Processor) applyTransaction(ctx store.Context, blockIndex int, raw []byte) (ledger.Receipt, error) {
	var tx ledger.Transaction
	if err := tx.Unmarshal(raw); err != nil {
		return ledger.NewInvalidReceipt("", blockIndex, fmt.Sprintf("malformed transaction: %v", err)), nil
	}

	logger := p.logger.WithField("tx", tx.ID())

	if err := tx.Verify(); err != nil {
		logger.WithError(err).Debug("Rejected")
		return ledger.NewInvalidReceipt(tx.ID(), blockIndex, err.Error()), nil
	}

	h, ok := p.handlers[handlerKey(tx.Header.FamilyName, tx.Header.FamilyVersion)]
	if !ok {
		msg := fmt.Sprintf("no handler for %s", handlerKey(tx.Header.FamilyName, tx.Header.FamilyVersion))
		logger.Debug(msg)
		return ledger.NewInvalidReceipt(tx.ID(), blockIndex, msg), nil
	}

	overlay := store.NewOverlay(ctx)

	if err := h.Apply(&tx, store.NewNamespacedContext(overlay, h.Namespaces())); err != nil {
		logger.WithError(err).Debug("Rejected")
		return ledger.NewInvalidReceipt(tx.ID(), blockIndex, err.Error()), nil
	}

	if err := overlay.Commit(); err != nil {
		return ledger.Receipt{}, err
	}

	logger.Debug("Committed")

	return ledger.NewCommittedReceipt(tx.ID(), blockIndex), nil
}

type processorSnapshot struct {
	BlockIndex int
	StateHash  []byte
	State      []byte
}

func (s *processorSnapshot) Marshal() ([]byte, error) {
	b := new(bytes.Buffer)
	jh := new(codec.JsonHandle)
	jh.Canonical = true
	enc := codec.NewEncoder(b, jh)

	if err := enc.Encode(s); err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}

func (s *processorSnapshot) Unmarshal(data []byte) error {
	b := bytes.NewBuffer(data)
	jh := new(codec.JsonHandle)
	jh.Canonical = true
	dec := codec.NewDecoder(b, jh)

	return dec.Decode(s)
}
