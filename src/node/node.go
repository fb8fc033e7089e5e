package node

import (
	"fmt"
	"sync"

	"github.com/mosaicnetworks/consent/src/ledger"
	"github.com/mosaicnetworks/consent/src/proxy"
	"github.com/mosaicnetworks/consent/src/version"
	"github.com/sirupsen/logrus"
)

// ErrShutdown is returned to submitters once the node is shut down.
var ErrShutdown = fmt.Errorf("node is shut down")

// Node orders transactions into blocks and commits them to the application.
type Node struct {
	state

	conf   *Config
	logger *logrus.Entry

	proxy proxy.AppProxy

	// commitLock serializes block commits with snapshots and restores.
	commitLock sync.Mutex

	// lock protects the pool, the promises, the receipts, blockIndex and
	// stateHash.
	lock       sync.Mutex
	pool       [][]byte
	poolIDs    []string
	promises   map[string]*TxPromise
	receipts   *receiptCache
	blockIndex int
	stateHash  []byte

	commitCh     chan struct{}
	shutdownCh   chan struct{}
	shutdownOnce sync.Once

	controlTimer *ControlTimer
}

// NewNode is a factory method that returns a Node instance
func NewNode(conf *Config, proxy proxy.AppProxy) *Node {
	logger := conf.Logger
	if logger == nil {
		logger = DefaultConfig().Logger
	}

	node := Node{
		conf:         conf,
		logger:       logger.WithField("component", "node"),
		proxy:        proxy,
		promises:     make(map[string]*TxPromise),
		receipts:     newReceiptCache(conf.ReceiptCacheSize),
		stateHash:    []byte{},
		commitCh:     make(chan struct{}, 1),
		shutdownCh:   make(chan struct{}),
		controlTimer: NewHeartbeatTimer(),
	}

	return &node
}

// RunAsync calls Run as a separate thread
func (n *Node) RunAsync() {
	n.logger.Debug("runasync")
	n.goFunc(n.Run)
}

// Run invokes the main loop of the node. It returns after Shutdown.
func (n *Node) Run() {
	n.goFunc(n.controlTimer.Run)

	for {
		select {
		case <-n.controlTimer.tickCh:
			n.logger.Debug("Heartbeat")
			n.commit()
		case <-n.commitCh:
			n.logger.Debug("Pool full")
			n.commit()
		case <-n.shutdownCh:
			return
		}
	}
}

// SubmitTx verifies tx and adds it to the pool. The returned promise is
// resolved when the block containing tx is committed. Submitting a
// transaction that was already committed returns its receipt without
// committing it again.
func (n *Node) SubmitTx(tx *ledger.Transaction) (*TxPromise, error) {
	if n.getState() == Shutdown {
		return nil, ErrShutdown
	}

	if err := tx.Verify(); err != nil {
		return nil, err
	}

	raw, err := tx.Marshal()
	if err != nil {
		return nil, err
	}

	id := tx.ID()

	n.lock.Lock()

	// Shutdown fails the pool under the lock, so a transaction pooled after
	// that would never be resolved.
	if n.getState() == Shutdown {
		n.lock.Unlock()
		return nil, ErrShutdown
	}

	if _, ok := n.promises[id]; ok {
		n.lock.Unlock()
		return nil, fmt.Errorf("transaction %s is already pending", id)
	}

	if r, err := n.receipts.Get(id); err == nil {
		n.lock.Unlock()
		promise := NewTxPromise(id)
		promise.Respond(r, nil)
		return promise, nil
	}

	promise := NewTxPromise(id)
	n.promises[id] = promise
	n.pool = append(n.pool, raw)
	n.poolIDs = append(n.poolIDs, id)
	full := n.conf.MaxBlockSize > 0 && len(n.pool) >= n.conf.MaxBlockSize

	n.lock.Unlock()

	n.logger.WithFields(logrus.Fields{
		"tx":     id,
		"family": tx.Header.FamilyName,
	}).Debug("Added transaction")

	if full {
		select {
		case n.commitCh <- struct{}{}:
		default:
		}
	} else {
		n.controlTimer.Reset(n.conf.HeartbeatTimeout)
	}

	return promise, nil
}

// GetReceipt returns the receipt of a committed transaction, or a pending
// receipt for one that is still in the pool. Unknown ids, and ids that fell
// out of the receipt cache, return a KeyNotFound StoreErr.
func (n *Node) GetReceipt(id string) (ledger.Receipt, error) {
	n.lock.Lock()
	defer n.lock.Unlock()

	if _, ok := n.promises[id]; ok {
		return ledger.NewPendingReceipt(id), nil
	}

	return n.receipts.Get(id)
}

// GetLastBlockIndex returns the index of the last committed block, or -1.
func (n *Node) GetLastBlockIndex() int {
	n.lock.Lock()
	defer n.lock.Unlock()
	return n.blockIndex - 1
}

// GetStats ...
func (n *Node) GetStats() map[string]string {
	n.lock.Lock()
	defer n.lock.Unlock()

	return map[string]string{
		"last_block_index": fmt.Sprintf("%d", n.blockIndex-1),
		"transaction_pool": fmt.Sprintf("%d", len(n.pool)),
		"receipts":         fmt.Sprintf("%d", n.receipts.Len()),
		"state_hash":       fmt.Sprintf("%X", n.stateHash),
		"state":            n.getState().String(),
		"version":          version.Version,
	}
}

// GetSnapshot returns the application state as of the last committed block.
func (n *Node) GetSnapshot() (*Snapshot, error) {
	n.commitLock.Lock()
	defer n.commitLock.Unlock()

	blockIndex := n.GetLastBlockIndex()

	n.lock.Lock()
	stateHash := n.stateHash
	n.lock.Unlock()

	app, err := n.proxy.GetSnapshot(blockIndex)
	if err != nil {
		return nil, err
	}

	return &Snapshot{
		BlockIndex: blockIndex,
		StateHash:  stateHash,
		App:        app,
	}, nil
}

// Restore replaces the application state with a snapshot. The next block is
// cut at the index following the snapshot's. Cached receipts are dropped.
func (n *Node) Restore(snapshot *Snapshot) error {
	n.commitLock.Lock()
	defer n.commitLock.Unlock()

	if n.getState() == Shutdown {
		return ErrShutdown
	}

	if err := n.proxy.Restore(snapshot.App); err != nil {
		return err
	}

	n.lock.Lock()
	n.blockIndex = snapshot.BlockIndex + 1
	n.stateHash = snapshot.StateHash
	n.receipts = newReceiptCache(n.conf.ReceiptCacheSize)
	n.lock.Unlock()

	n.logger.WithFields(logrus.Fields{
		"block":      snapshot.BlockIndex,
		"state_hash": fmt.Sprintf("%X", snapshot.StateHash),
	}).Info("Restored snapshot")

	return nil
}

// Shutdown stops the node and fails every pending promise with ErrShutdown.
func (n *Node) Shutdown() {
	n.shutdownOnce.Do(func() {
		n.logger.Debug("Shutdown")

		n.setState(Shutdown)
		close(n.shutdownCh)
		n.controlTimer.Shutdown()

		n.waitRoutines()

		n.lock.Lock()
		for _, id := range n.poolIDs {
			if p, ok := n.promises[id]; ok {
				p.Respond(ledger.Receipt{}, ErrShutdown)
			}
		}
		n.pool = nil
		n.poolIDs = nil
		n.promises = make(map[string]*TxPromise)
		n.lock.Unlock()
	})
}

// commit cuts a block from the whole pool and hands it to the application.
func (n *Node) commit() {
	n.commitLock.Lock()
	defer n.commitLock.Unlock()

	n.lock.Lock()
	if len(n.pool) == 0 {
		n.lock.Unlock()
		return
	}
	txs, ids := n.pool, n.poolIDs
	n.pool, n.poolIDs = nil, nil
	blockIndex := n.blockIndex
	n.lock.Unlock()

	block := ledger.NewBlock(blockIndex, txs)

	resp, err := n.proxy.CommitBlock(*block)
	if err == nil && len(resp.Receipts) != len(ids) {
		err = fmt.Errorf("application returned %d receipts for %d transactions", len(resp.Receipts), len(ids))
	}

	n.lock.Lock()
	defer n.lock.Unlock()

	if err != nil {
		n.logger.WithError(err).WithField("block", blockIndex).Error("Committing block")
		for _, id := range ids {
			if p, ok := n.promises[id]; ok {
				p.Respond(ledger.Receipt{}, err)
				delete(n.promises, id)
			}
		}
		return
	}

	n.blockIndex++
	n.stateHash = resp.StateHash

	for i, r := range resp.Receipts {
		if r.TransactionID == "" {
			r.TransactionID = ids[i]
		}
		n.receipts.Set(r)
		if p, ok := n.promises[ids[i]]; ok {
			p.Respond(r, nil)
			delete(n.promises, ids[i])
		}
	}

	n.logger.WithFields(logrus.Fields{
		"block":      blockIndex,
		"txs":        len(txs),
		"state_hash": fmt.Sprintf("%X", resp.StateHash),
	}).Debug("Committed block")

	if len(n.pool) > 0 {
		n.controlTimer.Reset(n.conf.HeartbeatTimeout)
	}
}
