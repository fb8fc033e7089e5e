package store

import (
	"os"
	"sync"

	"github.com/dgraph-io/badger"
	cm "github.com/mosaicnetworks/consent/src/common"
)

// BadgerStore is a Store backed by a badger database. Each Update runs in one
// badger read-write transaction, so the writes of a ledger transaction become
// durable together or not at all.
type BadgerStore struct {
	sync.Mutex

	// dropLock keeps readers out while Restore drops the database.
	dropLock sync.RWMutex

	db   *badger.DB
	path string
}

// NewBadgerStore opens, or creates, the database in path
func NewBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	opts.SyncWrites = false

	return newBadgerStore(path, opts)
}

func newBadgerStore(path string, opts badger.Options) (*BadgerStore, error) {
	if err := os.MkdirAll(path, 0700); err != nil {
		return nil, err
	}

	handle, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	store := &BadgerStore{
		db:   handle,
		path: path,
	}

	return store, nil
}

type badgerContext struct {
	txn *badger.Txn
}

func (c *badgerContext) GetState(address string) ([]byte, error) {
	item, err := c.txn.Get([]byte(address))
	if err != nil {
		return nil, mapError(err, "State", address)
	}
	return item.ValueCopy(nil)
}

func (c *badgerContext) SetState(address string, data []byte) error {
	return c.txn.Set([]byte(address), data)
}

// Update implements the Store interface.
func (s *BadgerStore) Update(fn func(Context) error) error {
	s.Lock()
	defer s.Unlock()

	return s.db.Update(func(txn *badger.Txn) error {
		return fn(&badgerContext{txn: txn})
	})
}

// View implements the Store interface. Writes inside View are rejected by
// badger.
func (s *BadgerStore) View(fn func(Context) error) error {
	s.dropLock.RLock()
	defer s.dropLock.RUnlock()

	return s.db.View(func(txn *badger.Txn) error {
		return fn(&badgerContext{txn: txn})
	})
}

// Snapshot implements the Store interface.
func (s *BadgerStore) Snapshot() ([]byte, error) {
	s.dropLock.RLock()
	defer s.dropLock.RUnlock()

	state := make(map[string][]byte)

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			v, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			state[string(item.KeyCopy(nil))] = v
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return newSnapshot(state).Marshal()
}

// Restore implements the Store interface. The old state is dropped first; if
// writing the snapshot then fails, the store is left partially restored.
func (s *BadgerStore) Restore(data []byte) error {
	snap := new(snapshot)
	if err := snap.Unmarshal(data); err != nil {
		return err
	}

	s.Lock()
	defer s.Unlock()

	s.dropLock.Lock()
	defer s.dropLock.Unlock()

	if err := s.db.DropAll(); err != nil {
		return err
	}

	// a write batch splits the load over as many transactions as badger
	// needs, so a state of any size can be restored
	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	for _, e := range snap.Entries {
		if err := wb.Set([]byte(e.Address), e.Data); err != nil {
			return err
		}
	}

	return wb.Flush()
}

// Close implements the Store interface.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// StorePath returns the directory of the database.
func (s *BadgerStore) StorePath() string {
	return s.path
}

func isDBKeyNotFound(err error) bool {
	return err == badger.ErrKeyNotFound
}

func mapError(err error, name, key string) error {
	if err != nil {
		if isDBKeyNotFound(err) {
			return cm.NewStoreErr(name, cm.KeyNotFound, key)
		}
	}
	return err
}
