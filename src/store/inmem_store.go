package store

import (
	"sync"

	cm "github.com/mosaicnetworks/consent/src/common"
)

// InmemStore is a Store that keeps everything in a map. It is used in tests
// and when the node runs without persistence.
type InmemStore struct {
	sync.RWMutex

	state  map[string][]byte
	closed bool
}

// NewInmemStore ...
func NewInmemStore() *InmemStore {
	return &InmemStore{
		state: make(map[string][]byte),
	}
}

// inmemContext stages writes on top of the committed state.
type inmemContext struct {
	base     map[string][]byte
	writes   map[string][]byte
	readOnly bool
}

func (c *inmemContext) GetState(address string) ([]byte, error) {
	if v, ok := c.writes[address]; ok {
		return copyBytes(v), nil
	}
	if v, ok := c.base[address]; ok {
		return copyBytes(v), nil
	}
	return nil, cm.NewStoreErr("State", cm.KeyNotFound, address)
}

func (c *inmemContext) SetState(address string, data []byte) error {
	if c.readOnly {
		return errReadOnly(address)
	}
	c.writes[address] = copyBytes(data)
	return nil
}

// Update implements the Store interface.
func (s *InmemStore) Update(fn func(Context) error) error {
	s.Lock()
	defer s.Unlock()

	if s.closed {
		return cm.NewStoreErr("InmemStore", cm.Closed, "")
	}

	ctx := &inmemContext{
		base:   s.state,
		writes: make(map[string][]byte),
	}

	if err := fn(ctx); err != nil {
		return err
	}

	for k, v := range ctx.writes {
		s.state[k] = v
	}

	return nil
}

// View implements the Store interface.
func (s *InmemStore) View(fn func(Context) error) error {
	s.RLock()
	defer s.RUnlock()

	if s.closed {
		return cm.NewStoreErr("InmemStore", cm.Closed, "")
	}

	return fn(&inmemContext{base: s.state, readOnly: true})
}

// Snapshot implements the Store interface.
func (s *InmemStore) Snapshot() ([]byte, error) {
	s.RLock()
	defer s.RUnlock()

	return newSnapshot(s.state).Marshal()
}

// Restore implements the Store interface.
func (s *InmemStore) Restore(data []byte) error {
	snap := new(snapshot)
	if err := snap.Unmarshal(data); err != nil {
		return err
	}

	s.Lock()
	defer s.Unlock()

	s.state = snap.state()

	return nil
}

// Close implements the Store interface.
func (s *InmemStore) Close() error {
	s.Lock()
	defer s.Unlock()

	s.closed = true

	return nil
}

// Len returns the number of addresses holding data.
func (s *InmemStore) Len() int {
	s.RLock()
	defer s.RUnlock()

	return len(s.state)
}

func copyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	c := make([]byte, len(b))
	copy(c, b)
	return c
}
