package store

import (
	"bytes"
	"sort"

	"github.com/ugorji/go/codec"
)

// snapshot is the encoded form of a whole state. Entries are sorted by
// address so that equal states produce equal bytes.
type snapshot struct {
	Entries []snapshotEntry
}

type snapshotEntry struct {
	Address string
	Data    []byte
}

func newSnapshot(state map[string][]byte) *snapshot {
	s := &snapshot{Entries: make([]snapshotEntry, 0, len(state))}
	for k, v := range state {
		s.Entries = append(s.Entries, snapshotEntry{Address: k, Data: v})
	}
	sort.Slice(s.Entries, func(i, j int) bool {
		return s.Entries[i].Address < s.Entries[j].Address
	})
	return s
}

// Marshal - json encoding of the snapshot
func (s *snapshot) Marshal() ([]byte, error) {
	b := new(bytes.Buffer)
	jh := new(codec.JsonHandle)
	jh.Canonical = true
	enc := codec.NewEncoder(b, jh)

	if err := enc.Encode(s); err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}

// Unmarshal - json decoding of the snapshot
func (s *snapshot) Unmarshal(data []byte) error {
	b := bytes.NewBuffer(data)
	jh := new(codec.JsonHandle)
	jh.Canonical = true
	dec := codec.NewDecoder(b, jh)

	return dec.Decode(s)
}

func (s *snapshot) state() map[string][]byte {
	state := make(map[string][]byte, len(s.Entries))
	for _, e := range s.Entries {
		state[e.Address] = e.Data
	}
	return state
}
