package node

import (
	"bytes"

	"github.com/ugorji/go/codec"
)

// Snapshot is an application snapshot together with the block it was taken
// after and the state hash at that block.
type Snapshot struct {
	BlockIndex int
	StateHash  []byte
	App        []byte
}

// Marshal - json encoding of the snapshot
func (s *Snapshot) Marshal() ([]byte, error) {
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
func (s *Snapshot) Unmarshal(data []byte) error {
	b := bytes.NewBuffer(data)
	jh := new(codec.JsonHandle)
	jh.Canonical = true
	dec := codec.NewDecoder(b, jh)

	return dec.Decode(s)
}
