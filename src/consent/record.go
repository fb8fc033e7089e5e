package consent

import (
	"bytes"

	"github.com/mosaicnetworks/consent/src/address"
	"github.com/ugorji/go/codec"
)

// PermissionRecord is what is stored at a permission address.
type PermissionRecord struct {
	Granter string
	Grantee string
	Kind    address.Kind
	Granted bool
}

// ClientRecord is what is stored at a client address.
type ClientRecord struct {
	PublicKey string
	Name      string
}

func jsonHandle() *codec.JsonHandle {
	jh := new(codec.JsonHandle)
	jh.Canonical = true
	return jh
}

// Marshal - json encoding of PermissionRecord
func (r *PermissionRecord) Marshal() ([]byte, error) {
	b := new(bytes.Buffer)
	enc := codec.NewEncoder(b, jsonHandle())

	if err := enc.Encode(r); err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}

// Unmarshal - json decoding of PermissionRecord
func (r *PermissionRecord) Unmarshal(data []byte) error {
	dec := codec.NewDecoderBytes(data, jsonHandle())

	return dec.Decode(r)
}

// Marshal - json encoding of ClientRecord
func (c *ClientRecord) Marshal() ([]byte, error) {
	b := new(bytes.Buffer)
	enc := codec.NewEncoder(b, jsonHandle())

	if err := enc.Encode(c); err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}

// Unmarshal - json decoding of ClientRecord
func (c *ClientRecord) Unmarshal(data []byte) error {
	dec := codec.NewDecoderBytes(data, jsonHandle())

	return dec.Decode(c)
}
