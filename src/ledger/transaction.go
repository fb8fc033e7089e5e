package ledger

import (
	"bytes"
	"crypto/ecdsa"
	"fmt"

	"github.com/mosaicnetworks/consent/src/crypto"
	"github.com/mosaicnetworks/consent/src/crypto/keys"
	"github.com/oklog/ulid/v2"
	"github.com/ugorji/go/codec"
)

// TransactionHeader ...
type TransactionHeader struct {
	FamilyName      string
	FamilyVersion   string
	SignerPublicKey string
	Nonce           string
	PayloadSHA512   string
}

// Marshal - canonical json encoding of the header. This is what gets signed.
func (h *TransactionHeader) Marshal() ([]byte, error) {
	b := new(bytes.Buffer)
	jh := new(codec.JsonHandle)
	jh.Canonical = true
	enc := codec.NewEncoder(b, jh)

	if err := enc.Encode(h); err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}

// Hash ...
func (h *TransactionHeader) Hash() ([]byte, error) {
	hashBytes, err := h.Marshal()
	if err != nil {
		return nil, err
	}
	return crypto.SHA256(hashBytes), nil
}

// Transaction ...
type Transaction struct {
	Header          TransactionHeader
	HeaderSignature string
	Payload         []byte
}

// NewTransaction builds and signs a transaction for the given family.
func NewTransaction(family, version string, payload []byte, key *ecdsa.PrivateKey) (*Transaction, error) {
	tx := &Transaction{
		Header: TransactionHeader{
			FamilyName:      family,
			FamilyVersion:   version,
			SignerPublicKey: keys.PublicKeyHex(&key.PublicKey),
			Nonce:           ulid.Make().String(),
			PayloadSHA512:   crypto.SHA512Hex(payload),
		},
		Payload: payload,
	}

	if err := tx.Sign(key); err != nil {
		return nil, err
	}

	return tx, nil
}

// Sign ...
func (t *Transaction) Sign(key *ecdsa.PrivateKey) error {
	hash, err := t.Header.Hash()
	if err != nil {
		return err
	}

	r, s, err := keys.Sign(key, hash)
	if err != nil {
		return err
	}

	t.HeaderSignature = keys.EncodeSignature(r, s)

	return nil
}

// Verify checks that the payload matches the header and that the header was
// signed by SignerPublicKey.
func (t *Transaction) Verify() error {
	if crypto.SHA512Hex(t.Payload) != t.Header.PayloadSHA512 {
		return fmt.Errorf("payload does not match header hash")
	}

	pub, err := keys.ParsePublicKeyHex(t.Header.SignerPublicKey)
	if err != nil {
		return fmt.Errorf("signer public key: %v", err)
	}

	hash, err := t.Header.Hash()
	if err != nil {
		return err
	}

	r, s, err := keys.DecodeSignature(t.HeaderSignature)
	if err != nil {
		return err
	}

	if !keys.Verify(pub, hash, r, s) {
		return fmt.Errorf("invalid header signature")
	}

	return nil
}

// ID ...
func (t *Transaction) ID() string {
	return t.HeaderSignature
}

// Marshal - json encoding of the transaction
func (t *Transaction) Marshal() ([]byte, error) {
	b := new(bytes.Buffer)
	jh := new(codec.JsonHandle)
	jh.Canonical = true
	enc := codec.NewEncoder(b, jh)

	if err := enc.Encode(t); err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}

// Unmarshal - json decoding of the transaction
func (t *Transaction) Unmarshal(data []byte) error {
	b := bytes.NewBuffer(data)
	jh := new(codec.JsonHandle)
	jh.Canonical = true
	dec := codec.NewDecoder(b, jh)

	return dec.Decode(t)
}
