package ledger

import (
	"bytes"

	"github.com/mosaicnetworks/consent/src/crypto"
	"github.com/ugorji/go/codec"
)

// BlockBody ...
type BlockBody struct {
	Index        int
	Transactions [][]byte
}

// Block is an ordered batch of marshalled transactions. Every processor
// applies a block's transactions in order.
type Block struct {
	Body      BlockBody
	StateHash []byte
}

// NewBlock ...
func NewBlock(blockIndex int, txs [][]byte) *Block {
	return &Block{
		Body: BlockBody{
			Index:        blockIndex,
			Transactions: txs,
		},
	}
}

// Index ...
func (b *Block) Index() int {
	return b.Body.Index
}

// Transactions ...
func (b *Block) Transactions() [][]byte {
	return b.Body.Transactions
}

// Marshal - json encoding of the block
func (b *Block) Marshal() ([]byte, error) {
	bf := new(bytes.Buffer)
	jh := new(codec.JsonHandle)
	jh.Canonical = true
	enc := codec.NewEncoder(bf, jh)

	if err := enc.Encode(b); err != nil {
		return nil, err
	}

	return bf.Bytes(), nil
}

// Unmarshal - json decoding of the block
func (b *Block) Unmarshal(data []byte) error {
	bf := bytes.NewBuffer(data)
	jh := new(codec.JsonHandle)
	jh.Canonical = true
	dec := codec.NewDecoder(bf, jh)

	return dec.Decode(b)
}

// Hash returns the SHA256 of the body.
func (b *Block) Hash() ([]byte, error) {
	bf := new(bytes.Buffer)
	jh := new(codec.JsonHandle)
	jh.Canonical = true

	if err := codec.NewEncoder(bf, jh).Encode(&b.Body); err != nil {
		return nil, err
	}

	return crypto.SHA256(bf.Bytes()), nil
}
