package keys

import (
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcec"
)

// CompressedPublicKeyLen is the byte length of a compressed secp256k1 public
// key.
const CompressedPublicKeyLen = btcec.PubKeyBytesLenCompressed

// FromPublicKey outputs the point in compressed form.
func FromPublicKey(pub *ecdsa.PublicKey) []byte {
	if pub == nil || pub.X == nil || pub.Y == nil {
		return nil
	}
	return (*btcec.PublicKey)(pub).SerializeCompressed()
}

// ToPublicKey parses a compressed public key.
func ToPublicKey(pub []byte) (*ecdsa.PublicKey, error) {
	if len(pub) != CompressedPublicKeyLen {
		return nil, fmt.Errorf("public key must be %d bytes, got %d", CompressedPublicKeyLen, len(pub))
	}

	key, err := btcec.ParsePubKey(pub, Curve())
	if err != nil {
		return nil, err
	}

	return key.ToECDSA(), nil
}

// PublicKeyHex returns the lowercase hexadecimal representation of the
// compressed form of the public key. This is the principal identifier.
func PublicKeyHex(pub *ecdsa.PublicKey) string {
	return hex.EncodeToString(FromPublicKey(pub))
}

// ParsePublicKeyHex is the inverse of PublicKeyHex. Uppercase digits are
// rejected so that every principal has exactly one spelling.
func ParsePublicKeyHex(s string) (*ecdsa.PublicKey, error) {
	if len(s) != 2*CompressedPublicKeyLen {
		return nil, fmt.Errorf("public key hex must be %d characters, got %d", 2*CompressedPublicKeyLen, len(s))
	}

	for _, c := range s {
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f') {
			return nil, fmt.Errorf("public key hex contains invalid character %q", c)
		}
	}

	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}

	return ToPublicKey(raw)
}
