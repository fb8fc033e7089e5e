package keys

import (
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/btcsuite/btcd/btcec"
)

// PrivateKeyLength is the size of a serialized private key.
const PrivateKeyLength = btcec.PrivKeyBytesLen

// GenerateECDSAKey creates a new secp256k1 ecdsa.PrivateKey.
func GenerateECDSAKey() (*ecdsa.PrivateKey, error) {
	key, err := btcec.NewPrivateKey(Curve())
	if err != nil {
		return nil, err
	}
	return key.ToECDSA(), nil
}

// DumpPrivateKey returns the 32-byte big-endian scalar of priv.
func DumpPrivateKey(priv *ecdsa.PrivateKey) []byte {
	if priv == nil {
		return nil
	}
	return (*btcec.PrivateKey)(priv).Serialize()
}

// ParsePrivateKey rebuilds a key from its scalar. Zero and values not below
// the curve order are rejected.
func ParsePrivateKey(d []byte) (*ecdsa.PrivateKey, error) {
	if len(d) != PrivateKeyLength {
		return nil, fmt.Errorf("invalid length %d, need %d bytes", len(d), PrivateKeyLength)
	}

	scalar := new(big.Int).SetBytes(d)
	if scalar.Sign() == 0 || scalar.Cmp(secp256k1N) >= 0 {
		return nil, fmt.Errorf("invalid private key, out of range")
	}

	priv, _ := btcec.PrivKeyFromBytes(Curve(), d)

	return priv.ToECDSA(), nil
}

// ParsePrivateKeyHex parses the output of PrivateKeyHex.
func ParsePrivateKeyHex(s string) (*ecdsa.PrivateKey, error) {
	d, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	return ParsePrivateKey(d)
}

// PrivateKeyHex returns the hexadecimal representation of DumpPrivateKey.
func PrivateKeyHex(key *ecdsa.PrivateKey) string {
	return hex.EncodeToString(DumpPrivateKey(key))
}
