package keys

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/btcsuite/btcd/btcec"
)

// Sign signs the data (expected to be a hash) with the private key. The
// signature is deterministic (RFC6979) and canonical (low S).
func Sign(priv *ecdsa.PrivateKey, data []byte) (r, s *big.Int, err error) {
	sig, err := (*btcec.PrivateKey)(priv).Sign(data)
	if err != nil {
		return nil, nil, err
	}
	return sig.R, sig.S, nil
}

// Verify verifies that a signature represented by r and s values, is a valid
// signature of the data by an owner of the private key associated with the
// provided public key.
func Verify(pub *ecdsa.PublicKey, data []byte, r, s *big.Int) bool {
	if pub == nil || r == nil || s == nil {
		return false
	}
	sig := &btcec.Signature{R: r, S: s}
	return sig.Verify(data, (*btcec.PublicKey)(pub))
}

// EncodeSignature returns a string representation of a signature.
func EncodeSignature(r, s *big.Int) string {
	return fmt.Sprintf("%s|%s", r.Text(36), s.Text(36))
}

// DecodeSignature parses a string representation of a signature as produced by
// EncodeSignature.
func DecodeSignature(sig string) (r, s *big.Int, err error) {
	values := strings.Split(sig, "|")
	if len(values) != 2 {
		return r, s, fmt.Errorf("wrong number of values in signature: got %d, want 2", len(values))
	}
	r, ok := new(big.Int).SetString(values[0], 36)
	if !ok {
		return nil, nil, fmt.Errorf("invalid signature R value %q", values[0])
	}
	s, ok = new(big.Int).SetString(values[1], 36)
	if !ok {
		return nil, nil, fmt.Errorf("invalid signature S value %q", values[1])
	}
	return r, s, nil
}
