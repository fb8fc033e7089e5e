package keys

import (
	"math/big"

	"github.com/btcsuite/btcd/btcec"
)

/*
Keys and signing are based on elliptic curve cryptography. We use the
secp256k1 curve, the same one the consent principals' public keys live on, so
a single key format serves both to sign ledger transactions and to identify
principals in permission records.
*/

// Parameters of the secp256k1 curve. They are used in other function to verify
// that a private key is valid.
var (
	secp256k1N, _ = new(big.Int).SetString("fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141", 16)
)

// Curve returns btcsuite's golang implementation of secp256k1.
func Curve() *btcec.KoblitzCurve {
	return btcec.S256() //secp256k1
}
