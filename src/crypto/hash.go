package crypto

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
)

// SHA256 returns the SHA256 hash of the data.
func SHA256(data []byte) []byte {
	hasher := sha256.New()
	hasher.Write(data)
	hash := hasher.Sum(nil)
	return hash
}

// SHA512 returns the SHA512 hash of the data.
func SHA512(data []byte) []byte {
	hasher := sha512.New()
	hasher.Write(data)
	return hasher.Sum(nil)
}

// SHA512Hex returns the lowercase hex encoding of the SHA512 hash of the data.
func SHA512Hex(data []byte) string {
	return hex.EncodeToString(SHA512(data))
}

// SimpleHashFromTwoHashes returns the SHA256 hash of the concatenation of left
// and right data.
func SimpleHashFromTwoHashes(left []byte, right []byte) []byte {
	var hasher = sha256.New()
	hasher.Write(left)
	hasher.Write(right)
	return hasher.Sum(nil)
}
