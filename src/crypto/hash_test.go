package crypto

import (
	"bytes"
	"testing"
)

func TestSHA512Hex(t *testing.T) {
	// sha512("abc")
	want := "ddaf35a193617abacc417349ae20413112e6fa4e89a97ea20a9eeee64b55d39a" +
		"2192992a274fc1a836ba3c23a3feebbd454d4423643ce80e2a9ac94fa54ca49f"

	if got := SHA512Hex([]byte("abc")); got != want {
		t.Fatalf("SHA512Hex(abc) = %s, want %s", got, want)
	}
}

func TestSimpleHashFromTwoHashes(t *testing.T) {
	left := SHA256([]byte("left"))
	right := SHA256([]byte("right"))

	h1 := SimpleHashFromTwoHashes(left, right)
	h2 := SimpleHashFromTwoHashes(right, left)

	if bytes.Equal(h1, h2) {
		t.Fatalf("hash should depend on order")
	}

	if !bytes.Equal(h1, SHA256(append(append([]byte{}, left...), right...))) {
		t.Fatalf("hash should be SHA256(left||right)")
	}
}
