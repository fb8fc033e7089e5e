package address

import (
	"bytes"
	"fmt"

	"github.com/mosaicnetworks/consent/src/crypto"
)

const (
	// Length is the number of hex characters in an address.
	Length = 70
	// PrefixLength is the number of hex characters in a namespace prefix.
	PrefixLength = 6

	tagLength  = 2
	hashLength = Length - PrefixLength - tagLength
)

// Kind is the type of record stored at an address.
type Kind uint8

const (
	// Client addresses hold client records and use a single principal.
	Client Kind = iota
	// Read is the READ permission kind.
	Read
	// Write is the WRITE permission kind.
	Write
	// Share is the SHARE permission kind.
	Share
	// ShareOfShared is the SHARE_OF_SHARED permission kind.
	ShareOfShared
)

// PermissionKinds lists the pairwise kinds in tag order.
var PermissionKinds = []Kind{Read, Write, Share, ShareOfShared}

// String ...
func (k Kind) String() string {
	switch k {
	case Client:
		return "CLIENT"
	case Read:
		return "READ"
	case Write:
		return "WRITE"
	case Share:
		return "SHARE"
	case ShareOfShared:
		return "SHARE_OF_SHARED"
	default:
		return fmt.Sprintf("KIND(%d)", uint8(k))
	}
}

// IsPermission reports whether the kind addresses a principal pair.
func (k Kind) IsPermission() bool {
	return k >= Read && k <= ShareOfShared
}

// Namespace returns the namespace prefix of a transaction family.
func Namespace(familyName string) string {
	return crypto.SHA512Hex([]byte(familyName))[:PrefixLength]
}

// Make returns the address of the record of the given kind. For Client only a
// is used and b must be empty; for permission kinds a is the granter and b the
// grantee. Principal well-formedness is the caller's job.
func Make(prefix string, kind Kind, a, b string) string {
	var buf bytes.Buffer

	buf.WriteString(kind.String())
	buf.WriteByte(0)
	buf.WriteString(a)
	if kind != Client {
		buf.WriteByte(0)
		buf.WriteString(b)
	}

	return fmt.Sprintf("%s%02x%s", prefix, uint8(kind), crypto.SHA512Hex(buf.Bytes())[:hashLength])
}

// ClientAddress is Make for a client record.
func ClientAddress(prefix, pkey string) string {
	return Make(prefix, Client, pkey, "")
}

// PermissionAddress is Make for a permission of the given kind granted by src
// to dest.
func PermissionAddress(prefix string, kind Kind, src, dest string) string {
	return Make(prefix, kind, src, dest)
}

// InNamespace reports whether addr is a well-formed address under one of the
// given prefixes.
func InNamespace(addr string, prefixes ...string) bool {
	if len(addr) != Length {
		return false
	}
	for _, c := range addr {
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f') {
			return false
		}
	}
	for _, p := range prefixes {
		if len(addr) >= len(p) && addr[:len(p)] == p {
			return true
		}
	}
	return false
}
