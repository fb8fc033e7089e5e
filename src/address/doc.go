// Package address derives the state addresses used by the consent family.
//
// An address is 70 lowercase hex characters (35 bytes). The first 6
// characters are the namespace prefix, the first 6 characters of the SHA512 of
// the family name, which is what the processor claims exclusive rights over.
// The next 2 characters tag the kind of record stored at the address, and the
// remaining 62 are a truncated SHA512 of the kind and the principal(s):
//
//	prefix(6) | tag(2) | sha512(kind 0x00 principal_a [0x00 principal_b])[:62]
//
// Because the kind and both principals, in order, go into the hash, swapping
// granter and grantee or changing the kind yields a different address.
package address
