// Package payload encodes and decodes consent transaction payloads.
//
// A payload is a msgpack map:
//
//	action    uint8, one of the ActionType values (0 is never valid)
//	access    {dest_pkey, src_pkey} for the eight grant/revoke actions
//	client    {public_key, name} for CreateClient
//
// Decode classifies a payload into exactly one Action or fails. It never
// falls back to a default action: a missing discriminator or operand is a
// DecodeError, an unassigned discriminator an UnknownActionError, and a
// malformed principal a ValidationError.
package payload
