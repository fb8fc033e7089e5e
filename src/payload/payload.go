package payload

import (
	"bytes"
	"fmt"

	"github.com/mosaicnetworks/consent/src/crypto/keys"
	"github.com/ugorji/go/codec"
)

// wirePayload is the msgpack layout.
type wirePayload struct {
	Action uint8   `codec:"action"`
	Access *Access `codec:"access,omitempty"`
	Client *Client `codec:"client,omitempty"`
}

func msgpackHandle() *codec.MsgpackHandle {
	mh := new(codec.MsgpackHandle)
	mh.Canonical = true
	mh.ErrorIfNoField = true
	return mh
}

func encodeWire(w *wirePayload) ([]byte, error) {
	var b []byte
	if err := codec.NewEncoderBytes(&b, msgpackHandle()).Encode(w); err != nil {
		return nil, err
	}
	return b, nil
}

// isMap reports whether c is a msgpack fixmap, map16 or map32 descriptor.
func isMap(c byte) bool {
	return c&0xf0 == 0x80 || c == 0xde || c == 0xdf
}

// Encode returns the payload bytes of an action. It runs the same checks as
// Decode so that nothing it produces is rejected on the other side.
func Encode(a *Action) ([]byte, error) {
	w := wirePayload{
		Action: uint8(a.Type),
		Access: a.Access,
		Client: a.Client,
	}

	if err := validate(&w); err != nil {
		return nil, err
	}

	return encodeWire(&w)
}

// Decode parses raw payload bytes into an Action. The bytes must be exactly
// what Encode produces for that action: a single msgpack map with known
// fields, in canonical form, and nothing after it.
func Decode(raw []byte) (*Action, error) {
	if len(raw) == 0 {
		return nil, &DecodeError{Reason: "empty payload"}
	}

	if !isMap(raw[0]) {
		return nil, &DecodeError{Reason: "payload is not a map"}
	}

	r := bytes.NewReader(raw)

	var w wirePayload
	if err := codec.NewDecoder(r, msgpackHandle()).Decode(&w); err != nil {
		return nil, &DecodeError{Reason: "malformed payload", Err: err}
	}

	if r.Len() != 0 {
		return nil, &DecodeError{Reason: fmt.Sprintf("%d trailing bytes", r.Len())}
	}

	if err := validate(&w); err != nil {
		return nil, err
	}

	canonical, err := encodeWire(&w)
	if err != nil {
		return nil, &DecodeError{Reason: "malformed payload", Err: err}
	}
	if !bytes.Equal(canonical, raw) {
		return nil, &DecodeError{Reason: "non-canonical encoding"}
	}

	return &Action{
		Type:   ActionType(w.Action),
		Access: w.Access,
		Client: w.Client,
	}, nil
}

func validate(w *wirePayload) error {
	t := ActionType(w.Action)

	switch {
	case t == unset:
		return &DecodeError{Reason: "missing action"}
	case !t.Valid():
		return &UnknownActionError{Action: w.Action}
	}

	if t.IsAccess() {
		if w.Client != nil {
			return &DecodeError{Reason: t.String() + " carries client fields"}
		}
		if w.Access == nil {
			return &DecodeError{Reason: "missing access"}
		}
		if w.Access.DestPkey == "" {
			return &DecodeError{Reason: "missing dest_pkey"}
		}
		if w.Access.SrcPkey == "" {
			return &DecodeError{Reason: "missing src_pkey"}
		}
		if err := validatePrincipal("dest_pkey", w.Access.DestPkey); err != nil {
			return err
		}
		return validatePrincipal("src_pkey", w.Access.SrcPkey)
	}

	if w.Access != nil {
		return &DecodeError{Reason: t.String() + " carries access fields"}
	}
	if w.Client == nil {
		return &DecodeError{Reason: "missing client"}
	}
	if w.Client.PublicKey == "" {
		return &DecodeError{Reason: "missing public_key"}
	}
	return validatePrincipal("public_key", w.Client.PublicKey)
}

func validatePrincipal(field, value string) error {
	if _, err := keys.ParsePublicKeyHex(value); err != nil {
		return &ValidationError{Field: field, Value: value, Err: err}
	}
	return nil
}
