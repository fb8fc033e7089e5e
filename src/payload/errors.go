package payload

import "fmt"

// DecodeError is returned for payloads that are not valid msgpack or lack a
// required field.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode payload: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("decode payload: %s", e.Reason)
}

// Unwrap ...
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// UnknownActionError is returned when the discriminator is not one of the
// nine actions.
type UnknownActionError struct {
	Action uint8
}

func (e *UnknownActionError) Error() string {
	return fmt.Sprintf("unhandled action: %d", e.Action)
}

// ValidationError is returned when a principal is not a compressed secp256k1
// public key in lowercase hex.
type ValidationError struct {
	Field string
	Value string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
}

// Unwrap ...
func (e *ValidationError) Unwrap() error {
	return e.Err
}
