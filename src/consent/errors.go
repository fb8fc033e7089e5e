package consent

import "fmt"

// StateError wraps any failure to read, decode or write state.
type StateError struct {
	Op      string
	Address string
	Err     error
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Address, e.Err)
}

// Unwrap ...
func (e *StateError) Unwrap() error {
	return e.Err
}

func stateErr(op, addr string, err error) error {
	return &StateError{Op: op, Address: addr, Err: err}
}
