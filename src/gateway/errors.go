package gateway

import (
	"fmt"
)

// LedgerError is returned when the ledger node could not be reached or
// refused a call.
type LedgerError struct {
	Method string
	Err    error
}

func (e *LedgerError) Error() string {
	return fmt.Sprintf("ledger %s: %v", e.Method, e.Err)
}

// Unwrap ...
func (e *LedgerError) Unwrap() error {
	return e.Err
}

// TimeoutError is returned when the request context expires before the
// ledger answered. TransactionID is set when the transaction was submitted.
type TimeoutError struct {
	TransactionID string
	Err           error
}

func (e *TimeoutError) Error() string {
	if e.TransactionID != "" {
		return fmt.Sprintf("timeout waiting for %s: %v", e.TransactionID, e.Err)
	}
	return fmt.Sprintf("timeout: %v", e.Err)
}

// Unwrap ...
func (e *TimeoutError) Unwrap() error {
	return e.Err
}
