package handler

// InvalidTransaction is the single rejection signal returned by Apply. Message
// is the human-readable cause; Err keeps the underlying error for errors.As.
type InvalidTransaction struct {
	Message string
	Err     error
}

func (e *InvalidTransaction) Error() string {
	return "invalid transaction: " + e.Message
}

// Unwrap ...
func (e *InvalidTransaction) Unwrap() error {
	return e.Err
}

func invalid(err error) *InvalidTransaction {
	return &InvalidTransaction{
		Message: err.Error(),
		Err:     err,
	}
}
