package common

import "fmt"

// StoreErrType ...
type StoreErrType uint32

const (
	// KeyNotFound is returned when nothing is stored at an address.
	KeyNotFound StoreErrType = iota
	// KeyAlreadyExists is returned when a create-once record is written twice.
	KeyAlreadyExists
	// OutOfNamespace is returned when a handler touches an address outside
	// the namespaces it registered.
	OutOfNamespace
	// Closed is returned by a store that has been closed.
	Closed
)

// StoreErr ...
type StoreErr struct {
	dataType string
	errType  StoreErrType
	key      string
}

// NewStoreErr ...
func NewStoreErr(dataType string, errType StoreErrType, key string) StoreErr {
	return StoreErr{
		dataType: dataType,
		errType:  errType,
		key:      key,
	}
}

// Error ...
func (e StoreErr) Error() string {
	m := ""
	switch e.errType {
	case KeyNotFound:
		m = "Not Found"
	case KeyAlreadyExists:
		m = "Key Already Exists"
	case OutOfNamespace:
		m = "Out Of Namespace"
	case Closed:
		m = "Closed"
	}

	return fmt.Sprintf("%s, %s, %s", e.dataType, e.key, m)
}

// IsStore checks that an error is of type StoreErr and that it's code matches
// the provided StoreErr code. Wrapped errors are unwrapped.
func IsStore(err error, t StoreErrType) bool {
	for err != nil {
		if storeErr, ok := err.(StoreErr); ok {
			return storeErr.errType == t
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
