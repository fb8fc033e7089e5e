package store

// Context is the view of state a transaction handler gets while a single
// ledger transaction is being applied. Reads see the handler's own writes.
// GetState returns a common.StoreErr with code KeyNotFound when nothing is
// stored at the address.
type Context interface {
	GetState(address string) ([]byte, error)
	SetState(address string, data []byte) error
}

// Store holds the application state. Update runs fn inside a transaction that
// is committed if fn returns nil and discarded otherwise, so a failed
// ledger transaction never leaves partial writes behind. Update calls are
// serialized.
type Store interface {
	Update(fn func(Context) error) error
	View(fn func(Context) error) error

	// Snapshot encodes the whole state. Restore replaces the whole state
	// with a snapshot.
	Snapshot() ([]byte, error)
	Restore(snapshot []byte) error

	Close() error
}
