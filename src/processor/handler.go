package processor

import (
	"github.com/mosaicnetworks/consent/src/ledger"
	"github.com/mosaicnetworks/consent/src/store"
)

// TransactionHandler is implemented by transaction families. Apply must only
// touch state through ctx. Any error it returns rejects the transaction and
// discards its writes.
type TransactionHandler interface {
	FamilyName() string
	FamilyVersions() []string
	Namespaces() []string
	Apply(tx *ledger.Transaction, ctx store.Context) error
}

func handlerKey(family, version string) string {
	return family + "/" + version
}
