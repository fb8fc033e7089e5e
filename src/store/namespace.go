package store

import (
	"fmt"

	"github.com/mosaicnetworks/consent/src/address"
	cm "github.com/mosaicnetworks/consent/src/common"
)

type namespacedContext struct {
	Context
	namespaces []string
}

// NewNamespacedContext restricts ctx to the addresses under the given
// namespace prefixes. Any other address is refused with an OutOfNamespace
// StoreErr, on reads as well as writes.
func NewNamespacedContext(ctx Context, namespaces []string) Context {
	return &namespacedContext{
		Context:    ctx,
		namespaces: namespaces,
	}
}

func (c *namespacedContext) GetState(addr string) ([]byte, error) {
	if !address.InNamespace(addr, c.namespaces...) {
		return nil, cm.NewStoreErr("State", cm.OutOfNamespace, addr)
	}
	return c.Context.GetState(addr)
}

func (c *namespacedContext) SetState(addr string, data []byte) error {
	if !address.InNamespace(addr, c.namespaces...) {
		return cm.NewStoreErr("State", cm.OutOfNamespace, addr)
	}
	return c.Context.SetState(addr, data)
}

func errReadOnly(addr string) error {
	return fmt.Errorf("write to %s in a read-only context", addr)
}
