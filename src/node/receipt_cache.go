package node

import (
	"github.com/mosaicnetworks/consent/src/common"
	"github.com/mosaicnetworks/consent/src/ledger"
)

// receiptCache holds up to 2*size receipts. When full it drops the oldest
// size of them in one go.
type receiptCache struct {
	size     int
	order    []string
	receipts map[string]ledger.Receipt
}

func newReceiptCache(size int) *receiptCache {
	if size <= 0 {
		size = 1
	}
	return &receiptCache{
		size:     size,
		order:    make([]string, 0, 2*size),
		receipts: make(map[string]ledger.Receipt),
	}
}

func (c *receiptCache) Get(id string) (ledger.Receipt, error) {
	r, ok := c.receipts[id]
	if !ok {
		return ledger.Receipt{}, common.NewStoreErr("Receipt", common.KeyNotFound, id)
	}
	return r, nil
}

func (c *receiptCache) Set(r ledger.Receipt) {
	if r.TransactionID == "" {
		return
	}

	if _, ok := c.receipts[r.TransactionID]; !ok {
		if len(c.order) >= 2*c.size {
			c.roll()
		}
		c.order = append(c.order, r.TransactionID)
	}

	c.receipts[r.TransactionID] = r
}

func (c *receiptCache) roll() {
	for _, id := range c.order[:c.size] {
		delete(c.receipts, id)
	}
	newList := make([]string, 0, 2*c.size)
	newList = append(newList, c.order[c.size:]...)
	c.order = newList
}

func (c *receiptCache) Len() int {
	return len(c.receipts)
}
