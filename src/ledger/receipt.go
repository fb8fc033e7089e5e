package ledger

// ReceiptStatus ...
type ReceiptStatus string

const (
	// Committed means the transaction was applied.
	Committed ReceiptStatus = "COMMITTED"
	// Invalid means the transaction was rejected and changed nothing.
	Invalid ReceiptStatus = "INVALID"
	// Pending means the transaction is known but not yet in a committed
	// block.
	Pending ReceiptStatus = "PENDING"
)

// Receipt reports the outcome of one transaction.
type Receipt struct {
	TransactionID string        `json:"transaction_id"`
	BlockIndex    int           `json:"block_index"`
	Status        ReceiptStatus `json:"status"`
	Message       string        `json:"message,omitempty"`
}

// NewCommittedReceipt ...
func NewCommittedReceipt(id string, blockIndex int) Receipt {
	return Receipt{
		TransactionID: id,
		BlockIndex:    blockIndex,
		Status:        Committed,
	}
}

// NewInvalidReceipt ...
func NewInvalidReceipt(id string, blockIndex int, message string) Receipt {
	return Receipt{
		TransactionID: id,
		BlockIndex:    blockIndex,
		Status:        Invalid,
		Message:       message,
	}
}

// NewPendingReceipt ...
func NewPendingReceipt(id string) Receipt {
	return Receipt{
		TransactionID: id,
		BlockIndex:    -1,
		Status:        Pending,
	}
}

// IsCommitted ...
func (r Receipt) IsCommitted() bool {
	return r.Status == Committed
}

// IsPending ...
func (r Receipt) IsPending() bool {
	return r.Status == Pending
}
