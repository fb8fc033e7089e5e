package node

import (
	"testing"
	"time"

	"github.com/mosaicnetworks/consent/src/common"
	"github.com/sirupsen/logrus"
)

// Config ...
type Config struct {
	// HeartbeatTimeout is how long a transaction may wait in the pool before
	// a block is cut.
	HeartbeatTimeout time.Duration `mapstructure:"heartbeat"`

	// MaxBlockSize is the number of pooled transactions that triggers a block
	// without waiting for the heartbeat.
	MaxBlockSize int `mapstructure:"max-block-size"`

	// SubmitTimeout is how long Ledger.SubmitTx waits for a receipt before
	// answering with a pending one.
	SubmitTimeout time.Duration `mapstructure:"submit-timeout"`

	// ReceiptCacheSize is the number of receipts kept for Ledger.GetReceipt.
	ReceiptCacheSize int `mapstructure:"receipt-cache-size"`

	Logger *logrus.Entry
}

// NewConfig ...
func NewConfig(heartbeat time.Duration,
	maxBlockSize int,
	submitTimeout time.Duration,
	receiptCacheSize int,
	logger *logrus.Entry) *Config {

	return &Config{
		HeartbeatTimeout: heartbeat,
		MaxBlockSize:     maxBlockSize,
		SubmitTimeout:    submitTimeout,
		ReceiptCacheSize: receiptCacheSize,
		Logger:           logger,
	}
}

// DefaultConfig ...
func DefaultConfig() *Config {
	logger := logrus.New()
	logger.Level = logrus.DebugLevel

	return &Config{
		HeartbeatTimeout: 10 * time.Millisecond,
		MaxBlockSize:     100,
		SubmitTimeout:    5 * time.Second,
		ReceiptCacheSize: 10000,
		Logger:           logrus.NewEntry(logger),
	}
}

// TestConfig ...
func TestConfig(t testing.TB) *Config {
	config := DefaultConfig()
	config.Logger = common.NewTestEntry(t, common.TestLogLevel)
	return config
}
