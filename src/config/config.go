package config

import (
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/mosaicnetworks/consent/src/common"
	"github.com/mosaicnetworks/consent/src/node"
	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

// Default filenames.
const (
	// DefaultKeyfile is the default name of the file containing the signing
	// key used by the gateway.
	DefaultKeyfile = "priv_key"

	// DefaultBadgerFile is the default name of the folder containing the Badger
	// database
	DefaultBadgerFile = "badger_db"
)

// Default configuration values.
const (
	DefaultLogLevel         = "debug"
	DefaultBindAddr         = "127.0.0.1:4004"
	DefaultRESTAddr         = "127.0.0.1:8008"
	DefaultLedgerAddr       = DefaultBindAddr
	DefaultTimeout          = 30 * time.Second
	DefaultHeartbeatTimeout = 10 * time.Millisecond
	DefaultMaxBlockSize     = 100
	DefaultSubmitTimeout    = 5 * time.Second
	DefaultReceiptCacheSize = 10000
	DefaultStore            = false
)

// Config contains the configuration properties of a consent ledger node and of
// the REST gateway that talks to it.
type Config struct {
	// DataDir is the top-level directory containing configuration and data
	DataDir string `mapstructure:"datadir"`

	// LogLevel determines the chattiness of the log output.
	LogLevel string `mapstructure:"log"`

	// LogDir, when set, receives one log file per level in addition to the
	// console output.
	LogDir string `mapstructure:"log-dir"`

	// BindAddr is the address:port where the ledger node serves JSON-RPC.
	BindAddr string `mapstructure:"listen"`

	// RESTAddr is the address:port of the gateway's HTTP API.
	RESTAddr string `mapstructure:"rest-listen"`

	// LedgerAddr is the address:port of the ledger node the gateway connects
	// to.
	LedgerAddr string `mapstructure:"ledger-connect"`

	// Timeout bounds every gateway request, including the wait for a
	// transaction receipt.
	Timeout time.Duration `mapstructure:"timeout"`

	// KeyFile overrides the location of the gateway's signing key.
	KeyFile string `mapstructure:"key"`

	// HeartbeatTimeout is how long a transaction may sit in the node's pool
	// before a block is cut.
	HeartbeatTimeout time.Duration `mapstructure:"heartbeat"`

	// MaxBlockSize is the number of pooled transactions that forces a block.
	MaxBlockSize int `mapstructure:"max-block-size"`

	// SubmitTimeout is how long Ledger.SubmitTx waits for a receipt.
	SubmitTimeout time.Duration `mapstructure:"submit-timeout"`

	// ReceiptCacheSize is the number of receipts the node remembers.
	ReceiptCacheSize int `mapstructure:"receipt-cache-size"`

	// Store activates persistant storage.
	Store bool `mapstructure:"store"`

	// DatabaseDir is the directory containing database files.
	DatabaseDir string `mapstructure:"db"`

	// Restore is a snapshot file, written by the snapshot command, loaded
	// into the node before it starts.
	Restore string `mapstructure:"restore"`

	// SnapshotFile is where the snapshot command writes.
	SnapshotFile string `mapstructure:"out"`

	logger *logrus.Logger
}

// NewDefaultConfig returns a config object with default values.
func NewDefaultConfig() *Config {
	config := &Config{
		DataDir:          DefaultDataDir(),
		LogLevel:         DefaultLogLevel,
		BindAddr:         DefaultBindAddr,
		RESTAddr:         DefaultRESTAddr,
		LedgerAddr:       DefaultLedgerAddr,
		Timeout:          DefaultTimeout,
		HeartbeatTimeout: DefaultHeartbeatTimeout,
		MaxBlockSize:     DefaultMaxBlockSize,
		SubmitTimeout:    DefaultSubmitTimeout,
		ReceiptCacheSize: DefaultReceiptCacheSize,
		Store:            DefaultStore,
		DatabaseDir:      DefaultDatabaseDir(),
	}

	return config
}

// NewTestConfig returns a config object with default values and a special
// logger for debugging tests.
func NewTestConfig(t testing.TB, level logrus.Level) *Config {
	config := NewDefaultConfig()
	config.logger = common.NewTestLogger(t, level)
	return config
}

// SetDataDir sets the top-level directory, and updates the database
// directory if it is currently set to the default value. If the database
// directory is not currently the default, it means the user has explicitely set
// it to something else, so avoid changing it again here.
func (c *Config) SetDataDir(dataDir string) {
	c.DataDir = dataDir
	if c.DatabaseDir == DefaultDatabaseDir() {
		c.DatabaseDir = filepath.Join(dataDir, DefaultBadgerFile)
	}
}

// Keyfile returns the full path of the file containing the private key.
func (c *Config) Keyfile() string {
	if c.KeyFile != "" {
		return c.KeyFile
	}
	return filepath.Join(c.DataDir, DefaultKeyfile)
}

// NodeConfig extracts the ledger node settings.
func (c *Config) NodeConfig() *node.Config {
	return node.NewConfig(
		c.HeartbeatTimeout,
		c.MaxBlockSize,
		c.SubmitTimeout,
		c.ReceiptCacheSize,
		c.Logger().WithField("component", "node"),
	)
}

// SetLogger replaces the underlying logrus Logger, so that hooks installed by
// the caller are shared by every component.
func (c *Config) SetLogger(logger *logrus.Logger) {
	c.logger = logger
}

// Logger returns a formatted logrus Entry, with prefix set to "consent".
func (c *Config) Logger() *logrus.Entry {
	if c.logger == nil {
		c.logger = logrus.New()
		c.logger.Level = LogLevel(c.LogLevel)
		c.logger.Formatter = new(prefixed.TextFormatter)
	}
	return c.logger.WithField("prefix", "consent")
}

// DefaultDatabaseDir returns the default path for the badger database files.
func DefaultDatabaseDir() string {
	return filepath.Join(DefaultDataDir(), DefaultBadgerFile)
}

// DefaultDataDir return the default directory name for top-level config based
// on the underlying OS, attempting to respect conventions.
func DefaultDataDir() string {
	// Try to place the data folder in the user's home dir
	home := HomeDir()
	if home != "" {
		if runtime.GOOS == "darwin" {
			return filepath.Join(home, ".Consent")
		} else if runtime.GOOS == "windows" {
			return filepath.Join(home, "AppData", "Roaming", "Consent")
		} else {
			return filepath.Join(home, ".consent")
		}
	}
	// As we cannot guess a stable location, return empty and handle later
	return ""
}

// HomeDir returns the user's home directory.
func HomeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

// LogLevel parses a string into a Logrus log level.
func LogLevel(l string) logrus.Level {
	switch l {
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	case "panic":
		return logrus.PanicLevel
	default:
		return logrus.DebugLevel
	}
}
