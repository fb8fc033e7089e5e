package commands

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mosaicnetworks/consent/src/config"
	"github.com/mosaicnetworks/consent/src/crypto/keys"
	"github.com/mosaicnetworks/consent/src/engine"
	"github.com/mosaicnetworks/consent/src/node"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestKeygen(t *testing.T) {
	dir := t.TempDir()
	privKeyFile = filepath.Join(dir, "keys", "priv_key")

	require.NoError(t, keygen(nil, nil))

	key, err := keys.NewSimpleKeyfile(privKeyFile).ReadKey()
	require.NoError(t, err)

	pub, err := os.ReadFile(privKeyFile + keys.PublicSuffix)
	require.NoError(t, err)
	require.Equal(t, keys.PublicKeyHex(&key.PublicKey), string(pub))

	// never overwrite an existing key
	err = keygen(nil, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "A key already lives under")
}

func TestLoadConfigFile(t *testing.T) {
	_config = config.NewTestConfig(t, logrus.DebugLevel)

	dir := t.TempDir()
	toml := strings.Join([]string{
		`max-block-size = 7`,
		`heartbeat = "25ms"`,
		`receipt-cache-size = 50`,
		`listen = "127.0.0.1:5005"`,
	}, "\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "consent.toml"), []byte(toml), 0600))

	cmd := NewRunCmd()
	require.NoError(t, cmd.Flags().Set("datadir", dir))
	// flags set on the command line win over the config file
	require.NoError(t, cmd.Flags().Set("receipt-cache-size", "99"))

	require.NoError(t, loadConfig(cmd, nil))

	require.Equal(t, dir, _config.DataDir)
	require.Equal(t, filepath.Join(dir, config.DefaultBadgerFile), _config.DatabaseDir)
	require.Equal(t, 7, _config.MaxBlockSize)
	require.Equal(t, 25*time.Millisecond, _config.HeartbeatTimeout)
	require.Equal(t, 99, _config.ReceiptCacheSize)
	require.Equal(t, "127.0.0.1:5005", _config.BindAddr)
	require.Equal(t, config.DefaultSubmitTimeout, _config.SubmitTimeout)
}

func TestLoadConfigNoFile(t *testing.T) {
	_config = config.NewTestConfig(t, logrus.DebugLevel)

	dir := t.TempDir()

	cmd := NewRestCmd()
	require.NoError(t, cmd.Flags().Set("datadir", dir))
	require.NoError(t, cmd.Flags().Set("timeout", "3s"))
	require.NoError(t, cmd.Flags().Set("ledger-connect", "10.0.0.1:4004"))

	require.NoError(t, loadConfig(cmd, nil))

	require.Equal(t, 3*time.Second, _config.Timeout)
	require.Equal(t, "10.0.0.1:4004", _config.LedgerAddr)
	require.Equal(t, config.DefaultRESTAddr, _config.RESTAddr)
	require.Equal(t, filepath.Join(dir, config.DefaultKeyfile), _config.Keyfile())
}

func TestNewLoggerWritesLevelFiles(t *testing.T) {
	conf := config.NewDefaultConfig()
	conf.LogLevel = "debug"
	conf.LogDir = filepath.Join(t.TempDir(), "logs")

	logger := newLogger(conf)
	logger.Out = io.Discard

	logger.Info("block committed")
	logger.Debug("pool flushed")

	info, err := os.ReadFile(filepath.Join(conf.LogDir, "consent_info.log"))
	require.NoError(t, err)
	require.Contains(t, string(info), "block committed")
	require.NotContains(t, string(info), "pool flushed")

	debug, err := os.ReadFile(filepath.Join(conf.LogDir, "consent_debug.log"))
	require.NoError(t, err)
	require.Contains(t, string(debug), "pool flushed")
}

func TestSnapshotThenRestoreFlag(t *testing.T) {
	nodeConf := config.NewTestConfig(t, logrus.DebugLevel)
	nodeConf.BindAddr = "127.0.0.1:0"

	eng := engine.NewEngine(nodeConf)
	require.NoError(t, eng.Init())
	defer eng.Shutdown()
	eng.RunAsync()

	_config = config.NewTestConfig(t, logrus.DebugLevel)

	dir := t.TempDir()

	cmd := NewSnapshotCmd()
	require.NoError(t, cmd.Flags().Set("datadir", dir))
	require.NoError(t, cmd.Flags().Set("ledger-connect", eng.Addr()))
	require.NoError(t, loadConfig(cmd, nil))

	require.NoError(t, saveSnapshot(cmd, nil))

	out := filepath.Join(dir, DefaultSnapshotFile)
	data, err := os.ReadFile(out)
	require.NoError(t, err)

	snapshot := new(node.Snapshot)
	require.NoError(t, snapshot.Unmarshal(data))
	require.Equal(t, -1, snapshot.BlockIndex, "nothing was committed yet")

	_config = config.NewTestConfig(t, logrus.DebugLevel)

	run := NewRunCmd()
	require.NoError(t, run.Flags().Set("datadir", dir))
	require.NoError(t, run.Flags().Set("restore", out))
	require.NoError(t, loadConfig(run, nil))
	require.Equal(t, out, _config.Restore)
}
