package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestSetDataDir(t *testing.T) {
	conf := NewDefaultConfig()
	conf.SetDataDir("/tmp/consent")

	require.Equal(t, "/tmp/consent", conf.DataDir)
	require.Equal(t, filepath.Join("/tmp/consent", DefaultBadgerFile), conf.DatabaseDir)
	require.Equal(t, filepath.Join("/tmp/consent", DefaultKeyfile), conf.Keyfile())

	// an explicit db dir survives a datadir change
	conf = NewDefaultConfig()
	conf.DatabaseDir = "/var/db"
	conf.SetDataDir("/tmp/consent")
	require.Equal(t, "/var/db", conf.DatabaseDir)
}

func TestKeyfileOverride(t *testing.T) {
	conf := NewDefaultConfig()
	conf.KeyFile = "/etc/consent/batcher.key"
	require.Equal(t, "/etc/consent/batcher.key", conf.Keyfile())
}

func TestNodeConfig(t *testing.T) {
	conf := NewTestConfig(t, logrus.DebugLevel)
	conf.HeartbeatTimeout = 20 * time.Millisecond
	conf.MaxBlockSize = 7

	nc := conf.NodeConfig()
	require.Equal(t, 20*time.Millisecond, nc.HeartbeatTimeout)
	require.Equal(t, 7, nc.MaxBlockSize)
	require.Equal(t, DefaultSubmitTimeout, nc.SubmitTimeout)
	require.Equal(t, DefaultReceiptCacheSize, nc.ReceiptCacheSize)
	require.NotNil(t, nc.Logger)
	require.Equal(t, "node", nc.Logger.Data["component"])
	require.Equal(t, "consent", nc.Logger.Data["prefix"])
}

func TestLogLevel(t *testing.T) {
	cases := map[string]logrus.Level{
		"debug":   logrus.DebugLevel,
		"info":    logrus.InfoLevel,
		"warn":    logrus.WarnLevel,
		"error":   logrus.ErrorLevel,
		"fatal":   logrus.FatalLevel,
		"panic":   logrus.PanicLevel,
		"verbose": logrus.DebugLevel,
	}
	for in, want := range cases {
		if got := LogLevel(in); got != want {
			t.Fatalf("LogLevel(%q) should be %v, not %v", in, want, got)
		}
	}
}
