package commands

import (
	"os"
	"path/filepath"

	"github.com/mosaicnetworks/consent/src/config"
	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

// AddCommonFlags adds the flags shared by the run and rest commands
func AddCommonFlags(cmd *cobra.Command) {
	cmd.Flags().String("datadir", _config.DataDir, "Top-level directory for configuration and data")
	cmd.Flags().String("log", _config.LogLevel, "debug, info, warn, error, fatal, panic")
	cmd.Flags().String("log-dir", _config.LogDir, "Directory for per-level log files")
}

func loadConfig(cmd *cobra.Command, args []string) error {
	if err := bindFlagsLoadViper(cmd); err != nil {
		return err
	}

	// If --datadir was explicitely set, but not --db, this will update the
	// default database dir to be inside the new datadir
	_config.SetDataDir(_config.DataDir)

	if _config.LogDir != "" {
		_config.SetLogger(newLogger(_config))
	}

	logFields := logrus.Fields{
		"DataDir":          _config.DataDir,
		"LogLevel":         _config.LogLevel,
		"LogDir":           _config.LogDir,
		"BindAddr":         _config.BindAddr,
		"RESTAddr":         _config.RESTAddr,
		"LedgerAddr":       _config.LedgerAddr,
		"Timeout":          _config.Timeout,
		"HeartbeatTimeout": _config.HeartbeatTimeout,
		"MaxBlockSize":     _config.MaxBlockSize,
		"SubmitTimeout":    _config.SubmitTimeout,
		"ReceiptCacheSize": _config.ReceiptCacheSize,
		"Store":            _config.Store,
	}

	if _config.Store {
		logFields["DatabaseDir"] = _config.DatabaseDir
	}

	_config.Logger().WithFields(logFields).Debug(cmd.Name())

	return nil
}

// Bind all flags and read the config into viper
func bindFlagsLoadViper(cmd *cobra.Command) error {
	v := viper.New()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// first unmarshal to read from CLI flags
	if err := v.Unmarshal(_config); err != nil {
		return err
	}

	// look for config file in [datadir]/consent.toml (.json, .yaml also work)
	v.SetConfigName("consent")
	v.AddConfigPath(_config.DataDir)

	// If a config file is found, read it in.
	if err := v.ReadInConfig(); err == nil {
		_config.Logger().Debugf("Using config file: %s", v.ConfigFileUsed())
	} else if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		_config.Logger().Debugf("No config file found in: %s", _config.DataDir)
	} else {
		return err
	}

	// second unmarshal to read from config file
	return v.Unmarshal(_config)
}

// newLogger builds the console logger and mirrors every level into its own
// file under conf.LogDir.
func newLogger(conf *config.Config) *logrus.Logger {
	logger := logrus.New()
	logger.Level = config.LogLevel(conf.LogLevel)
	logger.Formatter = new(prefixed.TextFormatter)

	if err := os.MkdirAll(conf.LogDir, 0700); err != nil {
		logger.WithError(err).Info("Failed to create log directory, using default stderr")
		return logger
	}

	pathMap := lfshook.PathMap{}
	for _, level := range []logrus.Level{
		logrus.DebugLevel,
		logrus.InfoLevel,
		logrus.WarnLevel,
		logrus.ErrorLevel,
	} {
		pathMap[level] = filepath.Join(conf.LogDir, "consent_"+level.String()+".log")
	}

	logger.Hooks.Add(lfshook.NewHook(
		pathMap,
		&logrus.TextFormatter{},
	))

	return logger
}
