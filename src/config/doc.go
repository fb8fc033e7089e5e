// Package config defines the configuration shared by the consent ledger node
// and the REST gateway.
//
// Both processes read the same Config object, populated from command line
// flags and, optionally, from a consent.toml file in the data directory.
// The data directory, Config.DataDir, is also where they expect to find:
//
//	priv_key // a plain text file containing the raw signing key (cf. consent keygen).
//	badger_db // (optional) the state database when Config.Store is set.
package config
