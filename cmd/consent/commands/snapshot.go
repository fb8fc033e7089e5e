package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mosaicnetworks/consent/src/gateway"
	"github.com/spf13/cobra"
)

// DefaultSnapshotFile is written under the datadir when --out is not given.
const DefaultSnapshotFile = "snapshot.json"

// NewSnapshotCmd returns the command that saves a running node's state to a
// file that `run --restore` can load.
func NewSnapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "snapshot",
		Short:   "Save the ledger state of a running node",
		PreRunE: loadConfig,
		RunE:    saveSnapshot,
	}
	AddSnapshotFlags(cmd)
	return cmd
}

func saveSnapshot(cmd *cobra.Command, args []string) error {
	logger := _config.Logger()

	session := gateway.NewSession(_config.LedgerAddr,
		nil,
		_config.Timeout,
		logger.WithField("component", "session"))
	defer session.Close()

	snapshot, err := session.Snapshot(context.Background())
	if err != nil {
		return err
	}

	data, err := snapshot.Marshal()
	if err != nil {
		return err
	}

	out := _config.SnapshotFile
	if out == "" {
		out = filepath.Join(_config.DataDir, DefaultSnapshotFile)
	}

	if err := os.WriteFile(out, data, 0600); err != nil {
		return err
	}

	fmt.Printf("Block %d snapshot written to %s\n", snapshot.BlockIndex, out)

	return nil
}

// AddSnapshotFlags adds flags to the Snapshot command
func AddSnapshotFlags(cmd *cobra.Command) {
	AddCommonFlags(cmd)

	cmd.Flags().StringP("ledger-connect", "c", _config.LedgerAddr, "IP:Port of the Ledger RPC")
	cmd.Flags().DurationP("timeout", "t", _config.Timeout, "Request timeout")
	cmd.Flags().StringP("out", "o", _config.SnapshotFile, "Snapshot file (defaults to [datadir]/snapshot.json)")
}
