package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/mosaicnetworks/consent/src/engine"
	"github.com/spf13/cobra"
)

// NewRunCmd returns the command that starts a ledger node
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "run",
		Short:   "Run ledger node",
		PreRunE: loadConfig,
		RunE:    runNode,
	}
	AddRunFlags(cmd)
	return cmd
}

/*******************************************************************************
* RUN
*******************************************************************************/

func runNode(cmd *cobra.Command, args []string) error {
	logger := _config.Logger()

	eng := engine.NewEngine(_config)

	if err := eng.Init(); err != nil {
		logger.WithError(err).Error("Cannot initialize engine")
		return err
	}
	defer eng.Shutdown()

	errCh := eng.RunAsync()

	//Prepare sigCh to relay SIGINT and SIGTERM system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case <-sigCh:
		logger.Info("Shutting down")
		return nil
	case err := <-errCh:
		logger.WithError(err).Error("Ledger RPC stopped")
		return err
	}
}

/*******************************************************************************
* CONFIG
*******************************************************************************/

// AddRunFlags adds flags to the Run command
func AddRunFlags(cmd *cobra.Command) {
	AddCommonFlags(cmd)

	// Network
	cmd.Flags().StringP("listen", "l", _config.BindAddr, "Listen IP:Port for the Ledger RPC")

	// Store
	cmd.Flags().Bool("store", _config.Store, "Use badgerDB instead of in-mem DB")
	cmd.Flags().String("db", _config.DatabaseDir, "Dabatabase directory")
	cmd.Flags().String("restore", _config.Restore, "Snapshot file to load before starting")

	// Node configuration
	cmd.Flags().Duration("heartbeat", _config.HeartbeatTimeout, "Max time a transaction waits before a block is cut")
	cmd.Flags().Int("max-block-size", _config.MaxBlockSize, "Number of pooled transactions that forces a block")
	cmd.Flags().Duration("submit-timeout", _config.SubmitTimeout, "Time Ledger.SubmitTx waits for a receipt")
	cmd.Flags().Int("receipt-cache-size", _config.ReceiptCacheSize, "Number of receipts kept for Ledger.GetReceipt")
}
