package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mosaicnetworks/consent/src/crypto/keys"
	"github.com/mosaicnetworks/consent/src/gateway"
	"github.com/spf13/cobra"
)

// NewRestCmd returns the command that starts the REST gateway
func NewRestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rest",
		Short:   "Run REST gateway",
		PreRunE: loadConfig,
		RunE:    runRest,
	}
	AddRestFlags(cmd)
	return cmd
}

func runRest(cmd *cobra.Command, args []string) error {
	logger := _config.Logger()

	key, err := keys.NewSimpleKeyfile(_config.Keyfile()).ReadKey()
	if err != nil {
		logger.WithError(err).Error("Cannot read signing key")
		return err
	}

	session := gateway.NewSession(_config.LedgerAddr,
		key,
		_config.Timeout,
		logger.WithField("component", "session"))

	// The session redials on every call, so an absent node is not fatal here.
	if err := session.Open(); err != nil {
		logger.WithError(err).Warn("Ledger not reachable yet")
	}
	defer session.Close()

	logger.WithField("signer", session.Signer()).Info("Gateway signer")

	service := gateway.NewService(_config.RESTAddr,
		session,
		logger.WithField("component", "gateway"))

	errCh := make(chan error, 1)
	go func() {
		errCh <- service.Serve()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case <-sigCh:
		logger.Info("Shutting down")
	case err := <-errCh:
		logger.WithError(err).Error("Gateway stopped")
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), _config.Timeout)
	defer cancel()

	return service.Shutdown(ctx)
}

// AddRestFlags adds flags to the Rest command
func AddRestFlags(cmd *cobra.Command) {
	AddCommonFlags(cmd)

	cmd.Flags().StringP("rest-listen", "r", _config.RESTAddr, "Listen IP:Port for the HTTP API")
	cmd.Flags().StringP("ledger-connect", "c", _config.LedgerAddr, "IP:Port of the Ledger RPC")
	cmd.Flags().DurationP("timeout", "t", _config.Timeout, "Request timeout, including the wait for a receipt")
	cmd.Flags().String("key", _config.KeyFile, "Signing key file (defaults to [datadir]/priv_key)")
}
