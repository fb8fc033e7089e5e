package commands

import (
	"github.com/mosaicnetworks/consent/src/config"
	"github.com/spf13/cobra"
)

var (
	_config = config.NewDefaultConfig()
)

// RootCmd is the root command for the consent ledger
var RootCmd = &cobra.Command{
	Use:              "consent",
	Short:            "EHR consent ledger",
	TraverseChildren: true,
}
