package commands

import (
	"fmt"

	"github.com/mosaicnetworks/consent/src/crypto/keys"
	"github.com/spf13/cobra"
)

var privKeyFile string

// NewKeygenCmd produces a KeygenCmd which create a key pair
func NewKeygenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Create the gateway's signing key",
		RunE:  keygen,
	}

	cmd.Flags().StringVar(&privKeyFile, "priv", _config.Keyfile(), "File where the private key will be written; the public key goes next to it")

	return cmd
}

func keygen(cmd *cobra.Command, args []string) error {
	key, err := keys.GenerateECDSAKey()
	if err != nil {
		return fmt.Errorf("Error generating ECDSA key: %s", err)
	}

	keyfile := keys.NewSimpleKeyfile(privKeyFile)

	if err := keyfile.WriteKey(key); err == keys.ErrKeyExists {
		return fmt.Errorf("A key already lives under: %s", keyfile.Path())
	} else if err != nil {
		return fmt.Errorf("Writing key pair: %s", err)
	}

	fmt.Printf("Private key: %s\n", keyfile.Path())
	fmt.Printf("Public key:  %s\n", keyfile.PublicPath())
	fmt.Printf("Signer:      %s\n", keys.PublicKeyHex(&key.PublicKey))

	return nil
}
