package main

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/greyhatharold/QGit/internal/security"
)

var decryptCmd = &cobra.Command{
	Use:   "decrypt <input> <output>",
	Short: "Decrypt a report written with benedict --output --passphrase",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		passphrase := cfg.GetString("passphrase")
		if passphrase == "" {
			return errors.WithHint(security.ErrPassphraseRequired, "pass --passphrase or set QGIT_PASSPHRASE")
		}
		if err := security.DecryptFile(args[0], args[1], passphrase); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Decrypted report written to %s\n", args[1])
		return nil
	},
}

func init() {
	decryptCmd.Flags().String("passphrase", "", "Passphrase the report was encrypted with")
	rootCmd.AddCommand(decryptCmd)
}
