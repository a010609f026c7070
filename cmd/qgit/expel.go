package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var expelCmd = &cobra.Command{
	Use:   "expel [path]",
	Short: "Untrack every file while keeping it on disk",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo(args)
		if err != nil {
			return err
		}
		if !cfg.GetBool("yes") {
			ok, err := askYesNo(cmd.InOrStdin(), cmd.OutOrStdout(),
				fmt.Sprintf("Remove every file in %s from the index?", repo.Root()))
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "No changes made.")
				return nil
			}
		}

		result, err := repo.Expel(cmd.Context())
		if err != nil {
			return err
		}
		printUntrack(cmd.OutOrStdout(), result)
		return nil
	},
}

func init() {
	expelCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
	rootCmd.AddCommand(expelCmd)
}
