package main

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/greyhatharold/QGit/internal/vcs"
)

var firstCmd = &cobra.Command{
	Use:   "first [path]",
	Short: "Initialize a repository with a README and an initial commit",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo(args)
		if err != nil {
			return err
		}
		err = repo.First(cmd.Context())
		if errors.Is(err, vcs.ErrAlreadyInitialized) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s is already a git repository.\n", repo.Root())
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s Initialized repository in %s\n", successStyle.Render("✓"), repo.Root())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(firstCmd)
}
