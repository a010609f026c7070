package main

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/greyhatharold/QGit/internal/domain"
)

var commitCmd = &cobra.Command{
	Use:   "commit [path]",
	Short: "Stage every change and commit it",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo(args)
		if err != nil {
			return err
		}
		err = repo.QuickCommit(cmd.Context(), cfg.GetString("message"))
		if errors.Is(err, domain.ErrNothingToCommit) {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing to commit, working tree clean.")
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s Changes committed\n", successStyle.Render("✓"))
		return nil
	},
}

func init() {
	commitCmd.Flags().StringP("message", "m", "", "Commit message (default \"Automated commit\")")
	rootCmd.AddCommand(commitCmd)
}
