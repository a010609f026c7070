package main

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/greyhatharold/QGit/internal/domain"
)

var allCmd = &cobra.Command{
	Use:   "all [path]",
	Short: "Stage and commit everything, optionally pushing to origin",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo(args)
		if err != nil {
			return err
		}
		push := cfg.GetBool("push")
		err = repo.All(cmd.Context(), cfg.GetString("message"), push)
		if errors.Is(err, domain.ErrNothingToCommit) {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing to commit, working tree clean.")
			return nil
		}
		if err != nil {
			return err
		}
		msg := "Changes committed"
		if push {
			msg = "Changes committed and pushed to origin"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", successStyle.Render("✓"), msg)
		return nil
	},
}

func init() {
	allCmd.Flags().StringP("message", "m", "", "Commit message (default \"Automated commit\")")
	allCmd.Flags().BoolP("push", "p", false, "Push to origin after committing")
	rootCmd.AddCommand(allCmd)
}
