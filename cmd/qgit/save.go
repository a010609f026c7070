package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var saveCmd = &cobra.Command{
	Use:   "save [path]",
	Short: "Commit every change, then pull and push",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo(args)
		if err != nil {
			return err
		}
		if err := repo.Save(cmd.Context(), cfg.GetString("message")); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s Saved and synchronized\n", successStyle.Render("✓"))
		return nil
	},
}

func init() {
	saveCmd.Flags().StringP("message", "m", "", "Commit message (default \"Automated commit\")")
	rootCmd.AddCommand(saveCmd)
}
