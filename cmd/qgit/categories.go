package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/greyhatharold/QGit/internal/domain"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List risk categories and their rules",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := loadTable()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		showRules := cfg.GetBool("rules-detail")

		for _, c := range domain.AllCategories() {
			patterns := table.Only(c).Patterns()
			fmt.Fprintf(out, "%s %s %s\n", c.Emoji(), c.Label(),
				dimStyle.Render(fmt.Sprintf("(%s, %s, %d rules)", c, c.Sensitivity(), len(patterns))))
			if !showRules {
				continue
			}
			for _, p := range patterns {
				line := "  " + p.Glob
				if p.SizeBased() {
					line += " " + dimStyle.Render("min") + " " + sizeLabel(p.MinSize)
				}
				fmt.Fprintln(out, line)
			}
		}
		return nil
	},
}

func init() {
	categoriesCmd.Flags().BoolP("rules-detail", "r", false, "Print every rule under its category")
	rootCmd.AddCommand(categoriesCmd)
}
