package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/greyhatharold/QGit/internal/ignorefile"
	"github.com/greyhatharold/QGit/internal/vcs"
	"github.com/greyhatharold/QGit/rules"
)

var reverseCmd = &cobra.Command{
	Use:   "reverse [path]",
	Short: "Untrack committed files that match the risk rules or given patterns",
	Long: "reverse removes tracked files from the index and keeps them on disk.\n" +
		"Without --patterns it uses the same rules as benedict.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo(args)
		if err != nil {
			return err
		}

		var match vcs.MatchFunc
		patterns := cfg.GetStringSlice("patterns")
		if len(patterns) > 0 {
			if match, err = rules.GlobMatcher(patterns); err != nil {
				return err
			}
		} else {
			table, err := loadTable()
			if err != nil {
				return err
			}
			match = table.Matches
		}

		result, err := repo.Reverse(cmd.Context(), match)
		if err != nil {
			return err
		}
		if len(patterns) > 0 && cfg.GetBool("add-ignore") {
			path := ignorePath()
			if path == "" {
				path = filepath.Join(repo.Root(), ".gitignore")
			}
			res, err := ignorefile.Update(path, ignorefile.Patterns(patterns...))
			if err != nil {
				return err
			}
			if res.Changed() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s Added %d patterns to %s\n", successStyle.Render("✓"), len(res.Added), res.Path)
			}
		}
		if len(result.Succeeded) == 0 && len(result.Failed) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No tracked files match.")
			return nil
		}
		printUntrack(cmd.OutOrStdout(), result)
		return nil
	},
}

func init() {
	reverseCmd.Flags().StringSlice("patterns", nil, "Gitignore-style patterns to untrack instead of the risk rules")
	reverseCmd.Flags().Bool("add-ignore", false, "Also append --patterns to the ignore file")
	rootCmd.AddCommand(reverseCmd)
}
