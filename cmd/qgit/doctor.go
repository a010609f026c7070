package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/greyhatharold/QGit/internal/doctor"
)

var warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3")) // yellow

var doctorCmd = &cobra.Command{
	Use:   "doctor [path]",
	Short: "Check repository health and risky-file hygiene",
	Long: "doctor checks the current branch, remotes and uncommitted work, then\n" +
		"scans for risky files that are committed or not covered by the ignore\n" +
		"file. With --fix it appends the missing ignore rules.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo(args)
		if err != nil {
			return err
		}
		table, err := loadTable()
		if err != nil {
			return err
		}

		rep, err := doctor.Run(cmd.Context(), repo, doctor.Options{
			Table:      table,
			IgnorePath: ignorePath(),
			Fix:        cfg.GetBool("fix"),
			Logger:     logger,
		})
		if err != nil {
			return err
		}
		printDoctor(cmd.OutOrStdout(), rep)
		if !rep.Healthy() {
			return errors.WithHint(errors.Wrapf(doctor.ErrUnhealthy, "%d checks failed", rep.Count(doctor.Fail)),
				"follow the hints above, then run 'qgit doctor' again")
		}
		return nil
	},
}

func init() {
	doctorCmd.Flags().Bool("fix", false, "Append ignore rules for risky files that are not ignored")
	rootCmd.AddCommand(doctorCmd)
}

func printDoctor(w io.Writer, rep *doctor.Report) {
	if rep.Fixed != nil && rep.Fixed.Changed() {
		fmt.Fprintf(w, "%s Added %d patterns to %s\n", successStyle.Render("✓"), len(rep.Fixed.Added), rep.Fixed.Path)
	}
	for _, r := range rep.Results {
		var mark string
		switch r.Status {
		case doctor.OK:
			mark = successStyle.Render("✓")
		case doctor.Warn:
			mark = warnStyle.Render("!")
		default:
			mark = errorStyle.Render("✗")
		}
		fmt.Fprintf(w, "%s %-20s %s\n", mark, r.Name, r.Detail)
		if r.Status != doctor.OK && r.Hint != "" {
			fmt.Fprintf(w, "  %s\n", dimStyle.Render("→ "+r.Hint))
		}
	}
	fmt.Fprintf(w, "\n%d ok, %d warnings, %d failed\n",
		rep.Count(doctor.OK), rep.Count(doctor.Warn), rep.Count(doctor.Fail))
}
