package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/greyhatharold/QGit/internal/benedict"
	"github.com/greyhatharold/QGit/internal/domain"
	"github.com/greyhatharold/QGit/internal/report"
	"github.com/greyhatharold/QGit/internal/scanner"
	"github.com/greyhatharold/QGit/internal/security"
	"github.com/greyhatharold/QGit/internal/tui"
)

// selectCategories runs the category picker. Tests replace it.
var selectCategories = tui.SelectCategories

var benedictCmd = &cobra.Command{
	Use:   "benedict [path]",
	Short: "Find risky files, extend .gitignore and untrack what is committed",
	Long: "benedict scans the repository for credentials, keys, env files, logs,\n" +
		"caches and other files that should not be committed. It shows a report,\n" +
		"asks before changing anything, appends ignore rules and, with --arnold,\n" +
		"removes already tracked matches from the index.",
	Args: cobra.MaximumNArgs(1),
	RunE: runBenedict,
}

func init() {
	f := benedictCmd.Flags()
	f.Bool("arnold", false, "Apply everything without asking and untrack committed matches")
	f.BoolP("interactive", "i", false, "Choose which categories to act on")
	f.StringP("output", "o", "", "Also write the findings as a TOML report")
	f.String("passphrase", "", "Encrypt the --output report with this passphrase")
	f.Bool("no-ignore-rules", false, "Report files already excluded by .gitignore")
	f.StringSlice("exclude", nil, "Extra directory names to skip")
	f.Bool("progress", true, "Show scan progress on stderr")
	rootCmd.AddCommand(benedictCmd)
}

func runBenedict(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	repo, err := openRepo(args)
	if err != nil {
		return err
	}
	table, err := loadTable()
	if err != nil {
		return err
	}

	scanOpts := []scanner.Option{scanner.WithIgnoreRules(!cfg.GetBool("no-ignore-rules"))}
	if dirs := cfg.GetStringSlice("exclude"); len(dirs) > 0 {
		scanOpts = append(scanOpts, scanner.WithExcludeDirs(dirs...))
	}
	if cfg.GetBool("progress") {
		scanOpts = append(scanOpts, scanner.WithProgress(newProgressWriter(cmd.ErrOrStderr())))
	}

	shown := false
	showReport := func(r *domain.ScanResult) {
		if !shown {
			fmt.Fprint(out, report.Styled(r))
			shown = true
		}
	}

	opts := benedict.Options{
		Table:       table,
		IgnorePath:  ignorePath(),
		Auto:        cfg.GetBool("arnold"),
		Logger:      logger,
		ScanOptions: scanOpts,
	}
	ask := cleanupPrompt(cmd.InOrStdin(), out)
	opts.Confirm = func(ctx context.Context, r *domain.ScanResult) (bool, error) {
		showReport(r)
		return ask(ctx, r)
	}
	if cfg.GetBool("interactive") {
		opts.Select = func(ctx context.Context, r *domain.ScanResult) ([]domain.RiskCategory, error) {
			return selectCategories(ctx, r, cmd.InOrStdin(), out)
		}
	}

	outcome, runErr := benedict.Run(ctx, repo, opts)
	if outcome == nil {
		return runErr
	}
	showReport(outcome.Result)

	if path := cfg.GetString("output"); path != "" {
		if err := security.ExportReport(outcome.Result, Version, path, cfg.GetString("passphrase")); err != nil {
			return err
		}
		fmt.Fprintf(out, "Report written to %s\n", path)
	}
	if runErr != nil {
		return runErr
	}

	printOutcome(out, outcome)
	return nil
}

func printOutcome(w io.Writer, o *benedict.Outcome) {
	switch o.State {
	case benedict.Declined:
		fmt.Fprintln(w, "No changes made.")
	case benedict.IgnoreUpdated, benedict.Untracked:
		if o.Ignore.Changed() {
			fmt.Fprintf(w, "%s Added %d patterns to %s\n", successStyle.Render("✓"), len(o.Ignore.Added), o.Ignore.Path)
		} else {
			fmt.Fprintf(w, "%s already covers every finding\n", o.Ignore.Path)
		}
		if o.Untrack != nil {
			printUntrack(w, o.Untrack)
		}
		if len(o.Pending) > 0 {
			fmt.Fprintf(w, "\n%d matching files are still tracked:\n", len(o.Pending))
			for _, p := range o.Pending {
				fmt.Fprintf(w, "  - %s\n", p)
			}
			fmt.Fprintln(w, "Tip: run 'qgit reverse' or rerun with --arnold to untrack them.")
		}
	}
}
