package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/greyhatharold/QGit/internal/report"
	"github.com/greyhatharold/QGit/internal/scanner"
	"github.com/greyhatharold/QGit/internal/vcs"
)

var (
	dimStyle     = lipgloss.NewStyle().Faint(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")) // green
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")) // red
	pathStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("4")) // blue
	counterStyle = lipgloss.NewStyle().Faint(true)
)

// newProgressWriter returns a ProgressFunc that keeps a single status line
// on w while the scan runs.
func newProgressWriter(w io.Writer) scanner.ProgressFunc {
	return func(e scanner.ProgressEvent) {
		counter := counterStyle.Render(fmt.Sprintf("[%d files, %d matched]", e.Files, e.Matched))
		if !e.Done {
			fmt.Fprintf(w, "\r  %s Scanning %s", counter, pathStyle.Render(shortPath(e.Path, 48)))
			return
		}
		fmt.Fprintf(w, "\r  %s %s\n", counter, successStyle.Render("✓"))
	}
}

// shortPath keeps the tail of p so the status line stays on one row.
func shortPath(p string, max int) string {
	if len(p) <= max {
		return p
	}
	return "…" + p[len(p)-max+1:]
}

// printUntrack writes an untrack summary followed by one line per failure.
func printUntrack(w io.Writer, r *vcs.UntrackResult) {
	mark := successStyle.Render("✓")
	fmt.Fprintf(w, "%s Untracked %s (kept on disk)\n", mark, files(len(r.Succeeded)))
	for _, p := range r.Succeeded {
		fmt.Fprintf(w, "  - %s\n", p)
	}
	if len(r.Failed) == 0 {
		return
	}
	fmt.Fprintf(w, "%s Failed to untrack %s:\n", errorStyle.Render("✗"), files(len(r.Failed)))
	for _, f := range r.Failed {
		fmt.Fprintf(w, "  - %s %s\n", f.Path, dimStyle.Render(f.Reason))
	}
}

func sizeLabel(n int64) string {
	return dimStyle.Render(report.FormatSize(n))
}

func files(n int) string {
	if n == 1 {
		return "1 file"
	}
	return fmt.Sprintf("%d files", n)
}
