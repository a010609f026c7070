// Package report renders scan results for the terminal.
package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/greyhatharold/QGit/internal/domain"
)

var sizeUnits = []string{"B", "KB", "MB", "GB"}

// FormatSize renders a byte count with 1024-based units and two decimals.
// Anything of 1024 GB and above is shown in TB.
func FormatSize(size int64) string {
	v := float64(size)
	for _, unit := range sizeUnits {
		if v < 1024 {
			return fmt.Sprintf("%.2f %s", v, unit)
		}
		v /= 1024
	}
	return fmt.Sprintf("%.2f TB", v)
}

// styles holds the render functions for each part of a report. The zero
// value renders plain text.
type styles struct {
	title    func(...string) string
	heading  func(...string) string
	path     func(...string) string
	dim      func(...string) string
	tracked  func(...string) string
	warning  func(...string) string
	positive func(...string) string
}

func plain(s ...string) string { return strings.Join(s, " ") }

var plainStyles = styles{
	title: plain, heading: plain, path: plain, dim: plain,
	tracked: plain, warning: plain, positive: plain,
}

var terminalStyles = styles{
	title:    lipgloss.NewStyle().Bold(true).Render,
	heading:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("3")).Render, // yellow
	path:     lipgloss.NewStyle().Render,
	dim:      lipgloss.NewStyle().Faint(true).Render,
	tracked:  lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Render, // red
	warning:  lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Render,
	positive: lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Render, // green
}

// Format renders a plain-text report. Categories appear in priority order,
// files within a category by path.
func Format(r *domain.ScanResult) string {
	return render(r, plainStyles)
}

// Styled renders the same report as Format with terminal colours.
func Styled(r *domain.ScanResult) string {
	return render(r, terminalStyles)
}

func render(r *domain.ScanResult, st styles) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", st.title("Risky file scan of "+r.Root))
	fmt.Fprintf(&b, "%s\n", st.dim(fmt.Sprintf("Scanned %s, %d matched", plural(r.TotalFiles, "file"), r.TotalMatched)))

	if r.Empty() {
		fmt.Fprintf(&b, "\n%s\n", st.positive("No risky files found."))
	}

	for _, c := range r.Categories() {
		findings := r.Findings[c]
		heading := fmt.Sprintf("%s %s (%s, %s)", c.Emoji(), c.Label(), plural(len(findings), "file"), FormatSize(r.CategorySize(c)))
		fmt.Fprintf(&b, "\n%s\n", st.heading(heading))
		for _, f := range findings {
			line := fmt.Sprintf("  - %s %s", st.path(f.Path), st.dim("("+FormatSize(f.Size)+")"))
			if f.Tracked {
				line += " " + st.tracked("[tracked]")
			}
			b.WriteString(line + "\n")
		}
	}

	if len(r.Skipped) > 0 {
		fmt.Fprintf(&b, "\n%s\n", st.warning(fmt.Sprintf("Skipped %s:", plural(len(r.Skipped), "file"))))
		for _, s := range r.Skipped {
			fmt.Fprintf(&b, "  - %s: %s\n", s.Path, st.dim(s.Reason))
		}
	}

	if tracked := len(r.TrackedFindings()); tracked > 0 {
		fmt.Fprintf(&b, "\n%s\n", st.warning(fmt.Sprintf("%s already tracked by git.", plural(tracked, "risky file"))))
	}
	return b.String()
}

// Recommendations returns the ignore lines covering every finding, in report
// order and without duplicates.
func Recommendations(r *domain.ScanResult, only ...domain.RiskCategory) []string {
	allowed := func(domain.RiskCategory) bool { return true }
	if len(only) > 0 {
		set := make(map[domain.RiskCategory]bool, len(only))
		for _, c := range only {
			set[c] = true
		}
		allowed = func(c domain.RiskCategory) bool { return set[c] }
	}

	seen := make(map[string]bool)
	var lines []string
	for _, f := range r.AllFindings() {
		if !allowed(f.Category) {
			continue
		}
		line := f.IgnoreLine()
		if seen[line] {
			continue
		}
		seen[line] = true
		lines = append(lines, line)
	}
	return lines
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
