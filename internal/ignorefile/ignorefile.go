// Package ignorefile appends recommended patterns to a .gitignore file.
// Updates are additive: existing lines are never removed or reordered, and
// lines already present are not added again.
package ignorefile

import (
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/moby/sys/atomicwriter"

	"github.com/greyhatharold/QGit/internal/domain"
	"github.com/greyhatharold/QGit/internal/util"
)

// Markers delimiting a block written by qgit.
const (
	BlockStart = "# >>> qgit auto-generated (benedict) >>>"
	BlockEnd   = "# <<< qgit auto-generated <<<"
)

const defaultMode fs.FileMode = 0o644

// Section is a group of ignore lines written under an optional title comment.
type Section struct {
	Title string
	Lines []string
}

// Result describes what an update did.
type Result struct {
	Path     string
	Added    []string
	Existing int
}

// Changed reports whether the file was rewritten.
func (r *Result) Changed() bool { return len(r.Added) > 0 }

// Recommend groups the ignore lines of a scan result by category, in
// priority order. Passing categories restricts the output to those.
func Recommend(r *domain.ScanResult, only ...domain.RiskCategory) []Section {
	allowed := make(map[domain.RiskCategory]bool, len(only))
	for _, c := range only {
		allowed[c] = true
	}

	seen := make(map[string]bool)
	var sections []Section
	for _, c := range r.Categories() {
		if len(only) > 0 && !allowed[c] {
			continue
		}
		s := Section{Title: c.Emoji() + " " + c.Label()}
		for _, f := range r.Findings[c] {
			line := f.IgnoreLine()
			if seen[line] {
				continue
			}
			seen[line] = true
			s.Lines = append(s.Lines, line)
		}
		if len(s.Lines) > 0 {
			sections = append(sections, s)
		}
	}
	return sections
}

// Patterns wraps plain patterns in a single untitled section.
func Patterns(lines ...string) []Section {
	return []Section{{Lines: lines}}
}

// Preview merges sections into existing content and returns the new content
// with the lines that were added. When nothing is new, existing is returned
// unchanged and added is empty.
func Preview(existing string, sections []Section) (string, []string) {
	present := make(map[string]bool)
	for _, line := range strings.Split(existing, "\n") {
		present[strings.TrimRight(line, " \t\r")] = true
	}

	var block strings.Builder
	var added []string
	for _, s := range sections {
		var fresh []string
		for _, line := range s.Lines {
			line = strings.TrimSpace(line)
			if line == "" || present[line] {
				continue
			}
			present[line] = true
			fresh = append(fresh, line)
		}
		if len(fresh) == 0 {
			continue
		}
		if s.Title != "" {
			fmt.Fprintf(&block, "# %s\n", s.Title)
		}
		for _, line := range fresh {
			block.WriteString(line + "\n")
		}
		added = append(added, fresh...)
	}
	if len(added) == 0 {
		return existing, nil
	}

	var b strings.Builder
	b.WriteString(existing)
	if existing != "" {
		if !strings.HasSuffix(existing, "\n") {
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	b.WriteString(BlockStart + "\n")
	b.WriteString(block.String())
	b.WriteString(BlockEnd + "\n")
	return b.String(), added
}

// Update merges sections into the file at path, creating it if needed. The
// file is replaced atomically and keeps its permissions. Any failure is a
// domain.ErrFileOperation and leaves the original file untouched.
func Update(path string, sections []Section) (*Result, error) {
	mode := defaultMode
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if info, statErr := os.Stat(path); statErr == nil {
			mode = info.Mode().Perm()
		}
	case errors.Is(err, fs.ErrNotExist):
		data = nil
	default:
		return nil, domain.FileOperationError(path, err)
	}

	existing := string(data)
	merged, added := Preview(existing, sections)
	result := &Result{Path: path, Added: added, Existing: countLines(existing)}
	if len(added) == 0 {
		return result, nil
	}

	if data != nil {
		current, err := util.ContentHash(path)
		if err != nil {
			return nil, domain.FileOperationError(path, err)
		}
		if current != util.BytesHash(data) {
			return nil, domain.FileOperationError(path, errors.New("file changed while it was being updated"))
		}
	}

	if err := atomicwriter.WriteFile(path, []byte(merged), mode); err != nil {
		return nil, domain.FileOperationError(path, err)
	}
	return result, nil
}

// UpdatePatterns writes the recommendations for a scan result to path.
func UpdatePatterns(r *domain.ScanResult, path string, only ...domain.RiskCategory) (*Result, error) {
	return Update(path, Recommend(r, only...))
}

func countLines(s string) int {
	n := 0
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return n
}
