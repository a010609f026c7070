package domain

import (
	"fmt"
	"path"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// RiskPattern maps a gitignore-style glob to the category it flags.
// A pattern with MinSize > 0 only matches files at least that large.
type RiskPattern struct {
	Glob        string
	Category    RiskCategory
	MinSize     int64
	Description string

	matcher gitignore.Pattern
}

// NewPattern validates and compiles a pattern.
func NewPattern(glob string, category RiskCategory, minSize int64, description string) (RiskPattern, error) {
	p := RiskPattern{
		Glob:        strings.TrimSpace(glob),
		Category:    category,
		MinSize:     minSize,
		Description: description,
	}
	if err := p.Validate(); err != nil {
		return RiskPattern{}, err
	}
	p.matcher = gitignore.ParsePattern(p.Glob, nil)
	return p, nil
}

// Validate checks the pattern without compiling it.
func (p RiskPattern) Validate() error {
	switch {
	case p.Glob == "":
		return fmt.Errorf("pattern glob is empty")
	case strings.HasPrefix(p.Glob, "!"):
		return fmt.Errorf("pattern %q: negated globs are not allowed in a risk table", p.Glob)
	case strings.HasPrefix(p.Glob, "#"):
		return fmt.Errorf("pattern %q: glob must not start with '#'", p.Glob)
	case !p.Category.Valid():
		return fmt.Errorf("pattern %q: invalid category %d", p.Glob, int(p.Category))
	case p.MinSize < 0:
		return fmt.Errorf("pattern %q: min_size must not be negative", p.Glob)
	}
	if _, err := path.Match(strings.Trim(p.Glob, "/"), ""); err != nil {
		return fmt.Errorf("pattern %q: %w", p.Glob, err)
	}
	return nil
}

// SizeBased reports whether the pattern only applies above a size threshold.
func (p RiskPattern) SizeBased() bool {
	return p.MinSize > 0
}

// Matches reports whether the slash-separated relPath of a file with the
// given size is flagged by this pattern. Globs follow gitignore rules: a glob
// without a slash matches the name at any depth.
func (p RiskPattern) Matches(relPath string, size int64) bool {
	if p.MinSize > 0 && size < p.MinSize {
		return false
	}
	m := p.matcher
	if m == nil {
		m = gitignore.ParsePattern(p.Glob, nil)
	}
	return m.Match(strings.Split(relPath, "/"), false) == gitignore.Exclude
}

// Equal compares the externally visible fields.
func (p RiskPattern) Equal(o RiskPattern) bool {
	return p.Glob == o.Glob && p.Category == o.Category && p.MinSize == o.MinSize
}
