// Package rules provides the risk pattern tables used by the scanner. The
// built-in table is embedded TOML; users can append their own tables. A
// table is an immutable ordered list where the first matching pattern wins.
package rules

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"

	"github.com/greyhatharold/QGit/internal/domain"
)

// maxTableSize is the largest rule file Load accepts (1MB).
const maxTableSize = 1 * 1024 * 1024

//go:embed default.toml
var defaultTable []byte

// Table is an ordered, read-only list of risk patterns.
type Table struct {
	patterns []domain.RiskPattern
}

type patternEntry struct {
	Glob        string `toml:"glob"`
	Category    string `toml:"category"`
	MinSize     int64  `toml:"min_size"`
	Description string `toml:"description"`
}

type tableFile struct {
	Patterns []patternEntry `toml:"pattern"`
}

// NewTable builds a table from already validated patterns. Order is kept.
func NewTable(patterns ...domain.RiskPattern) Table {
	return Table{patterns: append([]domain.RiskPattern(nil), patterns...)}
}

// Default returns the built-in table.
func Default() Table {
	t, err := Parse(defaultTable)
	if err != nil {
		panic(fmt.Sprintf("rules: embedded default table is invalid: %v", err))
	}
	return t
}

// Parse decodes a TOML table. Unknown keys are rejected.
func Parse(data []byte) (Table, error) {
	var f tableFile
	md, err := toml.Decode(string(data), &f)
	if err != nil {
		return Table{}, fmt.Errorf("parsing rule table: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Table{}, fmt.Errorf("parsing rule table: unknown keys %s", strings.Join(keys, ", "))
	}

	patterns := make([]domain.RiskPattern, 0, len(f.Patterns))
	for i, e := range f.Patterns {
		category, err := domain.ParseCategory(e.Category)
		if err != nil {
			return Table{}, fmt.Errorf("pattern %d (%q): %w", i+1, e.Glob, err)
		}
		p, err := domain.NewPattern(e.Glob, category, e.MinSize, e.Description)
		if err != nil {
			return Table{}, fmt.Errorf("pattern %d: %w", i+1, err)
		}
		patterns = append(patterns, p)
	}
	return Table{patterns: patterns}, nil
}

// Load reads a TOML table from path.
func Load(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return Table{}, fmt.Errorf("opening rule table: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxTableSize+1))
	if err != nil {
		return Table{}, fmt.Errorf("reading rule table: %w", err)
	}
	if len(data) > maxTableSize {
		return Table{}, fmt.Errorf("rule table %s exceeds %d bytes", path, maxTableSize)
	}
	return Parse(data)
}

// Merge returns base followed by the patterns of extra that base does not
// already contain. Base patterns keep precedence.
func Merge(base, extra Table) Table {
	merged := append([]domain.RiskPattern(nil), base.patterns...)
	for _, p := range extra.patterns {
		dup := false
		for _, existing := range merged {
			if existing.Equal(p) {
				dup = true
				break
			}
		}
		if !dup {
			merged = append(merged, p)
		}
	}
	return Table{patterns: merged}
}

// Patterns returns a copy of the patterns in declaration order.
func (t Table) Patterns() []domain.RiskPattern {
	return append([]domain.RiskPattern(nil), t.patterns...)
}

// Len returns the number of patterns.
func (t Table) Len() int { return len(t.patterns) }

// Match returns the first pattern that flags relPath, if any.
func (t Table) Match(relPath string, size int64) (domain.RiskPattern, bool) {
	for _, p := range t.patterns {
		if p.Matches(relPath, size) {
			return p, true
		}
	}
	return domain.RiskPattern{}, false
}

// Matches reports whether any pattern flags relPath.
func (t Table) Matches(relPath string, size int64) bool {
	_, ok := t.Match(relPath, size)
	return ok
}

// Only returns a table restricted to the given categories.
func (t Table) Only(categories ...domain.RiskCategory) Table {
	keep := make(map[domain.RiskCategory]bool, len(categories))
	for _, c := range categories {
		keep[c] = true
	}
	var out []domain.RiskPattern
	for _, p := range t.patterns {
		if keep[p.Category] {
			out = append(out, p)
		}
	}
	return Table{patterns: out}
}

// GlobMatcher compiles ad-hoc gitignore-style globs, as passed to
// "qgit reverse --patterns", into a match function.
func GlobMatcher(globs []string) (func(relPath string, size int64) bool, error) {
	var ps []gitignore.Pattern
	for _, g := range globs {
		g = strings.TrimSpace(g)
		if g == "" || strings.HasPrefix(g, "#") {
			continue
		}
		ps = append(ps, gitignore.ParsePattern(g, nil))
	}
	if len(ps) == 0 {
		return nil, fmt.Errorf("no usable patterns in %q", globs)
	}
	m := gitignore.NewMatcher(ps)
	return func(relPath string, _ int64) bool {
		return m.Match(strings.Split(relPath, "/"), false)
	}, nil
}
