package domain

import (
	"sort"
	"strings"
	"time"
)

// ScanFinding is one risky file. Path is slash-separated and relative to the
// scanned root.
type ScanFinding struct {
	Path      string       `toml:"path"`
	Category  RiskCategory `toml:"category"`
	Pattern   string       `toml:"pattern"`
	Size      int64        `toml:"size"`
	Tracked   bool         `toml:"tracked"`
	SizeBased bool         `toml:"size_based,omitempty"`
}

// IgnoreLine returns the .gitignore line that would exclude this finding.
// Size-based matches recommend the anchored path since the glob alone would
// exclude small files too.
func (f ScanFinding) IgnoreLine() string {
	if f.SizeBased {
		return "/" + EscapeIgnorePath(f.Path)
	}
	return f.Pattern
}

// EscapeIgnorePath quotes a literal slash path for use in a .gitignore line:
// glob metacharacters and backslashes get a backslash, and so do trailing
// spaces, which git would otherwise strip.
func EscapeIgnorePath(p string) string {
	var b strings.Builder
	b.Grow(len(p) + 4)
	for _, r := range p {
		switch r {
		case '\\', '*', '?', '[':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	escaped := b.String()

	trimmed := strings.TrimRight(escaped, " ")
	if n := len(escaped) - len(trimmed); n > 0 {
		escaped = trimmed + strings.Repeat("\\ ", n)
	}
	return escaped
}

// SkippedFile records a file the scan could not inspect.
type SkippedFile struct {
	Path   string `toml:"path"`
	Reason string `toml:"reason"`
}

// ScanResult aggregates the findings of one scan. It is built by the
// scanner and treated as read-only afterwards.
type ScanResult struct {
	Root         string
	Findings     map[RiskCategory][]ScanFinding
	TotalFiles   int
	TotalMatched int
	Skipped      []SkippedFile
	ScannedAt    time.Time
	Duration     time.Duration
}

// NewScanResult creates an empty result for root.
func NewScanResult(root string) *ScanResult {
	return &ScanResult{
		Root:      root,
		Findings:  make(map[RiskCategory][]ScanFinding),
		ScannedAt: time.Now(),
	}
}

// Add records a finding under its category.
func (r *ScanResult) Add(f ScanFinding) {
	r.Findings[f.Category] = append(r.Findings[f.Category], f)
	r.TotalMatched++
}

// Skip records a file that could not be inspected.
func (r *ScanResult) Skip(path, reason string) {
	r.Skipped = append(r.Skipped, SkippedFile{Path: path, Reason: reason})
}

// Sort orders every category's findings and the skipped list by path.
func (r *ScanResult) Sort() {
	for c := range r.Findings {
		list := r.Findings[c]
		sort.Slice(list, func(i, j int) bool { return list[i].Path < list[j].Path })
	}
	sort.Slice(r.Skipped, func(i, j int) bool { return r.Skipped[i].Path < r.Skipped[j].Path })
}

// Empty reports whether nothing was matched.
func (r *ScanResult) Empty() bool {
	return r.TotalMatched == 0
}

// Categories returns the categories with at least one finding, in priority order.
func (r *ScanResult) Categories() []RiskCategory {
	var cats []RiskCategory
	for _, c := range AllCategories() {
		if len(r.Findings[c]) > 0 {
			cats = append(cats, c)
		}
	}
	return cats
}

// CategorySize returns the cumulative size of a category's findings.
func (r *ScanResult) CategorySize(c RiskCategory) int64 {
	var total int64
	for _, f := range r.Findings[c] {
		total += f.Size
	}
	return total
}

// AllFindings returns every finding ordered by category priority, then path.
func (r *ScanResult) AllFindings() []ScanFinding {
	var all []ScanFinding
	for _, c := range r.Categories() {
		all = append(all, r.Findings[c]...)
	}
	return all
}

// TrackedFindings returns the findings already under version control.
func (r *ScanResult) TrackedFindings() []ScanFinding {
	var tracked []ScanFinding
	for _, f := range r.AllFindings() {
		if f.Tracked {
			tracked = append(tracked, f)
		}
	}
	return tracked
}

// PathsByCategory returns category -> path list, the shape compared when
// checking that two scans agree.
func (r *ScanResult) PathsByCategory() map[RiskCategory][]string {
	out := make(map[RiskCategory][]string, len(r.Findings))
	for c, list := range r.Findings {
		paths := make([]string, len(list))
		for i, f := range list {
			paths[i] = f.Path
		}
		sort.Strings(paths)
		out[c] = paths
	}
	return out
}
