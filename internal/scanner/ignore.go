package scanner

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

const (
	gitDirName    = ".git"
	gitignoreFile = ".gitignore"
)

// ignoreRules accumulates the ignore patterns in force while walking a tree.
// Patterns are kept relative to the work-tree top; prefix is the scan root's
// position below it, so a scan of a subdirectory still honours the rules of
// its parents.
type ignoreRules struct {
	prefix   []string
	patterns []gitignore.Pattern
	matcher  gitignore.Matcher
}

// newIgnoreRules loads the rules that apply to root before the walk starts:
// the repository's info/exclude file and the .gitignore of every directory
// from top down to root's parent. An empty top, or one that does not
// contain root, makes root the top.
func newIgnoreRules(top, root string) (*ignoreRules, error) {
	r := &ignoreRules{}
	rel, ok := below(top, root)
	if top == "" || !ok {
		top, rel = root, ""
	}
	if rel != "" {
		r.prefix = strings.Split(rel, "/")
	}

	if err := r.load(infoExcludePath(top), nil); err != nil {
		return nil, err
	}
	for i := range r.prefix {
		dir := r.prefix[:i]
		path := filepath.Join(top, filepath.Join(dir...), gitignoreFile)
		if err := r.load(path, r.domain(dir)); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// enter loads the .gitignore of the directory at relDir ("" for the scan root).
func (r *ignoreRules) enter(root, relDir string) error {
	var parts []string
	if relDir != "" {
		parts = strings.Split(relDir, "/")
	}
	return r.load(filepath.Join(root, filepath.FromSlash(relDir), gitignoreFile), r.domain(r.prefix, parts...))
}

// domain joins path segments into a fresh slice so prefix is never shared.
func (r *ignoreRules) domain(base []string, more ...string) []string {
	d := make([]string, 0, len(base)+len(more))
	return append(append(d, base...), more...)
}

func (r *ignoreRules) load(path string, domain []string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	before := len(r.patterns)
	s := bufio.NewScanner(f)
	for s.Scan() {
		line := strings.TrimRight(s.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		r.patterns = append(r.patterns, gitignore.ParsePattern(line, domain))
	}
	if err := s.Err(); err != nil {
		return err
	}
	if len(r.patterns) != before {
		r.matcher = gitignore.NewMatcher(r.patterns)
	}
	return nil
}

// ignored reports whether relPath, relative to the scan root, is excluded by
// the rules seen so far.
func (r *ignoreRules) ignored(relPath string, isDir bool) bool {
	if r == nil || r.matcher == nil {
		return false
	}
	return r.matcher.Match(r.domain(r.prefix, strings.Split(relPath, "/")...), isDir)
}

// findWorkTree returns the closest directory at or above dir that holds a
// .git entry, or "" when there is none.
func findWorkTree(dir string) string {
	for {
		if _, err := os.Lstat(filepath.Join(dir, gitDirName)); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// below returns root relative to top as a slash path, and false when root is
// not top or one of its descendants. Symlinks are resolved on both sides
// since git reports the physical top-level path.
func below(top, root string) (string, bool) {
	if top == "" {
		return "", false
	}
	if t, err := filepath.EvalSymlinks(top); err == nil {
		top = t
	}
	if r, err := filepath.EvalSymlinks(root); err == nil {
		root = r
	}
	rel, err := filepath.Rel(top, root)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	if rel == "." {
		return "", true
	}
	return filepath.ToSlash(rel), true
}

// infoExcludePath locates info/exclude in the git directory of top. A .git
// file (linked work trees, submodules) points at the real git directory,
// and a commondir file in there points at the shared one.
func infoExcludePath(top string) string {
	gitDir := filepath.Join(top, gitDirName)
	if data, err := os.ReadFile(gitDir); err == nil {
		if target, ok := strings.CutPrefix(strings.TrimSpace(string(data)), "gitdir:"); ok {
			gitDir = resolveFrom(top, strings.TrimSpace(target))
			if common, err := os.ReadFile(filepath.Join(gitDir, "commondir")); err == nil {
				gitDir = resolveFrom(gitDir, strings.TrimSpace(string(common)))
			}
		}
	}
	return filepath.Join(gitDir, "info", "exclude")
}

func resolveFrom(base, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(base, p)
}
