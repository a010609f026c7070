// Package scanner walks a repository and classifies files against a risk
// pattern table.
package scanner

import (
	"context"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/greyhatharold/QGit/internal/domain"
	"github.com/greyhatharold/QGit/rules"
)

// DefaultExcludeDirs are directory names never descended into, at any depth.
var DefaultExcludeDirs = []string{
	".git", ".hg", ".svn",
	"node_modules", "vendor", "bower_components",
	"__pycache__", ".venv", "venv",
	".mypy_cache", ".pytest_cache", ".tox", ".gradle",
}

// progressEvery is how many files pass between two progress events.
const progressEvery = 100

// ProgressEvent describes how far a scan has come.
type ProgressEvent struct {
	Path    string
	Files   int
	Matched int
	Done    bool
}

// ProgressFunc is called every few files and once more with Done=true.
type ProgressFunc func(event ProgressEvent)

// StatFunc returns file information for an absolute path.
type StatFunc func(path string) (fs.FileInfo, error)

// Scanner classifies the files below a root directory. It holds no state
// between scans and can be reused.
type Scanner struct {
	table       rules.Table
	logger      *zap.Logger
	tracked     map[string]bool
	trackedDirs map[string]bool
	excludeDirs map[string]bool
	useIgnore   bool
	workTree    string
	progress    ProgressFunc
	stat        StatFunc
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(s *Scanner) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTracked marks the given slash-separated paths as tracked by version
// control. Tracked files are reported even when an ignore rule covers them.
func WithTracked(paths []string) Option {
	return func(s *Scanner) {
		s.tracked = make(map[string]bool, len(paths))
		s.trackedDirs = make(map[string]bool)
		for _, p := range paths {
			s.tracked[p] = true
			for dir := path.Dir(p); dir != "." && dir != "/"; dir = path.Dir(dir) {
				if s.trackedDirs[dir] {
					break
				}
				s.trackedDirs[dir] = true
			}
		}
	}
}

// WithExcludeDirs adds directory names to skip on top of DefaultExcludeDirs.
func WithExcludeDirs(names ...string) Option {
	return func(s *Scanner) {
		for _, n := range names {
			s.excludeDirs[n] = true
		}
	}
}

// WithIgnoreRules toggles honouring .gitignore files and .git/info/exclude.
// It is on by default.
func WithIgnoreRules(enabled bool) Option {
	return func(s *Scanner) { s.useIgnore = enabled }
}

// WithWorkTree sets the top of the git work tree containing the scan root,
// as reported by git. Without it the scanner looks for the closest .git
// entry above the root.
func WithWorkTree(top string) Option {
	return func(s *Scanner) { s.workTree = top }
}

// WithProgress registers a progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(s *Scanner) { s.progress = fn }
}

// WithStat replaces the per-file stat call.
func WithStat(fn StatFunc) Option {
	return func(s *Scanner) { s.stat = fn }
}

// New creates a Scanner for the given pattern table.
func New(table rules.Table, opts ...Option) *Scanner {
	s := &Scanner{
		table:       table,
		logger:      zap.NewNop(),
		excludeDirs: make(map[string]bool, len(DefaultExcludeDirs)),
		useIgnore:   true,
	}
	for _, d := range DefaultExcludeDirs {
		s.excludeDirs[d] = true
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan walks root sequentially and returns the classified findings.
// A missing or unreadable root fails with domain.ErrFilesystem. Files that
// cannot be stat'ed are logged and listed in ScanResult.Skipped. A cancelled
// context aborts the walk and no partial result is returned.
func (s *Scanner) Scan(ctx context.Context, root string) (*domain.ScanResult, error) {
	start := time.Now()

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, domain.FilesystemError(root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, domain.FilesystemError(root, err)
	}
	if !info.IsDir() {
		return nil, domain.FilesystemError(root, nil)
	}

	var ignore *ignoreRules
	if s.useIgnore {
		top := s.workTree
		if top == "" {
			top = findWorkTree(abs)
		}
		ignore, err = newIgnoreRules(top, abs)
		if err != nil {
			s.logger.Warn("cannot read ignore rules", zap.String("top", top), zap.Error(err))
			ignore = &ignoreRules{}
		}
	}

	result := domain.NewScanResult(abs)
	result.ScannedAt = start

	walkErr := filepath.WalkDir(abs, func(p string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		rel, relErr := filepath.Rel(abs, p)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if err != nil {
			if rel == "." {
				return domain.FilesystemError(root, err)
			}
			s.logger.Warn("skipping unreadable entry", zap.String("path", rel), zap.Error(err))
			result.Skip(rel, err.Error())
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if rel == "." {
				s.enterDir(ignore, abs, "")
				return nil
			}
			if s.excludeDirs[d.Name()] {
				return filepath.SkipDir
			}
			if ignore.ignored(rel, true) && !s.trackedDirs[rel] {
				s.logger.Debug("skipping ignored directory", zap.String("path", rel))
				return filepath.SkipDir
			}
			s.enterDir(ignore, abs, rel)
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}
		tracked := s.tracked[rel]
		if ignore.ignored(rel, false) && !tracked {
			return nil
		}

		result.TotalFiles++
		size, ok := s.size(p, rel, d, result)
		if !ok {
			return nil
		}

		if pattern, matched := s.table.Match(rel, size); matched {
			result.Add(domain.ScanFinding{
				Path:      rel,
				Category:  pattern.Category,
				Pattern:   pattern.Glob,
				Size:      size,
				Tracked:   tracked,
				SizeBased: pattern.SizeBased(),
			})
		}

		if s.progress != nil && result.TotalFiles%progressEvery == 0 {
			s.progress(ProgressEvent{Path: rel, Files: result.TotalFiles, Matched: result.TotalMatched})
		}
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	result.Sort()
	result.Duration = time.Since(start)
	if s.progress != nil {
		s.progress(ProgressEvent{Files: result.TotalFiles, Matched: result.TotalMatched, Done: true})
	}

	s.logger.Debug("scan finished",
		zap.String("root", abs),
		zap.Int("files", result.TotalFiles),
		zap.Int("matched", result.TotalMatched),
		zap.Int("skipped", len(result.Skipped)),
		zap.Duration("duration", result.Duration),
	)
	return result, nil
}

func (s *Scanner) enterDir(ignore *ignoreRules, root, rel string) {
	if ignore == nil {
		return
	}
	if err := ignore.enter(root, rel); err != nil {
		s.logger.Warn("cannot read .gitignore", zap.String("dir", rel), zap.Error(err))
	}
}

// size stats one file. On failure the file is recorded as skipped.
func (s *Scanner) size(abs, rel string, d fs.DirEntry, result *domain.ScanResult) (int64, bool) {
	var (
		info fs.FileInfo
		err  error
	)
	if s.stat != nil {
		info, err = s.stat(abs)
	} else {
		info, err = d.Info()
	}
	if err != nil {
		err = domain.FileStatError(rel, err)
		s.logger.Warn("skipping file", zap.String("path", rel), zap.Error(err))
		result.Skip(rel, err.Error())
		return 0, false
	}
	return info.Size(), true
}
