// Package doctor runs health checks on a repository: branch and remote
// setup, uncommitted work, ignore-file coverage and risky files that are
// already committed.
package doctor

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/greyhatharold/QGit/internal/domain"
	"github.com/greyhatharold/QGit/internal/ignorefile"
	"github.com/greyhatharold/QGit/internal/report"
	"github.com/greyhatharold/QGit/internal/scanner"
	"github.com/greyhatharold/QGit/internal/util"
	"github.com/greyhatharold/QGit/rules"
)

// ErrUnhealthy marks the error a caller returns for a report with failing
// checks.
var ErrUnhealthy = errors.New("repository has failing checks")

// Status is the outcome of one check.
type Status int

const (
	OK Status = iota
	Warn
	Fail
)

func (s Status) String() string {
	switch s {
	case OK:
		return "ok"
	case Warn:
		return "warn"
	case Fail:
		return "fail"
	default:
		return "unknown"
	}
}

// Result is what one check found. Hint names the command that fixes it.
type Result struct {
	Name   string
	Status Status
	Detail string
	Hint   string
}

// Repository is the git surface the checks use.
type Repository interface {
	Root() string
	IsRepository(ctx context.Context) bool
	TopLevel(ctx context.Context) (string, error)
	ListTrackedFiles(ctx context.Context) ([]string, error)
	CurrentBranch(ctx context.Context) (string, error)
	Remotes(ctx context.Context) ([]string, error)
	ModifiedFiles(ctx context.Context) ([]string, error)
	StagedFiles(ctx context.Context) ([]string, error)
	UntrackedFiles(ctx context.Context) ([]string, error)
}

// Options configure a run.
type Options struct {
	Table rules.Table
	// IgnorePath defaults to .gitignore at the repository root.
	IgnorePath string
	// Fix appends ignore rules for unignored risky files, then checks again.
	Fix         bool
	Logger      *zap.Logger
	ScanOptions []scanner.Option
}

// Report collects every check result in the order they ran.
type Report struct {
	Results []Result
	Scan    *domain.ScanResult
	// Fixed is set when Fix changed the ignore file.
	Fixed *ignorefile.Result
}

// Healthy reports whether no check failed. Warnings do not count.
func (r *Report) Healthy() bool {
	return r.Count(Fail) == 0
}

// Count returns how many checks ended with s.
func (r *Report) Count(s Status) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == s {
			n++
		}
	}
	return n
}

// Run checks repo. Only a missing repository or a failed scan is an error;
// everything else is reported as a Result.
func Run(ctx context.Context, repo Repository, opts Options) (*Report, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if !repo.IsRepository(ctx) {
		return nil, domain.NotRepositoryError(repo.Root())
	}
	ignorePath := opts.IgnorePath
	if ignorePath == "" {
		ignorePath = filepath.Join(repo.Root(), ".gitignore")
	}

	rep := &Report{}
	for _, check := range []func(context.Context, Repository) Result{checkBranch, checkRemote, checkWorkingTree} {
		res := check(ctx, repo)
		logger.Debug("check", zap.String("name", res.Name), zap.Stringer("status", res.Status))
		rep.Results = append(rep.Results, res)
	}

	scan, err := scanRepo(ctx, repo, opts, logger)
	if err != nil {
		return nil, err
	}
	if opts.Fix && len(untrackedFindings(scan)) > 0 {
		fixed, err := ignorefile.UpdatePatterns(scan, ignorePath)
		if err != nil {
			return nil, err
		}
		rep.Fixed = fixed
		logger.Info("ignore file updated", zap.String("path", ignorePath), zap.Int("added", len(fixed.Added)))
		if scan, err = scanRepo(ctx, repo, opts, logger); err != nil {
			return nil, err
		}
	}

	rep.Scan = scan
	rep.Results = append(rep.Results,
		checkIgnoreFile(ignorePath),
		checkIgnoreCoverage(scan),
		checkTrackedRisks(scan),
		checkLargeFiles(scan),
	)
	return rep, nil
}

func scanRepo(ctx context.Context, repo Repository, opts Options, logger *zap.Logger) (*domain.ScanResult, error) {
	tracked, err := repo.ListTrackedFiles(ctx)
	if err != nil {
		return nil, err
	}
	scanOpts := []scanner.Option{scanner.WithTracked(tracked), scanner.WithLogger(logger)}
	if top, err := repo.TopLevel(ctx); err == nil {
		scanOpts = append(scanOpts, scanner.WithWorkTree(top))
	}
	scanOpts = append(scanOpts, opts.ScanOptions...)
	return scanner.New(opts.Table, scanOpts...).Scan(ctx, repo.Root())
}

func checkBranch(ctx context.Context, repo Repository) Result {
	branch, err := repo.CurrentBranch(ctx)
	if err != nil {
		return Result{Name: "branch", Status: Warn, Detail: "HEAD is detached", Hint: "git switch <branch>"}
	}
	return Result{Name: "branch", Status: OK, Detail: "on " + branch}
}

func checkRemote(ctx context.Context, repo Repository) Result {
	remotes, err := repo.Remotes(ctx)
	if err != nil {
		return Result{Name: "remote", Status: Warn, Detail: err.Error()}
	}
	if len(remotes) == 0 {
		return Result{Name: "remote", Status: Warn, Detail: "no remote configured", Hint: "git remote add origin <url>"}
	}
	return Result{Name: "remote", Status: OK, Detail: strings.Join(remotes, ", ")}
}

func checkWorkingTree(ctx context.Context, repo Repository) Result {
	n := 0
	for _, list := range []func(context.Context) ([]string, error){repo.ModifiedFiles, repo.StagedFiles, repo.UntrackedFiles} {
		files, err := list(ctx)
		if err != nil {
			return Result{Name: "working tree", Status: Warn, Detail: err.Error()}
		}
		n += len(files)
	}
	if n > 0 {
		return Result{Name: "working tree", Status: Warn, Detail: fmt.Sprintf("%d uncommitted changes", n), Hint: "qgit commit"}
	}
	return Result{Name: "working tree", Status: OK, Detail: "clean"}
}

func checkIgnoreFile(path string) Result {
	if !util.FileExists(path) {
		return Result{Name: "ignore file", Status: Warn, Detail: filepath.Base(path) + " is missing", Hint: "qgit benedict"}
	}
	return Result{Name: "ignore file", Status: OK, Detail: path}
}

func checkIgnoreCoverage(scan *domain.ScanResult) Result {
	if n := len(untrackedFindings(scan)); n > 0 {
		return Result{Name: "ignore coverage", Status: Warn,
			Detail: fmt.Sprintf("%d risky files are not ignored", n), Hint: "qgit doctor --fix or qgit benedict"}
	}
	return Result{Name: "ignore coverage", Status: OK, Detail: "every untracked risky file is ignored"}
}

// checkTrackedRisks fails when secrets are committed and warns for any
// other tracked risky file. Large binaries have their own check.
func checkTrackedRisks(scan *domain.ScanResult) Result {
	secrets, others := 0, 0
	for _, f := range scan.TrackedFindings() {
		switch {
		case f.Category == domain.LargeBinary:
		case f.Category.Sensitivity() == domain.Secret:
			secrets++
		default:
			others++
		}
	}
	switch {
	case secrets > 0:
		return Result{Name: "tracked risky files", Status: Fail,
			Detail: fmt.Sprintf("%d secret files and %d other risky files are committed", secrets, others),
			Hint:   "qgit benedict --arnold, then rotate the exposed secrets"}
	case others > 0:
		return Result{Name: "tracked risky files", Status: Warn,
			Detail: fmt.Sprintf("%d risky files are committed", others), Hint: "qgit reverse"}
	default:
		return Result{Name: "tracked risky files", Status: OK, Detail: "none"}
	}
}

func checkLargeFiles(scan *domain.ScanResult) Result {
	var size int64
	n := 0
	for _, f := range scan.TrackedFindings() {
		if f.Category == domain.LargeBinary {
			n++
			size += f.Size
		}
	}
	if n > 0 {
		return Result{Name: "large files", Status: Warn,
			Detail: fmt.Sprintf("%d large files committed, %s in total", n, report.FormatSize(size)), Hint: "qgit reverse, or move them to Git LFS"}
	}
	return Result{Name: "large files", Status: OK, Detail: "none committed"}
}

func untrackedFindings(scan *domain.ScanResult) []domain.ScanFinding {
	var out []domain.ScanFinding
	for _, f := range scan.AllFindings() {
		if !f.Tracked {
			out = append(out, f)
		}
	}
	return out
}
