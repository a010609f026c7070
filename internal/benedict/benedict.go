// Package benedict runs the risky-file cleanup flow: scan the repository,
// report, append ignore rules and untrack files that are already committed.
package benedict

import (
	"context"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/greyhatharold/QGit/internal/domain"
	"github.com/greyhatharold/QGit/internal/ignorefile"
	"github.com/greyhatharold/QGit/internal/report"
	"github.com/greyhatharold/QGit/internal/scanner"
	"github.com/greyhatharold/QGit/internal/vcs"
	"github.com/greyhatharold/QGit/rules"
)

// State is the step the flow ended in.
type State int

const (
	// Scanned means the report was produced and nothing was changed.
	Scanned State = iota
	// Declined means the user rejected the proposed changes.
	Declined
	// IgnoreUpdated means the ignore file was updated and untracking is left
	// to the user.
	IgnoreUpdated
	// Untracked means tracked findings were also removed from the index.
	Untracked
)

func (s State) String() string {
	switch s {
	case Scanned:
		return "scanned"
	case Declined:
		return "declined"
	case IgnoreUpdated:
		return "ignore-updated"
	case Untracked:
		return "untracked"
	default:
		return "unknown"
	}
}

// Repository is the version control surface the flow needs.
type Repository interface {
	Root() string
	IsRepository(ctx context.Context) bool
	ListTrackedFiles(ctx context.Context) ([]string, error)
	vcs.Indexer
}

// WorkTreeLocator is implemented by repositories that know the top of their
// work tree. Ignore rules above the scanned directory are then read from
// there.
type WorkTreeLocator interface {
	TopLevel(ctx context.Context) (string, error)
}

// Confirmer asks whether the proposed changes should be applied.
type Confirmer func(ctx context.Context, result *domain.ScanResult) (bool, error)

// CategorySelector narrows the categories whose findings are acted on.
// Returning no categories declines.
type CategorySelector func(ctx context.Context, result *domain.ScanResult) ([]domain.RiskCategory, error)

// Options configure a run.
type Options struct {
	Table rules.Table
	// IgnorePath defaults to .gitignore at the repository root.
	IgnorePath string
	// Auto applies everything without asking and untracks tracked findings.
	Auto    bool
	Confirm Confirmer
	Select  CategorySelector
	Logger  *zap.Logger
	// ScanOptions are appended to the scanner options built by Run.
	ScanOptions []scanner.Option
}

// Outcome is what a run produced. Result and Report are set whenever the
// scan succeeded, even if a later step failed.
type Outcome struct {
	Result     *domain.ScanResult
	Report     string
	State      State
	Categories []domain.RiskCategory
	Ignore     *ignorefile.Result
	Untrack    *vcs.UntrackResult
	// Pending lists tracked findings left in the index in manual mode.
	Pending []string
}

// Run executes the flow against repo.
func Run(ctx context.Context, repo Repository, opts Options) (*Outcome, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	root := repo.Root()

	if !repo.IsRepository(ctx) {
		return nil, domain.NotRepositoryError(root)
	}
	tracked, err := repo.ListTrackedFiles(ctx)
	if err != nil {
		return nil, err
	}

	scanOpts := []scanner.Option{scanner.WithTracked(tracked), scanner.WithLogger(logger)}
	if loc, ok := repo.(WorkTreeLocator); ok {
		if top, err := loc.TopLevel(ctx); err == nil {
			scanOpts = append(scanOpts, scanner.WithWorkTree(top))
		} else {
			logger.Debug("work tree top unknown, searching for .git", zap.Error(err))
		}
	}
	scanOpts = append(scanOpts, opts.ScanOptions...)
	result, err := scanner.New(opts.Table, scanOpts...).Scan(ctx, root)
	if err != nil {
		return nil, err
	}

	out := &Outcome{Result: result, Report: report.Format(result), State: Scanned}
	if result.Empty() {
		return out, nil
	}

	categories := result.Categories()
	if !opts.Auto {
		ok, err := confirm(ctx, opts.Confirm, result)
		if err != nil {
			return out, err
		}
		if !ok {
			out.State = Declined
			return out, nil
		}
		if opts.Select != nil {
			categories, err = opts.Select(ctx, result)
			if err != nil {
				return out, err
			}
			if len(categories) == 0 {
				out.State = Declined
				return out, nil
			}
		}
	}
	out.Categories = categories

	ignorePath := opts.IgnorePath
	if ignorePath == "" {
		ignorePath = filepath.Join(root, ".gitignore")
	}
	ignore, err := ignorefile.UpdatePatterns(result, ignorePath, categories...)
	if err != nil {
		return out, err
	}
	out.Ignore = ignore
	out.State = IgnoreUpdated
	logger.Info("ignore file updated", zap.String("path", ignorePath), zap.Int("added", len(ignore.Added)))

	pending := trackedPaths(result, categories)
	if !opts.Auto {
		out.Pending = pending
		return out, nil
	}

	out.Untrack = vcs.Untrack(ctx, repo, pending)
	out.State = Untracked
	for _, f := range out.Untrack.Failed {
		logger.Warn("untrack failed", zap.String("path", f.Path), zap.String("reason", f.Reason))
	}
	return out, nil
}

// confirm treats a missing Confirmer as a refusal.
func confirm(ctx context.Context, c Confirmer, result *domain.ScanResult) (bool, error) {
	if c == nil {
		return false, nil
	}
	return c(ctx, result)
}

func trackedPaths(result *domain.ScanResult, categories []domain.RiskCategory) []string {
	keep := make(map[domain.RiskCategory]bool, len(categories))
	for _, c := range categories {
		keep[c] = true
	}
	var paths []string
	for _, f := range result.TrackedFindings() {
		if keep[f.Category] {
			paths = append(paths, f.Path)
		}
	}
	return paths
}
