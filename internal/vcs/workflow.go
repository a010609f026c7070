package vcs

import (
	"context"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/greyhatharold/QGit/internal/domain"
	"github.com/greyhatharold/QGit/internal/util"
)

// DefaultCommitMessage is used when no message is given.
const DefaultCommitMessage = "Automated commit"

const readmeTemplate = "# New Repository\n\nInitialized with qgit first command.\n"

// ErrAlreadyInitialized is returned by First when root is already a repository.
var ErrAlreadyInitialized = errors.New("repository already initialized")

// MatchFunc decides whether a tracked file should be untracked.
type MatchFunc func(relPath string, size int64) bool

func (g *Git) requireRepository(ctx context.Context) error {
	if !g.IsRepository(ctx) {
		return domain.NotRepositoryError(g.root)
	}
	return nil
}

func (g *Git) hasChanges(ctx context.Context) (bool, error) {
	for _, list := range []func(context.Context) ([]string, error){g.ModifiedFiles, g.StagedFiles, g.UntrackedFiles} {
		files, err := list(ctx)
		if err != nil {
			return false, err
		}
		if len(files) > 0 {
			return true, nil
		}
	}
	return false, nil
}

// QuickCommit stages everything and commits it. It returns
// domain.ErrNothingToCommit when the work tree is clean.
func (g *Git) QuickCommit(ctx context.Context, msg string) error {
	if err := g.requireRepository(ctx); err != nil {
		return err
	}
	changed, err := g.hasChanges(ctx)
	if err != nil {
		return err
	}
	if !changed {
		return domain.ErrNothingToCommit
	}
	if msg == "" {
		msg = DefaultCommitMessage
	}
	if err := g.StageAll(ctx); err != nil {
		return err
	}
	if err := g.Commit(ctx, msg, false); err != nil {
		return err
	}
	g.logger.Info("committed", zap.String("message", msg))
	return nil
}

// Sync pulls the current branch and pushes local commits.
func (g *Git) Sync(ctx context.Context) error {
	if err := g.requireRepository(ctx); err != nil {
		return err
	}
	branch, err := g.CurrentBranch(ctx)
	if err != nil {
		return err
	}
	g.logger.Info("syncing", zap.String("branch", branch))
	if err := g.Pull(ctx); err != nil {
		return err
	}
	return g.Push(ctx, "", "")
}

// Save commits pending changes, if any, then syncs.
func (g *Git) Save(ctx context.Context, msg string) error {
	if err := g.QuickCommit(ctx, msg); err != nil && !errors.Is(err, domain.ErrNothingToCommit) {
		return err
	}
	return g.Sync(ctx)
}

// All stages and commits every change and optionally pushes the current
// branch to origin.
func (g *Git) All(ctx context.Context, msg string, push bool) error {
	if err := g.QuickCommit(ctx, msg); err != nil {
		return err
	}
	if !push {
		return nil
	}
	branch, err := g.CurrentBranch(ctx)
	if err != nil {
		return err
	}
	return g.Push(ctx, "origin", branch)
}

// First initializes a repository at root with a README and an initial commit.
func (g *Git) First(ctx context.Context) error {
	if g.IsRepository(ctx) {
		return ErrAlreadyInitialized
	}
	if err := g.Init(ctx); err != nil {
		return err
	}

	readme := filepath.Join(g.root, "README.md")
	if !util.FileExists(readme) {
		if err := os.WriteFile(readme, []byte(readmeTemplate), 0o644); err != nil {
			return domain.FileOperationError(readme, err)
		}
	}

	if err := g.StageAll(ctx); err != nil {
		return err
	}
	return g.Commit(ctx, "Initial commit", true)
}

// Reverse untracks every tracked file accepted by match. Files stay on disk.
func (g *Git) Reverse(ctx context.Context, match MatchFunc) (*UntrackResult, error) {
	if err := g.requireRepository(ctx); err != nil {
		return nil, err
	}
	tracked, err := g.ListTrackedFiles(ctx)
	if err != nil {
		return nil, err
	}

	var selected []string
	for _, p := range tracked {
		var size int64
		if info, err := os.Stat(filepath.Join(g.root, filepath.FromSlash(p))); err == nil {
			size = info.Size()
		}
		if match(p, size) {
			selected = append(selected, p)
		}
	}
	return Untrack(ctx, g, selected), nil
}

// Expel untracks every tracked file. Files stay on disk.
func (g *Git) Expel(ctx context.Context) (*UntrackResult, error) {
	return g.Reverse(ctx, func(string, int64) bool { return true })
}
