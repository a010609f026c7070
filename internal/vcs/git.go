// Package vcs drives the git binary for a single work tree.
package vcs

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/greyhatharold/QGit/internal/domain"
	"github.com/greyhatharold/QGit/internal/util"
)

// Git runs git commands against the work tree at root.
type Git struct {
	root   string
	cmd    util.CommandRunner
	logger *zap.Logger
}

// New creates a Git for root. A nil logger discards output.
func New(root string, cmd util.CommandRunner, logger *zap.Logger) *Git {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Git{root: root, cmd: cmd, logger: logger}
}

// Root returns the work tree directory.
func (g *Git) Root() string { return g.root }

func (g *Git) run(ctx context.Context, args ...string) (string, error) {
	g.logger.Debug("git", zap.String("root", g.root), zap.Strings("args", args))
	out, err := g.cmd.Run(ctx, "git", append([]string{"-C", g.root}, args...)...)
	if err != nil {
		return "", domain.VersionControlError(strings.Join(args, " "), err)
	}
	return out, nil
}

func (g *Git) lines(ctx context.Context, args ...string) ([]string, error) {
	g.logger.Debug("git", zap.String("root", g.root), zap.Strings("args", args))
	out, err := g.cmd.RunLines(ctx, "git", append([]string{"-C", g.root}, args...)...)
	if err != nil {
		return nil, domain.VersionControlError(strings.Join(args, " "), err)
	}
	return out, nil
}

// IsRepository reports whether root is inside a git work tree.
func (g *Git) IsRepository(ctx context.Context) bool {
	out, err := g.run(ctx, "rev-parse", "--is-inside-work-tree")
	return err == nil && out == "true"
}

// TopLevel returns the absolute path of the work tree containing root.
func (g *Git) TopLevel(ctx context.Context) (string, error) {
	return g.run(ctx, "rev-parse", "--show-toplevel")
}

// ListTrackedFiles returns the slash-separated paths in the index, relative
// to root. Names are read NUL-separated and unquoted, so they match the disk
// byte for byte.
func (g *Git) ListTrackedFiles(ctx context.Context) ([]string, error) {
	out, err := g.run(ctx, "ls-files", "-z")
	if err != nil {
		return nil, err
	}
	paths := []string{}
	for _, p := range strings.Split(out, "\x00") {
		if p != "" {
			paths = append(paths, p)
		}
	}
	return paths, nil
}

// RemoveFromIndex untracks path and keeps it on disk. The path is taken
// literally, so glob characters in file names match only that file.
func (g *Git) RemoveFromIndex(ctx context.Context, path string) error {
	_, err := g.run(ctx, "--literal-pathspecs", "rm", "--cached", "--quiet", "--", path)
	return err
}

// CurrentBranch returns the checked out branch name.
func (g *Git) CurrentBranch(ctx context.Context) (string, error) {
	out, err := g.run(ctx, "branch", "--show-current")
	if err != nil {
		return "", err
	}
	if out == "" {
		return "", domain.VersionControlError("branch --show-current", errors.New("HEAD is detached"))
	}
	return out, nil
}

// Remotes lists the configured remote names.
func (g *Git) Remotes(ctx context.Context) ([]string, error) {
	return g.lines(ctx, "remote")
}

// Init creates a repository at root.
func (g *Git) Init(ctx context.Context) error {
	_, err := g.run(ctx, "init")
	return err
}

// StageAll stages every change, including deletions and new files.
func (g *Git) StageAll(ctx context.Context) error {
	_, err := g.run(ctx, "add", "-A")
	return err
}

// Commit records the index with msg.
func (g *Git) Commit(ctx context.Context, msg string, allowEmpty bool) error {
	args := []string{"commit", "-m", msg}
	if allowEmpty {
		args = append(args, "--allow-empty")
	}
	_, err := g.run(ctx, args...)
	return err
}

// Push pushes branch to remote. Empty arguments use git's defaults.
func (g *Git) Push(ctx context.Context, remote, branch string) error {
	args := []string{"push"}
	if remote != "" {
		args = append(args, remote)
		if branch != "" {
			args = append(args, branch)
		}
	}
	_, err := g.run(ctx, args...)
	return err
}

// Pull fetches and integrates the upstream branch.
func (g *Git) Pull(ctx context.Context) error {
	_, err := g.run(ctx, "pull")
	return err
}

// ModifiedFiles lists unstaged modifications.
func (g *Git) ModifiedFiles(ctx context.Context) ([]string, error) {
	return g.lines(ctx, "diff", "--name-only")
}

// StagedFiles lists staged changes.
func (g *Git) StagedFiles(ctx context.Context) ([]string, error) {
	return g.lines(ctx, "diff", "--cached", "--name-only")
}

// UntrackedFiles lists files git does not know about, minus ignored ones.
func (g *Git) UntrackedFiles(ctx context.Context) ([]string, error) {
	return g.lines(ctx, "ls-files", "--others", "--exclude-standard")
}
