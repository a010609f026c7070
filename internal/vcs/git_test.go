package vcs

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/greyhatharold/QGit/internal/domain"
	"github.com/greyhatharold/QGit/internal/util"
)

// newMockGit returns a Git whose commands are answered by responses. Keys
// omit the "git -C <root>" prefix.
func newMockGit(t *testing.T, root string, responses map[string]util.MockResponse) (*Git, *util.MockCommandRunner) {
	t.Helper()
	full := make(map[string]util.MockResponse, len(responses))
	for k, v := range responses {
		full[fmt.Sprintf("git -C %s %s", root, k)] = v
	}
	mock := &util.MockCommandRunner{Responses: full}
	return New(root, mock, zaptest.NewLogger(t)), mock
}

func gitCall(root, args string) string {
	return fmt.Sprintf("git -C %s %s", root, args)
}

func TestGit_IsRepository(t *testing.T) {
	tests := []struct {
		name string
		resp util.MockResponse
		want bool
	}{
		{name: "inside work tree", resp: util.MockResponse{Output: "true"}, want: true},
		{name: "inside .git dir", resp: util.MockResponse{Output: "false"}, want: false},
		{name: "not a repository", resp: util.MockResponse{Err: fmt.Errorf("fatal: not a git repository")}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, _ := newMockGit(t, "/repo", map[string]util.MockResponse{
				"rev-parse --is-inside-work-tree": tt.resp,
			})
			assert.Equal(t, tt.want, g.IsRepository(context.Background()))
		})
	}
}

func TestGit_ListTrackedFiles(t *testing.T) {
	g, _ := newMockGit(t, "/repo", map[string]util.MockResponse{
		"ls-files -z": {Output: "README.md\x00secrets/.env\x00résumé.pdf\x00"},
	})

	files, err := g.ListTrackedFiles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"README.md", "secrets/.env", "résumé.pdf"}, files)
}

func TestGit_RemoveFromIndex_Error(t *testing.T) {
	g, _ := newMockGit(t, "/repo", map[string]util.MockResponse{
		"--literal-pathspecs rm --cached --quiet -- gone.log": {Err: fmt.Errorf("fatal: pathspec 'gone.log' did not match any files")},
	})

	err := g.RemoveFromIndex(context.Background(), "gone.log")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrVersionControl))
	assert.Contains(t, err.Error(), "rm --cached")
	assert.Contains(t, err.Error(), "did not match")
}

func TestGit_CurrentBranch(t *testing.T) {
	g, _ := newMockGit(t, "/repo", map[string]util.MockResponse{
		"branch --show-current": {Output: "main"},
	})
	branch, err := g.CurrentBranch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "main", branch)

	detached, _ := newMockGit(t, "/repo", map[string]util.MockResponse{
		"branch --show-current": {Output: ""},
	})
	_, err = detached.CurrentBranch(context.Background())
	assert.True(t, errors.Is(err, domain.ErrVersionControl))
}

func TestGit_UntrackThroughIndex(t *testing.T) {
	g, mock := newMockGit(t, "/repo", map[string]util.MockResponse{
		"--literal-pathspecs rm --cached --quiet -- app.log":  {},
		"--literal-pathspecs rm --cached --quiet -- id_rsa":   {},
		"--literal-pathspecs rm --cached --quiet -- gone.log": {Err: fmt.Errorf("fatal: pathspec 'gone.log' did not match any files")},
	})

	res := Untrack(context.Background(), g, []string{"id_rsa", "gone.log", "app.log"})

	assert.Equal(t, []string{"app.log", "id_rsa"}, res.Succeeded)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, "gone.log", res.Failed[0].Path)
	assert.Len(t, mock.Calls, 3)
}

// realRunner runs the installed git with a fixed identity and no user or
// system configuration.
func realRunner(t *testing.T, home string) *util.RealCommandRunner {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	return &util.RealCommandRunner{Env: []string{
		"GIT_AUTHOR_NAME=qgit", "GIT_AUTHOR_EMAIL=qgit@example.com",
		"GIT_COMMITTER_NAME=qgit", "GIT_COMMITTER_EMAIL=qgit@example.com",
		"GIT_CONFIG_NOSYSTEM=1", "HOME=" + home,
	}}
}

// TestGit_RealRepository exercises the commands against a real git binary.
func TestGit_RealRepository(t *testing.T) {
	root := t.TempDir()
	g := New(root, realRunner(t, root), zaptest.NewLogger(t))
	ctx := context.Background()

	require.False(t, g.IsRepository(ctx))
	require.NoError(t, os.WriteFile(filepath.Join(root, "app.log"), []byte("log"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "id_rsa"), []byte("key"), 0o600))
	require.NoError(t, g.First(ctx))
	require.True(t, g.IsRepository(ctx))

	tracked, err := g.ListTrackedFiles(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"README.md", "app.log", "id_rsa"}, tracked)

	res := Untrack(ctx, g, []string{"app.log", "id_rsa", "gone.log"})
	assert.Equal(t, []string{"app.log", "id_rsa"}, res.Succeeded)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, "gone.log", res.Failed[0].Path)

	assert.FileExists(t, filepath.Join(root, "app.log"), "untracked files stay on disk")
	tracked, err = g.ListTrackedFiles(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"README.md"}, tracked)

	assert.ErrorIs(t, g.First(ctx), ErrAlreadyInitialized)
}

func TestGit_RealRepository_UnusualNames(t *testing.T) {
	root := t.TempDir()
	runner := realRunner(t, root)
	ctx := context.Background()
	names := []string{"[ab].env", "a.env", " lead.txt", "trail.txt ", "star*.log"}
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(root, n), []byte("x"), 0o644))
	}
	g := New(root, runner, zaptest.NewLogger(t))
	require.NoError(t, g.First(ctx))

	tracked, err := g.ListTrackedFiles(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, append([]string{"README.md"}, names...), tracked)

	require.NoError(t, g.RemoveFromIndex(ctx, "[ab].env"))
	require.NoError(t, g.RemoveFromIndex(ctx, "star*.log"))

	tracked, err = g.ListTrackedFiles(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"README.md", "a.env", " lead.txt", "trail.txt "}, tracked)
}

func TestGit_RealRepository_Subdirectory(t *testing.T) {
	root := t.TempDir()
	runner := realRunner(t, root)
	ctx := context.Background()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "app.log"), []byte("x"), 0o644))
	require.NoError(t, New(root, runner, zaptest.NewLogger(t)).First(ctx))

	sub := New(filepath.Join(root, "sub"), runner, zaptest.NewLogger(t))
	require.True(t, sub.IsRepository(ctx))

	top, err := sub.TopLevel(ctx)
	require.NoError(t, err)
	want, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(top)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	tracked, err := sub.ListTrackedFiles(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"app.log"}, tracked)
}

func TestGit_TopLevel(t *testing.T) {
	g, _ := newMockGit(t, "/repo/sub", map[string]util.MockResponse{
		"rev-parse --show-toplevel": {Output: "/repo"},
	})
	top, err := g.TopLevel(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/repo", top)

	outside, _ := newMockGit(t, "/tmp", map[string]util.MockResponse{
		"rev-parse --show-toplevel": {Err: fmt.Errorf("fatal: not a git repository")},
	})
	_, err = outside.TopLevel(context.Background())
	assert.True(t, errors.Is(err, domain.ErrVersionControl))
}

func TestGit_Remotes(t *testing.T) {
	g, _ := newMockGit(t, "/repo", map[string]util.MockResponse{
		"remote": {Output: "origin\nupstream\n"},
	})
	remotes, err := g.Remotes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"origin", "upstream"}, remotes)

	none, _ := newMockGit(t, "/repo", map[string]util.MockResponse{
		"remote": {Output: ""},
	})
	remotes, err = none.Remotes(context.Background())
	require.NoError(t, err)
	assert.Empty(t, remotes)
}
