package main

import (
	"path/filepath"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/greyhatharold/QGit/internal/domain"
	"github.com/greyhatharold/QGit/internal/util"
	"github.com/greyhatharold/QGit/internal/vcs"
	"github.com/greyhatharold/QGit/rules"
)

// newRunner builds the command runner used for git. Tests replace it.
var newRunner = func() util.CommandRunner {
	return &util.RealCommandRunner{}
}

// repoRoot resolves the optional path argument, defaulting to the working
// directory.
func repoRoot(args []string) (string, error) {
	path := "."
	if len(args) > 0 && args[0] != "" {
		path = util.ExpandHome(args[0])
	}
	root, err := filepath.Abs(path)
	if err != nil {
		return "", domain.FilesystemError(path, err)
	}
	if !util.DirExists(root) {
		return "", domain.FilesystemError(root, nil)
	}
	return root, nil
}

func openRepo(args []string) (*vcs.Git, error) {
	root, err := repoRoot(args)
	if err != nil {
		return nil, err
	}
	return vcs.New(root, newRunner(), logger), nil
}

// loadTable returns the built-in rules, extended by --rules when set.
func loadTable() (rules.Table, error) {
	table := rules.Default()
	path := cfg.GetString("rules")
	if path == "" {
		return table, nil
	}
	extra, err := rules.Load(util.ExpandHome(path))
	if err != nil {
		return rules.Table{}, errors.WithHint(err, "fix or remove the file passed with --rules")
	}
	logger.Debug("extra rules loaded", zap.String("path", path), zap.Int("patterns", extra.Len()))
	return rules.Merge(table, extra), nil
}

// ignorePath returns --ignore-file, or empty for the repository default.
func ignorePath() string {
	p := cfg.GetString("ignore-file")
	if p == "" {
		return ""
	}
	p = util.ExpandHome(p)
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
