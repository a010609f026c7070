package vcs

import (
	"context"
	"sort"
)

// Indexer removes paths from the version control index.
type Indexer interface {
	RemoveFromIndex(ctx context.Context, path string) error
}

// UntrackFailure is a path that could not be untracked.
type UntrackFailure struct {
	Path   string
	Reason string
}

// UntrackResult is the outcome of a batch. A path is in exactly one of the
// two lists.
type UntrackResult struct {
	Succeeded []string
	Failed    []UntrackFailure
}

// Untrack removes each path from the index while keeping it on disk. Paths
// are de-duplicated and processed in sorted order. Failures are collected
// and never stop the batch; once ctx is done the remaining paths fail with
// the context error.
func Untrack(ctx context.Context, idx Indexer, paths []string) *UntrackResult {
	unique := make(map[string]bool, len(paths))
	ordered := make([]string, 0, len(paths))
	for _, p := range paths {
		if p == "" || unique[p] {
			continue
		}
		unique[p] = true
		ordered = append(ordered, p)
	}
	sort.Strings(ordered)

	result := &UntrackResult{}
	for _, p := range ordered {
		if err := ctx.Err(); err != nil {
			result.Failed = append(result.Failed, UntrackFailure{Path: p, Reason: err.Error()})
			continue
		}
		if err := idx.RemoveFromIndex(ctx, p); err != nil {
			result.Failed = append(result.Failed, UntrackFailure{Path: p, Reason: err.Error()})
			continue
		}
		result.Succeeded = append(result.Succeeded, p)
	}
	return result
}
