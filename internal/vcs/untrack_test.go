package vcs

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeIndex fails for paths listed in missing.
type fakeIndex struct {
	missing map[string]bool
	removed []string
}

func (f *fakeIndex) RemoveFromIndex(_ context.Context, path string) error {
	if f.missing[path] {
		return fmt.Errorf("pathspec '%s' did not match any files", path)
	}
	f.removed = append(f.removed, path)
	return nil
}

func TestUntrack_PartialSuccess(t *testing.T) {
	idx := &fakeIndex{missing: map[string]bool{"gone.log": true}}

	res := Untrack(context.Background(), idx, []string{"app.log", "gone.log", "id_rsa"})

	assert.Equal(t, []string{"app.log", "id_rsa"}, res.Succeeded)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, "gone.log", res.Failed[0].Path)
	assert.Contains(t, res.Failed[0].Reason, "did not match")
	assert.NotContains(t, res.Succeeded, "gone.log")
}

func TestUntrack_DeduplicatesAndSorts(t *testing.T) {
	idx := &fakeIndex{}

	res := Untrack(context.Background(), idx, []string{"z.log", "a.log", "z.log", "", "m/b.log"})

	assert.Equal(t, []string{"a.log", "m/b.log", "z.log"}, res.Succeeded)
	assert.Equal(t, res.Succeeded, idx.removed)
	assert.Empty(t, res.Failed)
}

func TestUntrack_Empty(t *testing.T) {
	res := Untrack(context.Background(), &fakeIndex{}, nil)
	assert.Empty(t, res.Succeeded)
	assert.Empty(t, res.Failed)
}

func TestUntrack_CancelledContextFailsRemaining(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	idx := &fakeIndex{}

	res := Untrack(ctx, idx, []string{"a.log", "b.log"})

	assert.Empty(t, res.Succeeded)
	require.Len(t, res.Failed, 2)
	assert.Equal(t, context.Canceled.Error(), res.Failed[0].Reason)
	assert.Empty(t, idx.removed)
}
