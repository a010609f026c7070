package ignorefile

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greyhatharold/QGit/internal/domain"
	"github.com/greyhatharold/QGit/internal/scanner"
	"github.com/greyhatharold/QGit/rules"
)

func sampleResult() *domain.ScanResult {
	r := domain.NewScanResult("/repo")
	r.Add(domain.ScanFinding{Path: "a.log", Category: domain.Logs, Pattern: "*.log"})
	r.Add(domain.ScanFinding{Path: "b.log", Category: domain.Logs, Pattern: "*.log"})
	r.Add(domain.ScanFinding{Path: "id_rsa", Category: domain.Keys, Pattern: "id_rsa*"})
	r.Add(domain.ScanFinding{Path: "media/big.iso", Category: domain.LargeBinary, Pattern: "*", Size: 1 << 30, SizeBased: true})
	r.Sort()
	return r
}

func TestRecommend(t *testing.T) {
	sections := Recommend(sampleResult())
	assert.Equal(t, []Section{
		{Title: "🔑 Private Keys", Lines: []string{"id_rsa*"}},
		{Title: "📝 Logs", Lines: []string{"*.log"}},
		{Title: "📦 Large Binaries", Lines: []string{"/media/big.iso"}},
	}, sections)

	only := Recommend(sampleResult(), domain.Logs)
	require.Len(t, only, 1)
	assert.Equal(t, []string{"*.log"}, only[0].Lines)
}

func TestPreview_NewFile(t *testing.T) {
	merged, added := Preview("", Recommend(sampleResult()))

	assert.Equal(t, []string{"id_rsa*", "*.log", "/media/big.iso"}, added)
	assert.Equal(t, BlockStart+"\n"+
		"# 🔑 Private Keys\nid_rsa*\n"+
		"# 📝 Logs\n*.log\n"+
		"# 📦 Large Binaries\n/media/big.iso\n"+
		BlockEnd+"\n", merged)
}

func TestPreview_IsAdditive(t *testing.T) {
	existing := "node_modules/\n# my rules\n*.log\r\n\n.env"
	merged, added := Preview(existing, Patterns("*.log", ".env", "*.pem", "dist/"))

	assert.Equal(t, []string{"*.pem", "dist/"}, added)
	assert.True(t, strings.HasPrefix(merged, existing+"\n\n"), "existing content must be kept verbatim")

	// Every original line survives, in the same relative order.
	before := strings.Split(existing, "\n")
	after := strings.Split(merged, "\n")
	i := 0
	for _, line := range after {
		if i < len(before) && line == before[i] {
			i++
		}
	}
	assert.Equal(t, len(before), i)
}

func TestPreview_NothingNew(t *testing.T) {
	existing := "*.log\nid_rsa*\n"
	merged, added := Preview(existing, Patterns("*.log", "id_rsa*", " ", ""))

	assert.Empty(t, added)
	assert.Equal(t, existing, merged)
}

func TestPreview_DeduplicatesAcrossSections(t *testing.T) {
	_, added := Preview("", []Section{
		{Title: "one", Lines: []string{"*.log", "*.tmp"}},
		{Title: "two", Lines: []string{"*.tmp", "*.bak"}},
	})
	assert.Equal(t, []string{"*.log", "*.tmp", "*.bak"}, added)
}

func TestPreview_IsCaseSensitive(t *testing.T) {
	_, added := Preview("*.LOG\n", Patterns("*.log"))
	assert.Equal(t, []string{"*.log"}, added)
}

func TestUpdate_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".gitignore")

	res, err := UpdatePatterns(sampleResult(), path)
	require.NoError(t, err)
	assert.True(t, res.Changed())
	assert.Equal(t, 0, res.Existing)
	assert.Len(t, res.Added, 3)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), BlockStart)
	assert.Contains(t, string(data), "/media/big.iso\n")

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
	}
}

func TestUpdate_SecondRunAddsNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".gitignore")
	require.NoError(t, os.WriteFile(path, []byte("# project\nbuild/\n"), 0o600))

	first, err := UpdatePatterns(sampleResult(), path)
	require.NoError(t, err)
	require.True(t, first.Changed())
	assert.Equal(t, 2, first.Existing)

	afterFirst, err := os.ReadFile(path)
	require.NoError(t, err)

	second, err := UpdatePatterns(sampleResult(), path)
	require.NoError(t, err)
	assert.False(t, second.Changed())

	afterSecond, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(afterFirst), string(afterSecond))
	assert.Equal(t, 1, strings.Count(string(afterSecond), BlockStart))

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm(), "existing mode must be kept")
	}
}

func TestUpdate_WriteFailure(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		path string
	}{
		{name: "missing parent directory", path: filepath.Join(dir, "missing", ".gitignore")},
		{name: "target is a directory", path: dir},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Update(tt.path, Patterns("*.log"))
			require.Error(t, err)
			assert.Nil(t, res)
			assert.True(t, errors.Is(err, domain.ErrFileOperation))
			assert.Equal(t, 3, domain.ExitCode(err))
		})
	}
	assert.NoFileExists(t, filepath.Join(dir, "missing", ".gitignore"))
}

func TestUpdate_ReadOnlyDirectoryKeepsOriginal(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, ".gitignore")
	original := "*.tmp\n"
	require.NoError(t, os.WriteFile(path, []byte(original), 0o644))
	require.NoError(t, os.Chmod(dir, 0o555))
	t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })

	_, err := Update(path, Patterns("*.log"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrFileOperation))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, original, string(data))
}

func TestUpdatePatterns_CoversUnusualNames(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("glob characters are not valid in Windows file names")
	}
	root := t.TempDir()
	names := []string{"data[1].bin", "what?.iso", "star*.tar", `back\slash.bin`, "trail.bin ", "plain.bin"}
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(root, n), []byte(strings.Repeat("x", 20)), 0o644))
	}
	large, err := domain.NewPattern("*", domain.LargeBinary, 10, "")
	require.NoError(t, err)
	s := scanner.New(rules.NewTable(large))
	ctx := context.Background()

	first, err := s.Scan(ctx, root)
	require.NoError(t, err)
	require.Len(t, first.Findings[domain.LargeBinary], len(names))

	res, err := UpdatePatterns(first, filepath.Join(root, ".gitignore"))
	require.NoError(t, err)
	assert.Contains(t, res.Added, `/data\[1\].bin`)
	assert.Contains(t, res.Added, `/trail.bin\ `)

	// Only the new ignore file itself is large enough to match.
	second, err := s.Scan(ctx, root)
	require.NoError(t, err)
	assert.Equal(t, map[domain.RiskCategory][]string{
		domain.LargeBinary: {".gitignore"},
	}, second.PathsByCategory())
}
