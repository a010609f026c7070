package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleResult() *ScanResult {
	r := NewScanResult("/repo")
	r.TotalFiles = 6
	r.Add(ScanFinding{Path: "logs/z.log", Category: Logs, Pattern: "*.log", Size: 10})
	r.Add(ScanFinding{Path: "app.log", Category: Logs, Pattern: "*.log", Size: 30, Tracked: true})
	r.Add(ScanFinding{Path: "id_rsa", Category: Keys, Pattern: "id_rsa*", Size: 5, Tracked: true})
	r.Add(ScanFinding{Path: "video.mov", Category: LargeBinary, Pattern: "*", Size: 1 << 20, SizeBased: true})
	r.Skip("b.txt", "permission denied")
	r.Skip("a.txt", "permission denied")
	r.Sort()
	return r
}

func TestScanResult_Counts(t *testing.T) {
	r := sampleResult()
	assert.Equal(t, 4, r.TotalMatched)
	assert.False(t, r.Empty())
	assert.True(t, NewScanResult("/x").Empty())
}

func TestScanResult_CategoriesInPriorityOrder(t *testing.T) {
	r := sampleResult()
	assert.Equal(t, []RiskCategory{Keys, Logs, LargeBinary}, r.Categories())
}

func TestScanResult_SortOrdersPaths(t *testing.T) {
	r := sampleResult()
	assert.Equal(t, "app.log", r.Findings[Logs][0].Path)
	assert.Equal(t, "logs/z.log", r.Findings[Logs][1].Path)
	assert.Equal(t, "a.txt", r.Skipped[0].Path)
}

func TestScanResult_CategorySize(t *testing.T) {
	r := sampleResult()
	assert.Equal(t, int64(40), r.CategorySize(Logs))
	assert.Equal(t, int64(0), r.CategorySize(Database))
}

func TestScanResult_AllAndTrackedFindings(t *testing.T) {
	r := sampleResult()

	all := r.AllFindings()
	paths := make([]string, len(all))
	for i, f := range all {
		paths[i] = f.Path
	}
	assert.Equal(t, []string{"id_rsa", "app.log", "logs/z.log", "video.mov"}, paths)

	tracked := r.TrackedFindings()
	assert.Len(t, tracked, 2)
	assert.Equal(t, "id_rsa", tracked[0].Path)
	assert.Equal(t, "app.log", tracked[1].Path)
}

func TestScanResult_PathsByCategory(t *testing.T) {
	got := sampleResult().PathsByCategory()
	assert.Equal(t, map[RiskCategory][]string{
		Keys:        {"id_rsa"},
		Logs:        {"app.log", "logs/z.log"},
		LargeBinary: {"video.mov"},
	}, got)
}

func TestScanFinding_IgnoreLine(t *testing.T) {
	assert.Equal(t, "*.log", ScanFinding{Path: "a/b.log", Pattern: "*.log"}.IgnoreLine())
	assert.Equal(t, "/media/video.mov", ScanFinding{Path: "media/video.mov", Pattern: "*", SizeBased: true}.IgnoreLine())
}

func TestEscapeIgnorePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"media/video.mov", "media/video.mov"},
		{"data[1].bin", `data\[1\].bin`},
		{"what?.iso", `what\?.iso`},
		{"star*.tar", `star\*.tar`},
		{`back\slash.bin`, `back\\slash.bin`},
		{"trail.bin  ", `trail.bin\ \ `},
		{"in side.bin", "in side.bin"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, EscapeIgnorePath(tt.path))
		})
	}
	assert.Equal(t, `/data\[1\].bin`, ScanFinding{Path: "data[1].bin", Pattern: "*", SizeBased: true}.IgnoreLine())
}
