package domain

import (
	"bytes"
	"time"

	"github.com/BurntSushi/toml"
)

// ReportMeta describes when and where a scan ran.
type ReportMeta struct {
	Root             string    `toml:"root"`
	ScannedAt        time.Time `toml:"scanned_at"`
	ScanDurationSecs float64   `toml:"scan_duration_secs"`
	TotalFiles       int       `toml:"total_files"`
	TotalMatched     int       `toml:"total_matched"`
	QGitVersion      string    `toml:"qgit_version,omitempty"`
}

// ReportManifest is the on-disk TOML form of a ScanResult.
type ReportManifest struct {
	Meta     ReportMeta    `toml:"meta"`
	Findings []ScanFinding `toml:"finding,omitempty"`
	Skipped  []SkippedFile `toml:"skipped,omitempty"`
}

// NewReportManifest flattens a result in category priority order.
func NewReportManifest(r *ScanResult, version string) *ReportManifest {
	return &ReportManifest{
		Meta: ReportMeta{
			Root:             r.Root,
			ScannedAt:        r.ScannedAt,
			ScanDurationSecs: r.Duration.Seconds(),
			TotalFiles:       r.TotalFiles,
			TotalMatched:     r.TotalMatched,
			QGitVersion:      version,
		},
		Findings: r.AllFindings(),
		Skipped:  r.Skipped,
	}
}

// Result rebuilds the ScanResult the manifest was created from.
func (m *ReportManifest) Result() *ScanResult {
	r := &ScanResult{
		Root:       m.Meta.Root,
		Findings:   make(map[RiskCategory][]ScanFinding),
		TotalFiles: m.Meta.TotalFiles,
		Skipped:    m.Skipped,
		ScannedAt:  m.Meta.ScannedAt,
		Duration:   time.Duration(m.Meta.ScanDurationSecs * float64(time.Second)),
	}
	for _, f := range m.Findings {
		r.Add(f)
	}
	r.Sort()
	return r
}

// MarshalReport serializes a ScanResult to TOML bytes.
func MarshalReport(r *ScanResult, version string) ([]byte, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	if err := enc.Encode(NewReportManifest(r, version)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalReport deserializes TOML bytes into a ScanResult.
func UnmarshalReport(data []byte) (*ScanResult, error) {
	var m ReportManifest
	if _, err := toml.Decode(string(data), &m); err != nil {
		return nil, err
	}
	return m.Result(), nil
}
