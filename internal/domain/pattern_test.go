package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustPattern(t *testing.T, glob string, c RiskCategory, minSize int64) RiskPattern {
	t.Helper()
	p, err := NewPattern(glob, c, minSize, "")
	require.NoError(t, err)
	return p
}

func TestRiskPattern_Matches(t *testing.T) {
	tests := []struct {
		name    string
		glob    string
		minSize int64
		path    string
		size    int64
		want    bool
	}{
		{name: "basename glob at root", glob: "*.log", path: "app.log", want: true},
		{name: "basename glob nested", glob: "*.log", path: "var/logs/app.log", want: true},
		{name: "basename glob miss", glob: "*.log", path: "app.go", want: false},
		{name: "star matches dotfile", glob: "*.env", path: "secrets/.env", want: true},
		{name: "prefix glob", glob: "id_rsa*", path: "home/id_rsa.pub", want: true},
		{name: "exact name", glob: ".DS_Store", path: "a/b/.DS_Store", want: true},
		{name: "anchored path", glob: "/config/secrets.yml", path: "config/secrets.yml", want: true},
		{name: "anchored path elsewhere", glob: "/config/secrets.yml", path: "x/config/secrets.yml", want: false},
		{name: "directory glob covers files", glob: ".idea/", path: ".idea/workspace.xml", want: true},
		{name: "double star", glob: "**/dumps/*.sql", path: "db/dumps/all.sql", want: true},
		{name: "size rule below threshold", glob: "*", minSize: 100, path: "big.bin", size: 99, want: false},
		{name: "size rule at threshold", glob: "*", minSize: 100, path: "big.bin", size: 100, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := mustPattern(t, tt.glob, Logs, tt.minSize)
			assert.Equal(t, tt.want, p.Matches(tt.path, tt.size))
		})
	}
}

func TestRiskPattern_MatchesWithoutConstructor(t *testing.T) {
	p := RiskPattern{Glob: "*.pem", Category: Keys}
	assert.True(t, p.Matches("certs/server.pem", 10))
	assert.False(t, p.Matches("certs/server.crt", 10))
}

func TestNewPattern_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		glob     string
		category RiskCategory
		minSize  int64
	}{
		{name: "empty glob", glob: "  ", category: Logs},
		{name: "negated glob", glob: "!keep.log", category: Logs},
		{name: "comment", glob: "# note", category: Logs},
		{name: "bad category", glob: "*.log", category: RiskCategory(-1)},
		{name: "negative size", glob: "*", category: LargeBinary, minSize: -1},
		{name: "malformed class", glob: "[a-", category: Logs},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPattern(tt.glob, tt.category, tt.minSize, "")
			assert.Error(t, err)
		})
	}
}

func TestRiskPattern_EqualIgnoresDescription(t *testing.T) {
	a := mustPattern(t, "*.log", Logs, 0)
	b, err := NewPattern("*.log", Logs, 0, "log files")
	require.NoError(t, err)
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(mustPattern(t, "*.log", Backup, 0)))
	assert.True(t, mustPattern(t, "*", LargeBinary, 5).SizeBased())
}
