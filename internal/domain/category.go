package domain

import "fmt"

// RiskCategory is the classification bucket a risky file falls into.
// Categories are declared in report priority order.
type RiskCategory int

const (
	Credentials RiskCategory = iota
	Keys
	EnvFiles
	Database
	Backup
	Logs
	LargeBinary
	Cache
	IDE
	Build
)

// AllCategories returns every category in priority order.
func AllCategories() []RiskCategory {
	return []RiskCategory{
		Credentials, Keys, EnvFiles, Database, Backup,
		Logs, LargeBinary, Cache, IDE, Build,
	}
}

// String returns the stable identifier used in rule tables and manifests.
func (c RiskCategory) String() string {
	switch c {
	case Credentials:
		return "credentials"
	case Keys:
		return "keys"
	case EnvFiles:
		return "env_files"
	case Database:
		return "database"
	case Backup:
		return "backup"
	case Logs:
		return "logs"
	case LargeBinary:
		return "large_binary"
	case Cache:
		return "cache"
	case IDE:
		return "ide"
	case Build:
		return "build"
	default:
		return "unknown"
	}
}

// Label returns the human readable section title.
func (c RiskCategory) Label() string {
	switch c {
	case Credentials:
		return "Credentials"
	case Keys:
		return "Private Keys"
	case EnvFiles:
		return "Environment Files"
	case Database:
		return "Databases"
	case Backup:
		return "Backups & Temp Files"
	case Logs:
		return "Logs"
	case LargeBinary:
		return "Large Binaries"
	case Cache:
		return "Caches & OS Clutter"
	case IDE:
		return "IDE Settings"
	case Build:
		return "Build Output"
	default:
		return "Unknown"
	}
}

// Emoji returns the display emoji for the category.
func (c RiskCategory) Emoji() string {
	switch c {
	case Credentials:
		return "🔐"
	case Keys:
		return "🔑"
	case EnvFiles:
		return "🌍"
	case Database:
		return "🗄️"
	case Backup:
		return "💾"
	case Logs:
		return "📝"
	case LargeBinary:
		return "📦"
	case Cache:
		return "🧹"
	case IDE:
		return "🛠️"
	case Build:
		return "🏗️"
	default:
		return "❓"
	}
}

// Priority orders report sections; lower sorts first.
func (c RiskCategory) Priority() int {
	return int(c)
}

// Sensitivity grades the damage done once a file reaches history.
type Sensitivity int

const (
	Public    Sensitivity = iota // clutter: build output, caches, editor state
	Sensitive                    // private data: dumps, backups, logs
	Secret                       // credentials, keys, env files
)

var sensitivityNames = [...]string{Public: "public", Sensitive: "sensitive", Secret: "secret"}

func (s Sensitivity) String() string {
	if s < Public || s > Secret {
		return "unknown"
	}
	return sensitivityNames[s]
}

// Sensitivity classifies how harmful a leak of this category is.
func (c RiskCategory) Sensitivity() Sensitivity {
	switch c {
	case Credentials, Keys, EnvFiles:
		return Secret
	case Database, Backup, Logs:
		return Sensitive
	case LargeBinary, Cache, IDE, Build:
		return Public
	default:
		return Public
	}
}

// Valid reports whether c is one of the declared categories.
func (c RiskCategory) Valid() bool {
	return c >= Credentials && c <= Build
}

// ParseCategory converts an identifier produced by String back to a category.
func ParseCategory(s string) (RiskCategory, error) {
	for _, c := range AllCategories() {
		if c.String() == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown risk category %q", s)
}

// MarshalText lets TOML and JSON encoders write the identifier instead of the number.
func (c RiskCategory) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid risk category %d", int(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText parses an identifier written by MarshalText.
func (c *RiskCategory) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
