package output

import "strings"

// Format selects how the cluster summary is printed.
type Format string

const (
	// FormatTable prints a styled table.
	FormatTable Format = "table"

	// FormatYAML prints YAML.
	FormatYAML Format = "yaml"

	// FormatJSON prints JSON.
	FormatJSON Format = "json"
)

// String returns the format name.
func (f Format) String() string {
	return string(f)
}

// IsValid reports whether f is a known format.
func (f Format) IsValid() bool {
	switch f {
	case FormatTable, FormatYAML, FormatJSON:
		return true
	default:
		return false
	}
}

// ParseFormat parses a format name. Empty or unknown names yield
// FormatTable.
func ParseFormat(s string) Format {
	switch strings.ToLower(s) {
	case "yaml", "yml":
		return FormatYAML
	case "json":
		return FormatJSON
	default:
		return FormatTable
	}
}

// ValidFormats lists the accepted format names.
func ValidFormats() []string {
	return []string{"table", "yaml", "json"}
}
