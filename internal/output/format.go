package output

import (
	"fmt"
	"strings"
)

// Format is the output serialization (spec §6's `output.format`: only
// text and json are in scope; "text" renders as self-documenting YAML,
// the readable default).
type Format string

const (
	// FormatText is the default self-documenting YAML rendering.
	FormatText Format = "text"

	// FormatJSON is the machine-readable serialization.
	FormatJSON Format = "json"
)

// DefaultFormat is used when no format is configured.
const DefaultFormat = FormatText

// ParseFormat parses a format string into a Format value. Accepts
// "text" and "json" (case-insensitive).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "yaml", "":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("invalid format: %q (expected text or json)", s)
	}
}

// String implements fmt.Stringer.
func (f Format) String() string { return string(f) }

// ValidateFormat checks if a format value is one of the two supported.
func ValidateFormat(f Format) bool {
	return f == FormatText || f == FormatJSON
}
