package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Formatter renders a wire result (any of the Schema types) in one
// serialization.
type Formatter interface {
	Format(result interface{}) (string, error)
	FormatToWriter(w io.Writer, result interface{}) error
}

// TextFormatter renders self-documenting YAML, the default.
type TextFormatter struct{}

// NewTextFormatter returns a TextFormatter.
func NewTextFormatter() *TextFormatter { return &TextFormatter{} }

// Format renders result as YAML.
func (f *TextFormatter) Format(result interface{}) (string, error) {
	var buf bytes.Buffer
	if err := f.FormatToWriter(&buf, result); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// FormatToWriter writes YAML output to w.
func (f *TextFormatter) FormatToWriter(w io.Writer, result interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(result)
}

// JSONFormatter renders indented JSON.
type JSONFormatter struct{}

// NewJSONFormatter returns a JSONFormatter.
func NewJSONFormatter() *JSONFormatter { return &JSONFormatter{} }

// Format renders result as JSON.
func (f *JSONFormatter) Format(result interface{}) (string, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal json: %w", err)
	}
	return string(data), nil
}

// FormatToWriter writes JSON output to w.
func (f *JSONFormatter) FormatToWriter(w io.Writer, result interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// For selects the Formatter matching a configured Format.
func For(f Format) Formatter {
	if f == FormatJSON {
		return NewJSONFormatter()
	}
	return NewTextFormatter()
}
