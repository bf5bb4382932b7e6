// Package output provides the wire representation of analysis results
// (spec §6) and the YAML/JSON formatters that serialize it, adapted
// from `hargabyte-cortex/internal/output`'s Format/Formatter split:
// self-documenting YAML as the default, JSON as the machine-readable
// alternative, both driven by the same struct tags.
package output
