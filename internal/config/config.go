// Package config implements impactscope's ambient configuration
// surface (spec §6): a `.ix/config.yaml` file, discovered by walking up
// from the working directory, merged over documented defaults and
// validated. Grounded on `hargabyte-cortex/internal/config`'s own
// Load/LoadFromPath/FindConfigDir walk-up-and-merge pattern.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the name of the config file under ConfigDirName.
const ConfigFileName = "config.yaml"

// ConfigDirName is impactscope's dotdir.
const ConfigDirName = ".ix"

// Config holds every option in spec §6's "Configuration surface".
type Config struct {
	Projects   ProjectsConfig   `yaml:"projects"`
	Analysis   AnalysisConfig   `yaml:"analysis"`
	Output     OutputConfig     `yaml:"output"`
	Cache      CacheConfig      `yaml:"cache"`
}

// ProjectsConfig controls which projects participate in analysis.
type ProjectsConfig struct {
	Include           []string `yaml:"include"`
	Exclude           []string `yaml:"exclude"`
	ExcludeTypes      []string `yaml:"exclude-types"`
	TestProjectsOnly  bool     `yaml:"test-projects-only"`
}

// AnalysisConfig controls BFS bounds, parallelism, and the one Open
// Question SPEC_FULL.md §4 resolves explicitly: inclusive dispatch.
// InclusiveDispatch is loaded and merged, but the engine builds every
// call graph with default resolver options, so it stays off whatever
// the file says.
type AnalysisConfig struct {
	MaxParallelism    int     `yaml:"max-parallelism"`
	TimeoutSeconds    int     `yaml:"timeout-seconds"`
	MaxDepth          int     `yaml:"max-depth"`
	InclusiveDispatch bool    `yaml:"inclusive-dispatch"`
}

// OutputConfig controls result serialization.
type OutputConfig struct {
	Format string `yaml:"format"` // "text" | "json"
}

// CacheConfig overrides the per-solution cache root.
type CacheConfig struct {
	Dir string `yaml:"dir"`
}

// ConfidenceLevel names spec §6's enumeration; kept here (rather than
// in internal/impact) so config can validate a loaded value without
// importing the analysis engine.
type ConfidenceLevel string

const (
	Fast   ConfidenceLevel = "Fast"
	Medium ConfidenceLevel = "Medium"
	High   ConfidenceLevel = "High"
	Full   ConfidenceLevel = "Full"
)

var validConfidenceLevels = map[ConfidenceLevel]bool{Fast: true, Medium: true, High: true, Full: true}
var validExcludeTypes = map[string]bool{"orm": true, "database": true, "migration": true, "integration": true, "api": true, "ui": true}
var validFormats = map[string]bool{"text": true, "json": true}

// ErrConfigNotFound is returned when no config directory can be found.
var ErrConfigNotFound = errors.New("config directory not found")

// ErrInvalidConfig is returned when config validation fails.
var ErrInvalidConfig = errors.New("invalid configuration")

// Load reads config from .ix/config.yaml, walking up from workDir; if
// none is found, returns defaults.
func Load(workDir string) (*Config, error) {
	dir, err := FindConfigDir(workDir)
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFromPath(filepath.Join(dir, ConfigFileName))
}

// LoadFromPath reads config from an exact path, merging with defaults
// and validating the result.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	loaded := &Config{}
	if err := yaml.Unmarshal(data, loaded); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	merged := Merge(loaded, DefaultConfig())
	if err := Validate(merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// FindConfigDir walks up from startDir looking for a .ix directory.
func FindConfigDir(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolve path: %w", err)
	}
	dir := abs
	for {
		candidate := filepath.Join(dir, ConfigDirName)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrConfigNotFound
		}
		dir = parent
	}
}

// EnsureConfigDir creates .ix under workDir if it doesn't exist.
func EnsureConfigDir(workDir string) (string, error) {
	abs, err := filepath.Abs(workDir)
	if err != nil {
		return "", fmt.Errorf("resolve path: %w", err)
	}
	dir := filepath.Join(abs, ConfigDirName)
	if info, err := os.Stat(dir); err == nil {
		if !info.IsDir() {
			return "", fmt.Errorf("%s exists and is not a directory", dir)
		}
		return dir, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}
	return dir, nil
}

// Validate checks that every configured value is within its documented
// range or enumeration.
func Validate(cfg *Config) error {
	if cfg.Output.Format != "" && !validFormats[cfg.Output.Format] {
		return fmt.Errorf("%w: output.format must be one of text|json, got %q", ErrInvalidConfig, cfg.Output.Format)
	}
	for _, t := range cfg.Projects.ExcludeTypes {
		if !validExcludeTypes[t] {
			return fmt.Errorf("%w: projects.exclude-types entry %q not recognized", ErrInvalidConfig, t)
		}
	}
	if cfg.Analysis.MaxDepth < 0 {
		return fmt.Errorf("%w: analysis.max-depth must be non-negative, got %d", ErrInvalidConfig, cfg.Analysis.MaxDepth)
	}
	if cfg.Analysis.MaxParallelism < 0 {
		return fmt.Errorf("%w: analysis.max-parallelism must be non-negative, got %d", ErrInvalidConfig, cfg.Analysis.MaxParallelism)
	}
	if cfg.Analysis.TimeoutSeconds <= 0 {
		return fmt.Errorf("%w: analysis.timeout-seconds must be positive, got %d", ErrInvalidConfig, cfg.Analysis.TimeoutSeconds)
	}
	return nil
}

// IsValidConfidenceLevel reports whether s names one of the four
// selection confidence levels spec §6 defines.
func IsValidConfidenceLevel(s string) bool {
	return validConfidenceLevels[ConfidenceLevel(s)]
}
