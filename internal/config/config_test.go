package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromPath_MissingFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadFromPath(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "text", cfg.Output.Format)
	assert.Equal(t, 300, cfg.Analysis.TimeoutSeconds)
}

func TestLoadFromPath_MergesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
output:
  format: json
analysis:
  max-depth: 5
projects:
  exclude-types:
    - migration
    - ui
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, 5, cfg.Analysis.MaxDepth)
	assert.Equal(t, 300, cfg.Analysis.TimeoutSeconds, "unset field keeps default")
	assert.ElementsMatch(t, []string{"migration", "ui"}, cfg.Projects.ExcludeTypes)
}

func TestLoadFromPath_RejectsUnknownFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output:\n  format: xml\n"), 0644))

	_, err := LoadFromPath(path)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestFindConfigDir_WalksUp(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ConfigDirName), 0755))
	nested := filepath.Join(root, "src", "Project")
	require.NoError(t, os.MkdirAll(nested, 0755))

	found, err := FindConfigDir(nested)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, ConfigDirName), found)
}

func TestFindConfigDir_NotFound(t *testing.T) {
	dir := t.TempDir()
	_, err := FindConfigDir(dir)
	assert.ErrorIs(t, err, ErrConfigNotFound)
}
