package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/circulate/internal/config"
)

// writeOverlay is a test helper that writes YAML content to a temp file
// and returns its path.
func writeOverlay(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "overlay.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestShallowMergeYAML_SingleSection(t *testing.T) {
	target := config.Default()
	overlay := writeOverlay(t, `
output:
  default_format: json
`)

	require.NoError(t, config.ShallowMergeYAML(target, overlay))
	assert.Equal(t, "json", target.Output.DefaultFormat)
	assert.Equal(t, "info", target.Logging.Level)
	assert.Equal(t, 3, target.Forecast.StepsAhead)
}

func TestShallowMergeYAML_PartialSectionKeepsDefaults(t *testing.T) {
	target := config.Default()
	overlay := writeOverlay(t, `
forecast:
  steps_ahead: 6
matching:
  concurrency: 4
factors:
  min_version: "^2.0"
dataset:
  path: /data/circulate.yaml
`)

	require.NoError(t, config.ShallowMergeYAML(target, overlay))
	assert.Equal(t, 6, target.Forecast.StepsAhead)
	assert.Equal(t, 12, target.Forecast.ColdStartMonths)
	assert.Equal(t, 4, target.Matching.Concurrency)
	assert.Equal(t, "^2.0", target.Factors.MinVersion)
	assert.Equal(t, "/data/circulate.yaml", target.Dataset.Path)
}

func TestShallowMergeYAML_UnknownKeysIgnored(t *testing.T) {
	target := config.Default()
	overlay := writeOverlay(t, `
plugins:
  aws: {}
logging:
  level: warn
`)

	require.NoError(t, config.ShallowMergeYAML(target, overlay))
	assert.Equal(t, "warn", target.Logging.Level)
	assert.Equal(t, "console", target.Logging.Format)
}

func TestShallowMergeYAML_EmptyFile(t *testing.T) {
	target := config.Default()
	require.NoError(t, config.ShallowMergeYAML(target, writeOverlay(t, "# only a comment\n")))
	assert.Equal(t, config.Default(), target)
}

func TestShallowMergeYAML_Errors(t *testing.T) {
	err := config.ShallowMergeYAML(nil, "whatever.yaml")
	require.Error(t, err)

	err = config.ShallowMergeYAML(config.Default(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)

	err = config.ShallowMergeYAML(config.Default(), writeOverlay(t, "output: [unclosed\n"))
	require.Error(t, err)

	err = config.ShallowMergeYAML(config.Default(), writeOverlay(t, "matching:\n  concurrency: lots\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"matching"`)
}
