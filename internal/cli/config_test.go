package cli

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/tagshelf/internal/catalog"
	"github.com/mesh-intelligence/tagshelf/internal/errs"
	"github.com/mesh-intelligence/tagshelf/internal/fuzzy"
)

func TestLoadConfig_Defaults(t *testing.T) {
	v, err := loadConfig(filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)

	s, err := settingsFrom(v)
	require.NoError(t, err)
	assert.Equal(t, "", s.DataDir)
	assert.Equal(t, slog.LevelWarn, s.LogLevel)
	assert.Equal(t, fuzzy.DefaultOptions(), s.Search)
	assert.Equal(t, catalog.PolicyCascade, s.DeletePolicy)
	assert.Equal(t, 200*time.Millisecond, s.HoldInterval)
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	content := `data_dir: /srv/tags
log_level: debug
search:
  mode: subsequence
  threshold: 0.5
  distance: 10
categories:
  delete_policy: orphan
weights:
  hold_interval: 50ms
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileExt), []byte(content), 0o644))

	v, err := loadConfig(dir)
	require.NoError(t, err)
	s, err := settingsFrom(v)
	require.NoError(t, err)

	assert.Equal(t, "/srv/tags", s.DataDir)
	assert.Equal(t, slog.LevelDebug, s.LogLevel)
	assert.Equal(t, fuzzy.Options{Mode: fuzzy.ModeSubsequence, Threshold: 0.5, Distance: 10}, s.Search)
	assert.Equal(t, catalog.PolicyOrphan, s.DeletePolicy)
	assert.Equal(t, 50*time.Millisecond, s.HoldInterval)
}

func TestLoadConfig_Malformed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileExt), []byte("search: [unclosed\n"), 0o644))

	_, err := loadConfig(dir)
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))
}

func TestSettingsFrom_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		key     string
	}{
		{"log level", "log_level: loud\n", cfgKeyLogLevel},
		{"search mode", "search:\n  mode: telepathic\n", cfgKeySearchMode},
		{"threshold", "search:\n  threshold: 1.5\n", cfgKeySearchThreshold},
		{"delete policy", "categories:\n  delete_policy: shred\n", cfgKeyDeletePolicy},
		{"hold interval", "weights:\n  hold_interval: 0s\n", cfgKeyHoldInterval},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, configFileExt), []byte(tt.content), 0o644))
			v, err := loadConfig(dir)
			require.NoError(t, err)

			_, err = settingsFrom(v)
			require.Error(t, err)
			assert.True(t, errs.IsValidation(err))
			assert.Equal(t, tt.key, errs.FieldsOf(err)["key"])
		})
	}
}

func TestWriteConfigIfMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), configFileExt)

	created, err := writeConfigIfMissing(path, "")
	require.NoError(t, err)
	assert.True(t, created)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "data_dir")

	// The written file loads back to the defaults.
	v, err := loadConfig(filepath.Dir(path))
	require.NoError(t, err)
	s, err := settingsFrom(v)
	require.NoError(t, err)
	assert.Equal(t, fuzzy.DefaultOptions(), s.Search)
	assert.Equal(t, 200*time.Millisecond, s.HoldInterval)

	created, err = writeConfigIfMissing(path, "/elsewhere")
	require.NoError(t, err)
	assert.False(t, created)
}

func TestParseLevel(t *testing.T) {
	level, err := parseLevel("")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)

	level, err = parseLevel(" ERROR ")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelError, level)

	_, err = parseLevel("chatty")
	assert.Error(t, err)
}
