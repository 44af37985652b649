package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "gemini-pro", cfg.AI.GeminiModel)
	assert.Equal(t, "gpt-3.5-turbo", cfg.AI.GPTModel)
	assert.Zero(t, cfg.AI.RequestTimeout)
	assert.True(t, cfg.Tasks.Persist)
}

func TestLoadOverridesAndResolvesPaths(t *testing.T) {
	path := writeConfig(t, `
db_path: data/board.db
data_file: /etc/planboard/plans.yaml
log_level: DEBUG
ai:
  gpt_model: gpt-4o
  request_timeout: 30s
tasks:
  latency: 250ms
  persist: false
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	dir := filepath.Dir(path)
	assert.Equal(t, filepath.Join(dir, "data", "board.db"), cfg.DBPath)
	assert.Equal(t, "/etc/planboard/plans.yaml", cfg.DataFile)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "gpt-4o", cfg.AI.GPTModel)
	assert.Equal(t, "gemini-pro", cfg.AI.GeminiModel, "unset model keeps default")
	assert.Equal(t, 30*time.Second, cfg.AI.RequestTimeout)
	assert.Equal(t, 250*time.Millisecond, cfg.Tasks.Latency)
	assert.False(t, cfg.Tasks.Persist)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad yaml", "db_path: [unterminated"},
		{"bad level", "log_level: verbose"},
		{"negative timeout", "ai:\n  request_timeout: -1s"},
		{"negative latency", "tasks:\n  latency: -5ms"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Equal(t, Default(), cfg)
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	want := Default()
	want.DBPath = "/tmp/board.db"
	want.LogFile = "/tmp/board.log"
	want.AI.RequestTimeout = time.Minute

	require.NoError(t, Save(path, want))
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDefaultPath(t *testing.T) {
	path, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, "config.yaml", filepath.Base(path))
	assert.Equal(t, AppDir, filepath.Base(filepath.Dir(path)))
}
