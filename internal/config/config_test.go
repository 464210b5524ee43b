package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pollwatch/pkg/watcher"
)

const sampleConfig = `
env: dev
watch:
  root: /srv/inbox
  filter: "*.csv;*.json"
  ignore: "*.part"
  refresh_rate: 2s
  notify_filters: LastWrite|Size|FileName
  depth: "2"
  queue_size: 8
journal:
  path: /var/lib/pollwatch/journal.db
  max_records: 500
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// unsetEnv clears keys for the duration of the test.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func clearConfigEnv(t *testing.T) {
	unsetEnv(t, "CONFIG_PATH", "ENV",
		"POLLWATCH_ROOT", "POLLWATCH_FILTER", "POLLWATCH_IGNORE",
		"POLLWATCH_REFRESH_RATE", "POLLWATCH_NOTIFY_FILTERS",
		"POLLWATCH_DEPTH", "POLLWATCH_QUEUE_SIZE", "POLLWATCH_JOURNAL")
}

func TestLoad_File(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, WatchConfig{
		Root:          "/srv/inbox",
		Filter:        "*.csv;*.json",
		Ignore:        "*.part",
		RefreshRate:   2 * time.Second,
		NotifyFilters: "LastWrite|Size|FileName",
		Depth:         "2",
		QueueSize:     8,
	}, cfg.Watch)
	assert.Equal(t, "/var/lib/pollwatch/journal.db", cfg.Journal.Path)
	assert.Equal(t, 500, cfg.Journal.MaxRecords)
}

func TestLoad_Defaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, 250*time.Millisecond, cfg.Watch.RefreshRate)
	assert.Equal(t, "LastWrite,FileName", cfg.Watch.NotifyFilters)
	assert.Equal(t, "unbounded", cfg.Watch.Depth)
	assert.Empty(t, cfg.Journal.Path)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearConfigEnv(t)
	path := writeConfig(t, sampleConfig)
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("POLLWATCH_ROOT", "/mnt/other")
	t.Setenv("POLLWATCH_DEPTH", "0")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "/mnt/other", cfg.Watch.Root)
	assert.Equal(t, "0", cfg.Watch.Depth)
	assert.Equal(t, "*.csv;*.json", cfg.Watch.Filter)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "does not exist")
}

func TestMustLoad_Panics(t *testing.T) {
	assert.Panics(t, func() {
		MustLoad(filepath.Join(t.TempDir(), "nope.yaml"))
	})
}

func TestWatchConfig_Builder(t *testing.T) {
	dir := t.TempDir()
	wc := WatchConfig{
		Root:          dir,
		Filter:        "*.txt",
		Ignore:        "tmp",
		RefreshRate:   time.Second,
		NotifyFilters: "Size,FileName",
		Depth:         "1",
	}

	b, err := wc.Builder()
	require.NoError(t, err)

	opts := b.WithOnChanges(func(watcher.Batch) {}).Build()
	require.NoError(t, opts.Validate())
	assert.Equal(t, dir, opts.Root())
	assert.Equal(t, []string{"*.txt"}, opts.Patterns())
	assert.Equal(t, []string{"tmp"}, opts.IgnorePatterns())
	assert.Equal(t, time.Second, opts.RefreshInterval())
	assert.Equal(t, watcher.Size|watcher.FileName, opts.NotifyFilters())
	assert.Equal(t, 1, opts.DirectoryDepth())
}

func TestWatchConfig_BuilderErrors(t *testing.T) {
	_, err := WatchConfig{NotifyFilters: "Everything"}.Builder()
	assert.ErrorIs(t, err, watcher.ErrInvalidConfiguration)

	_, err = WatchConfig{NotifyFilters: "LastWrite", Depth: "deep"}.Builder()
	assert.ErrorIs(t, err, watcher.ErrInvalidConfiguration)
}

func TestParseDepth(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{"", watcher.Unbounded, false},
		{"unbounded", watcher.Unbounded, false},
		{"Unbounded", watcher.Unbounded, false},
		{"-1", watcher.Unbounded, false},
		{"0", 0, false},
		{" 3 ", 3, false},
		{"-2", 0, true},
		{"two", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDepth(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, watcher.ErrInvalidConfiguration)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
