package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{in: "", want: slog.LevelDebug},
		{in: "DEBUG", want: slog.LevelDebug},
		{in: "info", want: slog.LevelInfo},
		{in: " warning ", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "verbose", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func entries(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var e map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &e), line)
		out = append(out, e)
	}
	return out
}

func TestInit_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Init(Options{Level: slog.LevelInfo, Writer: &buf}))
	t.Cleanup(func() { _ = Close() })

	Debug("hidden")
	Info("imported run", "log_id", "abc")

	got := entries(t, &buf)
	require.Len(t, got, 1)
	assert.Equal(t, "imported run", got[0]["msg"])
	assert.Equal(t, "abc", got[0]["log_id"])
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Init(Options{Level: slog.LevelWarn, Writer: &buf}))
	t.Cleanup(func() { _ = Close() })

	Info("before")
	SetLevel(slog.LevelDebug)
	Debug("after")

	got := entries(t, &buf)
	require.Len(t, got, 1)
	assert.Equal(t, "after", got[0]["msg"])
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Init(Options{Writer: &buf}))
	t.Cleanup(func() { _ = Close() })

	Component("watcher").Warn("import failed", "path", "/tmp/x.log")

	got := entries(t, &buf)
	require.Len(t, got, 1)
	assert.Equal(t, "watcher", got[0]["component"])
	assert.Equal(t, "WARN", got[0]["level"])
}

func TestInit_WritesProjectLogFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, Init(Options{Root: root}))
	Warn("watch", "path", "/tmp/x.log")
	require.NoError(t, Close())

	Info("after close is discarded")

	data, err := os.ReadFile(filepath.Join(root, ConfigDir, LogFileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"watch"`)
	assert.NotContains(t, string(data), "after close")
}

func TestInit_UnwritableRootFallsBackToDiscard(t *testing.T) {
	root := t.TempDir()
	blocker := filepath.Join(root, ConfigDir)
	require.NoError(t, os.WriteFile(blocker, []byte("not a dir"), 0644))

	err := Init(Options{Root: root})
	t.Cleanup(func() { _ = Close() })
	require.Error(t, err)

	assert.NotPanics(t, func() { Info("dropped") })
}
