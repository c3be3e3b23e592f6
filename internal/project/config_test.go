package project

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int { return &n }

func TestGeneratedConfigRoundTrip(t *testing.T) {
	original := &Config{
		Project: ProjectConfig{
			Name:      `ops "runs"\prod`,
			CreatedAt: time.Date(2026, 1, 26, 10, 30, 0, 0, time.UTC),
		},
	}

	content := original.GenerateDocumentedConfig()

	var loaded Config
	_, err := toml.Decode(content, &loaded)
	require.NoError(t, err, "generated config is not valid TOML:\n%s", content)
	assert.Equal(t, original.Project.Name, loaded.Project.Name)
	assert.True(t, loaded.Project.CreatedAt.Equal(original.Project.CreatedAt))

	// Every optional setting is commented out, so defaults apply.
	assert.Equal(t, 500, loaded.Parser.GetPreviewChars())
	assert.Equal(t, ":8080", loaded.Server.GetAddr())
	assert.Equal(t, 30*time.Second, loaded.Server.GetCacheTTL())
	assert.Equal(t, "*.log", loaded.Watcher.GetPattern())
	assert.Equal(t, 500*time.Millisecond, loaded.Watcher.GetDebounce())
	assert.Equal(t, slog.LevelDebug, loaded.Logging.GetLevel())
}

func TestConfigOverrides(t *testing.T) {
	content := `
[parser]
preview_chars = 80

[server]
addr = "127.0.0.1:9000"
cache_ttl_seconds = 0

[watcher]
pattern = "*.txt"
debounce_ms = 50

[logging]
level = "warn"
`
	var cfg Config
	_, err := toml.Decode(content, &cfg)
	require.NoError(t, err)

	assert.Equal(t, 80, cfg.Parser.GetPreviewChars())
	assert.Equal(t, 80, cfg.Parser.Options().PreviewChars)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.GetAddr())
	assert.Equal(t, time.Duration(0), cfg.Server.GetCacheTTL(), "zero disables caching")
	assert.Equal(t, "*.txt", cfg.Watcher.GetPattern())
	assert.Equal(t, 50*time.Millisecond, cfg.Watcher.GetDebounce())
	assert.Equal(t, slog.LevelWarn, cfg.Logging.GetLevel())
}

func TestConfigInvalidValuesFallBack(t *testing.T) {
	cfg := Config{
		Parser:  ParserConfig{PreviewChars: intPtr(-1)},
		Server:  ServerConfig{CacheTTLSeconds: intPtr(-5)},
		Watcher: WatcherConfig{Pattern: "[", DebounceMS: intPtr(0)},
		Logging: LoggingConfig{Level: "loud"},
	}

	assert.Equal(t, 500, cfg.Parser.GetPreviewChars())
	assert.Equal(t, 30*time.Second, cfg.Server.GetCacheTTL())
	assert.Equal(t, "*.log", cfg.Watcher.GetPattern())
	assert.Equal(t, 500*time.Millisecond, cfg.Watcher.GetDebounce())
	assert.Equal(t, slog.LevelDebug, cfg.Logging.GetLevel())
}

func TestCreateAndFind(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()

	proj, err := Create(ctx, root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Base(root), proj.Config.Project.Name)
	require.NotNil(t, proj.DB)
	require.NoError(t, proj.Close())

	_, err = Create(ctx, root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))

	found, err := Find(ctx, nested)
	require.NoError(t, err)
	defer found.Close()
	assert.Equal(t, proj.Root, found.Root)
	assert.Equal(t, filepath.Join(root, ConfigDir, DBFile), found.DBPath())

	logs, err := found.DB.ListLogs(ctx)
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestFind_NoProject(t *testing.T) {
	_, err := Find(context.Background(), t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no project found")
}

func TestLocate(t *testing.T) {
	root := t.TempDir()
	proj, err := Create(context.Background(), root)
	require.NoError(t, err)
	require.NoError(t, proj.Close())

	deep := filepath.Join(root, "x", "y", "z")
	require.NoError(t, os.MkdirAll(deep, 0755))

	got, err := Locate(deep)
	require.NoError(t, err)
	assert.Equal(t, proj.Root, got)
	assert.Equal(t, filepath.Join(root, ConfigDir, ConfigFile), proj.ConfigPath())

	// A bare .playlog directory without config.toml is not a project.
	bare := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(bare, ConfigDir), 0755))
	_, err = Locate(bare)
	assert.Error(t, err)
}
