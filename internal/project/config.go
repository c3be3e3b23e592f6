package project

import (
	"bytes"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/newhook/playlog/internal/logging"
	"github.com/newhook/playlog/internal/logparser"
)

//go:embed templates/config.tmpl
var configTemplateText string

// Config represents the project configuration stored in .playlog/config.toml.
type Config struct {
	Project ProjectConfig `toml:"project"`
	Parser  ParserConfig  `toml:"parser"`
	Server  ServerConfig  `toml:"server"`
	Watcher WatcherConfig `toml:"watcher"`
	Logging LoggingConfig `toml:"logging"`
}

// ProjectConfig contains project metadata.
type ProjectConfig struct {
	Name      string    `toml:"name"`
	CreatedAt time.Time `toml:"created_at"`
}

// ParserConfig contains transcript parser configuration.
type ParserConfig struct {
	// PreviewChars bounds the raw content echoed back with a parse failure.
	// Defaults to 500 when not specified.
	PreviewChars *int `toml:"preview_chars"`
}

// GetPreviewChars returns the configured preview length.
func (p *ParserConfig) GetPreviewChars() int {
	if p.PreviewChars == nil || *p.PreviewChars <= 0 {
		return logparser.DefaultPreviewChars
	}
	return *p.PreviewChars
}

// Options returns the parser options for this configuration.
func (p *ParserConfig) Options() logparser.Options {
	return logparser.Options{PreviewChars: p.GetPreviewChars()}
}

// ServerConfig contains HTTP API configuration.
type ServerConfig struct {
	Addr string `toml:"addr"`

	// CacheTTLSeconds is how long log detail responses are cached.
	// Defaults to 30 seconds when not specified.
	CacheTTLSeconds *int `toml:"cache_ttl_seconds"`
}

// GetAddr returns the listen address or ":8080" if not set.
func (s *ServerConfig) GetAddr() string {
	if s.Addr == "" {
		return ":8080"
	}
	return s.Addr
}

// GetCacheTTL returns the detail cache lifetime.
func (s *ServerConfig) GetCacheTTL() time.Duration {
	if s.CacheTTLSeconds == nil || *s.CacheTTLSeconds < 0 {
		return 30 * time.Second
	}
	return time.Duration(*s.CacheTTLSeconds) * time.Second
}

// WatcherConfig contains directory watcher configuration.
type WatcherConfig struct {
	// Pattern is a glob matched against file base names. Defaults to "*.log".
	Pattern string `toml:"pattern"`

	// DebounceMS is how long a file must be quiet before it is imported.
	// Defaults to 500 milliseconds when not specified.
	DebounceMS *int `toml:"debounce_ms"`
}

// GetPattern returns the file pattern, validated as a glob.
func (w *WatcherConfig) GetPattern() string {
	if w.Pattern == "" {
		return "*.log"
	}
	if _, err := filepath.Match(w.Pattern, ""); err != nil {
		return "*.log"
	}
	return w.Pattern
}

// GetDebounce returns the quiet period before import.
func (w *WatcherConfig) GetDebounce() time.Duration {
	if w.DebounceMS == nil || *w.DebounceMS <= 0 {
		return 500 * time.Millisecond
	}
	return time.Duration(*w.DebounceMS) * time.Millisecond
}

// LoggingConfig contains debug log configuration.
type LoggingConfig struct {
	// Level is one of "debug", "info", "warn", "error". Defaults to "debug".
	Level string `toml:"level"`
}

// GetLevel returns the slog level, falling back to debug for unknown names.
func (l *LoggingConfig) GetLevel() slog.Level {
	level, err := logging.ParseLevel(l.Level)
	if err != nil {
		return slog.LevelDebug
	}
	return level
}

// LoadConfig reads and parses a config.toml file.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// SaveConfig writes the config to the specified path.
func (c *Config) SaveConfig(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// SaveDocumentedConfig writes a fully documented config to the specified path.
func (c *Config) SaveDocumentedConfig(path string) error {
	content := c.GenerateDocumentedConfig()
	return os.WriteFile(path, []byte(content), 0600)
}

type configTemplateData struct {
	ProjectName string
	CreatedAt   string
}

// tomlString formats a string for TOML output with proper escaping.
func tomlString(s string) string {
	escaped := strings.ReplaceAll(s, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	escaped = strings.ReplaceAll(escaped, "\n", `\n`)
	escaped = strings.ReplaceAll(escaped, "\r", `\r`)
	escaped = strings.ReplaceAll(escaped, "\t", `\t`)
	return `"` + escaped + `"`
}

var configTemplate = template.Must(template.New("config").Funcs(template.FuncMap{
	"tomlString": tomlString,
}).Parse(configTemplateText))

// GenerateDocumentedConfig renders config.toml with the project values set and every
// optional section present as commented-out defaults.
func (c *Config) GenerateDocumentedConfig() string {
	data := configTemplateData{
		ProjectName: c.Project.Name,
		CreatedAt:   c.Project.CreatedAt.Format(time.RFC3339),
	}

	var buf bytes.Buffer
	if err := configTemplate.Execute(&buf, data); err != nil {
		return fmt.Sprintf("[project]\nname = %s\ncreated_at = %s\n", tomlString(c.Project.Name), data.CreatedAt)
	}
	return buf.String()
}
