package project

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/newhook/playlog/internal/db"
	"github.com/newhook/playlog/internal/logging"
)

const (
	// ConfigDir is the directory name for project configuration.
	ConfigDir = logging.ConfigDir
	// ConfigFile is the name of the project config file.
	ConfigFile = "config.toml"
	// DBFile is the name of the run database file.
	DBFile = "playlog.db"
)

// Project is a directory holding a .playlog/ configuration and run database.
type Project struct {
	Root   string  // Project directory path
	Config *Config // Parsed config.toml
	DB     *db.DB  // Run database
}

// Find loads the project enclosing dir, or the working directory when dir is empty.
func Find(ctx context.Context, dir string) (*Project, error) {
	root, err := Locate(dir)
	if err != nil {
		return nil, err
	}
	return open(ctx, root)
}

// Locate returns the nearest directory at or above start holding .playlog/config.toml.
func Locate(start string) (string, error) {
	if start == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		start = wd
	}
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}
	for ; ; dir = filepath.Dir(dir) {
		if isProject(dir) {
			return dir, nil
		}
		if filepath.Dir(dir) == dir {
			return "", fmt.Errorf("no project found (no %s directory)", ConfigDir)
		}
	}
}

func isProject(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, ConfigDir, ConfigFile))
	return err == nil && !info.IsDir()
}

func open(ctx context.Context, root string) (*Project, error) {
	p := &Project{Root: root}
	cfg, err := LoadConfig(p.ConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", p.ConfigPath(), err)
	}
	p.Config = cfg

	// Logging first so migrations run on open are recorded.
	if err := logging.Init(logging.Options{Root: root, Level: cfg.Logging.GetLevel()}); err != nil {
		logging.Warn("failed to initialize logging", "error", err)
	}

	if p.DB, err = db.OpenPath(ctx, p.DBPath()); err != nil {
		return nil, fmt.Errorf("failed to open run database: %w", err)
	}
	return p, nil
}

// Create initializes a new project at dir and writes a documented config.toml.
func Create(ctx context.Context, dir string) (*Project, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}
	if isProject(root) {
		return nil, fmt.Errorf("project already exists at %s", root)
	}

	p := &Project{
		Root: root,
		Config: &Config{Project: ProjectConfig{
			Name:      filepath.Base(root),
			CreatedAt: time.Now().UTC().Truncate(time.Second),
		}},
	}
	stateDir := filepath.Join(root, ConfigDir)
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", stateDir, err)
	}
	undo := func() { _ = os.RemoveAll(stateDir) }

	if err := p.Config.SaveDocumentedConfig(p.ConfigPath()); err != nil {
		undo()
		return nil, err
	}
	if p.DB, err = db.OpenPath(ctx, p.DBPath()); err != nil {
		undo()
		return nil, fmt.Errorf("failed to initialize run database: %w", err)
	}
	return p, nil
}

// ConfigPath returns the path of config.toml.
func (p *Project) ConfigPath() string {
	return filepath.Join(p.Root, ConfigDir, ConfigFile)
}

// DBPath returns the path of the run database.
func (p *Project) DBPath() string {
	return filepath.Join(p.Root, ConfigDir, DBFile)
}

// Close closes the database and the debug log.
func (p *Project) Close() error {
	var errs []error
	if p.DB != nil {
		if err := p.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing database: %w", err))
		}
	}
	if err := logging.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing log: %w", err))
	}
	return errors.Join(errs...)
}
