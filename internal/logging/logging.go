// Package logging provides structured logging using slog.
// Logs are written to .playlog/debug.log in append mode.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	// LogFileName is the name of the debug log file.
	LogFileName = "debug.log"
	// ConfigDir is the directory name for project configuration.
	ConfigDir = ".playlog"
)

// Options select where and how much Init logs.
type Options struct {
	// Root is the project directory. Logging is disabled when Root and Writer are both empty.
	Root string
	// Level is the minimum level written.
	Level slog.Level
	// Writer replaces the project log file when set.
	Writer io.Writer
}

var (
	mu      sync.RWMutex
	level   = new(slog.LevelVar)
	logger  = slog.New(slog.NewJSONHandler(io.Discard, nil))
	logFile *os.File
)

// ParseLevel converts a configured level name to a slog level.
// An empty name means debug.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelDebug, fmt.Errorf("unknown log level %q", name)
}

// Init replaces the package logger. Any previously opened log file is closed.
// Failing to open the log file is reported and leaves logging disabled.
func Init(opts Options) error {
	mu.Lock()
	defer mu.Unlock()

	closeFile()
	level.Set(opts.Level)

	w := opts.Writer
	var err error
	if w == nil {
		w, err = openLogFile(opts.Root)
	}
	logger = slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	return err
}

// openLogFile opens <root>/.playlog/debug.log for appending, or io.Discard without a root.
func openLogFile(root string) (io.Writer, error) {
	if root == "" {
		return io.Discard, nil
	}
	dir := filepath.Join(root, ConfigDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return io.Discard, fmt.Errorf("failed to create %s: %w", dir, err)
	}
	f, err := os.OpenFile(filepath.Join(dir, LogFileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return io.Discard, fmt.Errorf("failed to open log file: %w", err)
	}
	logFile = f
	return f, nil
}

func closeFile() error {
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}

// SetLevel changes the minimum level without reopening the log.
func SetLevel(l slog.Level) {
	level.Set(l)
}

// Close closes the log file and stops logging.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	return closeFile()
}

// Logger returns the current logger.
func Logger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Component returns the current logger tagged with a component attribute.
// Call it per use: a stored result does not follow a later Init.
func Component(name string) *slog.Logger {
	return Logger().With("component", name)
}

// Debug logs at debug level.
func Debug(msg string, args ...any) {
	Logger().Debug(msg, args...)
}

// Info logs at info level.
func Info(msg string, args ...any) {
	Logger().Info(msg, args...)
}

// Warn logs at warning level.
func Warn(msg string, args ...any) {
	Logger().Warn(msg, args...)
}

// InfoContext logs at info level with context.
func InfoContext(ctx context.Context, msg string, args ...any) {
	Logger().InfoContext(ctx, msg, args...)
}

// WarnContext logs at warning level with context.
func WarnContext(ctx context.Context, msg string, args ...any) {
	Logger().WarnContext(ctx, msg, args...)
}

// ErrorContext logs at error level with context.
func ErrorContext(ctx context.Context, msg string, args ...any) {
	Logger().ErrorContext(ctx, msg, args...)
}
