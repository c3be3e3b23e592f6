package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

var (
	// ErrNotFound is returned when a log does not exist.
	ErrNotFound = errors.New("not found")
	// ErrParseFailed is returned when asked to store an unsuccessful parse.
	ErrParseFailed = errors.New("parse failed")
	// ErrInvalidTitle is returned for an empty log title.
	ErrInvalidTitle = errors.New("title cannot be empty")
)

// DB wraps the SQLite database connection.
type DB struct {
	*sql.DB
	now func() time.Time
}

// OpenPath opens the database at dbPath and runs migrations.
func OpenPath(ctx context.Context, dbPath string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite3", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == MemoryPath {
		// Every connection to :memory: is a separate database.
		sqlDB.SetMaxOpenConns(1)
	}

	if err := RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &DB{DB: sqlDB, now: time.Now}, nil
}

func dsn(dbPath string) string {
	if dbPath == MemoryPath {
		return "file::memory:?_pragma=foreign_keys(1)"
	}
	return "file:" + dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// timeLayout is RFC3339 with a fixed nine digit fraction. Stored times are UTC, so the text
// compares in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime also accepts rows written with a trimmed fraction.
func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func nullLine(line int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(line), Valid: line > 0}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
