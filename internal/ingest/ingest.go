// Package ingest parses transcripts and stores successful runs.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/newhook/playlog/internal/db"
	"github.com/newhook/playlog/internal/logging"
	"github.com/newhook/playlog/internal/logparser"
)

//go:generate moq -stub -out ../testutil/run_store_mock.go -pkg testutil . Store:RunStoreMock

// Store persists parsed runs.
type Store interface {
	SaveRun(ctx context.Context, title, raw string, res logparser.Result) (*db.Log, error)
}

// Importer defines the interface for turning a transcript into a stored run.
// This abstraction lets the API and watcher be tested without a database.
type Importer interface {
	// Import parses raw and stores it under title.
	Import(ctx context.Context, title, raw string) (*db.Log, error)
	// ImportFile reads path and stores it under the file's base name.
	ImportFile(ctx context.Context, path string) (*db.Log, error)
}

// ParseError is returned when the transcript itself could not be parsed.
type ParseError struct {
	Result logparser.Result
}

func (e *ParseError) Error() string {
	if e.Result.Failure == nil {
		return db.ErrParseFailed.Error()
	}
	return fmt.Sprintf("%s: %s", db.ErrParseFailed, e.Result.Failure)
}

// Unwrap exposes db.ErrParseFailed and the parser's *logparser.Failure.
func (e *ParseError) Unwrap() []error {
	errs := []error{db.ErrParseFailed}
	if e.Result.Failure != nil {
		errs = append(errs, e.Result.Failure)
	}
	return errs
}

// DefaultImporter implements Importer on top of logparser and a Store.
type DefaultImporter struct {
	store Store
	opts  logparser.Options
}

// Compile-time check that DefaultImporter implements Importer.
var _ Importer = (*DefaultImporter)(nil)

// NewImporter creates a new default Importer.
func NewImporter(store Store, opts logparser.Options) *DefaultImporter {
	return &DefaultImporter{store: store, opts: opts}
}

// Import implements Importer.Import.
func (i *DefaultImporter) Import(ctx context.Context, title, raw string) (*db.Log, error) {
	if strings.TrimSpace(title) == "" {
		return nil, db.ErrInvalidTitle
	}

	res := logparser.ParseWithOptions(raw, i.opts)
	if !res.Success {
		logging.WarnContext(ctx, "transcript rejected",
			"title", title,
			"error", res.Failure.Kind,
			"detail", res.Failure.Detail,
			"parser_type", res.Format)
		return nil, &ParseError{Result: res}
	}

	log, err := i.store.SaveRun(ctx, title, raw, res)
	if err != nil {
		return nil, fmt.Errorf("failed to save run: %w", err)
	}

	logging.InfoContext(ctx, "imported run",
		"log_id", log.ID,
		"title", log.Title,
		"parser_type", res.Format,
		"hosts", len(res.Hosts),
		"plays", len(res.Plays),
		"tasks", len(res.Tasks))
	return log, nil
}

// ImportFile implements Importer.ImportFile.
func (i *DefaultImporter) ImportFile(ctx context.Context, path string) (*db.Log, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return i.Import(ctx, filepath.Base(path), string(data))
}
