package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/newhook/playlog/internal/db"
	"github.com/newhook/playlog/internal/ingest"
	"github.com/newhook/playlog/internal/logparser"
	"github.com/newhook/playlog/internal/mock"
	"github.com/newhook/playlog/internal/project"
)

// TestHarness provides an in-memory run database fronted by store mocks
// that delegate to it, so tests can fail or count individual calls.
type TestHarness struct {
	T         *testing.T
	DB        *db.DB
	Store     *APIStoreMock
	RunStore  *RunStoreMock
	Importer  *ingest.DefaultImporter
	Generator *mock.Generator
	Config    *project.Config
}

// NewTestHarness creates a new TestHarness with an in-memory database
// and all mocks pre-configured to pass through to it.
func NewTestHarness(t *testing.T) *TestHarness {
	t.Helper()

	testDB, err := db.OpenPath(context.Background(), db.MemoryPath)
	require.NoError(t, err, "failed to open in-memory database")

	config := &project.Config{
		Project: project.ProjectConfig{
			Name:      "test-project",
			CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	h := &TestHarness{
		T:         t,
		DB:        testDB,
		Store:     &APIStoreMock{},
		RunStore:  &RunStoreMock{},
		Generator: mock.New(1),
		Config:    config,
	}
	h.configureDefaultMocks()
	h.Importer = ingest.NewImporter(h.RunStore, config.Parser.Options())

	t.Cleanup(h.Cleanup)
	return h
}

// Cleanup releases resources used by the harness.
// It is registered with t.Cleanup and safe to call again.
func (h *TestHarness) Cleanup() {
	if h.DB == nil {
		return
	}
	if err := h.DB.Close(); err != nil {
		h.T.Logf("warning: failed to close database: %v", err)
	}
	h.DB = nil
}

// configureDefaultMocks routes every mocked method to the database.
// Tests can override specific behaviors as needed.
func (h *TestHarness) configureDefaultMocks() {
	h.Store.GetLogFunc = func(ctx context.Context, id string) (*db.Log, error) {
		return h.DB.GetLog(ctx, id)
	}
	h.Store.ListLogsFunc = func(ctx context.Context) ([]db.LogSummary, error) {
		return h.DB.ListLogs(ctx)
	}
	h.Store.ListHostsFunc = func(ctx context.Context, logID string) ([]db.HostRecord, error) {
		return h.DB.ListHosts(ctx, logID)
	}
	h.Store.ListTasksFunc = func(ctx context.Context, logID string) ([]db.TaskRecord, error) {
		return h.DB.ListTasks(ctx, logID)
	}
	h.Store.DeleteLogFunc = func(ctx context.Context, id string) error {
		return h.DB.DeleteLog(ctx, id)
	}

	h.RunStore.SaveRunFunc = func(ctx context.Context, title, raw string, res logparser.Result) (*db.Log, error) {
		return h.DB.SaveRun(ctx, title, raw, res)
	}
}

// ImportRun generates a synthetic run and stores it through the importer.
func (h *TestHarness) ImportRun(opts mock.Options) (*db.Log, mock.Run) {
	h.T.Helper()
	run := h.Generator.Generate(opts)
	log, err := h.Importer.Import(context.Background(), run.Title, run.Content)
	require.NoError(h.T, err, "failed to import generated run")
	return log, run
}

// ImportTranscript stores raw under title through the importer.
func (h *TestHarness) ImportTranscript(title, raw string) *db.Log {
	h.T.Helper()
	log, err := h.Importer.Import(context.Background(), title, raw)
	require.NoError(h.T, err, "failed to import transcript")
	return log
}
