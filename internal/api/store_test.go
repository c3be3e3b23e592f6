package api_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newhook/playlog/internal/api"
	"github.com/newhook/playlog/internal/db"
	"github.com/newhook/playlog/internal/mock"
	"github.com/newhook/playlog/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func get(t *testing.T, router http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestListLogs_StoreErrorIsNotLeaked(t *testing.T) {
	h := testutil.NewTestHarness(t)
	h.Store.ListLogsFunc = func(ctx context.Context) ([]db.LogSummary, error) {
		return nil, errors.New("database is locked")
	}

	router := api.New(h.Store, h.Importer, 0).Router()
	w := get(t, router, "/api/logs/")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "locked")
}

func TestCache_AvoidsRepeatedStoreReads(t *testing.T) {
	h := testutil.NewTestHarness(t)
	log, _ := h.ImportRun(mock.Options{Hosts: 2})
	router := api.New(h.Store, h.Importer, time.Minute).Router()

	for range 3 {
		require.Equal(t, http.StatusOK, get(t, router, "/api/logs/").Code)
		require.Equal(t, http.StatusOK, get(t, router, "/api/logs/"+log.ID+"/").Code)
	}
	assert.Len(t, h.Store.ListLogsCalls(), 1)
	assert.Len(t, h.Store.GetLogCalls(), 1)

	// Host and task listings are always read through.
	get(t, router, "/api/logs/"+log.ID+"/hosts/")
	get(t, router, "/api/logs/"+log.ID+"/hosts/")
	assert.Len(t, h.Store.ListHostsCalls(), 2)
}

func TestCache_DisabledReadsThrough(t *testing.T) {
	h := testutil.NewTestHarness(t)
	log, _ := h.ImportRun(mock.Options{})
	router := api.New(h.Store, h.Importer, 0).Router()

	get(t, router, "/api/logs/"+log.ID+"/")
	get(t, router, "/api/logs/"+log.ID+"/")
	assert.Len(t, h.Store.GetLogCalls(), 2)
}

func TestTasks_StoreErrorMapsNotFound(t *testing.T) {
	h := testutil.NewTestHarness(t)
	h.Store.ListTasksFunc = func(ctx context.Context, logID string) ([]db.TaskRecord, error) {
		return nil, db.ErrNotFound
	}

	router := api.New(h.Store, h.Importer, 0).Router()
	w := get(t, router, "/api/logs/anything/tasks/")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Log not found")
	require.Len(t, h.Store.ListTasksCalls(), 1)
	assert.Equal(t, "anything", h.Store.ListTasksCalls()[0].LogID)
}
