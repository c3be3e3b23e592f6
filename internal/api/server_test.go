package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newhook/playlog/internal/db"
	"github.com/newhook/playlog/internal/ingest"
	"github.com/newhook/playlog/internal/logparser"
)

const transcript = `PLAY [web] ***
TASK [deploy] ***
changed: [web1]
fatal: [web2]: FAILED! => {"msg": "disk full"}
PLAY RECAP ***
web1 : ok=1 changed=1 unreachable=0 failed=0
web2 : ok=0 changed=0 unreachable=0 failed=1
`

func init() {
	gin.SetMode(gin.TestMode)
}

type fixture struct {
	db     *db.DB
	router *gin.Engine
}

func newFixture(t *testing.T, ttl time.Duration) *fixture {
	t.Helper()
	database, err := db.OpenPath(context.Background(), db.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	srv := New(database, ingest.NewImporter(database, logparser.Options{}), ttl)
	return &fixture{db: database, router: srv.Router()}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func (f *fixture) create(t *testing.T, title string) db.Log {
	t.Helper()
	w := f.do(t, http.MethodPost, "/api/logs/", createLogRequest{Title: title, RawContent: transcript})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[db.Log](t, w)
}

func TestHealth(t *testing.T) {
	f := newFixture(t, 0)
	w := f.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestCreateLog(t *testing.T) {
	f := newFixture(t, 0)
	log := f.create(t, "deploy")

	assert.NotEmpty(t, log.ID)
	assert.Equal(t, "deploy", log.Title)
	assert.Equal(t, logparser.FormatRaw, log.ParserType)
	require.Len(t, log.Hosts, 2)
	assert.Equal(t, "web1", log.Hosts[0].Hostname)
	assert.Equal(t, logparser.HostFailed, log.Hosts[1].Status)
	require.Len(t, log.Hosts[1].Plays, 1)
	assert.Equal(t, "web", log.Hosts[1].Plays[0].Name)
}

func TestCreateLog_Errors(t *testing.T) {
	tests := []struct {
		name     string
		body     any
		wantCode int
		check    func(t *testing.T, w *httptest.ResponseRecorder)
	}{
		{
			name:     "empty title",
			body:     createLogRequest{Title: "  ", RawContent: transcript},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "malformed body",
			body:     "not an object",
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "empty content",
			body:     createLogRequest{Title: "x", RawContent: " \n "},
			wantCode: http.StatusInternalServerError,
			check: func(t *testing.T, w *httptest.ResponseRecorder) {
				body := decode[parseErrorBody](t, w)
				assert.Equal(t, "EmptyContent", body.Error)
				assert.Empty(t, body.Traceback)
			},
		},
		{
			name:     "no recap",
			body:     createLogRequest{Title: "x", RawContent: "2024-01-01 00:00:00,000 | PLAY [a] ***\n"},
			wantCode: http.StatusInternalServerError,
			check: func(t *testing.T, w *httptest.ResponseRecorder) {
				body := decode[map[string]any](t, w)
				assert.Equal(t, "NoHostsFound", body["error"])
				assert.Equal(t, "timestamped", body["parser_type"])
				assert.Equal(t, "2024-01-01 00:00:00,000 | PLAY [a] ***\n", body["raw_content_preview"])
				assert.NotEmpty(t, body["detail"])
				assert.NotContains(t, body, "traceback")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, 0)
			w := f.do(t, http.MethodPost, "/api/logs/", tt.body)
			assert.Equal(t, tt.wantCode, w.Code, w.Body.String())
			if tt.check != nil {
				tt.check(t, w)
			}

			logs, err := f.db.ListLogs(context.Background())
			require.NoError(t, err)
			assert.Empty(t, logs, "failed uploads store nothing")
		})
	}
}

func TestListAndGet(t *testing.T) {
	f := newFixture(t, 0)
	first := f.create(t, "first")
	second := f.create(t, "second")

	w := f.do(t, http.MethodGet, "/api/logs/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	logs := decode[[]db.LogSummary](t, w)
	require.Len(t, logs, 2)
	ids := []string{logs[0].ID, logs[1].ID}
	assert.ElementsMatch(t, []string{first.ID, second.ID}, ids)
	assert.Equal(t, 2, logs[0].HostCount)

	w = f.do(t, http.MethodGet, "/api/logs/"+first.ID+"/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "first", decode[db.Log](t, w).Title)

	w = f.do(t, http.MethodGet, "/api/logs/nope/", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListHostsAndTasks(t *testing.T) {
	f := newFixture(t, 0)
	log := f.create(t, "deploy")

	w := f.do(t, http.MethodGet, "/api/logs/"+log.ID+"/hosts/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	hosts := decode[[]db.HostRecord](t, w)
	require.Len(t, hosts, 2)
	assert.Equal(t, 1, hosts[1].Failed)

	w = f.do(t, http.MethodGet, "/api/logs/"+log.ID+"/tasks/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	tasks := decode[[]db.TaskRecord](t, w)
	require.Len(t, tasks, 1)
	assert.Equal(t, []db.TaskResultRecord{
		{Hostname: "web1", Status: logparser.StatusChanged},
		{Hostname: "web2", Status: logparser.StatusFatal, Message: "disk full"},
	}, tasks[0].Results)

	for _, path := range []string{"/api/logs/nope/hosts/", "/api/logs/nope/tasks/"} {
		assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, path, nil).Code, path)
	}
}

func TestDeleteInvalidatesCache(t *testing.T) {
	f := newFixture(t, time.Minute)
	log := f.create(t, "cached")

	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/logs/"+log.ID+"/", nil).Code)
	require.Len(t, decode[[]db.LogSummary](t, f.do(t, http.MethodGet, "/api/logs/", nil)), 1)

	w := f.do(t, http.MethodDelete, "/api/logs/"+log.ID+"/", nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/api/logs/"+log.ID+"/", nil).Code)
	assert.Empty(t, decode[[]db.LogSummary](t, f.do(t, http.MethodGet, "/api/logs/", nil)))
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodDelete, "/api/logs/"+log.ID+"/", nil).Code)
}

func TestCreateInvalidatesListCache(t *testing.T) {
	f := newFixture(t, time.Minute)
	assert.Empty(t, decode[[]db.LogSummary](t, f.do(t, http.MethodGet, "/api/logs/", nil)))

	f.create(t, "fresh")
	assert.Len(t, decode[[]db.LogSummary](t, f.do(t, http.MethodGet, "/api/logs/", nil)), 1)
}

func TestDetailIsServedFromCache(t *testing.T) {
	f := newFixture(t, time.Minute)
	log := f.create(t, "cached")

	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/logs/"+log.ID+"/", nil).Code)

	// Bypass the API so only the cache can answer.
	_, err := f.db.ExecContext(context.Background(), "UPDATE logs SET title = 'changed' WHERE id = ?", log.ID)
	require.NoError(t, err)

	w := f.do(t, http.MethodGet, "/api/logs/"+log.ID+"/", nil)
	assert.Equal(t, "cached", decode[db.Log](t, w).Title)
}

func TestMetrics(t *testing.T) {
	f := newFixture(t, 0)
	log := f.create(t, "deploy")
	f.do(t, http.MethodPost, "/api/logs/", createLogRequest{Title: "bad", RawContent: "no recap"})
	f.do(t, http.MethodPost, "/api/logs/", map[string]string{"raw_content": transcript})
	f.do(t, http.MethodGet, "/api/logs/"+log.ID+"/", nil)

	w := f.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()

	assert.Contains(t, body, `playlog_imports_total{result="stored"} 1`)
	assert.Contains(t, body, `playlog_imports_total{result="parse_failed"} 1`)
	assert.Contains(t, body, `playlog_imports_total{result="invalid"} 1`, "missing title fails binding")
	assert.Contains(t, body, `playlog_parse_failures_total{kind="NoHostsFound"} 1`)
	assert.Contains(t, body, `playlog_http_requests_total{endpoint="/api/logs/:id/",method="GET",status="200"} 1`)
}

func TestMetrics_IsolatedPerServer(t *testing.T) {
	a := newFixture(t, 0)
	b := newFixture(t, 0)
	a.create(t, "only in a")

	assert.Contains(t, a.do(t, http.MethodGet, "/metrics", nil).Body.String(), `playlog_imports_total{result="stored"} 1`)
	assert.NotContains(t, b.do(t, http.MethodGet, "/metrics", nil).Body.String(), `result="stored"`)
}

// crashingImporter reports the failure Parse produces after recovering a panic.
type crashingImporter struct{}

func (crashingImporter) Import(_ context.Context, _, raw string) (*db.Log, error) {
	return nil, &ingest.ParseError{Result: logparser.Result{
		Format: logparser.FormatRaw,
		Failure: &logparser.Failure{
			Kind:    logparser.ErrUnexpectedFailure,
			Detail:  "recap table out of range",
			Trace:   "goroutine 1 [running]:\npanic(...)",
			Preview: raw[:5],
		},
	}}
}

func (crashingImporter) ImportFile(context.Context, string) (*db.Log, error) {
	return nil, nil
}

func TestCreateLog_UnexpectedFailureBody(t *testing.T) {
	database, err := db.OpenPath(context.Background(), db.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	f := &fixture{db: database, router: New(database, crashingImporter{}, 0).Router()}

	w := f.do(t, http.MethodPost, "/api/logs/", createLogRequest{Title: "t", RawContent: transcript})
	require.Equal(t, http.StatusInternalServerError, w.Code)

	body := decode[map[string]string](t, w)
	assert.Equal(t, map[string]string{
		"error":               string(logparser.ErrUnexpectedFailure),
		"detail":              "recap table out of range",
		"raw_content_preview": "PLAY ",
		"parser_type":         "raw",
		"traceback":           "goroutine 1 [running]:\npanic(...)",
	}, body)
}
