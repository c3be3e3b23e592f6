package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newhook/playlog/internal/logparser"
)

const sampleRun = `PLAY [web] *********************************************************************

TASK [Gathering Facts] *********************************************************
ok: [web1]
ok: [web2]

TASK [deploy] ******************************************************************
changed: [web1]
fatal: [web2]: FAILED! => {"changed": false, "msg": "disk full"}

PLAY [db] **********************************************************************

TASK [migrate] *****************************************************************
skipping: [web1]

PLAY RECAP *********************************************************************
web1                       : ok=2    changed=1    unreachable=0    failed=0    skipped=1    rescued=0    ignored=0
web2                       : ok=1    changed=0    unreachable=0    failed=1    skipped=0    rescued=0    ignored=0
`

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := OpenPath(context.Background(), MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	clock := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	db.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return db
}

func saveSample(t *testing.T, db *DB, title string) *Log {
	t.Helper()
	res := logparser.Parse(sampleRun)
	require.True(t, res.Success)
	log, err := db.SaveRun(context.Background(), title, sampleRun, res)
	require.NoError(t, err)
	return log
}

func TestOpenPath_File(t *testing.T) {
	ctx := context.Background()
	path := t.TempDir() + "/playlog.db"

	db, err := OpenPath(ctx, path)
	require.NoError(t, err)
	_, err = db.SaveRun(ctx, "persisted", sampleRun, logparser.Parse(sampleRun))
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = OpenPath(ctx, path)
	require.NoError(t, err)
	defer db.Close()

	logs, err := db.ListLogs(ctx)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "persisted", logs[0].Title)
}

func TestSaveRun_FanOut(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	log := saveSample(t, db, "  nightly deploy  ")
	assert.Equal(t, "nightly deploy", log.Title)
	assert.Equal(t, logparser.FormatRaw, log.ParserType)
	assert.Nil(t, log.RunTimestamp)
	require.Len(t, log.Hosts, 2)

	got, err := db.GetLog(ctx, log.ID)
	require.NoError(t, err)
	assert.Equal(t, log.Title, got.Title)
	assert.Equal(t, sampleRun, got.RawContent)
	assert.True(t, log.UploadedAt.Equal(got.UploadedAt))

	require.Len(t, got.Hosts, 2)
	web1, web2 := got.Hosts[0], got.Hosts[1]
	assert.Equal(t, "web1", web1.Hostname)
	assert.Equal(t, logparser.HostChanged, web1.Status)
	assert.Equal(t, logparser.Counts{OK: 2, Changed: 1, Skipped: 1}, web1.Counts)
	assert.Equal(t, logparser.HostFailed, web2.Status)

	// One play row per host and play, carrying the host's totals.
	require.Len(t, web1.Plays, 2)
	assert.Equal(t, "web", web1.Plays[0].Name)
	assert.Equal(t, "db", web1.Plays[1].Name)
	require.NotNil(t, web1.Plays[0].Line)
	assert.Equal(t, 1, *web1.Plays[0].Line)
	assert.Equal(t, PlayTaskCounts{OK: 2, Changed: 1}, web1.Plays[0].Tasks)
	assert.True(t, web1.Plays[0].Date.Equal(got.UploadedAt), "no run timestamp falls back to upload time")
	assert.Equal(t, PlayTaskCounts{OK: 1, Failed: 1}, web2.Plays[1].Tasks)
	assert.Equal(t, logparser.HostFailed, web2.Plays[1].Status)
}

func TestSaveRun_TimestampedUsesRunTime(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	raw := "2024-05-02 10:00:00,000 | PLAY [x] ***\n" +
		"2024-05-02 10:00:01,000 | TASK [t] ***\n" +
		"2024-05-02 10:00:02,000 | ok: [h1]\n" +
		"2024-05-02 10:00:03,500 | PLAY RECAP ***\n" +
		"2024-05-02 10:00:03,500 | h1 : ok=1 changed=0 unreachable=0 failed=0\n"
	res := logparser.Parse(raw)
	require.True(t, res.Success)

	log, err := db.SaveRun(ctx, "ts", raw, res)
	require.NoError(t, err)

	got, err := db.GetLog(ctx, log.ID)
	require.NoError(t, err)
	want := time.Date(2024, 5, 2, 10, 0, 3, 500_000_000, time.UTC)
	assert.Equal(t, logparser.FormatTimestamped, got.ParserType)
	require.NotNil(t, got.RunTimestamp)
	assert.True(t, want.Equal(*got.RunTimestamp))
	assert.True(t, want.Equal(got.Hosts[0].Plays[0].Date))
}

func TestSaveRun_Rejects(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	_, err := db.SaveRun(ctx, "   ", sampleRun, logparser.Parse(sampleRun))
	assert.ErrorIs(t, err, ErrInvalidTitle)

	_, err = db.SaveRun(ctx, "bad", "no recap", logparser.Parse("no recap"))
	assert.ErrorIs(t, err, ErrParseFailed)
	var failure *logparser.Failure
	require.True(t, errors.As(err, &failure))
	assert.Equal(t, logparser.ErrNoHostsFound, failure.Kind)

	logs, err := db.ListLogs(ctx)
	require.NoError(t, err)
	assert.Empty(t, logs, "rejected runs write nothing")
}

func TestListLogs_NewestFirst(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	first := saveSample(t, db, "first")
	second := saveSample(t, db, "second")

	logs, err := db.ListLogs(ctx)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, second.ID, logs[0].ID)
	assert.Equal(t, first.ID, logs[1].ID)
	assert.Equal(t, 2, logs[0].HostCount)
	assert.Equal(t, logparser.FormatRaw, logs[0].ParserType)
}

func TestListTasks(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	log := saveSample(t, db, "tasks")

	tasks, err := db.ListTasks(ctx, log.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 3)

	assert.Equal(t, "Gathering Facts", tasks[0].Name)
	assert.Equal(t, "web", tasks[0].Play)
	assert.Equal(t, 0, tasks[0].Order)
	require.NotNil(t, tasks[0].Line)
	assert.Equal(t, 3, *tasks[0].Line)

	deploy := tasks[1]
	assert.Equal(t, "deploy", deploy.Name)
	assert.Equal(t, 1, deploy.Order)
	assert.Equal(t, []TaskResultRecord{
		{Hostname: "web1", Status: logparser.StatusChanged},
		{Hostname: "web2", Status: logparser.StatusFatal, Message: "disk full"},
	}, deploy.Results)

	assert.Equal(t, "db", tasks[2].Play)
	assert.Equal(t, 0, tasks[2].Order)
}

func TestListTasks_HeaderWithoutResults(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	raw := "PLAY [a] ***\nTASK [quiet] ***\nPLAY RECAP ***\nh1 : ok=0 changed=0\n"
	log, err := db.SaveRun(ctx, "quiet", raw, logparser.Parse(raw))
	require.NoError(t, err)

	tasks, err := db.ListTasks(ctx, log.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Empty(t, tasks[0].Results)
	assert.NotNil(t, tasks[0].Results)
}

func TestDeleteLog(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	keep := saveSample(t, db, "keep")
	drop := saveSample(t, db, "drop")

	require.NoError(t, db.DeleteLog(ctx, drop.ID))

	_, err := db.GetLog(ctx, drop.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = db.ListTasks(ctx, drop.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	for table, want := range map[string]int{"hosts": 2, "plays": 4, "tasks": 3, "task_results": 5} {
		var count int
		require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count))
		assert.Equal(t, want, count, table)
	}

	_, err = db.GetLog(ctx, keep.ID)
	assert.NoError(t, err)

	assert.ErrorIs(t, db.DeleteLog(ctx, drop.ID), ErrNotFound)
}

func TestGetLog_NotFound(t *testing.T) {
	db := setupTestDB(t)
	_, err := db.GetLog(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = db.ListHosts(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListLogs_SubSecondUploads(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	times := []time.Time{
		time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 1, 12, 0, 0, 120_000_000, time.UTC),
		time.Date(2024, 3, 1, 12, 0, 0, 123_000_000, time.UTC),
		time.Date(2024, 3, 1, 12, 0, 0, 500_000_000, time.UTC),
	}
	titles := []string{"whole", "twelve", "one-two-three", "half"}
	for i, title := range titles {
		at := times[i]
		db.now = func() time.Time { return at }
		saveSample(t, db, title)
	}

	logs, err := db.ListLogs(ctx)
	require.NoError(t, err)
	require.Len(t, logs, 4)
	assert.Equal(t, []string{"half", "one-two-three", "twelve", "whole"},
		[]string{logs[0].Title, logs[1].Title, logs[2].Title, logs[3].Title})
	assert.True(t, times[3].Equal(logs[0].UploadedAt))
}

func TestParseTime_AcceptsTrimmedFraction(t *testing.T) {
	want := time.Date(2024, 3, 1, 12, 0, 0, 500_000_000, time.UTC)
	got, err := parseTime("2024-03-01T12:00:00.5Z")
	require.NoError(t, err)
	assert.True(t, want.Equal(got))
	assert.Equal(t, "2024-03-01T12:00:00.500000000Z", formatTime(want))
}
