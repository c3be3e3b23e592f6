package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/newhook/playlog/internal/logparser"
	plsignal "github.com/newhook/playlog/internal/signal"
)

// Log is one stored playbook run.
type Log struct {
	ID           string           `json:"id"`
	Title        string           `json:"title"`
	UploadedAt   time.Time        `json:"uploaded_at"`
	RawContent   string           `json:"raw_content"`
	ParserType   logparser.Format `json:"parser_type"`
	RunTimestamp *time.Time       `json:"run_timestamp,omitempty"`
	Hosts        []HostRecord     `json:"hosts"`
}

// LogSummary is a row of the log listing.
type LogSummary struct {
	ID         string           `json:"id"`
	Title      string           `json:"title"`
	UploadedAt time.Time        `json:"uploaded_at"`
	ParserType logparser.Format `json:"parser_type"`
	HostCount  int              `json:"host_count"`
}

// HostRecord is a stored host with its recap totals.
type HostRecord struct {
	ID       string               `json:"id"`
	LogID    string               `json:"log_id"`
	Hostname string               `json:"hostname"`
	Status   logparser.HostStatus `json:"status"`
	logparser.Counts
	CreatedAt time.Time    `json:"created_at"`
	Plays     []PlayRecord `json:"plays"`
}

// PlayTaskCounts are the task totals copied onto each play row.
type PlayTaskCounts struct {
	OK      int `json:"ok"`
	Changed int `json:"changed"`
	Failed  int `json:"failed"`
}

// PlayRecord is one play of one host.
type PlayRecord struct {
	ID     string               `json:"id"`
	HostID string               `json:"host_id"`
	Name   string               `json:"name"`
	Date   time.Time            `json:"date"`
	Status logparser.HostStatus `json:"status"`
	Tasks  PlayTaskCounts       `json:"tasks"`
	Line   *int                 `json:"line_number"`
	Order  int                  `json:"order"`
}

// TaskRecord is a stored logical task.
type TaskRecord struct {
	ID      string             `json:"id"`
	LogID   string             `json:"log_id"`
	Play    string             `json:"play_name"`
	Name    string             `json:"name"`
	Order   int                `json:"order"`
	Line    *int               `json:"line_number"`
	Results []TaskResultRecord `json:"results"`
}

// TaskResultRecord is the outcome of a task on one host.
type TaskResultRecord struct {
	Hostname string           `json:"hostname"`
	Status   logparser.Status `json:"status"`
	Message  string           `json:"message,omitempty"`
}

// SaveRun stores a successful parse result and everything derived from it in one transaction.
func (db *DB) SaveRun(ctx context.Context, title, raw string, res logparser.Result) (*Log, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrInvalidTitle
	}
	if !res.Success {
		if res.Failure != nil {
			return nil, fmt.Errorf("%w: %w", ErrParseFailed, res.Failure)
		}
		return nil, ErrParseFailed
	}

	now := db.now().UTC()
	playDate := now
	if res.Timestamp != nil {
		playDate = res.Timestamp.UTC()
	}

	log := &Log{
		ID:           uuid.New().String(),
		Title:        title,
		UploadedAt:   now,
		RawContent:   raw,
		ParserType:   res.Format,
		RunTimestamp: res.Timestamp,
	}

	err := plsignal.Critical(func() error {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer tx.Rollback()

		_, err = tx.ExecContext(ctx, `
			INSERT INTO logs (id, title, uploaded_at, raw_content, parser_type, run_timestamp)
			VALUES (?, ?, ?, ?, ?, ?)
		`, log.ID, log.Title, formatTime(now), raw, string(res.Format), nullTime(res.Timestamp))
		if err != nil {
			return fmt.Errorf("failed to insert log: %w", err)
		}

		for _, h := range res.Hosts {
			host, err := insertHost(ctx, tx, log.ID, h, now)
			if err != nil {
				return err
			}
			for _, p := range res.Plays {
				play, err := insertPlay(ctx, tx, host, p, playDate)
				if err != nil {
					return err
				}
				host.Plays = append(host.Plays, play)
			}
			log.Hosts = append(log.Hosts, host)
		}

		for pos, t := range res.Tasks {
			if err := insertTask(ctx, tx, log.ID, pos, t); err != nil {
				return err
			}
		}

		return tx.Commit()
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(log.Hosts, func(i, j int) bool { return log.Hosts[i].Hostname < log.Hosts[j].Hostname })
	return log, nil
}

func insertHost(ctx context.Context, tx *sql.Tx, logID string, h logparser.Host, now time.Time) (HostRecord, error) {
	rec := HostRecord{
		ID:        uuid.New().String(),
		LogID:     logID,
		Hostname:  h.Hostname,
		Status:    logparser.DetermineStatus(h.Counts),
		Counts:    h.Counts,
		CreatedAt: now,
		Plays:     []PlayRecord{},
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO hosts (id, log_id, hostname, ok, changed, failed, unreachable, skipped, rescued, ignored, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, logID, h.Hostname, h.OK, h.Changed, h.Failed, h.Unreachable, h.Skipped, h.Rescued, h.Ignored, formatTime(now))
	if err != nil {
		return HostRecord{}, fmt.Errorf("failed to insert host %s: %w", h.Hostname, err)
	}
	return rec, nil
}

func insertPlay(ctx context.Context, tx *sql.Tx, host HostRecord, p logparser.Play, date time.Time) (PlayRecord, error) {
	rec := PlayRecord{
		ID:     uuid.New().String(),
		HostID: host.ID,
		Name:   p.Name,
		Date:   date,
		Status: host.Status,
		Tasks:  PlayTaskCounts{OK: host.OK, Changed: host.Changed, Failed: host.Failed},
		Order:  p.Order,
	}
	var line int
	if p.Line != nil {
		line = *p.Line
		rec.Line = &line
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO plays (id, host_id, name, date, status, tasks_ok, tasks_changed, tasks_failed, line_number, play_order)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, host.ID, p.Name, formatTime(date), string(rec.Status),
		rec.Tasks.OK, rec.Tasks.Changed, rec.Tasks.Failed, nullLine(line), p.Order)
	if err != nil {
		return PlayRecord{}, fmt.Errorf("failed to insert play %s: %w", p.Name, err)
	}
	return rec, nil
}

func insertTask(ctx context.Context, tx *sql.Tx, logID string, pos int, t logparser.Task) error {
	id := uuid.New().String()
	_, err := tx.ExecContext(ctx, `
		INSERT INTO tasks (id, log_id, play_name, name, task_order, line_number, position)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, id, logID, t.Play, t.Name, t.Order, nullLine(t.Line), pos)
	if err != nil {
		return fmt.Errorf("failed to insert task %s: %w", t.Name, err)
	}

	for hostname, r := range t.Results {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO task_results (task_id, hostname, status, message)
			VALUES (?, ?, ?, ?)
		`, id, hostname, string(r.Status), nullString(r.Message))
		if err != nil {
			return fmt.Errorf("failed to insert result for %s on %s: %w", t.Name, hostname, err)
		}
	}
	return nil
}

// GetLog returns a log with its hosts and their plays.
func (db *DB) GetLog(ctx context.Context, id string) (*Log, error) {
	var (
		log                Log
		uploadedAt, format string
		runTimestamp       sql.NullString
	)
	err := db.QueryRowContext(ctx, `
		SELECT id, title, uploaded_at, raw_content, parser_type, run_timestamp
		FROM logs WHERE id = ?
	`, id).Scan(&log.ID, &log.Title, &uploadedAt, &log.RawContent, &format, &runTimestamp)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("log %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get log: %w", err)
	}

	log.ParserType = logparser.Format(format)
	if log.UploadedAt, err = parseTime(uploadedAt); err != nil {
		return nil, fmt.Errorf("failed to parse uploaded_at: %w", err)
	}
	if runTimestamp.Valid {
		ts, err := parseTime(runTimestamp.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse run_timestamp: %w", err)
		}
		log.RunTimestamp = &ts
	}

	if log.Hosts, err = db.ListHosts(ctx, id); err != nil {
		return nil, err
	}
	return &log, nil
}

// ListLogs returns every log, newest first.
func (db *DB) ListLogs(ctx context.Context) ([]LogSummary, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT l.id, l.title, l.uploaded_at, l.parser_type, COUNT(h.id)
		FROM logs l
		LEFT JOIN hosts h ON h.log_id = l.id
		GROUP BY l.id
		ORDER BY l.uploaded_at DESC, l.id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list logs: %w", err)
	}
	defer rows.Close()

	var logs []LogSummary
	for rows.Next() {
		var s LogSummary
		var uploadedAt, format string
		if err := rows.Scan(&s.ID, &s.Title, &uploadedAt, &format, &s.HostCount); err != nil {
			return nil, fmt.Errorf("failed to scan log: %w", err)
		}
		s.ParserType = logparser.Format(format)
		if s.UploadedAt, err = parseTime(uploadedAt); err != nil {
			return nil, fmt.Errorf("failed to parse uploaded_at: %w", err)
		}
		logs = append(logs, s)
	}
	return logs, rows.Err()
}

// ListHosts returns the hosts of a log ordered by hostname, each with its plays.
func (db *DB) ListHosts(ctx context.Context, logID string) ([]HostRecord, error) {
	if err := db.requireLog(ctx, logID); err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, log_id, hostname, ok, changed, failed, unreachable, skipped, rescued, ignored, created_at
		FROM hosts WHERE log_id = ?
		ORDER BY hostname
	`, logID)
	if err != nil {
		return nil, fmt.Errorf("failed to list hosts: %w", err)
	}
	defer rows.Close()

	hosts := []HostRecord{}
	index := make(map[string]int)
	for rows.Next() {
		var h HostRecord
		var createdAt string
		err := rows.Scan(&h.ID, &h.LogID, &h.Hostname,
			&h.OK, &h.Changed, &h.Failed, &h.Unreachable, &h.Skipped, &h.Rescued, &h.Ignored, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan host: %w", err)
		}
		if h.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		h.Status = logparser.DetermineStatus(h.Counts)
		h.Plays = []PlayRecord{}
		index[h.ID] = len(hosts)
		hosts = append(hosts, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	playRows, err := db.QueryContext(ctx, `
		SELECT p.id, p.host_id, p.name, p.date, p.status, p.tasks_ok, p.tasks_changed, p.tasks_failed, p.line_number, p.play_order
		FROM plays p
		JOIN hosts h ON h.id = p.host_id
		WHERE h.log_id = ?
		ORDER BY p.play_order
	`, logID)
	if err != nil {
		return nil, fmt.Errorf("failed to list plays: %w", err)
	}
	defer playRows.Close()

	for playRows.Next() {
		var p PlayRecord
		var date, status string
		var line sql.NullInt64
		err := playRows.Scan(&p.ID, &p.HostID, &p.Name, &date, &status,
			&p.Tasks.OK, &p.Tasks.Changed, &p.Tasks.Failed, &line, &p.Order)
		if err != nil {
			return nil, fmt.Errorf("failed to scan play: %w", err)
		}
		if p.Date, err = parseTime(date); err != nil {
			return nil, fmt.Errorf("failed to parse play date: %w", err)
		}
		p.Status = logparser.HostStatus(status)
		if line.Valid {
			n := int(line.Int64)
			p.Line = &n
		}
		if i, ok := index[p.HostID]; ok {
			hosts[i].Plays = append(hosts[i].Plays, p)
		}
	}
	return hosts, playRows.Err()
}

// ListTasks returns the tasks of a log in transcript order, each with its per-host results.
func (db *DB) ListTasks(ctx context.Context, logID string) ([]TaskRecord, error) {
	if err := db.requireLog(ctx, logID); err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT t.id, t.log_id, t.play_name, t.name, t.task_order, t.line_number,
			r.hostname, r.status, r.message
		FROM tasks t
		LEFT JOIN task_results r ON r.task_id = t.id
		WHERE t.log_id = ?
		ORDER BY t.position, r.hostname
	`, logID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []TaskRecord{}
	for rows.Next() {
		var t TaskRecord
		var line sql.NullInt64
		var hostname, status, message sql.NullString
		err := rows.Scan(&t.ID, &t.LogID, &t.Play, &t.Name, &t.Order, &line, &hostname, &status, &message)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}

		if n := len(tasks); n == 0 || tasks[n-1].ID != t.ID {
			if line.Valid {
				l := int(line.Int64)
				t.Line = &l
			}
			t.Results = []TaskResultRecord{}
			tasks = append(tasks, t)
		}
		if hostname.Valid {
			last := &tasks[len(tasks)-1]
			last.Results = append(last.Results, TaskResultRecord{
				Hostname: hostname.String,
				Status:   logparser.Status(status.String),
				Message:  message.String,
			})
		}
	}
	return tasks, rows.Err()
}

// DeleteLog removes a log and everything stored for it.
func (db *DB) DeleteLog(ctx context.Context, id string) error {
	return plsignal.Critical(func() error {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer tx.Rollback()

		stmts := []string{
			`DELETE FROM task_results WHERE task_id IN (SELECT id FROM tasks WHERE log_id = ?)`,
			`DELETE FROM tasks WHERE log_id = ?`,
			`DELETE FROM plays WHERE host_id IN (SELECT id FROM hosts WHERE log_id = ?)`,
			`DELETE FROM hosts WHERE log_id = ?`,
		}
		for _, stmt := range stmts {
			if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
				return fmt.Errorf("failed to delete log children: %w", err)
			}
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM logs WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete log: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("log %s: %w", id, ErrNotFound)
		}
		return tx.Commit()
	})
}

func (db *DB) requireLog(ctx context.Context, id string) error {
	var one int
	err := db.QueryRowContext(ctx, `SELECT 1 FROM logs WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("log %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to look up log: %w", err)
	}
	return nil
}
