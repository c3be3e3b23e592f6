package logparser

import (
	"fmt"
	"strings"
	"time"
)

// Format identifies which transcript shape was detected.
type Format string

const (
	// FormatRaw is interactive ansible-playbook stdout.
	FormatRaw Format = "raw"
	// FormatTimestamped is an ansible log_path file where every line carries a timestamp prefix.
	FormatTimestamped Format = "timestamped"
)

// Status is the outcome of one task on one host.
type Status string

const (
	StatusOK          Status = "ok"
	StatusChanged     Status = "changed"
	StatusFailed      Status = "failed"
	StatusFatal       Status = "fatal"
	StatusSkipping    Status = "skipping"
	StatusUnreachable Status = "unreachable"
	StatusIgnored     Status = "ignored"
	StatusRescued     Status = "rescued"
)

// Statuses lists every task outcome in the order ansible documents them.
var Statuses = []Status{
	StatusOK,
	StatusChanged,
	StatusFailed,
	StatusFatal,
	StatusSkipping,
	StatusUnreachable,
	StatusIgnored,
	StatusRescued,
}

// ParseStatus converts a status literal to a Status, ignoring case.
func ParseStatus(s string) (Status, error) {
	lower := strings.ToLower(strings.TrimSpace(s))
	for _, st := range Statuses {
		if string(st) == lower {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown task status %q", s)
}

// IsFailure reports whether the status carries failure diagnostics.
func (s Status) IsFailure() bool {
	return s == StatusFailed || s == StatusFatal
}

// Counts holds the per-host totals reported in a PLAY RECAP line.
type Counts struct {
	OK          int `json:"ok"`
	Changed     int `json:"changed"`
	Failed      int `json:"failed"`
	Unreachable int `json:"unreachable"`
	Skipped     int `json:"skipped"`
	Rescued     int `json:"rescued"`
	Ignored     int `json:"ignored"`
}

// Add returns the field-wise sum of c and o.
func (c Counts) Add(o Counts) Counts {
	return Counts{
		OK:          c.OK + o.OK,
		Changed:     c.Changed + o.Changed,
		Failed:      c.Failed + o.Failed,
		Unreachable: c.Unreachable + o.Unreachable,
		Skipped:     c.Skipped + o.Skipped,
		Rescued:     c.Rescued + o.Rescued,
		Ignored:     c.Ignored + o.Ignored,
	}
}

// Host is a host recovered from the recap.
type Host struct {
	Hostname string `json:"hostname"`
	Counts
}

// Play is a play header located in the transcript.
type Play struct {
	Name  string `json:"name"`
	Order int    `json:"order"`
	// Line is the 1-based line of the first header, nil when the header was never located.
	Line *int `json:"line_number"`
}

// TaskKey identifies a logical task. Serial batches of the same play share keys.
type TaskKey struct {
	Play  string
	Name  string
	Order int
}

// TaskResult is the outcome of a task on a single host.
type TaskResult struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
}

// Task is a logical task with results merged across serial batches.
type Task struct {
	Play    string                `json:"play_name"`
	Name    string                `json:"name"`
	Order   int                   `json:"order"`
	Line    int                   `json:"line_number"`
	Results map[string]TaskResult `json:"results"`
}

// Key returns the identity of the task.
func (t Task) Key() TaskKey {
	return TaskKey{Play: t.Play, Name: t.Name, Order: t.Order}
}

// ErrorKind categorizes a failed parse.
type ErrorKind string

const (
	ErrEmptyContent      ErrorKind = "EmptyContent"
	ErrNoHostsFound      ErrorKind = "NoHostsFound"
	ErrUnexpectedFailure ErrorKind = "UnexpectedFailure"
)

// Failure describes why a transcript could not be parsed.
type Failure struct {
	Kind    ErrorKind `json:"error"`
	Detail  string    `json:"detail"`
	Trace   string    `json:"traceback,omitempty"`
	Preview string    `json:"raw_content_preview,omitempty"`
}

func (f *Failure) Error() string {
	return string(f.Kind) + ": " + f.Detail
}

// Result is the outcome of Parse. Exactly one of the success fields or Failure is populated.
type Result struct {
	Success   bool       `json:"success"`
	Format    Format     `json:"parser_type,omitempty"`
	Hosts     []Host     `json:"hosts,omitempty"`
	Plays     []Play     `json:"plays,omitempty"`
	Tasks     []Task     `json:"tasks,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
	Failure   *Failure   `json:"failure,omitempty"`
}

// PlayNames returns the play names in order.
func (r Result) PlayNames() []string {
	names := make([]string, len(r.Plays))
	for i, p := range r.Plays {
		names[i] = p.Name
	}
	return names
}
