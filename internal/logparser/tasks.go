package logparser

import (
	"regexp"
	"strings"
)

var (
	taskPattern = regexp.MustCompile(`TASK \[([^\]]+)\]`)

	// resultPattern matches host result lines such as "ok: [web1]" or
	// "fatal: [db1]: FAILED! => {...}".
	resultPattern = regexp.MustCompile(`(?i)^(ok|changed|failed|fatal|skipping|unreachable|ignored|rescued):\s+\[([^\]]+)\]`)
)

const handlerHeader = "RUNNING HANDLER ["

type scanState int

const (
	outsidePlay scanState = iota
	insidePlay
	insideTask
)

// taskScanner holds the state of one ExtractTasks pass.
type taskScanner struct {
	lines []string
	state scanState

	play    string
	current TaskKey

	// counters holds the next task order per play. It is reset on every play header
	// so that serial batches of a play produce the same keys.
	counters map[string]int
	tasks    map[TaskKey]*Task
	order    []TaskKey
	plays    []string
	seen     map[string]bool
}

// ExtractTasks scans the transcript once and returns the logical tasks in first-seen order.
// Results from repeated sections of the same play are merged by (play, task, order), and a
// later result for the same host replaces an earlier one.
func ExtractTasks(lines []string) []Task {
	return scanTasks(lines).result()
}

func scanTasks(lines []string) *taskScanner {
	s := &taskScanner{
		lines:    lines,
		counters: make(map[string]int),
		tasks:    make(map[TaskKey]*Task),
		seen:     make(map[string]bool),
	}
	for i := range lines {
		s.step(i)
	}
	return s
}

func (s *taskScanner) step(i int) {
	trimmed := strings.TrimSpace(s.lines[i])

	switch {
	case strings.HasPrefix(trimmed, "PLAY ["):
		s.enterPlay(trimmed)
	case strings.HasPrefix(trimmed, recapHeader), strings.HasPrefix(trimmed, handlerHeader):
		// Handler results belong to no task.
		if s.state == insideTask {
			s.state = insidePlay
		}
	case strings.HasPrefix(trimmed, "TASK ["):
		if s.state == outsidePlay {
			return
		}
		s.enterTask(trimmed, i)
	case s.state == insideTask:
		s.recordResult(trimmed, i)
	}
}

func (s *taskScanner) enterPlay(line string) {
	m := playPattern.FindStringSubmatch(line)
	if m == nil {
		return
	}
	s.play = m[1]
	s.counters[s.play] = 0
	s.state = insidePlay
	if !s.seen[s.play] {
		s.seen[s.play] = true
		s.plays = append(s.plays, s.play)
	}
}

func (s *taskScanner) enterTask(line string, i int) {
	m := taskPattern.FindStringSubmatch(line)
	if m == nil {
		s.state = insidePlay
		return
	}

	order := s.counters[s.play]
	s.counters[s.play] = order + 1

	key := TaskKey{Play: s.play, Name: m[1], Order: order}
	if _, ok := s.tasks[key]; !ok {
		s.tasks[key] = &Task{
			Play:    key.Play,
			Name:    key.Name,
			Order:   key.Order,
			Line:    i + 1,
			Results: make(map[string]TaskResult),
		}
		s.order = append(s.order, key)
	}
	s.current = key
	s.state = insideTask
}

func (s *taskScanner) recordResult(line string, i int) {
	m := resultPattern.FindStringSubmatch(line)
	if m == nil {
		return
	}
	status, err := ParseStatus(m[1])
	if err != nil {
		return
	}

	result := TaskResult{Status: status}
	if status.IsFailure() {
		result.Message = ExtractFailureMessage(s.lines, i)
	}
	s.tasks[s.current].Results[m[2]] = result
}

func (s *taskScanner) result() []Task {
	tasks := make([]Task, 0, len(s.order))
	for _, key := range s.order {
		tasks = append(tasks, *s.tasks[key])
	}
	return tasks
}
