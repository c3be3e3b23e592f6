package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/newhook/playlog/internal/logparser"
)

// severity orders task outcomes from least to most noteworthy.
var severity = map[logparser.Status]int{
	logparser.StatusSkipping:    1,
	logparser.StatusOK:          2,
	logparser.StatusChanged:     3,
	logparser.StatusIgnored:     4,
	logparser.StatusRescued:     5,
	logparser.StatusUnreachable: 6,
	logparser.StatusFailed:      7,
	logparser.StatusFatal:       8,
}

// AggregateStatus returns the most severe outcome of a task across its hosts.
// A task without results reports an empty status.
func AggregateStatus(t logparser.Task) logparser.Status {
	var worst logparser.Status
	for _, r := range t.Results {
		if severity[r.Status] > severity[worst] {
			worst = r.Status
		}
	}
	return worst
}

// Failing reports whether any host failed or was unreachable for the task.
func Failing(t logparser.Task) bool {
	for _, r := range t.Results {
		if r.Status.IsFailure() || r.Status == logparser.StatusUnreachable {
			return true
		}
	}
	return false
}

func glyph(s logparser.Status) string {
	switch s {
	case logparser.StatusOK:
		return "✓"
	case logparser.StatusChanged:
		return "●"
	case logparser.StatusFailed, logparser.StatusFatal:
		return "✗"
	case logparser.StatusUnreachable:
		return "!"
	case logparser.StatusSkipping:
		return "○"
	case logparser.StatusIgnored, logparser.StatusRescued:
		return "~"
	}
	return "·"
}

func statusStyle(s logparser.Status) lipgloss.Style {
	switch s {
	case logparser.StatusOK:
		return statusOKStyle
	case logparser.StatusChanged, logparser.StatusIgnored, logparser.StatusRescued:
		return statusChangedStyle
	case logparser.StatusFailed, logparser.StatusFatal:
		return statusFailedStyle
	case logparser.StatusUnreachable:
		return statusUnreachableStyle
	}
	return dimStyle
}
