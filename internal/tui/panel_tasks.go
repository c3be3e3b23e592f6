package tui

import (
	"strconv"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	zone "github.com/lrstanley/bubblezone"

	"github.com/newhook/playlog/internal/logparser"
)

// TaskListPanel renders the left side of the viewer: one row per task, grouped by play.
type TaskListPanel struct {
	width      int
	height     int
	zonePrefix string

	// rendered is how many visible rows the last Render marked.
	rendered int
}

var zoneOnce sync.Once

// NewTaskListPanel creates a new TaskListPanel
func NewTaskListPanel() *TaskListPanel {
	zoneOnce.Do(zone.NewGlobal)
	return &TaskListPanel{width: 40, height: 20, zonePrefix: zone.NewPrefix()}
}

// SetSize updates the panel dimensions
func (p *TaskListPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// Render draws the tasks selected by visible, highlighting visible[cursor].
// The window scrolls so the cursor row stays on screen.
func (p *TaskListPanel) Render(tasks []logparser.Task, visible []int, cursor int) string {
	innerWidth := max(p.width-4, 10)
	rows := max(p.height-2, 1)
	style := panelStyle.Width(p.width - 2).Height(rows)

	p.rendered = len(visible)
	if len(visible) == 0 {
		return style.Render(dimStyle.Render("no tasks"))
	}

	lines, cursorLine := p.lines(tasks, visible, cursor, innerWidth)

	start := 0
	if cursorLine >= rows {
		start = cursorLine - rows + 1
	}
	end := min(start+rows, len(lines))
	return style.Render(strings.Join(lines[start:end], "\n"))
}

func (p *TaskListPanel) lines(tasks []logparser.Task, visible []int, cursor, width int) ([]string, int) {
	var lines []string
	cursorLine := 0
	lastPlay := ""
	for i, idx := range visible {
		t := tasks[idx]
		if i == 0 || t.Play != lastPlay {
			lines = append(lines, playStyle.Render(ansi.Truncate(t.Play, width, "…")))
			lastPlay = t.Play
		}

		status := AggregateStatus(t)
		name := ansi.Truncate(t.Name, width-2, "…")
		var row string
		if i == cursor {
			cursorLine = len(lines)
			row = selectedStyle.Render(glyph(status) + " " + name)
		} else {
			row = statusStyle(status).Render(glyph(status)) + " " + name
		}
		lines = append(lines, zone.Mark(p.rowZone(i), row))
	}
	return lines, cursorLine
}

func (p *TaskListPanel) rowZone(i int) string {
	return p.zonePrefix + strconv.Itoa(i)
}

// DetectClickedTask returns the visible position of the row under the mouse, or -1.
func (p *TaskListPanel) DetectClickedTask(msg tea.MouseMsg) int {
	for i := range p.rendered {
		if zone.Get(p.rowZone(i)).InBounds(msg) {
			return i
		}
	}
	return -1
}
