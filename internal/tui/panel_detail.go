package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"

	"github.com/newhook/playlog/internal/logparser"
)

// DetailPanel renders the right side of the viewer: per-host results of the selected task.
type DetailPanel struct {
	width    int
	height   int
	viewport viewport.Model
	task     *logparser.Task
}

// NewDetailPanel creates a new DetailPanel
func NewDetailPanel() *DetailPanel {
	vp := viewport.New(40, 20) // Initial size, will be updated
	return &DetailPanel{
		width:    40,
		height:   20,
		viewport: vp,
	}
}

// SetSize updates the panel dimensions
func (p *DetailPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
	p.viewport.Width = max(width-4, 10)
	p.viewport.Height = max(height-2, 1)
	p.refresh()
}

// SetTask sets the task to display and scrolls back to the top.
func (p *DetailPanel) SetTask(task *logparser.Task) {
	p.task = task
	p.refresh()
	p.viewport.GotoTop()
}

// PageUp scrolls one screen up.
func (p *DetailPanel) PageUp() {
	p.viewport.ScrollUp(p.viewport.Height)
}

// PageDown scrolls one screen down.
func (p *DetailPanel) PageDown() {
	p.viewport.ScrollDown(p.viewport.Height)
}

// YOffset returns the current scroll position.
func (p *DetailPanel) YOffset() int {
	return p.viewport.YOffset
}

func (p *DetailPanel) refresh() {
	p.viewport.SetContent(RenderTaskDetail(p.task, p.viewport.Width))
}

// Render returns the panel with its scrolled content.
func (p *DetailPanel) Render() string {
	return panelStyle.Width(p.width - 2).Height(p.viewport.Height).Render(p.viewport.View())
}

// RenderTaskDetail lays out one task's results with failure messages wrapped to width.
func RenderTaskDetail(task *logparser.Task, width int) string {
	if task == nil {
		return dimStyle.Render("select a task")
	}
	width = max(width, 10)

	var b strings.Builder
	b.WriteString(titleStyle.Render(truncate.StringWithTail(task.Name, uint(width), "…")))
	b.WriteString("\n")
	line := "-"
	if task.Line > 0 {
		line = fmt.Sprint(task.Line)
	}
	b.WriteString(labelStyle.Render(fmt.Sprintf("play %s · line %s", task.Play, line)))
	b.WriteString("\n\n")

	if len(task.Results) == 0 {
		b.WriteString(dimStyle.Render("no host results"))
		return b.String()
	}

	hosts := make([]string, 0, len(task.Results))
	for h := range task.Results {
		hosts = append(hosts, h)
	}
	sort.Strings(hosts)

	for _, h := range hosts {
		r := task.Results[h]
		b.WriteString(statusStyle(r.Status).Render(fmt.Sprintf("%s %-11s", glyph(r.Status), r.Status)))
		b.WriteString(" ")
		b.WriteString(h)
		b.WriteString("\n")
		if r.Message != "" {
			wrapped := wordwrap.String(r.Message, max(width-4, 6))
			b.WriteString(messageStyle.Render(indent.String(wrapped, 4)))
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
