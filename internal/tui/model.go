// Package tui is an interactive viewer for one parsed playbook run.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/newhook/playlog/internal/logparser"
)

// Model is the bubbletea model of the run viewer.
type Model struct {
	title  string
	result logparser.Result

	// visible holds indexes into result.Tasks after filtering.
	visible     []int
	cursor      int
	failingOnly bool

	width  int
	height int

	tasks  *TaskListPanel
	detail *DetailPanel
	keys   keyMap
	help   help.Model
}

// New creates a viewer for a successful parse result.
func New(title string, result logparser.Result) *Model {
	m := &Model{
		title:  title,
		result: result,
		width:  100,
		height: 30,
		tasks:  NewTaskListPanel(),
		detail: NewDetailPanel(),
		keys:   defaultKeyMap(),
		help:   help.New(),
	}
	m.applyFilter()
	m.layout()
	return m
}

// Run starts the viewer in the alternate screen and blocks until it quits.
func Run(title string, result logparser.Result, enableMouse bool) error {
	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if enableMouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	_, err := tea.NewProgram(New(title, result), opts...).Run()
	return err
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			m.move(-1)
		case key.Matches(msg, m.keys.Down):
			m.move(1)
		case key.Matches(msg, m.keys.PageUp):
			m.detail.PageUp()
		case key.Matches(msg, m.keys.PageDown):
			m.detail.PageDown()
		case key.Matches(msg, m.keys.FailingOnly):
			m.failingOnly = !m.failingOnly
			m.applyFilter()
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			m.layout()
		}
	case tea.MouseMsg:
		m.handleMouse(msg)
	}
	return m, nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.move(-1)
	case tea.MouseButtonWheelDown:
		m.move(1)
	case tea.MouseButtonLeft:
		if msg.Action != tea.MouseActionRelease {
			return
		}
		if i := m.tasks.DetectClickedTask(msg); i >= 0 {
			m.move(i - m.cursor)
		}
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	header := titleStyle.Render(m.title) + "  " + labelStyle.Render(m.summary())
	body := lipgloss.JoinHorizontal(lipgloss.Top, m.tasks.Render(m.result.Tasks, m.visible, m.cursor), m.detail.Render())
	return zone.Scan(lipgloss.JoinVertical(lipgloss.Left, header, body, m.help.View(m.keys)))
}

// Selected returns the task under the cursor, or nil when no task is visible.
func (m *Model) Selected() *logparser.Task {
	if len(m.visible) == 0 {
		return nil
	}
	return &m.result.Tasks[m.visible[m.cursor]]
}

// FailingOnly reports whether the failing-task filter is active.
func (m *Model) FailingOnly() bool {
	return m.failingOnly
}

func (m *Model) summary() string {
	failed := 0
	for _, h := range m.result.Hosts {
		if h.Status() == logparser.HostFailed {
			failed++
		}
	}
	parts := []string{
		fmt.Sprintf("%d hosts", len(m.result.Hosts)),
		fmt.Sprintf("%d failed", failed),
		fmt.Sprintf("%d plays", len(m.result.Plays)),
		fmt.Sprintf("%d/%d tasks", len(m.visible), len(m.result.Tasks)),
	}
	if m.failingOnly {
		parts = append(parts, "failing only")
	}
	return strings.Join(parts, " · ")
}

func (m *Model) move(delta int) {
	if len(m.visible) == 0 {
		return
	}
	next := min(max(m.cursor+delta, 0), len(m.visible)-1)
	if next != m.cursor {
		m.cursor = next
		m.detail.SetTask(m.Selected())
	}
}

// applyFilter rebuilds visible, keeping the selected task when it survives the filter.
func (m *Model) applyFilter() {
	current := -1
	if len(m.visible) > 0 {
		current = m.visible[m.cursor]
	}

	m.visible = m.visible[:0]
	m.cursor = 0
	for i, t := range m.result.Tasks {
		if m.failingOnly && !Failing(t) {
			continue
		}
		if i == current {
			m.cursor = len(m.visible)
		}
		m.visible = append(m.visible, i)
	}
	m.detail.SetTask(m.Selected())
}

func (m *Model) layout() {
	m.help.Width = m.width
	helpHeight := lipgloss.Height(m.help.View(m.keys))
	bodyHeight := max(m.height-1-helpHeight, 3)

	left := max(m.width*2/5, 20)
	right := max(m.width-left, 20)
	m.tasks.SetSize(left, bodyHeight)
	m.detail.SetSize(right, bodyHeight)
}
