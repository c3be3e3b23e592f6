package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("255")).
			Background(lipgloss.Color("62"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("247"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	playStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("117")) // Light blue

	statusOKStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	statusChangedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("214"))

	statusFailedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("196")).
				Bold(true)

	statusUnreachableStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("213"))

	messageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))
)
