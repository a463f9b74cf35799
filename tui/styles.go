package tui

import "github.com/charmbracelet/lipgloss"

// Color palette.
var (
	colorRed    = lipgloss.Color("#ff5555")
	colorGreen  = lipgloss.Color("#50fa7b")
	colorYellow = lipgloss.Color("#f1fa8c")
	colorDim    = lipgloss.Color("#6272a4")
	colorFg     = lipgloss.Color("#f8f8f2")
	colorBorder = lipgloss.Color("#44475a")
)

// Style definitions.
var (
	docStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	insertStyle = lipgloss.NewStyle().
			Foreground(colorGreen)

	deleteStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			Strikethrough(true)

	currentInsertStyle = insertStyle.
				Reverse(true).
				Bold(true)

	currentDeleteStyle = deleteStyle.
				Reverse(true).
				Bold(true)

	plainStyle = lipgloss.NewStyle().
			Foreground(colorFg)

	headerStyle = lipgloss.NewStyle().
			Foreground(colorYellow).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorDim)
)
