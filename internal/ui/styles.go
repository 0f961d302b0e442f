package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Color palette - post-it notes on a yellow desk, same as the webapp.
var (
	Primary    = lipgloss.Color("#FACC15") // Post-it yellow
	Secondary  = lipgloss.Color("#60A5FA") // Card blue
	Success    = lipgloss.Color("#A3E635") // Lime
	Warning    = lipgloss.Color("#FB923C") // Orange
	Error      = lipgloss.Color("#EF4444") // Red
	Accent     = lipgloss.Color("#F9A8D4") // Step pink
	Muted      = lipgloss.Color("#6B7280") // Gray
	Foreground = lipgloss.Color("#111827") // Ink
)

// Text styles
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			MarginBottom(1)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(Warning)

	MutedStyle = lipgloss.NewStyle().
			Foreground(Muted)

	BoldStyle = lipgloss.NewStyle().
			Bold(true)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(Secondary)

	RoomCodeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Foreground).
			Background(Primary).
			Padding(0, 2)
)

// Box styles
var (
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(0, 1)

	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(Secondary).
			Padding(0, 1)

	ErrorPanelStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(Error).
			Padding(0, 1)

	StepPanelStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(Accent).
			Padding(0, 1)

	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(Secondary).
				Padding(0, 1)

	TableRowStyle = lipgloss.NewStyle().
			Padding(0, 1)
)

// Icons
const (
	IconSuccess = "✓"
	IconError   = "✗"
	IconInfo    = "ℹ"
	IconWarn    = "!"
)

// PrintError prints a styled error line.
func PrintError(message string) {
	fmt.Printf("%s %s\n", ErrorStyle.Render(IconError), message)
}

// PrintSuccessf prints a styled success line.
func PrintSuccessf(format string, args ...any) {
	fmt.Printf("%s %s\n", SuccessStyle.Render(IconSuccess), fmt.Sprintf(format, args...))
}

// PrintWarnf prints a styled warning line.
func PrintWarnf(format string, args ...any) {
	fmt.Printf("%s %s\n", WarningStyle.Render(IconWarn), fmt.Sprintf(format, args...))
}

// PrintInfof prints a styled info line.
func PrintInfof(format string, args ...any) {
	fmt.Printf("%s %s\n", MutedStyle.Render(IconInfo), fmt.Sprintf(format, args...))
}
