package tui

import "github.com/charmbracelet/lipgloss"

// palette
var (
	violet = lipgloss.Color("#A78BFA")
	teal   = lipgloss.Color("#2DD4BF")
	lime   = lipgloss.Color("#A3E635")
	amber  = lipgloss.Color("#FBBF24")
	rose   = lipgloss.Color("#FB7185")
	ink    = lipgloss.Color("#111318")
	slate  = lipgloss.Color("#1E222B")
	muted  = lipgloss.Color("#9CA3AF")
	faint  = lipgloss.Color("#5B6170")
)

var (
	baseStyle = lipgloss.NewStyle().Background(ink).Foreground(muted)

	logoStyle = lipgloss.NewStyle().
			Foreground(violet).
			Bold(true).
			Align(lipgloss.Center).
			Padding(1, 0)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(slate).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Foreground(ink).
			Background(violet).
			Bold(true).
			MarginBottom(1)

	statsLabelStyle = lipgloss.NewStyle().Foreground(teal)
	statsValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#E5E7EB")).Bold(true)

	successStyle = lipgloss.NewStyle().Foreground(lime).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(amber).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(rose).Bold(true)

	recentItemStyle    = lipgloss.NewStyle().PaddingLeft(1)
	recentSkippedStyle = recentItemStyle.Foreground(faint)

	logTimestampStyle = lipgloss.NewStyle().Foreground(faint)
	logMessageStyle   = lipgloss.NewStyle().Foreground(muted)

	helpStyle = lipgloss.NewStyle().Foreground(faint).PaddingTop(1).PaddingLeft(1)
)

// levelColor maps a log level to its color in the log panel
func levelColor(level string) lipgloss.Color {
	switch level {
	case "ERROR":
		return rose
	case "WARN":
		return amber
	case "SUCCESS":
		return lime
	case "INFO":
		return teal
	default:
		return muted
	}
}

// RatioStyle colors a compression ratio: half or better is good, any
// saving is neutral, growth is bad
func RatioStyle(ratio int) lipgloss.Style {
	switch {
	case ratio >= 50:
		return successStyle
	case ratio >= 0:
		return statsValueStyle
	default:
		return errorStyle
	}
}
