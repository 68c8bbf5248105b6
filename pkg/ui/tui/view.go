package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"megrep/pkg/ui"
)

// View renders the entire TUI
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	var sections []string
	sections = append(sections, logoStyle.Width(m.width).Render(ui.ASCIILogo))

	left := lipgloss.JoinVertical(lipgloss.Left,
		m.renderProgressPanel(m.columnWidth()),
		m.renderStatsPanel(m.columnWidth()),
	)
	right := lipgloss.JoinVertical(lipgloss.Left,
		m.renderRecentPanel(m.columnWidth()),
		m.renderLogsPanel(m.columnWidth()),
	)
	sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right))

	if m.showHelp {
		sections = append(sections, m.renderHelp())
	} else {
		sections = append(sections, helpStyle.Render(m.footer()))
	}

	return baseStyle.Width(m.width).Height(m.height).Render(
		lipgloss.JoinVertical(lipgloss.Left, sections...),
	)
}

func (m *Model) columnWidth() int {
	return (m.width - 4) / 2
}

func (m *Model) footer() string {
	switch {
	case m.finished:
		return "Done. Press q to exit"
	case m.quitting:
		return "Stopping after the current batch..."
	default:
		return "Press q to stop after this batch • ? for help"
	}
}

func (m *Model) renderProgressPanel(width int) string {
	title := titleStyle.Render(" PROGRESS ")

	status := m.spinner.View() + " converting"
	if m.finished {
		status = successStyle.Render("✓ complete")
	} else if m.quitting {
		status = warningStyle.Render("⏸ stopping")
	}

	percent := 0.0
	if m.progress.Total > 0 {
		percent = float64(m.progress.Processed) / float64(m.progress.Total)
	}

	content := []string{
		status,
		m.bar.ViewAs(percent),
		fmt.Sprintf("%s %s",
			statsLabelStyle.Render("Files:"),
			statsValueStyle.Render(fmt.Sprintf("%d/%d (%d%%)", m.progress.Processed, m.progress.Total, m.progress.Percentage()))),
	}

	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, strings.Join(content, "\n")),
	)
}

func (m *Model) renderStatsPanel(width int) string {
	title := titleStyle.Render(" RUN STATS ")

	eta := "calculating..."
	if m.progress.ETA > 0 {
		eta = ui.FormatDuration(m.progress.ETA)
	} else if m.finished {
		eta = "-"
	}

	stats := []string{
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Batch:"), statsValueStyle.Render(fmt.Sprintf("%d", m.progress.Batch))),
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Encoded:"), statsValueStyle.Render(fmt.Sprintf("%d", m.progress.Encoded))),
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Already converted:"), statsValueStyle.Render(fmt.Sprintf("%d", m.progress.Skipped))),
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Failed:"), m.failedValue()),
		fmt.Sprintf("%s %s", statsLabelStyle.Render("AVIF saved:"), RatioStyle(m.AverageRatio("avif")).Render(fmt.Sprintf("%d%% avg", m.AverageRatio("avif")))),
		fmt.Sprintf("%s %s", statsLabelStyle.Render("WebP saved:"), RatioStyle(m.AverageRatio("webp")).Render(fmt.Sprintf("%d%% avg", m.AverageRatio("webp")))),
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Elapsed:"), statsValueStyle.Render(ui.FormatDuration(m.progress.Elapsed))),
		fmt.Sprintf("%s %s", statsLabelStyle.Render("ETA:"), statsValueStyle.Render(eta)),
	}

	if m.finished {
		stats = append(stats, "", successStyle.Render(fmt.Sprintf("%d succeeded, %d failed", m.tally.Successful, m.tally.Failed)))
	}

	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, lipgloss.JoinVertical(lipgloss.Left, stats...)),
	)
}

func (m *Model) failedValue() string {
	text := fmt.Sprintf("%d", m.progress.Failed)
	if m.progress.Failed > 0 {
		return errorStyle.Render(text)
	}
	return statsValueStyle.Render(text)
}

func (m *Model) renderRecentPanel(width int) string {
	title := titleStyle.Render(" RECENT ")

	if len(m.recent) == 0 {
		content := lipgloss.NewStyle().Foreground(faint).Render("Nothing converted yet")
		return panelStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
	}

	var items []string
	for i := len(m.recent) - 1; i >= 0; i-- {
		items = append(items, renderRecentItem(m.recent[i]))
	}

	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, lipgloss.JoinVertical(lipgloss.Left, items...)),
	)
}

func renderRecentItem(item RecentItem) string {
	switch {
	case item.Skipped:
		return recentSkippedStyle.Render("↷ " + item.Path)
	case len(item.Failed) > 0:
		return recentItemStyle.Render(errorStyle.Render("✗ ") + item.Path + " " +
			errorStyle.Render("("+strings.Join(item.Failed, ", ")+")"))
	default:
		return recentItemStyle.Render(fmt.Sprintf("%s%s avif %s webp %s",
			successStyle.Render("✓ "), item.Path,
			RatioStyle(item.AVIFRatio).Render(fmt.Sprintf("%d%%", item.AVIFRatio)),
			RatioStyle(item.WebPRatio).Render(fmt.Sprintf("%d%%", item.WebPRatio))))
	}
}

func (m *Model) renderLogsPanel(width int) string {
	title := titleStyle.Render(" LOG ")

	start := len(m.logMessages) - 10
	if start < 0 {
		start = 0
	}

	var logs []string
	for i := start; i < len(m.logMessages); i++ {
		log := m.logMessages[i]
		timestamp := logTimestampStyle.Render(log.Time.Format("15:04:05"))
		level := lipgloss.NewStyle().Foreground(log.Color).Bold(true).Render(fmt.Sprintf("[%-7s]", log.Level))

		message := log.Message
		if maxLen := width - 25; maxLen > 3 && len(message) > maxLen {
			message = message[:maxLen-3] + "..."
		}

		logs = append(logs, fmt.Sprintf("%s %s %s", timestamp, level, logMessageStyle.Render(message)))
	}

	content := strings.Join(logs, "\n")
	if content == "" {
		content = lipgloss.NewStyle().Foreground(faint).Render("No logs yet...")
	}

	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, content),
	)
}

func (m *Model) renderHelp() string {
	help := `
  Keys:
    q        - Stop after the current batch (exit when done)
    ctrl+l   - Clear the log
    ?        - Toggle this help

  Recent:
    ` + successStyle.Render("✓") + `        - Both formats written
    ` + errorStyle.Render("✗") + `        - A format failed
    ↷        - Outputs already on disk
`

	return panelStyle.Width(m.width).Render(help)
}
