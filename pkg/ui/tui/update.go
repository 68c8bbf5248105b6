package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"megrep/pkg/results"
	"megrep/pkg/ui"
)

// StartedMsg is sent once the corpus has been scanned
type StartedMsg struct {
	Total     int
	Remaining int
}

// SkippedMsg is sent for inputs whose outputs already existed
type SkippedMsg struct {
	Path     string
	Progress ui.Progress
}

// ConvertedMsg is sent for every encoded input
type ConvertedMsg struct {
	Result   results.ConversionResult
	Progress ui.Progress
}

// BatchMsg is sent after every batch
type BatchMsg struct {
	Progress ui.Progress
}

// SnapshotMsg is sent when intermediate results were written
type SnapshotMsg struct {
	Count int
}

// FinishedMsg is sent when the run completes
type FinishedMsg struct {
	Tally    results.Tally
	Progress ui.Progress
}

// LogMsg is sent to add a log message
type LogMsg struct {
	Level   string
	Message string
}

// TickMsg is sent periodically to update the UI
type TickMsg time.Time

// Update handles all messages and updates the model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = max(10, msg.Width/2-12)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		updated, cmd := m.bar.Update(msg)
		if bar, ok := updated.(progress.Model); ok {
			m.bar = bar
		}
		return m, cmd

	case TickMsg:
		return m, tickCmd()

	case StartedMsg:
		m.Started(msg.Total, msg.Remaining)
		m.AddLogMessage("INFO", fmt.Sprintf("%d images found, %d remaining", msg.Total, msg.Remaining))
		return m, nil

	case SkippedMsg:
		m.Skipped(msg.Path, msg.Progress)
		return m, nil

	case ConvertedMsg:
		m.Converted(msg.Result, msg.Progress)
		return m, nil

	case BatchMsg:
		m.progress = msg.Progress
		m.AddLogMessage("INFO", fmt.Sprintf("Batch %d saved", msg.Progress.Batch))
		return m, nil

	case SnapshotMsg:
		m.snapshots++
		m.AddLogMessage("INFO", fmt.Sprintf("Intermediate results saved (%d)", msg.Count))
		return m, nil

	case FinishedMsg:
		m.Finished(msg.Tally, msg.Progress)
		return m, nil

	case LogMsg:
		m.AddLogMessage(msg.Level, msg.Message)
		return m, nil
	}

	return m, nil
}

// handleKeyPress handles keyboard input
func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "Q", "ctrl+c":
		if m.finished {
			return m, tea.Quit
		}
		if !m.quitting {
			m.quitting = true
			m.AddLogMessage("WARN", "Stopping after the current batch")
			if m.onQuit != nil {
				m.onQuit()
			}
		}
		return m, nil

	case "?":
		m.showHelp = !m.showHelp
		return m, nil

	case "ctrl+l":
		m.logMessages = []LogMessage{}
		return m, nil
	}

	return m, nil
}

// tickCmd returns a command that sends a tick message
func tickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*200, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
