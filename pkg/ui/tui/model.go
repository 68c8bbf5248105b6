package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"megrep/pkg/results"
	"megrep/pkg/ui"
)

// maxRecent is how many converted files the dashboard lists
const maxRecent = 8

// RecentItem is a converted file shown in the recent panel
type RecentItem struct {
	Path      string
	AVIFRatio int
	WebPRatio int
	Failed    []string
	Skipped   bool
}

// LogMessage represents a log entry
type LogMessage struct {
	Time    time.Time
	Level   string
	Message string
	Color   lipgloss.Color
}

// Model is the conversion dashboard
type Model struct {
	spinner spinner.Model
	bar     progress.Model

	progress  ui.Progress
	remaining int
	snapshots int
	recent    []RecentItem

	avifSaved []int
	webpSaved []int

	finished bool
	tally    results.Tally

	width          int
	height         int
	showHelp       bool
	quitting       bool
	logMessages    []LogMessage
	maxLogMessages int

	onQuit func()
}

// NewModel creates a dashboard. onQuit is called once when the user asks
// to stop.
func NewModel(onQuit func()) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(violet)

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 40

	return Model{
		spinner:        s,
		bar:            bar,
		logMessages:    []LogMessage{},
		maxLogMessages: 50,
		onQuit:         onQuit,
	}
}

// Init initializes the model
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tickCmd())
}

// Started records the scan summary
func (m *Model) Started(total, remaining int) {
	m.progress.Total = total
	m.progress.Processed = total - remaining
	m.remaining = remaining
}

// Skipped records an input whose outputs already existed
func (m *Model) Skipped(relPath string, p ui.Progress) {
	m.progress = p
	m.pushRecent(RecentItem{Path: relPath, Skipped: true})
}

// Converted records an encoded input
func (m *Model) Converted(r results.ConversionResult, p ui.Progress) {
	m.progress = p

	item := RecentItem{Path: r.Original.Path}
	if r.AVIF.Success {
		item.AVIFRatio = r.AVIF.CompressionRatio
		m.avifSaved = append(m.avifSaved, r.AVIF.CompressionRatio)
	} else {
		item.Failed = append(item.Failed, "avif")
	}
	if r.WebP.Success {
		item.WebPRatio = r.WebP.CompressionRatio
		m.webpSaved = append(m.webpSaved, r.WebP.CompressionRatio)
	} else {
		item.Failed = append(item.Failed, "webp")
	}
	m.pushRecent(item)

	if len(item.Failed) > 0 {
		m.AddLogMessage("ERROR", "Failed: "+r.Original.Path)
	}
}

// Finished records the final tally
func (m *Model) Finished(t results.Tally, p ui.Progress) {
	m.progress = p
	m.tally = t
	m.finished = true
	m.AddLogMessage("SUCCESS", "Conversion complete")
}

// AverageRatio returns the mean compression ratio of successful outputs
func (m *Model) AverageRatio(format string) int {
	values := m.avifSaved
	if format == "webp" {
		values = m.webpSaved
	}
	if len(values) == 0 {
		return 0
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return int(float64(sum)/float64(len(values)) + 0.5)
}

func (m *Model) pushRecent(item RecentItem) {
	m.recent = append(m.recent, item)
	if len(m.recent) > maxRecent {
		m.recent = m.recent[len(m.recent)-maxRecent:]
	}
}

// AddLogMessage adds a log message
func (m *Model) AddLogMessage(level, message string) {
	m.logMessages = append(m.logMessages, LogMessage{
		Time:    time.Now(),
		Level:   level,
		Message: message,
		Color:   levelColor(level),
	})

	if len(m.logMessages) > m.maxLogMessages {
		m.logMessages = m.logMessages[len(m.logMessages)-m.maxLogMessages:]
	}
}
