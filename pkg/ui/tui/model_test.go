package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"megrep/pkg/results"
	"megrep/pkg/ui"
)

func converted(path string, avif, webp int, ok bool) results.ConversionResult {
	return results.ConversionResult{
		Original: results.FileInfo{Path: path},
		AVIF:     results.FormatResult{Success: true, CompressionRatio: avif},
		WebP:     results.FormatResult{Success: ok, CompressionRatio: webp},
	}
}

func TestModelTracksRun(t *testing.T) {
	model := NewModel(nil)

	model.Update(StartedMsg{Total: 10, Remaining: 7})
	assert.Equal(t, 3, model.progress.Processed)
	assert.Equal(t, 10, model.progress.Total)

	model.Update(SkippedMsg{Path: "a/skip.png", Progress: ui.Progress{Processed: 4, Total: 10, Skipped: 1}})
	model.Update(ConvertedMsg{Result: converted("a/x.png", 70, 60, true), Progress: ui.Progress{Processed: 5, Total: 10}})
	model.Update(ConvertedMsg{Result: converted("a/y.png", 50, 0, false), Progress: ui.Progress{Processed: 6, Total: 10, Failed: 1}})

	assert.Equal(t, 6, model.progress.Processed)
	require.Len(t, model.recent, 3)
	assert.True(t, model.recent[0].Skipped)
	assert.Equal(t, []string{"webp"}, model.recent[2].Failed)

	assert.Equal(t, 60, model.AverageRatio("avif"))
	assert.Equal(t, 60, model.AverageRatio("webp"))
}

func TestRecentIsBounded(t *testing.T) {
	model := NewModel(nil)
	for i := 0; i < maxRecent+5; i++ {
		model.Converted(converted("x.png", 1, 1, true), ui.Progress{})
	}
	assert.Len(t, model.recent, maxRecent)
}

func TestLogMessagesAreBounded(t *testing.T) {
	model := NewModel(nil)
	for i := 0; i < 60; i++ {
		model.AddLogMessage("INFO", "message")
	}
	assert.Len(t, model.logMessages, 50)

	model.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	assert.Empty(t, model.logMessages)
}

func TestQuitRequestsStopOnce(t *testing.T) {
	calls := 0
	model := NewModel(func() { calls++ })

	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	assert.Nil(t, cmd, "an unfinished run keeps the dashboard open")
	model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})

	assert.Equal(t, 1, calls)
	assert.True(t, model.quitting)

	model.Update(FinishedMsg{Progress: ui.Progress{Processed: 10, Total: 10}})
	_, cmd = model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestView(t *testing.T) {
	model := NewModel(nil)
	assert.Equal(t, "Initializing...", model.View())

	model.Update(tea.WindowSizeMsg{Width: 140, Height: 50})
	model.Update(StartedMsg{Total: 4, Remaining: 4})
	model.Update(ConvertedMsg{Result: converted("a/x.png", 70, 60, true), Progress: ui.Progress{Processed: 1, Total: 4, Encoded: 1}})

	view := model.View()
	assert.Contains(t, view, "PROGRESS")
	assert.Contains(t, view, "a/x.png")
	assert.Contains(t, view, "1/4 (25%)")

	model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("?")})
	assert.True(t, strings.Contains(model.View(), "Toggle this help"))
}

func TestRatioStyle(t *testing.T) {
	assert.Equal(t, successStyle, RatioStyle(70))
	assert.Equal(t, statsValueStyle, RatioStyle(10))
	assert.Equal(t, errorStyle, RatioStyle(-50))
}
