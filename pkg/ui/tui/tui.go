// Package tui is the full-screen conversion dashboard behind
// `megrep convert --tui`.
package tui

import (
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"megrep/pkg/results"
	"megrep/pkg/ui"
)

// TUI runs the dashboard program and forwards pipeline events to it
type TUI struct {
	program *tea.Program
	model   *Model
	once    sync.Once
}

// NewTUI creates a dashboard. onQuit is invoked when the user presses q.
func NewTUI(onQuit func(), opts ...tea.ProgramOption) *TUI {
	model := NewModel(onQuit)
	if len(opts) == 0 {
		opts = []tea.ProgramOption{tea.WithAltScreen()}
	}
	return &TUI{
		program: tea.NewProgram(&model, opts...),
		model:   &model,
	}
}

// Run blocks until the program exits
func (t *TUI) Run() error {
	_, err := t.program.Run()
	return err
}

// Stop ends the program
func (t *TUI) Stop() {
	t.once.Do(t.program.Quit)
}

// Send sends a message to the TUI
func (t *TUI) Send(msg tea.Msg) {
	if t.program != nil {
		t.program.Send(msg)
	}
}

func (t *TUI) Started(total, remaining int) {
	t.Send(StartedMsg{Total: total, Remaining: remaining})
}

func (t *TUI) Skipped(relPath string, p ui.Progress) {
	t.Send(SkippedMsg{Path: relPath, Progress: p})
}

func (t *TUI) Converted(r results.ConversionResult, p ui.Progress) {
	t.Send(ConvertedMsg{Result: r, Progress: p})
}

func (t *TUI) BatchDone(p ui.Progress) {
	t.Send(BatchMsg{Progress: p})
}

func (t *TUI) SnapshotPublished(count int) {
	t.Send(SnapshotMsg{Count: count})
}

func (t *TUI) Finished(tally results.Tally, p ui.Progress) {
	t.Send(FinishedMsg{Tally: tally, Progress: p})
}

// Log sends a log message to the TUI
func (t *TUI) Log(level, format string, args ...interface{}) {
	t.Send(LogMsg{Level: level, Message: fmt.Sprintf(format, args...)})
}

var _ ui.Reporter = (*TUI)(nil)
