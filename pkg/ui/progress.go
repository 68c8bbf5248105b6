package ui

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

const (
	ProgressBar   = "█"
	ProgressEmpty = "░"
)

// StatusTracker keeps the counters behind a Progress snapshot
type StatusTracker struct {
	mu        sync.Mutex
	total     int
	processed int
	baseline  int
	encoded   int
	skipped   int
	failed    int
	batch     int
	startTime time.Time
	now       func() time.Time
}

// NewStatusTracker creates a tracker for total inputs of which
// alreadyProcessed were handled by an earlier run
func NewStatusTracker(total, alreadyProcessed int) *StatusTracker {
	return &StatusTracker{
		total:     total,
		processed: alreadyProcessed,
		baseline:  alreadyProcessed,
		startTime: time.Now(),
		now:       time.Now,
	}
}

// RecordSkipped counts an input whose outputs already existed
func (st *StatusTracker) RecordSkipped() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.processed++
	st.skipped++
}

// RecordConverted counts an encoded input
func (st *StatusTracker) RecordConverted(success bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.processed++
	st.encoded++
	if !success {
		st.failed++
	}
}

// SetBatch records the current batch number
func (st *StatusTracker) SetBatch(n int) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.batch = n
}

// Snapshot returns the current progress. The ETA extrapolates the average
// time per input handled in this run over the remaining inputs.
func (st *StatusTracker) Snapshot() Progress {
	st.mu.Lock()
	defer st.mu.Unlock()

	elapsed := st.now().Sub(st.startTime)
	p := Progress{
		Batch:     st.batch,
		Processed: st.processed,
		Total:     st.total,
		Encoded:   st.encoded,
		Skipped:   st.skipped,
		Failed:    st.failed,
		Elapsed:   elapsed,
	}

	done := st.processed - st.baseline
	remaining := st.total - st.processed
	if done > 0 && remaining > 0 {
		p.ETA = time.Duration(float64(elapsed) / float64(done) * float64(remaining))
	}
	return p
}

// Bar renders a fixed-width progress bar
func Bar(p Progress, width int) string {
	filled := 0
	if p.Total > 0 {
		filled = int(float64(p.Processed) / float64(p.Total) * float64(width))
	}
	if filled > width {
		filled = width
	}
	return strings.Repeat(ProgressBar, filled) + strings.Repeat(ProgressEmpty, width-filled)
}

// FormatDuration formats a duration in a compact human-readable way
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
	}
}
