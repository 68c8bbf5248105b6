// Package ui renders conversion progress in the terminal.
package ui

import (
	"time"

	"megrep/pkg/results"
)

// Progress is a point-in-time view of a conversion run
type Progress struct {
	Batch     int
	Processed int
	Total     int
	Encoded   int
	Skipped   int
	Failed    int
	Elapsed   time.Duration
	ETA       time.Duration
}

// Percentage returns processed over total as a whole percentage
func (p Progress) Percentage() int {
	if p.Total == 0 {
		return 0
	}
	return int(float64(p.Processed)/float64(p.Total)*100 + 0.5)
}

// Reporter receives run events from the pipeline. Calls are made from the
// orchestrating goroutine only.
type Reporter interface {
	Started(total, remaining int)
	Skipped(relPath string, p Progress)
	Converted(r results.ConversionResult, p Progress)
	BatchDone(p Progress)
	SnapshotPublished(count int)
	Finished(t results.Tally, p Progress)
}

// NopReporter discards every event
type NopReporter struct{}

func (NopReporter) Started(total, remaining int)                     {}
func (NopReporter) Skipped(relPath string, p Progress)               {}
func (NopReporter) Converted(r results.ConversionResult, p Progress) {}
func (NopReporter) BatchDone(p Progress)                             {}
func (NopReporter) SnapshotPublished(count int)                      {}
func (NopReporter) Finished(t results.Tally, p Progress)             {}
