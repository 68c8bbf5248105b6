package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"megrep/pkg/results"
)

func TestPercentage(t *testing.T) {
	assert.Equal(t, 0, Progress{}.Percentage())
	assert.Equal(t, 25, Progress{Processed: 1, Total: 4}.Percentage())
	assert.Equal(t, 67, Progress{Processed: 2, Total: 3}.Percentage())
	assert.Equal(t, 100, Progress{Processed: 7, Total: 7}.Percentage())
}

func TestStatusTrackerETA(t *testing.T) {
	st := NewStatusTracker(100, 40)
	start := st.startTime
	st.now = func() time.Time { return start.Add(10 * time.Second) }

	p := st.Snapshot()
	assert.Equal(t, 40, p.Processed)
	assert.Zero(t, p.ETA, "no ETA before anything was handled in this run")

	for i := 0; i < 10; i++ {
		st.RecordConverted(i != 3)
	}
	st.RecordSkipped()
	st.SetBatch(2)

	p = st.Snapshot()
	assert.Equal(t, 51, p.Processed)
	assert.Equal(t, 10, p.Encoded)
	assert.Equal(t, 1, p.Skipped)
	assert.Equal(t, 1, p.Failed)
	assert.Equal(t, 2, p.Batch)
	assert.Equal(t, 10*time.Second, p.Elapsed)
	// 11 inputs took 10s, 49 remain
	assert.InDelta(t, float64(49*10*time.Second/11), float64(p.ETA), float64(time.Millisecond))
}

func TestBar(t *testing.T) {
	assert.Equal(t, strings.Repeat(ProgressEmpty, 10), Bar(Progress{}, 10))
	assert.Equal(t, strings.Repeat(ProgressBar, 5)+strings.Repeat(ProgressEmpty, 5),
		Bar(Progress{Processed: 50, Total: 100}, 10))
	assert.Equal(t, strings.Repeat(ProgressBar, 10), Bar(Progress{Processed: 120, Total: 100}, 10))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "42s", FormatDuration(42*time.Second))
	assert.Equal(t, "3m5s", FormatDuration(3*time.Minute+5*time.Second))
	assert.Equal(t, "2h10m", FormatDuration(2*time.Hour+10*time.Minute))
}

func result(path string, avif, webp bool) results.ConversionResult {
	return results.ConversionResult{
		Original: results.FileInfo{Path: path},
		AVIF:     results.FormatResult{Success: avif, SizeFormatted: "600 Bytes", CompressionRatio: 70},
		WebP:     results.FormatResult{Success: webp, SizeFormatted: "800 Bytes", CompressionRatio: 60},
	}
}

func TestProgressDisplayPrintsEveryTenFiles(t *testing.T) {
	var buf bytes.Buffer
	d := NewProgressDisplay(&buf, false)
	require.False(t, d.interactive)

	for i := 1; i <= 25; i++ {
		d.Converted(result("x.png", true, true), Progress{Processed: i, Total: 25, ETA: time.Minute})
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Progress: 10/25 (40%) • 1m0s left", lines[0])
	assert.Equal(t, "Progress: 20/25 (80%) • 1m0s left", lines[1])
}

func TestProgressDisplayReportsFailures(t *testing.T) {
	var buf bytes.Buffer
	d := NewProgressDisplay(&buf, false)

	d.Converted(result("a/x.png", true, false), Progress{Processed: 1, Total: 5})
	assert.Contains(t, buf.String(), "a/x.png failed (webp)")
}

func TestProgressDisplayVerbose(t *testing.T) {
	var buf bytes.Buffer
	d := NewProgressDisplay(&buf, true)

	d.Skipped("b/y.png", Progress{Processed: 1, Total: 5})
	d.Converted(result("a/x.png", true, true), Progress{Processed: 2, Total: 5})

	out := buf.String()
	assert.Contains(t, out, "b/y.png (already converted)")
	assert.Contains(t, out, "avif 600 Bytes (70%)")
	assert.Contains(t, out, "webp 800 Bytes (60%)")
}

func TestProgressDisplayFinished(t *testing.T) {
	var buf bytes.Buffer
	d := NewProgressDisplay(&buf, false)

	tally := results.Summarize([]results.ConversionResult{{
		Original: results.FileInfo{Size: 2000},
		AVIF:     results.FormatResult{Size: 600, Success: true},
		WebP:     results.FormatResult{Size: 800, Success: true},
	}})
	d.Finished(tally, Progress{Encoded: 1, Skipped: 2, Elapsed: 5 * time.Second})

	out := buf.String()
	assert.Contains(t, out, "1 succeeded, 0 failed")
	assert.Contains(t, out, "1 encoded, 2 already converted")
	assert.Contains(t, out, "avif 600 Bytes (70%)")
	assert.Contains(t, out, "total time 5s")
}

type fakeSender struct {
	titles []string
	err    error
}

func (f *fakeSender) Send(title, message string) error {
	f.titles = append(f.titles, title)
	return f.err
}

func TestNotifier(t *testing.T) {
	var buf bytes.Buffer
	sender := &fakeSender{err: errors.New("no display")}
	n := NewNotifierWithSender(sender, &buf)

	n.SendSuccess("megrep", "412 images converted")
	n.SendError("megrep", "scan failed")

	assert.Equal(t, []string{"megrep", "megrep"}, sender.titles)
	assert.Contains(t, buf.String(), "412 images converted")
	assert.Contains(t, buf.String(), "scan failed")
}

func TestNotifierWithoutSender(t *testing.T) {
	var buf bytes.Buffer
	NewNotifierWithSender(nil, &buf).SendSuccess("megrep", "done")
	assert.Contains(t, buf.String(), "done")
}

func TestIsTerminalNonFile(t *testing.T) {
	var buf bytes.Buffer
	assert.False(t, IsTerminal(&buf))
	assert.Equal(t, 80, TerminalWidth(&buf, 80))
}

func TestPrintHelpers(t *testing.T) {
	var buf bytes.Buffer
	prevOut, prevColor := Console, NoColor
	Console, NoColor = &buf, true
	defer func() { Console, NoColor = prevOut, prevColor }()

	PrintError("Scan failed", "no such directory")
	PrintError("Plain")
	PrintWarning("Checkpoint discarded", "progress.json.backup")
	PrintSuccess("Conversion complete")
	PrintInfo("Results", "results.json")

	assert.Equal(t, "✗ Scan failed: no such directory\n"+
		"✗ Plain\n"+
		"! Checkpoint discarded: progress.json.backup\n"+
		"✓ Conversion complete\n"+
		"Results: results.json\n", buf.String())
}

func TestColorHelpers(t *testing.T) {
	prev := NoColor
	defer func() { NoColor = prev }()

	NoColor = false
	assert.Equal(t, "\033[32mok\033[0m", Green("ok"))
	NoColor = true
	assert.Equal(t, "ok", Green("ok"))
}
