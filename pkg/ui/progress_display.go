package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"megrep/pkg/paths"
	"megrep/pkg/results"
)

// DefaultProgressEvery is how many processed inputs pass between progress
// lines
const DefaultProgressEvery = 10

// ProgressDisplay reports run progress on the console. On a terminal the
// progress line is redrawn in place; otherwise a plain line is printed.
type ProgressDisplay struct {
	mu          sync.Mutex
	out         io.Writer
	every       int
	interactive bool
	verbose     bool
	width       int
}

// NewProgressDisplay creates a display writing to out
func NewProgressDisplay(out io.Writer, verbose bool) *ProgressDisplay {
	return &ProgressDisplay{
		out:         out,
		every:       DefaultProgressEvery,
		interactive: IsTerminal(out),
		verbose:     verbose,
		width:       TerminalWidth(out, 100),
	}
}

// Started prints the scan summary
func (p *ProgressDisplay) Started(total, remaining int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.out, "%s %d images found, %d remaining\n", Cyan("→"), total, remaining)
}

// Skipped notes an input whose outputs were already on disk
func (p *ProgressDisplay) Skipped(relPath string, pr Progress) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.verbose {
		p.newline()
		fmt.Fprintf(p.out, "%s %s (already converted)\n", Dim("↷"), relPath)
	}
	p.maybePrint(pr)
}

// Converted notes an encoded input
func (p *ProgressDisplay) Converted(r results.ConversionResult, pr Progress) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !r.Succeeded() {
		p.newline()
		fmt.Fprintf(p.out, "%s %s failed (%s)\n", Red("✗"), r.Original.Path, failedFormats(r))
	} else if p.verbose {
		p.newline()
		fmt.Fprintf(p.out, "%s %s • avif %s (%d%%) • webp %s (%d%%)\n",
			Green("✓"), r.Original.Path,
			r.AVIF.SizeFormatted, r.AVIF.CompressionRatio,
			r.WebP.SizeFormatted, r.WebP.CompressionRatio)
	}
	p.maybePrint(pr)
}

// BatchDone redraws the progress line on a terminal
func (p *ProgressDisplay) BatchDone(pr Progress) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.interactive {
		p.print(pr)
	}
}

// SnapshotPublished notes an intermediate results write
func (p *ProgressDisplay) SnapshotPublished(count int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.newline()
	fmt.Fprintf(p.out, "%s intermediate results saved (%d)\n", Dim("•"), count)
}

// Finished prints the final tally
func (p *ProgressDisplay) Finished(t results.Tally, pr Progress) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.newline()
	fmt.Fprintf(p.out, "\n%s Conversion complete\n", Green("✓"))
	fmt.Fprintf(p.out, "  %s %d succeeded, %d failed\n", Dim("•"), t.Successful, t.Failed)
	fmt.Fprintf(p.out, "  %s %d encoded, %d already converted\n", Dim("•"), pr.Encoded, pr.Skipped)
	if t.OriginalBytes > 0 {
		fmt.Fprintf(p.out, "  %s %s → avif %s (%d%%) • webp %s (%d%%)\n",
			Dim("•"),
			results.FormatFileSize(t.OriginalBytes),
			results.FormatFileSize(t.AVIFBytes), t.Savings(paths.AVIF),
			results.FormatFileSize(t.WebPBytes), t.Savings(paths.WebP))
	}
	fmt.Fprintf(p.out, "  %s total time %s\n", Dim("•"), FormatDuration(pr.Elapsed))
}

func (p *ProgressDisplay) maybePrint(pr Progress) {
	if p.every > 0 && pr.Processed%p.every == 0 {
		p.print(pr)
	}
}

func (p *ProgressDisplay) print(pr Progress) {
	eta := "calculating..."
	if pr.ETA > 0 {
		eta = FormatDuration(pr.ETA) + " left"
	} else if pr.Processed >= pr.Total {
		eta = "done"
	}

	if !p.interactive {
		fmt.Fprintf(p.out, "Progress: %d/%d (%d%%) • %s\n", pr.Processed, pr.Total, pr.Percentage(), eta)
		return
	}

	line := fmt.Sprintf("%s [%s] %d/%d (%d%%) • %s",
		Cyan("megrep"), Bar(pr, 20), pr.Processed, pr.Total, pr.Percentage(), eta)
	if pr.Failed > 0 {
		line += " • " + Red(fmt.Sprintf("%d failed", pr.Failed))
	}
	fmt.Fprintf(p.out, "\r%s\r%s", strings.Repeat(" ", p.width-1), line)
}

// newline ends an in-place progress line before other output
func (p *ProgressDisplay) newline() {
	if p.interactive {
		fmt.Fprint(p.out, "\n")
	}
}

func failedFormats(r results.ConversionResult) string {
	var failed []string
	if !r.AVIF.Success {
		failed = append(failed, "avif")
	}
	if !r.WebP.Success {
		failed = append(failed, "webp")
	}
	return strings.Join(failed, ", ")
}
