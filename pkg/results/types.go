// Package results builds per-file conversion records and publishes the
// results artifact consumed by the viewer.
package results

import (
	"time"

	"megrep/pkg/config"
	"megrep/pkg/paths"
)

// FileInfo describes the original input
type FileInfo struct {
	Path          string `json:"path"`
	Size          int64  `json:"size"`
	SizeFormatted string `json:"sizeFormatted"`
}

// FormatResult describes one derived output
type FormatResult struct {
	Path             string `json:"path"`
	Size             int64  `json:"size"`
	SizeFormatted    string `json:"sizeFormatted"`
	CompressionRatio int    `json:"compressionRatio"`
	Success          bool   `json:"success"`
}

// ConversionResult is the record kept for every processed input
type ConversionResult struct {
	Original FileInfo     `json:"original"`
	AVIF     FormatResult `json:"avif"`
	WebP     FormatResult `json:"webp"`
}

// For returns the output record for format
func (r ConversionResult) For(format paths.Format) FormatResult {
	if format == paths.AVIF {
		return r.AVIF
	}
	return r.WebP
}

// Succeeded reports whether both formats were produced
func (r ConversionResult) Succeeded() bool {
	return r.AVIF.Success && r.WebP.Success
}

// Artifact is the document written to results.json
type Artifact struct {
	Timestamp time.Time            `json:"timestamp"`
	Config    config.FormatsConfig `json:"config"`
	Results   []ConversionResult   `json:"results"`
}

// Tally summarizes a result list
type Tally struct {
	Total         int
	Successful    int
	Failed        int
	AVIFFailed    int
	WebPFailed    int
	OriginalBytes int64
	AVIFBytes     int64
	WebPBytes     int64
}

// Summarize counts successes and failures and totals the byte sizes.
// A result counts as failed when either format failed.
func Summarize(results []ConversionResult) Tally {
	t := Tally{Total: len(results)}
	for _, r := range results {
		if r.Succeeded() {
			t.Successful++
		} else {
			t.Failed++
		}
		if !r.AVIF.Success {
			t.AVIFFailed++
		}
		if !r.WebP.Success {
			t.WebPFailed++
		}
		t.OriginalBytes += r.Original.Size
		t.AVIFBytes += r.AVIF.Size
		t.WebPBytes += r.WebP.Size
	}
	return t
}

// Savings returns the aggregate compression ratio of format across the tally
func (t Tally) Savings(format paths.Format) int {
	if format == paths.AVIF {
		return CompressionRatio(t.OriginalBytes, t.AVIFBytes)
	}
	return CompressionRatio(t.OriginalBytes, t.WebPBytes)
}
