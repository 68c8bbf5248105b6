package results

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"megrep/pkg/config"
	errs "megrep/pkg/errors"
	"megrep/pkg/logger"
	"megrep/pkg/paths"
)

type project struct {
	root     string
	resolver *paths.Resolver
}

func newProject(t *testing.T) *project {
	t.Helper()
	root := t.TempDir()
	return &project{
		root: root,
		resolver: paths.NewResolver(root,
			filepath.Join(root, "contents"),
			filepath.Join(root, "avif"),
			filepath.Join(root, "webp")),
	}
}

func (p *project) write(t *testing.T, rel string, size int) string {
	t.Helper()
	path := filepath.Join(p.root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0644))
	return path
}

type listScanner struct {
	files []string
	err   error
}

func (s listScanner) Scan(ctx context.Context, root string) ([]string, error) {
	return s.files, s.err
}

func TestBuildEndToEndExample(t *testing.T) {
	p := newProject(t)
	input := p.write(t, "contents/a/x.png", 2000)
	avif := p.write(t, "avif/a/x.avif", 600)
	webp := p.write(t, "webp/a/x.webp", 800)

	got := NewBuilder(p.resolver).Build(input,
		Outcome{Output: avif, Success: true},
		Outcome{Output: webp, Success: true})

	want := ConversionResult{
		Original: FileInfo{Path: "a/x.png", Size: 2000, SizeFormatted: "1.95 KB"},
		AVIF: FormatResult{
			Path: "avif/a/x.avif", Size: 600, SizeFormatted: "600 Bytes",
			CompressionRatio: 70, Success: true,
		},
		WebP: FormatResult{
			Path: "webp/a/x.webp", Size: 800, SizeFormatted: "800 Bytes",
			CompressionRatio: 60, Success: true,
		},
	}
	assert.Equal(t, want, got)
	assert.True(t, got.Succeeded())
}

func TestBuildPartialFailure(t *testing.T) {
	p := newProject(t)
	input := p.write(t, "contents/x.png", 1000)
	avif := p.write(t, "avif/x.avif", 300)

	got := NewBuilder(p.resolver).Build(input,
		Outcome{Output: avif, Success: true},
		Outcome{Output: filepath.Join(p.root, "webp", "x.webp"), Success: false})

	assert.True(t, got.AVIF.Success)
	assert.Equal(t, 70, got.AVIF.CompressionRatio)

	assert.False(t, got.WebP.Success)
	assert.Equal(t, int64(0), got.WebP.Size)
	assert.Equal(t, 0, got.WebP.CompressionRatio)
	assert.Equal(t, "webp/x.webp", got.WebP.Path)
	assert.False(t, got.Succeeded())
}

func TestBuildMissingOutputIsFailure(t *testing.T) {
	p := newProject(t)
	input := p.write(t, "contents/x.png", 1000)

	got := NewBuilder(p.resolver).Build(input,
		Outcome{Output: filepath.Join(p.root, "avif", "x.avif"), Success: true},
		Outcome{Output: filepath.Join(p.root, "webp", "x.webp"), Success: true})

	assert.False(t, got.AVIF.Success)
	assert.False(t, got.WebP.Success)
}

func TestBuildUnreadableOriginal(t *testing.T) {
	p := newProject(t)
	avif := p.write(t, "avif/gone.avif", 300)

	got := NewBuilder(p.resolver).Build(filepath.Join(p.root, "contents", "gone.png"),
		Outcome{Output: avif, Success: true},
		Outcome{Output: filepath.Join(p.root, "webp", "gone.webp")})

	assert.Equal(t, int64(0), got.Original.Size)
	assert.Equal(t, "0 Bytes", got.Original.SizeFormatted)
	assert.Equal(t, 0, got.AVIF.CompressionRatio)
}

func TestFromDisk(t *testing.T) {
	p := newProject(t)
	input := p.write(t, "contents/a/x.png", 2000)
	b := NewBuilder(p.resolver)

	_, ok := b.FromDisk(input)
	assert.False(t, ok)

	p.write(t, "avif/a/x.avif", 600)
	_, ok = b.FromDisk(input)
	assert.False(t, ok, "one output is not enough")

	p.write(t, "webp/a/x.webp", 800)
	got, ok := b.FromDisk(input)
	require.True(t, ok)
	assert.Equal(t, 70, got.AVIF.CompressionRatio)
	assert.Equal(t, 60, got.WebP.CompressionRatio)
	assert.True(t, got.Succeeded())
}

func TestPublishWritesArtifact(t *testing.T) {
	p := newProject(t)
	path := filepath.Join(p.root, "results.json")

	formats := config.DefaultConfig().Formats
	pub := NewPublisher(path, formats, p.resolver, listScanner{}, logger.NewNopLogger())
	pub.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

	require.NoError(t, pub.Publish([]ConversionResult{{Original: FileInfo{Path: "a/x.png"}}}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "2024-05-01T12:00:00Z", doc["timestamp"])

	cfg := doc["config"].(map[string]interface{})
	assert.Equal(t, []interface{}{"jpg", "jpeg", "png"}, cfg["supportedFormats"])
	assert.Equal(t, map[string]interface{}{"quality": float64(60), "speed": float64(6)}, cfg["avif"])
	assert.Equal(t, map[string]interface{}{
		"quality": float64(80), "method": float64(6), "metadata": "none",
	}, cfg["webp"])

	entries := doc["results"].([]interface{})
	require.Len(t, entries, 1)
	entry := entries[0].(map[string]interface{})
	assert.Contains(t, entry, "original")
	assert.Contains(t, entry["avif"], "compressionRatio")
	assert.Contains(t, entry["webp"], "sizeFormatted")
}

func TestPublishEmptyResultsIsArray(t *testing.T) {
	p := newProject(t)
	pub := NewPublisher(filepath.Join(p.root, "results.json"), config.DefaultConfig().Formats,
		p.resolver, listScanner{}, logger.NewNopLogger())

	require.NoError(t, pub.Publish(nil))

	raw, _ := os.ReadFile(pub.Path())
	assert.Contains(t, string(raw), `"results": []`)
}

func TestPublishFailureIsResultsError(t *testing.T) {
	p := newProject(t)
	blocker := p.write(t, "blocker", 1)
	pub := NewPublisher(filepath.Join(blocker, "results.json"), config.DefaultConfig().Formats,
		p.resolver, listScanner{}, logger.NewNopLogger())

	err := pub.Publish(nil)
	require.Error(t, err)

	var typed *errs.Error
	require.True(t, errors.As(err, &typed))
	assert.Equal(t, errs.ErrorTypeResults, typed.Type)
	assert.False(t, errs.IsFatal(typed.Type))
}

func TestRegenerateFromDisk(t *testing.T) {
	p := newProject(t)
	x := p.write(t, "contents/a/x.png", 2000)
	y := p.write(t, "contents/b/y.jpg", 1000)
	z := p.write(t, "contents/z.png", 500)
	p.write(t, "avif/a/x.avif", 600)
	p.write(t, "webp/a/x.webp", 800)
	p.write(t, "avif/z.avif", 100)
	p.write(t, "webp/z.webp", 100)

	pub := NewPublisher(filepath.Join(p.root, "results.json"), config.DefaultConfig().Formats,
		p.resolver, listScanner{files: []string{x, y, z}}, logger.NewNopLogger())

	got, err := pub.RegenerateFromDisk(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a/x.png", got[0].Original.Path)
	assert.Equal(t, "z.png", got[1].Original.Path)

	artifact, err := pub.Load()
	require.NoError(t, err)
	assert.Equal(t, got, artifact.Results)
}

func TestRegenerateFromDiskScanError(t *testing.T) {
	p := newProject(t)
	pub := NewPublisher(filepath.Join(p.root, "results.json"), config.DefaultConfig().Formats,
		p.resolver, listScanner{err: errors.New("missing root")}, logger.NewNopLogger())

	_, err := pub.RegenerateFromDisk(context.Background())
	assert.EqualError(t, err, "missing root")
	_, statErr := os.Stat(pub.Path())
	assert.True(t, os.IsNotExist(statErr))
}

func TestSummarize(t *testing.T) {
	results := []ConversionResult{
		{
			Original: FileInfo{Size: 1000},
			AVIF:     FormatResult{Size: 300, Success: true},
			WebP:     FormatResult{Size: 400, Success: true},
		},
		{
			Original: FileInfo{Size: 1000},
			AVIF:     FormatResult{Size: 300, Success: true},
			WebP:     FormatResult{Success: false},
		},
	}

	tally := Summarize(results)
	assert.Equal(t, 2, tally.Total)
	assert.Equal(t, 1, tally.Successful)
	assert.Equal(t, 1, tally.Failed)
	assert.Equal(t, 0, tally.AVIFFailed)
	assert.Equal(t, 1, tally.WebPFailed)
	assert.Equal(t, 70, tally.Savings(paths.AVIF))
	assert.Equal(t, 80, tally.Savings(paths.WebP))
}
