package scanner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	errs "megrep/pkg/errors"
	"megrep/pkg/logger"
)

func writeFiles(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("img"), 0644))
	}
}

func relAll(t *testing.T, root string, files []string) []string {
	t.Helper()
	var out []string
	for _, f := range files {
		rel, err := filepath.Rel(root, f)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func TestScanGroupsByExtensionOrder(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root,
		"b/two.png",
		"a/one.JPG",
		"a/three.jpg",
		"notes.txt",
		"c/d/four.PNG",
	)

	s := New([]string{"jpg", ".png"}, logger.NewNopLogger())
	files, err := s.Scan(context.Background(), root)
	require.NoError(t, err)

	rel := relAll(t, root, files)
	require.Len(t, rel, 4)

	// jpg matches come first, then png
	jpgs := rel[:2]
	pngs := rel[2:]
	sort.Strings(jpgs)
	sort.Strings(pngs)
	assert.Equal(t, []string{"a/one.JPG", "a/three.jpg"}, jpgs)
	assert.Equal(t, []string{"b/two.png", "c/d/four.PNG"}, pngs)

	for _, f := range files {
		assert.True(t, filepath.IsAbs(f))
	}
}

func TestScanDeduplicatesOverlappingExtensions(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "x.jpg", "y.JPG")

	s := New([]string{"jpg", "JPG"}, logger.NewNopLogger())
	files, err := s.Scan(context.Background(), root)
	require.NoError(t, err)

	assert.Len(t, files, 2)
}

func TestScanSkipsHiddenEntries(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, ".cache/x.png", ".y.png", "z.png")

	s := New([]string{"png"}, logger.NewNopLogger())
	files, err := s.Scan(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, []string{"z.png"}, relAll(t, root, files))
}

func TestScanMissingRoot(t *testing.T) {
	s := New([]string{"png"}, logger.NewNopLogger())
	_, err := s.Scan(context.Background(), filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)

	var typed *errs.Error
	require.True(t, errors.As(err, &typed))
	assert.Equal(t, errs.ErrorTypeScan, typed.Type)
	assert.True(t, errs.IsFatal(typed.Type))
}

func TestScanRootIsFile(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "x.png")

	s := New([]string{"png"}, logger.NewNopLogger())
	_, err := s.Scan(context.Background(), filepath.Join(root, "x.png"))
	assert.Error(t, err)
}

func TestScanCancelled(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "x.png")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := New([]string{"png"}, logger.NewNopLogger())
	_, err := s.Scan(ctx, root)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestScanEmpty(t *testing.T) {
	s := New([]string{"png"}, logger.NewNopLogger())
	files, err := s.Scan(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, files)
}
