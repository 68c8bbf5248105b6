package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileCreatesParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "out.txt")

	require.NoError(t, WriteFile(path, strings.NewReader("hello")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestWriteFileLeavesNoTemporaries(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "progress.json")

	require.NoError(t, WriteFile(path, strings.NewReader("one")))
	require.NoError(t, WriteFile(path, strings.NewReader("two")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "progress.json", entries[0].Name())

	data, _ := os.ReadFile(path)
	assert.Equal(t, "two", string(data))
}

func TestWriteAndReadJSON(t *testing.T) {
	type doc struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}
	path := filepath.Join(t.TempDir(), "doc.json")

	require.NoError(t, WriteJSON(path, doc{Name: "x", Count: 3}))

	raw, _ := os.ReadFile(path)
	assert.Contains(t, string(raw), "\n  \"name\": \"x\"")

	var got doc
	require.NoError(t, ReadJSON(path, &got))
	assert.Equal(t, doc{Name: "x", Count: 3}, got)
}

func TestReadJSONErrors(t *testing.T) {
	dir := t.TempDir()

	var v map[string]interface{}
	err := ReadJSON(filepath.Join(dir, "missing.json"), &v)
	assert.True(t, os.IsNotExist(err))

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0644))
	err = ReadJSON(bad, &v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode bad.json")
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.png")
	dst := filepath.Join(dir, "sample", "a", "src.png")
	require.NoError(t, os.WriteFile(src, []byte("pixels"), 0600))

	require.NoError(t, CopyFile(src, dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "pixels", string(data))
	assert.True(t, Exists(src))

	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestMoveFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "x.jpg")
	dst := filepath.Join(dir, "moved", "x.jpg")
	require.NoError(t, os.WriteFile(src, []byte("jpeg"), 0644))

	require.NoError(t, MoveFile(src, dst))

	assert.False(t, Exists(src))
	assert.True(t, Exists(dst))
}

func TestSizeAndRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f")
	require.NoError(t, os.WriteFile(path, make([]byte, 2000), 0644))

	size, err := Size(path)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), size)

	require.NoError(t, Remove(path))
	require.NoError(t, Remove(path))
	assert.False(t, Exists(path))

	_, err = Size(path)
	assert.Error(t, err)
}
