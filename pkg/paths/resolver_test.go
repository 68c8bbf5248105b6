package paths

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResolver(root string) *Resolver {
	return NewResolver(
		root,
		filepath.Join(root, "contents"),
		filepath.Join(root, "avif"),
		filepath.Join(root, "webp"),
	)
}

func TestRelativePath(t *testing.T) {
	r := newTestResolver("/project")

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"top level", "/project/contents/x.png", "x.png", false},
		{"nested", "/project/contents/a/b/x.JPG", filepath.Join("a", "b", "x.JPG"), false},
		{"unclean input", "/project/contents/a/../a/x.png", filepath.Join("a", "x.png"), false},
		{"sibling directory", "/project/avif/x.avif", "", true},
		{"prefix lookalike", "/project/contents2/x.png", "", true},
		{"root itself", "/project/contents", "", true},
		{"relative input", "contents/x.png", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.RelativePath(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrPathOutsideRoot))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOutputPaths(t *testing.T) {
	r := newTestResolver("/project")

	out, err := r.OutputPaths("/project/contents/a/b/photo.large.jpeg")
	require.NoError(t, err)

	assert.Equal(t, "/project/avif/a/b/photo.large.avif", out.AVIF)
	assert.Equal(t, "/project/webp/a/b/photo.large.webp", out.WebP)
	assert.Equal(t, out.AVIF, out.For(AVIF))
	assert.Equal(t, out.WebP, out.For(WebP))
}

func TestOutputPathsDeterministic(t *testing.T) {
	r := newTestResolver("/project")

	first, err := r.OutputPaths("/project/contents/a/x.png")
	require.NoError(t, err)
	second, err := r.OutputPaths("/project/contents/a/x.png")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.NotEqual(t, first.AVIF, first.WebP)
}

func TestOutputPathsOutsideRoot(t *testing.T) {
	r := newTestResolver("/project")

	_, err := r.OutputPaths("/elsewhere/x.png")
	assert.True(t, errors.Is(err, ErrPathOutsideRoot))
}

func TestDisplayPath(t *testing.T) {
	r := newTestResolver("/project")

	assert.Equal(t, "avif/a/x.avif", r.DisplayPath("/project/avif/a/x.avif"))

	rel, err := r.DisplayRelative("/project/contents/a/x.png")
	require.NoError(t, err)
	assert.Equal(t, "a/x.png", rel)
}

func TestBothExist(t *testing.T) {
	root := t.TempDir()
	r := newTestResolver(root)
	input := filepath.Join(root, "contents", "a", "x.png")

	assert.False(t, r.BothExist(input))

	out, err := r.OutputPaths(input)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(out.AVIF), 0755))
	require.NoError(t, os.WriteFile(out.AVIF, []byte("a"), 0644))
	assert.False(t, r.BothExist(input), "one output is not enough")

	require.NoError(t, os.MkdirAll(filepath.Dir(out.WebP), 0755))
	require.NoError(t, os.WriteFile(out.WebP, []byte("w"), 0644))
	assert.True(t, r.BothExist(input))
}

func TestFormatExtension(t *testing.T) {
	assert.Equal(t, ".avif", AVIF.Extension())
	assert.Equal(t, ".webp", WebP.Extension())
	assert.Equal(t, []Format{AVIF, WebP}, Formats)
}
