// Package paths maps input images to their derived output locations.
package paths

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrPathOutsideRoot is returned when an input does not live under the
// content root
var ErrPathOutsideRoot = errors.New("path outside content root")

// Format identifies a derived output format
type Format string

const (
	AVIF Format = "avif"
	WebP Format = "webp"
)

// Formats lists every target format in the order they are encoded
var Formats = []Format{AVIF, WebP}

// Extension returns the file extension for the format, with leading dot
func (f Format) Extension() string {
	return "." + string(f)
}

// OutputPaths holds the derived location of an input for each format
type OutputPaths struct {
	AVIF string
	WebP string
}

// For returns the output path for format
func (o OutputPaths) For(format Format) string {
	if format == AVIF {
		return o.AVIF
	}
	return o.WebP
}

// Resolver derives output and display paths. It holds no mutable state.
type Resolver struct {
	projectRoot string
	contentsDir string
	outputDirs  map[Format]string
}

// NewResolver creates a resolver. All directories are cleaned and should be
// absolute.
func NewResolver(projectRoot, contentsDir, avifDir, webpDir string) *Resolver {
	return &Resolver{
		projectRoot: filepath.Clean(projectRoot),
		contentsDir: filepath.Clean(contentsDir),
		outputDirs: map[Format]string{
			AVIF: filepath.Clean(avifDir),
			WebP: filepath.Clean(webpDir),
		},
	}
}

// ContentsDir returns the content root
func (r *Resolver) ContentsDir() string {
	return r.contentsDir
}

// OutputDir returns the output root for format
func (r *Resolver) OutputDir(format Format) string {
	return r.outputDirs[format]
}

// RelativePath strips the content root from input
func (r *Resolver) RelativePath(input string) (string, error) {
	rel, err := filepath.Rel(r.contentsDir, filepath.Clean(input))
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrPathOutsideRoot, input)
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return "", fmt.Errorf("%w: %s", ErrPathOutsideRoot, input)
	}
	return rel, nil
}

// OutputPaths swaps the content root for each format's output root and the
// extension for the format's extension, keeping subdirectories intact.
func (r *Resolver) OutputPaths(input string) (OutputPaths, error) {
	rel, err := r.RelativePath(input)
	if err != nil {
		return OutputPaths{}, err
	}
	base := strings.TrimSuffix(rel, filepath.Ext(rel))

	return OutputPaths{
		AVIF: filepath.Join(r.outputDirs[AVIF], base+AVIF.Extension()),
		WebP: filepath.Join(r.outputDirs[WebP], base+WebP.Extension()),
	}, nil
}

// DisplayPath returns path relative to the project root using forward
// slashes, the form the results viewer loads images by.
func (r *Resolver) DisplayPath(path string) string {
	rel, err := filepath.Rel(r.projectRoot, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// DisplayRelative returns the input's path under the content root using
// forward slashes
func (r *Resolver) DisplayRelative(input string) (string, error) {
	rel, err := r.RelativePath(input)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// BothExist reports whether every format's output for input is on disk
func (r *Resolver) BothExist(input string) bool {
	out, err := r.OutputPaths(input)
	if err != nil {
		return false
	}
	return fileExists(out.AVIF) && fileExists(out.WebP)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
