// Package scanner enumerates the input corpus under a content root.
package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	errs "megrep/pkg/errors"
	"megrep/pkg/logger"
)

// Scanner finds input files whose extension matches one of the configured
// extensions, ignoring case
type Scanner struct {
	extensions []string
	logger     logger.Logger
}

// New creates a scanner for the given extensions. Entries may be written
// with or without the leading dot.
func New(extensions []string, log logger.Logger) *Scanner {
	if log == nil {
		log = logger.GetLogger()
	}

	normalized := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
		if ext != "" {
			normalized = append(normalized, "."+ext)
		}
	}

	return &Scanner{
		extensions: normalized,
		logger:     log,
	}
}

// Scan walks root and returns absolute paths grouped by extension in the
// configured order, each group in walk order. A file appears once even when
// several configured extensions match it. Hidden files and directories are
// skipped. A missing or unreadable root is an error.
func (s *Scanner) Scan(ctx context.Context, root string) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, errs.New(errs.ErrorTypeScan, "resolve root", root, err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, errs.New(errs.ErrorTypeScan, "stat root", absRoot, err)
	}
	if !info.IsDir() {
		return nil, errs.New(errs.ErrorTypeScan, "stat root", absRoot, fmt.Errorf("not a directory"))
	}

	buckets := make([][]string, len(s.extensions))

	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if path != absRoot && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		if idx := s.match(filepath.Ext(path)); idx >= 0 {
			buckets[idx] = append(buckets[idx], path)
		}
		return nil
	})
	if err != nil {
		return nil, errs.New(errs.ErrorTypeScan, "walk", absRoot, err)
	}

	var files []string
	for _, bucket := range buckets {
		files = append(files, bucket...)
	}

	s.logger.InfoWithFields("Corpus scanned", map[string]interface{}{
		"root":       absRoot,
		"extensions": s.extensions,
		"files":      len(files),
	})

	return files, nil
}

// match returns the index of the first configured extension equal to ext
func (s *Scanner) match(ext string) int {
	if ext == "" {
		return -1
	}
	for i, candidate := range s.extensions {
		if strings.EqualFold(candidate, ext) {
			return i
		}
	}
	return -1
}
