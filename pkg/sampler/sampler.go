// Package sampler thins a large corpus into a representative subset for
// trial conversions.
package sampler

import (
	"context"
	"errors"
	"math/rand/v2"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	exif "github.com/dsoprea/go-exif/v3"
	"golang.org/x/sync/errgroup"
	errs "megrep/pkg/errors"
	"megrep/pkg/logger"
	"megrep/pkg/paths"
	"megrep/pkg/results"
	"megrep/pkg/storage"
)

// topDirectories is how many directories Analyze reports
const topDirectories = 10

// Stat aggregates count and bytes for one directory or extension
type Stat struct {
	Name          string
	Count         int
	Size          int64
	SizeFormatted string
}

// Analysis describes a corpus before sampling
type Analysis struct {
	TotalCount         int
	TotalSize          int64
	TotalSizeFormatted string
	Directories        []Stat
	Extensions         []Stat
	WithExif           int
}

// Sampler selects subsets of a corpus under the resolver's content root
type Sampler struct {
	resolver *paths.Resolver
	logger   logger.Logger
	rng      *rand.Rand
}

// New creates a sampler seeded from the clock
func New(resolver *paths.Resolver, log logger.Logger) *Sampler {
	return NewWithSeed(resolver, log, uint64(time.Now().UnixNano()))
}

// NewWithSeed creates a sampler whose random selections are reproducible
func NewWithSeed(resolver *paths.Resolver, log logger.Logger, seed uint64) *Sampler {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Sampler{
		resolver: resolver,
		logger:   log.WithField("component", "sampler"),
		rng:      rand.New(rand.NewPCG(seed, seed>>1|1)),
	}
}

// Analyze totals the corpus, groups it by directory and extension, and
// counts how many files carry EXIF data
func (s *Sampler) Analyze(ctx context.Context, files []string) (*Analysis, error) {
	sizes, err := s.sizes(ctx, files)
	if err != nil {
		return nil, err
	}

	dirs := make(map[string]*Stat)
	exts := make(map[string]*Stat)
	a := &Analysis{TotalCount: len(files)}

	for i, f := range files {
		a.TotalSize += sizes[i]
		add(dirs, s.directory(f), sizes[i])
		add(exts, strings.ToLower(filepath.Ext(f)), sizes[i])
		if s.hasExif(f) {
			a.WithExif++
		}
	}

	a.TotalSizeFormatted = results.FormatFileSize(a.TotalSize)
	a.Directories = ranked(dirs)
	if len(a.Directories) > topDirectories {
		a.Directories = a.Directories[:topDirectories]
	}
	a.Extensions = ranked(exts)

	s.logger.InfoWithFields("Corpus analyzed", map[string]interface{}{
		"files":     a.TotalCount,
		"size":      a.TotalSizeFormatted,
		"with_exif": a.WithExif,
	})
	return a, nil
}

// Random picks floor(len(files)*percent/100) files, returned in their
// original order
func (s *Sampler) Random(files []string, percent float64) []string {
	count := int(float64(len(files)) * percent / 100)
	if count <= 0 {
		return nil
	}
	if count > len(files) {
		count = len(files)
	}

	picked := s.rng.Perm(len(files))[:count]
	sort.Ints(picked)

	selected := make([]string, count)
	for i, idx := range picked {
		selected[i] = files[idx]
	}

	s.logger.InfoWithFields("Random sample selected", map[string]interface{}{
		"percent":  percent,
		"from":     len(files),
		"selected": count,
	})
	return selected
}

// BySize keeps files whose size lies within [minKB, maxKB] kilobytes
func (s *Sampler) BySize(ctx context.Context, files []string, minKB, maxKB int64) ([]string, error) {
	sizes, err := s.sizes(ctx, files)
	if err != nil {
		return nil, err
	}

	lo, hi := minKB*1024, maxKB*1024
	var selected []string
	for i, f := range files {
		if sizes[i] >= lo && sizes[i] <= hi {
			selected = append(selected, f)
		}
	}

	s.logger.InfoWithFields("Size filter applied", map[string]interface{}{
		"min_kb":   minKB,
		"max_kb":   maxKB,
		"from":     len(files),
		"selected": len(selected),
	})
	return selected, nil
}

// ByDirectory keeps at most maxPerDir randomly chosen files from every
// directory. Directories keep the order they first appear in.
func (s *Sampler) ByDirectory(files []string, maxPerDir int) []string {
	if maxPerDir <= 0 {
		return nil
	}

	var order []string
	groups := make(map[string][]int)
	for i, f := range files {
		dir := s.directory(f)
		if _, ok := groups[dir]; !ok {
			order = append(order, dir)
		}
		groups[dir] = append(groups[dir], i)
	}

	var selected []string
	for _, dir := range order {
		idx := groups[dir]
		s.rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
		keep := idx[:min(maxPerDir, len(idx))]
		sort.Ints(keep)
		for _, i := range keep {
			selected = append(selected, files[i])
		}
		s.logger.DebugWithFields("Directory sampled", map[string]interface{}{
			"directory": dir,
			"from":      len(idx),
			"selected":  len(keep),
		})
	}

	s.logger.InfoWithFields("Directory sample selected", map[string]interface{}{
		"max_per_dir": maxPerDir,
		"directories": len(order),
		"selected":    len(selected),
	})
	return selected
}

// CopyTo copies (or moves) files into dest, keeping their path under the
// content root. It returns how many files were transferred.
func (s *Sampler) CopyTo(ctx context.Context, files []string, dest string, move bool) (int, error) {
	op := "copy"
	if move {
		op = "move"
	}

	count := 0
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return count, err
		}

		rel, err := s.resolver.RelativePath(f)
		if err != nil {
			return count, errs.New(errs.ErrorTypePath, op, f, err)
		}
		target := filepath.Join(dest, rel)

		if move {
			err = storage.MoveFile(f, target)
		} else {
			err = storage.CopyFile(f, target)
		}
		if err != nil {
			return count, errs.New(errs.ErrorTypePath, op, f, err)
		}

		count++
		if count%100 == 0 {
			s.logger.InfoWithFields("Sample transfer progress", map[string]interface{}{
				"done":  count,
				"total": len(files),
			})
		}
	}

	s.logger.InfoWithFields("Sample written", map[string]interface{}{
		"operation": op,
		"files":     count,
		"dest":      dest,
	})
	return count, nil
}

// sizes stats every file concurrently, keeping results aligned with files
func (s *Sampler) sizes(ctx context.Context, files []string) ([]int64, error) {
	sizes := make([]int64, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, f := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			size, err := storage.Size(f)
			if err != nil {
				return errs.New(errs.ErrorTypeScan, "stat", f, err)
			}
			sizes[i] = size
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sizes, nil
}

// directory returns the file's directory under the content root, "root"
// for files directly in it
func (s *Sampler) directory(file string) string {
	rel, err := s.resolver.DisplayRelative(file)
	if err != nil {
		return filepath.ToSlash(filepath.Dir(file))
	}
	dir := filepath.ToSlash(filepath.Dir(rel))
	if dir == "." {
		return "root"
	}
	return dir
}

func add(stats map[string]*Stat, name string, size int64) {
	st, ok := stats[name]
	if !ok {
		st = &Stat{Name: name}
		stats[name] = st
	}
	st.Count++
	st.Size += size
}

// ranked orders stats by count descending, then name
func ranked(stats map[string]*Stat) []Stat {
	out := make([]Stat, 0, len(stats))
	for _, st := range stats {
		st.SizeFormatted = results.FormatFileSize(st.Size)
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// hasExif reports whether path carries an EXIF block. Unreadable files
// count as having none.
func (s *Sampler) hasExif(path string) bool {
	_, err := exif.SearchFileAndExtractExif(path)
	if err == nil {
		return true
	}
	if !errors.Is(err, exif.ErrNoExif) {
		s.logger.WithError(err).WithField("file", path).Debug("EXIF read failed")
	}
	return false
}
