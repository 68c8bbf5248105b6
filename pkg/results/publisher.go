package results

import (
	"context"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
	"megrep/pkg/config"
	errs "megrep/pkg/errors"
	"megrep/pkg/logger"
	"megrep/pkg/paths"
	"megrep/pkg/storage"
)

// Scanner lists the inputs under a content root
type Scanner interface {
	Scan(ctx context.Context, root string) ([]string, error)
}

// Publisher writes the results artifact
type Publisher struct {
	path     string
	formats  config.FormatsConfig
	resolver *paths.Resolver
	builder  *Builder
	scanner  Scanner
	logger   logger.Logger
	now      func() time.Time
}

// NewPublisher creates a publisher writing to path. The formats section is
// embedded in every artifact as the config snapshot.
func NewPublisher(path string, formats config.FormatsConfig, resolver *paths.Resolver, scanner Scanner, log logger.Logger) *Publisher {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Publisher{
		path:     path,
		formats:  formats,
		resolver: resolver,
		builder:  NewBuilder(resolver),
		scanner:  scanner,
		logger:   log.WithField("component", "results"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Path returns the artifact location
func (p *Publisher) Path() string {
	return p.path
}

// Publish replaces the artifact with results
func (p *Publisher) Publish(results []ConversionResult) error {
	if results == nil {
		results = []ConversionResult{}
	}

	artifact := Artifact{
		Timestamp: p.now(),
		Config:    p.formats,
		Results:   results,
	}

	if err := storage.WriteJSON(p.path, artifact); err != nil {
		return errs.New(errs.ErrorTypeResults, "publish", p.path, err)
	}

	p.logger.DebugWithFields("Results published", map[string]interface{}{
		"path":    p.path,
		"results": len(results),
	})
	return nil
}

// Load reads the current artifact
func (p *Publisher) Load() (*Artifact, error) {
	var artifact Artifact
	if err := storage.ReadJSON(p.path, &artifact); err != nil {
		return nil, errs.New(errs.ErrorTypeResults, "load", p.path, err)
	}
	return &artifact, nil
}

// RegenerateFromDisk rescans the content root and rebuilds a successful
// result for every input whose outputs both exist, then publishes them.
// Result order follows scan order.
func (p *Publisher) RegenerateFromDisk(ctx context.Context) ([]ConversionResult, error) {
	files, err := p.scanner.Scan(ctx, p.resolver.ContentsDir())
	if err != nil {
		return nil, err
	}

	found := make([]*ConversionResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if r, ok := p.builder.FromDisk(file); ok {
				found[i] = &r
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	results := make([]ConversionResult, 0, len(files))
	for _, r := range found {
		if r != nil {
			results = append(results, *r)
		}
	}

	p.logger.InfoWithFields("Results regenerated from disk", map[string]interface{}{
		"scanned": len(files),
		"results": len(results),
	})

	if err := p.Publish(results); err != nil {
		return results, err
	}
	return results, nil
}
