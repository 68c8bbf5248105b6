package pipeline

import (
	"context"
	"os"
	"runtime"
	"time"

	"github.com/google/uuid"
	"megrep/internal/worker"
	"megrep/pkg/checkpoint"
	"megrep/pkg/encoder"
	errs "megrep/pkg/errors"
	"megrep/pkg/logger"
	"megrep/pkg/paths"
	"megrep/pkg/results"
	"megrep/pkg/ui"
)

// Store persists run progress
type Store interface {
	Load() *checkpoint.Checkpoint
	Save(cp *checkpoint.Checkpoint) error
	Clear() error
}

// Publisher writes the results artifact
type Publisher interface {
	Publish(results []results.ConversionResult) error
	RegenerateFromDisk(ctx context.Context) ([]results.ConversionResult, error)
}

// Outcome describes how a run ended
type Outcome string

const (
	OutcomeCompleted    Outcome = "completed"
	OutcomeNothingFound Outcome = "nothing_found"
	OutcomeUpToDate     Outcome = "up_to_date"
	OutcomeInterrupted  Outcome = "interrupted"
)

// Summary reports what a run did
type Summary struct {
	RunID      string
	Outcome    Outcome
	Discovered int
	Remaining  int
	Encoded    int
	Skipped    int
	Batches    int
	Tally      results.Tally
	Elapsed    time.Duration
}

// Options configures a Pipeline
type Options struct {
	Resolver      *paths.Resolver
	Scanner       results.Scanner
	Encoder       encoder.Encoder
	Store         Store
	Publisher     Publisher
	Reporter      ui.Reporter
	Logger        logger.Logger
	BatchSize     int
	Workers       int
	SnapshotEvery int
}

// Pipeline converts the corpus under the resolver's content root
type Pipeline struct {
	resolver      *paths.Resolver
	scanner       results.Scanner
	encoder       encoder.Encoder
	store         Store
	publisher     Publisher
	reporter      ui.Reporter
	builder       *results.Builder
	logger        logger.Logger
	runID         string
	batchSize     int
	workers       int
	snapshotEvery int
}

// New creates a pipeline. Batch size and snapshot interval fall back to 50
// and 2; workers are capped at the number of CPUs.
func New(opts Options) *Pipeline {
	log := opts.Logger
	if log == nil {
		log = logger.GetLogger()
	}
	reporter := opts.Reporter
	if reporter == nil {
		reporter = ui.NopReporter{}
	}

	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = 50
	}
	snapshotEvery := opts.SnapshotEvery
	if snapshotEvery <= 0 {
		snapshotEvery = 2
	}
	workers := min(opts.Workers, runtime.NumCPU())
	if workers < 1 {
		workers = 1
	}

	runID := uuid.NewString()

	return &Pipeline{
		resolver:      opts.Resolver,
		scanner:       opts.Scanner,
		encoder:       opts.Encoder,
		store:         opts.Store,
		publisher:     opts.Publisher,
		reporter:      reporter,
		builder:       results.NewBuilder(opts.Resolver),
		logger:        log.WithFields(map[string]interface{}{"component": "pipeline", "run_id": runID}),
		runID:         runID,
		batchSize:     batchSize,
		workers:       workers,
		snapshotEvery: snapshotEvery,
	}
}

// RunID identifies this pipeline's run in logs
func (p *Pipeline) RunID() string {
	return p.runID
}

// Workers returns the effective worker count
func (p *Pipeline) Workers() int {
	return p.workers
}

// state is the mutable progress of a run, owned by the orchestrating
// goroutine
type state struct {
	processed     map[string]struct{}
	processedList []string
	results       []results.ConversionResult
	total         int
}

func (s *state) markProcessed(input string) {
	if _, ok := s.processed[input]; ok {
		return
	}
	s.processed[input] = struct{}{}
	s.processedList = append(s.processedList, input)
}

func (s *state) checkpoint() *checkpoint.Checkpoint {
	return &checkpoint.Checkpoint{
		ProcessedCount: len(s.processedList),
		TotalCount:     s.total,
		Results:        s.results,
		ProcessedFiles: s.processedList,
	}
}

// Run executes the conversion. Only startup failures are returned: a
// missing content root or an output root that cannot be created.
// Per-file failures are recorded in the results. The checkpoint is
// saved after every batch, including batches of already-processed files.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()
	summary := &Summary{RunID: p.runID}

	for _, format := range paths.Formats {
		dir := p.resolver.OutputDir(format)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errs.New(errs.ErrorTypePath, "create output root", dir, err)
		}
	}

	cp := p.store.Load()
	st := &state{
		processed:     cp.ProcessedSet(),
		processedList: append([]string(nil), cp.ProcessedFiles...),
		results:       append([]results.ConversionResult(nil), cp.Results...),
	}

	files, err := p.scanner.Scan(ctx, p.resolver.ContentsDir())
	if err != nil {
		return nil, err
	}
	st.total = len(files)
	summary.Discovered = len(files)

	if len(files) == 0 {
		p.logger.WithField("root", p.resolver.ContentsDir()).Warn("No images found")
		summary.Outcome = OutcomeNothingFound
		summary.Elapsed = time.Since(start)
		return summary, nil
	}

	remaining := 0
	for _, f := range files {
		if _, ok := st.processed[f]; !ok {
			remaining++
		}
	}
	summary.Remaining = remaining

	p.logger.InfoWithFields("Corpus loaded", map[string]interface{}{
		"discovered": len(files),
		"remaining":  remaining,
		"resumed":    len(cp.ProcessedFiles),
		"workers":    p.workers,
		"batch_size": p.batchSize,
	})

	if remaining == 0 {
		p.finishUpToDate(ctx, st, summary)
		summary.Elapsed = time.Since(start)
		return summary, nil
	}

	p.reporter.Started(len(files), remaining)
	tracker := ui.NewStatusTracker(len(files), len(files)-remaining)

	pool := worker.NewPool(p.workers, worker.ProcessorFunc(p.processFile), p.logger)
	pool.Start(context.WithoutCancel(ctx))
	defer pool.Stop()

	encodingBatches := 0
	for offset := 0; offset < len(files); offset += p.batchSize {
		if ctx.Err() != nil {
			p.interrupt(st, summary, tracker)
			summary.Elapsed = time.Since(start)
			return summary, nil
		}

		batch := files[offset:min(offset+p.batchSize, len(files))]
		summary.Batches++
		tracker.SetBatch(summary.Batches)

		encoded, skipped := p.runBatch(pool, batch, st, tracker)
		summary.Encoded += encoded
		summary.Skipped += skipped

		if err := p.store.Save(st.checkpoint()); err != nil {
			p.logger.WithError(err).Warn("Failed to save checkpoint")
		}

		if encoded+skipped == 0 {
			continue
		}

		snap := tracker.Snapshot()
		logger.LogBatch(p.logger, summary.Batches, encoded, snap.Processed, snap.Total)
		p.reporter.BatchDone(snap)

		if encoded > 0 {
			encodingBatches++
			if encodingBatches%p.snapshotEvery == 0 {
				p.publish(st.results)
				p.reporter.SnapshotPublished(len(st.results))
			}
		}
	}

	p.publish(st.results)

	summary.Tally = results.Summarize(st.results)
	summary.Outcome = OutcomeCompleted
	summary.Elapsed = time.Since(start)

	p.reporter.Finished(summary.Tally, tracker.Snapshot())
	p.logger.InfoWithFields("Conversion complete", map[string]interface{}{
		"results":  summary.Tally.Total,
		"success":  summary.Tally.Successful,
		"failed":   summary.Tally.Failed,
		"encoded":  summary.Encoded,
		"skipped":  summary.Skipped,
		"duration": summary.Elapsed.Round(time.Second).String(),
	})

	if err := p.store.Clear(); err != nil {
		p.logger.WithError(err).Warn("Failed to clear checkpoint")
	}

	return summary, nil
}

// runBatch handles one slice of the discovered list and appends its
// results in discovered order
func (p *Pipeline) runBatch(pool *worker.Pool, batch []string, st *state, tracker *ui.StatusTracker) (encoded, skipped int) {
	slots := make([]*results.ConversionResult, len(batch))
	var pending []string
	var pendingSlots []int

	for i, input := range batch {
		if _, ok := st.processed[input]; ok {
			continue
		}

		if p.resolver.BothExist(input) {
			if r, ok := p.builder.FromDisk(input); ok {
				slots[i] = &r
				st.markProcessed(input)
				tracker.RecordSkipped()
				skipped++
				p.logger.WithField("file", r.Original.Path).Debug("Already converted, skipping")
				p.reporter.Skipped(r.Original.Path, tracker.Snapshot())
				continue
			}
		}

		pending = append(pending, input)
		pendingSlots = append(pendingSlots, i)
	}

	if len(pending) > 0 {
		for _, res := range pool.RunBatch(pending) {
			r := res.Result
			slots[pendingSlots[res.Job.Index]] = &r
			st.markProcessed(res.Job.Input)
			tracker.RecordConverted(r.Succeeded())
			encoded++
			p.reporter.Converted(r, tracker.Snapshot())
		}
	}

	for _, r := range slots {
		if r != nil {
			st.results = append(st.results, *r)
		}
	}
	return encoded, skipped
}

// processFile encodes input into every format. It never fails; encoder
// failures are recorded per format.
func (p *Pipeline) processFile(ctx context.Context, input string) results.ConversionResult {
	out, err := p.resolver.OutputPaths(input)
	if err != nil {
		p.logger.WithError(err).WithField("input", input).Warn("Cannot derive output paths")
		return p.builder.Build(input, results.Outcome{}, results.Outcome{})
	}

	outcomes := make(map[paths.Format]results.Outcome, len(paths.Formats))
	for _, format := range paths.Formats {
		output := out.For(format)
		outcomes[format] = results.Outcome{
			Output:  output,
			Success: p.encoder.Encode(ctx, format, input, output),
		}
	}

	r := p.builder.Build(input, outcomes[paths.AVIF], outcomes[paths.WebP])
	for _, format := range paths.Formats {
		fr := r.For(format)
		logger.LogConversion(p.logger, r.Original.Path, string(format), fr.Success, fr.Size)
	}
	return r
}

// finishUpToDate handles a run where every discovered input is already in
// the checkpoint
func (p *Pipeline) finishUpToDate(ctx context.Context, st *state, summary *Summary) {
	summary.Outcome = OutcomeUpToDate

	if len(st.results) == 0 {
		p.logger.Info("All files processed but no results recorded, rebuilding from disk")
		rebuilt, err := p.publisher.RegenerateFromDisk(ctx)
		if err != nil {
			p.logger.WithError(err).Warn("Failed to rebuild results from disk")
		}
		st.results = rebuilt
	} else {
		p.logger.Info("All files already processed")
		p.publish(st.results)
	}

	summary.Tally = results.Summarize(st.results)
	if err := p.store.Clear(); err != nil {
		p.logger.WithError(err).Warn("Failed to clear checkpoint")
	}
}

// interrupt records a run stopped at a batch boundary. The checkpoint from
// the last completed batch stays on disk for the next run.
func (p *Pipeline) interrupt(st *state, summary *Summary, tracker *ui.StatusTracker) {
	summary.Outcome = OutcomeInterrupted
	summary.Tally = results.Summarize(st.results)
	p.publish(st.results)

	snap := tracker.Snapshot()
	p.logger.InfoWithFields("Run interrupted, progress saved", map[string]interface{}{
		"processed": snap.Processed,
		"total":     snap.Total,
	})
}

func (p *Pipeline) publish(list []results.ConversionResult) {
	if err := p.publisher.Publish(list); err != nil {
		p.logger.WithError(err).Warn("Failed to publish results")
	}
}
