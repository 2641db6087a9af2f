package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nao1215/onionscrap/internal/model"
	"golang.org/x/sync/errgroup"
)

// DefaultBatchConcurrency is the number of seeds processed at once in
// a bulk run. Each seed already fans its page fetches out internally,
// so this stays small to keep total circuit load reasonable.
const DefaultBatchConcurrency = 3

// ErrNoSearcher is returned by RunBulk when the pipeline was built
// without a search adapter.
var ErrNoSearcher = errors.New("pipeline: no searcher configured")

// Crawler runs one crawl job to completion. The returned document is
// never nil; fetch failures are recorded inside it.
type Crawler interface {
	Run(ctx context.Context, job model.CrawlJob) *model.CrawlDocument
}

// Analyzer produces a verdict for one crawl document. The verdict is
// never nil; failures are marked on it.
type Analyzer interface {
	Analyze(ctx context.Context, doc *model.CrawlDocument, instruction string) *model.AnalysisVerdict
}

// Searcher discovers seed URLs for bulk runs.
type Searcher interface {
	Search(ctx context.Context, query string, sinceDays int) ([]model.SearchHit, error)
}

// Pipeline wires the crawl engine, the analysis adapter, and the
// search adapter into single-target and bulk operations.
type Pipeline struct {
	// crawler produces a crawl document per seed.
	crawler Crawler

	// analyzer turns a crawl document into a verdict.
	analyzer Analyzer

	// searcher discovers seeds for bulk runs. Nil when only RunSingle
	// is used.
	searcher Searcher

	// batchConcurrency caps how many seeds run at once in a bulk run.
	batchConcurrency int

	// batchTimeout bounds a whole bulk run. Zero means no batch-level
	// deadline beyond the caller's context.
	batchTimeout time.Duration

	// logger is used for structured logging during orchestration.
	logger *slog.Logger
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithSearcher sets the search adapter used for seed discovery.
func WithSearcher(s Searcher) Option {
	return func(p *Pipeline) {
		p.searcher = s
	}
}

// WithBatchConcurrency caps how many seeds run at once in a bulk run.
func WithBatchConcurrency(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.batchConcurrency = n
		}
	}
}

// WithBatchTimeout bounds a whole bulk run. Seeds still unfinished at
// the deadline are recorded as timed-out slots.
func WithBatchTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		p.batchTimeout = d
	}
}

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a Pipeline over the given crawler and analyzer.
func New(crawler Crawler, analyzer Analyzer, opts ...Option) *Pipeline {
	p := &Pipeline{
		crawler:          crawler,
		analyzer:         analyzer,
		batchConcurrency: DefaultBatchConcurrency,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// RunSingle crawls one seed and analyzes the aggregate text. The
// result is never nil and carries both stages' outcomes; a crawl that
// retrieved nothing yields a failure-marked verdict without an
// inference call.
func (p *Pipeline) RunSingle(ctx context.Context, job model.CrawlJob) *model.SiteResult {
	p.logger.Info("processing seed",
		"seed", job.SeedURL,
		"depth", job.MaxDepth,
	)

	doc := p.crawler.Run(ctx, job)

	result := &model.SiteResult{
		SeedURL:  job.SeedURL,
		Document: doc,
	}

	if doc.AggregateText == "" {
		p.logger.Warn("crawl retrieved no content",
			"seed", job.SeedURL,
			"termination", doc.TerminationText,
		)
		result.Verdict = model.FailedVerdict(job.SeedURL, "no content retrieved")
		return result
	}

	result.Verdict = p.analyzer.Analyze(ctx, doc, job.Instruction)

	p.logger.Info("seed processed",
		"seed", job.SeedURL,
		"pages", doc.PageCount(),
		"analyzed", result.Verdict.OK,
	)
	return result
}

// BulkRequest describes one bulk run: a discovery query plus the
// per-seed crawl parameters.
type BulkRequest struct {
	// Query is the search query that discovers seeds.
	Query string

	// MaxSites caps how many hits become seeds. Zero means all hits.
	MaxSites int

	// SinceDays restricts discovery to recently seen services.
	// Zero disables the recency filter.
	SinceDays int

	// Depth is the per-seed crawl depth.
	Depth int

	// JobTimeout bounds each seed's crawl. Zero means no per-seed
	// deadline.
	JobTimeout time.Duration

	// Instruction is an optional analysis instruction override applied
	// to every seed.
	Instruction string
}

// RunBulk discovers seeds for the query and runs the single-seed
// pipeline over each, at most batchConcurrency at a time. Results keep
// discovery order. Seeds that never started before the batch deadline
// become timed-out slots; RunBulk itself only fails when discovery
// fails.
func (p *Pipeline) RunBulk(ctx context.Context, req BulkRequest) (*model.BatchResult, error) {
	if p.searcher == nil {
		return nil, ErrNoSearcher
	}

	started := time.Now()

	hits, err := p.searcher.Search(ctx, req.Query, req.SinceDays)
	if err != nil {
		return nil, fmt.Errorf("seed discovery for %q: %w", req.Query, err)
	}
	if req.MaxSites > 0 && len(hits) > req.MaxSites {
		hits = hits[:req.MaxSites]
	}

	p.logger.Info("starting bulk run",
		"query", req.Query,
		"seeds", len(hits),
		"concurrency", p.batchConcurrency,
	)

	batch := &model.BatchResult{
		Query:     req.Query,
		Results:   make([]*model.SiteResult, len(hits)),
		StartedAt: started,
	}

	runCtx := ctx
	if p.batchTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, p.batchTimeout)
		defer cancel()
	}

	// Workers respect runCtx, so Wait returns promptly after the batch
	// deadline: in-flight crawls terminate with a deadline reason and
	// queued seeds skip themselves.
	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(p.batchConcurrency)

	for i, hit := range hits {
		g.Go(func() error {
			if runCtx.Err() != nil {
				return nil
			}

			job := model.CrawlJob{
				SeedURL:     hit.URL,
				MaxDepth:    req.Depth,
				Timeout:     req.JobTimeout,
				Instruction: req.Instruction,
			}
			result := p.RunSingle(runCtx, job)
			result.Hit = &hit

			mu.Lock()
			batch.Results[i] = result
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // Workers never return errors

	// Seeds skipped at the deadline left their slots empty.
	for i, r := range batch.Results {
		if r == nil {
			batch.Results[i] = &model.SiteResult{
				SeedURL: hits[i].URL,
				Hit:     &hits[i],
				Err:     "batch deadline elapsed before this seed started",
			}
		}
	}

	batch.Recount()
	batch.Elapsed = time.Since(started)

	p.logger.Info("bulk run complete",
		"query", req.Query,
		"attempted", batch.Attempted,
		"succeeded", batch.Succeeded,
		"failed", batch.Failed,
		"elapsed", batch.Elapsed,
	)
	return batch, nil
}
