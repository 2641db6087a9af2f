package crawl

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/nao1215/onionscrap/internal/frontier"
	"github.com/nao1215/onionscrap/internal/model"
)

// Default engine settings. These defaults assume Tor latency: small
// concurrency so the local daemon isn't overwhelmed, a generous page
// ceiling, and an analysis input sized for an inference prompt.
const (
	// DefaultFetchConcurrency is the per-job cap on simultaneous fetches.
	DefaultFetchConcurrency = 8

	// DefaultCeiling is the hard cap on pages visited per job.
	DefaultCeiling = 100

	// DefaultMaxAnalysisBytes caps the aggregate analysis input.
	DefaultMaxAnalysisBytes = 16 * 1024
)

// Fetcher is the single-page retrieval dependency. fetch.Fetcher
// satisfies it; tests substitute fakes with scripted latencies.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) *model.FetchResult
}

// Engine runs crawl jobs. An Engine is stateless between jobs and safe
// for concurrent use; all per-job state lives in the frontier and the
// document being built.
type Engine struct {
	// fetcher performs single-page retrievals.
	fetcher Fetcher

	// concurrency bounds simultaneous fetches within one round.
	concurrency int

	// ceiling bounds total visits per job.
	ceiling int

	// maxAnalysisBytes bounds the aggregate text handed to analysis.
	maxAnalysisBytes int

	// limiter paces request starts across the whole job. Nil disables
	// pacing (tests).
	limiter *rate.Limiter

	// sameHostOnly restricts expansion to links on the seed's host.
	sameHostOnly bool

	// logger for structured logging.
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithConcurrency sets the per-round fetch concurrency cap.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// WithCeiling sets the hard visit ceiling per job.
func WithCeiling(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.ceiling = n
		}
	}
}

// WithMaxAnalysisBytes sets the aggregate analysis input cap.
func WithMaxAnalysisBytes(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxAnalysisBytes = n
		}
	}
}

// WithRateLimit paces request starts to r requests per second.
// Zero or negative r disables pacing.
func WithRateLimit(r float64) Option {
	return func(e *Engine) {
		if r > 0 {
			e.limiter = rate.NewLimiter(rate.Limit(r), 1)
		} else {
			e.limiter = nil
		}
	}
}

// WithCrossHostExpansion allows expansion to follow links off the
// seed's host. Off by default: crawling services we weren't pointed at
// is both impolite and a good way to wander the whole dark web.
func WithCrossHostExpansion(allow bool) Option {
	return func(e *Engine) {
		e.sameHostOnly = !allow
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New creates an Engine around the given fetcher.
func New(fetcher Fetcher, opts ...Option) *Engine {
	e := &Engine{
		fetcher:          fetcher,
		concurrency:      DefaultFetchConcurrency,
		ceiling:          DefaultCeiling,
		maxAnalysisBytes: DefaultMaxAnalysisBytes,
		sameHostOnly:     true,
		// Tor circuits are slow anyway; one request per second keeps us
		// polite without being the bottleneck.
		limiter: rate.NewLimiter(rate.Limit(1), 1),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// Run executes one crawl job and returns the aggregated document.
// The document is always a valid result: when the deadline elapses
// mid-crawl, the pages completed so far are kept and the termination
// reason records the cutoff. In-flight fetches at the deadline are
// abandoned, not waited for.
func (e *Engine) Run(ctx context.Context, job model.CrawlJob) *model.CrawlDocument {
	doc := &model.CrawlDocument{
		SeedURL:   job.SeedURL,
		StartedAt: time.Now(),
	}

	if job.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, job.Timeout)
		defer cancel()
	}

	seedHost := hostOf(job.SeedURL)
	fr := frontier.New(job.SeedURL, job.MaxDepth, e.ceiling)

	e.logger.Debug("crawl started",
		"seed", job.SeedURL,
		"max_depth", job.MaxDepth,
		"ceiling", e.ceiling,
	)

	for {
		// A round never starts after the deadline.
		if ctx.Err() != nil {
			doc.Termination = model.TerminationDeadline
			break
		}

		batch := fr.Next(e.concurrency)
		if len(batch) == 0 {
			if fr.CeilingReached() {
				doc.Termination = model.TerminationCeiling
			} else {
				doc.Termination = model.TerminationExhausted
			}
			break
		}

		results := e.fetchRound(ctx, batch, job.MaxDepth)

		// Append in dequeue order and expand successful pages. A nil
		// slot means the fetch was still in flight when the deadline
		// hit; it is dropped, not waited for.
		for i, r := range results {
			if r == nil {
				continue
			}
			doc.Pages = append(doc.Pages, r)
			if r.OK() && len(r.Links) > 0 {
				links := r.Links
				if e.sameHostOnly {
					links = filterHost(seedHost, links)
				}
				fr.Expand(batch[i].DepthRemaining, links)
			}
		}
	}

	doc.BuildAggregate(e.maxAnalysisBytes)
	doc.TerminationText = doc.Termination.String()
	doc.Elapsed = time.Since(doc.StartedAt)

	e.logger.Debug("crawl finished",
		"seed", job.SeedURL,
		"pages", doc.PageCount(),
		"succeeded", doc.SucceededCount(),
		"termination", doc.Termination.String(),
		"elapsed", doc.Elapsed,
	)
	return doc
}

// fetchRound fetches one batch concurrently and returns results indexed
// by the batch's dequeue order. When the context expires before the
// round completes, the returned slice holds whatever finished; slots
// still in flight stay nil.
func (e *Engine) fetchRound(ctx context.Context, batch []frontier.Entry, maxDepth int) []*model.FetchResult {
	var mu sync.Mutex
	results := make([]*model.FetchResult, len(batch))

	g := &errgroup.Group{}
	g.SetLimit(e.concurrency)

	for i, entry := range batch {
		g.Go(func() error {
			if e.limiter != nil {
				if err := e.limiter.Wait(ctx); err != nil {
					return nil // deadline hit while pacing; slot stays nil
				}
			}

			r := e.fetcher.Fetch(ctx, entry.URL)
			r.Depth = maxDepth - entry.DepthRemaining

			mu.Lock()
			results[i] = r
			mu.Unlock()
			return nil
		})
	}

	done := make(chan struct{})
	go func() {
		_ = g.Wait() //nolint:errcheck // workers never return errors
		close(done)
	}()

	select {
	case <-done:
		return results
	case <-ctx.Done():
		// Abandon stragglers: snapshot what completed under the lock.
		// Late writers still hold the mutex discipline, so the snapshot
		// is consistent even while they finish in the background.
		mu.Lock()
		snapshot := make([]*model.FetchResult, len(results))
		copy(snapshot, results)
		mu.Unlock()
		return snapshot
	}
}

// hostOf extracts the hostname from a URL, empty on parse failure.
func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// filterHost keeps only links whose host matches the seed host.
func filterHost(host string, links []string) []string {
	if host == "" {
		return links
	}
	kept := make([]string, 0, len(links))
	for _, link := range links {
		if hostOf(link) == host {
			kept = append(kept, link)
		}
	}
	return kept
}
