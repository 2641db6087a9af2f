package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nao1215/onionscrap/internal/model"
)

// fakeCrawler returns a canned aggregate text per seed. Seeds listed
// in latency block that long, or until the context ends.
type fakeCrawler struct {
	mu      sync.Mutex
	texts   map[string]string
	latency map[string]time.Duration
	ran     []string
}

func (f *fakeCrawler) Run(ctx context.Context, job model.CrawlJob) *model.CrawlDocument {
	f.mu.Lock()
	f.ran = append(f.ran, job.SeedURL)
	delay := f.latency[job.SeedURL]
	text := f.texts[job.SeedURL]
	f.mu.Unlock()

	doc := &model.CrawlDocument{SeedURL: job.SeedURL, Termination: model.TerminationExhausted}
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			doc.Termination = model.TerminationDeadline
			return doc
		}
	}
	doc.AggregateText = text
	return doc
}

// fakeAnalyzer succeeds unless the seed is listed in fail.
type fakeAnalyzer struct {
	mu       sync.Mutex
	fail     map[string]string
	analyzed []string
}

func (f *fakeAnalyzer) Analyze(_ context.Context, doc *model.CrawlDocument, instruction string) *model.AnalysisVerdict {
	f.mu.Lock()
	f.analyzed = append(f.analyzed, doc.SeedURL)
	reason, failed := f.fail[doc.SeedURL]
	f.mu.Unlock()

	if failed {
		return model.FailedVerdict(doc.SeedURL, reason)
	}
	return &model.AnalysisVerdict{
		SeedURL:  doc.SeedURL,
		OK:       true,
		Analysis: "analysis of " + doc.SeedURL + " per " + instruction,
	}
}

// fakeSearcher returns canned hits or a canned error.
type fakeSearcher struct {
	hits []model.SearchHit
	err  error
}

func (f *fakeSearcher) Search(_ context.Context, _ string, _ int) ([]model.SearchHit, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.hits, nil
}

func seedHits(urls ...string) []model.SearchHit {
	hits := make([]model.SearchHit, 0, len(urls))
	for _, u := range urls {
		hits = append(hits, model.SearchHit{URL: u, Title: "site " + u})
	}
	return hits
}

func TestPipelineRunSingle(t *testing.T) {
	t.Parallel()

	t.Run("crawl then analyze", func(t *testing.T) {
		t.Parallel()

		crawler := &fakeCrawler{texts: map[string]string{"http://a.onion": "front page text"}}
		analyzer := &fakeAnalyzer{}
		p := New(crawler, analyzer)

		result := p.RunSingle(context.Background(), model.CrawlJob{SeedURL: "http://a.onion", MaxDepth: 1})
		if !result.Succeeded() {
			t.Fatalf("RunSingle() did not succeed: verdict=%+v err=%q", result.Verdict, result.Err)
		}
		if result.Document == nil || result.Document.AggregateText != "front page text" {
			t.Errorf("Document = %+v, want the crawled content", result.Document)
		}
		if len(analyzer.analyzed) != 1 {
			t.Errorf("analyzer ran %d times, want 1", len(analyzer.analyzed))
		}
	})

	t.Run("empty crawl skips analysis", func(t *testing.T) {
		t.Parallel()

		crawler := &fakeCrawler{texts: map[string]string{}}
		analyzer := &fakeAnalyzer{}
		p := New(crawler, analyzer)

		result := p.RunSingle(context.Background(), model.CrawlJob{SeedURL: "http://dead.onion"})
		if result.Succeeded() {
			t.Fatal("RunSingle() should not succeed when the crawl retrieved nothing")
		}
		if result.Verdict == nil || result.Verdict.OK {
			t.Fatalf("Verdict = %+v, want a failure-marked verdict", result.Verdict)
		}
		if !strings.Contains(result.Verdict.FailureReason, "no content") {
			t.Errorf("FailureReason = %q, want mention of missing content", result.Verdict.FailureReason)
		}
		if len(analyzer.analyzed) != 0 {
			t.Errorf("analyzer ran %d times, want 0", len(analyzer.analyzed))
		}
	})

	t.Run("analysis failure stays in the verdict", func(t *testing.T) {
		t.Parallel()

		crawler := &fakeCrawler{texts: map[string]string{"http://a.onion": "text"}}
		analyzer := &fakeAnalyzer{fail: map[string]string{"http://a.onion": "rate limited"}}
		p := New(crawler, analyzer)

		result := p.RunSingle(context.Background(), model.CrawlJob{SeedURL: "http://a.onion"})
		if result.Succeeded() {
			t.Fatal("RunSingle() should not succeed when analysis fails")
		}
		if result.Err != "" {
			t.Errorf("Err = %q, want analysis failure recorded on the verdict instead", result.Err)
		}
		if result.Verdict.FailureReason != "rate limited" {
			t.Errorf("FailureReason = %q, want rate limited", result.Verdict.FailureReason)
		}
	})
}

func TestPipelineRunBulk(t *testing.T) {
	t.Parallel()

	t.Run("seed order and hit attachment", func(t *testing.T) {
		t.Parallel()

		seeds := []string{"http://a.onion", "http://b.onion", "http://c.onion"}
		crawler := &fakeCrawler{
			texts: map[string]string{
				"http://a.onion": "alpha",
				"http://b.onion": "beta",
				"http://c.onion": "gamma",
			},
			// Reversed latencies so completion order differs from seed order.
			latency: map[string]time.Duration{
				"http://a.onion": 60 * time.Millisecond,
				"http://b.onion": 30 * time.Millisecond,
			},
		}
		p := New(crawler, &fakeAnalyzer{}, WithSearcher(&fakeSearcher{hits: seedHits(seeds...)}))

		batch, err := p.RunBulk(context.Background(), BulkRequest{Query: "market"})
		if err != nil {
			t.Fatalf("RunBulk() error = %v", err)
		}
		if len(batch.Results) != 3 {
			t.Fatalf("Results = %d slots, want 3", len(batch.Results))
		}
		for i, want := range seeds {
			got := batch.Results[i]
			if got.SeedURL != want {
				t.Errorf("Results[%d].SeedURL = %q, want %q", i, got.SeedURL, want)
			}
			if got.Hit == nil || got.Hit.URL != want {
				t.Errorf("Results[%d].Hit = %+v, want the originating hit", i, got.Hit)
			}
		}
		if batch.Attempted != 3 || batch.Succeeded != 3 || batch.Failed != 0 {
			t.Errorf("counts = %d/%d/%d, want 3/3/0", batch.Attempted, batch.Succeeded, batch.Failed)
		}
	})

	t.Run("max sites caps the seed list", func(t *testing.T) {
		t.Parallel()

		crawler := &fakeCrawler{texts: map[string]string{
			"http://a.onion": "a", "http://b.onion": "b",
		}}
		searcher := &fakeSearcher{hits: seedHits("http://a.onion", "http://b.onion", "http://c.onion", "http://d.onion")}
		p := New(crawler, &fakeAnalyzer{}, WithSearcher(searcher))

		batch, err := p.RunBulk(context.Background(), BulkRequest{Query: "q", MaxSites: 2})
		if err != nil {
			t.Fatalf("RunBulk() error = %v", err)
		}
		if batch.Attempted != 2 {
			t.Errorf("Attempted = %d, want 2", batch.Attempted)
		}
		if len(crawler.ran) != 2 {
			t.Errorf("crawler ran %d seeds, want 2", len(crawler.ran))
		}
	})

	t.Run("one failing seed does not affect siblings", func(t *testing.T) {
		t.Parallel()

		crawler := &fakeCrawler{texts: map[string]string{
			"http://a.onion": "a", "http://b.onion": "b", "http://c.onion": "c",
		}}
		analyzer := &fakeAnalyzer{fail: map[string]string{"http://b.onion": "model refused"}}
		p := New(crawler, analyzer, WithSearcher(&fakeSearcher{hits: seedHits("http://a.onion", "http://b.onion", "http://c.onion")}))

		batch, err := p.RunBulk(context.Background(), BulkRequest{Query: "q"})
		if err != nil {
			t.Fatalf("RunBulk() error = %v", err)
		}
		if batch.Succeeded != 2 || batch.Failed != 1 {
			t.Errorf("counts = %d succeeded / %d failed, want 2/1", batch.Succeeded, batch.Failed)
		}
		if batch.Results[1].Succeeded() {
			t.Error("Results[1] should carry the analysis failure")
		}
		if !batch.Results[0].Succeeded() || !batch.Results[2].Succeeded() {
			t.Error("siblings of the failing seed should still succeed")
		}
	})

	t.Run("discovery failure aborts the batch", func(t *testing.T) {
		t.Parallel()

		searchErr := errors.New("ahmia unreachable")
		p := New(&fakeCrawler{}, &fakeAnalyzer{}, WithSearcher(&fakeSearcher{err: searchErr}))

		if _, err := p.RunBulk(context.Background(), BulkRequest{Query: "q"}); !errors.Is(err, searchErr) {
			t.Errorf("RunBulk() error = %v, want wrapped %v", err, searchErr)
		}
	})

	t.Run("missing searcher", func(t *testing.T) {
		t.Parallel()

		p := New(&fakeCrawler{}, &fakeAnalyzer{})
		if _, err := p.RunBulk(context.Background(), BulkRequest{Query: "q"}); !errors.Is(err, ErrNoSearcher) {
			t.Errorf("RunBulk() error = %v, want ErrNoSearcher", err)
		}
	})

	t.Run("no hits yields an empty batch", func(t *testing.T) {
		t.Parallel()

		p := New(&fakeCrawler{}, &fakeAnalyzer{}, WithSearcher(&fakeSearcher{}))
		batch, err := p.RunBulk(context.Background(), BulkRequest{Query: "obscure"})
		if err != nil {
			t.Fatalf("RunBulk() error = %v", err)
		}
		if batch.Attempted != 0 || len(batch.Results) != 0 {
			t.Errorf("batch = %+v, want zero slots", batch)
		}
	})

	t.Run("batch deadline marks unfinished seeds", func(t *testing.T) {
		t.Parallel()

		seeds := seedHits("http://slow1.onion", "http://slow2.onion", "http://slow3.onion")
		crawler := &fakeCrawler{
			texts: map[string]string{},
			latency: map[string]time.Duration{
				"http://slow1.onion": 500 * time.Millisecond,
				"http://slow2.onion": 500 * time.Millisecond,
				"http://slow3.onion": 500 * time.Millisecond,
			},
		}
		p := New(crawler, &fakeAnalyzer{},
			WithSearcher(&fakeSearcher{hits: seeds}),
			WithBatchConcurrency(1),
			WithBatchTimeout(50*time.Millisecond),
		)

		start := time.Now()
		batch, err := p.RunBulk(context.Background(), BulkRequest{Query: "q"})
		if err != nil {
			t.Fatalf("RunBulk() error = %v", err)
		}
		if elapsed := time.Since(start); elapsed > 300*time.Millisecond {
			t.Errorf("RunBulk() took %v, should return shortly after the 50ms deadline", elapsed)
		}
		if len(batch.Results) != 3 {
			t.Fatalf("Results = %d slots, want 3", len(batch.Results))
		}
		for i, r := range batch.Results {
			if r == nil {
				t.Fatalf("Results[%d] is nil, every slot must be filled", i)
			}
			if r.Succeeded() {
				t.Errorf("Results[%d] succeeded, expected deadline failure", i)
			}
		}
		// With concurrency 1 the last seed never starts and must carry
		// a slot-level error.
		if last := batch.Results[2]; last.Err == "" {
			t.Errorf("Results[2] = %+v, want a slot-level deadline error", last)
		}
		if batch.Succeeded != 0 || batch.Failed != 3 {
			t.Errorf("counts = %d/%d, want 0 succeeded / 3 failed", batch.Succeeded, batch.Failed)
		}
	})
}
