package model

import "time"

// SiteResult pairs one seed's crawl document with its analysis verdict.
// Exactly one of the failure channels is used at a time: a fetch-level
// failure shows up inside Document, an analysis failure inside Verdict,
// and a slot-level failure (seed never started, batch deadline) in Err.
type SiteResult struct {
	// SeedURL is the seed this slot belongs to.
	SeedURL string `json:"seed_url"`

	// Hit is the search hit that produced the seed. Nil in single-target
	// mode.
	Hit *SearchHit `json:"hit,omitempty"`

	// Document is the aggregated crawl output. Nil when the job never
	// ran (see Err).
	Document *CrawlDocument `json:"document,omitempty"`

	// Verdict is the analysis outcome for Document. Nil when the job
	// never ran.
	Verdict *AnalysisVerdict `json:"verdict,omitempty"`

	// Err describes a slot-level failure, such as the batch deadline
	// elapsing before the seed's pipeline terminated.
	Err string `json:"error,omitempty"`
}

// Succeeded reports whether this seed produced a usable verdict.
func (r *SiteResult) Succeeded() bool {
	return r.Err == "" && r.Verdict != nil && r.Verdict.OK
}

// BatchResult is the aggregated outcome of a bulk job. Results keep the
// original seed order regardless of which seed finished first, and the
// result is valid even when every individual seed failed.
type BatchResult struct {
	// Query is the discovery query that produced the seeds. Empty when
	// the seeds were supplied directly.
	Query string `json:"query,omitempty"`

	// Results holds one slot per seed, in seed order.
	Results []*SiteResult `json:"results"`

	// Attempted is the number of seeds the batch ran.
	Attempted int `json:"attempted"`

	// Succeeded is the number of seeds that produced a usable verdict.
	Succeeded int `json:"succeeded"`

	// Failed is Attempted minus Succeeded.
	Failed int `json:"failed"`

	// StartedAt is when the batch began.
	StartedAt time.Time `json:"started_at"`

	// Elapsed is the total batch duration.
	Elapsed time.Duration `json:"elapsed"`
}

// Recount recomputes the attempted/succeeded/failed counters from the
// result slots. Call after the last slot is filled.
func (b *BatchResult) Recount() {
	b.Attempted = len(b.Results)
	b.Succeeded = 0
	for _, r := range b.Results {
		if r != nil && r.Succeeded() {
			b.Succeeded++
		}
	}
	b.Failed = b.Attempted - b.Succeeded
}
