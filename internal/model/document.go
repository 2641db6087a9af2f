package model

import (
	"time"
)

// TerminationReason records why a crawl stopped.
// CeilingReached and DeadlineExceeded are normal terminations, not
// errors: the document built so far is still a valid result.
type TerminationReason int

const (
	// TerminationExhausted means the frontier ran out of URLs within the
	// depth limit.
	TerminationExhausted TerminationReason = iota

	// TerminationCeiling means the hard visit ceiling was hit before the
	// frontier was exhausted.
	TerminationCeiling

	// TerminationDeadline means the job deadline elapsed while pages were
	// still queued or in flight.
	TerminationDeadline
)

// String returns a human-readable name for the termination reason.
func (t TerminationReason) String() string {
	switch t {
	case TerminationExhausted:
		return "exhausted"
	case TerminationCeiling:
		return "ceiling-reached"
	case TerminationDeadline:
		return "deadline-exceeded"
	default:
		return "unknown"
	}
}

// CrawlJob describes one crawl invocation. A job is owned by a single
// engine run and is not shared between goroutines.
type CrawlJob struct {
	// SeedURL is the URL the crawl starts from.
	SeedURL string

	// MaxDepth is the number of link hops allowed from the seed.
	// 0 means only the seed page is fetched.
	MaxDepth int

	// Timeout bounds the whole job. Zero means no per-job deadline
	// beyond whatever the caller's context carries.
	Timeout time.Duration

	// Instruction is an optional analysis instruction override. When
	// empty, the analyzer falls back to its default instruction.
	Instruction string
}

// CrawlDocument is the aggregated output of one crawl job: every page
// visited under the seed, in visit order, plus the concatenated text
// used as analysis input.
//
// The engine appends pages in the order their URLs were dequeued from
// the frontier, not in fetch-completion order, so the document is
// deterministic for a given link graph.
type CrawlDocument struct {
	// SeedURL is the URL the crawl started from.
	SeedURL string `json:"seed_url"`

	// Pages holds one FetchResult per visited URL, in visit order.
	Pages []*FetchResult `json:"pages"`

	// Termination records why the crawl stopped.
	Termination TerminationReason `json:"-"`

	// TerminationText is the string form of Termination for JSON output.
	TerminationText string `json:"termination"`

	// AggregateText is the analysis input: the text of every OK page
	// concatenated in visit order and truncated to the configured
	// maximum, so shallower pages survive truncation.
	AggregateText string `json:"-"`

	// StartedAt is when the crawl began.
	StartedAt time.Time `json:"started_at"`

	// Elapsed is the total crawl duration.
	Elapsed time.Duration `json:"elapsed"`
}

// PageCount returns the number of visited URLs, successful or not.
func (d *CrawlDocument) PageCount() int {
	return len(d.Pages)
}

// SucceededCount returns the number of pages fetched successfully.
func (d *CrawlDocument) SucceededCount() int {
	n := 0
	for _, p := range d.Pages {
		if p.OK() {
			n++
		}
	}
	return n
}

// BuildAggregate concatenates the text of all OK pages in visit order,
// separating pages with a blank line, and truncates the result to
// maxBytes. Earlier (shallower) pages take priority when truncating.
// The result is stored in AggregateText and returned.
func (d *CrawlDocument) BuildAggregate(maxBytes int) string {
	var b []byte
	for _, p := range d.Pages {
		if !p.OK() || p.Text == "" {
			continue
		}
		if len(b) > 0 {
			b = append(b, '\n', '\n')
		}
		b = append(b, p.Text...)
		if maxBytes > 0 && len(b) >= maxBytes {
			b = b[:maxBytes]
			break
		}
	}
	d.AggregateText = string(b)
	return d.AggregateText
}
