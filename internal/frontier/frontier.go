package frontier

import (
	"sync"
)

// Entry is one URL awaiting a visit, with its remaining depth budget.
// DepthRemaining strictly decreases along every expansion edge; an
// entry with a negative budget is never created.
type Entry struct {
	// URL is the URL exactly as it was discovered. Fetches use this
	// form; deduplication uses Normalize(URL).
	URL string

	// DepthRemaining is how many more link hops may be expanded from
	// this page. 0 means the page is fetched but its links are not
	// followed.
	DepthRemaining int
}

// Frontier holds the visit queue for one crawl job.
//
// Design decision: Deduplication happens at enqueue time (a URL is
// marked seen the moment it enters the queue) rather than at dequeue
// time. This satisfies the "never enqueued twice" invariant directly
// and bounds queue memory on cyclic link graphs, since a cycle
// collapses to a no-op on its second discovery.
type Frontier struct {
	mu         sync.Mutex
	queue      []Entry
	seen       map[string]bool
	ceiling    int
	visited    int
	ceilingHit bool
}

// New creates a Frontier seeded with one URL at the given depth budget.
// ceiling caps the total number of entries Next will ever yield for
// this job; a non-positive ceiling means no cap.
func New(seed string, maxDepth, ceiling int) *Frontier {
	if maxDepth < 0 {
		maxDepth = 0
	}
	f := &Frontier{
		seen:    make(map[string]bool),
		ceiling: ceiling,
	}
	f.seen[Normalize(seed)] = true
	f.queue = append(f.queue, Entry{URL: seed, DepthRemaining: maxDepth})
	return f
}

// Next pops up to n entries from the queue. Entries count against the
// visit ceiling as they are pulled, atomically, so concurrent pulls can
// never return the same URL twice nor overshoot the ceiling. Once the
// ceiling is hit, Next yields nothing further.
func (f *Frontier) Next(n int) []Entry {
	f.mu.Lock()
	defer f.mu.Unlock()

	if n <= 0 || f.ceilingHit {
		return nil
	}

	var batch []Entry
	for len(batch) < n && len(f.queue) > 0 {
		if f.ceiling > 0 && f.visited >= f.ceiling {
			f.ceilingHit = true
			break
		}
		batch = append(batch, f.queue[0])
		f.queue = f.queue[1:]
		f.visited++
	}
	return batch
}

// Expand inserts each not-yet-seen link at depthRemaining-1. Links are
// dropped when the decremented budget would go negative, so a page
// pulled with DepthRemaining 0 expands to nothing. Returns the number
// of links actually queued.
//
// Expand is safe to call concurrently from multiple completed fetches.
func (f *Frontier) Expand(depthRemaining int, links []string) int {
	next := depthRemaining - 1
	if next < 0 {
		return 0
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	queued := 0
	for _, link := range links {
		key := Normalize(link)
		if f.seen[key] {
			continue
		}
		f.seen[key] = true
		f.queue = append(f.queue, Entry{URL: link, DepthRemaining: next})
		queued++
	}
	return queued
}

// CeilingReached reports whether the visit ceiling stopped the crawl.
func (f *Frontier) CeilingReached() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ceilingHit
}

// Visited returns how many entries Next has yielded so far.
func (f *Frontier) Visited() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.visited
}

// Pending returns the number of queued, not-yet-visited entries.
func (f *Frontier) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}
