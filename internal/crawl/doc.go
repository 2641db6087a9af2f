// Package crawl drives the fetcher against a per-job frontier and
// assembles one CrawlDocument per seed URL.
//
// The engine works in rounds: it pulls a batch from the frontier,
// fetches the batch concurrently under a bounded limit, feeds the
// discovered links back into the frontier, and repeats until the
// frontier is exhausted, the visit ceiling is hit, or the job deadline
// elapses. Page order in the resulting document is always dequeue
// order, never completion order, so documents are deterministic for a
// given link graph.
package crawl
