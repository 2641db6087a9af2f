// Package pipeline orchestrates the crawl-then-analyze flow for single
// targets and for bulk search-driven batches.
//
// A single run crawls one seed and hands the aggregate text to the
// analyzer. A bulk run discovers seeds through the search adapter and
// fans single runs out over a bounded worker group, one result slot
// per seed in discovery order.
//
// Design decision: individual seed failures never abort the batch.
// Fetch failures live inside the crawl document, analysis failures
// inside the verdict, and seeds the batch deadline cut off get a
// slot-level error. The only error RunBulk itself returns is a failure
// to discover seeds at all, because with no seeds there is nothing to
// report.
package pipeline
