// Package model defines the data structures that flow through the
// crawl-and-analyze pipeline: crawl jobs, fetch results, aggregated
// crawl documents, search hits, analysis verdicts, and batch results.
//
// The types in this package are plain data carriers. Remote failures are
// represented as values on these types (a FetchStatus, a failure-marked
// verdict, an error string on a batch slot) rather than as Go errors, so
// that partial results from unreliable onion services are always valid
// return values.
package model
