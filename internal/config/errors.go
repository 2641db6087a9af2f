package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrInvalidTimeout is returned when the job timeout is not positive.
	// A timeout of zero or negative would fail every crawl immediately.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidDepth is returned when the crawl depth is negative.
	// Depth 0 is valid and means fetch only the seed page.
	ErrInvalidDepth = errors.New("invalid crawl depth: must be non-negative")

	// ErrInvalidCeiling is returned when the per-seed page ceiling is
	// not positive. A ceiling of zero would fetch nothing.
	ErrInvalidCeiling = errors.New("invalid crawl ceiling: must be positive")

	// ErrInvalidConcurrency is returned when the fetch or batch
	// concurrency is not positive. Zero workers would stall the run.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidMaxSites is returned when the bulk seed cap is not
	// positive.
	ErrInvalidMaxSites = errors.New("invalid max sites: must be positive")

	// ErrInvalidSinceDays is returned when the discovery recency window
	// is negative. Use 0 to disable the recency filter.
	ErrInvalidSinceDays = errors.New("invalid since-days: must be non-negative")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// Use 0 for the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrInvalidMaxAnalysisBytes is returned when the analysis input cap
	// is not positive. Sending an unbounded document is never wanted.
	ErrInvalidMaxAnalysisBytes = errors.New("invalid max analysis bytes: must be positive")
)
