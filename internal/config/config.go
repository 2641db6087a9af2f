package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These values are chosen based on typical Tor network characteristics.
const (
	// DefaultTorProxyAddress is the standard Tor SOCKS5 proxy address.
	// Port 9050 is the default for the Tor daemon's SOCKS port.
	// We use 127.0.0.1 instead of localhost to avoid DNS resolution overhead
	// and potential issues with IPv6 resolution on some systems.
	DefaultTorProxyAddress = "127.0.0.1:9050"

	// DefaultJobTimeout bounds one seed's whole crawl. Tor connections
	// are inherently slower than clearnet connections due to the
	// multiple relay hops, so a multi-page crawl needs minutes, not
	// seconds.
	DefaultJobTimeout = 180 * time.Second

	// DefaultBatchTimeout bounds a whole bulk run. Generous because a
	// batch multiplies per-seed crawl time by the seed count over the
	// batch concurrency.
	DefaultBatchTimeout = 30 * time.Minute

	// DefaultCrawlDepth of 1 fetches the seed page plus the pages it
	// links to, which is enough context for content triage without
	// turning every job into a full-site mirror.
	DefaultCrawlDepth = 1

	// DefaultCrawlCeiling caps pages per seed regardless of depth.
	// This prevents runaway crawling on large or infinitely-generating
	// sites.
	DefaultCrawlCeiling = 100

	// DefaultFetchConcurrency is the number of pages fetched at once
	// within one crawl. Higher values may overwhelm the local Tor
	// daemon's circuit pool.
	DefaultFetchConcurrency = 8

	// DefaultBatchConcurrency is the number of seeds processed at once
	// in a bulk run. Each seed already fans out internally.
	DefaultBatchConcurrency = 3

	// DefaultMaxSites caps how many search hits become seeds in a bulk
	// run.
	DefaultMaxSites = 5

	// DefaultMaxAnalysisBytes bounds the aggregate text sent to the
	// inference endpoint, keeping token usage predictable.
	DefaultMaxAnalysisBytes = 16 * 1024

	// DefaultCrawlRate is requests per second per crawl. 1 req/s is a
	// politeness setting to avoid overwhelming hidden services.
	DefaultCrawlRate = 1.0

	// DefaultSearchBaseURL is the Ahmia search engine root. Ahmia
	// indexes hidden services but is itself reachable over the
	// clearnet.
	DefaultSearchBaseURL = "https://ahmia.fi"

	// DefaultInferenceBaseURL is the OpenRouter API root.
	DefaultInferenceBaseURL = "https://openrouter.ai/api/v1"

	// DefaultModel is a free-tier model adequate for content triage.
	DefaultModel = "deepseek/deepseek-r1:free"

	// APIKeyEnv is the environment variable holding the inference API
	// key.
	APIKeyEnv = "OPENROUTER_API_KEY"

	// AppName is the application name used for XDG directory paths.
	AppName = "onionscrap"

	// DefaultMaxBodySize limits the maximum response body size to read.
	// 5MB is sufficient for most HTML pages while preventing memory
	// exhaustion from unexpectedly large responses.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultTorStartupTimeout is the maximum time to wait for the embedded
	// Tor daemon to bootstrap. 3 minutes is typically sufficient for most
	// network conditions, but may need to be increased for slow connections.
	DefaultTorStartupTimeout = 3 * time.Minute
)

// Config holds all configuration options for onionscrap.
// This struct is designed to be populated from CLI flags and passed through
// the application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., CrawlConfig, SearchConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
type Config struct {
	// TorProxyAddress is the address of the Tor SOCKS5 proxy in
	// "host:port" format. All hidden-service traffic goes through it;
	// search and inference traffic does not.
	TorProxyAddress string

	// JobTimeout bounds one seed's whole crawl, not individual
	// requests. Tor's latency means this should be generous.
	JobTimeout time.Duration

	// BatchTimeout bounds a whole bulk run. Seeds unfinished at the
	// deadline are reported as timed out.
	BatchTimeout time.Duration

	// CrawlDepth is the number of link hops followed from each seed.
	// Depth 0 means only fetch the seed page.
	CrawlDepth int

	// CrawlCeiling is the maximum pages fetched per seed regardless of
	// depth. Zero means use the default.
	CrawlCeiling int

	// FetchConcurrency is the number of pages fetched at once within
	// one crawl.
	FetchConcurrency int

	// BatchConcurrency is the number of seeds processed at once in a
	// bulk run.
	BatchConcurrency int

	// MaxSites caps how many search hits become seeds in a bulk run.
	MaxSites int

	// SinceDays restricts seed discovery to services seen within this
	// many days. Zero disables the recency filter.
	SinceDays int

	// MaxAnalysisBytes bounds the aggregate text sent for analysis.
	MaxAnalysisBytes int

	// CrawlRate is requests per second per crawl. Zero or negative
	// disables rate limiting.
	CrawlRate float64

	// SearchBaseURL is the search engine root used for seed discovery.
	SearchBaseURL string

	// InferenceBaseURL is the inference API root.
	InferenceBaseURL string

	// Model is the inference model identifier.
	Model string

	// APIKey authenticates inference requests. Loaded from the
	// OPENROUTER_API_KEY environment variable by NewConfig; never
	// logged (see internal/log.SecureHandler).
	APIKey string

	// Instruction is the analysis instruction sent with each document.
	// Empty means the analyzer's built-in default.
	Instruction string

	// UserAgent is the User-Agent header sent with hidden-service
	// requests. Defaults to a Tor-Browser-like string so crawler
	// traffic blends in with regular visitors.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	// Responses larger than this are truncated. Zero means the default.
	MaxBodySize int64

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .onionscrap in the current
	// directory, the XDG config directory, and the home directory.
	ConfigFilePath string

	// JSONReport enables JSON report output instead of the
	// human-readable format. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output instead of the
	// human-readable format. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	ReportFile string

	// UseExternalTor disables the embedded Tor daemon and uses an
	// external proxy at TorProxyAddress. When false (default), an
	// embedded Tor daemon is started automatically.
	//
	// Note: The embedded Tor daemon takes 1-3 minutes to bootstrap and
	// connect to the Tor network on first start.
	UseExternalTor bool

	// TorStartupTimeout is the maximum time to wait for the embedded
	// Tor daemon to start and bootstrap. Only used when UseExternalTor
	// is false.
	TorStartupTimeout time.Duration
}

// NewConfig creates a new Config with default values and the API key
// from the environment. All fields are set to safe, sensible defaults
// that work for most use cases; users can override specific values
// after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeouts,
// concurrency caps). This also serves as documentation of what the
// defaults are.
func NewConfig() *Config {
	return &Config{
		TorProxyAddress:   DefaultTorProxyAddress,
		JobTimeout:        DefaultJobTimeout,
		BatchTimeout:      DefaultBatchTimeout,
		CrawlDepth:        DefaultCrawlDepth,
		CrawlCeiling:      DefaultCrawlCeiling,
		FetchConcurrency:  DefaultFetchConcurrency,
		BatchConcurrency:  DefaultBatchConcurrency,
		MaxSites:          DefaultMaxSites,
		MaxAnalysisBytes:  DefaultMaxAnalysisBytes,
		CrawlRate:         DefaultCrawlRate,
		SearchBaseURL:     DefaultSearchBaseURL,
		InferenceBaseURL:  DefaultInferenceBaseURL,
		Model:             DefaultModel,
		APIKey:            os.Getenv(APIKeyEnv),
		MaxBodySize:       DefaultMaxBodySize,
		TorStartupTimeout: DefaultTorStartupTimeout,
	}
}

// XDGDataDir returns the XDG data directory for onionscrap.
// On Linux: ~/.local/share/onionscrap
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for onionscrap.
// On Linux: ~/.config/onionscrap
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any network activity.
//
// We chose to return the first error found rather than collecting all
// errors because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	if c.JobTimeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.CrawlDepth < 0 {
		return ErrInvalidDepth
	}

	if c.CrawlCeiling <= 0 {
		return ErrInvalidCeiling
	}

	if c.FetchConcurrency <= 0 || c.BatchConcurrency <= 0 {
		return ErrInvalidConcurrency
	}

	if c.MaxSites <= 0 {
		return ErrInvalidMaxSites
	}

	if c.SinceDays < 0 {
		return ErrInvalidSinceDays
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	if c.MaxAnalysisBytes <= 0 {
		return ErrInvalidMaxAnalysisBytes
	}

	return nil
}
