package model

// FetchStatus classifies the outcome of a single page retrieval.
//
// Design decision: We use a status enum on the result rather than
// returning Go errors from the fetcher because:
//  1. A failed fetch is an expected outcome on the Tor network, not an
//     exceptional condition
//  2. The crawl engine records failed pages alongside successful ones
//  3. Callers can switch on the failure kind without unwrapping errors
type FetchStatus int

const (
	// FetchStatusOK indicates a response was received from the target.
	// Any HTTP status below 400 counts as OK; the page content may still
	// be empty or uninteresting.
	FetchStatusOK FetchStatus = iota

	// FetchStatusInput indicates the URL was rejected before any I/O:
	// malformed syntax, a disallowed scheme, or an invalid onion host.
	FetchStatusInput

	// FetchStatusHTTPError indicates the server responded with a 4xx or
	// 5xx status code.
	FetchStatusHTTPError

	// FetchStatusNetworkError indicates a transport-level failure:
	// proxy unreachable, connection refused, circuit failure, etc.
	FetchStatusNetworkError

	// FetchStatusTimeout indicates the request deadline elapsed before
	// a response was received.
	FetchStatusTimeout
)

// String returns a human-readable name for the fetch status.
func (s FetchStatus) String() string {
	switch s {
	case FetchStatusOK:
		return "ok"
	case FetchStatusInput:
		return "input-error"
	case FetchStatusHTTPError:
		return "http-error"
	case FetchStatusNetworkError:
		return "network-error"
	case FetchStatusTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// FetchResult holds everything retrieved for one URL.
// One FetchResult is produced per frontier entry, whether the fetch
// succeeded or not.
type FetchResult struct {
	// URL is the URL as it was dequeued from the frontier.
	URL string `json:"url"`

	// Status classifies the fetch outcome.
	Status FetchStatus `json:"-"`

	// StatusText is the string form of Status, kept for JSON output.
	StatusText string `json:"status"`

	// StatusCode is the HTTP status code, or 0 when no response was received.
	StatusCode int `json:"status_code,omitempty"`

	// ContentType is the MIME type from the Content-Type header.
	ContentType string `json:"content_type,omitempty"`

	// Title is the page title for HTML content.
	Title string `json:"title,omitempty"`

	// Body is the raw response body, size-capped by the fetcher.
	// Empty when the fetch failed.
	Body []byte `json:"-"`

	// Text is the rendered text content of the page. This is what feeds
	// the aggregate analysis input, so it excludes markup, scripts, and
	// styles.
	Text string `json:"-"`

	// Links are the outbound links discovered on the page, in document
	// order, resolved to absolute URLs. Empty unless Status is OK and the
	// content was HTML.
	Links []string `json:"links,omitempty"`

	// Depth is the number of link hops from the seed at which this URL
	// was discovered. The seed itself has depth 0.
	Depth int `json:"depth"`

	// Failure carries detail about a failed fetch. Empty on success.
	Failure string `json:"failure,omitempty"`
}

// OK reports whether this fetch produced usable content.
func (r *FetchResult) OK() bool {
	return r.Status == FetchStatusOK
}
