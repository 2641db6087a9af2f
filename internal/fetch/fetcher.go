package fetch

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/nao1215/onionscrap/internal/model"
)

// Default fetcher settings.
const (
	// DefaultMaxBodySize caps response bodies at 5MB. Large enough for
	// any HTML page worth analyzing, small enough that a hostile service
	// cannot exhaust memory.
	DefaultMaxBodySize = 5 * 1024 * 1024

	// DefaultUserAgent mimics Tor Browser, which is what onion services
	// expect to see. A distinctive agent string invites blocking.
	DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/115.0"
)

// Fetcher retrieves single pages through a pre-configured HTTP client.
//
// Design decision: We require an external client rather than building
// one because Tor proxy configuration belongs to the tor package, and
// tests can inject a plain client pointed at httptest servers.
type Fetcher struct {
	// client is the HTTP client, already routed through the SOCKS proxy.
	client *http.Client

	// userAgent is sent with every request.
	userAgent string

	// maxBodySize limits how much of a response body is read.
	maxBodySize int64
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithMaxBodySize sets the maximum response body size in bytes.
func WithMaxBodySize(size int64) Option {
	return func(f *Fetcher) {
		if size > 0 {
			f.maxBodySize = size
		}
	}
}

// New creates a Fetcher using the given HTTP client.
func New(client *http.Client, opts ...Option) *Fetcher {
	f := &Fetcher{
		client:      client,
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch retrieves one URL and returns the outcome as a value.
// Exactly one request is issued; there are no retries at this layer.
// The context carries the deadline; when it elapses mid-request the
// result is marked with FetchStatusTimeout.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) *model.FetchResult {
	result := &model.FetchResult{URL: rawURL}

	if err := ValidateTargetURL(rawURL); err != nil {
		result.Status = model.FetchStatusInput
		result.StatusText = result.Status.String()
		result.Failure = err.Error()
		return result
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		result.Status = model.FetchStatusInput
		result.StatusText = result.Status.String()
		result.Failure = err.Error()
		return result
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		result.Status = classifyTransportError(err)
		result.StatusText = result.Status.String()
		result.Failure = err.Error()
		return result
	}
	defer resp.Body.Close() //nolint:errcheck // Read-side close, nothing to handle

	result.StatusCode = resp.StatusCode
	result.ContentType = resp.Header.Get("Content-Type")

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		result.Status = classifyTransportError(err)
		result.StatusText = result.Status.String()
		result.Failure = err.Error()
		return result
	}

	if resp.StatusCode >= http.StatusBadRequest {
		result.Status = model.FetchStatusHTTPError
		result.StatusText = result.Status.String()
		result.Failure = resp.Status
		return result
	}

	result.Status = model.FetchStatusOK
	result.StatusText = result.Status.String()
	result.Body = body

	// Only markup carries links; everything else is opaque content.
	if isHTMLContentType(result.ContentType) {
		parsed, perr := Parse(rawURL, strings.NewReader(string(body)))
		if perr == nil {
			result.Title = parsed.Title
			result.Text = parsed.Text
			result.Links = parsed.Links
		}
	}

	return result
}

// classifyTransportError separates deadline expiry from other
// transport-level failures.
func classifyTransportError(err error) model.FetchStatus {
	if errors.Is(err, context.DeadlineExceeded) {
		return model.FetchStatusTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return model.FetchStatusTimeout
	}
	return model.FetchStatusNetworkError
}

// URL validation errors. Returned before any I/O is attempted.
var (
	// ErrEmptyURL is returned for empty or whitespace-only input.
	ErrEmptyURL = errors.New("empty URL")

	// ErrInvalidURL is returned when the URL does not parse or lacks a host.
	ErrInvalidURL = errors.New("invalid URL")

	// ErrUnsupportedScheme is returned for schemes other than http/https.
	ErrUnsupportedScheme = errors.New("unsupported URL scheme (only http and https are allowed)")

	// ErrInvalidOnionHost is returned when a .onion host fails format or
	// checksum validation.
	ErrInvalidOnionHost = errors.New("invalid onion address")
)

// ValidateTargetURL checks that a URL is syntactically sound and uses an
// allowed scheme before any network activity. Onion hosts additionally
// get v2/v3 format validation (with checksum verification for v3), so a
// typo'd address fails immediately instead of wasting a Tor circuit.
func ValidateTargetURL(rawURL string) error {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return ErrEmptyURL
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return ErrInvalidURL
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ErrUnsupportedScheme
	}
	if u.Hostname() == "" {
		return ErrInvalidURL
	}
	if model.IsOnionHost(u.Hostname()) && !model.ValidOnionHost(u.Hostname()) {
		return ErrInvalidOnionHost
	}
	return nil
}

// isHTMLContentType reports whether the Content-Type header indicates
// link-bearing markup.
func isHTMLContentType(contentType string) bool {
	return strings.Contains(contentType, "text/html") ||
		strings.Contains(contentType, "application/xhtml+xml")
}
