package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/onionscrap/internal/model"
)

// Default search settings.
const (
	// DefaultBaseURL is the public Ahmia instance.
	DefaultBaseURL = "https://ahmia.fi"

	// DefaultMaxResults caps how many hits one search returns.
	DefaultMaxResults = 20

	// DefaultUserAgent is sent with search requests. Ahmia serves a
	// degraded page to clients without a browser-like agent.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36"
)

// Search adapter errors.
var (
	// ErrSearchUnavailable is returned when the index cannot be reached
	// or responds with a non-success status. The accompanying empty hit
	// list is still a valid value.
	ErrSearchUnavailable = errors.New("search index unavailable")

	// ErrEmptyQuery is returned for an empty or whitespace-only query.
	ErrEmptyQuery = errors.New("empty search query")
)

// recencyWindows are the day windows the index understands natively.
// Other windows are applied client-side from the reported last-seen
// timestamps.
var recencyWindows = map[int]bool{1: true, 7: true, 30: true}

// lastSeenLayouts are the timestamp formats observed in the index's
// result markup.
var lastSeenLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"Jan. 2, 2006",
	"Jan 2, 2006",
}

// Client queries the discovery index.
type Client struct {
	// httpClient reaches the index over the regular internet.
	httpClient *http.Client

	// baseURL is the index root, without a trailing slash.
	baseURL string

	// userAgent is sent with every request.
	userAgent string

	// maxResults caps hits per search.
	maxResults int

	// logger for structured logging.
	logger *slog.Logger
}

// ClientOption configures a search Client.
type ClientOption func(*Client)

// WithHTTPClient sets the HTTP client used to reach the index.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(s *Client) {
		s.httpClient = c
	}
}

// WithBaseURL points the client at a different index instance.
func WithBaseURL(base string) ClientOption {
	return func(s *Client) {
		s.baseURL = strings.TrimRight(base, "/")
	}
}

// WithMaxResults caps the number of hits per search.
func WithMaxResults(n int) ClientOption {
	return func(s *Client) {
		if n > 0 {
			s.maxResults = n
		}
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(s *Client) {
		s.userAgent = ua
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(s *Client) {
		s.logger = logger
	}
}

// NewClient creates a search client with default settings.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    DefaultBaseURL,
		userAgent:  DefaultUserAgent,
		maxResults: DefaultMaxResults,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Search queries the index and returns hits in the index's relevance
// order. sinceDays > 0 filters out hits last seen earlier than that
// many days ago; hits whose recency the index did not report pass the
// filter. On upstream failure the hit list is empty and the error wraps
// ErrSearchUnavailable.
func (c *Client) Search(ctx context.Context, query string, sinceDays int) ([]model.SearchHit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	searchURL := c.baseURL + "/search/?q=" + url.QueryEscape(query)
	if recencyWindows[sinceDays] {
		searchURL += fmt.Sprintf("&d=%d", sinceDays)
	}

	c.logger.Debug("searching index", "url", searchURL, "since_days", sinceDays)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSearchUnavailable, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSearchUnavailable, err)
	}
	defer resp.Body.Close() //nolint:errcheck // Read-side close, nothing to handle

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrSearchUnavailable, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSearchUnavailable, err)
	}

	hits := c.parseResults(doc)
	hits = filterRecency(hits, sinceDays, time.Now())

	c.logger.Debug("search finished", "query", query, "hits", len(hits))
	return hits, nil
}

// parseResults extracts hits from the index's result markup. Each
// result is an <li class="result"> holding the title in <h4><a>, the
// onion URL in <cite>, the snippet in <p>, and the last-seen timestamp
// in <span class="lastSeen">.
func (c *Client) parseResults(doc *goquery.Document) []model.SearchHit {
	var hits []model.SearchHit

	doc.Find("li.result").EachWithBreak(func(_ int, item *goquery.Selection) bool {
		if len(hits) >= c.maxResults {
			return false
		}

		hit := model.SearchHit{
			Title:   strings.TrimSpace(item.Find("h4 a").First().Text()),
			Snippet: strings.TrimSpace(item.Find("p").First().Text()),
		}

		rawURL := strings.TrimSpace(item.Find("cite").First().Text())
		if rawURL == "" {
			return true // result without a URL is useless; skip it
		}
		if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
			rawURL = "http://" + rawURL
		}
		hit.URL = rawURL

		if raw := strings.TrimSpace(item.Find("span.lastSeen").First().Text()); raw != "" {
			hit.LastSeen = parseLastSeen(raw)
		}

		hits = append(hits, hit)
		return true
	})

	return hits
}

// parseLastSeen tries the known timestamp layouts; zero time when none
// match. An attribute form ("datetime") is not attempted because the
// index inlines the value as text.
func parseLastSeen(raw string) time.Time {
	for _, layout := range lastSeenLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts
		}
	}
	return time.Time{}
}

// filterRecency drops hits last seen before the window, preserving the
// relative order of the rest.
func filterRecency(hits []model.SearchHit, sinceDays int, now time.Time) []model.SearchHit {
	if sinceDays <= 0 {
		return hits
	}
	kept := hits[:0]
	for _, h := range hits {
		if h.SeenWithin(sinceDays, now) {
			kept = append(kept, h)
		}
	}
	return kept
}
