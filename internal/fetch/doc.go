// Package fetch performs single-page retrievals through the configured
// Tor proxy and converts every outcome, including failures, into a
// model.FetchResult value.
//
// A Fetcher never retries and never raises transport failures past its
// boundary: malformed URLs are rejected before any I/O, and network
// errors, HTTP errors, and timeouts are recorded on the result. Retry
// policy, if any, belongs to callers.
package fetch
