// Package search queries the Ahmia discovery index for candidate onion
// sites and normalizes the result page into SearchHit values.
//
// Ahmia is reached over the regular internet, not through Tor: the
// index itself is a clearnet service, and routing it through the proxy
// only adds latency and failure modes. The adapter caps result counts,
// applies the recency filter, and reports upstream failures as a
// distinct error so the caller can decide whether an empty search is
// fatal or merely "no results".
package search
