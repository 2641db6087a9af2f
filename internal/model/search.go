package model

import "time"

// SearchHit is one candidate site returned by the discovery index,
// normalized into the fields the pipeline needs. Hits are kept in the
// index's relevance order.
type SearchHit struct {
	// URL is the candidate site URL, scheme included.
	URL string `json:"url"`

	// Title is the result title as reported by the index.
	Title string `json:"title,omitempty"`

	// Snippet is the short description shown with the result.
	Snippet string `json:"snippet,omitempty"`

	// LastSeen is when the index last observed the site online.
	// Zero when the index did not report recency for this hit.
	LastSeen time.Time `json:"last_seen,omitempty"`
}

// SeenWithin reports whether the hit was last seen within the given
// number of days before now. Hits without recency information pass the
// filter: an unknown age is not evidence of staleness.
func (h SearchHit) SeenWithin(days int, now time.Time) bool {
	if days <= 0 || h.LastSeen.IsZero() {
		return true
	}
	return !h.LastSeen.Before(now.AddDate(0, 0, -days))
}
