package model

// AnalysisVerdict is the output of the analysis step for one crawl
// document. A verdict exists for every analyzed seed, whether the
// inference call succeeded or not.
//
// Design decision: Inference failures are recorded on the verdict
// rather than returned as errors because a failed analysis for one seed
// must never abort sibling seeds in a batch. The orchestrator only ever
// sees verdict values.
type AnalysisVerdict struct {
	// SeedURL identifies the crawl document this verdict belongs to.
	SeedURL string `json:"seed_url"`

	// OK reports whether the inference call produced an analysis.
	OK bool `json:"ok"`

	// Analysis is the raw analysis text returned by the model.
	// Empty when OK is false.
	Analysis string `json:"analysis,omitempty"`

	// Findings holds the analysis decoded as JSON when the model
	// returned well-formed JSON (with or without code fences).
	// Nil when the output was free-form text; the raw text in Analysis
	// is still valid in that case.
	Findings map[string]any `json:"findings,omitempty"`

	// Model is the model identifier that produced the analysis.
	Model string `json:"model,omitempty"`

	// TokensUsed is the token count reported by the inference endpoint.
	TokensUsed int `json:"tokens_used,omitempty"`

	// FailureReason describes why the analysis failed. Empty when OK.
	FailureReason string `json:"failure_reason,omitempty"`
}

// FailedVerdict builds a failure-marked verdict for the given seed.
func FailedVerdict(seedURL, reason string) *AnalysisVerdict {
	return &AnalysisVerdict{
		SeedURL:       seedURL,
		FailureReason: reason,
	}
}
