// Package analyze sends aggregated crawl text to an OpenRouter-style
// chat-completions endpoint and returns structured verdicts.
//
// The adapter makes exactly one inference call per document and maps
// every failure mode (missing credentials, non-success status, timeout,
// malformed response body) into a failure-marked AnalysisVerdict. No
// transport error ever propagates to the orchestrator: an inference
// failure for one seed must not abort sibling seeds in a batch.
package analyze
