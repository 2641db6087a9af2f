package analyze

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/nao1215/onionscrap/internal/model"
)

// Default analyzer settings.
const (
	// DefaultBaseURL is the OpenRouter API root.
	DefaultBaseURL = "https://openrouter.ai/api/v1"

	// DefaultModel is a free-tier model adequate for content triage.
	DefaultModel = "deepseek/deepseek-r1:free"

	// DefaultMaxTokens bounds the completion length.
	DefaultMaxTokens = 2000

	// defaultTemperature keeps the output factual rather than creative.
	defaultTemperature = 0.3

	// maxErrorBodyBytes bounds how much of an error response we keep
	// for the failure reason.
	maxErrorBodyBytes = 4 * 1024
)

// Analyzer calls the inference endpoint. The endpoint is a clearnet
// service reached over the regular internet, never through the Tor
// proxy.
type Analyzer struct {
	// httpClient reaches the inference endpoint. Its timeout is the
	// per-call deadline.
	httpClient *http.Client

	// baseURL is the API root, without a trailing slash.
	baseURL string

	// apiKey authenticates requests. An empty key fails every analysis
	// with a verdict, not an error, so batch siblings proceed.
	apiKey string

	// modelID selects the inference model.
	modelID string

	// maxTokens bounds the completion length.
	maxTokens int

	// logger for structured logging. The API key never appears in log
	// output; see internal/log.SecureHandler.
	logger *slog.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithHTTPClient sets the HTTP client used for inference calls.
func WithHTTPClient(c *http.Client) Option {
	return func(a *Analyzer) {
		a.httpClient = c
	}
}

// WithBaseURL points the analyzer at a different endpoint.
func WithBaseURL(base string) Option {
	return func(a *Analyzer) {
		a.baseURL = strings.TrimRight(base, "/")
	}
}

// WithModel selects the inference model.
func WithModel(id string) Option {
	return func(a *Analyzer) {
		if id != "" {
			a.modelID = id
		}
	}
}

// WithMaxTokens bounds the completion length.
func WithMaxTokens(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.maxTokens = n
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) {
		a.logger = logger
	}
}

// New creates an Analyzer authenticated with the given API key.
func New(apiKey string, opts ...Option) *Analyzer {
	a := &Analyzer{
		httpClient: &http.Client{Timeout: 90 * time.Second},
		baseURL:    DefaultBaseURL,
		apiKey:     apiKey,
		modelID:    DefaultModel,
		maxTokens:  DefaultMaxTokens,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	return a
}

// chatRequest is the chat-completions request body.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

// chatMessage is one message in a chat-completions conversation.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is the subset of the chat-completions response we read.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

// Analyze sends one document's aggregate text to the inference endpoint
// and returns a verdict. The verdict is failure-marked, never nil, on
// any error; the instruction falls back to DefaultInstruction when
// empty.
func (a *Analyzer) Analyze(ctx context.Context, doc *model.CrawlDocument, instruction string) *model.AnalysisVerdict {
	if a.apiKey == "" {
		return model.FailedVerdict(doc.SeedURL, "missing inference API key")
	}
	if doc.AggregateText == "" {
		return model.FailedVerdict(doc.SeedURL, "no content to analyze")
	}
	if instruction == "" {
		instruction = DefaultInstruction
	}

	body, err := json.Marshal(chatRequest{
		Model: a.modelID,
		Messages: []chatMessage{
			{Role: "system", Content: SystemPrompt},
			{Role: "user", Content: instruction + "\n\nContent to analyze:\n" + doc.AggregateText},
		},
		MaxTokens:   a.maxTokens,
		Temperature: defaultTemperature,
	})
	if err != nil {
		return model.FailedVerdict(doc.SeedURL, fmt.Sprintf("encode request: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return model.FailedVerdict(doc.SeedURL, fmt.Sprintf("build request: %v", err))
	}
	req.Header.Set("Authorization", "Bearer "+a.apiKey)
	req.Header.Set("Content-Type", "application/json")

	a.logger.Debug("analysis request", "seed", doc.SeedURL, "model", a.modelID, "input_bytes", len(doc.AggregateText))

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return model.FailedVerdict(doc.SeedURL, fmt.Sprintf("inference call failed: %v", err))
	}
	defer resp.Body.Close() //nolint:errcheck // Read-side close, nothing to handle

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes)) //nolint:errcheck // Best-effort detail
		return model.FailedVerdict(doc.SeedURL,
			fmt.Sprintf("inference endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail))))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return model.FailedVerdict(doc.SeedURL, fmt.Sprintf("malformed inference response: %v", err))
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return model.FailedVerdict(doc.SeedURL, "inference response contained no analysis")
	}

	analysis := parsed.Choices[0].Message.Content
	verdict := &model.AnalysisVerdict{
		SeedURL:    doc.SeedURL,
		OK:         true,
		Analysis:   analysis,
		Model:      a.modelID,
		TokensUsed: parsed.Usage.TotalTokens,
	}
	verdict.Findings = decodeFindings(analysis)

	a.logger.Debug("analysis finished", "seed", doc.SeedURL, "tokens", verdict.TokensUsed, "structured", verdict.Findings != nil)
	return verdict
}

// decodeFindings attempts to read the model output as JSON, tolerating
// markdown code fences around the payload. Returns nil when the output
// is free-form text; the raw text stays valid on the verdict either way.
func decodeFindings(analysis string) map[string]any {
	text := StripCodeFences(analysis)

	var findings map[string]any
	if err := json.Unmarshal([]byte(text), &findings); err != nil {
		return nil
	}
	return findings
}

// StripCodeFences removes a surrounding markdown code fence, with or
// without a language tag, from the model output.
func StripCodeFences(s string) string {
	text := strings.TrimSpace(s)
	if !strings.HasPrefix(text, "```") || !strings.HasSuffix(text, "```") {
		return text
	}

	text = strings.TrimSuffix(text, "```")
	text = strings.TrimPrefix(text, "```")
	// Drop a language tag such as "json" on the opening fence line.
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		first := strings.TrimSpace(text[:idx])
		if first != "" && !strings.ContainsAny(first, "{[") {
			text = text[idx+1:]
		}
	}
	return strings.TrimSpace(text)
}
