package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/onionscrap/internal/model"
)

// fixtureBatch builds a batch with one analyzed site, one analysis
// failure, and one slot that never ran.
func fixtureBatch() *model.BatchResult {
	batch := &model.BatchResult{
		Query:     "marketplace",
		StartedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		Elapsed:   90 * time.Second,
		Results: []*model.SiteResult{
			{
				SeedURL: "http://good.onion",
				Hit:     &model.SearchHit{URL: "http://good.onion", Title: "Good Market"},
				Document: &model.CrawlDocument{
					SeedURL: "http://good.onion",
					Pages: []*model.FetchResult{
						{URL: "http://good.onion/", Status: model.FetchStatusOK},
						{URL: "http://good.onion/about", Status: model.FetchStatusOK},
					},
					AggregateText:   "storefront text",
					TerminationText: "exhausted",
				},
				Verdict: &model.AnalysisVerdict{
					SeedURL:  "http://good.onion",
					OK:       true,
					Analysis: "A small marketplace selling digital goods.",
					Findings: map[string]any{
						"category":   "marketplace",
						"risk_level": "medium",
					},
					Model:      "deepseek/deepseek-r1:free",
					TokensUsed: 1234,
				},
			},
			{
				SeedURL: "http://flaky.onion",
				Document: &model.CrawlDocument{
					SeedURL:         "http://flaky.onion",
					AggregateText:   "something",
					TerminationText: "exhausted",
				},
				Verdict: model.FailedVerdict("http://flaky.onion", "inference endpoint returned 502"),
			},
			{
				SeedURL: "http://late.onion",
				Err:     "batch deadline elapsed before this seed started",
			},
		},
	}
	batch.Recount()
	return batch
}

func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("full batch", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		n, err := w.Write(fixtureBatch())
		if err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if n != buf.Len() {
			t.Errorf("Write() = %d bytes, buffer has %d", n, buf.Len())
		}

		out := buf.String()
		for _, want := range []string{
			"marketplace",
			"3 attempted, 1 analyzed, 2 failed",
			"http://good.onion",
			"A small marketplace selling digital goods.",
			"inference endpoint returned 502",
			"batch deadline elapsed",
			"Good Market",
			"2 fetched, 2 ok",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("verbose lists fetched pages", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf, WithVerbose(true))

		if _, err := w.Write(fixtureBatch()); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if !strings.Contains(buf.String(), "http://good.onion/about") {
			t.Errorf("verbose output missing page URL:\n%s", buf.String())
		}
	})
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("compact round trip", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf, WithVersion("1.0.0"))

		if _, err := w.Write(fixtureBatch()); err != nil {
			t.Fatalf("Write() error = %v", err)
		}

		var decoded JSONReport
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if decoded.Version != "1.0.0" {
			t.Errorf("Version = %q, want 1.0.0", decoded.Version)
		}
		if decoded.Batch == nil || decoded.Batch.Attempted != 3 {
			t.Errorf("Batch = %+v, want 3 attempted", decoded.Batch)
		}
		if got := decoded.Batch.Results[0].Verdict.Findings["category"]; got != "marketplace" {
			t.Errorf("Findings[category] = %v, want marketplace", got)
		}
	})

	t.Run("pretty print", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf, WithPrettyPrint())

		if _, err := w.Write(fixtureBatch()); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if !strings.Contains(buf.String(), "\n  ") {
			t.Error("pretty-printed output should contain indentation")
		}
	})
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewMarkdownWriter(&buf)

	if _, err := w.Write(fixtureBatch()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"# Onionscrap Report",
		"`marketplace`",
		"## Sites",
		"http://good.onion",
		"| category",
		"pie",
		"Full analysis",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown output missing %q:\n%s", want, out)
		}
	}
}

// errWriter fails after the first write to exercise MultiWriter's
// error propagation.
type errWriter struct{}

func (errWriter) Write(_ *model.BatchResult) (int, error) {
	return 0, errors.New("disk full")
}

func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to all destinations", func(t *testing.T) {
		t.Parallel()

		var a, b bytes.Buffer
		mw := NewMultiWriter(NewSimpleWriter(&a), NewJSONWriter(&b))

		n, err := mw.Write(fixtureBatch())
		if err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if n != a.Len()+b.Len() {
			t.Errorf("total = %d, want %d", n, a.Len()+b.Len())
		}
		if a.Len() == 0 || b.Len() == 0 {
			t.Error("both destinations should receive output")
		}
	})

	t.Run("stops on first error", func(t *testing.T) {
		t.Parallel()

		var after bytes.Buffer
		mw := NewMultiWriter(errWriter{}, NewSimpleWriter(&after))

		if _, err := mw.Write(fixtureBatch()); err == nil {
			t.Fatal("Write() should propagate the writer error")
		}
		if after.Len() != 0 {
			t.Error("writers after the failing one should not run")
		}
	})
}
