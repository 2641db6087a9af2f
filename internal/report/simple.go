package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/onionscrap/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// verbose enables the full per-page fetch listing in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with per-page fetch details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the batch result in human-readable format.
func (w *SimpleWriter) Write(batch *model.BatchResult) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, batch)
	for i, r := range batch.Results {
		w.writeSite(&sb, i, r)
	}
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the batch summary block.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, batch *model.BatchResult) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                        ONIONSCRAP REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	if batch.Query != "" {
		sb.WriteString(fmt.Sprintf("Query:     %s\n", batch.Query))
	}
	sb.WriteString(fmt.Sprintf("Date:      %s\n", batch.StartedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Sites:     %d attempted, %d analyzed, %d failed\n",
		batch.Attempted, batch.Succeeded, batch.Failed))
	sb.WriteString(fmt.Sprintf("Elapsed:   %s\n", batch.Elapsed.Round(10*time.Millisecond)))
	sb.WriteString("\n")
}

// writeSite writes one seed's section.
func (w *SimpleWriter) writeSite(sb *strings.Builder, index int, r *model.SiteResult) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("[%d] %s\n", index+1, r.SeedURL))
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if r.Hit != nil && r.Hit.Title != "" {
		sb.WriteString(fmt.Sprintf("  Title:       %s\n", r.Hit.Title))
	}
	sb.WriteString(fmt.Sprintf("  Status:      %s\n", siteStatus(r)))

	if doc := r.Document; doc != nil {
		sb.WriteString(fmt.Sprintf("  Pages:       %d fetched, %d ok\n", doc.PageCount(), doc.SucceededCount()))
		if doc.TerminationText != "" {
			sb.WriteString(fmt.Sprintf("  Termination: %s\n", doc.TerminationText))
		}
	}

	if detail := failureDetail(r); detail != "" {
		sb.WriteString(fmt.Sprintf("  Failure:     %s\n", detail))
	}

	if w.verbose && r.Document != nil {
		sb.WriteString("\n  Fetched pages:\n")
		for _, page := range r.Document.Pages {
			sb.WriteString(fmt.Sprintf("    [%s] %s\n", page.Status, page.URL))
		}
	}

	if r.Verdict != nil && r.Verdict.OK {
		sb.WriteString("\n  Analysis:\n")
		for _, line := range strings.Split(strings.TrimSpace(r.Verdict.Analysis), "\n") {
			sb.WriteString("    " + line + "\n")
		}
		if r.Verdict.TokensUsed > 0 {
			sb.WriteString(fmt.Sprintf("\n  Model: %s (%d tokens)\n", r.Verdict.Model, r.Verdict.TokensUsed))
		}
	}

	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by onionscrap\n")
	sb.WriteString("https://github.com/nao1215/onionscrap\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
