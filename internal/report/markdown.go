package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/nao1215/onionscrap/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the batch result in Markdown format.
func (w *MarkdownWriter) Write(batch *model.BatchResult) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, batch)
	w.writeSummary(md, batch)
	w.writeSiteTable(md, batch)
	for i, r := range batch.Results {
		w.writeSite(md, i, r)
	}
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, batch *model.BatchResult) {
	md.H1("Onionscrap Report")
	md.PlainText("")

	rows := [][]string{
		{"Date", batch.StartedAt.Format("2006-01-02 15:04:05 MST")},
		{"Sites Attempted", strconv.Itoa(batch.Attempted)},
		{"Sites Analyzed", strconv.Itoa(batch.Succeeded)},
		{"Sites Failed", strconv.Itoa(batch.Failed)},
		{"Elapsed", batch.Elapsed.String()},
	}
	if batch.Query != "" {
		rows = append([][]string{{"Query", "`" + batch.Query + "`"}}, rows...)
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeSummary writes the outcome pie chart and an alert reflecting the
// overall result.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, batch *model.BatchResult) {
	if batch.Attempted > 0 {
		chart := piechart.NewPieChart(
			io.Discard,
			piechart.WithTitle("Site Outcomes"),
			piechart.WithShowData(true),
		)
		if batch.Succeeded > 0 {
			chart.LabelAndIntValue("Analyzed", uint64(batch.Succeeded))
		}
		if batch.Failed > 0 {
			chart.LabelAndIntValue("Failed", uint64(batch.Failed))
		}

		md.PlainText("")
		md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
		md.PlainText("")
	}

	switch {
	case batch.Attempted == 0:
		md.Note("No sites were discovered for this query.")
	case batch.Succeeded == 0:
		md.Warningf("All %d site(s) failed; no analysis was produced.", batch.Failed)
	case batch.Failed > 0:
		md.Importantf("%d of %d site(s) failed; results below are partial.", batch.Failed, batch.Attempted)
	default:
		md.Tip("Every site was crawled and analyzed successfully.")
	}
	md.PlainText("")
}

// writeSiteTable writes the per-site overview table.
func (w *MarkdownWriter) writeSiteTable(md *markdown.Markdown, batch *model.BatchResult) {
	if len(batch.Results) == 0 {
		return
	}

	md.H2("Sites")
	md.PlainText("")

	rows := make([][]string, len(batch.Results))
	for i, r := range batch.Results {
		pages := "-"
		if r.Document != nil {
			pages = strconv.Itoa(r.Document.SucceededCount())
		}
		detail := failureDetail(r)
		if detail == "" {
			detail = "-"
		}
		rows[i] = []string{
			"`" + r.SeedURL + "`",
			siteStatus(r),
			pages,
			truncateString(detail, 60),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Seed", "Status", "Pages", "Failure"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeSite writes one seed's analysis section.
func (w *MarkdownWriter) writeSite(md *markdown.Markdown, index int, r *model.SiteResult) {
	md.H2(fmt.Sprintf("%d. %s", index+1, r.SeedURL))
	md.PlainText("")

	if r.Hit != nil && r.Hit.Title != "" {
		md.PlainTextf("**Title**: %s", r.Hit.Title)
		md.PlainText("")
	}

	if !r.Succeeded() {
		md.Cautionf("Not analyzed: %s", failureDetail(r))
		md.PlainText("")
		return
	}

	if len(r.Verdict.Findings) > 0 {
		w.writeFindings(md, r.Verdict.Findings)
	}

	md.Details("Full analysis", "\n\n"+r.Verdict.Analysis+"\n")
	md.PlainText("")

	if r.Verdict.TokensUsed > 0 {
		md.PlainTextf("*Model: %s, %d tokens*", r.Verdict.Model, r.Verdict.TokensUsed)
		md.PlainText("")
	}
}

// writeFindings renders the structured findings as a key/value table.
// Keys are sorted for stable output.
func (w *MarkdownWriter) writeFindings(md *markdown.Markdown, findings map[string]any) {
	keys := make([]string, 0, len(findings))
	for k := range findings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, []string{k, truncateString(fmt.Sprintf("%v", findings[k]), 80)})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Field", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [onionscrap](https://github.com/nao1215/onionscrap)*")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
