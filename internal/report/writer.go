package report

import (
	"io"

	"github.com/nao1215/onionscrap/internal/model"
)

// Writer defines the interface for report output.
// Implementations write batch results in various formats. A single-seed
// run is reported as a batch with one slot.
//
// Design decision: We use an interface to allow different output formats
// and destinations. This enables writing to files, stdout, or network
// connections with the same API.
type Writer interface {
	// Write outputs the batch result to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(batch *model.BatchResult) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
//
// Design decision: We implement this as a separate type rather than
// using io.MultiWriter because our Writer interface is different
// from io.Writer - we write batch results, not raw bytes.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the batch result to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(batch *model.BatchResult) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(batch)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// siteStatus returns a short status word for one result slot.
func siteStatus(r *model.SiteResult) string {
	switch {
	case r == nil:
		return "unknown"
	case r.Succeeded():
		return "analyzed"
	case r.Err != "":
		return "not run"
	case r.Verdict != nil && !r.Verdict.OK:
		return "failed"
	default:
		return "failed"
	}
}

// failureDetail returns the most specific failure description for a
// slot, or empty when the slot succeeded.
func failureDetail(r *model.SiteResult) string {
	switch {
	case r == nil:
		return ""
	case r.Err != "":
		return r.Err
	case r.Verdict != nil && !r.Verdict.OK:
		return r.Verdict.FailureReason
	default:
		return ""
	}
}
