package report

import (
	"io"
	"time"

	"github.com/nao1215/minispider/internal/model"
)

// Writer defines the interface for report output.
// Implementations render crawl runs in various formats.
type Writer interface {
	// Write outputs one run with its fetch records.
	// Returns the number of bytes written and any error encountered.
	Write(report *model.RunReport) (int, error)

	// WriteHistory outputs a list of runs, newest first.
	WriteHistory(runs []model.Run) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// The crawl command uses it to print a summary and keep a report file.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(report *model.RunReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteHistory outputs the run list to all configured Writers.
func (m *MultiWriter) WriteHistory(runs []model.Run) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteHistory(runs)
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

// runStatus describes how a run ended.
func runStatus(run model.Run) string {
	switch {
	case run.Error != "":
		return "Failed"
	case !run.Finished():
		return "Unfinished"
	default:
		return "Complete"
	}
}

// formatDuration renders the run duration, or "-" for unfinished runs.
func formatDuration(run model.Run) string {
	if !run.Finished() {
		return "-"
	}
	return run.Duration().Round(time.Millisecond).String()
}

// shortID returns the first eight characters of a run ID, enough to pass
// to the report command.
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

// timeLayout is used for every timestamp shown in reports.
const timeLayout = "2006-01-02 15:04:05 MST"
