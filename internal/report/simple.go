package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/minispider/internal/model"
)

// SimpleWriter outputs human-readable text reports for terminal display.
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with no entries are shown.
	showEmpty bool

	// verbose lists every fetch instead of only saved and failed ones.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables the full fetch listing.
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

// Write outputs the run report in human-readable format.
func (w *SimpleWriter) Write(report *model.RunReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report.Run)
	w.writeSummary(&sb, report)
	w.writeSaved(&sb, report)
	w.writeFailed(&sb, report)
	if w.verbose {
		w.writeFetches(&sb, report)
	}
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// WriteHistory outputs one line per run.
func (w *SimpleWriter) WriteHistory(runs []model.Run) (int, error) {
	var sb strings.Builder

	if len(runs) == 0 {
		sb.WriteString("No crawl runs recorded\n")
		return w.output.Write([]byte(sb.String()))
	}

	sb.WriteString(fmt.Sprintf("%-8s  %-23s  %-10s  %7s  %6s  %5s  %s\n",
		"ID", "STARTED", "STATUS", "FETCHED", "FAILED", "SAVED", "DURATION"))
	for _, run := range runs {
		sb.WriteString(fmt.Sprintf("%-8s  %-23s  %-10s  %7d  %6d  %5d  %s\n",
			shortID(run.ID),
			run.StartedAt.Local().Format(timeLayout),
			runStatus(run),
			run.Fetched,
			run.Failed,
			run.Saved,
			formatDuration(run),
		))
	}
	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, run model.Run) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                        MINISPIDER CRAWL REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	if run.ID != "" {
		sb.WriteString(fmt.Sprintf("Run ID:         %s\n", run.ID))
	}
	if !run.StartedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("Started:        %s\n", run.StartedAt.Local().Format(timeLayout)))
	}
	sb.WriteString(fmt.Sprintf("Duration:       %s\n", formatDuration(run)))
	sb.WriteString(fmt.Sprintf("Seeds:          %d\n", len(run.Seeds)))
	sb.WriteString(fmt.Sprintf("Max Depth:      %d\n", run.Settings.MaxDepth))
	sb.WriteString(fmt.Sprintf("Target Pattern: %s\n", run.Settings.TargetPattern))
	sb.WriteString(fmt.Sprintf("Output:         %s\n", run.Settings.OutputDirectory))

	if run.Error != "" {
		sb.WriteString(fmt.Sprintf("Status:         FAILED - %s\n", run.Error))
	} else {
		sb.WriteString(fmt.Sprintf("Status:         %s\n", runStatus(run)))
	}

	sb.WriteString("\n")
}

// writeSection writes a section title between rules.
func (w *SimpleWriter) writeSection(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}

// writeSummary writes the counters and the per-depth breakdown.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, report *model.RunReport) {
	w.writeSection(sb, "SUMMARY")

	run := report.Run
	sb.WriteString(fmt.Sprintf("  QUEUED:   %d\n", run.Queued))
	sb.WriteString(fmt.Sprintf("  FETCHED:  %d\n", run.Fetched))
	sb.WriteString(fmt.Sprintf("  FAILED:   %d\n", run.Failed))
	sb.WriteString(fmt.Sprintf("  SAVED:    %d\n", run.Saved))
	sb.WriteString("\n")

	hist := report.DepthHistogram()
	if len(hist) == 0 {
		return
	}
	for depth, n := range hist {
		sb.WriteString(fmt.Sprintf("  depth %d: %d fetches\n", depth, n))
	}
	sb.WriteString("\n")
}

// writeSaved lists the pages written to the output directory.
func (w *SimpleWriter) writeSaved(sb *strings.Builder, report *model.RunReport) {
	saved := report.SavedPages()
	if len(saved) == 0 && !w.showEmpty {
		return
	}

	w.writeSection(sb, fmt.Sprintf("SAVED PAGES (%d)", len(saved)))
	if len(saved) == 0 {
		sb.WriteString("  No pages saved\n\n")
		return
	}
	for _, f := range saved {
		sb.WriteString(fmt.Sprintf("  [+] %s\n", f.URL))
		sb.WriteString(fmt.Sprintf("      -> %s\n", f.SavedPath))
	}
	sb.WriteString("\n")
}

// writeFailed lists the fetches that did not succeed.
func (w *SimpleWriter) writeFailed(sb *strings.Builder, report *model.RunReport) {
	failed := report.FailedFetches()
	if len(failed) == 0 && !w.showEmpty {
		return
	}

	w.writeSection(sb, fmt.Sprintf("FAILED FETCHES (%d)", len(failed)))
	if len(failed) == 0 {
		sb.WriteString("  No failed fetches\n\n")
		return
	}
	for _, f := range failed {
		sb.WriteString(fmt.Sprintf("  [!] %s\n", f.URL))
		if f.Error != "" {
			sb.WriteString(fmt.Sprintf("      %s\n", f.Error))
		}
	}
	sb.WriteString("\n")
}

// writeFetches lists every fetch in journal order.
func (w *SimpleWriter) writeFetches(sb *strings.Builder, report *model.RunReport) {
	w.writeSection(sb, fmt.Sprintf("ALL FETCHES (%d)", len(report.Fetches)))
	for _, f := range report.Fetches {
		status := "---"
		if f.StatusCode != 0 {
			status = fmt.Sprintf("%d", f.StatusCode)
		}
		sb.WriteString(fmt.Sprintf("  %s  d=%d  %s", status, f.Depth, f.URL))
		if f.ContentType != "" {
			sb.WriteString(fmt.Sprintf("  (%s)", f.ContentType))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
