package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/nao1215/minispider/internal/model"
)

// MarkdownWriter outputs reports in Markdown format, for sharing runs in
// issues or documentation.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the run report in Markdown format.
func (w *MarkdownWriter) Write(report *model.RunReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report.Run)
	w.writeSummary(md, report)
	w.writeSaved(md, report)
	w.writeFailed(md, report)

	return len(md.String()), md.Build()
}

// WriteHistory outputs the run list as a Markdown table.
func (w *MarkdownWriter) WriteHistory(runs []model.Run) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Crawl History")
	md.PlainText("")

	if len(runs) == 0 {
		md.PlainText("No crawl runs recorded.")
		return len(md.String()), md.Build()
	}

	rows := make([][]string, len(runs))
	for i, run := range runs {
		rows[i] = []string{
			"`" + shortID(run.ID) + "`",
			run.StartedAt.Local().Format(timeLayout),
			runStatus(run),
			strconv.Itoa(run.Fetched),
			strconv.Itoa(run.Failed),
			strconv.Itoa(run.Saved),
			formatDuration(run),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"ID", "Started", "Status", "Fetched", "Failed", "Saved", "Duration"},
		Rows:   rows,
	})

	return len(md.String()), md.Build()
}

// writeHeader writes the report title and the run properties table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, run model.Run) {
	md.H1("minispider Crawl Report")
	md.PlainText("")

	rows := make([][]string, 0, 8)
	if run.ID != "" {
		rows = append(rows, []string{"Run ID", "`" + run.ID + "`"})
	}
	if !run.StartedAt.IsZero() {
		rows = append(rows, []string{"Started", run.StartedAt.Local().Format(timeLayout)})
	}
	rows = append(rows,
		[]string{"Duration", formatDuration(run)},
		[]string{"Seeds", strconv.Itoa(len(run.Seeds))},
		[]string{"Max Depth", strconv.Itoa(run.Settings.MaxDepth)},
		[]string{"Threads", strconv.Itoa(run.Settings.ThreadCount)},
		[]string{"Target Pattern", "`" + run.Settings.TargetPattern + "`"},
		[]string{"Status", w.getStatusText(run)},
	)

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")

	if run.Error != "" {
		md.Cautionf("The crawl stopped early: %s", run.Error)
		md.PlainText("")
	}
}

// getStatusText returns the status text based on run state.
func (w *MarkdownWriter) getStatusText(run model.Run) string {
	switch runStatus(run) {
	case "Failed":
		return "❌ Failed"
	case "Unfinished":
		return "⚠️ Unfinished"
	default:
		return "✅ Complete"
	}
}

// writeSummary writes the counters, the fetch outcome chart and the depth table.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.RunReport) {
	run := report.Run

	md.H2("Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Counter", "Value"},
		Rows: [][]string{
			{"Queued", strconv.Itoa(run.Queued)},
			{"Fetched", strconv.Itoa(run.Fetched)},
			{"Failed", strconv.Itoa(run.Failed)},
			{"Saved", strconv.Itoa(run.Saved)},
		},
	})
	md.PlainText("")

	if run.Fetched+run.Failed > 0 {
		w.writePieChart(md, run)
	}

	hist := report.DepthHistogram()
	if len(hist) == 0 {
		return
	}
	rows := make([][]string, len(hist))
	for depth, n := range hist {
		rows[depth] = []string{strconv.Itoa(depth), strconv.Itoa(n)}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Depth", "Fetches"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writePieChart writes a mermaid pie chart of fetch outcomes.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, run model.Run) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Fetch Outcomes"),
		piechart.WithShowData(true),
	)

	if run.Saved > 0 {
		chart.LabelAndIntValue("Saved", uint64(run.Saved))
	}
	if rest := run.Fetched - run.Saved; rest > 0 {
		chart.LabelAndIntValue("Fetched, not saved", uint64(rest))
	}
	if run.Failed > 0 {
		chart.LabelAndIntValue("Failed", uint64(run.Failed))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeSaved writes the table of saved pages.
func (w *MarkdownWriter) writeSaved(md *markdown.Markdown, report *model.RunReport) {
	md.H2("Saved Pages")
	md.PlainText("")

	saved := report.SavedPages()
	if len(saved) == 0 {
		md.PlainText("No pages saved.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(saved))
	for i, f := range saved {
		rows[i] = []string{
			truncateString(f.URL, 80),
			strconv.Itoa(f.Depth),
			"`" + f.SavedPath + "`",
			shortDigest(f.Digest),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"URL", "Depth", "File", "SHA3-256"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFailed writes the table of failed fetches.
func (w *MarkdownWriter) writeFailed(md *markdown.Markdown, report *model.RunReport) {
	md.H2("Failed Fetches")
	md.PlainText("")

	failed := report.FailedFetches()
	if len(failed) == 0 {
		md.Tip("Every fetch succeeded.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(failed))
	for i, f := range failed {
		status := "-"
		if f.StatusCode != 0 {
			status = strconv.Itoa(f.StatusCode)
		}
		rows[i] = []string{
			truncateString(f.URL, 80),
			status,
			truncateString(f.Error, 60),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"URL", "Status", "Error"},
		Rows:   rows,
	})
	md.PlainText("")
}

// shortDigest abbreviates a hex digest for display.
func shortDigest(digest string) string {
	if digest == "" {
		return "-"
	}
	return truncateString(digest, 16)
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
