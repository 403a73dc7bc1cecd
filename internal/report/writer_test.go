package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/minispider/internal/model"
)

// createTestReport creates a finished run with saved, plain and failed fetches.
func createTestReport() *model.RunReport {
	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return &model.RunReport{
		Run: model.Run{
			ID:         "0f8fad5b-d9cb-469f-a165-70867728950e",
			StartedAt:  started,
			FinishedAt: started.Add(1500 * time.Millisecond),
			Seeds:      []string{"http://example.com/"},
			Settings: model.RunSettings{
				MaxDepth:        1,
				CrawlInterval:   time.Second,
				CrawlTimeout:    time.Second,
				TargetPattern:   `.*\.(gif|png|jpg|bmp)$`,
				OutputDirectory: "./output",
				ThreadCount:     8,
			},
			Fetched: 2,
			Failed:  1,
			Saved:   1,
			Queued:  3,
		},
		Fetches: []model.FetchRecord{
			{URL: "http://example.com/", Depth: 0, StatusCode: 200, ContentType: "text/html", Success: true, Digest: "aaaa"},
			{URL: "http://example.com/logo.png", Depth: 1, StatusCode: 200, ContentType: "image/png", Success: true,
				SavedPath: "output/http%3A%2F%2Fexample.com%2Flogo.png", Digest: "0123456789abcdef0123456789abcdef"},
			{URL: "http://example.com/missing", Depth: 1, StatusCode: 404, Error: "unexpected status code 404"},
		},
	}
}

func createTestRuns() []model.Run {
	report := createTestReport()
	unfinished := model.Run{ID: "7c9e6679-7425-40de-944b-e07fc1f90ae7", StartedAt: report.Run.StartedAt.Add(time.Hour)}
	failed := report.Run
	failed.ID = "16fd2706-8baf-433b-82eb-8c7fada847da"
	failed.Error = "failed to save page"
	return []model.Run{unfinished, failed, report.Run}
}

// TestSimpleWriter tests the human-readable report writer.
func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes report header", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		_, err := w.Write(createTestReport())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "MINISPIDER CRAWL REPORT") {
			t.Error("expected output to contain header")
		}
		if !strings.Contains(output, "0f8fad5b-d9cb-469f-a165-70867728950e") {
			t.Error("expected output to contain run ID")
		}
		if !strings.Contains(output, "1.5s") {
			t.Error("expected output to contain duration")
		}
		if !strings.Contains(output, "Status:         Complete") {
			t.Error("expected complete status")
		}
	})

	t.Run("writes summary and depth breakdown", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		if _, err := w.Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{"QUEUED:   3", "FETCHED:  2", "FAILED:   1", "SAVED:    1", "depth 0: 1 fetches", "depth 1: 2 fetches"} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("lists saved and failed pages", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		if _, err := w.Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "[+] http://example.com/logo.png") {
			t.Error("expected saved page")
		}
		if !strings.Contains(output, "-> output/http%3A%2F%2Fexample.com%2Flogo.png") {
			t.Error("expected saved path")
		}
		if !strings.Contains(output, "[!] http://example.com/missing") {
			t.Error("expected failed fetch")
		}
		if !strings.Contains(output, "unexpected status code 404") {
			t.Error("expected failure reason")
		}
		if strings.Contains(output, "ALL FETCHES") {
			t.Error("full listing should only appear in verbose mode")
		}
	})

	t.Run("verbose mode lists every fetch", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf, WithVerbose(true))

		if _, err := w.Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "ALL FETCHES (3)") {
			t.Error("expected full fetch listing")
		}
		if !strings.Contains(output, "200  d=0  http://example.com/  (text/html)") {
			t.Errorf("expected fetch line, got:\n%s", output)
		}
	})

	t.Run("shows error in status", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)
		report := createTestReport()
		report.Run.Error = "failed to save page"

		if _, err := w.Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "FAILED - failed to save page") {
			t.Error("expected error message in status")
		}
	})
}

// TestSimpleWriterEmptySections tests the showEmpty option.
func TestSimpleWriterEmptySections(t *testing.T) {
	t.Parallel()

	empty := &model.RunReport{Run: model.Run{Seeds: []string{"http://example.com/"}}}

	t.Run("hides empty sections by default", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(empty); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if strings.Contains(output, "SAVED PAGES") || strings.Contains(output, "FAILED FETCHES") {
			t.Error("expected empty sections to be hidden")
		}
		if !strings.Contains(output, "Status:         Unfinished") {
			t.Error("expected unfinished status")
		}
	})

	t.Run("shows empty sections with showEmpty", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf, WithShowEmpty(true)).Write(empty); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "No pages saved") {
			t.Error("expected empty saved section")
		}
		if !strings.Contains(output, "No failed fetches") {
			t.Error("expected empty failed section")
		}
	})
}

func TestSimpleWriterHistory(t *testing.T) {
	t.Parallel()

	t.Run("lists runs", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).WriteHistory(createTestRuns()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		if len(lines) != 4 {
			t.Fatalf("expected header and 3 rows, got %d lines:\n%s", len(lines), buf.String())
		}
		if !strings.HasPrefix(lines[1], "7c9e6679") || !strings.Contains(lines[1], "Unfinished") {
			t.Errorf("unexpected first row %q", lines[1])
		}
		if !strings.Contains(lines[2], "Failed") {
			t.Errorf("unexpected second row %q", lines[2])
		}
		if !strings.Contains(lines[3], "Complete") || !strings.HasSuffix(lines[3], "1.5s") {
			t.Errorf("unexpected third row %q", lines[3])
		}
	})

	t.Run("no runs", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).WriteHistory(nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "No crawl runs recorded") {
			t.Errorf("unexpected output %q", buf.String())
		}
	})
}

// TestJSONWriter tests the JSON report writer.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("outputs valid JSON", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf)

		if _, err := w.Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded model.RunReport
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if decoded.Run.ID != "0f8fad5b-d9cb-469f-a165-70867728950e" || len(decoded.Fetches) != 3 {
			t.Errorf("unexpected decoded report %+v", decoded)
		}
	})

	t.Run("compact output by default", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if strings.Count(buf.String(), "\n") != 1 {
			t.Error("expected a single line of JSON")
		}
	})

	t.Run("pretty print with indent", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "\n  \"run\"") {
			t.Errorf("expected indented output, got:\n%s", buf.String())
		}
	})

	t.Run("includes version in output", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithVersion("v1.2.3")).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded JSONReport
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if decoded.Version != "v1.2.3" || decoded.Report == nil {
			t.Errorf("unexpected wrapper %+v", decoded)
		}
	})

	t.Run("history is always an array", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).WriteHistory(nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.TrimSpace(buf.String()) != "[]" {
			t.Errorf("expected empty array, got %q", buf.String())
		}
	})
}

// TestMarkdownWriter tests the Markdown report writer.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes report header", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "# minispider Crawl Report") {
			t.Error("expected output to contain H1 header")
		}
		if !strings.Contains(output, "`0f8fad5b-d9cb-469f-a165-70867728950e`") {
			t.Error("expected run ID in code format")
		}
		if !strings.Contains(output, "✅ Complete") {
			t.Error("expected complete status")
		}
	})

	t.Run("includes pie chart", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "pie") || !strings.Contains(output, "Fetch Outcomes") {
			t.Error("expected output to contain mermaid pie chart")
		}
	})

	t.Run("writes saved and failed tables", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "## Saved Pages") || !strings.Contains(output, "http://example.com/logo.png") {
			t.Error("expected saved pages table")
		}
		if !strings.Contains(output, "0123456789abc...") {
			t.Error("expected abbreviated digest")
		}
		if !strings.Contains(output, "## Failed Fetches") || !strings.Contains(output, "unexpected status code 404") {
			t.Error("expected failed fetches table")
		}
	})

	t.Run("handles run without fetches", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(&model.RunReport{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "No pages saved.") {
			t.Error("expected empty saved section")
		}
		if !strings.Contains(output, "[!TIP]") {
			t.Error("expected tip when nothing failed")
		}
		if strings.Contains(output, "pie") {
			t.Error("expected no chart without fetches")
		}
	})

	t.Run("shows caution for failed run", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		report := createTestReport()
		report.Run.Error = "failed to save page"
		if _, err := NewMarkdownWriter(&buf).Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "[!CAUTION]") || !strings.Contains(output, "failed to save page") {
			t.Error("expected CAUTION alert with the error")
		}
		if !strings.Contains(output, "❌ Failed") {
			t.Error("expected failed status")
		}
	})

	t.Run("writes history table", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).WriteHistory(createTestRuns()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "# Crawl History") {
			t.Error("expected history header")
		}
		for _, id := range []string{"`7c9e6679`", "`16fd2706`", "`0f8fad5b`"} {
			if !strings.Contains(output, id) {
				t.Errorf("expected %s in history", id)
			}
		}
	})
}

// fixedWriter fails after writing.
type fixedWriter struct {
	n   int
	err error
}

func (f fixedWriter) Write(*model.RunReport) (int, error)  { return f.n, f.err }
func (f fixedWriter) WriteHistory([]model.Run) (int, error) { return f.n, f.err }

// TestMultiWriter tests writing to multiple writers.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to all writers", func(t *testing.T) {
		t.Parallel()

		var buf1, buf2 bytes.Buffer
		mw := NewMultiWriter(NewSimpleWriter(&buf1), NewJSONWriter(&buf2))

		n, err := mw.Write(createTestReport())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != buf1.Len()+buf2.Len() {
			t.Errorf("expected %d bytes, got %d", buf1.Len()+buf2.Len(), n)
		}
		if strings.HasPrefix(strings.TrimSpace(buf1.String()), "{") {
			t.Error("expected buf1 (simple) to not be JSON")
		}
		if !strings.HasPrefix(buf2.String(), "{") {
			t.Error("expected buf2 (JSON) to contain JSON")
		}

		buf1.Reset()
		buf2.Reset()
		if _, err := mw.WriteHistory(createTestRuns()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if buf1.Len() == 0 || buf2.Len() == 0 {
			t.Error("expected history in both writers")
		}
	})

	t.Run("stops on first error", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		broken := errors.New("broken")
		mw := NewMultiWriter(fixedWriter{n: 5, err: broken}, NewSimpleWriter(&buf))

		n, err := mw.Write(createTestReport())
		if !errors.Is(err, broken) {
			t.Errorf("expected broken error, got %v", err)
		}
		if n != 5 || buf.Len() != 0 {
			t.Errorf("expected to stop after the first writer, n=%d", n)
		}
		if _, err := mw.WriteHistory(nil); !errors.Is(err, broken) {
			t.Errorf("expected broken error, got %v", err)
		}
	})

	t.Run("handles empty writers list", func(t *testing.T) {
		t.Parallel()

		n, err := NewMultiWriter().Write(createTestReport())
		if err != nil || n != 0 {
			t.Errorf("expected no-op, got n=%d err=%v", n, err)
		}
	})
}

// TestTruncateString tests string truncation.
func TestTruncateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input  string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is too long", 10, "this is..."},
		{"abcdef", 3, "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			if got := truncateString(tt.input, tt.maxLen); got != tt.want {
				t.Errorf("truncateString(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestRunHelpers(t *testing.T) {
	t.Parallel()

	if got := shortID("abc"); got != "abc" {
		t.Errorf("shortID(abc) = %q", got)
	}
	if got := shortDigest(""); got != "-" {
		t.Errorf("shortDigest(\"\") = %q", got)
	}
	if got := formatDuration(model.Run{}); got != "-" {
		t.Errorf("formatDuration of unfinished run = %q", got)
	}
}
