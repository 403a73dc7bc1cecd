package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNewSpiderLogger(t *testing.T) {
	t.Parallel()

	t.Run("splits records by level", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "log")
		var console bytes.Buffer

		logger, closer, err := NewSpiderLogger(Options{Dir: dir, Console: &console})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		logger.Debug("debug record")
		logger.Info("info record", "url", "http://example.com/")
		logger.Warn("warn record", "cookie", "sid=1")

		if err := closer.Close(); err != nil {
			t.Fatalf("failed to close: %v", err)
		}

		info := readLog(t, filepath.Join(dir, InfoLogFile))
		warn := readLog(t, filepath.Join(dir, WarningLogFile))

		if strings.Contains(info, "debug record") {
			t.Error("debug record written to info log")
		}
		if !strings.Contains(info, "info record") || !strings.Contains(info, "warn record") {
			t.Errorf("info log missing records: %s", info)
		}
		if strings.Contains(warn, "info record") || !strings.Contains(warn, "warn record") {
			t.Errorf("warning log should only hold warnings: %s", warn)
		}
		if strings.Contains(info+warn, "sid=1") {
			t.Error("cookie written to log files")
		}

		out := console.String()
		if strings.Contains(out, "info record") || !strings.Contains(out, "warn record") {
			t.Errorf("console should only show warnings when not verbose: %s", out)
		}
	})

	t.Run("verbose console shows debug", func(t *testing.T) {
		t.Parallel()

		var console bytes.Buffer
		logger, closer, err := NewSpiderLogger(Options{Console: &console, Verbose: true})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer closer.Close()

		logger.Debug("debug record")
		if !strings.Contains(console.String(), "debug record") {
			t.Errorf("expected debug output, got: %s", console.String())
		}
	})

	t.Run("unwritable directory", func(t *testing.T) {
		t.Parallel()

		blocker := filepath.Join(t.TempDir(), "file")
		if err := os.WriteFile(blocker, nil, 0600); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}
		if _, _, err := NewSpiderLogger(Options{Dir: filepath.Join(blocker, "log")}); err == nil {
			t.Error("expected error")
		}
	})
}

// failingHandler accepts every level and always fails.
type failingHandler struct{}

func (failingHandler) Enabled(context.Context, slog.Level) bool  { return true }
func (failingHandler) Handle(context.Context, slog.Record) error { return errors.New("broken") }
func (f failingHandler) WithAttrs([]slog.Attr) slog.Handler      { return f }
func (f failingHandler) WithGroup(string) slog.Handler           { return f }

func TestMultiHandler(t *testing.T) {
	t.Parallel()

	t.Run("enabled if any handler is", func(t *testing.T) {
		t.Parallel()

		var a, b bytes.Buffer
		h := NewMultiHandler(
			slog.NewTextHandler(&a, &slog.HandlerOptions{Level: slog.LevelError}),
			slog.NewTextHandler(&b, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
		if !h.Enabled(context.Background(), slog.LevelInfo) {
			t.Error("expected info to be enabled")
		}
		if h.Enabled(context.Background(), slog.LevelDebug) {
			t.Error("expected debug to be disabled")
		}

		slog.New(h).With("worker", 3).WithGroup("page").Info("hello", "depth", 1)
		if a.Len() != 0 {
			t.Errorf("error-level handler got an info record: %s", a.String())
		}
		if !strings.Contains(b.String(), "worker=3") || !strings.Contains(b.String(), "page.depth=1") {
			t.Errorf("expected attrs and group, got: %s", b.String())
		}
	})

	t.Run("joins handler errors", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		h := NewMultiHandler(failingHandler{}, slog.NewTextHandler(&buf, nil))

		err := h.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelInfo, "still written", 0))
		if err == nil {
			t.Error("expected the failing handler's error")
		}
		if !strings.Contains(buf.String(), "still written") {
			t.Errorf("expected the healthy handler to receive the record, got: %s", buf.String())
		}
	})
}

func readLog(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}
