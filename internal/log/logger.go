package log

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Log file names inside the log directory. The ".wf" file receives only
// warnings and errors so problems can be found without reading every
// fetch.
const (
	InfoLogFile    = "spider.log"
	WarningLogFile = "spider.log.wf"
)

// Rotation settings for the log files.
const (
	maxLogSizeMB  = 100
	maxLogBackups = 7
	maxLogAgeDays = 7
)

// MultiHandler sends each record to every handler that is enabled for the
// record's level.
type MultiHandler struct {
	handlers []slog.Handler
}

// NewMultiHandler creates a handler fanning out to handlers.
func NewMultiHandler(handlers ...slog.Handler) *MultiHandler {
	return &MultiHandler{handlers: handlers}
}

// Enabled reports whether any handler accepts level.
func (m *MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle passes r to every enabled handler and joins their errors.
func (m *MultiHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range m.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// WithAttrs returns a MultiHandler whose handlers all carry attrs.
func (m *MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithAttrs(attrs)
	}
	return &MultiHandler{handlers: handlers}
}

// WithGroup returns a MultiHandler whose handlers all open group name.
func (m *MultiHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithGroup(name)
	}
	return &MultiHandler{handlers: handlers}
}

// NewSecureLogger creates a text logger writing to w with sanitization.
// verbose selects debug level; otherwise only warnings and errors appear.
func NewSecureLogger(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(NewSecureHandler(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: consoleLevel(verbose),
	})))
}

// Options configures NewSpiderLogger.
type Options struct {
	// Dir is the directory for spider.log and spider.log.wf.
	// Empty disables file logging.
	Dir string

	// Console receives human-facing output, usually os.Stderr.
	// Nil disables console logging.
	Console io.Writer

	// Verbose lowers the console level to debug.
	Verbose bool
}

// NewSpiderLogger creates the crawl logger. Records go to
//   - Dir/spider.log at info level and above,
//   - Dir/spider.log.wf at warn level and above,
//   - Console at debug level when Verbose, else warn and above.
//
// The files rotate through lumberjack. The returned io.Closer closes them
// and must be called when the crawl ends.
func NewSpiderLogger(opts Options) (*slog.Logger, io.Closer, error) {
	handlers := make([]slog.Handler, 0, 3)
	closers := make(multiCloser, 0, 2)

	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		info := newRotatingFile(filepath.Join(opts.Dir, InfoLogFile))
		warn := newRotatingFile(filepath.Join(opts.Dir, WarningLogFile))
		closers = append(closers, info, warn)

		handlers = append(handlers,
			slog.NewTextHandler(info, &slog.HandlerOptions{Level: slog.LevelInfo}),
			slog.NewTextHandler(warn, &slog.HandlerOptions{Level: slog.LevelWarn}),
		)
	}

	if opts.Console != nil {
		handlers = append(handlers, slog.NewTextHandler(opts.Console, &slog.HandlerOptions{
			Level: consoleLevel(opts.Verbose),
		}))
	}

	logger := slog.New(NewSecureHandler(NewMultiHandler(handlers...)))
	return logger, closers, nil
}

func newRotatingFile(path string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxLogSizeMB,
		MaxBackups: maxLogBackups,
		MaxAge:     maxLogAgeDays,
		LocalTime:  true,
	}
}

func consoleLevel(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}

// multiCloser closes every closer and joins the errors.
type multiCloser []io.Closer

func (m multiCloser) Close() error {
	var errs []error
	for _, c := range m {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
