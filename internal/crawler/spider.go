package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/minispider/internal/model"
)

// DefaultThreadCount is the number of workers used when none is configured.
const DefaultThreadCount = 8

// ErrNoSeeds is returned by Crawl when no usable seed URL was given.
var ErrNoSeeds = errors.New("no valid seed URLs")

// Recorder receives the outcome of every fetch. The crawl journal
// implements it.
type Recorder interface {
	RecordFetch(ctx context.Context, record model.FetchRecord) error
}

// Stats summarizes a finished crawl.
type Stats struct {
	// Seeds is the number of seeds that were queued.
	Seeds int

	// Fetched counts fetches that returned a 2xx status.
	Fetched int

	// Failed counts fetches that did not.
	Failed int

	// Saved counts pages written by the sink.
	Saved int

	// Queued counts every item pushed to the frontier, seeds included.
	Queued int

	// Visited is the size of the visited set when the run ended.
	Visited int
}

// counters are the live, shared versions of the Stats fields.
type counters struct {
	fetched atomic.Int64
	failed  atomic.Int64
	saved   atomic.Int64
	queued  atomic.Int64
}

// Spider runs a breadth-first crawl with a fixed number of workers.
// A Spider may run several crawls one after another; each call to Crawl
// starts with an empty frontier and visited set.
type Spider struct {
	// policy is the crawl configuration shared by all workers.
	policy Policy

	// threadCount is the number of concurrent workers.
	threadCount int

	// fetcher downloads pages.
	fetcher *Fetcher

	// extractor finds links in HTML pages.
	extractor *LinkExtractor

	// sink stores pages matching the target pattern.
	sink PageSink

	// recorder, if set, receives every fetch outcome.
	recorder Recorder

	// logger receives crawl events.
	logger *slog.Logger
}

// SpiderOption configures a Spider.
type SpiderOption func(*Spider)

// WithThreadCount sets the number of workers. Values below 1 are ignored.
func WithThreadCount(n int) SpiderOption {
	return func(s *Spider) {
		if n > 0 {
			s.threadCount = n
		}
	}
}

// WithFetcher sets the fetcher used by the workers.
func WithFetcher(f *Fetcher) SpiderOption {
	return func(s *Spider) {
		s.fetcher = f
	}
}

// WithSink sets where matching pages are stored.
// The default writes files under Policy.OutputDirectory.
func WithSink(sink PageSink) SpiderOption {
	return func(s *Spider) {
		s.sink = sink
	}
}

// WithRecorder sets a recorder for fetch outcomes.
func WithRecorder(r Recorder) SpiderOption {
	return func(s *Spider) {
		s.recorder = r
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) SpiderOption {
	return func(s *Spider) {
		s.logger = logger
	}
}

// NewSpider creates a Spider for the given policy.
func NewSpider(policy Policy, opts ...SpiderOption) *Spider {
	s := &Spider{
		policy:      policy,
		threadCount: DefaultThreadCount,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.fetcher == nil {
		s.fetcher = NewFetcher(nil)
	}
	if s.sink == nil {
		s.sink = NewFileSink(policy.OutputDirectory)
	}
	s.extractor = NewLinkExtractor(s.logger)
	return s
}

// Crawl queues the seeds at depth 0 and runs the workers until every
// reachable item within the depth limit has been processed.
//
// It returns an error wrapping ErrPersist if a page could not be saved,
// the context error if ctx ended first, and ErrNoSeeds if none of the
// seeds is an absolute http or https URL. Stats are returned in all cases.
func (s *Spider) Crawl(ctx context.Context, seeds []string) (Stats, error) {
	frontier := NewFrontier()
	visited := NewVisitedSet()
	cnt := &counters{}

	queued := 0
	for _, seed := range seeds {
		seed = strings.TrimSpace(seed)
		if err := validateSeed(seed); err != nil {
			s.logger.Warn("skipping seed", "seed", seed, "error", err)
			continue
		}
		if !visited.AddIfAbsent(seed) {
			continue
		}
		frontier.Push(Item{URL: seed, Depth: 0})
		queued++
	}
	cnt.queued.Add(int64(queued))

	if queued == 0 {
		return Stats{}, ErrNoSeeds
	}

	s.logger.Info("crawl started",
		"seeds", queued,
		"threads", s.threadCount,
		"max_depth", s.policy.MaxDepth,
	)

	g, gctx := errgroup.WithContext(ctx)
	workerCtx, stop := context.WithCancel(gctx)
	defer stop()

	for i := 0; i < s.threadCount; i++ {
		w := &worker{
			id:        i,
			policy:    s.policy,
			frontier:  frontier,
			visited:   visited,
			fetcher:   s.fetcher,
			extractor: s.extractor,
			sink:      s.sink,
			recorder:  s.recorder,
			counters:  cnt,
			logger:    s.logger.With("worker", i),
		}
		g.Go(func() error {
			return w.run(workerCtx)
		})
	}

	// Join returns when every pushed item is done or when a worker failed
	// and errgroup cancelled gctx. Either way the workers are told to stop.
	joinErr := frontier.Join(gctx)
	stop()
	waitErr := g.Wait()
	if joinErr == nil {
		// The frontier may drain while a cancelled run winds down.
		joinErr = ctx.Err()
	}

	stats := Stats{
		Seeds:   queued,
		Fetched: int(cnt.fetched.Load()),
		Failed:  int(cnt.failed.Load()),
		Saved:   int(cnt.saved.Load()),
		Queued:  int(cnt.queued.Load()),
		Visited: visited.Len(),
	}

	switch {
	case waitErr != nil:
		s.logger.Error("crawl aborted", "error", waitErr)
		return stats, waitErr
	case joinErr != nil:
		s.logger.Warn("crawl cancelled", "error", joinErr)
		return stats, joinErr
	}

	s.logger.Info("crawl finished",
		"fetched", stats.Fetched,
		"failed", stats.Failed,
		"saved", stats.Saved,
		"queued", stats.Queued,
	)
	return stats, nil
}

// validateSeed checks that seed is an absolute http or https URL.
func validateSeed(seed string) error {
	if seed == "" {
		return errors.New("empty URL")
	}
	u, err := url.Parse(seed)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("missing host")
	}
	return nil
}
