package crawler

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"time"

	"github.com/nao1215/minispider/internal/model"
)

// worker is one concurrently running crawl-and-expand loop.
// Everything it shares with other workers is passed in explicitly; the
// only shared mutable state is the frontier, the visited set and the
// atomic counters.
type worker struct {
	id        int
	policy    Policy
	frontier  *Frontier
	visited   *VisitedSet
	fetcher   *Fetcher
	extractor *LinkExtractor
	sink      PageSink
	recorder  Recorder
	counters  *counters
	logger    *slog.Logger
}

// run pulls and processes items until ctx ends. It returns a non-nil error
// only for run-fatal conditions (a PageSink failure).
func (w *worker) run(ctx context.Context) error {
	w.logger.Debug("worker started", "id", w.id)
	for {
		item, err := w.frontier.Pull(ctx, w.policy.CrawlTimeout)
		if errors.Is(err, ErrPullTimeout) {
			continue
		}
		if err != nil {
			// The run is over or was cancelled.
			return nil
		}

		if err := w.crawl(ctx, item); err != nil {
			w.frontier.TaskDone()
			return err
		}

		w.sleep(ctx)
		w.frontier.TaskDone()
	}
}

// crawl fetches one item, saves it if it matches the target pattern and
// queues its links while the depth limit allows.
func (w *worker) crawl(ctx context.Context, item Item) error {
	result := w.fetcher.Fetch(ctx, item.URL, w.policy.CrawlTimeout)
	record := model.FetchRecord{
		URL:         item.URL,
		Depth:       item.Depth,
		StatusCode:  result.StatusCode,
		ContentType: result.ContentType,
		Success:     result.Success,
	}

	if !result.Success {
		w.counters.failed.Add(1)
		w.logFetchFailure(item, result)
		record.Error = errorText(result.Err)
		w.record(ctx, record)
		return nil
	}
	w.counters.fetched.Add(1)
	record.Digest = model.ComputeDigest(result.Body)

	if w.policy.Matches(item.URL) {
		path, err := w.sink.Save(item.URL, result.Body)
		if err != nil {
			w.logger.Error("failed to save page", "url", item.URL, "error", err)
			return err
		}
		w.counters.saved.Add(1)
		record.SavedPath = path
		w.logger.Info("saved page", "url", item.URL, "path", path)
	}

	if item.Depth < w.policy.MaxDepth && IsHTML(result.ContentType) {
		w.expand(item, result)
	}

	w.record(ctx, record)
	return nil
}

// expand extracts the links of a fetched page and queues every URL not seen
// before at the next depth. The visited set is updated before the push, so a
// URL is never queued twice even when several workers find it at once.
func (w *worker) expand(item Item, result FetchResult) {
	base, err := url.Parse(item.URL)
	if err != nil {
		w.logger.Debug("cannot parse page URL", "url", item.URL, "error", err)
		return
	}

	for _, link := range w.extractor.Extract(result.Body, result.ContentTypeHeader) {
		next, err := Resolve(base, link)
		if err != nil {
			w.logger.Debug("skipping unresolvable link", "page", item.URL, "link", link, "error", err)
			continue
		}
		if next.Scheme != "http" && next.Scheme != "https" {
			w.logger.Debug("skipping non-HTTP link", "page", item.URL, "link", link)
			continue
		}

		nextURL := next.String()
		if !w.visited.AddIfAbsent(nextURL) {
			continue
		}
		w.frontier.Push(Item{URL: nextURL, Depth: item.Depth + 1})
		w.counters.queued.Add(1)
	}
}

// logFetchFailure logs transport failures at warn and HTTP status failures
// at info.
func (w *worker) logFetchFailure(item Item, result FetchResult) {
	if result.StatusCode == 0 {
		w.logger.Warn("failed to fetch url",
			"url", item.URL,
			"depth", item.Depth,
			"error", result.Err,
		)
		return
	}
	w.logger.Info("failed to fetch url",
		"url", item.URL,
		"depth", item.Depth,
		"status", result.StatusCode,
	)
}

// record hands the fetch outcome to the recorder. Recorder failures are
// logged and otherwise ignored: the journal is not the crawl's output.
func (w *worker) record(ctx context.Context, record model.FetchRecord) {
	if w.recorder == nil {
		return
	}
	record.FetchedAt = time.Now()
	if err := w.recorder.RecordFetch(ctx, record); err != nil {
		w.logger.Warn("failed to record fetch", "url", record.URL, "error", err)
	}
}

// sleep waits CrawlInterval, returning early if ctx ends.
func (w *worker) sleep(ctx context.Context) {
	if w.policy.CrawlInterval <= 0 {
		return
	}
	timer := time.NewTimer(w.policy.CrawlInterval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
