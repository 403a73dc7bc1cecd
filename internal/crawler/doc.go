// Package crawler provides the concurrent breadth-first crawl engine.
//
// # Architecture
//
// The package is designed around the Spider type, which drives one crawl run.
// A Spider owns a Frontier (FIFO work queue of URL/depth pairs) and a
// VisitedSet (URLs already enqueued), and starts a fixed number of workers
// that drain the Frontier until every queued item has been processed.
//
// # Components
//
//   - Spider: runs the crawl and reports Stats
//   - Frontier: thread-safe FIFO queue with completion tracking
//   - VisitedSet: mutex-guarded set with a single AddIfAbsent operation
//   - Fetcher: one bounded-timeout HTTP GET per URL
//   - LinkExtractor: pulls a/link/script/img references out of HTML
//   - Resolve: joins a link against its page URL and cleans the path
//   - PageSink: persists pages whose URL matches the target pattern
//
// # Per-item algorithm
//
// Each worker pulls an Item, fetches it, saves the body if the URL matches
// the target pattern, and, while the item is shallower than the maximum
// depth and the page is HTML, queues every newly seen link at depth+1.
// The worker then sleeps for the crawl interval before marking the item done.
//
// # Failure handling
//
// Fetch failures and malformed content only affect the URL at hand: they are
// logged and the worker moves on. A PageSink failure means the output
// location is unusable, so it stops the whole run and is returned from
// Spider.Crawl.
//
// # Usage
//
//	spider := crawler.NewSpider(policy, crawler.WithThreadCount(8))
//	stats, err := spider.Crawl(ctx, seeds)
package crawler
