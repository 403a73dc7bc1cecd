package crawler

import (
	"fmt"
	"regexp"
	"time"
)

// Policy holds the crawl settings shared by every worker.
// It is built once before the run and only read afterwards, so workers
// access it without locking.
type Policy struct {
	// MaxDepth is the deepest level that is fetched. Pages at MaxDepth are
	// fetched (and saved if they match) but their links are not followed.
	MaxDepth int

	// CrawlInterval is how long each worker sleeps after every item.
	CrawlInterval time.Duration

	// CrawlTimeout bounds each fetch and each wait on an empty frontier.
	CrawlTimeout time.Duration

	// TargetPattern selects the URLs whose pages are saved.
	// Compile it with CompileTargetPattern.
	TargetPattern *regexp.Regexp

	// OutputDirectory is where matching pages are written.
	OutputDirectory string
}

// CompileTargetPattern compiles a target URL expression. The expression is
// anchored at the start of the URL, so ".*\.png$" matches any URL ending in
// ".png" while "png" only matches URLs that start with "png".
func CompileTargetPattern(expr string) (*regexp.Regexp, error) {
	re, err := regexp.Compile("^(?:" + expr + ")")
	if err != nil {
		return nil, fmt.Errorf("invalid target pattern %q: %w", expr, err)
	}
	return re, nil
}

// Matches reports whether rawURL should be saved.
func (p Policy) Matches(rawURL string) bool {
	return p.TargetPattern != nil && p.TargetPattern.MatchString(rawURL)
}
