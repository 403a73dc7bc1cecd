package model

import (
	"sort"
	"time"
)

// RunSettings is the crawl configuration a run was started with.
type RunSettings struct {
	MaxDepth        int           `json:"max_depth"`
	CrawlInterval   time.Duration `json:"crawl_interval"`
	CrawlTimeout    time.Duration `json:"crawl_timeout"`
	TargetPattern   string        `json:"target_pattern"`
	OutputDirectory string        `json:"output_directory"`
	ThreadCount     int           `json:"thread_count"`
}

// Run summarizes one crawl run.
type Run struct {
	// ID uniquely identifies the run (a UUID).
	ID string `json:"id"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is when the run ended. Zero while running or if the
	// process died before the run could be closed.
	FinishedAt time.Time `json:"finished_at,omitempty"`

	// Seeds are the crawl roots.
	Seeds []string `json:"seeds"`

	// Settings is the policy the run used.
	Settings RunSettings `json:"settings"`

	// Fetched counts successful fetches.
	Fetched int `json:"fetched"`

	// Failed counts failed fetches.
	Failed int `json:"failed"`

	// Saved counts pages written to the output directory.
	Saved int `json:"saved"`

	// Queued counts items pushed to the frontier, seeds included.
	Queued int `json:"queued"`

	// Error is the run-fatal error, if the run stopped early.
	Error string `json:"error,omitempty"`
}

// Finished reports whether the run was closed.
func (r Run) Finished() bool {
	return !r.FinishedAt.IsZero()
}

// Duration returns how long the run took, or zero if it never finished.
func (r Run) Duration() time.Duration {
	if !r.Finished() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// RunReport is a run together with the records of every fetch it made.
type RunReport struct {
	Run     Run           `json:"run"`
	Fetches []FetchRecord `json:"fetches"`
}

// SavedPages returns the records of pages that were saved, ordered by URL.
func (r *RunReport) SavedPages() []FetchRecord {
	saved := make([]FetchRecord, 0)
	for _, f := range r.Fetches {
		if f.Saved() {
			saved = append(saved, f)
		}
	}
	sort.Slice(saved, func(i, j int) bool { return saved[i].URL < saved[j].URL })
	return saved
}

// FailedFetches returns the records of failed fetches, ordered by URL.
func (r *RunReport) FailedFetches() []FetchRecord {
	failed := make([]FetchRecord, 0)
	for _, f := range r.Fetches {
		if !f.Success {
			failed = append(failed, f)
		}
	}
	sort.Slice(failed, func(i, j int) bool { return failed[i].URL < failed[j].URL })
	return failed
}

// DepthHistogram returns the number of fetches per depth, indexed by depth.
func (r *RunReport) DepthHistogram() []int {
	maxDepth := -1
	for _, f := range r.Fetches {
		if f.Depth > maxDepth {
			maxDepth = f.Depth
		}
	}
	hist := make([]int, maxDepth+1)
	for _, f := range r.Fetches {
		hist[f.Depth]++
	}
	return hist
}
