package crawler

import "sync"

// VisitedSet records every URL that has been queued during a run.
// It is shared by all workers and never shrinks.
//
// The only way to add a URL is AddIfAbsent, which tests and inserts under a
// single lock acquisition. A separate "contains" check followed by an "add"
// would let two workers both see the URL as new and queue it twice.
type VisitedSet struct {
	mu   sync.Mutex
	urls map[string]struct{}
}

// NewVisitedSet creates an empty VisitedSet.
func NewVisitedSet() *VisitedSet {
	return &VisitedSet{
		urls: make(map[string]struct{}),
	}
}

// AddIfAbsent adds rawURL to the set and reports whether it was newly added.
// Exactly one of any number of concurrent callers for the same URL gets true.
func (v *VisitedSet) AddIfAbsent(rawURL string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, ok := v.urls[rawURL]; ok {
		return false
	}
	v.urls[rawURL] = struct{}{}
	return true
}

// Len returns the number of URLs in the set.
func (v *VisitedSet) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.urls)
}
