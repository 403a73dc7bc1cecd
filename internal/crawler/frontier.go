package crawler

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrPullTimeout is returned by Frontier.Pull when no item became available
// within the requested timeout.
var ErrPullTimeout = errors.New("frontier: pull timed out")

// Item is one unit of crawl work: a URL and its breadth-first distance from
// the seed that led to it. Items are values and are never modified after
// they are created.
type Item struct {
	// URL is the absolute URL to fetch.
	URL string

	// Depth is 0 for seeds and parent depth + 1 for discovered links.
	Depth int
}

// Frontier is the shared FIFO work queue of a crawl run.
// It is safe for any number of concurrent producers and consumers.
//
// FIFO order gives breadth-first expansion: depth d+1 items are only pushed
// while depth d items are processed, so with a single consumer every depth d
// item is pulled before any depth d+1 item.
//
// Besides the queue itself, the Frontier counts pending items (pushed but not
// yet acknowledged with TaskDone). Join uses that count to detect the end of
// the run.
type Frontier struct {
	mu sync.Mutex

	// items holds queued items in push order.
	items []Item

	// pending is the number of pushed items not yet marked done.
	pending int

	// ready is closed and replaced whenever an item is pushed,
	// waking every blocked Pull.
	ready chan struct{}

	// idle is closed and replaced whenever pending drops to zero.
	idle chan struct{}
}

// NewFrontier creates an empty Frontier.
func NewFrontier() *Frontier {
	return &Frontier{
		items: make([]Item, 0),
		ready: make(chan struct{}),
		idle:  make(chan struct{}),
	}
}

// Push appends an item to the queue. The queue is unbounded, so Push never
// blocks and never fails.
func (f *Frontier) Push(item Item) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.items = append(f.items, item)
	f.pending++

	close(f.ready)
	f.ready = make(chan struct{})
}

// Pull removes and returns the oldest item, blocking until one is available.
// It returns ErrPullTimeout if nothing arrives within timeout, or ctx.Err()
// if the context ends first. A non-positive timeout waits without limit.
//
// Every successful Pull must be followed by exactly one TaskDone.
func (f *Frontier) Pull(ctx context.Context, timeout time.Duration) (Item, error) {
	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	for {
		f.mu.Lock()
		if len(f.items) > 0 {
			item := f.items[0]
			f.items[0] = Item{}
			f.items = f.items[1:]
			f.mu.Unlock()
			return item, nil
		}
		ready := f.ready
		f.mu.Unlock()

		select {
		case <-ready:
		case <-expired:
			return Item{}, ErrPullTimeout
		case <-ctx.Done():
			return Item{}, ctx.Err()
		}
	}
}

// TaskDone marks one previously pulled item as fully processed.
// Calling it more times than items were pushed is a programming error and
// panics, like a negative sync.WaitGroup counter.
func (f *Frontier) TaskDone() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.pending <= 0 {
		panic("crawler: Frontier.TaskDone called more times than items were pushed")
	}
	f.pending--
	if f.pending == 0 {
		close(f.idle)
		f.idle = make(chan struct{})
	}
}

// Join blocks until the queue is empty and every pulled item has been marked
// done, or until ctx ends. It returns nil when the frontier is drained.
func (f *Frontier) Join(ctx context.Context) error {
	for {
		f.mu.Lock()
		if f.pending == 0 {
			f.mu.Unlock()
			return nil
		}
		idle := f.idle
		f.mu.Unlock()

		select {
		case <-idle:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Len returns the number of queued items that have not been pulled yet.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

// Pending returns the number of pushed items not yet marked done.
func (f *Frontier) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pending
}
