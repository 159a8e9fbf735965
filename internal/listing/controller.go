// Package listing holds the pagination controller, the page-number window and
// the client-side facet filter shared by every collection page.
package listing

import (
	"context"
	"sync"

	"github.com/mosaic-hrd/website/internal/domain"
)

// Fetcher loads one page. It must not fail; failures come back as empty pages.
type Fetcher[T any] func(ctx context.Context, page int) (domain.PageResult[T], []domain.Tag)

// State is the controller's loading state.
type State int

const (
	Idle State = iota
	Loading
)

func (s State) String() string {
	if s == Loading {
		return "loading"
	}
	return "idle"
}

// Snapshot is a consistent view of the controller. During Loading, Result is
// the previous page.
type Snapshot[T domain.Listable] struct {
	State  State
	Result domain.PageResult[T]
	Tags   []domain.Tag
	Filter FilterState
}

// Controller owns the current page of one collection.
//
// Every Load or RequestPage is stamped with a sequence number; a response is
// applied only when its number is still the latest issued and the controller
// has not been detached.
type Controller[T domain.Listable] struct {
	fetch Fetcher[T]

	mu       sync.Mutex
	seq      uint64
	state    State
	result   domain.PageResult[T]
	tags     []domain.Tag
	filter   FilterState
	detached bool
}

// NewController returns an Idle controller holding the empty page.
func NewController[T domain.Listable](fetch Fetcher[T]) *Controller[T] {
	return &Controller[T]{
		fetch:  fetch,
		result: domain.EmptyPage[T](),
		tags:   []domain.Tag{},
	}
}

// Load fetches page without an upper bound check. page < 1 loads page 1.
func (c *Controller[T]) Load(ctx context.Context, page int) Snapshot[T] {
	if page < 1 {
		page = 1
	}
	return c.run(ctx, page)
}

// RequestPage moves to page n. It is a no-op returning false when n is
// outside 1..TotalPages or the controller is detached.
func (c *Controller[T]) RequestPage(ctx context.Context, n int) (Snapshot[T], bool) {
	c.mu.Lock()
	if c.detached || n < 1 || n > c.result.TotalPages {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap, false
	}
	c.mu.Unlock()
	return c.run(ctx, n), true
}

func (c *Controller[T]) run(ctx context.Context, page int) Snapshot[T] {
	c.mu.Lock()
	if c.detached {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap
	}
	c.seq++
	ticket := c.seq
	c.state = Loading
	c.mu.Unlock()

	result, tags := c.fetch(ctx, page)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.detached || ticket != c.seq {
		return c.snapshotLocked()
	}
	if tags == nil {
		tags = []domain.Tag{}
	}
	c.result = result
	c.tags = tags
	c.state = Idle
	return c.snapshotLocked()
}

// Detach marks the consumer gone. Late responses are dropped and the filter
// is reset.
func (c *Controller[T]) Detach() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.detached = true
	c.filter = FilterState{}
}

// SetFilter replaces the filter state.
func (c *Controller[T]) SetFilter(f FilterState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filter = f
}

// Snapshot returns the current state.
func (c *Controller[T]) Snapshot() Snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller[T]) snapshotLocked() Snapshot[T] {
	return Snapshot[T]{
		State:  c.state,
		Result: c.result,
		Tags:   c.tags,
		Filter: c.filter,
	}
}

// Visible returns the loaded items narrowed by the filter.
func (s Snapshot[T]) Visible() []T {
	return Apply(s.Filter, s.Result.Items, s.Tags)
}

// ShowPagination reports whether page controls should render. Filtering and
// pagination are mutually exclusive.
func (s Snapshot[T]) ShowPagination() bool {
	return !s.Filter.Active() && s.Result.TotalPages > 1
}

// Window is the page-number window for the snapshot.
func (s Snapshot[T]) Window() []PageLink {
	return Window(s.Result.CurrentPage, s.Result.TotalPages)
}
