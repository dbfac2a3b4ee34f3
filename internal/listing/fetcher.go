package listing

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/jmylchreest/kinoteka/pkg/catalog"
)

// Source fetches one page of a listing for an encoded request query.
type Source[T any] interface {
	Fetch(ctx context.Context, query string) (*catalog.Page[T], error)
}

// SourceFunc adapts a function to Source.
type SourceFunc[T any] func(ctx context.Context, query string) (*catalog.Page[T], error)

// Fetch calls f.
func (f SourceFunc[T]) Fetch(ctx context.Context, query string) (*catalog.Page[T], error) {
	return f(ctx, query)
}

// Snapshot is what a listing shows at one moment.
type Snapshot[T any] struct {
	// Items of the last successful load. Kept in place when a later
	// request fails.
	Items []T

	// Pagination of the last successful load.
	Pagination catalog.Pagination

	// Loading is true while the latest request is in flight.
	Loading bool

	// Err is the error of the latest request, until dismissed.
	Err error

	// Loaded is true once any request succeeded.
	Loaded bool

	// Query is the request query of the latest request.
	Query string
}

// Message returns the user-facing text of Err.
func (s Snapshot[T]) Message() string {
	return Message(s.Err)
}

// FetcherOptions configures a Fetcher.
type FetcherOptions struct {
	// Timeout bounds each request. Zero means no timeout.
	Timeout time.Duration

	// Logger defaults to slog.Default.
	Logger *slog.Logger

	// OnChange is called after every applied result, on the fetching
	// goroutine and without any lock held.
	OnChange func()
}

// Fetcher loads one page of results per request, applying only the result of
// the latest request while the fetcher is open.
//
// Every request gets a generation number and its own context. A new request
// cancels the one in flight; a result whose generation is no longer the
// latest is discarded whatever order responses arrive in.
type Fetcher[T any] struct {
	source Source[T]
	opts   FetcherOptions
	logger *slog.Logger

	ctx      context.Context
	cancelFn context.CancelFunc

	mu       sync.Mutex
	gen      uint64
	inFlight context.CancelFunc
	key      string
	snap     Snapshot[T]
	idle     chan struct{}
	closed   bool
	requests int
}

// NewFetcher returns a fetcher bound to ctx. Cancelling ctx, or calling
// Close, stops every request and freezes the snapshot.
func NewFetcher[T any](ctx context.Context, source Source[T], opts FetcherOptions) *Fetcher[T] {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(ctx)
	idle := make(chan struct{})
	close(idle)
	return &Fetcher[T]{
		source:   source,
		opts:     opts,
		logger:   logger,
		ctx:      ctx,
		cancelFn: cancel,
		idle:     idle,
	}
}

// Request loads query. It is skipped, returning false, when query equals the
// latest request still in flight or last succeeded, unless force is set.
func (f *Fetcher[T]) Request(query string, force bool) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed || f.ctx.Err() != nil {
		return false
	}
	if !force && f.key != "" && query == f.key {
		f.logger.Debug("skipping identical listing request", slog.String("query", query))
		return false
	}

	if f.inFlight != nil {
		f.inFlight()
	}

	f.gen++
	gen := f.gen

	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if f.opts.Timeout > 0 {
		ctx, cancel = context.WithTimeout(f.ctx, f.opts.Timeout)
	} else {
		ctx, cancel = context.WithCancel(f.ctx)
	}
	f.inFlight = cancel
	f.key = query
	f.requests++

	f.snap.Loading = true
	f.snap.Query = query
	select {
	case <-f.idle:
		f.idle = make(chan struct{})
	default:
	}

	f.logger.Debug("requesting listing page",
		slog.String("query", query),
		slog.Uint64("generation", gen),
	)

	go func() {
		page, err := f.source.Fetch(ctx, query)
		cancel()
		f.finish(gen, page, err)
	}()
	return true
}

// Refresh re-issues the latest request.
func (f *Fetcher[T]) Refresh() bool {
	f.mu.Lock()
	query, issued := f.snap.Query, f.requests > 0
	f.mu.Unlock()
	if !issued {
		return false
	}
	return f.Request(query, true)
}

func (f *Fetcher[T]) finish(gen uint64, page *catalog.Page[T], err error) {
	f.mu.Lock()

	if f.closed || gen != f.gen || f.ctx.Err() != nil {
		if !f.closed && gen == f.gen {
			// the parent context ended without Close
			f.inFlight = nil
			f.snap.Loading = false
			close(f.idle)
		}
		f.mu.Unlock()
		f.logger.Debug("discarding stale listing response", slog.Uint64("generation", gen))
		return
	}

	f.inFlight = nil
	f.snap.Loading = false

	switch {
	case err == nil && page != nil:
		items := page.Items
		if items == nil {
			items = []T{}
		}
		f.snap.Items = items
		f.snap.Pagination = page.Pagination
		f.snap.Err = nil
		f.snap.Loaded = true

	case errors.Is(err, context.Canceled):
		// cancelled with the page, nothing to report
		f.key = ""

	default:
		if err == nil {
			err = errors.New("empty response")
		}
		f.logger.Warn("listing request failed",
			slog.String("query", f.snap.Query),
			slog.String("error", err.Error()),
		)
		f.snap.Err = err
		if !f.snap.Loaded {
			f.snap.Items = []T{}
		}
		// a failed query may be retried as is
		f.key = ""
	}

	close(f.idle)
	onChange := f.opts.OnChange
	f.mu.Unlock()

	if onChange != nil {
		onChange()
	}
}

// Snapshot returns a copy of the current snapshot.
func (f *Fetcher[T]) Snapshot() Snapshot[T] {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.snap
	out.Items = slices.Clone(f.snap.Items)
	return out
}

// DismissError clears the error shown with the snapshot.
func (f *Fetcher[T]) DismissError() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snap.Err = nil
}

// Requests returns how many requests were issued.
func (f *Fetcher[T]) Requests() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests
}

// Wait blocks until no request is in flight or ctx is done.
func (f *Fetcher[T]) Wait(ctx context.Context) error {
	f.mu.Lock()
	idle := f.idle
	f.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close cancels every request. Results arriving afterwards are discarded.
func (f *Fetcher[T]) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	f.cancelFn()
	f.inFlight = nil
	f.snap.Loading = false
	select {
	case <-f.idle:
	default:
		close(f.idle)
	}
}
