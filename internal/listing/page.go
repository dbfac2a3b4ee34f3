// Package listing drives one listing page: the filter panel, the committed
// state, its mirror in the location's query string, and the fetch of the
// matching page of results.
package listing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jmylchreest/kinoteka/internal/observability"
	"github.com/jmylchreest/kinoteka/pkg/listing"
)

// ErrUnknownSortField is returned by SetSort for a column the listing
// cannot be sorted by.
var ErrUnknownSortField = errors.New("unknown sort field")

// ErrClosed is returned by Mount after Close.
var ErrClosed = errors.New("listing page closed")

// Default page settings.
const (
	DefaultPerPage      = 20
	DefaultDebounce     = 300 * time.Millisecond
	DefaultPageSiblings = 2
)

// Options configures a Page.
type Options struct {
	Kind     listing.Kind
	Location Location

	// PerPage is sent as per_page with every backend request.
	PerPage int

	// Debounce delays committing the free-text field. Zero commits on
	// every SetText.
	Debounce time.Duration

	// Timeout bounds each backend request. Zero means no timeout.
	Timeout time.Duration

	YearDisplayLimit int
	MinYear          int
	PageSiblings     int

	// Now defaults to time.Now; it fixes the newest selectable year.
	Now func() time.Time

	Logger *slog.Logger

	// OnChange is called after every fetched result is applied.
	OnChange func()
}

// Page is a listing page. Committed state only changes through Search,
// Clear, SetText, SetPage, SetSort and external navigation of the Location;
// every change is written to the Location and fetched.
type Page[T any] struct {
	opts     Options
	source   Source[T]
	codec    listing.Codec
	location Location
	logger   *slog.Logger
	panel    *Panel
	text     *debouncer

	mu          sync.Mutex
	fetcher     *Fetcher[T]
	state       listing.State
	mounted     bool
	closed      bool
	unsubscribe func()
}

// NewPage returns an unmounted page fetching from source.
func NewPage[T any](source Source[T], opts Options) *Page[T] {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Location == nil {
		opts.Location = NewMemoryHistory("")
	}
	if opts.PerPage <= 0 {
		opts.PerPage = DefaultPerPage
	}
	if opts.MinYear <= 0 {
		opts.MinYear = listing.MinYear
	}
	if opts.PageSiblings < 0 {
		opts.PageSiblings = DefaultPageSiblings
	}

	now := opts.Now()
	codec := listing.NewCodec(opts.Kind, now)
	codec.MinYear = opts.MinYear

	return &Page[T]{
		opts:     opts,
		source:   source,
		codec:    codec,
		location: opts.Location,
		logger:   observability.WithListing(opts.Logger, opts.Kind.Name),
		panel:    NewPanel(opts.Kind, listing.Years(now, opts.MinYear), opts.YearDisplayLimit),
		text:     newDebouncer(opts.Debounce),
		state:    opts.Kind.DefaultState(),
	}
}

// Mount reads the state from the location, rewrites the location in
// canonical form, starts listening for navigation and fetches the first
// page. Cancelling ctx has the same effect as Close on pending results.
func (p *Page[T]) Mount(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}
	if p.mounted {
		return nil
	}
	p.mounted = true

	p.fetcher = NewFetcher(ctx, p.source, FetcherOptions{
		Timeout:  p.opts.Timeout,
		Logger:   p.logger,
		OnChange: p.opts.OnChange,
	})

	raw := trimQuery(p.location.Query())
	p.state = p.codec.Decode(raw)
	p.panel.Close()
	canonical := p.codec.Encode(p.state)
	if canonical != raw {
		p.location.Replace(canonical)
	}
	p.unsubscribe = p.location.Subscribe(p.onNavigate)

	p.logger.Debug("listing page mounted", slog.String("query", canonical))
	p.fetchLocked(false)
	return nil
}

// Close unmounts the page. In-flight requests are cancelled and no result
// is applied afterwards.
func (p *Page[T]) Close() {
	p.text.Stop()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	if p.unsubscribe != nil {
		p.unsubscribe()
	}
	if p.fetcher != nil {
		p.fetcher.Close()
	}
	p.logger.Debug("listing page closed")
}

// OpenPanel seeds the filter panel from the committed filters and returns it.
func (p *Page[T]) OpenPanel() *Panel {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.panel.Open(p.state.Filters)
	return p.panel
}

// Panel returns the filter panel. A panel that is not open is first seeded
// from the committed filters, so edits always start from what is applied.
func (p *Page[T]) Panel() *Panel {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.panelLocked()
}

func (p *Page[T]) panelLocked() *Panel {
	if !p.panel.IsOpen() {
		p.panel.Open(p.state.Filters)
	}
	return p.panel
}

// Search commits the staged filters on page 1, keeping the free text and
// the sort. It reports whether a request was issued; a commit identical to
// the current state issues none.
func (p *Page[T]) Search() bool {
	p.text.Flush()

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.active() {
		return false
	}

	staged := p.panelLocked().Filters()
	staged.Text = p.state.Filters.Text
	return p.commitLocked(p.state.WithFilters(p.opts.Kind.Restrict(staged)), false, "search")
}

// Clear empties the staged and the committed filters, free text included,
// and fetches page 1. It always issues exactly one request.
func (p *Page[T]) Clear() bool {
	p.text.Stop()

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.active() {
		return false
	}

	p.panel.Clear()
	next := listing.State{Sort: p.state.Sort, Page: 1}
	return p.commitLocked(next, true, "clear")
}

// SetText updates the live free-text field. The change is committed after
// the debounce delay, back on page 1.
func (p *Page[T]) SetText(text string) {
	p.text.Trigger(func() { p.applyText(text) })
}

// FlushText commits a debounced text change now.
func (p *Page[T]) FlushText() {
	p.text.Flush()
}

func (p *Page[T]) applyText(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.active() {
		return
	}
	next := p.state.Clone()
	next.Filters.Text = text
	next.Page = 1
	p.commitLocked(next, false, "text")
}

// SetPage moves to page n, clamped to the known page count.
func (p *Page[T]) SetPage(n int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.active() {
		return false
	}
	if total := p.fetcher.Snapshot().Pagination.TotalPages; total > 0 && n > total {
		n = total
	}
	return p.commitLocked(p.state.WithPage(n), false, "page")
}

// SetSort sorts by field in order, back on page 1. An empty order means
// ascending.
func (p *Page[T]) SetSort(field string, order listing.SortOrder) (bool, error) {
	if !p.opts.Kind.SortableBy(field) {
		return false, fmt.Errorf("%w: %q", ErrUnknownSortField, field)
	}
	if order == "" {
		order = listing.Ascending
	}
	parsed, ok := listing.ParseSortOrder(string(order))
	if !ok {
		return false, fmt.Errorf("unknown sort order %q", order)
	}
	order = parsed

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.active() {
		return false, nil
	}
	return p.commitLocked(p.state.WithSort(listing.SortOption{Field: field, Order: order}), false, "sort"), nil
}

// Refresh fetches the current state again.
func (p *Page[T]) Refresh() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.active() {
		return false
	}
	return p.fetcher.Refresh()
}

// DismissError hides the current fetch error.
func (p *Page[T]) DismissError() {
	if f := p.getFetcher(); f != nil {
		f.DismissError()
	}
}

// Wait blocks until the latest request settles.
func (p *Page[T]) Wait(ctx context.Context) error {
	f := p.getFetcher()
	if f == nil {
		return nil
	}
	return f.Wait(ctx)
}

// State returns the committed state.
func (p *Page[T]) State() listing.State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.Clone()
}

// Query returns the canonical query string of the committed state.
func (p *Page[T]) Query() string {
	return p.codec.Encode(p.State())
}

// Kind returns the listing kind.
func (p *Page[T]) Kind() listing.Kind { return p.opts.Kind }

// Snapshot returns the fetched results.
func (p *Page[T]) Snapshot() Snapshot[T] {
	f := p.getFetcher()
	if f == nil {
		return Snapshot[T]{}
	}
	return f.Snapshot()
}

// Requests returns how many backend requests the page issued.
func (p *Page[T]) Requests() int {
	f := p.getFetcher()
	if f == nil {
		return 0
	}
	return f.Requests()
}

// Pagination returns the page links to render for the committed page.
func (p *Page[T]) Pagination() listing.Window {
	snap := p.Snapshot()
	return listing.Paginate(p.State().Page, snap.Pagination.TotalPages, p.opts.PageSiblings)
}

// onNavigate applies a location change made outside the page. The parsed
// state is applied only when it differs from the committed one.
func (p *Page[T]) onNavigate(query string) {
	p.text.Stop()

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.active() {
		return
	}

	raw := trimQuery(query)
	next := p.codec.Decode(raw)
	if canonical := p.codec.Encode(next); canonical != raw {
		p.location.Replace(canonical)
	}
	if next.Equal(p.state) {
		p.logger.Log(context.Background(), observability.LevelTrace, "navigation matches committed state",
			slog.String("query", raw))
		return
	}

	p.state = next
	p.panel.Close()
	p.logger.Log(context.Background(), observability.LevelTrace, "listing state restored from location",
		slog.String("query", raw))
	p.fetchLocked(false)
}

// commitLocked makes next the committed state, mirrors it in the location
// and fetches it. Must be called with mu held.
func (p *Page[T]) commitLocked(next listing.State, force bool, reason string) bool {
	next.Filters = next.Filters.Normalize()
	if !force && next.Equal(p.state) {
		p.logger.Log(context.Background(), observability.LevelTrace, "listing state unchanged",
			slog.String("reason", reason))
		return false
	}
	p.state = next

	query := p.codec.Encode(next)
	if query != trimQuery(p.location.Query()) {
		p.location.Push(query)
	}
	p.logger.Log(context.Background(), observability.LevelTrace, "listing state committed",
		slog.String("reason", reason),
		slog.String("query", query),
	)
	return p.fetchLocked(force)
}

func (p *Page[T]) fetchLocked(force bool) bool {
	return p.fetcher.Request(p.codec.RequestQuery(p.state, p.opts.PerPage), force)
}

func (p *Page[T]) active() bool {
	return p.mounted && !p.closed
}

func (p *Page[T]) getFetcher() *Fetcher[T] {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fetcher
}
