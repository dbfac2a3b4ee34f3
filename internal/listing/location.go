package listing

import (
	"strings"
	"sync"
)

// Location is the address bar of a listing page: the query string that
// describes it and the history it navigates through.
//
// Push and Replace are writes by the page itself and do not notify
// subscribers. External navigation (back, forward, opening a link) does.
type Location interface {
	// Query returns the current query string without a leading "?".
	Query() string
	// Push adds a new history entry.
	Push(query string)
	// Replace rewrites the current history entry.
	Replace(query string)
	// Subscribe registers fn for external navigation and returns a function
	// that removes it.
	Subscribe(fn func(query string)) (unsubscribe func())
}

// MemoryHistory is an in-memory Location with back/forward navigation.
// It is safe for concurrent use.
type MemoryHistory struct {
	mu      sync.Mutex
	entries []string
	index   int
	subs    map[int]func(string)
	nextID  int
}

// NewMemoryHistory returns a history holding a single entry.
func NewMemoryHistory(query string) *MemoryHistory {
	return &MemoryHistory{
		entries: []string{trimQuery(query)},
		subs:    make(map[int]func(string)),
	}
}

// Query returns the current entry.
func (h *MemoryHistory) Query() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[h.index]
}

// Push appends an entry after the current one, dropping any forward entries.
func (h *MemoryHistory) Push(query string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries[:h.index+1], trimQuery(query))
	h.index++
}

// Replace overwrites the current entry.
func (h *MemoryHistory) Replace(query string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries[h.index] = trimQuery(query)
}

// Navigate pushes an entry the way a user opening a link would, notifying
// subscribers.
func (h *MemoryHistory) Navigate(query string) {
	h.Push(query)
	h.notify()
}

// Back moves to the previous entry and notifies subscribers.
// It reports false when there is nothing to go back to.
func (h *MemoryHistory) Back() bool {
	h.mu.Lock()
	if h.index == 0 {
		h.mu.Unlock()
		return false
	}
	h.index--
	h.mu.Unlock()
	h.notify()
	return true
}

// Forward moves to the next entry and notifies subscribers.
// It reports false when there is no forward entry.
func (h *MemoryHistory) Forward() bool {
	h.mu.Lock()
	if h.index >= len(h.entries)-1 {
		h.mu.Unlock()
		return false
	}
	h.index++
	h.mu.Unlock()
	h.notify()
	return true
}

// Len returns the number of entries.
func (h *MemoryHistory) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Entries returns a copy of all entries, oldest first.
func (h *MemoryHistory) Entries() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.entries))
	copy(out, h.entries)
	return out
}

// Subscribe registers fn for back, forward and Navigate.
func (h *MemoryHistory) Subscribe(fn func(query string)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	h.subs[id] = fn
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subs, id)
	}
}

// notify calls subscribers outside the lock so they may write back.
func (h *MemoryHistory) notify() {
	h.mu.Lock()
	query := h.entries[h.index]
	subs := make([]func(string), 0, len(h.subs))
	for _, fn := range h.subs {
		subs = append(subs, fn)
	}
	h.mu.Unlock()

	for _, fn := range subs {
		fn(query)
	}
}

func trimQuery(q string) string {
	return strings.TrimPrefix(q, "?")
}
