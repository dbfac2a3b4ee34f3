package listing

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/jmylchreest/kinoteka/pkg/catalog"
)

var testNow = time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)

var errBackend = errors.New("backend unavailable")

// fakeSource returns one movie titled after the query, optionally blocking
// until a gate opens or failing queries that contain a marker.
type fakeSource struct {
	mu        sync.Mutex
	queries   []string
	cancelled []string
	returned  int
	gates     map[string]chan struct{}
	failOn    string
	// ignoreCancel keeps a gated request waiting after its context ends,
	// like a server answering late.
	ignoreCancel bool
}

func newFakeSource() *fakeSource {
	return &fakeSource{gates: make(map[string]chan struct{})}
}

// gate makes requests for query block until the returned function is called.
func (s *fakeSource) gate(query string) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan struct{})
	s.gates[query] = ch
	return func() { close(ch) }
}

func (s *fakeSource) Fetch(ctx context.Context, query string) (*catalog.Page[catalog.Movie], error) {
	s.mu.Lock()
	s.queries = append(s.queries, query)
	gate := s.gates[query]
	failOn := s.failOn
	ignoreCancel := s.ignoreCancel
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.returned++
		s.mu.Unlock()
	}()

	if gate != nil {
		if ignoreCancel {
			<-gate
		} else {
			select {
			case <-gate:
			case <-ctx.Done():
				s.mu.Lock()
				s.cancelled = append(s.cancelled, query)
				s.mu.Unlock()
				return nil, ctx.Err()
			}
		}
	}

	if failOn != "" && strings.Contains(query, failOn) {
		return nil, errBackend
	}

	return &catalog.Page[catalog.Movie]{
		Items:      []catalog.Movie{{ID: len(query), Title: query}},
		Pagination: catalog.Pagination{Page: 1, PerPage: 20, Total: 45, TotalPages: 3},
	}, nil
}

func (s *fakeSource) Queries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.queries...)
}

func (s *fakeSource) LastQuery() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queries) == 0 {
		return ""
	}
	return s.queries[len(s.queries)-1]
}

func (s *fakeSource) Returned() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.returned
}

func (s *fakeSource) Cancelled() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.cancelled...)
}

func (s *fakeSource) setFailOn(marker string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failOn = marker
}
