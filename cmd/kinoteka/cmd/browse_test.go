package cmd

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ilisting "github.com/jmylchreest/kinoteka/internal/listing"
	"github.com/jmylchreest/kinoteka/pkg/catalog"
	"github.com/jmylchreest/kinoteka/pkg/listing"
)

type recordingSource struct {
	mu      sync.Mutex
	queries []string
}

func (s *recordingSource) Fetch(_ context.Context, query string) (*catalog.Page[catalog.Movie], error) {
	s.mu.Lock()
	s.queries = append(s.queries, query)
	s.mu.Unlock()
	return &catalog.Page[catalog.Movie]{
		Items:      []catalog.Movie{{ID: 1, Title: "Diuna", Year: 2021, AverageRating: 7.9, RatingCount: 1234}},
		Pagination: catalog.Pagination{Page: 1, PerPage: 20, Total: 1, TotalPages: 1},
	}, nil
}

func (s *recordingSource) all() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.queries...)
}

func runBrowseSession(t *testing.T, initial, input string) (*ilisting.MemoryHistory, *recordingSource, string) {
	t.Helper()

	history := ilisting.NewMemoryHistory(initial)
	src := &recordingSource{}
	var out bytes.Buffer

	opts := ilisting.Options{
		Kind:             listing.Movies,
		Location:         history,
		PerPage:          20,
		YearDisplayLimit: 15,
		PageSiblings:     2,
		Now:              func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) },
		Logger:           slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	err := browse[catalog.Movie](context.Background(), strings.NewReader(input), &out, src, opts, movieColumns)
	require.NoError(t, err)
	return history, src, out.String()
}

func TestBrowse_StagedFiltersApplyOnSearch(t *testing.T) {
	history, src, out := runBrowseSession(t, "", strings.Join([]string{
		"year 2023",
		"year 2021",
		"genre 5",
		"search",
	}, "\n"))

	assert.Equal(t, "years=2023-2021&genres=5&sort_by=title&sort_order=asc&page=1", history.Query())
	assert.Contains(t, src.all(), "years=2023-2021&genres=5&sort_by=title&sort_order=asc&page=1&per_page=20")
	assert.Contains(t, out, "years (range): 2025 2024 [2023] [2022] [2021]")
	assert.Contains(t, out, "staged: years: 2023–2021; genres: 5")
	assert.Contains(t, out, "Diuna")
}

// lastStaged returns the most recent staged-filters line of a session.
func lastStaged(out string) string {
	last := ""
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "staged: ") {
			last = line
		}
	}
	return last
}

func TestBrowse_EditsStartFromAppliedFilters(t *testing.T) {
	history, _, out := runBrowseSession(t, "years=2020-2018&genres=5", strings.Join([]string{
		"genre 7",
		"search",
	}, "\n"))

	assert.Contains(t, out, "staged: years: 2020–2018; genres: 5, 7")
	assert.Equal(t, "years=2020-2018&genres=5,7&sort_by=title&sort_order=asc&page=1", history.Query())
}

func TestBrowse_PanelFollowsNavigation(t *testing.T) {
	t.Run("back discards staged edits", func(t *testing.T) {
		history, _, out := runBrowseSession(t, "genres=5", strings.Join([]string{
			"genre 7",
			"search",
			"country Polska",
			"back",
			"filters",
		}, "\n"))

		assert.Equal(t, "staged: genres: 5", lastStaged(out))
		assert.Equal(t, "genres=5&sort_by=title&sort_order=asc&page=1", history.Query())
	})

	t.Run("go shows the new filters", func(t *testing.T) {
		_, _, out := runBrowseSession(t, "", strings.Join([]string{
			"country Francja",
			"go countries=Polska&genres=3",
			"filters",
			"genre 4",
			"search",
		}, "\n"))

		assert.Equal(t, "staged: countries: Polska; genres: 3, 4", lastStaged(out))
	})

	t.Run("country names with commas are rejected", func(t *testing.T) {
		_, _, out := runBrowseSession(t, "", "country Korea, Republic of")
		assert.Contains(t, out, "country: a name without commas required")
	})
}

func TestBrowse_BackRestoresPreviousState(t *testing.T) {
	history, src, _ := runBrowseSession(t, "sort_by=year&sort_order=desc", strings.Join([]string{
		"sort title asc",
		"back",
	}, "\n"))

	assert.Equal(t, "sort_by=year&sort_order=desc&page=1", history.Query())
	assert.Contains(t, src.all(), "sort_by=title&sort_order=asc&page=1&per_page=20")
	assert.Equal(t, []string{"sort_by=year&sort_order=desc&page=1", "sort_by=title&sort_order=asc&page=1"}, history.Entries())
}

func TestBrowse_NoChangeAndErrors(t *testing.T) {
	_, _, out := runBrowseSession(t, "", strings.Join([]string{
		"search",
		"sort runtime",
		"page x",
		"votes abc",
		"bogus",
	}, "\n"))

	assert.Contains(t, out, "no change")
	assert.Contains(t, out, `unknown sort field: "runtime" (sortable: title, year, average_rating, rating_count)`)
	assert.Contains(t, out, "page: number required")
	assert.Contains(t, out, `votes "abc" ignored`)
	assert.Contains(t, out, `unknown command "bogus"`)
}

func TestBrowse_TextIsCommittedAtEndOfInput(t *testing.T) {
	history, _, _ := runBrowseSession(t, "", "text  blade runner ")

	assert.Equal(t, "title=blade+runner&sort_by=title&sort_order=asc&page=1", history.Query())
}

func TestBrowse_Quit(t *testing.T) {
	history, _, out := runBrowseSession(t, "page=2", "url\nquit\nsearch")

	assert.Contains(t, out, "?sort_by=title&sort_order=asc&page=2")
	assert.Equal(t, "sort_by=title&sort_order=asc&page=2", history.Query())
}
