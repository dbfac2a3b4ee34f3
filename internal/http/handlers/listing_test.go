package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/kinoteka/pkg/catalog"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type catalogBackend struct {
	*httptest.Server

	mu      sync.Mutex
	paths   []string
	queries []string
}

func newCatalogBackend(t *testing.T, status int, body string) *catalogBackend {
	t.Helper()
	b := &catalogBackend{}
	b.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.paths = append(b.paths, r.URL.Path)
		b.queries = append(b.queries, r.URL.RawQuery)
		b.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(b.Close)
	return b
}

func (b *catalogBackend) last() (string, string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.paths) == 0 {
		return "", ""
	}
	return b.paths[len(b.paths)-1], b.queries[len(b.queries)-1]
}

const moviesPage = `{
	"items": [{"id": 1, "title": "Dune"}, {"id": 2, "title": "Arrival"}],
	"pagination": {"page": 3, "per_page": 20, "total": 200, "total_pages": 10}
}`

func newListingHandler(backendURL string) *ListingHandler {
	client := catalog.NewClient(backendURL)
	return NewListingHandler(client, ListingHandlerConfig{PerPage: 20, MinYear: 1900, PageSiblings: 1}).
		WithClock(func() time.Time { return fixedNow })
}

func TestListingHandler_GetListing(t *testing.T) {
	backend := newCatalogBackend(t, http.StatusOK, moviesPage)
	handler := newListingHandler(backend.URL)

	output, err := handler.GetListing(context.Background(), &GetListingInput{
		Kind:   "movies",
		Years:  "2021,2022,2023",
		Genres: "5",
		Page:   "3",
	})
	require.NoError(t, err)

	path, query := backend.last()
	assert.Equal(t, "/movies/filter", path)
	assert.Equal(t, "years=2023-2021&genres=5&sort_by=title&sort_order=asc&page=3&per_page=20", query)

	body := output.Body
	assert.Equal(t, "movies", body.Kind)
	assert.Equal(t, "years=2023-2021&genres=5&sort_by=title&sort_order=asc&page=3", body.Query)
	require.Len(t, body.Items, 2)
	assert.Equal(t, "Dune", body.Items[0]["title"])
	assert.Equal(t, 10, body.Pagination.TotalPages)
	assert.Equal(t, 3, body.Pages.Page)
	assert.Equal(t, 2, body.Pages.Prev)
	assert.Equal(t, 4, body.Pages.Next)
}

func TestListingHandler_MalformedParamsFallBack(t *testing.T) {
	backend := newCatalogBackend(t, http.StatusOK, `{"items": [], "pagination": {"page": 1, "per_page": 20, "total": 0, "total_pages": 0}}`)
	handler := newListingHandler(backend.URL)

	output, err := handler.GetListing(context.Background(), &GetListingInput{
		Kind:           "actors",
		Genres:         "5",
		Gender:         "X",
		RatingCountMin: "abc",
		SortBy:         "nonsense",
		SortOrder:      "sideways",
		Page:           "-4",
	})
	require.NoError(t, err)

	assert.Equal(t, "sort_by=name&sort_order=asc&page=1", output.Body.Query)
	assert.NotNil(t, output.Body.Items)
	assert.Empty(t, output.Body.Items)
}

func TestListingHandler_PerPage(t *testing.T) {
	tests := []struct {
		perPage string
		want    string
	}{
		{"50", "per_page=50"},
		{"", "per_page=20"},
		{"500", "per_page=100"},
		{"abc", "per_page=20"},
		{"-5", "per_page=20"},
	}
	for _, tt := range tests {
		t.Run(tt.perPage, func(t *testing.T) {
			backend := newCatalogBackend(t, http.StatusOK, moviesPage)
			handler := newListingHandler(backend.URL)

			_, err := handler.GetListing(context.Background(), &GetListingInput{Kind: "directors", Name: "Nolan", PerPage: tt.perPage})
			require.NoError(t, err)

			path, query := backend.last()
			assert.Equal(t, "/directors/filter", path)
			assert.Equal(t, "name=Nolan&sort_by=name&sort_order=asc&page=1&"+tt.want, query)
		})
	}
}

func TestListingHandler_UnknownKind(t *testing.T) {
	backend := newCatalogBackend(t, http.StatusOK, moviesPage)
	handler := newListingHandler(backend.URL)

	_, err := handler.GetListing(context.Background(), &GetListingInput{Kind: "series"})
	require.Error(t, err)

	var statusErr huma.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.GetStatus())

	path, _ := backend.last()
	assert.Empty(t, path, "unknown kinds must not reach the catalog")
}

func TestListingHandler_BackendFailure(t *testing.T) {
	backend := newCatalogBackend(t, http.StatusBadRequest, `{"detail": "Nieprawidłowy parametr"}`)
	handler := newListingHandler(backend.URL)

	_, err := handler.GetListing(context.Background(), &GetListingInput{Kind: "movies"})
	require.Error(t, err)

	var statusErr huma.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadGateway, statusErr.GetStatus())
	assert.Contains(t, err.Error(), "Błąd serwera (400): Nieprawidłowy parametr")
}

func TestListingHandler_ListKinds(t *testing.T) {
	handler := newListingHandler("http://catalog.invalid")

	output, err := handler.ListKinds(context.Background(), &ListKindsInput{})
	require.NoError(t, err)
	require.Len(t, output.Body.Kinds, 3)

	movies := output.Body.Kinds[0]
	assert.Equal(t, "movies", movies.Name)
	assert.Equal(t, "title", movies.TextParam)
	assert.Equal(t, "title asc", movies.DefaultSort)
	assert.Equal(t, "sort_by=title&sort_order=asc&page=1", movies.Query)
}

func TestGetListingInput_RawQuery(t *testing.T) {
	in := &GetListingInput{Title: "a b", Years: "2020", Page: "2"}
	assert.Equal(t, "page=2&title=a+b&years=2020", in.rawQuery())
	assert.Empty(t, (&GetListingInput{}).rawQuery())
}
