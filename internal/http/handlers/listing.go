package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/jmylchreest/kinoteka/internal/listing"
	"github.com/jmylchreest/kinoteka/internal/observability"
	"github.com/jmylchreest/kinoteka/pkg/catalog"
	pkglisting "github.com/jmylchreest/kinoteka/pkg/listing"
)

// maxPerPage caps the per_page a gateway caller may ask for.
const maxPerPage = 100

// ListingHandlerConfig holds the listing gateway settings.
type ListingHandlerConfig struct {
	PerPage      int
	MinYear      int
	PageSiblings int
}

// ListingHandler serves listing pages by shareable query string.
type ListingHandler struct {
	client *catalog.Client
	config ListingHandlerConfig
	now    func() time.Time
}

// NewListingHandler creates a listing handler backed by client.
func NewListingHandler(client *catalog.Client, cfg ListingHandlerConfig) *ListingHandler {
	if cfg.PerPage <= 0 {
		cfg.PerPage = listing.DefaultPerPage
	}
	if cfg.MinYear <= 0 {
		cfg.MinYear = pkglisting.MinYear
	}
	if cfg.PageSiblings < 0 {
		cfg.PageSiblings = listing.DefaultPageSiblings
	}
	return &ListingHandler{
		client: client,
		config: cfg,
		now:    time.Now,
	}
}

// WithClock overrides the clock used for the year range upper bound.
func (h *ListingHandler) WithClock(now func() time.Time) *ListingHandler {
	h.now = now
	return h
}

// GetListingInput is the input for a listing page. Every parameter of the
// shareable query is accepted as raw text; malformed values fall back to
// their defaults instead of failing validation.
type GetListingInput struct {
	Kind           string `path:"kind" doc:"Listing kind (movies, actors, directors)"`
	Title          string `query:"title" doc:"Free-text title filter (movies)"`
	Name           string `query:"name" doc:"Free-text name filter (actors, directors)"`
	Countries      string `query:"countries" doc:"Comma-separated countries"`
	Years          string `query:"years" doc:"Comma-separated years or descending ranges, e.g. 2023-2021,2019"`
	Genres         string `query:"genres" doc:"Comma-separated genre ids (movies)"`
	Gender         string `query:"gender" doc:"male or female (actors, directors)"`
	RatingCountMin string `query:"rating_count_min" doc:"Minimum number of ratings"`
	AverageRating  string `query:"average_rating" doc:"Minimum average rating"`
	SortBy         string `query:"sort_by" doc:"Sort column"`
	SortOrder      string `query:"sort_order" doc:"asc or desc"`
	Page           string `query:"page" doc:"1-based page number"`
	PerPage        string `query:"per_page" doc:"Page size up to 100; empty or malformed uses the configured default"`
}

// rawQuery rebuilds the shareable query from the non-empty parameters.
func (in *GetListingInput) rawQuery() string {
	values := url.Values{}
	for key, value := range map[string]string{
		pkglisting.ParamTitle:          in.Title,
		pkglisting.ParamName:           in.Name,
		pkglisting.ParamCountries:      in.Countries,
		pkglisting.ParamYears:          in.Years,
		pkglisting.ParamGenres:         in.Genres,
		pkglisting.ParamGender:         in.Gender,
		pkglisting.ParamRatingCountMin: in.RatingCountMin,
		pkglisting.ParamAverageRating:  in.AverageRating,
		pkglisting.ParamSortBy:         in.SortBy,
		pkglisting.ParamSortOrder:      in.SortOrder,
		pkglisting.ParamPage:           in.Page,
	} {
		if value != "" {
			values.Set(key, value)
		}
	}
	return values.Encode()
}

// ListingResponse is one listing page.
type ListingResponse struct {
	Kind       string             `json:"kind" doc:"Listing kind"`
	Items      []catalog.Item     `json:"items" doc:"Result rows as returned by the catalog"`
	Pagination catalog.Pagination `json:"pagination"`
	Query      string             `json:"query" doc:"Canonical shareable query string"`
	Pages      pkglisting.Window  `json:"pages" doc:"Pagination control window"`
}

// GetListingOutput is the output for a listing page.
type GetListingOutput struct {
	Body ListingResponse
}

// KindResponse describes one listing kind.
type KindResponse struct {
	Name        string   `json:"name"`
	TextParam   string   `json:"text_param"`
	SortFields  []string `json:"sort_fields"`
	DefaultSort string   `json:"default_sort"`
	Query       string   `json:"query" doc:"Canonical query of the default page"`
}

// ListKindsInput is the input for listing kinds.
type ListKindsInput struct{}

// ListKindsOutput is the output for listing kinds.
type ListKindsOutput struct {
	Body struct {
		Kinds []KindResponse `json:"kinds"`
	}
}

// Register registers the listing routes with the API.
func (h *ListingHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "listKinds",
		Method:      http.MethodGet,
		Path:        "/api/v1/kinds",
		Summary:     "List listing kinds",
		Description: "Returns the listing kinds with their text parameter and sortable columns",
		Tags:        []string{"Listings"},
	}, h.ListKinds)

	huma.Register(api, huma.Operation{
		OperationID: "getListing",
		Method:      http.MethodGet,
		Path:        "/api/v1/{kind}",
		Summary:     "Get listing page",
		Description: "Canonicalizes the shareable query, fetches one page from the catalog and returns it with the pagination window",
		Tags:        []string{"Listings"},
	}, h.GetListing)
}

// perPage parses a requested page size, falling back to the configured one.
func (h *ListingHandler) perPage(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		n = h.config.PerPage
	}
	return min(n, maxPerPage)
}

// ListKinds returns every listing kind.
func (h *ListingHandler) ListKinds(_ context.Context, _ *ListKindsInput) (*ListKindsOutput, error) {
	out := &ListKindsOutput{}
	for _, kind := range pkglisting.Kinds() {
		codec := h.codec(kind)
		out.Body.Kinds = append(out.Body.Kinds, KindResponse{
			Name:        kind.Name,
			TextParam:   kind.TextParam,
			SortFields:  kind.SortFields,
			DefaultSort: kind.DefaultSort.Field + " " + string(kind.DefaultSort.Order),
			Query:       codec.Encode(kind.DefaultState()),
		})
	}
	return out, nil
}

// GetListing returns one page of a listing.
func (h *ListingHandler) GetListing(ctx context.Context, input *GetListingInput) (*GetListingOutput, error) {
	kind, ok := pkglisting.KindByName(input.Kind)
	if !ok {
		return nil, huma.Error404NotFound("unknown listing kind: " + input.Kind)
	}

	perPage := h.perPage(input.PerPage)

	codec := h.codec(kind)
	state := codec.Decode(input.rawQuery())

	logger := observability.WithListing(observability.LoggerFromContext(ctx), kind.Name)

	page, err := catalog.NewEndpoint[catalog.Item](h.client, kind).Fetch(ctx, codec.RequestQuery(state, perPage))
	if err != nil {
		logger.WarnContext(ctx, "catalog fetch failed", slog.String("error", err.Error()))
		return nil, huma.Error502BadGateway(listing.Message(err))
	}

	return &GetListingOutput{
		Body: ListingResponse{
			Kind:       kind.Name,
			Items:      page.Items,
			Pagination: page.Pagination,
			Query:      codec.Encode(state),
			Pages:      pkglisting.Paginate(state.Page, page.Pagination.TotalPages, h.config.PageSiblings),
		},
	}, nil
}

func (h *ListingHandler) codec(kind pkglisting.Kind) pkglisting.Codec {
	codec := pkglisting.NewCodec(kind, h.now())
	codec.MinYear = h.config.MinYear
	return codec
}
