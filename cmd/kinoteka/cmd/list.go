package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jmylchreest/kinoteka/internal/observability"
	"github.com/jmylchreest/kinoteka/pkg/catalog"
	"github.com/jmylchreest/kinoteka/pkg/listing"
)

// listFlags are the filter flags shared by list and browse. They refine
// the query argument; flags win over query parameters.
type listFlags struct {
	text           string
	countries      []string
	years          string
	genres         []int
	gender         string
	ratingCountMin string
	averageRating  string
	sortBy         string
	sortOrder      string
	page           int
	perPage        int
}

func (lf *listFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&lf.text, "text", "t", "", "free-text filter (title for movies, name for people)")
	fs.StringSliceVar(&lf.countries, "country", nil, "country filter, repeatable")
	fs.StringVar(&lf.years, "years", "", "years, e.g. 2023-2021,2019")
	fs.IntSliceVar(&lf.genres, "genre", nil, "genre id filter, repeatable (movies)")
	fs.StringVar(&lf.gender, "gender", "", "male or female (actors, directors)")
	fs.StringVar(&lf.ratingCountMin, "votes", "", "minimum number of ratings")
	fs.StringVar(&lf.averageRating, "rating", "", "minimum average rating (0-10)")
	fs.StringVar(&lf.sortBy, "sort", "", "sort column")
	fs.StringVar(&lf.sortOrder, "order", "", "sort order (asc, desc)")
	fs.IntVar(&lf.page, "page", 0, "page number")
	fs.IntVar(&lf.perPage, "per-page", 0, "results per page (default from config)")
}

// query merges the query argument with the flags that were set and returns
// the raw query string for the codec.
func (lf *listFlags) query(fs *pflag.FlagSet, kind listing.Kind, arg string) string {
	values := parseQueryArg(arg)
	set := func(flag, key, value string) {
		if fs.Changed(flag) {
			values.Set(key, value)
		}
	}
	set("text", kind.TextParam, lf.text)
	set("country", listing.ParamCountries, strings.Join(lf.countries, ","))
	set("years", listing.ParamYears, lf.years)
	if fs.Changed("genre") {
		ids := make([]string, len(lf.genres))
		for i, id := range lf.genres {
			ids[i] = strconv.Itoa(id)
		}
		values.Set(listing.ParamGenres, strings.Join(ids, ","))
	}
	set("gender", listing.ParamGender, lf.gender)
	if fs.Changed("votes") {
		if v := listing.ParseRatingCountMin(lf.ratingCountMin); v != nil {
			values.Set(listing.ParamRatingCountMin, strconv.Itoa(*v))
		} else {
			values.Del(listing.ParamRatingCountMin)
		}
	}
	if fs.Changed("rating") {
		if v := listing.ParseAverageRating(lf.averageRating); v != nil {
			values.Set(listing.ParamAverageRating, strconv.FormatFloat(*v, 'f', -1, 64))
		} else {
			values.Del(listing.ParamAverageRating)
		}
	}
	set("sort", listing.ParamSortBy, lf.sortBy)
	set("order", listing.ParamSortOrder, lf.sortOrder)
	if fs.Changed("page") {
		values.Set(listing.ParamPage, strconv.Itoa(lf.page))
	}
	return values.Encode()
}

func (lf *listFlags) perPageOr(def int) int {
	if lf.perPage > 0 {
		return lf.perPage
	}
	return def
}

var (
	listOpts   listFlags
	listOutput string
)

var listCmd = &cobra.Command{
	Use:   "list <movies|actors|directors> [query]",
	Short: "Fetch one page of a listing",
	Long: `Fetch one page of a listing described by a shareable query string
and/or filter flags, and print it as a table, JSON or YAML.

Malformed query parameters fall back to their defaults, exactly as a
listing page does with a hand-edited URL.

Examples:
  kinoteka list movies 'years=2023-2021&genres=5'
  kinoteka list actors --gender female --sort average_rating --order desc
  kinoteka list movies --text dune -o json`,
	Args:      cobra.RangeArgs(1, 2),
	ValidArgs: kindNames(),
	RunE:      runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
	listOpts.register(listCmd.Flags())
	listCmd.Flags().StringVarP(&listOutput, "output", "o", outputTable, "output format (table, json, yaml)")
}

// listResult is the structured output of the list command.
type listResult[T any] struct {
	Kind       string             `json:"kind" yaml:"kind"`
	Query      string             `json:"query" yaml:"query"`
	Items      []T                `json:"items" yaml:"items"`
	Pagination catalog.Pagination `json:"pagination" yaml:"pagination"`
	Pages      listing.Window     `json:"pages" yaml:"pages"`
}

func runList(cmd *cobra.Command, args []string) error {
	kind, err := kindArg(args[0])
	if err != nil {
		return err
	}
	switch listOutput {
	case outputTable, outputJSON, outputYAML:
	default:
		return fmt.Errorf("unknown output format %q (want %s, %s or %s)", listOutput, outputTable, outputJSON, outputYAML)
	}
	var arg string
	if len(args) > 1 {
		arg = args[1]
	}

	logger := observability.WithOperation(slog.Default(), "list")
	client, _ := newCatalogClient(appConfig.Catalog, logger)

	codec := listing.NewCodec(kind, time.Now())
	codec.MinYear = appConfig.Listing.MinYear
	state := codec.Decode(listOpts.query(cmd.Flags(), kind, arg))
	perPage := listOpts.perPageOr(appConfig.Catalog.PerPage)

	req := listRequest{
		kind:     kind,
		codec:    codec,
		state:    state,
		perPage:  perPage,
		siblings: appConfig.Listing.PageSiblings,
		output:   listOutput,
	}

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	if kind.Name == listing.Movies.Name {
		return fetchAndWrite(ctx, out, catalog.NewEndpoint[catalog.Movie](client, kind), movieColumns, req)
	}
	return fetchAndWrite(ctx, out, catalog.NewEndpoint[catalog.Person](client, kind), personColumns, req)
}

type listRequest struct {
	kind     listing.Kind
	codec    listing.Codec
	state    listing.State
	perPage  int
	siblings int
	output   string
}

func fetchAndWrite[T any](ctx context.Context, w io.Writer, ep *catalog.Endpoint[T], cols columns[T], req listRequest) (err error) {
	logger := observability.WithListing(slog.Default(), req.kind.Name)
	defer observability.TimedOperation(ctx, logger, "list", &err)()

	page, err := ep.Fetch(ctx, req.codec.RequestQuery(req.state, req.perPage))
	if err != nil {
		return err
	}

	result := listResult[T]{
		Kind:       req.kind.Name,
		Query:      req.codec.Encode(req.state),
		Items:      page.Items,
		Pagination: page.Pagination,
		Pages:      listing.Paginate(req.state.Page, page.Pagination.TotalPages, req.siblings),
	}

	if req.output != outputTable {
		return writeStructured(w, req.output, result)
	}

	fmt.Fprintf(w, "%s: %s\n", req.kind.Name, describeFilters(req.kind, req.state.Filters))
	fmt.Fprintf(w, "?%s\n\n", result.Query)
	if len(result.Items) == 0 {
		_, err = fmt.Fprintln(w, "Brak wyników.")
		return err
	}
	if err := writeTable(w, cols, result.Items); err != nil {
		return err
	}
	fmt.Fprintln(w)
	return writePager(w, result.Pages, result.Pagination.Total)
}

// parseQueryArg accepts a bare query string, one with a leading "?", or a
// whole page URL.
func parseQueryArg(arg string) url.Values {
	if _, query, ok := strings.Cut(arg, "?"); ok {
		arg = query
	}
	// ParseQuery keeps every well-formed pair even when it reports an error.
	values, _ := url.ParseQuery(arg)
	return values
}

func kindNames() []string {
	kinds := listing.Kinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.Name
	}
	return names
}

func kindArg(name string) (listing.Kind, error) {
	kind, ok := listing.KindByName(strings.ToLower(name))
	if !ok {
		return listing.Kind{}, fmt.Errorf("unknown listing %q (want one of: %s)", name, strings.Join(kindNames(), ", "))
	}
	return kind, nil
}
