package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	ilisting "github.com/jmylchreest/kinoteka/internal/listing"
	"github.com/jmylchreest/kinoteka/internal/observability"
	"github.com/jmylchreest/kinoteka/pkg/catalog"
	"github.com/jmylchreest/kinoteka/pkg/listing"
)

// drainTimeout bounds how long browse waits for the last result at end of input.
const drainTimeout = 30 * time.Second

var browseOpts listFlags

var browseCmd = &cobra.Command{
	Use:   "browse <movies|actors|directors> [query]",
	Short: "Browse a listing interactively",
	Long: `Browse a listing page from the terminal. The page keeps the same rules
as the catalog's web listing: filters are staged in a panel and only applied
by "search", the free-text filter applies itself after a short pause,
"clear" always reloads, and every applied change becomes a new history entry
that "back" and "forward" walk through.

Type "help" at the prompt for the list of commands.`,
	Args:      cobra.RangeArgs(1, 2),
	ValidArgs: kindNames(),
	RunE:      runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
	browseOpts.register(browseCmd.Flags())
}

func runBrowse(cmd *cobra.Command, args []string) error {
	kind, err := kindArg(args[0])
	if err != nil {
		return err
	}
	var arg string
	if len(args) > 1 {
		arg = args[1]
	}

	logger := observability.WithOperation(slog.Default(), "browse")
	client, _ := newCatalogClient(appConfig.Catalog, logger)

	opts := ilisting.Options{
		Kind:             kind,
		Location:         ilisting.NewMemoryHistory(browseOpts.query(cmd.Flags(), kind, arg)),
		PerPage:          browseOpts.perPageOr(appConfig.Catalog.PerPage),
		Debounce:         appConfig.Listing.Debounce,
		YearDisplayLimit: appConfig.Listing.YearDisplayLimit,
		MinYear:          appConfig.Listing.MinYear,
		PageSiblings:     appConfig.Listing.PageSiblings,
		Logger:           logger,
	}

	in, out := cmd.InOrStdin(), cmd.OutOrStdout()
	if kind.Name == listing.Movies.Name {
		return browse[catalog.Movie](cmd.Context(), in, out, catalog.NewEndpoint[catalog.Movie](client, kind), opts, movieColumns)
	}
	return browse[catalog.Person](cmd.Context(), in, out, catalog.NewEndpoint[catalog.Person](client, kind), opts, personColumns)
}

// browser is the terminal front end of one listing page. All output happens
// on the goroutine running loop.
type browser[T any] struct {
	page    *ilisting.Page[T]
	history *ilisting.MemoryHistory
	cols    columns[T]
	out     io.Writer
	updates chan struct{}
}

// browse runs an interactive listing session until input ends, "quit" is
// entered or ctx is cancelled.
func browse[T any](ctx context.Context, in io.Reader, out io.Writer, src ilisting.Source[T], opts ilisting.Options, cols columns[T]) error {
	history, ok := opts.Location.(*ilisting.MemoryHistory)
	if !ok || history == nil {
		return errors.New("browse needs an in-memory history")
	}

	b := &browser[T]{
		history: history,
		cols:    cols,
		out:     out,
		updates: make(chan struct{}, 1),
	}
	opts.OnChange = b.notify
	b.page = ilisting.NewPage(src, opts)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := b.page.Mount(ctx); err != nil {
		return err
	}
	defer b.page.Close()

	return b.loop(ctx, readLines(ctx, in))
}

// notify coalesces result updates; it must not block the fetcher.
func (b *browser[T]) notify() {
	select {
	case b.updates <- struct{}{}:
	default:
	}
}

func readLines(ctx context.Context, in io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}

func (b *browser[T]) loop(ctx context.Context, lines <-chan string) error {
	b.prompt()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-b.updates:
			b.render()
			b.prompt()
		case line, ok := <-lines:
			if !ok {
				b.drain(ctx)
				return nil
			}
			if quit := b.exec(strings.TrimSpace(line)); quit {
				return nil
			}
			b.prompt()
		}
	}
}

// drain commits a pending text change, waits for the last request and
// renders the final results.
func (b *browser[T]) drain(ctx context.Context) {
	b.page.FlushText()
	ctx, cancel := context.WithTimeout(ctx, drainTimeout)
	defer cancel()
	if err := b.page.Wait(ctx); err != nil {
		return
	}
	b.render()
}

func (b *browser[T]) prompt() {
	fmt.Fprint(b.out, "> ")
}

func (b *browser[T]) printf(format string, args ...any) {
	fmt.Fprintf(b.out, format+"\n", args...)
}

// exec runs one command line and reports whether the session should end.
func (b *browser[T]) exec(line string) bool {
	name, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	panel := b.page.Panel

	switch strings.ToLower(name) {
	case "":
	case "quit", "exit", "q":
		return true
	case "help", "?":
		b.help()
	case "show":
		b.render()
	case "url":
		b.printf("?%s", b.history.Query())
	case "history":
		b.showHistory()

	case "text":
		b.page.SetText(rest)
	case "open":
		b.page.OpenPanel()
		b.showPanel()
	case "filters":
		b.showPanel()
	case "country":
		if !panel().ToggleCountry(rest) {
			b.printf("country: a name without commas required")
			break
		}
		b.showPanel()
	case "genre":
		id, err := strconv.Atoi(rest)
		if err != nil {
			b.printf("genre: numeric id required")
			break
		}
		panel().ToggleGenre(id)
		b.showPanel()
	case "gender":
		if rest == "-" {
			rest = ""
		}
		panel().SetGender(listing.ParseGender(rest))
		b.showPanel()
	case "votes":
		panel().SetRatingCountMin(unsetDash(rest))
		b.showPanel()
	case "rating":
		panel().SetAverageRating(unsetDash(rest))
		b.showPanel()
	case "year":
		year, err := strconv.Atoi(rest)
		if err != nil {
			b.printf("year: number required")
			break
		}
		panel().ClickYear(year)
		b.showYears()
	case "years":
		b.showYears()
	case "allyears":
		panel().ShowAllYears(rest != "off")
		b.showYears()
	case "search":
		b.requested(b.page.Search())
	case "clear":
		b.requested(b.page.Clear())

	case "page":
		n, err := strconv.Atoi(rest)
		if err != nil {
			b.printf("page: number required")
			break
		}
		b.requested(b.page.SetPage(n))
	case "next", "n":
		if win := b.page.Pagination(); win.HasNext() {
			b.requested(b.page.SetPage(win.Next))
		} else {
			b.printf("last page")
		}
	case "prev", "p":
		if win := b.page.Pagination(); win.HasPrev() {
			b.requested(b.page.SetPage(win.Prev))
		} else {
			b.printf("first page")
		}
	case "sort":
		field, order, _ := strings.Cut(rest, " ")
		ok, err := b.page.SetSort(field, listing.SortOrder(strings.TrimSpace(order)))
		if err != nil {
			b.printf("%v (sortable: %s)", err, strings.Join(b.page.Kind().SortFields, ", "))
			break
		}
		b.requested(ok)
	case "refresh":
		b.requested(b.page.Refresh())
	case "dismiss":
		b.page.DismissError()

	case "back":
		if !b.history.Back() {
			b.printf("no earlier entry")
		}
	case "forward":
		if !b.history.Forward() {
			b.printf("no later entry")
		}
	case "go":
		b.history.Navigate(rest)

	default:
		b.printf("unknown command %q, type help", name)
	}
	return false
}

func (b *browser[T]) requested(issued bool) {
	if !issued {
		b.printf("no change")
	}
}

func unsetDash(s string) string {
	if s == "-" {
		return ""
	}
	return s
}

func (b *browser[T]) render() {
	snap := b.page.Snapshot()
	state := b.page.State()
	kind := b.page.Kind()

	b.printf("")
	b.printf("%s: %s | sort: %s %s", kind.Name, describeFilters(kind, state.Filters), state.Sort.Field, state.Sort.Order)
	if msg := snap.Message(); msg != "" {
		b.printf("! %s", msg)
	}
	if len(snap.Items) == 0 {
		b.printf("Brak wyników.")
	} else {
		_ = writeTable(b.out, b.cols, snap.Items)
	}
	_ = writePager(b.out, b.page.Pagination(), snap.Pagination.Total)
}

func (b *browser[T]) showPanel() {
	panel := b.page.Panel()
	b.printf("staged: %s", describeFilters(panel.Kind(), panel.Filters()))
	if t := panel.RatingCountText(); t != "" && panel.Filters().RatingCountMin == nil {
		b.printf("  votes %q ignored: not a whole number ≥ 0", t)
	}
	if t := panel.AverageRatingText(); t != "" && panel.Filters().AverageRating == nil {
		b.printf("  rating %q ignored: not a number from 0 to 10", t)
	}
}

func (b *browser[T]) showYears() {
	panel := b.page.Panel()
	staged := panel.Filters()

	var sb strings.Builder
	for i, y := range panel.DisplayedYears() {
		if i > 0 {
			sb.WriteByte(' ')
		}
		if staged.HasYear(y) {
			fmt.Fprintf(&sb, "[%d]", y)
		} else {
			sb.WriteString(strconv.Itoa(y))
		}
	}
	if panel.YearsTruncated() {
		sb.WriteString(" … (allyears)")
	}
	b.printf("years (%s): %s", panel.YearMode(), sb.String())
}

func (b *browser[T]) showHistory() {
	current := b.history.Query()
	for i, q := range b.history.Entries() {
		marker := " "
		if q == current {
			marker = "*"
		}
		b.printf("%s %2d ?%s", marker, i+1, q)
	}
}

func (b *browser[T]) help() {
	b.printf(`commands:
  show                      render the current results
  text <words>              set the free-text filter (applies after a pause)
  open                      reset the filter panel to the applied filters
  filters                   show the staged filters
  country <name>            toggle a country
  genre <id>                toggle a genre (movies)
  gender male|female|-      set or unset gender (actors, directors)
  votes <n>|-               minimum number of ratings
  rating <x>|-              minimum average rating
  year <yyyy>               click a year button (second click selects a range)
  years | allyears [off]    show the year buttons
  search                    apply the staged filters
  clear                     remove every filter and reload
  page <n> | next | prev    change page
  sort <field> [asc|desc]   change sorting
  refresh | dismiss         reload, hide the error message
  back | forward | go <q>   history navigation
  url | history             show the query string, the history
  quit`)
}
