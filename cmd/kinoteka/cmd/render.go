package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/jmylchreest/kinoteka/pkg/catalog"
	"github.com/jmylchreest/kinoteka/pkg/format"
	"github.com/jmylchreest/kinoteka/pkg/listing"
)

const titleWidth = 40

// columns renders one listing item type as table rows.
type columns[T any] struct {
	header []string
	row    func(T) []string
}

var movieColumns = columns[catalog.Movie]{
	header: []string{"ID", "TITLE", "YEAR", "COUNTRIES", "GENRES", "RATING", "VOTES"},
	row: func(m catalog.Movie) []string {
		year := ""
		if m.Year > 0 {
			year = strconv.Itoa(m.Year)
		}
		return []string{
			strconv.Itoa(m.ID),
			format.Truncate(m.Title, titleWidth),
			year,
			strings.Join(m.Countries, ", "),
			format.Truncate(m.GenreNames(), titleWidth),
			format.Rating(m.AverageRating),
			format.Compact(m.RatingCount),
		}
	},
}

var personColumns = columns[catalog.Person]{
	header: []string{"ID", "NAME", "BORN", "COUNTRY", "GENDER", "RATING", "VOTES"},
	row: func(p catalog.Person) []string {
		return []string{
			strconv.Itoa(p.ID),
			format.Truncate(p.Name, titleWidth),
			p.BirthYear(),
			p.Country,
			p.Gender,
			format.Rating(p.AverageRating),
			format.Compact(p.RatingCount),
		}
	},
}

// writeTable writes items as an aligned table.
func writeTable[T any](w io.Writer, cols columns[T], items []T) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(cols.header, "\t"))
	for _, item := range items {
		fmt.Fprintln(tw, strings.Join(cols.row(item), "\t"))
	}
	return tw.Flush()
}

// writePager writes the pagination window as a single line, e.g.
// "‹ 1 … 4 [5] 6 … 12 ›  (230 results)".
func writePager(w io.Writer, win listing.Window, total int) error {
	var b strings.Builder
	if win.HasPrev() {
		b.WriteString("‹ ")
	}
	for i, link := range win.Links {
		if i > 0 {
			b.WriteByte(' ')
		}
		switch {
		case link.Gap:
			b.WriteString("…")
		case link.Current:
			fmt.Fprintf(&b, "[%d]", link.Page)
		default:
			b.WriteString(strconv.Itoa(link.Page))
		}
	}
	if win.HasNext() {
		b.WriteString(" ›")
	}
	_, err := fmt.Fprintf(w, "%s  (%s results)\n", b.String(), format.Number(total))
	return err
}

// describeFilters summarizes filters for a status line.
func describeFilters(kind listing.Kind, f listing.Filters) string {
	var parts []string
	if t := strings.TrimSpace(f.Text); t != "" {
		parts = append(parts, fmt.Sprintf("%s=%q", kind.TextParam, t))
	}
	if len(f.Countries) > 0 {
		parts = append(parts, "countries: "+strings.Join(f.Countries, ", "))
	}
	if len(f.Years) > 0 {
		parts = append(parts, "years: "+format.YearSpan(f.Years))
	}
	if len(f.Genres) > 0 {
		ids := make([]string, len(f.Genres))
		for i, id := range f.Genres {
			ids[i] = strconv.Itoa(id)
		}
		parts = append(parts, "genres: "+strings.Join(ids, ", "))
	}
	if f.Gender.Valid() {
		parts = append(parts, "gender: "+string(f.Gender))
	}
	if f.RatingCountMin != nil {
		parts = append(parts, "votes ≥ "+format.Number(*f.RatingCountMin))
	}
	if f.AverageRating != nil {
		parts = append(parts, "rating ≥ "+format.Rating(*f.AverageRating))
	}
	if len(parts) == 0 {
		return "no filters"
	}
	return strings.Join(parts, "; ")
}
