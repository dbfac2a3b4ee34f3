package listing

import (
	"slices"
	"strconv"
	"strings"

	"github.com/jmylchreest/kinoteka/pkg/listing"
	"github.com/jmylchreest/kinoteka/pkg/yearrange"
)

// Panel holds the staged filters of an open filter panel. Nothing staged
// reaches the listing until the page commits it with Search.
//
// A Panel is not safe for concurrent use.
type Panel struct {
	kind     listing.Kind
	staged   listing.Filters
	years    *yearrange.List
	selector yearrange.Selector

	ratingCountRaw   string
	averageRatingRaw string

	open bool
}

// NewPanel returns a panel for kind offering the given year universe,
// newest first, truncated to displayLimit buttons until ShowAllYears.
func NewPanel(kind listing.Kind, years []int, displayLimit int) *Panel {
	return &Panel{
		kind:  kind,
		years: yearrange.NewList(years, displayLimit),
	}
}

// Open seeds the staged filters from the committed ones and restarts the
// year click machine.
func (p *Panel) Open(committed listing.Filters) {
	p.staged = p.kind.Restrict(committed.Normalize())
	p.selector.Reset()
	p.ratingCountRaw = formatOptionalInt(p.staged.RatingCountMin)
	p.averageRatingRaw = formatOptionalFloat(p.staged.AverageRating)
	p.open = true
}

// IsOpen reports whether the staged filters were seeded by Open and not
// invalidated since.
func (p *Panel) IsOpen() bool { return p.open }

// Close marks the staged filters stale; the next Open reseeds them.
func (p *Panel) Close() { p.open = false }

// Filters returns the staged filters, normalized.
func (p *Panel) Filters() listing.Filters {
	return p.staged.Normalize()
}

// Kind returns the listing kind the panel filters.
func (p *Panel) Kind() listing.Kind { return p.kind }

// ToggleCountry adds or removes a country. Names containing a comma are
// rejected: the query string joins countries with commas.
func (p *Panel) ToggleCountry(country string) bool {
	country = strings.TrimSpace(country)
	if !listing.ValidCountry(country) || !p.kind.Supports(listing.KeyCountries) {
		return false
	}
	p.staged.Countries = toggle(p.staged.Countries, country)
	return true
}

// ToggleGenre adds or removes a genre id. Ids below 1 are ignored.
func (p *Panel) ToggleGenre(id int) {
	if id < 1 || !p.kind.Supports(listing.KeyGenres) {
		return
	}
	p.staged.Genres = toggle(p.staged.Genres, id)
}

// SetGender stages a gender; an unknown value unsets it.
func (p *Panel) SetGender(g listing.Gender) {
	if !p.kind.Supports(listing.KeyGender) {
		return
	}
	if !g.Valid() {
		g = listing.GenderUnset
	}
	p.staged.Gender = g
}

// SetRatingCountMin stages the raw text of the minimum rating count field.
// Invalid text leaves the filter unset.
func (p *Panel) SetRatingCountMin(raw string) {
	if !p.kind.Supports(listing.KeyRatingCountMin) {
		return
	}
	p.ratingCountRaw = raw
	p.staged.RatingCountMin = listing.ParseRatingCountMin(raw)
}

// SetAverageRating stages the raw text of the minimum average rating field.
// Invalid or out-of-range text leaves the filter unset.
func (p *Panel) SetAverageRating(raw string) {
	if !p.kind.Supports(listing.KeyAverageRating) {
		return
	}
	p.averageRatingRaw = raw
	p.staged.AverageRating = listing.ParseAverageRating(raw)
}

// RatingCountText returns the field text as last typed.
func (p *Panel) RatingCountText() string { return p.ratingCountRaw }

// AverageRatingText returns the field text as last typed.
func (p *Panel) AverageRatingText() string { return p.averageRatingRaw }

// ClickYear applies a click on a year button.
func (p *Panel) ClickYear(year int) {
	if !p.kind.Supports(listing.KeyYears) {
		return
	}
	p.selector.Click(yearTarget{p}, year, p.years.Displayed())
}

// ShowAllYears switches between the truncated and the full year list.
func (p *Panel) ShowAllYears(v bool) { p.years.SetShowAll(v) }

// DisplayedYears returns the year buttons currently shown.
func (p *Panel) DisplayedYears() []int { return p.years.Displayed() }

// YearsTruncated reports whether some year buttons are hidden.
func (p *Panel) YearsTruncated() bool { return p.years.Truncated() }

// YearMode returns the year click mode.
func (p *Panel) YearMode() yearrange.Mode { return p.selector.Mode() }

// Clear empties the staged filters.
func (p *Panel) Clear() {
	p.staged = listing.Filters{}
	p.selector.Reset()
	p.ratingCountRaw = ""
	p.averageRatingRaw = ""
}

// yearTarget stores year clicks in the staged filters.
type yearTarget struct{ p *Panel }

func (t yearTarget) Toggle(year int) {
	t.p.staged.Years = toggle(t.p.staged.Years, year)
}

func (t yearTarget) Force(year int) {
	t.p.staged.Years = []int{year}
}

func (t yearTarget) SelectRange(years []int) {
	t.p.staged.Years = slices.Clone(years)
}

func toggle[T comparable](set []T, v T) []T {
	if i := slices.Index(set, v); i >= 0 {
		return slices.Delete(slices.Clone(set), i, i+1)
	}
	return append(slices.Clone(set), v)
}

func formatOptionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatOptionalFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
