// Package listing models the state of a catalog listing page (committed
// filters, sort option and page number) and the shareable query-string
// codec that maps that state to page URLs and backend filter requests.
package listing

import (
	"slices"
	"strings"
)

// Gender is the single-valued gender filter for people listings.
type Gender string

// Gender values. GenderUnset means no constraint.
const (
	GenderUnset  Gender = ""
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Valid reports whether g is a known, non-empty gender value.
func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale
}

// ParseGender returns the gender for s, or GenderUnset when s is not a known value.
func ParseGender(s string) Gender {
	g := Gender(strings.ToLower(strings.TrimSpace(s)))
	if g.Valid() {
		return g
	}
	return GenderUnset
}

// Filters holds the user-chosen constraints of a listing.
//
// Every field has an explicit unset state: empty string, nil slice, nil
// pointer or GenderUnset. A pointer to zero is a real constraint and is
// serialized, unlike the unset value.
type Filters struct {
	// Text is the free-text title or name query. It is the only live field.
	Text string

	// Countries is a set of country names, ascending once normalized.
	Countries []string

	// Years is a set of release (or birth) years, descending once normalized.
	Years []int

	// Genres is a set of numeric genre ids, ascending once normalized.
	Genres []int

	// Gender restricts people listings.
	Gender Gender

	// RatingCountMin is the minimum number of ratings (>= 0).
	RatingCountMin *int

	// AverageRating is the minimum average rating (0 to 10).
	AverageRating *float64
}

// Int returns a pointer to v, for building Filters literals.
func Int(v int) *int { return &v }

// Float returns a pointer to v, for building Filters literals.
func Float(v float64) *float64 { return &v }

// Normalize returns a copy of f with every set in canonical order and
// without duplicates or blank entries. Values the query string cannot carry
// are dropped: countries containing a comma and genre ids below 1.
func (f Filters) Normalize() Filters {
	out := f.Clone()
	out.Countries = normalizeStrings(slices.DeleteFunc(slices.Clone(f.Countries), func(c string) bool {
		return strings.Contains(c, ",")
	}))
	out.Years = normalizeInts(f.Years, true)
	out.Genres = normalizeInts(slices.DeleteFunc(slices.Clone(f.Genres), func(id int) bool {
		return id < 1
	}), false)
	if !out.Gender.Valid() {
		out.Gender = GenderUnset
	}
	return out
}

// IsEmpty reports whether f carries no constraint at all.
func (f Filters) IsEmpty() bool {
	n := f.Normalize()
	return strings.TrimSpace(n.Text) == "" &&
		len(n.Countries) == 0 &&
		len(n.Years) == 0 &&
		len(n.Genres) == 0 &&
		!f.Gender.Valid() &&
		f.RatingCountMin == nil &&
		f.AverageRating == nil
}

// Equal reports whether f and o describe the same constraints.
// Set fields are compared as sets; pointer fields by value.
func (f Filters) Equal(o Filters) bool {
	a, b := f.Normalize(), o.Normalize()
	return strings.TrimSpace(a.Text) == strings.TrimSpace(b.Text) &&
		slices.Equal(a.Countries, b.Countries) &&
		slices.Equal(a.Years, b.Years) &&
		slices.Equal(a.Genres, b.Genres) &&
		a.Gender == b.Gender &&
		equalPtr(a.RatingCountMin, b.RatingCountMin) &&
		equalPtr(a.AverageRating, b.AverageRating)
}

// Clone returns a deep copy of f.
func (f Filters) Clone() Filters {
	out := f
	out.Countries = slices.Clone(f.Countries)
	out.Years = slices.Clone(f.Years)
	out.Genres = slices.Clone(f.Genres)
	if f.RatingCountMin != nil {
		out.RatingCountMin = Int(*f.RatingCountMin)
	}
	if f.AverageRating != nil {
		out.AverageRating = Float(*f.AverageRating)
	}
	return out
}

// ValidCountry reports whether name can be used as a country filter: it is
// not blank and holds no comma.
func ValidCountry(name string) bool {
	return strings.TrimSpace(name) != "" && !strings.Contains(name, ",")
}

// HasYear reports whether year is part of the selection.
func (f Filters) HasYear(year int) bool {
	return slices.Contains(f.Years, year)
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func normalizeStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || slices.Contains(out, s) {
			continue
		}
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil
	}
	slices.Sort(out)
	return out
}

func normalizeInts(in []int, descending bool) []int {
	if len(in) == 0 {
		return nil
	}
	out := slices.Clone(in)
	slices.Sort(out)
	out = slices.Compact(out)
	if descending {
		slices.Reverse(out)
	}
	return out
}
