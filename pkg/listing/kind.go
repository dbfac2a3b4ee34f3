package listing

import "slices"

// Query parameter names shared by page URLs and backend filter requests.
const (
	ParamTitle          = "title"
	ParamName           = "name"
	ParamCountries      = "countries"
	ParamYears          = "years"
	ParamGenres         = "genres"
	ParamGender         = "gender"
	ParamRatingCountMin = "rating_count_min"
	ParamAverageRating  = "average_rating"
	ParamSortBy         = "sort_by"
	ParamSortOrder      = "sort_order"
	ParamPage           = "page"
	ParamPerPage        = "per_page"
)

// Key identifies a categorical or numeric filter a listing supports.
// The free-text filter is always supported and is not a Key.
type Key uint8

// Filter keys.
const (
	KeyCountries Key = 1 << iota
	KeyYears
	KeyGenres
	KeyGender
	KeyRatingCountMin
	KeyAverageRating
)

// Kind describes one listing page: which backend endpoint it calls,
// which filters it exposes and how it may be sorted.
type Kind struct {
	// Name is the listing name used in CLI arguments and gateway paths.
	Name string

	// Path is the backend filter endpoint path.
	Path string

	// TextParam is the query key of the free-text field.
	TextParam string

	// Keys is the set of supported filters.
	Keys Key

	// SortFields lists the sortable columns; the first is the default.
	SortFields []string

	// DefaultSort is applied when the URL carries no valid sort.
	DefaultSort SortOption
}

// Listing kinds served by the catalog backend.
var (
	Movies = Kind{
		Name:        "movies",
		Path:        "/movies/filter",
		TextParam:   ParamTitle,
		Keys:        KeyCountries | KeyYears | KeyGenres | KeyRatingCountMin | KeyAverageRating,
		SortFields:  []string{"title", "year", "average_rating", "rating_count"},
		DefaultSort: SortOption{Field: "title", Order: Ascending},
	}

	Actors = Kind{
		Name:        "actors",
		Path:        "/actors/filter",
		TextParam:   ParamName,
		Keys:        KeyCountries | KeyYears | KeyGender | KeyRatingCountMin | KeyAverageRating,
		SortFields:  []string{"name", "birth_date", "average_rating", "rating_count"},
		DefaultSort: SortOption{Field: "name", Order: Ascending},
	}

	Directors = Kind{
		Name:        "directors",
		Path:        "/directors/filter",
		TextParam:   ParamName,
		Keys:        KeyCountries | KeyYears | KeyGender | KeyRatingCountMin | KeyAverageRating,
		SortFields:  []string{"name", "birth_date", "average_rating", "rating_count"},
		DefaultSort: SortOption{Field: "name", Order: Ascending},
	}
)

// Kinds returns every known listing kind.
func Kinds() []Kind {
	return []Kind{Movies, Actors, Directors}
}

// KindByName looks up a listing kind by its name.
func KindByName(name string) (Kind, bool) {
	for _, k := range Kinds() {
		if k.Name == name {
			return k, true
		}
	}
	return Kind{}, false
}

// Supports reports whether the kind exposes the given filter.
func (k Kind) Supports(key Key) bool {
	return k.Keys&key != 0
}

// SortableBy reports whether field is one of the kind's sortable columns.
func (k Kind) SortableBy(field string) bool {
	return slices.Contains(k.SortFields, field)
}

// DefaultState returns the page-load state used when the URL is empty.
func (k Kind) DefaultState() State {
	return State{Sort: k.DefaultSort, Page: 1}
}

// Restrict clears the filters the kind does not support.
func (k Kind) Restrict(f Filters) Filters {
	out := f.Clone()
	if !k.Supports(KeyCountries) {
		out.Countries = nil
	}
	if !k.Supports(KeyYears) {
		out.Years = nil
	}
	if !k.Supports(KeyGenres) {
		out.Genres = nil
	}
	if !k.Supports(KeyGender) {
		out.Gender = GenderUnset
	}
	if !k.Supports(KeyRatingCountMin) {
		out.RatingCountMin = nil
	}
	if !k.Supports(KeyAverageRating) {
		out.AverageRating = nil
	}
	return out
}
