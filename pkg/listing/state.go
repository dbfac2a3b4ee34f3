package listing

import "strings"

// SortOrder is the direction of a sort.
type SortOrder string

// Sort orders.
const (
	Ascending  SortOrder = "asc"
	Descending SortOrder = "desc"
)

// ParseSortOrder parses "asc" or "desc" (case-insensitive).
func ParseSortOrder(s string) (SortOrder, bool) {
	switch SortOrder(strings.ToLower(strings.TrimSpace(s))) {
	case Ascending:
		return Ascending, true
	case Descending:
		return Descending, true
	default:
		return "", false
	}
}

// SortOption is a fully specified sort: a column and a direction.
type SortOption struct {
	Field string
	Order SortOrder
}

// State is everything that determines which page of results a listing shows.
// A URL query string fully determines a State and vice versa.
type State struct {
	Filters Filters
	Sort    SortOption
	Page    int
}

// Equal reports structural equality of two states.
func (s State) Equal(o State) bool {
	return s.Page == o.Page && s.Sort == o.Sort && s.Filters.Equal(o.Filters)
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := s
	out.Filters = s.Filters.Clone()
	return out
}

// WithPage returns a copy of s showing the given page (at least 1).
func (s State) WithPage(page int) State {
	out := s.Clone()
	out.Page = max(page, 1)
	return out
}

// WithFilters returns a copy of s with new filters, back on the first page.
func (s State) WithFilters(f Filters) State {
	out := s.Clone()
	out.Filters = f.Normalize()
	out.Page = 1
	return out
}

// WithSort returns a copy of s with a new sort, back on the first page.
func (s State) WithSort(sort SortOption) State {
	out := s.Clone()
	out.Sort = sort
	out.Page = 1
	return out
}
