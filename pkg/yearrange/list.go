package yearrange

import "slices"

// DefaultDisplayLimit is how many years are shown before "show all".
const DefaultDisplayLimit = 15

// List is the year universe offered as buttons, newest first, optionally
// truncated for display.
type List struct {
	years   []int
	limit   int
	showAll bool
}

// NewList returns a list over years showing the first limit entries until
// ShowAll is set. A limit below 1 shows everything.
func NewList(years []int, limit int) *List {
	return &List{years: slices.Clone(years), limit: limit}
}

// All returns every year of the universe.
func (l *List) All() []int { return slices.Clone(l.years) }

// ShowAll reports whether the list is untruncated.
func (l *List) ShowAll() bool { return l.showAll }

// SetShowAll switches between the truncated and the complete list.
func (l *List) SetShowAll(v bool) { l.showAll = v }

// Truncated reports whether some years are currently hidden.
func (l *List) Truncated() bool {
	return !l.showAll && l.limit > 0 && len(l.years) > l.limit
}

// Displayed returns the years currently shown.
func (l *List) Displayed() []int {
	if l.Truncated() {
		return slices.Clone(l.years[:l.limit])
	}
	return l.All()
}
