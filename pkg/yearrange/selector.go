// Package yearrange turns repeated clicks on year buttons into either a
// single year or a contiguous range of years, without a modifier key.
//
// The first click selects one year, a second click on another year selects
// every displayed year between the two, and a third click starts over with a
// fresh single year. The Selector only tracks the click mode; the selection
// itself lives in a Target.
package yearrange

import (
	"fmt"
	"slices"
)

// Mode is the click state of a Selector.
type Mode int

// Selector modes.
const (
	ModeNew Mode = iota
	ModeSingle
	ModeRange
)

func (m Mode) String() string {
	switch m {
	case ModeNew:
		return "new"
	case ModeSingle:
		return "single"
	case ModeRange:
		return "range"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Target owns the selected years and applies the Selector's decisions.
type Target interface {
	// Toggle adds the year when absent and removes it when present.
	Toggle(year int)
	// Force replaces the selection with exactly the given year.
	Force(year int)
	// SelectRange replaces the selection with the given years.
	SelectRange(years []int)
}

// Selector is the three-state year click machine. The zero value is ready
// to use and starts in ModeNew.
type Selector struct {
	mode Mode
	last int
}

// Mode returns the current click mode.
func (s *Selector) Mode() Mode { return s.mode }

// Last returns the last clicked year, if any.
func (s *Selector) Last() (int, bool) {
	if s.mode == ModeNew {
		return 0, false
	}
	return s.last, true
}

// Reset returns to ModeNew. Call it whenever the filter panel is opened.
func (s *Selector) Reset() {
	s.mode = ModeNew
	s.last = 0
}

// Click handles a click on year. displayed is the year list currently shown
// to the user; a range is computed over that list only, so years hidden by
// truncation are not part of it.
func (s *Selector) Click(t Target, year int, displayed []int) {
	switch s.mode {
	case ModeSingle:
		if year == s.last {
			t.Toggle(year)
			s.Reset()
			return
		}
		from := slices.Index(displayed, s.last)
		to := slices.Index(displayed, year)
		if from < 0 || to < 0 {
			t.Force(year)
			s.last = year
			return
		}
		if from > to {
			from, to = to, from
		}
		t.SelectRange(slices.Clone(displayed[from : to+1]))
		s.mode = ModeRange
		s.last = year

	case ModeRange:
		t.Force(year)
		s.mode = ModeSingle
		s.last = year

	default:
		t.Toggle(year)
		s.mode = ModeSingle
		s.last = year
	}
}
