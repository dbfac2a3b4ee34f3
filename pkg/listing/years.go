package listing

import (
	"strconv"
	"strings"
	"time"
)

// MinYear is the oldest year offered by the year filter.
const MinYear = 1900

// Years returns the year universe from the current year of now down to floor,
// newest first.
func Years(now time.Time, floor int) []int {
	top := now.Year()
	if top < floor {
		return nil
	}
	out := make([]int, 0, top-floor+1)
	for y := top; y >= floor; y-- {
		out = append(out, y)
	}
	return out
}

// EncodeYears serializes a year set. The years are sorted descending; when
// there are more than two and they are contiguous the result is "max-min",
// otherwise a comma list. An empty set encodes to "".
func EncodeYears(years []int) string {
	ys := normalizeInts(years, true)
	switch {
	case len(ys) == 0:
		return ""
	case len(ys) > 2 && contiguous(ys):
		return strconv.Itoa(ys[0]) + "-" + strconv.Itoa(ys[len(ys)-1])
	}
	parts := make([]string, len(ys))
	for i, y := range ys {
		parts[i] = strconv.Itoa(y)
	}
	return strings.Join(parts, ",")
}

// DecodeYears parses the years parameter. Each comma-separated element is
// either a year or a "start-end" range, which expands counting down from the
// larger bound. Values outside [floor, ceil] and malformed elements are dropped.
func DecodeYears(raw string, floor, ceil int) []int {
	var out []int
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if lo, hi, ok := parseYearRange(part); ok {
			if lo > hi {
				lo, hi = hi, lo
			}
			for y := min(hi, ceil); y >= max(lo, floor); y-- {
				out = append(out, y)
			}
			continue
		}
		y, err := strconv.Atoi(part)
		if err != nil || y < floor || y > ceil {
			continue
		}
		out = append(out, y)
	}
	return normalizeInts(out, true)
}

func parseYearRange(s string) (int, int, bool) {
	a, b, found := strings.Cut(s, "-")
	if !found {
		return 0, 0, false
	}
	start, err := strconv.Atoi(strings.TrimSpace(a))
	if err != nil {
		return 0, 0, false
	}
	end, err := strconv.Atoi(strings.TrimSpace(b))
	if err != nil {
		return 0, 0, false
	}
	return start, end, true
}

// contiguous reports whether a descending, deduplicated list has no gaps.
func contiguous(desc []int) bool {
	for i := 1; i < len(desc); i++ {
		if desc[i-1]-desc[i] != 1 {
			return false
		}
	}
	return true
}
