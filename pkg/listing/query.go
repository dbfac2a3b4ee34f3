package listing

import (
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Codec maps a listing State to its shareable query string and back.
//
// Encoding is canonical: keys are written in a fixed order, sets in their
// normalized order, and sort_by, sort_order and page are always present.
// Decoding never fails; anything malformed falls back to unset or to the
// kind's defaults.
type Codec struct {
	Kind    Kind
	MinYear int
	MaxYear int
}

// NewCodec returns a codec for kind accepting years from MinYear to the
// current year of now.
func NewCodec(kind Kind, now time.Time) Codec {
	return Codec{Kind: kind, MinYear: MinYear, MaxYear: now.Year()}
}

// Encode returns the canonical query string (without a leading "?").
func (c Codec) Encode(s State) string {
	var q queryBuilder
	c.writeFilters(&q, s.Filters)
	sort := c.sortOrDefault(s.Sort)
	q.add(ParamSortBy, sort.Field)
	q.add(ParamSortOrder, string(sort.Order))
	q.add(ParamPage, strconv.Itoa(max(s.Page, 1)))
	return q.String()
}

// RequestQuery returns the backend filter request query: the canonical
// encoding followed by per_page.
func (c Codec) RequestQuery(s State, perPage int) string {
	q := c.Encode(s)
	if perPage > 0 {
		q += "&" + ParamPerPage + "=" + strconv.Itoa(perPage)
	}
	return q
}

// Canonical re-encodes a raw query string.
func (c Codec) Canonical(raw string) string {
	return c.Encode(c.Decode(raw))
}

func (c Codec) writeFilters(q *queryBuilder, raw Filters) {
	f := c.Kind.Restrict(raw.Normalize())
	if text := strings.TrimSpace(f.Text); text != "" {
		q.add(c.Kind.TextParam, f.Text)
	}
	if len(f.Countries) > 0 {
		q.addList(ParamCountries, f.Countries)
	}
	if years := EncodeYears(c.clampYears(f.Years)); years != "" {
		q.addRaw(ParamYears, years)
	}
	if len(f.Genres) > 0 {
		q.addRaw(ParamGenres, joinInts(f.Genres))
	}
	if f.Gender.Valid() {
		q.add(ParamGender, string(f.Gender))
	}
	if f.RatingCountMin != nil && *f.RatingCountMin >= 0 {
		q.addRaw(ParamRatingCountMin, strconv.Itoa(*f.RatingCountMin))
	}
	if v := f.AverageRating; v != nil && validRating(*v) {
		q.addRaw(ParamAverageRating, strconv.FormatFloat(*v, 'f', -1, 64))
	}
}

// Decode parses a query string (with or without a leading "?") into a
// State. Unknown keys are ignored.
func (c Codec) Decode(raw string) State {
	// ParseQuery keeps every well-formed pair even when it reports an error.
	values, _ := url.ParseQuery(strings.TrimPrefix(raw, "?"))

	st := c.Kind.DefaultState()
	f := &st.Filters

	f.Text = values.Get(c.Kind.TextParam)
	if c.Kind.Supports(KeyCountries) {
		f.Countries = splitList(values.Get(ParamCountries))
	}
	if c.Kind.Supports(KeyYears) {
		f.Years = DecodeYears(values.Get(ParamYears), c.MinYear, c.MaxYear)
	}
	if c.Kind.Supports(KeyGenres) {
		f.Genres = decodeIDs(values.Get(ParamGenres))
	}
	if c.Kind.Supports(KeyGender) {
		f.Gender = ParseGender(values.Get(ParamGender))
	}
	if c.Kind.Supports(KeyRatingCountMin) {
		if n, err := strconv.Atoi(strings.TrimSpace(values.Get(ParamRatingCountMin))); err == nil && n >= 0 {
			f.RatingCountMin = Int(n)
		}
	}
	if c.Kind.Supports(KeyAverageRating) {
		if v, err := strconv.ParseFloat(strings.TrimSpace(values.Get(ParamAverageRating)), 64); err == nil && validRating(v) {
			f.AverageRating = Float(v)
		}
	}
	st.Filters = f.Normalize()

	if field := strings.TrimSpace(values.Get(ParamSortBy)); c.Kind.SortableBy(field) {
		st.Sort.Field = field
	}
	if order, ok := ParseSortOrder(values.Get(ParamSortOrder)); ok {
		st.Sort.Order = order
	}
	if p, err := strconv.Atoi(strings.TrimSpace(values.Get(ParamPage))); err == nil && p >= 1 {
		st.Page = p
	}
	return st
}

func (c Codec) sortOrDefault(s SortOption) SortOption {
	out := c.Kind.DefaultSort
	if c.Kind.SortableBy(s.Field) {
		out.Field = s.Field
	}
	if s.Order == Ascending || s.Order == Descending {
		out.Order = s.Order
	}
	return out
}

func (c Codec) clampYears(years []int) []int {
	if c.MaxYear == 0 {
		return years
	}
	out := make([]int, 0, len(years))
	for _, y := range years {
		if y >= c.MinYear && y <= c.MaxYear {
			out = append(out, y)
		}
	}
	return out
}

func validRating(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= 10
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return normalizeStrings(strings.Split(raw, ","))
}

func decodeIDs(raw string) []int {
	var out []int
	for _, part := range strings.Split(raw, ",") {
		id, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || id < 1 {
			continue
		}
		out = append(out, id)
	}
	return normalizeInts(out, false)
}

func joinInts(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}

// queryBuilder writes key=value pairs in insertion order, unlike url.Values.
type queryBuilder struct {
	sb strings.Builder
}

func (q *queryBuilder) addRaw(key, value string) {
	if q.sb.Len() > 0 {
		q.sb.WriteByte('&')
	}
	q.sb.WriteString(key)
	q.sb.WriteByte('=')
	q.sb.WriteString(value)
}

func (q *queryBuilder) add(key, value string) {
	q.addRaw(key, url.QueryEscape(value))
}

func (q *queryBuilder) addList(key string, values []string) {
	escaped := make([]string, len(values))
	for i, v := range values {
		escaped[i] = url.QueryEscape(v)
	}
	q.addRaw(key, strings.Join(escaped, ","))
}

func (q *queryBuilder) String() string {
	return q.sb.String()
}
