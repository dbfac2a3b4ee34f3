package listing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)

func TestCodec_Encode(t *testing.T) {
	tests := []struct {
		name     string
		kind     Kind
		state    State
		expected string
	}{
		{
			name:     "defaults",
			kind:     Movies,
			state:    Movies.DefaultState(),
			expected: "sort_by=title&sort_order=asc&page=1",
		},
		{
			name: "contiguous years and genre",
			kind: Movies,
			state: State{
				Filters: Filters{Years: []int{2021, 2022, 2023}, Genres: []int{5}},
				Sort:    SortOption{Field: "title", Order: Ascending},
				Page:    1,
			},
			expected: "years=2023-2021&genres=5&sort_by=title&sort_order=asc&page=1",
		},
		{
			name: "full movie filters in key order",
			kind: Movies,
			state: State{
				Filters: Filters{
					Text:           "Nóż w wodzie",
					Countries:      []string{"Polska", "Francja"},
					Years:          []int{1962, 1970},
					Genres:         []int{7, 3},
					RatingCountMin: Int(0),
					AverageRating:  Float(7.5),
				},
				Sort: SortOption{Field: "year", Order: Descending},
				Page: 3,
			},
			expected: "title=N%C3%B3%C5%BC+w+wodzie&countries=Francja,Polska&years=1970,1962&genres=3,7" +
				"&rating_count_min=0&average_rating=7.5&sort_by=year&sort_order=desc&page=3",
		},
		{
			name: "people listing uses name and gender",
			kind: Actors,
			state: State{
				Filters: Filters{Text: "Cybulski", Gender: GenderMale, Genres: []int{1}},
				Sort:    SortOption{Field: "birth_date", Order: Ascending},
				Page:    2,
			},
			expected: "name=Cybulski&gender=male&sort_by=birth_date&sort_order=asc&page=2",
		},
		{
			name: "movies drop gender",
			kind: Movies,
			state: State{
				Filters: Filters{Gender: GenderFemale},
				Sort:    Movies.DefaultSort,
				Page:    1,
			},
			expected: "sort_by=title&sort_order=asc&page=1",
		},
		{
			name: "invalid sort falls back to default",
			kind: Directors,
			state: State{
				Sort: SortOption{Field: "title", Order: "sideways"},
				Page: 0,
			},
			expected: "sort_by=name&sort_order=asc&page=1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codec := NewCodec(tt.kind, testNow)
			assert.Equal(t, tt.expected, codec.Encode(tt.state))
		})
	}
}

func TestCodec_RequestQuery(t *testing.T) {
	codec := NewCodec(Movies, testNow)
	st := State{
		Filters: Filters{Years: []int{2023, 2022, 2021}, Genres: []int{5}},
		Sort:    SortOption{Field: "title", Order: Ascending},
		Page:    1,
	}

	assert.Equal(t, "years=2023-2021&genres=5&sort_by=title&sort_order=asc&page=1&per_page=20",
		codec.RequestQuery(st, 20))
	assert.Equal(t, codec.Encode(st), codec.RequestQuery(st, 0))
}

func TestCodec_RoundTrip(t *testing.T) {
	cases := []struct {
		kind   Kind
		states []State
	}{
		{Movies, []State{
			Movies.DefaultState(),
			{
				Filters: Filters{
					Text:           "Popiół i diament & co",
					Countries:      []string{"Czechy", "Polska"},
					Years:          []int{2020, 2019, 2018, 2016},
					Genres:         []int{1, 12},
					RatingCountMin: Int(0),
					AverageRating:  Float(0),
				},
				Sort: SortOption{Field: "average_rating", Order: Descending},
				Page: 9,
			},
			{
				Filters: Filters{Years: []int{1900, 1901, 1902, 1903}},
				Sort:    SortOption{Field: "rating_count", Order: Ascending},
				Page:    1,
			},
			{
				Filters: Filters{Years: []int{2001, 2000}, AverageRating: Float(9.25)},
				Sort:    SortOption{Field: "year", Order: Ascending},
				Page:    4,
			},
		}},
		{Actors, []State{
			{
				Filters: Filters{
					Text:           "Krystyna Janda",
					Gender:         GenderFemale,
					Years:          []int{1952},
					RatingCountMin: Int(15),
				},
				Sort: SortOption{Field: "birth_date", Order: Descending},
				Page: 2,
			},
		}},
	}

	for _, tc := range cases {
		codec := NewCodec(tc.kind, testNow)
		for _, st := range tc.states {
			encoded := codec.Encode(st)
			decoded := codec.Decode(encoded)
			assert.True(t, st.Equal(decoded), "%s: %q decoded to %+v", tc.kind.Name, encoded, decoded)
			assert.Equal(t, encoded, codec.Encode(decoded), "encoding must be stable")
		}
	}
}

func TestCodec_RoundTripDropsValuesTheQueryCannotCarry(t *testing.T) {
	codec := NewCodec(Movies, testNow)

	tests := []struct {
		name    string
		filters Filters
		want    string
	}{
		{"genre ids below 1", Filters{Genres: []int{0, -4, 7}}, "genres=7&sort_by=title&sort_order=asc&page=1"},
		{"only invalid genre ids", Filters{Genres: []int{0}}, "sort_by=title&sort_order=asc&page=1"},
		{"country with a comma", Filters{Countries: []string{"Korea, Republic of", "Polska"}}, "countries=Polska&sort_by=title&sort_order=asc&page=1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := State{Filters: tt.filters, Sort: Movies.DefaultSort, Page: 1}
			encoded := codec.Encode(st)
			assert.Equal(t, tt.want, encoded)
			assert.True(t, st.Equal(codec.Decode(encoded)))
		})
	}
}

func TestCodec_Decode(t *testing.T) {
	codec := NewCodec(Movies, testNow)

	t.Run("years range expands descending", func(t *testing.T) {
		st := codec.Decode("years=2020-2018")
		assert.Equal(t, []int{2020, 2019, 2018}, st.Filters.Years)
	})

	t.Run("reversed range expands the same", func(t *testing.T) {
		st := codec.Decode("?years=2018-2020")
		assert.Equal(t, []int{2020, 2019, 2018}, st.Filters.Years)
	})

	t.Run("years outside the universe are dropped", func(t *testing.T) {
		st := codec.Decode("years=1899,2030,1950,abc")
		assert.Equal(t, []int{1950}, st.Filters.Years)

		st = codec.Decode("years=2027-2024")
		assert.Equal(t, []int{2025, 2024}, st.Filters.Years)
	})

	t.Run("malformed values fall back", func(t *testing.T) {
		st := codec.Decode("page=abc&rating_count_min=-3&average_rating=11&genres=x,0,4&sort_by=bogus&sort_order=up")
		assert.Equal(t, 1, st.Page)
		assert.Nil(t, st.Filters.RatingCountMin)
		assert.Nil(t, st.Filters.AverageRating)
		assert.Equal(t, []int{4}, st.Filters.Genres)
		assert.Equal(t, Movies.DefaultSort, st.Sort)
	})

	t.Run("unknown and unsupported keys are ignored", func(t *testing.T) {
		st := codec.Decode("foo=bar&gender=male&name=Wajda&page=2")
		assert.True(t, st.Filters.IsEmpty())
		assert.Equal(t, 2, st.Page)
	})

	t.Run("bad escapes keep the rest", func(t *testing.T) {
		st := codec.Decode("title=%zz&countries=Polska&page=5")
		assert.Equal(t, []string{"Polska"}, st.Filters.Countries)
		assert.Equal(t, 5, st.Page)
	})

	t.Run("empty query is the default state", func(t *testing.T) {
		st := codec.Decode("")
		require.True(t, st.Equal(Movies.DefaultState()))
	})
}

func TestCodec_Canonical(t *testing.T) {
	codec := NewCodec(Movies, testNow)
	assert.Equal(t,
		"countries=Niemcy,Polska&years=2020-2018&sort_by=year&sort_order=desc&page=1",
		codec.Canonical("page=1&sort_order=desc&years=2018,2019,2020&sort_by=year&countries=Polska,Niemcy,Polska"))
}
