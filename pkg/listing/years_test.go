package listing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestYears(t *testing.T) {
	years := Years(time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), MinYear)
	assert.Len(t, years, 126)
	assert.Equal(t, 2025, years[0])
	assert.Equal(t, 1900, years[len(years)-1])

	assert.Nil(t, Years(time.Date(1800, time.January, 1, 0, 0, 0, 0, time.UTC), MinYear))
}

func TestEncodeYears(t *testing.T) {
	tests := []struct {
		name     string
		years    []int
		expected string
	}{
		{"empty", nil, ""},
		{"single", []int{1999}, "1999"},
		{"two contiguous stay a list", []int{2019, 2020}, "2020,2019"},
		{"three contiguous collapse", []int{2018, 2020, 2019}, "2020-2018"},
		{"gap stays a list", []int{2020, 2019, 2017}, "2020,2019,2017"},
		{"duplicates ignored", []int{2020, 2020, 2019, 2018}, "2020-2018"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, EncodeYears(tt.years))
		})
	}
}

func TestDecodeYears(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected []int
	}{
		{"empty", "", nil},
		{"range", "2020-2018", []int{2020, 2019, 2018}},
		{"list", "2001,1999", []int{2001, 1999}},
		{"mixed", "1990,2002-2000", []int{2002, 2001, 2000, 1990}},
		{"clamped range", "1898-1901", []int{1901, 1900}},
		{"garbage", "x-y,abc,,-", nil},
		{"negative", "-5", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DecodeYears(tt.raw, MinYear, 2025))
		})
	}
}
