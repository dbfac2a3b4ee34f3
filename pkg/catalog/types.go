package catalog

import "strings"

// Pagination is the paging block of a filter response.
type Pagination struct {
	Page       int `json:"page" yaml:"page"`
	PerPage    int `json:"per_page" yaml:"per_page"`
	Total      int `json:"total" yaml:"total"`
	TotalPages int `json:"total_pages" yaml:"total_pages"`
}

// Page is one page of filter results.
type Page[T any] struct {
	Items      []T        `json:"items" yaml:"items"`
	Pagination Pagination `json:"pagination" yaml:"pagination"`
}

// Genre is a movie genre.
type Genre struct {
	ID   int    `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Movie is an entry of the movies listing.
type Movie struct {
	ID            int      `json:"id" yaml:"id"`
	Title         string   `json:"title" yaml:"title"`
	Year          int      `json:"year,omitempty" yaml:"year,omitempty"`
	Countries     []string `json:"countries,omitempty" yaml:"countries,omitempty"`
	Genres        []Genre  `json:"genres,omitempty" yaml:"genres,omitempty"`
	Directors     []string `json:"directors,omitempty" yaml:"directors,omitempty"`
	AverageRating float64  `json:"average_rating" yaml:"average_rating"`
	RatingCount   int      `json:"rating_count" yaml:"rating_count"`
	PosterURL     string   `json:"poster_url,omitempty" yaml:"poster_url,omitempty"`
}

// GenreNames returns the genre names joined with ", ".
func (m Movie) GenreNames() string {
	names := make([]string, len(m.Genres))
	for i, g := range m.Genres {
		names[i] = g.Name
	}
	return strings.Join(names, ", ")
}

// Person is an entry of the actors and directors listings.
type Person struct {
	ID            int     `json:"id" yaml:"id"`
	Name          string  `json:"name" yaml:"name"`
	BirthDate     string  `json:"birth_date,omitempty" yaml:"birth_date,omitempty"`
	Country       string  `json:"country,omitempty" yaml:"country,omitempty"`
	Gender        string  `json:"gender,omitempty" yaml:"gender,omitempty"`
	AverageRating float64 `json:"average_rating" yaml:"average_rating"`
	RatingCount   int     `json:"rating_count" yaml:"rating_count"`
	PhotoURL      string  `json:"photo_url,omitempty" yaml:"photo_url,omitempty"`
}

// BirthYear returns the year part of BirthDate, or "" when unknown.
func (p Person) BirthYear() string {
	if len(p.BirthDate) < 4 {
		return ""
	}
	return p.BirthDate[:4]
}

// Item is an entry decoded without a schema, for callers that pass items
// through unchanged.
type Item = map[string]any
