package urlutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeBaseURL(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"no scheme", "api.kino.local", "http://api.kino.local"},
		{"https", "https://kino.pl", "https://kino.pl"},
		{"trailing slashes", "http://kino.pl/api//", "http://kino.pl/api"},
		{"with port", "localhost:8000", "http://localhost:8000"},
		{"whitespace", "  http://kino.pl  ", "http://kino.pl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeBaseURL(tt.input))
		})
	}
}

func TestJoinPath(t *testing.T) {
	tests := []struct {
		name     string
		baseURL  string
		path     string
		expected string
	}{
		{"empty base", "", "/movies/filter", "/movies/filter"},
		{"with leading slash", "http://kino.pl/api", "/movies/filter", "http://kino.pl/api/movies/filter"},
		{"without leading slash", "http://kino.pl", "actors/filter", "http://kino.pl/actors/filter"},
		{"base with trailing slash", "http://kino.pl/", "/directors/filter", "http://kino.pl/directors/filter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, JoinPath(tt.baseURL, tt.path))
		})
	}
}

func TestWithQuery(t *testing.T) {
	assert.Equal(t, "http://x/m", WithQuery("http://x/m", ""))
	assert.Equal(t, "http://x/m?page=1", WithQuery("http://x/m", "?page=1"))
	assert.Equal(t, "http://x/m?a=b&page=1", WithQuery("http://x/m?a=b", "page=1"))
}

func TestValidateBaseURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr string
	}{
		{"valid http", "http://localhost:8000", ""},
		{"valid https", "https://kino.pl/api", ""},
		{"empty", "", "required"},
		{"no scheme", "kino.pl", "scheme"},
		{"file scheme", "file:///tmp/x", "unsupported"},
		{"no host", "http://", "host"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBaseURL(tt.url)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			if assert.Error(t, err) {
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
