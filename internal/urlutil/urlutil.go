// Package urlutil provides URL helpers for the catalog base URL.
package urlutil

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// URL scheme constants.
const (
	SchemeHTTP  = "http"
	SchemeHTTPS = "https"
)

// NormalizeBaseURL normalizes a base URL for consistent use:
//   - Adds http:// scheme if no scheme provided
//   - Removes trailing slashes for clean path joining
//
// Examples:
//
//	"api.kino.local"         -> "http://api.kino.local"
//	"https://kino.pl/api/"   -> "https://kino.pl/api"
//	"localhost:8000"         -> "http://localhost:8000"
func NormalizeBaseURL(baseURL string) string {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return ""
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}
	return strings.TrimRight(baseURL, "/")
}

// JoinPath joins a base URL with a path, ensuring single slashes.
func JoinPath(baseURL, path string) string {
	if baseURL == "" {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.TrimRight(baseURL, "/") + path
}

// WithQuery appends an already encoded query string to u.
func WithQuery(u, rawQuery string) string {
	rawQuery = strings.TrimPrefix(rawQuery, "?")
	if rawQuery == "" {
		return u
	}
	if strings.Contains(u, "?") {
		return u + "&" + rawQuery
	}
	return u + "?" + rawQuery
}

// ValidateBaseURL checks that u is an absolute http(s) URL with a host.
func ValidateBaseURL(u string) error {
	if u == "" {
		return errors.New("URL is required")
	}

	parsed, err := url.Parse(u)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}

	switch strings.ToLower(parsed.Scheme) {
	case SchemeHTTP, SchemeHTTPS:
	case "":
		return errors.New("URL must include a scheme (http:// or https://)")
	default:
		return fmt.Errorf("unsupported URL scheme: %s (supported: http, https)", parsed.Scheme)
	}
	if parsed.Host == "" {
		return errors.New("URL must include a host")
	}
	return nil
}
