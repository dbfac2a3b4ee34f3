// Package catalog provides a Go client for the filter endpoints of the movie
// catalog REST API.
//
// The backend exposes one filter endpoint per listing:
//
//	GET {base}/movies/filter
//	GET {base}/actors/filter
//	GET {base}/directors/filter
//
// Each accepts the shareable listing query (see package listing) plus
// per_page, and answers with one page of results:
//
//	{"items": [...], "pagination": {"page": 1, "per_page": 20, "total": 57, "total_pages": 3}}
//
// # Basic Usage
//
//	client := catalog.NewClient("http://localhost:8000/api")
//	movies := catalog.NewEndpoint[catalog.Movie](client, listing.Movies)
//	page, err := movies.Fetch(ctx, "years=2023-2021&genres=5&sort_by=title&sort_order=asc&page=1&per_page=20")
//
// Non-2xx answers are returned as *APIError.
package catalog
