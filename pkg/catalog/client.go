package catalog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/jmylchreest/kinoteka/internal/urlutil"
	"github.com/jmylchreest/kinoteka/internal/version"
	"github.com/jmylchreest/kinoteka/pkg/listing"
)

// Default configuration values.
const (
	DefaultTimeout       = 15 * time.Second
	maxErrorBodyReadSize = 1024
)

// HTTP header constants.
const (
	headerUserAgent     = "User-Agent"
	headerAccept        = "Accept"
	headerAuthorization = "Authorization"
)

// APIError is a non-2xx answer of the catalog backend.
type APIError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// Message extracts a human readable message from the error body. The
// backend answers errors as {"detail": "..."} or {"error": "..."}.
func (e *APIError) Message() string {
	var body struct {
		Detail  string `json:"detail"`
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal([]byte(e.Body), &body); err == nil {
		for _, m := range []string{body.Detail, body.Error, body.Message} {
			if m != "" {
				return m
			}
		}
	}
	return http.StatusText(e.StatusCode)
}

// Client is a catalog API client.
type Client struct {
	// BaseURL is the API base URL (e.g., "http://localhost:8000/api").
	BaseURL string

	// Token is an optional bearer token sent with every request.
	Token string

	// HTTPClient is the standard HTTP client used for requests.
	// If nil, a default client with DefaultTimeout is used.
	HTTPClient *http.Client

	// UserAgent is the User-Agent header sent with requests.
	UserAgent string

	logger *slog.Logger
}

// ClientOption is a function that configures a Client.
type ClientOption func(*Client)

// NewClient creates a new catalog API client.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		BaseURL: urlutil.NormalizeBaseURL(baseURL),
		HTTPClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		UserAgent: version.UserAgent(),
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithHTTPClient sets a custom standard library HTTP client, such as the
// StandardClient of a resilient httpclient.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.HTTPClient = client
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.UserAgent = ua
	}
}

// WithTimeout sets the HTTP client timeout.
// This creates a new HTTP client with the specified timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.HTTPClient = &http.Client{
			Timeout: timeout,
		}
	}
}

// WithToken sets the bearer token.
func WithToken(token string) ClientOption {
	return func(c *Client) {
		c.Token = token
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// FilterURL returns the URL of the filter endpoint of kind for query.
func (c *Client) FilterURL(kind listing.Kind, query string) string {
	return urlutil.WithQuery(urlutil.JoinPath(c.BaseURL, kind.Path), query)
}

// doRequest performs a GET and decodes a JSON answer into target.
func (c *Client) doRequest(ctx context.Context, requestURL string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set(headerAccept, "application/json")
	if c.UserAgent != "" {
		req.Header.Set(headerUserAgent, c.UserAgent)
	}
	if c.Token != "" {
		req.Header.Set(headerAuthorization, "Bearer "+c.Token)
	}

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	c.logger.DebugContext(ctx, "catalog request",
		slog.String("url", requestURL),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyReadSize))
		return &APIError{
			StatusCode: resp.StatusCode,
			URL:        requestURL,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	return nil
}

// Filter fetches one page of the kind's filter endpoint. query is an
// encoded listing request query (see listing.Codec.RequestQuery).
func Filter[T any](ctx context.Context, c *Client, kind listing.Kind, query string) (*Page[T], error) {
	var page Page[T]
	if err := c.doRequest(ctx, c.FilterURL(kind, query), &page); err != nil {
		return nil, fmt.Errorf("filtering %s: %w", kind.Name, err)
	}
	if page.Items == nil {
		page.Items = []T{}
	}
	return &page, nil
}

// Endpoint binds a client to one listing kind and item type.
type Endpoint[T any] struct {
	Client *Client
	Kind   listing.Kind
}

// NewEndpoint returns the filter endpoint of kind.
func NewEndpoint[T any](c *Client, kind listing.Kind) *Endpoint[T] {
	return &Endpoint[T]{Client: c, Kind: kind}
}

// Fetch fetches one page for the encoded request query.
func (e *Endpoint[T]) Fetch(ctx context.Context, query string) (*Page[T], error) {
	return Filter[T](ctx, e.Client, e.Kind, query)
}

// Movies fetches one page of the movies listing.
func (c *Client) Movies(ctx context.Context, query string) (*Page[Movie], error) {
	return Filter[Movie](ctx, c, listing.Movies, query)
}

// Actors fetches one page of the actors listing.
func (c *Client) Actors(ctx context.Context, query string) (*Page[Person], error) {
	return Filter[Person](ctx, c, listing.Actors, query)
}

// Directors fetches one page of the directors listing.
func (c *Client) Directors(ctx context.Context, query string) (*Page[Person], error) {
	return Filter[Person](ctx, c, listing.Directors, query)
}
