package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/kinoteka/internal/config"
	"github.com/jmylchreest/kinoteka/internal/http/handlers"
	"github.com/jmylchreest/kinoteka/internal/http/middleware"
	"github.com/jmylchreest/kinoteka/pkg/catalog"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"items":[{"name":"Tilda Swinton"}],"pagination":{"page":1,"per_page":20,"total":1,"total_pages":1}}`)
	}))
	t.Cleanup(backend.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := NewServer(config.ServerConfig{
		Host:            "127.0.0.1",
		ShutdownTimeout: time.Second,
		CORSOrigins:     []string{"https://kinoteka.example"},
	}, logger, "test")

	handlers.NewHealthHandler("test").Register(srv.API())
	handlers.NewListingHandler(catalog.NewClient(backend.URL), handlers.ListingHandlerConfig{PerPage: 20, PageSiblings: 2}).
		Register(srv.API())
	return srv
}

func serve(srv *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestServer_Listing(t *testing.T) {
	srv := newTestServer(t)

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/api/v1/actors?gender=female&sort_by=bogus", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Items []map[string]any `json:"items"`
		Query string           `json:"query"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "gender=female&sort_by=name&sort_order=asc&page=1", body.Query)
	require.Len(t, body.Items, 1)
	assert.Equal(t, "Tilda Swinton", body.Items[0]["name"])
}

func TestServer_MalformedPerPageFallsBack(t *testing.T) {
	srv := newTestServer(t)

	for _, perPage := range []string{"500", "abc", "-1"} {
		rec := serve(srv, httptest.NewRequest(http.MethodGet, "/api/v1/movies?per_page="+perPage+"&page=x", nil))
		assert.Equal(t, http.StatusOK, rec.Code, "per_page=%s: %s", perPage, rec.Body.String())
	}
}

func TestServer_UnknownKind(t *testing.T) {
	srv := newTestServer(t)

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/api/v1/series", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_RequestID(t *testing.T) {
	srv := newTestServer(t)

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/livez", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/livez", nil)
	req.Header.Set(middleware.RequestIDHeader, "abc-123")
	rec = serve(srv, req)
	assert.Equal(t, "abc-123", rec.Header().Get(middleware.RequestIDHeader))
}

func TestServer_CORS(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://kinoteka.example")
	rec := serve(srv, req)
	assert.Equal(t, "https://kinoteka.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://elsewhere.example")
	rec = serve(srv, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_ServeAndShutdown(t *testing.T) {
	srv := newTestServer(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- srv.Serve(ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/livez")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, srv.Shutdown(context.Background()))
	assert.NoError(t, <-done)
}
