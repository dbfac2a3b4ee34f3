package cmd

import (
	"log/slog"

	"github.com/jmylchreest/kinoteka/internal/config"
	"github.com/jmylchreest/kinoteka/internal/observability"
	"github.com/jmylchreest/kinoteka/internal/version"
	"github.com/jmylchreest/kinoteka/pkg/catalog"
	"github.com/jmylchreest/kinoteka/pkg/httpclient"
)

// newCatalogClient builds the catalog client on top of a resilient HTTP
// client. The resilient client is returned too so its breaker can be
// reported.
func newCatalogClient(cfg config.CatalogConfig, logger *slog.Logger) (*catalog.Client, *httpclient.Client) {
	httpCfg := httpclient.DefaultConfig()
	httpCfg.Name = "catalog"
	httpCfg.Timeout = cfg.Timeout
	httpCfg.RetryAttempts = cfg.RetryAttempts
	httpCfg.RetryDelay = cfg.RetryDelay
	httpCfg.CircuitThreshold = cfg.CircuitThreshold
	httpCfg.CircuitTimeout = cfg.CircuitTimeout
	httpCfg.MaxResponseSize = cfg.MaxResponseSize
	httpCfg.UserAgent = version.UserAgent()
	httpCfg.Logger = observability.WithComponent(logger, "httpclient")

	resilient := httpclient.New(httpCfg)

	client := catalog.NewClient(cfg.BaseURL,
		catalog.WithHTTPClient(resilient.StandardClient()),
		catalog.WithUserAgent(version.UserAgent()),
		catalog.WithToken(cfg.Token),
		catalog.WithLogger(observability.WithComponent(logger, "catalog")),
	)
	return client, resilient
}
