package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	internalhttp "github.com/jmylchreest/kinoteka/internal/http"
	"github.com/jmylchreest/kinoteka/internal/http/handlers"
	"github.com/jmylchreest/kinoteka/internal/version"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the listing gateway",
	Long: `Start the kinoteka HTTP gateway.

The gateway provides:
- GET /api/v1/{kind}?<query>: one listing page for a shareable query, with
  the canonical query string and the pagination window
- GET /api/v1/kinds: the listing kinds and their sortable columns
- Health check endpoints (/health, /livez)
- OpenAPI documentation at /docs`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("host", "", "Host to bind to (default from config)")
	serveCmd.Flags().Int("port", 0, "Port to listen on (default from config)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := appConfig.Server
	if cmd.Flags().Changed("host") {
		cfg.Host, _ = cmd.Flags().GetString("host")
	}
	if cmd.Flags().Changed("port") {
		cfg.Port, _ = cmd.Flags().GetInt("port")
		if cfg.Port < 1 || cfg.Port > 65535 {
			return fmt.Errorf("--port must be between 1 and 65535")
		}
	}

	logger := slog.Default()
	client, resilient := newCatalogClient(appConfig.Catalog, logger)

	server := internalhttp.NewServer(cfg, logger, version.Version)

	handlers.NewHealthHandler(version.Version).
		WithBreaker(resilient).
		Register(server.API())
	handlers.NewListingHandler(client, handlers.ListingHandlerConfig{
		PerPage:      appConfig.Catalog.PerPage,
		MinYear:      appConfig.Listing.MinYear,
		PageSiblings: appConfig.Listing.PageSiblings,
	}).Register(server.API())

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("listing gateway ready",
		slog.String("address", cfg.Address()),
		slog.String("catalog", appConfig.Catalog.BaseURL),
		slog.String("version", version.Version),
	)

	if err := server.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("running server: %w", err)
	}
	return nil
}
