// Package cmd implements the CLI commands for kinoteka.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/kinoteka/internal/config"
	"github.com/jmylchreest/kinoteka/internal/observability"
	"github.com/jmylchreest/kinoteka/internal/version"
)

var (
	// cfgFile holds the config file path from CLI flag.
	cfgFile string

	// appConfig is loaded once by PersistentPreRunE.
	appConfig *config.Config
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:     "kinoteka",
	Short:   "Movie catalog listings from the terminal",
	Version: version.Short(),
	Long: `kinoteka browses the movie, actor and director listings of a movie
catalog API.

Every listing is described by a shareable query string, the same one the
catalog's web pages keep in their URL, for example:

  kinoteka list movies 'years=2023-2021&genres=5&sort_by=year&sort_order=desc'

The query can be fetched once (list), explored interactively (browse) or
served to other clients through a small HTTP gateway (serve).`,
	SilenceUsage: true,
	// PersistentPreRunE is set in init() to avoid initialization cycle
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		return fmt.Errorf("executing root command: %w", err)
	}
	return nil
}

func init() {
	// initLogging references rootCmd.PersistentFlags
	rootCmd.PersistentPreRunE = func(_ *cobra.Command, _ []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		appConfig = cfg
		return initLogging(cfg)
	}

	// These flags are NOT bound to viper: they override config and env only
	// when explicitly set (flag > env > config > default).
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml or $HOME/.kinoteka.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
}

// initLogging configures the default slog logger.
//
// Priority order (highest to lowest):
//  1. CLI flags (--log-level, --log-format), only if explicitly provided
//  2. Environment variables (KINOTEKA_LOGGING_LEVEL, KINOTEKA_LOGGING_FORMAT)
//  3. Config file values
//  4. Built-in defaults (info, text)
func initLogging(cfg *config.Config) error {
	logCfg := cfg.Logging

	if rootCmd.PersistentFlags().Changed("log-level") {
		logCfg.Level, _ = rootCmd.PersistentFlags().GetString("log-level")
	}
	if rootCmd.PersistentFlags().Changed("log-format") {
		logCfg.Format, _ = rootCmd.PersistentFlags().GetString("log-format")
	}

	logCfg.Level = strings.ToLower(logCfg.Level)
	logCfg.Format = strings.ToLower(logCfg.Format)
	if logCfg.Format != "json" && logCfg.Format != "text" {
		return fmt.Errorf("--log-format must be one of: json, text")
	}
	cfg.Logging = logCfg

	// stdout carries listings; logs go to stderr
	logger := observability.NewLoggerWithWriter(logCfg, os.Stderr)
	observability.SetDefault(logger)

	return nil
}
