package cmd

import (
	"fmt"
	"io"
	"reflect"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/kinoteka/internal/config"
	"github.com/jmylchreest/kinoteka/internal/observability"
	"github.com/jmylchreest/kinoteka/pkg/format"
)

var configDumpDefaults bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management commands",
	Long:  `Commands for managing kinoteka configuration.`,
}

var configDumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Dump the effective configuration",
	Long: `Dump the configuration in YAML format: defaults merged with the config
file and environment. With --defaults only the built-in defaults are shown,
which makes a good configuration template:

  kinoteka config dump --defaults > config.yaml

Configuration can be set via:
  - Config file (config.yaml, $HOME/.config/kinoteka/config.yaml,
    /etc/kinoteka/config.yaml, $HOME/.kinoteka.yaml)
  - Environment variables (KINOTEKA_CATALOG_BASE_URL, KINOTEKA_SERVER_PORT, etc.)
  - Command-line flags (for some options)

Environment variables use the KINOTEKA_ prefix and underscores for nesting.
Example: catalog.base_url -> KINOTEKA_CATALOG_BASE_URL`,
	RunE: runConfigDump,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configDumpCmd)
	configDumpCmd.Flags().BoolVar(&configDumpDefaults, "defaults", false, "dump the built-in defaults only")
}

func defaultConfig() (*config.Config, error) {
	v := viper.New()
	config.SetDefaults(v)
	var cfg config.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling defaults: %w", err)
	}
	return &cfg, nil
}

// toMap converts a config struct to a map keyed by yaml tags, with durations
// in their string form and secrets redacted.
func toMap(v any) map[string]any {
	result := make(map[string]any)
	val := reflect.ValueOf(v)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	typ := val.Type()

	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		fieldType := typ.Field(i)

		key, _, _ := strings.Cut(fieldType.Tag.Get("yaml"), ",")
		if key == "" {
			key = strings.ToLower(fieldType.Name)
		}

		switch v := field.Interface().(type) {
		case time.Duration:
			result[key] = v.String()
		case string:
			if key == "token" && v != "" {
				result[key] = observability.RedactedValue
			} else {
				result[key] = v
			}
		default:
			if field.Kind() == reflect.Struct {
				result[key] = toMap(field.Interface())
			} else {
				result[key] = field.Interface()
			}
		}
	}
	return result
}

func runConfigDump(cmd *cobra.Command, _ []string) error {
	cfg := appConfig
	if configDumpDefaults {
		var err error
		if cfg, err = defaultConfig(); err != nil {
			return err
		}
	}
	return dumpConfig(cmd.OutOrStdout(), cfg)
}

func dumpConfig(w io.Writer, cfg *config.Config) error {
	yamlData, err := yaml.Marshal(toMap(cfg))
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	header := []string{
		"# kinoteka Configuration File",
		"# ===========================",
		"#",
		"# Duration format: 300ms, 15s, 1m",
		"# catalog.max_response_size is in bytes (0 = unlimited); current: " + format.Size(cfg.Catalog.MaxResponseSize),
		"#",
		"# Environment variable overrides:",
		"#   KINOTEKA_CATALOG_BASE_URL, KINOTEKA_CATALOG_TOKEN",
		"#   KINOTEKA_SERVER_HOST, KINOTEKA_SERVER_PORT",
		"#   KINOTEKA_LOGGING_LEVEL, KINOTEKA_LOGGING_FORMAT",
		"#   etc.",
		"#",
		"",
	}
	if _, err := fmt.Fprintln(w, strings.Join(header, "\n")); err != nil {
		return err
	}
	_, err = w.Write(yamlData)
	return err
}
