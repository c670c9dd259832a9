package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"wavecast-hq/tunegate/pkg/cli"
	"wavecast-hq/tunegate/pkg/config"
	"wavecast-hq/tunegate/pkg/telemetry/logging"
)

var validateFlags struct {
	show   bool
	format string
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate gateway configuration",
	Long: `Validate gateway configuration without starting the server.

The validate command loads the configuration file, applies defaults and
environment variable overrides, and runs every validation rule. All
field errors are collected and reported together.

Examples:
  # Validate the default config file
  tunegate validate

  # Validate a specific file
  tunegate validate --config /etc/tunegate/config.yaml

  # Print the effective configuration after defaults and overrides
  tunegate validate --show

  # Machine-readable result
  tunegate validate --format json`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&validateFlags.show, "show", false, "print the effective configuration (secrets redacted)")
	validateCmd.Flags().StringVar(&validateFlags.format, "format", "text", "output format: text, json")
}

// validationResult is the JSON shape emitted by --format json.
type validationResult struct {
	Valid      bool     `json:"valid"`
	ConfigFile string   `json:"config_file,omitempty"`
	Errors     []string `json:"errors,omitempty"`
}

func validateConfig(cmd *cobra.Command, args []string) error {
	path := resolveConfigPath()

	cfg, err := config.LoadConfigWithEnvOverrides(path)
	if err != nil {
		if validateFlags.format == "json" {
			emitValidationResult(os.Stdout, path, err)
		}
		return cli.NewConfigError("", err.Error())
	}

	if validateFlags.format == "json" {
		emitValidationResult(os.Stdout, path, nil)
		return nil
	}

	fmt.Println("✓ Configuration valid")
	fmt.Println()
	if path != "" {
		fmt.Printf("Config file: %s\n", path)
	} else {
		fmt.Println("Config file: none (defaults and environment)")
	}
	fmt.Printf("Server:      %s\n", cfg.Server.ListenAddress())
	fmt.Printf("Rate limit:  %d requests per %s\n", cfg.RateLimit.Limit, cfg.RateLimit.Window)
	if cfg.Journal.Enabled {
		if cfg.Journal.Backend == "sqlite" {
			fmt.Printf("Journal:     sqlite (%s)\n", cfg.Journal.SQLite.Path)
		} else {
			fmt.Printf("Journal:     %s\n", cfg.Journal.Backend)
		}
	} else {
		fmt.Println("Journal:     disabled")
	}
	if cfg.Proxy.Enabled {
		fmt.Printf("Proxy pool:  %s source, %s strategy\n", cfg.Proxy.Source, cfg.Proxy.Strategy)
	} else {
		fmt.Println("Proxy pool:  disabled")
	}
	fmt.Printf("Upstream:    %s\n", cfg.Upstream.BaseURL)

	if validateFlags.show {
		fmt.Println()
		data, err := yaml.Marshal(redactConfig(cfg))
		if err != nil {
			return cli.NewCommandError("validate", fmt.Errorf("failed to render configuration: %w", err))
		}
		os.Stdout.Write(data)
	}

	return nil
}

// emitValidationResult writes the JSON result to w. Field errors are
// listed individually when the failure was a validation error; other
// load failures produce a single entry.
func emitValidationResult(w *os.File, path string, err error) {
	result := validationResult{Valid: err == nil, ConfigFile: path}

	if err != nil {
		var verr config.ValidationError
		if errors.As(err, &verr) {
			for _, fieldErr := range verr.Errors {
				result.Errors = append(result.Errors, fieldErr.Error())
			}
		} else {
			result.Errors = append(result.Errors, err.Error())
		}
	}

	cli.NewFormatter(cli.FormatJSON).FormatTo(w, result)
}

// redactConfig returns a copy of cfg with credential-bearing fields
// masked so the effective configuration can be printed. Slices holding
// secrets are reallocated; everything else is shared.
func redactConfig(cfg *config.Config) *config.Config {
	redacted := *cfg

	if redacted.Upstream.APIKey != "" {
		redacted.Upstream.APIKey = logging.RedactAPIKey(redacted.Upstream.APIKey)
	}
	if redacted.Proxy.Git.Auth.Token != "" {
		redacted.Proxy.Git.Auth.Token = logging.RedactAPIKey(redacted.Proxy.Git.Auth.Token)
	}
	if redacted.Proxy.Git.Auth.Password != "" {
		redacted.Proxy.Git.Auth.Password = "***"
	}
	if len(cfg.Proxy.Endpoints) > 0 {
		endpoints := make([]string, len(cfg.Proxy.Endpoints))
		for i, raw := range cfg.Proxy.Endpoints {
			endpoints[i] = logging.RedactURL(raw)
		}
		redacted.Proxy.Endpoints = endpoints
	}

	return &redacted
}
