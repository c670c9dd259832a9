package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"wavecast-hq/tunegate/pkg/cli"
)

// defaultConfigFile is the path tried when --config is not given. The
// gateway runs from defaults and environment variables when it is absent.
const defaultConfigFile = "config.yaml"

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "tunegate",
	Short: "Tunegate - media streaming gateway",
	Long: `Tunegate is an HTTP gateway that fronts a media provider and relays
audio and video streams to its own clients.

It exposes a small JSON API plus two streaming relays:
  - Search, metadata, and trending lookups against the provider
  - Inline playback streaming and filename-carrying downloads
  - Per-client rate limiting on every route
  - Request journaling for traffic inspection
  - Optional forward-proxy pool for outbound provider traffic

For more information, visit: https://github.com/wavecast-hq/tunegate`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", defaultConfigFile, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Disable default completion command (we'll add our own)
	rootCmd.CompletionOptions.DisableDefaultCmd = false
}

// resolveConfigPath returns the configuration file path to load. When the
// flag was left at its default and no such file exists, it returns the
// empty string so the gateway starts from defaults and environment
// variables alone. An explicitly passed path is always returned as-is, so
// a missing file the operator asked for fails loudly.
func resolveConfigPath() string {
	if !rootCmd.PersistentFlags().Changed("config") {
		if _, err := os.Stat(cfgFile); os.IsNotExist(err) {
			return ""
		}
	}
	return cfgFile
}
