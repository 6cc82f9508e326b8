package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/callisto/pkg/config"
	"mercator-hq/callisto/pkg/telemetry/logging"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "callisto",
	Short: "Callisto - model-completion orchestration for Anthropic models",
	Long: `Callisto turns application-level completion requests into calls against
the Anthropic Messages API, decodes the streaming event protocol, tracks
token usage and cost under cached-token pricing, and can substitute
deterministic fixtures for live calls so tests never hit the network.

Commands:
  complete  - Run a one-shot completion (streaming by default)
  pricing   - Inspect the price table or price a hypothetical call
  fixtures  - List and validate canned-response fixture bundles
  ledger    - Summarize or prune recorded usage and cost
  audit     - List or prune prompt/response snapshots

For more information, visit: https://github.com/mercator-hq/callisto`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (optional)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig loads the effective configuration and installs the process
// logger. --verbose forces debug-level text logging regardless of the file.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return nil, err
	}

	logCfg := logging.FromConfig(cfg.Telemetry.Logging)
	if verbose {
		logCfg.Level = "debug"
		logCfg.Format = logging.FormatText
	}
	logging.Setup(logCfg)

	return cfg, nil
}
