package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/callisto/pkg/cli"
	"mercator-hq/callisto/pkg/ledger"
	"mercator-hq/callisto/pkg/pricing"
)

var pricingFlags struct {
	format     string
	model      string
	input      int
	output     int
	cacheRead  int
	cacheWrite int
}

var pricingCmd = &cobra.Command{
	Use:   "pricing",
	Short: "Inspect model pricing",
	Long: `Inspect the effective price table and price hypothetical calls.

The effective table is the built-in one unless the configuration points at
a pricing YAML file.

Subcommands:
  show  - Print the price table
  cost  - Price a hypothetical usage record against one model

Examples:
  callisto pricing show
  callisto pricing cost --model claude-sonnet-4-20250514 --input 1200 --output 300
  callisto pricing cost --model claude-3-5-haiku-20241022 --input 8000 --cache-read 6000`,
}

var pricingShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective price table",
	RunE:  showPricing,
}

var pricingCostCmd = &cobra.Command{
	Use:   "cost",
	Short: "Price a hypothetical usage record",
	Long: `Price a hypothetical usage record against one model's entry.

Input is the inclusive token count; cache-read and cache-write name the
share of it served from or written into the prompt cache. The uncached
share is derived by subtraction, the same way live calls are priced.`,
	RunE: showCost,
}

func init() {
	rootCmd.AddCommand(pricingCmd)
	pricingCmd.AddCommand(pricingShowCmd, pricingCostCmd)

	pricingShowCmd.Flags().StringVar(&pricingFlags.format, "format", "text", "output format: text, json")

	pricingCostCmd.Flags().StringVar(&pricingFlags.model, "model", "", "model identifier (required)")
	pricingCostCmd.Flags().IntVar(&pricingFlags.input, "input", 0, "input tokens, inclusive of cached")
	pricingCostCmd.Flags().IntVar(&pricingFlags.output, "output", 0, "output tokens")
	pricingCostCmd.Flags().IntVar(&pricingFlags.cacheRead, "cache-read", 0, "input tokens served from cache")
	pricingCostCmd.Flags().IntVar(&pricingFlags.cacheWrite, "cache-write", 0, "input tokens written into cache")
	_ = pricingCostCmd.MarkFlagRequired("model")
}

func showPricing(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return cli.NewConfigError("", err.Error())
	}

	table, err := buildPricing(&cfg.Pricing)
	if err != nil {
		return cli.NewCommandError("pricing", err)
	}

	if pricingFlags.format == "json" {
		entries := make(map[string]pricing.Entry, table.Len())
		for _, model := range table.Models() {
			entries[model] = table.Lookup(model)
		}
		return cli.NewFormatter(cli.FormatJSON).FormatTo(os.Stdout, entries)
	}

	out := cli.NewTable(os.Stdout, "MODEL", "INPUT/1K", "OUTPUT/1K", "CACHE-READ/1K", "CACHE-WRITE/1K")
	for _, model := range table.Models() {
		entry := table.Lookup(model)
		out.Row(model,
			fmt.Sprintf("$%.5f", entry.InputPer1K),
			fmt.Sprintf("$%.5f", entry.OutputPer1K),
			fmt.Sprintf("$%.5f", entry.CacheReadPer1K),
			fmt.Sprintf("$%.5f", entry.CacheWritePer1K),
		)
	}
	return out.Flush()
}

func showCost(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return cli.NewConfigError("", err.Error())
	}

	table, err := buildPricing(&cfg.Pricing)
	if err != nil {
		return cli.NewCommandError("pricing", err)
	}

	usage := ledger.Usage{
		InputTokens:      pricingFlags.input,
		OutputTokens:     pricingFlags.output,
		CacheReadTokens:  pricingFlags.cacheRead,
		CacheWriteTokens: pricingFlags.cacheWrite,
	}

	entry := table.Lookup(pricingFlags.model)
	cost := ledger.Cost(entry, usage)

	fmt.Printf("Model: %s\n", pricingFlags.model)
	if entry.IsZero() {
		fmt.Println("Note: model not in the price table, all rates are zero")
	}
	fmt.Printf("Uncached input: %d tokens\n", usage.UncachedInputTokens())
	fmt.Printf("Cache read:     %d tokens\n", usage.CacheReadTokens)
	fmt.Printf("Cache write:    %d tokens\n", usage.CacheWriteTokens)
	fmt.Printf("Output:         %d tokens\n", usage.OutputTokens)
	fmt.Printf("Cost: $%.6f\n", cost)
	return nil
}
