package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/callisto/pkg/cli"
	"mercator-hq/callisto/pkg/config"
	"mercator-hq/callisto/pkg/ledger"
	"mercator-hq/callisto/pkg/ledger/store"
)

var ledgerFlags struct {
	session   string
	operation string
	model     string
	tier      string
	outcome   string
	since     time.Duration
	limit     int
	format    string
	olderThan time.Duration
}

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Query recorded usage and cost",
	Long: `Query the usage ledger written by live completions.

The ledger records one row per provider call: attribution, model, token
usage split by billing class, cost, duration, and outcome.

Subcommands:
  summary - Aggregate cost and usage by (operation, model)
  prune   - Delete records older than a cutoff

Examples:
  callisto ledger summary --since 24h
  callisto ledger summary --session session-42 --format json
  callisto ledger prune --older-than 720h`,
}

var ledgerSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Aggregate cost and usage by operation and model",
	RunE:  summarizeLedger,
}

var ledgerPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete ledger records older than a cutoff",
	RunE:  pruneLedger,
}

func init() {
	rootCmd.AddCommand(ledgerCmd)
	ledgerCmd.AddCommand(ledgerSummaryCmd, ledgerPruneCmd)

	ledgerSummaryCmd.Flags().StringVar(&ledgerFlags.session, "session", "", "filter by session identifier")
	ledgerSummaryCmd.Flags().StringVar(&ledgerFlags.operation, "operation", "", "filter by operation name")
	ledgerSummaryCmd.Flags().StringVar(&ledgerFlags.model, "model", "", "filter by model identifier")
	ledgerSummaryCmd.Flags().StringVar(&ledgerFlags.tier, "tier", "", "filter by tier (fast, quality)")
	ledgerSummaryCmd.Flags().StringVar(&ledgerFlags.outcome, "outcome", "", "filter by outcome (success, failure)")
	ledgerSummaryCmd.Flags().DurationVar(&ledgerFlags.since, "since", 0, "only records completed within this window (e.g. 24h)")
	ledgerSummaryCmd.Flags().IntVar(&ledgerFlags.limit, "limit", 0, "max records considered (0 = all)")
	ledgerSummaryCmd.Flags().StringVar(&ledgerFlags.format, "format", "text", "output format: text, json")

	ledgerPruneCmd.Flags().DurationVar(&ledgerFlags.olderThan, "older-than", 30*24*time.Hour, "delete records older than this")
}

// openLedgerStore opens the configured SQLite ledger read-write. The
// enabled flag is not required here: querying an existing database is
// useful even when recording is off.
func openLedgerStore(cfg *config.Config) (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(&store.SQLiteConfig{
		Path:         cfg.Ledger.SQLite.Path,
		MaxOpenConns: cfg.Ledger.SQLite.MaxOpenConns,
		MaxIdleConns: cfg.Ledger.SQLite.MaxIdleConns,
		WALMode:      cfg.Ledger.SQLite.WALMode,
		BusyTimeout:  cfg.Ledger.SQLite.BusyTimeout,
	})
}

func summarizeLedger(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return cli.NewConfigError("", err.Error())
	}

	ledgerStore, err := openLedgerStore(cfg)
	if err != nil {
		return cli.NewCommandError("ledger", err)
	}
	defer ledgerStore.Close()

	filter := &ledger.Filter{
		Session:   ledgerFlags.session,
		Operation: ledgerFlags.operation,
		Model:     ledgerFlags.model,
		Tier:      ledgerFlags.tier,
		Outcome:   ledgerFlags.outcome,
		Limit:     ledgerFlags.limit,
	}
	if ledgerFlags.since > 0 {
		since := time.Now().Add(-ledgerFlags.since)
		filter.Since = &since
	}

	ctx, stop := cli.SignalContext()
	defer stop()

	summaries, err := ledgerStore.Summarize(ctx, filter)
	if err != nil {
		return cli.NewCommandError("ledger", err)
	}

	if ledgerFlags.format == "json" {
		return cli.NewFormatter(cli.FormatJSON).FormatTo(os.Stdout, summaries)
	}

	if len(summaries) == 0 {
		fmt.Println("No records found.")
		return nil
	}

	var totalCalls int64
	var totalCost float64
	out := cli.NewTable(os.Stdout, "OPERATION", "MODEL", "CALLS", "INPUT", "OUTPUT", "CACHE-READ", "CACHE-WRITE", "COST")
	for _, s := range summaries {
		totalCalls += s.Calls
		totalCost += s.Cost
		out.Row(s.Operation, s.Model, s.Calls,
			s.Usage.InputTokens,
			s.Usage.OutputTokens,
			s.Usage.CacheReadTokens,
			s.Usage.CacheWriteTokens,
			fmt.Sprintf("$%.4f", s.Cost),
		)
	}
	if err := out.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nTotal: %d calls, $%.4f\n", totalCalls, totalCost)
	return nil
}

func pruneLedger(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return cli.NewConfigError("", err.Error())
	}

	ledgerStore, err := openLedgerStore(cfg)
	if err != nil {
		return cli.NewCommandError("ledger", err)
	}
	defer ledgerStore.Close()

	ctx, stop := cli.SignalContext()
	defer stop()

	cutoff := time.Now().Add(-ledgerFlags.olderThan)
	removed, err := ledgerStore.Prune(ctx, cutoff)
	if err != nil {
		return cli.NewCommandError("ledger", err)
	}

	fmt.Printf("Removed %d records completed before %s\n", removed, cutoff.Format(time.RFC3339))
	return nil
}
