package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/callisto/pkg/audit"
	"mercator-hq/callisto/pkg/cli"
)

var auditFlags struct {
	limit  int
	maxAge time.Duration
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "List or prune prompt/response snapshots",
	Long: `Work with the audit snapshots written for live completions: the
prompt before each call and the response after success.

Subcommands:
  ls     - List cataloged snapshots, newest first
  prune  - Delete snapshots older than the retention age

Examples:
  callisto audit ls --limit 20
  callisto audit prune --max-age 168h`,
}

var auditLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List cataloged snapshots, newest first",
	RunE:  listSnapshots,
}

var auditPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete snapshots older than the retention age",
	RunE:  pruneSnapshots,
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditLsCmd, auditPruneCmd)

	auditLsCmd.Flags().IntVar(&auditFlags.limit, "limit", 50, "max snapshots listed")
	auditPruneCmd.Flags().DurationVar(&auditFlags.maxAge, "max-age", 0, "delete snapshots older than this (default: configured retention)")
}

func listSnapshots(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return cli.NewConfigError("", err.Error())
	}

	index, err := audit.NewIndex(auditIndexPath(&cfg.Audit))
	if err != nil {
		return cli.NewCommandError("audit", err)
	}
	defer index.Close()

	ctx, stop := cli.SignalContext()
	defer stop()

	entries, err := index.List(ctx, auditFlags.limit)
	if err != nil {
		return cli.NewCommandError("audit", err)
	}

	if len(entries) == 0 {
		fmt.Println("No snapshots cataloged.")
		return nil
	}

	out := cli.NewTable(os.Stdout, "TIME", "OPERATION", "KIND", "PATH")
	for _, entry := range entries {
		out.Row(entry.CreatedAt.Format(time.RFC3339), entry.Operation, entry.Kind, entry.Path)
	}
	return out.Flush()
}

func pruneSnapshots(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return cli.NewConfigError("", err.Error())
	}

	maxAge := auditFlags.maxAge
	if maxAge == 0 {
		maxAge = cfg.Audit.Retention.MaxAge
	}
	if maxAge == 0 {
		return cli.NewConfigError("audit.retention.max_age", "retention disabled (max age 0), nothing to prune")
	}

	index, err := audit.NewIndex(auditIndexPath(&cfg.Audit))
	if err != nil {
		return cli.NewCommandError("audit", err)
	}
	defer index.Close()

	retention := audit.NewRetention(cfg.Audit.Dir, index, &audit.RetentionConfig{
		MaxAge:   maxAge,
		Schedule: cfg.Audit.Retention.Schedule,
	})

	ctx, stop := cli.SignalContext()
	defer stop()

	removed, err := retention.Prune(ctx)
	if err != nil {
		return cli.NewCommandError("audit", err)
	}

	fmt.Printf("Removed %d snapshots older than %s\n", removed, maxAge)
	return nil
}
