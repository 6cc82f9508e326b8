/*
Package cli provides command-line interface utilities for the callisto
command: typed command errors, output formatters, and signal handling.

Output Formatting:

The cli package supports text, JSON, and aligned tabular output for
displaying command results:

	formatter := cli.NewFormatter(cli.FormatJSON)
	data := MyCommandResult{...}
	if err := formatter.FormatTo(os.Stdout, data); err != nil {
		return err
	}

Tabular output aligns columns for terminal reading:

	table := cli.NewTable(os.Stdout, "OPERATION", "MODEL", "COST")
	table.Row("chat.reply", "claude-3-5-haiku-20241022", "$0.0042")
	table.Flush()

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx, stop := cli.SignalContext()
	defer stop()
	// Use ctx for operations that should be cancelled on shutdown
*/
package cli
