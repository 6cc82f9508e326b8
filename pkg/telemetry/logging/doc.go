// Package logging builds the slog handler stack used across Callisto.
//
// # Overview
//
// The package turns a configuration into a ready *slog.Logger:
//   - JSON or text output
//   - Configurable minimum level (debug, info, warn, error)
//   - Optional secret redaction applied at the handler level
//
// # Usage
//
//	// Build and install the process-wide logger.
//	logging.Setup(logging.Config{
//	    Level:         "info",
//	    Format:        logging.FormatJSON,
//	    RedactSecrets: true,
//	})
//
//	// Components pick it up through the default logger.
//	slog.Info("request finished",
//	    "operation", "classify_intent",
//	    "api_key", "sk-abc123xyz",  // masked before it is written
//	)
//
// # Redaction
//
// With RedactSecrets enabled, the handler rewrites every record before
// encoding:
//
//   - API keys: sk-abc123xyz -> sk-***
//   - Bearer tokens: Bearer eyJhb... -> Bearer ***
//   - Password fields: password=hunter2 -> password: ***
//   - Emails: member@example.com -> ***@example.com
//   - Values under credential-looking keys (api_key, token, secret, ...)
//     are masked outright, keeping a four character hint.
//
// Redaction happens inside the handler chain, so it also covers loggers
// derived with With and packages that log through slog.Default.
package logging
