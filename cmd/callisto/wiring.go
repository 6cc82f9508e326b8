package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"mercator-hq/callisto/pkg/audit"
	"mercator-hq/callisto/pkg/completion"
	"mercator-hq/callisto/pkg/config"
	"mercator-hq/callisto/pkg/ledger/journal"
	"mercator-hq/callisto/pkg/ledger/store"
	"mercator-hq/callisto/pkg/pricing"
	"mercator-hq/callisto/pkg/telemetry/metrics"
	"mercator-hq/callisto/pkg/telemetry/tracing"
)

// buildPricing resolves the effective price table: the configured YAML file
// when one is set, otherwise the built-in defaults.
func buildPricing(cfg *config.PricingConfig) (*pricing.Table, error) {
	if cfg.Path == "" {
		return pricing.Default(), nil
	}

	entries, err := pricing.LoadFile(cfg.Path)
	if err != nil {
		return nil, err
	}
	return pricing.NewTable(entries), nil
}

// auditIndexPath resolves where the snapshot catalog lives.
func auditIndexPath(cfg *config.AuditConfig) string {
	if cfg.IndexPath != "" {
		return cfg.IndexPath
	}
	return filepath.Join(cfg.Dir, "index.db")
}

// buildOrchestrator wires a completion orchestrator from the configuration:
// price table, optional ledger journal, optional audit writer, optional
// tracing observer. The returned cleanup drains async workers and closes
// everything in reverse order; it is safe to call exactly once.
func buildOrchestrator(cfg *config.Config) (*completion.Orchestrator, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	table, err := buildPricing(&cfg.Pricing)
	if err != nil {
		return nil, nil, err
	}

	deps := completion.Deps{Pricing: table}

	if cfg.Ledger.Enabled {
		ledgerStore, err := store.NewSQLiteStore(&store.SQLiteConfig{
			Path:         cfg.Ledger.SQLite.Path,
			MaxOpenConns: cfg.Ledger.SQLite.MaxOpenConns,
			MaxIdleConns: cfg.Ledger.SQLite.MaxIdleConns,
			WALMode:      cfg.Ledger.SQLite.WALMode,
			BusyTimeout:  cfg.Ledger.SQLite.BusyTimeout,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("failed to open ledger store: %w", err)
		}
		closers = append(closers, func() { _ = ledgerStore.Close() })

		j := journal.NewJournal(ledgerStore, &journal.Config{
			Enabled:      true,
			AsyncBuffer:  cfg.Ledger.Journal.AsyncBuffer,
			WriteTimeout: cfg.Ledger.Journal.WriteTimeout,
		})
		closers = append(closers, func() { _ = j.Close() })
		deps.Tracker = j
	}

	if cfg.Audit.Enabled {
		index, err := audit.NewIndex(auditIndexPath(&cfg.Audit))
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("failed to open audit index: %w", err)
		}
		closers = append(closers, func() { _ = index.Close() })

		writer, err := audit.NewWriter(&audit.Config{
			Dir:         cfg.Audit.Dir,
			Enabled:     true,
			AsyncBuffer: cfg.Audit.AsyncBuffer,
		}, index)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("failed to create audit writer: %w", err)
		}
		closers = append(closers, func() { _ = writer.Close() })
		deps.Auditor = writer
	}

	var observers []completion.Observer

	if cfg.Telemetry.Metrics.Enabled {
		observers = append(observers, metrics.NewCollector(&cfg.Telemetry.Metrics, nil))
	}

	if cfg.Telemetry.Tracing.Enabled {
		tracer, err := tracing.New(&cfg.Telemetry.Tracing)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("failed to initialize tracing: %w", err)
		}
		closers = append(closers, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = tracer.Shutdown(ctx)
		})
		observers = append(observers, tracing.NewObserver(tracer))
	}

	if len(observers) > 0 {
		deps.Observer = completion.MultiObserver(observers...)
	}

	orchestrator := completion.New(completion.Config{
		APIKey:        cfg.Anthropic.APIKey,
		BaseURL:       cfg.Anthropic.BaseURL,
		FastModel:     cfg.Completion.FastModel,
		QualityModel:  cfg.Completion.QualityModel,
		Timeout:       cfg.Anthropic.Timeout,
		Deterministic: cfg.Completion.Deterministic,
		FixturesDir:   cfg.Completion.FixturesDir,
	}, deps)

	return orchestrator, cleanup, nil
}
