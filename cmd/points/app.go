package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/warp/points-engine/config"
	"github.com/warp/points-engine/factory"
	"github.com/warp/points-engine/ledger"
	"github.com/warp/points-engine/ledger/store"
	"github.com/warp/points-engine/rewards"
	"github.com/warp/points-engine/store/sqlite"
)

// openStore returns the configured backend and a close func.
// The sqlite store is also returned for period listings; nil for memory.
func openStore(c config.Config) (ledger.Store, *sqlite.Store, func() error, error) {
	switch c.Storage {
	case config.StorageMemory:
		return store.NewMemory(), nil, func() error { return nil }, nil
	case config.StorageSQLite:
		db, err := sqlite.New(c.DBPath)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return db, db, db.Close, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown storage %q", c.Storage)
	}
}

// loadCatalog reads POINTS_CATALOG_PATH, or returns the built-in tables.
func loadCatalog(c config.Config, log *zap.Logger) (rewards.Catalog, error) {
	if c.CatalogPath == "" {
		return rewards.DefaultCatalog(), nil
	}
	cat, err := factory.NewCatalogFactory().LoadFile(c.CatalogPath)
	if err != nil {
		return rewards.Catalog{}, fmt.Errorf("catalog %s: %w", c.CatalogPath, err)
	}
	log.Info("catalog loaded",
		zap.String("path", c.CatalogPath),
		zap.Int("subjects", len(cat.Subjects)),
		zap.Int("items", len(cat.Items())))
	return cat, nil
}

// sessionOpener binds the store, admin code and clock for api.Handler.
func sessionOpener(st ledger.Store, c config.Config, log *zap.Logger) func(ctx context.Context, period ledger.PeriodKey) (*ledger.Session, error) {
	return func(ctx context.Context, period ledger.PeriodKey) (*ledger.Session, error) {
		return ledger.OpenSession(ctx, ledger.SessionConfig{
			Store:  st,
			Secret: c.AdminCode,
			Clock:  time.Now,
			Period: period,
			Logger: log,
		})
	}
}

// selectedPeriod resolves --period, defaulting to the current month.
func selectedPeriod() (ledger.PeriodKey, error) {
	if periodArg == "" {
		return ledger.PeriodFor(time.Now()), nil
	}
	return ledger.ParsePeriod(periodArg)
}
