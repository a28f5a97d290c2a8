package store

import (
	"context"
	"fmt"

	"fyugp/internal/config"
)

// Open returns the Store selected by STORE_BACKEND.
func Open(ctx context.Context, cfg config.App) (Store, error) {
	switch cfg.StoreBackend {
	case config.BackendCSV, "":
		return NewCSVStore(cfg.DataDir)
	case config.BackendPostgres:
		return openSQL(ctx, DriverPostgres, cfg.DatabaseURL)
	case config.BackendSQLite:
		return openSQL(ctx, DriverSQLite, cfg.SQLitePath)
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}

func openSQL(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	db, err := NewDB(ctx, driver, dsn)
	if err != nil {
		return nil, err
	}
	s, err := NewSQLStore(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}
