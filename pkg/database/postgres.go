package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/Ragul198/Event/pkg/config"
)

const probeTimeout = 3 * time.Second

// DSN builds the connection string, preferring the hosted backend's connection URL when present.
func DSN(cfg config.DatabaseConfig) string {
	if cfg.URL != "" {
		return cfg.URL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)
}

// NewPostgres opens a pooled client against the hosted Postgres row store.
func NewPostgres(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", DSN(cfg))
	if err != nil {
		return nil, err
	}
	Tune(db, cfg)

	if err := Probe(db)(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Tune applies pool limits. The hosted pooler recycles idle connections, so ours go first.
func Tune(db *sqlx.DB, cfg config.DatabaseConfig) {
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
}

// Probe returns a bounded round trip to the row store for readiness checks.
func Probe(db *sqlx.DB) func(context.Context) error {
	return func(ctx context.Context) error {
		probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
		defer cancel()
		var one int
		if err := db.GetContext(probeCtx, &one, "SELECT 1"); err != nil {
			return fmt.Errorf("probe row store: %w", err)
		}
		return nil
	}
}
