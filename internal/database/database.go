// Package database wraps the pgx connection pool used by the optional
// Postgres dataset source. The application runs fine without a database; the
// embedded GeoJSON fallback covers that case.
package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	pgx "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rcesaret/new-caledonia-commune-locator/config"
	"github.com/rcesaret/new-caledonia-commune-locator/internal/logger"
)

// DB holds the connection pool. A nil pool means no database was configured.
type DB struct {
	pool *pgxpool.Pool
	cfg  config.DatabaseConfig
}

// New creates a database connection pool. When cfg.URL is empty the returned
// DB is unconfigured and every query reports that, rather than failing at
// startup.
func New(ctx context.Context, cfg config.DatabaseConfig) (*DB, error) {
	if cfg.URL == "" {
		logger.Info("DATABASE_URL not set; commune dataset will come from file, URL, or embedded fallback")
		return &DB{pool: nil, cfg: cfg}, nil
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse db url: %w", err)
	}

	poolCfg.MaxConns = int32(cfg.MaxConns)
	poolCfg.MinConns = int32(cfg.MinConns)
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	logger.Info("Database connection established",
		"max_conns", cfg.MaxConns,
		"min_conns", cfg.MinConns,
	)

	return &DB{pool: pool, cfg: cfg}, nil
}

// Close closes the connection pool.
func (d *DB) Close(ctx context.Context) {
	if d.pool != nil {
		d.pool.Close()
		logger.Info("Database connection closed")
	}
}

// Query executes a query and returns the rows.
func (d *DB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if d.pool == nil {
		return nil, errors.New("database not configured")
	}

	start := time.Now()
	defer func() {
		logger.Debug("Database query",
			"sql", sql,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}()

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	rows, err := d.pool.Query(ctx, sql, args...)
	if err != nil {
		logger.Error("Database query failed", "error", err, "sql", sql)
	}
	return rows, err
}

// Health checks database connectivity.
func (d *DB) Health(ctx context.Context) error {
	if d.pool == nil {
		return errors.New("database not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return d.pool.Ping(ctx)
}

// IsConfigured reports whether a database URL was provided.
func (d *DB) IsConfigured() bool {
	return d.pool != nil
}

// Pool exposes the underlying pool for schema setup in tests.
func (d *DB) Pool() *pgxpool.Pool {
	return d.pool
}
