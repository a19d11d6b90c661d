package database

import (
	"context"
	"fmt"
	"time"

	"pizza-desk/internal/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// feedReservedConns is the number of connections the change feed pins
// long-term on LISTEN; the pool must always leave at least one more for
// snapshot queries.
const feedReservedConns = 1

// poolConfig derives pgxpool settings from the database config. The
// workload is read-mostly: periodic full-snapshot reads in bursts
// around change events, plus one connection held on LISTEN for the
// lifetime of the feed subscription.
func poolConfig(cfg config.DatabaseConfig) (*pgxpool.Config, error) {
	pc, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	maxConns := int32(cfg.MaxConnections)
	if maxConns < feedReservedConns+1 {
		maxConns = feedReservedConns + 1
	}
	pc.MaxConns = maxConns
	pc.MinConns = int32(cfg.MinConnections)
	pc.MaxConnLifetime = time.Duration(cfg.MaxConnLifetime) * time.Second
	// Refreshes cluster around change notifications; keep idle
	// connections warm between bursts rather than churning them.
	pc.MaxConnIdleTime = 5 * time.Minute
	pc.HealthCheckPeriod = time.Minute

	return pc, nil
}

// NewPool creates the PostgreSQL connection pool backing the order
// store and the change feed.
func NewPool(ctx context.Context, cfg config.DatabaseConfig, logger zerolog.Logger) (*pgxpool.Pool, error) {
	pc, err := poolConfig(cfg)
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Database).
		Int32("max_connections", pc.MaxConns).
		Int32("min_connections", pc.MinConns).
		Msg("creating database connection pool")

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info().Msg("database connection pool created successfully")

	return pool, nil
}
