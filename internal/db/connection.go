// Package db owns the process-wide PostgreSQL/PostGIS connection pool
// shared by internal/spatialstore, following the teacher's
// internal/db/connection.go singleton-via-sync.Once pattern.
package db

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/passbi/routecore/internal/apperr"
	"github.com/passbi/routecore/internal/config"
)

var (
	pool     *pgxpool.Pool
	poolOnce sync.Once
	poolErr  error
)

// Get returns the process-wide connection pool, initializing it from
// cfg on first call. Spec §5 calls this the "bounded connection pool
// to the spatial store... shared across concurrent requests".
func Get(cfg *config.Config) (*pgxpool.Pool, error) {
	poolOnce.Do(func() {
		pool, poolErr = initPool(cfg)
	})
	return pool, poolErr
}

func initPool(cfg *config.Config) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("db: parse connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.DBPoolSize)
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	p, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("db: create connection pool: %w", err)
	}

	if err := p.Ping(ctx); err != nil {
		p.Close()
		return nil, fmt.Errorf("db: ping database: %w", err)
	}

	return p, nil
}

// Close releases the process-wide pool, if initialized.
func Close() {
	if pool != nil {
		pool.Close()
	}
}

// HealthCheck verifies the pool is reachable and PostGIS is installed,
// grounded on the teacher's HealthCheck (SELECT PostGIS_Version()).
func HealthCheck(ctx context.Context, cfg *config.Config) error {
	p, err := Get(cfg)
	if err != nil {
		return apperr.Wrap(apperr.ResourceExhausted, "database pool not initialized", err)
	}

	if err := p.Ping(ctx); err != nil {
		return apperr.Wrap(apperr.TransientUpstream, "database ping failed", err)
	}

	var postgisVersion string
	if err := p.QueryRow(ctx, "SELECT PostGIS_Version()").Scan(&postgisVersion); err != nil {
		return apperr.Wrap(apperr.Internal, "PostGIS extension unavailable", err)
	}

	return nil
}
