package persistence

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taisys-technologies/voc-vault/internal/infra/config"
)

// NewConnectionPool creates a database connection pool from the service
// configuration and verifies it with a ping before handing it out.
func NewConnectionPool(ctx context.Context, dbConfig config.DatabaseConfig, serverConfig config.ServerConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(dbConfig.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse db config: %w", err)
	}

	if serverConfig.Mode == "production" && dbConfig.SSLMode == "disable" {
		return nil, fmt.Errorf("database connection must use TLS in production mode")
	}

	if dbConfig.Pool.MaxConns > 0 {
		poolConfig.MaxConns = dbConfig.Pool.MaxConns
	}
	poolConfig.MinConns = dbConfig.Pool.MinConns
	if dbConfig.Pool.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = dbConfig.Pool.MaxConnLifetime
	}
	if dbConfig.Pool.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = dbConfig.Pool.MaxConnIdleTime
	}
	if dbConfig.Pool.HealthCheckPeriod > 0 {
		poolConfig.HealthCheckPeriod = dbConfig.Pool.HealthCheckPeriod
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}
