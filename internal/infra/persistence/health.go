package persistence

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ConnectionMonitor periodically pings the pool and tracks database health
// for the readiness endpoint. Transitions are logged once per edge.
type ConnectionMonitor struct {
	pool      *pgxpool.Pool
	logger    *slog.Logger
	mu        sync.RWMutex
	isHealthy bool
}

func NewConnectionMonitor(pool *pgxpool.Pool, logger *slog.Logger) *ConnectionMonitor {
	return &ConnectionMonitor{
		pool:      pool,
		logger:    logger,
		isHealthy: true, // Assume healthy on startup
	}
}

func (cm *ConnectionMonitor) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cm.performHealthCheck(ctx)
		}
	}
}

func (cm *ConnectionMonitor) performHealthCheck(ctx context.Context) {
	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := cm.pool.Ping(checkCtx)

	cm.mu.Lock()
	defer cm.mu.Unlock()

	if err != nil {
		if cm.isHealthy {
			cm.isHealthy = false
			cm.logger.ErrorContext(ctx, "database connection unhealthy", "error", err)
		}
	} else {
		if !cm.isHealthy {
			cm.isHealthy = true
			cm.logger.InfoContext(ctx, "database connection recovered")
		}
	}
}

func (cm *ConnectionMonitor) IsHealthy() bool {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.isHealthy
}
