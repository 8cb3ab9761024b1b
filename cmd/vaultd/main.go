package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	infra_config "github.com/taisys-technologies/voc-vault/internal/infra/config"
	"github.com/taisys-technologies/voc-vault/internal/infra/ratelimit"
	"github.com/taisys-technologies/voc-vault/internal/server"
	"github.com/taisys-technologies/voc-vault/internal/wiring"
)

const (
	healthCheckInterval = 30 * time.Second
	limiterPurgeEvery   = 5 * time.Minute
	limiterMaxIdle      = 15 * time.Minute
)

// Set through -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := infra_config.Load(os.Getenv("VAULT_CONFIG_PATH"))
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg.ServiceVersion = version
	cfg.BuildCommit = commit

	logger := newLogger(cfg.Server.Mode)

	container := wiring.NewContainer(cfg, logger)
	defer func() {
		if err := container.Close(); err != nil {
			logger.Error("failed to close container", "error", err)
		}
	}()

	deps, err := container.GetDependencies(ctx)
	if err != nil {
		logger.Error("failed to get dependencies", "error", err)
		os.Exit(1)
	}

	srv, err := server.New(cfg.Server, server.Dependencies{
		Logger:         logger,
		ListVault:      deps.ListVault,
		MerkleVault:    deps.MerkleVault,
		Settings:       deps.Settings,
		Events:         deps.Events,
		Monitor:        deps.Monitor,
		Limiter:        deps.Limiter,
		ServiceVersion: version,
		BuildCommit:    commit,
	})
	if err != nil {
		logger.Error("failed to create server", "error", err)
		os.Exit(1)
	}

	if deps.Monitor != nil {
		go deps.Monitor.Start(ctx, healthCheckInterval)
	}
	if deps.Limiter != nil {
		go purgeLimiter(ctx, deps.Limiter)
	}

	logger.Info("starting vault service",
		"version", version,
		"commit", commit,
		"variant", cfg.Vault.Variant,
		"mover", cfg.Mover.Type,
		"database", cfg.Database.Enabled,
	)
	if err := srv.Run(ctx); err != nil {
		logger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

func newLogger(mode string) *slog.Logger {
	if mode == "production" {
		return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// purgeLimiter drops per-client limiter state for clients idle longer than
// limiterMaxIdle, so the client map cannot grow without bound.
func purgeLimiter(ctx context.Context, limiter *ratelimit.InMemoryRateLimiter) {
	ticker := time.NewTicker(limiterPurgeEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			limiter.PurgeStale(limiterMaxIdle)
		}
	}
}
