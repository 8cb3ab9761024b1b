// Package wiring assembles the application object graph from configuration.
// The container builds every dependency exactly once and owns the handles
// that need explicit release on shutdown.
package wiring

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/time/rate"

	"github.com/taisys-technologies/voc-vault/dev/tokenmover"
	"github.com/taisys-technologies/voc-vault/internal/accesscontrol"
	"github.com/taisys-technologies/voc-vault/internal/constants"
	"github.com/taisys-technologies/voc-vault/internal/domain"
	"github.com/taisys-technologies/voc-vault/internal/infra/audit"
	infra_config "github.com/taisys-technologies/voc-vault/internal/infra/config"
	"github.com/taisys-technologies/voc-vault/internal/infra/ethereum"
	"github.com/taisys-technologies/voc-vault/internal/infra/persistence"
	"github.com/taisys-technologies/voc-vault/internal/infra/ratelimit"
	"github.com/taisys-technologies/voc-vault/internal/settings"
	"github.com/taisys-technologies/voc-vault/internal/vault"
	"github.com/taisys-technologies/voc-vault/pkg/postgres"
)

// Dependencies carries the constructed application components. Exactly one of
// ListVault and MerkleVault is set, per the configured variant. Pool, Monitor
// and Limiter are nil when their subsystems are disabled.
type Dependencies struct {
	ListVault   *vault.ListVault
	MerkleVault *vault.MerkleVault
	Settings    *settings.Service
	Events      domain.EventRepository
	Monitor     *persistence.ConnectionMonitor
	Limiter     *ratelimit.InMemoryRateLimiter
	Pool        *pgxpool.Pool
}

// Container builds Dependencies lazily from configuration.
type Container struct {
	cfg    *infra_config.Config
	logger *slog.Logger

	once sync.Once
	deps *Dependencies
	err  error

	pool      *pgxpool.Pool
	asyncSink *audit.AsyncRepositorySink
	mover     interface{ Close() }
}

func NewContainer(cfg *infra_config.Config, logger *slog.Logger) *Container {
	return &Container{cfg: cfg, logger: logger}
}

// GetDependencies constructs the object graph on first call and returns the
// same instances afterwards.
func (c *Container) GetDependencies(ctx context.Context) (*Dependencies, error) {
	c.once.Do(func() {
		c.deps, c.err = c.build(ctx)
	})
	return c.deps, c.err
}

func (c *Container) build(ctx context.Context) (*Dependencies, error) {
	deps := &Dependencies{}

	if c.cfg.Database.Enabled {
		pool, err := c.providePool(ctx)
		if err != nil {
			return nil, err
		}
		c.pool = pool
		deps.Pool = pool
		deps.Monitor = persistence.NewConnectionMonitor(pool, c.logger)
	}

	deps.Events = c.provideEventRepository()
	sink := c.provideSink(deps.Events)

	registry, err := accesscontrol.NewRegistry(common.HexToAddress(c.cfg.Vault.InitialAdmin), sink)
	if err != nil {
		return nil, fmt.Errorf("failed to create role registry: %w", err)
	}
	transition := accesscontrol.NewTransition(registry, sink)
	deps.Settings = settings.NewService(registry, c.provideSettingsBackend(), sink)

	mover, err := c.provideMover(ctx)
	if err != nil {
		return nil, err
	}

	params := vault.Params{
		Prefix:        c.cfg.Vault.Prefix,
		ParamOwner:    common.HexToAddress(c.cfg.Vault.ParamOwner),
		AssetCapacity: c.cfg.Vault.AssetCapacity,
		ListCapacity:  c.cfg.Vault.ListCapacity,
	}
	switch c.cfg.Vault.Variant {
	case "merkle":
		deps.MerkleVault = vault.NewMerkleVault(params, registry, transition, deps.Settings, mover, sink)
	case "list":
		deps.ListVault = vault.NewListVault(params, registry, transition, deps.Settings, mover, sink)
	default:
		return nil, fmt.Errorf("unknown vault variant %q", c.cfg.Vault.Variant)
	}

	if c.cfg.Server.RateLimiter.Enabled {
		deps.Limiter = ratelimit.NewInMemoryRateLimiter(
			rate.Limit(c.cfg.Server.RateLimiter.RPS), c.cfg.Server.RateLimiter.Burst)
	}

	return deps, nil
}

// providePool connects to the database and verifies every statement the
// repositories will run, so a schema mismatch fails the boot instead of the
// first request.
func (c *Container) providePool(ctx context.Context) (*pgxpool.Pool, error) {
	pool, err := persistence.NewConnectionPool(ctx, c.cfg.Database, c.cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := postgres.NewClient(pool).ValidateQueries(ctx, constants.Queries); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to validate queries: %w", err)
	}
	return pool, nil
}

func (c *Container) provideEventRepository() domain.EventRepository {
	if c.pool != nil {
		return persistence.NewEventRepository(c.pool, c.logger)
	}
	return audit.NewMemoryEventRepository()
}

// provideSink wires the event trail: every event reaches the structured log,
// and with persistence enabled also the event repository, either inline or
// through the batching async sink.
func (c *Container) provideSink(events domain.EventRepository) domain.Sink {
	sinks := audit.MultiSink{audit.NewStructuredSink(c.logger)}

	if c.cfg.Audit.PersistEvents {
		if c.cfg.Audit.Async.Enabled {
			async := audit.NewAsyncRepositorySink(c.logger, events, audit.AsyncSinkConfig{
				ChannelBufferSize: c.cfg.Audit.Async.ChannelBufferSize,
				WorkerCount:       c.cfg.Audit.Async.WorkerCount,
				BatchSize:         c.cfg.Audit.Async.BatchSize,
				BatchTimeout:      c.cfg.Audit.Async.BatchTimeout,
			})
			async.Start()
			c.asyncSink = async
			sinks = append(sinks, async)
		} else {
			sinks = append(sinks, audit.NewRepositorySink(events, c.logger))
		}
	}

	return sinks
}

func (c *Container) provideSettingsBackend() settings.Backend {
	if c.pool == nil {
		return settings.NewMemoryBackend()
	}

	var backend settings.Backend = persistence.NewSettingsStore(c.pool, c.logger)
	if cb := c.cfg.Database.CircuitBreaker; cb.Enabled {
		backend = persistence.NewSettingsBackendCircuitBreaker(backend, cb.MaxFailures, cb.ResetTimeout, c.logger)
	}
	return backend
}

func (c *Container) provideMover(ctx context.Context) (domain.TokenMover, error) {
	switch c.cfg.Mover.Type {
	case "erc20":
		mover, err := ethereum.NewERC20Mover(ctx, c.cfg.Mover.ERC20, c.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create erc20 mover: %w", err)
		}
		c.mover = mover
		return mover, nil
	case "mock":
		return tokenmover.NewMock(), nil
	default:
		return nil, fmt.Errorf("unknown mover type %q", c.cfg.Mover.Type)
	}
}

// Close releases everything the container owns. The async sink stops first so
// its final batch still reaches the pool.
func (c *Container) Close() error {
	if c.asyncSink != nil {
		c.asyncSink.Stop()
	}
	if c.mover != nil {
		c.mover.Close()
	}
	if c.pool != nil {
		c.pool.Close()
	}
	return nil
}
