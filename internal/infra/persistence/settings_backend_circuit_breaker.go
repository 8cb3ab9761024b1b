package persistence

import (
	"context"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/taisys-technologies/voc-vault/internal/settings"
	"github.com/taisys-technologies/voc-vault/pkg/patterns/circuitbreaker"
)

type settingValue struct {
	value *uint256.Int
	ok    bool
}

// SettingsBackendCircuitBreaker adds a circuit breaker to a settings backend.
// It uses one type-safe breaker per result shape so no runtime assertions are
// needed. Every transfer authorization reads the backend, so a dead database
// should fail fast instead of stacking up timeouts.
type SettingsBackendCircuitBreaker struct {
	backend      settings.Backend
	valueBreaker *circuitbreaker.Breaker[settingValue]
	boolBreaker  *circuitbreaker.Breaker[bool]
	listBreaker  *circuitbreaker.Breaker[map[string]*uint256.Int]
	voidBreaker  *circuitbreaker.Breaker[any]
}

// NewSettingsBackendCircuitBreaker wraps backend with a circuit breaker.
func NewSettingsBackendCircuitBreaker(backend settings.Backend, maxFailures int, resetTimeout time.Duration, logger *slog.Logger) settings.Backend {
	logTransition := func(from, to circuitbreaker.State) {
		logger.Warn("settings backend breaker state change",
			"from", from.String(), "to", to.String())
	}

	return &SettingsBackendCircuitBreaker{
		backend: backend,
		valueBreaker: circuitbreaker.New(maxFailures,
			circuitbreaker.WithResetTimeout[settingValue](resetTimeout),
			circuitbreaker.WithOnStateChange[settingValue](logTransition)),
		boolBreaker: circuitbreaker.New(maxFailures,
			circuitbreaker.WithResetTimeout[bool](resetTimeout),
			circuitbreaker.WithOnStateChange[bool](logTransition)),
		listBreaker: circuitbreaker.New(maxFailures,
			circuitbreaker.WithResetTimeout[map[string]*uint256.Int](resetTimeout),
			circuitbreaker.WithOnStateChange[map[string]*uint256.Int](logTransition)),
		voidBreaker: circuitbreaker.New(maxFailures,
			circuitbreaker.WithResetTimeout[any](resetTimeout),
			circuitbreaker.WithOnStateChange[any](logTransition)),
	}
}

func (cb *SettingsBackendCircuitBreaker) Get(ctx context.Context, owner common.Address, key string) (*uint256.Int, bool, error) {
	result, err := cb.valueBreaker.Execute(ctx, func(ctx context.Context) (settingValue, error) {
		value, ok, err := cb.backend.Get(ctx, owner, key)
		return settingValue{value: value, ok: ok}, err
	})
	return result.value, result.ok, err
}

func (cb *SettingsBackendCircuitBreaker) Put(ctx context.Context, owner common.Address, key string, value *uint256.Int) error {
	_, err := cb.voidBreaker.Execute(ctx, func(ctx context.Context) (any, error) {
		return nil, cb.backend.Put(ctx, owner, key, value)
	})
	return err
}

func (cb *SettingsBackendCircuitBreaker) Delete(ctx context.Context, owner common.Address, key string) (bool, error) {
	return cb.boolBreaker.Execute(ctx, func(ctx context.Context) (bool, error) {
		return cb.backend.Delete(ctx, owner, key)
	})
}

func (cb *SettingsBackendCircuitBreaker) List(ctx context.Context, owner common.Address) (map[string]*uint256.Int, error) {
	return cb.listBreaker.Execute(ctx, func(ctx context.Context) (map[string]*uint256.Int, error) {
		return cb.backend.List(ctx, owner)
	})
}
