package settings

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/taisys-technologies/voc-vault/internal/accesscontrol"
	"github.com/taisys-technologies/voc-vault/internal/domain"
	app_errors "github.com/taisys-technologies/voc-vault/internal/errors"
)

// Backend is the storage behind the setting service. Implementations must
// return copies, never internal value pointers.
type Backend interface {
	Get(ctx context.Context, owner common.Address, key string) (*uint256.Int, bool, error)
	Put(ctx context.Context, owner common.Address, key string, value *uint256.Int) error
	// Delete reports whether the key existed.
	Delete(ctx context.Context, owner common.Address, key string) (bool, error)
	List(ctx context.Context, owner common.Address) (map[string]*uint256.Int, error)
}

// Service is the owned rendition of the external setting store: unrestricted
// typed reads, SETTER-gated writes. It satisfies domain.SettingReader, so the
// vault consumes it through the same interface it would use for a remote
// store.
type Service struct {
	registry *accesscontrol.Registry
	backend  Backend
	sink     domain.Sink
}

func NewService(registry *accesscontrol.Registry, backend Backend, sink domain.Sink) *Service {
	return &Service{registry: registry, backend: backend, sink: sink}
}

// CheckUint returns the value stored under (owner, key) and whether it exists.
func (s *Service) CheckUint(ctx context.Context, owner common.Address, key string) (*uint256.Int, bool, error) {
	return s.backend.Get(ctx, owner, key)
}

// SetUint stores value under (owner, key), overwriting any previous value.
func (s *Service) SetUint(ctx context.Context, caller, owner common.Address, key string, value *uint256.Int) error {
	if !s.registry.HasRole(domain.RoleSetter, caller) {
		return app_errors.ErrUnauthorized
	}
	if domain.IsZeroAddress(owner) {
		return app_errors.ErrZeroAddress
	}
	if value == nil {
		value = new(uint256.Int)
	}

	if err := s.backend.Put(ctx, owner, key, value); err != nil {
		return err
	}
	s.sink.Emit(ctx, domain.SettingUpdated{Owner: owner, Key: key, Value: value.Clone()})
	return nil
}

// DeleteUint removes (owner, key). Deleting an absent key is a no-op.
func (s *Service) DeleteUint(ctx context.Context, caller, owner common.Address, key string) error {
	if !s.registry.HasRole(domain.RoleSetter, caller) {
		return app_errors.ErrUnauthorized
	}

	deleted, err := s.backend.Delete(ctx, owner, key)
	if err != nil {
		return err
	}
	if deleted {
		s.sink.Emit(ctx, domain.SettingUpdated{Owner: owner, Key: key, Removed: true})
	}
	return nil
}

// List returns all keys stored under owner.
func (s *Service) List(ctx context.Context, owner common.Address) (map[string]*uint256.Int, error) {
	return s.backend.List(ctx, owner)
}
