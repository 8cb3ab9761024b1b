package accesscontrol

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/taisys-technologies/voc-vault/internal/domain"
	app_errors "github.com/taisys-technologies/voc-vault/internal/errors"
)

// Transition is the two-party handshake for handing over ADMIN. An admin
// proposes a successor; only that successor can complete the handover, and
// only the proposer can withdraw it. The role moves in one step on accept,
// so the system is never adminless and never double-admined.
type Transition struct {
	mu       sync.Mutex
	registry *Registry
	pending  map[common.Address]common.Address // original admin -> proposed successor
	sink     domain.Sink
}

func NewTransition(registry *Registry, sink domain.Sink) *Transition {
	return &Transition{
		registry: registry,
		pending:  make(map[common.Address]common.Address),
		sink:     sink,
	}
}

// Initiate proposes target as the caller's successor. The target must be a
// real address distinct from the caller and must not already hold ADMIN.
func (t *Transition) Initiate(ctx context.Context, caller, target common.Address) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.registry.HasRole(domain.RoleAdmin, caller) {
		return app_errors.ErrUnauthorized
	}
	if domain.IsZeroAddress(target) || target == caller || t.registry.HasRole(domain.RoleAdmin, target) {
		return app_errors.ErrInvalidTarget
	}
	if _, ok := t.pending[caller]; ok {
		return app_errors.ErrAlreadyPending
	}

	t.pending[caller] = target
	t.sink.Emit(ctx, domain.AdminTransferInitiated{From: caller, To: target})
	return nil
}

// Accept completes the handover proposed by originalAdmin. Only the proposed
// successor may call it. ADMIN moves from originalAdmin to the caller in a
// single registry critical section.
func (t *Transition) Accept(ctx context.Context, originalAdmin, caller common.Address) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	target, ok := t.pending[originalAdmin]
	if !ok {
		return app_errors.ErrNotPending
	}
	if caller != target {
		return app_errors.ErrWrongCaller
	}

	t.registry.transferRole(ctx, domain.RoleAdmin, originalAdmin, caller, caller)
	delete(t.pending, originalAdmin)
	t.sink.Emit(ctx, domain.AdminTransferAccepted{From: originalAdmin, To: caller})
	return nil
}

// Cancel withdraws the caller's own pending handover. The proposed successor
// never held ADMIN, but it is revoked anyway in case it was granted through
// another path while the handover was open.
func (t *Transition) Cancel(ctx context.Context, caller common.Address) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.registry.HasRole(domain.RoleAdmin, caller) {
		return app_errors.ErrUnauthorized
	}
	target, ok := t.pending[caller]
	if !ok {
		return app_errors.ErrNotPending
	}

	t.registry.revokeRole(ctx, domain.RoleAdmin, target, caller)
	delete(t.pending, caller)
	t.sink.Emit(ctx, domain.AdminTransferCanceled{From: caller, To: target})
	return nil
}

// Pending returns the proposed successor for admin, if a handover is open.
func (t *Transition) Pending(admin common.Address) (common.Address, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	target, ok := t.pending[admin]
	return target, ok
}
