// Package accesscontrol holds role membership and the two-phase admin
// handover. It is the single authority every other component consults for
// caller privileges.
package accesscontrol

import (
	"bytes"
	"context"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/taisys-technologies/voc-vault/internal/domain"
	app_errors "github.com/taisys-technologies/voc-vault/internal/errors"
)

// Registry maps roles to member sets. Every role is governed by an admin
// role; only members of that admin role may grant or revoke it. Membership
// changes are visible to all subsequent checks immediately.
type Registry struct {
	mu      sync.RWMutex
	members map[domain.Role]map[common.Address]struct{}
	adminOf map[domain.Role]domain.Role
	sink    domain.Sink
}

// NewRegistry builds a registry with initialAdmin holding ADMIN. All roles
// are governed by ADMIN, which governs itself.
func NewRegistry(initialAdmin common.Address, sink domain.Sink) (*Registry, error) {
	if domain.IsZeroAddress(initialAdmin) {
		return nil, app_errors.ErrZeroAddress
	}

	members := make(map[domain.Role]map[common.Address]struct{}, len(domain.AllRoles()))
	adminOf := make(map[domain.Role]domain.Role, len(domain.AllRoles()))
	for _, role := range domain.AllRoles() {
		members[role] = make(map[common.Address]struct{})
		adminOf[role] = domain.RoleAdmin
	}
	members[domain.RoleAdmin][initialAdmin] = struct{}{}

	return &Registry{members: members, adminOf: adminOf, sink: sink}, nil
}

// HasRole reports whether account currently holds role.
func (r *Registry) HasRole(role domain.Role, account common.Address) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.holdsLocked(role, account)
}

// AdminOf returns the role that governs role.
func (r *Registry) AdminOf(role domain.Role) domain.Role {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.adminOf[role]
}

// Grant adds account to role. The caller must hold role's admin role.
// Granting to an existing member is a no-op and emits nothing.
func (r *Registry) Grant(ctx context.Context, caller common.Address, role domain.Role, account common.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.holdsLocked(r.adminOf[role], caller) {
		return app_errors.ErrUnauthorized
	}
	if domain.IsZeroAddress(account) {
		return app_errors.ErrZeroAddress
	}

	r.grantLocked(ctx, role, account, caller)
	return nil
}

// Revoke removes account from role. The caller must hold role's admin role.
// Revoking a non-member is a no-op and emits nothing.
func (r *Registry) Revoke(ctx context.Context, caller common.Address, role domain.Role, account common.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.holdsLocked(r.adminOf[role], caller) {
		return app_errors.ErrUnauthorized
	}

	r.revokeLocked(ctx, role, account, caller)
	return nil
}

// Members returns the current holders of role in byte order.
func (r *Registry) Members(role domain.Role) []common.Address {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]common.Address, 0, len(r.members[role]))
	for account := range r.members[role] {
		out = append(out, account)
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i][:], out[j][:]) < 0
	})
	return out
}

func (r *Registry) holdsLocked(role domain.Role, account common.Address) bool {
	_, ok := r.members[role][account]
	return ok
}

func (r *Registry) grantLocked(ctx context.Context, role domain.Role, account, by common.Address) bool {
	if r.holdsLocked(role, account) {
		return false
	}
	r.members[role][account] = struct{}{}
	r.sink.Emit(ctx, domain.RoleGranted{Role: role, Account: account, Grantor: by})
	return true
}

func (r *Registry) revokeLocked(ctx context.Context, role domain.Role, account, by common.Address) bool {
	if !r.holdsLocked(role, account) {
		return false
	}
	delete(r.members[role], account)
	r.sink.Emit(ctx, domain.RoleRevoked{Role: role, Account: account, Revoker: by})
	return true
}

// transferRole moves role from one holder to another inside a single
// critical section, so no reader ever observes both or neither holding it.
func (r *Registry) transferRole(ctx context.Context, role domain.Role, from, to, by common.Address) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.grantLocked(ctx, role, to, by)
	r.revokeLocked(ctx, role, from, by)
}

// revokeRole is the transition's gate-free revoke. It skips the admin-role
// check because the transition has already authorized the caller.
func (r *Registry) revokeRole(ctx context.Context, role domain.Role, account, by common.Address) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.revokeLocked(ctx, role, account, by)
}
