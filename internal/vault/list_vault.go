package vault

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/taisys-technologies/voc-vault/internal/accesscontrol"
	"github.com/taisys-technologies/voc-vault/internal/allowlist"
	"github.com/taisys-technologies/voc-vault/internal/domain"
)

// ListVault is the explicit-list variant: trusted and general destinations
// are bounded enumerable sets. An empty general list does not restrict, an
// empty trusted list trusts nobody.
type ListVault struct {
	*core
	trusted *allowlist.Set
	general *allowlist.Set
}

func NewListVault(params Params, registry *accesscontrol.Registry, transition *accesscontrol.Transition, store domain.SettingReader, mover domain.TokenMover, sink domain.Sink) *ListVault {
	v := &ListVault{
		core:    newCore(params, registry, transition, store, mover, sink),
		trusted: allowlist.NewSet(domain.ListTrusted, params.ListCapacity, sink),
		general: allowlist.NewSet(domain.ListGeneral, params.ListCapacity, sink),
	}
	v.core.policy = v
	return v
}

func (v *ListVault) isTrusted(req domain.TransferRequest) bool {
	return v.trusted.Contains(req.Destination)
}

func (v *ListVault) passesGeneral(req domain.TransferRequest) bool {
	return v.general.Len() == 0 || v.general.Contains(req.Destination)
}

// AddTrusted adds one quota-exempt destination. SETTER only.
func (v *ListVault) AddTrusted(ctx context.Context, caller, addr common.Address) error {
	if err := v.requireSetter(caller); err != nil {
		return err
	}
	return v.trusted.Add(ctx, addr)
}

// RemoveTrusted drops one quota-exempt destination. SETTER only.
func (v *ListVault) RemoveTrusted(ctx context.Context, caller, addr common.Address) error {
	if err := v.requireSetter(caller); err != nil {
		return err
	}
	return v.trusted.Remove(ctx, addr)
}

// ReplaceTrusted swaps the whole trusted set. SETTER only.
func (v *ListVault) ReplaceTrusted(ctx context.Context, caller common.Address, addrs []common.Address) error {
	if err := v.requireSetter(caller); err != nil {
		return err
	}
	return v.trusted.Replace(ctx, addrs)
}

// TrustedAddresses lists the trusted destinations.
func (v *ListVault) TrustedAddresses() []common.Address {
	return v.trusted.Addresses()
}

// IsTrusted reports whether addr is quota-exempt.
func (v *ListVault) IsTrusted(addr common.Address) bool {
	return v.trusted.Contains(addr)
}

// AddGeneral adds one small-amount-path destination. SETTER only.
func (v *ListVault) AddGeneral(ctx context.Context, caller, addr common.Address) error {
	if err := v.requireSetter(caller); err != nil {
		return err
	}
	return v.general.Add(ctx, addr)
}

// RemoveGeneral drops one small-amount-path destination. SETTER only.
func (v *ListVault) RemoveGeneral(ctx context.Context, caller, addr common.Address) error {
	if err := v.requireSetter(caller); err != nil {
		return err
	}
	return v.general.Remove(ctx, addr)
}

// ReplaceGeneral swaps the whole general set. SETTER only.
func (v *ListVault) ReplaceGeneral(ctx context.Context, caller common.Address, addrs []common.Address) error {
	if err := v.requireSetter(caller); err != nil {
		return err
	}
	return v.general.Replace(ctx, addrs)
}

// GeneralAddresses lists the small-amount-path destinations.
func (v *ListVault) GeneralAddresses() []common.Address {
	return v.general.Addresses()
}
