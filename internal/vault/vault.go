// Package vault is the authorization engine that decides whether a requested
// transfer may move funds, and the facade every privileged operation goes
// through. Two variants share one core: ListVault checks destinations against
// explicit bounded sets, MerkleVault against root commitments with per-call
// proofs.
package vault

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/taisys-technologies/voc-vault/internal/accesscontrol"
	"github.com/taisys-technologies/voc-vault/internal/allowlist"
	"github.com/taisys-technologies/voc-vault/internal/domain"
	app_errors "github.com/taisys-technologies/voc-vault/internal/errors"
	"github.com/taisys-technologies/voc-vault/internal/quota"
	"github.com/taisys-technologies/voc-vault/internal/settings"
)

// Params configures a vault instance at construction.
type Params struct {
	// Prefix namespaces every setting-store key this vault reads.
	Prefix string
	// ParamOwner is the identity whose setting-store keys hold the quota
	// ceilings.
	ParamOwner common.Address
	// AssetCapacity bounds the supported-asset set; zero means the
	// allow-list default.
	AssetCapacity int
	// ListCapacity bounds the explicit destination lists; ignored by the
	// Merkle variant.
	ListCapacity int
}

// ConfigView is a read-only snapshot of the mutable vault configuration.
type ConfigView struct {
	Prefix     string         `json:"prefix"`
	ParamOwner common.Address `json:"param_owner"`
}

// destinationPolicy is the variant-specific half of the authorization
// decision: how a destination qualifies as trusted, and how it passes the
// general list.
type destinationPolicy interface {
	isTrusted(req domain.TransferRequest) bool
	passesGeneral(req domain.TransferRequest) bool
}

// core carries the state and operations shared by both variants. The mutex
// serializes check-then-record sequences and configuration reads; the
// in-flight flag locks out overlapping fund-moving calls entirely, including
// reentrant ones from inside the mover.
type core struct {
	mu       sync.Mutex
	inFlight atomic.Bool

	registry   *accesscontrol.Registry
	transition *accesscontrol.Transition
	assets     *allowlist.Set
	ledger     *quota.Ledger
	store      domain.SettingReader
	policies   *settings.PolicyReader
	mover      domain.TokenMover
	sink       domain.Sink

	prefix     string
	paramOwner common.Address

	policy destinationPolicy
}

func newCore(params Params, registry *accesscontrol.Registry, transition *accesscontrol.Transition, store domain.SettingReader, mover domain.TokenMover, sink domain.Sink) *core {
	return &core{
		registry:   registry,
		transition: transition,
		assets:     allowlist.NewSet(domain.ListAssets, params.AssetCapacity, sink),
		ledger:     quota.NewLedger(),
		store:      store,
		policies:   settings.NewPolicyReader(store),
		mover:      mover,
		sink:       sink,
		prefix:     params.Prefix,
		paramOwner: params.ParamOwner,
	}
}

func (c *core) requireSetter(caller common.Address) error {
	if !c.registry.HasRole(domain.RoleSetter, caller) {
		return app_errors.ErrUnauthorized
	}
	return nil
}

// HasRole reports whether account holds role.
func (c *core) HasRole(role domain.Role, account common.Address) bool {
	return c.registry.HasRole(role, account)
}

// GrantRole adds account to role on behalf of caller.
func (c *core) GrantRole(ctx context.Context, caller common.Address, role domain.Role, account common.Address) error {
	return c.registry.Grant(ctx, caller, role, account)
}

// RevokeRole removes account from role on behalf of caller.
func (c *core) RevokeRole(ctx context.Context, caller common.Address, role domain.Role, account common.Address) error {
	return c.registry.Revoke(ctx, caller, role, account)
}

// RoleMembers lists the current holders of role.
func (c *core) RoleMembers(role domain.Role) []common.Address {
	return c.registry.Members(role)
}

// InitiateAdminTransfer opens a two-phase ADMIN handover to target.
func (c *core) InitiateAdminTransfer(ctx context.Context, caller, target common.Address) error {
	return c.transition.Initiate(ctx, caller, target)
}

// AcceptAdminTransfer completes the handover opened by originalAdmin.
func (c *core) AcceptAdminTransfer(ctx context.Context, originalAdmin, caller common.Address) error {
	return c.transition.Accept(ctx, originalAdmin, caller)
}

// CancelAdminTransfer withdraws the caller's open handover.
func (c *core) CancelAdminTransfer(ctx context.Context, caller common.Address) error {
	return c.transition.Cancel(ctx, caller)
}

// PendingAdminTransfer returns the proposed successor for admin, if any.
func (c *core) PendingAdminTransfer(admin common.Address) (common.Address, bool) {
	return c.transition.Pending(admin)
}

// AddAsset adds one supported asset. SETTER only.
func (c *core) AddAsset(ctx context.Context, caller, asset common.Address) error {
	if err := c.requireSetter(caller); err != nil {
		return err
	}
	return c.assets.Add(ctx, asset)
}

// RemoveAsset drops one supported asset. SETTER only.
func (c *core) RemoveAsset(ctx context.Context, caller, asset common.Address) error {
	if err := c.requireSetter(caller); err != nil {
		return err
	}
	return c.assets.Remove(ctx, asset)
}

// ReplaceAssets swaps the whole supported-asset set. SETTER only.
func (c *core) ReplaceAssets(ctx context.Context, caller common.Address, assets []common.Address) error {
	if err := c.requireSetter(caller); err != nil {
		return err
	}
	return c.assets.Replace(ctx, assets)
}

// Assets lists the supported assets.
func (c *core) Assets() []common.Address {
	return c.assets.Addresses()
}

// SupportsAsset reports whether asset is in the supported set.
func (c *core) SupportsAsset(asset common.Address) bool {
	return c.assets.Contains(asset)
}

// SetPrefix changes the setting-key namespace. SETTER only.
func (c *core) SetPrefix(ctx context.Context, caller common.Address, prefix string) error {
	if err := c.requireSetter(caller); err != nil {
		return err
	}

	c.mu.Lock()
	previous := c.prefix
	c.prefix = prefix
	c.mu.Unlock()

	c.sink.Emit(ctx, domain.ConfigChanged{Field: "prefix", Previous: previous, Current: prefix})
	return nil
}

// SetParamOwner changes whose setting-store keys are read. SETTER only.
func (c *core) SetParamOwner(ctx context.Context, caller, owner common.Address) error {
	if err := c.requireSetter(caller); err != nil {
		return err
	}
	if domain.IsZeroAddress(owner) {
		return app_errors.ErrZeroAddress
	}

	c.mu.Lock()
	previous := c.paramOwner
	c.paramOwner = owner
	c.mu.Unlock()

	c.sink.Emit(ctx, domain.ConfigChanged{
		Field: "param_owner", Previous: previous.Hex(), Current: owner.Hex(),
	})
	return nil
}

// SetSettingSource repoints quota-ceiling reads at a different setting store.
// SETTER only. The swap takes effect for the next authorization; an in-flight
// decision keeps the store it started with.
func (c *core) SetSettingSource(ctx context.Context, caller common.Address, store domain.SettingReader) error {
	if err := c.requireSetter(caller); err != nil {
		return err
	}
	if store == nil {
		return app_errors.ErrZeroAddress
	}

	c.mu.Lock()
	previous := c.store
	c.store = store
	c.policies = settings.NewPolicyReader(store)
	c.mu.Unlock()

	c.sink.Emit(ctx, domain.ConfigChanged{
		Field:    "setting_source",
		Previous: fmt.Sprintf("%T", previous),
		Current:  fmt.Sprintf("%T", store),
	})
	return nil
}

// Config returns the current mutable configuration.
func (c *core) Config() ConfigView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ConfigView{Prefix: c.prefix, ParamOwner: c.paramOwner}
}

// UsageAt returns the recorded counters for destination in the day bucket
// containing at.
func (c *core) UsageAt(destination common.Address, at time.Time) quota.Usage {
	return c.ledger.UsageAt(destination, domain.Day(at))
}
