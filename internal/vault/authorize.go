package vault

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/taisys-technologies/voc-vault/internal/domain"
	app_errors "github.com/taisys-technologies/voc-vault/internal/errors"
	"github.com/taisys-technologies/voc-vault/internal/quota"
)

// Transfer authorizes req for caller and, on permit, moves the funds. The
// whole sequence is one unit: usage recorded on the quota route is reversed
// if the token move fails, and no second fund-moving call may start while one
// is in flight, including a reentrant call from inside the mover.
func (c *core) Transfer(ctx context.Context, caller common.Address, req domain.TransferRequest) (domain.Decision, error) {
	if !c.inFlight.CompareAndSwap(false, true) {
		return domain.Decision{}, app_errors.ErrReentrantCall
	}
	defer c.inFlight.Store(false)

	req = normalize(req)

	c.mu.Lock()
	decision, err := c.authorizeLocked(ctx, caller, req, true)
	c.mu.Unlock()
	if err != nil {
		return domain.Decision{}, err
	}

	if err := c.mover.Transfer(ctx, req.Asset, req.Destination, req.Amount); err != nil {
		if decision.Route == domain.RouteQuota {
			c.ledger.Unrecord(req.Destination, req.Amount, decision.Day)
		}
		return domain.Decision{}, fmt.Errorf("%w: %v", app_errors.ErrTransferFailed, err)
	}

	c.sink.Emit(ctx, domain.TransferExecuted{
		Caller:      caller,
		Asset:       req.Asset,
		Destination: req.Destination,
		Amount:      req.Amount.Clone(),
		Route:       decision.Route,
		Operation:   req.Operation,
		Day:         decision.Day,
	})
	return decision, nil
}

// Authorize runs the decision policy without recording usage or moving
// funds. It answers "would this transfer pass right now".
func (c *core) Authorize(ctx context.Context, caller common.Address, req domain.TransferRequest) (domain.Decision, error) {
	req = normalize(req)

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.authorizeLocked(ctx, caller, req, false)
}

// authorizeLocked evaluates the decision policy in order: supported asset,
// unconditional permit (trusted destination or unrestricted caller), then the
// quota-checked small-amount path. With commit set, passing the small-amount
// path charges the ledger before the caller moves funds.
func (c *core) authorizeLocked(ctx context.Context, caller common.Address, req domain.TransferRequest, commit bool) (domain.Decision, error) {
	if domain.IsZeroAddress(caller) || domain.IsZeroAddress(req.Destination) || domain.IsZeroAddress(req.Asset) {
		return domain.Decision{}, app_errors.ErrZeroAddress
	}

	if !c.assets.Contains(req.Asset) {
		return domain.Decision{}, app_errors.ErrUnsupportedAsset
	}

	if c.policy.isTrusted(req) || c.registry.HasRole(domain.RoleNoLimitTransfer, caller) {
		return domain.Decision{Route: domain.RouteTrusted}, nil
	}

	if !c.registry.HasRole(domain.RoleSmallAmountTransfer, caller) {
		return domain.Decision{}, app_errors.ErrForbidden
	}

	policy, err := c.policies.Policy(ctx, c.paramOwner, c.prefix, req.Asset)
	if err != nil {
		return domain.Decision{}, err
	}

	// The small-amount path only exists below a configured large-amount
	// floor. No floor, no path.
	if !policy.LargeAmount.Configured || req.Amount.Cmp(policy.LargeAmount.Value) >= 0 {
		return domain.Decision{}, app_errors.ErrInvalidTransfer
	}

	if !c.policy.passesGeneral(req) {
		return domain.Decision{}, app_errors.ErrInvalidDestination
	}

	day := domain.Day(req.Timestamp)
	usage := c.ledger.UsageAt(req.Destination, day)
	if err := quota.Evaluate(policy, usage, req.Amount); err != nil {
		return domain.Decision{}, err
	}

	if commit {
		if err := c.ledger.Record(req.Destination, req.Amount, day); err != nil {
			return domain.Decision{}, err
		}
	}
	return domain.Decision{Route: domain.RouteQuota, Day: day}, nil
}

// AvailableCapacity reports the remaining daily quota headroom for
// destination and asset in the day bucket containing at.
func (c *core) AvailableCapacity(ctx context.Context, destination, asset common.Address, at time.Time) (domain.Capacity, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.assets.Contains(asset) {
		return domain.Capacity{}, app_errors.ErrUnsupportedAsset
	}

	policy, err := c.policies.Policy(ctx, c.paramOwner, c.prefix, asset)
	if err != nil {
		return domain.Capacity{}, err
	}

	usage := c.ledger.UsageAt(destination, domain.Day(at))
	return quota.Available(policy, usage), nil
}

func normalize(req domain.TransferRequest) domain.TransferRequest {
	if req.Amount == nil {
		req.Amount = new(uint256.Int)
	}
	if req.Timestamp.IsZero() {
		req.Timestamp = time.Now()
	}
	return req
}
