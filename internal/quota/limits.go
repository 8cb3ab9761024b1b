package quota

import (
	"math"

	"github.com/holiman/uint256"

	"github.com/taisys-technologies/voc-vault/internal/domain"
	app_errors "github.com/taisys-technologies/voc-vault/internal/errors"
)

// Evaluate checks one prospective transfer against the policy, given the
// bucket's current usage. Unconfigured ceilings do not constrain. Each
// configured ceiling that would be exceeded fails with its own error,
// checked in this order: per-transfer amount, daily amount, daily count.
func Evaluate(policy domain.QuotaPolicy, usage Usage, amount *uint256.Int) error {
	if policy.MaxAmountPerTransfer.Configured && amount.Gt(policy.MaxAmountPerTransfer.Value) {
		return app_errors.ErrOverPerCountLimit
	}

	if policy.MaxAmountPerDay.Configured {
		sum := new(uint256.Int)
		_, overflow := sum.AddOverflow(usage.Amount, amount)
		if overflow || sum.Gt(policy.MaxAmountPerDay.Value) {
			return app_errors.ErrOverPerDayAmountLimit
		}
	}

	// count >= ceiling means the next transfer would exceed it.
	if policy.MaxCountPerDay.Configured && policy.MaxCountPerDay.Value.CmpUint64(usage.Count) <= 0 {
		return app_errors.ErrOverPerDayCountLimit
	}

	return nil
}

// Available reports the remaining daily headroom for a bucket. Dimensions
// without a configured ceiling come back unbounded. The count dimension is
// clamped to the uint64 range.
func Available(policy domain.QuotaPolicy, usage Usage) domain.Capacity {
	var c domain.Capacity

	if policy.MaxAmountPerDay.Configured {
		c.AmountBounded = true
		remaining := new(uint256.Int)
		if _, under := remaining.SubOverflow(policy.MaxAmountPerDay.Value, usage.Amount); under {
			remaining.Clear()
		}
		c.Amount = remaining
	}

	if policy.MaxCountPerDay.Configured {
		c.CountBounded = true
		ceiling := policy.MaxCountPerDay.Value
		switch {
		case ceiling.CmpUint64(usage.Count) <= 0:
			c.Count = 0
		case !ceiling.IsUint64():
			c.Count = math.MaxUint64
		default:
			c.Count = ceiling.Uint64() - usage.Count
		}
	}

	return c
}
