package domain

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// SettingReader is the external typed key-value store the vault consults for
// quota policy values. The vault never writes through this interface.
type SettingReader interface {
	// CheckUint returns the value stored under (owner, key) and whether it
	// exists. A missing key is not an error.
	CheckUint(ctx context.Context, owner common.Address, key string) (*uint256.Int, bool, error)
}

// Limit is an optional ceiling. Configured distinguishes "set to zero" from
// "not set"; an unconfigured limit means unlimited, not zero.
type Limit struct {
	Value      *uint256.Int
	Configured bool
}

// QuotaPolicy carries the per-asset ceilings fetched from the setting store.
type QuotaPolicy struct {
	// MaxAmountPerTransfer caps a single transfer's amount.
	MaxAmountPerTransfer Limit
	// MaxAmountPerDay caps the cumulative amount per destination per day.
	MaxAmountPerDay Limit
	// MaxCountPerDay caps the number of transfers per destination per day.
	MaxCountPerDay Limit
	// LargeAmount is the floor at or above which the small-amount path is
	// not applicable. The path is disabled entirely while unconfigured.
	LargeAmount Limit
}
