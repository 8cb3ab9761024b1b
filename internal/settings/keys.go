// Package settings implements the typed key-value store the vault reads its
// quota ceilings from, plus the key-construction scheme shared with it.
package settings

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Key suffixes for the per-asset quota ceilings.
const (
	SuffixMaxAmountPerCount = "max_amount_per_count"
	SuffixMaxAmountPerDay   = "max_amount_per_day"
	SuffixMaxCountPerDay    = "max_count_per_day"
	SuffixLargeAmount       = "large_amount"
)

// Key builds the lookup key for one asset ceiling:
// prefix + "_" + lowercase hex asset address + "_" + suffix.
func Key(prefix string, asset common.Address, suffix string) string {
	var b strings.Builder
	b.Grow(len(prefix) + 1 + 2 + common.AddressLength*2 + 1 + len(suffix))
	b.WriteString(prefix)
	b.WriteByte('_')
	b.WriteString(strings.ToLower(asset.Hex()))
	b.WriteByte('_')
	b.WriteString(suffix)
	return b.String()
}
