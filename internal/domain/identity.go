package domain

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// SecondsPerDay is the width of one quota day bucket.
const SecondsPerDay = 86400

// Day returns the day bucket the given timestamp falls into.
func Day(t time.Time) uint64 {
	return uint64(t.Unix()) / SecondsPerDay
}

// IsZeroAddress reports whether addr is the all-zero address.
func IsZeroAddress(addr common.Address) bool {
	return addr == (common.Address{})
}
