// Package quota keeps the per-destination, per-day usage counters and
// evaluates transfer requests against the configured ceilings.
package quota

import (
	"errors"
	"math"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

var errCounterOverflow = errors.New("quota: counter overflow")

// Usage holds the cumulative counters for one (destination, day) bucket.
type Usage struct {
	Amount *uint256.Int
	Count  uint64
}

type bucketKey struct {
	destination common.Address
	day         uint64
}

// Ledger is the in-memory usage store. Buckets are keyed by destination and
// day; old days simply stop being read, no cleanup runs. The engine that owns
// the ledger serializes check-then-record sequences; the internal lock only
// protects concurrent reads from the query surface.
type Ledger struct {
	mu    sync.RWMutex
	usage map[bucketKey]*Usage
}

func NewLedger() *Ledger {
	return &Ledger{usage: make(map[bucketKey]*Usage)}
}

// UsageAt returns a copy of the counters for (destination, day). Absent
// buckets read as zero.
func (l *Ledger) UsageAt(destination common.Address, day uint64) Usage {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if u, ok := l.usage[bucketKey{destination, day}]; ok {
		return Usage{Amount: u.Amount.Clone(), Count: u.Count}
	}
	return Usage{Amount: new(uint256.Int)}
}

// Record charges amount and one transfer against (destination, day). It must
// run only after Evaluate has passed for the same bucket state.
func (l *Ledger) Record(destination common.Address, amount *uint256.Int, day uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	k := bucketKey{destination, day}
	u, ok := l.usage[k]
	if !ok {
		u = &Usage{Amount: new(uint256.Int)}
		l.usage[k] = u
	}

	sum := new(uint256.Int)
	if _, overflow := sum.AddOverflow(u.Amount, amount); overflow {
		return errCounterOverflow
	}
	if u.Count == math.MaxUint64 {
		return errCounterOverflow
	}

	u.Amount.Set(sum)
	u.Count++
	return nil
}

// Unrecord reverses one earlier Record after a failed fund move. Counters
// clamp at zero, so a stray call cannot drive a bucket negative.
func (l *Ledger) Unrecord(destination common.Address, amount *uint256.Int, day uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	u, ok := l.usage[bucketKey{destination, day}]
	if !ok {
		return
	}

	if diff, under := new(uint256.Int).SubOverflow(u.Amount, amount); under {
		u.Amount.Clear()
	} else {
		u.Amount.Set(diff)
	}
	if u.Count > 0 {
		u.Count--
	}
}
