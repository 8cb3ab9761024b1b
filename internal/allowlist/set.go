// Package allowlist holds the two interchangeable destination/asset stores: a
// bounded explicit set and a Merkle root commitment. Both are unprivileged
// data structures; caller gating happens in the vault facade that owns them.
package allowlist

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/taisys-technologies/voc-vault/internal/domain"
	app_errors "github.com/taisys-technologies/voc-vault/internal/errors"
)

// DefaultCapacity bounds a set when no explicit capacity is configured.
const DefaultCapacity = 20

// Set is a bounded address set with stable enumeration. Removal swaps the
// last entry into the vacated slot, so enumeration order changes but stays
// duplicate-free.
type Set struct {
	mu       sync.RWMutex
	kind     domain.ListKind
	capacity int
	index    map[common.Address]int
	order    []common.Address
	sink     domain.Sink
}

// NewSet builds an empty set for the given list. A non-positive capacity
// falls back to DefaultCapacity.
func NewSet(kind domain.ListKind, capacity int, sink domain.Sink) *Set {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Set{
		kind:     kind,
		capacity: capacity,
		index:    make(map[common.Address]int, capacity),
		sink:     sink,
	}
}

// Add inserts addr. It rejects the zero address, duplicates, and any insert
// beyond capacity, leaving the set untouched in each case.
func (s *Set) Add(ctx context.Context, addr common.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addLocked(ctx, addr)
}

// Remove deletes addr. Removing an absent address is a no-op.
func (s *Set) Remove(ctx context.Context, addr common.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(ctx, addr)
	return nil
}

// Replace swaps the whole membership in one operation. The input is validated
// up front so a bad element leaves the previous membership fully intact.
func (s *Set) Replace(ctx context.Context, addrs []common.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(addrs) > s.capacity {
		return app_errors.ErrListTooLong
	}
	seen := make(map[common.Address]struct{}, len(addrs))
	for _, addr := range addrs {
		if domain.IsZeroAddress(addr) {
			return app_errors.ErrZeroAddress
		}
		if _, dup := seen[addr]; dup {
			return app_errors.ErrDuplicateAddress
		}
		seen[addr] = struct{}{}
	}

	for len(s.order) > 0 {
		s.removeLocked(ctx, s.order[len(s.order)-1])
	}
	for _, addr := range addrs {
		// Cannot fail: the input was validated against this capacity.
		_ = s.addLocked(ctx, addr)
	}

	s.sink.Emit(ctx, domain.ListReplaced{List: s.kind, Size: len(addrs)})
	return nil
}

// Contains reports membership of addr.
func (s *Set) Contains(addr common.Address) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.index[addr]
	return ok
}

// Addresses returns the current membership in enumeration order.
func (s *Set) Addresses() []common.Address {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]common.Address, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the current membership size.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Capacity returns the maximum membership size.
func (s *Set) Capacity() int {
	return s.capacity
}

func (s *Set) addLocked(ctx context.Context, addr common.Address) error {
	if domain.IsZeroAddress(addr) {
		return app_errors.ErrZeroAddress
	}
	if _, ok := s.index[addr]; ok {
		return app_errors.ErrDuplicateAddress
	}
	if len(s.order) >= s.capacity {
		return app_errors.ErrCapacityExceeded
	}

	s.index[addr] = len(s.order)
	s.order = append(s.order, addr)
	s.sink.Emit(ctx, domain.AddressListed{List: s.kind, Address: addr})
	return nil
}

func (s *Set) removeLocked(ctx context.Context, addr common.Address) {
	i, ok := s.index[addr]
	if !ok {
		return
	}

	last := len(s.order) - 1
	if i != last {
		s.order[i] = s.order[last]
		s.index[s.order[i]] = i
	}
	s.order = s.order[:last]
	delete(s.index, addr)
	s.sink.Emit(ctx, domain.AddressUnlisted{List: s.kind, Address: addr})
}
