// Package tokenmover provides a scriptable TokenMover for tests and local
// runs without a chain connection.
package tokenmover

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Call records one Transfer invocation.
type Call struct {
	Asset       common.Address
	Destination common.Address
	Amount      *uint256.Int
}

// Mock implements domain.TokenMover. By default every transfer succeeds;
// FailWith scripts failures and SetHook injects behavior that runs inside
// Transfer, which is how tests simulate reentrant callbacks.
type Mock struct {
	mu    sync.Mutex
	calls []Call
	err   error
	hook  func(ctx context.Context, asset, destination common.Address, amount *uint256.Int) error
}

func NewMock() *Mock {
	return &Mock{}
}

// FailWith makes subsequent transfers fail with err. Passing nil restores
// success.
func (m *Mock) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// SetHook installs a callback invoked during Transfer, after the call is
// recorded. A non-nil hook error becomes the transfer's result.
func (m *Mock) SetHook(hook func(ctx context.Context, asset, destination common.Address, amount *uint256.Int) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hook = hook
}

func (m *Mock) Transfer(ctx context.Context, asset, destination common.Address, amount *uint256.Int) error {
	m.mu.Lock()
	m.calls = append(m.calls, Call{Asset: asset, Destination: destination, Amount: amount.Clone()})
	err := m.err
	hook := m.hook
	m.mu.Unlock()

	// The hook runs without the mock's lock held so it may call back into
	// the code under test.
	if hook != nil {
		if herr := hook(ctx, asset, destination, amount); herr != nil {
			return herr
		}
	}
	return err
}

// Calls returns a copy of every recorded invocation.
func (m *Mock) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}
