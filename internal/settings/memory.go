package settings

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// MemoryBackend keeps settings in process memory. Used by tests and
// single-node runs without a database.
type MemoryBackend struct {
	mu     sync.RWMutex
	values map[common.Address]map[string]*uint256.Int
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{values: make(map[common.Address]map[string]*uint256.Int)}
}

func (m *MemoryBackend) Get(_ context.Context, owner common.Address, key string) (*uint256.Int, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.values[owner][key]
	if !ok {
		return nil, false, nil
	}
	return value.Clone(), true, nil
}

func (m *MemoryBackend) Put(_ context.Context, owner common.Address, key string, value *uint256.Int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.values[owner] == nil {
		m.values[owner] = make(map[string]*uint256.Int)
	}
	m.values[owner][key] = value.Clone()
	return nil
}

func (m *MemoryBackend) Delete(_ context.Context, owner common.Address, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.values[owner][key]; !ok {
		return false, nil
	}
	delete(m.values[owner], key)
	return true, nil
}

func (m *MemoryBackend) List(_ context.Context, owner common.Address) (map[string]*uint256.Int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]*uint256.Int, len(m.values[owner]))
	for key, value := range m.values[owner] {
		out[key] = value.Clone()
	}
	return out, nil
}
