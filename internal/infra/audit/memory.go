package audit

import (
	"context"
	"sync"

	"github.com/taisys-technologies/voc-vault/internal/domain"
)

// MemorySink captures events in order. Meant for tests and local runs.
type MemorySink struct {
	mu     sync.Mutex
	events []domain.Event
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (m *MemorySink) Emit(_ context.Context, e domain.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
}

// Events returns a copy of everything captured so far.
func (m *MemorySink) Events() []domain.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Event, len(m.events))
	copy(out, m.events)
	return out
}

// Named returns the captured events with the given name, oldest first.
func (m *MemorySink) Named(name string) []domain.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Event
	for _, e := range m.events {
		if e.EventName() == name {
			out = append(out, e)
		}
	}
	return out
}

func (m *MemorySink) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = nil
}

const memoryRepositoryCap = 1000

// MemoryEventRepository keeps the most recent event records in memory. It
// backs the trail when the service runs without a database.
type MemoryEventRepository struct {
	mu      sync.Mutex
	records []*domain.EventRecord
}

func NewMemoryEventRepository() *MemoryEventRepository {
	return &MemoryEventRepository{}
}

func (m *MemoryEventRepository) CreateEventRecord(_ context.Context, rec *domain.EventRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.append(rec)
	return nil
}

func (m *MemoryEventRepository) CreateEventRecords(_ context.Context, recs []*domain.EventRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range recs {
		m.append(rec)
	}
	return nil
}

func (m *MemoryEventRepository) append(rec *domain.EventRecord) {
	m.records = append(m.records, rec)
	if len(m.records) > memoryRepositoryCap {
		m.records = m.records[len(m.records)-memoryRepositoryCap:]
	}
}

// ListEventRecords returns up to limit records with the given name, newest
// first.
func (m *MemoryEventRepository) ListEventRecords(_ context.Context, event string, limit int) ([]*domain.EventRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*domain.EventRecord
	for i := len(m.records) - 1; i >= 0 && len(out) < limit; i-- {
		if m.records[i].Event == event {
			out = append(out, m.records[i])
		}
	}
	return out, nil
}
