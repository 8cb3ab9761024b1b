// Package audit turns domain events into observable notifications: structured
// log lines, a persisted trail, or captured slices in tests.
package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/taisys-technologies/voc-vault/internal/domain"
)

// StructuredSink writes every event as one structured log line. Emit never
// blocks on anything slower than the logger's handler.
type StructuredSink struct {
	logger *slog.Logger
}

func NewStructuredSink(logger *slog.Logger) *StructuredSink {
	return &StructuredSink{logger: logger}
}

func (s *StructuredSink) Emit(ctx context.Context, e domain.Event) {
	s.logger.LogAttrs(ctx, slog.LevelInfo, "vault_event",
		slog.String("audit_id", uuid.New().String()),
		slog.String("event", e.EventName()),
		slog.Time("timestamp", time.Now().UTC()),
		slog.Any("payload", e),
	)
}

// RepositorySink persists events through an EventRepository. Persistence
// failures are logged and swallowed: the trail is best-effort and must never
// fail the operation that emitted the event.
type RepositorySink struct {
	repo   domain.EventRepository
	logger *slog.Logger
}

func NewRepositorySink(repo domain.EventRepository, logger *slog.Logger) *RepositorySink {
	return &RepositorySink{repo: repo, logger: logger}
}

func (s *RepositorySink) Emit(ctx context.Context, e domain.Event) {
	payload, err := json.Marshal(e)
	if err != nil {
		s.logger.WarnContext(ctx, "audit payload not serializable",
			"event", e.EventName(), "error", err)
		return
	}

	rec := &domain.EventRecord{
		ID:        uuid.New().String(),
		Event:     e.EventName(),
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
	if err := s.repo.CreateEventRecord(ctx, rec); err != nil {
		s.logger.WarnContext(ctx, "audit record not persisted",
			"event", e.EventName(), "audit_id", rec.ID, "error", err)
	}
}

// MultiSink fans one event out to several sinks in order.
type MultiSink []domain.Sink

func (m MultiSink) Emit(ctx context.Context, e domain.Event) {
	for _, s := range m {
		s.Emit(ctx, e)
	}
}

// NopSink discards everything.
type NopSink struct{}

func (NopSink) Emit(context.Context, domain.Event) {}
