package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/taisys-technologies/voc-vault/internal/domain"
)

// AsyncSinkConfig holds the configuration for the asynchronous sink.
type AsyncSinkConfig struct {
	ChannelBufferSize int
	WorkerCount       int
	BatchSize         int
	BatchTimeout      time.Duration
}

// AsyncRepositorySink persists events without blocking the emitter. Records
// are queued on a channel and written by background workers in batches. A
// full queue drops the record with a warning rather than stalling a transfer.
type AsyncRepositorySink struct {
	logger  *slog.Logger
	repo    domain.EventRepository
	records chan *domain.EventRecord
	wg      sync.WaitGroup
	config  AsyncSinkConfig
}

// NewAsyncRepositorySink creates an asynchronous repository sink.
func NewAsyncRepositorySink(logger *slog.Logger, repo domain.EventRepository, config AsyncSinkConfig) *AsyncRepositorySink {
	if config.ChannelBufferSize <= 0 {
		config.ChannelBufferSize = 1024
	}
	if config.WorkerCount <= 0 {
		config.WorkerCount = 1
	}
	if config.BatchSize <= 0 {
		config.BatchSize = 32
	}
	if config.BatchTimeout <= 0 {
		config.BatchTimeout = time.Second
	}
	return &AsyncRepositorySink{
		logger:  logger,
		repo:    repo,
		records: make(chan *domain.EventRecord, config.ChannelBufferSize),
		config:  config,
	}
}

// Start begins the worker goroutines that drain the queue.
func (s *AsyncRepositorySink) Start() {
	s.wg.Add(s.config.WorkerCount)
	for i := 0; i < s.config.WorkerCount; i++ {
		go s.worker()
	}
}

// Stop shuts the sink down after flushing everything still queued.
func (s *AsyncRepositorySink) Stop() {
	s.logger.Info("shutting down event sink")
	close(s.records)
	s.wg.Wait()
	s.logger.Info("event sink shut down successfully")
}

func (s *AsyncRepositorySink) Emit(ctx context.Context, e domain.Event) {
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

	select {
	case s.records <- rec:
	default:
		s.logger.WarnContext(ctx, "event queue full, record dropped",
			"event", e.EventName(), "audit_id", rec.ID)
	}
}

func (s *AsyncRepositorySink) worker() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.BatchTimeout)
	defer ticker.Stop()

	batch := make([]*domain.EventRecord, 0, s.config.BatchSize)

	for {
		select {
		case rec, ok := <-s.records:
			if !ok {
				s.flush(batch)
				return
			}
			batch = append(batch, rec)
			if len(batch) >= s.config.BatchSize {
				s.flush(batch)
				batch = make([]*domain.EventRecord, 0, s.config.BatchSize)
			}
		case <-ticker.C:
			if len(batch) > 0 {
				s.flush(batch)
				batch = make([]*domain.EventRecord, 0, s.config.BatchSize)
			}
		}
	}
}

func (s *AsyncRepositorySink) flush(batch []*domain.EventRecord) {
	if len(batch) == 0 {
		return
	}
	if err := s.repo.CreateEventRecords(context.Background(), batch); err != nil {
		s.logger.Error("failed to persist event batch", "error", err, "count", len(batch))
	}
}
