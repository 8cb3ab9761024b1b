package persistence

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	consts "github.com/taisys-technologies/voc-vault/internal/constants"
	"github.com/taisys-technologies/voc-vault/internal/domain"
)

const eventsCapacity = 100

// EventRepository persists the vault event trail in PostgreSQL.
type EventRepository struct {
	*PostgresBase
}

func NewEventRepository(db *pgxpool.Pool, logger *slog.Logger) *EventRepository {
	return &EventRepository{PostgresBase: NewPostgresBase(db, logger)}
}

func (r *EventRepository) CreateEventRecord(ctx context.Context, record *domain.EventRecord) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.DB.Exec(ctx, consts.Queries[consts.StmtInsertEvent],
		record.ID, record.Event, record.Payload, record.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to insert event record %s: %w", record.ID, err)
	}
	return nil
}

func (r *EventRepository) CreateEventRecords(ctx context.Context, records []*domain.EventRecord) error {
	if len(records) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, record := range records {
		batch.Queue(consts.Queries[consts.StmtInsertEvent],
			record.ID, record.Event, record.Payload, record.Timestamp)
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	br := r.DB.SendBatch(ctx, batch)
	defer func() {
		if err := br.Close(); err != nil {
			r.logger.Error("failed to close batch", "error", err)
		}
	}()

	for range records {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to insert event record in batch: %w", err)
		}
	}

	return nil
}

func (r *EventRepository) ListEventRecords(ctx context.Context, event string, limit int) ([]*domain.EventRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.DB.Query(ctx, consts.Queries[consts.StmtListEvents], event, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query event records: %w", err)
	}
	defer rows.Close()

	records := make([]*domain.EventRecord, 0, eventsCapacity)
	for rows.Next() {
		var record domain.EventRecord
		if err := rows.Scan(&record.ID, &record.Event, &record.Payload, &record.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over event records: %w", err)
	}

	return records, nil
}
