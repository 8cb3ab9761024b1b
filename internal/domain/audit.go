package domain

import (
	"context"
	"encoding/json"
	"time"
)

// EventRecord is one emitted vault event with its capture metadata, in the
// shape persisted by an EventRepository. Payload holds the event's fields as
// JSON so the trail survives event-type evolution.
type EventRecord struct {
	ID        string
	Event     string
	Payload   json.RawMessage
	Timestamp time.Time
}

type EventRepository interface {
	CreateEventRecord(ctx context.Context, rec *EventRecord) error
	CreateEventRecords(ctx context.Context, recs []*EventRecord) error
	ListEventRecords(ctx context.Context, event string, limit int) ([]*EventRecord, error)
}
