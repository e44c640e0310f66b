// Package eventstore persists generation events in SQLite and keeps a
// newest-first history view of them.
package eventstore

import (
	"context"
	"time"
)

// Store defines the interface for persisting and retrieving events.
type Store interface {
	// Append adds a new event to the store.
	Append(ctx context.Context, requestID, eventType string, payload []byte, metadata map[string]string) error

	// GetByRequestID retrieves all events for one request.
	GetByRequestID(ctx context.Context, requestID string) ([]Event, error)

	// GetRange retrieves events within a time range, oldest first.
	GetRange(ctx context.Context, start, end time.Time) ([]Event, error)

	// Recent retrieves up to limit events of eventType, newest first.
	Recent(ctx context.Context, eventType string, limit int) ([]Event, error)

	// PruneBefore deletes events older than cutoff and reports how many went.
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// Close closes the store and releases resources.
	Close() error
}
