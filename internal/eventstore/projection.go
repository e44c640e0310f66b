package eventstore

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"git.home.luguber.info/inful/syllabusbuilder/internal/logfields"
)

// History keeps the most recent generation summaries in memory, newest
// first, backed by a Store.
type History struct {
	mu      sync.RWMutex
	store   Store
	recent  []GenerationSummary
	maxSize int
}

// NewHistory creates a history view holding at most maxSize entries.
func NewHistory(store Store, maxSize int) *History {
	if maxSize <= 0 {
		maxSize = 100
	}
	return &History{store: store, maxSize: maxSize}
}

// Rebuild reloads the view from the store. Undecodable events are skipped.
func (h *History) Rebuild(ctx context.Context) error {
	events, err := h.store.Recent(ctx, TypeSyllabusGenerated, h.maxSize)
	if err != nil {
		return err
	}
	recent := make([]GenerationSummary, 0, len(events))
	for _, e := range events {
		s, err := DecodeSummary(e)
		if err != nil {
			slog.Warn("Skipping undecodable history event", "event_id", e.ID(), logfields.Error(err))
			continue
		}
		recent = append(recent, s)
	}

	h.mu.Lock()
	h.recent = recent
	h.mu.Unlock()
	return nil
}

// Record persists a summary and adds it to the view.
func (h *History) Record(ctx context.Context, summary GenerationSummary) error {
	event, err := NewSyllabusGenerated(summary)
	if err != nil {
		return err
	}
	if err := h.store.Append(ctx, event.RequestID(), event.Type(), event.Payload(), event.Metadata()); err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.recent = slices.Insert(h.recent, 0, event.Summary)
	if len(h.recent) > h.maxSize {
		h.recent = h.recent[:h.maxSize]
	}
	return nil
}

// List returns up to limit summaries, newest first. limit <= 0 returns all.
func (h *History) List(limit int) []GenerationSummary {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if limit <= 0 || limit > len(h.recent) {
		limit = len(h.recent)
	}
	return slices.Clone(h.recent[:limit])
}

// Find returns the summary recorded for requestID.
func (h *History) Find(ctx context.Context, requestID string) (GenerationSummary, bool, error) {
	events, err := h.store.GetByRequestID(ctx, requestID)
	if err != nil {
		return GenerationSummary{}, false, err
	}
	for _, e := range events {
		if e.Type() != TypeSyllabusGenerated {
			continue
		}
		s, err := DecodeSummary(e)
		if err != nil {
			return GenerationSummary{}, false, err
		}
		return s, true, nil
	}
	return GenerationSummary{}, false, nil
}

// Prune drops events older than retention and refreshes the view.
func (h *History) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	n, err := h.store.PruneBefore(ctx, time.Now().Add(-retention))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		if err := h.Rebuild(ctx); err != nil {
			return n, err
		}
	}
	return n, nil
}
