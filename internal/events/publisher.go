// Package events publishes generation events to downstream consumers.
package events

import (
	"context"

	"git.home.luguber.info/inful/syllabusbuilder/internal/eventstore"
)

// Publisher delivers a generation summary somewhere outside the process.
type Publisher interface {
	// Name identifies the sink in logs and metrics.
	Name() string
	Publish(ctx context.Context, summary eventstore.GenerationSummary) error
	Close() error
}

// NoopPublisher drops every event.
type NoopPublisher struct{}

func (NoopPublisher) Name() string { return "noop" }

func (NoopPublisher) Publish(context.Context, eventstore.GenerationSummary) error { return nil }

func (NoopPublisher) Close() error { return nil }
