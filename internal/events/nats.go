package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"git.home.luguber.info/inful/syllabusbuilder/internal/config"
	"git.home.luguber.info/inful/syllabusbuilder/internal/eventstore"
	"git.home.luguber.info/inful/syllabusbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/syllabusbuilder/internal/logfields"
)

const publishTimeout = 5 * time.Second

// Message is the JSON body published for every generated syllabus.
type Message struct {
	Type string `json:"type"`
	eventstore.GenerationSummary
}

// NATSPublisher publishes generation events to a NATS subject, through
// JetStream when a stream is configured.
type NATSPublisher struct {
	conn    *nats.Conn
	js      jetstream.JetStream
	subject string
	stream  string
}

// NewNATSPublisher connects to the configured NATS server.
func NewNATSPublisher(ctx context.Context, cfg config.EventsConfig) (*NATSPublisher, error) {
	if !cfg.Enabled {
		return nil, errors.ConfigError("events are disabled").Build()
	}

	conn, err := nats.Connect(cfg.URL, nats.Name("syllabusbuilder"))
	if err != nil {
		return nil, errors.EventsError("failed to connect to NATS").
			WithCause(err).
			WithContext("url", cfg.URL).
			Retryable().
			Build()
	}

	p := &NATSPublisher{conn: conn, subject: cfg.Subject, stream: cfg.Stream}
	if cfg.Stream != "" {
		if err := p.initStream(ctx); err != nil {
			conn.Close()
			return nil, err
		}
	}

	slog.Info("NATS publisher initialized",
		"url", cfg.URL,
		"subject", cfg.Subject,
		"stream", cfg.Stream)
	return p, nil
}

// initStream creates or updates the JetStream stream capturing the subject.
func (p *NATSPublisher) initStream(ctx context.Context) error {
	js, err := jetstream.New(p.conn)
	if err != nil {
		return errors.EventsError("failed to create JetStream context").WithCause(err).Build()
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:        p.stream,
		Description: "Generated syllabus events",
		Subjects:    []string{p.subject},
		MaxAge:      30 * 24 * time.Hour,
	})
	if err != nil {
		return errors.EventsError("failed to create JetStream stream").
			WithCause(err).
			WithContext("stream", p.stream).
			Build()
	}
	p.js = js
	return nil
}

func (p *NATSPublisher) Name() string { return "nats" }

// Publish sends the summary as JSON on the configured subject.
func (p *NATSPublisher) Publish(ctx context.Context, summary eventstore.GenerationSummary) error {
	data, err := Encode(summary)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	msg := nats.NewMsg(p.subject)
	msg.Data = data
	msg.Header.Set(nats.MsgIdHdr, summary.RequestID)

	if p.js != nil {
		_, err = p.js.PublishMsg(ctx, msg)
	} else {
		err = p.conn.PublishMsg(msg)
		if err == nil {
			err = p.conn.FlushWithContext(ctx)
		}
	}
	if err != nil {
		return errors.EventsError("failed to publish generation event").
			WithCause(err).
			WithContext("subject", p.subject).
			Retryable().
			Build()
	}

	slog.Debug("Published generation event",
		logfields.RequestID(summary.RequestID),
		logfields.CourseCode(summary.CourseCode),
		"subject", p.subject)
	return nil
}

// Close drains and closes the NATS connection.
func (p *NATSPublisher) Close() error {
	if p.conn == nil {
		return nil
	}
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
		return err
	}
	return nil
}

// Encode renders the wire form of a generation event.
func Encode(summary eventstore.GenerationSummary) ([]byte, error) {
	data, err := json.Marshal(Message{Type: eventstore.TypeSyllabusGenerated, GenerationSummary: summary})
	if err != nil {
		return nil, errors.EventsError("failed to marshal generation event").WithCause(err).Build()
	}
	return data, nil
}
