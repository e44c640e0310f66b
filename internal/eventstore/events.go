package eventstore

import (
	"encoding/json"
	"time"

	"git.home.luguber.info/inful/syllabusbuilder/internal/foundation/errors"
)

// TypeSyllabusGenerated is recorded after every successful generation.
const TypeSyllabusGenerated = "syllabus.generated"

// GenerationSummary describes one generated document.
type GenerationSummary struct {
	RequestID    string    `json:"request_id"`
	CourseCode   string    `json:"course_code,omitempty"`
	CourseName   string    `json:"course_name,omitempty"`
	Semester     string    `json:"semester,omitempty"`
	Units        int       `json:"units"`
	TotalPeriods int       `json:"total_periods"`
	Bytes        int       `json:"bytes"`
	Fingerprint  string    `json:"fingerprint,omitempty"`
	Unresolved   []string  `json:"unresolved,omitempty"`
	DurationMS   int64     `json:"duration_ms"`
	GeneratedAt  time.Time `json:"generated_at"`
}

// SyllabusGenerated wraps a GenerationSummary as a storable event.
type SyllabusGenerated struct {
	BaseEvent
	Summary GenerationSummary
}

// NewSyllabusGenerated creates a SyllabusGenerated event.
func NewSyllabusGenerated(summary GenerationSummary) (*SyllabusGenerated, error) {
	if summary.GeneratedAt.IsZero() {
		summary.GeneratedAt = time.Now().UTC()
	}
	payload, err := json.Marshal(summary)
	if err != nil {
		return nil, errors.StorageError("failed to marshal SyllabusGenerated payload").
			WithCause(err).
			WithContext("request_id", summary.RequestID).
			Build()
	}

	return &SyllabusGenerated{
		BaseEvent: BaseEvent{
			EventRequestID: summary.RequestID,
			EventType:      TypeSyllabusGenerated,
			EventTimestamp: summary.GeneratedAt,
			EventPayload:   payload,
			EventMetadata:  map[string]string{"course_code": summary.CourseCode},
		},
		Summary: summary,
	}, nil
}

// DecodeSummary reads the GenerationSummary carried by a stored event.
func DecodeSummary(e Event) (GenerationSummary, error) {
	var s GenerationSummary
	if e.Type() != TypeSyllabusGenerated {
		return s, errors.ValidationError("unexpected event type").
			WithContext("type", e.Type()).
			Build()
	}
	if err := json.Unmarshal(e.Payload(), &s); err != nil {
		return s, errors.StorageError("failed to unmarshal SyllabusGenerated payload").
			WithCause(err).
			WithContext("event_id", e.ID()).
			Build()
	}
	return s, nil
}
