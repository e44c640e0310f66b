package metrics

import "time"

// Outcome labels a generation request result.
type Outcome string

const (
	OutcomeSuccess         Outcome = "success"
	OutcomeTemplateMissing Outcome = "template_missing"
	OutcomeInvalidTemplate Outcome = "invalid_template"
	OutcomeInvalidInput    Outcome = "invalid_input"
	OutcomeFailed          Outcome = "failed"
)

// Recorder defines observability hooks for document generation.
type Recorder interface {
	// ObserveGeneration records one request end to end.
	ObserveGeneration(d time.Duration, outcome Outcome)
	// IncFieldState counts the final state of one template token.
	IncFieldState(token, state string)
	// ObserveDocumentBytes records the size of a generated document.
	ObserveDocumentBytes(n int)
	// IncUnresolved counts tokens left in an output document.
	IncUnresolved(n int)
	// IncEventPublish counts history/NATS deliveries by sink and success.
	IncEventPublish(sink string, success bool)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveGeneration(time.Duration, Outcome) {}
func (NoopRecorder) IncFieldState(string, string)             {}
func (NoopRecorder) ObserveDocumentBytes(int)                 {}
func (NoopRecorder) IncUnresolved(int)                        {}
func (NoopRecorder) IncEventPublish(string, bool)             {}
