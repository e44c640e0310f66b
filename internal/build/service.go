package build

import (
	"context"
	"time"

	"git.home.luguber.info/inful/syllabusbuilder/internal/assembly"
	"git.home.luguber.info/inful/syllabusbuilder/internal/eventstore"
	"git.home.luguber.info/inful/syllabusbuilder/internal/fields"
	"git.home.luguber.info/inful/syllabusbuilder/internal/preview"
)

// Service generates syllabus documents.
type Service interface {
	Run(ctx context.Context, req Request) (*Result, error)
}

// Request carries the inputs of one generation.
type Request struct {
	// RequestID identifies the generation in logs, history and events. A
	// random id is assigned when empty.
	RequestID string

	Values fields.ValueSet

	// DryRun assembles the document without recording history, metrics or
	// events.
	DryRun bool
}

// Result is the outcome of a generation.
type Result struct {
	Status    Status
	RequestID string

	Document []byte
	Report   assembly.Report
	Outline  *preview.Outline
	Summary  eventstore.GenerationSummary

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// Status is the outcome of a generation.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// IsSuccess reports whether a document was produced.
func (s Status) IsSuccess() bool { return s == StatusSuccess }
