package build

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/syllabusbuilder/internal/assembly"
	"git.home.luguber.info/inful/syllabusbuilder/internal/eventstore"
	"git.home.luguber.info/inful/syllabusbuilder/internal/events"
	"git.home.luguber.info/inful/syllabusbuilder/internal/fields"
	"git.home.luguber.info/inful/syllabusbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/syllabusbuilder/internal/logfields"
	"git.home.luguber.info/inful/syllabusbuilder/internal/metrics"
	"git.home.luguber.info/inful/syllabusbuilder/internal/observability"
	"git.home.luguber.info/inful/syllabusbuilder/internal/preview"
)

// TemplateSource hands out the template bytes. Callers must not modify a
// returned slice.
type TemplateSource interface {
	Get(ctx context.Context) ([]byte, error)
	Source() string
}

// HistoryRecorder persists generation summaries.
type HistoryRecorder interface {
	Record(ctx context.Context, summary eventstore.GenerationSummary) error
}

const historySink = "history"

// DefaultService is the standard implementation of Service.
type DefaultService struct {
	templates  TemplateSource
	history    HistoryRecorder
	publishers []events.Publisher
	recorder   metrics.Recorder
	logger     *slog.Logger
	now        func() time.Time
}

// NewService creates a service reading templates from src.
func NewService(src TemplateSource) *DefaultService {
	return &DefaultService{
		templates: src,
		recorder:  metrics.NoopRecorder{},
		logger:    slog.Default(),
		now:       time.Now,
	}
}

// WithHistory records every successful generation.
func (s *DefaultService) WithHistory(h HistoryRecorder) *DefaultService {
	s.history = h
	return s
}

// WithPublishers publishes every successful generation to each publisher.
func (s *DefaultService) WithPublishers(p ...events.Publisher) *DefaultService {
	s.publishers = append(s.publishers, p...)
	return s
}

// WithRecorder sets the metrics recorder.
func (s *DefaultService) WithRecorder(r metrics.Recorder) *DefaultService {
	if r != nil {
		s.recorder = r
	}
	return s
}

// WithLogger sets the logger.
func (s *DefaultService) WithLogger(l *slog.Logger) *DefaultService {
	if l != nil {
		s.logger = l
	}
	return s
}

// Run executes the generation pipeline.
func (s *DefaultService) Run(ctx context.Context, req Request) (*Result, error) {
	start := s.now()
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	ctx = observability.WithRequestID(ctx, req.RequestID)

	result := &Result{Status: StatusFailed, RequestID: req.RequestID, StartTime: start}
	fail := func(err error) (*Result, error) {
		result.EndTime = s.now()
		result.Duration = result.EndTime.Sub(start)
		if !req.DryRun {
			s.recorder.ObserveGeneration(result.Duration, OutcomeFor(err))
		}
		observability.Log(ctx, s.logger, slog.LevelWarn, "Syllabus generation failed", logfields.Error(err))
		return result, err
	}

	tpl, err := s.templates.Get(observability.WithStage(ctx, "template"))
	if err != nil {
		return fail(err)
	}

	doc, report, err := assembly.AssembleDocument(tpl, req.Values)
	if err != nil {
		return fail(err)
	}
	out, err := doc.Bytes()
	if err != nil {
		return fail(err)
	}

	outline, err := preview.New(doc, frontMatter(req.Values))
	if err != nil {
		return fail(err)
	}

	result.Status = StatusSuccess
	result.Document = out
	result.Report = report
	result.Outline = outline
	result.EndTime = s.now()
	result.Duration = result.EndTime.Sub(start)
	result.Summary = eventstore.GenerationSummary{
		RequestID:    req.RequestID,
		CourseCode:   req.Values.Scalar(fields.CourseCode),
		CourseName:   req.Values.Scalar(fields.CourseName),
		Semester:     req.Values.Scalar(fields.Semester),
		Units:        len(req.Values.Units()),
		TotalPeriods: req.Values.TotalPeriods(),
		Bytes:        len(out),
		Fingerprint:  outline.Fingerprint,
		Unresolved:   report.Unresolved,
		DurationMS:   result.Duration.Milliseconds(),
		GeneratedAt:  result.EndTime.UTC(),
	}

	if len(report.Unresolved) > 0 {
		observability.Log(ctx, s.logger, slog.LevelDebug, "Template tokens left unresolved",
			slog.Any("tokens", report.Unresolved))
	}

	if req.DryRun {
		return result, nil
	}

	s.observe(result)
	s.deliver(ctx, result.Summary)

	observability.Log(ctx, s.logger, slog.LevelInfo, "Syllabus generated",
		logfields.CourseCode(result.Summary.CourseCode),
		logfields.Units(result.Summary.Units),
		logfields.Bytes(len(out)),
		logfields.Duration(result.Duration))
	return result, nil
}

func (s *DefaultService) observe(r *Result) {
	s.recorder.ObserveGeneration(r.Duration, metrics.OutcomeSuccess)
	s.recorder.ObserveDocumentBytes(len(r.Document))
	for token, state := range r.Report.Fields {
		s.recorder.IncFieldState(token, string(state))
	}
	if n := len(r.Report.Unresolved); n > 0 {
		s.recorder.IncUnresolved(n)
	}
}

// deliver records history and publishes events. Failures are logged only.
func (s *DefaultService) deliver(ctx context.Context, summary eventstore.GenerationSummary) {
	if s.history != nil {
		err := s.history.Record(ctx, summary)
		s.recorder.IncEventPublish(historySink, err == nil)
		if err != nil {
			observability.Log(ctx, s.logger, slog.LevelWarn, "Failed to record generation history", logfields.Error(err))
		}
	}
	for _, p := range s.publishers {
		err := p.Publish(ctx, summary)
		s.recorder.IncEventPublish(p.Name(), err == nil)
		if err != nil {
			observability.Log(ctx, s.logger, slog.LevelWarn, "Failed to publish generation event",
				slog.String("sink", p.Name()), logfields.Error(err))
		}
	}
}

// frontMatter describes a generation in the outline's front matter.
func frontMatter(v fields.ValueSet) map[string]any {
	fm := map[string]any{}
	for key, name := range map[string]string{
		"title":       fields.CourseName,
		"course_code": fields.CourseCode,
		"semester":    fields.Semester,
	} {
		if s := v.Scalar(name); s != "" {
			fm[key] = s
		}
	}
	if units := v.Units(); len(units) > 0 {
		fm["units"] = len(units)
		fm["total_periods"] = v.TotalPeriods()
	}
	return fm
}

// OutcomeFor classifies a generation error for metrics.
func OutcomeFor(err error) metrics.Outcome {
	switch errors.GetCategory(err) {
	case errors.CategoryNotFound:
		return metrics.OutcomeTemplateMissing
	case errors.CategoryTemplate, errors.CategoryDocument:
		return metrics.OutcomeInvalidTemplate
	case errors.CategoryValidation, errors.CategoryConfig:
		return metrics.OutcomeInvalidInput
	default:
		return metrics.OutcomeFailed
	}
}
