// Package scheduler runs periodic maintenance jobs.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/syllabusbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/syllabusbuilder/internal/logfields"
)

// Pruner deletes history older than a retention window.
type Pruner interface {
	Prune(ctx context.Context, retention time.Duration) (int64, error)
}

// Scheduler wraps a gocron scheduler.
type Scheduler struct {
	scheduler gocron.Scheduler
	ctx       context.Context
	cancel    context.CancelFunc
}

// New creates a scheduler. Jobs run with a context that is cancelled by Stop.
func New() (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, errors.InternalError("failed to create gocron scheduler").WithCause(err).Build()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{scheduler: s, ctx: ctx, cancel: cancel}, nil
}

// Start begins running scheduled jobs.
func (s *Scheduler) Start() {
	slog.Info("Starting scheduler", "jobs", len(s.scheduler.Jobs()))
	s.scheduler.Start()
}

// Stop cancels running jobs and shuts the scheduler down.
func (s *Scheduler) Stop() error {
	slog.Info("Stopping scheduler")
	s.cancel()
	return s.scheduler.Shutdown()
}

// SchedulePrune runs p.Prune every interval and returns the job ID.
func (s *Scheduler) SchedulePrune(p Pruner, interval, retention time.Duration) (string, error) {
	if interval <= 0 || retention <= 0 {
		return "", errors.ConfigError("prune interval and retention must be positive").
			WithContext("interval", interval.String()).
			WithContext("retention", retention.String()).
			Build()
	}

	job, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(s.runPrune, p, retention),
		gocron.WithName("history-prune"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return "", errors.InternalError("failed to create history prune job").WithCause(err).Build()
	}
	return job.ID().String(), nil
}

func (s *Scheduler) runPrune(p Pruner, retention time.Duration) {
	start := time.Now()
	n, err := p.Prune(s.ctx, retention)
	if err != nil {
		slog.Error("History prune failed", logfields.Error(err))
		return
	}
	slog.Info("History pruned",
		slog.Int64("deleted", n),
		slog.String("retention", retention.String()),
		logfields.Duration(time.Since(start)))
}
