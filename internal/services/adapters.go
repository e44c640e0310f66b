package services

import (
	"context"
	"sync/atomic"
	"time"

	"git.home.luguber.info/inful/syllabusbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/syllabusbuilder/internal/scheduler"
)

// Service names used by the serve command.
const (
	NameTemplates = "templates"
	NameHistory   = "history"
	NameEvents    = "events"
	NameHTTP      = "http"
)

// HTTPServer is the part of httpserver.Server the adapter needs.
type HTTPServer interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// HTTPServerService adapts an HTTP server to ManagedService.
type HTTPServerService struct {
	server  HTTPServer
	deps    []string
	running atomic.Bool
}

// NewHTTPServerService wraps server; deps are started before it.
func NewHTTPServerService(server HTTPServer, deps ...string) *HTTPServerService {
	return &HTTPServerService{server: server, deps: deps}
}

func (h *HTTPServerService) Name() string           { return NameHTTP }
func (h *HTTPServerService) Dependencies() []string { return h.deps }

func (h *HTTPServerService) Start(ctx context.Context) error {
	if err := h.server.Start(ctx); err != nil {
		return err
	}
	h.running.Store(true)
	return nil
}

func (h *HTTPServerService) Stop(ctx context.Context) error {
	h.running.Store(false)
	return h.server.Stop(ctx)
}

func (h *HTTPServerService) Health() HealthStatus {
	if h.running.Load() {
		return Healthy()
	}
	return Unhealthy("server not running")
}

// TemplateWatcher is the part of templates.Store the adapter needs.
type TemplateWatcher interface {
	Watch(ctx context.Context) error
	Close() error
	Get(ctx context.Context) ([]byte, error)
	LoadedAt() time.Time
}

// TemplateService optionally preloads the template and watches it for
// changes. A template that is missing at startup is not fatal: requests
// report it until the file appears.
type TemplateService struct {
	store   TemplateWatcher
	watch   bool
	cancel  context.CancelFunc
	lastErr atomic.Value // error
}

// NewTemplateService wraps store.
func NewTemplateService(store TemplateWatcher, watch bool) *TemplateService {
	return &TemplateService{store: store, watch: watch}
}

func (t *TemplateService) Name() string           { return NameTemplates }
func (t *TemplateService) Dependencies() []string { return nil }

func (t *TemplateService) Start(ctx context.Context) error {
	if _, err := t.store.Get(ctx); err != nil {
		t.lastErr.Store(errHolder{err})
	}
	if !t.watch {
		return nil
	}
	// The watch loop outlives the start timeout.
	watchCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	if err := t.store.Watch(watchCtx); err != nil {
		cancel()
		return err
	}
	t.cancel = cancel
	return nil
}

func (t *TemplateService) Stop(context.Context) error {
	if t.cancel != nil {
		t.cancel()
	}
	return t.store.Close()
}

func (t *TemplateService) Health() HealthStatus {
	if h, ok := t.lastErr.Load().(errHolder); ok && t.store.LoadedAt().IsZero() {
		return Unhealthy(h.err.Error())
	}
	return Healthy()
}

type errHolder struct{ err error }

// HistoryRebuilder is the part of eventstore.History the adapter needs.
type HistoryRebuilder interface {
	Rebuild(ctx context.Context) error
	Prune(ctx context.Context, retention time.Duration) (int64, error)
}

// PruneScheduler is the part of scheduler.Scheduler the adapter needs.
type PruneScheduler interface {
	SchedulePrune(p scheduler.Pruner, interval, retention time.Duration) (string, error)
	Start()
	Stop() error
}

// Closer releases a resource on Stop.
type Closer interface {
	Close() error
}

// HistoryService loads the history view, schedules pruning and closes the
// backing store on shutdown.
type HistoryService struct {
	history   HistoryRebuilder
	scheduler PruneScheduler
	store     Closer
	interval  time.Duration
	retention time.Duration
	running   atomic.Bool
}

// NewHistoryService wires the history view to its scheduler and store.
func NewHistoryService(history HistoryRebuilder, sched PruneScheduler, store Closer, interval, retention time.Duration) *HistoryService {
	return &HistoryService{
		history:   history,
		scheduler: sched,
		store:     store,
		interval:  interval,
		retention: retention,
	}
}

func (h *HistoryService) Name() string           { return NameHistory }
func (h *HistoryService) Dependencies() []string { return nil }

func (h *HistoryService) Start(ctx context.Context) error {
	if err := h.history.Rebuild(ctx); err != nil {
		return err
	}
	if _, err := h.scheduler.SchedulePrune(h.history, h.interval, h.retention); err != nil {
		return err
	}
	h.scheduler.Start()
	h.running.Store(true)
	return nil
}

func (h *HistoryService) Stop(context.Context) error {
	h.running.Store(false)
	var firstErr error
	if err := h.scheduler.Stop(); err != nil {
		firstErr = errors.InternalError("failed to stop scheduler").WithCause(err).Build()
	}
	if err := h.store.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

func (h *HistoryService) Health() HealthStatus {
	if h.running.Load() {
		return Healthy()
	}
	return Unhealthy("history not running")
}

// CloserService owns a resource that only needs closing, such as an event
// publisher.
type CloserService struct {
	name   string
	closer Closer
}

// NewCloserService wraps c under name.
func NewCloserService(name string, c Closer) *CloserService {
	return &CloserService{name: name, closer: c}
}

func (c *CloserService) Name() string                { return c.name }
func (c *CloserService) Dependencies() []string      { return nil }
func (c *CloserService) Start(context.Context) error { return nil }
func (c *CloserService) Stop(context.Context) error  { return c.closer.Close() }
func (c *CloserService) Health() HealthStatus        { return Healthy() }
