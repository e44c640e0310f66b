package commands

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"git.home.luguber.info/inful/syllabusbuilder/internal/build"
	"git.home.luguber.info/inful/syllabusbuilder/internal/config"
	"git.home.luguber.info/inful/syllabusbuilder/internal/eventstore"
	"git.home.luguber.info/inful/syllabusbuilder/internal/events"
	"git.home.luguber.info/inful/syllabusbuilder/internal/metrics"
	"git.home.luguber.info/inful/syllabusbuilder/internal/scheduler"
	"git.home.luguber.info/inful/syllabusbuilder/internal/server/httpserver"
	"git.home.luguber.info/inful/syllabusbuilder/internal/services"
	"git.home.luguber.info/inful/syllabusbuilder/internal/textnorm"
)

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Address  string `short:"a" help:"Listen address (overrides server.address)"`
	Template string `short:"t" help:"Template DOCX (overrides template.path)"`
}

func (s *ServeCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}
	if s.Address != "" {
		cfg.Server.Address = s.Address
	}
	if s.Template != "" {
		cfg.Template.Path = s.Template
		cfg.Template.URL = ""
	}
	logger := g.configure(cfg, root.Verbose)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	orch, err := NewServer(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if err := orch.StartAll(ctx); err != nil {
		return err
	}

	logger.Info("Serving, waiting for shutdown signal", slog.String("address", cfg.Server.Address))
	<-ctx.Done()
	logger.Info("Shutdown signal received")

	stopCtx, stopCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeoutDuration())
	defer stopCancel()
	return orch.StopAll(stopCtx)
}

// NewServer wires every enabled component into an orchestrator; nothing is
// started yet. Components that hold resources are registered so StopAll
// releases them.
func NewServer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*services.Orchestrator, error) {
	orch := services.NewOrchestrator(logger)
	deps := []string{services.NameTemplates}

	store := newTemplateStore(cfg, logger)
	if err := orch.Register(services.NewTemplateService(store, cfg.Template.Watch)); err != nil {
		return nil, err
	}

	svc := build.NewService(store).WithLogger(logger)
	opts := httpserver.Options{
		Service:    svc,
		Templates:  store,
		Normalizer: textnorm.Normalizer{},
		Logger:     logger,
	}

	if cfg.Metrics.Enabled {
		reg := prom.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		svc.WithRecorder(metrics.NewPrometheusRecorder(reg))
		opts.MetricsHandler = metrics.HTTPHandler(reg)
		opts.MetricsPath = cfg.Metrics.Path
	}

	if cfg.History.Enabled {
		es, err := eventstore.NewSQLiteStore(cfg.History.Path)
		if err != nil {
			return nil, err
		}
		history := eventstore.NewHistory(es, cfg.History.ListLimit)
		sched, err := scheduler.New()
		if err != nil {
			_ = es.Close()
			return nil, err
		}
		hs := services.NewHistoryService(history, sched, es,
			cfg.History.PruneIntervalDuration(), cfg.History.RetentionDuration())
		if err := orch.Register(hs); err != nil {
			return nil, err
		}
		svc.WithHistory(history)
		opts.History = history
		deps = append(deps, services.NameHistory)
	}

	if cfg.Events.Enabled {
		pub, err := events.NewNATSPublisher(ctx, cfg.Events)
		if err != nil {
			return nil, err
		}
		if err := orch.Register(services.NewCloserService(services.NameEvents, pub)); err != nil {
			return nil, err
		}
		svc.WithPublishers(pub)
		deps = append(deps, services.NameEvents)
	}

	srv := httpserver.New(*cfg, opts)
	if err := orch.Register(services.NewHTTPServerService(srv, deps...)); err != nil {
		return nil, err
	}
	return orch, nil
}
