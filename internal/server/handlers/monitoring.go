package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"git.home.luguber.info/inful/syllabusbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/syllabusbuilder/internal/server/responses"
	"git.home.luguber.info/inful/syllabusbuilder/internal/version"
)

// TemplateStatus reports where the template comes from and whether it is cached.
type TemplateStatus interface {
	Source() string
	LoadedAt() time.Time
}

// MonitoringHandlers contains monitoring-related HTTP handlers.
type MonitoringHandlers struct {
	templates    TemplateStatus
	startTime    time.Time
	errorAdapter *errors.HTTPErrorAdapter
}

// NewMonitoringHandlers creates a new monitoring handlers instance.
func NewMonitoringHandlers(templates TemplateStatus, logger *slog.Logger) *MonitoringHandlers {
	return &MonitoringHandlers{
		templates:    templates,
		startTime:    time.Now(),
		errorAdapter: errors.NewHTTPErrorAdapter(logger),
	}
}

// HandleHealthCheck handles the health check endpoint.
func (h *MonitoringHandlers) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	health := &responses.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   version.Version,
		Uptime:    time.Since(h.startTime).Seconds(),
	}
	if h.templates != nil {
		health.Template = h.templates.Source()
		health.TemplateLoaded = !h.templates.LoadedAt().IsZero()
	}
	respond(h.errorAdapter, w, r, health)
}
