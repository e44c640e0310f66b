package httpserver

import (
	"log/slog"
	"net/http"

	"git.home.luguber.info/inful/syllabusbuilder/internal/build"
	"git.home.luguber.info/inful/syllabusbuilder/internal/fields"
	"git.home.luguber.info/inful/syllabusbuilder/internal/server/handlers"
)

// Options wires the server to the rest of the process.
type Options struct {
	Service    build.Service
	Templates  handlers.TemplateStatus
	Normalizer fields.Normalizer

	// Optional: nil disables the history API.
	History handlers.HistoryReader

	// Optional: served at MetricsPath when both are set.
	MetricsHandler http.Handler
	MetricsPath    string

	Logger *slog.Logger
}
