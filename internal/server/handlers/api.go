package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"git.home.luguber.info/inful/syllabusbuilder/internal/assembly"
	"git.home.luguber.info/inful/syllabusbuilder/internal/eventstore"
	"git.home.luguber.info/inful/syllabusbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/syllabusbuilder/internal/server/responses"
)

// HistoryReader exposes recorded generations.
type HistoryReader interface {
	List(limit int) []eventstore.GenerationSummary
	Find(ctx context.Context, requestID string) (eventstore.GenerationSummary, bool, error)
}

// APIHandlers contains the JSON API handlers.
type APIHandlers struct {
	history      HistoryReader
	listLimit    int
	errorAdapter *errors.HTTPErrorAdapter
}

// NewAPIHandlers creates API handlers. history may be nil when history is
// disabled; listLimit caps /api/history.
func NewAPIHandlers(history HistoryReader, listLimit int, logger *slog.Logger) *APIHandlers {
	if listLimit <= 0 {
		listLimit = 50
	}
	return &APIHandlers{
		history:      history,
		listLimit:    listLimit,
		errorAdapter: errors.NewHTTPErrorAdapter(logger),
	}
}

// HandleFields lists the template token vocabulary.
func (h *APIHandlers) HandleFields(w http.ResponseWriter, r *http.Request) {
	vocab := assembly.Vocabulary()
	resp := responses.FieldsResponse{Fields: make([]responses.FieldResponse, 0, len(vocab))}
	for _, f := range vocab {
		resp.Fields = append(resp.Fields, responses.FieldResponse{
			Token: f.Token,
			Field: f.Field,
			Title: f.Title,
			Kind:  string(f.Kind),
		})
	}
	respond(h.errorAdapter, w, r, resp)
}

// HandleHistory lists recent generations; ?limit=N narrows the list.
func (h *APIHandlers) HandleHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		h.errorAdapter.WriteErrorResponse(w, r, historyDisabled())
		return
	}

	limit := h.listLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			h.errorAdapter.WriteErrorResponse(w, r, errors.ValidationError("limit must be a positive integer").
				WithContext("limit", raw).
				Build())
			return
		}
		limit = min(n, h.listLimit)
	}

	items := h.history.List(limit)
	respond(h.errorAdapter, w, r, responses.HistoryResponse{Count: len(items), Items: items})
}

// HandleHistoryItem returns one generation by request id.
func (h *APIHandlers) HandleHistoryItem(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		h.errorAdapter.WriteErrorResponse(w, r, historyDisabled())
		return
	}

	id := r.PathValue("id")
	summary, ok, err := h.history.Find(r.Context(), id)
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	if !ok {
		h.errorAdapter.WriteErrorResponse(w, r, errors.NotFoundError("generation not found").
			WithContext("request_id", id).
			Build())
		return
	}
	respond(h.errorAdapter, w, r, summary)
}

func historyDisabled() error {
	return errors.NotFoundError("generation history is disabled").UserAction().Build()
}
