package handlers

import (
	stderrors "errors"
	"html/template"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/syllabusbuilder/internal/build"
	"git.home.luguber.info/inful/syllabusbuilder/internal/docmodel"
	"git.home.luguber.info/inful/syllabusbuilder/internal/fields"
	"git.home.luguber.info/inful/syllabusbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/syllabusbuilder/internal/logfields"
	"git.home.luguber.info/inful/syllabusbuilder/internal/observability"
	"git.home.luguber.info/inful/syllabusbuilder/internal/server/responses"
)

// FingerprintHeader carries the outline fingerprint of a generated document.
const FingerprintHeader = "X-Syllabus-Fingerprint"

// GenerateOptions configures GenerateHandlers.
type GenerateOptions struct {
	// Filename is the download name of generated documents.
	Filename     string
	MaxFormBytes int64
	Normalizer   fields.Normalizer
	Logger       *slog.Logger
}

// GenerateHandlers turns form submissions into documents.
type GenerateHandlers struct {
	service      build.Service
	opts         GenerateOptions
	errorAdapter *errors.HTTPErrorAdapter
}

// NewGenerateHandlers creates generation handlers backed by svc.
func NewGenerateHandlers(svc build.Service, opts GenerateOptions) *GenerateHandlers {
	if opts.Filename == "" {
		opts.Filename = "Course_Syllabus.docx"
	}
	if opts.MaxFormBytes <= 0 {
		opts.MaxFormBytes = 1 << 20
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &GenerateHandlers{
		service:      svc,
		opts:         opts,
		errorAdapter: errors.NewHTTPErrorAdapter(opts.Logger),
	}
}

// HandleGenerate assembles the submitted fields and returns the document as
// a download.
func (h *GenerateHandlers) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	values, err := h.parseForm(w, r)
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}

	res, err := h.service.Run(r.Context(), build.Request{
		RequestID: observability.RequestID(r.Context()),
		Values:    values,
	})
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}

	w.Header().Set("Content-Type", docmodel.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": h.opts.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Document)))
	w.Header().Set(FingerprintHeader, res.Summary.Fingerprint)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(res.Document); err != nil {
		observability.Log(r.Context(), h.opts.Logger, slog.LevelWarn, "failed writing document", logfields.Error(err))
	}
}

var previewPage = template.Must(template.New("preview").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
{{.Body}}
</body>
</html>
`))

// HandlePreview assembles the submitted fields without side effects and
// renders the outline as JSON (default), ?format=markdown or ?format=html.
func (h *GenerateHandlers) HandlePreview(w http.ResponseWriter, r *http.Request) {
	values, err := h.parseForm(w, r)
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}

	res, err := h.service.Run(r.Context(), build.Request{
		RequestID: observability.RequestID(r.Context()),
		Values:    values,
		DryRun:    true,
	})
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}

	md, err := res.Outline.Markdown()
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	html, err := res.Outline.HTML()
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}

	switch format := r.URL.Query().Get("format"); format {
	case "markdown", "md":
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		_, _ = w.Write(md)
	case "html":
		title := values.Scalar(fields.CourseName)
		if title == "" {
			title = "Syllabus preview"
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		// html was sanitized by the preview renderer.
		if err := previewPage.Execute(w, map[string]any{"Title": title, "Body": template.HTML(html)}); err != nil { //nolint:gosec
			observability.Log(r.Context(), h.opts.Logger, slog.LevelWarn, "failed rendering preview page", logfields.Error(err))
		}
	case "", "json":
		respond(h.errorAdapter, w, r, responses.PreviewResponse{
			RequestID:   res.RequestID,
			Fingerprint: res.Outline.Fingerprint,
			Markdown:    string(md),
			HTML:        html,
			Report:      res.Report,
		})
	default:
		h.errorAdapter.WriteErrorResponse(w, r, errors.ValidationError("unsupported preview format").
			WithContext("format", format).
			Build())
	}
}

// parseForm reads a urlencoded or multipart body, bounded by MaxFormBytes.
func (h *GenerateHandlers) parseForm(w http.ResponseWriter, r *http.Request) (fields.ValueSet, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxFormBytes)

	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		err = r.ParseMultipartForm(h.opts.MaxFormBytes)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return fields.ValueSet{}, errors.ValidationError("form submission too large").
				WithContext("limit", tooLarge.Limit).
				Build()
		}
		return fields.ValueSet{}, errors.ValidationError("invalid form submission").WithCause(err).Build()
	}
	return fields.Collect(r.PostForm, h.opts.Normalizer), nil
}
