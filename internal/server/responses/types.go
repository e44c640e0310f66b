// Package responses defines API response types used by the HTTP handlers.
package responses

import (
	"time"

	"git.home.luguber.info/inful/syllabusbuilder/internal/assembly"
	"git.home.luguber.info/inful/syllabusbuilder/internal/eventstore"
)

// HealthResponse represents the health check API response.
type HealthResponse struct {
	Status         string    `json:"status"`
	Timestamp      time.Time `json:"timestamp"`
	Version        string    `json:"version"`
	Uptime         float64   `json:"uptime"`
	Template       string    `json:"template"`
	TemplateLoaded bool      `json:"template_loaded"`
}

// FieldResponse describes one template token.
type FieldResponse struct {
	Token string `json:"token"`
	Field string `json:"field,omitempty"`
	Title string `json:"title,omitempty"`
	Kind  string `json:"kind"`
}

// FieldsResponse lists the token vocabulary.
type FieldsResponse struct {
	Fields []FieldResponse `json:"fields"`
}

// HistoryResponse lists recent generations, newest first.
type HistoryResponse struct {
	Count int                            `json:"count"`
	Items []eventstore.GenerationSummary `json:"items"`
}

// PreviewResponse is the JSON rendition of a dry-run generation.
type PreviewResponse struct {
	RequestID   string          `json:"request_id"`
	Fingerprint string          `json:"fingerprint"`
	Markdown    string          `json:"markdown"`
	HTML        string          `json:"html"`
	Report      assembly.Report `json:"report"`
}
