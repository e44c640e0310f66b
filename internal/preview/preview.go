// Package preview renders assembled documents as Markdown and sanitized HTML.
package preview

import (
	"bytes"
	"maps"
	"strings"

	"github.com/inful/mdfp"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"git.home.luguber.info/inful/syllabusbuilder/internal/docmodel"
	"git.home.luguber.info/inful/syllabusbuilder/internal/foundation/errors"
)

// Fields excluded from the fingerprint.
const (
	fieldGenerated = "generated"
	fieldRequestID = "request_id"
)

// Outline is a Markdown rendition of a document plus its front matter.
type Outline struct {
	Fields      map[string]any
	Body        string
	Fingerprint string
}

// New builds the outline of doc. fields become the front matter.
func New(doc *docmodel.Document, fields map[string]any) (*Outline, error) {
	body := Body(doc.Outline())
	fp, err := Fingerprint(fields, body)
	if err != nil {
		return nil, err
	}
	return &Outline{Fields: maps.Clone(fields), Body: body, Fingerprint: fp}, nil
}

// FromBytes parses DOCX bytes and builds their outline.
func FromBytes(content []byte, fields map[string]any) (*Outline, error) {
	doc, err := docmodel.Parse(content, docmodel.Options{})
	if err != nil {
		return nil, err
	}
	return New(doc, fields)
}

// Fingerprint hashes the front matter fields and body with mdfp. Volatile
// fields (fingerprint, generated, request_id) are ignored.
func Fingerprint(fields map[string]any, body string) (string, error) {
	forHash := make(map[string]any, len(fields))
	for k, v := range fields {
		switch k {
		case mdfp.FingerprintField, fieldGenerated, fieldRequestID:
			continue
		}
		forHash[k] = v
	}

	serialized, err := serializeYAML(forHash)
	if err != nil {
		return "", errors.InternalError("failed to serialize front matter").WithCause(err).Build()
	}
	return mdfp.CalculateFingerprintFromParts(strings.TrimSuffix(string(serialized), "\n"), body), nil
}

// Markdown returns the outline with a YAML front matter carrying the fingerprint.
func (o *Outline) Markdown() ([]byte, error) {
	fields := maps.Clone(o.Fields)
	if fields == nil {
		fields = map[string]any{}
	}
	fields[mdfp.FingerprintField] = o.Fingerprint

	fm, err := serializeYAML(fields)
	if err != nil {
		return nil, errors.InternalError("failed to serialize front matter").WithCause(err).Build()
	}
	return joinFrontMatter(fm, []byte(o.Body)), nil
}

// HTML renders the body as sanitized HTML.
func (o *Outline) HTML() (string, error) {
	return RenderHTML([]byte(o.Body))
}

var (
	renderer = goldmark.New(goldmark.WithExtensions(extension.Table, extension.Strikethrough))
	policy   = bluemonday.UGCPolicy()
)

// RenderHTML converts Markdown to HTML and strips anything unsafe.
func RenderHTML(markdown []byte) (string, error) {
	var buf bytes.Buffer
	if err := renderer.Convert(markdown, &buf); err != nil {
		return "", errors.InternalError("failed to render markdown").WithCause(err).Build()
	}
	return policy.Sanitize(buf.String()), nil
}
