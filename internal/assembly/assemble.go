// Package assembly rewrites a syllabus template into a finished document.
//
// Assembly runs in fixed stages over a private copy of the template: titled
// sections, lists, unit blocks, the total-periods line and finally every
// remaining scalar token. Each stage finds its own placeholder paragraphs, so
// only the total depends on an earlier stage.
package assembly

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"git.home.luguber.info/inful/syllabusbuilder/internal/docmodel"
	"git.home.luguber.info/inful/syllabusbuilder/internal/fields"
)

// Assemble parses template, applies values and returns the encoded document.
// The template slice is never modified.
func Assemble(template []byte, values fields.ValueSet) ([]byte, Report, error) {
	doc, report, err := AssembleDocument(template, values)
	if err != nil {
		return nil, report, err
	}
	out, err := doc.Bytes()
	if err != nil {
		return nil, report, err
	}
	return out, report, nil
}

// AssembleDocument is Assemble without the final encoding step.
func AssembleDocument(template []byte, values fields.ValueSet) (*docmodel.Document, Report, error) {
	doc, err := docmodel.Parse(template, docmodel.Options{})
	if err != nil {
		return nil, Report{}, err
	}
	return doc, Apply(doc, values), nil
}

// Apply mutates doc in place.
func Apply(doc *docmodel.Document, values fields.ValueSet) Report {
	e := &engine{doc: doc, values: values, report: newReport()}

	for _, f := range byKind(KindSection) {
		e.run(f, e.composeSection)
	}
	for _, f := range byKind(KindList) {
		e.run(f, e.formatList)
	}
	for _, f := range byKind(KindUnits) {
		e.run(f, e.expandUnits)
	}
	e.resolve(e.totalReplacements())
	e.resolve(e.scalarReplacements())

	e.report.Unresolved = e.unresolved()
	return e.report
}

type engine struct {
	doc    *docmodel.Document
	values fields.ValueSet
	report Report
}

// run applies one composer. A composer that cannot place its paragraphs
// leaves the field unresolved.
func (e *engine) run(f Field, compose func(Field) error) {
	if err := compose(f); err != nil {
		e.report.Fields[f.Token] = StateUntouched
	}
}

// find returns the first paragraph, in document order, whose merged run text
// contains token.
func (e *engine) find(token string) (docmodel.ParagraphRef, bool) {
	for _, ref := range e.doc.ParagraphRefs() {
		if len(e.doc.Runs(ref.Paragraph)) == 0 {
			continue
		}
		if strings.Contains(e.doc.ParagraphText(ref.Paragraph), token) {
			return ref, true
		}
	}
	return docmodel.ParagraphRef{}, false
}

// derive allocates a paragraph carrying src's style and the given indentation.
func (e *engine) derive(src docmodel.NodeID, ind docmodel.Indent) docmodel.NodeID {
	p := e.doc.NewParagraph()
	if style := e.doc.ParagraphStyle(src); style != "" {
		e.doc.SetParagraphStyle(p, style)
	}
	if !ind.IsZero() {
		e.doc.SetIndentation(p, ind)
	}
	return p
}

// titleBefore inserts a bold title paragraph in front of ref. The title takes
// the placeholder's left and first-line indentation but never its hanging
// indent.
func (e *engine) titleBefore(ref docmodel.ParagraphRef, title string) error {
	ind := e.doc.Indentation(ref.Paragraph)
	p := e.derive(ref.Paragraph, docmodel.Indent{Left: ind.Left, FirstLine: ind.FirstLine})
	e.doc.AddRun(p, title, docmodel.RunFormat{Bold: true})
	return e.insert(ref.Container, ref.Paragraph, p)
}

func (e *engine) insert(container, anchor, block docmodel.NodeID) error {
	if err := e.doc.InsertBefore(container, anchor, block); err != nil {
		return fmt.Errorf("place paragraph: %w", err)
	}
	return nil
}

// remove detaches a paragraph. A table cell must keep at least one block, so
// an emptied cell gets a blank paragraph.
func (e *engine) remove(ref docmodel.ParagraphRef) {
	e.doc.Detach(ref.Container, ref.Paragraph)
	if ref.InTable && len(e.doc.Paragraphs(ref.Container))+len(e.doc.Tables(ref.Container)) == 0 {
		e.doc.AppendBlock(ref.Container, e.doc.NewParagraph())
	}
}

var tokenPattern = regexp.MustCompile(`\{[A-Za-z][A-Za-z0-9_]*\}`)

func (e *engine) unresolved() []string {
	var out []string
	for _, ref := range e.doc.ParagraphRefs() {
		for _, tok := range tokenPattern.FindAllString(e.doc.ParagraphText(ref.Paragraph), -1) {
			if !slices.Contains(out, tok) {
				out = append(out, tok)
			}
		}
	}
	slices.Sort(out)
	return out
}
