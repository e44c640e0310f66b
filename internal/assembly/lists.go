package assembly

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/syllabusbuilder/internal/docmodel"
)

// formatList expands a repeated field. The placeholder paragraph is emptied
// and stays behind as the anchor every generated paragraph is inserted before.
func (e *engine) formatList(f Field) error {
	ref, ok := e.find(f.Token)
	if !ok {
		return nil
	}
	items := e.values.List(f.Field)
	if len(items) == 0 {
		e.remove(ref)
		e.report.mark(f.Token, StateDeleted)
		return nil
	}

	if err := e.titleBefore(ref, f.Title); err != nil {
		return err
	}
	style := e.doc.ParagraphStyle(ref.Paragraph)
	for i, item := range items {
		p := e.doc.NewParagraph()
		if style != "" {
			e.doc.SetParagraphStyle(p, style)
		}
		e.doc.SetIndentation(p, f.Indent)
		e.doc.AddRun(p, fmt.Sprintf(f.Label, i+1), docmodel.RunFormat{Bold: true})
		e.doc.AddRun(p, strings.TrimSpace(item), docmodel.RunFormat{})
		if err := e.insert(ref.Container, ref.Paragraph, p); err != nil {
			return err
		}
	}
	e.doc.SetParagraphText(ref.Paragraph, "")
	e.report.mark(f.Token, StateExpanded)
	return nil
}
