package assembly

import (
	"strings"

	"git.home.luguber.info/inful/syllabusbuilder/internal/docmodel"
)

// composeSection handles a titled scalar field. Only the first paragraph
// carrying the token is processed.
func (e *engine) composeSection(f Field) error {
	ref, ok := e.find(f.Token)
	if !ok {
		return nil
	}
	value := strings.TrimSpace(e.values.Scalar(f.Field))
	if value == "" {
		e.remove(ref)
		e.report.mark(f.Token, StateDeleted)
		return nil
	}

	if err := e.titleBefore(ref, f.Title); err != nil {
		return err
	}
	e.replaceInParagraph(ref.Paragraph, f.Token, value)
	e.report.mark(f.Token, StateResolved)
	return nil
}

// replaceInParagraph substitutes token inside the run that holds it, keeping
// the formatting of every other run. A token split across runs falls back to
// the merged-run rewrite.
func (e *engine) replaceInParagraph(p docmodel.NodeID, token, value string) {
	for _, r := range e.doc.Runs(p) {
		if text := e.doc.RunText(r); strings.Contains(text, token) {
			e.doc.SetRunText(r, strings.ReplaceAll(text, token, value))
			return
		}
	}
	merged := strings.ReplaceAll(e.doc.ParagraphText(p), token, value)
	e.doc.SetParagraphText(p, merged)
}
