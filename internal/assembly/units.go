package assembly

import (
	"fmt"

	"git.home.luguber.info/inful/syllabusbuilder/internal/docmodel"
)

var (
	unitTitleFormat   = docmodel.RunFormat{Bold: true, SizeHalfPoints: docmodel.Pt(12)}
	unitContentFormat = docmodel.RunFormat{SizeHalfPoints: docmodel.Pt(11)}
)

// expandUnits replaces the first {Units} paragraph with an empty anchor of
// the same style and inserts a title and a content paragraph per unit before
// it.
func (e *engine) expandUnits(f Field) error {
	ref, ok := e.find(f.Token)
	if !ok {
		return nil
	}
	ind := e.doc.Indentation(ref.Paragraph)
	anchor := e.derive(ref.Paragraph, ind)
	if err := e.insert(ref.Container, ref.Paragraph, anchor); err != nil {
		return err
	}

	units := e.values.Units()
	for i, u := range units {
		title := e.derive(ref.Paragraph, ind)
		e.doc.AddRun(title, UnitTitle(i+1, u.Title, u.Periods), unitTitleFormat)
		if err := e.insert(ref.Container, anchor, title); err != nil {
			return err
		}

		content := e.derive(ref.Paragraph, ind)
		e.doc.AddRun(content, u.Content, unitContentFormat)
		if err := e.insert(ref.Container, anchor, content); err != nil {
			return err
		}
	}
	e.remove(ref)

	if len(units) == 0 {
		e.report.mark(f.Token, StateDeleted)
		return nil
	}
	e.report.mark(f.Token, StateExpanded)
	return nil
}

// UnitTitle renders the heading line of unit n.
func UnitTitle(n int, title string, periods int) string {
	return fmt.Sprintf("UNIT %d: %s (No. of Periods: %d)", n, title, periods)
}
