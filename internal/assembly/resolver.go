package assembly

import (
	"strconv"
	"strings"

	"git.home.luguber.info/inful/syllabusbuilder/internal/fields"
)

type replacement struct {
	token string
	value string
}

// scalarReplacements maps every scalar and practical token to its value, or
// to the sentinel when the value is blank.
func (e *engine) scalarReplacements() []replacement {
	var out []replacement
	for _, f := range vocabulary {
		switch f.Kind {
		case KindScalar:
			out = append(out, replacement{f.Token, orSentinel(e.values.Scalar(f.Field))})
		case KindPractical:
			out = append(out, replacement{f.Token, e.practicalValue(f)})
		}
	}
	return out
}

func (e *engine) totalReplacements() []replacement {
	var out []replacement
	total := e.values.TotalPeriods()
	for _, f := range byKind(KindTotal) {
		value := Sentinel
		if total > 0 {
			value = f.Title + strconv.Itoa(total)
		}
		out = append(out, replacement{f.Token, value})
	}
	return out
}

// practicalValue resolves the practical-periods tokens. Both require the
// practical flag and a positive period count.
func (e *engine) practicalValue(f Field) string {
	if !e.values.Practical() {
		return Sentinel
	}
	periods := fields.ParsePeriods(e.values.Scalar(fields.PracticalPeriods))
	if periods <= 0 {
		return Sentinel
	}
	if f.Field == "" {
		return f.Title
	}
	return strconv.Itoa(periods)
}

func orSentinel(v string) string {
	if strings.TrimSpace(v) == "" {
		return Sentinel
	}
	return v
}

// resolve applies reps to every paragraph, table cells included. Run texts are
// merged before matching so a token split across runs is still found. A
// paragraph whose result contains the sentinel is detached; otherwise the
// merged text goes into the first run and the other runs are emptied.
// Paragraphs without runs or without any matching token are left alone.
func (e *engine) resolve(reps []replacement) {
	for _, ref := range e.doc.ParagraphRefs() {
		if len(e.doc.Runs(ref.Paragraph)) == 0 {
			continue
		}
		text := e.doc.ParagraphText(ref.Paragraph)
		var hit []string
		for _, r := range reps {
			if strings.Contains(text, r.token) {
				text = strings.ReplaceAll(text, r.token, r.value)
				hit = append(hit, r.token)
			}
		}
		if len(hit) == 0 {
			continue
		}

		state := StateResolved
		if strings.Contains(text, Sentinel) {
			e.remove(ref)
			state = StateDeleted
		} else {
			e.doc.SetParagraphText(ref.Paragraph, text)
		}
		for _, tok := range hit {
			e.report.mark(tok, state)
		}
	}
}
