package assembly

import (
	"slices"

	"git.home.luguber.info/inful/syllabusbuilder/internal/docmodel"
	"git.home.luguber.info/inful/syllabusbuilder/internal/fields"
)

// Sentinel marks a paragraph for deletion.
const Sentinel = "<REMOVE>"

// Kind selects how a field's placeholder is processed.
type Kind string

const (
	// KindScalar tokens are replaced in place, or delete their paragraph when blank.
	KindScalar Kind = "scalar"
	// KindSection tokens gain a bold title paragraph above the value.
	KindSection Kind = "section"
	// KindList tokens expand into a title plus one labelled paragraph per item.
	KindList Kind = "list"
	// KindUnits expands into a title and content paragraph per unit.
	KindUnits Kind = "units"
	// KindTotal resolves to the sum of unit periods.
	KindTotal Kind = "total"
	// KindPractical resolves only when a practical component was requested.
	KindPractical Kind = "practical"
)

// Field is one entry of the token vocabulary.
type Field struct {
	Token string `json:"token" yaml:"token"`
	// Field is the fields.ValueSet name the value is read from.
	Field string `json:"field,omitempty" yaml:"field,omitempty"`
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
	Kind  Kind   `json:"kind" yaml:"kind"`
	// Label is a fmt pattern with one %d for list item labels.
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
	// Indent is the hanging-indent layout of list items.
	Indent docmodel.Indent `json:"-" yaml:"-"`
}

// Hanging-indent layouts for generated list items, in twips.
var (
	numberedIndent   = docmodel.Indent{Left: 720, Hanging: 720}
	outcomeIndent    = docmodel.Indent{Left: 1080, Hanging: 1080}
	experimentIndent = docmodel.Indent{Left: 360, Hanging: 360}
)

// vocabulary lists every token the engine understands. Order matters only
// within a kind: it is the substitution order inside a paragraph.
var vocabulary = []Field{
	{Token: "{Semester}", Field: fields.Semester, Kind: KindScalar},
	{Token: "{CourseName}", Field: fields.CourseName, Kind: KindScalar},
	{Token: "{CourseCode}", Field: fields.CourseCode, Kind: KindScalar},
	{Token: "{Assessments}", Field: fields.Assessments, Kind: KindScalar},
	{Token: "{Grading}", Field: fields.Grading, Kind: KindScalar},

	{Token: "{CourseDescription}", Field: fields.CourseDescription, Title: "COURSE DESCRIPTION", Kind: KindSection},
	{Token: "{Prerequisites}", Field: fields.Prerequisites, Title: "PREREQUISITES", Kind: KindSection},
	{Token: "{CourseFormat}", Field: fields.CourseFormat, Title: "COURSE FORMAT", Kind: KindSection},
	{Token: "{AssessmentsGrading}", Field: fields.AssessmentsGrading, Title: "ASSESSMENTS AND GRADING", Kind: KindSection},

	{Token: "{Objectives}", Field: fields.Objectives, Title: "COURSE OBJECTIVES", Kind: KindList, Label: "%d.    ", Indent: numberedIndent},
	{Token: "{Textbooks}", Field: fields.Textbooks, Title: "TEXTBOOKS", Kind: KindList, Label: "%d.    ", Indent: numberedIndent},
	{Token: "{References}", Field: fields.References, Title: "REFERENCES", Kind: KindList, Label: "%d.    ", Indent: numberedIndent},
	{Token: "{Experiments}", Field: fields.Experiments, Title: "LIST OF EXPERIMENTS", Kind: KindList, Label: "%d. ", Indent: experimentIndent},
	{Token: "{CourseOutcomes}", Field: fields.Outcomes, Title: "COURSE OUTCOMES", Kind: KindList, Label: "CO%d      ", Indent: outcomeIndent},

	{Token: "{Units}", Kind: KindUnits},
	{Token: "{TotalPeriods}", Title: "TOTAL NUMBER OF PERIODS:", Kind: KindTotal},
	{Token: "{PracticalPeriodsName}", Title: "PRACTICAL PERIODS", Kind: KindPractical},
	{Token: "{PracticalPeriods}", Field: fields.PracticalPeriods, Kind: KindPractical},
}

// Vocabulary returns a copy of the token table.
func Vocabulary() []Field {
	return slices.Clone(vocabulary)
}

func byKind(k Kind) []Field {
	var out []Field
	for _, f := range vocabulary {
		if f.Kind == k {
			out = append(out, f)
		}
	}
	return out
}
