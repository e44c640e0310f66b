package assembly

import (
	"bytes"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/syllabusbuilder/internal/docmodel"
	"git.home.luguber.info/inful/syllabusbuilder/internal/docmodel/docmodeltest"
	"git.home.luguber.info/inful/syllabusbuilder/internal/fields"
	"git.home.luguber.info/inful/syllabusbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/syllabusbuilder/internal/textnorm"
)

// assemble runs the engine over a template built from body and re-parses the
// output so assertions see exactly what was serialized.
func assemble(t *testing.T, form url.Values, body ...string) (*docmodel.Document, Report) {
	t.Helper()
	tpl := docmodeltest.Docx(t, body...)
	out, report, err := Assemble(tpl, fields.Collect(form, textnorm.Normalizer{}))
	require.NoError(t, err)

	doc, err := docmodel.Parse(out, docmodel.Options{})
	require.NoError(t, err)
	return doc, report
}

func texts(doc *docmodel.Document) []string {
	var out []string
	for _, ref := range doc.ParagraphRefs() {
		out = append(out, doc.ParagraphText(ref.Paragraph))
	}
	return out
}

func paragraph(t *testing.T, doc *docmodel.Document, text string) docmodel.NodeID {
	t.Helper()
	for _, ref := range doc.ParagraphRefs() {
		if doc.ParagraphText(ref.Paragraph) == text {
			return ref.Paragraph
		}
	}
	t.Fatalf("no paragraph with text %q in %q", text, texts(doc))
	return docmodel.NoNode
}

func requireTexts(t *testing.T, doc *docmodel.Document, want ...string) {
	t.Helper()
	if diff := cmp.Diff(want, texts(doc)); diff != "" {
		t.Fatalf("paragraphs mismatch (-want +got):\n%s", diff)
	}
}

func TestAssemble_ObjectivesScenario(t *testing.T) {
	doc, report := assemble(t,
		url.Values{"objective[]": {"Understand X", "  Apply Y  "}},
		docmodeltest.Para("{Objectives}"),
	)

	requireTexts(t, doc, "COURSE OBJECTIVES", "1.    Understand X", "2.    Apply Y", "")
	require.Equal(t, StateExpanded, report.State("{Objectives}"))

	title := paragraph(t, doc, "COURSE OBJECTIVES")
	require.True(t, doc.RunBold(doc.Runs(title)[0]))

	item := paragraph(t, doc, "1.    Understand X")
	runs := doc.Runs(item)
	require.Len(t, runs, 2)
	require.True(t, doc.RunBold(runs[0]))
	require.False(t, doc.RunBold(runs[1]))
	require.Equal(t, docmodel.Indent{Left: 720, Hanging: 720}, doc.Indentation(item))
}

func TestAssemble_ListNumbering(t *testing.T) {
	for n := 1; n <= 6; n++ {
		t.Run(strconv.Itoa(n), func(t *testing.T) {
			form := url.Values{}
			for i := 1; i <= n; i++ {
				form.Add("textbook[]", "Book "+strconv.Itoa(i))
			}
			doc, _ := assemble(t, form, docmodeltest.Para("{Textbooks}"))

			got := texts(doc)
			require.Len(t, got, n+2)
			require.Equal(t, "TEXTBOOKS", got[0])
			for i := 1; i <= n; i++ {
				require.Equal(t, strconv.Itoa(i)+".    Book "+strconv.Itoa(i), got[i])
			}
		})
	}
}

func TestAssemble_ListLabelsAndIndents(t *testing.T) {
	doc, _ := assemble(t,
		url.Values{
			"course_outcome[]": {"Explain scheduling"},
			"experiments[]":    {"Fork a process"},
			"reference[]":      {"Tanenbaum"},
		},
		docmodeltest.Para("{CourseOutcomes}"),
		docmodeltest.Para("{Experiments}"),
		docmodeltest.Para("{References}"),
	)

	requireTexts(t, doc,
		"COURSE OUTCOMES", "CO1      Explain scheduling", "",
		"LIST OF EXPERIMENTS", "1. Fork a process", "",
		"REFERENCES", "1.    Tanenbaum", "",
	)
	require.Equal(t, docmodel.Indent{Left: 1080, Hanging: 1080}, doc.Indentation(paragraph(t, doc, "CO1      Explain scheduling")))
	require.Equal(t, docmodel.Indent{Left: 360, Hanging: 360}, doc.Indentation(paragraph(t, doc, "1. Fork a process")))
}

func TestAssemble_EmptyListDeletesPlaceholder(t *testing.T) {
	doc, report := assemble(t, nil,
		docmodeltest.Para("before"),
		docmodeltest.Para("{Objectives}"),
		docmodeltest.Para("after"),
	)

	requireTexts(t, doc, "before", "after")
	require.Equal(t, StateDeleted, report.State("{Objectives}"))
}

func TestAssemble_ListTitleInheritsStyle(t *testing.T) {
	doc, _ := assemble(t,
		url.Values{"objective": {"One"}},
		docmodeltest.StyledPara("ListParagraph", 360, 0, "{Objectives}"),
	)

	title := paragraph(t, doc, "COURSE OBJECTIVES")
	require.Equal(t, "ListParagraph", doc.ParagraphStyle(title))
	require.Equal(t, docmodel.Indent{Left: 360}, doc.Indentation(title))

	item := paragraph(t, doc, "1.    One")
	require.Equal(t, "ListParagraph", doc.ParagraphStyle(item))
	require.Equal(t, docmodel.Indent{Left: 720, Hanging: 720}, doc.Indentation(item))
}

func unitForm(units ...[3]string) url.Values {
	form := url.Values{}
	for i, u := range units {
		n := strconv.Itoa(i + 1)
		form.Set("unit_title_"+n, u[0])
		form.Set("unit_content_"+n, u[1])
		form.Set("unit_periods_"+n, u[2])
	}
	return form
}

func TestAssemble_UnitsScenario(t *testing.T) {
	doc, report := assemble(t,
		unitForm([3]string{"Intro", "Basics", "3"}, [3]string{"Advanced", "Depth", "5"}),
		docmodeltest.StyledPara("Normal", 0, 0, "{Units}"),
		docmodeltest.Para("{TotalPeriods}"),
	)

	requireTexts(t, doc,
		"UNIT 1: Intro (No. of Periods: 3)", "Basics",
		"UNIT 2: Advanced (No. of Periods: 5)", "Depth",
		"",
		"TOTAL NUMBER OF PERIODS:8",
	)
	require.Equal(t, StateExpanded, report.State("{Units}"))
	require.Equal(t, StateResolved, report.State("{TotalPeriods}"))

	title := paragraph(t, doc, "UNIT 1: Intro (No. of Periods: 3)")
	require.True(t, doc.RunBold(doc.Runs(title)[0]))
	require.Equal(t, "Normal", doc.ParagraphStyle(title))
	content := paragraph(t, doc, "Basics")
	require.False(t, doc.RunBold(doc.Runs(content)[0]))
}

func TestAssemble_UnitAggregation(t *testing.T) {
	doc, _ := assemble(t,
		unitForm(
			[3]string{"A", "a", "3"},
			[3]string{"B", "b", "4"},
			[3]string{"C", "c", "0"},
			[3]string{"D", "d", "5"},
		),
		docmodeltest.Para("{TotalPeriods}"),
	)
	requireTexts(t, doc, "TOTAL NUMBER OF PERIODS:12")
}

func TestAssemble_NoUnitsDeletesTotal(t *testing.T) {
	doc, report := assemble(t, nil,
		docmodeltest.Para("{Units}"),
		docmodeltest.Para("{TotalPeriods}"),
		docmodeltest.Para("end"),
	)

	requireTexts(t, doc, "", "end")
	require.Equal(t, StateDeleted, report.State("{Units}"))
	require.Equal(t, StateDeleted, report.State("{TotalPeriods}"))
	require.NotContains(t, doc.Text(), "0")
}

func TestAssemble_ZeroPeriodUnitsDeleteTotal(t *testing.T) {
	doc, _ := assemble(t,
		unitForm([3]string{"A", "a", "x"}),
		docmodeltest.Para("{TotalPeriods}"),
	)
	require.Empty(t, texts(doc))
}

func TestAssemble_SplitRunToken(t *testing.T) {
	doc, _ := assemble(t,
		unitForm([3]string{"A", "a", "3"}),
		docmodeltest.Para("Total: ", "{Total", "Periods}"),
	)

	p := paragraph(t, doc, "Total: TOTAL NUMBER OF PERIODS:3")
	runs := doc.Runs(p)
	require.Len(t, runs, 3)
	require.Equal(t, "Total: TOTAL NUMBER OF PERIODS:3", doc.RunText(runs[0]))
	require.Empty(t, doc.RunText(runs[1]))
	require.Empty(t, doc.RunText(runs[2]))
}

func TestAssemble_Scalars(t *testing.T) {
	doc, report := assemble(t,
		url.Values{"CourseName": {"Operating Systems"}, "CourseCode": {"CS301"}},
		docmodeltest.Para("Course: ", "{CourseName}", " (", "{CourseCode}", ")"),
		docmodeltest.Para("Semester {Semester}"),
		docmodeltest.Para("untouched text"),
	)

	requireTexts(t, doc, "Course: Operating Systems (CS301)", "untouched text")
	require.Equal(t, StateResolved, report.State("{CourseName}"))
	require.Equal(t, StateDeleted, report.State("{Semester}"))
	require.Equal(t, StateUntouched, report.State("{Grading}"))
	require.Empty(t, report.Unresolved)
}

func TestAssemble_RoundTripSubstitution(t *testing.T) {
	values := []string{"Operating Systems", "R&D <lab> \"quoted\"", "Ünïcödé", "a  b"}
	for _, v := range values {
		t.Run(v, func(t *testing.T) {
			tpl := docmodeltest.Docx(t, docmodeltest.Para("{CourseName}"))
			vs := fields.NewValueSet(map[string]string{fields.CourseName: v}, nil, nil)
			out, _, err := Assemble(tpl, vs)
			require.NoError(t, err)

			doc, err := docmodel.Parse(out, docmodel.Options{})
			require.NoError(t, err)
			requireTexts(t, doc, v)
		})
	}
}

func TestAssemble_TablePlaceholders(t *testing.T) {
	doc, _ := assemble(t,
		url.Values{"CourseName": {"Operating Systems"}},
		docmodeltest.Table(
			[]string{docmodeltest.Para("Name"), docmodeltest.Para("{CourseName}")},
			[]string{docmodeltest.Para("Code"), docmodeltest.Para("{CourseCode}")},
		),
	)

	refs := doc.ParagraphRefs()
	var got []string
	for _, ref := range refs {
		require.True(t, ref.InTable)
		got = append(got, doc.ParagraphText(ref.Paragraph))
	}
	// The emptied cell keeps a blank paragraph.
	require.Equal(t, []string{"Name", "Operating Systems", "Code", ""}, got)
}

func TestAssemble_SectionWithValue(t *testing.T) {
	doc, report := assemble(t,
		url.Values{"Prerequisites": {"Data structures"}},
		docmodeltest.StyledPara("BodyText", 720, 360, "{Prerequisites}"),
	)

	requireTexts(t, doc, "PREREQUISITES", "Data structures")
	require.Equal(t, StateResolved, report.State("{Prerequisites}"))

	title := paragraph(t, doc, "PREREQUISITES")
	require.True(t, doc.RunBold(doc.Runs(title)[0]))
	require.Equal(t, "BodyText", doc.ParagraphStyle(title))
	require.Equal(t, docmodel.Indent{Left: 720, FirstLine: 360}, doc.Indentation(title))
}

func TestAssemble_SectionKeepsRunFormatting(t *testing.T) {
	doc, _ := assemble(t,
		url.Values{"course_format": {"Lectures and labs"}},
		docmodeltest.RawPara(docmodeltest.BoldRun("Format: "), docmodeltest.Run("{CourseFormat}")),
	)

	p := paragraph(t, doc, "Format: Lectures and labs")
	runs := doc.Runs(p)
	require.Len(t, runs, 2)
	require.True(t, doc.RunBold(runs[0]))
	require.Equal(t, "Lectures and labs", doc.RunText(runs[1]))
}

func TestAssemble_EmptySectionIsDeletedWithoutTitle(t *testing.T) {
	cases := []struct {
		token string
		title string
	}{
		{"{CourseDescription}", "COURSE DESCRIPTION"},
		{"{Prerequisites}", "PREREQUISITES"},
		{"{CourseFormat}", "COURSE FORMAT"},
		{"{AssessmentsGrading}", "ASSESSMENTS AND GRADING"},
	}
	for _, tc := range cases {
		t.Run(tc.title, func(t *testing.T) {
			doc, report := assemble(t, url.Values{"CourseDescription": {"   "}},
				docmodeltest.Para(tc.token),
				docmodeltest.Para("end"),
			)
			text := doc.Text()
			require.NotContains(t, text, tc.token)
			require.NotContains(t, text, tc.title)
			require.Equal(t, StateDeleted, report.State(tc.token))
		})
	}
}

func TestAssemble_SectionSplitAcrossRuns(t *testing.T) {
	doc, _ := assemble(t,
		url.Values{"CourseDescription": {"Processes and threads"}},
		docmodeltest.Para("{Course", "Description}"),
	)
	requireTexts(t, doc, "COURSE DESCRIPTION", "Processes and threads")
}

func TestAssemble_MultilinePrerequisites(t *testing.T) {
	doc, _ := assemble(t,
		url.Values{"Prerequisites[]": {"Data structures", "Discrete maths"}},
		docmodeltest.Para("{Prerequisites}"),
	)
	requireTexts(t, doc, "PREREQUISITES", "Data structures\nDiscrete maths")
}

func TestAssemble_DuplicateSectionOnlyFirstProcessed(t *testing.T) {
	doc, report := assemble(t,
		url.Values{"CourseDescription": {"Text"}},
		docmodeltest.Para("{CourseDescription}"),
		docmodeltest.Para("{CourseDescription}"),
	)

	requireTexts(t, doc, "COURSE DESCRIPTION", "Text", "{CourseDescription}")
	require.Equal(t, []string{"{CourseDescription}"}, report.Unresolved)
}

func TestAssemble_DuplicateListOnlyFirstProcessed(t *testing.T) {
	doc, report := assemble(t,
		url.Values{"objective": {"One"}},
		docmodeltest.Para("{Objectives}"),
		docmodeltest.Para("{Objectives}"),
	)

	requireTexts(t, doc, "COURSE OBJECTIVES", "1.    One", "", "{Objectives}")
	require.Equal(t, StateExpanded, report.State("{Objectives}"))
	require.Equal(t, []string{"{Objectives}"}, report.Unresolved)
}

func TestAssemble_DuplicateUnitsOnlyFirstProcessed(t *testing.T) {
	doc, report := assemble(t,
		unitForm([3]string{"A", "a", "2"}),
		docmodeltest.Para("{Units}"),
		docmodeltest.Para("{Units}"),
	)

	requireTexts(t, doc, "UNIT 1: A (No. of Periods: 2)", "a", "", "{Units}")
	require.Equal(t, StateExpanded, report.State("{Units}"))
	require.Equal(t, []string{"{Units}"}, report.Unresolved)
}

func TestAssemble_SectionTitleDropsHangingIndent(t *testing.T) {
	hanging := `<w:p><w:pPr><w:ind w:left="720" w:hanging="360"/></w:pPr>` +
		docmodeltest.Run("{CourseDescription}") + `</w:p>`
	doc, _ := assemble(t, url.Values{"CourseDescription": {"Text"}}, hanging)

	title := paragraph(t, doc, "COURSE DESCRIPTION")
	require.Equal(t, docmodel.Indent{Left: 720}, doc.Indentation(title))
	value := paragraph(t, doc, "Text")
	require.Equal(t, docmodel.Indent{Left: 720, Hanging: 360}, doc.Indentation(value))
}

func TestAssemble_GenericTypeNotationSurvives(t *testing.T) {
	doc, _ := assemble(t,
		url.Values{
			"CourseDescription": {"Generic collections such as List<T> and Map<K, V>"},
			"objective[]":       {"Use vector<int> and templates"},
		},
		docmodeltest.Para("{CourseDescription}"),
		docmodeltest.Para("{Objectives}"),
	)

	requireTexts(t, doc,
		"COURSE DESCRIPTION", "Generic collections such as List<T> and Map<K, V>",
		"COURSE OBJECTIVES", "1.    Use vector<int> and templates", "",
	)
}

func TestApply_UnplaceableFieldStaysUnresolved(t *testing.T) {
	doc, err := docmodel.Parse(docmodeltest.Docx(t, docmodeltest.Para("{CourseDescription}")), docmodel.Options{})
	require.NoError(t, err)
	e := &engine{doc: doc, report: newReport()}

	detached := doc.NewParagraph()
	err = e.titleBefore(docmodel.ParagraphRef{Container: doc.Body(), Paragraph: detached}, "COURSE DESCRIPTION")
	require.Error(t, err)

	e.run(Field{Token: "{CourseDescription}"}, func(f Field) error {
		e.report.mark(f.Token, StateResolved)
		return err
	})
	require.Equal(t, StateUntouched, e.report.State("{CourseDescription}"))
	require.Equal(t, []string{"{CourseDescription}"}, e.unresolved())
}

func TestAssemble_Practical(t *testing.T) {
	body := []string{
		docmodeltest.Para("{PracticalPeriodsName}"),
		docmodeltest.Para("{PracticalPeriods}"),
		docmodeltest.Para("end"),
	}

	t.Run("flag unset", func(t *testing.T) {
		doc, _ := assemble(t, url.Values{"practical_periods": {"30"}}, body...)
		requireTexts(t, doc, "end")
	})
	t.Run("flag set", func(t *testing.T) {
		doc, report := assemble(t, url.Values{"hasPractical": {"on"}, "practical_periods": {"30"}}, body...)
		requireTexts(t, doc, "PRACTICAL PERIODS", "30", "end")
		require.Equal(t, StateResolved, report.State("{PracticalPeriods}"))
	})
	t.Run("flag set without count", func(t *testing.T) {
		doc, _ := assemble(t, url.Values{"hasPractical": {"on"}, "practical_periods": {"n/a"}}, body...)
		requireTexts(t, doc, "end")
	})
}

func TestAssemble_NoSentinelOrKnownTokenRemains(t *testing.T) {
	var body []string
	for _, f := range Vocabulary() {
		body = append(body, docmodeltest.Para(f.Token))
	}
	body = append(body, docmodeltest.Table([]string{docmodeltest.Para("{CourseName}"), docmodeltest.Para("{CourseCode}")}))

	doc, report := assemble(t, nil, body...)

	text := doc.Text()
	require.NotContains(t, text, Sentinel)
	for _, f := range Vocabulary() {
		require.NotContains(t, text, f.Token)
	}
	require.Empty(t, report.Unresolved)
}

func TestAssemble_ReportsUnknownTokens(t *testing.T) {
	_, report := assemble(t, nil, docmodeltest.Para("{Unknown} and {Other_1}"))
	require.Equal(t, []string{"{Other_1}", "{Unknown}"}, report.Unresolved)
}

func TestAssemble_DoesNotMutateTemplate(t *testing.T) {
	tpl := docmodeltest.Docx(t, docmodeltest.Para("{CourseName}"), docmodeltest.Para("{Units}"))
	before := bytes.Clone(tpl)

	_, _, err := Assemble(tpl, fields.Collect(unitForm([3]string{"A", "a", "1"}), nil))
	require.NoError(t, err)
	require.Equal(t, before, tpl)
}

func TestAssemble_CorruptTemplate(t *testing.T) {
	_, _, err := Assemble([]byte("not a zip"), fields.ValueSet{})
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryTemplate))
}

func TestAssemble_ParagraphWithoutRunsIsIgnored(t *testing.T) {
	doc, _ := assemble(t, nil, `<w:p/>`, docmodeltest.Para("x"))
	requireTexts(t, doc, "", "x")
}

func TestVocabulary_IsACopy(t *testing.T) {
	v := Vocabulary()
	v[0].Token = "mutated"
	require.NotEqual(t, "mutated", Vocabulary()[0].Token)
	require.True(t, strings.HasPrefix(Vocabulary()[0].Token, "{"))
}
