package preview

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/syllabusbuilder/internal/docmodel"
	"git.home.luguber.info/inful/syllabusbuilder/internal/docmodel/docmodeltest"
)

func sampleDoc(t *testing.T) *docmodel.Document {
	t.Helper()
	content := docmodeltest.Docx(t,
		docmodeltest.RawPara(docmodeltest.BoldRun("COURSE OBJECTIVES")),
		docmodeltest.RawPara(docmodeltest.BoldRun("1.    "), docmodeltest.Run("Learn scheduling")),
		docmodeltest.RawPara(docmodeltest.BoldRun("2.    "), docmodeltest.Run("Apply paging")),
		docmodeltest.Para(""),
		docmodeltest.RawPara(docmodeltest.BoldRun("CO1      "), docmodeltest.Run("Explain kernels")),
		docmodeltest.RawPara(docmodeltest.BoldRun("UNIT 1: Intro (No. of Periods: 3)")),
		docmodeltest.Para("<script>alert(1)</script> uses *stars*"),
		docmodeltest.Table([]string{docmodeltest.Para("Code"), docmodeltest.Para("CS301")}),
	)
	doc, err := docmodel.Parse(content, docmodel.Options{})
	require.NoError(t, err)
	return doc
}

func TestBody_MapsBlocksToMarkdown(t *testing.T) {
	got := Body(sampleDoc(t).Outline())
	want := strings.Join([]string{
		"## COURSE OBJECTIVES",
		"",
		"1. Learn scheduling",
		"2. Apply paging",
		"",
		"- **CO1** Explain kernels",
		"",
		"### UNIT 1: Intro (No. of Periods: 3)",
		"",
		`\<script\>alert(1)\</script\> uses \*stars\*`,
		"",
		"Code",
		"",
		"CS301",
		"",
	}, "\n")
	require.Equal(t, want, got)
}

func TestBody_HardBreaksInsideItems(t *testing.T) {
	got := Body([]docmodel.Block{{Text: "1.    first\nsecond"}})
	require.Equal(t, "1. first\\\n   second\n", got)
}

func TestBody_EscapesListLookalikes(t *testing.T) {
	got := Body([]docmodel.Block{{Text: "- not a list", InTable: true}})
	require.Equal(t, "\\- not a list\n", got)
}

func TestOutline_MarkdownCarriesFingerprint(t *testing.T) {
	o, err := New(sampleDoc(t), map[string]any{"title": "Operating Systems", "course_code": "CS301"})
	require.NoError(t, err)
	require.NotEmpty(t, o.Fingerprint)

	md, err := o.Markdown()
	require.NoError(t, err)
	s := string(md)
	require.True(t, strings.HasPrefix(s, "---\ncourse_code: CS301\nfingerprint: "), s)
	require.Contains(t, s, o.Fingerprint)
	require.Contains(t, s, "\ntitle: Operating Systems\n---\n")
	require.True(t, strings.HasSuffix(s, o.Body))
}

func TestFingerprint_IgnoresVolatileFields(t *testing.T) {
	a, err := Fingerprint(map[string]any{"title": "OS", "generated": "2026-01-01", "request_id": "a"}, "body\n")
	require.NoError(t, err)
	b, err := Fingerprint(map[string]any{"title": "OS", "generated": "2027-01-01", "request_id": "b"}, "body\n")
	require.NoError(t, err)
	require.Equal(t, a, b)

	c, err := Fingerprint(map[string]any{"title": "OS"}, "other body\n")
	require.NoError(t, err)
	require.NotEqual(t, a, c)
}

func TestOutline_HTMLIsSanitized(t *testing.T) {
	o, err := New(sampleDoc(t), nil)
	require.NoError(t, err)

	html, err := o.HTML()
	require.NoError(t, err)
	require.Contains(t, html, "<h2>COURSE OBJECTIVES</h2>")
	require.Contains(t, html, "<ol>")
	require.Contains(t, html, "<strong>CO1</strong>")
	require.NotContains(t, html, "<script>")
	require.Contains(t, html, "&lt;script&gt;")
}

func TestRenderHTML_StripsRawHTML(t *testing.T) {
	html, err := RenderHTML([]byte("hello <img src=x onerror=alert(1)>"))
	require.NoError(t, err)
	require.NotContains(t, html, "onerror")
}

func TestFromBytes_RejectsGarbage(t *testing.T) {
	_, err := FromBytes([]byte("not a zip"), nil)
	require.Error(t, err)
}
