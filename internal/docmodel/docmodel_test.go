package docmodel

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/syllabusbuilder/internal/docmodel/docmodeltest"
	"git.home.luguber.info/inful/syllabusbuilder/internal/foundation/errors"
)

func TestParse_RejectsNonZip(t *testing.T) {
	_, err := Parse([]byte("not a zip"), Options{})
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryTemplate))
}

func TestParse_RequiresMainPart(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/other.xml")
	require.NoError(t, err)
	_, _ = w.Write([]byte("<x/>"))
	require.NoError(t, zw.Close())

	_, err = Parse(buf.Bytes(), Options{})
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryTemplate))
}

func TestParseFile_MissingIsNotFound(t *testing.T) {
	_, err := ParseFile(t.TempDir()+"/missing.docx", Options{})
	require.True(t, errors.HasCategory(err, errors.CategoryNotFound))
}

func TestBytes_RoundTripPreservesParts(t *testing.T) {
	src := docmodeltest.Docx(t, docmodeltest.Para("Hello ", "world"))
	doc, err := Parse(src, Options{})
	require.NoError(t, err)

	out, err := doc.Bytes()
	require.NoError(t, err)

	again, err := Parse(out, Options{})
	require.NoError(t, err)
	require.Equal(t, doc.PartNames(), again.PartNames())
	require.Equal(t, "Hello world", again.Text())
}

func TestParagraphRefs_IncludesTableCells(t *testing.T) {
	src := docmodeltest.Docx(t,
		docmodeltest.Para("before"),
		docmodeltest.Table([]string{docmodeltest.Para("cell 1"), docmodeltest.Para("cell 2")}),
		docmodeltest.Para("after"),
	)
	doc, err := Parse(src, Options{})
	require.NoError(t, err)

	var texts []string
	var inTable []bool
	for _, ref := range doc.ParagraphRefs() {
		texts = append(texts, doc.ParagraphText(ref.Paragraph))
		inTable = append(inTable, ref.InTable)
	}
	require.Equal(t, []string{"before", "cell 1", "cell 2", "after"}, texts)
	require.Equal(t, []bool{false, true, true, false}, inTable)
}

func TestSetRunText_KeepsFormattingAndEncodesBreaks(t *testing.T) {
	src := docmodeltest.Docx(t, docmodeltest.RawPara(docmodeltest.BoldRun("old")))
	doc, err := Parse(src, Options{})
	require.NoError(t, err)

	p := doc.Paragraphs(doc.Body())[0]
	r := doc.Runs(p)[0]
	doc.SetRunText(r, "line one\nline\ttwo")

	require.True(t, doc.RunBold(r))
	require.Equal(t, "line one\nline\ttwo", doc.RunText(r))
}

func TestAddRun_AndParagraphFormatting(t *testing.T) {
	src := docmodeltest.Docx(t, docmodeltest.StyledPara("ListParagraph", 720, 360, "anchor"))
	doc, err := Parse(src, Options{})
	require.NoError(t, err)
	body := doc.Body()
	anchor := doc.Paragraphs(body)[0]

	require.Equal(t, "ListParagraph", doc.ParagraphStyle(anchor))
	require.Equal(t, Indent{Left: 720, FirstLine: 360}, doc.Indentation(anchor))

	p := doc.NewParagraph()
	doc.SetParagraphStyle(p, doc.ParagraphStyle(anchor))
	doc.AddRun(p, "1.    ", RunFormat{Bold: true, SizeHalfPoints: Pt(12)})
	doc.AddRun(p, "item", RunFormat{})
	doc.SetIndentation(p, Indent{Left: 1080, Hanging: 360})
	require.NoError(t, doc.InsertBefore(body, anchor, p))

	paras := doc.Paragraphs(body)
	require.Len(t, paras, 2)
	require.Equal(t, "1.    item", doc.ParagraphText(paras[0]))
	require.Equal(t, Indent{Left: 1080, Hanging: 360}, doc.Indentation(paras[0]))
	require.Equal(t, "ListParagraph", doc.ParagraphStyle(paras[0]))

	runs := doc.Runs(paras[0])
	require.True(t, doc.RunBold(runs[0]))
	require.False(t, doc.RunBold(runs[1]))

	blocks := doc.Outline()
	require.False(t, blocks[0].Bold)
	require.Equal(t, "anchor", blocks[1].Text)

	require.True(t, doc.Detach(body, paras[1]))
	require.Len(t, doc.Paragraphs(body), 1)
}

func TestSetParagraphText_MergesIntoFirstRun(t *testing.T) {
	src := docmodeltest.Docx(t, docmodeltest.Para("{Total", "Periods}", " tail"), `<w:p/>`)
	doc, err := Parse(src, Options{})
	require.NoError(t, err)

	ps := doc.Paragraphs(doc.Body())
	require.True(t, doc.SetParagraphText(ps[0], "merged"))
	require.False(t, doc.SetParagraphText(ps[1], "ignored"))

	runs := doc.Runs(ps[0])
	require.Len(t, runs, 3)
	require.Equal(t, "merged", doc.RunText(runs[0]))
	require.Empty(t, doc.RunText(runs[1]))
	require.Equal(t, "merged", doc.ParagraphText(ps[0]))
}
