package docmodel

import (
	"strconv"
	"strings"
)

// q qualifies a WordprocessingML local name with the document's prefix.
func (d *Document) q(local string) string { return d.w + ":" + local }

// Body returns the w:body element.
func (d *Document) Body() NodeID {
	root := d.tree.DocumentElement()
	if root == NoNode {
		return NoNode
	}
	return d.tree.FirstChild(root, d.q("body"))
}

// IsParagraph reports whether id is a w:p element.
func (d *Document) IsParagraph(id NodeID) bool {
	return d.tree.Kind(id) == KindElement && d.tree.Name(id) == d.q("p")
}

// IsTable reports whether id is a w:tbl element.
func (d *Document) IsTable(id NodeID) bool {
	return d.tree.Kind(id) == KindElement && d.tree.Name(id) == d.q("tbl")
}

// Paragraphs returns the paragraphs directly owned by container (body or cell).
func (d *Document) Paragraphs(container NodeID) []NodeID {
	return d.tree.ChildrenNamed(container, d.q("p"))
}

// Tables returns the tables directly owned by container.
func (d *Document) Tables(container NodeID) []NodeID {
	return d.tree.ChildrenNamed(container, d.q("tbl"))
}

// Rows returns the rows of a table.
func (d *Document) Rows(tbl NodeID) []NodeID {
	return d.tree.ChildrenNamed(tbl, d.q("tr"))
}

// Cells returns the cells of a table row.
func (d *Document) Cells(row NodeID) []NodeID {
	return d.tree.ChildrenNamed(row, d.q("tc"))
}

// Runs returns the runs directly owned by a paragraph.
func (d *Document) Runs(p NodeID) []NodeID {
	return d.tree.ChildrenNamed(p, d.q("r"))
}

// ParagraphRef locates a paragraph together with the container that owns it.
type ParagraphRef struct {
	Container NodeID
	Paragraph NodeID
	InTable   bool
}

// ParagraphRefs returns every paragraph in document order: body paragraphs and,
// where a table sits in the body, the paragraphs of each of its cells (nested
// tables included). The slice is a snapshot, so callers may detach while
// iterating.
func (d *Document) ParagraphRefs() []ParagraphRef {
	var out []ParagraphRef
	d.collect(d.Body(), false, &out)
	return out
}

func (d *Document) collect(container NodeID, inTable bool, out *[]ParagraphRef) {
	for _, child := range d.tree.Children(container) {
		switch {
		case d.IsParagraph(child):
			*out = append(*out, ParagraphRef{Container: container, Paragraph: child, InTable: inTable})
		case d.IsTable(child):
			for _, row := range d.Rows(child) {
				for _, cell := range d.Cells(row) {
					d.collect(cell, true, out)
				}
			}
		}
	}
}

// RunText returns the visible text of a run; tabs and breaks map to "\t" and "\n".
func (d *Document) RunText(r NodeID) string {
	var sb strings.Builder
	for _, c := range d.tree.Children(r) {
		if d.tree.Kind(c) != KindElement {
			continue
		}
		switch d.tree.Name(c) {
		case d.q("t"):
			for _, tc := range d.tree.Children(c) {
				if d.tree.Kind(tc) == KindText {
					sb.WriteString(d.tree.Data(tc))
				}
			}
		case d.q("tab"):
			sb.WriteByte('\t')
		case d.q("br"), d.q("cr"):
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// ParagraphText concatenates the text of every run in the paragraph.
func (d *Document) ParagraphText(p NodeID) string {
	var sb strings.Builder
	for _, r := range d.Runs(p) {
		sb.WriteString(d.RunText(r))
	}
	return sb.String()
}

// SetRunText replaces the text content of a run. Formatting and non-text
// content such as drawings are kept.
func (d *Document) SetRunText(r NodeID, text string) {
	d.ClearText(r)
	d.appendText(r, text)
}

// ClearText removes the w:t, w:tab, w:br and w:cr children of a run.
func (d *Document) ClearText(r NodeID) {
	d.tree.RetainChildren(r, func(c NodeID) bool {
		if d.tree.Kind(c) != KindElement {
			return false
		}
		switch d.tree.Name(c) {
		case d.q("t"), d.q("tab"), d.q("br"), d.q("cr"):
			return false
		}
		return true
	})
}

// SetParagraphText writes text into the first run and clears every other run,
// leaving the paragraph with a single visible run. It reports false when the
// paragraph has no runs.
func (d *Document) SetParagraphText(p NodeID, text string) bool {
	runs := d.Runs(p)
	if len(runs) == 0 {
		return false
	}
	d.SetRunText(runs[0], text)
	for _, r := range runs[1:] {
		d.ClearText(r)
	}
	return true
}

func (d *Document) appendText(r NodeID, text string) {
	var seg strings.Builder
	flush := func() {
		if seg.Len() == 0 {
			return
		}
		t := d.tree.NewElement(d.q("t"))
		s := seg.String()
		if strings.TrimSpace(s) != s || strings.Contains(s, "  ") {
			d.tree.SetAttr(t, "xml:space", "preserve")
		}
		d.tree.AppendChild(t, d.tree.NewText(s))
		d.tree.AppendChild(r, t)
		seg.Reset()
	}
	for _, ch := range text {
		switch ch {
		case '\n':
			flush()
			d.tree.AppendChild(r, d.tree.NewElement(d.q("br")))
		case '\t':
			flush()
			d.tree.AppendChild(r, d.tree.NewElement(d.q("tab")))
		case '\r':
		default:
			seg.WriteRune(ch)
		}
	}
	flush()
}

// RunFormat describes the character formatting of a generated run.
type RunFormat struct {
	Bold bool
	// SizeHalfPoints is the font size in half-points (24 = 12pt). Zero inherits.
	SizeHalfPoints int
}

// Pt converts a point size to half-points.
func Pt(points int) int { return points * 2 }

// NewParagraph allocates a detached, empty w:p.
func (d *Document) NewParagraph() NodeID {
	return d.tree.NewElement(d.q("p"))
}

// AddRun appends a run with the given text and formatting to a paragraph.
func (d *Document) AddRun(p NodeID, text string, f RunFormat) NodeID {
	r := d.tree.NewElement(d.q("r"))
	if f.Bold || f.SizeHalfPoints > 0 {
		rPr := d.tree.NewElement(d.q("rPr"))
		if f.Bold {
			d.tree.AppendChild(rPr, d.tree.NewElement(d.q("b")))
			d.tree.AppendChild(rPr, d.tree.NewElement(d.q("bCs")))
		}
		if f.SizeHalfPoints > 0 {
			val := strconv.Itoa(f.SizeHalfPoints)
			sz := d.tree.NewElement(d.q("sz"))
			d.tree.SetAttr(sz, d.q("val"), val)
			szCs := d.tree.NewElement(d.q("szCs"))
			d.tree.SetAttr(szCs, d.q("val"), val)
			d.tree.AppendChild(rPr, sz)
			d.tree.AppendChild(rPr, szCs)
		}
		d.tree.AppendChild(r, rPr)
	}
	d.appendText(r, text)
	d.tree.AppendChild(p, r)
	return r
}

// RunBold reports whether the run's direct formatting turns bold on.
func (d *Document) RunBold(r NodeID) bool {
	rPr := d.tree.FirstChild(r, d.q("rPr"))
	if rPr == NoNode {
		return false
	}
	b := d.tree.FirstChild(rPr, d.q("b"))
	if b == NoNode {
		return false
	}
	val, ok := d.tree.Attr(b, d.q("val"))
	return !ok || (val != "0" && val != "false" && val != "off")
}

// InsertBefore attaches block immediately before anchor inside container.
func (d *Document) InsertBefore(container, anchor, block NodeID) error {
	return d.tree.InsertBefore(container, anchor, block)
}

// Detach removes block from container.
func (d *Document) Detach(container, block NodeID) bool {
	return d.tree.Detach(container, block)
}

// AppendBlock attaches block as the last child of container.
func (d *Document) AppendBlock(container, block NodeID) {
	d.tree.AppendChild(container, block)
}
