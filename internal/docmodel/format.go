package docmodel

import "strconv"

// Indent is a paragraph indentation in twentieths of a point (twips).
// Zero fields are left unset.
type Indent struct {
	Left      int
	FirstLine int
	Hanging   int
}

// IsZero reports whether no indentation is set.
func (i Indent) IsZero() bool { return i == Indent{} }

// pPr children that the schema orders after w:ind.
var afterInd = []string{
	"contextualSpacing", "mirrorIndents", "suppressOverlap", "jc", "textDirection",
	"textAlignment", "textboxTightWrap", "outlineLvl", "divId", "cnfStyle", "rPr",
	"sectPr", "pPrChange",
}

// paragraphProps returns the paragraph's w:pPr, creating it when create is set.
func (d *Document) paragraphProps(p NodeID, create bool) NodeID {
	pPr := d.tree.FirstChild(p, d.q("pPr"))
	if pPr == NoNode && create {
		pPr = d.tree.NewElement(d.q("pPr"))
		d.tree.PrependChild(p, pPr)
	}
	return pPr
}

// ParagraphStyle returns the paragraph style id, or "" when the default style applies.
func (d *Document) ParagraphStyle(p NodeID) string {
	pPr := d.paragraphProps(p, false)
	if pPr == NoNode {
		return ""
	}
	ps := d.tree.FirstChild(pPr, d.q("pStyle"))
	if ps == NoNode {
		return ""
	}
	v, _ := d.tree.Attr(ps, d.q("val"))
	return v
}

// SetParagraphStyle sets the style id; an empty id removes w:pStyle.
func (d *Document) SetParagraphStyle(p NodeID, style string) {
	pPr := d.paragraphProps(p, style != "")
	if pPr == NoNode {
		return
	}
	ps := d.tree.FirstChild(pPr, d.q("pStyle"))
	if style == "" {
		if ps != NoNode {
			d.tree.Detach(pPr, ps)
		}
		return
	}
	if ps == NoNode {
		ps = d.tree.NewElement(d.q("pStyle"))
		d.tree.PrependChild(pPr, ps)
	}
	d.tree.SetAttr(ps, d.q("val"), style)
}

// Indentation reads w:pPr/w:ind. Both the legacy left and the newer start
// attribute are understood.
func (d *Document) Indentation(p NodeID) Indent {
	pPr := d.paragraphProps(p, false)
	if pPr == NoNode {
		return Indent{}
	}
	ind := d.tree.FirstChild(pPr, d.q("ind"))
	if ind == NoNode {
		return Indent{}
	}
	var out Indent
	out.Left = d.intAttr(ind, "left")
	if out.Left == 0 {
		out.Left = d.intAttr(ind, "start")
	}
	out.FirstLine = d.intAttr(ind, "firstLine")
	out.Hanging = d.intAttr(ind, "hanging")
	return out
}

func (d *Document) intAttr(id NodeID, local string) int {
	v, ok := d.tree.Attr(id, d.q(local))
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

// SetIndentation replaces w:pPr/w:ind. A zero Indent removes it.
func (d *Document) SetIndentation(p NodeID, in Indent) {
	pPr := d.paragraphProps(p, !in.IsZero())
	if pPr == NoNode {
		return
	}
	if old := d.tree.FirstChild(pPr, d.q("ind")); old != NoNode {
		d.tree.Detach(pPr, old)
	}
	if in.IsZero() {
		return
	}

	ind := d.tree.NewElement(d.q("ind"))
	if in.Left != 0 {
		d.tree.SetAttr(ind, d.q("left"), strconv.Itoa(in.Left))
	}
	// firstLine and hanging are mutually exclusive; hanging wins.
	switch {
	case in.Hanging != 0:
		d.tree.SetAttr(ind, d.q("hanging"), strconv.Itoa(in.Hanging))
	case in.FirstLine != 0:
		d.tree.SetAttr(ind, d.q("firstLine"), strconv.Itoa(in.FirstLine))
	}

	for _, c := range d.tree.Children(pPr) {
		if d.tree.Kind(c) != KindElement {
			continue
		}
		for _, local := range afterInd {
			if d.tree.Name(c) == d.q(local) {
				_ = d.tree.InsertBefore(pPr, c, ind)
				return
			}
		}
	}
	d.tree.AppendChild(pPr, ind)
}
