package docmodel

import "strings"

// Block is a flattened, formatting-light view of one paragraph.
type Block struct {
	Text    string
	Style   string
	Bold    bool // every non-blank run is bold
	InTable bool
	Indent  Indent
}

// Outline flattens the document into paragraph blocks in document order.
func (d *Document) Outline() []Block {
	refs := d.ParagraphRefs()
	out := make([]Block, 0, len(refs))
	for _, ref := range refs {
		out = append(out, Block{
			Text:    d.ParagraphText(ref.Paragraph),
			Style:   d.ParagraphStyle(ref.Paragraph),
			Bold:    d.allBold(ref.Paragraph),
			InTable: ref.InTable,
			Indent:  d.Indentation(ref.Paragraph),
		})
	}
	return out
}

func (d *Document) allBold(p NodeID) bool {
	seen := false
	for _, r := range d.Runs(p) {
		if strings.TrimSpace(d.RunText(r)) == "" {
			continue
		}
		if !d.RunBold(r) {
			return false
		}
		seen = true
	}
	return seen
}

// Text returns the document's paragraphs joined by newlines.
func (d *Document) Text() string {
	blocks := d.Outline()
	lines := make([]string, len(blocks))
	for i, b := range blocks {
		lines[i] = b.Text
	}
	return strings.Join(lines, "\n")
}
