package textnorm

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// blockAtoms start a new line when they open or close.
var blockAtoms = map[atom.Atom]bool{
	atom.Br: true, atom.P: true, atom.Div: true, atom.Li: true, atom.Tr: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Ul: true, atom.Ol: true, atom.Table: true, atom.Blockquote: true,
}

// markupAtoms are the elements pasted content is expected to use. Anything
// else in angle brackets is kept as text.
var markupAtoms = map[atom.Atom]bool{
	atom.A: true, atom.B: true, atom.I: true, atom.U: true, atom.S: true,
	atom.Em: true, atom.Strong: true, atom.Span: true, atom.Font: true, atom.Small: true,
	atom.Sub: true, atom.Sup: true, atom.Code: true, atom.Pre: true, atom.Mark: true,
	atom.Strike: true, atom.Del: true, atom.Ins: true,
	atom.Br: true, atom.Hr: true, atom.Img: true, atom.Meta: true, atom.Link: true,
	atom.P: true, atom.Div: true, atom.Li: true, atom.Ul: true, atom.Ol: true,
	atom.Dl: true, atom.Dt: true, atom.Dd: true, atom.Blockquote: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Table: true, atom.Thead: true, atom.Tbody: true, atom.Tfoot: true,
	atom.Tr: true, atom.Td: true, atom.Th: true,
	atom.Html: true, atom.Head: true, atom.Body: true, atom.Title: true,
	atom.Section: true, atom.Article: true, atom.Header: true, atom.Footer: true,
	atom.Script: true, atom.Style: true,
}

// voidAtoms never have a closing tag.
var voidAtoms = map[atom.Atom]bool{
	atom.Br: true, atom.Hr: true, atom.Img: true, atom.Meta: true, atom.Link: true,
}

// HTMLToText extracts the text of an HTML fragment. Block-level elements
// become line breaks; script and style content is dropped. Tags that do not
// name a known element, like the <T> in List<T>, are kept verbatim.
func HTMLToText(s string) string {
	z := html.NewTokenizer(strings.NewReader(s))
	var sb strings.Builder
	skip := 0

	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.TrimSpace(sb.String())
		case html.TextToken:
			if skip == 0 {
				sb.Write(z.Text())
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			raw := string(z.Raw())
			name, _ := z.TagName()
			a := atom.Lookup(name)
			if !markupAtoms[a] {
				if skip == 0 {
					sb.WriteString(raw)
				}
				continue
			}
			if a == atom.Script || a == atom.Style {
				skip++
				continue
			}
			if blockAtoms[a] {
				sb.WriteByte('\n')
			}
		case html.EndTagToken:
			raw := string(z.Raw())
			name, _ := z.TagName()
			a := atom.Lookup(name)
			if !markupAtoms[a] {
				if skip == 0 {
					sb.WriteString(raw)
				}
				continue
			}
			if (a == atom.Script || a == atom.Style) && skip > 0 {
				skip--
				continue
			}
			if blockAtoms[a] {
				sb.WriteByte('\n')
			}
		}
	}
}
