// Package docmodeltest builds small DOCX packages in memory for tests.
package docmodeltest

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
	"testing"
)

const contentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/><Default Extension="xml" ContentType="application/xml"/><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/></Types>`

const rels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/></Relationships>`

// DocumentXML wraps body content in a w:document element.
func DocumentXML(body ...string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		strings.Join(body, "") +
		`<w:sectPr><w:pgSz w:w="11906" w:h="16838"/></w:sectPr></w:body></w:document>`
}

// Package zips a minimal DOCX around the given main document XML.
func Package(tb testing.TB, documentXML string) []byte {
	tb.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range []struct{ name, data string }{
		{"[Content_Types].xml", contentTypes},
		{"_rels/.rels", rels},
		{"word/document.xml", documentXML},
	} {
		w, err := zw.Create(f.name)
		if err != nil {
			tb.Fatalf("create %s: %v", f.name, err)
		}
		if _, err := w.Write([]byte(f.data)); err != nil {
			tb.Fatalf("write %s: %v", f.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		tb.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

// Docx is Package(DocumentXML(body...)).
func Docx(tb testing.TB, body ...string) []byte {
	tb.Helper()
	return Package(tb, DocumentXML(body...))
}

// Run renders one plain run.
func Run(text string) string {
	return `<w:r><w:t xml:space="preserve">` + escape(text) + `</w:t></w:r>`
}

// BoldRun renders one bold run.
func BoldRun(text string) string {
	return `<w:r><w:rPr><w:b/></w:rPr><w:t xml:space="preserve">` + escape(text) + `</w:t></w:r>`
}

// Para renders a paragraph with one run per text argument.
func Para(texts ...string) string {
	var sb strings.Builder
	sb.WriteString("<w:p>")
	for _, t := range texts {
		sb.WriteString(Run(t))
	}
	sb.WriteString("</w:p>")
	return sb.String()
}

// StyledPara renders a paragraph with a style and a left/first-line indentation.
func StyledPara(style string, left, firstLine int, texts ...string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, `<w:p><w:pPr><w:pStyle w:val="%s"/><w:ind w:left="%d" w:firstLine="%d"/></w:pPr>`, style, left, firstLine)
	for _, t := range texts {
		sb.WriteString(Run(t))
	}
	sb.WriteString("</w:p>")
	return sb.String()
}

// RawPara renders a paragraph from pre-built run XML.
func RawPara(runs ...string) string {
	return "<w:p>" + strings.Join(runs, "") + "</w:p>"
}

// Table renders a table; each row is a list of cells and each cell holds block XML.
func Table(rows ...[]string) string {
	var sb strings.Builder
	sb.WriteString("<w:tbl>")
	for _, row := range rows {
		sb.WriteString("<w:tr>")
		for _, cell := range row {
			sb.WriteString("<w:tc>" + cell + "</w:tc>")
		}
		sb.WriteString("</w:tr>")
	}
	sb.WriteString("</w:tbl>")
	return sb.String()
}

func escape(s string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;").Replace(s)
}
