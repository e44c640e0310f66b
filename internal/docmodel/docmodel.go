// Package docmodel is a minimal WordprocessingML (DOCX) document model.
//
// A Document keeps every part of the package untouched except the main
// document part, which is parsed into an arena Tree and re-encoded on Bytes.
package docmodel

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"time"

	"git.home.luguber.info/inful/syllabusbuilder/internal/foundation/errors"
)

// MainPart is the package path of the main document part.
const MainPart = "word/document.xml"

// WordNamespace is the WordprocessingML main namespace URI.
const WordNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

// ContentType is the MIME type of a DOCX package.
const ContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// Options controls parsing behavior.
type Options struct {
	// MaxPartSize bounds the decompressed size of any single part. Zero means
	// DefaultMaxPartSize.
	MaxPartSize int64
}

// DefaultMaxPartSize caps decompressed part size when Options leaves it unset.
const DefaultMaxPartSize = 64 << 20

type part struct {
	name     string
	method   uint16
	modified time.Time
	data     []byte
	isMain   bool
}

// Document is a parsed DOCX package. It is not safe for concurrent use; each
// assembly works on its own Document.
type Document struct {
	parts []part
	tree  *Tree
	w     string // prefix bound to WordNamespace
}

// Parse reads a DOCX package from memory.
func Parse(content []byte, opts Options) (*Document, error) {
	limit := opts.MaxPartSize
	if limit <= 0 {
		limit = DefaultMaxPartSize
	}

	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryTemplate, "document is not a zip package").Build()
	}

	doc := &Document{}
	for _, f := range zr.File {
		data, err := readPart(f, limit)
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryTemplate, "failed to read package part").
				WithContext("part", f.Name).
				Build()
		}
		p := part{name: f.Name, method: f.Method, modified: f.Modified, data: data}
		if f.Name == MainPart {
			tree, err := ParseTree(data)
			if err != nil {
				return nil, errors.WrapError(err, errors.CategoryTemplate, "main document part is not valid XML").
					WithContext("part", f.Name).
					Build()
			}
			doc.tree = tree
			p.isMain = true
			p.data = nil
		}
		doc.parts = append(doc.parts, p)
	}

	if doc.tree == nil {
		return nil, errors.TemplateError("package has no main document part").
			WithContext("part", MainPart).
			Build()
	}
	doc.w = wordPrefix(doc.tree)
	if doc.Body() == NoNode {
		return nil, errors.TemplateError("main document part has no body").Build()
	}
	return doc, nil
}

// ParseFile reads a DOCX package from disk.
func ParseFile(path string, opts Options) (*Document, error) {
	// #nosec G304 -- path comes from configuration or an explicit CLI argument.
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapError(err, errors.CategoryNotFound, "document not found").
				WithContext("path", path).
				Build()
		}
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to read document").
			WithContext("path", path).
			Build()
	}
	return Parse(content, opts)
}

func readPart(f *zip.File, limit int64) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(io.LimitReader(rc, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, errors.TemplateError("package part exceeds size limit").
			WithContext("limit", limit).
			Build()
	}
	return data, nil
}

// wordPrefix finds the prefix the producer bound to WordNamespace, defaulting to "w".
func wordPrefix(t *Tree) string {
	root := t.DocumentElement()
	for _, a := range t.nodes[root].attrs {
		if a.Name.Space == "xmlns" && a.Value == WordNamespace {
			return a.Name.Local
		}
	}
	return "w"
}

// Tree exposes the main document part for low-level edits.
func (d *Document) Tree() *Tree { return d.tree }

// Bytes re-encodes the package. Parts other than MainPart are written back
// byte-for-byte in their original order.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, p := range d.parts {
		hdr := &zip.FileHeader{
			Name:     p.name,
			Method:   p.method,
			Modified: p.modified,
		}
		w, err := zw.CreateHeader(hdr)
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryDocument, "failed to create package part").
				WithContext("part", p.name).
				Build()
		}
		if p.isMain {
			err = d.tree.Encode(w)
		} else {
			_, err = w.Write(p.data)
		}
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryDocument, "failed to write package part").
				WithContext("part", p.name).
				Build()
		}
	}

	if err := zw.Close(); err != nil {
		return nil, errors.WrapError(err, errors.CategoryDocument, "failed to finalize package").Build()
	}
	return buf.Bytes(), nil
}

// PartNames lists the package parts in their original order.
func (d *Document) PartNames() []string {
	names := make([]string, 0, len(d.parts))
	for _, p := range d.parts {
		names = append(names, p.name)
	}
	return names
}
