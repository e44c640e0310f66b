package docmodel

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// NodeID addresses a node inside a Tree.
type NodeID int

// NoNode is returned by lookups that find nothing.
const NoNode NodeID = -1

// NodeKind distinguishes the XML constructs kept in a Tree.
type NodeKind uint8

const (
	KindRoot NodeKind = iota
	KindElement
	KindText
	KindComment
	KindProcInst
	KindDirective
)

type node struct {
	kind NodeKind
	// name keeps the raw prefix in Space so the tree re-encodes with the
	// prefixes the producer chose.
	name     xml.Name
	attrs    []xml.Attr
	data     string
	children []NodeID
}

// Tree is an arena of XML nodes. Nodes never know their parent: every
// structural edit names the owning container explicitly. Detached nodes stay
// in the arena until the tree is discarded.
type Tree struct {
	nodes []node
}

// NewTree returns a tree holding only the synthetic root.
func NewTree() *Tree {
	return &Tree{nodes: []node{{kind: KindRoot}}}
}

// ParseTree decodes XML into a Tree without resolving namespace prefixes.
func ParseTree(data []byte) (*Tree, error) {
	t := NewTree()
	dec := xml.NewDecoder(bytes.NewReader(data))
	stack := []NodeID{t.Root()}

	for {
		tok, err := dec.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode xml: %w", err)
		}
		parent := stack[len(stack)-1]

		switch tk := tok.(type) {
		case xml.StartElement:
			id := t.add(node{kind: KindElement, name: tk.Name, attrs: append([]xml.Attr(nil), tk.Attr...)})
			t.AppendChild(parent, id)
			stack = append(stack, id)
		case xml.EndElement:
			if len(stack) == 1 || t.nodes[parent].name != tk.Name {
				return nil, fmt.Errorf("decode xml: unexpected end element </%s>", qualify(tk.Name))
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			t.AppendChild(parent, t.add(node{kind: KindText, data: string(tk)}))
		case xml.Comment:
			t.AppendChild(parent, t.add(node{kind: KindComment, data: string(tk)}))
		case xml.ProcInst:
			t.AppendChild(parent, t.add(node{kind: KindProcInst, name: xml.Name{Local: tk.Target}, data: string(tk.Inst)}))
		case xml.Directive:
			t.AppendChild(parent, t.add(node{kind: KindDirective, data: string(tk)}))
		}
	}

	if len(stack) != 1 {
		return nil, fmt.Errorf("decode xml: unclosed element <%s>", qualify(t.nodes[stack[len(stack)-1]].name))
	}
	if t.DocumentElement() == NoNode {
		return nil, fmt.Errorf("decode xml: no root element")
	}
	return t, nil
}

func (t *Tree) add(n node) NodeID {
	t.nodes = append(t.nodes, n)
	return NodeID(len(t.nodes) - 1)
}

func (t *Tree) valid(id NodeID) bool {
	return id >= 0 && int(id) < len(t.nodes)
}

// Root returns the synthetic node owning the prolog and the document element.
func (t *Tree) Root() NodeID { return 0 }

// DocumentElement returns the outermost element.
func (t *Tree) DocumentElement() NodeID {
	for _, c := range t.nodes[0].children {
		if t.nodes[c].kind == KindElement {
			return c
		}
	}
	return NoNode
}

// Kind reports the node kind.
func (t *Tree) Kind(id NodeID) NodeKind { return t.nodes[id].kind }

// Name returns the qualified element name ("w:p").
func (t *Tree) Name(id NodeID) string { return qualify(t.nodes[id].name) }

// Data returns the character data of text, comment and directive nodes.
func (t *Tree) Data(id NodeID) string { return t.nodes[id].data }

// SetData replaces the character data of a text node.
func (t *Tree) SetData(id NodeID, s string) { t.nodes[id].data = s }

// Children returns a snapshot of the child list, safe to range over while editing.
func (t *Tree) Children(id NodeID) []NodeID {
	return append([]NodeID(nil), t.nodes[id].children...)
}

// ChildrenNamed returns the element children with the given qualified name.
func (t *Tree) ChildrenNamed(id NodeID, qname string) []NodeID {
	var out []NodeID
	for _, c := range t.nodes[id].children {
		if t.nodes[c].kind == KindElement && qualify(t.nodes[c].name) == qname {
			out = append(out, c)
		}
	}
	return out
}

// FirstChild returns the first element child with the given qualified name.
func (t *Tree) FirstChild(id NodeID, qname string) NodeID {
	for _, c := range t.nodes[id].children {
		if t.nodes[c].kind == KindElement && qualify(t.nodes[c].name) == qname {
			return c
		}
	}
	return NoNode
}

// Attr returns an attribute value by qualified name.
func (t *Tree) Attr(id NodeID, qname string) (string, bool) {
	for _, a := range t.nodes[id].attrs {
		if qualify(a.Name) == qname {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttr creates or replaces an attribute.
func (t *Tree) SetAttr(id NodeID, qname, value string) {
	n := &t.nodes[id]
	for i := range n.attrs {
		if qualify(n.attrs[i].Name) == qname {
			n.attrs[i].Value = value
			return
		}
	}
	n.attrs = append(n.attrs, xml.Attr{Name: splitQName(qname), Value: value})
}

// RemoveAttr deletes an attribute if present.
func (t *Tree) RemoveAttr(id NodeID, qname string) {
	n := &t.nodes[id]
	kept := n.attrs[:0]
	for _, a := range n.attrs {
		if qualify(a.Name) != qname {
			kept = append(kept, a)
		}
	}
	n.attrs = kept
}

// NewElement allocates a detached element.
func (t *Tree) NewElement(qname string) NodeID {
	return t.add(node{kind: KindElement, name: splitQName(qname)})
}

// NewText allocates a detached text node.
func (t *Tree) NewText(s string) NodeID {
	return t.add(node{kind: KindText, data: s})
}

// AppendChild attaches child as the last child of parent.
func (t *Tree) AppendChild(parent, child NodeID) {
	t.nodes[parent].children = append(t.nodes[parent].children, child)
}

// PrependChild attaches child as the first child of parent.
func (t *Tree) PrependChild(parent, child NodeID) {
	kids := t.nodes[parent].children
	t.nodes[parent].children = append([]NodeID{child}, kids...)
}

// IndexOf returns the position of child inside parent, or -1.
func (t *Tree) IndexOf(parent, child NodeID) int {
	for i, c := range t.nodes[parent].children {
		if c == child {
			return i
		}
	}
	return -1
}

// InsertBefore attaches child immediately before anchor inside parent.
func (t *Tree) InsertBefore(parent, anchor, child NodeID) error {
	if !t.valid(parent) || !t.valid(child) {
		return fmt.Errorf("insert: invalid node")
	}
	idx := t.IndexOf(parent, anchor)
	if idx < 0 {
		return fmt.Errorf("insert: anchor %d is not a child of %d", anchor, parent)
	}
	kids := t.nodes[parent].children
	kids = append(kids, NoNode)
	copy(kids[idx+1:], kids[idx:])
	kids[idx] = child
	t.nodes[parent].children = kids
	return nil
}

// Detach removes child from parent's child list. It reports whether child was found.
func (t *Tree) Detach(parent, child NodeID) bool {
	idx := t.IndexOf(parent, child)
	if idx < 0 {
		return false
	}
	kids := t.nodes[parent].children
	t.nodes[parent].children = append(kids[:idx], kids[idx+1:]...)
	return true
}

// RetainChildren keeps only the children for which keep returns true.
func (t *Tree) RetainChildren(parent NodeID, keep func(NodeID) bool) {
	kids := t.nodes[parent].children
	kept := kids[:0]
	for _, c := range kids {
		if keep(c) {
			kept = append(kept, c)
		}
	}
	t.nodes[parent].children = kept
}

// Clone deep-copies a subtree into new detached nodes.
func (t *Tree) Clone(id NodeID) NodeID {
	src := t.nodes[id]
	cp := node{
		kind:  src.kind,
		name:  src.name,
		attrs: append([]xml.Attr(nil), src.attrs...),
		data:  src.data,
	}
	out := t.add(cp)
	for _, c := range src.children {
		t.AppendChild(out, t.Clone(c))
	}
	return out
}

// Encode writes the tree as XML.
func (t *Tree) Encode(w io.Writer) error {
	var buf bytes.Buffer
	t.encode(&buf, t.Root())
	_, err := w.Write(buf.Bytes())
	return err
}

func (t *Tree) encode(buf *bytes.Buffer, id NodeID) {
	n := &t.nodes[id]
	switch n.kind {
	case KindRoot:
		for _, c := range n.children {
			t.encode(buf, c)
		}
	case KindElement:
		buf.WriteByte('<')
		buf.WriteString(qualify(n.name))
		for _, a := range n.attrs {
			buf.WriteByte(' ')
			buf.WriteString(qualify(a.Name))
			buf.WriteString(`="`)
			buf.WriteString(attrEscaper.Replace(a.Value))
			buf.WriteByte('"')
		}
		if len(n.children) == 0 {
			buf.WriteString("/>")
			return
		}
		buf.WriteByte('>')
		for _, c := range n.children {
			t.encode(buf, c)
		}
		buf.WriteString("</")
		buf.WriteString(qualify(n.name))
		buf.WriteByte('>')
	case KindText:
		buf.WriteString(textEscaper.Replace(n.data))
	case KindComment:
		buf.WriteString("<!--")
		buf.WriteString(n.data)
		buf.WriteString("-->")
	case KindProcInst:
		buf.WriteString("<?")
		buf.WriteString(n.name.Local)
		if n.data != "" {
			buf.WriteByte(' ')
			buf.WriteString(n.data)
		}
		buf.WriteString("?>")
	case KindDirective:
		buf.WriteString("<!")
		buf.WriteString(n.data)
		buf.WriteByte('>')
	}
}

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", `"`, "&quot;", "\t", "&#x9;", "\n", "&#xA;", "\r", "&#xD;")
)

func qualify(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

func splitQName(qname string) xml.Name {
	if prefix, local, ok := strings.Cut(qname, ":"); ok {
		return xml.Name{Space: prefix, Local: local}
	}
	return xml.Name{Local: qname}
}
