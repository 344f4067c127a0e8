// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package richtext implements the article document model used by the
// admin editor. A Document is an arena of nodes addressed by NodeID; the
// Editor applies commands to it and emits sanitized HTML after every change.
package richtext

// NodeID indexes a node in a Document arena.
type NodeID int32

// NoNode is the parent of the root.
const NoNode NodeID = -1

// Kind is the type of a node.
type Kind uint8

// Node kinds.
const (
	KindDoc Kind = iota
	KindParagraph
	KindHeading
	KindBulletList
	KindOrderedList
	KindListItem
	KindBlockquote
	KindRule
	KindText
	KindImage
)

var kindNames = [...]string{
	KindDoc:         "doc",
	KindParagraph:   "paragraph",
	KindHeading:     "heading",
	KindBulletList:  "bullet_list",
	KindOrderedList: "ordered_list",
	KindListItem:    "list_item",
	KindBlockquote:  "blockquote",
	KindRule:        "horizontal_rule",
	KindText:        "text",
	KindImage:       "image",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsTextblock reports whether nodes of kind k hold inline content.
func (k Kind) IsTextblock() bool {
	return k == KindParagraph || k == KindHeading
}

// IsList reports whether k is a list container.
func (k Kind) IsList() bool {
	return k == KindBulletList || k == KindOrderedList
}

// Mark is a set of inline text styles.
type Mark uint8

// Inline marks.
const (
	MarkBold Mark = 1 << iota
	MarkItalic
)

// Has reports whether m contains all marks in o.
func (m Mark) Has(o Mark) bool { return m&o == o }

// Node is one element of the document tree.
type Node struct {
	Kind     Kind
	Parent   NodeID
	Children []NodeID

	Level int // heading level, 2 or 3

	Text  string // text nodes
	Marks Mark
	Href  string // link target for text and image nodes

	Src string // image nodes
	Alt string
}

// Document is an arena-allocated tree rooted at Root. Nodes that are no
// longer reachable stay in the arena until the document is cloned.
type Document struct {
	nodes []Node
	Root  NodeID
}

// NewDocument returns a document holding one empty paragraph.
func NewDocument() *Document {
	d := &Document{}
	d.Root = d.add(Node{Kind: KindDoc, Parent: NoNode})
	d.appendChild(d.Root, Node{Kind: KindParagraph})
	return d
}

// Node returns the node with id. The returned pointer is valid until the
// next node is added.
func (d *Document) Node(id NodeID) *Node {
	return &d.nodes[id]
}

// Len returns the number of nodes in the arena, reachable or not.
func (d *Document) Len() int {
	return len(d.nodes)
}

func (d *Document) add(n Node) NodeID {
	d.nodes = append(d.nodes, n)
	return NodeID(len(d.nodes) - 1)
}

func (d *Document) appendChild(parent NodeID, n Node) NodeID {
	n.Parent = parent
	id := d.add(n)
	d.nodes[parent].Children = append(d.nodes[parent].Children, id)
	return id
}

// Walk visits every reachable node in document order. Returning false from
// fn skips the node's children.
func (d *Document) Walk(fn func(id NodeID, n *Node) bool) {
	var visit func(NodeID)
	visit = func(id NodeID) {
		if !fn(id, &d.nodes[id]) {
			return
		}
		for _, c := range d.nodes[id].Children {
			visit(c)
		}
	}
	visit(d.Root)
}

// Textblocks returns the paragraphs and headings in document order. Editor
// positions index into this slice.
func (d *Document) Textblocks() []NodeID {
	var out []NodeID
	d.Walk(func(id NodeID, n *Node) bool {
		if n.Kind.IsTextblock() {
			out = append(out, id)
			return false
		}
		return true
	})
	return out
}

// Clone returns a deep copy containing only reachable nodes, renumbered in
// document order.
func (d *Document) Clone() *Document {
	out := &Document{nodes: make([]Node, 0, len(d.nodes))}
	var copyNode func(src NodeID, parent NodeID) NodeID
	copyNode = func(src NodeID, parent NodeID) NodeID {
		n := d.nodes[src]
		children := n.Children
		n.Parent = parent
		n.Children = nil
		id := out.add(n)
		if len(children) > 0 {
			ids := make([]NodeID, 0, len(children))
			for _, c := range children {
				ids = append(ids, copyNode(c, id))
			}
			out.nodes[id].Children = ids
		}
		return id
	}
	out.Root = copyNode(d.Root, NoNode)
	return out
}

// Equal reports whether two documents have the same reachable structure.
func (d *Document) Equal(o *Document) bool {
	return Serialize(d) == Serialize(o)
}

// TextContent returns the plain text of all textblocks joined by newlines.
func (d *Document) TextContent() string {
	var buf []rune
	for i, tb := range d.Textblocks() {
		if i > 0 {
			buf = append(buf, '\n')
		}
		for _, c := range d.nodes[tb].Children {
			if n := d.nodes[c]; n.Kind == KindText {
				buf = append(buf, []rune(n.Text)...)
			}
		}
	}
	return string(buf)
}
