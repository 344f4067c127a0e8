// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package richtext

import "strings"

// cell is one unit of inline content: a rune or an image. Offsets in
// Position count cells.
type cell struct {
	r     rune
	marks Mark
	href  string
	img   *imageAttrs
}

type imageAttrs struct {
	src string
	alt string
}

func (c cell) isImage() bool { return c.img != nil }

// block is a flattened top-level line of the document. Lists and
// blockquotes are attributes of the line rather than containers; build
// regroups consecutive lines into containers.
type block struct {
	kind  Kind // KindParagraph, KindHeading or KindRule
	level int
	list  Kind // 0, KindBulletList or KindOrderedList
	quote bool
	cells []cell
}

func (b block) isText() bool { return b.kind.IsTextblock() }

func (b block) clone() block {
	b.cells = append([]cell(nil), b.cells...)
	return b
}

// sameContainer reports whether b and o belong in the same list container.
func (b block) sameContainer(o block) bool {
	return b.quote == o.quote && b.list == o.list
}

// flatten converts the arena into lines.
func flatten(d *Document) []block {
	var out []block
	var visit func(id NodeID, list Kind, quote bool)
	visit = func(id NodeID, list Kind, quote bool) {
		n := d.Node(id)
		switch n.Kind {
		case KindParagraph, KindHeading:
			b := block{kind: n.Kind, level: n.Level, list: list, quote: quote}
			for _, c := range n.Children {
				b.cells = append(b.cells, cellsOf(d.Node(c))...)
			}
			out = append(out, b)
		case KindRule:
			out = append(out, block{kind: KindRule, quote: quote})
		case KindBlockquote:
			for _, c := range n.Children {
				visit(c, list, true)
			}
		case KindBulletList, KindOrderedList:
			for _, c := range n.Children {
				visit(c, n.Kind, quote)
			}
		default:
			for _, c := range n.Children {
				visit(c, list, quote)
			}
		}
	}
	visit(d.Root, 0, false)
	return ensureTextblock(out)
}

func cellsOf(n *Node) []cell {
	switch n.Kind {
	case KindText:
		rs := []rune(n.Text)
		cells := make([]cell, len(rs))
		for i, r := range rs {
			cells[i] = cell{r: r, marks: n.Marks, href: n.Href}
		}
		return cells
	case KindImage:
		return []cell{{href: n.Href, img: &imageAttrs{src: n.Src, alt: n.Alt}}}
	default:
		return nil
	}
}

// ensureTextblock guarantees there is a place for the cursor.
func ensureTextblock(blocks []block) []block {
	for _, b := range blocks {
		if b.isText() {
			return blocks
		}
	}
	return append(blocks, block{kind: KindParagraph})
}

// build assembles lines into a fresh compact arena. Consecutive quoted
// lines share one blockquote; consecutive lines of the same list kind share
// one list, each line in its own list item.
func build(blocks []block) *Document {
	blocks = ensureTextblock(blocks)

	d := &Document{}
	d.Root = d.add(Node{Kind: KindDoc, Parent: NoNode})

	for i := 0; i < len(blocks); {
		if blocks[i].quote {
			j := i
			for j < len(blocks) && blocks[j].quote {
				j++
			}
			bq := d.appendChild(d.Root, Node{Kind: KindBlockquote})
			buildRun(d, bq, blocks[i:j])
			i = j
			continue
		}
		j := i
		for j < len(blocks) && !blocks[j].quote {
			j++
		}
		buildRun(d, d.Root, blocks[i:j])
		i = j
	}
	return d
}

func buildRun(d *Document, parent NodeID, blocks []block) {
	for i := 0; i < len(blocks); {
		b := blocks[i]
		if b.list == 0 || b.kind == KindRule {
			buildBlock(d, parent, b)
			i++
			continue
		}
		list := d.appendChild(parent, Node{Kind: b.list})
		for i < len(blocks) && blocks[i].list == b.list && blocks[i].kind != KindRule {
			li := d.appendChild(list, Node{Kind: KindListItem})
			buildBlock(d, li, blocks[i])
			i++
		}
	}
}

func buildBlock(d *Document, parent NodeID, b block) {
	if b.kind == KindRule {
		d.appendChild(parent, Node{Kind: KindRule})
		return
	}
	n := Node{Kind: b.kind}
	if b.kind == KindHeading {
		n.Level = clampLevel(b.level)
	}
	id := d.appendChild(parent, n)
	appendInline(d, id, b.cells)
}

// appendInline adds text runs and images for cells, merging adjacent runs
// with identical marks and href.
func appendInline(d *Document, parent NodeID, cells []cell) {
	var run strings.Builder
	var cur cell
	flush := func() {
		if run.Len() == 0 {
			return
		}
		d.appendChild(parent, Node{Kind: KindText, Text: run.String(), Marks: cur.marks, Href: cur.href})
		run.Reset()
	}

	for _, c := range cells {
		if c.isImage() {
			flush()
			d.appendChild(parent, Node{Kind: KindImage, Src: c.img.src, Alt: c.img.alt, Href: c.href})
			continue
		}
		if run.Len() > 0 && (c.marks != cur.marks || c.href != cur.href) {
			flush()
		}
		cur = c
		run.WriteRune(c.r)
	}
	flush()
}

func clampLevel(level int) int {
	if level >= 3 {
		return 3
	}
	return 2
}
