// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package richtext

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Parse reads an HTML fragment into a Document. Elements outside the
// editor's vocabulary are unwrapped to their content; script, style and
// similar elements are dropped with their content. Parse never fails: the
// worst case is a document holding one empty paragraph.
func Parse(raw string) *Document {
	context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(raw), context)
	if err != nil {
		return NewDocument()
	}

	p := &parser{}
	for _, n := range nodes {
		p.node(n, inlineCtx{})
	}
	p.flush()
	return build(p.blocks)
}

type inlineCtx struct {
	marks Mark
	href  string
}

type parser struct {
	blocks []block
	cur    *block
	list   Kind
	quote  bool
}

// open starts a new textblock of the given kind in the current container.
func (p *parser) open(kind Kind, level int) {
	p.flush()
	p.cur = &block{kind: kind, level: level, list: p.list, quote: p.quote}
}

// flush closes the current textblock, trimming trailing whitespace.
func (p *parser) flush() {
	if p.cur == nil {
		return
	}
	cells := p.cur.cells
	for len(cells) > 0 && !cells[len(cells)-1].isImage() && cells[len(cells)-1].r == ' ' {
		cells = cells[:len(cells)-1]
	}
	p.cur.cells = cells
	p.blocks = append(p.blocks, *p.cur)
	p.cur = nil
}

func (p *parser) ensureOpen() {
	if p.cur == nil {
		p.cur = &block{kind: KindParagraph, list: p.list, quote: p.quote}
	}
}

func (p *parser) children(n *html.Node, ctx inlineCtx) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		p.node(c, ctx)
	}
}

func (p *parser) node(n *html.Node, ctx inlineCtx) {
	switch n.Type {
	case html.TextNode:
		p.text(n.Data, ctx)
		return
	case html.ElementNode:
	default:
		p.children(n, ctx)
		return
	}

	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Iframe, atom.Object, atom.Embed,
		atom.Noscript, atom.Template, atom.Head, atom.Title, atom.Svg, atom.Math:
		return

	case atom.P, atom.Div, atom.Section, atom.Article, atom.Header, atom.Footer,
		atom.Pre, atom.Figure, atom.Figcaption, atom.Dd, atom.Dt, atom.Td, atom.Th:
		p.open(KindParagraph, 0)
		p.children(n, ctx)
		p.flush()

	case atom.H1, atom.H2:
		p.open(KindHeading, 2)
		p.children(n, ctx)
		p.flush()

	case atom.H3, atom.H4, atom.H5, atom.H6:
		p.open(KindHeading, 3)
		p.children(n, ctx)
		p.flush()

	case atom.Ul, atom.Ol:
		p.flush()
		saved := p.list
		if n.DataAtom == atom.Ol {
			p.list = KindOrderedList
		} else {
			p.list = KindBulletList
		}
		p.children(n, ctx)
		p.flush()
		p.list = saved

	case atom.Li:
		// Content opens a paragraph lazily so <li><p>..</p></li> yields one line.
		p.flush()
		p.children(n, ctx)
		p.flush()

	case atom.Blockquote:
		p.flush()
		saved := p.quote
		p.quote = true
		p.children(n, ctx)
		p.flush()
		p.quote = saved

	case atom.Hr:
		p.flush()
		p.blocks = append(p.blocks, block{kind: KindRule, quote: p.quote})

	case atom.Br:
		if p.cur != nil {
			kind, level := p.cur.kind, p.cur.level
			p.flush()
			p.open(kind, level)
		}

	case atom.Img:
		src := attr(n, "src")
		if src == "" {
			return
		}
		p.ensureOpen()
		p.cur.cells = append(p.cur.cells, cell{href: ctx.href, img: &imageAttrs{src: src, alt: attr(n, "alt")}})

	case atom.Strong, atom.B:
		ctx.marks |= MarkBold
		p.children(n, ctx)

	case atom.Em, atom.I:
		ctx.marks |= MarkItalic
		p.children(n, ctx)

	case atom.A:
		if href := strings.TrimSpace(attr(n, "href")); href != "" {
			ctx.href = href
		}
		p.children(n, ctx)

	default:
		p.children(n, ctx)
	}
}

// text appends collapsed whitespace and characters to the open block.
// Whitespace between blocks is ignored.
func (p *parser) text(s string, ctx inlineCtx) {
	if p.cur == nil && strings.TrimSpace(s) == "" {
		return
	}
	p.ensureOpen()
	for _, r := range s {
		if unicode.IsSpace(r) {
			cells := p.cur.cells
			if len(cells) == 0 || (!cells[len(cells)-1].isImage() && cells[len(cells)-1].r == ' ') {
				continue
			}
			r = ' '
		}
		p.cur.cells = append(p.cur.cells, cell{r: r, marks: ctx.marks, href: ctx.href})
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
