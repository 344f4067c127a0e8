// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package richtext

import (
	"html"
	"strconv"
	"strings"

	"github.com/olegiv/campusvoice/internal/sanitize"
)

// Serialize renders d as HTML using only p, h2, h3, strong, em, ul, ol, li,
// blockquote, hr, a and img. The output is not sanitized.
func Serialize(d *Document) string {
	var b strings.Builder
	for _, c := range d.Node(d.Root).Children {
		writeNode(&b, d, c)
	}
	return b.String()
}

// HTML renders d and passes the result through the sanitizer.
func HTML(d *Document) string {
	return sanitize.HTML(Serialize(d))
}

// Normalize parses raw, re-serializes it, and sanitizes the result. Content
// is stored in this form.
func Normalize(raw string) string {
	return HTML(Parse(raw))
}

func writeNode(b *strings.Builder, d *Document, id NodeID) {
	n := d.Node(id)
	switch n.Kind {
	case KindParagraph:
		b.WriteString("<p>")
		writeInline(b, d, n.Children)
		b.WriteString("</p>")
	case KindHeading:
		tag := "h" + strconv.Itoa(clampLevel(n.Level))
		b.WriteString("<" + tag + ">")
		writeInline(b, d, n.Children)
		b.WriteString("</" + tag + ">")
	case KindRule:
		b.WriteString("<hr>")
	case KindBulletList:
		writeContainer(b, d, "ul", n.Children)
	case KindOrderedList:
		writeContainer(b, d, "ol", n.Children)
	case KindListItem:
		writeContainer(b, d, "li", n.Children)
	case KindBlockquote:
		writeContainer(b, d, "blockquote", n.Children)
	}
}

func writeContainer(b *strings.Builder, d *Document, tag string, children []NodeID) {
	b.WriteString("<" + tag + ">")
	for _, c := range children {
		writeNode(b, d, c)
	}
	b.WriteString("</" + tag + ">")
}

// writeInline renders runs, wrapping consecutive runs that share a link
// target in one anchor.
func writeInline(b *strings.Builder, d *Document, children []NodeID) {
	for i := 0; i < len(children); {
		href := d.Node(children[i]).Href
		j := i
		for j < len(children) && d.Node(children[j]).Href == href {
			j++
		}
		if href != "" {
			b.WriteString(`<a href="`)
			b.WriteString(html.EscapeString(href))
			b.WriteString(`">`)
		}
		for _, c := range children[i:j] {
			writeLeaf(b, d.Node(c))
		}
		if href != "" {
			b.WriteString("</a>")
		}
		i = j
	}
}

func writeLeaf(b *strings.Builder, n *Node) {
	switch n.Kind {
	case KindImage:
		b.WriteString(`<img src="`)
		b.WriteString(html.EscapeString(n.Src))
		b.WriteString(`" alt="`)
		b.WriteString(html.EscapeString(n.Alt))
		b.WriteString(`">`)
	case KindText:
		if n.Marks.Has(MarkBold) {
			b.WriteString("<strong>")
		}
		if n.Marks.Has(MarkItalic) {
			b.WriteString("<em>")
		}
		b.WriteString(html.EscapeString(n.Text))
		if n.Marks.Has(MarkItalic) {
			b.WriteString("</em>")
		}
		if n.Marks.Has(MarkBold) {
			b.WriteString("</strong>")
		}
	}
}
