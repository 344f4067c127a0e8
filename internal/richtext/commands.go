// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package richtext

import (
	"errors"
	"net/url"
	"strings"
)

// Command errors.
var (
	ErrHrefRequired = errors.New("link requires a URL")
	ErrInvalidHref  = errors.New("link URL must be http, https, mailto, or relative")
	ErrSrcRequired  = errors.New("image requires a source")
	ErrInvalidSrc   = errors.New("image source must be http, https, relative, or an image data URL")
)

// InsertText replaces the selection with s. A newline splits the block.
// Typed text takes the stored marks if set, otherwise the marks of the
// preceding character, and joins a link only when typed inside one.
func (e *Editor) InsertText(s string) bool {
	if s == "" && e.sel.Empty() {
		return false
	}
	stored := e.stored
	return e.apply(func(t *tx) bool {
		t.deleteRange()
		marks := t.marksAt(t.head)
		if stored != nil {
			marks = *stored
		}
		for _, r := range s {
			switch r {
			case '\r':
				continue
			case '\n':
				t.split()
				continue
			}
			href := ""
			if start, end, h, ok := t.linkAt(t.head); ok && start < t.head.off && t.head.off < end {
				href = h
			}
			t.insertCells(cell{r: r, marks: marks, href: href})
		}
		return true
	})
}

// SplitBlock replaces the selection with a block break.
func (e *Editor) SplitBlock() bool {
	return e.apply(func(t *tx) bool {
		t.deleteRange()
		t.split()
		return true
	})
}

// DeleteBackward removes the selection, or the character before the
// cursor. At the start of a block it lifts the block out of its list or
// blockquote, removes a preceding rule, or joins with the previous block.
func (e *Editor) DeleteBackward() bool {
	return e.apply(func(t *tx) bool {
		if t.deleteRange() {
			return true
		}
		a := t.head
		b := &t.blocks[a.bi]
		switch {
		case a.off > 0:
			b.cells = append(b.cells[:a.off-1], b.cells[a.off:]...)
			t.setCursor(absPos{bi: a.bi, off: a.off - 1})
		case b.list != 0:
			b.list = 0
		case b.quote:
			b.quote = false
		case a.bi == 0:
			return false
		case t.blocks[a.bi-1].kind == KindRule:
			t.removeBlock(a.bi - 1)
			t.setCursor(absPos{bi: a.bi - 1})
		default:
			prev := &t.blocks[a.bi-1]
			joinAt := len(prev.cells)
			prev.cells = append(prev.cells, b.cells...)
			t.removeBlock(a.bi)
			t.setCursor(absPos{bi: a.bi - 1, off: joinAt})
		}
		return true
	})
}

// ToggleMark adds m to the selection, or removes it when every selected
// character already has it. On an empty selection only the stored marks
// for the next typed text change; the document and history do not.
func (e *Editor) ToggleMark(m Mark) bool {
	if e.sel.Empty() {
		t := newTx(e.doc, e.sel)
		base := t.marksAt(t.head)
		if e.stored != nil {
			base = *e.stored
		}
		next := base ^ m
		e.stored = &next
		return true
	}

	return e.apply(func(t *tx) bool {
		all, hasText := true, false
		t.eachCell(func(c *cell) {
			if c.isImage() {
				return
			}
			hasText = true
			if !c.marks.Has(m) {
				all = false
			}
		})
		if !hasText {
			return false
		}
		t.eachCell(func(c *cell) {
			if c.isImage() {
				return
			}
			if all {
				c.marks &^= m
			} else {
				c.marks |= m
			}
		})
		return true
	})
}

// SetBlockType turns every touched textblock into a paragraph or a heading
// of the given level. Applying the heading a block already has turns it
// back into a paragraph. An empty selection applies to the cursor's block.
func (e *Editor) SetBlockType(kind Kind, level int) bool {
	if !kind.IsTextblock() {
		return false
	}
	if kind == KindHeading {
		level = clampLevel(level)
	} else {
		level = 0
	}
	return e.apply(func(t *tx) bool {
		targets := t.textSpanned()
		if kind == KindHeading {
			same := true
			for _, i := range targets {
				if b := t.blocks[i]; b.kind != KindHeading || b.level != level {
					same = false
				}
			}
			if same {
				kind, level = KindParagraph, 0
			}
		}
		for _, i := range targets {
			t.blocks[i].kind, t.blocks[i].level = kind, level
		}
		return len(targets) > 0
	})
}

// ToggleList wraps the touched textblocks in a list of the given kind, or
// unwraps them when they are all already in one.
func (e *Editor) ToggleList(kind Kind) bool {
	if !kind.IsList() {
		return false
	}
	return e.apply(func(t *tx) bool {
		targets := t.textSpanned()
		all := true
		for _, i := range targets {
			if t.blocks[i].list != kind {
				all = false
			}
		}
		for _, i := range targets {
			if all {
				t.blocks[i].list = 0
			} else {
				t.blocks[i].list = kind
			}
		}
		return len(targets) > 0
	})
}

// ToggleBlockquote quotes the touched blocks, or unquotes them when they
// are all quoted.
func (e *Editor) ToggleBlockquote() bool {
	return e.apply(func(t *tx) bool {
		targets := t.spanned()
		all := true
		for _, i := range targets {
			if !t.blocks[i].quote {
				all = false
			}
		}
		for _, i := range targets {
			t.blocks[i].quote = !all
		}
		return true
	})
}

// InsertLink links the selection to href. With an empty selection inside a
// link, the whole link is retargeted; elsewhere href is inserted as linked
// text.
func (e *Editor) InsertLink(href string) error {
	href = strings.TrimSpace(href)
	if href == "" {
		return ErrHrefRequired
	}
	if !ValidHref(href) {
		return ErrInvalidHref
	}

	e.apply(func(t *tx) bool {
		if !t.empty() {
			t.eachCell(func(c *cell) { c.href = href })
			return true
		}
		if start, end, _, ok := t.linkAt(t.head); ok {
			cells := t.blocks[t.head.bi].cells
			for i := start; i < end; i++ {
				cells[i].href = href
			}
			return true
		}
		marks := t.marksAt(t.head)
		for _, r := range href {
			t.insertCells(cell{r: r, marks: marks, href: href})
		}
		return true
	})
	return nil
}

// RemoveLink unlinks the selection, or the whole link around the cursor.
func (e *Editor) RemoveLink() bool {
	return e.apply(func(t *tx) bool {
		if !t.empty() {
			t.eachCell(func(c *cell) { c.href = "" })
			return true
		}
		start, end, _, ok := t.linkAt(t.head)
		if !ok {
			return false
		}
		cells := t.blocks[t.head.bi].cells
		for i := start; i < end; i++ {
			cells[i].href = ""
		}
		return true
	})
}

// InsertImage replaces the selection with an image. src must already be a
// stored reference; the editor performs no I/O.
func (e *Editor) InsertImage(src, alt string) error {
	src = strings.TrimSpace(src)
	if src == "" {
		return ErrSrcRequired
	}
	if !ValidImageSrc(src) {
		return ErrInvalidSrc
	}

	e.apply(func(t *tx) bool {
		t.deleteRange()
		t.insertCells(cell{img: &imageAttrs{src: src, alt: strings.TrimSpace(alt)}})
		return true
	})
	return nil
}

// InsertHorizontalRule replaces the selection with a rule, splitting the
// current block around it. The cursor lands in the block after the rule.
func (e *Editor) InsertHorizontalRule() bool {
	return e.apply(func(t *tx) bool {
		t.deleteRange()
		a := t.head
		b := t.blocks[a.bi]
		rule := block{kind: KindRule, quote: b.quote}

		if a.off == 0 {
			t.insertBlocks(a.bi, rule)
			t.setCursor(absPos{bi: a.bi + 1})
			return true
		}

		next := block{kind: b.kind, level: b.level, list: b.list, quote: b.quote}
		next.cells = append(next.cells, b.cells[a.off:]...)
		if len(next.cells) == 0 {
			next.kind, next.level, next.list = KindParagraph, 0, 0
		}
		t.blocks[a.bi].cells = b.cells[:a.off]
		t.insertBlocks(a.bi+1, rule, next)
		t.setCursor(absPos{bi: a.bi + 2})
		return true
	})
}

// ValidHref reports whether href is an http, https, mailto, or relative URL.
func ValidHref(href string) bool {
	u, err := url.Parse(href)
	if err != nil {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return u.Host != ""
	case "mailto":
		return u.Opaque != ""
	case "":
		return !strings.HasPrefix(href, "//") || u.Host != ""
	default:
		return false
	}
}

// ValidImageSrc reports whether src may be used as an image source.
func ValidImageSrc(src string) bool {
	if strings.HasPrefix(strings.ToLower(src), "data:image/") {
		return strings.Contains(src, ";base64,")
	}
	u, err := url.Parse(src)
	if err != nil {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return u.Host != ""
	case "":
		return true
	default:
		return false
	}
}
