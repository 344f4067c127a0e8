// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package richtext

// tx is a command's working copy of the document as lines.
type tx struct {
	blocks []block
	text   []int // indices of textblocks in blocks
	anchor absPos
	head   absPos
}

func newTx(d *Document, sel Selection) *tx {
	t := &tx{blocks: flatten(d)}
	t.index()
	n := len(t.text)
	t.anchor = t.toAbs(t.clamp(sel.Anchor, n))
	t.head = t.toAbs(t.clamp(sel.Head, n))
	return t
}

func (t *tx) index() {
	t.text = t.text[:0]
	for i, b := range t.blocks {
		if b.isText() {
			t.text = append(t.text, i)
		}
	}
}

func (t *tx) clamp(p Position, n int) Position {
	if n == 0 {
		return Position{}
	}
	if p.Block < 0 {
		p.Block = 0
	}
	if p.Block >= n {
		p.Block = n - 1
	}
	size := len(t.blocks[t.text[p.Block]].cells)
	if p.Offset < 0 {
		p.Offset = 0
	}
	if p.Offset > size {
		p.Offset = size
	}
	return p
}

func (t *tx) toAbs(p Position) absPos {
	return absPos{bi: t.text[p.Block], off: p.Offset}
}

// toPos converts an absolute position back to textblock space. A position
// on a rule moves to the next textblock, or the end of the previous one.
func (t *tx) toPos(a absPos) Position {
	t.index()
	for i, bi := range t.text {
		if bi == a.bi {
			return Position{Block: i, Offset: min(a.off, len(t.blocks[bi].cells))}
		}
		if bi > a.bi {
			return Position{Block: i}
		}
	}
	last := len(t.text) - 1
	if last < 0 {
		return Position{}
	}
	return Position{Block: last, Offset: len(t.blocks[t.text[last]].cells)}
}

func (t *tx) selection() Selection {
	t.blocks = ensureTextblock(t.blocks)
	return Selection{Anchor: t.toPos(t.anchor), Head: t.toPos(t.head)}
}

func (t *tx) empty() bool { return t.anchor == t.head }

func (t *tx) from() absPos {
	if t.head.before(t.anchor) {
		return t.head
	}
	return t.anchor
}

func (t *tx) to() absPos {
	if t.head.before(t.anchor) {
		return t.anchor
	}
	return t.head
}

func (t *tx) setCursor(a absPos) {
	t.anchor, t.head = a, a
}

// deleteRange removes the selected content and collapses the selection to
// its start. It reports whether anything was removed.
func (t *tx) deleteRange() bool {
	if t.empty() {
		return false
	}
	from, to := t.from(), t.to()
	if from.bi == to.bi {
		b := &t.blocks[from.bi]
		b.cells = append(b.cells[:from.off:from.off], b.cells[to.off:]...)
	} else {
		first := &t.blocks[from.bi]
		tail := t.blocks[to.bi].cells[to.off:]
		first.cells = append(first.cells[:from.off:from.off], tail...)
		t.blocks = append(t.blocks[:from.bi+1], t.blocks[to.bi+1:]...)
	}
	t.setCursor(from)
	return true
}

// insertBlocks inserts bs before index i.
func (t *tx) insertBlocks(i int, bs ...block) {
	out := make([]block, 0, len(t.blocks)+len(bs))
	out = append(out, t.blocks[:i]...)
	out = append(out, bs...)
	out = append(out, t.blocks[i:]...)
	t.blocks = out
}

func (t *tx) removeBlock(i int) {
	t.blocks = append(t.blocks[:i], t.blocks[i+1:]...)
}

// spanned returns the indices of blocks touched by the selection.
func (t *tx) spanned() []int {
	from, to := t.from(), t.to()
	out := make([]int, 0, to.bi-from.bi+1)
	for i := from.bi; i <= to.bi; i++ {
		out = append(out, i)
	}
	return out
}

// textSpanned returns the touched textblocks.
func (t *tx) textSpanned() []int {
	var out []int
	for _, i := range t.spanned() {
		if t.blocks[i].isText() {
			out = append(out, i)
		}
	}
	return out
}

// eachCell calls fn for every cell inside the selection.
func (t *tx) eachCell(fn func(c *cell)) {
	from, to := t.from(), t.to()
	for bi := from.bi; bi <= to.bi; bi++ {
		cells := t.blocks[bi].cells
		start, end := 0, len(cells)
		if bi == from.bi {
			start = from.off
		}
		if bi == to.bi {
			end = to.off
		}
		for i := start; i < end; i++ {
			fn(&cells[i])
		}
	}
}

// marksAt returns the marks of the character before a, or after it at the
// start of a block.
func (t *tx) marksAt(a absPos) Mark {
	cells := t.blocks[a.bi].cells
	if a.off > 0 && !cells[a.off-1].isImage() {
		return cells[a.off-1].marks
	}
	if a.off == 0 && len(cells) > 0 && !cells[0].isImage() {
		return cells[0].marks
	}
	return 0
}

// linkAt returns the range of the link surrounding a cursor, if any.
func (t *tx) linkAt(a absPos) (start, end int, href string, ok bool) {
	cells := t.blocks[a.bi].cells
	i := -1
	switch {
	case a.off > 0 && cells[a.off-1].href != "":
		i = a.off - 1
	case a.off < len(cells) && cells[a.off].href != "":
		i = a.off
	}
	if i < 0 {
		return 0, 0, "", false
	}
	href = cells[i].href
	start, end = i, i+1
	for start > 0 && cells[start-1].href == href {
		start--
	}
	for end < len(cells) && cells[end].href == href {
		end++
	}
	return start, end, href, true
}

// insertCells inserts cs at the cursor and moves the cursor past them.
func (t *tx) insertCells(cs ...cell) {
	a := t.head
	b := &t.blocks[a.bi]
	out := make([]cell, 0, len(b.cells)+len(cs))
	out = append(out, b.cells[:a.off]...)
	out = append(out, cs...)
	out = append(out, b.cells[a.off:]...)
	b.cells = out
	t.setCursor(absPos{bi: a.bi, off: a.off + len(cs)})
}

// split breaks the cursor's block in two. An empty list item leaves the
// list instead. Splitting at the end of a heading starts a paragraph.
func (t *tx) split() {
	a := t.head
	b := t.blocks[a.bi]
	if b.list != 0 && len(b.cells) == 0 {
		t.blocks[a.bi].list = 0
		return
	}

	left := append([]cell(nil), b.cells[:a.off]...)
	right := append([]cell(nil), b.cells[a.off:]...)
	next := block{kind: b.kind, level: b.level, list: b.list, quote: b.quote, cells: right}
	if b.kind == KindHeading && len(right) == 0 {
		next.kind, next.level = KindParagraph, 0
	}
	t.blocks[a.bi].cells = left
	t.insertBlocks(a.bi+1, next)
	t.setCursor(absPos{bi: a.bi + 1})
}
