// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package richtext

// Position addresses a point in the document: Block indexes the document's
// textblocks in order, Offset counts characters and images in that block.
type Position struct {
	Block  int `json:"block"`
	Offset int `json:"offset"`
}

// Before reports whether p sorts before o.
func (p Position) Before(o Position) bool {
	return p.Block < o.Block || (p.Block == o.Block && p.Offset < o.Offset)
}

// Selection is a range between Anchor (where it started) and Head (where
// the cursor is). An empty selection is a cursor.
type Selection struct {
	Anchor Position `json:"anchor"`
	Head   Position `json:"head"`
}

// Cursor returns an empty selection at p.
func Cursor(p Position) Selection {
	return Selection{Anchor: p, Head: p}
}

// Empty reports whether the selection is a cursor.
func (s Selection) Empty() bool {
	return s.Anchor == s.Head
}

// From returns the earlier end of the selection.
func (s Selection) From() Position {
	if s.Head.Before(s.Anchor) {
		return s.Head
	}
	return s.Anchor
}

// To returns the later end of the selection.
func (s Selection) To() Position {
	if s.Head.Before(s.Anchor) {
		return s.Anchor
	}
	return s.Head
}

// absPos is a position in the flattened line slice, where rules count.
type absPos struct {
	bi  int
	off int
}

func (p absPos) before(o absPos) bool {
	return p.bi < o.bi || (p.bi == o.bi && p.off < o.off)
}
