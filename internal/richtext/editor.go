// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package richtext

// HistoryLimit is the number of undo steps kept.
const HistoryLimit = 100

type snapshot struct {
	doc *Document
	sel Selection
}

// Editor owns a Document, a selection, and a linear undo history. It is not
// safe for concurrent use.
type Editor struct {
	doc    *Document
	sel    Selection
	stored *Mark

	undo []snapshot
	redo []snapshot

	onChange func(html string)
}

// NewEditor returns an editor for the given HTML content with the cursor
// at the start of the document.
func NewEditor(content string) *Editor {
	return &Editor{doc: Parse(content)}
}

// NewEditorFromDocument returns an editor for a copy of d.
func NewEditorFromDocument(d *Document) *Editor {
	return &Editor{doc: d.Clone()}
}

// OnChange registers fn to receive sanitized HTML after every document
// change, including undo and redo.
func (e *Editor) OnChange(fn func(html string)) {
	e.onChange = fn
}

// Document returns a copy of the current document.
func (e *Editor) Document() *Document {
	return e.doc.Clone()
}

// HTML returns the sanitized serialization of the current document.
func (e *Editor) HTML() string {
	return HTML(e.doc)
}

// Selection returns the current selection.
func (e *Editor) Selection() Selection {
	return e.sel
}

// StoredMarks returns the marks the next typed text will carry, and whether
// they were set explicitly on an empty selection.
func (e *Editor) StoredMarks() (Mark, bool) {
	if e.stored == nil {
		return 0, false
	}
	return *e.stored, true
}

// CanUndo reports whether Undo would change the document.
func (e *Editor) CanUndo() bool { return len(e.undo) > 0 }

// CanRedo reports whether Redo would change the document.
func (e *Editor) CanRedo() bool { return len(e.redo) > 0 }

// Select moves the selection, clamping both ends into the document.
func (e *Editor) Select(anchor, head Position) {
	n := len(e.doc.Textblocks())
	blocks := flatten(e.doc)
	t := &tx{blocks: blocks}
	t.index()
	e.sel = Selection{Anchor: t.clamp(anchor, n), Head: t.clamp(head, n)}
	e.stored = nil
}

// SelectAll selects the whole document.
func (e *Editor) SelectAll() {
	t := newTx(e.doc, e.sel)
	last := len(t.text) - 1
	e.Select(Position{}, Position{Block: last, Offset: len(t.blocks[t.text[last]].cells)})
}

// Undo restores the state before the most recent change.
func (e *Editor) Undo() bool {
	if len(e.undo) == 0 {
		return false
	}
	prev := e.undo[len(e.undo)-1]
	e.undo = e.undo[:len(e.undo)-1]
	e.redo = append(e.redo, snapshot{doc: e.doc.Clone(), sel: e.sel})
	e.doc, e.sel, e.stored = prev.doc, prev.sel, nil
	e.emit()
	return true
}

// Redo reapplies the most recently undone change.
func (e *Editor) Redo() bool {
	if len(e.redo) == 0 {
		return false
	}
	next := e.redo[len(e.redo)-1]
	e.redo = e.redo[:len(e.redo)-1]
	e.pushUndo(snapshot{doc: e.doc.Clone(), sel: e.sel})
	e.doc, e.sel, e.stored = next.doc, next.sel, nil
	e.emit()
	return true
}

func (e *Editor) pushUndo(s snapshot) {
	e.undo = append(e.undo, s)
	if len(e.undo) > HistoryLimit {
		e.undo = append(e.undo[:0], e.undo[len(e.undo)-HistoryLimit:]...)
	}
}

// apply runs fn against a flattened copy of the document. When the
// resulting document differs, the old state is pushed onto the undo stack,
// the redo stack is cleared, and listeners are notified.
func (e *Editor) apply(fn func(t *tx) bool) bool {
	t := newTx(e.doc, e.sel)
	if !fn(t) {
		return false
	}

	next := build(t.blocks)
	sel := t.selection()
	if next.Equal(e.doc) {
		e.sel = sel
		return false
	}

	e.pushUndo(snapshot{doc: e.doc.Clone(), sel: e.sel})
	e.redo = nil
	e.doc, e.sel, e.stored = next, sel, nil
	e.emit()
	return true
}

func (e *Editor) emit() {
	if e.onChange != nil {
		e.onChange(e.HTML())
	}
}
