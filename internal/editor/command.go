// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package editor

import (
	"errors"
	"fmt"

	"github.com/olegiv/campusvoice/internal/richtext"
)

// Command operations.
const (
	OpInsertText       = "insert_text"
	OpSplitBlock       = "split_block"
	OpDeleteBackward   = "delete_backward"
	OpToggleMark       = "toggle_mark"
	OpSetBlockType     = "set_block_type"
	OpToggleList       = "toggle_list"
	OpToggleBlockquote = "toggle_blockquote"
	OpInsertLink       = "insert_link"
	OpRemoveLink       = "remove_link"
	OpInsertImage      = "insert_image"
	OpInsertRule       = "insert_horizontal_rule"
	OpSelect           = "select"
	OpSelectAll        = "select_all"
	OpUndo             = "undo"
	OpRedo             = "redo"
	OpSetTitle         = "set_title"
	OpSetSlug          = "set_slug"
	OpSetExcerpt       = "set_excerpt"
	OpSetCoverImage    = "set_cover_image"
)

// ErrInvalidCommand is returned for commands with unknown ops or bad
// arguments.
var ErrInvalidCommand = errors.New("invalid editor command")

// Command is one editing step sent by the admin UI.
type Command struct {
	Op     string             `json:"op"`
	Text   string             `json:"text,omitempty"`
	Mark   string             `json:"mark,omitempty"`  // bold, italic
	Block  string             `json:"block,omitempty"` // paragraph, heading
	Level  int                `json:"level,omitempty"`
	List   string             `json:"list,omitempty"` // bullet, ordered
	Href   string             `json:"href,omitempty"`
	Src    string             `json:"src,omitempty"`
	Alt    string             `json:"alt,omitempty"`
	Anchor *richtext.Position `json:"anchor,omitempty"`
	Head   *richtext.Position `json:"head,omitempty"`
	Value  string             `json:"value,omitempty"`
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidCommand, fmt.Sprintf(format, args...))
}

var marks = map[string]richtext.Mark{
	"bold":   richtext.MarkBold,
	"italic": richtext.MarkItalic,
}

var lists = map[string]richtext.Kind{
	"bullet":  richtext.KindBulletList,
	"ordered": richtext.KindOrderedList,
}

// apply runs c against the editor and draft. It reports whether anything
// changed.
func apply(e *richtext.Editor, d *Draft, c Command) (bool, error) {
	switch c.Op {
	case OpInsertText:
		return e.InsertText(c.Text), nil
	case OpSplitBlock:
		return e.SplitBlock(), nil
	case OpDeleteBackward:
		return e.DeleteBackward(), nil
	case OpToggleMark:
		m, ok := marks[c.Mark]
		if !ok {
			return false, invalid("unknown mark %q", c.Mark)
		}
		return e.ToggleMark(m), nil
	case OpSetBlockType:
		switch c.Block {
		case "paragraph":
			return e.SetBlockType(richtext.KindParagraph, 0), nil
		case "heading":
			if c.Level != 2 && c.Level != 3 {
				return false, invalid("heading level must be 2 or 3")
			}
			return e.SetBlockType(richtext.KindHeading, c.Level), nil
		}
		return false, invalid("unknown block type %q", c.Block)
	case OpToggleList:
		k, ok := lists[c.List]
		if !ok {
			return false, invalid("unknown list type %q", c.List)
		}
		return e.ToggleList(k), nil
	case OpToggleBlockquote:
		return e.ToggleBlockquote(), nil
	case OpInsertLink:
		if err := e.InsertLink(c.Href); err != nil {
			return false, fmt.Errorf("%w: %w", ErrInvalidCommand, err)
		}
		return true, nil
	case OpRemoveLink:
		return e.RemoveLink(), nil
	case OpInsertImage:
		if err := e.InsertImage(c.Src, c.Alt); err != nil {
			return false, fmt.Errorf("%w: %w", ErrInvalidCommand, err)
		}
		return true, nil
	case OpInsertRule:
		return e.InsertHorizontalRule(), nil
	case OpSelect:
		if c.Anchor == nil {
			return false, invalid("select needs an anchor")
		}
		head := c.Anchor
		if c.Head != nil {
			head = c.Head
		}
		e.Select(*c.Anchor, *head)
		return false, nil
	case OpSelectAll:
		e.SelectAll()
		return false, nil
	case OpUndo:
		return e.Undo(), nil
	case OpRedo:
		return e.Redo(), nil
	case OpSetTitle:
		d.SetTitle(c.Value)
		return true, nil
	case OpSetSlug:
		d.SetSlug(c.Value)
		return true, nil
	case OpSetExcerpt:
		d.Excerpt = c.Value
		return true, nil
	case OpSetCoverImage:
		if c.Value != "" && !richtext.ValidImageSrc(c.Value) {
			return false, invalid("unsupported cover image URL")
		}
		d.CoverImage = c.Value
		return true, nil
	}
	return false, invalid("unknown op %q", c.Op)
}
