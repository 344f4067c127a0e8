// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package editor

import (
	"sync"
	"time"

	"github.com/olegiv/campusvoice/internal/richtext"
)

// Session is one author's in-progress edit of a post: the draft fields
// plus the rich-text editor for the content.
type Session struct {
	ID      string
	OwnerID string

	mu       sync.Mutex
	draft    *Draft
	editor   *richtext.Editor
	dirty    bool
	lastUsed time.Time
}

// State is the client-visible snapshot of a session.
type State struct {
	ID         string             `json:"id"`
	PostID     string             `json:"post_id,omitempty"`
	Title      string             `json:"title"`
	Slug       string             `json:"slug"`
	SlugLocked bool               `json:"slug_locked"`
	Excerpt    string             `json:"excerpt"`
	CoverImage string             `json:"cover_image"`
	Content    string             `json:"content"`
	Version    int64              `json:"version"`
	Published  bool               `json:"published"`
	Selection  richtext.Selection `json:"selection"`
	CanUndo    bool               `json:"can_undo"`
	CanRedo    bool               `json:"can_redo"`
	Dirty      bool               `json:"dirty"`
}

func newSession(id, ownerID string, d *Draft, content string, now time.Time) *Session {
	s := &Session{
		ID:       id,
		OwnerID:  ownerID,
		draft:    d,
		editor:   richtext.NewEditor(content),
		lastUsed: now,
	}
	s.editor.OnChange(func(string) { s.dirty = true })
	return s
}

// state must be called with s.mu held.
func (s *Session) state() State {
	return State{
		ID:         s.ID,
		PostID:     s.draft.PostID,
		Title:      s.draft.Title,
		Slug:       s.draft.Slug,
		SlugLocked: s.draft.SlugLocked(),
		Excerpt:    s.draft.Excerpt,
		CoverImage: s.draft.CoverImage,
		Content:    s.editor.HTML(),
		Version:    s.draft.Version,
		Published:  s.draft.Published,
		Selection:  s.editor.Selection(),
		CanUndo:    s.editor.CanUndo(),
		CanRedo:    s.editor.CanRedo(),
		Dirty:      s.dirty,
	}
}

// State returns a snapshot of the session.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}
