// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package editor

import (
	"strings"

	"github.com/olegiv/campusvoice/internal/model"
	"github.com/olegiv/campusvoice/internal/util"
)

// Draft holds the non-content fields of a post being edited.
//
// While the draft is for a new post and the slug has not been edited by
// hand, every title change re-derives the slug.
type Draft struct {
	PostID     string
	Title      string
	Slug       string
	Excerpt    string
	CoverImage string
	Version    int64
	Published  bool

	slugEdited bool
}

// NewDraft returns an empty draft for a new post.
func NewDraft() *Draft {
	return &Draft{}
}

// DraftFromPost returns a draft for editing an existing post.
func DraftFromPost(p model.Post) *Draft {
	return &Draft{
		PostID:     p.ID,
		Title:      p.Title,
		Slug:       p.Slug,
		Excerpt:    p.Excerpt,
		CoverImage: p.CoverImage,
		Version:    p.Version,
		Published:  p.Published,
	}
}

// IsNew reports whether the draft has never been saved.
func (d *Draft) IsNew() bool {
	return d.PostID == ""
}

// SlugLocked reports whether title changes leave the slug alone.
func (d *Draft) SlugLocked() bool {
	return !d.IsNew() || d.slugEdited
}

// SetTitle updates the title and, unless the slug is locked, the slug.
func (d *Draft) SetTitle(title string) {
	d.Title = title
	if !d.SlugLocked() {
		d.Slug = util.Slugify(title)
	}
}

// SetSlug records a hand-edited slug. Clearing the slug of a new draft
// hands it back to the title.
func (d *Draft) SetSlug(slug string) {
	slug = strings.TrimSpace(slug)
	if slug == "" && d.IsNew() {
		d.slugEdited = false
		d.Slug = util.Slugify(d.Title)
		return
	}
	d.slugEdited = true
	d.Slug = slug
}

// Fields returns the field set to submit with the given content.
func (d *Draft) Fields(content string) model.PostFields {
	return model.PostFields{
		ID:              d.PostID,
		Title:           d.Title,
		Slug:            d.Slug,
		Excerpt:         d.Excerpt,
		CoverImage:      d.CoverImage,
		Content:         content,
		ExpectedVersion: d.Version,
	}
}

// Saved updates the draft after p was written.
func (d *Draft) Saved(p model.Post) {
	d.PostID = p.ID
	d.Slug = p.Slug
	d.Version = p.Version
	d.Published = p.Published
}
