// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Post is a newsletter article. PublishedAt is set if and only if Published is true.
type Post struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Excerpt     string     `json:"excerpt,omitempty"`
	CoverImage  string     `json:"cover_image,omitempty"`
	Content     string     `json:"content"`
	Published   bool       `json:"published"`
	PublishedAt *time.Time `json:"published_at"`
	AuthorID    string     `json:"author_id"`
	Version     int64      `json:"version"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// IsDraft reports whether the post is hidden from the public site.
func (p Post) IsDraft() bool {
	return !p.Published
}

// PostFields is the author-editable field set submitted on save or publish.
// An empty ID means the post is being created.
type PostFields struct {
	ID              string `json:"id,omitempty"`
	Title           string `json:"title"`
	Slug            string `json:"slug"`
	Excerpt         string `json:"excerpt"`
	CoverImage      string `json:"cover_image"`
	Content         string `json:"content"`
	ExpectedVersion int64  `json:"expected_version,omitempty"`
}

// IsNew reports whether the fields describe a post that does not exist yet.
func (f PostFields) IsNew() bool {
	return f.ID == ""
}

// Publication is the visibility state written together with a post.
type Publication struct {
	Published bool
	At        *time.Time
}

// PublishedAt returns the publication state for a post published at t.
func PublishedAt(t time.Time) *Publication {
	return &Publication{Published: true, At: &t}
}

// Unpublished returns the draft publication state.
func Unpublished() *Publication {
	return &Publication{}
}

// PostWrite is a complete, validated field set handed to a PostStore.
// A nil Publication leaves the stored visibility untouched.
type PostWrite struct {
	Title           string
	Slug            string
	Excerpt         string
	CoverImage      string
	Content         string
	AuthorID        string
	Publication     *Publication
	ExpectedVersion int64
}
