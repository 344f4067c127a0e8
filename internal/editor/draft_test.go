// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package editor

import (
	"testing"

	"github.com/olegiv/campusvoice/internal/model"
)

func TestDraft_SlugFollowsTitleWhileNew(t *testing.T) {
	d := NewDraft()

	d.SetTitle("Hello")
	d.SetTitle("Hello World!")
	if d.Slug != "hello-world" {
		t.Fatalf("Slug = %q, want hello-world", d.Slug)
	}
	if d.SlugLocked() {
		t.Error("slug should not be locked yet")
	}
}

func TestDraft_HandEditedSlugSticks(t *testing.T) {
	d := NewDraft()
	d.SetTitle("Hello World")
	d.SetSlug("custom-url")
	d.SetTitle("Another Title")

	if d.Slug != "custom-url" {
		t.Errorf("Slug = %q, want custom-url", d.Slug)
	}

	d.SetSlug("   ")
	if d.Slug != "another-title" {
		t.Errorf("clearing the slug should hand it back to the title, got %q", d.Slug)
	}
	d.SetTitle("Third")
	if d.Slug != "third" {
		t.Errorf("Slug = %q, want third", d.Slug)
	}
}

func TestDraft_ExistingPostKeepsSlug(t *testing.T) {
	d := DraftFromPost(model.Post{ID: "p1", Title: "Old", Slug: "old", Version: 3})

	d.SetTitle("New Title")
	if d.Slug != "old" {
		t.Errorf("Slug = %q, want old", d.Slug)
	}
	if !d.SlugLocked() {
		t.Error("existing post slug should be locked")
	}

	f := d.Fields("<p>x</p>")
	if f.ID != "p1" || f.ExpectedVersion != 3 || f.Content != "<p>x</p>" || f.Title != "New Title" {
		t.Errorf("Fields() = %+v", f)
	}
}

func TestDraft_SavedLocksSlug(t *testing.T) {
	d := NewDraft()
	d.SetTitle("First")
	d.Saved(model.Post{ID: "p1", Slug: "first", Version: 1})

	d.SetTitle("Renamed")
	if d.Slug != "first" {
		t.Errorf("Slug = %q, want first after save", d.Slug)
	}
	if d.Version != 1 {
		t.Errorf("Version = %d", d.Version)
	}
}
