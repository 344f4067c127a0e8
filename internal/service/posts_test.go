// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/campusvoice/internal/cache"
	"github.com/olegiv/campusvoice/internal/model"
	"github.com/olegiv/campusvoice/internal/store"
	"github.com/olegiv/campusvoice/internal/testutil"
)

var testAuthor = model.User{ID: "author-1", Email: "editor@example.com", Role: model.RoleAdmin}

func newTestPostService(t *testing.T) *PostService {
	t.Helper()
	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)
	return NewPostService(store.NewPostRepository(db), PostServiceOptions{Logger: testutil.DiscardLogger()})
}

func TestPostService_HelloWorld(t *testing.T) {
	svc := newTestPostService(t)
	ctx := context.Background()

	draft, err := svc.Save(ctx, testAuthor, model.PostFields{Title: "Hello World", Content: "<p>Hi</p>"})
	require.NoError(t, err)
	assert.Equal(t, "hello-world", draft.Slug)
	assert.False(t, draft.Published)
	assert.Nil(t, draft.PublishedAt)
	assert.Equal(t, "<p>Hi</p>", draft.Content)
	assert.Equal(t, testAuthor.ID, draft.AuthorID)

	public, err := svc.ListPublished(ctx)
	require.NoError(t, err)
	assert.Empty(t, public)

	before := time.Now().Add(-time.Second)
	published, err := svc.Publish(ctx, testAuthor, model.PostFields{
		ID: draft.ID, Title: draft.Title, Slug: draft.Slug, Content: draft.Content,
	})
	require.NoError(t, err)
	assert.True(t, published.Published)
	require.NotNil(t, published.PublishedAt)
	assert.True(t, published.PublishedAt.After(before))

	public, err = svc.ListPublished(ctx)
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, draft.ID, public[0].ID)

	got, err := svc.GetPublished(ctx, "hello-world")
	require.NoError(t, err)
	assert.Equal(t, "Hello World", got.Title)

	unpublished, err := svc.Unpublish(ctx, draft.ID)
	require.NoError(t, err)
	assert.False(t, unpublished.Published)
	assert.Nil(t, unpublished.PublishedAt)
	assert.Equal(t, "Hello World", unpublished.Title, "unpublish leaves fields untouched")

	_, err = svc.GetPublished(ctx, "hello-world")
	assert.ErrorIs(t, err, model.ErrNotFound)

	public, err = svc.ListPublished(ctx)
	require.NoError(t, err)
	assert.Empty(t, public, "cached list must be invalidated on unpublish")
}

func TestPostService_SaveKeepsPublication(t *testing.T) {
	svc := newTestPostService(t)
	ctx := context.Background()

	p, err := svc.Publish(ctx, testAuthor, model.PostFields{Title: "Live", Content: "<p>x</p>"})
	require.NoError(t, err)

	edited, err := svc.Save(ctx, testAuthor, model.PostFields{ID: p.ID, Title: "Live edited", Slug: p.Slug, Content: "<p>y</p>"})
	require.NoError(t, err)
	assert.True(t, edited.Published)
	require.NotNil(t, edited.PublishedAt)
	assert.True(t, edited.PublishedAt.Equal(*p.PublishedAt))
	assert.Equal(t, p.Version+1, edited.Version)
}

func TestPostService_RepublishRefreshesTimestamp(t *testing.T) {
	svc := newTestPostService(t)
	ctx := context.Background()

	first := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	second := first.Add(48 * time.Hour)

	svc.now = func() time.Time { return first }
	p, err := svc.Publish(ctx, testAuthor, model.PostFields{Title: "Weekly", Content: "<p>a</p>"})
	require.NoError(t, err)
	require.NotNil(t, p.PublishedAt)
	assert.True(t, p.PublishedAt.Equal(first))

	svc.now = func() time.Time { return second }
	p, err = svc.Publish(ctx, testAuthor, model.PostFields{ID: p.ID, Title: p.Title, Slug: p.Slug, Content: p.Content})
	require.NoError(t, err)
	assert.True(t, p.PublishedAt.Equal(second))

	p, err = svc.PublishByID(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, p.PublishedAt.Equal(second))
}

func TestPostService_DuplicateSlug(t *testing.T) {
	svc := newTestPostService(t)
	ctx := context.Background()

	first, err := svc.Save(ctx, testAuthor, model.PostFields{Title: "First", Slug: "same", Content: "<p>one</p>"})
	require.NoError(t, err)

	_, err = svc.Save(ctx, testAuthor, model.PostFields{Title: "Second", Slug: "same", Content: "<p>two</p>"})
	assert.ErrorIs(t, err, model.ErrSlugConflict)
	assert.Equal(t, "An article with this URL already exists", err.Error())

	other, err := svc.Save(ctx, testAuthor, model.PostFields{Title: "Other", Content: "<p>three</p>"})
	require.NoError(t, err)
	_, err = svc.Save(ctx, testAuthor, model.PostFields{ID: other.ID, Title: "Other", Slug: "Same", Content: "<p>three</p>"})
	assert.ErrorIs(t, err, model.ErrSlugConflict)

	got, err := svc.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first, got, "first post unchanged")

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestPostService_Validation(t *testing.T) {
	svc := newTestPostService(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		fields model.PostFields
		field  string
		msg    string
	}{
		{"missing title", model.PostFields{Slug: "x"}, "title", "Please enter a title"},
		{"blank title", model.PostFields{Title: "   "}, "title", "Please enter a title"},
		{"unsluggable title", model.PostFields{Title: "???"}, "slug", "Please enter a URL slug"},
		{"long excerpt", model.PostFields{Title: "T", Excerpt: longString(501)}, "excerpt", "Excerpt must be at most 500 characters"},
		{"unsafe cover", model.PostFields{Title: "T", CoverImage: "javascript:alert(1)"}, "cover_image", "Cover image must be an http(s), relative, or image data URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Save(ctx, testAuthor, tt.fields)
			var errs validation.Errors
			require.True(t, errors.As(err, &errs), "got %v", err)
			require.Contains(t, errs, tt.field)
			assert.Equal(t, tt.msg, errs[tt.field].Error())
		})
	}

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all, "invalid saves write nothing")
}

func longString(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = 'x'
	}
	return string(b)
}

func TestPostService_ExistingPostNeedsSlug(t *testing.T) {
	svc := newTestPostService(t)
	ctx := context.Background()

	p, err := svc.Save(ctx, testAuthor, model.PostFields{Title: "Keep slug"})
	require.NoError(t, err)

	_, err = svc.Save(ctx, testAuthor, model.PostFields{ID: p.ID, Title: "Renamed"})
	var errs validation.Errors
	require.True(t, errors.As(err, &errs))
	assert.Equal(t, "Please enter a URL slug", errs["slug"].Error())
}

func TestPostService_SanitizesContent(t *testing.T) {
	svc := newTestPostService(t)

	p, err := svc.Save(context.Background(), testAuthor, model.PostFields{
		Title:   "Unsafe",
		Content: `<p onclick="steal()">safe<script>alert(1)</script></p><img src="x" onerror="alert(1)">`,
	})
	require.NoError(t, err)
	assert.NotContains(t, p.Content, "script")
	assert.NotContains(t, p.Content, "onclick")
	assert.NotContains(t, p.Content, "onerror")
	assert.Contains(t, p.Content, "safe")
}

func TestPostService_StaleWrite(t *testing.T) {
	svc := newTestPostService(t)
	ctx := context.Background()

	p, err := svc.Save(ctx, testAuthor, model.PostFields{Title: "Versioned"})
	require.NoError(t, err)

	_, err = svc.Save(ctx, testAuthor, model.PostFields{ID: p.ID, Title: "Edit A", Slug: p.Slug, ExpectedVersion: p.Version})
	require.NoError(t, err)

	_, err = svc.Save(ctx, testAuthor, model.PostFields{ID: p.ID, Title: "Edit B", Slug: p.Slug, ExpectedVersion: p.Version})
	assert.ErrorIs(t, err, model.ErrStaleWrite)

	// Without a version the last write wins.
	got, err := svc.Save(ctx, testAuthor, model.PostFields{ID: p.ID, Title: "Edit C", Slug: p.Slug})
	require.NoError(t, err)
	assert.Equal(t, "Edit C", got.Title)
}

func TestPostService_DeleteConfirmation(t *testing.T) {
	svc := newTestPostService(t)
	ctx := context.Background()

	a, err := svc.Save(ctx, testAuthor, model.PostFields{Title: "Doomed"})
	require.NoError(t, err)
	b, err := svc.Save(ctx, testAuthor, model.PostFields{Title: "Survivor"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, a.ID, ""), model.ErrConfirmationRequired)
	assert.ErrorIs(t, svc.Delete(ctx, a.ID, "made-up"), model.ErrConfirmationRequired)

	forB, err := svc.RequestDelete(ctx, b.ID)
	require.NoError(t, err)
	assert.ErrorIs(t, svc.Delete(ctx, a.ID, forB.Token), model.ErrConfirmationRequired, "token is bound to its post")

	c, err := svc.RequestDelete(ctx, a.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, c.Token)
	assert.WithinDuration(t, time.Now().Add(ConfirmationTTL), c.ExpiresAt, 5*time.Second)

	require.NoError(t, svc.Delete(ctx, a.ID, c.Token))
	_, err = svc.Get(ctx, a.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, a.ID, c.Token), model.ErrConfirmationRequired, "tokens are single use")

	_, err = svc.RequestDelete(ctx, "missing")
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = svc.Get(ctx, b.ID)
	assert.NoError(t, err)
}

func TestPostService_PublishedCacheInvalidation(t *testing.T) {
	svc := newTestPostService(t)
	ctx := context.Background()

	p, err := svc.Save(ctx, testAuthor, model.PostFields{Title: "Cached"})
	require.NoError(t, err)

	list, err := svc.ListPublished(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = svc.PublishByID(ctx, p.ID)
	require.NoError(t, err)

	list, err = svc.ListPublished(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = svc.GetPublished(ctx, "cached")
	require.NoError(t, err)

	_, err = svc.Save(ctx, testAuthor, model.PostFields{ID: p.ID, Title: "Cached v2", Slug: "cached"})
	require.NoError(t, err)

	got, err := svc.GetPublished(ctx, "cached")
	require.NoError(t, err)
	assert.Equal(t, "Cached v2", got.Title)
}

func TestPostService_ConfirmationSurvivesReadCachePressure(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)
	reads := cache.NewMemoryCache(cache.MemoryCacheOptions{MaxSize: 1})
	t.Cleanup(func() { _ = reads.Close() })
	svc := NewPostService(store.NewPostRepository(db), PostServiceOptions{Cache: reads, Logger: testutil.DiscardLogger()})
	ctx := context.Background()

	p, err := svc.Save(ctx, testAuthor, model.PostFields{Title: "Doomed"})
	require.NoError(t, err)
	c, err := svc.RequestDelete(ctx, p.ID)
	require.NoError(t, err)

	// Fill the size-limited read cache after the token was issued.
	_, err = svc.ListPublished(ctx)
	require.NoError(t, err)
	_, err = svc.GetPublished(ctx, "missing")
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.Equal(t, 1, reads.Len())

	require.NoError(t, svc.Delete(ctx, p.ID, c.Token))
}

func TestPostService_SaveRecordsLastAuthor(t *testing.T) {
	svc := newTestPostService(t)
	ctx := context.Background()

	p, err := svc.Save(ctx, testAuthor, model.PostFields{Title: "Shared desk"})
	require.NoError(t, err)

	coEditor := model.User{ID: "author-2", Email: "copy@example.com", Role: model.RoleAdmin}
	p, err = svc.Publish(ctx, coEditor, model.PostFields{ID: p.ID, Title: p.Title, Slug: p.Slug})
	require.NoError(t, err)
	assert.Equal(t, "author-2", p.AuthorID)

	p, err = svc.Save(ctx, testAuthor, model.PostFields{ID: p.ID, Title: "Shared desk, edited", Slug: p.Slug})
	require.NoError(t, err)
	assert.Equal(t, testAuthor.ID, p.AuthorID)
}
