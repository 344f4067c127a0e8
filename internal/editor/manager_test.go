// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package editor

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/campusvoice/internal/auth"
	"github.com/olegiv/campusvoice/internal/imaging"
	"github.com/olegiv/campusvoice/internal/model"
	"github.com/olegiv/campusvoice/internal/richtext"
	"github.com/olegiv/campusvoice/internal/session"
	"github.com/olegiv/campusvoice/internal/testutil"
)

type fakePosts struct {
	posts     map[string]model.Post
	saved     []model.PostFields
	published []model.PostFields
	err       error
}

func newFakePosts() *fakePosts {
	return &fakePosts{posts: map[string]model.Post{}}
}

func (f *fakePosts) Get(_ context.Context, id string) (model.Post, error) {
	p, ok := f.posts[id]
	if !ok {
		return model.Post{}, model.ErrNotFound
	}
	return p, nil
}

func (f *fakePosts) write(author model.User, fields model.PostFields, publish bool) (model.Post, error) {
	if f.err != nil {
		return model.Post{}, f.err
	}
	id := fields.ID
	if id == "" {
		id = "post-1"
	}
	p := f.posts[id]
	p.ID, p.Title, p.Slug, p.Content, p.AuthorID = id, fields.Title, fields.Slug, fields.Content, author.ID
	p.Version++
	if publish {
		now := time.Now()
		p.Published, p.PublishedAt = true, &now
	}
	f.posts[id] = p
	return p, nil
}

func (f *fakePosts) Save(_ context.Context, author model.User, fields model.PostFields) (model.Post, error) {
	f.saved = append(f.saved, fields)
	return f.write(author, fields, false)
}

func (f *fakePosts) Publish(_ context.Context, author model.User, fields model.PostFields) (model.Post, error) {
	f.published = append(f.published, fields)
	return f.write(author, fields, true)
}

type fakeImages struct {
	err error
}

func (f fakeImages) Ingest(_ context.Context, u imaging.Upload) (imaging.ImageReference, error) {
	if f.err != nil {
		return imaging.ImageReference{}, f.err
	}
	return imaging.ImageReference{Src: "/uploads/article-images/" + u.Filename, MediaType: u.MediaType, Strategy: imaging.StrategyFilesystem}, nil
}

var (
	alice = model.User{ID: "alice", Email: "alice@example.com", Role: model.RoleAdmin}
	bob   = model.User{ID: "bob", Email: "bob@example.com", Role: model.RoleAdmin}
)

func newTestManager(posts PostWriter) *Manager {
	return NewManager(posts, fakeImages{}, Options{Logger: testutil.DiscardLogger()})
}

func TestManager_EditAndSave(t *testing.T) {
	posts := newFakePosts()
	m := newTestManager(posts)
	ctx := context.Background()

	st, err := m.Open(ctx, alice, "")
	require.NoError(t, err)
	assert.Equal(t, "<p></p>", st.Content)

	for _, c := range []Command{
		{Op: OpSetTitle, Value: "Hello World"},
		{Op: OpInsertText, Text: "Hi there"},
		{Op: OpSelect, Anchor: &richtext.Position{Block: 0, Offset: 0}, Head: &richtext.Position{Block: 0, Offset: 2}},
		{Op: OpToggleMark, Mark: "bold"},
	} {
		st, err = m.Apply(alice, st.ID, c)
		require.NoError(t, err, c.Op)
	}
	assert.Equal(t, "hello-world", st.Slug)
	assert.Equal(t, "<p><strong>Hi</strong> there</p>", st.Content)
	assert.True(t, st.Dirty)
	assert.True(t, st.CanUndo)

	p, st, err := m.Save(ctx, alice, st.ID, false)
	require.NoError(t, err)
	assert.Equal(t, "post-1", p.ID)
	assert.False(t, st.Dirty)
	assert.Equal(t, "post-1", st.PostID)
	assert.True(t, st.SlugLocked)
	require.Len(t, posts.saved, 1)
	assert.Equal(t, "<p><strong>Hi</strong> there</p>", posts.saved[0].Content)
	assert.Equal(t, "alice", p.AuthorID)

	_, st, err = m.Save(ctx, alice, st.ID, true)
	require.NoError(t, err)
	assert.True(t, st.Published)
	require.Len(t, posts.published, 1)
	assert.EqualValues(t, 1, posts.published[0].ExpectedVersion, "second save sends the version it was based on")
}

func TestManager_OpenExistingPost(t *testing.T) {
	posts := newFakePosts()
	posts.posts["p9"] = model.Post{ID: "p9", Title: "Existing", Slug: "existing", Content: "<h2>Intro</h2><p>Body</p>", Version: 4}
	m := newTestManager(posts)

	st, err := m.Open(context.Background(), alice, "p9")
	require.NoError(t, err)
	assert.Equal(t, "<h2>Intro</h2><p>Body</p>", st.Content)
	assert.EqualValues(t, 4, st.Version)
	assert.False(t, st.Dirty)

	_, err = m.Open(context.Background(), alice, "missing")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestManager_OwnerCheck(t *testing.T) {
	m := newTestManager(newFakePosts())

	st, err := m.Open(context.Background(), alice, "")
	require.NoError(t, err)

	_, err = m.State(bob, st.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = m.Apply(bob, st.ID, Command{Op: OpInsertText, Text: "x"})
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, m.Close(bob, st.ID), ErrSessionNotFound)

	require.NoError(t, m.Close(alice, st.ID))
	_, err = m.State(alice, st.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManager_InvalidCommands(t *testing.T) {
	m := newTestManager(newFakePosts())
	st, err := m.Open(context.Background(), alice, "")
	require.NoError(t, err)

	for _, c := range []Command{
		{Op: "explode"},
		{Op: OpToggleMark, Mark: "underline"},
		{Op: OpSetBlockType, Block: "heading", Level: 1},
		{Op: OpToggleList, List: "checklist"},
		{Op: OpInsertLink},
		{Op: OpInsertLink, Href: "javascript:alert(1)"},
		{Op: OpInsertImage},
		{Op: OpSelect},
		{Op: OpSetCoverImage, Value: "javascript:alert(1)"},
	} {
		_, err := m.Apply(alice, st.ID, c)
		assert.ErrorIs(t, err, ErrInvalidCommand, "%+v", c)
	}

	st, err = m.State(alice, st.ID)
	require.NoError(t, err)
	assert.False(t, st.Dirty)
}

func TestManager_UndoRedo(t *testing.T) {
	m := newTestManager(newFakePosts())
	st, _ := m.Open(context.Background(), alice, "")

	st, _ = m.Apply(alice, st.ID, Command{Op: OpInsertText, Text: "Title"})
	st, _ = m.Apply(alice, st.ID, Command{Op: OpSetBlockType, Block: "heading", Level: 2})
	assert.Equal(t, "<h2>Title</h2>", st.Content)

	st, _ = m.Apply(alice, st.ID, Command{Op: OpUndo})
	assert.Equal(t, "<p>Title</p>", st.Content)
	assert.True(t, st.CanRedo)

	st, _ = m.Apply(alice, st.ID, Command{Op: OpRedo})
	assert.Equal(t, "<h2>Title</h2>", st.Content)
}

func TestManager_InsertImage(t *testing.T) {
	m := newTestManager(newFakePosts())
	ctx := context.Background()
	st, _ := m.Open(ctx, alice, "")

	upload := imaging.Upload{Filename: "cat.png", MediaType: "image/png", Size: 3, Body: bytes.NewReader([]byte("png"))}

	st, ref, err := m.InsertImage(ctx, alice, st.ID, upload, "A cat", "")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/article-images/cat.png", ref.Src)
	assert.Equal(t, `<p><img src="/uploads/article-images/cat.png" alt="A cat"></p>`, st.Content)

	st, _, err = m.InsertImage(ctx, alice, st.ID, upload, "", TargetCover)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/article-images/cat.png", st.CoverImage)

	_, _, err = m.InsertImage(ctx, alice, st.ID, upload, "", "banner")
	assert.ErrorIs(t, err, ErrInvalidCommand)

	m.images = fakeImages{err: imaging.ErrTooLarge}
	_, _, err = m.InsertImage(ctx, alice, st.ID, upload, "", "")
	assert.ErrorIs(t, err, imaging.ErrTooLarge)
}

func TestManager_SaveErrorKeepsDirty(t *testing.T) {
	posts := newFakePosts()
	posts.err = model.ErrSlugConflict
	m := newTestManager(posts)
	ctx := context.Background()

	st, _ := m.Open(ctx, alice, "")
	st, _ = m.Apply(alice, st.ID, Command{Op: OpSetTitle, Value: "Dup"})

	_, _, err := m.Save(ctx, alice, st.ID, false)
	assert.ErrorIs(t, err, model.ErrSlugConflict)

	st, _ = m.State(alice, st.ID)
	assert.True(t, st.Dirty)
	assert.Empty(t, st.PostID)
}

func TestManager_IdlePruning(t *testing.T) {
	m := newTestManager(newFakePosts())
	now := time.Now()
	m.now = func() time.Time { return now }

	old, _ := m.Open(context.Background(), alice, "")
	now = now.Add(DefaultIdleTimeout / 2)
	fresh, _ := m.Open(context.Background(), alice, "")
	now = now.Add(DefaultIdleTimeout/2 + time.Minute)

	_, err := m.State(alice, old.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = m.State(alice, fresh.ID)
	assert.NoError(t, err)
	assert.Equal(t, 1, m.Len())
}

func TestManager_ClosedOnSignOut(t *testing.T) {
	db := testutil.MemoryDB(t)
	hash, err := auth.HashPassword("correct horse")
	require.NoError(t, err)
	owner := testutil.CreateUser(t, db, "owner@example.com", hash)

	sessions := auth.NewSessions(session.New(db, true), db, testutil.DiscardLogger())
	m := newTestManager(newFakePosts())
	detach := m.Attach(sessions)
	defer detach()

	ctx, err := sessions.Manager().Load(context.Background(), "")
	require.NoError(t, err)
	_, err = sessions.SignIn(ctx, "owner@example.com", "correct horse")
	require.NoError(t, err)

	mine, _ := m.Open(context.Background(), owner, "")
	other, _ := m.Open(context.Background(), bob, "")
	require.Equal(t, 2, m.Len())

	require.NoError(t, sessions.SignOut(ctx))

	_, err = m.State(owner, mine.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = m.State(bob, other.ID)
	assert.NoError(t, err)
}
