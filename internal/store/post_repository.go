// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/campusvoice/internal/model"
	"github.com/olegiv/campusvoice/internal/util"
)

// PostRepository persists posts in SQLite and maps driver errors to the
// model sentinels.
type PostRepository struct {
	queries *Queries
	now     func() time.Time
}

// NewPostRepository creates a PostRepository on top of db.
func NewPostRepository(db DBTX) *PostRepository {
	return &PostRepository{
		queries: New(db),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Create inserts a new post and returns the stored row.
func (r *PostRepository) Create(ctx context.Context, w model.PostWrite) (model.Post, error) {
	now := r.now()
	pub := publicationOrDraft(w.Publication)

	row, err := r.queries.CreatePost(ctx, CreatePostParams{
		ID:          uuid.NewString(),
		Title:       w.Title,
		Slug:        w.Slug,
		Excerpt:     w.Excerpt,
		CoverImage:  w.CoverImage,
		Content:     w.Content,
		Published:   pub.Published,
		PublishedAt: util.NullTimeFromPtr(pub.At),
		AuthorID:    w.AuthorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return model.Post{}, mapPostError(err, "creating post")
	}
	return postFromRow(row), nil
}

// Update overwrites the editable fields of the post with id in one statement.
// A non-nil Publication is written in the same statement.
func (r *PostRepository) Update(ctx context.Context, id string, w model.PostWrite) (model.Post, error) {
	var (
		row Post
		err error
	)
	if w.Publication != nil {
		row, err = r.queries.UpdatePostFieldsAndPublication(ctx, UpdatePostFieldsAndPublicationParams{
			Title:           w.Title,
			Slug:            w.Slug,
			Excerpt:         w.Excerpt,
			CoverImage:      w.CoverImage,
			Content:         w.Content,
			AuthorID:        w.AuthorID,
			Published:       w.Publication.Published,
			PublishedAt:     util.NullTimeFromPtr(w.Publication.At),
			UpdatedAt:       r.now(),
			ID:              id,
			ExpectedVersion: w.ExpectedVersion,
		})
	} else {
		row, err = r.queries.UpdatePostFields(ctx, UpdatePostFieldsParams{
			Title:           w.Title,
			Slug:            w.Slug,
			Excerpt:         w.Excerpt,
			CoverImage:      w.CoverImage,
			Content:         w.Content,
			AuthorID:        w.AuthorID,
			UpdatedAt:       r.now(),
			ID:              id,
			ExpectedVersion: w.ExpectedVersion,
		})
	}
	if errors.Is(err, sql.ErrNoRows) && w.ExpectedVersion != 0 {
		if _, getErr := r.queries.GetPostByID(ctx, id); getErr == nil {
			return model.Post{}, model.ErrStaleWrite
		}
	}
	if err != nil {
		return model.Post{}, mapPostError(err, "updating post")
	}
	return postFromRow(row), nil
}

// SetPublication changes only the visibility of the post with id.
func (r *PostRepository) SetPublication(ctx context.Context, id string, p model.Publication) (model.Post, error) {
	if !p.Published {
		p.At = nil
	}
	row, err := r.queries.SetPostPublication(ctx, SetPostPublicationParams{
		Published:   p.Published,
		PublishedAt: util.NullTimeFromPtr(p.At),
		UpdatedAt:   r.now(),
		ID:          id,
	})
	if err != nil {
		return model.Post{}, mapPostError(err, "setting publication")
	}
	return postFromRow(row), nil
}

// Delete removes the post with id.
func (r *PostRepository) Delete(ctx context.Context, id string) error {
	n, err := r.queries.DeletePost(ctx, id)
	if err != nil {
		return fmt.Errorf("deleting post: %w", err)
	}
	if n == 0 {
		return model.ErrNotFound
	}
	return nil
}

// Get returns the post with id regardless of its visibility.
func (r *PostRepository) Get(ctx context.Context, id string) (model.Post, error) {
	row, err := r.queries.GetPostByID(ctx, id)
	if err != nil {
		return model.Post{}, mapPostError(err, "getting post")
	}
	return postFromRow(row), nil
}

// GetBySlug returns the post with slug. With publishedOnly set, drafts are
// reported as not found.
func (r *PostRepository) GetBySlug(ctx context.Context, slug string, publishedOnly bool) (model.Post, error) {
	var (
		row Post
		err error
	)
	if publishedOnly {
		row, err = r.queries.GetPublishedPostBySlug(ctx, slug)
	} else {
		row, err = r.queries.GetPostBySlug(ctx, slug)
	}
	if err != nil {
		return model.Post{}, mapPostError(err, "getting post by slug")
	}
	return postFromRow(row), nil
}

// List returns posts newest first. Admin listings order by creation time,
// public listings by publication time.
func (r *PostRepository) List(ctx context.Context, publishedOnly bool) ([]model.Post, error) {
	var (
		rows []Post
		err  error
	)
	if publishedOnly {
		rows, err = r.queries.ListPublishedPosts(ctx)
	} else {
		rows, err = r.queries.ListPosts(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}

	posts := make([]model.Post, 0, len(rows))
	for _, row := range rows {
		posts = append(posts, postFromRow(row))
	}
	return posts, nil
}

func publicationOrDraft(p *model.Publication) model.Publication {
	if p == nil || !p.Published || p.At == nil {
		return model.Publication{}
	}
	return *p
}

func mapPostError(err error, op string) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return model.ErrNotFound
	case isUniqueViolation(err, "posts.slug"):
		return model.ErrSlugConflict
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// isUniqueViolation reports whether err is a SQLite UNIQUE failure on column.
func isUniqueViolation(err error, column string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") && strings.Contains(msg, column)
}

func postFromRow(row Post) model.Post {
	return model.Post{
		ID:          row.ID,
		Title:       row.Title,
		Slug:        row.Slug,
		Excerpt:     row.Excerpt,
		CoverImage:  row.CoverImage,
		Content:     row.Content,
		Published:   row.Published,
		PublishedAt: util.TimePtrFromNull(row.PublishedAt),
		AuthorID:    row.AuthorID,
		Version:     row.Version,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}
