// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const postColumns = `id, title, slug, excerpt, cover_image, content, published, published_at, author_id, version, created_at, updated_at`

func scanPost(row interface{ Scan(...interface{}) error }) (Post, error) {
	var i Post
	err := row.Scan(
		&i.ID,
		&i.Title,
		&i.Slug,
		&i.Excerpt,
		&i.CoverImage,
		&i.Content,
		&i.Published,
		&i.PublishedAt,
		&i.AuthorID,
		&i.Version,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

func scanPosts(rows *sql.Rows) ([]Post, error) {
	defer func() { _ = rows.Close() }()
	items := []Post{}
	for rows.Next() {
		i, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createPost = `-- name: CreatePost :one
INSERT INTO posts (id, title, slug, excerpt, cover_image, content, published, published_at, author_id, version, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)
RETURNING ` + postColumns

// CreatePostParams holds the values for CreatePost.
type CreatePostParams struct {
	ID          string
	Title       string
	Slug        string
	Excerpt     string
	CoverImage  string
	Content     string
	Published   bool
	PublishedAt sql.NullTime
	AuthorID    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (q *Queries) CreatePost(ctx context.Context, arg CreatePostParams) (Post, error) {
	row := q.db.QueryRowContext(ctx, createPost,
		arg.ID,
		arg.Title,
		arg.Slug,
		arg.Excerpt,
		arg.CoverImage,
		arg.Content,
		arg.Published,
		arg.PublishedAt,
		arg.AuthorID,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return scanPost(row)
}

const updatePostFields = `-- name: UpdatePostFields :one
UPDATE posts
SET title = ?, slug = ?, excerpt = ?, cover_image = ?, content = ?, author_id = COALESCE(NULLIF(?, ''), author_id), version = version + 1, updated_at = ?
WHERE id = ? AND (? = 0 OR version = ?)
RETURNING ` + postColumns

// UpdatePostFieldsParams holds the values for UpdatePostFields.
// ExpectedVersion 0 skips the version check. An empty AuthorID keeps the
// stored author.
type UpdatePostFieldsParams struct {
	Title           string
	Slug            string
	Excerpt         string
	CoverImage      string
	Content         string
	AuthorID        string
	UpdatedAt       time.Time
	ID              string
	ExpectedVersion int64
}

func (q *Queries) UpdatePostFields(ctx context.Context, arg UpdatePostFieldsParams) (Post, error) {
	row := q.db.QueryRowContext(ctx, updatePostFields,
		arg.Title,
		arg.Slug,
		arg.Excerpt,
		arg.CoverImage,
		arg.Content,
		arg.AuthorID,
		arg.UpdatedAt,
		arg.ID,
		arg.ExpectedVersion,
		arg.ExpectedVersion,
	)
	return scanPost(row)
}

const updatePostFieldsAndPublication = `-- name: UpdatePostFieldsAndPublication :one
UPDATE posts
SET title = ?, slug = ?, excerpt = ?, cover_image = ?, content = ?, author_id = COALESCE(NULLIF(?, ''), author_id), published = ?, published_at = ?, version = version + 1, updated_at = ?
WHERE id = ? AND (? = 0 OR version = ?)
RETURNING ` + postColumns

// UpdatePostFieldsAndPublicationParams holds the values for UpdatePostFieldsAndPublication.
type UpdatePostFieldsAndPublicationParams struct {
	Title           string
	Slug            string
	Excerpt         string
	CoverImage      string
	Content         string
	AuthorID        string
	Published       bool
	PublishedAt     sql.NullTime
	UpdatedAt       time.Time
	ID              string
	ExpectedVersion int64
}

func (q *Queries) UpdatePostFieldsAndPublication(ctx context.Context, arg UpdatePostFieldsAndPublicationParams) (Post, error) {
	row := q.db.QueryRowContext(ctx, updatePostFieldsAndPublication,
		arg.Title,
		arg.Slug,
		arg.Excerpt,
		arg.CoverImage,
		arg.Content,
		arg.AuthorID,
		arg.Published,
		arg.PublishedAt,
		arg.UpdatedAt,
		arg.ID,
		arg.ExpectedVersion,
		arg.ExpectedVersion,
	)
	return scanPost(row)
}

const setPostPublication = `-- name: SetPostPublication :one
UPDATE posts
SET published = ?, published_at = ?, version = version + 1, updated_at = ?
WHERE id = ?
RETURNING ` + postColumns

// SetPostPublicationParams holds the values for SetPostPublication.
type SetPostPublicationParams struct {
	Published   bool
	PublishedAt sql.NullTime
	UpdatedAt   time.Time
	ID          string
}

func (q *Queries) SetPostPublication(ctx context.Context, arg SetPostPublicationParams) (Post, error) {
	row := q.db.QueryRowContext(ctx, setPostPublication,
		arg.Published,
		arg.PublishedAt,
		arg.UpdatedAt,
		arg.ID,
	)
	return scanPost(row)
}

const deletePost = `-- name: DeletePost :execrows
DELETE FROM posts WHERE id = ?`

func (q *Queries) DeletePost(ctx context.Context, id string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deletePost, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const getPostByID = `-- name: GetPostByID :one
SELECT ` + postColumns + ` FROM posts WHERE id = ?`

func (q *Queries) GetPostByID(ctx context.Context, id string) (Post, error) {
	return scanPost(q.db.QueryRowContext(ctx, getPostByID, id))
}

const getPostBySlug = `-- name: GetPostBySlug :one
SELECT ` + postColumns + ` FROM posts WHERE slug = ?`

func (q *Queries) GetPostBySlug(ctx context.Context, slug string) (Post, error) {
	return scanPost(q.db.QueryRowContext(ctx, getPostBySlug, slug))
}

const getPublishedPostBySlug = `-- name: GetPublishedPostBySlug :one
SELECT ` + postColumns + ` FROM posts WHERE slug = ? AND published = 1`

func (q *Queries) GetPublishedPostBySlug(ctx context.Context, slug string) (Post, error) {
	return scanPost(q.db.QueryRowContext(ctx, getPublishedPostBySlug, slug))
}

const listPosts = `-- name: ListPosts :many
SELECT ` + postColumns + ` FROM posts ORDER BY created_at DESC, id DESC`

func (q *Queries) ListPosts(ctx context.Context) ([]Post, error) {
	rows, err := q.db.QueryContext(ctx, listPosts)
	if err != nil {
		return nil, err
	}
	return scanPosts(rows)
}

const listPublishedPosts = `-- name: ListPublishedPosts :many
SELECT ` + postColumns + ` FROM posts WHERE published = 1 ORDER BY published_at DESC, id DESC`

func (q *Queries) ListPublishedPosts(ctx context.Context) ([]Post, error) {
	rows, err := q.db.QueryContext(ctx, listPublishedPosts)
	if err != nil {
		return nil, err
	}
	return scanPosts(rows)
}

const countPosts = `-- name: CountPosts :one
SELECT COUNT(*) FROM posts`

func (q *Queries) CountPosts(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countPosts).Scan(&count)
	return count, err
}
