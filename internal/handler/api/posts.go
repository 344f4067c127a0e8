// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/campusvoice/internal/model"
	"github.com/olegiv/campusvoice/internal/sanitize"
)

// PostRequest is the body of create and update calls. Publish writes the
// fields and publishes them in the same statement.
type PostRequest struct {
	model.PostFields
	Publish bool `json:"publish,omitempty"`
}

// PublicPost is a published post as served to readers.
type PublicPost struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Excerpt     string     `json:"excerpt,omitempty"`
	CoverImage  string     `json:"cover_image,omitempty"`
	Content     string     `json:"content,omitempty"`
	PublishedAt *time.Time `json:"published_at"`
}

// publicPost sanitizes p for readers. List entries omit the content.
func publicPost(p model.Post, withContent bool) PublicPost {
	out := PublicPost{
		ID:          p.ID,
		Title:       p.Title,
		Slug:        p.Slug,
		Excerpt:     p.Excerpt,
		CoverImage:  p.CoverImage,
		PublishedAt: p.PublishedAt,
	}
	if withContent {
		out.Content = sanitize.HTML(p.Content)
	}
	return out
}

// ListPublishedPosts handles GET /api/v1/posts.
func (h *Handler) ListPublishedPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.ListPublished(r.Context())
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	out := make([]PublicPost, len(posts))
	for i, p := range posts {
		out[i] = publicPost(p, false)
	}
	WriteSuccess(w, out, &Meta{Total: int64(len(out))})
}

// GetPublishedPost handles GET /api/v1/posts/{slug}.
func (h *Handler) GetPublishedPost(w http.ResponseWriter, r *http.Request) {
	p, err := h.posts.GetPublished(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	WriteSuccess(w, publicPost(p, true), nil)
}

// ListPosts handles GET /admin/api/posts. Drafts are included.
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.ListAll(r.Context())
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	WriteSuccess(w, posts, &Meta{Total: int64(len(posts))})
}

// GetPost handles GET /admin/api/posts/{id}.
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	p, err := h.posts.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	WriteSuccess(w, p, nil)
}

// CreatePost handles POST /admin/api/posts.
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req PostRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ID = ""
	req.ExpectedVersion = 0

	p, err := h.writePost(r, user, req)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	WriteCreated(w, p)
}

// UpdatePost handles PUT /admin/api/posts/{id}. Sending expected_version
// turns on the stale-write check.
func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req PostRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ID = chi.URLParam(r, "id")

	p, err := h.writePost(r, user, req)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	WriteSuccess(w, p, nil)
}

func (h *Handler) writePost(r *http.Request, user model.User, req PostRequest) (model.Post, error) {
	if req.Publish {
		return h.posts.Publish(r.Context(), user, req.PostFields)
	}
	return h.posts.Save(r.Context(), user, req.PostFields)
}

// PublishPost handles POST /admin/api/posts/{id}/publish.
func (h *Handler) PublishPost(w http.ResponseWriter, r *http.Request) {
	p, err := h.posts.PublishByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	WriteSuccess(w, p, nil)
}

// UnpublishPost handles POST /admin/api/posts/{id}/unpublish.
func (h *Handler) UnpublishPost(w http.ResponseWriter, r *http.Request) {
	p, err := h.posts.Unpublish(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	WriteSuccess(w, p, nil)
}

// RequestPostDelete handles POST /admin/api/posts/{id}/delete-confirmation.
func (h *Handler) RequestPostDelete(w http.ResponseWriter, r *http.Request) {
	c, err := h.posts.RequestDelete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	WriteSuccess(w, c, nil)
}

// DeletePost handles DELETE /admin/api/posts/{id}?confirm=<token>.
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	if err := h.posts.Delete(r.Context(), chi.URLParam(r, "id"), r.URL.Query().Get("confirm")); err != nil {
		h.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
