// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/campusvoice/internal/middleware"
	"github.com/olegiv/campusvoice/internal/model"
	"github.com/olegiv/campusvoice/internal/render"
	"github.com/olegiv/campusvoice/internal/service"
)

// PostPage is the data of the post template. A nil Post renders the
// "Article not found" state.
type PostPage struct {
	Post *model.Post
}

// FrontendHandler serves the public pages.
type FrontendHandler struct {
	renderer *render.Renderer
	posts    *service.PostService
	users    middleware.UserSource
	logger   *slog.Logger
}

// NewFrontendHandler creates a new FrontendHandler. users may be nil.
func NewFrontendHandler(renderer *render.Renderer, posts *service.PostService, users middleware.UserSource, logger *slog.Logger) *FrontendHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &FrontendHandler{renderer: renderer, posts: posts, users: users, logger: logger}
}

// Home lists published posts, most recently published first.
func (h *FrontendHandler) Home(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.ListPublished(r.Context())
	if err != nil {
		logAndInternalError(w, "listing published posts failed", "error", err)
		return
	}
	renderPage(w, r, h.renderer, http.StatusOK, "public/home", pageData(r, h.users, "", posts))
}

// Post shows one published post. Drafts and unknown slugs get the
// not-found state with a 404.
func (h *FrontendHandler) Post(w http.ResponseWriter, r *http.Request) {
	p, err := h.posts.GetPublished(r.Context(), chi.URLParam(r, "slug"))
	if errors.Is(err, model.ErrNotFound) {
		h.NotFound(w, r)
		return
	}
	if err != nil {
		logAndInternalError(w, "loading post failed", "error", err, "slug", chi.URLParam(r, "slug"))
		return
	}
	renderPage(w, r, h.renderer, http.StatusOK, "public/post", pageData(r, h.users, p.Title, PostPage{Post: &p}))
}

// NotFound renders the not-found state.
func (h *FrontendHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	if middleware.WantsJSON(r) {
		middleware.WriteAPIError(w, http.StatusNotFound, "not_found", "not found", nil)
		return
	}
	renderPage(w, r, h.renderer, http.StatusNotFound, "public/post", pageData(r, h.users, "Article not found", PostPage{}))
}
