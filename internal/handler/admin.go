// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/campusvoice/internal/model"
	"github.com/olegiv/campusvoice/internal/render"
	"github.com/olegiv/campusvoice/internal/service"
)

// EventsData is the data of the event log page.
type EventsData struct {
	Events     []model.Event
	Pagination Pagination
}

// DashboardData holds the dashboard's article list and inbox count.
type DashboardData struct {
	Posts  []model.Post
	Unread int64
}

// AdminHandler serves the server-rendered admin pages. Every route sits
// behind middleware.RequireUser.
type AdminHandler struct {
	renderer *render.Renderer
	posts    *service.PostService
	contact  *service.ContactService
	events   *service.EventService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(renderer *render.Renderer, posts *service.PostService, contactService *service.ContactService, events *service.EventService) *AdminHandler {
	return &AdminHandler{renderer: renderer, posts: posts, contact: contactService, events: events}
}

// Dashboard renders every article, drafts included, newest first.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	posts, err := h.posts.ListAll(ctx)
	if err != nil {
		logAndInternalError(w, "listing posts failed", "error", err)
		return
	}

	data := DashboardData{Posts: posts}
	if unread, err := h.contact.CountUnread(ctx); err != nil {
		slog.Error("failed to count unread messages", "error", err)
	} else {
		data.Unread = unread
	}

	renderPage(w, r, h.renderer, http.StatusOK, "admin/dashboard", pageData(r, nil, "Dashboard", data))
}

// PublishPost handles POST /admin/posts/{id}/publish.
func (h *AdminHandler) PublishPost(w http.ResponseWriter, r *http.Request) {
	p, err := h.posts.PublishByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.publicationFailed(w, r, err)
		return
	}
	flashSuccess(w, r, h.renderer, redirectAdmin, "Published \""+p.Title+"\"")
}

// UnpublishPost handles POST /admin/posts/{id}/unpublish.
func (h *AdminHandler) UnpublishPost(w http.ResponseWriter, r *http.Request) {
	p, err := h.posts.Unpublish(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.publicationFailed(w, r, err)
		return
	}
	flashSuccess(w, r, h.renderer, redirectAdmin, "\""+p.Title+"\" is now a draft")
}

func (h *AdminHandler) publicationFailed(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, model.ErrNotFound) {
		flashError(w, r, h.renderer, redirectAdmin, "Article not found")
		return
	}
	slog.Error("changing publication failed", "error", err, "post_id", chi.URLParam(r, "id"))
	flashError(w, r, h.renderer, redirectAdmin, "Could not update the article")
}

// Messages renders the contact inbox, newest first.
func (h *AdminHandler) Messages(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.contact.List(r.Context())
	if err != nil {
		logAndInternalError(w, "listing messages failed", "error", err)
		return
	}
	renderPage(w, r, h.renderer, http.StatusOK, "admin/messages", pageData(r, nil, "Messages", msgs))
}

// MarkMessage handles POST /admin/messages/{id}/read with read=true|false.
func (h *AdminHandler) MarkMessage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBody)
	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.renderer, redirectInbox, "Invalid form data")
		return
	}
	read := r.PostFormValue("read") != "false"

	if _, err := h.contact.SetRead(r.Context(), chi.URLParam(r, "id"), read); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			flashError(w, r, h.renderer, redirectInbox, "Message not found")
			return
		}
		slog.Error("marking message failed", "error", err, "message_id", chi.URLParam(r, "id"))
		flashError(w, r, h.renderer, redirectInbox, "Could not update the message")
		return
	}
	http.Redirect(w, r, redirectInbox, http.StatusSeeOther)
}

// Events renders the event log, newest first.
func (h *AdminHandler) Events(w http.ResponseWriter, r *http.Request) {
	page, err := h.events.List(r.Context(), parsePage(r), eventsPerPage)
	if err != nil {
		logAndInternalError(w, "listing events failed", "error", err)
		return
	}
	renderPage(w, r, h.renderer, http.StatusOK, "admin/events", pageData(r, nil, "Event log", EventsData{
		Events:     page.Events,
		Pagination: BuildPagination(page.Page, page.Total, page.PerPage, "/admin/events"),
	}))
}
