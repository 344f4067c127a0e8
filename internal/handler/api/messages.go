// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// MarkMessageRequest is the body of PATCH /admin/api/messages/{id}.
type MarkMessageRequest struct {
	Read *bool `json:"read"`
}

// ListMessages handles GET /admin/api/messages, newest first.
func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.contact.List(r.Context())
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	unread, err := h.contact.CountUnread(r.Context())
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	WriteSuccess(w, msgs, &Meta{Total: int64(len(msgs)), Unread: unread})
}

// GetMessage handles GET /admin/api/messages/{id}.
func (h *Handler) GetMessage(w http.ResponseWriter, r *http.Request) {
	msg, err := h.contact.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	WriteSuccess(w, msg, nil)
}

// MarkMessage handles PATCH /admin/api/messages/{id}, toggling the read
// flag. No other field can change.
func (h *Handler) MarkMessage(w http.ResponseWriter, r *http.Request) {
	var req MarkMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Read == nil {
		WriteBadRequest(w, "Field 'read' is required")
		return
	}
	msg, err := h.contact.SetRead(r.Context(), chi.URLParam(r, "id"), *req.Read)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	WriteSuccess(w, msg, nil)
}

// RequestMessageDelete handles POST /admin/api/messages/{id}/delete-confirmation.
func (h *Handler) RequestMessageDelete(w http.ResponseWriter, r *http.Request) {
	c, err := h.contact.RequestDelete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	WriteSuccess(w, c, nil)
}

// DeleteMessage handles DELETE /admin/api/messages/{id}?confirm=<token>.
func (h *Handler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	if err := h.contact.Delete(r.Context(), chi.URLParam(r, "id"), r.URL.Query().Get("confirm")); err != nil {
		h.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListEvents handles GET /admin/api/events?page=&per_page=.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	res, err := h.events.List(r.Context(), page, perPage)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	pages := 0
	if res.PerPage > 0 {
		pages = int((res.Total + int64(res.PerPage) - 1) / int64(res.PerPage))
	}
	WriteSuccess(w, res.Events, &Meta{Total: res.Total, Page: res.Page, PerPage: res.PerPage, Pages: pages})
}
