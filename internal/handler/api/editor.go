// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/campusvoice/internal/editor"
	"github.com/olegiv/campusvoice/internal/imaging"
	"github.com/olegiv/campusvoice/internal/model"
)

// OpenSessionRequest opens an editing session. An empty PostID starts a
// new post.
type OpenSessionRequest struct {
	PostID string `json:"post_id"`
}

// CommandsRequest carries editing commands applied in order.
type CommandsRequest struct {
	Commands []editor.Command `json:"commands"`
}

// SaveSessionRequest saves a session, optionally publishing it.
type SaveSessionRequest struct {
	Publish bool `json:"publish"`
}

// SaveSessionResponse is returned by a successful save.
type SaveSessionResponse struct {
	Post  model.Post   `json:"post"`
	State editor.State `json:"state"`
}

// SessionImageResponse is returned after an image is inserted.
type SessionImageResponse struct {
	Image imaging.ImageReference `json:"image"`
	State editor.State           `json:"state"`
}

// hasBody reports whether r may carry a JSON body worth decoding.
func hasBody(r *http.Request) bool {
	return r.Body != nil && r.Body != http.NoBody && r.ContentLength != 0
}

// OpenSession handles POST /admin/api/editor/sessions.
func (h *Handler) OpenSession(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req OpenSessionRequest
	if hasBody(r) && !decodeJSON(w, r, &req) {
		return
	}

	st, err := h.editor.Open(r.Context(), user, req.PostID)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	WriteCreated(w, st)
}

// GetSession handles GET /admin/api/editor/sessions/{sid}.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	st, err := h.editor.State(user, chi.URLParam(r, "sid"))
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	WriteSuccess(w, st, nil)
}

// CloseSession handles DELETE /admin/api/editor/sessions/{sid}. Unsaved
// changes are discarded.
func (h *Handler) CloseSession(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	if err := h.editor.Close(user, chi.URLParam(r, "sid")); err != nil {
		h.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ApplyCommands handles POST /admin/api/editor/sessions/{sid}/commands.
// Commands run in order and the first failure stops the batch; earlier
// commands stay applied.
func (h *Handler) ApplyCommands(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req CommandsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.Commands) == 0 {
		WriteBadRequest(w, "No commands provided")
		return
	}

	sid := chi.URLParam(r, "sid")
	var (
		st  editor.State
		err error
	)
	for _, c := range req.Commands {
		if st, err = h.editor.Apply(user, sid, c); err != nil {
			h.WriteError(w, r, err)
			return
		}
	}
	WriteSuccess(w, st, nil)
}

// SessionImage handles POST /admin/api/editor/sessions/{sid}/images. The
// multipart form carries "file", an optional "alt", and "target", which is
// "content" (the default) or "cover".
func (h *Handler) SessionImage(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	u, cleanup, ok := readUpload(w, r)
	if !ok {
		return
	}
	defer cleanup()

	target := r.FormValue("target")
	if target == "" {
		target = editor.TargetContent
	}
	st, ref, err := h.editor.InsertImage(r.Context(), user, chi.URLParam(r, "sid"), u, r.FormValue("alt"), target)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	WriteCreated(w, SessionImageResponse{Image: ref, State: st})
}

// SaveSession handles POST /admin/api/editor/sessions/{sid}/save.
func (h *Handler) SaveSession(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req SaveSessionRequest
	if hasBody(r) && !decodeJSON(w, r, &req) {
		return
	}

	p, st, err := h.editor.Save(r.Context(), user, chi.URLParam(r, "sid"), req.Publish)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	WriteSuccess(w, SaveSessionResponse{Post: p, State: st}, nil)
}
