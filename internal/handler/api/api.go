// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api provides the JSON handlers: the admin API used by the
// editing UI and the public read-only posts API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/olegiv/campusvoice/internal/editor"
	"github.com/olegiv/campusvoice/internal/imaging"
	"github.com/olegiv/campusvoice/internal/middleware"
	"github.com/olegiv/campusvoice/internal/model"
	"github.com/olegiv/campusvoice/internal/service"
)

// maxJSONBody bounds JSON request bodies. Content carries inline images,
// so it is larger than a single upload.
const maxJSONBody = 8 << 20

// ImageIngestor stores uploaded images.
type ImageIngestor interface {
	Ingest(ctx context.Context, u imaging.Upload) (imaging.ImageReference, error)
}

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	posts   *service.PostService
	contact *service.ContactService
	events  *service.EventService
	editor  *editor.Manager
	images  ImageIngestor
	logger  *slog.Logger
}

// Config lists the services behind the API.
type Config struct {
	Posts   *service.PostService
	Contact *service.ContactService
	Events  *service.EventService
	Editor  *editor.Manager
	Images  ImageIngestor
	Logger  *slog.Logger
}

// NewHandler creates a new API handler.
func NewHandler(cfg Config) *Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Handler{
		posts:   cfg.Posts,
		contact: cfg.Contact,
		events:  cfg.Events,
		editor:  cfg.Editor,
		images:  cfg.Images,
		logger:  cfg.Logger,
	}
}

// RegisterPublic mounts the public read-only routes on r.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/posts", h.ListPublishedPosts)
	r.Get("/posts/{slug}", h.GetPublishedPost)
}

// RegisterAdmin mounts the admin routes on r. Callers must already have
// authenticated the request.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/me", h.Me)

	r.Route("/posts", func(r chi.Router) {
		r.Get("/", h.ListPosts)
		r.Post("/", h.CreatePost)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetPost)
			r.Put("/", h.UpdatePost)
			r.Delete("/", h.DeletePost)
			r.Post("/publish", h.PublishPost)
			r.Post("/unpublish", h.UnpublishPost)
			r.Post("/delete-confirmation", h.RequestPostDelete)
		})
	})

	r.Post("/media/images", h.UploadImage)

	r.Route("/editor/sessions", func(r chi.Router) {
		r.Post("/", h.OpenSession)
		r.Route("/{sid}", func(r chi.Router) {
			r.Get("/", h.GetSession)
			r.Delete("/", h.CloseSession)
			r.Post("/commands", h.ApplyCommands)
			r.Post("/images", h.SessionImage)
			r.Post("/save", h.SaveSession)
		})
	})

	r.Route("/messages", func(r chi.Router) {
		r.Get("/", h.ListMessages)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetMessage)
			r.Patch("/", h.MarkMessage)
			r.Delete("/", h.DeleteMessage)
			r.Post("/delete-confirmation", h.RequestMessageDelete)
		})
	})

	r.Get("/events", h.ListEvents)
}

// Response is the standard API response wrapper.
type Response struct {
	Data any   `json:"data"`
	Meta *Meta `json:"meta,omitempty"`
}

// Meta contains pagination and other metadata.
type Meta struct {
	Total   int64 `json:"total,omitempty"`
	Page    int   `json:"page,omitempty"`
	PerPage int   `json:"per_page,omitempty"`
	Pages   int   `json:"pages,omitempty"`
	Unread  int64 `json:"unread,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a successful JSON response.
func WriteSuccess(w http.ResponseWriter, data any, meta *Meta) {
	WriteJSON(w, http.StatusOK, Response{Data: data, Meta: meta})
}

// WriteCreated writes a 201 Created JSON response.
func WriteCreated(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, Response{Data: data})
}

// WriteBadRequest writes a 400 Bad Request response.
func WriteBadRequest(w http.ResponseWriter, message string) {
	middleware.WriteAPIError(w, http.StatusBadRequest, "bad_request", message, nil)
}

// errorStatus maps a domain error to its HTTP status and code.
func errorStatus(err error) (int, string, bool) {
	switch {
	case errors.Is(err, model.ErrNotFound), errors.Is(err, editor.ErrSessionNotFound):
		return http.StatusNotFound, "not_found", true
	case errors.Is(err, model.ErrSlugConflict):
		return http.StatusConflict, "slug_conflict", true
	case errors.Is(err, model.ErrStaleWrite):
		return http.StatusConflict, "stale_write", true
	case errors.Is(err, model.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid_credentials", true
	case errors.Is(err, model.ErrUnauthenticated):
		return http.StatusUnauthorized, "unauthenticated", true
	case errors.Is(err, model.ErrConfirmationRequired):
		return http.StatusPreconditionRequired, "confirmation_required", true
	case errors.Is(err, editor.ErrInvalidCommand):
		return http.StatusBadRequest, "invalid_command", true
	case errors.Is(err, imaging.ErrUnsupportedType):
		return http.StatusUnsupportedMediaType, "unsupported_type", true
	case errors.Is(err, imaging.ErrTooLarge):
		return http.StatusRequestEntityTooLarge, "too_large", true
	case errors.Is(err, imaging.ErrEncodingFailed):
		return http.StatusInternalServerError, "encoding_failed", true
	}
	return 0, "", false
}

// WriteError writes err as a JSON error. Field validation failures become
// 422 with per-field details; unknown errors are logged and hidden behind
// a generic 500.
func (h *Handler) WriteError(w http.ResponseWriter, r *http.Request, err error) {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		details := make(map[string]string, len(verrs))
		for field, ferr := range verrs {
			if ferr != nil {
				details[field] = ferr.Error()
			}
		}
		middleware.WriteAPIError(w, http.StatusUnprocessableEntity, "validation_error", "Validation failed", details)
		return
	}
	var verr validation.Error
	if errors.As(err, &verr) {
		middleware.WriteAPIError(w, http.StatusBadRequest, verr.Code(), verr.Error(), nil)
		return
	}

	if status, code, ok := errorStatus(err); ok {
		if status >= http.StatusInternalServerError {
			h.logger.Error("request failed", "error", err, "method", r.Method, "path", r.URL.Path)
		}
		middleware.WriteAPIError(w, status, code, err.Error(), nil)
		return
	}

	h.logger.Error("request failed", "error", err, "method", r.Method, "path", r.URL.Path)
	middleware.WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Internal Server Error", nil)
}

// decodeJSON reads a JSON body into v. It writes the 400 response itself
// and returns false on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			middleware.WriteAPIError(w, http.StatusRequestEntityTooLarge, "too_large", "Request body too large", nil)
			return false
		}
		if errors.Is(err, io.EOF) {
			WriteBadRequest(w, "Request body is empty")
			return false
		}
		middleware.WriteAPIError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON body", nil)
		return false
	}
	return true
}

// currentUser returns the signed-in user. RequireUser guarantees it on
// admin routes; the 401 covers handlers mounted without it.
func currentUser(w http.ResponseWriter, r *http.Request) (model.User, bool) {
	user, ok := middleware.GetUser(r)
	if !ok {
		middleware.WriteAPIError(w, http.StatusUnauthorized, "unauthenticated", model.ErrUnauthenticated.Error(), nil)
	}
	return user, ok
}

// Me returns the signed-in user.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	WriteSuccess(w, user, nil)
}
