// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler provides the HTTP handlers for the server-rendered pages,
// the authentication routes, the contact intake endpoint, and the health
// checks. The JSON admin and public APIs live in the api subpackage.
package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/olegiv/campusvoice/internal/middleware"
	"github.com/olegiv/campusvoice/internal/render"
)

// Route paths used in redirects.
const (
	RouteRoot     = "/"
	RouteContact  = "/contact"
	RouteIntake   = "/contact-intake"
	redirectAdmin = "/admin"
	redirectLogin = middleware.LoginPath
	redirectInbox = "/admin/messages"
)

// Request body limits for forms and the intake endpoint.
const (
	maxFormBody   = 64 << 10
	maxIntakeBody = 64 << 10
)

const flashTypeError = "error"

// flashAndRedirect sets a flash message and redirects to the given URL.
// Uses http.StatusSeeOther (303) for POST redirects.
func flashAndRedirect(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message, messageType string) {
	renderer.SetFlash(r, message, messageType)
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// flashError sets an error flash message and redirects to the given URL.
func flashError(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message string) {
	flashAndRedirect(w, r, renderer, url, message, flashTypeError)
}

// flashSuccess sets a success flash message and redirects to the given URL.
func flashSuccess(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message string) {
	flashAndRedirect(w, r, renderer, url, message, "success")
}

// logAndInternalError logs an error and writes a 500 Internal Server Error response.
func logAndInternalError(w http.ResponseWriter, logMsg string, args ...any) {
	slog.Error(logMsg, args...)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

// renderPage renders name and turns a template failure into a 500.
func renderPage(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, status int, name string, data render.TemplateData) {
	if err := renderer.RenderStatus(w, r, status, name, data); err != nil {
		logAndInternalError(w, "render failed", "template", name, "error", err)
	}
}

// pageData builds template data carrying the signed-in user, if any.
func pageData(r *http.Request, users middleware.UserSource, title string, data any) render.TemplateData {
	td := render.TemplateData{Title: title, Data: data}
	if user, ok := middleware.GetUser(r); ok {
		td.User = &user
	} else if users != nil {
		if user, ok := users.CurrentUser(r.Context()); ok {
			td.User = &user
		}
	}
	return td
}

// formatDuration renders a lockout duration for people.
func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Hour:
		h := int(d.Round(time.Hour).Hours())
		if h == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", h)
	case d >= time.Minute:
		m := int(d.Round(time.Minute).Minutes())
		if m == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", m)
	default:
		s := max(int(d.Round(time.Second).Seconds()), 1)
		if s == 1 {
			return "1 second"
		}
		return fmt.Sprintf("%d seconds", s)
	}
}
