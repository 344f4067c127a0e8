// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/olegiv/campusvoice/internal/auth"
	"github.com/olegiv/campusvoice/internal/middleware"
	"github.com/olegiv/campusvoice/internal/model"
	"github.com/olegiv/campusvoice/internal/render"
	"github.com/olegiv/campusvoice/internal/service"
)

// User-facing sign-in messages.
const (
	msgCredentialsRequired = "Email and password are required"
	msgInvalidCredentials  = "Invalid email or password"
)

// AuthHandler handles authentication routes.
type AuthHandler struct {
	renderer        *render.Renderer
	sessions        *auth.Sessions
	eventService    *service.EventService
	loginProtection *middleware.LoginProtection
}

// NewAuthHandler creates a new AuthHandler. lp may be nil to disable
// account lockout.
func NewAuthHandler(renderer *render.Renderer, sessions *auth.Sessions, events *service.EventService, lp *middleware.LoginProtection) *AuthHandler {
	return &AuthHandler{
		renderer:        renderer,
		sessions:        sessions,
		eventService:    events,
		loginProtection: lp,
	}
}

// LoginPage is the data of the sign-in template.
type LoginPage struct {
	Email string
	Error string
}

// LoginRequest is the JSON body accepted by POST /admin/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginForm renders the login page. Signed-in users go to the dashboard.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.sessions.CurrentUser(r.Context()); ok {
		http.Redirect(w, r, redirectAdmin, http.StatusSeeOther)
		return
	}
	renderPage(w, r, h.renderer, http.StatusOK, "auth/login", render.TemplateData{
		Title: "Sign in",
		Data:  LoginPage{},
	})
}

// Login handles the sign-in form or its JSON equivalent.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	wantsJSON := middleware.WantsJSON(r)

	req, err := readLogin(w, r)
	if err != nil {
		h.loginFailed(w, r, wantsJSON, http.StatusBadRequest, "bad_request", "Invalid form data")
		return
	}
	if req.Email == "" || req.Password == "" {
		h.loginFailed(w, r, wantsJSON, http.StatusBadRequest, "missing_fields", msgCredentialsRequired)
		return
	}

	clientIP := middleware.ClientIP(r)
	meta := map[string]any{"email": req.Email, "ip": clientIP}

	if h.loginProtection != nil {
		if remaining, locked := h.loginProtection.Locked(req.Email); locked {
			h.logAuth(r, model.EventLevelWarning, "Login attempt on locked account", meta)
			h.loginFailed(w, r, wantsJSON, http.StatusTooManyRequests, "account_locked",
				fmt.Sprintf("Account temporarily locked. Try again in %s.", formatDuration(remaining)))
			return
		}
	}

	sess, err := h.sessions.SignIn(r.Context(), req.Email, req.Password)
	if errors.Is(err, model.ErrInvalidCredentials) {
		h.logAuth(r, model.EventLevelWarning, "Login failed: invalid credentials", meta)
		msg := msgInvalidCredentials
		status, code := http.StatusUnauthorized, "invalid_credentials"
		if h.loginProtection != nil {
			if f := h.loginProtection.Fail(req.Email); f.Locked {
				meta["duration"] = f.LockedFor.String()
				h.logAuth(r, model.EventLevelWarning, "Account locked due to failed attempts", meta)
				msg = fmt.Sprintf("Too many failed attempts. Try again in %s.", formatDuration(f.LockedFor))
				status, code = http.StatusTooManyRequests, "account_locked"
			} else if f.Remaining <= 3 {
				msg = fmt.Sprintf("%s. %d attempts remaining.", msgInvalidCredentials, f.Remaining)
			}
		}
		h.loginFailed(w, r, wantsJSON, status, code, msg)
		return
	}
	if err != nil {
		logAndInternalError(w, "sign-in failed", "error", err, "category", model.EventCategoryAuth)
		return
	}

	if h.loginProtection != nil {
		h.loginProtection.Succeed(req.Email)
	}
	h.logAuth(r, model.EventLevelInfo, "User logged in", map[string]any{"user_id": sess.User.ID, "ip": clientIP})

	if wantsJSON {
		writeJSON(w, http.StatusOK, map[string]any{"user": sess.User})
		return
	}
	flashSuccess(w, r, h.renderer, redirectAdmin, "Welcome back, "+sess.User.Name)
}

// Logout signs the user out. Their editing sessions close with it.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user, hadUser := h.sessions.CurrentUser(r.Context())
	if err := h.sessions.SignOut(r.Context()); err != nil {
		logAndInternalError(w, "sign-out failed", "error", err, "category", model.EventCategoryAuth)
		return
	}
	if hadUser {
		h.logAuth(r, model.EventLevelInfo, "User logged out", map[string]any{"user_id": user.ID})
	}

	if middleware.WantsJSON(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	flashSuccess(w, r, h.renderer, redirectLogin, "You have been signed out")
}

func (h *AuthHandler) loginFailed(w http.ResponseWriter, r *http.Request, wantsJSON bool, status int, code, msg string) {
	if wantsJSON {
		middleware.WriteAPIError(w, status, code, msg, nil)
		return
	}
	flashError(w, r, h.renderer, redirectLogin, msg)
}

func (h *AuthHandler) logAuth(r *http.Request, level, message string, meta map[string]any) {
	if h.eventService == nil {
		return
	}
	if err := h.eventService.LogAuthEvent(r.Context(), level, message, meta); err != nil {
		slog.Debug("auth event not recorded", "error", err)
	}
}

// readLogin reads credentials from a JSON body or a form.
func readLogin(w http.ResponseWriter, r *http.Request) (LoginRequest, error) {
	var req LoginRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBody)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, err
		}
	} else {
		if err := r.ParseForm(); err != nil {
			return req, err
		}
		req.Email = r.PostFormValue("email")
		req.Password = r.PostFormValue("password")
	}
	req.Email = strings.TrimSpace(req.Email)
	return req, nil
}
