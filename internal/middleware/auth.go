// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides the HTTP middleware of the campusvoice server:
// admin authentication, CSRF, CORS for the contact intake, rate limits,
// security headers, and request timeouts.
package middleware

import (
	"context"
	"net/http"

	"github.com/olegiv/campusvoice/internal/model"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// ContextKeyUser holds the signed-in model.User.
const ContextKeyUser ContextKey = "user"

// LoginPath is where browsers are sent when they need to sign in.
const LoginPath = "/admin/login"

// UserSource resolves the signed-in user of a request context.
// *auth.Sessions implements it.
type UserSource interface {
	CurrentUser(ctx context.Context) (model.User, bool)
}

// RequireUser rejects requests without a signed-in user. Browsers are
// redirected to the login page with 303; JSON clients get 401. The user is
// stored in the request context for GetUser.
func RequireUser(users UserSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := users.CurrentUser(r.Context())
			if !ok {
				if WantsJSON(r) {
					WriteAPIError(w, http.StatusUnauthorized, "unauthenticated", model.ErrUnauthenticated.Error(), nil)
					return
				}
				http.Redirect(w, r, LoginPath, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user model.User) context.Context {
	return context.WithValue(ctx, ContextKeyUser, user)
}

// GetUser returns the user stored by RequireUser.
func GetUser(r *http.Request) (model.User, bool) {
	user, ok := r.Context().Value(ContextKeyUser).(model.User)
	return user, ok
}

// GetUserID returns the current user's ID, or "" when there is none.
func GetUserID(r *http.Request) string {
	if user, ok := GetUser(r); ok {
		return user.ID
	}
	return ""
}
