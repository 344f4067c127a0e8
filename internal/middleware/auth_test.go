// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/olegiv/campusvoice/internal/model"
)

type staticUsers struct {
	user *model.User
}

func (s staticUsers) CurrentUser(context.Context) (model.User, bool) {
	if s.user == nil {
		return model.User{}, false
	}
	return *s.user, true
}

func TestRequireUser_Anonymous(t *testing.T) {
	called := false
	h := RequireUser(staticUsers{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	tests := []struct {
		name     string
		path     string
		accept   string
		wantCode int
	}{
		{"browser page", "/admin", "text/html,application/xhtml+xml", http.StatusSeeOther},
		{"admin api", "/admin/api/posts", "", http.StatusUnauthorized},
		{"json accept", "/admin/messages", "application/json", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.accept != "" {
				req.Header.Set("Accept", tt.accept)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			if rr.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rr.Code, tt.wantCode)
			}
			if tt.wantCode == http.StatusSeeOther {
				if loc := rr.Header().Get("Location"); loc != LoginPath {
					t.Errorf("Location = %q, want %q", loc, LoginPath)
				}
				return
			}
			var body APIError
			if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
				t.Fatalf("decoding body: %v", err)
			}
			if body.Code != "unauthenticated" {
				t.Errorf("code = %q", body.Code)
			}
		})
	}
	if called {
		t.Error("next handler should not run for anonymous requests")
	}
}

func TestRequireUser_SignedIn(t *testing.T) {
	u := &model.User{ID: "u1", Email: "a@example.com"}
	var got model.User
	h := RequireUser(staticUsers{user: u})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = GetUser(r)
		if GetUserID(r) != "u1" {
			t.Errorf("GetUserID = %q", GetUserID(r))
		}
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if got.Email != "a@example.com" {
		t.Errorf("user in context = %+v", got)
	}
}

func TestGetUser_Empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok := GetUser(req); ok {
		t.Error("expected no user")
	}
	if GetUserID(req) != "" {
		t.Error("expected empty user ID")
	}
}

func TestWantsJSON(t *testing.T) {
	tests := []struct {
		path, contentType, accept string
		want                      bool
	}{
		{"/api/v1/posts", "", "", true},
		{"/admin/api/me", "", "", true},
		{"/admin/login", "application/json", "", true},
		{"/admin", "", "application/json", true},
		{"/admin", "", "text/html, application/json", false},
		{"/admin", "application/x-www-form-urlencoded", "", false},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, tt.path, nil)
		if tt.contentType != "" {
			req.Header.Set("Content-Type", tt.contentType)
		}
		if tt.accept != "" {
			req.Header.Set("Accept", tt.accept)
		}
		if got := WantsJSON(req); got != tt.want {
			t.Errorf("WantsJSON(%s, %q, %q) = %v, want %v", tt.path, tt.contentType, tt.accept, got, tt.want)
		}
	}
}
