// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/campusvoice/internal/middleware"
	"github.com/olegiv/campusvoice/internal/model"
)

func TestAuth_LoginForm(t *testing.T) {
	env := newTestEnv(t)

	resp := env.get(t, "/admin/login")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.body, `<form method="post" action="/admin/login">`)

	env.signIn(t)
	resp = env.get(t, "/admin/login")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, redirectAdmin, resp.Header.Get("Location"))
}

func TestAuth_LoginAndLogout(t *testing.T) {
	env := newTestEnv(t)

	resp := env.get(t, "/admin")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, redirectLogin, resp.Header.Get("Location"))

	env.signIn(t)

	resp = env.get(t, "/admin")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.body, "Welcome back, Test Admin", "flash after sign-in")

	resp = env.request(t, http.MethodPost, "/admin/logout", "", "")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, redirectLogin, resp.Header.Get("Location"))

	resp = env.get(t, "/admin")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func TestAuth_LoginFormFailure(t *testing.T) {
	env := newTestEnv(t)

	resp := env.postForm(t, "/admin/login", url.Values{"email": {testEmail}, "password": {"wrong password"}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, redirectLogin, resp.Header.Get("Location"))

	resp = env.get(t, "/admin/login")
	assert.Contains(t, resp.body, msgInvalidCredentials)

	resp = env.postForm(t, "/admin/login", url.Values{"email": {testEmail}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Contains(t, env.get(t, "/admin/login").body, msgCredentialsRequired)
}

func TestAuth_JSONLogin(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"missing fields", `{"email":"admin@example.com"}`, http.StatusBadRequest, "missing_fields"},
		{"malformed", `{"email":`, http.StatusBadRequest, "bad_request"},
		{"wrong password", `{"email":"admin@example.com","password":"nope nope"}`, http.StatusUnauthorized, "invalid_credentials"},
		{"unknown user", `{"email":"nobody@example.com","password":"nope nope"}`, http.StatusUnauthorized, "invalid_credentials"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.postJSON(t, "/admin/login", tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)

			var body middleware.APIError
			require.NoError(t, json.Unmarshal([]byte(resp.body), &body))
			assert.Equal(t, tt.code, body.Code)
		})
	}

	resp := env.postJSON(t, "/admin/login", `{"email":"ADMIN@example.com","password":"`+testPassword+`"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, resp.body)

	var body struct {
		User model.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal([]byte(resp.body), &body))
	assert.Equal(t, env.user.ID, body.User.ID)

	resp = env.request(t, http.MethodPost, "/admin/logout", "", "", "Accept", "application/json")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = env.get(t, "/admin", "Accept", "application/json")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuth_Lockout(t *testing.T) {
	lp := middleware.NewLoginProtection(middleware.LoginProtectionConfig{
		MaxFailedAttempts: 3,
		LockoutDuration:   time.Minute,
	})
	env := newTestEnv(t, withLoginProtection(lp))

	wrong := `{"email":"admin@example.com","password":"wrong password"}`

	resp := env.postJSON(t, "/admin/login", wrong)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, resp.body, "2 attempts remaining")

	resp = env.postJSON(t, "/admin/login", wrong)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, resp.body, "1 attempts remaining")

	resp = env.postJSON(t, "/admin/login", wrong)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Contains(t, resp.body, "account_locked")
	assert.Contains(t, resp.body, "1 minute")

	resp = env.postJSON(t, "/admin/login", `{"email":"admin@example.com","password":"`+testPassword+`"}`)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode, "locked accounts reject correct passwords")
}

func TestAuth_EventsRecorded(t *testing.T) {
	env := newTestEnv(t)

	env.postJSON(t, "/admin/login", `{"email":"admin@example.com","password":"wrong password"}`)
	env.signIn(t)

	page, err := env.events.List(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Events, 2)

	assert.Equal(t, "User logged in", page.Events[0].Message)
	assert.Equal(t, model.EventLevelInfo, page.Events[0].Level)
	assert.Equal(t, "Login failed: invalid credentials", page.Events[1].Message)
	assert.Equal(t, model.EventLevelWarning, page.Events[1].Level)
	assert.Equal(t, model.EventCategoryAuth, page.Events[1].Category)
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "1 second"},
		{30 * time.Second, "30 seconds"},
		{time.Minute, "1 minute"},
		{15 * time.Minute, "15 minutes"},
		{time.Hour, "1 hour"},
		{3 * time.Hour, "3 hours"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatDuration(tt.d), tt.d.String())
	}
}
