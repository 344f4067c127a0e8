// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrontend_HomeListsPublishedOnly(t *testing.T) {
	env := newTestEnv(t)
	env.publish(t, "Hello World", "<p>Hello <strong>world</strong></p>")
	env.draft(t, "Secret Draft", "<p>not yet</p>")

	resp := env.get(t, "/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.body, `<a href="/posts/hello-world">Hello World</a>`)
	assert.Contains(t, resp.body, "Hello world", "excerpt falls back to plain text")
	assert.NotContains(t, resp.body, "Secret Draft")
}

func TestFrontend_HomeEmpty(t *testing.T) {
	env := newTestEnv(t)

	resp := env.get(t, "/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.body, "No articles yet.")
}

func TestFrontend_Post(t *testing.T) {
	env := newTestEnv(t)
	env.publish(t, "Hello World", "<p>Hello <strong>world</strong></p>")

	resp := env.get(t, "/posts/hello-world")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.body, "<h1>Hello World</h1>")
	assert.Contains(t, resp.body, "<strong>world</strong>")
	assert.Contains(t, resp.body, "<title>Hello World | CampusVoice</title>")
}

func TestFrontend_PostNotFound(t *testing.T) {
	env := newTestEnv(t)
	env.draft(t, "Secret Draft", "<p>not yet</p>")

	for _, path := range []string{"/posts/secret-draft", "/posts/missing"} {
		t.Run(path, func(t *testing.T) {
			resp := env.get(t, path)
			assert.Equal(t, http.StatusNotFound, resp.StatusCode)
			assert.Contains(t, resp.body, "Article not found")
			assert.NotContains(t, resp.body, "not yet")
		})
	}
}

func TestFrontend_UnknownRoute(t *testing.T) {
	env := newTestEnv(t)

	resp := env.get(t, "/no/such/page")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, resp.body, "Article not found")

	resp = env.get(t, "/no/such/page", "Accept", "application/json")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.body, `"code":"not_found"`)
}

func TestFrontend_NavShowsSignedInUser(t *testing.T) {
	env := newTestEnv(t)

	assert.NotContains(t, env.get(t, "/").body, `href="/admin"`)

	env.signIn(t)
	assert.Contains(t, env.get(t, "/").body, `href="/admin"`)
}
