// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSEO_Sitemap(t *testing.T) {
	env := newTestEnv(t)
	env.publish(t, "Budget Vote", "<p>yes</p>")
	env.draft(t, "Secret Draft", "<p>not yet</p>")

	resp := env.get(t, "/sitemap.xml")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/xml; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.body, "<loc>https://campus.example/posts/budget-vote</loc>")
	assert.Contains(t, resp.body, "<loc>https://campus.example/</loc>")
	assert.NotContains(t, resp.body, "secret-draft")
}

func TestSEO_Robots(t *testing.T) {
	env := newTestEnv(t)

	resp := env.get(t, "/robots.txt")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.body, "Disallow: /admin\n")
	assert.Contains(t, resp.body, "Sitemap: https://campus.example/sitemap.xml")
}

func TestSEO_BaseURLFromRequest(t *testing.T) {
	h := NewSEOHandler(nil, "", true)

	req := httptest.NewRequest(http.MethodGet, "/robots.txt", nil)
	req.Host = "news.campus.example"
	req.Header.Set("X-Forwarded-Proto", "https")
	assert.Equal(t, "https://news.campus.example", h.baseURL(req))

	rec := httptest.NewRecorder()
	h.Robots(rec, req)
	assert.Equal(t, "User-agent: *\nDisallow: /\n", rec.Body.String())
}
