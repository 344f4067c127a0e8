// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/campusvoice/internal/cache"
	"github.com/olegiv/campusvoice/internal/middleware"
	"github.com/olegiv/campusvoice/internal/testutil"
)

func newTestHealthHandler(t *testing.T) *HealthHandler {
	t.Helper()
	return NewHealthHandler(HealthConfig{
		DB:    testutil.MemoryDB(t),
		Cache: cache.NewMemoryCache(cache.MemoryCacheOptions{}),
	})
}

func decodeMap(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &m), rr.Body.String())
	return m
}

func TestHealthHandler_Health_Public(t *testing.T) {
	h := newTestHealthHandler(t)

	rr := httptest.NewRecorder()
	h.Health(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.Equal(t, map[string]any{"status": "healthy"}, decodeMap(t, rr))
}

func TestHealthHandler_Health_SignedIn(t *testing.T) {
	h := NewHealthHandler(HealthConfig{
		DB:         testutil.MemoryDB(t),
		Cache:      cache.NewMemoryCache(cache.MemoryCacheOptions{}),
		UploadsDir: t.TempDir(),
	})

	req := httptest.NewRequest(http.MethodGet, "/health?verbose=true", nil)
	req = req.WithContext(middleware.WithUser(req.Context(), testUser()))
	rr := httptest.NewRecorder()
	h.Health(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var status HealthStatus
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &status))
	assert.Equal(t, statusHealthy, status.Checks["database"].Status)
	assert.Equal(t, statusHealthy, status.Checks["cache"].Status)
	assert.Contains(t, status.Checks, "disk")
	assert.NotEmpty(t, status.Version.Version)
	require.NotNil(t, status.System)
	assert.NotEmpty(t, status.System.GoVersion)
}

func TestHealthHandler_Health_ThroughSession(t *testing.T) {
	env := newTestEnv(t)

	assert.NotContains(t, env.get(t, "/health").body, "checks")

	env.signIn(t)
	resp := env.get(t, "/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.body, `"checks"`)
}

func TestHealthHandler_DatabaseDown(t *testing.T) {
	db := testutil.MemoryDB(t)
	h := NewHealthHandler(HealthConfig{DB: db})
	require.NoError(t, db.Close())

	rr := httptest.NewRecorder()
	h.Health(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, statusUnhealthy, decodeMap(t, rr)["status"])

	rr = httptest.NewRecorder()
	h.Readiness(rr, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	body := decodeMap(t, rr)
	assert.Equal(t, "not_ready", body["status"])
	assert.NotContains(t, body, "message", "anonymous callers get no details")
}

func TestHealthHandler_LivenessAndReadiness(t *testing.T) {
	h := newTestHealthHandler(t)

	rr := httptest.NewRecorder()
	h.Liveness(rr, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "alive", decodeMap(t, rr)["status"])

	rr = httptest.NewRecorder()
	h.Readiness(rr, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ready", decodeMap(t, rr)["status"])
}

func TestHealthHandler_MissingUploadsDir(t *testing.T) {
	h := NewHealthHandler(HealthConfig{DB: testutil.MemoryDB(t), UploadsDir: t.TempDir() + "/missing"})
	check := h.checkDiskSpace()
	assert.Equal(t, statusHealthy, check.Status)
	assert.Equal(t, "Uploads directory does not exist yet", check.Message)
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   uint64
		want string
	}{
		{512, "512 B"},
		{2048, "2.00 KB"},
		{5 * 1024 * 1024, "5.00 MB"},
		{3 * 1024 * 1024 * 1024, "3.00 GB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatBytes(tt.in))
	}
}
