// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"slices"
)

// CORS headers sent by ContactCORS.
const (
	CORSAllowMethods = "POST, OPTIONS"
	CORSAllowHeaders = "authorization, x-client-info, apikey, content-type"
	CORSMaxAge       = "86400"
)

// AllowedOrigin returns origin when it is in allowed, otherwise the first
// allowed entry.
func AllowedOrigin(origin string, allowed []string) string {
	if origin != "" && slices.Contains(allowed, origin) {
		return origin
	}
	if len(allowed) == 0 {
		return ""
	}
	return allowed[0]
}

// ContactCORS sets the contact intake CORS headers and answers preflight
// requests with 200 "ok".
func ContactCORS(allowed []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			if o := AllowedOrigin(r.Header.Get("Origin"), allowed); o != "" {
				h.Set("Access-Control-Allow-Origin", o)
			}
			h.Set("Access-Control-Allow-Methods", CORSAllowMethods)
			h.Set("Access-Control-Allow-Headers", CORSAllowHeaders)
			h.Set("Access-Control-Max-Age", CORSMaxAge)
			h.Add("Vary", "Origin")

			if r.Method == http.MethodOptions {
				h.Set("Content-Type", "text/plain; charset=utf-8")
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte("ok"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
