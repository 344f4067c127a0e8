// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/time/rate"
)

// maxLimiters bounds the per-IP limiter map between sweeps.
const maxLimiters = 10000

// limiterCache holds one rate.Limiter per key.
type limiterCache[K comparable] struct {
	limiters map[K]*rate.Limiter
	mu       sync.RWMutex
	rate     rate.Limit
	burst    int
}

func newLimiterCache[K comparable](rps float64, burst int) *limiterCache[K] {
	return &limiterCache[K]{
		limiters: make(map[K]*rate.Limiter),
		rate:     rate.Limit(rps),
		burst:    burst,
	}
}

// get returns the limiter for key, creating it if needed.
func (lc *limiterCache[K]) get(key K) *rate.Limiter {
	lc.mu.RLock()
	limiter, exists := lc.limiters[key]
	lc.mu.RUnlock()
	if exists {
		return limiter
	}

	lc.mu.Lock()
	defer lc.mu.Unlock()
	if limiter, exists = lc.limiters[key]; exists {
		return limiter
	}
	limiter = rate.NewLimiter(lc.rate, lc.burst)
	lc.limiters[key] = limiter
	return limiter
}

// clearIfExceeds drops every limiter once there are more than maxSize.
func (lc *limiterCache[K]) clearIfExceeds(maxSize int) bool {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	if len(lc.limiters) > maxSize {
		lc.limiters = make(map[K]*rate.Limiter)
		return true
	}
	return false
}

// ContactRateLimiter limits contact submissions per client IP. The contact
// service consults it after validation.
type ContactRateLimiter struct {
	cache *limiterCache[string]
}

// NewContactRateLimiter allows rps submissions per second with the given
// burst for each IP.
func NewContactRateLimiter(rps float64, burst int) *ContactRateLimiter {
	if rps <= 0 {
		rps = 0.2
	}
	if burst <= 0 {
		burst = 5
	}
	return &ContactRateLimiter{cache: newLimiterCache[string](rps, burst)}
}

// Allow reports whether ip may submit now.
func (l *ContactRateLimiter) Allow(ip string) bool {
	l.cache.clearIfExceeds(maxLimiters)
	return l.cache.get(ip).Allow()
}

// ClientIP returns the client address of r without its port. Proxy
// headers are trusted: the first X-Forwarded-For entry wins over X-Real-IP.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
