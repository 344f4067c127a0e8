// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

// MaxLockout caps the exponential lockout.
const MaxLockout = 24 * time.Hour

// maxTrackedAccounts triggers a prune of stale lockout records.
const maxTrackedAccounts = 10000

// LoginProtection rate limits sign-in POSTs per IP and locks an account
// after repeated failures. Each lockout doubles the previous one.
type LoginProtection struct {
	ipLimiters *limiterCache[string]

	mu       sync.Mutex
	accounts map[string]*accountRecord

	maxFailures int
	lockout     time.Duration
	window      time.Duration
	now         func() time.Time
}

type accountRecord struct {
	failures    int
	windowStart time.Time
	lockedUntil time.Time
	lockouts    int
}

// LoginProtectionConfig holds configuration for login protection.
type LoginProtectionConfig struct {
	IPRateLimit       float64       // sign-in POSTs per second per IP
	IPBurst           int
	MaxFailedAttempts int           // failures within AttemptWindow that lock the account
	LockoutDuration   time.Duration // first lockout; later ones double
	AttemptWindow     time.Duration
}

// DefaultLoginProtectionConfig allows a burst of 5 sign-ins per IP and
// locks an account for 15 minutes after 5 failures in 15 minutes.
func DefaultLoginProtectionConfig() LoginProtectionConfig {
	return LoginProtectionConfig{
		IPRateLimit:       0.5,
		IPBurst:           5,
		MaxFailedAttempts: 5,
		LockoutDuration:   15 * time.Minute,
		AttemptWindow:     15 * time.Minute,
	}
}

// NewLoginProtection fills zero config fields from the defaults.
func NewLoginProtection(cfg LoginProtectionConfig) *LoginProtection {
	def := DefaultLoginProtectionConfig()
	if cfg.IPRateLimit <= 0 {
		cfg.IPRateLimit = def.IPRateLimit
	}
	if cfg.IPBurst <= 0 {
		cfg.IPBurst = def.IPBurst
	}
	if cfg.MaxFailedAttempts <= 0 {
		cfg.MaxFailedAttempts = def.MaxFailedAttempts
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = def.LockoutDuration
	}
	if cfg.AttemptWindow <= 0 {
		cfg.AttemptWindow = def.AttemptWindow
	}

	return &LoginProtection{
		ipLimiters:  newLimiterCache[string](cfg.IPRateLimit, cfg.IPBurst),
		accounts:    make(map[string]*accountRecord),
		maxFailures: cfg.MaxFailedAttempts,
		lockout:     cfg.LockoutDuration,
		window:      cfg.AttemptWindow,
		now:         time.Now,
	}
}

// LoginFailure is the outcome of recording a failed sign-in.
type LoginFailure struct {
	Locked    bool
	LockedFor time.Duration
	Remaining int // failures left before a lockout; 0 when Locked
}

// Locked reports whether email is locked out and for how much longer.
func (lp *LoginProtection) Locked(email string) (time.Duration, bool) {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	rec, ok := lp.accounts[accountKey(email)]
	if !ok {
		return 0, false
	}
	if now := lp.now(); now.Before(rec.lockedUntil) {
		return rec.lockedUntil.Sub(now), true
	}
	return 0, false
}

// Fail records a failed sign-in for email.
func (lp *LoginProtection) Fail(email string) LoginFailure {
	key := accountKey(email)
	now := lp.now()

	lp.mu.Lock()
	defer lp.mu.Unlock()

	if len(lp.accounts) >= maxTrackedAccounts {
		lp.pruneLocked(now)
	}

	rec, ok := lp.accounts[key]
	if !ok {
		rec = &accountRecord{windowStart: now}
		lp.accounts[key] = rec
	}
	if now.Sub(rec.windowStart) > lp.window {
		rec.failures = 0
		rec.windowStart = now
	}
	rec.failures++

	if rec.failures < lp.maxFailures {
		slog.Debug("failed sign-in recorded", "email", key, "failures", rec.failures)
		return LoginFailure{Remaining: lp.maxFailures - rec.failures}
	}

	d := lp.lockout
	for i := 0; i < rec.lockouts && d < MaxLockout; i++ {
		d *= 2
	}
	d = min(d, MaxLockout)
	rec.lockedUntil = now.Add(d)
	rec.lockouts++
	rec.failures = 0

	slog.Warn("account locked due to failed sign-in attempts",
		"category", "auth",
		"email", key,
		"lockouts", rec.lockouts,
		"duration", d,
	)
	return LoginFailure{Locked: true, LockedFor: d}
}

// Succeed forgets the failures recorded for email.
func (lp *LoginProtection) Succeed(email string) {
	lp.mu.Lock()
	delete(lp.accounts, accountKey(email))
	lp.mu.Unlock()
}

// pruneLocked drops records that are neither locked nor inside their
// failure window, and resets the IP limiters once they grow too large.
func (lp *LoginProtection) pruneLocked(now time.Time) {
	for k, rec := range lp.accounts {
		if !now.Before(rec.lockedUntil) && now.Sub(rec.windowStart) > lp.window {
			delete(lp.accounts, k)
		}
	}
	lp.ipLimiters.clearIfExceeds(maxLimiters)
}

// Middleware rate limits sign-in POSTs per client IP.
func (lp *LoginProtection) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			ip := ClientIP(r)
			if !lp.ipLimiters.get(ip).Allow() {
				slog.Warn("login rate limit exceeded", "category", "auth", "ip", ip)
				const msg = "Too many sign-in attempts. Please wait and try again."
				if WantsJSON(r) {
					WriteAPIError(w, http.StatusTooManyRequests, "rate_limited", msg, nil)
					return
				}
				http.Error(w, msg, http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func accountKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
