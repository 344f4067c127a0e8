// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/campusvoice/internal/cache"
	"github.com/olegiv/campusvoice/internal/model"
)

// ConfirmationTTL is how long a delete confirmation token stays valid.
const ConfirmationTTL = 5 * time.Minute

// Confirmation is a single-use token authorizing one destructive action.
type Confirmation struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Confirmer issues and redeems confirmation tokens held in a cache.
type Confirmer struct {
	cache cache.Cache
	ttl   time.Duration
	now   func() time.Time
}

// NewConfirmationCache returns a memory cache for confirmation tokens. It
// has no size limit, so a live token is only ever removed by expiry or
// redemption.
func NewConfirmationCache() *cache.MemoryCache {
	return cache.NewMemoryCache(cache.MemoryCacheOptions{
		DefaultTTL:      ConfirmationTTL,
		CleanupInterval: ConfirmationTTL,
	})
}

// NewConfirmer returns a Confirmer storing tokens in c.
func NewConfirmer(c cache.Cache) *Confirmer {
	return &Confirmer{cache: c, ttl: ConfirmationTTL, now: time.Now}
}

func confirmationKey(kind, token string) string {
	return "confirm:" + kind + ":" + token
}

// Issue creates a token confirming an action of kind on subject.
func (c *Confirmer) Issue(ctx context.Context, kind, subject string) (Confirmation, error) {
	token := uuid.NewString()
	if err := c.cache.Set(ctx, confirmationKey(kind, token), []byte(subject), c.ttl); err != nil {
		return Confirmation{}, fmt.Errorf("storing confirmation: %w", err)
	}
	return Confirmation{Token: token, ExpiresAt: c.now().Add(c.ttl).UTC()}, nil
}

// Redeem consumes token. It returns ErrConfirmationRequired unless the
// token was issued for the same kind and subject and has not been used.
func (c *Confirmer) Redeem(ctx context.Context, kind, subject, token string) error {
	if token == "" {
		return model.ErrConfirmationRequired
	}
	val, err := c.cache.Take(ctx, confirmationKey(kind, token))
	if errors.Is(err, cache.ErrCacheMiss) {
		return model.ErrConfirmationRequired
	}
	if err != nil {
		return fmt.Errorf("reading confirmation: %w", err)
	}
	if string(val) != subject {
		return model.ErrConfirmationRequired
	}
	return nil
}
