// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package cache provides the byte-oriented cache used for public post reads
// and delete confirmations, backed by memory or Redis.
package cache

import (
	"context"
	"errors"
	"time"
)

// Cache is a TTL key/value store safe for concurrent use.
type Cache interface {
	// Get returns ErrCacheMiss for absent or expired keys.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value for ttl, or for the default TTL when ttl is zero.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Take returns and removes a value in one step, so at most one caller
	// observes it.
	Take(ctx context.Context, key string) ([]byte, error)

	Delete(ctx context.Context, key string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
	Close() error
}

// Pinger is implemented by caches backed by a remote server.
type Pinger interface {
	Ping(ctx context.Context) error
}

var (
	// ErrCacheMiss indicates the key was not found in cache or has expired.
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheClosed is returned by every operation after Close.
	ErrCacheClosed = errors.New("cache closed")
)
