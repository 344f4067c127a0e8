// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "errors"

// Errors shared across the store, service, and handler layers.
var (
	ErrNotFound             = errors.New("not found")
	ErrSlugConflict         = errors.New("An article with this URL already exists")
	ErrStaleWrite           = errors.New("post was modified by someone else; reload and try again")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrUnauthenticated      = errors.New("authentication required")
	ErrConfirmationRequired = errors.New("deletion must be confirmed")
)
