// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package util provides small helpers shared by the service and storage
// layers: URL slugs, nullable column values, and safe file paths.
package util

import (
	"regexp"
	"strings"
)

// MaxSlugLength is the longest slug Slugify produces.
const MaxSlugLength = 100

// nonSlugRun matches a maximal run of characters outside [a-z0-9].
var nonSlugRun = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify converts a title to a URL slug. The result is lowercase, contains
// only [a-z0-9-], never starts or ends with a hyphen, and is at most
// MaxSlugLength bytes long. An empty or symbol-only title yields "".
func Slugify(title string) string {
	s := strings.ToLower(title)
	s = nonSlugRun.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	if len(s) > MaxSlugLength {
		s = strings.TrimRight(s[:MaxSlugLength], "-")
	}

	return s
}

// IsValidSlug checks if a string is a valid slug format.
func IsValidSlug(s string) bool {
	if s == "" || len(s) > MaxSlugLength {
		return false
	}

	for _, r := range s {
		if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-') {
			return false
		}
	}

	if s[0] == '-' || s[len(s)-1] == '-' {
		return false
	}

	return !strings.Contains(s, "--")
}
