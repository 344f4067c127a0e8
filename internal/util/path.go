// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ErrPathEscapesBase is returned when a joined path leaves its base directory.
var ErrPathEscapesBase = fmt.Errorf("path escapes base directory")

// WithinBase reports an error unless target resolves to base or a
// descendant of it.
func WithinBase(base, target string) error {
	absBase, err := filepath.Abs(base)
	if err != nil {
		return fmt.Errorf("resolving base path: %w", err)
	}
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return fmt.Errorf("resolving target path: %w", err)
	}

	// Trailing separator keeps /uploads-other from matching /uploads.
	if absTarget != absBase && !strings.HasPrefix(absTarget, absBase+string(filepath.Separator)) {
		return ErrPathEscapesBase
	}
	return nil
}

// JoinWithinBase joins an object key such as "article-images/x.png" onto
// base and fails if the result would leave base.
func JoinWithinBase(base, key string) (string, error) {
	full := filepath.Join(base, filepath.FromSlash(key))
	if err := WithinBase(base, full); err != nil {
		return "", err
	}
	return full, nil
}
