// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package imaging

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/olegiv/campusvoice/internal/util"
)

// FilesystemStrategy writes images below a local directory that the HTTP
// server exposes under PublicPrefix.
type FilesystemStrategy struct {
	Dir          string
	PublicPrefix string // e.g. "/uploads" or "https://cdn.example/uploads"
}

// NewFilesystemStrategy creates a FilesystemStrategy rooted at dir.
func NewFilesystemStrategy(dir, publicPrefix string) *FilesystemStrategy {
	if publicPrefix == "" {
		publicPrefix = "/uploads"
	}
	return &FilesystemStrategy{Dir: dir, PublicPrefix: publicPrefix}
}

// Name implements Strategy.
func (s *FilesystemStrategy) Name() string { return StrategyFilesystem }

// Available checks that the image folder exists or can be created.
func (s *FilesystemStrategy) Available(context.Context) error {
	if s.Dir == "" {
		return fmt.Errorf("%w: no upload directory", ErrStrategyUnavailable)
	}
	if err := os.MkdirAll(filepath.Join(s.Dir, KeyPrefix), 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrStrategyUnavailable, err)
	}
	return nil
}

// Store writes obj to Dir/obj.Key.
func (s *FilesystemStrategy) Store(ctx context.Context, obj Object) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	target, err := util.JoinWithinBase(s.Dir, obj.Key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("creating directory: %w", err)
	}

	// Write to a temp file first so a partial image is never served.
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, obj.Data, 0o644); err != nil {
		return "", fmt.Errorf("writing image: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("moving image into place: %w", err)
	}

	return joinURL(s.PublicPrefix, obj.Key), nil
}
