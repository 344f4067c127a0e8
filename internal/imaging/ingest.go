// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package imaging validates uploaded images and turns them into references
// that can be used directly as an image source. A configured primary
// strategy (filesystem or S3) is tried first; when it is unavailable or
// fails, the image is encoded inline as a data URL.
package imaging

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // GIF decoder for DecodeConfig
	_ "image/jpeg" // JPEG decoder for DecodeConfig
	_ "image/png"  // PNG decoder for DecodeConfig
	"io"
	"log/slog"
	"mime"
	"strings"
	"time"
)

// MaxUploadSize is the largest accepted image in bytes (5 MiB).
const MaxUploadSize = 5 << 20

// Ingest errors. The messages are shown to authors as-is.
var (
	ErrUnsupportedType = errors.New("Please upload an image file")
	ErrTooLarge        = errors.New("Image must be less than 5MB")
	ErrEncodingFailed  = errors.New("image could not be encoded")
)

// Upload is an image received from an author.
type Upload struct {
	Filename  string
	MediaType string // declared by the client
	Size      int64  // declared by the client, -1 if unknown
	Body      io.Reader
}

// ImageReference describes a stored image.
type ImageReference struct {
	Src       string `json:"src"`
	MediaType string `json:"media_type"`
	Size      int64  `json:"size"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Strategy  string `json:"strategy"`
	Fallback  bool   `json:"fallback"`
}

// Ingestor validates uploads and stores them with a Strategy.
type Ingestor struct {
	primary Strategy
	inline  InlineStrategy
	logger  *slog.Logger
	now     func() time.Time
}

// NewIngestor creates an Ingestor. A nil primary, or an InlineStrategy,
// stores every image inline.
func NewIngestor(primary Strategy, logger *slog.Logger) *Ingestor {
	if logger == nil {
		logger = slog.Default()
	}
	if _, ok := primary.(InlineStrategy); ok {
		primary = nil
	}
	return &Ingestor{
		primary: primary,
		logger:  logger,
		now:     time.Now,
	}
}

// PrimaryName returns the name of the configured primary strategy.
func (i *Ingestor) PrimaryName() string {
	if i.primary == nil {
		return StrategyInline
	}
	return i.primary.Name()
}

// Ingest validates u and returns a reference to the stored image. Nothing
// is stored when validation fails.
func (i *Ingestor) Ingest(ctx context.Context, u Upload) (ImageReference, error) {
	if !isImageMediaType(u.MediaType) {
		return ImageReference{}, ErrUnsupportedType
	}
	if u.Size > MaxUploadSize {
		return ImageReference{}, ErrTooLarge
	}
	if u.Body == nil {
		return ImageReference{}, ErrUnsupportedType
	}

	data, err := io.ReadAll(io.LimitReader(u.Body, MaxUploadSize+1))
	if err != nil {
		return ImageReference{}, fmt.Errorf("reading upload: %w", err)
	}
	if len(data) > MaxUploadSize {
		return ImageReference{}, ErrTooLarge
	}

	format := sniffFormat(data)
	if format == "" {
		return ImageReference{}, ErrUnsupportedType
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return ImageReference{}, ErrUnsupportedType
	}
	width, height := cfg.Width, cfg.Height

	if format == formatJPEG {
		rotated, size, changed, err := normalizeOrientation(data)
		if err != nil {
			i.logger.Error("image orientation failed", "filename", u.Filename, "error", err)
			return ImageReference{}, ErrEncodingFailed
		}
		if changed {
			data, width, height = rotated, size.X, size.Y
		}
	}

	obj := Object{
		Key:       ObjectKey(i.now(), u.Filename, extensionOf(format)),
		MediaType: mediaTypeOf(format),
		Data:      data,
	}
	ref := ImageReference{
		MediaType: obj.MediaType,
		Size:      int64(len(data)),
		Width:     width,
		Height:    height,
	}

	if i.primary != nil {
		src, err := i.storePrimary(ctx, obj)
		if err == nil {
			ref.Src = src
			ref.Strategy = i.primary.Name()
			return ref, nil
		}
		i.logger.Warn("image storage failed, falling back to inline encoding",
			"strategy", i.primary.Name(),
			"key", obj.Key,
			"error", err,
		)
		ref.Fallback = true
	}

	src, err := i.inline.Store(ctx, obj)
	if err != nil {
		return ImageReference{}, ErrEncodingFailed
	}
	ref.Src = src
	ref.Strategy = StrategyInline
	return ref, nil
}

func (i *Ingestor) storePrimary(ctx context.Context, obj Object) (string, error) {
	if err := i.primary.Available(ctx); err != nil {
		return "", err
	}
	return i.primary.Store(ctx, obj)
}

// isImageMediaType reports whether the declared media type is image/*.
func isImageMediaType(mediaType string) bool {
	mt, _, err := mime.ParseMediaType(mediaType)
	if err != nil {
		mt = strings.ToLower(strings.TrimSpace(mediaType))
	}
	return strings.HasPrefix(mt, "image/") && len(mt) > len("image/")
}
