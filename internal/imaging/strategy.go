// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package imaging

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/mozillazg/go-unidecode"

	"github.com/olegiv/campusvoice/internal/util"
)

// KeyPrefix is the folder every stored image lives under.
const KeyPrefix = "article-images"

// CacheControl is sent with stored objects.
const CacheControl = "max-age=3600"

// Strategy names reported in ImageReference.Strategy.
const (
	StrategyInline     = "inline"
	StrategyFilesystem = "filesystem"
	StrategyS3         = "s3"
)

// ErrStrategyUnavailable is returned by Available when a strategy cannot
// accept writes in its current configuration.
var ErrStrategyUnavailable = errors.New("image strategy unavailable")

// Object is a validated image ready to be stored.
type Object struct {
	Key       string
	MediaType string
	Data      []byte
}

// Strategy turns an Object into a string usable as an <img src>.
type Strategy interface {
	// Name identifies the strategy in logs and references.
	Name() string
	// Available reports whether the strategy can currently store objects.
	Available(ctx context.Context) error
	// Store persists obj and returns its reference.
	Store(ctx context.Context, obj Object) (string, error)
}

// InlineStrategy encodes images as base64 data URLs. It needs no backend
// and is always available.
type InlineStrategy struct{}

// Name implements Strategy.
func (InlineStrategy) Name() string { return StrategyInline }

// Available implements Strategy.
func (InlineStrategy) Available(context.Context) error { return nil }

// Store implements Strategy.
func (InlineStrategy) Store(_ context.Context, obj Object) (string, error) {
	if !strings.HasPrefix(obj.MediaType, "image/") || len(obj.Data) == 0 {
		return "", ErrEncodingFailed
	}
	var b strings.Builder
	b.Grow(len("data:;base64,") + len(obj.MediaType) + base64.StdEncoding.EncodedLen(len(obj.Data)))
	b.WriteString("data:")
	b.WriteString(obj.MediaType)
	b.WriteString(";base64,")
	b.WriteString(base64.StdEncoding.EncodeToString(obj.Data))
	return b.String(), nil
}

// ObjectKey builds "article-images/<unix-ms>-<random>-<name>.<ext>" for an
// upload called filename. Non-ASCII names are transliterated first.
func ObjectKey(now time.Time, filename, ext string) string {
	base := strings.TrimSuffix(path.Base(strings.ReplaceAll(filename, "\\", "/")), path.Ext(filename))
	name := util.Slugify(unidecode.Unidecode(base))
	if len(name) > 40 {
		name = strings.TrimRight(name[:40], "-")
	}
	if name == "" {
		name = "image"
	}

	return KeyPrefix + "/" + strconv.FormatInt(now.UnixMilli(), 10) + "-" + randomSuffix(6) + "-" + name + "." + ext
}

const suffixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

func randomSuffix(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand does not fail on supported platforms
		panic(err)
	}
	for i, b := range buf {
		buf[i] = suffixAlphabet[int(b)%len(suffixAlphabet)]
	}
	return string(buf)
}

// joinURL joins a public base URL and an object key.
func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}
