// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestWithinBase(t *testing.T) {
	base := filepath.Join(t.TempDir(), "uploads")

	tests := []struct {
		name    string
		target  string
		wantErr bool
	}{
		{"same directory", base, false},
		{"subdirectory", filepath.Join(base, "article-images"), false},
		{"parent", filepath.Join(base, ".."), true},
		{"sibling", filepath.Join(base, "..", "config"), true},
		{"absolute outside", "/etc/passwd", true},
		{"similar prefix", base + "-malicious", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := WithinBase(base, tt.target)
			if (err != nil) != tt.wantErr {
				t.Errorf("WithinBase() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestJoinWithinBase(t *testing.T) {
	base := t.TempDir()

	got, err := JoinWithinBase(base, "article-images/1700000000000-abc123-photo.jpg")
	if err != nil {
		t.Fatalf("JoinWithinBase: %v", err)
	}
	want := filepath.Join(base, "article-images", "1700000000000-abc123-photo.jpg")
	if got != want {
		t.Errorf("JoinWithinBase = %q, want %q", got, want)
	}

	if _, err := JoinWithinBase(base, "../../etc/passwd"); !errors.Is(err, ErrPathEscapesBase) {
		t.Errorf("traversal error = %v, want ErrPathEscapesBase", err)
	}
}
