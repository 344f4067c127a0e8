// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package richtext

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// markdown renders GitHub-flavoured Markdown without raw HTML passthrough.
// goldmark.Markdown is safe for concurrent use.
var markdown = goldmark.New(
	goldmark.WithExtensions(extension.Linkify),
)

// FromMarkdown converts Markdown into a Document. Constructs the editor
// cannot represent (tables, code blocks) are reduced to paragraphs.
func FromMarkdown(src []byte) (*Document, error) {
	var buf bytes.Buffer
	if err := markdown.Convert(src, &buf); err != nil {
		return nil, fmt.Errorf("markdown convert: %w", err)
	}
	return Parse(buf.String()), nil
}
