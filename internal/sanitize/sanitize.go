// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package sanitize turns author-supplied HTML into markup that is safe to
// inject into a page. The same policy runs when the editor emits content,
// when a post is written, and when it is rendered publicly.
package sanitize

import (
	"html/template"

	"github.com/microcosm-cc/bluemonday"
)

// policy allows the user-generated-content tag set plus inline data: images,
// which the inline image strategy produces. A built bluemonday policy is safe
// for concurrent use.
var policy = newPolicy()

// strict removes every tag.
var strict = bluemonday.StrictPolicy()

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowDataURIImages()
	p.AllowURLSchemes("http", "https", "mailto")
	return p
}

// HTML returns a sanitized copy of s. Script and style elements are removed
// with their content, event handler attributes are dropped, and links or
// images with disallowed URL schemes lose the offending attribute.
func HTML(s string) string {
	if s == "" {
		return ""
	}
	return policy.Sanitize(s)
}

// Trusted sanitizes s and marks the result safe for html/template.
func Trusted(s string) template.HTML {
	return template.HTML(HTML(s)) //nolint:gosec // sanitized above
}

// Text strips all markup from s, leaving escaped text.
func Text(s string) string {
	if s == "" {
		return ""
	}
	return strict.Sanitize(s)
}
