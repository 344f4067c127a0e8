// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/olegiv/campusvoice/internal/seo"
	"github.com/olegiv/campusvoice/internal/service"
)

// SEOHandler serves sitemap.xml and robots.txt.
type SEOHandler struct {
	posts       *service.PostService
	siteURL     string
	disallowAll bool
}

// NewSEOHandler creates a new SEOHandler. An empty siteURL is derived from
// each request. disallowAll blocks every crawler.
func NewSEOHandler(posts *service.PostService, siteURL string, disallowAll bool) *SEOHandler {
	return &SEOHandler{posts: posts, siteURL: siteURL, disallowAll: disallowAll}
}

// Sitemap lists the published articles.
func (h *SEOHandler) Sitemap(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.ListPublished(r.Context())
	if err != nil {
		logAndInternalError(w, "listing posts for sitemap failed", "error", err)
		return
	}

	articles := make([]seo.SitemapArticle, 0, len(posts))
	for _, p := range posts {
		articles = append(articles, seo.SitemapArticle{Slug: p.Slug, UpdatedAt: p.UpdatedAt})
	}

	out, err := seo.GenerateSitemap(h.baseURL(r), articles)
	if err != nil {
		logAndInternalError(w, "building sitemap failed", "error", err)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(out)
}

// Robots renders robots.txt.
func (h *SEOHandler) Robots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write([]byte(seo.GenerateRobots(seo.RobotsConfig{
		SiteURL:     h.baseURL(r),
		DisallowAll: h.disallowAll,
	})))
}

func (h *SEOHandler) baseURL(r *http.Request) string {
	if h.siteURL != "" {
		return h.siteURL
	}
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}
