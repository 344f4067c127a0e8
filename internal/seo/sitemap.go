// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package seo builds the crawler-facing documents of the public site:
// sitemap.xml and robots.txt.
package seo

import (
	"encoding/xml"
	"strings"
	"time"
)

// XMLNamespace is the sitemap XML namespace.
const XMLNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// ChangeFreq represents the change frequency of a URL.
type ChangeFreq string

// Change frequencies used by the site.
const (
	ChangeFreqDaily   ChangeFreq = "daily"
	ChangeFreqWeekly  ChangeFreq = "weekly"
	ChangeFreqMonthly ChangeFreq = "monthly"
)

// SitemapURL represents a single URL entry in the sitemap.
type SitemapURL struct {
	Loc        string     `xml:"loc"`
	LastMod    string     `xml:"lastmod,omitempty"`
	ChangeFreq ChangeFreq `xml:"changefreq,omitempty"`
	Priority   string     `xml:"priority,omitempty"`
}

// Sitemap represents the complete sitemap document.
type Sitemap struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []SitemapURL `xml:"url"`
}

// SitemapArticle is a published article listed in the sitemap.
type SitemapArticle struct {
	Slug      string
	UpdatedAt time.Time
}

// SitemapBuilder collects URLs under a site root.
type SitemapBuilder struct {
	siteURL string
	urls    []SitemapURL
}

// NewSitemapBuilder creates a builder for the site at siteURL.
func NewSitemapBuilder(siteURL string) *SitemapBuilder {
	return &SitemapBuilder{siteURL: strings.TrimSuffix(siteURL, "/")}
}

// AddHomepage adds the article index.
func (b *SitemapBuilder) AddHomepage(lastMod time.Time) {
	b.urls = append(b.urls, SitemapURL{
		Loc:        b.siteURL + "/",
		LastMod:    formatLastMod(lastMod),
		ChangeFreq: ChangeFreqDaily,
		Priority:   "1.0",
	})
}

// AddContact adds the contact form page.
func (b *SitemapBuilder) AddContact() {
	b.urls = append(b.urls, SitemapURL{
		Loc:        b.siteURL + "/contact",
		ChangeFreq: ChangeFreqMonthly,
		Priority:   "0.3",
	})
}

// AddArticle adds one article page.
func (b *SitemapBuilder) AddArticle(a SitemapArticle) {
	b.urls = append(b.urls, SitemapURL{
		Loc:        b.siteURL + "/posts/" + a.Slug,
		LastMod:    formatLastMod(a.UpdatedAt),
		ChangeFreq: ChangeFreqWeekly,
		Priority:   "0.8",
	})
}

// Build generates the sitemap XML.
func (b *SitemapBuilder) Build() ([]byte, error) {
	sitemap := Sitemap{
		XMLNS: XMLNamespace,
		URLs:  b.urls,
	}

	output := []byte(xml.Header)
	xmlBytes, err := xml.MarshalIndent(sitemap, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(output, xmlBytes...), nil
}

// GenerateSitemap lists the home page, every article, and the contact page.
// The home page's lastmod is the newest article's.
func GenerateSitemap(siteURL string, articles []SitemapArticle) ([]byte, error) {
	b := NewSitemapBuilder(siteURL)

	var newest time.Time
	for _, a := range articles {
		if a.UpdatedAt.After(newest) {
			newest = a.UpdatedAt
		}
	}
	b.AddHomepage(newest)
	for _, a := range articles {
		b.AddArticle(a)
	}
	b.AddContact()
	return b.Build()
}

func formatLastMod(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
