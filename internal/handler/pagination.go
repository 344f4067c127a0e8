// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"fmt"
	"net/http"
	"strconv"
)

// eventsPerPage is the page size of the admin event log.
const eventsPerPage = 25

// pageWindow is how many page links surround the current page.
const pageWindow = 2

// Pagination holds the page links of a paginated admin list.
type Pagination struct {
	CurrentPage int
	TotalPages  int
	TotalItems  int64
	PerPage     int
	Links       []PageLink
	BaseURL     string
}

// PageLink is one entry of the page bar. Gaps have no number.
type PageLink struct {
	Number  int
	URL     string
	Current bool
	Gap     bool
}

// TotalPages returns the number of pages needed for total items, at least 1.
func TotalPages(total int64, perPage int) int {
	if perPage <= 0 || total <= 0 {
		return 1
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}

// BuildPagination lays out page links for the page-th page of total items.
// The first and last pages are always linked; pages further than
// pageWindow from the current one collapse into a gap.
func BuildPagination(page int, total int64, perPage int, baseURL string) Pagination {
	pages := TotalPages(total, perPage)
	page = min(max(page, 1), pages)

	p := Pagination{
		CurrentPage: page,
		TotalPages:  pages,
		TotalItems:  total,
		PerPage:     perPage,
		BaseURL:     baseURL,
	}

	start := max(page-pageWindow, 1)
	end := min(page+pageWindow, pages)

	if start > 1 {
		p.Links = append(p.Links, p.link(1))
		if start > 2 {
			p.Links = append(p.Links, PageLink{Gap: true})
		}
	}
	for i := start; i <= end; i++ {
		p.Links = append(p.Links, p.link(i))
	}
	if end < pages {
		if end < pages-1 {
			p.Links = append(p.Links, PageLink{Gap: true})
		}
		p.Links = append(p.Links, p.link(pages))
	}
	return p
}

func (p Pagination) link(n int) PageLink {
	return PageLink{Number: n, URL: p.PageURL(n), Current: n == p.CurrentPage}
}

// PageURL returns the URL of page n.
func (p Pagination) PageURL(n int) string {
	return fmt.Sprintf("%s?page=%d", p.BaseURL, n)
}

// PrevURL returns the URL of the previous page.
func (p Pagination) PrevURL() string { return p.PageURL(p.CurrentPage - 1) }

// NextURL returns the URL of the next page.
func (p Pagination) NextURL() string { return p.PageURL(p.CurrentPage + 1) }

// HasPrev reports whether a previous page exists.
func (p Pagination) HasPrev() bool { return p.CurrentPage > 1 }

// HasNext reports whether a next page exists.
func (p Pagination) HasNext() bool { return p.CurrentPage < p.TotalPages }

// ShouldShow reports whether there is more than one page.
func (p Pagination) ShouldShow() bool { return p.TotalPages > 1 }

// parsePage reads the page query parameter, defaulting to 1.
func parsePage(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
