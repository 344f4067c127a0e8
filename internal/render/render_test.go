// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package render

import (
	"context"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/campusvoice/internal/model"
	"github.com/olegiv/campusvoice/web"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"layouts/base.html": {Data: []byte(`{{define "base"}}<title>{{.Title}}</title>{{if .Flash}}<p class="flash {{.FlashType}}">{{.Flash}}</p>{{end}}{{template "content" .}}{{end}}`)},
		"partials/footer.html": {Data: []byte(`{{define "footer"}}&copy; {{.CurrentYear}}{{end}}`)},
		"public/post.html":     {Data: []byte(`{{define "content"}}<article>{{sanitize .Data}}</article>{{template "footer" .}}{{end}}`)},
		"public/broken.html":   {Data: []byte(`{{define "content"}}{{.Data.Missing}}{{end}}`)},
		"auth/login.html":      {Data: []byte(`{{define "content"}}<form>{{.Data}}</form>{{end}}`)},
	}
}

func TestNew_ParsesPageDirectories(t *testing.T) {
	r, err := New(Config{TemplatesFS: testFS()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for _, name := range []string{"public/post", "public/broken", "auth/login"} {
		if !r.HasTemplate(name) {
			t.Errorf("template %q not parsed", name)
		}
	}
	if r.HasTemplate("admin/dashboard") {
		t.Error("missing admin directory should yield no templates")
	}
}

func TestNew_ParseError(t *testing.T) {
	fsys := testFS()
	fsys["public/bad.html"] = &fstest.MapFile{Data: []byte(`{{define "content"}}{{if}}{{end}}`)}
	if _, err := New(Config{TemplatesFS: fsys}); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestRender_SanitizesContent(t *testing.T) {
	r, err := New(Config{TemplatesFS: testFS()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/posts/x", nil)
	err = r.RenderStatus(w, req, http.StatusNotFound, "public/post", TemplateData{
		Title: "Post",
		Data:  `<p onclick="steal()">Hi</p><script>alert(1)</script>`,
	})
	if err != nil {
		t.Fatalf("RenderStatus: %v", err)
	}

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "<article><p>Hi</p></article>") {
		t.Errorf("body = %q, want sanitized article", body)
	}
	if strings.Contains(body, "script") || strings.Contains(body, "onclick") {
		t.Errorf("body contains unsafe markup: %q", body)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestRender_Errors(t *testing.T) {
	r, err := New(Config{TemplatesFS: testFS()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if err := r.Render(w, req, "public/nope", TemplateData{}); err == nil {
		t.Error("expected error for unknown template")
	}
	if err := r.Render(w, req, "public/broken", TemplateData{Data: "text"}); err == nil {
		t.Error("expected execution error")
	}
	if w.Body.Len() != 0 || w.Code != http.StatusOK {
		t.Errorf("failed renders must not write: code %d body %q", w.Code, w.Body.String())
	}
}

func TestRender_Flash(t *testing.T) {
	sm := scs.New()
	r, err := New(Config{TemplatesFS: testFS(), SessionManager: sm})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, err := sm.Load(context.Background(), "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/admin/login", nil).WithContext(ctx)

	r.SetFlash(req, "Saved", "success")

	w := httptest.NewRecorder()
	if err := r.Render(w, req, "auth/login", TemplateData{Title: "Login"}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(w.Body.String(), `<p class="flash success">Saved</p>`) {
		t.Errorf("flash not rendered: %q", w.Body.String())
	}

	// The flash is shown once.
	w = httptest.NewRecorder()
	if err := r.Render(w, req, "auth/login", TemplateData{Title: "Login"}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(w.Body.String(), "flash") {
		t.Errorf("flash rendered twice: %q", w.Body.String())
	}
}

func TestRender_WithoutLoadedSession(t *testing.T) {
	r, err := New(Config{TemplatesFS: testFS(), SessionManager: scs.New()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	w := httptest.NewRecorder()
	if err := r.Render(w, httptest.NewRequest(http.MethodGet, "/", nil), "auth/login", TemplateData{}); err != nil {
		t.Fatalf("Render: %v", err)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"a longer sentence", 8, "a longer…"},
		{"héllo wörld", 5, "héllo…"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestPlainText(t *testing.T) {
	got := plainText("<p>Fish &amp; <strong>chips</strong></p>\n<p>today</p>")
	if got != "Fish & chips today" {
		t.Errorf("plainText = %q", got)
	}
}

func TestFormatDate(t *testing.T) {
	fn := templateFuncs()["formatDate"].(func(any) string)
	at := time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)
	if got := fn(at); got != "March 9, 2026" {
		t.Errorf("formatDate(time) = %q", got)
	}
	if got := fn(&at); got != "March 9, 2026" {
		t.Errorf("formatDate(*time) = %q", got)
	}
	if got := fn((*time.Time)(nil)); got != "" {
		t.Errorf("formatDate(nil) = %q", got)
	}
}

func TestRender_CoverImageSources(t *testing.T) {
	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		t.Fatalf("fs.Sub: %v", err)
	}
	r, err := New(Config{TemplatesFS: templatesFS})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	const inline = "data:image/png;base64,iVBORw0KGgo="
	published := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		name  string
		cover string
		want  string
	}{
		{name: "inline data URL", cover: inline, want: `<img src="` + inline + `" alt="">`},
		{name: "stored object", cover: "https://cdn.example.com/images/a.png", want: `<img src="https://cdn.example.com/images/a.png" alt="">`},
		{name: "script URL dropped", cover: "javascript:alert(1)", want: ""},
		{name: "no cover", cover: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			post := model.Post{Title: "Open day", Slug: "open-day", CoverImage: tt.cover, Published: true, PublishedAt: &published}
			pages := map[string]any{
				"public/post": struct{ Post *model.Post }{Post: &post},
				"public/home": []model.Post{post},
			}
			for page, data := range pages {
				w := httptest.NewRecorder()
				if err := r.Render(w, httptest.NewRequest(http.MethodGet, "/", nil), page, TemplateData{Data: data}); err != nil {
					t.Fatalf("%s: Render: %v", page, err)
				}
				body := w.Body.String()
				if strings.Contains(body, "ZgotmplZ") || strings.Contains(body, "javascript:") {
					t.Errorf("%s: unsafe or filtered cover in %q", page, body)
				}
				if tt.want == "" {
					if strings.Contains(body, "<img") {
						t.Errorf("%s: unexpected image in %q", page, body)
					}
				} else if !strings.Contains(body, tt.want) {
					t.Errorf("%s: body missing %q", page, tt.want)
				}
			}
		})
	}
}
