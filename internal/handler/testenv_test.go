// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"database/sql"
	"io"
	"io/fs"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/campusvoice/internal/auth"
	"github.com/olegiv/campusvoice/internal/mail"
	"github.com/olegiv/campusvoice/internal/middleware"
	"github.com/olegiv/campusvoice/internal/model"
	"github.com/olegiv/campusvoice/internal/render"
	"github.com/olegiv/campusvoice/internal/service"
	"github.com/olegiv/campusvoice/internal/session"
	"github.com/olegiv/campusvoice/internal/store"
	"github.com/olegiv/campusvoice/internal/testutil"
	"github.com/olegiv/campusvoice/web"
)

const (
	testEmail    = "admin@example.com"
	testPassword = "correct horse battery"
)

// testEnv serves the page routes over an in-memory database.
type testEnv struct {
	db       *sql.DB
	user     model.User
	posts    *service.PostService
	contact  *service.ContactService
	events   *service.EventService
	sessions *auth.Sessions
	server   *httptest.Server
	client   *http.Client
}

type envOptions struct {
	notifier mail.Notifier
	lp       *middleware.LoginProtection
	limiter  service.SubmitLimiter
}

func newTestEnv(t *testing.T, opts ...func(*envOptions)) *testEnv {
	t.Helper()

	var o envOptions
	for _, fn := range opts {
		fn(&o)
	}

	db := testutil.MemoryDB(t)
	logger := testutil.DiscardLogger()

	hash, err := auth.HashPassword(testPassword)
	require.NoError(t, err)
	user := testutil.CreateUser(t, db, testEmail, hash)

	sm := session.New(db, true)
	sessions := auth.NewSessions(sm, db, logger)
	templatesFS, err := fs.Sub(web.Templates, "templates")
	require.NoError(t, err)
	renderer, err := render.New(render.Config{TemplatesFS: templatesFS, SessionManager: sm, IsDev: true})
	require.NoError(t, err)

	if o.notifier == nil {
		o.notifier = mail.NewLogNotifier(logger)
	}
	posts := service.NewPostService(store.NewPostRepository(db), service.PostServiceOptions{Logger: logger})
	contactSvc := service.NewContactService(store.NewContactRepository(db), o.notifier, nil, logger)
	if o.limiter != nil {
		contactSvc.WithRateLimit(o.limiter)
	}
	events := service.NewEventService(db, logger)

	frontend := NewFrontendHandler(renderer, posts, sessions, logger)
	contactHandler := NewContactHandler(renderer, contactSvc, sessions)
	authHandler := NewAuthHandler(renderer, sessions, events, o.lp)
	admin := NewAdminHandler(renderer, posts, contactSvc, events)
	health := NewHealthHandler(HealthConfig{DB: db, Users: sessions})
	seoHandler := NewSEOHandler(posts, "https://campus.example", false)

	r := chi.NewRouter()
	r.Use(sm.LoadAndSave)
	r.NotFound(frontend.NotFound)
	r.Get("/", frontend.Home)
	r.Get("/posts/{slug}", frontend.Post)
	r.Get(RouteContact, contactHandler.Form)
	r.Post(RouteContact, contactHandler.Submit)
	r.With(middleware.ContactCORS([]string{"https://campus.example", "https://www.campus.example"})).
		MethodFunc(http.MethodOptions, RouteIntake, contactHandler.Intake)
	r.With(middleware.ContactCORS([]string{"https://campus.example", "https://www.campus.example"})).
		Post(RouteIntake, contactHandler.Intake)
	r.Get("/sitemap.xml", seoHandler.Sitemap)
	r.Get("/robots.txt", seoHandler.Robots)
	r.Get("/health", health.Health)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)
	r.Route("/admin", func(r chi.Router) {
		r.Get("/login", authHandler.LoginForm)
		r.Post("/login", authHandler.Login)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUser(sessions))
			r.Post("/logout", authHandler.Logout)
			r.Get("/", admin.Dashboard)
			r.Post("/posts/{id}/publish", admin.PublishPost)
			r.Post("/posts/{id}/unpublish", admin.UnpublishPost)
			r.Get("/messages", admin.Messages)
			r.Post("/messages/{id}/read", admin.MarkMessage)
			r.Get("/events", admin.Events)
		})
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return &testEnv{
		db:       db,
		user:     user,
		posts:    posts,
		contact:  contactSvc,
		events:   events,
		sessions: sessions,
		server:   srv,
		client:   client,
	}
}

func withNotifier(n mail.Notifier) func(*envOptions) {
	return func(o *envOptions) { o.notifier = n }
}

func withSubmitLimiter(l service.SubmitLimiter) func(*envOptions) {
	return func(o *envOptions) { o.limiter = l }
}

func withLoginProtection(lp *middleware.LoginProtection) func(*envOptions) {
	return func(o *envOptions) { o.lp = lp }
}

// response is a fully read HTTP response.
type response struct {
	*http.Response
	body string
}

func (e *testEnv) request(t *testing.T, method, path, contentType, body string, headers ...string) response {
	t.Helper()

	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequestWithContext(context.Background(), method, e.server.URL+path, rd)
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := e.client.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return response{Response: resp, body: string(data)}
}

func (e *testEnv) get(t *testing.T, path string, headers ...string) response {
	t.Helper()
	return e.request(t, http.MethodGet, path, "", "", headers...)
}

func (e *testEnv) postForm(t *testing.T, path string, form url.Values) response {
	t.Helper()
	return e.request(t, http.MethodPost, path, "application/x-www-form-urlencoded", form.Encode())
}

func (e *testEnv) postJSON(t *testing.T, path, body string, headers ...string) response {
	t.Helper()
	return e.request(t, http.MethodPost, path, "application/json", body, headers...)
}

// signIn logs the test user in through the login form.
func (e *testEnv) signIn(t *testing.T) {
	t.Helper()
	resp := e.postForm(t, "/admin/login", url.Values{"email": {testEmail}, "password": {testPassword}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode, resp.body)
	require.Equal(t, redirectAdmin, resp.Header.Get("Location"))
}

// publish creates a published post authored by the test user.
func (e *testEnv) publish(t *testing.T, title, content string) model.Post {
	t.Helper()
	p, err := e.posts.Publish(context.Background(), e.user, model.PostFields{Title: title, Content: content})
	require.NoError(t, err)
	return p
}

func (e *testEnv) draft(t *testing.T, title, content string) model.Post {
	t.Helper()
	p, err := e.posts.Save(context.Background(), e.user, model.PostFields{Title: title, Content: content})
	require.NoError(t, err)
	return p
}

func testUser() model.User {
	return model.User{ID: "user-1", Email: testEmail, Name: "Test Admin", Role: model.RoleAdmin}
}
