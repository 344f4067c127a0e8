// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/campusvoice/internal/editor"
	"github.com/olegiv/campusvoice/internal/imaging"
	"github.com/olegiv/campusvoice/internal/mail"
	"github.com/olegiv/campusvoice/internal/middleware"
	"github.com/olegiv/campusvoice/internal/model"
	"github.com/olegiv/campusvoice/internal/service"
	"github.com/olegiv/campusvoice/internal/store"
	"github.com/olegiv/campusvoice/internal/testutil"
)

// testEnv is a fully wired API over an in-memory database.
type testEnv struct {
	db      *sql.DB
	user    model.User
	posts   *service.PostService
	contact *service.ContactService
	events  *service.EventService
	editor  *editor.Manager
	handler *Handler
	router  chi.Router
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.MemoryDB(t)
	logger := testutil.DiscardLogger()
	user := testutil.CreateUser(t, db, "admin@example.com", "unused-hash")

	posts := service.NewPostService(store.NewPostRepository(db), service.PostServiceOptions{Logger: logger})
	contactSvc := service.NewContactService(store.NewContactRepository(db), mail.NewLogNotifier(logger), nil, logger)
	events := service.NewEventService(db, logger)
	images := imaging.NewIngestor(nil, logger)
	mgr := editor.NewManager(posts, images, editor.Options{Logger: logger})

	h := NewHandler(Config{
		Posts:   posts,
		Contact: contactSvc,
		Events:  events,
		Editor:  mgr,
		Images:  images,
		Logger:  logger,
	})

	env := &testEnv{
		db:      db,
		user:    user,
		posts:   posts,
		contact: contactSvc,
		events:  events,
		editor:  mgr,
		handler: h,
	}

	r := chi.NewRouter()
	r.Route("/api/v1", h.RegisterPublic)
	r.Route("/admin/api", func(r chi.Router) {
		r.Use(env.signedIn)
		h.RegisterAdmin(r)
	})
	env.router = r
	return env
}

// signedIn attaches the test user, or the user named by X-Test-User.
func (e *testEnv) signedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := e.user
		if id := r.Header.Get("X-Test-User"); id != "" {
			user = model.User{ID: id, Email: id + "@example.com", Role: model.RoleAdmin}
		}
		next.ServeHTTP(w, r.WithContext(middleware.WithUser(r.Context(), user)))
	})
}

// do sends body (JSON-encoded unless it is a string or nil) to the router.
func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("encoding body: %v", err)
		}
		rd = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, rd)
	if rd != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

// send dispatches a prepared request.
func (e *testEnv) send(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

// dataOf decodes the data member of a success response.
func dataOf[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var resp struct {
		Data T     `json:"data"`
		Meta *Meta `json:"meta"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response %q: %v", rr.Body.String(), err)
	}
	return resp.Data
}

// metaOf decodes the meta member of a success response.
func metaOf(t *testing.T, rr *httptest.ResponseRecorder) Meta {
	t.Helper()
	var resp struct {
		Meta *Meta `json:"meta"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Meta == nil {
		t.Fatal("response has no meta")
	}
	return *resp.Meta
}

// errorOf decodes an error response.
func errorOf(t *testing.T, rr *httptest.ResponseRecorder) middleware.APIError {
	t.Helper()
	var resp middleware.APIError
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding error response %q: %v", rr.Body.String(), err)
	}
	return resp
}

// assertStatusCode checks that the response has the expected status code.
func assertStatusCode(t *testing.T, rr *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if rr.Code != expected {
		t.Fatalf("expected status %d, got %d: %s", expected, rr.Code, rr.Body.String())
	}
}

// assertErrorCode checks status and error code together.
func assertErrorCode(t *testing.T, rr *httptest.ResponseRecorder, status int, code string) middleware.APIError {
	t.Helper()
	assertStatusCode(t, rr, status)
	e := errorOf(t, rr)
	if e.Code != code {
		t.Errorf("expected code %q, got %q (%s)", code, e.Code, e.Error)
	}
	return e
}
