// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/campusvoice/internal/contact"
	"github.com/olegiv/campusvoice/internal/model"
	"github.com/olegiv/campusvoice/internal/service"
)

func submitMessage(t *testing.T, env *testEnv, name string) {
	t.Helper()
	_, err := env.contact.Submit(context.Background(), contact.Submission{
		Name:    name,
		Email:   "reader@example.com",
		Subject: "Hello",
		Message: "I enjoyed the latest issue a lot.",
	}, service.SubmitMeta{})
	require.NoError(t, err)
}

func TestMessages_Inbox(t *testing.T) {
	env := newTestEnv(t)
	submitMessage(t, env, "Ada")
	submitMessage(t, env, "Grace")

	rr := env.do(t, http.MethodGet, "/admin/api/messages", nil)
	assertStatusCode(t, rr, http.StatusOK)
	msgs := dataOf[[]model.ContactMessage](t, rr)
	require.Len(t, msgs, 2)
	meta := metaOf(t, rr)
	assert.Equal(t, int64(2), meta.Total)
	assert.Equal(t, int64(2), meta.Unread)

	id := msgs[0].ID
	rr = env.do(t, http.MethodPatch, "/admin/api/messages/"+id, map[string]any{"read": true})
	assertStatusCode(t, rr, http.StatusOK)
	assert.True(t, dataOf[model.ContactMessage](t, rr).Read)

	rr = env.do(t, http.MethodGet, "/admin/api/messages", nil)
	assert.Equal(t, int64(1), metaOf(t, rr).Unread)

	assertErrorCode(t, env.do(t, http.MethodPatch, "/admin/api/messages/"+id, map[string]any{}), http.StatusBadRequest, "bad_request")
	assertErrorCode(t, env.do(t, http.MethodPatch, "/admin/api/messages/missing", map[string]any{"read": true}), http.StatusNotFound, "not_found")
}

func TestMessages_DeleteRequiresConfirmation(t *testing.T) {
	env := newTestEnv(t)
	submitMessage(t, env, "Ada")

	msgs, err := env.contact.List(context.Background())
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	path := "/admin/api/messages/" + msgs[0].ID

	assertErrorCode(t, env.do(t, http.MethodDelete, path, nil), http.StatusPreconditionRequired, "confirmation_required")

	rr := env.do(t, http.MethodPost, path+"/delete-confirmation", nil)
	assertStatusCode(t, rr, http.StatusOK)
	token := dataOf[service.Confirmation](t, rr).Token

	assertStatusCode(t, env.do(t, http.MethodDelete, path+"?confirm="+token, nil), http.StatusNoContent)
	assertErrorCode(t, env.do(t, http.MethodGet, path, nil), http.StatusNotFound, "not_found")

	// Tokens are single-use.
	assertErrorCode(t, env.do(t, http.MethodDelete, path+"?confirm="+token, nil), http.StatusPreconditionRequired, "confirmation_required")
}

func TestEvents_List(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.events.LogEvent(ctx, model.EventLevelWarning, model.EventCategoryAuth, "failed login", map[string]any{"ip": "10.0.0.1"}))
	require.NoError(t, env.events.LogEvent(ctx, model.EventLevelError, model.EventCategorySystem, "disk full", nil))

	rr := env.do(t, http.MethodGet, "/admin/api/events?per_page=1", nil)
	assertStatusCode(t, rr, http.StatusOK)
	events := dataOf[[]model.Event](t, rr)
	require.Len(t, events, 1)

	meta := metaOf(t, rr)
	assert.Equal(t, int64(2), meta.Total)
	assert.Equal(t, 1, meta.PerPage)
	assert.Equal(t, 2, meta.Pages)
}
