// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/olegiv/campusvoice/internal/model"
	"github.com/olegiv/campusvoice/internal/testutil"
)

func TestEventService_LogAndList(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	svc := NewEventService(db, testutil.DiscardLogger())
	ctx := context.Background()

	if err := svc.LogAuthEvent(ctx, model.EventLevelWarning, "login failed", map[string]any{"email": "a@b.c"}); err != nil {
		t.Fatalf("LogAuthEvent: %v", err)
	}
	for range 3 {
		if err := svc.LogEvent(ctx, model.EventLevelInfo, model.EventCategoryPost, "post saved", nil); err != nil {
			t.Fatalf("LogEvent: %v", err)
		}
	}

	page, err := svc.List(ctx, 1, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Total != 4 {
		t.Errorf("Total = %d, want 4", page.Total)
	}
	if len(page.Events) != 2 {
		t.Fatalf("len(Events) = %d, want 2", len(page.Events))
	}

	page, err = svc.List(ctx, 2, 2)
	if err != nil {
		t.Fatalf("List page 2: %v", err)
	}
	if len(page.Events) != 2 {
		t.Fatalf("page 2 len = %d, want 2", len(page.Events))
	}

	var auth *model.Event
	all, _ := svc.List(ctx, 1, 10)
	for i := range all.Events {
		if all.Events[i].Category == model.EventCategoryAuth {
			auth = &all.Events[i]
		}
	}
	if auth == nil {
		t.Fatal("auth event not listed")
	}
	var meta map[string]string
	if err := json.Unmarshal([]byte(auth.Metadata), &meta); err != nil {
		t.Fatalf("metadata is not JSON: %v", err)
	}
	if meta["email"] != "a@b.c" {
		t.Errorf("metadata email = %q", meta["email"])
	}
}

func TestEventService_ListBounds(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	svc := NewEventService(db, testutil.DiscardLogger())

	page, err := svc.List(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Page != 1 || page.PerPage != DefaultEventsPerPage {
		t.Errorf("got page %d per %d, want 1 per %d", page.Page, page.PerPage, DefaultEventsPerPage)
	}
	if page.Events == nil {
		t.Error("Events should be an empty slice, not nil")
	}

	page, _ = svc.List(context.Background(), 1, 10000)
	if page.PerPage != MaxEventsPerPage {
		t.Errorf("PerPage = %d, want %d", page.PerPage, MaxEventsPerPage)
	}
}

func TestEventService_DeleteOldEvents(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	svc := NewEventService(db, testutil.DiscardLogger())
	ctx := context.Background()
	_ = svc.LogEvent(ctx, model.EventLevelInfo, model.EventCategorySystem, "boot", nil)

	n, err := svc.DeleteOldEvents(ctx, time.Hour)
	if err != nil {
		t.Fatalf("DeleteOldEvents: %v", err)
	}
	if n != 0 {
		t.Errorf("deleted %d recent events", n)
	}

	n, err = svc.DeleteOldEvents(ctx, -time.Hour)
	if err != nil {
		t.Fatalf("DeleteOldEvents: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted %d, want 1", n)
	}
}
