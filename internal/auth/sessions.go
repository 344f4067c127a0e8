// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/campusvoice/internal/model"
	"github.com/olegiv/campusvoice/internal/store"
)

// SessionKeyUserID is the session key holding the signed-in user's ID.
const SessionKeyUserID = "user_id"

// ChangeKind tells subscribers what happened to a session.
type ChangeKind int

const (
	SignedIn ChangeKind = iota + 1
	SignedOut
)

func (k ChangeKind) String() string {
	switch k {
	case SignedIn:
		return "signed_in"
	case SignedOut:
		return "signed_out"
	}
	return "unknown"
}

// Change is delivered to subscribers after a sign-in or sign-out.
type Change struct {
	Kind   ChangeKind
	UserID string
}

// Session describes a successful sign-in.
type Session struct {
	User       model.User
	SignedInAt time.Time
}

// Sessions signs admins in and out of the cookie session held by scs and
// notifies subscribers of every change. All methods take a request context
// that has been through the session manager's LoadAndSave.
type Sessions struct {
	sm      *scs.SessionManager
	queries *store.Queries
	logger  *slog.Logger
	now     func() time.Time

	mu     sync.Mutex
	nextID int
	subs   map[int]func(Change)
}

// NewSessions creates Sessions over sm with users read from db.
func NewSessions(sm *scs.SessionManager, db store.DBTX, logger *slog.Logger) *Sessions {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sessions{
		sm:      sm,
		queries: store.New(db),
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
		subs:    make(map[int]func(Change)),
	}
}

// Manager returns the underlying session manager.
func (s *Sessions) Manager() *scs.SessionManager {
	return s.sm
}

// SignIn verifies the credentials and binds the user to the session. The
// session token is renewed to prevent fixation. Unknown emails and wrong
// passwords both yield model.ErrInvalidCredentials.
func (s *Sessions) SignIn(ctx context.Context, email, password string) (Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return Session{}, model.ErrInvalidCredentials
	}

	row, err := s.queries.GetUserByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		s.logger.Debug("sign-in for unknown email", "category", model.EventCategoryAuth, "email", email)
		return Session{}, model.ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, fmt.Errorf("loading user: %w", err)
	}

	ok, err := CheckPassword(password, row.PasswordHash)
	if err != nil {
		s.logger.Error("password check failed", "category", model.EventCategoryAuth, "error", err, "user_id", row.ID)
		return Session{}, model.ErrInvalidCredentials
	}
	if !ok {
		return Session{}, model.ErrInvalidCredentials
	}

	now := s.now()
	if NeedsRehash(row.PasswordHash) {
		if hash, err := HashPassword(password); err == nil {
			if err := s.queries.UpdateUserPassword(ctx, store.UpdateUserPasswordParams{
				PasswordHash: hash,
				UpdatedAt:    now,
				ID:           row.ID,
			}); err != nil {
				s.logger.Error("failed to re-hash password", "error", err, "user_id", row.ID)
			}
		}
	}

	if err := s.queries.UpdateUserLastLogin(ctx, store.UpdateUserLastLoginParams{
		LastLoginAt: sql.NullTime{Time: now, Valid: true},
		UpdatedAt:   now,
		ID:          row.ID,
	}); err != nil {
		s.logger.Error("failed to update last login time", "error", err, "user_id", row.ID)
	}

	if err := s.sm.RenewToken(ctx); err != nil {
		return Session{}, fmt.Errorf("renewing session token: %w", err)
	}
	s.sm.Put(ctx, SessionKeyUserID, row.ID)

	user := store.UserModel(row)
	user.LastLoginAt = &now
	s.logger.Info("user signed in", "category", model.EventCategoryAuth, "user_id", user.ID, "email", user.Email)
	s.notify(Change{Kind: SignedIn, UserID: user.ID})

	return Session{User: user, SignedInAt: now}, nil
}

// SignOut destroys the session. Signing out an anonymous session is a no-op.
func (s *Sessions) SignOut(ctx context.Context) error {
	userID := s.sm.GetString(ctx, SessionKeyUserID)
	if err := s.sm.Destroy(ctx); err != nil {
		return fmt.Errorf("destroying session: %w", err)
	}
	if userID == "" {
		return nil
	}
	s.logger.Info("user signed out", "category", model.EventCategoryAuth, "user_id", userID)
	s.notify(Change{Kind: SignedOut, UserID: userID})
	return nil
}

// CurrentUser returns the signed-in user. A session pointing at a user
// that no longer exists is cleared.
func (s *Sessions) CurrentUser(ctx context.Context) (model.User, bool) {
	userID := s.sm.GetString(ctx, SessionKeyUserID)
	if userID == "" {
		return model.User{}, false
	}

	row, err := s.queries.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.sm.Remove(ctx, SessionKeyUserID)
		} else {
			s.logger.Error("loading session user", "error", err, "user_id", userID)
		}
		return model.User{}, false
	}
	return store.UserModel(row), true
}

// Subscribe registers fn to receive every Change and returns a function
// that removes it. fn runs synchronously on the signing goroutine.
func (s *Sessions) Subscribe(fn func(Change)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

func (s *Sessions) notify(c Change) {
	s.mu.Lock()
	fns := make([]func(Change), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(c)
	}
}
