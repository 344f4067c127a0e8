// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package editor keeps the in-process editing sessions of the admin area.
// A session belongs to the user who opened it, is pruned after it has been
// idle for too long, and is closed when its owner signs out.
package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/campusvoice/internal/auth"
	"github.com/olegiv/campusvoice/internal/imaging"
	"github.com/olegiv/campusvoice/internal/model"
)

// DefaultIdleTimeout is used when Options.IdleTimeout is zero.
const DefaultIdleTimeout = 2 * time.Hour

// ErrSessionNotFound is returned for unknown, expired, or foreign sessions.
var ErrSessionNotFound = errors.New("editing session not found")

// Image targets for InsertImage.
const (
	TargetContent = "content"
	TargetCover   = "cover"
)

// PostWriter is the subset of service.PostService used by editing sessions.
type PostWriter interface {
	Get(ctx context.Context, id string) (model.Post, error)
	Save(ctx context.Context, author model.User, f model.PostFields) (model.Post, error)
	Publish(ctx context.Context, author model.User, f model.PostFields) (model.Post, error)
}

// ImageIngestor stores uploaded images.
type ImageIngestor interface {
	Ingest(ctx context.Context, u imaging.Upload) (imaging.ImageReference, error)
}

// Options configures a Manager.
type Options struct {
	IdleTimeout time.Duration // negative disables pruning
	Logger      *slog.Logger
}

// Manager owns all open editing sessions.
type Manager struct {
	posts  PostWriter
	images ImageIngestor
	idle   time.Duration
	logger *slog.Logger
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates a Manager.
func NewManager(posts PostWriter, images ImageIngestor, opts Options) *Manager {
	if opts.IdleTimeout == 0 {
		opts.IdleTimeout = DefaultIdleTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Manager{
		posts:    posts,
		images:   images,
		idle:     opts.IdleTimeout,
		logger:   opts.Logger,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Attach closes a user's sessions whenever that user signs out. The
// returned function detaches the manager again.
func (m *Manager) Attach(s *auth.Sessions) (detach func()) {
	return s.Subscribe(m.HandleAuthChange)
}

// HandleAuthChange reacts to sign-in state changes.
func (m *Manager) HandleAuthChange(c auth.Change) {
	if c.Kind != auth.SignedOut {
		return
	}
	if n := m.CloseOwnedBy(c.UserID); n > 0 {
		m.logger.Info("closed editing sessions on sign-out", "user_id", c.UserID, "count", n)
	}
}

// Open starts a session for owner. An empty postID starts a new post.
func (m *Manager) Open(ctx context.Context, owner model.User, postID string) (State, error) {
	d := NewDraft()
	content := ""
	if postID != "" {
		p, err := m.posts.Get(ctx, postID)
		if err != nil {
			return State{}, err
		}
		d = DraftFromPost(p)
		content = p.Content
	}

	s := newSession(uuid.NewString(), owner.ID, d, content, m.now())

	m.mu.Lock()
	m.pruneLocked()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	m.logger.Debug("editing session opened", "session_id", s.ID, "user_id", owner.ID, "post_id", postID)
	return s.State(), nil
}

// State returns the state of a session owned by owner.
func (m *Manager) State(owner model.User, sid string) (State, error) {
	s, err := m.lookup(owner, sid)
	if err != nil {
		return State{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = m.now()
	return s.state(), nil
}

// Apply runs one command in the session.
func (m *Manager) Apply(owner model.User, sid string, c Command) (State, error) {
	s, err := m.lookup(owner, sid)
	if err != nil {
		return State{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = m.now()

	changed, err := apply(s.editor, s.draft, c)
	if err != nil {
		return State{}, err
	}
	if changed {
		s.dirty = true
	}
	return s.state(), nil
}

// InsertImage stores an upload and references it from the session: as an
// inline image at the cursor for TargetContent, or as the cover image for
// TargetCover.
func (m *Manager) InsertImage(ctx context.Context, owner model.User, sid string, u imaging.Upload, alt, target string) (State, imaging.ImageReference, error) {
	if target == "" {
		target = TargetContent
	}
	if target != TargetContent && target != TargetCover {
		return State{}, imaging.ImageReference{}, fmt.Errorf("%w: unknown image target %q", ErrInvalidCommand, target)
	}

	s, err := m.lookup(owner, sid)
	if err != nil {
		return State{}, imaging.ImageReference{}, err
	}

	ref, err := m.images.Ingest(ctx, u)
	if err != nil {
		return State{}, imaging.ImageReference{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = m.now()

	c := Command{Op: OpInsertImage, Src: ref.Src, Alt: alt}
	if target == TargetCover {
		c = Command{Op: OpSetCoverImage, Value: ref.Src}
	}
	if _, err := apply(s.editor, s.draft, c); err != nil {
		return State{}, imaging.ImageReference{}, err
	}
	s.dirty = true
	return s.state(), ref, nil
}

// Save writes the session through the post service, publishing it when
// publish is set. Saving an existing post checks its version so edits made
// elsewhere in the meantime are reported as model.ErrStaleWrite.
func (m *Manager) Save(ctx context.Context, owner model.User, sid string, publish bool) (model.Post, State, error) {
	s, err := m.lookup(owner, sid)
	if err != nil {
		return model.Post{}, State{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = m.now()

	fields := s.draft.Fields(s.editor.HTML())
	var p model.Post
	if publish {
		p, err = m.posts.Publish(ctx, owner, fields)
	} else {
		p, err = m.posts.Save(ctx, owner, fields)
	}
	if err != nil {
		return model.Post{}, State{}, err
	}

	s.draft.Saved(p)
	s.dirty = false
	return p, s.state(), nil
}

// Close ends a session.
func (m *Manager) Close(owner model.User, sid string) error {
	if _, err := m.lookup(owner, sid); err != nil {
		return err
	}
	m.mu.Lock()
	delete(m.sessions, sid)
	m.mu.Unlock()
	return nil
}

// CloseOwnedBy ends every session of userID and returns how many there were.
func (m *Manager) CloseOwnedBy(userID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, s := range m.sessions {
		if s.OwnerID == userID {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pruneLocked()
	return len(m.sessions)
}

func (m *Manager) lookup(owner model.User, sid string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pruneLocked()

	s, ok := m.sessions[sid]
	if !ok || s.OwnerID != owner.ID {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (m *Manager) pruneLocked() {
	if m.idle < 0 {
		return
	}
	cutoff := m.now().Add(-m.idle)
	for id, s := range m.sessions {
		if s.idleSince().Before(cutoff) {
			delete(m.sessions, id)
			m.logger.Debug("editing session expired", "session_id", id, "user_id", s.OwnerID)
		}
	}
}
