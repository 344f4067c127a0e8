// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/mileusna/useragent"

	"github.com/olegiv/campusvoice/internal/cache"
	"github.com/olegiv/campusvoice/internal/contact"
	"github.com/olegiv/campusvoice/internal/mail"
	"github.com/olegiv/campusvoice/internal/model"
)

// NotifyTimeout bounds a single notification attempt.
const NotifyTimeout = 10 * time.Second

const confirmKindMessage = "message"

// ContactMessageStore persists contact messages.
type ContactMessageStore interface {
	Create(ctx context.Context, m model.NewContactMessage) (model.ContactMessage, error)
	Get(ctx context.Context, id string) (model.ContactMessage, error)
	List(ctx context.Context) ([]model.ContactMessage, error)
	SetRead(ctx context.Context, id string, read bool) error
	Delete(ctx context.Context, id string) error
	CountUnread(ctx context.Context) (int64, error)
}

// SubmitMeta describes the request a submission arrived with.
type SubmitMeta struct {
	UserAgent string
	RemoteIP  string
}

// SubmitLimiter reports whether a client may submit now.
type SubmitLimiter interface {
	Allow(ip string) bool
}

// ContactService accepts contact submissions and backs the admin inbox.
type ContactService struct {
	store     ContactMessageStore
	notifier  mail.Notifier
	confirmer *Confirmer
	limiter   SubmitLimiter
	logger    *slog.Logger
}

// NewContactService returns a ContactService. c holds delete confirmations.
func NewContactService(store ContactMessageStore, notifier mail.Notifier, c cache.Cache, logger *slog.Logger) *ContactService {
	if logger == nil {
		logger = slog.Default()
	}
	if notifier == nil {
		notifier = mail.NewLogNotifier(logger)
	}
	if c == nil {
		c = NewConfirmationCache()
	}
	return &ContactService{
		store:     store,
		notifier:  notifier,
		confirmer: NewConfirmer(c),
		logger:    logger,
	}
}

// WithRateLimit throttles the side effects of submissions per client IP.
// Over-limit submissions still get the success receipt.
func (s *ContactService) WithRateLimit(l SubmitLimiter) *ContactService {
	s.limiter = l
	return s
}

// Submit validates s and returns the success receipt. Persisting the
// message and notifying the admin are attempted after validation; their
// failures are logged and never change the result. Submissions from known
// bots or over the rate limit are acknowledged without either side effect.
func (s *ContactService) Submit(ctx context.Context, sub contact.Submission, meta SubmitMeta) (contact.Receipt, error) {
	sub = sub.Normalized()
	if err := sub.Validate(); err != nil {
		return contact.Receipt{}, err
	}

	if meta.UserAgent != "" && useragent.Parse(meta.UserAgent).Bot {
		s.logger.Info("contact submission from bot ignored",
			"category", model.EventCategoryContact,
			"user_agent", meta.UserAgent,
			"ip", meta.RemoteIP)
		return contact.Accepted(), nil
	}

	if s.limiter != nil && !s.limiter.Allow(meta.RemoteIP) {
		s.logger.Warn("contact rate limit exceeded, submission dropped",
			"category", model.EventCategoryContact,
			"ip", meta.RemoteIP)
		return contact.Accepted(), nil
	}

	msg, err := s.store.Create(ctx, model.NewContactMessage{
		Name:    sub.Name,
		Email:   sub.Email,
		Subject: sub.Subject,
		Message: sub.Message,
	})
	if err != nil {
		s.logger.Error("saving contact message failed",
			"category", model.EventCategoryContact,
			"error", err,
			"ip", meta.RemoteIP)
		msg = model.ContactMessage{
			Name:      sub.Name,
			Email:     sub.Email,
			Subject:   sub.Subject,
			Message:   sub.Message,
			CreatedAt: time.Now().UTC(),
		}
	} else {
		s.logger.Info("contact message saved", "category", model.EventCategoryContact, "message_id", msg.ID)
	}

	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), NotifyTimeout)
	defer cancel()
	if err := s.notifier.NotifyContact(notifyCtx, msg); err != nil {
		s.logger.Error("contact notification failed",
			"category", model.EventCategoryContact,
			"error", err,
			"message_id", msg.ID)
	}

	return contact.Accepted(), nil
}

// List returns all messages, newest first.
func (s *ContactService) List(ctx context.Context) ([]model.ContactMessage, error) {
	return s.store.List(ctx)
}

// Get returns one message.
func (s *ContactService) Get(ctx context.Context, id string) (model.ContactMessage, error) {
	return s.store.Get(ctx, id)
}

// CountUnread returns the number of unread messages.
func (s *ContactService) CountUnread(ctx context.Context) (int64, error) {
	return s.store.CountUnread(ctx)
}

// SetRead marks a message read or unread.
func (s *ContactService) SetRead(ctx context.Context, id string, read bool) (model.ContactMessage, error) {
	if err := s.store.SetRead(ctx, id, read); err != nil {
		return model.ContactMessage{}, err
	}
	return s.store.Get(ctx, id)
}

// RequestDelete issues the confirmation token required by Delete.
func (s *ContactService) RequestDelete(ctx context.Context, id string) (Confirmation, error) {
	if _, err := s.store.Get(ctx, id); err != nil {
		return Confirmation{}, err
	}
	return s.confirmer.Issue(ctx, confirmKindMessage, id)
}

// Delete removes a message using a token from RequestDelete.
func (s *ContactService) Delete(ctx context.Context, id, token string) error {
	if err := s.confirmer.Redeem(ctx, confirmKindMessage, id, token); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("contact message deleted", "category", model.EventCategoryContact, "message_id", id)
	return nil
}
