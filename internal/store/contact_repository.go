// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/campusvoice/internal/model"
)

// ContactRepository persists contact messages in SQLite.
type ContactRepository struct {
	queries *Queries
	now     func() time.Time
}

// NewContactRepository creates a ContactRepository on top of db.
func NewContactRepository(db DBTX) *ContactRepository {
	return &ContactRepository{
		queries: New(db),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Create stores a new unread message.
func (r *ContactRepository) Create(ctx context.Context, m model.NewContactMessage) (model.ContactMessage, error) {
	row, err := r.queries.CreateContactMessage(ctx, CreateContactMessageParams{
		ID:        uuid.NewString(),
		Name:      m.Name,
		Email:     m.Email,
		Subject:   m.Subject,
		Message:   m.Message,
		CreatedAt: r.now(),
	})
	if err != nil {
		return model.ContactMessage{}, fmt.Errorf("creating contact message: %w", err)
	}
	return contactMessageFromRow(row), nil
}

// Get returns the message with id.
func (r *ContactRepository) Get(ctx context.Context, id string) (model.ContactMessage, error) {
	row, err := r.queries.GetContactMessage(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ContactMessage{}, model.ErrNotFound
	}
	if err != nil {
		return model.ContactMessage{}, fmt.Errorf("getting contact message: %w", err)
	}
	return contactMessageFromRow(row), nil
}

// List returns all messages newest first.
func (r *ContactRepository) List(ctx context.Context) ([]model.ContactMessage, error) {
	rows, err := r.queries.ListContactMessages(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing contact messages: %w", err)
	}
	msgs := make([]model.ContactMessage, 0, len(rows))
	for _, row := range rows {
		msgs = append(msgs, contactMessageFromRow(row))
	}
	return msgs, nil
}

// SetRead updates the read flag of the message with id.
func (r *ContactRepository) SetRead(ctx context.Context, id string, read bool) error {
	n, err := r.queries.SetContactMessageRead(ctx, read, id)
	if err != nil {
		return fmt.Errorf("updating contact message: %w", err)
	}
	if n == 0 {
		return model.ErrNotFound
	}
	return nil
}

// Delete removes the message with id.
func (r *ContactRepository) Delete(ctx context.Context, id string) error {
	n, err := r.queries.DeleteContactMessage(ctx, id)
	if err != nil {
		return fmt.Errorf("deleting contact message: %w", err)
	}
	if n == 0 {
		return model.ErrNotFound
	}
	return nil
}

// CountUnread returns the number of unread messages.
func (r *ContactRepository) CountUnread(ctx context.Context) (int64, error) {
	return r.queries.CountUnreadContactMessages(ctx)
}

func contactMessageFromRow(row ContactMessage) model.ContactMessage {
	return model.ContactMessage{
		ID:        row.ID,
		Name:      row.Name,
		Email:     row.Email,
		Subject:   row.Subject,
		Message:   row.Message,
		Read:      row.Read,
		CreatedAt: row.CreatedAt,
	}
}
