// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const contactMessageColumns = `id, name, email, subject, message, read, created_at`

func scanContactMessage(row interface{ Scan(...interface{}) error }) (ContactMessage, error) {
	var i ContactMessage
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Email,
		&i.Subject,
		&i.Message,
		&i.Read,
		&i.CreatedAt,
	)
	return i, err
}

const createContactMessage = `-- name: CreateContactMessage :one
INSERT INTO contact_messages (id, name, email, subject, message, read, created_at)
VALUES (?, ?, ?, ?, ?, 0, ?)
RETURNING ` + contactMessageColumns

// CreateContactMessageParams holds the values for CreateContactMessage.
type CreateContactMessageParams struct {
	ID        string
	Name      string
	Email     string
	Subject   string
	Message   string
	CreatedAt time.Time
}

func (q *Queries) CreateContactMessage(ctx context.Context, arg CreateContactMessageParams) (ContactMessage, error) {
	row := q.db.QueryRowContext(ctx, createContactMessage,
		arg.ID,
		arg.Name,
		arg.Email,
		arg.Subject,
		arg.Message,
		arg.CreatedAt,
	)
	return scanContactMessage(row)
}

const getContactMessage = `-- name: GetContactMessage :one
SELECT ` + contactMessageColumns + ` FROM contact_messages WHERE id = ?`

func (q *Queries) GetContactMessage(ctx context.Context, id string) (ContactMessage, error) {
	return scanContactMessage(q.db.QueryRowContext(ctx, getContactMessage, id))
}

const listContactMessages = `-- name: ListContactMessages :many
SELECT ` + contactMessageColumns + ` FROM contact_messages ORDER BY created_at DESC, id DESC`

func (q *Queries) ListContactMessages(ctx context.Context) ([]ContactMessage, error) {
	rows, err := q.db.QueryContext(ctx, listContactMessages)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	items := []ContactMessage{}
	for rows.Next() {
		i, err := scanContactMessage(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const setContactMessageRead = `-- name: SetContactMessageRead :execrows
UPDATE contact_messages SET read = ? WHERE id = ?`

func (q *Queries) SetContactMessageRead(ctx context.Context, read bool, id string) (int64, error) {
	result, err := q.db.ExecContext(ctx, setContactMessageRead, read, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteContactMessage = `-- name: DeleteContactMessage :execrows
DELETE FROM contact_messages WHERE id = ?`

func (q *Queries) DeleteContactMessage(ctx context.Context, id string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteContactMessage, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const countUnreadContactMessages = `-- name: CountUnreadContactMessages :one
SELECT COUNT(*) FROM contact_messages WHERE read = 0`

func (q *Queries) CountUnreadContactMessages(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countUnreadContactMessages).Scan(&count)
	return count, err
}
