// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/campusvoice/internal/model"
)

// AdminParams describes an administrator account to create.
type AdminParams struct {
	Email        string
	Name         string
	PasswordHash string
}

// EnsureAdmin creates the administrator described by p unless a user with
// the same email already exists. It reports whether a user was created.
func EnsureAdmin(ctx context.Context, q *Queries, p AdminParams) (User, bool, error) {
	email := strings.ToLower(strings.TrimSpace(p.Email))
	if email == "" || p.PasswordHash == "" {
		return User{}, false, errors.New("admin email and password hash are required")
	}

	existing, err := q.GetUserByEmail(ctx, email)
	if err == nil {
		slog.Info("admin user already exists, skipping", "email", email)
		return existing, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return User{}, false, fmt.Errorf("checking for admin user: %w", err)
	}

	name := strings.TrimSpace(p.Name)
	if name == "" {
		name = "Administrator"
	}

	now := time.Now().UTC()
	user, err := q.CreateUser(ctx, CreateUserParams{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: p.PasswordHash,
		Role:         model.RoleAdmin,
		Name:         name,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return User{}, false, fmt.Errorf("creating admin user: %w", err)
	}

	slog.Info("created admin user", "id", user.ID, "email", user.Email)
	return user, true, nil
}

// UserModel converts a users row to the domain type.
func UserModel(row User) model.User {
	u := model.User{
		ID:           row.ID,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		Role:         row.Role,
		Name:         row.Name,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
	if row.LastLoginAt.Valid {
		t := row.LastLoginAt.Time
		u.LastLoginAt = &t
	}
	return u
}
