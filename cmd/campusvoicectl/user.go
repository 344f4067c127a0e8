// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/olegiv/campusvoice/internal/auth"
	"github.com/olegiv/campusvoice/internal/store"
)

func newUserCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage admin accounts",
	}
	cmd.AddCommand(newUserCreateCmd(root))
	return cmd
}

func newUserCreateCmd(root *rootOptions) *cobra.Command {
	var email, name, password string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an admin account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				return errors.New("--email is required")
			}
			if err := auth.ValidatePassword(password); err != nil {
				return err
			}
			hash, err := auth.HashPassword(password)
			if err != nil {
				return fmt.Errorf("hashing password: %w", err)
			}

			db, err := openDB(root.dbPath)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			u, created, err := store.EnsureAdmin(cmd.Context(), store.New(db), store.AdminParams{
				Email:        email,
				Name:         name,
				PasswordHash: hash,
			})
			if err != nil {
				return err
			}
			if !created {
				return fmt.Errorf("a user with email %s already exists", u.Email)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "created admin %s (%s)\n", u.Email, u.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email (required)")
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	return cmd
}
