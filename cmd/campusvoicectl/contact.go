// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/olegiv/campusvoice/internal/contact"
)

func newContactCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contact",
		Short: "Talk to a running server's contact intake",
	}
	cmd.AddCommand(newContactSendCmd())
	return cmd
}

func newContactSendCmd() *cobra.Command {
	var (
		baseURL string
		origin  string
		sub     contact.Submission
	)

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Submit a contact message",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := contact.NewClient(baseURL, nil)
			if origin != "" {
				client.WithOrigin(origin)
			}
			receipt, err := client.Send(cmd.Context(), sub)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), receipt.Message)
			return nil
		},
	}

	cmd.Flags().StringVar(&baseURL, "url", "http://localhost:8080", "Server base URL")
	cmd.Flags().StringVar(&origin, "origin", "", "Origin header to send")
	cmd.Flags().StringVar(&sub.Name, "name", "", "Sender name")
	cmd.Flags().StringVar(&sub.Email, "email", "", "Sender email")
	cmd.Flags().StringVar(&sub.Subject, "subject", "", "Message subject")
	cmd.Flags().StringVar(&sub.Message, "message", "", "Message body")
	return cmd
}
