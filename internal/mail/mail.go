// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package mail delivers contact-form notifications to the site admin.
package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"

	"github.com/olegiv/campusvoice/internal/model"
)

// Notifier sends a notification about a received contact message.
type Notifier interface {
	NotifyContact(ctx context.Context, msg model.ContactMessage) error
}

// Subject returns the notification subject for msg.
func Subject(msg model.ContactMessage) string {
	return "New Contact Message from " + msg.Name
}

var contactTmpl = template.Must(template.New("contact").Parse(`<div style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #000; margin-bottom: 24px;">New Contact Message from CampusVoice Diaries</h2>
  <div style="background-color: #f5f5f5; padding: 16px; border-radius: 8px; margin-bottom: 16px;">
    <p style="margin: 0 0 8px 0;"><strong>From:</strong> {{.Name}}</p>
    <p style="margin: 0;"><strong>Email:</strong> <a href="mailto:{{.Email}}" style="color: #0066cc; text-decoration: none;">{{.Email}}</a></p>
    {{- if .Subject}}
    <p style="margin: 8px 0 0 0;"><strong>Subject:</strong> {{.Subject}}</p>
    {{- end}}
  </div>
  <div style="border-left: 4px solid #0066cc; padding-left: 16px; margin: 24px 0;">
    <p style="white-space: pre-wrap; color: #333; line-height: 1.6; margin: 0;">{{.Message}}</p>
  </div>
  <hr style="border: none; border-top: 1px solid #eee; margin: 24px 0;" />
  <p style="font-size: 12px; color: #999; margin: 0;">This message was sent through the contact form at CampusVoice Diaries.</p>
</div>
`))

// RenderContactHTML renders the HTML notification body. Submitted fields
// are escaped by html/template.
func RenderContactHTML(msg model.ContactMessage) (string, error) {
	var buf bytes.Buffer
	if err := contactTmpl.Execute(&buf, msg); err != nil {
		return "", fmt.Errorf("rendering contact email: %w", err)
	}
	return buf.String(), nil
}

// LogNotifier writes notifications to the log. It is used when no mail
// API key is configured.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs through logger.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

// NotifyContact logs msg at INFO.
func (n *LogNotifier) NotifyContact(ctx context.Context, msg model.ContactMessage) error {
	n.logger.InfoContext(ctx, "contact message received (mail API not configured)",
		"category", model.EventCategoryContact,
		"from", msg.Name,
		"email", msg.Email,
		"subject", msg.Subject,
		"message", msg.Message)
	return nil
}
