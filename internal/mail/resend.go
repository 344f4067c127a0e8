// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/olegiv/campusvoice/internal/model"
)

// Resend client defaults
const (
	DefaultAPIURL  = "https://api.resend.com/emails"
	DefaultFrom    = "CampusVoice <noreply@campusvoice.com>"
	RequestTimeout = 10 * time.Second
	MaxResponseLen = 10 * 1024
)

// ResendConfig configures a ResendNotifier.
type ResendConfig struct {
	APIKey string
	APIURL string
	From   string
	To     string
}

// ResendNotifier sends notifications through a Resend-compatible HTTP API.
type ResendNotifier struct {
	cfg    ResendConfig
	client *http.Client
}

type resendRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	ReplyTo string `json:"reply_to,omitempty"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// NewResendNotifier returns a notifier for cfg. A nil client uses one with
// RequestTimeout.
func NewResendNotifier(cfg ResendConfig, client *http.Client) *ResendNotifier {
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if cfg.From == "" {
		cfg.From = DefaultFrom
	}
	if client == nil {
		client = &http.Client{Timeout: RequestTimeout}
	}
	return &ResendNotifier{cfg: cfg, client: client}
}

// NotifyContact emails msg to the configured admin address with reply-to
// set to the sender.
func (n *ResendNotifier) NotifyContact(ctx context.Context, msg model.ContactMessage) error {
	body, err := RenderContactHTML(msg)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(resendRequest{
		From:    n.cfg.From,
		To:      n.cfg.To,
		ReplyTo: msg.Email,
		Subject: Subject(msg),
		HTML:    body,
	})
	if err != nil {
		return fmt.Errorf("encoding mail request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.APIURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+n.cfg.APIKey)

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("mail request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, MaxResponseLen))
		return fmt.Errorf("mail API returned %d: %s", resp.StatusCode, bytes.TrimSpace(respBody))
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, MaxResponseLen))
	return nil
}
