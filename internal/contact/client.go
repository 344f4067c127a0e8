// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package contact

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client configuration constants
const (
	IntakePath     = "/contact-intake"
	RequestTimeout = 15 * time.Second
	MaxResponseLen = 64 * 1024
	UserAgent      = "campusvoice-contact/1.0"
)

// RemoteError is a rejection reported by the intake endpoint.
type RemoteError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *RemoteError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("contact intake rejected (%d %s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("contact intake rejected (%d): %s", e.StatusCode, e.Message)
}

// Client submits contact messages to a campusvoice server.
type Client struct {
	baseURL string
	http    *http.Client
	origin  string
}

// NewClient returns a client for the server at baseURL. A nil httpClient
// uses a client with RequestTimeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: RequestTimeout}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// WithOrigin sets the Origin header sent with every request.
func (c *Client) WithOrigin(origin string) *Client {
	c.origin = origin
	return c
}

// Send normalizes s, applies the form rules locally, and posts it.
// Local failures are returned as validation errors without a request.
func (c *Client) Send(ctx context.Context, s Submission) (Receipt, error) {
	s = s.Normalized()
	if err := s.ValidateForm(); err != nil {
		return Receipt{}, err
	}

	payload, err := json.Marshal(s)
	if err != nil {
		return Receipt{}, fmt.Errorf("encoding submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+IntakePath, bytes.NewReader(payload))
	if err != nil {
		return Receipt{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", UserAgent)
	if c.origin != "" {
		req.Header.Set("Origin", c.origin)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Receipt{}, fmt.Errorf("sending submission: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseLen))
	if err != nil {
		return Receipt{}, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var e ErrorResponse
		if jsonErr := json.Unmarshal(body, &e); jsonErr != nil || e.Error == "" {
			e.Error = strings.TrimSpace(string(body))
		}
		return Receipt{}, &RemoteError{StatusCode: resp.StatusCode, Code: e.Code, Message: e.Error}
	}

	var r Receipt
	if err := json.Unmarshal(body, &r); err != nil {
		return Receipt{}, fmt.Errorf("decoding receipt: %w", err)
	}
	return r, nil
}
