// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package contact holds the contact-intake contract shared by the server
// boundary and its clients: the submission shape, validation rules, error
// codes, and an HTTP client for the intake endpoint.
package contact

import (
	"errors"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"golang.org/x/text/unicode/norm"
)

// Validation error codes returned by the intake endpoint.
const (
	CodeMissingFields  = "missing_fields"
	CodeInvalidName    = "invalid_name"
	CodeInvalidEmail   = "invalid_email"
	CodeInvalidMessage = "invalid_message"
	CodeInvalidJSON    = "invalid_json"
)

// Field bounds, counted in runes.
const (
	NameMinLength    = 2
	NameMaxLength    = 100
	MessageMinLength = 10
	MessageMaxLength = 5000
)

// SuccessMessage is returned for every accepted submission.
const SuccessMessage = "Thank you! We've received your message and will get back to you soon."

// Validation failures, in the order they are checked.
var (
	ErrMissingFields  = validation.NewError(CodeMissingFields, "Missing required fields")
	ErrInvalidName    = validation.NewError(CodeInvalidName, "Name must be between 2-100 characters")
	ErrInvalidEmail   = validation.NewError(CodeInvalidEmail, "Invalid email format")
	ErrInvalidMessage = validation.NewError(CodeInvalidMessage, "Message must be between 10-5000 characters")
)

// Form-level failures shown by the contact form before anything is sent.
var (
	ErrFormIncomplete   = validation.NewError(CodeMissingFields, "Please fill in all fields")
	ErrFormInvalidEmail = validation.NewError(CodeInvalidEmail, "Please enter a valid email address")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Submission is the JSON body accepted by POST /contact-intake.
type Submission struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject,omitempty"`
	Message string `json:"message"`
}

// Receipt is the success body of the intake endpoint.
type Receipt struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ErrorResponse is the failure body of the intake endpoint.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Accepted returns the receipt sent for every accepted submission.
func Accepted() Receipt {
	return Receipt{Success: true, Message: SuccessMessage}
}

// Normalized returns a copy with every field trimmed and in Unicode NFC.
func (s Submission) Normalized() Submission {
	clean := func(v string) string {
		return norm.NFC.String(strings.TrimSpace(v))
	}
	return Submission{
		Name:    clean(s.Name),
		Email:   clean(s.Email),
		Subject: clean(s.Subject),
		Message: clean(s.Message),
	}
}

// Validate checks a normalized submission. The first failing rule wins and
// is returned as a validation.Error carrying its code.
func (s Submission) Validate() error {
	if s.Name == "" || s.Email == "" || s.Message == "" {
		return ErrMissingFields
	}
	if err := validation.Validate(s.Name,
		validation.RuneLength(NameMinLength, NameMaxLength).ErrorObject(ErrInvalidName),
	); err != nil {
		return err
	}
	if err := validation.Validate(s.Email,
		validation.Match(emailPattern).ErrorObject(ErrInvalidEmail),
	); err != nil {
		return err
	}
	if err := validation.Validate(s.Message,
		validation.RuneLength(MessageMinLength, MessageMaxLength).ErrorObject(ErrInvalidMessage),
	); err != nil {
		return err
	}
	return nil
}

// ValidateForm applies the contact form's stricter rules, which also
// require a subject, then the intake rules.
func (s Submission) ValidateForm() error {
	if s.Name == "" || s.Email == "" || s.Subject == "" || s.Message == "" {
		return ErrFormIncomplete
	}
	if !emailPattern.MatchString(s.Email) {
		return ErrFormInvalidEmail
	}
	return s.Validate()
}

// Code extracts the validation code from err, or "" if err is not a
// contact validation failure.
func Code(err error) string {
	var verr validation.Error
	if errors.As(err, &verr) {
		return verr.Code()
	}
	return ""
}
