// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"net/http"

	"github.com/olegiv/campusvoice/internal/contact"
	"github.com/olegiv/campusvoice/internal/middleware"
	"github.com/olegiv/campusvoice/internal/render"
	"github.com/olegiv/campusvoice/internal/service"
)

// ContactPage is the data of the contact form template.
type ContactPage struct {
	Sent    bool
	Message string
	Error   string
	Values  contact.Submission
}

// ContactHandler serves the contact intake endpoint and the contact form.
type ContactHandler struct {
	renderer *render.Renderer
	contact  *service.ContactService
	users    middleware.UserSource
}

// NewContactHandler creates a new ContactHandler.
func NewContactHandler(renderer *render.Renderer, contactService *service.ContactService, users middleware.UserSource) *ContactHandler {
	return &ContactHandler{renderer: renderer, contact: contactService, users: users}
}

// Intake handles POST /contact-intake. Every response is JSON.
func (h *ContactHandler) Intake(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxIntakeBody)

	var sub contact.Submission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		writeJSONError(w, http.StatusBadRequest, contact.CodeInvalidJSON, "Invalid JSON body")
		return
	}

	receipt, err := h.contact.Submit(r.Context(), sub, submitMeta(r))
	if err != nil {
		writeContactError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

// Form renders the contact form.
func (h *ContactHandler) Form(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, h.renderer, http.StatusOK, "public/contact", pageData(r, h.users, "Contact", ContactPage{}))
}

// Submit handles the contact form. The form checks its own stricter rules
// first, then goes through the same boundary as the intake endpoint.
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBody)
	if err := r.ParseForm(); err != nil {
		h.renderForm(w, r, http.StatusBadRequest, ContactPage{Error: "Invalid form data"})
		return
	}

	sub := contact.Submission{
		Name:    r.PostFormValue("name"),
		Email:   r.PostFormValue("email"),
		Subject: r.PostFormValue("subject"),
		Message: r.PostFormValue("message"),
	}.Normalized()

	if err := sub.ValidateForm(); err != nil {
		h.renderForm(w, r, http.StatusBadRequest, ContactPage{Error: contactErrorMessage(err), Values: sub})
		return
	}

	receipt, err := h.contact.Submit(r.Context(), sub, submitMeta(r))
	if err != nil {
		h.renderForm(w, r, http.StatusBadRequest, ContactPage{Error: contactErrorMessage(err), Values: sub})
		return
	}
	h.renderForm(w, r, http.StatusOK, ContactPage{Sent: true, Message: receipt.Message})
}

func (h *ContactHandler) renderForm(w http.ResponseWriter, r *http.Request, status int, page ContactPage) {
	renderPage(w, r, h.renderer, status, "public/contact", pageData(r, h.users, "Contact", page))
}

func submitMeta(r *http.Request) service.SubmitMeta {
	return service.SubmitMeta{
		UserAgent: r.UserAgent(),
		RemoteIP:  middleware.ClientIP(r),
	}
}

func writeContactError(w http.ResponseWriter, err error) {
	code := contact.Code(err)
	if code == "" {
		writeJSONError(w, http.StatusInternalServerError, "internal_error", "Internal Server Error")
		return
	}
	writeJSONError(w, http.StatusBadRequest, code, err.Error())
}

func contactErrorMessage(err error) string {
	if contact.Code(err) != "" {
		return err.Error()
	}
	return "Something went wrong. Please try again."
}
