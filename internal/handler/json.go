// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"net/http"

	"github.com/olegiv/campusvoice/internal/contact"
)

// writeJSON writes v as a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeJSONError writes the {"error","code"} body of the intake endpoint.
func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, contact.ErrorResponse{Error: message, Code: code})
}
