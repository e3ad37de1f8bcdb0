// SPDX-FileCopyrightText: Copyright 2026 The authrelay Authors
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/relaykit/authrelay/pkg/logger"
)

// OAuth 2.0 error codes (RFC 6749) returned by the protocol endpoints.
const (
	ErrorCodeInvalidRequest          = "invalid_request"
	ErrorCodeInvalidGrant            = "invalid_grant"
	ErrorCodeInvalidState            = "invalid_state"
	ErrorCodeUnsupportedResponseType = "unsupported_response_type"
	ErrorCodeUnsupportedGrantType    = "unsupported_grant_type"
	ErrorCodeServerError             = "server_error"
)

// errorResponse is the JSON body for every failed protocol request.
type errorResponse struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

// writeError writes a structured OAuth error response. Server-caused
// failures carry a generic description; detail stays in the logs.
func writeError(w http.ResponseWriter, code, description string, status int) {
	writeJSON(w, status, errorResponse{
		Error:       code,
		Description: description,
	})
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Errorw("failed to encode response",
			"error", err,
		)
	}
}
