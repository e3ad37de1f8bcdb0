// SPDX-FileCopyrightText: Copyright 2026 The authrelay Authors
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/relaykit/authrelay/pkg/logger"
	"github.com/relaykit/authrelay/pkg/token"
)

// Error codes returned by the bearer validator (RFC 6750).
const (
	ErrorCodeUnauthorized = "unauthorized"
	ErrorCodeInvalidToken = "invalid_token"
)

// Middleware returns an HTTP middleware that authenticates requests with a
// token minted by signer. Validation is local: signature, issuer and expiry
// only, no store lookup. On success the Identity is placed in the request
// context for downstream handlers.
//
// resourceMetadataURL, when non-empty, is advertised in the WWW-Authenticate
// challenge so MCP clients can discover the authorization server (RFC 9728).
func Middleware(signer *token.Signer, resourceMetadataURL string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeAuthError(w, ErrorCodeUnauthorized,
					"Authorization header required", resourceMetadataURL)
				return
			}

			raw, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || raw == "" {
				writeAuthError(w, ErrorCodeUnauthorized,
					"Authorization header must be of the form 'Bearer <token>'", resourceMetadataURL)
				return
			}

			claims, err := signer.Verify(raw)
			if err != nil {
				logger.Debugw("bearer token rejected",
					"error", err,
				)
				writeAuthError(w, ErrorCodeInvalidToken,
					"access token is invalid or expired", resourceMetadataURL)
				return
			}

			ctx := WithIdentity(r.Context(), identityFromClaims(claims))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// writeAuthError writes a 401 with a WWW-Authenticate challenge and a
// structured JSON body.
func writeAuthError(w http.ResponseWriter, code, description, resourceMetadataURL string) {
	challenge := fmt.Sprintf("Bearer error=%q, error_description=%q", code, description)
	if resourceMetadataURL != "" {
		challenge += fmt.Sprintf(", resource_metadata=%q", resourceMetadataURL)
	}
	w.Header().Set("WWW-Authenticate", challenge)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":             code,
		"error_description": description,
	})
}
