// SPDX-FileCopyrightText: Copyright 2026 The authrelay Authors
// SPDX-License-Identifier: Apache-2.0

// Package handlers provides the HTTP handlers for the OAuth authorization
// server endpoints: authorize, callback, token and the well-known metadata
// documents.
package handlers

import (
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/relaykit/authrelay/pkg/storage"
	"github.com/relaykit/authrelay/pkg/token"
	"github.com/relaykit/authrelay/pkg/upstream"
)

// Handler holds the dependencies of the OAuth endpoints.
type Handler struct {
	stores   *storage.Stores
	upstream upstream.Provider
	signer   *token.Signer
	issuer   string
	scope    string
}

// NewHandler creates a Handler. issuer is this server's public base URL and
// scopes is the scope set granted to clients, reported back verbatim in
// token responses.
func NewHandler(
	stores *storage.Stores,
	up upstream.Provider,
	signer *token.Signer,
	issuer string,
	scopes []string,
) *Handler {
	return &Handler{
		stores:   stores,
		upstream: up,
		signer:   signer,
		issuer:   strings.TrimSuffix(issuer, "/"),
		scope:    strings.Join(scopes, " "),
	}
}

// OAuthRoutes registers the protocol endpoints on the provided router.
func (h *Handler) OAuthRoutes(r chi.Router) {
	r.Get("/oauth/authorize", h.AuthorizeHandler)
	r.Get("/oauth/callback", h.CallbackHandler)
	r.Post("/oauth/token", h.TokenHandler)
}

// WellKnownRoutes registers the discovery endpoints on the provided router.
func (h *Handler) WellKnownRoutes(r chi.Router) {
	r.Get("/.well-known/oauth-authorization-server", h.AuthorizationServerMetadataHandler)
	r.Get("/.well-known/oauth-protected-resource", h.ProtectedResourceMetadataHandler)
}
