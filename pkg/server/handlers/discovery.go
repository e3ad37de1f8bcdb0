// SPDX-FileCopyrightText: Copyright 2026 The authrelay Authors
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/relaykit/authrelay/pkg/crypto"
)

// discoveryCacheMaxAge is the Cache-Control max-age for the discovery
// documents (1 hour); they only change on redeploy.
const discoveryCacheMaxAge = 3600

// authorizationServerMetadata is the RFC 8414 authorization server metadata
// document.
type authorizationServerMetadata struct {
	Issuer                            string   `json:"issuer"`
	AuthorizationEndpoint             string   `json:"authorization_endpoint"`
	TokenEndpoint                     string   `json:"token_endpoint"`
	ResponseTypesSupported            []string `json:"response_types_supported"`
	GrantTypesSupported               []string `json:"grant_types_supported"`
	CodeChallengeMethodsSupported     []string `json:"code_challenge_methods_supported"`
	TokenEndpointAuthMethodsSupported []string `json:"token_endpoint_auth_methods_supported"`
	ScopesSupported                   []string `json:"scopes_supported,omitempty"`
}

// protectedResourceMetadata is the RFC 9728 protected resource metadata
// document.
type protectedResourceMetadata struct {
	Resource               string   `json:"resource"`
	AuthorizationServers   []string `json:"authorization_servers"`
	ScopesSupported        []string `json:"scopes_supported,omitempty"`
	BearerMethodsSupported []string `json:"bearer_methods_supported"`
}

// AuthorizationServerMetadataHandler handles
// GET /.well-known/oauth-authorization-server (RFC 8414).
func (h *Handler) AuthorizationServerMetadataHandler(w http.ResponseWriter, _ *http.Request) {
	metadata := authorizationServerMetadata{
		Issuer:                            h.issuer,
		AuthorizationEndpoint:             h.issuer + "/oauth/authorize",
		TokenEndpoint:                     h.issuer + "/oauth/token",
		ResponseTypesSupported:            []string{"code"},
		GrantTypesSupported:               []string{"authorization_code", "refresh_token"},
		CodeChallengeMethodsSupported:     []string{crypto.ChallengeMethodS256},
		TokenEndpointAuthMethodsSupported: []string{"none"},
	}
	if h.scope != "" {
		metadata.ScopesSupported = strings.Fields(h.scope)
	}

	w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", discoveryCacheMaxAge))
	writeJSON(w, http.StatusOK, metadata)
}

// ProtectedResourceMetadataHandler handles
// GET /.well-known/oauth-protected-resource (RFC 9728).
func (h *Handler) ProtectedResourceMetadataHandler(w http.ResponseWriter, _ *http.Request) {
	metadata := protectedResourceMetadata{
		Resource:               h.issuer,
		AuthorizationServers:   []string{h.issuer},
		BearerMethodsSupported: []string{"header"},
	}
	if h.scope != "" {
		metadata.ScopesSupported = strings.Fields(h.scope)
	}

	w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", discoveryCacheMaxAge))
	writeJSON(w, http.StatusOK, metadata)
}
