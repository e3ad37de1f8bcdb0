// SPDX-FileCopyrightText: Copyright 2026 The authrelay Authors
// SPDX-License-Identifier: Apache-2.0

// Package upstream implements the outbound OAuth 2.0 client against the
// upstream resource provider: building the authorization redirect and
// performing form-encoded code and refresh exchanges against its token
// endpoint.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Provider is the contract the flow controllers depend on.
type Provider interface {
	// AuthorizationURL builds the upstream authorization redirect for the
	// given internal state. loginURL optionally overrides the host of the
	// configured authorization endpoint for this request (e.g. a sandbox
	// login host); pass "" for the default.
	AuthorizationURL(state, loginURL string) (string, error)

	// Exchange redeems an upstream authorization code for tokens.
	Exchange(ctx context.Context, code string) (*Tokens, error)

	// Refresh renews tokens using an upstream refresh token.
	Refresh(ctx context.Context, refreshToken string) (*Tokens, error)
}

// Tokens is the result of a successful upstream token-endpoint call.
type Tokens struct {
	// AccessToken is the upstream access token.
	AccessToken string

	// RefreshToken is the upstream refresh token, if issued. Refresh
	// responses typically omit it.
	RefreshToken string

	// InstanceURL is the API host the tokens are valid against.
	InstanceURL string

	// TenantID is the org/tenant identifier parsed from the identity URL.
	TenantID string

	// UserID is the user identifier parsed from the identity URL.
	UserID string
}

// tokenResponse is the raw upstream token-endpoint response body.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	InstanceURL  string `json:"instance_url"`
	ID           string `json:"id"`
	Error        string `json:"error,omitempty"`
	ErrorDesc    string `json:"error_description,omitempty"`
}

// parseTokenResponse decodes an upstream token response body. Non-2xx
// statuses and error bodies are reported without echoing token material.
func parseTokenResponse(body []byte, statusCode int) (*Tokens, error) {
	var resp tokenResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode token response (status %d): %w", statusCode, err)
	}

	if statusCode < 200 || statusCode >= 300 || resp.Error != "" {
		if resp.Error != "" {
			return nil, fmt.Errorf("upstream token endpoint returned %q: %s", resp.Error, resp.ErrorDesc)
		}
		return nil, fmt.Errorf("upstream token endpoint returned status %d", statusCode)
	}

	if resp.AccessToken == "" {
		return nil, errors.New("upstream token response missing access_token")
	}

	tenantID, userID := parseIdentityURL(resp.ID)

	return &Tokens{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		InstanceURL:  resp.InstanceURL,
		TenantID:     tenantID,
		UserID:       userID,
	}, nil
}

// parseIdentityURL extracts the org/tenant and user identifiers from an
// upstream identity URL of the form https://host/id/<tenant>/<user>.
// Either value is empty if the URL does not carry it.
func parseIdentityURL(id string) (tenantID, userID string) {
	if id == "" {
		return "", ""
	}
	u, err := url.Parse(id)
	if err != nil {
		return "", ""
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 3 || parts[len(parts)-3] != "id" {
		return "", ""
	}
	return parts[len(parts)-2], parts[len(parts)-1]
}
