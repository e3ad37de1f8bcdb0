// SPDX-FileCopyrightText: Copyright 2026 The authrelay Authors
// SPDX-License-Identifier: Apache-2.0

// Package auth gates inbound requests to protected endpoints. It validates
// bearer access tokens purely cryptographically (signature, issuer, expiry)
// and exposes the authenticated identity to downstream handlers via the
// request context.
package auth

import "github.com/relaykit/authrelay/pkg/token"

// Identity is the authenticated context produced by the bearer validator.
// It carries everything a downstream upstream-provider call needs, so
// handlers never have to consult the token stores.
type Identity struct {
	// TenantID is the upstream org/tenant the credentials are scoped to.
	TenantID string

	// InstanceURL is the upstream instance to direct API calls at.
	InstanceURL string

	// UpstreamToken is the upstream provider access token.
	UpstreamToken string

	// Scope is the space-separated scope set granted to the client.
	Scope string
}

// identityFromClaims maps verified access-token claims to an Identity.
func identityFromClaims(claims *token.Claims) *Identity {
	return &Identity{
		TenantID:      claims.Subject,
		InstanceURL:   claims.InstanceURL,
		UpstreamToken: claims.UpstreamToken,
		Scope:         claims.Scope,
	}
}
