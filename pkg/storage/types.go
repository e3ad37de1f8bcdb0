// SPDX-FileCopyrightText: Copyright 2026 The authrelay Authors
// SPDX-License-Identifier: Apache-2.0

// Package storage holds the short-lived protocol state of the authorization
// server: pending authorization requests, minted internal codes and refresh
// records. Each kind lives in its own TTL-bounded store behind a small
// get/put/delete contract so the in-memory implementation can be swapped for
// a shared external store in multi-instance deployments.
package storage

import (
	"context"
	"time"
)

// Default TTLs for the three store kinds.
const (
	// DefaultPendingTTL bounds how long a client has to complete the
	// upstream login before the flow must be restarted.
	DefaultPendingTTL = 10 * time.Minute

	// DefaultCodeTTL bounds how long a minted internal code stays
	// redeemable.
	DefaultCodeTTL = 10 * time.Minute

	// DefaultRefreshTTL bounds how long a refresh token stays usable
	// without a full re-authorization.
	DefaultRefreshTTL = 30 * 24 * time.Hour
)

// PendingAuthRequest tracks a client authorization request while the user
// authenticates with the upstream provider. Keyed by the internally
// generated state value sent upstream.
type PendingAuthRequest struct {
	// CodeChallenge is the client's PKCE code challenge (S256).
	CodeChallenge string

	// RedirectURI is the client's callback URL.
	RedirectURI string

	// ClientState is the client's original state parameter, echoed back
	// verbatim on the final redirect. Empty if the client sent none.
	ClientState string

	// CreatedAt is when the request was stored.
	CreatedAt time.Time
}

// IssuedAuthCode is an internal authorization code minted after a successful
// upstream exchange, awaiting single-use redemption. Keyed by the code.
type IssuedAuthCode struct {
	// UpstreamAccessToken is the access token obtained from the upstream
	// provider during the callback exchange.
	UpstreamAccessToken string

	// UpstreamRefreshToken is the upstream refresh token, if the provider
	// issued one.
	UpstreamRefreshToken string

	// InstanceURL is the upstream instance the tokens are valid against.
	InstanceURL string

	// TenantID is the upstream org/tenant the authorization is scoped to.
	TenantID string

	// CodeChallenge is copied from the originating pending request and
	// verified against the client's code_verifier at redemption.
	CodeChallenge string

	// CreatedAt is when the code was minted.
	CreatedAt time.Time
}

// RefreshRecord is the long-lived renewal state behind an issued refresh
// token. Keyed by the refresh token value.
type RefreshRecord struct {
	// UpstreamRefreshToken is presented to the upstream provider on each
	// renewal.
	UpstreamRefreshToken string

	// InstanceURL is the upstream instance recorded at issuance.
	InstanceURL string

	// TenantID is the upstream org/tenant the record is scoped to.
	TenantID string

	// CreatedAt is when the record was created.
	CreatedAt time.Time
}

// Store is the per-kind contract the controllers depend on. Get rejects
// entries older than the store's TTL even if the sweeper has not run yet.
// Consume atomically looks up and deletes an entry so that concurrent
// redemption attempts on the same key yield exactly one hit.
type Store[T any] interface {
	Put(ctx context.Context, key string, value T) error
	Get(ctx context.Context, key string) (T, bool)
	Consume(ctx context.Context, key string) (T, bool)
	Delete(ctx context.Context, key string) error
}

// Stores bundles the three stores a running server needs.
type Stores struct {
	Pending Store[*PendingAuthRequest]
	Codes   Store[*IssuedAuthCode]
	Refresh Store[*RefreshRecord]
}
