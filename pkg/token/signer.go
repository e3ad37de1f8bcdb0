// SPDX-FileCopyrightText: Copyright 2026 The authrelay Authors
// SPDX-License-Identifier: Apache-2.0

// Package token mints and verifies the signed access tokens issued by the
// authorization server. Tokens are stateless: everything a downstream call
// needs (tenant, upstream instance, upstream access token, scope) is carried
// in the claims, and validity is proven by signature and expiry alone.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Verification errors surfaced to the bearer layer.
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Claims are the claims carried by an authrelay access token.
//
// The upstream access token is embedded directly; the signing secret is the
// single point of compromise for every embedded credential, which is why
// token lifetimes are kept short.
type Claims struct {
	jwt.RegisteredClaims

	// InstanceURL is the upstream instance the credentials are valid against.
	InstanceURL string `json:"instance_url"`

	// UpstreamToken is the upstream provider access token.
	UpstreamToken string `json:"upstream_token"`

	// Scope is the space-separated scope set granted to the client.
	Scope string `json:"scope"`
}

// Signer mints and verifies HS256-signed access tokens.
type Signer struct {
	secret   []byte
	issuer   string
	lifetime time.Duration
}

// NewSigner creates a Signer. The secret must be non-empty; issuer is the
// server's public base URL and becomes the iss claim.
func NewSigner(secret, issuer string, lifetime time.Duration) (*Signer, error) {
	if secret == "" {
		return nil, errors.New("signing secret is required")
	}
	if issuer == "" {
		return nil, errors.New("issuer is required")
	}
	return &Signer{
		secret:   []byte(secret),
		issuer:   issuer,
		lifetime: lifetime,
	}, nil
}

// Lifetime returns the access-token lifetime, used for the expires_in field
// of token responses.
func (s *Signer) Lifetime() time.Duration {
	return s.lifetime
}

// Mint creates a signed access token for the given tenant. The subject claim
// is the tenant identifier.
func (s *Signer) Mint(tenantID, instanceURL, upstreamToken, scope string) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   tenantID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
		},
		InstanceURL:   instanceURL,
		UpstreamToken: upstreamToken,
		Scope:         scope,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a signed access token, enforcing the HS256
// algorithm, the signature, the issuer claim and expiry. It returns the
// embedded claims on success.
func (s *Signer) Verify(raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return claims, nil
}
