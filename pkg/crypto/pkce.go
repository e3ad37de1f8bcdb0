// SPDX-FileCopyrightText: Copyright 2026 The authrelay Authors
// SPDX-License-Identifier: Apache-2.0

// Package crypto provides the stateless credential helpers used by the
// authorization server: opaque token generation and PKCE (RFC 7636)
// challenge verification.
package crypto

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"

	"golang.org/x/oauth2"
)

// ChallengeMethodS256 is the only PKCE challenge method this server accepts.
const ChallengeMethodS256 = "S256"

// GenerateToken returns a cryptographically random opaque token: 32 bytes,
// base64url encoded without padding (43 characters from the base64url
// alphabet). Used for internal state values, authorization codes and
// refresh tokens.
//
// Delegates to oauth2.GenerateVerifier, which produces exactly this shape
// and panics on crypto/rand failure.
func GenerateToken() string {
	return oauth2.GenerateVerifier()
}

// ComputeChallenge computes the S256 code_challenge for a code_verifier:
// BASE64URL(SHA256(verifier)), per RFC 7636 Section 4.2.
func ComputeChallenge(verifier string) string {
	return oauth2.S256ChallengeFromVerifier(verifier)
}

// VerifyChallenge reports whether verifier hashes to challenge under the
// S256 method. The comparison is constant-time so verification does not
// leak how much of the challenge matched.
func VerifyChallenge(challenge, verifier string) bool {
	sum := sha256.Sum256([]byte(verifier))
	computed := base64.RawURLEncoding.EncodeToString(sum[:])
	return subtle.ConstantTimeCompare([]byte(computed), []byte(challenge)) == 1
}
