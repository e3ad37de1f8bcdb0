// SPDX-FileCopyrightText: Copyright 2026 The authrelay Authors
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relaykit/authrelay/pkg/token"
)

const testIssuer = "https://relay.example.com"

func newTestMiddleware(t *testing.T, lifetime time.Duration) (*token.Signer, http.Handler, *Identity) {
	t.Helper()

	signer, err := token.NewSigner("test-secret", testIssuer, lifetime)
	require.NoError(t, err)

	captured := &Identity{}
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFromContext(r.Context())
		require.True(t, ok, "identity must be present on authenticated requests")
		*captured = *identity
		w.WriteHeader(http.StatusOK)
	})

	mw := Middleware(signer, testIssuer+"/.well-known/oauth-protected-resource")
	return signer, mw(inner), captured
}

func doRequest(handler http.Handler, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/mcp", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestMiddlewareAcceptsValidToken(t *testing.T) {
	t.Parallel()
	signer, handler, captured := newTestMiddleware(t, time.Hour)

	raw, err := signer.Mint("00Dxx0000001gPL", "https://na1.example.com", "upstream-tok", "api")
	require.NoError(t, err)

	rec := doRequest(handler, "Bearer "+raw)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "00Dxx0000001gPL", captured.TenantID)
	assert.Equal(t, "https://na1.example.com", captured.InstanceURL)
	assert.Equal(t, "upstream-tok", captured.UpstreamToken)
	assert.Equal(t, "api", captured.Scope)
}

func TestMiddlewareRejectsMissingHeader(t *testing.T) {
	t.Parallel()
	_, handler, _ := newTestMiddleware(t, time.Hour)

	rec := doRequest(handler, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, ErrorCodeUnauthorized, errorCode(t, rec))
	assert.Contains(t, rec.Header().Get("WWW-Authenticate"), "resource_metadata")
}

func TestMiddlewareRejectsMalformedHeader(t *testing.T) {
	t.Parallel()
	_, handler, _ := newTestMiddleware(t, time.Hour)

	for _, header := range []string{"Basic dXNlcjpwYXNz", "Bearer", "Bearer ", "bearer token"} {
		rec := doRequest(handler, header)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header=%q", header)
		assert.Equal(t, ErrorCodeUnauthorized, errorCode(t, rec), "header=%q", header)
	}
}

func TestMiddlewareRejectsExpiredToken(t *testing.T) {
	t.Parallel()
	_, handler, _ := newTestMiddleware(t, time.Hour)

	expiredSigner, err := token.NewSigner("test-secret", testIssuer, -time.Minute)
	require.NoError(t, err)

	raw, err := expiredSigner.Mint("tenant", "", "tok", "api")
	require.NoError(t, err)

	rec := doRequest(handler, "Bearer "+raw)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, ErrorCodeInvalidToken, errorCode(t, rec))
}

func TestMiddlewareRejectsForgedToken(t *testing.T) {
	t.Parallel()
	_, handler, _ := newTestMiddleware(t, time.Hour)

	forger, err := token.NewSigner("attacker-secret", testIssuer, time.Hour)
	require.NoError(t, err)
	raw, err := forger.Mint("tenant", "", "tok", "api")
	require.NoError(t, err)

	rec := doRequest(handler, "Bearer "+raw)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, ErrorCodeInvalidToken, errorCode(t, rec))
}

func TestIdentityContextRoundTrip(t *testing.T) {
	t.Parallel()

	_, ok := IdentityFromContext(t.Context())
	assert.False(t, ok)

	identity := &Identity{TenantID: "tenant"}
	ctx := WithIdentity(t.Context(), identity)
	got, ok := IdentityFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, identity, got)

	// nil identity leaves the context untouched.
	ctx = WithIdentity(t.Context(), nil)
	_, ok = IdentityFromContext(ctx)
	assert.False(t, ok)
}
