// SPDX-FileCopyrightText: Copyright 2026 The authrelay Authors
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getAuthorize(env *testEnv, params url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/oauth/authorize?"+params.Encode(), nil)
	rec := httptest.NewRecorder()
	env.handler.AuthorizeHandler(rec, req)
	return rec
}

func validAuthorizeParams() url.Values {
	return url.Values{
		"response_type":         {"code"},
		"redirect_uri":          {"https://client.example.com/callback"},
		"code_challenge":        {"E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM"},
		"code_challenge_method": {"S256"},
		"state":                 {"client-state-123"},
	}
}

func TestAuthorizeRedirectsUpstream(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := getAuthorize(env, validAuthorizeParams())
	require.Equal(t, http.StatusFound, rec.Code)

	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "login.example.com", loc.Host)

	internalState := loc.Query().Get("state")
	require.NotEmpty(t, internalState)
	assert.NotEqual(t, "client-state-123", internalState,
		"internal state must be freshly generated, not the client's")

	pending, ok := env.stores.Pending.Get(context.Background(), internalState)
	require.True(t, ok, "pending request stored under the internal state")
	assert.Equal(t, "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM", pending.CodeChallenge)
	assert.Equal(t, "https://client.example.com/callback", pending.RedirectURI)
	assert.Equal(t, "client-state-123", pending.ClientState)
}

func TestAuthorizePassesLoginURL(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	params := validAuthorizeParams()
	params.Set("login_url", "https://sandbox.example.com")
	rec := getAuthorize(env, params)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://sandbox.example.com", env.upstream.lastLoginURL)
}

func TestAuthorizeRejectsBadResponseType(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	params := validAuthorizeParams()
	params.Set("response_type", "token")
	rec := getAuthorize(env, params)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, ErrorCodeUnsupportedResponseType, decodeError(t, rec).Error)
}

func TestAuthorizeRejectsMissingParams(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(url.Values)
	}{
		{"missing redirect_uri", func(v url.Values) { v.Del("redirect_uri") }},
		{"missing code_challenge", func(v url.Values) { v.Del("code_challenge") }},
		{"missing code_challenge_method", func(v url.Values) { v.Del("code_challenge_method") }},
		{"plain challenge method", func(v url.Values) { v.Set("code_challenge_method", "plain") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			env := newTestEnv(t)

			params := validAuthorizeParams()
			tt.mutate(params)
			rec := getAuthorize(env, params)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, ErrorCodeInvalidRequest, decodeError(t, rec).Error)
		})
	}
}

func TestAuthorizeClientStateOptional(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	params := validAuthorizeParams()
	params.Del("state")
	rec := getAuthorize(env, params)

	require.Equal(t, http.StatusFound, rec.Code)

	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	pending, ok := env.stores.Pending.Get(context.Background(), loc.Query().Get("state"))
	require.True(t, ok)
	assert.Empty(t, pending.ClientState)
}
