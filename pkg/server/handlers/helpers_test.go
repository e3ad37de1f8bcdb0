// SPDX-FileCopyrightText: Copyright 2026 The authrelay Authors
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/relaykit/authrelay/pkg/storage"
	"github.com/relaykit/authrelay/pkg/token"
	"github.com/relaykit/authrelay/pkg/upstream"
)

const (
	testIssuer = "https://relay.example.com"
	testScopes = "api refresh_token"
)

// fakeUpstream is a scriptable upstream.Provider for handler tests.
type fakeUpstream struct {
	exchangeTokens *upstream.Tokens
	exchangeErr    error
	refreshTokens  *upstream.Tokens
	refreshErr     error

	lastLoginURL     string
	lastExchangeCode string
	lastRefreshToken string
}

func (f *fakeUpstream) AuthorizationURL(state, loginURL string) (string, error) {
	if state == "" {
		return "", errors.New("state is required")
	}
	f.lastLoginURL = loginURL
	return "https://login.example.com/oauth2/authorize?state=" + url.QueryEscape(state), nil
}

func (f *fakeUpstream) Exchange(_ context.Context, code string) (*upstream.Tokens, error) {
	f.lastExchangeCode = code
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	return f.exchangeTokens, nil
}

func (f *fakeUpstream) Refresh(_ context.Context, refreshToken string) (*upstream.Tokens, error) {
	f.lastRefreshToken = refreshToken
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return f.refreshTokens, nil
}

// testEnv bundles a Handler with its collaborators for direct inspection.
type testEnv struct {
	handler  *Handler
	stores   *storage.Stores
	signer   *token.Signer
	upstream *fakeUpstream
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	stores, _ := storage.NewMemoryStores(
		storage.DefaultPendingTTL, storage.DefaultCodeTTL, storage.DefaultRefreshTTL)

	signer, err := token.NewSigner("test-signing-secret", testIssuer, time.Hour)
	require.NoError(t, err)

	fake := &fakeUpstream{
		exchangeTokens: &upstream.Tokens{
			AccessToken:  "upstream-access",
			RefreshToken: "upstream-refresh",
			InstanceURL:  "https://na1.example.com",
			TenantID:     "00Dxx0000001gPL",
			UserID:       "005xx000001Sv6A",
		},
		refreshTokens: &upstream.Tokens{
			AccessToken: "renewed-access",
			InstanceURL: "https://na1.example.com",
		},
	}

	return &testEnv{
		handler:  NewHandler(stores, fake, signer, testIssuer, []string{"api", "refresh_token"}),
		stores:   stores,
		signer:   signer,
		upstream: fake,
	}
}

// decodeError unmarshals an error response body.
func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

// postForm performs a form-encoded POST against a handler func.
func postForm(handler http.HandlerFunc, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/oauth/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}
