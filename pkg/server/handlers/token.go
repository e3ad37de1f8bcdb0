// SPDX-FileCopyrightText: Copyright 2026 The authrelay Authors
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"net/http"
	"time"

	"github.com/relaykit/authrelay/pkg/crypto"
	"github.com/relaykit/authrelay/pkg/logger"
	"github.com/relaykit/authrelay/pkg/storage"
)

// tokenResponse is the JSON body of a successful POST /oauth/token request.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token,omitempty"`
	Scope        string `json:"scope"`
}

// TokenHandler handles POST /oauth/token requests for the
// authorization_code and refresh_token grants.
func (h *Handler) TokenHandler(w http.ResponseWriter, req *http.Request) {
	if err := req.ParseForm(); err != nil {
		writeError(w, ErrorCodeInvalidRequest,
			"failed to parse request body", http.StatusBadRequest)
		return
	}

	switch grantType := req.PostForm.Get("grant_type"); grantType {
	case "authorization_code":
		h.handleAuthorizationCodeGrant(w, req)
	case "refresh_token":
		h.handleRefreshTokenGrant(w, req)
	default:
		writeError(w, ErrorCodeUnsupportedGrantType,
			"grant_type must be authorization_code or refresh_token", http.StatusBadRequest)
	}
}

// handleAuthorizationCodeGrant redeems an internal authorization code.
// The code is consumed atomically before PKCE verification, so a failed
// verification still burns the code and a concurrent second redemption of
// the same code always misses.
func (h *Handler) handleAuthorizationCodeGrant(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	code := req.PostForm.Get("code")
	verifier := req.PostForm.Get("code_verifier")
	if code == "" || verifier == "" {
		writeError(w, ErrorCodeInvalidRequest,
			"code and code_verifier are required", http.StatusBadRequest)
		return
	}

	// Expired, already-redeemed and never-issued codes are
	// indistinguishable here.
	issued, ok := h.stores.Codes.Consume(ctx, code)
	if !ok {
		writeError(w, ErrorCodeInvalidGrant,
			"authorization code is invalid or expired", http.StatusBadRequest)
		return
	}

	if !crypto.VerifyChallenge(issued.CodeChallenge, verifier) {
		logger.Warnw("PKCE verification failed",
			"tenant_id", issued.TenantID,
		)
		writeError(w, ErrorCodeInvalidGrant,
			"PKCE verification failed", http.StatusBadRequest)
		return
	}

	accessToken, err := h.signer.Mint(issued.TenantID, issued.InstanceURL, issued.UpstreamAccessToken, h.scope)
	if err != nil {
		logger.Errorw("failed to mint access token",
			"error", err,
		)
		writeError(w, ErrorCodeServerError,
			"failed to issue access token", http.StatusInternalServerError)
		return
	}

	refreshToken := crypto.GenerateToken()
	record := &storage.RefreshRecord{
		UpstreamRefreshToken: issued.UpstreamRefreshToken,
		InstanceURL:          issued.InstanceURL,
		TenantID:             issued.TenantID,
		CreatedAt:            time.Now(),
	}
	if err := h.stores.Refresh.Put(ctx, refreshToken, record); err != nil {
		logger.Errorw("failed to store refresh record",
			"error", err,
		)
		writeError(w, ErrorCodeServerError,
			"failed to issue refresh token", http.StatusInternalServerError)
		return
	}

	logger.Infow("access token issued",
		"tenant_id", issued.TenantID,
		"grant_type", "authorization_code",
	)
	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken:  accessToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(h.signer.Lifetime().Seconds()),
		RefreshToken: refreshToken,
		Scope:        h.scope,
	})
}

// handleRefreshTokenGrant renews an access token from a stored refresh
// record. A failed upstream refresh revokes the record so the client must
// restart the full authorization flow instead of looping on a broken
// credential. The record itself is not rotated on success.
func (h *Handler) handleRefreshTokenGrant(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	refreshToken := req.PostForm.Get("refresh_token")
	if refreshToken == "" {
		writeError(w, ErrorCodeInvalidRequest,
			"refresh_token is required", http.StatusBadRequest)
		return
	}

	record, ok := h.stores.Refresh.Get(ctx, refreshToken)
	if !ok {
		writeError(w, ErrorCodeInvalidGrant,
			"refresh token is invalid or expired", http.StatusBadRequest)
		return
	}

	tokens, err := h.upstream.Refresh(ctx, record.UpstreamRefreshToken)
	if err != nil {
		logger.Warnw("upstream refresh failed, revoking refresh record",
			"tenant_id", record.TenantID,
			"error", err,
		)
		_ = h.stores.Refresh.Delete(ctx, refreshToken)
		writeError(w, ErrorCodeInvalidGrant,
			"upstream refresh failed; re-authorization required", http.StatusBadRequest)
		return
	}

	instanceURL := record.InstanceURL
	if tokens.InstanceURL != "" {
		instanceURL = tokens.InstanceURL
	}

	accessToken, err := h.signer.Mint(record.TenantID, instanceURL, tokens.AccessToken, h.scope)
	if err != nil {
		logger.Errorw("failed to mint access token",
			"error", err,
		)
		writeError(w, ErrorCodeServerError,
			"failed to issue access token", http.StatusInternalServerError)
		return
	}

	logger.Infow("access token issued",
		"tenant_id", record.TenantID,
		"grant_type", "refresh_token",
	)
	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(h.signer.Lifetime().Seconds()),
		Scope:       h.scope,
	})
}
