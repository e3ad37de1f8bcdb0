// SPDX-FileCopyrightText: Copyright 2026 The authrelay Authors
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"net/http"
	"net/url"
	"time"

	"github.com/relaykit/authrelay/pkg/crypto"
	"github.com/relaykit/authrelay/pkg/logger"
	"github.com/relaykit/authrelay/pkg/storage"
)

// CallbackHandler handles GET /oauth/callback requests from the upstream
// provider. It consumes the pending request matching the returned state,
// exchanges the upstream code for upstream tokens, mints an internal
// authorization code and redirects the browser back to the client.
func (h *Handler) CallbackHandler(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	q := req.URL.Query()

	// An upstream denial is terminal; nothing was stored for it yet beyond
	// the pending request, which expires on its own.
	if errCode := q.Get("error"); errCode != "" {
		logger.Warnw("upstream authorization failed",
			"error", errCode,
			"description", q.Get("error_description"),
		)
		writeError(w, errCode, q.Get("error_description"), http.StatusBadRequest)
		return
	}

	state := q.Get("state")
	upstreamCode := q.Get("code")
	if state == "" || upstreamCode == "" {
		writeError(w, ErrorCodeInvalidRequest,
			"code and state are required", http.StatusBadRequest)
		return
	}

	// Single use: a replayed, expired or never-issued state looks the same.
	pending, ok := h.stores.Pending.Consume(ctx, state)
	if !ok {
		writeError(w, ErrorCodeInvalidState,
			"unknown or expired state", http.StatusBadRequest)
		return
	}

	tokens, err := h.upstream.Exchange(ctx, upstreamCode)
	if err != nil {
		logger.Errorw("upstream code exchange failed",
			"error", err,
		)
		writeError(w, ErrorCodeServerError,
			"upstream token exchange failed", http.StatusInternalServerError)
		return
	}

	code := crypto.GenerateToken()
	issued := &storage.IssuedAuthCode{
		UpstreamAccessToken:  tokens.AccessToken,
		UpstreamRefreshToken: tokens.RefreshToken,
		InstanceURL:          tokens.InstanceURL,
		TenantID:             tokens.TenantID,
		CodeChallenge:        pending.CodeChallenge,
		CreatedAt:            time.Now(),
	}
	if err := h.stores.Codes.Put(ctx, code, issued); err != nil {
		logger.Errorw("failed to store authorization code",
			"error", err,
		)
		writeError(w, ErrorCodeServerError,
			"failed to issue authorization code", http.StatusInternalServerError)
		return
	}

	redirect, err := url.Parse(pending.RedirectURI)
	if err != nil {
		logger.Errorw("stored client redirect URI is invalid",
			"error", err,
		)
		writeError(w, ErrorCodeServerError,
			"invalid client redirect URI", http.StatusInternalServerError)
		return
	}
	params := redirect.Query()
	params.Set("code", code)
	if pending.ClientState != "" {
		params.Set("state", pending.ClientState)
	}
	redirect.RawQuery = params.Encode()

	logger.Infow("authorization code issued",
		"tenant_id", tokens.TenantID,
	)
	http.Redirect(w, req, redirect.String(), http.StatusFound)
}
