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

// AuthorizeHandler handles GET /oauth/authorize requests.
// It validates the client's authorization request, records it as pending and
// redirects the browser to the upstream provider's authorization endpoint.
func (h *Handler) AuthorizeHandler(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	q := req.URL.Query()

	if rt := q.Get("response_type"); rt != "code" {
		writeError(w, ErrorCodeUnsupportedResponseType,
			"only response_type=code is supported", http.StatusBadRequest)
		return
	}

	redirectURI := q.Get("redirect_uri")
	if redirectURI == "" {
		writeError(w, ErrorCodeInvalidRequest,
			"redirect_uri is required", http.StatusBadRequest)
		return
	}

	codeChallenge := q.Get("code_challenge")
	if codeChallenge == "" {
		writeError(w, ErrorCodeInvalidRequest,
			"code_challenge is required (PKCE is mandatory)", http.StatusBadRequest)
		return
	}
	if method := q.Get("code_challenge_method"); method != crypto.ChallengeMethodS256 {
		writeError(w, ErrorCodeInvalidRequest,
			"code_challenge_method must be S256", http.StatusBadRequest)
		return
	}

	// Internal state correlates the upstream callback with this request and
	// is deliberately distinct from the client's own state parameter.
	internalState := crypto.GenerateToken()

	pending := &storage.PendingAuthRequest{
		CodeChallenge: codeChallenge,
		RedirectURI:   redirectURI,
		ClientState:   q.Get("state"),
		CreatedAt:     time.Now(),
	}
	if err := h.stores.Pending.Put(ctx, internalState, pending); err != nil {
		logger.Errorw("failed to store pending authorization request",
			"error", err,
		)
		writeError(w, ErrorCodeServerError,
			"failed to record authorization request", http.StatusInternalServerError)
		return
	}

	upstreamURL, err := h.upstream.AuthorizationURL(internalState, q.Get("login_url"))
	if err != nil {
		logger.Errorw("failed to build upstream authorization URL",
			"error", err,
		)
		_ = h.stores.Pending.Delete(ctx, internalState)
		writeError(w, ErrorCodeServerError,
			"failed to build authorization URL", http.StatusInternalServerError)
		return
	}

	logger.Debugw("authorization flow started",
		"redirect_uri", redirectURI,
	)
	http.Redirect(w, req, upstreamURL, http.StatusFound)
}
