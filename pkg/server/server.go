// SPDX-FileCopyrightText: Copyright 2026 The authrelay Authors
// SPDX-License-Identifier: Apache-2.0

// Package server assembles the HTTP surface: the public OAuth protocol and
// discovery endpoints, and the bearer-protected MCP endpoint.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/relaykit/authrelay/pkg/auth"
	"github.com/relaykit/authrelay/pkg/logger"
	"github.com/relaykit/authrelay/pkg/server/handlers"
	"github.com/relaykit/authrelay/pkg/token"
)

// readHeaderTimeout bounds slow-header clients; the OAuth endpoints carry
// no large bodies.
const readHeaderTimeout = 10 * time.Second

// shutdownTimeout bounds graceful shutdown on stop.
const shutdownTimeout = 10 * time.Second

// Server is the HTTP server hosting all endpoints.
type Server struct {
	httpServer *http.Server
}

// NewRouter assembles the full route tree. mcpHandler is mounted at mcpPath
// behind the bearer validator; issuer feeds the WWW-Authenticate discovery
// pointer.
func NewRouter(
	h *handlers.Handler,
	signer *token.Signer,
	mcpHandler http.Handler,
	mcpPath string,
	issuer string,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	h.OAuthRoutes(r)
	h.WellKnownRoutes(r)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(signer, issuer+"/.well-known/oauth-protected-resource"))
		r.Handle(mcpPath, mcpHandler)
	})

	return r
}

// New creates the server around the assembled router.
func New(
	listenAddr string,
	h *handlers.Handler,
	signer *token.Signer,
	mcpHandler http.Handler,
	mcpPath string,
	issuer string,
) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              listenAddr,
			Handler:           NewRouter(h, signer, mcpHandler, mcpPath, issuer),
			ReadHeaderTimeout: readHeaderTimeout,
		},
	}
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Infow("HTTP server listening",
			"addr", s.httpServer.Addr,
		)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
