// SPDX-FileCopyrightText: Copyright 2026 The authrelay Authors
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/relaykit/authrelay/pkg/config"
	"github.com/relaykit/authrelay/pkg/logger"
	"github.com/relaykit/authrelay/pkg/mcp"
	"github.com/relaykit/authrelay/pkg/server"
	"github.com/relaykit/authrelay/pkg/server/handlers"
	"github.com/relaykit/authrelay/pkg/storage"
	"github.com/relaykit/authrelay/pkg/token"
	"github.com/relaykit/authrelay/pkg/upstream"
)

const (
	serverName    = "authrelay"
	serverVersion = "0.1.0"
)

func newServeCmd() *cobra.Command {
	v := config.New()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the authorization broker and MCP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			logger.Initialize(cfg.Debug)
			defer logger.Sync()
			return runServe(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("listen-addr", config.DefaultListenAddr, "Address to listen on")
	flags.String("issuer", "", "Public base URL of this server (required)")
	flags.String("signing-secret", "", "Secret used to sign access tokens (required)")
	flags.String("upstream-client-id", "", "Upstream OAuth client ID (required)")
	flags.String("upstream-client-secret", "", "Upstream OAuth client secret (required)")
	flags.String("upstream-auth-url", "", "Upstream authorization endpoint (required)")
	flags.String("upstream-token-url", "", "Upstream token endpoint (required)")
	flags.StringSlice("scopes", nil, "Scopes requested upstream and granted to clients")
	flags.Duration("access-token-ttl", config.DefaultAccessTokenTTL, "Access token lifetime")
	flags.Duration("pending-ttl", storage.DefaultPendingTTL, "Pending authorization request TTL")
	flags.Duration("code-ttl", storage.DefaultCodeTTL, "Authorization code TTL")
	flags.Duration("refresh-ttl", storage.DefaultRefreshTTL, "Refresh token TTL")
	flags.Duration("sweep-interval", storage.DefaultSweepInterval, "Expired-entry sweep interval")
	flags.String("mcp-endpoint-path", config.DefaultMCPEndpointPath, "Path of the protected MCP endpoint")
	flags.Bool("debug", false, "Enable debug logging")

	// Every flag is also settable through AUTHRELAY_* environment variables.
	flags.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f)
	})

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stores, sweepables := storage.NewMemoryStores(cfg.PendingTTL, cfg.CodeTTL, cfg.RefreshTTL)
	sweeper := storage.NewSweeper(sweepables, cfg.SweepInterval)

	signer, err := token.NewSigner(cfg.SigningSecret, cfg.Issuer, cfg.AccessTokenTTL)
	if err != nil {
		return fmt.Errorf("failed to create token signer: %w", err)
	}

	up, err := upstream.NewClient(&upstream.Config{
		ClientID:     cfg.UpstreamClientID,
		ClientSecret: cfg.UpstreamClientSecret,
		AuthorizeURL: cfg.UpstreamAuthURL,
		TokenURL:     cfg.UpstreamTokenURL,
		RedirectURI:  cfg.CallbackURL(),
		Scopes:       cfg.Scopes,
	})
	if err != nil {
		return fmt.Errorf("failed to create upstream client: %w", err)
	}

	h := handlers.NewHandler(stores, up, signer, cfg.Issuer, cfg.Scopes)
	mcpServer := mcp.NewServer(serverName, serverVersion)
	srv := server.New(
		cfg.ListenAddr,
		h,
		signer,
		mcpServer.Handler(cfg.MCPEndpointPath),
		cfg.MCPEndpointPath,
		cfg.Issuer,
	)

	sweeper.Start(ctx)

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return srv.Run(ctx)
	})

	logger.Infow("authrelay started",
		"issuer", cfg.Issuer,
		"listen_addr", cfg.ListenAddr,
	)

	err = group.Wait()
	sweeper.Wait()
	return err
}
