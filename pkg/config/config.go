// SPDX-FileCopyrightText: Copyright 2026 The authrelay Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the server configuration from environment variables
// (prefix AUTHRELAY_) with optional overrides from command-line flags.
// Values are validated for presence only; the upstream provider is the
// authority on whether the credentials are actually good.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/relaykit/authrelay/pkg/storage"
)

// Default lifetimes and endpoints.
const (
	DefaultListenAddr      = ":8080"
	DefaultAccessTokenTTL  = time.Hour
	DefaultMCPEndpointPath = "/mcp"
)

// Config is the full server configuration.
type Config struct {
	// ListenAddr is the address the HTTP server binds to.
	ListenAddr string `mapstructure:"listen_addr"`

	// Issuer is this server's public base URL. It becomes the iss claim of
	// every access token and the base of the discovery documents.
	Issuer string `mapstructure:"issuer"`

	// SigningSecret signs access tokens (HS256). Compromise of this value
	// compromises every embedded upstream credential.
	SigningSecret string `mapstructure:"signing_secret"`

	// UpstreamClientID and UpstreamClientSecret identify this server to
	// the upstream provider.
	UpstreamClientID     string `mapstructure:"upstream_client_id"`
	UpstreamClientSecret string `mapstructure:"upstream_client_secret"`

	// UpstreamAuthURL and UpstreamTokenURL are the upstream provider's
	// authorization and token endpoints.
	UpstreamAuthURL  string `mapstructure:"upstream_auth_url"`
	UpstreamTokenURL string `mapstructure:"upstream_token_url"`

	// Scopes are requested upstream and granted to clients.
	Scopes []string `mapstructure:"scopes"`

	// AccessTokenTTL is the lifetime of issued access tokens.
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`

	// PendingTTL, CodeTTL and RefreshTTL bound the three stores.
	PendingTTL time.Duration `mapstructure:"pending_ttl"`
	CodeTTL    time.Duration `mapstructure:"code_ttl"`
	RefreshTTL time.Duration `mapstructure:"refresh_ttl"`

	// SweepInterval is how often expired store entries are evicted.
	SweepInterval time.Duration `mapstructure:"sweep_interval"`

	// MCPEndpointPath is where the protected MCP surface is served.
	MCPEndpointPath string `mapstructure:"mcp_endpoint_path"`

	// Debug enables debug logging.
	Debug bool `mapstructure:"debug"`
}

// New returns a viper instance with defaults and environment binding set
// up. Flags may be bound on top by the CLI before Load is called.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("AUTHRELAY")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("listen_addr", DefaultListenAddr)
	v.SetDefault("scopes", []string{"api", "refresh_token"})
	v.SetDefault("access_token_ttl", DefaultAccessTokenTTL)
	v.SetDefault("pending_ttl", storage.DefaultPendingTTL)
	v.SetDefault("code_ttl", storage.DefaultCodeTTL)
	v.SetDefault("refresh_ttl", storage.DefaultRefreshTTL)
	v.SetDefault("sweep_interval", storage.DefaultSweepInterval)
	v.SetDefault("mcp_endpoint_path", DefaultMCPEndpointPath)
	v.SetDefault("debug", false)

	return v
}

// Load unmarshals and validates the configuration.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Issuer = strings.TrimSuffix(cfg.Issuer, "/")
	return cfg, nil
}

// Validate checks that every required value is present.
func (c *Config) Validate() error {
	var missing []string
	if c.Issuer == "" {
		missing = append(missing, "issuer")
	}
	if c.SigningSecret == "" {
		missing = append(missing, "signing-secret")
	}
	if c.UpstreamClientID == "" {
		missing = append(missing, "upstream-client-id")
	}
	if c.UpstreamClientSecret == "" {
		missing = append(missing, "upstream-client-secret")
	}
	if c.UpstreamAuthURL == "" {
		missing = append(missing, "upstream-auth-url")
	}
	if c.UpstreamTokenURL == "" {
		missing = append(missing, "upstream-token-url")
	}
	if len(missing) > 0 {
		return errors.New("missing required configuration: " + strings.Join(missing, ", "))
	}
	return nil
}

// CallbackURL is this server's public callback address, registered with the
// upstream provider as the redirect URI.
func (c *Config) CallbackURL() string {
	return c.Issuer + "/oauth/callback"
}
