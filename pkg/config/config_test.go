// SPDX-FileCopyrightText: Copyright 2026 The authrelay Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relaykit/authrelay/pkg/storage"
)

func setRequired(v *viper.Viper) {
	v.Set("issuer", "https://relay.example.com")
	v.Set("signing_secret", "secret")
	v.Set("upstream_client_id", "id")
	v.Set("upstream_client_secret", "cs")
	v.Set("upstream_auth_url", "https://login.example.com/oauth2/authorize")
	v.Set("upstream_token_url", "https://login.example.com/oauth2/token")
}

func TestLoadAppliesDefaults(t *testing.T) {
	t.Parallel()

	v := New()
	setRequired(v)

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, DefaultListenAddr, cfg.ListenAddr)
	assert.Equal(t, []string{"api", "refresh_token"}, cfg.Scopes)
	assert.Equal(t, DefaultAccessTokenTTL, cfg.AccessTokenTTL)
	assert.Equal(t, storage.DefaultPendingTTL, cfg.PendingTTL)
	assert.Equal(t, storage.DefaultCodeTTL, cfg.CodeTTL)
	assert.Equal(t, storage.DefaultRefreshTTL, cfg.RefreshTTL)
	assert.Equal(t, storage.DefaultSweepInterval, cfg.SweepInterval)
	assert.Equal(t, DefaultMCPEndpointPath, cfg.MCPEndpointPath)
	assert.False(t, cfg.Debug)
}

func TestLoadTrimsIssuerSlash(t *testing.T) {
	t.Parallel()

	v := New()
	setRequired(v)
	v.Set("issuer", "https://relay.example.com/")

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "https://relay.example.com", cfg.Issuer)
	assert.Equal(t, "https://relay.example.com/oauth/callback", cfg.CallbackURL())
}

func TestLoadOverrides(t *testing.T) {
	t.Parallel()

	v := New()
	setRequired(v)
	v.Set("listen_addr", ":9090")
	v.Set("access_token_ttl", 30*time.Minute)
	v.Set("debug", true)

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, 30*time.Minute, cfg.AccessTokenTTL)
	assert.True(t, cfg.Debug)
}

func TestLoadReportsAllMissingKeys(t *testing.T) {
	t.Parallel()

	v := New()
	_, err := Load(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "issuer")
	assert.Contains(t, err.Error(), "signing-secret")
	assert.Contains(t, err.Error(), "upstream-client-id")
	assert.Contains(t, err.Error(), "upstream-client-secret")
	assert.Contains(t, err.Error(), "upstream-auth-url")
	assert.Contains(t, err.Error(), "upstream-token-url")
}
