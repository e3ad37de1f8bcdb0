// SPDX-FileCopyrightText: Copyright 2026 The authrelay Authors
// SPDX-License-Identifier: Apache-2.0

package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/relaykit/authrelay/pkg/logger"
)

// maxResponseSize caps how much of an upstream token response is read.
const maxResponseSize = 1 << 20 // 1 MiB

// defaultRequestTimeout bounds every upstream token-endpoint call so a slow
// provider fails the request instead of hanging the caller.
const defaultRequestTimeout = 30 * time.Second

// Config holds the upstream provider endpoints and client credentials.
type Config struct {
	// ClientID and ClientSecret identify this server to the upstream
	// provider.
	ClientID     string
	ClientSecret string

	// AuthorizeURL is the upstream authorization endpoint users are
	// redirected to.
	AuthorizeURL string

	// TokenURL is the upstream token endpoint for code and refresh
	// exchanges.
	TokenURL string

	// RedirectURI is this server's public callback address, sent upstream
	// as redirect_uri.
	RedirectURI string

	// Scopes are requested from the upstream provider on every
	// authorization.
	Scopes []string
}

// Validate checks that every required field is present.
func (c *Config) Validate() error {
	switch {
	case c.ClientID == "":
		return errors.New("upstream client ID is required")
	case c.ClientSecret == "":
		return errors.New("upstream client secret is required")
	case c.AuthorizeURL == "":
		return errors.New("upstream authorization endpoint is required")
	case c.TokenURL == "":
		return errors.New("upstream token endpoint is required")
	case c.RedirectURI == "":
		return errors.New("callback redirect URI is required")
	}
	return nil
}

// Compile-time interface compliance check.
var _ Provider = (*Client)(nil)

// Client implements Provider over plain form-encoded HTTP.
type Client struct {
	config     *Config
	httpClient *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client, mainly for tests.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates an upstream provider client from config.
func NewClient(config *Config, opts ...ClientOption) (*Client, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid upstream config: %w", err)
	}

	c := &Client{
		config:     config,
		httpClient: &http.Client{Timeout: defaultRequestTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// AuthorizationURL builds the upstream authorization redirect carrying our
// callback as redirect_uri, the internal state, and the configured scopes.
func (c *Client) AuthorizationURL(state, loginURL string) (string, error) {
	if state == "" {
		return "", errors.New("state is required")
	}

	endpoint := c.config.AuthorizeURL
	if loginURL != "" {
		// A per-request login host override keeps the configured endpoint
		// path (e.g. sandbox vs. production login hosts).
		override, err := url.Parse(loginURL)
		if err != nil || override.Scheme == "" || override.Host == "" {
			return "", fmt.Errorf("invalid login URL %q", loginURL)
		}
		configured, err := url.Parse(c.config.AuthorizeURL)
		if err != nil {
			return "", fmt.Errorf("invalid configured authorization endpoint: %w", err)
		}
		configured.Scheme = override.Scheme
		configured.Host = override.Host
		endpoint = configured.String()
	}

	params := url.Values{
		"response_type": {"code"},
		"client_id":     {c.config.ClientID},
		"redirect_uri":  {c.config.RedirectURI},
		"state":         {state},
	}
	if len(c.config.Scopes) > 0 {
		params.Set("scope", strings.Join(c.config.Scopes, " "))
	}

	return endpoint + "?" + params.Encode(), nil
}

// Exchange redeems an upstream authorization code for tokens.
func (c *Client) Exchange(ctx context.Context, code string) (*Tokens, error) {
	if code == "" {
		return nil, errors.New("authorization code is required")
	}

	logger.Debugw("exchanging upstream authorization code",
		"token_endpoint", c.config.TokenURL,
	)

	return c.tokenRequest(ctx, url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"redirect_uri":  {c.config.RedirectURI},
		"client_id":     {c.config.ClientID},
		"client_secret": {c.config.ClientSecret},
	})
}

// Refresh renews upstream tokens with a stored upstream refresh token.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*Tokens, error) {
	if refreshToken == "" {
		return nil, errors.New("refresh token is required")
	}

	logger.Debugw("refreshing upstream tokens",
		"token_endpoint", c.config.TokenURL,
	)

	return c.tokenRequest(ctx, url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
		"client_id":     {c.config.ClientID},
		"client_secret": {c.config.ClientSecret},
	})
}

// tokenRequest performs a form-encoded POST to the upstream token endpoint.
func (c *Client) tokenRequest(ctx context.Context, params url.Values) (*Tokens, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultRequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.config.TokenURL,
		strings.NewReader(params.Encode()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upstream token request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read upstream token response: %w", err)
	}

	return parseTokenResponse(body, resp.StatusCode)
}
