// SPDX-FileCopyrightText: Copyright 2026 The authrelay Authors
// SPDX-License-Identifier: Apache-2.0

package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/relaykit/authrelay/pkg/auth"
)

// registerTools registers the built-in tool catalog.
func (s *Server) registerTools() {
	whoami := mcp.NewTool("whoami",
		mcp.WithDescription("Describe the authenticated identity: tenant, upstream instance and granted scope"),
	)
	s.mcpServer.AddTool(whoami, s.handleWhoami)

	status := mcp.NewTool("connection_status",
		mcp.WithDescription("Report whether an upstream connection is available for this session"),
	)
	s.mcpServer.AddTool(status, s.handleConnectionStatus)
}

// AddTool registers a domain tool on the underlying MCP server. Handlers can
// obtain the caller's identity with auth.IdentityFromContext.
func (s *Server) AddTool(tool mcp.Tool, handler server.ToolHandlerFunc) {
	s.mcpServer.AddTool(tool, handler)
}

// handleWhoami returns the authenticated identity, minus the upstream token
// itself, as JSON.
func (s *Server) handleWhoami(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return mcp.NewToolResultError("no authenticated identity"), nil
	}

	out, err := json.MarshalIndent(map[string]string{
		"tenant_id":    identity.TenantID,
		"instance_url": identity.InstanceURL,
		"scope":        identity.Scope,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode identity: %w", err)
	}
	return mcp.NewToolResultText(string(out)), nil
}

// handleConnectionStatus reports whether the session carries a usable
// upstream credential.
func (s *Server) handleConnectionStatus(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	identity, ok := auth.IdentityFromContext(ctx)
	if !ok || identity.UpstreamToken == "" {
		return mcp.NewToolResultText("not connected: no upstream credential for this session"), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("connected to %s (tenant %s)", identity.InstanceURL, identity.TenantID)), nil
}
