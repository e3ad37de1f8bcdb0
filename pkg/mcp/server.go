// SPDX-FileCopyrightText: Copyright 2026 The authrelay Authors
// SPDX-License-Identifier: Apache-2.0

// Package mcp exposes the protected MCP surface of the server. The surface
// sits behind the bearer validator; tool handlers read the authenticated
// Identity from the request context and never touch the token stores. The
// catalog here is the seam where domain tools plug in; it ships with the
// introspection tools every deployment wants.
package mcp

import (
	"net/http"

	"github.com/mark3labs/mcp-go/server"
)

// Server wraps the MCP protocol server and its streamable HTTP transport.
type Server struct {
	mcpServer *server.MCPServer
}

// NewServer creates the MCP server and registers the built-in tool catalog.
func NewServer(name, version string) *Server {
	mcpServer := server.NewMCPServer(
		name,
		version,
		server.WithToolCapabilities(false),
		server.WithLogging(),
	)

	s := &Server{mcpServer: mcpServer}
	s.registerTools()
	return s
}

// Handler returns the streamable HTTP handler serving the MCP protocol at
// endpointPath. Mount it behind the bearer middleware.
func (s *Server) Handler(endpointPath string) http.Handler {
	return server.NewStreamableHTTPServer(
		s.mcpServer,
		server.WithEndpointPath(endpointPath),
	)
}
