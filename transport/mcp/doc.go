// Package mcp provides a Model Context Protocol server for the Drop Four server.
//
// The mcp package implements:
//   - MCP server for AI agent integration
//   - Read-only tool definitions proxying the REST API
//   - Board visualization for session inspection
//
// MCP Tools:
//
// The package exposes the following tools for AI agents:
//   - list_sessions: List all active sessions
//   - get_session: Get a session's state and board by watch token
//   - list_rule_sets: List available board configurations
//   - archived_games: List finished games from the archive
//
// The surface is read-only. Games are created and played exclusively over
// the WebSocket protocol, and the tools only ever see watch tokens, so an
// MCP client can observe any game but cannot act in one.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.NewStreamableHTTPServer(client.GetMCPServer())
package mcp
