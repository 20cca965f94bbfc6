// Package api provides the HTTP surface for the Drop Four server.
//
// The api package implements:
//   - The WebSocket endpoint that drives games
//   - Read-only REST endpoints for observability
//   - Rule set discovery
//   - The finished-game archive listing
//
// Endpoints:
//
// Game transport:
//   - GET /ws - WebSocket upgrade; all game traffic flows here
//
// Sessions (read-only):
//   - GET /api/sessions - List active sessions (summaries, no boards)
//   - GET /api/sessions/{token} - Session state for a play or watch token
//
// Rule sets:
//   - GET /api/rules - List available rule sets
//   - GET /api/rules/{name} - Get a specific rule set
//
// Archive:
//   - GET /api/archive - List finished games
//
// Health:
//   - GET /api/health - Liveness check
//
// The REST surface is deliberately read-only: creating sessions and playing
// moves only happen over the WebSocket protocol, so the serialization
// guarantees live in one place. Session listings and lookups never expose
// play tokens; only the watch token appears in responses.
//
// Errors are returned as JSON with appropriate HTTP status codes:
//
//	{
//	  "error": "error message"
//	}
package api
