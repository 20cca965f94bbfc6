// Package service exposes read-only inspection of live game sessions.
//
// All game mutation flows through the websocket protocol; the service
// exists so the REST API and the MCP tools can observe sessions without
// touching them. Listings carry watch tokens only: handing out play
// tokens over an inspection surface would grant player access to anyone
// who can list sessions.
package service
