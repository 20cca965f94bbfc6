// Package websocket provides the WebSocket transport for the Drop Four server.
//
// The websocket package implements:
//   - Real-time bidirectional communication
//   - The per-connection handshake and play/watch state machine
//   - Buffered outbound delivery isolated per connection
//   - Connection lifecycle management with guaranteed detach
//
// Architecture:
//
// Every connection is driven by its own goroutine pair: the HTTP handler
// goroutine runs the read loop and state machine, and a write pump
// goroutine drains a buffered send queue with ping/pong keepalives. There
// is no global event loop; connections only meet inside the session they
// are attached to.
//
// State Machine:
//
// 1. Init: the first event must be init (create or join) or watch
// 2. Active: players relay play events into the session, spectators only receive
// 3. Closed: detach from the session, unconditionally, on every exit path
//
// Failure Semantics:
//
// Unknown tokens and illegal moves are reported to the originating
// connection and the session is untouched. Malformed or out-of-sequence
// events abort only the offending connection. A slow or dead connection is
// closed asynchronously without blocking delivery to the others.
//
// Usage:
//
//	handler := websocket.NewHandler(registry)
//	http.HandleFunc("/ws", handler.HandleWebSocket)
package websocket
