// Package session provides game session coordination for the Drop Four server.
//
// The session package implements:
//   - Thread-safe session creation, lookup, and teardown
//   - Unguessable token generation for player and spectator access
//   - Role assignment for attached connections
//   - Serialized move application against the shared game engine
//   - Ordered event fan-out to every attached connection
//
// Core Types:
//
// Registry is the process-wide table mapping tokens to live sessions.
// Session owns one engine instance plus the set of attached connections.
// Conn is the transport-owned handle a session references but never owns.
//
// Tokens:
//
// Every session carries two tokens: a play token granting player access and
// a watch token granting read-only spectator access. Both resolve to the
// same session. Tokens are 128-bit values from crypto/rand rendered with
// URL-safe base64; the registry regenerates on the negligible chance of a
// collision.
//
// Lifecycle:
//
// A session is created on the first handshake without a join token and is
// removed from the registry the instant its last attachment detaches.
// Detach is idempotent and safe to call from cleanup paths. After a
// terminal move the session broadcasts the result, archives the game, and
// closes every attachment.
//
// Concurrency:
//
// The registry guards its token table with one RWMutex; each session guards
// its attachments and engine with its own mutex. Sessions never share a
// lock, so unrelated games cannot block each other. Move applications
// within one session are fully serialized, and the broadcast order seen by
// any one connection matches application order.
package session
