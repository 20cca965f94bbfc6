// Package protocol defines the wire envelope exchanged with clients.
//
// Every message is a single JSON object carrying a "type" tag. The tag set
// is closed: anything outside it is rejected at the boundary so downstream
// code never inspects raw payloads.
//
// Inbound (client to server):
//   - {"type": "init"}                 create a new game
//   - {"type": "init", "join": TOKEN}  join an existing game as a player
//   - {"type": "watch", "watch": TOKEN} attach as a spectator
//   - {"type": "play", "column": N}    drop a disc
//
// Outbound (server to client):
//   - {"type": "init", "join": TOKEN, "watch": TOKEN}
//   - {"type": "play", "player": P, "column": N, "row": R}
//   - {"type": "win", "player": P}    player 0 means a draw
//   - {"type": "error", "message": S}
//
// Decode distinguishes two failure classes: *DecodeError for input that is
// not valid JSON, and *ProtocolError for well-formed JSON whose tag is
// unknown or whose required fields are missing or ill-typed. Encode is
// total for the outbound variants above.
package protocol
