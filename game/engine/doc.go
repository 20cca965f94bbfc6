// Package engine implements the Drop Four board game.
//
// The engine package implements:
//   - Board state for an N x M grid with a configurable win length
//   - Disc placement with gravity (discs rest on the lowest free row)
//   - Win detection in all four line directions after every move
//   - Draw detection when the board fills without a winner
//
// Core Types:
//
// Game is the board plus its status. Rules describes the board dimensions
// and the number of connected discs required to win.
//
// Move Legality:
//
// Drop rejects moves against a finished game, columns outside the board,
// and full columns. Rejections are reported as *IllegalMoveError carrying a
// human-readable reason; the board is never mutated by a rejected move.
//
// Concurrency:
//
// A Game is not safe for concurrent use. Callers that share a Game across
// goroutines must serialize access; the session package does this with a
// per-session mutex.
//
// Usage:
//
//	game, err := engine.New(engine.DefaultRules())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	row, err := game.Drop(engine.Player1, 3)
//	if err != nil {
//		// illegal move, board unchanged
//	}
//
//	if game.Winner() == engine.Player1 {
//		// four in a row
//	}
package engine
