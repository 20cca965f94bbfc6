package engine

import (
	"testing"
)

func mustGame(t *testing.T, rules Rules) *Game {
	t.Helper()
	game, err := New(rules)
	if err != nil {
		t.Fatalf("New(%+v) failed: %v", rules, err)
	}
	return game
}

func TestNew(t *testing.T) {
	game := mustGame(t, DefaultRules())

	if game.Over() {
		t.Error("new game should not be over")
	}
	if game.Winner() != None {
		t.Errorf("new game winner = %d, want None", game.Winner())
	}
	if game.MoveCount() != 0 {
		t.Errorf("new game move count = %d, want 0", game.MoveCount())
	}
}

func TestNewRejectsInvalidRules(t *testing.T) {
	tests := []struct {
		name  string
		rules Rules
	}{
		{"zero columns", Rules{Columns: 0, Rows: 6, Connect: 4}},
		{"zero rows", Rules{Columns: 7, Rows: 0, Connect: 4}},
		{"connect too small", Rules{Columns: 7, Rows: 6, Connect: 1}},
		{"connect larger than board", Rules{Columns: 3, Rows: 3, Connect: 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.rules); err == nil {
				t.Errorf("New(%+v) should have failed", tt.rules)
			}
		})
	}
}

func TestDropStacksFromBottom(t *testing.T) {
	game := mustGame(t, DefaultRules())

	for want := 0; want < 3; want++ {
		row, err := game.Drop(Player1, 3)
		if err != nil {
			t.Fatalf("Drop failed: %v", err)
		}
		if row != want {
			t.Errorf("drop %d landed on row %d, want %d", want+1, row, want)
		}
	}
}

func TestDropRejectsOutOfRangeColumn(t *testing.T) {
	game := mustGame(t, DefaultRules())

	for _, column := range []int{-1, 7, 100} {
		_, err := game.Drop(Player1, column)
		if !IsIllegalMove(err) {
			t.Errorf("Drop(column=%d) error = %v, want illegal move", column, err)
		}
	}

	if game.MoveCount() != 0 {
		t.Error("rejected moves must not mutate the board")
	}
}

func TestDropRejectsFullColumn(t *testing.T) {
	game := mustGame(t, Rules{Columns: 7, Rows: 6, Connect: 7})

	for i := 0; i < 6; i++ {
		player := Player1
		if i%2 == 1 {
			player = Player2
		}
		if _, err := game.Drop(player, 0); err != nil {
			t.Fatalf("Drop %d failed: %v", i, err)
		}
	}

	_, err := game.Drop(Player1, 0)
	if !IsIllegalMove(err) {
		t.Errorf("Drop on full column error = %v, want illegal move", err)
	}
}

func TestVerticalWin(t *testing.T) {
	game := mustGame(t, DefaultRules())

	for i := 0; i < 4; i++ {
		if _, err := game.Drop(Player1, 2); err != nil {
			t.Fatalf("Drop %d failed: %v", i, err)
		}
	}

	if game.Winner() != Player1 {
		t.Errorf("winner = %d, want Player1", game.Winner())
	}
	if !game.Over() {
		t.Error("game should be over after a win")
	}
}

func TestHorizontalWin(t *testing.T) {
	game := mustGame(t, DefaultRules())

	for column := 0; column < 4; column++ {
		if _, err := game.Drop(Player2, column); err != nil {
			t.Fatalf("Drop failed: %v", err)
		}
	}

	if game.Winner() != Player2 {
		t.Errorf("winner = %d, want Player2", game.Winner())
	}
}

func TestDiagonalWin(t *testing.T) {
	game := mustGame(t, DefaultRules())

	// Build a staircase for Player1 on columns 0-3.
	fill := []struct {
		player Player
		column int
	}{
		{Player1, 0},
		{Player2, 1}, {Player1, 1},
		{Player2, 2}, {Player2, 2}, {Player1, 2},
		{Player2, 3}, {Player2, 3}, {Player2, 3},
	}
	for i, m := range fill {
		if _, err := game.Drop(m.player, m.column); err != nil {
			t.Fatalf("setup drop %d failed: %v", i, err)
		}
	}

	row, err := game.Drop(Player1, 3)
	if err != nil {
		t.Fatalf("winning drop failed: %v", err)
	}
	if row != 3 {
		t.Errorf("winning drop landed on row %d, want 3", row)
	}
	if game.Winner() != Player1 {
		t.Errorf("winner = %d, want Player1", game.Winner())
	}
}

func TestAntiDiagonalWin(t *testing.T) {
	game := mustGame(t, DefaultRules())

	fill := []struct {
		player Player
		column int
	}{
		{Player1, 3},
		{Player2, 2}, {Player1, 2},
		{Player2, 1}, {Player2, 1}, {Player1, 1},
		{Player2, 0}, {Player2, 0}, {Player2, 0},
	}
	for i, m := range fill {
		if _, err := game.Drop(m.player, m.column); err != nil {
			t.Fatalf("setup drop %d failed: %v", i, err)
		}
	}

	if _, err := game.Drop(Player1, 0); err != nil {
		t.Fatalf("winning drop failed: %v", err)
	}
	if game.Winner() != Player1 {
		t.Errorf("winner = %d, want Player1", game.Winner())
	}
}

func TestDrawOnFullBoard(t *testing.T) {
	// 3x2 board, connect 3. Bottom row P1 P1 P2, top row P2 P2 P1:
	// no horizontal triple, and verticals/diagonals cannot fit.
	game := mustGame(t, Rules{Columns: 3, Rows: 2, Connect: 3})

	drops := []struct {
		player Player
		column int
	}{
		{Player1, 0}, {Player2, 0},
		{Player1, 1}, {Player2, 1},
		{Player2, 2}, {Player1, 2},
	}
	for i, m := range drops {
		if _, err := game.Drop(m.player, m.column); err != nil {
			t.Fatalf("drop %d failed: %v", i, err)
		}
	}

	if !game.Over() {
		t.Error("full board should end the game")
	}
	if game.Winner() != None {
		t.Errorf("draw winner = %d, want None", game.Winner())
	}
}

func TestDropAfterGameOver(t *testing.T) {
	game := mustGame(t, DefaultRules())

	for i := 0; i < 4; i++ {
		if _, err := game.Drop(Player1, 0); err != nil {
			t.Fatalf("Drop failed: %v", err)
		}
	}

	_, err := game.Drop(Player2, 1)
	if !IsIllegalMove(err) {
		t.Errorf("Drop after win error = %v, want illegal move", err)
	}
}

func TestBoardReturnsCopy(t *testing.T) {
	game := mustGame(t, DefaultRules())
	if _, err := game.Drop(Player1, 0); err != nil {
		t.Fatalf("Drop failed: %v", err)
	}

	board := game.Board()
	if board[0][0] != Player1 {
		t.Errorf("board[0][0] = %d, want Player1", board[0][0])
	}

	board[0][0] = Player2
	if game.Board()[0][0] != Player1 {
		t.Error("mutating the returned board must not affect the game")
	}
}

func TestIsIllegalMove(t *testing.T) {
	if IsIllegalMove(nil) {
		t.Error("nil is not an illegal move")
	}

	game := mustGame(t, DefaultRules())
	_, err := game.Drop(Player1, -1)
	if !IsIllegalMove(err) {
		t.Error("out-of-range drop should be an illegal move")
	}
	if err.Error() == "" {
		t.Error("illegal move must carry a reason")
	}
}
