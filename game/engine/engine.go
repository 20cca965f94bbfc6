package engine

import (
	"errors"
	"fmt"
)

// Player identifies a disc owner. Zero means an empty cell (or no winner).
type Player int

const (
	None    Player = 0
	Player1 Player = 1
	Player2 Player = 2
)

// IllegalMoveError reports a rejected move. The board is unchanged when a
// Drop returns one of these.
type IllegalMoveError struct {
	Reason string
}

func (e *IllegalMoveError) Error() string {
	return e.Reason
}

// IsIllegalMove reports whether err is an illegal-move rejection.
func IsIllegalMove(err error) bool {
	var ime *IllegalMoveError
	return errors.As(err, &ime)
}

// Game holds the board state for one match.
type Game struct {
	rules  Rules
	cells  [][]Player // cells[column][row], row 0 is the bottom
	heights []int     // next free row per column
	winner Player
	over   bool
	moves  int
}

// New creates a game for the given rules.
func New(rules Rules) (*Game, error) {
	if err := ValidateRules(rules); err != nil {
		return nil, err
	}

	cells := make([][]Player, rules.Columns)
	for c := range cells {
		cells[c] = make([]Player, rules.Rows)
	}

	return &Game{
		rules:   rules,
		cells:   cells,
		heights: make([]int, rules.Columns),
	}, nil
}

// Drop places a disc for player in the given column and returns the row it
// rests on. It fails with *IllegalMoveError when the game is over, the
// column is outside the board, or the column is full.
func (g *Game) Drop(player Player, column int) (int, error) {
	if player != Player1 && player != Player2 {
		return 0, fmt.Errorf("invalid player %d", player)
	}
	if g.over {
		return 0, &IllegalMoveError{Reason: "The game is already over."}
	}
	if column < 0 || column >= g.rules.Columns {
		return 0, &IllegalMoveError{Reason: fmt.Sprintf("Column %d is out of range.", column)}
	}
	row := g.heights[column]
	if row >= g.rules.Rows {
		return 0, &IllegalMoveError{Reason: fmt.Sprintf("Column %d is full.", column)}
	}

	g.cells[column][row] = player
	g.heights[column]++
	g.moves++

	if g.connectsFrom(column, row, player) {
		g.winner = player
		g.over = true
	} else if g.moves == g.rules.Columns*g.rules.Rows {
		// Board full, no winner.
		g.over = true
	}

	return row, nil
}

// Winner returns the winning player, or None while the game is undecided
// or ended in a draw.
func (g *Game) Winner() Player {
	return g.winner
}

// Over reports whether the game has reached a terminal state.
func (g *Game) Over() bool {
	return g.over
}

// MoveCount returns the number of discs placed so far.
func (g *Game) MoveCount() int {
	return g.moves
}

// Rules returns the rule set the game was created with.
func (g *Game) Rules() Rules {
	return g.rules
}

// Board returns a copy of the grid as cells[column][row] with row 0 at the
// bottom. The copy is safe to hand out to encoders.
func (g *Game) Board() [][]Player {
	board := make([][]Player, len(g.cells))
	for c := range g.cells {
		board[c] = make([]Player, len(g.cells[c]))
		copy(board[c], g.cells[c])
	}
	return board
}

// lineDirections lists one representative step per line orientation:
// vertical, horizontal, and the two diagonals.
var lineDirections = [4][2]int{
	{0, 1},
	{1, 0},
	{1, 1},
	{1, -1},
}

// connectsFrom reports whether the disc just placed at (column, row)
// completes a line of the required length for player.
func (g *Game) connectsFrom(column, row int, player Player) bool {
	for _, dir := range lineDirections {
		count := 1
		count += g.runLength(column, row, dir[0], dir[1], player)
		count += g.runLength(column, row, -dir[0], -dir[1], player)
		if count >= g.rules.Connect {
			return true
		}
	}
	return false
}

// runLength counts consecutive discs owned by player walking from
// (column, row) in direction (dc, dr), excluding the starting cell.
func (g *Game) runLength(column, row, dc, dr int, player Player) int {
	count := 0
	for {
		column += dc
		row += dr
		if column < 0 || column >= g.rules.Columns || row < 0 || row >= g.rules.Rows {
			return count
		}
		if g.cells[column][row] != player {
			return count
		}
		count++
	}
}
