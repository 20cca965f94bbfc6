package engine

import (
	"errors"
	"fmt"
)

var ErrInvalidRules = errors.New("invalid rules")

// Rules describes the board dimensions and the win condition.
type Rules struct {
	Columns int `json:"columns"`
	Rows    int `json:"rows"`
	Connect int `json:"connect"`
}

// DefaultRules returns the classic 7x6 board with a four-disc win line.
func DefaultRules() Rules {
	return Rules{Columns: 7, Rows: 6, Connect: 4}
}

// ValidateRules checks that a rule set describes a playable board.
func ValidateRules(r Rules) error {
	if r.Columns < 1 {
		return fmt.Errorf("%w: columns must be positive, got %d", ErrInvalidRules, r.Columns)
	}
	if r.Rows < 1 {
		return fmt.Errorf("%w: rows must be positive, got %d", ErrInvalidRules, r.Rows)
	}
	if r.Connect < 2 {
		return fmt.Errorf("%w: connect must be at least 2, got %d", ErrInvalidRules, r.Connect)
	}
	if r.Connect > r.Columns && r.Connect > r.Rows {
		return fmt.Errorf("%w: connect %d cannot fit on a %dx%d board", ErrInvalidRules, r.Connect, r.Columns, r.Rows)
	}
	return nil
}
