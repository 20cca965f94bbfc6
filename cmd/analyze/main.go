// Command analyze prints quick, human-readable statistics about the
// finished-game archive. It summarizes outcomes, game lengths, durations,
// and the board sizes that were played.
//
// Usage: analyze [archive-file] (defaults to "data/games.jsonl")
package main

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/dropfour/server/game/session"
)

// Summary aggregates the archive into the numbers the report prints.
type Summary struct {
	Games       int
	Player1Wins int
	Player2Wins int
	Draws       int

	TotalMoves    int
	ShortestMoves int
	LongestMoves  int

	TotalDuration time.Duration

	// Boards counts games per board size, keyed like "7x6".
	Boards map[string]int
}

// summarize folds the archive records into a Summary.
func summarize(records []session.Record) Summary {
	s := Summary{Boards: make(map[string]int)}

	for _, r := range records {
		s.Games++
		switch r.Winner {
		case 1:
			s.Player1Wins++
		case 2:
			s.Player2Wins++
		default:
			s.Draws++
		}

		s.TotalMoves += r.Moves
		if s.ShortestMoves == 0 || r.Moves < s.ShortestMoves {
			s.ShortestMoves = r.Moves
		}
		if r.Moves > s.LongestMoves {
			s.LongestMoves = r.Moves
		}

		if r.FinishedAt.After(r.StartedAt) {
			s.TotalDuration += r.FinishedAt.Sub(r.StartedAt)
		}

		s.Boards[fmt.Sprintf("%dx%d", r.Columns, r.Rows)]++
	}

	return s
}

// report prints the summary in a compact fixed layout.
func report(s Summary) {
	fmt.Printf("Games played: %d\n", s.Games)
	if s.Games == 0 {
		return
	}

	fmt.Printf("Player 1 wins: %d (%.0f%%)\n", s.Player1Wins, percent(s.Player1Wins, s.Games))
	fmt.Printf("Player 2 wins: %d (%.0f%%)\n", s.Player2Wins, percent(s.Player2Wins, s.Games))
	fmt.Printf("Draws: %d (%.0f%%)\n", s.Draws, percent(s.Draws, s.Games))

	fmt.Printf("\nMoves per game: avg %.1f, min %d, max %d\n",
		float64(s.TotalMoves)/float64(s.Games), s.ShortestMoves, s.LongestMoves)
	fmt.Printf("Average duration: %s\n",
		(s.TotalDuration / time.Duration(s.Games)).Round(time.Second))

	fmt.Println("\nBoard sizes:")
	sizes := make([]string, 0, len(s.Boards))
	for size := range s.Boards {
		sizes = append(sizes, size)
	}
	sort.Strings(sizes)
	for _, size := range sizes {
		fmt.Printf("  %s: %d game(s)\n", size, s.Boards[size])
	}
}

func percent(part, total int) float64 {
	return float64(part) / float64(total) * 100
}

func main() {
	path := "data/games.jsonl"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	archive, err := session.NewFileArchive(path)
	if err != nil {
		fmt.Printf("Error opening archive: %v\n", err)
		os.Exit(1)
	}

	records, err := archive.ReadAll()
	if err != nil {
		fmt.Printf("Error reading archive: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("=== Archive: %s ===\n\n", path)
	report(summarize(records))
}
