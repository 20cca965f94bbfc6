package session

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/dropfour/server/game/engine"
	"github.com/dropfour/server/protocol"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionClosed   = errors.New("session closed")
)

// Role is what an attached connection may do within a session.
type Role int

const (
	Spectator Role = 0
	Player1   Role = 1
	Player2   Role = 2
)

func (r Role) String() string {
	switch r {
	case Player1:
		return "player1"
	case Player2:
		return "player2"
	default:
		return "spectator"
	}
}

// Conn is the transport-owned handle for one attached connection. The
// session references it but never owns its lifetime.
type Conn interface {
	// Send queues data for delivery and must not block. An error means the
	// connection can no longer accept events.
	Send(data []byte) error

	// Close tears the connection down. It must be idempotent and safe to
	// call from any goroutine.
	Close()
}

// MoveResult is the resolved effect of an accepted move.
type MoveResult struct {
	Row      int
	Terminal bool
	Winner   Role // Spectator (zero) on a draw
}

// Info is a read-only snapshot of a session for the observability surfaces.
// It deliberately omits the play token: listing sessions must not hand out
// player access.
type Info struct {
	WatchToken string            `json:"watch_token"`
	Players    int               `json:"players"`
	Spectators int               `json:"spectators"`
	Moves      int               `json:"moves"`
	Finished   bool              `json:"finished"`
	Winner     int               `json:"winner"`
	Rules      engine.Rules      `json:"rules"`
	Board      [][]engine.Player `json:"board,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}

// Session owns one game engine instance and the set of attached
// connections, partitioned into player and spectator roles.
type Session struct {
	playToken  string
	watchToken string
	createdAt  time.Time
	registry   *Registry

	mu          sync.Mutex
	game        *engine.Game
	attachments map[Conn]Role
	finished    bool
	released    bool
}

// PlayToken returns the token granting player access.
func (s *Session) PlayToken() string {
	return s.playToken
}

// WatchToken returns the token granting spectator access.
func (s *Session) WatchToken() string {
	return s.watchToken
}

// Attach adds a connection. Player slots are granted first-available:
// Player1 if free, else Player2, else Spectator. A spectate attach is
// always Spectator. Attaching to a finished or released session fails.
func (s *Session) Attach(c Conn, spectate bool) (Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finished || s.released {
		return Spectator, ErrSessionClosed
	}

	role := Spectator
	if !spectate {
		switch {
		case !s.roleTakenLocked(Player1):
			role = Player1
		case !s.roleTakenLocked(Player2):
			role = Player2
		}
	}

	s.attachments[c] = role
	log.Printf("[SESSION] attach role=%s attachments=%d", role, len(s.attachments))
	return role, nil
}

// Detach removes a connection. It is idempotent; cleanup paths may call it
// unconditionally. Emptying the attachment set releases the session from
// the registry.
func (s *Session) Detach(c Conn) {
	s.mu.Lock()
	if _, ok := s.attachments[c]; !ok {
		s.mu.Unlock()
		return
	}
	delete(s.attachments, c)
	remaining := len(s.attachments)
	empty := remaining == 0
	if empty {
		// Block attaches that raced past a registry lookup.
		s.released = true
	}
	s.mu.Unlock()

	log.Printf("[SESSION] detach attachments=%d", remaining)
	if empty {
		s.registry.release(s)
	}
}

// ApplyMove applies a move for role under the session's mutation lock and
// broadcasts the outcome in application order: the play event, then the
// win event if the move was terminal. A terminal move also archives the
// game and closes every attachment. Rejected moves leave the session
// untouched and nothing is broadcast.
func (s *Session) ApplyMove(role Role, column int) (MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if role != Player1 && role != Player2 {
		return MoveResult{}, fmt.Errorf("role %s cannot play", role)
	}
	if s.finished {
		return MoveResult{}, &engine.IllegalMoveError{Reason: "The game is already over."}
	}

	row, err := s.game.Drop(engine.Player(role), column)
	if err != nil {
		return MoveResult{}, err
	}

	res := MoveResult{Row: row}
	s.broadcastLocked(protocol.Encode(protocol.PlayEvent{
		Player: int(role),
		Column: column,
		Row:    row,
	}))

	if s.game.Over() {
		s.finished = true
		winner := int(s.game.Winner())
		res.Terminal = true
		res.Winner = Role(winner)

		s.broadcastLocked(protocol.Encode(protocol.WinEvent{Player: winner}))
		s.archiveLocked()
		s.closeAllLocked()
	}

	return res, nil
}

// Broadcast fans an event to attached connections. With no roles given it
// reaches every attachment; otherwise only connections holding one of the
// listed roles.
func (s *Session) Broadcast(ev protocol.Outbound, roles ...Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.broadcastLocked(protocol.Encode(ev), roles...)
}

// Info returns a snapshot for listings and inspection tools.
func (s *Session) Info(includeBoard bool) Info {
	s.mu.Lock()
	defer s.mu.Unlock()

	info := Info{
		WatchToken: s.watchToken,
		Moves:      s.game.MoveCount(),
		Finished:   s.finished,
		Winner:     int(s.game.Winner()),
		Rules:      s.game.Rules(),
		CreatedAt:  s.createdAt,
	}
	for _, role := range s.attachments {
		if role == Spectator {
			info.Spectators++
		} else {
			info.Players++
		}
	}
	if includeBoard {
		info.Board = s.game.Board()
	}
	return info
}

func (s *Session) roleTakenLocked(role Role) bool {
	for _, r := range s.attachments {
		if r == role {
			return true
		}
	}
	return false
}

// broadcastLocked delivers data to each matching attachment independently.
// A connection that cannot accept the event is closed asynchronously; its
// own Closed transition runs the detach. Delivery order per connection
// matches broadcast order because every call happens under s.mu.
func (s *Session) broadcastLocked(data []byte, roles ...Role) {
	for c, role := range s.attachments {
		if len(roles) > 0 && !roleIn(roles, role) {
			continue
		}
		if err := c.Send(data); err != nil {
			log.Printf("[BROADCAST] dropping %s attachment: %v", role, err)
			go c.Close()
		}
	}
}

// closeAllLocked starts the Closed transition for every attachment. The
// transport runs each connection's detach on its own goroutine, so the
// closes must not be synchronous here.
func (s *Session) closeAllLocked() {
	for c := range s.attachments {
		go c.Close()
	}
}

// archiveLocked records the finished game in the background.
func (s *Session) archiveLocked() {
	archive := s.registry.archive
	if archive == nil {
		return
	}

	rec := Record{
		Winner:     int(s.game.Winner()),
		Moves:      s.game.MoveCount(),
		Columns:    s.game.Rules().Columns,
		Rows:       s.game.Rules().Rows,
		StartedAt:  s.createdAt,
		FinishedAt: time.Now(),
	}

	go func() {
		if err := archive.Append(rec); err != nil {
			log.Printf("[ARCHIVE] failed to record finished game: %v", err)
		}
	}()
}

func roleIn(roles []Role, role Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
