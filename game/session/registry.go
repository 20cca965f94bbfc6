package session

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/dropfour/server/game/engine"
)

// tokenBytes sets token entropy: 16 bytes is 128 bits, comfortably above
// the 96-bit floor for unguessable identifiers.
const tokenBytes = 16

// Registry is the process-wide table of live sessions. Play and watch
// tokens live in separate namespaces; both resolve to the same session.
type Registry struct {
	rules   engine.Rules
	archive Archive

	mu      sync.RWMutex
	byPlay  map[string]*Session
	byWatch map[string]*Session
}

// NewRegistry creates an empty registry. Sessions it creates use the given
// rules; archive may be nil to skip recording finished games.
func NewRegistry(rules engine.Rules, archive Archive) (*Registry, error) {
	if err := engine.ValidateRules(rules); err != nil {
		return nil, err
	}
	return &Registry{
		rules:   rules,
		archive: archive,
		byPlay:  make(map[string]*Session),
		byWatch: make(map[string]*Session),
	}, nil
}

// Create makes an empty session with fresh tokens and inserts it. Token
// collisions are regenerated, never surfaced.
func (r *Registry) Create() (*Session, error) {
	game, err := engine.New(r.rules)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	s := &Session{
		createdAt:   time.Now(),
		registry:    r,
		game:        game,
		attachments: make(map[Conn]Role),
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	s.playToken = newTokenLocked(r.byPlay)
	s.watchToken = newTokenLocked(r.byWatch)
	r.byPlay[s.playToken] = s
	r.byWatch[s.watchToken] = s

	log.Printf("[REGISTRY] created session, %d live", len(r.byPlay))
	return s, nil
}

// Lookup resolves a play token.
func (r *Registry) Lookup(token string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.byPlay[token]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// LookupWatch resolves a watch token.
func (r *Registry) LookupWatch(token string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.byWatch[token]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// LookupAny resolves either kind of token. Inspection surfaces accept both.
func (r *Registry) LookupAny(token string) (*Session, error) {
	if s, err := r.Lookup(token); err == nil {
		return s, nil
	}
	return r.LookupWatch(token)
}

// List returns all live sessions.
func (r *Registry) List() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Session, 0, len(r.byPlay))
	for _, s := range r.byPlay {
		result = append(result, s)
	}
	return result
}

// Count returns the number of live sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byPlay)
}

// release removes a session's tokens. Called when the attachment count
// reaches zero; a second release of the same session is a no-op.
func (r *Registry) release(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byPlay[s.playToken]; !ok {
		return
	}
	delete(r.byPlay, s.playToken)
	delete(r.byWatch, s.watchToken)
	log.Printf("[REGISTRY] released session, %d live", len(r.byPlay))
}

// newTokenLocked draws a random URL-safe token not present in table.
func newTokenLocked(table map[string]*Session) string {
	for {
		buf := make([]byte, tokenBytes)
		rand.Read(buf)
		token := base64.RawURLEncoding.EncodeToString(buf)
		if _, taken := table[token]; !taken {
			return token
		}
	}
}
