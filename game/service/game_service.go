package service

import (
	"context"
	"sort"

	"github.com/dropfour/server/game/session"
)

// GameService defines the inspection operations offered over REST and MCP.
type GameService interface {
	// ListSessions returns a snapshot of every live session, newest first,
	// without board contents.
	ListSessions(ctx context.Context) ([]session.Info, error)

	// GetSession resolves a play or watch token to a full snapshot
	// including the board. It fails with session.ErrSessionNotFound for
	// unknown tokens.
	GetSession(ctx context.Context, token string) (session.Info, error)
}

// gameServiceImpl implements GameService over the session registry.
type gameServiceImpl struct {
	registry *session.Registry
}

// NewGameService creates a new game service instance.
func NewGameService(registry *session.Registry) GameService {
	return &gameServiceImpl{registry: registry}
}

func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]session.Info, error) {
	sessions := s.registry.List()

	infos := make([]session.Info, 0, len(sessions))
	for _, sess := range sessions {
		infos = append(infos, sess.Info(false))
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].CreatedAt.After(infos[j].CreatedAt)
	})

	return infos, nil
}

func (s *gameServiceImpl) GetSession(ctx context.Context, token string) (session.Info, error) {
	sess, err := s.registry.LookupAny(token)
	if err != nil {
		return session.Info{}, err
	}
	return sess.Info(true), nil
}
