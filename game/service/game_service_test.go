package service

import (
	"context"
	"errors"
	"testing"

	"github.com/dropfour/server/game/engine"
	"github.com/dropfour/server/game/session"
)

func newTestService(t *testing.T) (GameService, *session.Registry) {
	t.Helper()
	registry, err := session.NewRegistry(engine.DefaultRules(), nil)
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}
	return NewGameService(registry), registry
}

func TestListSessionsEmpty(t *testing.T) {
	svc, _ := newTestService(t)

	infos, err := svc.ListSessions(context.Background())
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(infos) != 0 {
		t.Errorf("ListSessions returned %d sessions, want 0", len(infos))
	}
}

func TestListSessions(t *testing.T) {
	svc, registry := newTestService(t)

	for i := 0; i < 3; i++ {
		if _, err := registry.Create(); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	infos, err := svc.ListSessions(context.Background())
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(infos) != 3 {
		t.Fatalf("ListSessions returned %d sessions, want 3", len(infos))
	}
	for _, info := range infos {
		if info.Board != nil {
			t.Error("listings must not include board contents")
		}
		if info.WatchToken == "" {
			t.Error("listings must carry the watch token")
		}
	}
}

func TestGetSessionByEitherToken(t *testing.T) {
	svc, registry := newTestService(t)
	sess, err := registry.Create()
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	for _, token := range []string{sess.PlayToken(), sess.WatchToken()} {
		info, err := svc.GetSession(context.Background(), token)
		if err != nil {
			t.Fatalf("GetSession(%q) failed: %v", token, err)
		}
		if info.Board == nil {
			t.Error("GetSession must include the board")
		}
		if info.WatchToken != sess.WatchToken() {
			t.Error("GetSession must report the watch token")
		}
	}
}

func TestGetSessionUnknownToken(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.GetSession(context.Background(), "unknown")
	if !errors.Is(err, session.ErrSessionNotFound) {
		t.Errorf("GetSession error = %v, want ErrSessionNotFound", err)
	}
}
