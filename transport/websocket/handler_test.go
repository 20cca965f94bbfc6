package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dropfour/server/game/engine"
	"github.com/dropfour/server/game/session"
)

func newTestServer(t *testing.T) (*httptest.Server, *session.Registry) {
	t.Helper()
	registry, err := session.NewRegistry(engine.DefaultRules(), nil)
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}

	handler := NewHandler(registry)
	srv := httptest.NewServer(http.HandlerFunc(handler.HandleWebSocket))
	t.Cleanup(srv.Close)
	return srv, registry
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, msg string) {
	t.Helper()
	if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
		t.Fatalf("write failed: %v", err)
	}
}

func recv(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	var ev map[string]any
	if err := json.Unmarshal(data, &ev); err != nil {
		t.Fatalf("event is not valid JSON: %v (%s)", err, data)
	}
	return ev
}

func createGame(t *testing.T, srv *httptest.Server) (*websocket.Conn, string, string) {
	t.Helper()
	conn := dial(t, srv)
	send(t, conn, `{"type":"init"}`)
	ev := recv(t, conn)
	if ev["type"] != "init" {
		t.Fatalf("first event = %v, want init", ev)
	}
	join, _ := ev["join"].(string)
	watch, _ := ev["watch"].(string)
	if join == "" || watch == "" {
		t.Fatalf("init response missing tokens: %v", ev)
	}
	return conn, join, watch
}

func waitForCount(t *testing.T, registry *session.Registry, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for registry.Count() != want {
		if time.Now().After(deadline) {
			t.Fatalf("registry count = %d, want %d", registry.Count(), want)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestCreateReturnsTokens(t *testing.T) {
	srv, registry := newTestServer(t)

	_, join, watch := createGame(t, srv)
	if join == watch {
		t.Error("play and watch tokens must differ")
	}
	if registry.Count() != 1 {
		t.Errorf("registry count = %d, want 1", registry.Count())
	}
}

func TestJoinAndPlayBroadcast(t *testing.T) {
	srv, _ := newTestServer(t)

	a, join, _ := createGame(t, srv)

	b := dial(t, srv)
	send(t, b, `{"type":"init","join":"`+join+`"}`)

	send(t, a, `{"type":"play","column":3}`)

	for name, conn := range map[string]*websocket.Conn{"creator": a, "joiner": b} {
		ev := recv(t, conn)
		if ev["type"] != "play" {
			t.Fatalf("%s received %v, want play", name, ev)
		}
		if ev["player"] != float64(1) || ev["column"] != float64(3) || ev["row"] != float64(0) {
			t.Errorf("%s play event = %v, want player 1, column 3, row 0", name, ev)
		}
	}
}

func TestJoinUnknownToken(t *testing.T) {
	srv, registry := newTestServer(t)

	c := dial(t, srv)
	send(t, c, `{"type":"init","join":"unknown-token"}`)

	ev := recv(t, c)
	if ev["type"] != "error" {
		t.Fatalf("event = %v, want error", ev)
	}
	if ev["message"] != "Game not found." {
		t.Errorf("message = %v, want %q", ev["message"], "Game not found.")
	}
	if registry.Count() != 0 {
		t.Error("a failed join must not create a session")
	}
}

func TestIllegalMoveReportedToOffenderOnly(t *testing.T) {
	srv, _ := newTestServer(t)

	a, join, _ := createGame(t, srv)
	b := dial(t, srv)
	send(t, b, `{"type":"init","join":"`+join+`"}`)

	send(t, a, `{"type":"play","column":99}`)
	ev := recv(t, a)
	if ev["type"] != "error" {
		t.Fatalf("offender received %v, want error", ev)
	}

	// The session is untouched and the offender stays attached: the next
	// legal move is broadcast to both, and it is the joiner's first event.
	send(t, a, `{"type":"play","column":0}`)
	for name, conn := range map[string]*websocket.Conn{"creator": a, "joiner": b} {
		ev := recv(t, conn)
		if ev["type"] != "play" {
			t.Errorf("%s received %v, want play", name, ev)
		}
	}
}

func TestWinBroadcastAndTeardown(t *testing.T) {
	srv, registry := newTestServer(t)

	a, join, _ := createGame(t, srv)
	b := dial(t, srv)
	send(t, b, `{"type":"init","join":"`+join+`"}`)

	for i := 0; i < 4; i++ {
		send(t, a, `{"type":"play","column":2}`)
	}

	for name, conn := range map[string]*websocket.Conn{"creator": a, "joiner": b} {
		for i := 0; i < 4; i++ {
			ev := recv(t, conn)
			if ev["type"] != "play" {
				t.Fatalf("%s event %d = %v, want play", name, i, ev)
			}
			if ev["row"] != float64(i) {
				t.Errorf("%s event %d row = %v, want %d", name, i, ev["row"], i)
			}
		}
		ev := recv(t, conn)
		if ev["type"] != "win" || ev["player"] != float64(1) {
			t.Errorf("%s final event = %v, want win for player 1", name, ev)
		}

		// The server closes the connection after the win.
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		if _, _, err := conn.ReadMessage(); err == nil {
			t.Errorf("%s connection should be closed after the win", name)
		}
	}

	waitForCount(t, registry, 0)

	// The token is dead: a fresh join is told the game is gone.
	c := dial(t, srv)
	send(t, c, `{"type":"init","join":"`+join+`"}`)
	ev := recv(t, c)
	if ev["type"] != "error" || ev["message"] != "Game not found." {
		t.Errorf("join after teardown = %v, want Game not found.", ev)
	}
}

func TestSpectatorReceivesButCannotPlay(t *testing.T) {
	srv, _ := newTestServer(t)

	a, _, watch := createGame(t, srv)

	w := dial(t, srv)
	send(t, w, `{"type":"watch","watch":"`+watch+`"}`)

	send(t, a, `{"type":"play","column":5}`)
	ev := recv(t, w)
	if ev["type"] != "play" || ev["column"] != float64(5) {
		t.Fatalf("spectator received %v, want the play event", ev)
	}

	// A mutating event from a spectator aborts that connection only.
	send(t, w, `{"type":"play","column":0}`)
	ev = recv(t, w)
	if ev["type"] != "error" {
		t.Fatalf("spectator received %v, want error", ev)
	}
	w.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := w.ReadMessage(); err == nil {
		t.Error("spectator connection should be closed after the violation")
	}

	// The player is unaffected.
	send(t, a, `{"type":"play","column":5}`)
	if ev := recv(t, a); ev["type"] != "play" {
		t.Errorf("player received %v, want play", ev)
	}
}

func TestWatchTokenNamespace(t *testing.T) {
	srv, _ := newTestServer(t)

	_, join, _ := createGame(t, srv)

	// A play token is not valid in the watch namespace.
	w := dial(t, srv)
	send(t, w, `{"type":"watch","watch":"`+join+`"}`)
	ev := recv(t, w)
	if ev["type"] != "error" || ev["message"] != "Game not found." {
		t.Errorf("watch with play token = %v, want Game not found.", ev)
	}
}

func TestMalformedFirstEvent(t *testing.T) {
	srv, registry := newTestServer(t)

	c := dial(t, srv)
	send(t, c, `this is not json`)

	ev := recv(t, c)
	if ev["type"] != "error" {
		t.Fatalf("event = %v, want error", ev)
	}
	if registry.Count() != 0 {
		t.Error("a protocol violation must not create a session")
	}
}

func TestPlayBeforeInitIsViolation(t *testing.T) {
	srv, _ := newTestServer(t)

	c := dial(t, srv)
	send(t, c, `{"type":"play","column":3}`)

	ev := recv(t, c)
	if ev["type"] != "error" {
		t.Fatalf("event = %v, want error", ev)
	}
}

func TestDisconnectReleasesSession(t *testing.T) {
	srv, registry := newTestServer(t)

	a, _, _ := createGame(t, srv)
	waitForCount(t, registry, 1)

	a.Close()
	waitForCount(t, registry, 0)
}

func TestPlayerDisconnectLeavesSessionAlive(t *testing.T) {
	srv, registry := newTestServer(t)

	a, join, _ := createGame(t, srv)
	b := dial(t, srv)
	send(t, b, `{"type":"init","join":"`+join+`"}`)

	// Make sure the joiner is attached before dropping the creator.
	send(t, a, `{"type":"play","column":0}`)
	if ev := recv(t, b); ev["type"] != "play" {
		t.Fatalf("joiner received %v, want play", ev)
	}
	recv(t, a)

	a.Close()

	// The session survives for the remaining player, and the freed slot
	// goes to the next joiner. Wait for the creator's detach to land.
	sess, err := registry.Lookup(join)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for sess.Info(false).Players != 1 {
		if time.Now().After(deadline) {
			t.Fatal("player slot should free when the creator disconnects")
		}
		time.Sleep(10 * time.Millisecond)
	}
	if registry.Count() != 1 {
		t.Fatal("session should survive while a player remains")
	}

	c := dial(t, srv)
	send(t, c, `{"type":"init","join":"`+join+`"}`)
	send(t, c, `{"type":"play","column":1}`)

	ev := recv(t, c)
	if ev["type"] != "play" || ev["player"] != float64(1) {
		t.Errorf("new joiner's move = %v, want play as player 1", ev)
	}
}
