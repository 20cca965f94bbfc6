package websocket

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/dropfour/server/game/engine"
	"github.com/dropfour/server/game/session"
	"github.com/dropfour/server/protocol"
)

// msgNotFound is sent for unknown or expired tokens. Deliberately the same
// for both cases so a token probe learns nothing.
const msgNotFound = "Game not found."

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins in development
		// TODO: Configure this for production
		return true
	},
}

// Handler owns the registry reference and drives one state machine per
// connection.
type Handler struct {
	registry *session.Registry
}

// NewHandler creates a connection handler backed by registry.
func NewHandler(registry *session.Registry) *Handler {
	return &Handler{registry: registry}
}

// HandleWebSocket upgrades the request and runs the connection until it
// closes. The HTTP handler goroutine becomes the connection's read loop.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WS] upgrade failed: %v", err)
		return
	}

	client := newClient(conn)
	go client.writePump()
	h.run(client)
}

// run walks the connection through Init, Active, and Closed. The deferred
// detach is the Closed transition's cleanup: it executes on every exit
// path, normal or not.
func (h *Handler) run(c *Client) {
	defer c.Close()

	sess, role, err := h.handshake(c)
	if err != nil {
		log.Printf("[WS] %s handshake rejected: %v", c.id, err)
		return
	}
	defer sess.Detach(c)

	log.Printf("[WS] %s attached as %s", c.id, role)
	h.activeLoop(c, sess, role)
}

// handshake handles the Init state: exactly one of create, join, or watch.
func (h *Handler) handshake(c *Client) (*session.Session, session.Role, error) {
	data, err := c.readMessage()
	if err != nil {
		return nil, 0, err
	}

	ev, err := protocol.Decode(data)
	if err != nil {
		c.Send(protocol.Encode(protocol.ErrorEvent{Message: err.Error()}))
		return nil, 0, err
	}

	switch ev := ev.(type) {
	case protocol.InitRequest:
		if ev.Join == "" {
			return h.createSession(c)
		}
		return h.joinSession(c, ev.Join)

	case protocol.WatchRequest:
		return h.watchSession(c, ev.Watch)

	default:
		// The first event must establish a session.
		err := &protocol.ProtocolError{Reason: "expected init or watch"}
		c.Send(protocol.Encode(protocol.ErrorEvent{Message: err.Error()}))
		return nil, 0, err
	}
}

func (h *Handler) createSession(c *Client) (*session.Session, session.Role, error) {
	sess, err := h.registry.Create()
	if err != nil {
		c.Send(protocol.Encode(protocol.ErrorEvent{Message: "Could not create game."}))
		return nil, 0, err
	}

	role, err := sess.Attach(c, false)
	if err != nil {
		return nil, 0, err
	}

	c.Send(protocol.Encode(protocol.InitResponse{
		Join:  sess.PlayToken(),
		Watch: sess.WatchToken(),
	}))
	return sess, role, nil
}

func (h *Handler) joinSession(c *Client, token string) (*session.Session, session.Role, error) {
	sess, err := h.registry.Lookup(token)
	if err != nil {
		c.Send(protocol.Encode(protocol.ErrorEvent{Message: msgNotFound}))
		return nil, 0, err
	}

	role, err := sess.Attach(c, false)
	if err != nil {
		// Lost the race against the session's teardown.
		c.Send(protocol.Encode(protocol.ErrorEvent{Message: msgNotFound}))
		return nil, 0, err
	}
	return sess, role, nil
}

func (h *Handler) watchSession(c *Client, token string) (*session.Session, session.Role, error) {
	sess, err := h.registry.LookupWatch(token)
	if err != nil {
		c.Send(protocol.Encode(protocol.ErrorEvent{Message: msgNotFound}))
		return nil, 0, err
	}

	role, err := sess.Attach(c, true)
	if err != nil {
		c.Send(protocol.Encode(protocol.ErrorEvent{Message: msgNotFound}))
		return nil, 0, err
	}
	return sess, role, nil
}

// activeLoop relays inbound play events into the session until the
// connection closes, the game ends, or the client violates the protocol.
func (h *Handler) activeLoop(c *Client, sess *session.Session, role session.Role) {
	for {
		data, err := c.readMessage()
		if err != nil {
			// Transport closed; the deferred detach cleans up.
			return
		}

		ev, err := protocol.Decode(data)
		if err != nil {
			log.Printf("[WS] %s violation: %v", c.id, err)
			c.Send(protocol.Encode(protocol.ErrorEvent{Message: err.Error()}))
			return
		}

		play, ok := ev.(protocol.PlayRequest)
		if !ok {
			log.Printf("[WS] %s sent %T while active", c.id, ev)
			c.Send(protocol.Encode(protocol.ErrorEvent{Message: "protocol error: unexpected event"}))
			return
		}

		if role == session.Spectator {
			c.Send(protocol.Encode(protocol.ErrorEvent{Message: "protocol error: spectators cannot play"}))
			return
		}

		res, err := sess.ApplyMove(role, play.Column)
		if err != nil {
			if engine.IsIllegalMove(err) {
				// Recoverable: tell only the offender, stay in the loop.
				c.Send(protocol.Encode(protocol.ErrorEvent{Message: err.Error()}))
				continue
			}
			// Engine fault: close this connection, leave the session to
			// its other participants.
			log.Printf("[WS] %s engine fault: %v", c.id, err)
			c.Send(protocol.Encode(protocol.ErrorEvent{Message: "Internal error."}))
			return
		}

		if res.Terminal {
			// The session has broadcast the win and is closing every
			// attachment, this one included.
			return
		}
	}
}
