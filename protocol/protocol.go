package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Wire tags.
const (
	TagInit  = "init"
	TagWatch = "watch"
	TagPlay  = "play"
	TagWin   = "win"
	TagError = "error"
)

// DecodeError reports input that is not a well-formed JSON object.
type DecodeError struct {
	Cause error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("malformed message: %v", e.Cause)
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// ProtocolError reports a well-formed envelope with an unknown tag or
// missing/ill-typed required fields.
type ProtocolError struct {
	Reason string
}

func (e *ProtocolError) Error() string {
	return "protocol error: " + e.Reason
}

// IsViolation reports whether err is either failure class produced by
// Decode. Both abort the offending connection.
func IsViolation(err error) bool {
	var de *DecodeError
	var pe *ProtocolError
	return errors.As(err, &de) || errors.As(err, &pe)
}

// Inbound is the closed set of client-originated events.
type Inbound interface {
	inbound()
}

// InitRequest asks to create a game (empty Join) or join one as a player.
type InitRequest struct {
	Join string
}

// WatchRequest asks to attach to a game as a spectator.
type WatchRequest struct {
	Watch string
}

// PlayRequest asks to drop a disc in a column.
type PlayRequest struct {
	Column int
}

func (InitRequest) inbound()  {}
func (WatchRequest) inbound() {}
func (PlayRequest) inbound()  {}

// Outbound is the closed set of server-originated events.
type Outbound interface {
	outbound()
}

// InitResponse carries the tokens of a newly created game.
type InitResponse struct {
	Join  string
	Watch string
}

// PlayEvent announces a resolved move to every attachment.
type PlayEvent struct {
	Player int
	Column int
	Row    int
}

// WinEvent announces a terminal game state. Player 0 means the board
// filled without a winner.
type WinEvent struct {
	Player int
}

// ErrorEvent reports a failure to the originating connection only.
type ErrorEvent struct {
	Message string
}

func (InitResponse) outbound() {}
func (PlayEvent) outbound()    {}
func (WinEvent) outbound()     {}
func (ErrorEvent) outbound()   {}

// envelope is the loose wire shape. Fields stay raw so that an ill-typed
// field is classified as a protocol error, not a decode error.
type envelope struct {
	Type   json.RawMessage `json:"type"`
	Join   json.RawMessage `json:"join"`
	Watch  json.RawMessage `json:"watch"`
	Column json.RawMessage `json:"column"`
}

// Decode validates raw and returns the matching inbound variant.
func Decode(raw []byte) (Inbound, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &DecodeError{Cause: err}
	}

	if env.Type == nil {
		return nil, &ProtocolError{Reason: "missing type tag"}
	}
	var tag string
	if err := json.Unmarshal(env.Type, &tag); err != nil {
		return nil, &ProtocolError{Reason: "type tag must be a string"}
	}

	switch tag {
	case TagInit:
		ev := InitRequest{}
		if env.Join != nil {
			if err := json.Unmarshal(env.Join, &ev.Join); err != nil {
				return nil, &ProtocolError{Reason: "join must be a string"}
			}
		}
		return ev, nil

	case TagWatch:
		if env.Watch == nil {
			return nil, &ProtocolError{Reason: "watch requires a token"}
		}
		ev := WatchRequest{}
		if err := json.Unmarshal(env.Watch, &ev.Watch); err != nil {
			return nil, &ProtocolError{Reason: "watch must be a string"}
		}
		return ev, nil

	case TagPlay:
		if env.Column == nil {
			return nil, &ProtocolError{Reason: "play requires a column"}
		}
		ev := PlayRequest{}
		if err := json.Unmarshal(env.Column, &ev.Column); err != nil {
			return nil, &ProtocolError{Reason: "column must be an integer"}
		}
		return ev, nil

	default:
		return nil, &ProtocolError{Reason: fmt.Sprintf("unknown tag %q", tag)}
	}
}

// Encode serializes an outbound variant. It is total: every variant above
// marshals without error.
func Encode(ev Outbound) []byte {
	var wire any

	switch e := ev.(type) {
	case InitResponse:
		wire = struct {
			Type  string `json:"type"`
			Join  string `json:"join"`
			Watch string `json:"watch"`
		}{TagInit, e.Join, e.Watch}
	case PlayEvent:
		wire = struct {
			Type   string `json:"type"`
			Player int    `json:"player"`
			Column int    `json:"column"`
			Row    int    `json:"row"`
		}{TagPlay, e.Player, e.Column, e.Row}
	case WinEvent:
		wire = struct {
			Type   string `json:"type"`
			Player int    `json:"player"`
		}{TagWin, e.Player}
	case ErrorEvent:
		wire = struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		}{TagError, e.Message}
	}

	data, _ := json.Marshal(wire)
	return data
}
