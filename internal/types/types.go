package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/DoyleJ11/word-guess-backend/internal/engine"
)

const ProtocolVersion = 1

var ErrBadPayload = errors.New("bad payload")
var ErrUnknownEvent = errors.New("unknown event")
var ErrUnsupportedVersion = errors.New("unsupported protocol version")
var ErrMissingName = errors.New("player name is required")
var ErrMissingRoomCode = errors.New("room code is required")

// Client -> server events.
const (
	EvtCreateRoom    = "create_room"
	EvtJoinRoom      = "join_room"
	EvtStartGame     = "start_game"
	EvtWordSelected  = "word_selected"
	EvtAskQuestion   = "ask_question"
	EvtProvideAnswer = "provide_answer"
	EvtMakeGuess     = "make_guess"
	EvtNextTurn      = "next_turn"
)

// Server -> client events.
const (
	EvtRoomCreated        = "room_created"
	EvtPlayerJoined       = "player_joined"
	EvtGameStarted        = "game_started"
	EvtWordConfirmed      = "word_confirmed"
	EvtWordSelectedNotice = "word_selected_notification"
	EvtQuestionAsked      = "question_asked"
	EvtAnswerProvided     = "answer_provided"
	EvtGuessMade          = "guess_made"
	EvtTurnChanged        = "turn_changed"
	EvtPlayerDisconnected = "player_disconnected"
	EvtError              = "error"
)

type ClientMessage struct {
	Type    string          `json:"type"`
	Version int             `json:"v,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type ServerMessage struct {
	Type    string `json:"type"`
	Version int    `json:"v"`
	Payload any    `json:"payload"`
}

func NewServerMessage(typ string, payload any) ServerMessage {
	return ServerMessage{Type: typ, Version: ProtocolVersion, Payload: payload}
}

func ErrorMessage(err error) ServerMessage {
	return NewServerMessage(EvtError, Error{Message: err.Error()})
}

// Inbound is the closed set of decoded client payloads.
type Inbound interface {
	Event() string
	validate() error
}

// Targeted is an inbound event addressed to an existing room.
type Targeted interface {
	Inbound
	Code() string
}

type CreateRoom struct {
	PlayerName string `json:"playerName"`
}

type JoinRoom struct {
	RoomCode   string `json:"roomCode"`
	PlayerName string `json:"playerName"`
}

type StartGame struct {
	RoomCode         string            `json:"roomCode"`
	InitialGameState *engine.GameState `json:"initialGameState,omitempty"`
}

type SelectWord struct {
	RoomCode string `json:"roomCode"`
	Word     string `json:"word"`
}

type AskQuestion struct {
	RoomCode string `json:"roomCode"`
	Question string `json:"question"`
}

type ProvideAnswer struct {
	RoomCode string        `json:"roomCode"`
	Question string        `json:"question"`
	Answer   engine.Answer `json:"answer"`
}

type MakeGuess struct {
	RoomCode string `json:"roomCode"`
	Guess    string `json:"guess"`
}

type NextTurn struct {
	RoomCode string `json:"roomCode"`
}

func (CreateRoom) Event() string    { return EvtCreateRoom }
func (JoinRoom) Event() string      { return EvtJoinRoom }
func (StartGame) Event() string     { return EvtStartGame }
func (SelectWord) Event() string    { return EvtWordSelected }
func (AskQuestion) Event() string   { return EvtAskQuestion }
func (ProvideAnswer) Event() string { return EvtProvideAnswer }
func (MakeGuess) Event() string     { return EvtMakeGuess }
func (NextTurn) Event() string      { return EvtNextTurn }

func (m JoinRoom) Code() string      { return m.RoomCode }
func (m StartGame) Code() string     { return m.RoomCode }
func (m SelectWord) Code() string    { return m.RoomCode }
func (m AskQuestion) Code() string   { return m.RoomCode }
func (m ProvideAnswer) Code() string { return m.RoomCode }
func (m MakeGuess) Code() string     { return m.RoomCode }
func (m NextTurn) Code() string      { return m.RoomCode }

func (m CreateRoom) validate() error    { return requireName(m.PlayerName) }
func (m StartGame) validate() error     { return requireCode(m.RoomCode) }
func (m SelectWord) validate() error    { return requireCode(m.RoomCode) }
func (m AskQuestion) validate() error   { return requireCode(m.RoomCode) }
func (m ProvideAnswer) validate() error { return requireCode(m.RoomCode) }
func (m MakeGuess) validate() error     { return requireCode(m.RoomCode) }
func (m NextTurn) validate() error      { return requireCode(m.RoomCode) }

func (m JoinRoom) validate() error {
	if err := requireCode(m.RoomCode); err != nil {
		return err
	}
	return requireName(m.PlayerName)
}

func requireName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrMissingName
	}
	return nil
}

func requireCode(code string) error {
	if code == "" {
		return ErrMissingRoomCode
	}
	return nil
}

// NormalizeCode makes room codes case-insensitive on input.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Decode parses one client frame into its typed payload. Room codes are
// normalised and required fields checked before anything reaches a room.
func Decode(data []byte) (Inbound, error) {
	var cm ClientMessage
	if err := json.Unmarshal(data, &cm); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	if cm.Version != 0 && cm.Version != ProtocolVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, cm.Version)
	}

	var in Inbound
	var err error
	switch cm.Type {
	case EvtCreateRoom:
		var m CreateRoom
		err = unmarshalPayload(cm.Payload, &m)
		m.PlayerName = strings.TrimSpace(m.PlayerName)
		in = m
	case EvtJoinRoom:
		var m JoinRoom
		err = unmarshalPayload(cm.Payload, &m)
		m.RoomCode = NormalizeCode(m.RoomCode)
		m.PlayerName = strings.TrimSpace(m.PlayerName)
		in = m
	case EvtStartGame:
		var m StartGame
		err = unmarshalPayload(cm.Payload, &m)
		m.RoomCode = NormalizeCode(m.RoomCode)
		in = m
	case EvtWordSelected:
		var m SelectWord
		err = unmarshalPayload(cm.Payload, &m)
		m.RoomCode = NormalizeCode(m.RoomCode)
		in = m
	case EvtAskQuestion:
		var m AskQuestion
		err = unmarshalPayload(cm.Payload, &m)
		m.RoomCode = NormalizeCode(m.RoomCode)
		in = m
	case EvtProvideAnswer:
		var m ProvideAnswer
		err = unmarshalPayload(cm.Payload, &m)
		m.RoomCode = NormalizeCode(m.RoomCode)
		m.Answer = engine.Answer(strings.ToLower(string(m.Answer)))
		in = m
	case EvtMakeGuess:
		var m MakeGuess
		err = unmarshalPayload(cm.Payload, &m)
		m.RoomCode = NormalizeCode(m.RoomCode)
		in = m
	case EvtNextTurn:
		var m NextTurn
		err = unmarshalPayload(cm.Payload, &m)
		m.RoomCode = NormalizeCode(m.RoomCode)
		in = m
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, cm.Type)
	}
	if err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	return in, nil
}

func unmarshalPayload(raw json.RawMessage, v any) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	return nil
}
