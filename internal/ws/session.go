package ws

import (
	"context"
	"errors"

	"github.com/DoyleJ11/word-guess-backend/internal/engine"
	"github.com/DoyleJ11/word-guess-backend/internal/hub"
	"github.com/DoyleJ11/word-guess-backend/internal/lobby"
	"github.com/DoyleJ11/word-guess-backend/internal/types"
	"go.uber.org/zap"
)

// session is one websocket connection. rooms is only touched by the reader
// goroutine; Deliver is called from lobby goroutines.
type session struct {
	id    string
	hub   *hub.Hub
	log   *zap.Logger
	out   chan types.ServerMessage
	rooms map[string]*lobby.Lobby
	kill  context.CancelFunc
}

func newSession(id string, h *hub.Hub, log *zap.Logger, kill context.CancelFunc) *session {
	return &session{
		id:    id,
		hub:   h,
		log:   log.With(zap.String("conn", id)),
		out:   make(chan types.ServerMessage, outboxSize),
		rooms: make(map[string]*lobby.Lobby),
		kill:  kill,
	}
}

// Deliver never blocks. A full outbox closes the connection, which the
// reader then handles as a disconnect.
func (s *session) Deliver(msg types.ServerMessage) bool {
	select {
	case s.out <- msg:
		return true
	default:
		s.log.Warn("outbox full, closing connection")
		s.kill()
		return false
	}
}

func (s *session) client(name string) lobby.Client {
	return lobby.Client{ID: s.id, Name: name, Sink: s}
}

func (s *session) dispatch(ctx context.Context, in types.Inbound) error {
	switch m := in.(type) {
	case types.CreateRoom:
		lb, err := s.hub.Create(ctx, s.client(m.PlayerName))
		if err != nil {
			return err
		}
		s.rooms[lb.Code()] = lb
		return nil

	case types.JoinRoom:
		if _, ok := s.rooms[m.RoomCode]; ok {
			return lobby.ErrAlreadyInRoom
		}
		lb, err := s.hub.Get(ctx, m.RoomCode)
		if err != nil {
			return err
		}
		if err := lb.JoinRoom(ctx, s.client(m.PlayerName)); err != nil {
			return err
		}
		s.rooms[lb.Code()] = lb
		return nil

	case types.StartGame:
		lb, err := s.room(ctx, m.RoomCode)
		if err != nil {
			return err
		}
		return s.forget(m.RoomCode, lb.StartGame(ctx, s.id, m.InitialGameState))

	case types.Targeted:
		lb, err := s.room(ctx, m.Code())
		if err != nil {
			return err
		}
		cmd, ok := toEngineCommand(m)
		if !ok {
			return types.ErrUnknownEvent
		}
		return s.forget(m.Code(), lb.Do(ctx, s.id, cmd))

	default:
		return types.ErrUnknownEvent
	}
}

// room resolves a code to a room this connection belongs to.
func (s *session) room(ctx context.Context, code string) (*lobby.Lobby, error) {
	if lb, ok := s.rooms[code]; ok {
		return lb, nil
	}
	if _, err := s.hub.Get(ctx, code); err != nil {
		return nil, err
	}
	return nil, lobby.ErrNotInRoom
}

// forget drops rooms that have gone away underneath us.
func (s *session) forget(code string, err error) error {
	if errors.Is(err, lobby.ErrRoomNotFound) || errors.Is(err, lobby.ErrNotInRoom) {
		delete(s.rooms, code)
	}
	return err
}

func (s *session) leaveAll(ctx context.Context) {
	for code, lb := range s.rooms {
		lb.LeaveRoom(ctx, s.id)
		delete(s.rooms, code)
	}
}

func toEngineCommand(in types.Inbound) (engine.Command, bool) {
	switch m := in.(type) {
	case types.SelectWord:
		return engine.Command{Type: engine.CmdSelectWord, Word: m.Word}, true
	case types.AskQuestion:
		return engine.Command{Type: engine.CmdAskQuestion, Question: m.Question}, true
	case types.ProvideAnswer:
		return engine.Command{Type: engine.CmdAnswer, Question: m.Question, Answer: m.Answer}, true
	case types.MakeGuess:
		return engine.Command{Type: engine.CmdGuess, Guess: m.Guess}, true
	case types.NextTurn:
		return engine.Command{Type: engine.CmdNextTurn}, true
	default:
		return engine.Command{}, false
	}
}
