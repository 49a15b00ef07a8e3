package lobby

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/DoyleJ11/word-guess-backend/internal/engine"
	"github.com/DoyleJ11/word-guess-backend/internal/types"
	"go.uber.org/zap"
)

var ErrRoomNotFound = errors.New("room not found")
var ErrRoomFull = errors.New("room is full")
var ErrNotHost = errors.New("only host can start the game")
var ErrAlreadyStarted = errors.New("game already started")
var ErrGameNotStarted = errors.New("game not started")
var ErrNotInRoom = errors.New("not a member of this room")
var ErrAlreadyInRoom = errors.New("already in this room")
var ErrNotEnoughPlayers = errors.New("need two players to start")

const MaxPlayers = 2

// Sink receives messages for one connection. Deliver must not block; a
// false return means the connection can't keep up and is dropped.
type Sink interface {
	Deliver(msg types.ServerMessage) bool
}

// Recorder archives finished games.
type Recorder interface {
	RecordGame(ctx context.Context, code string, final engine.GameState) error
}

type Client struct {
	ID   string
	Name string
	Sink Sink
}

type Msg interface{ isLobbyMsg() }

type Join struct {
	Client Client
	Reply  chan error
}

type Leave struct {
	ClientID string
}

type Start struct {
	ClientID string
	Initial  *engine.GameState // nil builds the state from the room's players
	Reply    chan error
}

type FromClient struct {
	ClientID string
	Cmd      engine.Command
	Reply    chan error
}

type GetState struct {
	Reply chan View
}

type Shutdown struct{}

func (Join) isLobbyMsg()       {}
func (Leave) isLobbyMsg()      {}
func (Start) isLobbyMsg()      {}
func (FromClient) isLobbyMsg() {}
func (GetState) isLobbyMsg()   {}
func (Shutdown) isLobbyMsg()   {}

type View struct {
	Room       types.Room
	NumClients int
	State      *engine.GameState // unredacted, for tests and the archive
}

type Config struct {
	Logger   *zap.Logger
	Recorder Recorder
	// OnEmpty runs on the lobby goroutine once the last player has left.
	OnEmpty func(code string, l *Lobby)
}

type member struct {
	Client
	isHost bool
}

type Lobby struct {
	code    string
	inbox   chan Msg
	members []member
	state   *engine.GameState
	seats   [MaxPlayers]string // client ID per game seat, fixed at start
	started bool
	writes  sync.WaitGroup
	cfg     Config
	log     *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewLobby(parent context.Context, code string, host Client, cfg Config) *Lobby {
	ctx, cancel := context.WithCancel(parent)
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	l := &Lobby{
		code:    code,
		inbox:   make(chan Msg, 64),
		members: []member{{Client: host, isHost: true}},
		cfg:     cfg,
		log:     cfg.Logger.With(zap.String("room", code)),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	go l.loop()
	return l
}

func (l *Lobby) Code() string { return l.code }

// Expose the inbox so tests or the WS layer can send messages directly.
func (l *Lobby) Inbox() chan<- Msg { return l.inbox }

// Done is closed once the lobby goroutine has exited.
func (l *Lobby) Done() <-chan struct{} { return l.done }

func (l *Lobby) loop() {
	defer close(l.done)
	defer l.cancel()
	defer l.writes.Wait() // pending archive writes

	host := l.members[0]
	l.deliver(host.Client, types.NewServerMessage(types.EvtRoomCreated, types.RoomCreated{
		RoomCode: l.code,
		Room:     l.room(),
	}))
	l.log.Info("room created", zap.String("host", host.Name))
	if l.emptied() {
		return
	}

	for {
		select {
		case <-l.ctx.Done():
			return

		case m := <-l.inbox:
			switch msg := m.(type) {
			case Join:
				reply(msg.Reply, l.join(msg.Client))

			case Leave:
				l.remove(msg.ClientID)

			case Start:
				reply(msg.Reply, l.start(msg.ClientID, msg.Initial))

			case FromClient:
				reply(msg.Reply, l.apply(msg.ClientID, msg.Cmd))

			case GetState:
				v := View{Room: l.room(), NumClients: len(l.members)}
				if l.state != nil {
					s := l.state.Clone()
					v.State = &s
				}
				if msg.Reply != nil {
					msg.Reply <- v
				}

			case Shutdown:
				return
			}

			if l.emptied() {
				return
			}
		}
	}
}

func (l *Lobby) emptied() bool {
	if len(l.members) > 0 {
		return false
	}
	l.log.Info("room deleted (empty)")
	if l.cfg.OnEmpty != nil {
		l.cfg.OnEmpty(l.code, l)
	}
	return true
}

// Reply channels must be buffered; a nil channel means fire-and-forget.
func reply(ch chan error, err error) {
	if ch != nil {
		ch <- err
	}
}

func (l *Lobby) join(c Client) error {
	if l.indexOf(c.ID) >= 0 {
		return ErrAlreadyInRoom
	}
	if len(l.members) >= MaxPlayers {
		return ErrRoomFull
	}

	l.members = append(l.members, member{Client: c})
	l.log.Info("player joined", zap.String("player", c.Name))
	l.broadcast(types.NewServerMessage(types.EvtPlayerJoined, types.PlayerJoined{Room: l.room()}))
	return nil
}

func (l *Lobby) start(clientID string, initial *engine.GameState) error {
	i := l.indexOf(clientID)
	if i < 0 {
		return ErrNotInRoom
	}
	if !l.members[i].isHost {
		return ErrNotHost
	}
	if l.started {
		return ErrAlreadyStarted
	}

	if len(l.members) != MaxPlayers {
		return ErrNotEnoughPlayers
	}

	s := engine.NewGameState([2]string{l.members[0].Name, l.members[1].Name})
	if initial != nil {
		v, err := engine.Validate(*initial)
		if err != nil {
			return err
		}
		for i, p := range v.Players {
			if p.Name != l.members[i].Name {
				return fmt.Errorf("%w: seat %d is %q, room has %q", engine.ErrInvalidState, i, p.Name, l.members[i].Name)
			}
		}
		s = v
	}
	s.RoomCode = l.code

	for i, m := range l.members {
		l.seats[i] = m.ID
	}
	l.state = &s
	l.started = true
	l.log.Info("game started")
	l.broadcastState(s, func(gs engine.GameState) types.ServerMessage {
		return types.NewServerMessage(types.EvtGameStarted, types.GameStarted{GameState: gs})
	})
	return nil
}

func (l *Lobby) apply(clientID string, cmd engine.Command) error {
	sender := l.indexOf(clientID)
	if sender < 0 {
		return ErrNotInRoom
	}
	if l.state == nil {
		return ErrGameNotStarted
	}

	next, err := engine.Apply(*l.state, cmd)
	if err != nil {
		return err
	}
	l.state = &next

	switch cmd.Type {
	case engine.CmdSelectWord:
		// The word goes to the picker's own connection and nowhere else.
		from := l.members[sender].Client
		l.deliver(from, types.NewServerMessage(types.EvtWordConfirmed, types.WordConfirmed{Word: cmd.Word}))
		l.broadcastExcept(clientID, types.NewServerMessage(types.EvtWordSelectedNotice, types.WordSelectedNotification{}))

	case engine.CmdAskQuestion:
		l.broadcast(types.NewServerMessage(types.EvtQuestionAsked, types.QuestionAsked{Question: cmd.Question}))

	case engine.CmdAnswer:
		l.broadcastState(next, func(gs engine.GameState) types.ServerMessage {
			return types.NewServerMessage(types.EvtAnswerProvided, types.AnswerProvided{
				Question:  cmd.Question,
				Answer:    cmd.Answer,
				GameState: gs,
			})
		})

	case engine.CmdGuess:
		l.broadcastState(next, func(gs engine.GameState) types.ServerMessage {
			return types.NewServerMessage(types.EvtGuessMade, types.GuessMade{Guess: cmd.Guess, GameState: gs})
		})

	case engine.CmdNextTurn:
		l.broadcastState(next, func(gs engine.GameState) types.ServerMessage {
			return types.NewServerMessage(types.EvtTurnChanged, types.TurnChanged{GameState: gs})
		})
		if next.Phase == engine.PhaseGameOver {
			l.log.Info("game over", zap.Int("rounds", next.CurrentRound))
			l.record(next.Clone())
		}
	}
	return nil
}

func (l *Lobby) record(final engine.GameState) {
	if l.cfg.Recorder == nil {
		return
	}
	l.writes.Add(1)
	go func() {
		defer l.writes.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := l.cfg.Recorder.RecordGame(ctx, l.code, final); err != nil {
			l.log.Error("failed to record game", zap.Error(err))
		}
	}()
}

func (l *Lobby) remove(clientID string) {
	i := l.indexOf(clientID)
	if i < 0 {
		return
	}
	gone := l.members[i]
	l.members = append(l.members[:i], l.members[i+1:]...)
	l.log.Info("player left", zap.String("player", gone.Name))

	if len(l.members) == 0 {
		return
	}
	if gone.isHost {
		l.members[0].isHost = true
	}
	l.broadcast(types.NewServerMessage(types.EvtPlayerDisconnected, types.PlayerDisconnected{
		PlayerName: gone.Name,
		Room:       l.room(),
	}))
}

func (l *Lobby) indexOf(clientID string) int {
	for i, m := range l.members {
		if m.ID == clientID {
			return i
		}
	}
	return -1
}

func (l *Lobby) room() types.Room {
	r := types.Room{
		Code:          l.code,
		Players:       make([]types.RoomPlayer, 0, len(l.members)),
		IsGameStarted: l.started,
	}
	for _, m := range l.members {
		r.Players = append(r.Players, types.RoomPlayer{ID: m.ID, Name: m.Name, IsHost: m.isHost})
	}
	if l.state != nil {
		s := l.state.Redacted()
		r.GameState = &s
	}
	return r
}

func (l *Lobby) deliver(c Client, msg types.ServerMessage) {
	if c.Sink == nil || c.Sink.Deliver(msg) {
		return
	}
	// Client is slow/full - drop them.
	l.log.Warn("dropping slow client", zap.String("player", c.Name))
	l.remove(c.ID)
}

func (l *Lobby) broadcast(msg types.ServerMessage) {
	l.broadcastExcept("", msg)
}

func (l *Lobby) broadcastExcept(skipID string, msg types.ServerMessage) {
	for _, c := range l.targets(skipID) {
		l.deliver(c, msg)
	}
}

// broadcastState builds one message per member around the snapshot that
// member may see.
func (l *Lobby) broadcastState(s engine.GameState, build func(engine.GameState) types.ServerMessage) {
	for _, c := range l.targets("") {
		l.deliver(c, build(l.viewFor(c.ID, s)))
	}
}

// viewFor keeps the word in the picker's snapshot and blanks it for
// everyone else until the reveal.
func (l *Lobby) viewFor(clientID string, s engine.GameState) engine.GameState {
	seat := s.CurrentTurn.PickerIndex
	if seat >= 0 && seat < len(l.seats) && l.seats[seat] == clientID {
		return s.Clone()
	}
	return s.Redacted()
}

// targets copies the recipients first: deliver may shrink l.members.
func (l *Lobby) targets(skipID string) []Client {
	out := make([]Client, 0, len(l.members))
	for _, m := range l.members {
		if m.ID != skipID {
			out = append(out, m.Client)
		}
	}
	return out
}
