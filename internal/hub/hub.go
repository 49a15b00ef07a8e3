package hub

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"sync"

	"github.com/DoyleJ11/word-guess-backend/internal/lobby"
	"go.uber.org/zap"
)

var ErrCodeSpaceExhausted = errors.New("could not allocate a room code")

const (
	codeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength  = 6
	maxRerolls  = 32
)

type HubMsg interface{ isHubMsg() }

type CreateRoom struct {
	Host  lobby.Client
	Reply chan CreateResult
}

type CreateResult struct {
	Lobby *lobby.Lobby
	Err   error
}

type GetRoom struct {
	Code  string
	Reply chan *lobby.Lobby
}

type ListRooms struct {
	Reply chan []string
}

// RemoveRoom only deletes the entry if it still points at Lobby, so a code
// reused after deletion is never removed by a stale notification.
type RemoveRoom struct {
	Code  string
	Lobby *lobby.Lobby
}

type ShutdownHub struct{}

func (CreateRoom) isHubMsg()  {}
func (GetRoom) isHubMsg()     {}
func (ListRooms) isHubMsg()   {}
func (RemoveRoom) isHubMsg()  {}
func (ShutdownHub) isHubMsg() {}

type Config struct {
	Logger   *zap.Logger
	Recorder lobby.Recorder
	// GenerateCode is swappable for tests.
	GenerateCode func() (string, error)
}

type Hub struct {
	inbox  chan HubMsg
	rooms  map[string]*lobby.Lobby
	live   sync.WaitGroup // lobby goroutines, including removed rooms still flushing
	cfg    Config
	log    *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func NewHub(parent context.Context, cfg Config) *Hub {
	ctx, cancel := context.WithCancel(parent)
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.GenerateCode == nil {
		cfg.GenerateCode = GenerateCode
	}
	h := &Hub{
		inbox:  make(chan HubMsg, 64),
		rooms:  make(map[string]*lobby.Lobby),
		cfg:    cfg,
		log:    cfg.Logger,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) Done() <-chan struct{} { return h.done }

func GenerateCode() (string, error) {
	code := make([]byte, codeLength)
	for i := range code {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeCharset))))
		if err != nil {
			return "", err
		}
		code[i] = codeCharset[num.Int64()]
	}
	return string(code), nil
}

func (h *Hub) loop() {
	defer close(h.done)

	for {
		select {
		case <-h.ctx.Done():
			// Lobbies run on contexts derived from ours and stop with it.
			clear(h.rooms)
			h.live.Wait()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case CreateRoom:
				lb, err := h.create(msg.Host)
				msg.Reply <- CreateResult{Lobby: lb, Err: err}

			case GetRoom:
				msg.Reply <- h.rooms[msg.Code] // May be nil

			case ListRooms:
				codes := make([]string, 0, len(h.rooms))
				for code := range h.rooms {
					codes = append(codes, code)
				}
				msg.Reply <- codes

			case RemoveRoom:
				if h.rooms[msg.Code] == msg.Lobby {
					delete(h.rooms, msg.Code)
					h.log.Info("room removed", zap.String("room", msg.Code), zap.Int("live_rooms", len(h.rooms)))
				}

			case ShutdownHub:
				h.cancel()
			}
		}
	}
}

func (h *Hub) create(host lobby.Client) (*lobby.Lobby, error) {
	var code string
	for attempt := 0; ; attempt++ {
		if attempt == maxRerolls {
			return nil, ErrCodeSpaceExhausted
		}
		c, err := h.cfg.GenerateCode()
		if err != nil {
			return nil, err
		}
		if _, taken := h.rooms[c]; !taken {
			code = c
			break
		}
		h.log.Debug("collision on code, regenerating", zap.String("room", c))
	}

	lb := lobby.NewLobby(h.ctx, code, host, lobby.Config{
		Logger:   h.log,
		Recorder: h.cfg.Recorder,
		OnEmpty:  h.notifyEmpty,
	})
	h.rooms[code] = lb
	h.live.Add(1)
	go func() {
		defer h.live.Done()
		<-lb.Done()
	}()
	return lb, nil
}

// notifyEmpty runs on a lobby goroutine.
func (h *Hub) notifyEmpty(code string, lb *lobby.Lobby) {
	select {
	case h.inbox <- RemoveRoom{Code: code, Lobby: lb}:
	case <-h.ctx.Done():
	}
}
