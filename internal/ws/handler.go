package ws

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/DoyleJ11/word-guess-backend/internal/hub"
	"github.com/DoyleJ11/word-guess-backend/internal/types"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var ErrRateLimited = errors.New("too many messages, slow down")

const (
	outboxSize   = 32
	writeTimeout = 3 * time.Second
	readLimit    = 16 << 10
)

type Options struct {
	Logger         *zap.Logger
	OriginPatterns []string
	// ReadTimeout closes connections that stay silent this long. 0 disables it.
	ReadTimeout  time.Duration
	MessageRate  float64
	MessageBurst int
}

func Handler(h *hub.Hub, opts Options) http.HandlerFunc {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.MessageRate <= 0 {
		opts.MessageRate = 20
	}
	if opts.MessageBurst <= 0 {
		opts.MessageBurst = 40
	}

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: opts.OriginPatterns,
		})
		if err != nil {
			opts.Logger.Warn("websocket accept failed", zap.Error(err))
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")
		conn.SetReadLimit(readLimit)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		s := newSession(uuid.NewString(), h, opts.Logger, cancel)
		s.log.Info("user connected")

		// Writer goroutine
		writerDone := make(chan struct{})
		go func() {
			defer close(writerDone)
			s.writeLoop(ctx, conn)
		}()

		s.readLoop(ctx, conn, opts, rate.NewLimiter(rate.Limit(opts.MessageRate), opts.MessageBurst))

		// Disconnect: every room this connection is in loses the player.
		leaveCtx, leaveCancel := context.WithTimeout(context.Background(), time.Second)
		s.leaveAll(leaveCtx)
		leaveCancel()

		cancel()
		<-writerDone
		s.log.Info("user disconnected")
	}
}

func (s *session) writeLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-s.out:
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := wsjson.Write(wctx, conn, msg)
			cancel()
			if err != nil {
				s.log.Debug("write failed", zap.Error(err))
				s.kill()
				return
			}
		}
	}
}

func (s *session) readLoop(ctx context.Context, conn *websocket.Conn, opts Options, limiter *rate.Limiter) {
	for {
		rctx, rcancel := ctx, context.CancelFunc(func() {})
		if opts.ReadTimeout > 0 {
			rctx, rcancel = context.WithTimeout(ctx, opts.ReadTimeout)
		}
		_, data, err := conn.Read(rctx)
		rcancel()
		if err != nil {
			// Treat clean close/going-away as normal:
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			default:
				if ctx.Err() == nil {
					s.log.Debug("read failed", zap.Error(err))
				}
			}
			return
		}

		if !limiter.Allow() {
			s.Deliver(types.ErrorMessage(ErrRateLimited))
			continue
		}

		in, err := types.Decode(data)
		if err != nil {
			s.Deliver(types.ErrorMessage(err))
			continue
		}
		if err := s.dispatch(ctx, in); err != nil {
			s.log.Debug("action rejected", zap.String("event", in.Event()), zap.Error(err))
			s.Deliver(types.ErrorMessage(err))
		}
	}
}
