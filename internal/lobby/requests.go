package lobby

import (
	"context"

	"github.com/DoyleJ11/word-guess-backend/internal/engine"
)

// Request helpers for callers outside the lobby goroutine. Each one returns
// ErrRoomNotFound if the lobby exits before handling the message.

func (l *Lobby) JoinRoom(ctx context.Context, c Client) error {
	r := make(chan error, 1)
	return l.call(ctx, Join{Client: c, Reply: r}, r)
}

func (l *Lobby) StartGame(ctx context.Context, clientID string, initial *engine.GameState) error {
	r := make(chan error, 1)
	return l.call(ctx, Start{ClientID: clientID, Initial: initial, Reply: r}, r)
}

func (l *Lobby) Do(ctx context.Context, clientID string, cmd engine.Command) error {
	r := make(chan error, 1)
	return l.call(ctx, FromClient{ClientID: clientID, Cmd: cmd, Reply: r}, r)
}

// LeaveRoom is fire-and-forget; a lobby that is already gone has nothing
// left to clean up.
func (l *Lobby) LeaveRoom(ctx context.Context, clientID string) {
	_ = l.send(ctx, Leave{ClientID: clientID})
}

func (l *Lobby) Snapshot(ctx context.Context) (View, error) {
	r := make(chan View, 1)
	if err := l.send(ctx, GetState{Reply: r}); err != nil {
		return View{}, err
	}
	return await(ctx, l, r)
}

func (l *Lobby) call(ctx context.Context, m Msg, r chan error) error {
	if err := l.send(ctx, m); err != nil {
		return err
	}
	err, waitErr := await(ctx, l, r)
	if waitErr != nil {
		return waitErr
	}
	return err
}

func (l *Lobby) send(ctx context.Context, m Msg) error {
	select {
	case <-l.done:
		return ErrRoomNotFound
	default:
	}
	select {
	case l.inbox <- m:
		return nil
	case <-l.done:
		return ErrRoomNotFound
	case <-ctx.Done():
		return ctx.Err()
	}
}

func await[T any](ctx context.Context, l *Lobby, r chan T) (T, error) {
	var zero T
	select {
	case v := <-r:
		return v, nil
	case <-l.done:
		// The lobby may have replied right before exiting.
		select {
		case v := <-r:
			return v, nil
		default:
			return zero, ErrRoomNotFound
		}
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
