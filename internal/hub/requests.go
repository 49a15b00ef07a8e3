package hub

import (
	"context"

	"github.com/DoyleJ11/word-guess-backend/internal/lobby"
)

var errHubClosed = lobby.ErrRoomNotFound

func (h *Hub) Create(ctx context.Context, host lobby.Client) (*lobby.Lobby, error) {
	reply := make(chan CreateResult, 1)
	if err := h.send(ctx, CreateRoom{Host: host, Reply: reply}); err != nil {
		return nil, err
	}
	select {
	case res := <-reply:
		return res.Lobby, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-h.done:
		return nil, errHubClosed
	}
}

// Get resolves a code to its live room, or lobby.ErrRoomNotFound.
func (h *Hub) Get(ctx context.Context, code string) (*lobby.Lobby, error) {
	reply := make(chan *lobby.Lobby, 1)
	if err := h.send(ctx, GetRoom{Code: code, Reply: reply}); err != nil {
		return nil, err
	}
	select {
	case lb := <-reply:
		if lb == nil {
			return nil, lobby.ErrRoomNotFound
		}
		return lb, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-h.done:
		return nil, errHubClosed
	}
}

func (h *Hub) Codes(ctx context.Context) ([]string, error) {
	reply := make(chan []string, 1)
	if err := h.send(ctx, ListRooms{Reply: reply}); err != nil {
		return nil, err
	}
	select {
	case codes := <-reply:
		return codes, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-h.done:
		return nil, errHubClosed
	}
}

// Shutdown stops the hub and every room, then waits for the hub loop.
func (h *Hub) Shutdown(ctx context.Context) error {
	_ = h.send(ctx, ShutdownHub{})
	select {
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Hub) send(ctx context.Context, m HubMsg) error {
	select {
	case h.inbox <- m:
		return nil
	case <-h.done:
		return errHubClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}
