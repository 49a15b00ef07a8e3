package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/DoyleJ11/word-guess-backend/internal/engine"
	"github.com/DoyleJ11/word-guess-backend/internal/hub"
	"github.com/DoyleJ11/word-guess-backend/internal/lobby"
	"github.com/DoyleJ11/word-guess-backend/internal/store"
	"github.com/DoyleJ11/word-guess-backend/internal/types"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Archive is the read side of the finished-game store.
type Archive interface {
	Recent(ctx context.Context, limit int) ([]store.GameRecord, error)
}

type roomSummary struct {
	Code          string          `json:"code"`
	Players       []playerSummary `json:"players"`
	IsGameStarted bool            `json:"isGameStarted"`
	Phase         engine.Phase    `json:"phase,omitempty"`
	CurrentRound  int             `json:"currentRound,omitempty"`
}

type playerSummary struct {
	Name   string `json:"name"`
	IsHost bool   `json:"isHost"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, types.Error{Message: msg})
}

func RoomSummary(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := types.NormalizeCode(chi.URLParam(r, "code"))
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		lb, err := h.Get(ctx, code)
		if err == nil {
			var view lobby.View
			view, err = lb.Snapshot(ctx)
			if err == nil {
				writeJSON(w, http.StatusOK, summarize(view.Room))
				return
			}
		}
		if errors.Is(err, lobby.ErrRoomNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusServiceUnavailable, "room unavailable")
	}
}

func summarize(room types.Room) roomSummary {
	s := roomSummary{Code: room.Code, IsGameStarted: room.IsGameStarted, Players: []playerSummary{}}
	for _, p := range room.Players {
		s.Players = append(s.Players, playerSummary{Name: p.Name, IsHost: p.IsHost})
	}
	if room.GameState != nil {
		s.Phase = room.GameState.Phase
		s.CurrentRound = room.GameState.CurrentRound
	}
	return s
}

func RecentGames(a Archive, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 20
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				writeError(w, http.StatusBadRequest, "limit must be a positive integer")
				return
			}
			limit = n
		}

		recs, err := a.Recent(r.Context(), limit)
		if err != nil {
			log.Error("recent games", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to load games")
			return
		}
		writeJSON(w, http.StatusOK, recs)
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
