package store

import (
	"context"

	"github.com/DoyleJ11/word-guess-backend/internal/engine"
)

// Nop is used when no DATABASE_URL is configured.
type Nop struct{}

func (Nop) RecordGame(context.Context, string, engine.GameState) error { return nil }

func (Nop) Recent(context.Context, int) ([]GameRecord, error) { return []GameRecord{}, nil }

func (Nop) Close() error { return nil }
