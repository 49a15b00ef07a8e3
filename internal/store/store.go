package store

import (
	"context"
	"fmt"
	"time"

	"github.com/DoyleJ11/word-guess-backend/internal/engine"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// GameRecord is one finished game. Rooms themselves are never persisted.
type GameRecord struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	RoomCode   string         `gorm:"size:6;index;not null" json:"roomCode"`
	Rounds     int            `gorm:"not null" json:"rounds"`
	FinishedAt time.Time      `gorm:"index;not null" json:"finishedAt"`
	Players    []PlayerRecord `gorm:"constraint:OnDelete:CASCADE" json:"players"`
}

type PlayerRecord struct {
	ID                  uint   `gorm:"primaryKey" json:"-"`
	GameRecordID        uint   `gorm:"index;not null" json:"-"`
	Seat                int    `gorm:"not null" json:"seat"`
	Name                string `gorm:"not null" json:"name"`
	TotalWins           int    `json:"totalWins"`
	TotalQuestionsAsked int    `json:"totalQuestionsAsked"`
	TotalGuesses        int    `json:"totalGuesses"`
}

type Store struct {
	db  *gorm.DB
	log *zap.Logger
	now func() time.Time
}

func Open(dsn string, log *zap.Logger) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return New(db, log)
}

// New wraps an existing connection and migrates the archive tables.
func New(db *gorm.DB, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := db.AutoMigrate(&GameRecord{}, &PlayerRecord{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db, log: log, now: time.Now}, nil
}

func (s *Store) RecordGame(ctx context.Context, code string, final engine.GameState) error {
	rec := GameRecord{
		RoomCode:   code,
		Rounds:     final.CurrentRound,
		FinishedAt: s.now().UTC(),
	}
	for i, p := range final.Players {
		rec.Players = append(rec.Players, PlayerRecord{
			Seat:                i,
			Name:                p.Name,
			TotalWins:           p.TotalWins,
			TotalQuestionsAsked: p.TotalQuestionsAsked,
			TotalGuesses:        p.TotalGuesses,
		})
	}

	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("record game %s: %w", code, err)
	}
	s.log.Info("game archived", zap.String("room", code), zap.Uint("id", rec.ID))
	return nil
}

func (s *Store) Recent(ctx context.Context, limit int) ([]GameRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var recs []GameRecord
	err := s.db.WithContext(ctx).
		Preload("Players", func(db *gorm.DB) *gorm.DB { return db.Order("seat") }).
		Order("finished_at desc").
		Limit(limit).
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("recent games: %w", err)
	}
	return recs, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
