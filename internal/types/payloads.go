package types

import "github.com/DoyleJ11/word-guess-backend/internal/engine"

type RoomPlayer struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	IsHost bool   `json:"isHost"`
}

// Room is the public view of a room. GameState is always redacted.
type Room struct {
	Code          string            `json:"code"`
	Players       []RoomPlayer      `json:"players"`
	GameState     *engine.GameState `json:"gameState"`
	IsGameStarted bool              `json:"isGameStarted"`
}

type RoomCreated struct {
	RoomCode string `json:"roomCode"`
	Room     Room   `json:"room"`
}

type PlayerJoined struct {
	Room Room `json:"room"`
}

type GameStarted struct {
	GameState engine.GameState `json:"gameState"`
}

type WordConfirmed struct {
	Word string `json:"word"`
}

type WordSelectedNotification struct{}

type QuestionAsked struct {
	Question string `json:"question"`
}

type AnswerProvided struct {
	Question  string           `json:"question"`
	Answer    engine.Answer    `json:"answer"`
	GameState engine.GameState `json:"gameState"`
}

type GuessMade struct {
	Guess     string           `json:"guess"`
	GameState engine.GameState `json:"gameState"`
}

type TurnChanged struct {
	GameState engine.GameState `json:"gameState"`
}

type PlayerDisconnected struct {
	PlayerName string `json:"playerName"`
	Room       Room   `json:"room"`
}

type Error struct {
	Message string `json:"message"`
}
