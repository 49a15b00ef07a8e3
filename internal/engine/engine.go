package engine

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidAction = errors.New("invalid action")
var ErrWrongPhase = fmt.Errorf("%w: not allowed in this phase", ErrInvalidAction)
var ErrGuessLimit = fmt.Errorf("%w: no guesses left this turn", ErrInvalidAction)
var ErrGameOver = fmt.Errorf("%w: game is over", ErrInvalidAction)
var ErrEmptyWord = fmt.Errorf("%w: word must not be empty", ErrInvalidAction)
var ErrInvalidAnswer = fmt.Errorf("%w: answer must be yes or no", ErrInvalidAction)
var ErrInvalidState = fmt.Errorf("%w: malformed game state", ErrInvalidAction)
var ErrUnsupportedCommand = errors.New("unsupported command")

const (
	MaxRounds         = 3
	MaxGuessesPerTurn = 2
)

type Phase string

const (
	PhasePickingWord     Phase = "PICKING_WORD"
	PhaseQuestioning     Phase = "QUESTIONING"
	PhaseRevealingResult Phase = "REVEALING_RESULT"
	PhaseGameOver        Phase = "GAME_OVER"
)

type Answer string

const (
	AnswerYes Answer = "yes"
	AnswerNo  Answer = "no"
)

type PlayerStats struct {
	Name                string `json:"name"`
	TotalWins           int    `json:"totalWins"`
	TotalQuestionsAsked int    `json:"totalQuestionsAsked"`
	TotalGuesses        int    `json:"totalGuesses"`
}

type QA struct {
	Question string `json:"question"`
	Answer   Answer `json:"answer"`
}

type TurnData struct {
	PickerIndex  int      `json:"pickerIndex"`
	GuesserIndex int      `json:"guesserIndex"`
	SelectedWord string   `json:"selectedWord"`
	Questions    []QA     `json:"questions"`
	Guesses      []string `json:"guesses"`
	IsSolved     bool     `json:"isSolved"`
}

type GameState struct {
	Players      []PlayerStats `json:"players"`
	CurrentRound int           `json:"currentRound"`
	MaxRounds    int           `json:"maxRounds"`
	Phase        Phase         `json:"phase"`
	CurrentTurn  TurnData      `json:"currentTurn"`
	RoomCode     string        `json:"roomCode,omitempty"`
}

type CommandType string

const (
	CmdSelectWord  CommandType = "SelectWord"
	CmdAskQuestion CommandType = "AskQuestion"
	CmdAnswer      CommandType = "Answer"
	CmdGuess       CommandType = "Guess"
	CmdNextTurn    CommandType = "NextTurn"
)

/*
	CmdSelectWord  PICKING_WORD -> QUESTIONING
	CmdAskQuestion QUESTIONING, no mutation; a question is only on the record once answered
	CmdAnswer      QUESTIONING -> QUESTIONING
	CmdGuess       QUESTIONING -> REVEALING_RESULT on a hit or on the last guess
	CmdNextTurn    REVEALING_RESULT -> PICKING_WORD (swap roles) or GAME_OVER
*/

type Command struct {
	Type     CommandType
	Word     string
	Question string
	Answer   Answer
	Guess    string
}

// Apply validates cmd against s and returns the next state. s is never
// mutated; on error the returned state is s itself.
func Apply(s GameState, cmd Command) (GameState, error) {
	if s.Phase == PhaseGameOver {
		return s, ErrGameOver
	}

	switch cmd.Type {
	case CmdSelectWord:
		if s.Phase != PhasePickingWord {
			return s, ErrWrongPhase
		}
		// Stored as typed; only the comparison in CmdGuess normalises.
		if strings.TrimSpace(cmd.Word) == "" {
			return s, ErrEmptyWord
		}
		next := s.Clone()
		next.CurrentTurn.SelectedWord = cmd.Word
		next.Phase = PhaseQuestioning
		return next, nil

	case CmdAskQuestion:
		if s.Phase != PhaseQuestioning {
			return s, ErrWrongPhase
		}
		return s, nil

	case CmdAnswer:
		if s.Phase != PhaseQuestioning {
			return s, ErrWrongPhase
		}
		if cmd.Answer != AnswerYes && cmd.Answer != AnswerNo {
			return s, ErrInvalidAnswer
		}
		next := s.Clone()
		next.CurrentTurn.Questions = append(next.CurrentTurn.Questions, QA{Question: cmd.Question, Answer: cmd.Answer})
		next.Players[next.CurrentTurn.GuesserIndex].TotalQuestionsAsked++
		return next, nil

	case CmdGuess:
		if s.Phase != PhaseQuestioning {
			if s.Phase == PhaseRevealingResult && len(s.CurrentTurn.Guesses) >= MaxGuessesPerTurn {
				return s, ErrGuessLimit
			}
			return s, ErrWrongPhase
		}
		if len(s.CurrentTurn.Guesses) >= MaxGuessesPerTurn {
			return s, ErrGuessLimit
		}

		next := s.Clone()
		turn := &next.CurrentTurn
		guesser := &next.Players[turn.GuesserIndex]

		turn.Guesses = append(turn.Guesses, cmd.Guess)
		guesser.TotalGuesses++

		if IsCorrectGuess(cmd.Guess, turn.SelectedWord) {
			guesser.TotalWins++
			turn.IsSolved = true
			next.Phase = PhaseRevealingResult
		} else if len(turn.Guesses) >= MaxGuessesPerTurn {
			turn.IsSolved = false
			next.Phase = PhaseRevealingResult
		}
		return next, nil

	case CmdNextTurn:
		if s.Phase != PhaseRevealingResult {
			return s, ErrWrongPhase
		}
		return advance(s), nil

	default:
		return s, ErrUnsupportedCommand
	}
}

// IsCorrectGuess compares case-insensitively, ignoring surrounding whitespace.
func IsCorrectGuess(guess, word string) bool {
	w := strings.TrimSpace(word)
	if w == "" {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(guess), w)
}
