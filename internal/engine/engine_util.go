package engine

import "fmt"

func NewGameState(names [2]string) GameState {
	return GameState{
		Players: []PlayerStats{
			{Name: names[0]},
			{Name: names[1]},
		},
		CurrentRound: 1,
		MaxRounds:    MaxRounds,
		Phase:        PhasePickingWord,
		CurrentTurn:  newTurn(0, 1),
	}
}

// Clone deep-copies the slices so a derived state never aliases s.
func (s GameState) Clone() GameState {
	c := s
	c.Players = append([]PlayerStats(nil), s.Players...)
	c.CurrentTurn.Questions = append([]QA{}, s.CurrentTurn.Questions...)
	c.CurrentTurn.Guesses = append([]string{}, s.CurrentTurn.Guesses...)
	return c
}

// Redacted is the snapshot that goes on the wire. The word stays hidden
// until the turn's result is being revealed.
func (s GameState) Redacted() GameState {
	c := s.Clone()
	if s.Phase == PhasePickingWord || s.Phase == PhaseQuestioning {
		c.CurrentTurn.SelectedWord = ""
	}
	return c
}

// Validate checks a client-supplied initial state before it becomes
// authoritative. A zero MaxRounds is filled in.
func Validate(s GameState) (GameState, error) {
	if len(s.Players) != 2 {
		return s, fmt.Errorf("%w: want 2 players, got %d", ErrInvalidState, len(s.Players))
	}
	for i, p := range s.Players {
		if p.TotalWins != 0 || p.TotalGuesses != 0 || p.TotalQuestionsAsked != 0 {
			return s, fmt.Errorf("%w: player %d must start with zero stats", ErrInvalidState, i)
		}
	}
	if s.MaxRounds == 0 {
		s.MaxRounds = MaxRounds
	}
	if s.MaxRounds != MaxRounds {
		return s, fmt.Errorf("%w: maxRounds must be %d", ErrInvalidState, MaxRounds)
	}
	if s.CurrentRound != 1 {
		return s, fmt.Errorf("%w: game must start in round 1", ErrInvalidState)
	}
	if s.Phase != PhasePickingWord {
		return s, fmt.Errorf("%w: game must start in %s", ErrInvalidState, PhasePickingWord)
	}

	t := s.CurrentTurn
	if t.PickerIndex != 0 || t.GuesserIndex != 1 {
		return s, fmt.Errorf("%w: seat 0 picks first", ErrInvalidState)
	}
	if t.SelectedWord != "" || len(t.Questions) != 0 || len(t.Guesses) != 0 || t.IsSolved {
		return s, fmt.Errorf("%w: first turn must be empty", ErrInvalidState)
	}

	return s.Clone(), nil
}
