package engine

// Two seats only: the picker and guesser swap every turn, and a round ends
// once seat 1 has picked.
func isEndOfRound(t TurnData) bool {
	return t.PickerIndex == 1
}

func advance(s GameState) GameState {
	next := s.Clone()

	round := s.CurrentRound
	if isEndOfRound(s.CurrentTurn) {
		round++
	}

	if round > s.MaxRounds {
		// Keep the last turn around for the results screen.
		next.Phase = PhaseGameOver
		return next
	}

	next.CurrentRound = round
	next.Phase = PhasePickingWord
	next.CurrentTurn = newTurn(s.CurrentTurn.GuesserIndex, s.CurrentTurn.PickerIndex)
	return next
}

func newTurn(picker, guesser int) TurnData {
	return TurnData{
		PickerIndex:  picker,
		GuesserIndex: guesser,
		Questions:    []QA{},
		Guesses:      []string{},
	}
}
