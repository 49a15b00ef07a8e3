package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestState() GameState {
	return NewGameState([2]string{"Alice", "Bob"})
}

func mustApply(t *testing.T, s GameState, cmd Command) GameState {
	t.Helper()
	next, err := Apply(s, cmd)
	require.NoError(t, err, "apply %s", cmd.Type)
	return next
}

// questioning returns a state with word already picked.
func questioning(t *testing.T, word string) GameState {
	t.Helper()
	return mustApply(t, newTestState(), Command{Type: CmdSelectWord, Word: word})
}

func TestNewGameState_Initial(t *testing.T) {
	s := newTestState()
	assert.Equal(t, PhasePickingWord, s.Phase)
	assert.Equal(t, 1, s.CurrentRound)
	assert.Equal(t, MaxRounds, s.MaxRounds)
	assert.Equal(t, 0, s.CurrentTurn.PickerIndex)
	assert.Equal(t, 1, s.CurrentTurn.GuesserIndex)
	assert.Empty(t, s.CurrentTurn.SelectedWord)
	assert.Len(t, s.Players, 2)
}

func TestSelectWord_MovesToQuestioning(t *testing.T) {
	s := questioning(t, " Elephant")
	assert.Equal(t, PhaseQuestioning, s.Phase)
	assert.Equal(t, " Elephant", s.CurrentTurn.SelectedWord, "word is stored untrimmed")
}

func TestSelectWord_Rejections(t *testing.T) {
	cases := []struct {
		name  string
		setup GameState
		word  string
		want  error
	}{
		{name: "blank word", setup: newTestState(), word: "   ", want: ErrEmptyWord},
		{name: "already questioning", setup: questioning(t, "Cat"), word: "Dog", want: ErrWrongPhase},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Apply(tc.setup, Command{Type: CmdSelectWord, Word: tc.word})
			require.ErrorIs(t, err, tc.want)
			assert.ErrorIs(t, err, ErrInvalidAction)
			assert.Equal(t, tc.setup, got)
		})
	}
}

func TestAskQuestion_DoesNotRecord(t *testing.T) {
	s := questioning(t, "Guitar")
	next := mustApply(t, s, Command{Type: CmdAskQuestion, Question: "Is it an instrument?"})
	assert.Empty(t, next.CurrentTurn.Questions)
	assert.Equal(t, 0, next.Players[1].TotalQuestionsAsked)

	_, err := Apply(newTestState(), Command{Type: CmdAskQuestion, Question: "early?"})
	assert.ErrorIs(t, err, ErrWrongPhase)
}

func TestAnswer_AppendsAndCountsForGuesser(t *testing.T) {
	s := questioning(t, "Guitar")
	s = mustApply(t, s, Command{Type: CmdAnswer, Question: "Is it an instrument?", Answer: AnswerYes})
	s = mustApply(t, s, Command{Type: CmdAnswer, Question: "Is it loud?", Answer: AnswerNo})

	require.Len(t, s.CurrentTurn.Questions, 2)
	assert.Equal(t, QA{Question: "Is it an instrument?", Answer: AnswerYes}, s.CurrentTurn.Questions[0])
	assert.Equal(t, 2, s.Players[1].TotalQuestionsAsked)
	assert.Equal(t, 0, s.Players[0].TotalQuestionsAsked)
	assert.Equal(t, PhaseQuestioning, s.Phase)
}

func TestAnswer_RejectsUnknownAnswer(t *testing.T) {
	s := questioning(t, "Guitar")
	_, err := Apply(s, Command{Type: CmdAnswer, Question: "?", Answer: "maybe"})
	assert.ErrorIs(t, err, ErrInvalidAnswer)
}

func TestGuess_CaseAndWhitespaceInsensitive(t *testing.T) {
	s := questioning(t, "Elephant")
	s = mustApply(t, s, Command{Type: CmdGuess, Guess: "  elephant "})

	assert.True(t, s.CurrentTurn.IsSolved)
	assert.Equal(t, PhaseRevealingResult, s.Phase)
	assert.Equal(t, []string{"  elephant "}, s.CurrentTurn.Guesses, "guess is stored raw")
	assert.Equal(t, 1, s.Players[1].TotalWins)
	assert.Equal(t, 1, s.Players[1].TotalGuesses)
}

func TestGuess_FirstMissKeepsQuestioning(t *testing.T) {
	s := questioning(t, "Elephant")
	s = mustApply(t, s, Command{Type: CmdGuess, Guess: "Mouse"})

	assert.Equal(t, PhaseQuestioning, s.Phase)
	assert.False(t, s.CurrentTurn.IsSolved)
	assert.Equal(t, 1, s.Players[1].TotalGuesses)
	assert.Equal(t, 0, s.Players[1].TotalWins)
}

func TestGuess_SecondMissEndsTurnAndThirdIsRejected(t *testing.T) {
	s := questioning(t, "Elephant")
	s = mustApply(t, s, Command{Type: CmdGuess, Guess: "Mouse"})
	s = mustApply(t, s, Command{Type: CmdGuess, Guess: "Horse"})

	assert.Equal(t, PhaseRevealingResult, s.Phase)
	assert.False(t, s.CurrentTurn.IsSolved)

	after, err := Apply(s, Command{Type: CmdGuess, Guess: "Elephant"})
	require.ErrorIs(t, err, ErrGuessLimit)
	assert.Equal(t, PhaseRevealingResult, after.Phase)
	assert.Len(t, after.CurrentTurn.Guesses, MaxGuessesPerTurn)
	assert.Equal(t, 2, after.Players[1].TotalGuesses)
}

func TestGuess_BeforeWordIsRejected(t *testing.T) {
	_, err := Apply(newTestState(), Command{Type: CmdGuess, Guess: ""})
	assert.ErrorIs(t, err, ErrWrongPhase)
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	s := questioning(t, "Elephant")
	before := s.Clone()

	_ = mustApply(t, s, Command{Type: CmdAnswer, Question: "Big?", Answer: AnswerYes})
	_ = mustApply(t, s, Command{Type: CmdGuess, Guess: "Elephant"})

	assert.Equal(t, before, s)
}

func finishTurn(t *testing.T, s GameState) GameState {
	t.Helper()
	s = mustApply(t, s, Command{Type: CmdSelectWord, Word: "word"})
	s = mustApply(t, s, Command{Type: CmdGuess, Guess: "word"})
	return mustApply(t, s, Command{Type: CmdNextTurn})
}

func TestNextTurn_Rotation(t *testing.T) {
	s := newTestState()

	s = finishTurn(t, s)
	assert.Equal(t, 1, s.CurrentTurn.PickerIndex)
	assert.Equal(t, 0, s.CurrentTurn.GuesserIndex)
	assert.Equal(t, 1, s.CurrentRound, "round unchanged after first turn")
	assert.Equal(t, PhasePickingWord, s.Phase)
	assert.Empty(t, s.CurrentTurn.SelectedWord)
	assert.Empty(t, s.CurrentTurn.Questions)
	assert.Empty(t, s.CurrentTurn.Guesses)
	assert.False(t, s.CurrentTurn.IsSolved)

	s = finishTurn(t, s)
	assert.Equal(t, 0, s.CurrentTurn.PickerIndex)
	assert.Equal(t, 1, s.CurrentTurn.GuesserIndex)
	assert.Equal(t, 2, s.CurrentRound)
}

func TestNextTurn_OnlyFromRevealing(t *testing.T) {
	_, err := Apply(newTestState(), Command{Type: CmdNextTurn})
	assert.ErrorIs(t, err, ErrWrongPhase)

	_, err = Apply(questioning(t, "x"), Command{Type: CmdNextTurn})
	assert.ErrorIs(t, err, ErrWrongPhase)
}

func TestGameOver_AfterLastRoundAndStaysThere(t *testing.T) {
	s := newTestState()
	for i := 0; i < 2*MaxRounds-1; i++ {
		s = finishTurn(t, s)
		require.Equal(t, PhasePickingWord, s.Phase, "turn %d", i)
	}
	require.Equal(t, MaxRounds, s.CurrentRound)
	require.Equal(t, 1, s.CurrentTurn.PickerIndex)

	s = mustApply(t, s, Command{Type: CmdSelectWord, Word: "Last"})
	s = mustApply(t, s, Command{Type: CmdGuess, Guess: "last"})
	s = mustApply(t, s, Command{Type: CmdNextTurn})

	assert.Equal(t, PhaseGameOver, s.Phase)
	assert.Equal(t, MaxRounds, s.CurrentRound)
	assert.Equal(t, "Last", s.CurrentTurn.SelectedWord, "last turn kept for results")

	// Every player won as guesser once per round.
	assert.Equal(t, MaxRounds, s.Players[0].TotalWins)
	assert.Equal(t, MaxRounds, s.Players[1].TotalWins)

	for _, cmd := range []Command{
		{Type: CmdNextTurn},
		{Type: CmdSelectWord, Word: "again"},
		{Type: CmdGuess, Guess: "last"},
		{Type: CmdAnswer, Question: "?", Answer: AnswerYes},
	} {
		after, err := Apply(s, cmd)
		assert.ErrorIs(t, err, ErrGameOver, "cmd %s", cmd.Type)
		assert.Equal(t, PhaseGameOver, after.Phase)
	}
}

func TestApply_UnsupportedCommand(t *testing.T) {
	_, err := Apply(newTestState(), Command{Type: "Hover"})
	assert.ErrorIs(t, err, ErrUnsupportedCommand)
}

func TestRedacted_HidesWordUntilReveal(t *testing.T) {
	s := questioning(t, "Elephant")
	assert.Empty(t, s.Redacted().CurrentTurn.SelectedWord)
	assert.Equal(t, "Elephant", s.CurrentTurn.SelectedWord, "original untouched")

	s = mustApply(t, s, Command{Type: CmdGuess, Guess: "elephant"})
	assert.Equal(t, "Elephant", s.Redacted().CurrentTurn.SelectedWord)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*GameState)
		wantErr bool
	}{
		{name: "canonical", mutate: func(*GameState) {}},
		{name: "zero max rounds defaulted", mutate: func(s *GameState) { s.MaxRounds = 0 }},
		{name: "one player", mutate: func(s *GameState) { s.Players = s.Players[:1] }, wantErr: true},
		{name: "five rounds", mutate: func(s *GameState) { s.MaxRounds = 5 }, wantErr: true},
		{name: "late round", mutate: func(s *GameState) { s.CurrentRound = 2 }, wantErr: true},
		{name: "wrong phase", mutate: func(s *GameState) { s.Phase = PhaseQuestioning }, wantErr: true},
		{name: "same seats", mutate: func(s *GameState) { s.CurrentTurn.GuesserIndex = 0 }, wantErr: true},
		{name: "word preset", mutate: func(s *GameState) { s.CurrentTurn.SelectedWord = "cheat" }, wantErr: true},
		{name: "wins preset", mutate: func(s *GameState) { s.Players[0].TotalWins = 99 }, wantErr: true},
		{name: "questions preset", mutate: func(s *GameState) { s.Players[1].TotalQuestionsAsked = 4 }, wantErr: true},
		{name: "guesses preset", mutate: func(s *GameState) { s.CurrentTurn.Guesses = []string{"a"} }, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestState()
			tc.mutate(&s)
			got, err := Validate(s)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidState)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, MaxRounds, got.MaxRounds)
		})
	}
}
