package types

import (
	"encoding/json"
	"testing"

	"github.com/DoyleJ11/word-guess-backend/internal/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_TypedPayloads(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want Inbound
	}{
		{
			name: "create room trims name",
			raw:  `{"type":"create_room","payload":{"playerName":"  Alice "}}`,
			want: CreateRoom{PlayerName: "Alice"},
		},
		{
			name: "join room uppercases code",
			raw:  `{"type":"join_room","v":1,"payload":{"roomCode":" ab12cd","playerName":"Bob"}}`,
			want: JoinRoom{RoomCode: "AB12CD", PlayerName: "Bob"},
		},
		{
			name: "answers are lowercased",
			raw:  `{"type":"provide_answer","payload":{"roomCode":"AB12CD","question":"Big?","answer":"YES"}}`,
			want: ProvideAnswer{RoomCode: "AB12CD", Question: "Big?", Answer: engine.AnswerYes},
		},
		{
			name: "guess kept raw",
			raw:  `{"type":"make_guess","payload":{"roomCode":"AB12CD","guess":"  elephant "}}`,
			want: MakeGuess{RoomCode: "AB12CD", Guess: "  elephant "},
		},
		{
			name: "next turn",
			raw:  `{"type":"next_turn","payload":{"roomCode":"ab12cd"}}`,
			want: NextTurn{RoomCode: "AB12CD"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Decode([]byte(tc.raw))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDecode_StartGameWithState(t *testing.T) {
	raw := `{"type":"start_game","payload":{"roomCode":"ab12cd","initialGameState":{
		"players":[{"name":"Alice"},{"name":"Bob"}],
		"currentRound":1,"maxRounds":3,"phase":"PICKING_WORD",
		"currentTurn":{"pickerIndex":0,"guesserIndex":1,"selectedWord":"","questions":[],"guesses":[],"isSolved":false}}}}`

	got, err := Decode([]byte(raw))
	require.NoError(t, err)

	sg, ok := got.(StartGame)
	require.True(t, ok)
	assert.Equal(t, "AB12CD", sg.Code())
	require.NotNil(t, sg.InitialGameState)
	assert.Equal(t, engine.PhasePickingWord, sg.InitialGameState.Phase)
	assert.Equal(t, "Bob", sg.InitialGameState.Players[1].Name)
}

func TestDecode_Rejections(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want error
	}{
		{name: "not json", raw: `{nope`, want: ErrBadPayload},
		{name: "unknown type", raw: `{"type":"hover"}`, want: ErrUnknownEvent},
		{name: "future version", raw: `{"type":"next_turn","v":2,"payload":{"roomCode":"A"}}`, want: ErrUnsupportedVersion},
		{name: "missing name", raw: `{"type":"create_room","payload":{"playerName":"  "}}`, want: ErrMissingName},
		{name: "missing code on join", raw: `{"type":"join_room","payload":{"playerName":"Bob"}}`, want: ErrMissingRoomCode},
		{name: "missing name on join", raw: `{"type":"join_room","payload":{"roomCode":"AB12CD"}}`, want: ErrMissingName},
		{name: "missing code on guess", raw: `{"type":"make_guess","payload":{"guess":"x"}}`, want: ErrMissingRoomCode},
		{name: "wrong field type", raw: `{"type":"make_guess","payload":{"roomCode":7}}`, want: ErrBadPayload},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode([]byte(tc.raw))
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestServerMessage_Shape(t *testing.T) {
	b, err := json.Marshal(NewServerMessage(EvtWordSelectedNotice, WordSelectedNotification{}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"word_selected_notification","v":1,"payload":{}}`, string(b))

	b, err = json.Marshal(ErrorMessage(ErrMissingName))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"error","v":1,"payload":{"message":"player name is required"}}`, string(b))
}
