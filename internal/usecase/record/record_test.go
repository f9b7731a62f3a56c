package record

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"game_arena/internal/domain/game"
)

func finished() *game.Session {
	return &game.Session{
		ID:       "s1",
		Mode:     game.ModeStandard,
		Status:   game.StatusEnded,
		Settings: game.Settings{BoardSize: 9, Komi: 6.5},
		Black:    game.Participant{UserID: "alice"},
		White:    game.Participant{UserID: "u2", Nickname: "bob"},
		MoveHistory: []game.Move{
			{X: 2, Y: 2, Color: game.Black, Kind: game.MoveStone},
			{X: -1, Y: -1, Color: game.White, Kind: game.MovePass},
		},
		Result:    &game.Result{Winner: game.White, Reason: game.ReasonResign},
		CreatedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestEncode_MovesAndResult(t *testing.T) {
	// Given
	s := finished()

	// When
	out, ok := Encode(s)

	// Then
	require.True(t, ok)
	assert.Equal(t, "(;FF[4]GM[1]SZ[9]PB[alice]PW[bob]DT[2025-03-01]RE[W+R]KM[6.5]RU[Chinese]C[mode standard];B[cc];W[])", out)
}

func TestEncode_AnnotatesSpecialMoves(t *testing.T) {
	s := finished()
	s.Mode = game.ModeMissile
	s.MoveHistory = []game.Move{{X: 3, Y: 0, Color: game.Black, Kind: game.MoveMissile, From: &game.Point{X: 0, Y: 0}}}

	out, ok := Encode(s)

	require.True(t, ok)
	assert.Contains(t, out, ";B[da]C[missile from aa])")
}

func TestEncode_SkipsPhysicsModes(t *testing.T) {
	s := finished()
	s.Mode = game.ModeCurling

	_, ok := Encode(s)

	assert.False(t, ok)
}

func TestResult(t *testing.T) {
	s := finished()
	assert.Equal(t, "W+R", Result(s))

	s.Result = &game.Result{Winner: game.Black, Reason: game.ReasonScore, Scores: map[game.Color]game.ScoreBreakdown{
		game.Black: {Total: 40},
		game.White: {Total: 36.5},
	}}
	assert.Equal(t, "B+3.5", Result(s))

	s.Result = &game.Result{Winner: game.White, Reason: game.ReasonTimeout}
	assert.Equal(t, "W+T", Result(s))

	s.Result = &game.Result{Reason: game.ReasonNoContest}
	assert.Equal(t, "Void", Result(s))

	s.Result = &game.Result{Reason: game.ReasonScore}
	assert.Equal(t, "0", Result(s))
}
