package board

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"game_arena/internal/domain/game"
)

// parse builds a board from rows of '.', 'X' (black) and 'O' (white).
func parse(rows ...string) game.Board {
	b := game.NewBoard(len(rows))
	for y, row := range rows {
		for x, ch := range strings.ReplaceAll(row, " ", "") {
			switch ch {
			case 'X':
				b[y][x] = game.Black
			case 'O':
				b[y][x] = game.White
			}
		}
	}
	return b
}

func mv(x, y int, c game.Color) game.Move {
	return game.Move{X: x, Y: y, Color: c}
}

func TestAttemptMove_RejectsOccupiedAndOutOfBounds(t *testing.T) {
	b := parse(
		"X....",
		".....",
		".....",
		".....",
		".....",
	)

	assert.Equal(t, ReasonOccupied, AttemptMove(b, mv(0, 0, game.White), nil, 0, Options{}).Reason)
	assert.Equal(t, ReasonOutOfBounds, AttemptMove(b, mv(5, 0, game.White), nil, 0, Options{}).Reason)
	assert.Equal(t, ReasonOutOfBounds, AttemptMove(b, mv(-1, -1, game.White), nil, 0, Options{}).Reason)
}

func TestAttemptMove_CapturesAndLeavesInputUntouched(t *testing.T) {
	b := parse(
		".X...",
		"XO...",
		".X...",
		".....",
		".....",
	)

	res := AttemptMove(b, mv(2, 1, game.Black), nil, 4, Options{})

	require.True(t, res.Valid)
	assert.Equal(t, []game.Point{{X: 1, Y: 1}}, res.Captured)
	assert.Equal(t, game.Empty, res.Board.At(game.Point{X: 1, Y: 1}))
	assert.Equal(t, game.White, b.At(game.Point{X: 1, Y: 1}))
	assert.Nil(t, res.Ko)
}

func TestAttemptMove_Suicide(t *testing.T) {
	b := parse(
		".X...",
		"X....",
		".....",
		".....",
		".....",
	)

	res := AttemptMove(b, mv(0, 0, game.White), nil, 0, Options{})
	assert.False(t, res.Valid)
	assert.Equal(t, ReasonSuicide, res.Reason)

	probe := AttemptMove(b, mv(0, 0, game.White), nil, 0, Options{IgnoreSuicide: true})
	assert.True(t, probe.Valid)
}

func TestAttemptMove_KoForbiddenForExactlyOneTurn(t *testing.T) {
	// Given: a ko shape where white captures at (2,1)
	b := parse(
		".OX..",
		"OX.X.",
		".OX..",
		".....",
		".....",
	)

	take := AttemptMove(b, mv(2, 1, game.White), nil, 10, Options{})
	require.True(t, take.Valid)
	require.NotNil(t, take.Ko)
	assert.Equal(t, game.Point{X: 1, Y: 1}, take.Ko.Point)
	assert.Equal(t, 11, take.Ko.Turn)

	// When: black retakes immediately
	retake := AttemptMove(take.Board, mv(1, 1, game.Black), take.Ko, 11, Options{})

	// Then: rejected as ko
	assert.False(t, retake.Valid)
	assert.Equal(t, ReasonKo, retake.Reason)

	// And: the same point is legal one turn later
	later := AttemptMove(take.Board, mv(1, 1, game.Black), take.Ko, 12, Options{})
	assert.True(t, later.Valid)
}

func TestGroup_FloodFill(t *testing.T) {
	b := parse(
		"XX...",
		"X.O..",
		".....",
		".....",
		".....",
	)

	stones, libs := Group(b, game.Point{X: 0, Y: 0})
	assert.Len(t, stones, 3)
	assert.ElementsMatch(t, []game.Point{{X: 2, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 2}}, libs)
}

func TestLinePredicates(t *testing.T) {
	b := parse(
		"XXXXX.X",
		".......",
		".......",
		".......",
		".......",
		".......",
		".......",
	)
	assert.True(t, IsFiveInRow(b, game.Point{X: 2, Y: 0}, 5, false))

	b.Set(game.Point{X: 5, Y: 0}, game.Black)
	assert.True(t, IsOverline(b, game.Point{X: 5, Y: 0}, 5))
	assert.False(t, IsFiveInRow(b, game.Point{X: 5, Y: 0}, 5, false))
	assert.True(t, IsFiveInRow(b, game.Point{X: 5, Y: 0}, 5, true))
}

func TestIsDoubleThree(t *testing.T) {
	b := parse(
		".......",
		".......",
		"..XX...",
		".......",
		"....X..",
		"....X..",
		".......",
	)
	// (4,2) completes _XXX_ horizontally and _XXX_ vertically
	assert.True(t, IsDoubleThree(b, game.Point{X: 4, Y: 2}, game.Black))
	assert.False(t, IsDoubleThree(b, game.Point{X: 0, Y: 6}, game.Black))
}

func TestPairCaptures(t *testing.T) {
	b := parse(
		"XOO....",
		".......",
		".......",
		".......",
		".......",
		".......",
		".......",
	)
	b.Set(game.Point{X: 3, Y: 0}, game.Black)

	assert.ElementsMatch(t, []game.Point{{X: 1, Y: 0}, {X: 2, Y: 0}}, PairCaptures(b, game.Point{X: 3, Y: 0}))
}

func TestAreaScore(t *testing.T) {
	b := parse(
		".X.O.",
		".X.O.",
		".X.O.",
		".X.O.",
		".X.O.",
	)
	score := AreaScore(b)

	assert.Equal(t, AreaCount{Stones: 5, Territory: 5}, score[game.Black])
	assert.Equal(t, AreaCount{Stones: 5, Territory: 5}, score[game.White])
}

func TestCoordinates(t *testing.T) {
	assert.Equal(t, "A19", ToGTP(game.Point{X: 0, Y: 0}, 19))
	assert.Equal(t, "J1", ToGTP(game.Point{X: 8, Y: 18}, 19))
	assert.Equal(t, "pass", ToGTP(game.PassPoint, 19))

	p, err := FromGTP("Q16", 19)
	require.NoError(t, err)
	assert.Equal(t, game.Point{X: 15, Y: 3}, p)

	gtp, err := SGFToGTP("pd", 19)
	require.NoError(t, err)
	assert.Equal(t, "Q16", gtp)

	_, err = FromGTP("Z99", 9)
	assert.Error(t, err)
}

func TestMissilePath(t *testing.T) {
	b := parse(
		".....",
		"X...O",
		".....",
		".....",
		".....",
	)

	to, ok := MissilePath(b, game.Point{X: 0, Y: 1}, game.DirRight)
	assert.True(t, ok)
	assert.Equal(t, game.Point{X: 3, Y: 1}, to)

	_, ok = MissilePath(b, game.Point{X: 4, Y: 1}, game.DirRight)
	assert.False(t, ok)
}
