package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"game_arena/internal/domain/game"
	errs "game_arena/internal/errors"
)

func TestOmok_FiveInRowEnds(t *testing.T) {
	m := newTestMachine()
	s, err := m.Start(newSession(game.ModeOmok, game.Settings{}, true), t0)
	require.NoError(t, err)
	require.Equal(t, game.StatusPlaying, s.Status)
	require.Equal(t, 15, s.Board.Size())

	for i := 0; i < 4; i++ {
		s, err = m.Apply(s, act(s, game.ActionMove, "alice", at(3+i, 7)), t0)
		require.NoError(t, err)
		s, err = m.Apply(s, act(s, game.ActionMove, "bob", at(3+i, 0)), t0)
		require.NoError(t, err)
	}
	_, err = m.Apply(s, act(s, game.ActionPass, "alice", game.Payload{}), t0)
	assert.ErrorIs(t, err, errs.ErrIllegalMove)

	s, err = m.Apply(s, act(s, game.ActionMove, "alice", at(7, 7)), t0)
	require.NoError(t, err)
	assert.Equal(t, game.StatusEnded, s.Status)
	assert.Equal(t, game.ReasonLineFormed, s.Result.Reason)
	assert.Equal(t, game.Black, s.Result.Winner)
}

func TestOmok_ForbiddenMovesForBlack(t *testing.T) {
	m := newTestMachine()
	s, err := m.Start(newSession(game.ModeOmok, game.Settings{ForbidDoubleThree: true}, true), t0)
	require.NoError(t, err)
	// Given: two open twos crossing at (7,7)
	for _, p := range []game.Point{{X: 5, Y: 7}, {X: 6, Y: 7}, {X: 7, Y: 5}, {X: 7, Y: 6}} {
		s.Board.Set(p, game.Black)
	}

	_, err = m.Apply(s, act(s, game.ActionMove, "alice", at(7, 7)), t0)
	assert.ErrorIs(t, err, errs.ErrIllegalMove)

	// Given: a gap that would make six
	s.Board = game.NewBoard(15)
	for _, x := range []int{1, 2, 3, 5, 6} {
		s.Board.Set(game.Point{X: x, Y: 0}, game.Black)
	}
	_, err = m.Apply(s, act(s, game.ActionMove, "alice", at(4, 0)), t0)
	assert.ErrorIs(t, err, errs.ErrIllegalMove)
}

func TestOmok_RPSDecidesBlack(t *testing.T) {
	m := newTestMachine()
	s, err := m.Start(newSession(game.ModeOmok, game.Settings{}, false), t0)
	require.NoError(t, err)
	require.Equal(t, game.StatusRPS, s.Status)

	// When: a tie
	aliceRock := act(s, game.ActionRPS, "alice", game.Payload{Choice: "rock"})
	s, err = m.Apply(s, aliceRock, t0)
	require.NoError(t, err)
	_, err = m.Apply(s, act(s, game.ActionRPS, "alice", game.Payload{Choice: "paper"}), t0)
	assert.ErrorIs(t, err, errs.ErrAlreadySubmitted)
	s, err = m.Apply(s, act(s, game.ActionRPS, "bob", game.Payload{Choice: "rock"}), t0)
	require.NoError(t, err)

	// Then: the round restarts
	assert.Equal(t, game.StatusRPS, s.Status)
	assert.Equal(t, 1, s.Setup.Ties)
	assert.Empty(t, s.Setup.Choices)

	// When: alice's choice from the tied round arrives again
	_, err = m.Apply(s, aliceRock, t0)

	// Then: it does not count for the new round
	assert.ErrorIs(t, err, errs.ErrStaleAction)
	assert.Empty(t, s.Setup.Choices)

	// When: bob wins
	s, err = m.Apply(s, act(s, game.ActionRPS, "alice", game.Payload{Choice: "scissors"}), t0)
	require.NoError(t, err)
	s, err = m.Apply(s, act(s, game.ActionRPS, "bob", game.Payload{Choice: "rock"}), t0)
	require.NoError(t, err)

	// Then
	assert.Equal(t, game.StatusPlaying, s.Status)
	assert.Equal(t, "bob", s.Black.UserID)
	assert.Equal(t, game.Black, s.Current)
}

func TestTtamok_PairCaptureCounts(t *testing.T) {
	m := newTestMachine()
	s, err := m.Start(newSession(game.ModeTtamok, game.Settings{CaptureTarget: 2}, true), t0)
	require.NoError(t, err)
	s.Board.Set(game.Point{X: 1, Y: 0}, game.White)
	s.Board.Set(game.Point{X: 2, Y: 0}, game.White)
	s.Board.Set(game.Point{X: 3, Y: 0}, game.Black)

	s, err = m.Apply(s, act(s, game.ActionMove, "alice", at(0, 0)), t0)
	require.NoError(t, err)

	assert.Equal(t, game.Empty, s.Board.At(game.Point{X: 1, Y: 0}))
	assert.Equal(t, game.StatusEnded, s.Status)
	assert.Equal(t, game.ReasonCaptureLimit, s.Result.Reason)
}

func TestNigiri_ExpiryPicksDefaultAndStartsPlay(t *testing.T) {
	m := newTestMachine()
	s, err := m.Start(newSession(game.ModeStandard, game.Settings{BoardSize: 9}, false), t0)
	require.NoError(t, err)
	require.Equal(t, game.StatusNigiri, s.Status)

	now := t0.Add(31 * time.Second)
	s, changed := m.Tick(s, now, map[string]time.Time{"alice": now, "bob": now})

	require.True(t, changed)
	assert.Equal(t, game.StatusPlaying, s.Status)
	assert.NotEmpty(t, s.Setup.Guess)
}

func TestBase_PlacementThenBiddingDecidesColors(t *testing.T) {
	m := newTestMachine()
	s, err := m.Start(newSession(game.ModeBase, game.Settings{BoardSize: 9, BaseStones: 2}, false), t0)
	require.NoError(t, err)
	require.Equal(t, game.StatusBasePlacement, s.Status)

	// When: both place, sharing one point
	s, err = m.Apply(s, act(s, game.ActionPlaceBase, "alice", game.Payload{Points: []game.Point{{X: 1, Y: 1}, {X: 4, Y: 4}}}), t0)
	require.NoError(t, err)
	s, err = m.Apply(s, act(s, game.ActionPlaceBase, "bob", game.Payload{Points: []game.Point{{X: 7, Y: 7}, {X: 4, Y: 4}}}), t0)
	require.NoError(t, err)
	require.Equal(t, game.StatusKomiBidding, s.Status)

	s, err = m.Apply(s, act(s, game.ActionBid, "alice", game.Payload{Amount: 3}), t0)
	require.NoError(t, err)
	s, err = m.Apply(s, act(s, game.ActionBid, "bob", game.Payload{Amount: 5}), t0)
	require.NoError(t, err)

	// Then: the higher bidder plays black and pays the komi; the shared point is dropped
	assert.Equal(t, game.StatusPlaying, s.Status)
	assert.Equal(t, "bob", s.Black.UserID)
	assert.Equal(t, 5.5, s.Settings.Komi)
	assert.Equal(t, game.Black, s.Board.At(game.Point{X: 7, Y: 7}))
	assert.Equal(t, game.White, s.Board.At(game.Point{X: 1, Y: 1}))
	assert.Equal(t, game.Empty, s.Board.At(game.Point{X: 4, Y: 4}))
}

func TestHidden_StoneStaysUnseenUntilRevealed(t *testing.T) {
	m := newTestMachine()
	s, err := m.Start(newSession(game.ModeHidden, game.Settings{BoardSize: 9}, true), t0)
	require.NoError(t, err)

	s, err = m.Apply(s, act(s, game.ActionUseHidden, "alice", game.Payload{}), t0)
	require.NoError(t, err)
	require.Equal(t, game.StatusHiddenPlacing, s.Status)
	require.NotNil(t, s.ItemWindow)

	s, err = m.Apply(s, act(s, game.ActionMove, "alice", at(4, 4)), t0.Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, game.StatusPlaying, s.Status)
	assert.Equal(t, game.White, s.Current)
	assert.True(t, s.Hidden.IsHidden(game.Black, game.Point{X: 4, Y: 4}))
	assert.Equal(t, game.Empty, s.ViewFor("bob").Board.At(game.Point{X: 4, Y: 4}))
	assert.Equal(t, game.Black, s.ViewFor("alice").Board.At(game.Point{X: 4, Y: 4}))
	for _, viewer := range []string{"bob", "carol"} {
		last := s.ViewFor(viewer).MoveHistory[len(s.MoveHistory)-1]
		assert.Equal(t, game.MoveHidden, last.Kind)
		assert.Equal(t, game.PassPoint, last.Point(), viewer)
	}
	assert.Equal(t, game.Point{X: 4, Y: 4}, s.ViewFor("alice").MoveHistory[len(s.MoveHistory)-1].Point())

	// When: white plays onto it
	s, err = m.Apply(s, act(s, game.ActionMove, "bob", at(4, 4)), t0.Add(2*time.Second))

	// Then: the stone is revealed and white's turn is spent
	require.NoError(t, err)
	assert.False(t, s.Hidden.IsHidden(game.Black, game.Point{X: 4, Y: 4}))
	assert.Equal(t, game.Black, s.Current)
	assert.Equal(t, game.MoveReveal, s.MoveHistory[len(s.MoveHistory)-1].Kind)
}

func TestItemWindow_ExpiryReturnsToPlaying(t *testing.T) {
	m := newTestMachine()
	s, err := m.Start(newSession(game.ModeMissile, game.Settings{BoardSize: 9}, true), t0)
	require.NoError(t, err)

	s, err = m.Apply(s, act(s, game.ActionUseMissile, "alice", game.Payload{}), t0)
	require.NoError(t, err)
	require.Equal(t, game.StatusMissileSelecting, s.Status)
	assert.Equal(t, 1, s.Missile.ItemsLeft[game.Black])

	now := t0.Add(21 * time.Second)
	s, changed := m.Tick(s, now, map[string]time.Time{"alice": now})

	require.True(t, changed)
	assert.Equal(t, game.StatusPlaying, s.Status)
	assert.Nil(t, s.ItemWindow)
	assert.Equal(t, game.Black, s.Current)
}

func TestMissile_SlidesAndCaptures(t *testing.T) {
	m := newTestMachine()
	s, err := m.Start(newSession(game.ModeMissile, game.Settings{BoardSize: 9}, true), t0)
	require.NoError(t, err)
	// Given: a white stone in the corner with one liberty left after the flight
	s.Board.Set(game.Point{X: 0, Y: 0}, game.White)
	s.Board.Set(game.Point{X: 1, Y: 0}, game.Black)
	s.Board.Set(game.Point{X: 0, Y: 5}, game.Black)

	s, err = m.Apply(s, act(s, game.ActionUseMissile, "alice", game.Payload{}), t0)
	require.NoError(t, err)
	s, err = m.Apply(s, act(s, game.ActionMissile, "alice", game.Payload{Point: &game.Point{X: 0, Y: 5}, Direction: game.DirUp}), t0)
	require.NoError(t, err)

	assert.Equal(t, game.Black, s.Board.At(game.Point{X: 0, Y: 1}))
	assert.Equal(t, game.Empty, s.Board.At(game.Point{X: 0, Y: 5}))
	assert.Equal(t, game.Empty, s.Board.At(game.Point{X: 0, Y: 0}))
	assert.Equal(t, 1, s.Captures[game.Black])
	assert.Equal(t, game.White, s.Current)
}

func TestMissile_HittingUnseenStoneRevealsIt(t *testing.T) {
	m := newTestMachine()
	fire := func(t *testing.T, from game.Point) *game.Session {
		t.Helper()
		s, err := m.Start(newSession(game.ModeMissile, game.Settings{BoardSize: 9}, true), t0)
		require.NoError(t, err)
		// Given: an unseen white stone in column 0
		s.Hidden = &game.HiddenState{Stones: map[game.Color][]game.Point{game.White: {{X: 0, Y: 2}}}}
		s.Board.Set(game.Point{X: 0, Y: 2}, game.White)
		s.Board.Set(from, game.Black)

		s, err = m.Apply(s, act(s, game.ActionUseMissile, "alice", game.Payload{}), t0)
		require.NoError(t, err)
		s, err = m.Apply(s, act(s, game.ActionMissile, "alice", game.Payload{Point: &from, Direction: game.DirUp}), t0)
		require.NoError(t, err)
		return s
	}

	t.Run("after a flight", func(t *testing.T) {
		s := fire(t, game.Point{X: 0, Y: 6})

		assert.Equal(t, game.Black, s.Board.At(game.Point{X: 0, Y: 3}))
		assert.False(t, s.Hidden.IsHidden(game.White, game.Point{X: 0, Y: 2}))
		assert.Equal(t, game.White, s.ViewFor("alice").Board.At(game.Point{X: 0, Y: 2}))
	})

	t.Run("stone cannot move", func(t *testing.T) {
		s := fire(t, game.Point{X: 0, Y: 3})

		assert.Equal(t, game.Black, s.Board.At(game.Point{X: 0, Y: 3}))
		assert.False(t, s.Hidden.IsHidden(game.White, game.Point{X: 0, Y: 2}))
		assert.Equal(t, game.MoveReveal, s.MoveHistory[len(s.MoveHistory)-1].Kind)
		assert.Equal(t, game.White, s.Current)
	})
}

func TestDice_RollThenPlaceOnWhiteLiberties(t *testing.T) {
	m := newTestMachine()
	s, err := m.Start(newSession(game.ModeDice, game.Settings{DiceRounds: 1}, true), t0)
	require.NoError(t, err)
	require.Equal(t, game.StatusDiceRolling, s.Status)

	s, err = m.Apply(s, act(s, game.ActionDiceRoll, "alice", game.Payload{}), t0)
	require.NoError(t, err)
	require.Equal(t, game.StatusDicePlacing, s.Status)
	require.GreaterOrEqual(t, s.Dice.ToPlace, 1)

	_, err = m.Apply(s, act(s, game.ActionMove, "alice", at(0, 0)), t0)
	assert.ErrorIs(t, err, errs.ErrIllegalMove)

	left := s.Dice.ToPlace
	s, err = m.Apply(s, act(s, game.ActionMove, "alice", at(4, 3)), t0)
	require.NoError(t, err)
	if left > 1 {
		assert.Equal(t, left-1, s.Dice.ToPlace)
		s, err = m.Apply(s, act(s, game.ActionPass, "alice", game.Payload{}), t0)
		require.NoError(t, err)
	}
	assert.Equal(t, game.StatusDiceRolling, s.Status)
	assert.Equal(t, game.White, s.Current)

	s, err = m.Apply(s, act(s, game.ActionDiceRoll, "bob", game.Payload{}), t0)
	require.NoError(t, err)
	s, err = m.Apply(s, act(s, game.ActionPass, "bob", game.Payload{}), t0)
	require.NoError(t, err)
	assert.Equal(t, game.StatusEnded, s.Status)
	assert.Equal(t, game.ReasonScore, s.Result.Reason)
}

func TestThief_RolesAndRounds(t *testing.T) {
	m := newTestMachine()
	s, err := m.Start(newSession(game.ModeThief, game.Settings{ThiefTurns: 1}, true), t0)
	require.NoError(t, err)
	require.Equal(t, game.StatusThiefRolling, s.Status)
	assert.Equal(t, "alice", s.Thief.ThiefID)
	assert.Equal(t, game.Black, s.Board.At(game.Point{X: 4, Y: 4}))

	_, err = m.Apply(s, act(s, game.ActionThiefRoll, "bob", game.Payload{}), t0)
	assert.ErrorIs(t, err, errs.ErrNotYourTurn)

	s, err = m.Apply(s, act(s, game.ActionThiefRoll, "alice", game.Payload{}), t0)
	require.NoError(t, err)
	assert.Len(t, s.Thief.Rolled, 1)
	s, err = m.Apply(s, act(s, game.ActionPass, "alice", game.Payload{}), t0)
	require.NoError(t, err)
	require.Equal(t, game.RolePolice, s.Thief.Acting)

	s, err = m.Apply(s, act(s, game.ActionThiefRoll, "bob", game.Payload{}), t0)
	require.NoError(t, err)
	assert.Len(t, s.Thief.Rolled, 2)
	s, err = m.Apply(s, act(s, game.ActionPass, "bob", game.Payload{}), t0)
	require.NoError(t, err)

	// Then: round two with swapped roles; alice banked her surviving stone
	assert.Equal(t, 2, s.Thief.Round)
	assert.Equal(t, "bob", s.Thief.ThiefID)
	assert.Equal(t, 1, s.Thief.Totals["alice"])
	assert.Equal(t, game.White, s.Current)
}

func TestAlkkagi_PlacementValidatesHalves(t *testing.T) {
	m := newTestMachine()
	s, err := m.Start(newSession(game.ModeAlkkagi, game.Settings{BoardSize: 9, AlkkagiStones: 1, AlkkagiRounds: 1}, false), t0)
	require.NoError(t, err)
	require.Equal(t, game.StatusAlkkagiPlacement, s.Status)

	_, err = m.Apply(s, act(s, game.ActionAlkkagiPlace, "alice", game.Payload{Spots: []game.Vec{{X: 4.5, Y: 1}}}), t0)
	assert.ErrorIs(t, err, errs.ErrIllegalMove)

	s, err = m.Apply(s, act(s, game.ActionAlkkagiPlace, "alice", game.Payload{Spots: []game.Vec{{X: 4.5, Y: 6}}}), t0)
	require.NoError(t, err)
	s, err = m.Apply(s, act(s, game.ActionAlkkagiPlace, "bob", game.Payload{Spots: []game.Vec{{X: 4.5, Y: 3}}}), t0)
	require.NoError(t, err)
	require.Equal(t, game.StatusAlkkagiPlaying, s.Status)
	require.Len(t, s.Alkkagi.Stones, 2)

	// When: black hits white straight on hard enough to push it off
	blackID := s.Alkkagi.Stones[0].ID
	s, err = m.Apply(s, act(s, game.ActionFlick, "alice", game.Payload{StoneID: blackID, Vector: &game.Vec{X: 0, Y: -9}}), t0)
	require.NoError(t, err)

	// Then
	assert.Equal(t, game.StatusEnded, s.Status)
	assert.Equal(t, game.Black, s.Result.Winner)
}

func TestCurling_EndScoringAndHammer(t *testing.T) {
	owner, n := houseScore([]game.PhysStone{
		{Owner: game.Black, Pos: game.Vec{X: 2.5, Y: 25.2}},
		{Owner: game.Black, Pos: game.Vec{X: 2.9, Y: 25.5}},
		{Owner: game.White, Pos: game.Vec{X: 2.5, Y: 26.5}},
		{Owner: game.White, Pos: game.Vec{X: 2.5, Y: 10}},
	})
	assert.Equal(t, game.Black, owner)
	assert.Equal(t, 2, n)

	owner, n = houseScore([]game.PhysStone{{Owner: game.White, Pos: game.Vec{X: 2.5, Y: 25}, Out: true}})
	assert.Equal(t, game.Empty, owner)
	assert.Zero(t, n)

	m := newTestMachine()
	s, err := m.Start(newSession(game.ModeCurling, game.Settings{CurlingStones: 1, CurlingRounds: 2}, false), t0)
	require.NoError(t, err)
	require.Equal(t, game.StatusCurlingPlaying, s.Status)

	s, err = m.Apply(s, act(s, game.ActionThrow, "alice", game.Payload{Vector: &game.Vec{Y: 8.5}}), t0)
	require.NoError(t, err)
	s, err = m.Apply(s, act(s, game.ActionThrow, "bob", game.Payload{Vector: &game.Vec{Y: 2}}), t0)
	require.NoError(t, err)

	assert.Equal(t, 2, s.Curling.Round)
	assert.Equal(t, 1, s.Curling.Scores[game.Black])
	assert.Equal(t, game.White, s.Curling.Hammer)
	assert.Equal(t, game.Black, s.Current)
}

func TestSimulate_HeadOnCollisionTransfersMomentum(t *testing.T) {
	stones := []game.PhysStone{
		{ID: 1, Pos: game.Vec{X: 5, Y: 2}, Vel: game.Vec{Y: 4}},
		{ID: 2, Pos: game.Vec{X: 5, Y: 4}},
	}

	out := Simulate(stones, 10, 20)

	assert.Equal(t, game.Vec{Y: 4}, stones[0].Vel, "input untouched")
	assert.Less(t, out[0].Pos.Y, out[1].Pos.Y)
	assert.Greater(t, out[1].Pos.Y, 4.0)
	assert.Less(t, out[0].Pos.Y, 4.0)
	assert.False(t, out[1].Out)
}
