package engine

import (
	"fmt"
	"slices"
	"time"

	"game_arena/internal/domain/game"
	errs "game_arena/internal/errors"
	"game_arena/internal/usecase/board"
)

const thiefRounds = 2

// Thief and police: the thief spreads from a center stone, the police surround and
// capture. Both place only on liberties of thief stones. Roles swap after a round.
type thiefRules struct {
	m *Machine
}

func (r *thiefRules) start(s *game.Session, now time.Time) {
	s.Thief = &game.ThiefState{Totals: map[string]int{s.Black.UserID: 0, s.White.UserID: 0}}
	if s.Black.IsAI || s.White.IsAI {
		s.Thief.ThiefID, s.Thief.PoliceID = s.Black.UserID, s.White.UserID
		r.startRound(s, now)
		return
	}
	s.Board = game.NewBoard(s.Settings.BoardSize)
	r.m.beginRPS(s, now)
}

// startRound resets the board to a single thief stone in the center.
func (r *thiefRules) startRound(s *game.Session, now time.Time) {
	t := s.Thief
	t.Round++
	t.TurnsLeft = s.Settings.ThiefTurns * 2
	t.Acting = game.RoleThief
	t.Rolled, t.ToPlace = nil, 0
	s.Board = game.NewBoard(s.Settings.BoardSize)
	r.m.placePatternStones(s)
	mid := s.Settings.BoardSize / 2
	s.Board.Set(game.Point{X: mid, Y: mid}, r.thiefColor(s))
	s.Ko = nil
	s.PhaseDeadline = time.Time{}
	s.Status = game.StatusThiefRolling
	r.m.startClock(s, r.thiefColor(s), now)
}

func (r *thiefRules) thiefColor(s *game.Session) game.Color {
	return s.ColorOf(s.Thief.ThiefID)
}

func (r *thiefRules) actingID(s *game.Session) string {
	if s.Thief.Acting == game.RoleThief {
		return s.Thief.ThiefID
	}
	return s.Thief.PoliceID
}

func (r *thiefRules) apply(s *game.Session, a game.Action, c game.Color, now time.Time) error {
	if s.Status == game.StatusRPS {
		winner, err := r.m.applyRPS(s, a, now)
		if err == nil && winner != "" {
			r.assignRoles(s, winner, now)
		}
		return err
	}
	if s.Status != game.StatusThiefRolling && s.Status != game.StatusThiefPlacing {
		return errs.ErrWrongPhase
	}
	if a.UserID != r.actingID(s) {
		return errs.ErrNotYourTurn
	}
	switch {
	case s.Status == game.StatusThiefRolling && a.Type == game.ActionThiefRoll:
		r.roll(s, now)
		return nil
	case s.Status == game.StatusThiefPlacing && a.Type == game.ActionMove:
		return r.place(s, a, c, now)
	case s.Status == game.StatusThiefPlacing && a.Type == game.ActionPass:
		r.endTurn(s, now)
		return nil
	}
	return errs.ErrWrongPhase
}

// assignRoles makes the rock-paper-scissors winner the first thief.
func (r *thiefRules) assignRoles(s *game.Session, winner string, now time.Time) {
	s.Thief.ThiefID = winner
	if winner == s.Black.UserID {
		s.Thief.PoliceID = s.White.UserID
	} else {
		s.Thief.PoliceID = s.Black.UserID
	}
	r.startRound(s, now)
}

func (r *thiefRules) roll(s *game.Session, now time.Time) {
	t := s.Thief
	dice := 1
	if t.Acting == game.RolePolice {
		dice = 2
	}
	t.Rolled = t.Rolled[:0]
	t.ToPlace = 0
	for die := 0; die < dice; die++ {
		v := r.m.roll()
		t.Rolled = append(t.Rolled, v)
		t.ToPlace += v
	}
	s.Status = game.StatusThiefPlacing
	if len(board.Liberties(s.Board, r.thiefColor(s))) == 0 {
		r.endTurn(s, now)
	}
}

func (r *thiefRules) place(s *game.Session, a game.Action, c game.Color, now time.Time) error {
	if a.Payload.Point == nil {
		return fmt.Errorf("%w: point required", errs.ErrInvalidPayload)
	}
	p := *a.Payload.Point
	thief := r.thiefColor(s)
	if !slices.Contains(board.Liberties(s.Board, thief), p) {
		return fmt.Errorf("%w: not next to a thief stone", errs.ErrIllegalMove)
	}
	res := board.AttemptMove(s.Board, game.Move{X: p.X, Y: p.Y, Color: c}, nil, len(s.MoveHistory), board.Options{})
	if !res.Valid {
		return fmt.Errorf("%w: %s", errs.ErrIllegalMove, res.Reason)
	}
	s.Board = res.Board
	appendHistory(s, game.Move{X: p.X, Y: p.Y, Color: c, Kind: game.MoveStone})
	pts := tallyCaptures(s, c, res.Captured)
	if c != thief {
		s.Thief.Totals[a.UserID] += pts
	}
	s.Thief.ToPlace--
	switch {
	case s.Board.Count(thief) == 0:
		r.endRound(s, now)
	case s.Thief.ToPlace <= 0 || len(board.Liberties(s.Board, thief)) == 0:
		r.endTurn(s, now)
	}
	return nil
}

func (r *thiefRules) endTurn(s *game.Session, now time.Time) {
	t := s.Thief
	t.Rolled, t.ToPlace = nil, 0
	t.TurnsLeft--
	if t.TurnsLeft <= 0 {
		r.endRound(s, now)
		return
	}
	if t.Acting == game.RoleThief {
		t.Acting = game.RolePolice
	} else {
		t.Acting = game.RoleThief
	}
	s.Status = game.StatusThiefRolling
	r.m.handTurn(s, s.ColorOf(r.actingID(s)), now)
}

// endRound credits the thief with every surviving stone.
func (r *thiefRules) endRound(s *game.Session, now time.Time) {
	t := s.Thief
	t.Totals[t.ThiefID] += s.Board.Count(r.thiefColor(s))
	r.m.log.Infow("thief round over", "session", s.ID, "round", t.Round, "totals", t.Totals)
	if t.Round >= thiefRounds {
		r.m.endWithScores(s, counterScores(t.Totals[s.Black.UserID], t.Totals[s.White.UserID]), now)
		return
	}
	t.ThiefID, t.PoliceID = t.PoliceID, t.ThiefID
	r.startRound(s, now)
}

func (r *thiefRules) expire(s *game.Session, now time.Time) {
	if s.Status != game.StatusRPS {
		s.PhaseDeadline = time.Time{}
		return
	}
	if winner := r.m.expireRPS(s, now); winner != "" {
		r.assignRoles(s, winner, now)
	}
}

func (r *thiefRules) closeItemWindow(s *game.Session, now time.Time) {
	s.ItemWindow = nil
}
