package engine

import (
	"fmt"
	"time"

	"game_arena/internal/domain/game"
	errs "game_arena/internal/errors"
	"game_arena/internal/usecase/board"
)

// omokRules plays omok and ttamok. Rock-paper-scissors decides black.
type omokRules struct {
	m *Machine
}

func (r *omokRules) start(s *game.Session, now time.Time) {
	s.Board = game.NewBoard(s.Settings.BoardSize)
	r.m.placePatternStones(s)
	if s.Black.IsAI || s.White.IsAI {
		r.begin(s, now)
		return
	}
	r.m.beginRPS(s, now)
}

func (r *omokRules) begin(s *game.Session, now time.Time) {
	s.PhaseDeadline = time.Time{}
	s.Status = game.StatusPlaying
	r.m.startClock(s, game.Black, now)
}

func (r *omokRules) apply(s *game.Session, a game.Action, c game.Color, now time.Time) error {
	switch s.Status {
	case game.StatusRPS:
		winner, err := r.m.applyRPS(s, a, now)
		if err == nil && winner != "" {
			assignBlack(s, winner)
			r.begin(s, now)
		}
		return err
	case game.StatusPlaying:
		if c != s.Current {
			return errs.ErrNotYourTurn
		}
		switch a.Type {
		case game.ActionMove:
			return r.move(s, a, c, now)
		case game.ActionPass:
			return fmt.Errorf("%w: no passing in line games", errs.ErrIllegalMove)
		}
		return errs.ErrUnknownAction
	}
	return errs.ErrWrongPhase
}

func (r *omokRules) move(s *game.Session, a game.Action, c game.Color, now time.Time) error {
	if a.Payload.Point == nil {
		return fmt.Errorf("%w: point required", errs.ErrInvalidPayload)
	}
	p := *a.Payload.Point
	st := s.Settings
	switch {
	case !s.Board.InBounds(p):
		return fmt.Errorf("%w: %s", errs.ErrIllegalMove, board.ReasonOutOfBounds)
	case s.Board.At(p) != game.Empty:
		return fmt.Errorf("%w: %s", errs.ErrIllegalMove, board.ReasonOccupied)
	case c == game.Black && st.ForbidDoubleThree && board.IsDoubleThree(s.Board, p, c):
		return fmt.Errorf("%w: double three", errs.ErrIllegalMove)
	}

	next := s.Board.Clone()
	next.Set(p, c)
	if c == game.Black && !st.AllowOverline && board.IsOverline(next, p, st.WinLength) {
		return fmt.Errorf("%w: overline", errs.ErrIllegalMove)
	}

	var captured []game.Point
	if s.Mode == game.ModeTtamok {
		captured = board.PairCaptures(next, p)
		for _, q := range captured {
			next.Set(q, game.Empty)
		}
	}
	s.Board = next
	appendHistory(s, game.Move{X: p.X, Y: p.Y, Color: c, Kind: game.MoveStone})
	tallyCaptures(s, c, captured)

	// White may always win with an overline.
	allowOver := st.AllowOverline || c == game.White
	switch {
	case board.IsFiveInRow(next, p, st.WinLength, allowOver):
		r.m.end(s, c, game.ReasonLineFormed, now)
	case s.Mode == game.ModeTtamok && board.CaptureTargetReached(s.Captures[c], st.CaptureTarget):
		r.m.end(s, c, game.ReasonCaptureLimit, now)
	case len(next.EmptyPoints()) == 0:
		r.m.end(s, game.Empty, game.ReasonScore, now)
	default:
		r.m.passTurn(s, now)
	}
	return nil
}

func (r *omokRules) expire(s *game.Session, now time.Time) {
	if s.Status != game.StatusRPS {
		s.PhaseDeadline = time.Time{}
		return
	}
	if winner := r.m.expireRPS(s, now); winner != "" {
		assignBlack(s, winner)
		r.begin(s, now)
	}
}

func (r *omokRules) closeItemWindow(s *game.Session, now time.Time) {
	s.ItemWindow = nil
}
