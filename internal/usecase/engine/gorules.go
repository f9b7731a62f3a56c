package engine

import (
	"fmt"
	"slices"
	"time"

	"game_arena/internal/domain/game"
	errs "game_arena/internal/errors"
	"game_arena/internal/usecase/board"
	"game_arena/internal/usecase/clock"
)

// goRules covers every Go-family mode, mix included. Optional rule sets are
// switched on by Session.Has.
type goRules struct {
	m *Machine
}

func (r *goRules) start(s *game.Session, now time.Time) {
	s.Board = game.NewBoard(s.Settings.BoardSize)
	r.m.placePatternStones(s)
	if s.Has(game.ModeHidden) {
		s.Hidden = &game.HiddenState{
			ItemsLeft: map[game.Color]int{game.Black: s.Settings.HiddenItems, game.White: s.Settings.HiddenItems},
			ScansLeft: map[game.Color]int{game.Black: s.Settings.ScanItems, game.White: s.Settings.ScanItems},
			Stones:    make(map[game.Color][]game.Point),
			Captured:  map[game.Color]int{game.Black: 0, game.White: 0},
		}
	}
	if s.Has(game.ModeMissile) {
		s.Missile = &game.MissileState{
			ItemsLeft: map[game.Color]int{game.Black: s.Settings.MissileItems, game.White: s.Settings.MissileItems},
		}
	}
	switch {
	case s.Has(game.ModeBase):
		r.m.beginBasePlacement(s, now)
	case s.Black.IsAI || s.White.IsAI:
		r.afterColors(s, now)
	default:
		r.m.beginNigiri(s, now)
	}
}

// afterColors runs once black and white are settled.
func (r *goRules) afterColors(s *game.Session, now time.Time) {
	if s.Hidden != nil && s.Settings.PreHiddenStones > 0 && s.Status != game.StatusHiddenPrePlacement {
		r.m.beginHiddenPrePlacement(s, now)
		return
	}
	s.PhaseDeadline = time.Time{}
	s.Status = game.StatusPlaying
	r.m.startClock(s, game.Black, now)
}

func (r *goRules) apply(s *game.Session, a game.Action, c game.Color, now time.Time) error {
	switch s.Status {
	case game.StatusNigiri:
		if err := r.m.applyNigiri(s, a, c); err != nil {
			return err
		}
		r.afterColors(s, now)
		return nil
	case game.StatusBasePlacement:
		done, err := r.m.applyBasePlacement(s, a)
		if err == nil && done {
			r.m.beginBidding(s, now)
		}
		return err
	case game.StatusKomiBidding:
		done, err := r.m.applyBid(s, a, now)
		if err == nil && done {
			putBaseStones(s)
			r.afterColors(s, now)
		}
		return err
	case game.StatusHiddenPrePlacement:
		done, err := r.m.applyHiddenPrePlacement(s, a)
		if err == nil && done {
			r.afterColors(s, now)
		}
		return err
	case game.StatusPlaying, game.StatusHiddenPlacing, game.StatusScanning, game.StatusMissileSelecting:
		if c != s.Current {
			return errs.ErrNotYourTurn
		}
		return r.play(s, a, c, now)
	}
	return errs.ErrWrongPhase
}

func (r *goRules) play(s *game.Session, a game.Action, c game.Color, now time.Time) error {
	switch s.Status {
	case game.StatusHiddenPlacing:
		if a.Type != game.ActionMove {
			return errs.ErrWrongPhase
		}
		return r.move(s, a, c, now, game.MoveHidden)
	case game.StatusScanning:
		if a.Type != game.ActionScan {
			return errs.ErrWrongPhase
		}
		return r.scan(s, a, c, now)
	case game.StatusMissileSelecting:
		if a.Type != game.ActionMissile {
			return errs.ErrWrongPhase
		}
		return r.missile(s, a, c, now)
	}

	switch a.Type {
	case game.ActionMove:
		return r.move(s, a, c, now, game.MoveStone)
	case game.ActionPass:
		r.pass(s, c, now)
		return nil
	case game.ActionUseHidden:
		if s.Hidden == nil || s.Hidden.ItemsLeft[c] <= 0 {
			return errs.ErrItemUnavailable
		}
		s.Hidden.ItemsLeft[c]--
		r.openItemWindow(s, game.ItemHidden, game.StatusHiddenPlacing, c, now)
		return nil
	case game.ActionUseScan:
		if s.Hidden == nil || s.Hidden.ScansLeft[c] <= 0 || len(s.Hidden.Stones[c.Opponent()]) == 0 {
			return errs.ErrItemUnavailable
		}
		s.Hidden.ScansLeft[c]--
		r.openItemWindow(s, game.ItemScan, game.StatusScanning, c, now)
		return nil
	case game.ActionUseMissile:
		if s.Missile == nil || s.Missile.ItemsLeft[c] <= 0 {
			return errs.ErrItemUnavailable
		}
		s.Missile.ItemsLeft[c]--
		r.openItemWindow(s, game.ItemMissile, game.StatusMissileSelecting, c, now)
		return nil
	}
	return errs.ErrUnknownAction
}

func (r *goRules) openItemWindow(s *game.Session, kind game.ItemKind, status game.Status, c game.Color, now time.Time) {
	var deadline time.Time
	s.Clock, deadline = clock.OpenItemWindow(s.Clock, now)
	s.ItemWindow = &game.ItemWindow{Kind: kind, Color: c, OpenedAt: now, Deadline: deadline}
	s.Status = status
}

// closeItemWindow returns to playing with the same player to move.
func (r *goRules) closeItemWindow(s *game.Session, now time.Time) {
	s.ItemWindow = nil
	s.Status = game.StatusPlaying
	s.Clock = clock.CloseItemWindow(s.Clock, now)
}

func (r *goRules) move(s *game.Session, a game.Action, c game.Color, now time.Time, kind game.MoveKind) error {
	if a.Payload.Point == nil {
		return fmt.Errorf("%w: point required", errs.ErrInvalidPayload)
	}
	p := *a.Payload.Point

	// Playing onto an unseen stone reveals it and uses up the turn.
	if s.Hidden.IsHidden(c.Opponent(), p) {
		s.Hidden.Reveal(p)
		if s.ItemWindow != nil {
			r.closeItemWindow(s, now)
		}
		appendHistory(s, game.Move{X: p.X, Y: p.Y, Color: c, Kind: game.MoveReveal})
		s.ConsecutivePasses = 0
		r.m.passTurn(s, now)
		return nil
	}

	mv := game.Move{X: p.X, Y: p.Y, Color: c, Kind: kind}
	res := board.AttemptMove(s.Board, mv, s.Ko, len(s.MoveHistory), board.Options{})
	if !res.Valid {
		return fmt.Errorf("%w: %s", errs.ErrIllegalMove, res.Reason)
	}
	if s.ItemWindow != nil {
		r.closeItemWindow(s, now)
	}
	if kind == game.MoveHidden {
		s.Hidden.Stones[c] = append(s.Hidden.Stones[c], p)
	}
	r.commit(s, mv, res, now)
	return nil
}

func (r *goRules) scan(s *game.Session, a game.Action, c game.Color, now time.Time) error {
	if a.Payload.Point == nil {
		return fmt.Errorf("%w: point required", errs.ErrInvalidPayload)
	}
	p := *a.Payload.Point
	if !s.Board.InBounds(p) {
		return fmt.Errorf("%w: %s", errs.ErrIllegalMove, board.ReasonOutOfBounds)
	}
	found := s.Hidden.IsHidden(c.Opponent(), p)
	if found {
		s.Hidden.Reveal(p)
	}
	r.m.log.Infow("scan used", "session", s.ID, "color", c.String(), "found", found)
	r.closeItemWindow(s, now)
	return nil
}

func (r *goRules) missile(s *game.Session, a game.Action, c game.Color, now time.Time) error {
	if a.Payload.Point == nil {
		return fmt.Errorf("%w: stone required", errs.ErrInvalidPayload)
	}
	from := *a.Payload.Point
	if !s.Board.InBounds(from) || s.Board.At(from) != c {
		return fmt.Errorf("%w: not your stone", errs.ErrIllegalMove)
	}
	// Hitting an unseen stone reveals it. A missile stopped before moving at all spends the turn.
	to, _ := board.MissilePath(s.Board, from, a.Payload.Direction)
	blocker, hit := board.MissileBlocker(s.Board, to, a.Payload.Direction)
	hit = hit && s.Hidden.IsHidden(c.Opponent(), blocker)
	if hit && to == from {
		s.Hidden.Reveal(blocker)
		r.closeItemWindow(s, now)
		appendHistory(s, game.Move{X: blocker.X, Y: blocker.Y, Color: c, Kind: game.MoveReveal})
		s.ConsecutivePasses = 0
		r.m.passTurn(s, now)
		return nil
	}

	res, to := board.FireMissile(s.Board, from, a.Payload.Direction, s.Ko, len(s.MoveHistory))
	if !res.Valid {
		return fmt.Errorf("%w: %s", errs.ErrIllegalMove, res.Reason)
	}
	r.closeItemWindow(s, now)
	if hit {
		s.Hidden.Reveal(blocker)
	}
	if s.Hidden.IsHidden(c, from) {
		s.Hidden.Reveal(from)
	}
	if s.Base != nil {
		if i := slices.Index(s.Base.Stones[c], from); i >= 0 {
			s.Base.Stones[c][i] = to
		}
	}
	r.commit(s, game.Move{X: to.X, Y: to.Y, Color: c, Kind: game.MoveMissile, From: &from}, res, now)
	return nil
}

// commit records an accepted stone, tallies captures and hands the turn over.
func (r *goRules) commit(s *game.Session, mv game.Move, res board.MoveResult, now time.Time) {
	c := mv.Color
	victim := c.Opponent()
	s.Board = res.Board
	s.Ko = res.Ko
	appendHistory(s, mv)
	s.ConsecutivePasses = 0

	for _, p := range res.Captured {
		if s.Base != nil {
			if i := slices.Index(s.Base.Stones[victim], p); i >= 0 {
				s.Base.Stones[victim] = slices.Delete(s.Base.Stones[victim], i, i+1)
				s.Base.Captured[c]++
			}
		}
		if s.Hidden != nil {
			if i := slices.Index(s.Hidden.Stones[victim], p); i >= 0 {
				s.Hidden.Stones[victim] = slices.Delete(s.Hidden.Stones[victim], i, i+1)
				s.Hidden.Captured[c]++
			}
		}
	}
	tallyCaptures(s, c, res.Captured)

	if s.Has(game.ModeCapture) && board.CaptureTargetReached(s.Captures[c], s.Settings.CaptureTarget) {
		r.m.end(s, c, game.ReasonCaptureLimit, now)
		return
	}
	r.m.passTurn(s, now)
}

func (r *goRules) pass(s *game.Session, c game.Color, now time.Time) {
	appendHistory(s, game.Move{X: game.PassPoint.X, Y: game.PassPoint.Y, Color: c, Kind: game.MovePass})
	s.Ko = nil
	s.ConsecutivePasses++
	if s.ConsecutivePasses >= 2 {
		r.m.stopClock(s)
		s.Status = game.StatusScoring
		r.m.log.Infow("double pass, scoring", "session", s.ID)
		return
	}
	r.m.passTurn(s, now)
}

func (r *goRules) expire(s *game.Session, now time.Time) {
	switch s.Status {
	case game.StatusNigiri:
		r.m.expireNigiri(s)
		r.afterColors(s, now)
	case game.StatusBasePlacement:
		r.m.expireBasePlacement(s)
		r.m.beginBidding(s, now)
	case game.StatusKomiBidding:
		r.m.expireBidding(s, now)
		putBaseStones(s)
		r.afterColors(s, now)
	case game.StatusHiddenPrePlacement:
		r.m.expireHiddenPrePlacement(s)
		r.afterColors(s, now)
	default:
		s.PhaseDeadline = time.Time{}
	}
}
