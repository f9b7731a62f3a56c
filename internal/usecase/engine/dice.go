package engine

import (
	"fmt"
	"slices"
	"time"

	"game_arena/internal/domain/game"
	errs "game_arena/internal/errors"
	"game_arena/internal/usecase/board"
)

// Dice Go: both players surround neutral white stones with black stones. Each turn
// the mover rolls one die and places that many stones on white liberties; every
// captured white stone scores for the mover.
type diceRules struct {
	m *Machine
}

func (r *diceRules) start(s *game.Session, now time.Time) {
	s.Board = game.NewBoard(s.Settings.BoardSize)
	r.m.placePatternStones(s)
	mid := s.Settings.BoardSize / 2
	s.Board.Set(game.Point{X: mid, Y: mid}, game.White)
	s.Dice = &game.DiceState{Round: 1, MaxRounds: s.Settings.DiceRounds}
	if s.Black.IsAI || s.White.IsAI {
		r.begin(s, now)
		return
	}
	r.m.beginTurnRoll(s, now)
}

func (r *diceRules) begin(s *game.Session, now time.Time) {
	s.PhaseDeadline = time.Time{}
	s.Status = game.StatusDiceRolling
	r.m.startClock(s, game.Black, now)
}

func (r *diceRules) apply(s *game.Session, a game.Action, c game.Color, now time.Time) error {
	switch s.Status {
	case game.StatusTurnRoll:
		first, err := r.m.applyTurnRoll(s, a, now)
		if err == nil && first != "" {
			assignBlack(s, first)
			r.begin(s, now)
		}
		return err
	case game.StatusDiceRolling:
		if c != s.Current {
			return errs.ErrNotYourTurn
		}
		if a.Type != game.ActionDiceRoll {
			return errs.ErrWrongPhase
		}
		r.roll(s, now)
		return nil
	case game.StatusDicePlacing:
		if c != s.Current {
			return errs.ErrNotYourTurn
		}
		switch a.Type {
		case game.ActionMove:
			return r.place(s, a, c, now)
		case game.ActionPass:
			r.endTurn(s, now)
			return nil
		}
		return errs.ErrWrongPhase
	}
	return errs.ErrWrongPhase
}

func (r *diceRules) roll(s *game.Session, now time.Time) {
	r.ensureTarget(s)
	s.Dice.Rolled = r.m.roll()
	s.Dice.ToPlace = s.Dice.Rolled
	s.Status = game.StatusDicePlacing
	if len(board.Liberties(s.Board, game.White)) == 0 {
		r.endTurn(s, now)
	}
}

// ensureTarget spawns a fresh white stone once the board has none left.
func (r *diceRules) ensureTarget(s *game.Session) {
	if s.Board.Count(game.White) > 0 {
		return
	}
	if p, ok := r.m.randomEmpty(s.Board); ok {
		s.Board.Set(p, game.White)
	}
}

func (r *diceRules) place(s *game.Session, a game.Action, c game.Color, now time.Time) error {
	if a.Payload.Point == nil {
		return fmt.Errorf("%w: point required", errs.ErrInvalidPayload)
	}
	p := *a.Payload.Point
	if !slices.Contains(board.Liberties(s.Board, game.White), p) {
		return fmt.Errorf("%w: not a liberty of a white stone", errs.ErrIllegalMove)
	}
	res := board.AttemptMove(s.Board, game.Move{X: p.X, Y: p.Y, Color: game.Black}, nil, len(s.MoveHistory), board.Options{IgnoreSuicide: true})
	if !res.Valid {
		return fmt.Errorf("%w: %s", errs.ErrIllegalMove, res.Reason)
	}
	s.Board = res.Board
	appendHistory(s, game.Move{X: p.X, Y: p.Y, Color: c, Kind: game.MoveStone})
	tallyCaptures(s, c, res.Captured)
	s.Dice.ToPlace--
	r.ensureTarget(s)
	if s.Dice.ToPlace <= 0 || len(board.Liberties(s.Board, game.White)) == 0 {
		r.endTurn(s, now)
	}
	return nil
}

func (r *diceRules) endTurn(s *game.Session, now time.Time) {
	d := s.Dice
	d.Rolled, d.ToPlace = 0, 0
	d.TurnsInRound++
	if d.TurnsInRound >= 2 {
		d.TurnsInRound = 0
		d.Round++
	}
	if d.Round > d.MaxRounds {
		r.m.endWithScores(s, counterScores(s.Captures[game.Black], s.Captures[game.White]), now)
		return
	}
	s.Status = game.StatusDiceRolling
	r.m.passTurn(s, now)
}

func (r *diceRules) expire(s *game.Session, now time.Time) {
	if s.Status != game.StatusTurnRoll {
		s.PhaseDeadline = time.Time{}
		return
	}
	if first := r.m.expireTurnRoll(s, now); first != "" {
		assignBlack(s, first)
		r.begin(s, now)
	}
}

func (r *diceRules) closeItemWindow(s *game.Session, now time.Time) {
	s.ItemWindow = nil
}

// counterScores builds breakdowns for modes scored by plain counters.
func counterScores(black, white int) map[game.Color]game.ScoreBreakdown {
	return map[game.Color]game.ScoreBreakdown{
		game.Black: {Points: float64(black), Total: float64(black)},
		game.White: {Points: float64(white), Total: float64(white)},
	}
}
