package ai

import (
	"context"
	"math"
	"slices"

	"go.uber.org/zap"

	"game_arena/internal/domain/game"
	"game_arena/internal/metrics"
	"game_arena/internal/usecase/board"
	"game_arena/internal/usecase/engine"
)

// Player builds the AI participant's next action for whatever phase a session is in.
type Player struct {
	heuristic *HeuristicBot
	strategic *StrategicBot
	rnd       Random
	log       *zap.SugaredLogger
}

func NewPlayer(heuristic *HeuristicBot, strategic *StrategicBot, rnd Random, log *zap.SugaredLogger) *Player {
	return &Player{heuristic: heuristic, strategic: strategic, rnd: rnd, log: log}
}

// Act returns the action of the first AI participant the session waits on.
func (p *Player) Act(ctx context.Context, s *game.Session) (game.Action, bool) {
	for _, id := range engine.AwaitingAction(s) {
		c := s.ColorOf(id)
		ai := s.Player(c)
		if !ai.IsAI {
			continue
		}
		view := s.ViewFor(id)
		pl, typ, ok := p.choose(ctx, view, c, ai.AIDifficulty)
		if !ok {
			p.log.Debugw("AI has nothing to do", "session", s.ID, "status", s.Status)
			return game.Action{}, false
		}
		return game.Action{Type: typ, UserID: id, Turn: s.Turn, Payload: pl}, true
	}
	return game.Action{}, false
}

func (p *Player) choose(ctx context.Context, s *game.Session, me game.Color, difficulty int) (game.Payload, game.ActionType, bool) {
	switch s.Status {
	case game.StatusNigiri:
		return game.Payload{Choice: []string{"odd", "even"}[p.rnd.Intn(2)]}, game.ActionNigiriGuess, true
	case game.StatusRPS:
		return game.Payload{Choice: []string{"rock", "paper", "scissors"}[p.rnd.Intn(3)]}, game.ActionRPS, true
	case game.StatusTurnRoll:
		return game.Payload{}, game.ActionTurnRoll, true
	case game.StatusBasePlacement:
		n := s.Settings.BaseStones - len(s.Base.Placed[s.PlayerID(me)])
		return game.Payload{Points: p.pick(s.Board.EmptyPoints(), n, s.Base.Placed[s.PlayerID(me)])}, game.ActionPlaceBase, true
	case game.StatusKomiBidding:
		return game.Payload{Amount: p.rnd.Intn(difficulty + 1)}, game.ActionBid, true
	case game.StatusHiddenPrePlacement:
		n := s.Settings.PreHiddenStones - len(s.Hidden.PrePlaced[s.PlayerID(me)])
		return game.Payload{Points: p.pick(s.Board.EmptyPoints(), n, s.Hidden.PrePlaced[s.PlayerID(me)])}, game.ActionPreplaceHide, true
	case game.StatusPlaying:
		if s.Mode.IsLineMode() {
			pt := p.lineMove(s, me)
			return game.Payload{Point: &pt}, game.ActionMove, true
		}
		return p.goMove(ctx, s, me, difficulty)
	case game.StatusDiceRolling:
		return game.Payload{}, game.ActionDiceRoll, true
	case game.StatusDicePlacing:
		return p.libertyMove(s, game.White, game.Black, true)
	case game.StatusThiefRolling:
		return game.Payload{}, game.ActionThiefRoll, true
	case game.StatusThiefPlacing:
		return p.libertyMove(s, s.ColorOf(s.Thief.ThiefID), me, false)
	case game.StatusAlkkagiPlacement:
		return game.Payload{Spots: p.alkkagiSpots(s, me)}, game.ActionAlkkagiPlace, true
	case game.StatusAlkkagiPlaying:
		return p.flick(s, me)
	case game.StatusCurlingPlaying:
		jitter := float64(p.rnd.Intn(21)-10) / 100
		return game.Payload{Vector: &game.Vec{X: jitter, Y: 8.4 + float64(p.rnd.Intn(5))/20}}, game.ActionThrow, true
	}
	return game.Payload{}, "", false
}

func (p *Player) goMove(ctx context.Context, s *game.Session, me game.Color, difficulty int) (game.Payload, game.ActionType, bool) {
	var d Decision
	if p.strategic == nil || s.Has(game.ModeCapture) {
		d = p.heuristic.Decide(s, me, difficulty)
		metrics.AIDecisions.WithLabelValues("heuristic", d.Step).Inc()
	} else {
		d = p.strategic.Decide(ctx, s, me, difficulty)
	}
	switch d.Kind {
	case KindPass:
		return game.Payload{}, game.ActionPass, true
	case KindResign:
		return game.Payload{}, game.ActionResign, true
	}
	pt := d.Point
	return game.Payload{Point: &pt}, game.ActionMove, true
}

// pick chooses n distinct random points not already in have.
func (p *Player) pick(pool []game.Point, n int, have []game.Point) []game.Point {
	var out []game.Point
	pool = slices.DeleteFunc(slices.Clone(pool), func(pt game.Point) bool { return slices.Contains(have, pt) })
	for len(out) < n && len(pool) > 0 {
		i := p.rnd.Intn(len(pool))
		out = append(out, pool[i])
		pool = slices.Delete(pool, i, i+1)
	}
	return out
}

// lineMove wins when it can, blocks a winning point otherwise, then builds next
// to the longest own line.
func (p *Player) lineMove(s *game.Session, me game.Color) game.Point {
	st := s.Settings
	empty := s.Board.EmptyPoints()
	legal := func(pt game.Point, c game.Color) (game.Board, bool) {
		if c == game.Black && st.ForbidDoubleThree && board.IsDoubleThree(s.Board, pt, c) {
			return nil, false
		}
		b := s.Board.Clone()
		b.Set(pt, c)
		if c == game.Black && !st.AllowOverline && board.IsOverline(b, pt, st.WinLength) {
			return nil, false
		}
		return b, true
	}
	for _, c := range []game.Color{me, me.Opponent()} {
		for _, pt := range empty {
			b, ok := legal(pt, c)
			if ok && board.IsFiveInRow(b, pt, st.WinLength, st.AllowOverline || c == game.White) {
				if _, mine := legal(pt, me); mine {
					return pt
				}
			}
		}
	}
	best, bestLen := []game.Point(nil), 0
	for _, pt := range empty {
		b, ok := legal(pt, me)
		if !ok {
			continue
		}
		n := board.LineLength(b, pt)
		switch {
		case n > bestLen:
			best, bestLen = []game.Point{pt}, n
		case n == bestLen:
			best = append(best, pt)
		}
	}
	if len(best) == 0 {
		mid := s.Board.Size() / 2
		return game.Point{X: mid, Y: mid}
	}
	return best[p.rnd.Intn(len(best))]
}

// libertyMove places on a liberty of target, preferring a capture.
func (p *Player) libertyMove(s *game.Session, target, stone game.Color, ignoreSuicide bool) (game.Payload, game.ActionType, bool) {
	libs := board.Liberties(s.Board, target)
	if len(libs) == 0 {
		return game.Payload{}, game.ActionPass, true
	}
	var ok []game.Point
	for _, pt := range libs {
		res := board.AttemptMove(s.Board, game.Move{X: pt.X, Y: pt.Y, Color: stone}, nil, len(s.MoveHistory), board.Options{IgnoreSuicide: ignoreSuicide})
		if !res.Valid {
			continue
		}
		if len(res.Captured) > 0 && stone != target {
			pt := pt
			return game.Payload{Point: &pt}, game.ActionMove, true
		}
		ok = append(ok, pt)
	}
	if len(ok) == 0 {
		return game.Payload{}, game.ActionPass, true
	}
	pt := ok[p.rnd.Intn(len(ok))]
	return game.Payload{Point: &pt}, game.ActionMove, true
}

func (p *Player) alkkagiSpots(s *game.Session, me game.Color) []game.Vec {
	size := float64(s.Settings.BoardSize)
	n := s.Alkkagi.StonesPerPlayer - len(s.Alkkagi.Placed[s.PlayerID(me)])
	row := size * 0.75
	if me == game.White {
		row = size * 0.25
	}
	gap := size / float64(n+1)
	var out []game.Vec
	for i := 1; i <= n; i++ {
		out = append(out, game.Vec{X: gap * float64(i), Y: row})
	}
	return out
}

// flick aims the own stone closest to any opponent stone straight at it.
func (p *Player) flick(s *game.Session, me game.Color) (game.Payload, game.ActionType, bool) {
	var from, to *game.PhysStone
	best := math.Inf(1)
	for i := range s.Alkkagi.Stones {
		a := &s.Alkkagi.Stones[i]
		if a.Out || a.Owner != me {
			continue
		}
		for j := range s.Alkkagi.Stones {
			b := &s.Alkkagi.Stones[j]
			if b.Out || b.Owner == me {
				continue
			}
			if d := math.Hypot(b.Pos.X-a.Pos.X, b.Pos.Y-a.Pos.Y); d < best {
				best, from, to = d, a, b
			}
		}
	}
	if from == nil {
		return game.Payload{}, "", false
	}
	dx, dy := to.Pos.X-from.Pos.X, to.Pos.Y-from.Pos.Y
	k := 9 / best
	return game.Payload{StoneID: from.ID, Vector: &game.Vec{X: dx * k, Y: dy * k}}, game.ActionFlick, true
}
