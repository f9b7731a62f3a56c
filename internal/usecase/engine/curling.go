package engine

import (
	"fmt"
	"math"
	"sort"
	"time"

	"game_arena/internal/domain/game"
	errs "game_arena/internal/errors"
)

const (
	sheetWidth   = 5.0
	sheetLength  = 30.0
	houseRadius  = 2.0
	throwOriginY = 1.0
)

var houseCenter = game.Vec{X: sheetWidth / 2, Y: 25}

// Curling: sides alternate throws down the sheet. After every end the stones
// closest to the house center score; the side that did not score gets the hammer.
type curlingRules struct {
	m *Machine
}

func (r *curlingRules) start(s *game.Session, now time.Time) {
	s.Curling = &game.CurlingState{
		Round:          1,
		MaxRounds:      s.Settings.CurlingRounds,
		StonesPerRound: s.Settings.CurlingStones,
		Thrown:         map[game.Color]int{game.Black: 0, game.White: 0},
		Scores:         map[game.Color]int{game.Black: 0, game.White: 0},
		Hammer:         game.White,
	}
	s.Status = game.StatusCurlingPlaying
	r.m.startClock(s, game.Black, now)
}

func (r *curlingRules) apply(s *game.Session, a game.Action, c game.Color, now time.Time) error {
	if s.Status != game.StatusCurlingPlaying {
		return errs.ErrWrongPhase
	}
	if c != s.Current {
		return errs.ErrNotYourTurn
	}
	if a.Type != game.ActionThrow {
		return errs.ErrWrongPhase
	}
	if a.Payload.Vector == nil || a.Payload.Vector.Y <= 0 {
		return fmt.Errorf("%w: throw must head down the sheet", errs.ErrInvalidPayload)
	}
	cs := s.Curling
	cs.NextID++
	stone := game.PhysStone{
		ID:    cs.NextID,
		Owner: c,
		Pos:   game.Vec{X: sheetWidth / 2, Y: throwOriginY},
		Vel:   clampSpeed(*a.Payload.Vector),
	}
	cs.Stones = Simulate(append(cs.Stones, stone), sheetWidth, sheetLength)
	cs.Thrown[c]++

	if cs.Thrown[game.Black] < cs.StonesPerRound || cs.Thrown[game.White] < cs.StonesPerRound {
		r.m.passTurn(s, now)
		return nil
	}
	r.scoreEnd(s, now)
	return nil
}

// houseScore returns the side holding shot stone and how many of its stones are
// closer than the opponent's best.
func houseScore(stones []game.PhysStone) (game.Color, int) {
	var in []game.PhysStone
	for _, st := range stones {
		if st.Out {
			continue
		}
		st.Score = math.Hypot(st.Pos.X-houseCenter.X, st.Pos.Y-houseCenter.Y)
		if st.Score <= houseRadius+stoneRadius {
			in = append(in, st)
		}
	}
	if len(in) == 0 {
		return game.Empty, 0
	}
	sort.Slice(in, func(i, j int) bool { return in[i].Score < in[j].Score })
	owner := in[0].Owner
	n := 0
	for _, st := range in {
		if st.Owner != owner {
			break
		}
		n++
	}
	return owner, n
}

func (r *curlingRules) scoreEnd(s *game.Session, now time.Time) {
	cs := s.Curling
	owner, n := houseScore(cs.Stones)
	if owner != game.Empty {
		cs.Scores[owner] += n
		cs.Hammer = owner.Opponent()
	}
	r.m.log.Infow("curling end scored", "session", s.ID, "round", cs.Round, "scorer", owner.String(), "points", n)
	cs.Round++
	if cs.Round > cs.MaxRounds {
		r.m.endWithScores(s, counterScores(cs.Scores[game.Black], cs.Scores[game.White]), now)
		return
	}
	cs.Stones = nil
	cs.Thrown = map[game.Color]int{game.Black: 0, game.White: 0}
	r.m.handTurn(s, cs.Hammer.Opponent(), now)
}

func (r *curlingRules) expire(s *game.Session, now time.Time) {
	s.PhaseDeadline = time.Time{}
}

func (r *curlingRules) closeItemWindow(s *game.Session, now time.Time) {
	s.ItemWindow = nil
}
