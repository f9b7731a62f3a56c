package engine

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"game_arena/internal/domain/game"
	errs "game_arena/internal/errors"
)

// Alkkagi: both sides secretly place stones in their own half, then take turns
// flicking one stone. A round is won by the side with stones left on the board.
type alkkagiRules struct {
	m *Machine
}

func (r *alkkagiRules) field(s *game.Session) float64 {
	return float64(s.Settings.BoardSize)
}

func (r *alkkagiRules) start(s *game.Session, now time.Time) {
	s.Alkkagi = &game.AlkkagiState{
		Round:           1,
		MaxRounds:       s.Settings.AlkkagiRounds,
		StonesPerPlayer: s.Settings.AlkkagiStones,
		RoundWins:       map[game.Color]int{game.Black: 0, game.White: 0},
		Flicks:          map[game.Color]int{game.Black: 0, game.White: 0},
		Opener:          game.Black,
		Meta:            make(map[string]string),
	}
	r.beginPlacement(s, now)
}

func (r *alkkagiRules) beginPlacement(s *game.Session, now time.Time) {
	a := s.Alkkagi
	a.Placed = make(map[string][]game.Vec)
	a.Stones = nil
	s.Current = a.Opener
	r.m.stopClock(s)
	r.m.openPhase(s, game.StatusAlkkagiPlacement, now)
}

// inHalf reports whether v lies in c's half: black owns the bottom half.
func (r *alkkagiRules) inHalf(s *game.Session, c game.Color, v game.Vec) bool {
	size := r.field(s)
	if v.X < stoneRadius || v.X > size-stoneRadius || v.Y < stoneRadius || v.Y > size-stoneRadius {
		return false
	}
	if c == game.Black {
		return v.Y >= size/2
	}
	return v.Y < size/2
}

func overlaps(spots []game.Vec, v game.Vec) bool {
	for _, o := range spots {
		if math.Hypot(o.X-v.X, o.Y-v.Y) < 2*stoneRadius {
			return true
		}
	}
	return false
}

func (r *alkkagiRules) apply(s *game.Session, a game.Action, c game.Color, now time.Time) error {
	switch s.Status {
	case game.StatusAlkkagiPlacement:
		if a.Type != game.ActionAlkkagiPlace {
			return errs.ErrWrongPhase
		}
		return r.place(s, a, c, now)
	case game.StatusAlkkagiPlaying:
		if c != s.Current {
			return errs.ErrNotYourTurn
		}
		if a.Type != game.ActionFlick {
			return errs.ErrWrongPhase
		}
		return r.flick(s, a, c, now)
	}
	return errs.ErrWrongPhase
}

func (r *alkkagiRules) place(s *game.Session, a game.Action, c game.Color, now time.Time) error {
	st := s.Alkkagi
	have := st.Placed[a.UserID]
	if len(have) >= st.StonesPerPlayer {
		return errs.ErrAlreadySubmitted
	}
	if len(a.Payload.Spots) == 0 || len(have)+len(a.Payload.Spots) > st.StonesPerPlayer {
		return fmt.Errorf("%w: at most %d stones", errs.ErrInvalidPayload, st.StonesPerPlayer)
	}
	next := append([]game.Vec(nil), have...)
	for _, v := range a.Payload.Spots {
		if !r.inHalf(s, c, v) || overlaps(next, v) {
			return fmt.Errorf("%w: spot %.2f,%.2f unavailable", errs.ErrIllegalMove, v.X, v.Y)
		}
		next = append(next, v)
	}
	st.Placed[a.UserID] = next
	if r.placementDone(s) {
		r.beginPlay(s, now)
	}
	return nil
}

func (r *alkkagiRules) placementDone(s *game.Session) bool {
	for _, p := range s.Participants() {
		if len(s.Alkkagi.Placed[p.UserID]) < s.Alkkagi.StonesPerPlayer {
			return false
		}
	}
	return true
}

func (r *alkkagiRules) beginPlay(s *game.Session, now time.Time) {
	st := s.Alkkagi
	for _, p := range s.Participants() {
		for _, v := range st.Placed[p.UserID] {
			st.NextID++
			st.Stones = append(st.Stones, game.PhysStone{ID: st.NextID, Owner: p.Color, Pos: v})
		}
	}
	st.Placed = nil
	s.PhaseDeadline = time.Time{}
	s.Status = game.StatusAlkkagiPlaying
	r.m.startClock(s, st.Opener, now)
}

func (r *alkkagiRules) flick(s *game.Session, a game.Action, c game.Color, now time.Time) error {
	st := s.Alkkagi
	if a.Payload.Vector == nil {
		return fmt.Errorf("%w: vector required", errs.ErrInvalidPayload)
	}
	idx := -1
	for i, stone := range st.Stones {
		if stone.ID == a.Payload.StoneID && stone.Owner == c && !stone.Out {
			idx = i
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: no such stone", errs.ErrIllegalMove)
	}
	before := alive(st.Stones, c.Opponent())
	launched := append([]game.PhysStone(nil), st.Stones...)
	launched[idx].Vel = clampSpeed(*a.Payload.Vector)
	size := r.field(s)
	st.Stones = Simulate(launched, size, size)
	st.Flicks[c]++
	st.Meta["last_flick"] = strconv.Itoa(a.Payload.StoneID)
	st.Meta["last_knocked_out"] = strconv.Itoa(before - alive(st.Stones, c.Opponent()))

	mine, theirs := alive(st.Stones, c), alive(st.Stones, c.Opponent())
	if mine > 0 && theirs > 0 {
		r.m.passTurn(s, now)
		return nil
	}
	switch {
	case mine > 0:
		st.RoundWins[c]++
	case theirs > 0:
		st.RoundWins[c.Opponent()]++
	}
	r.m.log.Infow("alkkagi round over", "session", s.ID, "round", st.Round, "wins", st.RoundWins)
	st.Round++
	need := st.MaxRounds/2 + 1
	if st.Round > st.MaxRounds || st.RoundWins[game.Black] >= need || st.RoundWins[game.White] >= need {
		r.m.endWithScores(s, counterScores(st.RoundWins[game.Black], st.RoundWins[game.White]), now)
		return nil
	}
	st.Opener = st.Opener.Opponent()
	r.beginPlacement(s, now)
	return nil
}

func (r *alkkagiRules) expire(s *game.Session, now time.Time) {
	if s.Status != game.StatusAlkkagiPlacement {
		s.PhaseDeadline = time.Time{}
		return
	}
	st := s.Alkkagi
	size := r.field(s)
	for _, p := range s.Participants() {
		spots := st.Placed[p.UserID]
		for tries := 0; len(spots) < st.StonesPerPlayer && tries < 1000; tries++ {
			v := game.Vec{
				X: stoneRadius + float64(r.m.rnd.Intn(1000))/1000*(size-2*stoneRadius),
				Y: stoneRadius + float64(r.m.rnd.Intn(1000))/1000*(size-2*stoneRadius),
			}
			if r.inHalf(s, p.Color, v) && !overlaps(spots, v) {
				spots = append(spots, v)
			}
		}
		st.Placed[p.UserID] = spots
	}
	r.beginPlay(s, now)
}

func (r *alkkagiRules) closeItemWindow(s *game.Session, now time.Time) {
	s.ItemWindow = nil
}
