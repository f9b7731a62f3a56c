package engine

import (
	"slices"
	"time"

	"game_arena/internal/domain/game"
)

// tallyCaptures credits capturer with the removed stones. A stone removed from a
// pattern point counts twice; this holds for every mode that counts captures.
func tallyCaptures(s *game.Session, capturer game.Color, captured []game.Point) int {
	pts := 0
	for _, p := range captured {
		if slices.Contains(s.PatternStones, p) {
			pts += 2
		} else {
			pts++
		}
	}
	s.Captures[capturer] += pts
	return pts
}

func (m *Machine) placePatternStones(s *game.Session) {
	n := s.Settings.PatternStones
	size := s.Settings.BoardSize
	s.PatternStones = nil
	for len(s.PatternStones) < n && len(s.PatternStones) < size*size {
		p := game.Point{X: m.rnd.Intn(size), Y: m.rnd.Intn(size)}
		if !slices.Contains(s.PatternStones, p) {
			s.PatternStones = append(s.PatternStones, p)
		}
	}
}

func (m *Machine) randomEmpty(b game.Board) (game.Point, bool) {
	empty := b.EmptyPoints()
	if len(empty) == 0 {
		return game.Point{}, false
	}
	return empty[m.rnd.Intn(len(empty))], true
}

// randomFrom picks n distinct points from candidates, skipping any in taken.
func (m *Machine) randomFrom(candidates []game.Point, n int, taken []game.Point) []game.Point {
	pool := make([]game.Point, 0, len(candidates))
	for _, p := range candidates {
		if !slices.Contains(taken, p) {
			pool = append(pool, p)
		}
	}
	var out []game.Point
	for len(out) < n && len(pool) > 0 {
		i := m.rnd.Intn(len(pool))
		out = append(out, pool[i])
		pool = slices.Delete(pool, i, i+1)
	}
	return out
}

func appendHistory(s *game.Session, mv game.Move) {
	s.MoveHistory = append(s.MoveHistory, mv)
}

func (m *Machine) openPhase(s *game.Session, status game.Status, now time.Time) {
	s.Status = status
	m.restartRound(s, now)
}

// restartRound resets the phase deadline and the round start. Callers run
// before touch, so the round begins at the turn touch is about to set.
func (m *Machine) restartRound(s *game.Session, now time.Time) {
	s.PhaseDeadline = m.phaseDeadline(s, now)
	s.RoundTurn = s.Turn + 1
}
