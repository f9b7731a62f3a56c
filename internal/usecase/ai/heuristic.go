package ai

import (
	"slices"

	"game_arena/internal/domain/game"
	"game_arena/internal/usecase/board"
)

type Kind int

const (
	KindMove Kind = iota
	KindPass
	KindResign
)

type Decision struct {
	Kind  Kind
	Point game.Point
	// Step names the heuristic or source that produced the decision.
	Step string
}

func move(p game.Point, step string) Decision {
	return Decision{Kind: KindMove, Point: p, Step: step}
}

var passDecision = Decision{Kind: KindPass, Point: game.PassPoint, Step: "pass"}

type Random interface {
	Intn(n int) int
}

// Gate decides whether a heuristic step is tried at the given difficulty.
type Gate func(difficulty int) bool

// ProbabilityGate tries a step with probability difficulty/10.
func ProbabilityGate(rnd Random) Gate {
	return func(difficulty int) bool {
		return rnd.Intn(10) < difficulty
	}
}

func AlwaysGate(int) bool { return true }

// position is the per-turn view the heuristic steps share.
type position struct {
	s      *game.Session
	me     game.Color
	index  int
	target int
	legal  []game.Point
	tries  map[game.Point]board.MoveResult
}

func newPosition(s *game.Session, me game.Color) *position {
	p := &position{
		s:      s,
		me:     me,
		index:  len(s.MoveHistory),
		target: s.Settings.CaptureTarget,
		tries:  make(map[game.Point]board.MoveResult),
	}
	for _, pt := range s.Board.EmptyPoints() {
		res := board.AttemptMove(s.Board, game.Move{X: pt.X, Y: pt.Y, Color: me}, s.Ko, p.index, board.Options{})
		if res.Valid {
			p.legal = append(p.legal, pt)
			p.tries[pt] = res
		}
	}
	return p
}

// value counts captured stones the way the engine tallies them.
func (p *position) value(captured []game.Point) int {
	n := 0
	for _, c := range captured {
		if slices.Contains(p.s.PatternStones, c) {
			n += 2
		} else {
			n++
		}
	}
	return n
}

type step struct {
	name string
	try  func(p *position, rnd Random) (game.Point, bool)
}

// cascade is evaluated top to bottom; the first step that passes its gate and
// finds a point wins.
var cascade = []step{
	{"win", tryWin},
	{"block", tryBlock},
	{"max_capture", tryMaxCapture},
	{"atari", tryAtari},
	{"save", trySave},
	{"adjacent", tryAdjacent},
}

type HeuristicBot struct {
	gate Gate
	rnd  Random
}

func NewHeuristicBot(gate Gate, rnd Random) *HeuristicBot {
	return &HeuristicBot{gate: gate, rnd: rnd}
}

// Decide never resigns: with no legal point it passes.
func (h *HeuristicBot) Decide(s *game.Session, me game.Color, difficulty int) Decision {
	p := newPosition(s, me)
	if len(p.legal) == 0 {
		return passDecision
	}
	for _, st := range cascade {
		if !h.gate(difficulty) {
			continue
		}
		if pt, ok := st.try(p, h.rnd); ok {
			return move(pt, st.name)
		}
	}
	return move(p.legal[h.rnd.Intn(len(p.legal))], "random")
}

func tryWin(p *position, _ Random) (game.Point, bool) {
	if p.target <= 0 {
		return game.Point{}, false
	}
	for _, pt := range p.legal {
		if p.s.Captures[p.me]+p.value(p.tries[pt].Captured) >= p.target {
			return pt, true
		}
	}
	return game.Point{}, false
}

// tryBlock occupies the point where the opponent would reach the target.
func tryBlock(p *position, _ Random) (game.Point, bool) {
	if p.target <= 0 {
		return game.Point{}, false
	}
	opp := p.me.Opponent()
	for _, pt := range p.legal {
		res := board.AttemptMove(p.s.Board, game.Move{X: pt.X, Y: pt.Y, Color: opp}, p.s.Ko, p.index, board.Options{})
		if res.Valid && p.s.Captures[opp]+p.value(res.Captured) >= p.target {
			return pt, true
		}
	}
	return game.Point{}, false
}

func tryMaxCapture(p *position, rnd Random) (game.Point, bool) {
	best, bestVal := []game.Point(nil), 0
	for _, pt := range p.legal {
		v := p.value(p.tries[pt].Captured)
		switch {
		case v > bestVal:
			best, bestVal = []game.Point{pt}, v
		case v == bestVal && v > 0:
			best = append(best, pt)
		}
	}
	if len(best) == 0 {
		return game.Point{}, false
	}
	return best[rnd.Intn(len(best))], true
}

// tryAtari leaves an adjacent opponent group with one liberty without putting
// the new stone in atari itself.
func tryAtari(p *position, rnd Random) (game.Point, bool) {
	var out []game.Point
	for _, pt := range p.legal {
		b := p.tries[pt].Board
		if _, libs := board.Group(b, pt); len(libs) < 2 {
			continue
		}
		for _, n := range pt.Neighbors() {
			if !b.InBounds(n) || b.At(n) != p.me.Opponent() {
				continue
			}
			if _, libs := board.Group(b, n); len(libs) == 1 {
				out = append(out, pt)
				break
			}
		}
	}
	if len(out) == 0 {
		return game.Point{}, false
	}
	return out[rnd.Intn(len(out))], true
}

// trySave extends an own group in atari when that gives it room to breathe.
func trySave(p *position, _ Random) (game.Point, bool) {
	seen := make(map[game.Point]bool)
	for y := range p.s.Board {
		for x := range p.s.Board[y] {
			pt := game.Point{X: x, Y: y}
			if p.s.Board.At(pt) != p.me || seen[pt] {
				continue
			}
			stones, libs := board.Group(p.s.Board, pt)
			for _, st := range stones {
				seen[st] = true
			}
			if len(libs) != 1 {
				continue
			}
			res, ok := p.tries[libs[0]]
			if !ok {
				continue
			}
			if _, after := board.Group(res.Board, libs[0]); len(after) >= 2 {
				return libs[0], true
			}
		}
	}
	return game.Point{}, false
}

func tryAdjacent(p *position, rnd Random) (game.Point, bool) {
	var out []game.Point
	for _, pt := range p.legal {
		for _, n := range pt.Neighbors() {
			if p.s.Board.InBounds(n) && p.s.Board.At(n) != game.Empty {
				out = append(out, pt)
				break
			}
		}
	}
	if len(out) == 0 {
		return game.Point{}, false
	}
	return out[rnd.Intn(len(out))], true
}
