package board

import (
	"game_arena/internal/domain/game"
)

const (
	ReasonOutOfBounds = "out_of_bounds"
	ReasonOccupied    = "occupied"
	ReasonSuicide     = "suicide"
	ReasonKo          = "ko"
	ReasonNoColor     = "no_color"
)

type Options struct {
	// IgnoreSuicide lets virtual probes keep a self-capturing stone on the board.
	IgnoreSuicide bool
}

type MoveResult struct {
	Valid    bool
	Board    game.Board
	Captured []game.Point
	Ko       *game.KoInfo
	Reason   string
}

// AttemptMove validates m against b and returns the resulting position.
// b is never modified. A pass (-1,-1) is out of bounds here; callers handle passes.
func AttemptMove(b game.Board, m game.Move, ko *game.KoInfo, moveIndex int, opts Options) MoveResult {
	p := m.Point()
	switch {
	case m.Color != game.Black && m.Color != game.White:
		return MoveResult{Reason: ReasonNoColor}
	case !b.InBounds(p):
		return MoveResult{Reason: ReasonOutOfBounds}
	case b.At(p) != game.Empty:
		return MoveResult{Reason: ReasonOccupied}
	case ko != nil && ko.Turn == moveIndex && ko.Point == p:
		return MoveResult{Reason: ReasonKo}
	}

	next := b.Clone()
	next.Set(p, m.Color)

	var captured []game.Point
	seen := make(map[game.Point]bool)
	for _, n := range p.Neighbors() {
		if !next.InBounds(n) || next.At(n) != m.Color.Opponent() || seen[n] {
			continue
		}
		stones, libs := Group(next, n)
		for _, s := range stones {
			seen[s] = true
		}
		if len(libs) == 0 {
			captured = append(captured, stones...)
		}
	}
	for _, s := range captured {
		next.Set(s, game.Empty)
	}

	own, libs := Group(next, p)
	if len(libs) == 0 && len(captured) == 0 && !opts.IgnoreSuicide {
		return MoveResult{Reason: ReasonSuicide}
	}

	res := MoveResult{Valid: true, Board: next, Captured: captured}
	if len(captured) == 1 && len(own) == 1 && len(libs) == 1 {
		res.Ko = &game.KoInfo{Point: captured[0], Turn: moveIndex + 1}
	}
	return res
}

// Group returns the chain containing p and its liberties.
func Group(b game.Board, p game.Point) (stones []game.Point, liberties []game.Point) {
	if !b.InBounds(p) || b.At(p) == game.Empty {
		return nil, nil
	}
	color := b.At(p)
	visited := map[game.Point]bool{p: true}
	libSeen := make(map[game.Point]bool)
	stack := []game.Point{p}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		stones = append(stones, cur)
		for _, n := range cur.Neighbors() {
			if !b.InBounds(n) {
				continue
			}
			switch b.At(n) {
			case game.Empty:
				if !libSeen[n] {
					libSeen[n] = true
					liberties = append(liberties, n)
				}
			case color:
				if !visited[n] {
					visited[n] = true
					stack = append(stack, n)
				}
			}
		}
	}
	return stones, liberties
}

// Liberties lists the empty points adjacent to any stone of color.
func Liberties(b game.Board, color game.Color) []game.Point {
	var out []game.Point
	seen := make(map[game.Point]bool)
	for y := range b {
		for x := range b[y] {
			p := game.Point{X: x, Y: y}
			if b.At(p) != color {
				continue
			}
			for _, n := range p.Neighbors() {
				if b.InBounds(n) && b.At(n) == game.Empty && !seen[n] {
					seen[n] = true
					out = append(out, n)
				}
			}
		}
	}
	return out
}

func CaptureTargetReached(captures, target int) bool {
	return target > 0 && captures >= target
}

// LegalPoints lists every point where color may play.
func LegalPoints(b game.Board, color game.Color, ko *game.KoInfo, moveIndex int) []game.Point {
	var out []game.Point
	for _, p := range b.EmptyPoints() {
		if AttemptMove(b, game.Move{X: p.X, Y: p.Y, Color: color}, ko, moveIndex, Options{}).Valid {
			out = append(out, p)
		}
	}
	return out
}
