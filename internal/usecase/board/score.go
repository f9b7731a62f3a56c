package board

import "game_arena/internal/domain/game"

type AreaCount struct {
	Stones    int
	Territory int
}

// AreaScore flood-fills empty regions; a region bordered by one color only is that
// color's territory. Used when territory analysis is unavailable.
func AreaScore(b game.Board) map[game.Color]AreaCount {
	out := map[game.Color]AreaCount{game.Black: {}, game.White: {}}
	for c, pts := range Territory(b) {
		ac := out[c]
		ac.Territory = len(pts)
		out[c] = ac
	}
	for _, c := range []game.Color{game.Black, game.White} {
		ac := out[c]
		ac.Stones = b.Count(c)
		out[c] = ac
	}
	return out
}

func Territory(b game.Board) map[game.Color][]game.Point {
	out := make(map[game.Color][]game.Point)
	visited := make(map[game.Point]bool)
	for _, start := range b.EmptyPoints() {
		if visited[start] {
			continue
		}
		region := []game.Point{}
		borders := make(map[game.Color]bool)
		stack := []game.Point{start}
		visited[start] = true
		for len(stack) > 0 {
			p := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			region = append(region, p)
			for _, n := range p.Neighbors() {
				if !b.InBounds(n) {
					continue
				}
				if c := b.At(n); c != game.Empty {
					borders[c] = true
					continue
				}
				if !visited[n] {
					visited[n] = true
					stack = append(stack, n)
				}
			}
		}
		if len(borders) == 1 {
			for c := range borders {
				out[c] = append(out[c], region...)
			}
		}
	}
	return out
}
