package board

import "game_arena/internal/domain/game"

var lineDirections = [4][2]int{{1, 0}, {0, 1}, {1, 1}, {1, -1}}

func countDirection(b game.Board, p game.Point, dx, dy int, c game.Color) int {
	n := 0
	q := game.Point{X: p.X + dx, Y: p.Y + dy}
	for b.InBounds(q) && b.At(q) == c {
		n++
		q = game.Point{X: q.X + dx, Y: q.Y + dy}
	}
	return n
}

// LineLength is the longest contiguous run through p in any direction.
func LineLength(b game.Board, p game.Point) int {
	if !b.InBounds(p) || b.At(p) == game.Empty {
		return 0
	}
	c := b.At(p)
	best := 0
	for _, d := range lineDirections {
		n := 1 + countDirection(b, p, d[0], d[1], c) + countDirection(b, p, -d[0], -d[1], c)
		best = max(best, n)
	}
	return best
}

// IsFiveInRow reports a winning line through the stone at p.
func IsFiveInRow(b game.Board, p game.Point, winLength int, allowOverline bool) bool {
	if !b.InBounds(p) || b.At(p) == game.Empty {
		return false
	}
	c := b.At(p)
	for _, d := range lineDirections {
		n := 1 + countDirection(b, p, d[0], d[1], c) + countDirection(b, p, -d[0], -d[1], c)
		if n == winLength || (allowOverline && n > winLength) {
			return true
		}
	}
	return false
}

func IsOverline(b game.Board, p game.Point, winLength int) bool {
	return LineLength(b, p) > winLength
}

// IsDoubleThree reports whether placing color at p creates two open threes.
func IsDoubleThree(b game.Board, p game.Point, color game.Color) bool {
	if !b.InBounds(p) || b.At(p) != game.Empty {
		return false
	}
	probe := b.Clone()
	probe.Set(p, color)
	open := 0
	for _, d := range lineDirections {
		if isOpenThree(probe, p, d[0], d[1], color) {
			open++
		}
	}
	return open >= 2
}

func isOpenThree(b game.Board, p game.Point, dx, dy int, color game.Color) bool {
	const span = 5
	var line [2*span + 1]byte
	for i := -span; i <= span; i++ {
		q := game.Point{X: p.X + i*dx, Y: p.Y + i*dy}
		switch {
		case !b.InBounds(q):
			line[i+span] = 'O'
		case b.At(q) == game.Empty:
			line[i+span] = '_'
		case b.At(q) == color:
			line[i+span] = 'X'
		default:
			line[i+span] = 'O'
		}
	}
	covers := func(start, width int) bool { return span >= start && span < start+width }

	// _XXX_
	for s := 0; s+5 <= len(line); s++ {
		if covers(s, 5) && string(line[s:s+5]) == "_XXX_" {
			return true
		}
	}
	// _XX_X_ and _X_XX_
	for s := 0; s+6 <= len(line); s++ {
		if !covers(s, 6) {
			continue
		}
		w := string(line[s : s+6])
		if w == "_XX_X_" || w == "_X_XX_" {
			return true
		}
	}
	return false
}

// PairCaptures returns opponent stones sandwiched in pairs by a stone just placed at p.
func PairCaptures(b game.Board, p game.Point) []game.Point {
	if !b.InBounds(p) || b.At(p) == game.Empty {
		return nil
	}
	me := b.At(p)
	opp := me.Opponent()
	var out []game.Point
	seen := make(map[game.Point]bool)
	for _, d := range lineDirections {
		for _, sign := range [2]int{1, -1} {
			dx, dy := d[0]*sign, d[1]*sign
			a := game.Point{X: p.X + dx, Y: p.Y + dy}
			c := game.Point{X: p.X + 2*dx, Y: p.Y + 2*dy}
			end := game.Point{X: p.X + 3*dx, Y: p.Y + 3*dy}
			if !b.InBounds(end) {
				continue
			}
			if b.At(a) == opp && b.At(c) == opp && b.At(end) == me {
				for _, q := range []game.Point{a, c} {
					if !seen[q] {
						seen[q] = true
						out = append(out, q)
					}
				}
			}
		}
	}
	return out
}
