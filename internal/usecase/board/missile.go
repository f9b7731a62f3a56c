package board

import "game_arena/internal/domain/game"

func step(dir game.Direction) (int, int, bool) {
	switch dir {
	case game.DirUp:
		return 0, -1, true
	case game.DirDown:
		return 0, 1, true
	case game.DirLeft:
		return -1, 0, true
	case game.DirRight:
		return 1, 0, true
	}
	return 0, 0, false
}

// MissilePath slides the stone at from along dir until the next point is off the
// board or occupied. ok is false when the stone cannot move at all.
func MissilePath(b game.Board, from game.Point, dir game.Direction) (to game.Point, ok bool) {
	dx, dy, valid := step(dir)
	if !valid || !b.InBounds(from) || b.At(from) == game.Empty {
		return from, false
	}
	to = from
	for {
		next := game.Point{X: to.X + dx, Y: to.Y + dy}
		if !b.InBounds(next) || b.At(next) != game.Empty {
			break
		}
		to = next
	}
	return to, to != from
}

// MissileBlocker returns the point that stops a missile resting at to, if it is on the board.
func MissileBlocker(b game.Board, to game.Point, dir game.Direction) (game.Point, bool) {
	dx, dy, valid := step(dir)
	next := game.Point{X: to.X + dx, Y: to.Y + dy}
	return next, valid && b.InBounds(next)
}

// FireMissile moves the stone and resolves captures at the landing point.
func FireMissile(b game.Board, from game.Point, dir game.Direction, ko *game.KoInfo, moveIndex int) (MoveResult, game.Point) {
	to, ok := MissilePath(b, from, dir)
	if !ok {
		return MoveResult{Reason: ReasonOccupied}, from
	}
	color := b.At(from)
	lifted := b.Clone()
	lifted.Set(from, game.Empty)
	res := AttemptMove(lifted, game.Move{X: to.X, Y: to.Y, Color: color, Kind: game.MoveMissile, From: &from}, ko, moveIndex, Options{})
	res.Ko = nil
	return res, to
}
