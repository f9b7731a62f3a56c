package engine

import (
	"math"
	"slices"

	"game_arena/internal/domain/game"
)

const (
	stoneRadius = 0.45
	physStep    = 0.02
	// friction is a constant deceleration in units per second squared.
	friction  = 1.5
	restSpeed = 0.01
	maxSteps  = 10000
	maxSpeed  = 12.0
)

// Simulate moves stones until all of them rest or leave the width x height field.
// Collisions are elastic between equal masses. The input slice is not modified.
func Simulate(stones []game.PhysStone, width, height float64) []game.PhysStone {
	out := slices.Clone(stones)
	for step := 0; step < maxSteps; step++ {
		moving := false
		for i := range out {
			st := &out[i]
			if st.Out {
				continue
			}
			speed := math.Hypot(st.Vel.X, st.Vel.Y)
			if speed < restSpeed {
				st.Vel = game.Vec{}
				continue
			}
			moving = true
			dec := friction * physStep
			if dec >= speed {
				st.Vel = game.Vec{}
			} else {
				k := (speed - dec) / speed
				st.Vel.X *= k
				st.Vel.Y *= k
			}
			st.Pos.X += st.Vel.X * physStep
			st.Pos.Y += st.Vel.Y * physStep
		}
		collide(out)
		for i := range out {
			p := out[i].Pos
			if !out[i].Out && (p.X < 0 || p.X > width || p.Y < 0 || p.Y > height) {
				out[i].Out = true
				out[i].Vel = game.Vec{}
			}
		}
		if !moving {
			break
		}
	}
	return out
}

func collide(stones []game.PhysStone) {
	for i := range stones {
		for j := i + 1; j < len(stones); j++ {
			a, b := &stones[i], &stones[j]
			if a.Out || b.Out {
				continue
			}
			dx, dy := b.Pos.X-a.Pos.X, b.Pos.Y-a.Pos.Y
			d := math.Hypot(dx, dy)
			if d >= 2*stoneRadius || d == 0 {
				continue
			}
			nx, ny := dx/d, dy/d
			// equal masses exchange the velocity component along the normal
			rv := (a.Vel.X-b.Vel.X)*nx + (a.Vel.Y-b.Vel.Y)*ny
			if rv > 0 {
				a.Vel.X -= rv * nx
				a.Vel.Y -= rv * ny
				b.Vel.X += rv * nx
				b.Vel.Y += rv * ny
			}
			overlap := (2*stoneRadius - d) / 2
			a.Pos.X -= nx * overlap
			a.Pos.Y -= ny * overlap
			b.Pos.X += nx * overlap
			b.Pos.Y += ny * overlap
		}
	}
}

// clampSpeed caps a launch vector at maxSpeed.
func clampSpeed(v game.Vec) game.Vec {
	s := math.Hypot(v.X, v.Y)
	if s <= maxSpeed || s == 0 {
		return v
	}
	return game.Vec{X: v.X / s * maxSpeed, Y: v.Y / s * maxSpeed}
}

func alive(stones []game.PhysStone, owner game.Color) int {
	n := 0
	for _, st := range stones {
		if st.Owner == owner && !st.Out {
			n++
		}
	}
	return n
}
