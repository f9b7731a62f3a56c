package game

import "slices"

// ViewFor returns the snapshot userID is allowed to see: the opponent's unrevealed
// hidden stones, pre-placements and undecided simultaneous choices are stripped.
// Spectators see the board without any hidden stone.
func (s *Session) ViewFor(userID string) *Session {
	v := s.Clone()
	me := v.ColorOf(userID)
	if v.Status.IsTerminal() {
		return v
	}

	if v.Hidden != nil {
		for c, pts := range v.Hidden.Stones {
			if c == me {
				continue
			}
			for _, p := range pts {
				if v.Board.InBounds(p) && v.Board.At(p) == c {
					v.Board.Set(p, Empty)
				}
			}
			maskHiddenMoves(v.MoveHistory, c, pts)
			delete(v.Hidden.Stones, c)
		}
		for id := range v.Hidden.PrePlaced {
			if id != userID {
				delete(v.Hidden.PrePlaced, id)
			}
		}
	}
	if v.Base != nil {
		for id := range v.Base.Placed {
			if id != userID {
				delete(v.Base.Placed, id)
			}
		}
	}
	if v.Setup != nil {
		v.Setup.NigiriStones = 0
		if v.Status == StatusRPS {
			for id := range v.Setup.Choices {
				if id != userID {
					v.Setup.Choices[id] = ""
				}
			}
		}
	}
	if v.Bidding != nil {
		for id := range v.Bidding.Bids {
			if id != userID {
				v.Bidding.Bids[id] = 0
			}
		}
	}
	if v.Alkkagi != nil && v.Status == StatusAlkkagiPlacement {
		for id := range v.Alkkagi.Placed {
			if id != userID {
				delete(v.Alkkagi.Placed, id)
			}
		}
	}
	return v
}

// maskHiddenMoves keeps the turn visible in the history but drops the point of
// every hidden placement by c that is still unrevealed.
func maskHiddenMoves(history []Move, c Color, unrevealed []Point) {
	for i, mv := range history {
		if mv.Kind == MoveHidden && mv.Color == c && slices.Contains(unrevealed, mv.Point()) {
			history[i].X, history[i].Y = PassPoint.X, PassPoint.Y
		}
	}
}
