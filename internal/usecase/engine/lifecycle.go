package engine

import (
	"time"

	"game_arena/internal/domain/game"
)

// AwaitingAction lists the participants the session is waiting on right now.
func AwaitingAction(s *game.Session) []string {
	if s.Status.IsTerminal() || s.Status == game.StatusPending || s.Status == game.StatusScoring {
		return nil
	}
	if s.Disconnection != nil {
		return nil
	}
	var out []string
	switch s.Status {
	case game.StatusNigiri:
		if s.Setup != nil {
			if s.Setup.NigiriHolder == s.Black.UserID {
				return []string{s.White.UserID}
			}
			return []string{s.Black.UserID}
		}
	case game.StatusRPS:
		for _, p := range s.Participants() {
			if _, ok := s.Setup.Choices[p.UserID]; !ok {
				out = append(out, p.UserID)
			}
		}
		return out
	case game.StatusTurnRoll:
		for _, p := range s.Participants() {
			if _, ok := s.Setup.Rolls[p.UserID]; !ok {
				out = append(out, p.UserID)
			}
		}
		return out
	case game.StatusBasePlacement:
		for _, p := range s.Participants() {
			if len(s.Base.Placed[p.UserID]) < s.Settings.BaseStones {
				out = append(out, p.UserID)
			}
		}
		return out
	case game.StatusKomiBidding:
		for _, p := range s.Participants() {
			if _, ok := s.Bidding.Bids[p.UserID]; !ok {
				out = append(out, p.UserID)
			}
		}
		return out
	case game.StatusHiddenPrePlacement:
		for _, p := range s.Participants() {
			if len(s.Hidden.PrePlaced[p.UserID]) < s.Settings.PreHiddenStones {
				out = append(out, p.UserID)
			}
		}
		return out
	case game.StatusAlkkagiPlacement:
		for _, p := range s.Participants() {
			if len(s.Alkkagi.Placed[p.UserID]) < s.Alkkagi.StonesPerPlayer {
				out = append(out, p.UserID)
			}
		}
		return out
	case game.StatusThiefRolling, game.StatusThiefPlacing:
		if s.Thief.Acting == game.RoleThief {
			return []string{s.Thief.ThiefID}
		}
		return []string{s.Thief.PoliceID}
	}
	return []string{s.PlayerID(s.Current)}
}

// ReadyForSummary reports a terminal session whose summary has not been emitted
// and whose no-contest offer, if any, has run out.
func ReadyForSummary(s *game.Session, now time.Time) bool {
	if !s.Status.IsTerminal() || s.StatsUpdated {
		return false
	}
	for _, pending := range s.CanRequestNoContest {
		if pending && now.Before(s.NoContestUntil) {
			return false
		}
	}
	return true
}

// Collectable reports a finished session nobody is connected to anymore.
func (m *Machine) Collectable(s *game.Session, now time.Time, lastSeen map[string]time.Time) bool {
	if !s.Status.IsTerminal() || !s.StatsUpdated {
		return false
	}
	for _, p := range s.Participants() {
		if p.IsAI || s.Left[p.UserID] {
			continue
		}
		if seen, ok := lastSeen[p.UserID]; ok && now.Sub(seen) <= m.cfg.HeartbeatTimeout {
			return false
		}
	}
	return !m.spectatorOnline(s, now, lastSeen)
}
