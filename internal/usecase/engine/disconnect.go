package engine

import (
	"time"

	"game_arena/internal/domain/game"
	"game_arena/internal/usecase/clock"
)

func (m *Machine) online(s *game.Session, userID string, now time.Time, lastSeen map[string]time.Time) bool {
	seen, ok := lastSeen[userID]
	if !ok || seen.Before(s.CreatedAt) {
		seen = s.CreatedAt
	}
	return now.Sub(seen) <= m.cfg.HeartbeatTimeout
}

func (m *Machine) spectatorOnline(s *game.Session, now time.Time, lastSeen map[string]time.Time) bool {
	for _, id := range s.Spectators {
		if seen, ok := lastSeen[id]; ok && now.Sub(seen) <= m.cfg.HeartbeatTimeout {
			return true
		}
	}
	return false
}

// tickConnectivity pauses on a lapsed heartbeat, resumes on reconnect and forfeits
// after the grace period or on too many disconnects.
func (m *Machine) tickConnectivity(s *game.Session, now time.Time, lastSeen map[string]time.Time) bool {
	var humans, offline []game.Participant
	for _, p := range s.Participants() {
		if p.IsAI {
			continue
		}
		humans = append(humans, p)
		if !m.online(s, p.UserID, now, lastSeen) {
			offline = append(offline, p)
		}
	}

	if len(humans) == 2 && len(offline) == 2 && !m.spectatorOnline(s, now, lastSeen) {
		m.noContest(s, now)
		return true
	}

	if d := s.Disconnection; d != nil {
		if m.online(s, d.DisconnectedPlayerID, now, lastSeen) {
			m.reconnect(s, now)
			return true
		}
		if now.Sub(d.TimerStartedAt) >= m.cfg.DisconnectGrace {
			m.log.Infow("disconnect grace expired", "session", s.ID, "user", d.DisconnectedPlayerID)
			m.forfeitDisconnected(s, d.DisconnectedPlayerID, now)
			return true
		}
		return false
	}

	if len(offline) == 0 {
		return false
	}
	p := offline[0]
	s.DisconnectCounts[p.UserID]++
	if s.DisconnectCounts[p.UserID] > m.cfg.DisconnectForfeit {
		m.log.Infow("repeated disconnect, forfeiting", "session", s.ID, "user", p.UserID, "count", s.DisconnectCounts[p.UserID])
		m.forfeitDisconnected(s, p.UserID, now)
		return true
	}
	s.Disconnection = &game.DisconnectionState{DisconnectedPlayerID: p.UserID, TimerStartedAt: now}
	s.Clock = clock.Pause(s.Clock, now)
	m.log.Infow("player disconnected, clock paused", "session", s.ID, "user", p.UserID)
	return true
}

// reconnect resumes where the session was paused; no deadline loses the paused span.
func (m *Machine) reconnect(s *game.Session, now time.Time) {
	gap := now.Sub(s.Disconnection.TimerStartedAt)
	if gap < 0 {
		gap = 0
	}
	if s.ItemWindow != nil {
		// the main clock stays paused until the window closes
		s.ItemWindow.Deadline = s.ItemWindow.Deadline.Add(gap)
	} else {
		s.Clock = clock.Resume(s.Clock, now)
	}
	if !s.PhaseDeadline.IsZero() {
		s.PhaseDeadline = s.PhaseDeadline.Add(gap)
	}
	m.log.Infow("player reconnected", "session", s.ID, "user", s.Disconnection.DisconnectedPlayerID)
	s.Disconnection = nil
}

func (m *Machine) forfeitDisconnected(s *game.Session, userID string, now time.Time) {
	loser := s.ColorOf(userID)
	winner := loser.Opponent()
	m.end(s, winner, game.ReasonDisconnect, now)
	if len(s.MoveHistory) < m.cfg.NoContestMoveWindow && !s.Player(winner).IsAI {
		s.CanRequestNoContest[s.PlayerID(winner)] = true
		s.NoContestUntil = now.Add(m.cfg.NoContestOffer)
	}
}
