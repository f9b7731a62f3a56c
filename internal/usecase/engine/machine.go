package engine

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"game_arena/internal/domain/game"
	errs "game_arena/internal/errors"
	"game_arena/internal/usecase/clock"
)

type Config struct {
	HeartbeatTimeout    time.Duration
	DisconnectGrace     time.Duration
	DisconnectForfeit   int
	NoContestMoveWindow int
	NoContestOffer      time.Duration
	PhaseTimeout        time.Duration
	ItemUseTimeout      time.Duration
}

// Random is the source for dice, nigiri stones and auto-defaults. It must be safe
// for concurrent use.
type Random interface {
	Intn(n int) int
}

// Machine applies actions and clock events to sessions. It holds no session state;
// every call works on a clone of its input and returns the new value.
type Machine struct {
	cfg Config
	log *zap.SugaredLogger
	rnd Random
}

func NewMachine(cfg Config, log *zap.SugaredLogger, rnd Random) *Machine {
	return &Machine{cfg: cfg, log: log, rnd: rnd}
}

type rules interface {
	start(s *game.Session, now time.Time)
	apply(s *game.Session, a game.Action, c game.Color, now time.Time) error
	// expire auto-completes the current phase once PhaseDeadline has passed.
	expire(s *game.Session, now time.Time)
	// closeItemWindow returns from an item window that ran out of time.
	closeItemWindow(s *game.Session, now time.Time)
}

func (m *Machine) rulesFor(mode game.Mode) rules {
	switch {
	case mode.IsGoFamily():
		return &goRules{m: m}
	case mode.IsLineMode():
		return &omokRules{m: m}
	case mode == game.ModeDice:
		return &diceRules{m: m}
	case mode == game.ModeThief:
		return &thiefRules{m: m}
	case mode == game.ModeAlkkagi:
		return &alkkagiRules{m: m}
	case mode == game.ModeCurling:
		return &curlingRules{m: m}
	}
	return nil
}

// Start validates a pending session and moves it into its first phase.
func (m *Machine) Start(s *game.Session, now time.Time) (*game.Session, error) {
	if s.Status != game.StatusPending {
		return nil, fmt.Errorf("%w: session already started", errs.ErrWrongPhase)
	}
	next := cloneSession(s)
	applyDefaults(next)
	if err := validate(next); err != nil {
		return nil, err
	}
	if next.Settings.Clock.ItemUseTime <= 0 {
		next.Settings.Clock.ItemUseTime = m.cfg.ItemUseTimeout
	}
	if next.Settings.PhaseTimeLimit <= 0 {
		next.Settings.PhaseTimeLimit = m.cfg.PhaseTimeout
	}
	next.Black.Color, next.White.Color = game.Black, game.White
	next.Current = game.Black
	next.Captures = map[game.Color]int{game.Black: 0, game.White: 0}
	next.DisconnectCounts = make(map[string]int)
	next.CanRequestNoContest = make(map[string]bool)
	next.Left = make(map[string]bool)
	next.CreatedAt = now

	m.rulesFor(next.Mode).start(next, now)
	m.touch(next, now)
	m.log.Infow("session started", "session", next.ID, "mode", next.Mode, "status", next.Status)
	return next, nil
}

// Apply runs one player action. On error the input is unchanged and no session is returned.
func (m *Machine) Apply(s *game.Session, a game.Action, now time.Time) (*game.Session, error) {
	if s == nil {
		return nil, errs.ErrSessionNotFound
	}
	if a.Type.IsOutOfBand() {
		return m.applyOutOfBand(s, a, now)
	}
	if s.Status.IsTerminal() {
		return nil, errs.ErrSessionTerminal
	}
	c := s.ColorOf(a.UserID)
	if c == game.Empty {
		return nil, errs.ErrNotParticipant
	}
	if s.Status == game.StatusPending || s.Status == game.StatusScoring {
		return nil, errs.ErrWrongPhase
	}

	next := cloneSession(s)
	if a.Type == game.ActionResign {
		m.end(next, c.Opponent(), game.ReasonResign, now)
		m.touch(next, now)
		return next, nil
	}
	if !s.Status.IsSimultaneous() && a.Turn != s.Turn {
		return nil, fmt.Errorf("%w: action for turn %d, session at %d", errs.ErrStaleAction, a.Turn, s.Turn)
	}
	if s.Status.IsSimultaneous() && a.Turn < s.RoundTurn {
		return nil, fmt.Errorf("%w: action for turn %d, round began at %d", errs.ErrStaleAction, a.Turn, s.RoundTurn)
	}
	if s.Disconnection != nil {
		return nil, errs.ErrSessionPaused
	}
	if s.Clock.Running == c && clock.Expired(s.Clock, now) {
		return nil, errs.ErrTimeExpired
	}

	if err := m.rulesFor(s.Mode).apply(next, a, c, now); err != nil {
		return nil, err
	}
	m.touch(next, now)
	return next, nil
}

func (m *Machine) touch(s *game.Session, now time.Time) {
	s.Turn++
	s.Version++
	s.UpdatedAt = now
}

func (m *Machine) applyOutOfBand(s *game.Session, a game.Action, now time.Time) (*game.Session, error) {
	c := s.ColorOf(a.UserID)
	next := cloneSession(s)
	switch a.Type {
	case game.ActionLeave:
		if c == game.Empty {
			next.Spectators = removeString(next.Spectators, a.UserID)
			break
		}
		if !s.Status.IsTerminal() && s.Status != game.StatusPending {
			m.end(next, c.Opponent(), game.ReasonResign, now)
		}
		next.Left[a.UserID] = true
	case game.ActionRematch:
		if c == game.Empty {
			return nil, errs.ErrNotParticipant
		}
		if s.Status != game.StatusEnded && s.Status != game.StatusNoContest {
			return nil, errs.ErrWrongPhase
		}
		next.Rematch = &game.RematchState{RequestedBy: a.UserID}
		next.Status = game.StatusRematchPending
	case game.ActionAcceptRematch:
		if c == game.Empty {
			return nil, errs.ErrNotParticipant
		}
		if s.Status != game.StatusRematchPending || s.Rematch == nil || s.Rematch.RequestedBy == a.UserID || s.Rematch.Accepted {
			return nil, errs.ErrWrongPhase
		}
		next.Rematch.Accepted = true
	case game.ActionRequestNoContest:
		if !s.CanRequestNoContest[a.UserID] || s.StatsUpdated || (!s.NoContestUntil.IsZero() && !now.Before(s.NoContestUntil)) {
			return nil, errs.ErrWrongPhase
		}
		m.noContest(next, now)
	default:
		return nil, errs.ErrUnknownAction
	}
	m.touch(next, now)
	return next, nil
}

// Tick applies clock events: disconnection handling, item-window and phase
// deadlines, and turn timeouts. changed is false when nothing happened.
func (m *Machine) Tick(s *game.Session, now time.Time, lastSeen map[string]time.Time) (next *game.Session, changed bool) {
	if s.Status.IsTerminal() || s.Status == game.StatusPending {
		return s, false
	}
	next = cloneSession(s)

	changed = m.tickConnectivity(next, now, lastSeen)
	if next.Status.IsTerminal() || next.Disconnection != nil {
		if changed {
			m.touch(next, now)
		}
		return next, changed
	}

	r := m.rulesFor(next.Mode)
	if next.ItemWindow != nil && !now.Before(next.ItemWindow.Deadline) {
		m.log.Infow("item window expired", "session", next.ID, "item", next.ItemWindow.Kind)
		r.closeItemWindow(next, now)
		changed = true
	}
	if !next.PhaseDeadline.IsZero() && !now.Before(next.PhaseDeadline) && !next.Status.IsTerminal() {
		m.log.Infow("phase deadline passed, applying defaults", "session", next.ID, "status", next.Status)
		r.expire(next, now)
		changed = true
	}
	if !next.Status.IsTerminal() && next.Status != game.StatusScoring && clock.Expired(next.Clock, now) {
		loser := next.Clock.Running
		if clock.IsTimedOut(clock.Project(next.Clock, loser, now)) {
			next.Clock.SetPlayer(loser, clock.Project(next.Clock, loser, now))
			m.end(next, loser.Opponent(), game.ReasonTimeout, now)
			changed = true
		}
	}

	if changed {
		m.touch(next, now)
	}
	return next, changed
}

// FinishScoring ends a session sitting in scoring with the computed breakdowns.
func (m *Machine) FinishScoring(s *game.Session, scores map[game.Color]game.ScoreBreakdown, now time.Time) (*game.Session, error) {
	if s.Status != game.StatusScoring {
		return nil, errs.ErrWrongPhase
	}
	next := cloneSession(s)
	m.endWithScores(next, scores, now)
	m.touch(next, now)
	return next, nil
}

func (m *Machine) end(s *game.Session, winner game.Color, reason game.WinReason, now time.Time) {
	s.Status = game.StatusEnded
	res := &game.Result{Winner: winner, Reason: reason, EndedAt: now}
	if winner != game.Empty {
		res.WinnerID = s.PlayerID(winner)
	}
	if s.Result != nil && s.Result.Scores != nil {
		res.Scores = s.Result.Scores
	}
	s.Result = res
	m.stopClock(s)
	m.log.Infow("session ended", "session", s.ID, "winner", winner.String(), "reason", reason)
}

func (m *Machine) endWithScores(s *game.Session, scores map[game.Color]game.ScoreBreakdown, now time.Time) {
	winner := game.Empty
	switch b, w := scores[game.Black].Total, scores[game.White].Total; {
	case b > w:
		winner = game.Black
	case w > b:
		winner = game.White
	}
	s.Result = &game.Result{Scores: scores}
	m.end(s, winner, game.ReasonScore, now)
}

func (m *Machine) noContest(s *game.Session, now time.Time) {
	m.stopClock(s)
	s.Status = game.StatusNoContest
	s.Result = &game.Result{Winner: game.Empty, Reason: game.ReasonNoContest, EndedAt: now}
	s.CanRequestNoContest = make(map[string]bool)
	s.NoContestUntil = time.Time{}
	m.log.Infow("session voided", "session", s.ID)
}

func (m *Machine) stopClock(s *game.Session) {
	s.Clock.Running = game.Empty
	s.Clock.TurnDeadline = time.Time{}
	s.Clock.Paused = false
	s.Clock.PausedAt = time.Time{}
	s.ItemWindow = nil
	s.PhaseDeadline = time.Time{}
	s.Disconnection = nil
}

func (m *Machine) startClock(s *game.Session, first game.Color, now time.Time) {
	s.Current = first
	s.Clock = clock.StartTurn(clock.NewTurnClock(s.Settings.Clock), first, now)
}

// passTurn charges the mover and starts the opponent's turn.
func (m *Machine) passTurn(s *game.Session, now time.Time) {
	m.handTurn(s, s.Current.Opponent(), now)
}

func (m *Machine) handTurn(s *game.Session, to game.Color, now time.Time) {
	s.Clock = clock.CompleteMove(s.Clock, s.Current, now)
	s.Current = to
	s.Clock = clock.StartTurn(s.Clock, to, now)
}

func (m *Machine) phaseDeadline(s *game.Session, now time.Time) time.Time {
	return now.Add(s.Settings.PhaseTimeLimit)
}

func (m *Machine) roll() int {
	return m.rnd.Intn(6) + 1
}

func removeString(list []string, v string) []string {
	out := list[:0:0]
	for _, x := range list {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}

// cloneSession copies s and restores maps that a JSON round trip drops when empty.
func cloneSession(s *game.Session) *game.Session {
	c := s.Clone()
	if c.Captures == nil {
		c.Captures = map[game.Color]int{game.Black: 0, game.White: 0}
	}
	if c.DisconnectCounts == nil {
		c.DisconnectCounts = make(map[string]int)
	}
	if c.CanRequestNoContest == nil {
		c.CanRequestNoContest = make(map[string]bool)
	}
	if c.Left == nil {
		c.Left = make(map[string]bool)
	}
	return c
}
