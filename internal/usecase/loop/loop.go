package loop

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"game_arena/internal/domain/game"
	errs "game_arena/internal/errors"
	"game_arena/internal/metrics"
	"game_arena/internal/usecase/engine"
)

// presenceRetention bounds how long a silent user's last heartbeat is kept.
const presenceRetention = time.Hour

type SessionStore interface {
	ActiveSessionIDs(ctx context.Context) ([]string, error)
	Get(ctx context.Context, id string) (*game.Session, error)
	Update(ctx context.Context, id string, fn func(*game.Session) (*game.Session, error)) (*game.Session, error)
	Delete(ctx context.Context, id string) error
}

type Presence interface {
	LastSeen(ctx context.Context, userIDs []string) (map[string]time.Time, error)
	Prune(ctx context.Context, cutoff time.Time) (int64, error)
}

// Sessions is the live side of the session service: per-session locking shared
// with player submissions and the fan-out to connected clients.
type Sessions interface {
	Lock(sessionID string) func()
	Publish(s *game.Session)
}

type AIPlayer interface {
	Act(ctx context.Context, s *game.Session) (game.Action, bool)
}

type Scorer interface {
	Score(ctx context.Context, s *game.Session) map[game.Color]game.ScoreBreakdown
}

type Emitter interface {
	Emit(ctx context.Context, s *game.Session) (*game.Session, error)
}

type Loop struct {
	store    SessionStore
	presence Presence
	sessions Sessions
	machine  *engine.Machine
	ai       AIPlayer
	scorer   Scorer
	emitter  Emitter
	interval time.Duration
	log      *zap.SugaredLogger
	now      func() time.Time
}

func NewLoop(store SessionStore, presence Presence, sessions Sessions, machine *engine.Machine, ai AIPlayer, scorer Scorer, emitter Emitter, interval time.Duration, log *zap.SugaredLogger) *Loop {
	return &Loop{
		store:    store,
		presence: presence,
		sessions: sessions,
		machine:  machine,
		ai:       ai,
		scorer:   scorer,
		emitter:  emitter,
		interval: interval,
		log:      log,
		now:      time.Now,
	}
}

// Run ticks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()
	l.log.Infow("server loop started", "interval", l.interval)
	for {
		select {
		case <-ctx.Done():
			l.log.Info("server loop stopped")
			return
		case <-ticker.C:
			l.Tick(ctx)
		}
	}
}

// Tick advances every active session once. A failing session is logged and
// skipped; it never stops the others.
func (l *Loop) Tick(ctx context.Context) {
	started := time.Now()
	defer func() {
		metrics.Ticks.Inc()
		metrics.TickDuration.Observe(time.Since(started).Seconds())
	}()

	ids, err := l.store.ActiveSessionIDs(ctx)
	if err != nil {
		l.log.Errorw("failed to list active sessions", "error", err)
		return
	}
	metrics.ActiveSessions.Set(float64(len(ids)))

	for _, id := range ids {
		if ctx.Err() != nil {
			return
		}
		if err := l.step(ctx, id); err != nil {
			l.log.Errorw("session step failed", "session", id, "error", err)
		}
	}

	if _, err := l.presence.Prune(ctx, l.now().Add(-presenceRetention)); err != nil {
		l.log.Warnw("failed to prune presence", "error", err)
	}
}

func (l *Loop) step(ctx context.Context, id string) error {
	s, err := l.store.Get(ctx, id)
	switch {
	case errors.Is(err, errs.ErrCorruptSession):
		metrics.CorruptSessions.Inc()
		l.log.Errorw("discarding corrupt session", "session", id, "error", err)
		return l.store.Delete(ctx, id)
	case errors.Is(err, errs.ErrSessionNotFound):
		return nil
	case err != nil:
		return err
	}

	lastSeen, err := l.presence.LastSeen(ctx, watchers(s))
	if err != nil {
		return err
	}
	now := l.now()

	s, err = l.update(ctx, id, func(cur *game.Session) (*game.Session, error) {
		next, changed := l.machine.Tick(cur, now, lastSeen)
		if !changed {
			return nil, nil
		}
		return next, nil
	})
	if err != nil {
		return err
	}

	if s, err = l.playAI(ctx, s); err != nil {
		return err
	}
	if s.Status == game.StatusScoring {
		if s, err = l.finishScoring(ctx, s); err != nil {
			return err
		}
	}
	if engine.ReadyForSummary(s, now) {
		if s, err = l.emit(ctx, s); err != nil {
			return err
		}
	}

	if l.machine.Collectable(s, now, lastSeen) {
		if err := l.store.Delete(ctx, id); err != nil {
			return err
		}
		l.log.Infow("session collected", "session", id, "status", s.Status)
	}
	return nil
}

// playAI lets an AI participant act. The decision is taken on a snapshot; the
// action carries its turn, so a session that moved on meanwhile rejects it as stale.
func (l *Loop) playAI(ctx context.Context, s *game.Session) (*game.Session, error) {
	a, ok := l.ai.Act(ctx, s)
	if !ok {
		return s, nil
	}
	next, err := l.update(ctx, s.ID, func(cur *game.Session) (*game.Session, error) {
		return l.machine.Apply(cur, a, l.now())
	})
	if errs.IsRejected(err) {
		metrics.Actions.WithLabelValues(string(a.Type), "rejected").Inc()
		l.log.Warnw("ai action rejected", "session", s.ID, "user", a.UserID, "type", a.Type, "reason", err)
		return s, nil
	}
	if err != nil {
		return nil, err
	}
	metrics.Actions.WithLabelValues(string(a.Type), "accepted").Inc()
	return next, nil
}

func (l *Loop) finishScoring(ctx context.Context, s *game.Session) (*game.Session, error) {
	scores := l.scorer.Score(ctx, s)
	version := s.Version
	return l.update(ctx, s.ID, func(cur *game.Session) (*game.Session, error) {
		if cur.Version != version || cur.Status != game.StatusScoring {
			return nil, nil
		}
		return l.machine.FinishScoring(cur, scores, l.now())
	})
}

// emit hands the summary over and then persists the flag. A failure leaves the
// flag unset so the next tick tries again.
func (l *Loop) emit(ctx context.Context, s *game.Session) (*game.Session, error) {
	if _, err := l.emitter.Emit(ctx, s); err != nil {
		return nil, err
	}
	return l.update(ctx, s.ID, func(cur *game.Session) (*game.Session, error) {
		if cur.StatsUpdated {
			return nil, nil
		}
		next := cur.Clone()
		next.StatsUpdated = true
		next.Version++
		return next, nil
	})
}

// update runs fn under the session lock and publishes the result when it changed.
func (l *Loop) update(ctx context.Context, id string, fn func(*game.Session) (*game.Session, error)) (*game.Session, error) {
	unlock := l.sessions.Lock(id)
	var before int64 = -1
	next, err := l.store.Update(ctx, id, func(cur *game.Session) (*game.Session, error) {
		before = cur.Version
		return fn(cur)
	})
	unlock()
	if err != nil {
		return nil, err
	}
	if next.Version != before {
		l.sessions.Publish(next)
	}
	return next, nil
}

// watchers lists the humans whose heartbeat matters for s.
func watchers(s *game.Session) []string {
	ids := make([]string, 0, 2+len(s.Spectators))
	for _, p := range s.Participants() {
		if !p.IsAI {
			ids = append(ids, p.UserID)
		}
	}
	return append(ids, s.Spectators...)
}
