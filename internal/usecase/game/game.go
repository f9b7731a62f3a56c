package game

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"game_arena/internal/domain/game"
	errs "game_arena/internal/errors"
	"game_arena/internal/metrics"
	"game_arena/internal/usecase/engine"
)

type SessionStore interface {
	Save(ctx context.Context, s *game.Session) error
	Get(ctx context.Context, id string) (*game.Session, error)
	Update(ctx context.Context, id string, fn func(*game.Session) (*game.Session, error)) (*game.Session, error)
}

type Presence interface {
	Touch(ctx context.Context, userID string, now time.Time) error
}

type UserDirectory interface {
	Nickname(ctx context.Context, userID string) (string, bool)
}

type GameArchive interface {
	Get(ctx context.Context, sessionID string) (*game.ArchivedGame, error)
	ByUser(ctx context.Context, userID string, page int) ([]game.ArchivedGame, error)
}

type GameUseCase struct {
	store    SessionStore
	presence Presence
	users    UserDirectory
	archive  GameArchive
	machine  *engine.Machine
	log      *zap.SugaredLogger

	locks *keyedMutex
	hub   *hub
	now   func() time.Time
}

func NewGameUseCase(store SessionStore, presence Presence, users UserDirectory, archive GameArchive, machine *engine.Machine, log *zap.SugaredLogger) *GameUseCase {
	return &GameUseCase{
		store:    store,
		presence: presence,
		users:    users,
		archive:  archive,
		machine:  machine,
		log:      log,
		locks:    newKeyedMutex(),
		hub:      newHub(),
		now:      time.Now,
	}
}

// Create starts a new session and persists it.
func (g *GameUseCase) Create(ctx context.Context, req game.CreateRequest) (*game.Session, error) {
	s := &game.Session{
		ID:       uuid.NewString(),
		Mode:     req.Mode,
		Status:   game.StatusPending,
		Settings: req.Settings,
		Black:    req.Black,
		White:    req.White,
	}
	for _, p := range []*game.Participant{&s.Black, &s.White} {
		if p.IsAI {
			if p.Nickname == "" {
				p.Nickname = fmt.Sprintf("AI level %d", p.AIDifficulty)
			}
			continue
		}
		if nick, ok := g.users.Nickname(ctx, p.UserID); ok {
			p.Nickname = nick
		}
	}

	started, err := g.machine.Start(s, g.now())
	if err != nil {
		return nil, err
	}
	if err := g.store.Save(ctx, started); err != nil {
		g.log.Errorw("failed to save new session", "session", started.ID, "error", err)
		return nil, err
	}
	g.log.Infow("session created", "session", started.ID, "mode", started.Mode, "black", started.Black.UserID, "white", started.White.UserID)
	return started, nil
}

// Submit applies one action. Actions on the same session are serialized; the
// returned snapshot is what the acting user may see.
func (g *GameUseCase) Submit(ctx context.Context, sessionID string, a game.Action) (*game.Session, error) {
	unlock := g.locks.Lock(sessionID)
	next, err := g.store.Update(ctx, sessionID, func(s *game.Session) (*game.Session, error) {
		return g.machine.Apply(s, a, g.now())
	})
	unlock()

	if err != nil {
		outcome := "error"
		if errs.IsRejected(err) {
			outcome = "rejected"
			g.log.Debugw("action rejected", "session", sessionID, "user", a.UserID, "type", a.Type, "reason", err)
		} else {
			g.log.Errorw("failed to apply action", "session", sessionID, "user", a.UserID, "type", a.Type, "error", err)
		}
		metrics.Actions.WithLabelValues(string(a.Type), outcome).Inc()
		return nil, err
	}
	metrics.Actions.WithLabelValues(string(a.Type), "accepted").Inc()

	if a.Type == game.ActionAcceptRematch {
		if next, err = g.startRematch(ctx, next); err != nil {
			return nil, err
		}
	}
	g.hub.publish(next)
	return next.ViewFor(a.UserID), nil
}

// startRematch opens the follow-up session with colors swapped and links it
// from the finished one.
func (g *GameUseCase) startRematch(ctx context.Context, s *game.Session) (*game.Session, error) {
	if s.Rematch == nil || s.Rematch.NextSessionID != "" {
		return s, nil
	}
	fresh, err := g.Create(ctx, game.CreateRequest{
		Mode:     s.Mode,
		Settings: s.Settings,
		Black:    s.White,
		White:    s.Black,
	})
	if err != nil {
		return nil, err
	}

	unlock := g.locks.Lock(s.ID)
	defer unlock()
	return g.store.Update(ctx, s.ID, func(cur *game.Session) (*game.Session, error) {
		if cur.Rematch == nil || cur.Rematch.NextSessionID != "" {
			return nil, nil
		}
		next := cur.Clone()
		next.Rematch.NextSessionID = fresh.ID
		next.Version++
		next.UpdatedAt = g.now()
		return next, nil
	})
}

// Get returns the snapshot userID may see.
func (g *GameUseCase) Get(ctx context.Context, sessionID, userID string) (*game.Session, error) {
	s, err := g.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.ViewFor(userID), nil
}

// Spectate registers userID as a spectator; participants are left as they are.
func (g *GameUseCase) Spectate(ctx context.Context, sessionID, userID string) (*game.Session, error) {
	unlock := g.locks.Lock(sessionID)
	defer unlock()
	s, err := g.store.Update(ctx, sessionID, func(cur *game.Session) (*game.Session, error) {
		if cur.ColorOf(userID) != game.Empty || slices.Contains(cur.Spectators, userID) {
			return nil, nil
		}
		next := cur.Clone()
		next.Spectators = append(next.Spectators, userID)
		next.Version++
		return next, nil
	})
	if err != nil {
		return nil, err
	}
	return s.ViewFor(userID), nil
}

func (g *GameUseCase) Heartbeat(ctx context.Context, userID string) error {
	return g.presence.Touch(ctx, userID, g.now())
}

// Watch streams every change of the session made by this process. cancel must be called.
func (g *GameUseCase) Watch(sessionID string) (updates <-chan *game.Session, cancel func()) {
	return g.hub.subscribe(sessionID)
}

// Lock and Publish let the server loop share the per-session serialization and
// the update fan-out with player submissions.
func (g *GameUseCase) Lock(sessionID string) func() {
	return g.locks.Lock(sessionID)
}

func (g *GameUseCase) Publish(s *game.Session) {
	g.hub.publish(s)
}

func (g *GameUseCase) Archived(ctx context.Context, sessionID string) (*game.ArchivedGame, error) {
	return g.archive.Get(ctx, sessionID)
}

func (g *GameUseCase) History(ctx context.Context, userID string, page int) ([]game.ArchivedGame, error) {
	return g.archive.ByUser(ctx, userID, page)
}
