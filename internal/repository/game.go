package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"game_arena/internal/domain/game"
	errs "game_arena/internal/errors"
)

const (
	activeSessionsKey = "sessions:active"
	sessionTTL        = 48 * time.Hour
	maxUpdateRetries  = 5
)

func sessionKey(id string) string {
	return "session:" + id
}

// SessionRepository keeps live sessions in Redis as JSON snapshots plus a set of
// active ids. Updates are optimistic transactions over WATCH.
type SessionRepository struct {
	redis *redis.Client
	log   *zap.SugaredLogger
}

func NewSessionRepository(redis *redis.Client, log *zap.SugaredLogger) *SessionRepository {
	return &SessionRepository{redis: redis, log: log}
}

func decodeSession(raw []byte) (*game.Session, error) {
	var s game.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrCorruptSession, err)
	}
	if s.ID == "" || !s.Mode.IsValid() {
		return nil, fmt.Errorf("%w: missing id or mode", errs.ErrCorruptSession)
	}
	return &s, nil
}

func (r *SessionRepository) Save(ctx context.Context, s *game.Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	_, err = r.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, sessionKey(s.ID), raw, sessionTTL)
		pipe.SAdd(ctx, activeSessionsKey, s.ID)
		return nil
	})
	return err
}

// Get returns ErrSessionNotFound for a missing key and ErrCorruptSession for a
// record that does not decode.
func (r *SessionRepository) Get(ctx context.Context, id string) (*game.Session, error) {
	raw, err := r.redis.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, errs.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeSession(raw)
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	_, err := r.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, sessionKey(id))
		pipe.SRem(ctx, activeSessionsKey, id)
		return nil
	})
	return err
}

func (r *SessionRepository) ActiveSessionIDs(ctx context.Context) ([]string, error) {
	return r.redis.SMembers(ctx, activeSessionsKey).Result()
}

// LoadActiveSessions returns every decodable active session. Corrupt records are
// removed and logged; ids whose key has expired are dropped from the set.
func (r *SessionRepository) LoadActiveSessions(ctx context.Context) ([]*game.Session, error) {
	ids, err := r.ActiveSessionIDs(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*game.Session, 0, len(ids))
	for _, id := range ids {
		s, err := r.Get(ctx, id)
		switch {
		case err == nil:
			out = append(out, s)
		case errors.Is(err, errs.ErrSessionNotFound):
			r.redis.SRem(ctx, activeSessionsKey, id)
		case errors.Is(err, errs.ErrCorruptSession):
			r.log.Errorw("discarding corrupt session", "session", id, "error", err)
			if err := r.Delete(ctx, id); err != nil {
				r.log.Errorw("failed to delete corrupt session", "session", id, "error", err)
			}
		default:
			return nil, err
		}
	}
	return out, nil
}

// Update re-reads the session under WATCH, runs fn on it and writes the result
// back. fn returning (nil, nil) means nothing changed. A concurrent write makes
// the transaction fail and fn is retried on the fresh value.
func (r *SessionRepository) Update(ctx context.Context, id string, fn func(*game.Session) (*game.Session, error)) (*game.Session, error) {
	key := sessionKey(id)
	for attempt := 0; attempt < maxUpdateRetries; attempt++ {
		var result *game.Session
		err := r.redis.Watch(ctx, func(tx *redis.Tx) error {
			raw, err := tx.Get(ctx, key).Bytes()
			if errors.Is(err, redis.Nil) {
				return errs.ErrSessionNotFound
			}
			if err != nil {
				return err
			}
			cur, err := decodeSession(raw)
			if err != nil {
				return err
			}
			next, err := fn(cur)
			if err != nil {
				return err
			}
			if next == nil {
				result = cur
				return nil
			}
			newRaw, err := json.Marshal(next)
			if err != nil {
				return err
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, newRaw, sessionTTL)
				return nil
			})
			if err != nil {
				return err
			}
			result = next
			return nil
		}, key)
		if errors.Is(err, redis.TxFailedErr) {
			r.log.Debugw("session changed concurrently, retrying", "session", id)
			continue
		}
		if err != nil {
			return nil, err
		}
		return result, nil
	}
	return nil, errs.ErrConflict
}
