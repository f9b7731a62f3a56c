package repo

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	errs "game_arena/internal/errors"
)

const loginSessionTTL = 11 * time.Hour

// RedisLoginSessions maps login session cookies, written by the account service,
// to user ids.
type RedisLoginSessions struct {
	client *redis.Client
}

func NewRedisLoginSessions(redis *redis.Client) *RedisLoginSessions {
	return &RedisLoginSessions{client: redis}
}

func loginKey(sessionID string) string {
	return "login:" + sessionID
}

func (r *RedisLoginSessions) UserID(ctx context.Context, sessionID string) (string, error) {
	v, err := r.client.Get(ctx, loginKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", errs.ErrUnauthorized
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

func (r *RedisLoginSessions) Store(ctx context.Context, sessionID, userID string) error {
	return r.client.Set(ctx, loginKey(sessionID), userID, loginSessionTTL).Err()
}

func (r *RedisLoginSessions) Delete(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, loginKey(sessionID)).Err()
}
