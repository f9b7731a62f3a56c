package repo

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const presenceKey = "presence"

// RedisPresence records heartbeats in a sorted set scored by unix milliseconds.
type RedisPresence struct {
	client *redis.Client
}

func NewRedisPresence(redis *redis.Client) *RedisPresence {
	return &RedisPresence{client: redis}
}

func (p *RedisPresence) Touch(ctx context.Context, userID string, now time.Time) error {
	return p.client.ZAdd(ctx, presenceKey, redis.Z{Score: float64(now.UnixMilli()), Member: userID}).Err()
}

// LastSeen returns the last heartbeat of each id that has one.
func (p *RedisPresence) LastSeen(ctx context.Context, userIDs []string) (map[string]time.Time, error) {
	out := make(map[string]time.Time, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	scores, err := p.client.ZMScore(ctx, presenceKey, userIDs...).Result()
	if err != nil {
		return nil, err
	}
	for i, sc := range scores {
		if sc == 0 {
			continue
		}
		out[userIDs[i]] = time.UnixMilli(int64(sc))
	}
	return out, nil
}

// Prune drops heartbeats older than cutoff.
func (p *RedisPresence) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	return p.client.ZRemRangeByScore(ctx, presenceKey, "-inf", strconv.FormatInt(cutoff.UnixMilli(), 10)).Result()
}
