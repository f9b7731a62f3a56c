package repo

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"game_arena/internal/domain/game"
)

// RedisSummaryPublisher sends each summary record as one JSON message on a channel
// the reward service subscribes to.
type RedisSummaryPublisher struct {
	client  *redis.Client
	channel string
	log     *zap.SugaredLogger
}

func NewRedisSummaryPublisher(client *redis.Client, channel string, log *zap.SugaredLogger) *RedisSummaryPublisher {
	return &RedisSummaryPublisher{client: client, channel: channel, log: log}
}

func (p *RedisSummaryPublisher) Publish(ctx context.Context, records []game.SummaryRecord) error {
	pipe := p.client.TxPipeline()
	for _, r := range records {
		raw, err := json.Marshal(r)
		if err != nil {
			return err
		}
		pipe.Publish(ctx, p.channel, raw)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}
	p.log.Debugw("published summaries", "channel", p.channel, "count", len(records))
	return nil
}
