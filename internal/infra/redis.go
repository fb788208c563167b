package infra

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// NewRedis connects to the notification queue. Every worker holds one
// connection in a blocking BRPOP, so the pool is sized to the worker count
// plus headroom for enqueues and health checks.
func NewRedis(redisURL string, workers int) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}
	if need := workers + 10; opts.PoolSize < need {
		opts.PoolSize = need
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", opts.Addr, err)
	}

	log.Info().Str("addr", opts.Addr).Int("db", opts.DB).Int("pool_size", opts.PoolSize).Msg("redis connected")
	return rdb, nil
}
