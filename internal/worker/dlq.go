package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Dead letters are kept per source queue in the Redis list dlq:{queue},
// newest first, for manual inspection.
const (
	DLQPrefix = "dlq:"
	// dlqCap bounds each list; older letters are trimmed.
	dlqCap = 1000
)

// DeadLetter is a job that will not be retried.
type DeadLetter struct {
	Queue          string          `json:"original_queue"`
	JobType        string          `json:"job_type"`
	NotificationID string          `json:"notification_id,omitempty"`
	Payload        json.RawMessage `json:"payload"`
	Reason         string          `json:"reason"`
	Attempts       int             `json:"attempts"`
	FailedAt       time.Time       `json:"failed_at"`
}

// SendToDLQ records a dead letter. Without a Redis client it is only logged.
func SendToDLQ(ctx context.Context, rdb *redis.Client, dl DeadLetter) {
	if dl.FailedAt.IsZero() {
		dl.FailedAt = time.Now().UTC()
	}
	if len(dl.Payload) == 0 {
		dl.Payload = json.RawMessage(`null`)
	}
	logger := log.With().
		Str("queue", dl.Queue).
		Str("job_type", dl.JobType).
		Str("notification_id", dl.NotificationID).
		Str("reason", dl.Reason).
		Int("attempts", dl.Attempts).
		Logger()

	if rdb == nil {
		logger.Warn().Msg("dlq: no redis client, letter dropped")
		return
	}
	data, err := json.Marshal(dl)
	if err != nil {
		logger.Error().Err(err).Msg("dlq: marshal letter")
		return
	}

	key := DLQPrefix + dl.Queue
	_, err = rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.LPush(ctx, key, data)
		p.LTrim(ctx, key, 0, dlqCap-1)
		return nil
	})
	if err != nil {
		logger.Error().Err(err).Str("dlq_key", key).Msg("dlq: push letter")
		return
	}
	logger.Warn().Msg("dlq: job moved to dead letter queue")
}

// DLQLength returns the number of letters kept for queue.
func DLQLength(ctx context.Context, rdb *redis.Client, queue string) (int64, error) {
	return rdb.LLen(ctx, DLQPrefix+queue).Result()
}

// DLQStats returns the DLQ length of every notification queue.
func DLQStats(ctx context.Context, rdb *redis.Client) map[string]int64 {
	stats := make(map[string]int64, 2)
	for _, q := range []string{QueueWhatsApp, QueueEmail} {
		n, err := DLQLength(ctx, rdb, q)
		if err != nil {
			continue
		}
		stats[q] = n
	}
	return stats
}
