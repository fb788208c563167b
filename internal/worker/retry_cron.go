package worker

// retry_cron.go
// Background goroutine that periodically re-attempts notifications stuck in
// status='failed' with a next_retry_at in the past.
// Skips WhatsApp entries while the circuit breaker is open.

import (
	"context"
	"time"

	"klikpos/internal/infra"
	"klikpos/internal/model"

	"github.com/rs/zerolog/log"
)

const (
	retryTickInterval = 30 * time.Second
	retryBatchSize    = 10
)

// Redeliverer re-attempts one failed notification.
type Redeliverer interface {
	Redeliver(ctx context.Context, entry *model.NotificationLog) error
}

// PendingRetryLister lists notifications whose next attempt is due.
type PendingRetryLister interface {
	ListPendingRetries(ctx context.Context, now time.Time, limit int) ([]model.NotificationLog, error)
}

// RetryCronConfig holds all dependencies for the retry goroutine.
type RetryCronConfig struct {
	Notifications PendingRetryLister
	// Channels maps a notification channel to the worker that re-sends it.
	Channels map[string]Redeliverer
	// CB guards the WhatsApp channel.
	CB  *infra.CircuitBreaker
	Now func() time.Time
}

// StartRetryCron launches a goroutine that processes due retries every 30s.
// Exits when ctx is cancelled.
func StartRetryCron(ctx context.Context, cfg RetryCronConfig) {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	go func() {
		ticker := time.NewTicker(retryTickInterval)
		defer ticker.Stop()

		log.Info().Dur("interval", retryTickInterval).Msg("retry_cron started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_cron shutting down")
				return
			case <-ticker.C:
				processRetries(ctx, cfg)
			}
		}
	}()
}

// processRetries runs one batch and returns how many entries were re-attempted.
func processRetries(ctx context.Context, cfg RetryCronConfig) int {
	pending, err := cfg.Notifications.ListPendingRetries(ctx, cfg.Now(), retryBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("retry_cron: failed to list pending notifications")
		return 0
	}
	if len(pending) == 0 {
		return 0
	}

	log.Info().Int("count", len(pending)).Msg("retry_cron: processing pending notifications")

	attempted := 0
	for i := range pending {
		entry := &pending[i]

		if entry.Channel == model.ChannelWhatsApp && cfg.CB != nil && cfg.CB.State() == infra.CBOpen {
			log.Debug().Str("notification_id", entry.ID.String()).Msg("retry_cron: circuit breaker open, skipping")
			continue
		}

		r, ok := cfg.Channels[entry.Channel]
		if !ok {
			log.Warn().Str("channel", entry.Channel).Msg("retry_cron: no worker for channel")
			continue
		}
		if err := r.Redeliver(ctx, entry); err != nil {
			log.Error().Err(err).Str("notification_id", entry.ID.String()).Msg("retry_cron: redeliver failed")
			continue
		}
		attempted++
	}
	return attempted
}
