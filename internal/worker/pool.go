package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueWhatsApp = "jobs:whatsapp"
	QueueEmail    = "jobs:email"
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// JobHandler processes the payload of one job. A returned error moves the job
// to the dead letter queue.
type JobHandler interface {
	Process(ctx context.Context, raw json.RawMessage) error
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueWhatsApp pushes an invoice notification job to Redis.
func (d *Dispatcher) EnqueueWhatsApp(ctx context.Context, payload WhatsAppJobPayload) error {
	return d.enqueue(ctx, QueueWhatsApp, "whatsapp", payload)
}

// EnqueueEmail pushes an email receipt job to Redis.
func (d *Dispatcher) EnqueueEmail(ctx context.Context, payload EmailJobPayload) error {
	return d.enqueue(ctx, QueueEmail, "email", payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	if d == nil || d.rdb == nil {
		return errors.New("dispatcher: redis not configured")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job := Job{Type: jobType, Payload: data}
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// Handlers maps a queue name to the handler consuming it.
type Handlers map[string]JobHandler

// StartWorkerPool launches numWorkers goroutines consuming every queue that
// has a handler. Each goroutine blocks on BRPOP, zero CPU when idle.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, numWorkers int, handlers Handlers) {
	queues := make([]string, 0, len(handlers))
	for q := range handlers {
		queues = append(queues, q)
	}
	if len(queues) == 0 {
		log.Warn().Msg("worker pool: no handlers registered, not starting")
		return
	}
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, i, queues, handlers)
	}
	log.Info().Int("workers", numWorkers).Strs("queues", queues).Msg("worker pool started")
}

func runWorker(ctx context.Context, rdb *redis.Client, id int, queues []string, handlers Handlers) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Int("worker", id).Msg("worker shutting down")
			return
		default:
			// Blocking pop, waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, rdb, handlers, result[0], result[1])
		}
	}
}

func processJob(ctx context.Context, rdb *redis.Client, handlers Handlers, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		quoted, _ := json.Marshal(raw)
		SendToDLQ(ctx, rdb, DeadLetter{Queue: queue, JobType: "unknown", Payload: quoted, Reason: "malformed envelope: " + err.Error(), Attempts: 1})
		return
	}

	h, ok := handlers[queue]
	if !ok {
		log.Error().Str("queue", queue).Str("type", job.Type).Msg("no handler for queue")
		return
	}

	start := time.Now()
	if err := h.Process(ctx, job.Payload); err != nil {
		log.Error().Err(err).Str("queue", queue).Str("type", job.Type).Msg("job failed")
		SendToDLQ(ctx, rdb, DeadLetter{Queue: queue, JobType: job.Type, Payload: job.Payload, Reason: err.Error(), Attempts: 1})
		return
	}
	log.Debug().Str("queue", queue).Str("type", job.Type).Dur("took", time.Since(start)).Msg("job processed")
}

// computeRetryBackoff returns the wait before attempt n+1: 1m, 2m, 4m … capped at 1h.
func computeRetryBackoff(retryCount int) time.Duration {
	if retryCount < 1 {
		retryCount = 1
	}
	if retryCount > 7 {
		return time.Hour
	}
	d := time.Duration(1<<uint(retryCount-1)) * time.Minute
	if d > time.Hour {
		return time.Hour
	}
	return d
}
