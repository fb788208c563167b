package worker

// whatsapp_worker.go
// Processes WhatsApp jobs from QueueWhatsApp.
// Every attempt is recorded in notification_logs; failed sends are scheduled
// for the retry cron with exponential backoff and land in the DLQ once
// MaxNotificationRetries is reached.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"klikpos/internal/infra"
	"klikpos/internal/model"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// MaxNotificationRetries is the number of failed attempts after which a
// notification stops being retried and is moved to the DLQ.
const MaxNotificationRetries = 5

// WhatsAppJobPayload is the job envelope sent to QueueWhatsApp.
type WhatsAppJobPayload struct {
	InvoiceID uuid.UUID `json:"invoice_id"`
	Mobile    string    `json:"mobile_no"`
}

// WhatsAppSender is the subset of infra.WhatsAppClient the worker needs.
type WhatsAppSender interface {
	SendInvoice(ctx context.Context, msg infra.InvoiceMessage) (*infra.WhatsAppResponse, error)
}

// InvoiceFinder loads the invoice a notification refers to.
type InvoiceFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.SalesInvoice, error)
}

// NotificationStore persists notification attempts.
type NotificationStore interface {
	Create(ctx context.Context, n *model.NotificationLog) error
	Update(ctx context.Context, n *model.NotificationLog) error
}

type WhatsAppWorker struct {
	sender        WhatsAppSender
	cb            *infra.CircuitBreaker
	invoices      InvoiceFinder
	notifications NotificationStore
	rdb           *redis.Client
	now           func() time.Time
}

func NewWhatsAppWorker(sender WhatsAppSender, cb *infra.CircuitBreaker, invoices InvoiceFinder, notifications NotificationStore, rdb *redis.Client) *WhatsAppWorker {
	return &WhatsAppWorker{
		sender:        sender,
		cb:            cb,
		invoices:      invoices,
		notifications: notifications,
		rdb:           rdb,
		now:           time.Now,
	}
}

// Process handles one job. Only payload and lookup errors are returned; a
// failed send is recorded on the notification log and retried by the cron.
func (w *WhatsAppWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload WhatsAppJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("whatsapp_worker: invalid payload: %w", err)
	}

	inv, err := w.invoices.FindByID(ctx, payload.InvoiceID)
	if err != nil {
		return fmt.Errorf("whatsapp_worker: load invoice %s: %w", payload.InvoiceID, err)
	}

	entry := &model.NotificationLog{
		InvoiceID: inv.ID,
		Channel:   model.ChannelWhatsApp,
		Recipient: payload.Mobile,
		Status:    model.NotificationPending,
	}

	phone, err := infra.NormalizePhone(payload.Mobile)
	if err != nil {
		// Not retryable: the number will not become valid on its own.
		msg := err.Error()
		entry.Status = model.NotificationFailed
		entry.LastError = &msg
		if cerr := w.notifications.Create(ctx, entry); cerr != nil {
			return fmt.Errorf("whatsapp_worker: record notification: %w", cerr)
		}
		log.Warn().Str("invoice", inv.Number).Str("mobile", payload.Mobile).Msg("whatsapp_worker: invalid phone, not sending")
		return nil
	}
	entry.Recipient = phone
	if err := w.notifications.Create(ctx, entry); err != nil {
		return fmt.Errorf("whatsapp_worker: record notification: %w", err)
	}

	w.deliver(ctx, inv, entry)
	return nil
}

// Redeliver re-attempts a failed notification. Called by the retry cron.
func (w *WhatsAppWorker) Redeliver(ctx context.Context, entry *model.NotificationLog) error {
	inv, err := w.invoices.FindByID(ctx, entry.InvoiceID)
	if err != nil {
		return fmt.Errorf("whatsapp_worker: load invoice %s: %w", entry.InvoiceID, err)
	}
	w.deliver(ctx, inv, entry)
	return nil
}

func (w *WhatsAppWorker) deliver(ctx context.Context, inv *model.SalesInvoice, entry *model.NotificationLog) {
	msg := infra.InvoiceMessage{
		To:            entry.Recipient,
		CustomerName:  inv.Customer,
		InvoiceNumber: inv.Number,
		Amount:        infra.FormatAmount(inv.Currency, inv.RoundedTotal, 2),
	}
	if body, err := json.Marshal(msg); err == nil {
		s := string(body)
		entry.Payload = &s
	}

	var resp *infra.WhatsAppResponse
	cbErr := w.cb.Execute(func() error {
		r, err := w.sender.SendInvoice(ctx, msg)
		if err != nil {
			return err
		}
		resp = r
		return nil
	})

	if cbErr != nil {
		recordFailure(ctx, w.rdb, entry, cbErr, w.now(), QueueWhatsApp, "whatsapp")
	} else {
		entry.Status = model.NotificationSent
		if id := resp.MessageID(); id != "" {
			entry.ExternalID = &id
		}
		entry.NextRetryAt = nil
		entry.LastError = nil
		log.Info().Str("invoice", inv.Number).Str("to", entry.Recipient).Msg("whatsapp_worker: invoice sent")
	}

	if err := w.notifications.Update(ctx, entry); err != nil {
		log.Error().Err(err).Str("notification_id", entry.ID.String()).Msg("whatsapp_worker: failed to update notification log")
	}
}

// recordFailure bumps the retry counter and either schedules the next attempt
// or, past MaxNotificationRetries, gives up and moves the job to the DLQ.
// A send rejected by an open breaker never reached the provider and does not
// use up an attempt.
func recordFailure(ctx context.Context, rdb *redis.Client, entry *model.NotificationLog, cause error, now time.Time, queue, jobType string) {
	entry.Status = model.NotificationFailed
	circuitOpen := errors.Is(cause, infra.ErrCircuitOpen)
	if !circuitOpen {
		entry.RetryCount++
	}
	errMsg := cause.Error()
	entry.LastError = &errMsg

	if entry.RetryCount >= MaxNotificationRetries {
		entry.NextRetryAt = nil
		log.Error().
			Str("notification_id", entry.ID.String()).
			Str("invoice_id", entry.InvoiceID.String()).
			Int("retries", entry.RetryCount).
			Msg("notification: max retries exceeded, moving to DLQ")
		payload, _ := json.Marshal(map[string]string{"invoice_id": entry.InvoiceID.String(), "recipient": entry.Recipient})
		SendToDLQ(ctx, rdb, DeadLetter{
			Queue:          queue,
			JobType:        jobType,
			NotificationID: entry.ID.String(),
			Payload:        payload,
			Reason:         fmt.Sprintf("max retries (%d) exceeded: %s", MaxNotificationRetries, errMsg),
			Attempts:       entry.RetryCount,
			FailedAt:       now,
		})
		return
	}

	next := now.Add(computeRetryBackoff(entry.RetryCount))
	entry.NextRetryAt = &next
	ev := log.Warn()
	if circuitOpen {
		ev = log.Debug()
	}
	ev.Str("notification_id", entry.ID.String()).
		Int("retry_count", entry.RetryCount).
		Time("next_retry_at", next).
		Err(cause).
		Msg("notification: send failed, scheduled next attempt")
}
