package worker

// email_worker.go
// Processes email jobs from QueueEmail.
// Renders the invoice PDF into storage and mails it to the customer.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"klikpos/internal/infra"
	"klikpos/internal/model"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// EmailJobPayload is the job envelope sent to QueueEmail.
type EmailJobPayload struct {
	InvoiceID uuid.UUID `json:"invoice_id"`
	ToEmail   string    `json:"to_email"`
}

// MailSender is the subset of infra.Mailer the worker needs.
type MailSender interface {
	SendInvoice(to, subject, body, pdfPath string) error
}

// InvoicePDFStore loads invoices and remembers where their PDF was written.
type InvoicePDFStore interface {
	InvoiceFinder
	SetPDFPath(ctx context.Context, id uuid.UUID, path string) error
}

// EmailWorker sends PDF receipts to customer emails via SMTP.
type EmailWorker struct {
	mailer        MailSender
	invoices      InvoicePDFStore
	notifications NotificationStore
	rdb           *redis.Client
	company       string
	storagePath   string
	now           func() time.Time
}

func NewEmailWorker(mailer MailSender, invoices InvoicePDFStore, notifications NotificationStore, rdb *redis.Client, company, storagePath string) *EmailWorker {
	return &EmailWorker{
		mailer:        mailer,
		invoices:      invoices,
		notifications: notifications,
		rdb:           rdb,
		company:       company,
		storagePath:   storagePath,
		now:           time.Now,
	}
}

// Process sends an email with the PDF receipt as attachment.
func (w *EmailWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("email_worker: invalid payload: %w", err)
	}
	if payload.ToEmail == "" {
		log.Warn().Str("invoice_id", payload.InvoiceID.String()).Msg("email_worker: empty to_email, skipping")
		return nil
	}

	inv, err := w.invoices.FindByID(ctx, payload.InvoiceID)
	if err != nil {
		return fmt.Errorf("email_worker: load invoice %s: %w", payload.InvoiceID, err)
	}

	entry := &model.NotificationLog{
		InvoiceID: inv.ID,
		Channel:   model.ChannelEmail,
		Recipient: payload.ToEmail,
		Status:    model.NotificationPending,
	}
	if err := w.notifications.Create(ctx, entry); err != nil {
		return fmt.Errorf("email_worker: record notification: %w", err)
	}

	w.deliver(ctx, inv, entry)
	return nil
}

// Redeliver re-attempts a failed email. Called by the retry cron.
func (w *EmailWorker) Redeliver(ctx context.Context, entry *model.NotificationLog) error {
	inv, err := w.invoices.FindByID(ctx, entry.InvoiceID)
	if err != nil {
		return fmt.Errorf("email_worker: load invoice %s: %w", entry.InvoiceID, err)
	}
	w.deliver(ctx, inv, entry)
	return nil
}

func (w *EmailWorker) deliver(ctx context.Context, inv *model.SalesInvoice, entry *model.NotificationLog) {
	err := w.send(ctx, inv, entry.Recipient)
	if err != nil {
		recordFailure(ctx, w.rdb, entry, err, w.now(), QueueEmail, "email")
	} else {
		entry.Status = model.NotificationSent
		entry.NextRetryAt = nil
		entry.LastError = nil
		log.Info().Str("invoice", inv.Number).Str("to", entry.Recipient).Msg("email_worker: receipt sent")
	}
	if uerr := w.notifications.Update(ctx, entry); uerr != nil {
		log.Error().Err(uerr).Str("notification_id", entry.ID.String()).Msg("email_worker: failed to update notification log")
	}
}

func (w *EmailWorker) send(ctx context.Context, inv *model.SalesInvoice, to string) error {
	pdfPath := ""
	if inv.PDFPath != nil {
		pdfPath = *inv.PDFPath
	} else if w.storagePath != "" {
		path, err := infra.WriteInvoicePDF(inv, w.company, w.storagePath)
		if err != nil {
			return err
		}
		if err := w.invoices.SetPDFPath(ctx, inv.ID, path); err != nil {
			log.Warn().Err(err).Str("invoice", inv.Number).Msg("email_worker: could not store pdf path")
		}
		pdfPath = path
	}

	subject := fmt.Sprintf("%s %s", documentLabel(inv), inv.Number)
	body := fmt.Sprintf("Dear %s,\n\nPlease find attached %s %s for %s.\n\n%s\n",
		inv.Customer, documentLabel(inv), inv.Number,
		infra.FormatAmount(inv.Currency, inv.RoundedTotal, 2), w.company)
	return w.mailer.SendInvoice(to, subject, body, pdfPath)
}

func documentLabel(inv *model.SalesInvoice) string {
	if inv.IsReturn {
		return "Credit Note"
	}
	return "Invoice"
}
