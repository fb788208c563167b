package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification channels and states.
const (
	ChannelWhatsApp = "whatsapp"
	ChannelEmail    = "email"

	NotificationPending = "pending"
	NotificationSent    = "sent"
	NotificationFailed  = "failed"
)

// NotificationLog records every attempt to send an invoice to a customer.
type NotificationLog struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	InvoiceID uuid.UUID `gorm:"type:uuid;index;not null"`
	Channel   string    `gorm:"type:varchar(10);not null"`
	Recipient string    `gorm:"not null"`
	Status    string    `gorm:"type:varchar(10);not null;default:'pending';index"`
	// ExternalID is the provider message id on success.
	ExternalID *string
	Payload    *string
	// Retry fields, used by the retry cron to re-attempt failed sends.
	RetryCount  int        `gorm:"not null;default:0"`
	NextRetryAt *time.Time `gorm:"index"`
	LastError   *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (n *NotificationLog) BeforeCreate(_ *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
