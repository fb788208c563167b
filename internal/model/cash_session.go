package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Session states.
const (
	SessionOpen   = "open"
	SessionClosed = "closed"
)

// CashSession is one cashier's drawer from opening to closing.
// Status: "open" | "closed". A closed session is never written again: every
// update path filters on status = 'open'.
type CashSession struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cash_sessions_open_user,where:status = 'open'"`
	POSProfileID uuid.UUID `gorm:"type:uuid;not null;index"`
	Status       string    `gorm:"type:varchar(10);not null;default:'open';index"`
	// PostingDate is the business day (YYYY-MM-DD) the session was opened on.
	PostingDate  string `gorm:"type:varchar(10);not null"`
	InvoiceCount int    `gorm:"not null;default:0"`

	// Closing totals as declared by the caller; not recomputed.
	TotalQuantity decimal.Decimal `gorm:"type:decimal(18,6);not null;default:0"`
	NetTotal      decimal.Decimal `gorm:"type:decimal(18,6);not null;default:0"`
	GrandTotal    decimal.Decimal `gorm:"type:decimal(18,6);not null;default:0"`
	// Scope records how sales were aggregated at close: "session" | "day".
	Scope *string `gorm:"type:varchar(10)"`
	Notes *string

	OpenedAt time.Time
	ClosedAt *time.Time

	Balances []PaymentModeBalance `gorm:"foreignKey:SessionID"`
}

func (s *CashSession) BeforeCreate(_ *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// PaymentModeBalance is one payment mode's line in a session. Opening is set at
// open; the remaining amounts are filled in when the session closes.
type PaymentModeBalance struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SessionID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_balance_session_mode"`
	Position      int             `gorm:"not null"`
	ModeOfPayment string          `gorm:"type:varchar(140);not null;uniqueIndex:idx_balance_session_mode"`
	Opening       decimal.Decimal `gorm:"type:decimal(18,6);not null;default:0"`
	Sales         decimal.Decimal `gorm:"type:decimal(18,6);not null;default:0"`
	Expected      decimal.Decimal `gorm:"type:decimal(18,6);not null;default:0"`
	Closing       decimal.Decimal `gorm:"type:decimal(18,6);not null;default:0"`
	Variance      decimal.Decimal `gorm:"type:decimal(18,6);not null;default:0"`
}

func (b *PaymentModeBalance) BeforeCreate(_ *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
