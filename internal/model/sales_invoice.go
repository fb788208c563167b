package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Invoice states.
const (
	InvoiceDraft     = "draft"
	InvoiceSubmitted = "submitted"
)

// SalesInvoice is a sale or a return recorded at the till.
// Returns carry negative quantities and amounts and point at the original
// through ReturnAgainst; at most one return exists per original.
type SalesInvoice struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Number         string     `gorm:"type:varchar(40);uniqueIndex;not null"`
	SessionID      *uuid.UUID `gorm:"type:uuid;index"`
	POSProfileID   uuid.UUID  `gorm:"type:uuid;not null;index:idx_invoice_profile_day"`
	UserID         uuid.UUID  `gorm:"type:uuid;not null"`
	Customer       string     `gorm:"not null"`
	CustomerMobile *string    `gorm:"type:varchar(20)"`
	CustomerEmail  *string
	PostingDate    string `gorm:"type:varchar(10);not null;index:idx_invoice_profile_day"`
	PostedAt       time.Time
	Status         string `gorm:"type:varchar(10);not null;default:'draft';index"`

	IsReturn      bool       `gorm:"not null;default:false"`
	ReturnAgainst *uuid.UUID `gorm:"type:uuid;uniqueIndex"`
	Returned      bool       `gorm:"not null;default:false"`

	Currency        string          `gorm:"type:varchar(3);not null"`
	ConversionRate  decimal.Decimal `gorm:"type:decimal(18,9);not null;default:1"`
	TotalQty        decimal.Decimal `gorm:"type:decimal(18,6);not null;default:0"`
	NetTotal        decimal.Decimal `gorm:"type:decimal(18,6);not null;default:0"`
	TotalTaxes      decimal.Decimal `gorm:"type:decimal(18,6);not null;default:0"`
	GrandTotal      decimal.Decimal `gorm:"type:decimal(18,6);not null;default:0"`
	BaseGrandTotal  decimal.Decimal `gorm:"type:decimal(18,6);not null;default:0"`
	RoundedTotal    decimal.Decimal `gorm:"type:decimal(18,6);not null;default:0"`
	RoundOffAmount  decimal.Decimal `gorm:"type:decimal(18,6);not null;default:0"`
	WriteOffAccount *string
	PaidAmount      decimal.Decimal `gorm:"type:decimal(18,6);not null;default:0"`
	ChangeAmount    decimal.Decimal `gorm:"type:decimal(18,6);not null;default:0"`

	// PDFPath is relative to PDF_STORAGE_PATH.
	PDFPath *string

	CreatedAt time.Time
	UpdatedAt time.Time

	Items    []InvoiceItem    `gorm:"foreignKey:InvoiceID"`
	Taxes    []InvoiceTax     `gorm:"foreignKey:InvoiceID"`
	Payments []InvoicePayment `gorm:"foreignKey:InvoiceID"`
}

func (i *SalesInvoice) BeforeCreate(_ *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

type InvoiceItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	InvoiceID uuid.UUID       `gorm:"type:uuid;index;not null"`
	Position  int             `gorm:"not null"`
	ItemCode  string          `gorm:"not null"`
	ItemName  string          `gorm:"not null"`
	Qty       decimal.Decimal `gorm:"type:decimal(18,6);not null"`
	Rate      decimal.Decimal `gorm:"type:decimal(18,6);not null"`
	Discount  decimal.Decimal `gorm:"type:decimal(18,6);not null;default:0"`
	Amount    decimal.Decimal `gorm:"type:decimal(18,6);not null"`
}

func (it *InvoiceItem) BeforeCreate(_ *gorm.DB) error {
	if it.ID == uuid.Nil {
		it.ID = uuid.New()
	}
	return nil
}

// InvoiceTax is one ordered tax line. Total is the running grand total after
// this line is applied.
type InvoiceTax struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	InvoiceID uuid.UUID       `gorm:"type:uuid;index;not null"`
	Position  int             `gorm:"not null"`
	Account   string          `gorm:"not null"`
	Rate      decimal.Decimal `gorm:"type:decimal(9,4);not null;default:0"`
	Amount    decimal.Decimal `gorm:"type:decimal(18,6);not null"`
	Total     decimal.Decimal `gorm:"type:decimal(18,6);not null"`
}

func (t *InvoiceTax) BeforeCreate(_ *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

type InvoicePayment struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	InvoiceID     uuid.UUID       `gorm:"type:uuid;index;not null"`
	ModeOfPayment string          `gorm:"type:varchar(140);not null"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,6);not null"`
}

func (p *InvoicePayment) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
