package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// POSProfile groups the till settings shared by a set of cashiers: currency,
// accepted payment modes and the account round-off differences are written to.
type POSProfile struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name            string    `gorm:"uniqueIndex;not null"`
	Company         string    `gorm:"not null"`
	Currency        string    `gorm:"type:varchar(3);not null"`
	WriteOffAccount string    `gorm:"not null"`
	// CashMode is the payment mode change is given back in.
	CashMode  string `gorm:"not null;default:'Cash'"`
	Disabled  bool   `gorm:"not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time

	PaymentModes []POSPaymentMode `gorm:"foreignKey:POSProfileID"`
}

func (p *POSProfile) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// POSPaymentMode is a mode of payment accepted by a profile. Type is the
// payment channel: "Cash" | "Bank" | "Phone".
type POSPaymentMode struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	POSProfileID  uuid.UUID `gorm:"type:uuid;index;not null"`
	Position      int       `gorm:"not null"`
	ModeOfPayment string    `gorm:"not null"`
	Type          string    `gorm:"type:varchar(10);not null;default:'Cash'"`
	IsDefault     bool      `gorm:"not null;default:false"`
}

func (m *POSPaymentMode) BeforeCreate(_ *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
