package repository

import (
	"context"

	"klikpos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InvoiceFilter narrows List. Empty fields are ignored.
type InvoiceFilter struct {
	POSProfileID *uuid.UUID
	SessionID    *uuid.UUID
	Status       string
	PostingDate  string
	Page         int
	Limit        int
}

type InvoiceRepository interface {
	Create(ctx context.Context, tx *gorm.DB, inv *model.SalesInvoice) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.SalesInvoice, error)
	// Submit moves a draft to submitted and attaches it to a session.
	// Returns ErrStale if the invoice is not a draft.
	Submit(ctx context.Context, tx *gorm.DB, id uuid.UUID, sessionID uuid.UUID, postingDate string) error
	// MarkReturned flags a submitted invoice as returned. Returns ErrStale if
	// it is not submitted or already returned.
	MarkReturned(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	SetPDFPath(ctx context.Context, id uuid.UUID, path string) error
	List(ctx context.Context, filter InvoiceFilter) ([]model.SalesInvoice, int64, error)

	// SumPaymentsBySession aggregates submitted payments attached to a session.
	SumPaymentsBySession(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) (map[string]decimal.Decimal, error)
	// SumPaymentsByProfileDay aggregates submitted payments of a profile on a
	// posting date, regardless of session.
	SumPaymentsByProfileDay(ctx context.Context, tx *gorm.DB, profileID uuid.UUID, day string) (map[string]decimal.Decimal, error)
}

type invoiceRepo struct{ db *gorm.DB }

func NewInvoiceRepository(db *gorm.DB) InvoiceRepository { return &invoiceRepo{db: db} }

func (r *invoiceRepo) Create(ctx context.Context, tx *gorm.DB, inv *model.SalesInvoice) error {
	return translate(conn(r.db, tx).WithContext(ctx).Create(inv).Error)
}

func (r *invoiceRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.SalesInvoice, error) {
	var inv model.SalesInvoice
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Taxes", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Payments").
		Where("id = ?", id).
		First(&inv).Error
	return &inv, err
}

func (r *invoiceRepo) Submit(ctx context.Context, tx *gorm.DB, id uuid.UUID, sessionID uuid.UUID, postingDate string) error {
	res := conn(r.db, tx).WithContext(ctx).
		Model(&model.SalesInvoice{}).
		Where("id = ? AND status = ?", id, model.InvoiceDraft).
		Updates(map[string]any{
			"status":       model.InvoiceSubmitted,
			"session_id":   sessionID,
			"posting_date": postingDate,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStale
	}
	return nil
}

func (r *invoiceRepo) MarkReturned(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	res := conn(r.db, tx).WithContext(ctx).
		Model(&model.SalesInvoice{}).
		Where("id = ? AND status = ? AND is_return = ? AND returned = ?", id, model.InvoiceSubmitted, false, false).
		Update("returned", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStale
	}
	return nil
}

func (r *invoiceRepo) SetPDFPath(ctx context.Context, id uuid.UUID, path string) error {
	return r.db.WithContext(ctx).Model(&model.SalesInvoice{}).Where("id = ?", id).Update("pdf_path", path).Error
}

func (r *invoiceRepo) List(ctx context.Context, filter InvoiceFilter) ([]model.SalesInvoice, int64, error) {
	var invoices []model.SalesInvoice
	var total int64

	q := r.db.WithContext(ctx).Model(&model.SalesInvoice{})
	if filter.POSProfileID != nil {
		q = q.Where("pos_profile_id = ?", *filter.POSProfileID)
	}
	if filter.SessionID != nil {
		q = q.Where("session_id = ?", *filter.SessionID)
	}
	if filter.Status != "" && filter.Status != "all" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.PostingDate != "" {
		q = q.Where("posting_date = ?", filter.PostingDate)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Taxes", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Payments").
		Order("created_at DESC").
		Offset((filter.Page - 1) * filter.Limit).Limit(filter.Limit).
		Find(&invoices).Error
	return invoices, total, err
}

type modeTotal struct {
	ModeOfPayment string
	Total         decimal.Decimal
}

func (r *invoiceRepo) SumPaymentsBySession(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) (map[string]decimal.Decimal, error) {
	q := r.paymentTotals(ctx, tx).Where("i.session_id = ?", sessionID)
	return scanModeTotals(q)
}

func (r *invoiceRepo) SumPaymentsByProfileDay(ctx context.Context, tx *gorm.DB, profileID uuid.UUID, day string) (map[string]decimal.Decimal, error) {
	q := r.paymentTotals(ctx, tx).Where("i.pos_profile_id = ? AND i.posting_date = ?", profileID, day)
	return scanModeTotals(q)
}

func (r *invoiceRepo) paymentTotals(ctx context.Context, tx *gorm.DB) *gorm.DB {
	return conn(r.db, tx).WithContext(ctx).
		Table("invoice_payments AS p").
		Select("p.mode_of_payment AS mode_of_payment, SUM(p.amount) AS total").
		Joins("JOIN sales_invoices AS i ON i.id = p.invoice_id").
		Where("i.status = ?", model.InvoiceSubmitted).
		Group("p.mode_of_payment")
}

func scanModeTotals(q *gorm.DB) (map[string]decimal.Decimal, error) {
	var rows []modeTotal
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]decimal.Decimal, len(rows))
	for _, row := range rows {
		out[row.ModeOfPayment] = row.Total
	}
	return out, nil
}
