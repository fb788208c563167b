package repository

import (
	"context"
	"time"

	"klikpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SessionRepository interface {
	// Create inserts a session with its opening balances. A second open
	// session for the same user fails with ErrDuplicate.
	Create(ctx context.Context, tx *gorm.DB, s *model.CashSession) error
	FindOpenByUser(ctx context.Context, userID uuid.UUID) (*model.CashSession, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.CashSession, error)
	// MarkClosed flips an open session to closed along with its closing
	// totals. Returns ErrStale if the session is no longer open. Inside a
	// transaction the updated row stays locked until commit, so invoices can
	// no longer attach to it.
	MarkClosed(ctx context.Context, tx *gorm.DB, s *model.CashSession) error
	// SaveBalances upserts the reconciled per-mode balances of a session.
	SaveBalances(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, balances []model.PaymentModeBalance) error
	// AttachInvoice counts a sale against an open session. Returns ErrStale
	// if the session closed in the meantime.
	AttachInvoice(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) error
	History(ctx context.Context, page, limit int) ([]model.CashSession, int64, error)
	DB() *gorm.DB
}

type sessionRepo struct{ db *gorm.DB }

func NewSessionRepository(db *gorm.DB) SessionRepository { return &sessionRepo{db: db} }

func (r *sessionRepo) DB() *gorm.DB { return r.db }

func (r *sessionRepo) Create(ctx context.Context, tx *gorm.DB, s *model.CashSession) error {
	return translate(conn(r.db, tx).WithContext(ctx).Create(s).Error)
}

func (r *sessionRepo) FindOpenByUser(ctx context.Context, userID uuid.UUID) (*model.CashSession, error) {
	var s model.CashSession
	err := r.db.WithContext(ctx).
		Preload("Balances", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("user_id = ? AND status = ?", userID, model.SessionOpen).
		First(&s).Error
	return &s, err
}

func (r *sessionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.CashSession, error) {
	var s model.CashSession
	err := r.db.WithContext(ctx).
		Preload("Balances", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("id = ?", id).
		First(&s).Error
	return &s, err
}

func (r *sessionRepo) MarkClosed(ctx context.Context, tx *gorm.DB, s *model.CashSession) error {
	db := conn(r.db, tx).WithContext(ctx)

	closedAt := time.Now()
	if s.ClosedAt != nil {
		closedAt = *s.ClosedAt
	}
	res := db.Model(&model.CashSession{}).
		Where("id = ? AND status = ?", s.ID, model.SessionOpen).
		Updates(map[string]any{
			"status":         model.SessionClosed,
			"closed_at":      closedAt,
			"total_quantity": s.TotalQuantity,
			"net_total":      s.NetTotal,
			"grand_total":    s.GrandTotal,
			"scope":          s.Scope,
			"notes":          s.Notes,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStale
	}
	s.Status = model.SessionClosed
	s.ClosedAt = &closedAt
	return nil
}

func (r *sessionRepo) SaveBalances(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, balances []model.PaymentModeBalance) error {
	if len(balances) == 0 {
		return nil
	}
	for i := range balances {
		balances[i].SessionID = sessionID
	}
	return conn(r.db, tx).WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}, {Name: "mode_of_payment"}},
		DoUpdates: clause.AssignmentColumns([]string{"position", "opening", "sales", "expected", "closing", "variance"}),
	}).Create(&balances).Error
}

func (r *sessionRepo) AttachInvoice(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) error {
	res := conn(r.db, tx).WithContext(ctx).
		Model(&model.CashSession{}).
		Where("id = ? AND status = ?", sessionID, model.SessionOpen).
		UpdateColumn("invoice_count", gorm.Expr("invoice_count + ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStale
	}
	return nil
}

// History lists closed sessions, most recent first.
func (r *sessionRepo) History(ctx context.Context, page, limit int) ([]model.CashSession, int64, error) {
	var sessions []model.CashSession
	var total int64

	q := r.db.WithContext(ctx).Model(&model.CashSession{}).Where("status = ?", model.SessionClosed)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Preload("Balances", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Order("closed_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&sessions).Error
	return sessions, total, err
}
