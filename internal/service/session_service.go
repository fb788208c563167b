package service

import (
	"context"
	"errors"
	"time"

	"klikpos/internal/apierror"
	"klikpos/internal/dto"
	"klikpos/internal/model"
	"klikpos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SalesAggregator sums submitted payments per mode of payment. Implemented by
// repository.InvoiceRepository.
type SalesAggregator interface {
	SumPaymentsBySession(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) (map[string]decimal.Decimal, error)
	SumPaymentsByProfileDay(ctx context.Context, tx *gorm.DB, profileID uuid.UUID, day string) (map[string]decimal.Decimal, error)
}

type SessionService interface {
	Open(ctx context.Context, actor Actor, req dto.OpenSessionRequest) (*dto.SessionResponse, error)
	IsOpen(ctx context.Context, userID uuid.UUID) (bool, error)
	Close(ctx context.Context, actor Actor, sessionID uuid.UUID, scope ReconciliationScope, req dto.CloseSessionRequest) (*dto.ReconciliationResponse, error)
	GetActive(ctx context.Context, userID uuid.UUID) (*dto.SessionResponse, error)
	Report(ctx context.Context, actor Actor, sessionID uuid.UUID) (*dto.ReconciliationResponse, error)
	History(ctx context.Context, page, limit int) ([]dto.SessionResponse, int64, error)
}

type sessionService struct {
	repo  repository.SessionRepository
	sales SalesAggregator
	now   func() time.Time
}

func NewSessionService(repo repository.SessionRepository, sales SalesAggregator) SessionService {
	return &sessionService{repo: repo, sales: sales, now: time.Now}
}

// ── Open ──────────────────────────────────────────────────────────────────────

// Open starts a session for the actor with the given opening balances.
// The partial unique index on (user_id) WHERE status='open' is the real
// guard; the lookup before insert only avoids a failed write in the common case.
func (s *sessionService) Open(ctx context.Context, actor Actor, req dto.OpenSessionRequest) (*dto.SessionResponse, error) {
	if actor.POSProfileID == nil {
		return nil, apierror.Validation("user has no POS profile assigned")
	}
	if len(req.Balances) == 0 {
		return nil, apierror.Validation("balance_details must contain at least one mode of payment")
	}

	balances := make([]model.PaymentModeBalance, 0, len(req.Balances))
	seen := make(map[string]bool, len(req.Balances))
	for i, b := range req.Balances {
		if b.ModeOfPayment == "" {
			return nil, apierror.Validation("mode_of_payment is required")
		}
		if seen[b.ModeOfPayment] {
			return nil, apierror.Validation("duplicate mode of payment: " + b.ModeOfPayment)
		}
		if b.OpeningAmount.IsNegative() {
			return nil, apierror.Validation("opening_amount must not be negative")
		}
		seen[b.ModeOfPayment] = true
		balances = append(balances, model.PaymentModeBalance{
			Position:      i,
			ModeOfPayment: b.ModeOfPayment,
			Opening:       b.OpeningAmount,
		})
	}

	existing, err := s.repo.FindOpenByUser(ctx, actor.UserID)
	if err == nil {
		return nil, apierror.AlreadyOpen(existing.ID.String())
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierror.Internal("look up open session", err)
	}

	now := s.now()
	session := &model.CashSession{
		UserID:       actor.UserID,
		POSProfileID: *actor.POSProfileID,
		Status:       model.SessionOpen,
		PostingDate:  now.Format(dateLayout),
		OpenedAt:     now,
		Balances:     balances,
	}
	if err := s.repo.Create(ctx, nil, session); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// Lost the race against a concurrent open.
			if winner, ferr := s.repo.FindOpenByUser(ctx, actor.UserID); ferr == nil {
				return nil, apierror.AlreadyOpen(winner.ID.String())
			}
			return nil, apierror.AlreadyOpen("")
		}
		return nil, apierror.Internal("create session", err)
	}

	return sessionToResponse(session), nil
}

// ── Queries ──────────────────────────────────────────────────────────────────

func (s *sessionService) IsOpen(ctx context.Context, userID uuid.UUID) (bool, error) {
	_, err := s.repo.FindOpenByUser(ctx, userID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return false, apierror.Internal("look up open session", err)
}

func (s *sessionService) GetActive(ctx context.Context, userID uuid.UUID) (*dto.SessionResponse, error) {
	session, err := s.repo.FindOpenByUser(ctx, userID)
	if err != nil {
		return nil, lookupErr(err, "open session")
	}
	return sessionToResponse(session), nil
}

func (s *sessionService) History(ctx context.Context, page, limit int) ([]dto.SessionResponse, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	sessions, total, err := s.repo.History(ctx, page, limit)
	if err != nil {
		return nil, 0, apierror.Internal("list session history", err)
	}
	out := make([]dto.SessionResponse, len(sessions))
	for i := range sessions {
		out[i] = *sessionToResponse(&sessions[i])
	}
	return out, total, nil
}

// Report returns the reconciliation of a session. Closed sessions replay
// their stored balances; open ones show a live expected amount with nothing
// counted yet.
func (s *sessionService) Report(ctx context.Context, actor Actor, sessionID uuid.UUID) (*dto.ReconciliationResponse, error) {
	session, err := s.repo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, lookupErr(err, "session")
	}
	if !actor.Privileged() && session.UserID != actor.UserID {
		return nil, apierror.NotFound("session not found")
	}

	in := ReconcileInput{
		Opening: openingOf(session),
		Totals: ClosingTotals{
			Quantity: session.TotalQuantity,
			Net:      session.NetTotal,
			Grand:    session.GrandTotal,
		},
	}
	scope := ScopeSession
	if session.Status == model.SessionClosed {
		in.Sales = make(map[string]decimal.Decimal, len(session.Balances))
		in.Closing = make(map[string]decimal.Decimal, len(session.Balances))
		for _, b := range session.Balances {
			in.Sales[b.ModeOfPayment] = b.Sales
			in.Closing[b.ModeOfPayment] = b.Closing
		}
		if session.Scope != nil {
			scope = ReconciliationScope(*session.Scope)
		}
	} else {
		in.Sales, err = s.sales.SumPaymentsBySession(ctx, nil, session.ID)
		if err != nil {
			return nil, apierror.Internal("sum session sales", err)
		}
	}

	return reportToResponse(session, scope, Reconcile(in)), nil
}

// ── Close ────────────────────────────────────────────────────────────────────

// Close reconciles and closes an open session. The status flip happens first
// inside the transaction so that no invoice can attach between the sales
// aggregation and the commit.
func (s *sessionService) Close(ctx context.Context, actor Actor, sessionID uuid.UUID, scope ReconciliationScope, req dto.CloseSessionRequest) (*dto.ReconciliationResponse, error) {
	if len(req.ClosingCounts) == 0 {
		return nil, apierror.Validation("closing_counts must contain at least one mode of payment")
	}
	if scope == "" {
		scope = ScopeSession
	}
	if !scope.Valid() {
		return nil, apierror.Validation("scope must be session or day")
	}

	session, err := s.repo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, lookupErr(err, "session")
	}
	if session.Status != model.SessionOpen {
		return nil, apierror.NotFound("no open session with this id")
	}
	if !actor.Privileged() && session.UserID != actor.UserID {
		return nil, apierror.NotFound("no open session with this id")
	}

	closedAt := s.now()
	scopeName := string(scope)
	session.ClosedAt = &closedAt
	session.Scope = &scopeName
	session.Notes = req.Notes
	session.TotalQuantity = req.TotalQuantity
	session.NetTotal = req.NetTotal
	session.GrandTotal = req.GrandTotal

	var report ReconciliationReport
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.MarkClosed(ctx, tx, session); err != nil {
			return err
		}

		var sales map[string]decimal.Decimal
		var err error
		if scope == ScopeDay {
			sales, err = s.sales.SumPaymentsByProfileDay(ctx, tx, session.POSProfileID, closedAt.Format(dateLayout))
		} else {
			sales, err = s.sales.SumPaymentsBySession(ctx, tx, session.ID)
		}
		if err != nil {
			return err
		}

		report = Reconcile(ReconcileInput{
			Opening: openingOf(session),
			Sales:   sales,
			Closing: req.ClosingCounts,
			Totals: ClosingTotals{
				Quantity: req.TotalQuantity,
				Net:      req.NetTotal,
				Grand:    req.GrandTotal,
			},
		})
		return s.repo.SaveBalances(ctx, tx, session.ID, balancesFromReport(report))
	})
	if err != nil {
		if errors.Is(err, repository.ErrStale) {
			return nil, apierror.NotFound("no open session with this id")
		}
		return nil, apierror.Internal("close session", err)
	}

	session.Status = model.SessionClosed
	return reportToResponse(session, scope, report), nil
}

// ── Helpers ──────────────────────────────────────────────────────────────────

const dateLayout = "2006-01-02"

func openingOf(session *model.CashSession) []OpeningBalance {
	out := make([]OpeningBalance, len(session.Balances))
	for i, b := range session.Balances {
		out[i] = OpeningBalance{ModeOfPayment: b.ModeOfPayment, Amount: b.Opening}
	}
	return out
}

func balancesFromReport(report ReconciliationReport) []model.PaymentModeBalance {
	out := make([]model.PaymentModeBalance, len(report.Rows))
	for i, r := range report.Rows {
		out[i] = model.PaymentModeBalance{
			Position:      i,
			ModeOfPayment: r.ModeOfPayment,
			Opening:       r.Opening,
			Sales:         r.Sales,
			Expected:      r.Expected,
			Closing:       r.Closing,
			Variance:      r.Variance,
		}
	}
	return out
}

func sessionToResponse(s *model.CashSession) *dto.SessionResponse {
	resp := &dto.SessionResponse{
		ID:            s.ID.String(),
		UserID:        s.UserID.String(),
		POSProfileID:  s.POSProfileID.String(),
		Status:        s.Status,
		PostingDate:   s.PostingDate,
		InvoiceCount:  s.InvoiceCount,
		Scope:         s.Scope,
		TotalQuantity: s.TotalQuantity,
		NetTotal:      s.NetTotal,
		GrandTotal:    s.GrandTotal,
		Notes:         s.Notes,
		OpenedAt:      s.OpenedAt.Format(time.RFC3339),
		Balances:      make([]dto.BalanceResponse, len(s.Balances)),
	}
	if s.ClosedAt != nil {
		closed := s.ClosedAt.Format(time.RFC3339)
		resp.ClosedAt = &closed
	}
	for i, b := range s.Balances {
		resp.Balances[i] = dto.BalanceResponse{
			ModeOfPayment: b.ModeOfPayment,
			Opening:       b.Opening,
			Sales:         b.Sales,
			Expected:      b.Expected,
			Closing:       b.Closing,
			Variance:      b.Variance,
		}
	}
	return resp
}

func reportToResponse(s *model.CashSession, scope ReconciliationScope, r ReconciliationReport) *dto.ReconciliationResponse {
	resp := &dto.ReconciliationResponse{
		SessionID:      s.ID.String(),
		Scope:          string(scope),
		Status:         s.Status,
		Rows:           make([]dto.BalanceResponse, len(r.Rows)),
		TotalOpening:   r.TotalOpening,
		TotalSales:     r.TotalSales,
		TotalExpected:  r.TotalExpected,
		TotalClosing:   r.TotalClosing,
		TotalVariance:  r.TotalVariance,
		VariancePct:    r.VariancePct,
		Classification: r.Classification,
		TotalQuantity:  r.Totals.Quantity,
		NetTotal:       r.Totals.Net,
		GrandTotal:     r.Totals.Grand,
	}
	if s.ClosedAt != nil {
		resp.ClosedAt = s.ClosedAt.Format(time.RFC3339)
	}
	for i, row := range r.Rows {
		resp.Rows[i] = dto.BalanceResponse{
			ModeOfPayment: row.ModeOfPayment,
			Opening:       row.Opening,
			Sales:         row.Sales,
			Expected:      row.Expected,
			Closing:       row.Closing,
			Variance:      row.Variance,
		}
	}
	return resp
}
