package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"klikpos/internal/apierror"
	"klikpos/internal/dto"
	"klikpos/internal/infra"
	"klikpos/internal/model"
	"klikpos/internal/money"
	"klikpos/internal/repository"
	"klikpos/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// JobQueue enqueues fire-and-forget notification jobs. Implemented by
// worker.Dispatcher; nil disables notifications.
type JobQueue interface {
	EnqueueWhatsApp(ctx context.Context, payload worker.WhatsAppJobPayload) error
	EnqueueEmail(ctx context.Context, payload worker.EmailJobPayload) error
}

// InvoiceConfig carries the deployment-wide settings of the invoice service.
type InvoiceConfig struct {
	BaseCurrency string
	Policy       money.Policy
	// WhatsApp and Email switch the automatic notification on sale.
	WhatsApp bool
	Email    bool
}

type InvoiceService interface {
	ComputeTotals(ctx context.Context, req dto.ComputeTotalsRequest) (*dto.TotalsResponse, error)
	Create(ctx context.Context, actor Actor, req dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error)
	Submit(ctx context.Context, actor Actor, id uuid.UUID) (*dto.InvoiceResponse, error)
	CreateReturn(ctx context.Context, actor Actor, id uuid.UUID, req dto.ReturnInvoiceRequest) (*dto.InvoiceResponse, error)
	Get(ctx context.Context, actor Actor, id uuid.UUID) (*dto.InvoiceResponse, error)
	List(ctx context.Context, actor Actor, filter repository.InvoiceFilter) (*dto.InvoiceListResponse, error)
	PDF(ctx context.Context, actor Actor, id uuid.UUID) ([]byte, string, error)
	SendWhatsApp(ctx context.Context, actor Actor, id uuid.UUID, mobile *string) (*dto.NotificationResponse, error)
}

type invoiceService struct {
	invoices repository.InvoiceRepository
	sessions repository.SessionRepository
	profiles repository.POSProfileRepository
	queue    JobQueue
	cfg      InvoiceConfig
	now      func() time.Time
}

func NewInvoiceService(
	invoices repository.InvoiceRepository,
	sessions repository.SessionRepository,
	profiles repository.POSProfileRepository,
	queue JobQueue,
	cfg InvoiceConfig,
) InvoiceService {
	cfg.Policy = cfg.Policy.Normalize()
	return &invoiceService{
		invoices: invoices,
		sessions: sessions,
		profiles: profiles,
		queue:    queue,
		cfg:      cfg,
		now:      time.Now,
	}
}

// ── ComputeTotals ─────────────────────────────────────────────────────────────

// ComputeTotals previews the totals of a document without persisting anything.
func (s *invoiceService) ComputeTotals(_ context.Context, req dto.ComputeTotalsRequest) (*dto.TotalsResponse, error) {
	currency := req.Currency
	if currency == "" {
		currency = s.cfg.BaseCurrency
	}
	totals, err := ComputeTotals(TotalsInput{
		NetTotal:       req.NetTotal,
		Taxes:          taxLines(req.Taxes),
		RoundOff:       req.RoundOffAmount,
		ConversionRate: req.ConversionRate,
		CrossCurrency:  !strings.EqualFold(currency, s.cfg.BaseCurrency),
		IsReturn:       req.IsReturn,
		Policy:         s.cfg.Policy,
	})
	if err != nil {
		return nil, err
	}
	return totalsToResponse(totals), nil
}

// ── Create ────────────────────────────────────────────────────────────────────
// Sale flow:
//   1. Validate customer, items and the actor's POS profile
//   2. Submitted sales need the actor's open session
//   3. Compute totals, settle payments (change comes out of the cash mode)
//   4. BEGIN TX: insert invoice + children, bump session invoice_count (CAS on open)
//   5. COMMIT
//   6. (async) enqueue WhatsApp / e-mail notification

func (s *invoiceService) Create(ctx context.Context, actor Actor, req dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if strings.TrimSpace(req.Customer) == "" {
		return nil, apierror.Validation("customer is required")
	}
	if len(req.Items) == 0 {
		return nil, apierror.Validation("at least one item is required")
	}

	profile, err := loadProfile(ctx, s.profiles, actor)
	if err != nil {
		return nil, err
	}

	var session *model.CashSession
	if !req.Draft {
		if session, err = s.openSessionOf(ctx, actor); err != nil {
			return nil, err
		}
	}

	currency := strings.ToUpper(req.Currency)
	if currency == "" {
		currency = profile.Currency
	}

	items := make([]model.InvoiceItem, len(req.Items))
	net, qty := decimal.Zero, decimal.Zero
	for i, it := range req.Items {
		amount := it.Qty.Mul(it.Rate).Sub(it.Discount)
		if amount.IsNegative() {
			return nil, apierror.Validation(fmt.Sprintf("discount exceeds the amount of item %s", it.ItemCode))
		}
		name := it.ItemName
		if name == "" {
			name = it.ItemCode
		}
		items[i] = model.InvoiceItem{
			Position: i,
			ItemCode: it.ItemCode,
			ItemName: name,
			Qty:      it.Qty,
			Rate:     it.Rate,
			Discount: it.Discount,
			Amount:   amount,
		}
		net = net.Add(amount)
		qty = qty.Add(it.Qty)
	}

	totals, err := ComputeTotals(TotalsInput{
		NetTotal:       net,
		Taxes:          taxLines(req.Taxes),
		RoundOff:       req.RoundOffAmount,
		ConversionRate: req.ConversionRate,
		CrossCurrency:  !strings.EqualFold(currency, s.cfg.BaseCurrency),
		Policy:         s.cfg.Policy,
	})
	if err != nil {
		return nil, err
	}

	payments, paid, change, err := settlePayments(req.Payments, totals.RoundedTotal, profile.CashMode)
	if err != nil {
		return nil, err
	}
	if !req.Draft && paid.LessThan(totals.RoundedTotal) {
		return nil, apierror.Validation("payments do not cover the invoice total")
	}

	now := s.now()
	inv := &model.SalesInvoice{
		Number:         invoiceNumber("SINV", now),
		POSProfileID:   profile.ID,
		UserID:         actor.UserID,
		Customer:       strings.TrimSpace(req.Customer),
		CustomerMobile: req.CustomerMobile,
		CustomerEmail:  req.CustomerEmail,
		PostingDate:    now.Format(dateLayout),
		PostedAt:       now,
		Status:         model.InvoiceDraft,
		Currency:       currency,
		TotalQty:       qty,
		PaidAmount:     paid,
		ChangeAmount:   change,
		Items:          items,
		Payments:       payments,
	}
	applyTotals(inv, totals)
	if !inv.RoundOffAmount.IsZero() {
		inv.WriteOffAccount = &profile.WriteOffAccount
	}
	if session != nil {
		inv.Status = model.InvoiceSubmitted
		inv.SessionID = &session.ID
	}

	err = runTx(ctx, s.sessions.DB(), func(tx *gorm.DB) error {
		if err := s.invoices.Create(ctx, tx, inv); err != nil {
			return err
		}
		if session != nil {
			return s.sessions.AttachInvoice(ctx, tx, session.ID)
		}
		return nil
	})
	if err != nil {
		return nil, writeErr(err, "create invoice")
	}

	if inv.Status == model.InvoiceSubmitted {
		s.notify(ctx, inv)
	}
	return invoiceToResponse(inv), nil
}

// ── Submit ────────────────────────────────────────────────────────────────────

// Submit turns a draft into a submitted sale of the actor's open session.
func (s *invoiceService) Submit(ctx context.Context, actor Actor, id uuid.UUID) (*dto.InvoiceResponse, error) {
	inv, err := s.visibleInvoice(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if inv.Status != model.InvoiceDraft {
		return nil, apierror.Conflict("only draft invoices can be submitted")
	}
	session, err := s.openSessionOf(ctx, actor)
	if err != nil {
		return nil, err
	}
	if inv.PaidAmount.LessThan(inv.RoundedTotal) {
		return nil, apierror.Validation("payments do not cover the invoice total")
	}

	postingDate := s.now().Format(dateLayout)
	err = runTx(ctx, s.sessions.DB(), func(tx *gorm.DB) error {
		if err := s.invoices.Submit(ctx, tx, inv.ID, session.ID, postingDate); err != nil {
			if errors.Is(err, repository.ErrStale) {
				return apierror.Conflict("only draft invoices can be submitted")
			}
			return err
		}
		return s.sessions.AttachInvoice(ctx, tx, session.ID)
	})
	if err != nil {
		return nil, writeErr(err, "submit invoice")
	}

	inv.Status = model.InvoiceSubmitted
	inv.SessionID = &session.ID
	inv.PostingDate = postingDate
	s.notify(ctx, inv)
	return invoiceToResponse(inv), nil
}

// ── CreateReturn ──────────────────────────────────────────────────────────────
// A return negates every line and tax of the original. Its grand total is
// computed afresh; the original's round-off is not carried over. When the
// cashier declares the amount actually refunded, the difference becomes the
// return's own round-off, booked to the profile's write-off account.

func (s *invoiceService) CreateReturn(ctx context.Context, actor Actor, id uuid.UUID, req dto.ReturnInvoiceRequest) (*dto.InvoiceResponse, error) {
	orig, err := s.visibleInvoice(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	switch {
	case orig.IsReturn:
		return nil, apierror.Conflict("a return cannot be returned")
	case orig.Status != model.InvoiceSubmitted:
		return nil, apierror.Conflict("only submitted invoices can be returned")
	case orig.Returned:
		return nil, apierror.Conflict("invoice already returned")
	}

	profile, err := loadProfile(ctx, s.profiles, actor)
	if err != nil {
		return nil, err
	}
	session, err := s.openSessionOf(ctx, actor)
	if err != nil {
		return nil, err
	}

	items := make([]model.InvoiceItem, len(orig.Items))
	for i, it := range orig.Items {
		items[i] = model.InvoiceItem{
			Position: it.Position,
			ItemCode: it.ItemCode,
			ItemName: it.ItemName,
			Qty:      it.Qty.Neg(),
			Rate:     it.Rate,
			Discount: it.Discount.Neg(),
			Amount:   it.Amount.Neg(),
		}
	}
	taxes := make([]TaxLine, len(orig.Taxes))
	for i, t := range orig.Taxes {
		taxes[i] = TaxLine{Account: t.Account, Rate: t.Rate, Amount: t.Amount.Neg()}
	}

	rate := orig.ConversionRate
	in := TotalsInput{
		NetTotal:       orig.NetTotal.Neg(),
		Taxes:          taxes,
		ConversionRate: &rate,
		IsReturn:       true,
		Policy:         s.cfg.Policy,
	}
	totals, err := ComputeTotals(in)
	if err != nil {
		return nil, err
	}
	if req.DeclaredRefund != nil {
		delta := ReconcileReturnRefund(totals.GrandTotal, *req.DeclaredRefund, s.cfg.Policy.Precision)
		if !delta.IsZero() {
			in.RoundOff = delta
			if totals, err = ComputeTotals(in); err != nil {
				return nil, err
			}
		}
	}

	mode := req.ModeOfPayment
	if mode == "" {
		mode = profile.CashMode
	}

	now := s.now()
	ret := &model.SalesInvoice{
		Number:         invoiceNumber("SRET", now),
		SessionID:      &session.ID,
		POSProfileID:   orig.POSProfileID,
		UserID:         actor.UserID,
		Customer:       orig.Customer,
		CustomerMobile: orig.CustomerMobile,
		CustomerEmail:  orig.CustomerEmail,
		PostingDate:    now.Format(dateLayout),
		PostedAt:       now,
		Status:         model.InvoiceSubmitted,
		IsReturn:       true,
		ReturnAgainst:  &orig.ID,
		Currency:       orig.Currency,
		TotalQty:       orig.TotalQty.Neg(),
		PaidAmount:     totals.RoundedTotal,
		Items:          items,
		Payments:       []model.InvoicePayment{{ModeOfPayment: mode, Amount: totals.RoundedTotal}},
	}
	applyTotals(ret, totals)
	if !ret.RoundOffAmount.IsZero() {
		ret.WriteOffAccount = &profile.WriteOffAccount
	}

	err = runTx(ctx, s.sessions.DB(), func(tx *gorm.DB) error {
		if err := s.invoices.MarkReturned(ctx, tx, orig.ID); err != nil {
			if errors.Is(err, repository.ErrStale) {
				return apierror.Conflict("invoice already returned")
			}
			return err
		}
		if err := s.invoices.Create(ctx, tx, ret); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return apierror.Conflict("invoice already returned")
			}
			return err
		}
		return s.sessions.AttachInvoice(ctx, tx, session.ID)
	})
	if err != nil {
		return nil, writeErr(err, "create return")
	}
	return invoiceToResponse(ret), nil
}

// ── Queries ───────────────────────────────────────────────────────────────────

func (s *invoiceService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*dto.InvoiceResponse, error) {
	inv, err := s.visibleInvoice(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return invoiceToResponse(inv), nil
}

// List returns a page of invoices. Cashiers only see their own profile.
func (s *invoiceService) List(ctx context.Context, actor Actor, filter repository.InvoiceFilter) (*dto.InvoiceListResponse, error) {
	if !actor.Privileged() {
		if actor.POSProfileID == nil {
			return nil, apierror.Validation("user has no POS profile assigned")
		}
		filter.POSProfileID = actor.POSProfileID
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}

	invoices, total, err := s.invoices.List(ctx, filter)
	if err != nil {
		return nil, apierror.Internal("list invoices", err)
	}
	resp := &dto.InvoiceListResponse{
		Data:  make([]dto.InvoiceResponse, len(invoices)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for i := range invoices {
		resp.Data[i] = *invoiceToResponse(&invoices[i])
	}
	return resp, nil
}

// PDF renders the invoice receipt. Returns the document and its file name.
func (s *invoiceService) PDF(ctx context.Context, actor Actor, id uuid.UUID) ([]byte, string, error) {
	inv, err := s.visibleInvoice(ctx, actor, id)
	if err != nil {
		return nil, "", err
	}
	company := ""
	if p, err := s.profiles.FindByID(ctx, inv.POSProfileID); err == nil {
		company = p.Company
	}
	data, err := infra.RenderInvoicePDF(inv, company)
	if err != nil {
		return nil, "", apierror.Internal("render invoice pdf", err)
	}
	return data, inv.Number + ".pdf", nil
}

// SendWhatsApp queues the invoice for delivery to mobile, or to the
// customer's number on file when mobile is nil.
func (s *invoiceService) SendWhatsApp(ctx context.Context, actor Actor, id uuid.UUID, mobile *string) (*dto.NotificationResponse, error) {
	// No worker consumes the queue while the channel is off.
	if !s.cfg.WhatsApp {
		return nil, apierror.Conflict("whatsapp channel is disabled")
	}
	inv, err := s.visibleInvoice(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if inv.Status != model.InvoiceSubmitted {
		return nil, apierror.Conflict("only submitted invoices can be sent")
	}
	if mobile == nil || strings.TrimSpace(*mobile) == "" {
		mobile = inv.CustomerMobile
	}
	if mobile == nil || strings.TrimSpace(*mobile) == "" {
		return nil, apierror.Validation("mobile_no is required")
	}
	phone, err := infra.NormalizePhone(*mobile)
	if err != nil {
		return nil, apierror.Validation(err.Error())
	}
	if s.queue == nil {
		return nil, apierror.Internal("notification queue not configured", nil)
	}
	if err := s.queue.EnqueueWhatsApp(ctx, worker.WhatsAppJobPayload{InvoiceID: inv.ID, Mobile: phone}); err != nil {
		return nil, apierror.Internal("enqueue whatsapp", err)
	}
	return &dto.NotificationResponse{
		Channel:   model.ChannelWhatsApp,
		Recipient: phone,
		Status:    model.NotificationPending,
	}, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func (s *invoiceService) openSessionOf(ctx context.Context, actor Actor) (*model.CashSession, error) {
	session, err := s.sessions.FindOpenByUser(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("no open cash session for this user")
		}
		return nil, apierror.Internal("look up open session", err)
	}
	return session, nil
}

func (s *invoiceService) visibleInvoice(ctx context.Context, actor Actor, id uuid.UUID) (*model.SalesInvoice, error) {
	inv, err := s.invoices.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "invoice")
	}
	if !actor.canSeeProfile(inv.POSProfileID) {
		return nil, apierror.NotFound("invoice not found")
	}
	return inv, nil
}

// notify enqueues the customer notifications of a submitted sale. Failures
// are logged and never undo the sale.
func (s *invoiceService) notify(ctx context.Context, inv *model.SalesInvoice) {
	if s.queue == nil {
		return
	}
	if s.cfg.WhatsApp && inv.CustomerMobile != nil && *inv.CustomerMobile != "" {
		if err := s.queue.EnqueueWhatsApp(ctx, worker.WhatsAppJobPayload{InvoiceID: inv.ID, Mobile: *inv.CustomerMobile}); err != nil {
			log.Warn().Err(err).Str("invoice", inv.Number).Msg("invoice: failed to enqueue whatsapp job")
		}
	}
	if s.cfg.Email && inv.CustomerEmail != nil && *inv.CustomerEmail != "" {
		if err := s.queue.EnqueueEmail(ctx, worker.EmailJobPayload{InvoiceID: inv.ID, ToEmail: *inv.CustomerEmail}); err != nil {
			log.Warn().Err(err).Str("invoice", inv.Number).Msg("invoice: failed to enqueue email job")
		}
	}
}

// writeErr maps a failed write transaction to a domain error.
func writeErr(err error, op string) error {
	var apiErr *apierror.Error
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, repository.ErrStale):
		return apierror.Conflict("cash session closed while the sale was being recorded")
	case errors.Is(err, repository.ErrDuplicate):
		return apierror.Conflict("invoice already exists")
	default:
		return apierror.Internal(op, err)
	}
}

// settlePayments totals the tendered payments and takes any change back out
// of the cash mode, so stored payments add up to what was actually kept.
func settlePayments(in []dto.PaymentInput, total decimal.Decimal, cashMode string) ([]model.InvoicePayment, decimal.Decimal, decimal.Decimal, error) {
	payments := make([]model.InvoicePayment, 0, len(in))
	tendered := decimal.Zero
	cashIdx := -1
	for _, p := range in {
		if p.Amount.IsZero() {
			continue
		}
		if p.ModeOfPayment == cashMode && cashIdx < 0 {
			cashIdx = len(payments)
		}
		payments = append(payments, model.InvoicePayment{ModeOfPayment: p.ModeOfPayment, Amount: p.Amount})
		tendered = tendered.Add(p.Amount)
	}

	change := tendered.Sub(total)
	if !change.IsPositive() {
		return payments, tendered, decimal.Zero, nil
	}
	if cashIdx < 0 || payments[cashIdx].Amount.LessThan(change) {
		return nil, decimal.Zero, decimal.Zero, apierror.Validation("change can only be given back in " + cashMode)
	}
	payments[cashIdx].Amount = payments[cashIdx].Amount.Sub(change)
	return payments, total, change, nil
}

func taxLines(in []dto.TaxInput) []TaxLine {
	out := make([]TaxLine, len(in))
	for i, t := range in {
		out[i] = TaxLine{Account: t.Account, Rate: t.Rate, Amount: t.Amount}
	}
	return out
}

func applyTotals(inv *model.SalesInvoice, t Totals) {
	inv.ConversionRate = t.ConversionRate
	inv.NetTotal = t.NetTotal
	inv.TotalTaxes = t.TotalTaxes
	inv.GrandTotal = t.GrandTotal
	inv.BaseGrandTotal = t.BaseGrandTotal
	inv.RoundedTotal = t.RoundedTotal
	inv.RoundOffAmount = t.RoundOffAmount
	inv.Taxes = make([]model.InvoiceTax, len(t.Taxes))
	for i, tx := range t.Taxes {
		inv.Taxes[i] = model.InvoiceTax{
			Position: i,
			Account:  tx.Account,
			Rate:     tx.Rate,
			Amount:   tx.Amount,
			Total:    tx.Total,
		}
	}
}

// invoiceNumber builds PREFIX-YYYYMMDD-XXXXXXXX. The suffix is random; the
// unique index on number catches the improbable collision.
func invoiceNumber(prefix string, now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("%s-%s-%s", prefix, now.Format("20060102"), suffix)
}

func totalsToResponse(t Totals) *dto.TotalsResponse {
	resp := &dto.TotalsResponse{
		NetTotal:       t.NetTotal,
		Taxes:          make([]dto.AppliedTaxResponse, len(t.Taxes)),
		TotalTaxes:     t.TotalTaxes,
		GrandTotal:     t.GrandTotal,
		BaseGrandTotal: t.BaseGrandTotal,
		RoundedTotal:   t.RoundedTotal,
		ConversionRate: t.ConversionRate,
		RoundOffAmount: t.RoundOffAmount,
		Absorbed:       t.Absorbed,
	}
	for i, tx := range t.Taxes {
		resp.Taxes[i] = dto.AppliedTaxResponse{Account: tx.Account, Rate: tx.Rate, Amount: tx.Amount, Total: tx.Total}
	}
	return resp
}

func invoiceToResponse(inv *model.SalesInvoice) *dto.InvoiceResponse {
	resp := &dto.InvoiceResponse{
		ID:              inv.ID.String(),
		Number:          inv.Number,
		POSProfileID:    inv.POSProfileID.String(),
		Customer:        inv.Customer,
		CustomerMobile:  inv.CustomerMobile,
		PostingDate:     inv.PostingDate,
		Status:          inv.Status,
		IsReturn:        inv.IsReturn,
		Returned:        inv.Returned,
		Currency:        inv.Currency,
		ConversionRate:  inv.ConversionRate,
		TotalQty:        inv.TotalQty,
		NetTotal:        inv.NetTotal,
		TotalTaxes:      inv.TotalTaxes,
		GrandTotal:      inv.GrandTotal,
		BaseGrandTotal:  inv.BaseGrandTotal,
		RoundedTotal:    inv.RoundedTotal,
		RoundOffAmount:  inv.RoundOffAmount,
		WriteOffAccount: inv.WriteOffAccount,
		PaidAmount:      inv.PaidAmount,
		ChangeAmount:    inv.ChangeAmount,
		Items:           make([]dto.InvoiceItemResponse, len(inv.Items)),
		Taxes:           make([]dto.AppliedTaxResponse, len(inv.Taxes)),
		Payments:        make([]dto.PaymentResponse, len(inv.Payments)),
		CreatedAt:       inv.CreatedAt.Format(time.RFC3339),
	}
	if inv.SessionID != nil {
		sid := inv.SessionID.String()
		resp.SessionID = &sid
	}
	if inv.ReturnAgainst != nil {
		ra := inv.ReturnAgainst.String()
		resp.ReturnAgainst = &ra
	}
	for i, it := range inv.Items {
		resp.Items[i] = dto.InvoiceItemResponse{
			ItemCode: it.ItemCode,
			ItemName: it.ItemName,
			Qty:      it.Qty,
			Rate:     it.Rate,
			Discount: it.Discount,
			Amount:   it.Amount,
		}
	}
	for i, t := range inv.Taxes {
		resp.Taxes[i] = dto.AppliedTaxResponse{Account: t.Account, Rate: t.Rate, Amount: t.Amount, Total: t.Total}
	}
	for i, p := range inv.Payments {
		resp.Payments[i] = dto.PaymentResponse{ModeOfPayment: p.ModeOfPayment, Amount: p.Amount}
	}
	return resp
}
