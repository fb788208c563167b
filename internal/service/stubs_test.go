package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"klikpos/internal/model"
	"klikpos/internal/repository"
	"klikpos/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	_ repository.SessionRepository    = (*memSessionRepo)(nil)
	_ repository.InvoiceRepository    = (*memInvoiceRepo)(nil)
	_ repository.POSProfileRepository = (*memProfileRepo)(nil)
	_ repository.UserRepository       = (*memUserRepo)(nil)
	_ JobQueue                        = (*fakeQueue)(nil)
)

// ── In-memory SessionRepository ──────────────────────────────────────────────

type memSessionRepo struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*model.CashSession
	writes   int
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: make(map[uuid.UUID]*model.CashSession)}
}

func cloneSession(s *model.CashSession) *model.CashSession {
	c := *s
	c.Balances = append([]model.PaymentModeBalance(nil), s.Balances...)
	return &c
}

// Create enforces one open session per user the way the partial unique
// index does.
func (r *memSessionRepo) Create(_ context.Context, _ *gorm.DB, s *model.CashSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.sessions {
		if existing.UserID == s.UserID && existing.Status == model.SessionOpen {
			return repository.ErrDuplicate
		}
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	for i := range s.Balances {
		s.Balances[i].SessionID = s.ID
	}
	r.sessions[s.ID] = cloneSession(s)
	r.writes++
	return nil
}

func (r *memSessionRepo) FindOpenByUser(_ context.Context, userID uuid.UUID) (*model.CashSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.UserID == userID && s.Status == model.SessionOpen {
			return cloneSession(s), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memSessionRepo) FindByID(_ context.Context, id uuid.UUID) (*model.CashSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return cloneSession(s), nil
}

func (r *memSessionRepo) MarkClosed(_ context.Context, _ *gorm.DB, s *model.CashSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.sessions[s.ID]
	if !ok || stored.Status != model.SessionOpen {
		return repository.ErrStale
	}
	stored.Status = model.SessionClosed
	stored.ClosedAt = s.ClosedAt
	stored.TotalQuantity = s.TotalQuantity
	stored.NetTotal = s.NetTotal
	stored.GrandTotal = s.GrandTotal
	stored.Scope = s.Scope
	stored.Notes = s.Notes
	r.writes++
	return nil
}

func (r *memSessionRepo) SaveBalances(_ context.Context, _ *gorm.DB, sessionID uuid.UUID, balances []model.PaymentModeBalance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := r.sessions[sessionID]
	stored.Balances = append([]model.PaymentModeBalance(nil), balances...)
	r.writes++
	return nil
}

func (r *memSessionRepo) AttachInvoice(_ context.Context, _ *gorm.DB, sessionID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sessionID]
	if !ok || s.Status != model.SessionOpen {
		return repository.ErrStale
	}
	s.InvoiceCount++
	return nil
}

func (r *memSessionRepo) History(_ context.Context, page, limit int) ([]model.CashSession, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.CashSession
	for _, s := range r.sessions {
		if s.Status == model.SessionClosed {
			out = append(out, *cloneSession(s))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClosedAt.After(*out[j].ClosedAt) })
	total := int64(len(out))
	start := (page - 1) * limit
	if start > len(out) {
		start = len(out)
	}
	end := start + limit
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], total, nil
}

func (r *memSessionRepo) DB() *gorm.DB { return nil }

// forceClose simulates a concurrent close committed by someone else.
func (r *memSessionRepo) forceClose(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[id].Status = model.SessionClosed
}

func (r *memSessionRepo) writeCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.writes
}

// ── In-memory InvoiceRepository ──────────────────────────────────────────────

type memInvoiceRepo struct {
	mu       sync.Mutex
	invoices map[uuid.UUID]*model.SalesInvoice
	order    []uuid.UUID
}

func newMemInvoiceRepo() *memInvoiceRepo {
	return &memInvoiceRepo{invoices: make(map[uuid.UUID]*model.SalesInvoice)}
}

func cloneInvoice(inv *model.SalesInvoice) *model.SalesInvoice {
	c := *inv
	c.Items = append([]model.InvoiceItem(nil), inv.Items...)
	c.Taxes = append([]model.InvoiceTax(nil), inv.Taxes...)
	c.Payments = append([]model.InvoicePayment(nil), inv.Payments...)
	return &c
}

func (r *memInvoiceRepo) Create(_ context.Context, _ *gorm.DB, inv *model.SalesInvoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.invoices {
		if existing.Number == inv.Number {
			return repository.ErrDuplicate
		}
		if inv.ReturnAgainst != nil && existing.ReturnAgainst != nil && *existing.ReturnAgainst == *inv.ReturnAgainst {
			return repository.ErrDuplicate
		}
	}
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = time.Now()
	}
	r.invoices[inv.ID] = cloneInvoice(inv)
	r.order = append(r.order, inv.ID)
	return nil
}

func (r *memInvoiceRepo) FindByID(_ context.Context, id uuid.UUID) (*model.SalesInvoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invoices[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return cloneInvoice(inv), nil
}

func (r *memInvoiceRepo) Submit(_ context.Context, _ *gorm.DB, id, sessionID uuid.UUID, postingDate string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invoices[id]
	if !ok || inv.Status != model.InvoiceDraft {
		return repository.ErrStale
	}
	inv.Status = model.InvoiceSubmitted
	inv.SessionID = &sessionID
	inv.PostingDate = postingDate
	return nil
}

func (r *memInvoiceRepo) MarkReturned(_ context.Context, _ *gorm.DB, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invoices[id]
	if !ok || inv.Status != model.InvoiceSubmitted || inv.IsReturn || inv.Returned {
		return repository.ErrStale
	}
	inv.Returned = true
	return nil
}

func (r *memInvoiceRepo) SetPDFPath(_ context.Context, id uuid.UUID, path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invoices[id].PDFPath = &path
	return nil
}

func (r *memInvoiceRepo) List(_ context.Context, f repository.InvoiceFilter) ([]model.SalesInvoice, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.SalesInvoice
	for _, id := range r.order {
		inv := r.invoices[id]
		if f.POSProfileID != nil && inv.POSProfileID != *f.POSProfileID {
			continue
		}
		if f.Status != "" && inv.Status != f.Status {
			continue
		}
		out = append(out, *cloneInvoice(inv))
	}
	return out, int64(len(out)), nil
}

func (r *memInvoiceRepo) sum(match func(*model.SalesInvoice) bool) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, inv := range r.invoices {
		if inv.Status != model.InvoiceSubmitted || !match(inv) {
			continue
		}
		for _, p := range inv.Payments {
			out[p.ModeOfPayment] = out[p.ModeOfPayment].Add(p.Amount)
		}
	}
	return out
}

func (r *memInvoiceRepo) SumPaymentsBySession(_ context.Context, _ *gorm.DB, sessionID uuid.UUID) (map[string]decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sum(func(inv *model.SalesInvoice) bool {
		return inv.SessionID != nil && *inv.SessionID == sessionID
	}), nil
}

func (r *memInvoiceRepo) SumPaymentsByProfileDay(_ context.Context, _ *gorm.DB, profileID uuid.UUID, day string) (map[string]decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sum(func(inv *model.SalesInvoice) bool {
		return inv.POSProfileID == profileID && inv.PostingDate == day
	}), nil
}

// ── In-memory POSProfileRepository ───────────────────────────────────────────

type memProfileRepo struct {
	profiles map[uuid.UUID]*model.POSProfile
}

func newMemProfileRepo(profiles ...*model.POSProfile) *memProfileRepo {
	r := &memProfileRepo{profiles: make(map[uuid.UUID]*model.POSProfile)}
	for _, p := range profiles {
		r.profiles[p.ID] = p
	}
	return r
}

func (r *memProfileRepo) Create(_ context.Context, p *model.POSProfile) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.profiles[p.ID] = p
	return nil
}

func (r *memProfileRepo) FindByID(_ context.Context, id uuid.UUID) (*model.POSProfile, error) {
	p, ok := r.profiles[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *memProfileRepo) FindByName(_ context.Context, name string) (*model.POSProfile, error) {
	for _, p := range r.profiles {
		if p.Name == name {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// ── In-memory UserRepository ─────────────────────────────────────────────────

type memUserRepo struct {
	users map[uuid.UUID]*model.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *memUserRepo) Create(_ context.Context, u *model.User) error {
	for _, existing := range r.users {
		if existing.Username == u.Username {
			return repository.ErrDuplicate
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.users[u.ID] = u
	return nil
}

func (r *memUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range r.users {
		if u.Username == username && u.Active {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *memUserRepo) List(_ context.Context) ([]model.User, error) {
	out := make([]model.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

// ── Job queue ────────────────────────────────────────────────────────────────

type fakeQueue struct {
	mu       sync.Mutex
	whatsapp []worker.WhatsAppJobPayload
	email    []worker.EmailJobPayload
	fail     bool
}

func (q *fakeQueue) EnqueueWhatsApp(_ context.Context, p worker.WhatsAppJobPayload) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.fail {
		return errors.New("redis: connection refused")
	}
	q.whatsapp = append(q.whatsapp, p)
	return nil
}

func (q *fakeQueue) EnqueueEmail(_ context.Context, p worker.EmailJobPayload) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.fail {
		return errors.New("redis: connection refused")
	}
	q.email = append(q.email, p)
	return nil
}

// ── Fixtures ─────────────────────────────────────────────────────────────────

var testNow = time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)

func testProfile() *model.POSProfile {
	return &model.POSProfile{
		ID:              uuid.New(),
		Name:            "Main Till",
		Company:         "Klik Stores",
		Currency:        "KES",
		WriteOffAccount: "Write Off - KS",
		CashMode:        "Cash",
		PaymentModes: []model.POSPaymentMode{
			{Position: 0, ModeOfPayment: "Cash", Type: "Cash", IsDefault: true},
			{Position: 1, ModeOfPayment: "Card", Type: "Bank"},
		},
	}
}

func cashier(profileID uuid.UUID) Actor {
	return Actor{UserID: uuid.New(), Username: "jane", Role: model.RoleCashier, POSProfileID: &profileID}
}

func supervisor(profileID uuid.UUID) Actor {
	return Actor{UserID: uuid.New(), Username: "sam", Role: model.RoleSupervisor, POSProfileID: &profileID}
}
