package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type BalanceInput struct {
	ModeOfPayment string          `json:"mode_of_payment" validate:"required,max=140"`
	OpeningAmount decimal.Decimal `json:"opening_amount"  validate:"min=0"`
}

// OpenSessionRequest opens the caller's drawer. An empty balance list is
// rejected by the service, not the binder.
type OpenSessionRequest struct {
	Balances []BalanceInput `json:"balance_details" validate:"dive"`
}

type CloseSessionRequest struct {
	// Scope: "session" (default) | "day". Day scope needs supervisor or admin.
	Scope string `json:"scope" validate:"omitempty,oneof=session day"`
	// ClosingCounts maps mode of payment to the counted amount.
	ClosingCounts map[string]decimal.Decimal `json:"closing_counts"`
	TotalQuantity decimal.Decimal            `json:"total_quantity"`
	NetTotal      decimal.Decimal            `json:"net_total"`
	GrandTotal    decimal.Decimal            `json:"grand_total"`
	Notes         *string                    `json:"notes" validate:"omitempty,max=500"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type BalanceResponse struct {
	ModeOfPayment string          `json:"mode_of_payment"`
	Opening       decimal.Decimal `json:"opening_amount"`
	Sales         decimal.Decimal `json:"sales_amount"`
	Expected      decimal.Decimal `json:"expected_amount"`
	Closing       decimal.Decimal `json:"closing_amount"`
	Variance      decimal.Decimal `json:"difference"`
}

type SessionResponse struct {
	ID            string            `json:"id"`
	UserID        string            `json:"user_id"`
	POSProfileID  string            `json:"pos_profile_id"`
	Status        string            `json:"status"` // open | closed
	PostingDate   string            `json:"posting_date"`
	InvoiceCount  int               `json:"invoice_count"`
	Scope         *string           `json:"scope,omitempty"`
	TotalQuantity decimal.Decimal   `json:"total_quantity"`
	NetTotal      decimal.Decimal   `json:"net_total"`
	GrandTotal    decimal.Decimal   `json:"grand_total"`
	Notes         *string           `json:"notes"`
	OpenedAt      string            `json:"opened_at"`
	ClosedAt      *string           `json:"closed_at"`
	Balances      []BalanceResponse `json:"balance_details"`
}

type IsOpenResponse struct {
	IsOpen bool `json:"is_open"`
}

type ReconciliationResponse struct {
	SessionID      string            `json:"session_id"`
	Scope          string            `json:"scope"`
	Status         string            `json:"status"`
	Rows           []BalanceResponse `json:"payment_reconciliation"`
	TotalOpening   decimal.Decimal   `json:"total_opening"`
	TotalSales     decimal.Decimal   `json:"total_sales"`
	TotalExpected  decimal.Decimal   `json:"total_expected"`
	TotalClosing   decimal.Decimal   `json:"total_closing"`
	TotalVariance  decimal.Decimal   `json:"total_difference"`
	VariancePct    decimal.Decimal   `json:"difference_pct"`
	Classification string            `json:"classification"` // normal | warning | critical
	TotalQuantity  decimal.Decimal   `json:"total_quantity"`
	NetTotal       decimal.Decimal   `json:"net_total"`
	GrandTotal     decimal.Decimal   `json:"grand_total"`
	ClosedAt       string            `json:"closed_at"`
}
