package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type InvoiceItemInput struct {
	ItemCode string          `json:"item_code" validate:"required,max=140"`
	ItemName string          `json:"item_name" validate:"omitempty,max=140"`
	Qty      decimal.Decimal `json:"qty"       validate:"required,gt=0"`
	Rate     decimal.Decimal `json:"rate"      validate:"min=0"`
	Discount decimal.Decimal `json:"discount"  validate:"min=0"`
}

type TaxInput struct {
	Account string          `json:"account_head" validate:"required,max=140"`
	Rate    decimal.Decimal `json:"rate"         validate:"min=0"`
	Amount  decimal.Decimal `json:"tax_amount"`
}

type PaymentInput struct {
	ModeOfPayment string          `json:"mode_of_payment" validate:"required,max=140"`
	Amount        decimal.Decimal `json:"amount"          validate:"min=0"`
}

// CreateInvoiceRequest records a sale. Customer and items are checked by the
// service so the error is a domain validation error.
type CreateInvoiceRequest struct {
	Customer       string             `json:"customer"        validate:"max=140"`
	CustomerMobile *string            `json:"customer_mobile" validate:"omitempty,max=20"`
	CustomerEmail  *string            `json:"customer_email"  validate:"omitempty,email"`
	Items          []InvoiceItemInput `json:"items"           validate:"dive"`
	Taxes          []TaxInput         `json:"taxes"           validate:"dive"`
	Payments       []PaymentInput     `json:"payments"        validate:"dive"`
	Currency       string             `json:"currency"        validate:"omitempty,len=3"`
	ConversionRate *decimal.Decimal   `json:"conversion_rate"`
	RoundOffAmount decimal.Decimal    `json:"rounding_adjustment"`
	// Draft saves the invoice without submitting it.
	Draft bool `json:"draft"`
}

// ComputeTotalsRequest previews totals without persisting anything.
type ComputeTotalsRequest struct {
	NetTotal       decimal.Decimal  `json:"net_total"`
	Taxes          []TaxInput       `json:"taxes"    validate:"dive"`
	RoundOffAmount decimal.Decimal  `json:"rounding_adjustment"`
	Currency       string           `json:"currency" validate:"omitempty,len=3"`
	ConversionRate *decimal.Decimal `json:"conversion_rate"`
	IsReturn       bool             `json:"is_return"`
}

// ReturnInvoiceRequest creates a full return of a submitted invoice.
// DeclaredRefund is what the cashier actually paid back; when it differs from
// the computed refund the difference is written off.
type ReturnInvoiceRequest struct {
	DeclaredRefund *decimal.Decimal `json:"declared_refund"`
	ModeOfPayment  string           `json:"mode_of_payment" validate:"omitempty,max=140"`
}

type SendWhatsAppRequest struct {
	Mobile *string `json:"mobile_no" validate:"omitempty,max=20"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type AppliedTaxResponse struct {
	Account string          `json:"account_head"`
	Rate    decimal.Decimal `json:"rate"`
	Amount  decimal.Decimal `json:"tax_amount"`
	Total   decimal.Decimal `json:"total"`
}

type TotalsResponse struct {
	NetTotal       decimal.Decimal      `json:"net_total"`
	Taxes          []AppliedTaxResponse `json:"taxes"`
	TotalTaxes     decimal.Decimal      `json:"total_taxes_and_charges"`
	GrandTotal     decimal.Decimal      `json:"grand_total"`
	BaseGrandTotal decimal.Decimal      `json:"base_grand_total"`
	RoundedTotal   decimal.Decimal      `json:"rounded_total"`
	ConversionRate decimal.Decimal      `json:"conversion_rate"`
	RoundOffAmount decimal.Decimal      `json:"rounding_adjustment"`
	Absorbed       decimal.Decimal      `json:"absorbed_amount"`
}

type InvoiceItemResponse struct {
	ItemCode string          `json:"item_code"`
	ItemName string          `json:"item_name"`
	Qty      decimal.Decimal `json:"qty"`
	Rate     decimal.Decimal `json:"rate"`
	Discount decimal.Decimal `json:"discount"`
	Amount   decimal.Decimal `json:"amount"`
}

type PaymentResponse struct {
	ModeOfPayment string          `json:"mode_of_payment"`
	Amount        decimal.Decimal `json:"amount"`
}

type InvoiceResponse struct {
	ID              string                `json:"id"`
	Number          string                `json:"name"`
	SessionID       *string               `json:"session_id"`
	POSProfileID    string                `json:"pos_profile_id"`
	Customer        string                `json:"customer"`
	CustomerMobile  *string               `json:"customer_mobile"`
	PostingDate     string                `json:"posting_date"`
	Status          string                `json:"status"`
	IsReturn        bool                  `json:"is_return"`
	ReturnAgainst   *string               `json:"return_against"`
	Returned        bool                  `json:"returned"`
	Currency        string                `json:"currency"`
	ConversionRate  decimal.Decimal       `json:"conversion_rate"`
	TotalQty        decimal.Decimal       `json:"total_qty"`
	NetTotal        decimal.Decimal       `json:"net_total"`
	TotalTaxes      decimal.Decimal       `json:"total_taxes_and_charges"`
	GrandTotal      decimal.Decimal       `json:"grand_total"`
	BaseGrandTotal  decimal.Decimal       `json:"base_grand_total"`
	RoundedTotal    decimal.Decimal       `json:"rounded_total"`
	RoundOffAmount  decimal.Decimal       `json:"rounding_adjustment"`
	WriteOffAccount *string               `json:"write_off_account"`
	PaidAmount      decimal.Decimal       `json:"paid_amount"`
	ChangeAmount    decimal.Decimal       `json:"change_amount"`
	Items           []InvoiceItemResponse `json:"items"`
	Taxes           []AppliedTaxResponse  `json:"taxes"`
	Payments        []PaymentResponse     `json:"payments"`
	CreatedAt       string                `json:"created_at"`
}

type InvoiceListResponse struct {
	Data  []InvoiceResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

// NotificationResponse acknowledges a queued send. ID is set once the
// worker has recorded the attempt.
type NotificationResponse struct {
	ID        string `json:"id,omitempty"`
	Channel   string `json:"channel"`
	Recipient string `json:"recipient"`
	Status    string `json:"status"`
}
