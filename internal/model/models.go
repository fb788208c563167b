package model

// All lists every persisted model in migration order.
func All() []any {
	return []any{
		&User{},
		&POSProfile{},
		&POSPaymentMode{},
		&CashSession{},
		&PaymentModeBalance{},
		&SalesInvoice{},
		&InvoiceItem{},
		&InvoiceTax{},
		&InvoicePayment{},
		&NotificationLog{},
	}
}
