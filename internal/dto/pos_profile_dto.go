package dto

type PaymentModeResponse struct {
	ModeOfPayment string `json:"mode_of_payment"`
	Type          string `json:"type"`
	IsDefault     bool   `json:"default"`
}

type POSProfileResponse struct {
	ID              string                `json:"id"`
	Name            string                `json:"name"`
	Company         string                `json:"company"`
	Currency        string                `json:"currency"`
	WriteOffAccount string                `json:"write_off_account"`
	CashMode        string                `json:"cash_mode"`
	PaymentModes    []PaymentModeResponse `json:"payments"`
}
