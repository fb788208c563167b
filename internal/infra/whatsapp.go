package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrInvalidPhone is returned when a number cannot be sent to the Cloud API.
var ErrInvalidPhone = errors.New("whatsapp: phone number must have 10 to 15 digits including the country code")

// WhatsAppConfig holds the Cloud API settings.
type WhatsAppConfig struct {
	BaseURL       string // e.g. https://graph.facebook.com
	Version       string // e.g. v19.0
	PhoneNumberID string
	Token         string
	Template      string
	Language      string
	Timeout       time.Duration
}

// InvoiceMessage is the data rendered into the invoice notification template.
// Body parameters are sent in this order: customer, invoice number, amount.
type InvoiceMessage struct {
	To            string
	CustomerName  string
	InvoiceNumber string
	Amount        string
}

type templateParameter struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type templateComponent struct {
	Type       string              `json:"type"`
	Parameters []templateParameter `json:"parameters"`
}

type templatePayload struct {
	MessagingProduct string `json:"messaging_product"`
	To               string `json:"to"`
	Type             string `json:"type"`
	Template         struct {
		Name     string `json:"name"`
		Language struct {
			Code string `json:"code"`
		} `json:"language"`
		Components []templateComponent `json:"components,omitempty"`
	} `json:"template"`
}

// WhatsAppResponse is the Cloud API reply to a send request.
type WhatsAppResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

// MessageID returns the provider id of the first message, if any.
func (r *WhatsAppResponse) MessageID() string {
	if r == nil || len(r.Messages) == 0 {
		return ""
	}
	return r.Messages[0].ID
}

type whatsAppError struct {
	Error struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// WhatsAppClient sends template messages through the WhatsApp Cloud API.
type WhatsAppClient struct {
	cfg        WhatsAppConfig
	httpClient *http.Client
}

func NewWhatsAppClient(cfg WhatsAppConfig) *WhatsAppClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	return &WhatsAppClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Configured reports whether every setting needed to send is present.
func (c *WhatsAppClient) Configured() bool {
	return c.cfg.BaseURL != "" && c.cfg.Version != "" && c.cfg.PhoneNumberID != "" && c.cfg.Token != "" && c.cfg.Template != ""
}

// SendInvoice sends the invoice notification template to msg.To.
func (c *WhatsAppClient) SendInvoice(ctx context.Context, msg InvoiceMessage) (*WhatsAppResponse, error) {
	if !c.Configured() {
		return nil, errors.New("whatsapp: client is not configured")
	}
	to, err := NormalizePhone(msg.To)
	if err != nil {
		return nil, err
	}

	var payload templatePayload
	payload.MessagingProduct = "whatsapp"
	payload.To = to
	payload.Type = "template"
	payload.Template.Name = c.cfg.Template
	payload.Template.Language.Code = c.cfg.Language

	var params []templateParameter
	for _, p := range []string{msg.CustomerName, msg.InvoiceNumber, msg.Amount} {
		if p = strings.TrimSpace(p); p != "" {
			params = append(params, templateParameter{Type: "text", Text: p})
		}
	}
	if len(params) > 0 {
		payload.Template.Components = []templateComponent{{Type: "body", Parameters: params}}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("whatsapp: marshal payload: %w", err)
	}

	url := fmt.Sprintf("%s/%s/%s/messages", strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.Version, c.cfg.PhoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("whatsapp: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("whatsapp: api unreachable: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("whatsapp: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr whatsAppError
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("whatsapp: api returned %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		return nil, fmt.Errorf("whatsapp: api returned %d", resp.StatusCode)
	}

	var result WhatsAppResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("whatsapp: decode response: %w", err)
	}
	return &result, nil
}

// NormalizePhone strips formatting and the leading "+" and checks the result
// is 10 to 15 digits.
func NormalizePhone(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "+")
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '(' || r == ')' || r == '.':
		default:
			return "", ErrInvalidPhone
		}
	}
	digits := b.String()
	if len(digits) < 10 || len(digits) > 15 {
		return "", ErrInvalidPhone
	}
	return digits, nil
}
