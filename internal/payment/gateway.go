package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Gateway abstracts the external payment provider. The provider is an opaque
// collaborator: it approves or rejects a payment for an amount, nothing more.
type Gateway interface {
	// CreatePayment registers a sale and returns the approval URL the buyer
	// is redirected to. Not safe to retry blindly: a retried creation can
	// double-charge, so callers surface failures instead of retrying.
	CreatePayment(ctx context.Context, req CreatePaymentRequest) (string, error)

	// ExecutePayment confirms an approved payment at the gateway.
	ExecutePayment(ctx context.Context, paymentID, payerID string) error
}

// CreatePaymentRequest carries everything the gateway needs to register a sale.
type CreatePaymentRequest struct {
	Amount      float64
	Currency    string
	Description string
	ReturnURL   string
	CancelURL   string
}

// Config holds gateway client settings.
type Config struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
}

// restGateway talks to a PayPal-style payments REST API.
type restGateway struct {
	cfg    Config
	client *http.Client
	logger zerolog.Logger
}

// NewGateway creates a REST payment gateway client.
func NewGateway(cfg Config, logger zerolog.Logger) Gateway {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &restGateway{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		logger: logger.With().Str("component", "payment_gateway").Logger(),
	}
}

type paymentPayload struct {
	Intent       string        `json:"intent"`
	Payer        payer         `json:"payer"`
	Transactions []transaction `json:"transactions"`
	RedirectURLs redirectURLs  `json:"redirect_urls"`
}

type payer struct {
	PaymentMethod string `json:"payment_method"`
}

type transaction struct {
	Amount      amount `json:"amount"`
	Description string `json:"description"`
}

type amount struct {
	Total    string `json:"total"`
	Currency string `json:"currency"`
}

type redirectURLs struct {
	ReturnURL string `json:"return_url"`
	CancelURL string `json:"cancel_url"`
}

type paymentResponse struct {
	ID    string `json:"id"`
	Links []link `json:"links"`
}

type link struct {
	Href   string `json:"href"`
	Rel    string `json:"rel"`
	Method string `json:"method"`
}

// CreatePayment registers a sale and extracts the REDIRECT approval link.
func (g *restGateway) CreatePayment(ctx context.Context, req CreatePaymentRequest) (string, error) {
	payload := paymentPayload{
		Intent: "sale",
		Payer:  payer{PaymentMethod: "paypal"},
		Transactions: []transaction{{
			Amount: amount{
				Total:    strconv.FormatFloat(req.Amount, 'f', 2, 64),
				Currency: req.Currency,
			},
			Description: req.Description,
		}},
		RedirectURLs: redirectURLs{
			ReturnURL: req.ReturnURL,
			CancelURL: req.CancelURL,
		},
	}

	var resp paymentResponse
	if err := g.post(ctx, "/v1/payments/payment", payload, &resp); err != nil {
		return "", err
	}

	for _, l := range resp.Links {
		if l.Method == "REDIRECT" || l.Rel == "approval_url" {
			g.logger.Debug().Str("payment_id", resp.ID).Msg("payment created")
			return l.Href, nil
		}
	}

	g.logger.Error().Str("payment_id", resp.ID).Msg("gateway response has no approval link")
	return "", fmt.Errorf("gateway response has no approval link")
}

// ExecutePayment confirms an approved payment.
func (g *restGateway) ExecutePayment(ctx context.Context, paymentID, payerID string) error {
	path := "/v1/payments/payment/" + paymentID + "/execute"
	payload := map[string]string{"payer_id": payerID}

	if err := g.post(ctx, path, payload, nil); err != nil {
		return err
	}

	g.logger.Debug().Str("payment_id", paymentID).Msg("payment executed")
	return nil
}

func (g *restGateway) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode gateway request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	// Idempotency key: a gateway-side retry of the same request must not
	// create a second charge.
	req.Header.Set("PayPal-Request-Id", uuid.New().String())
	req.SetBasicAuth(g.cfg.ClientID, g.cfg.ClientSecret)

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Error().Err(err).Str("path", path).Msg("gateway request failed")
		return fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		g.logger.Error().
			Int("status", resp.StatusCode).
			Str("path", path).
			Str("body", string(detail)).
			Msg("gateway rejected request")
		return fmt.Errorf("gateway rejected request: status %d: %s", resp.StatusCode, string(detail))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode gateway response: %w", err)
		}
	}

	return nil
}
