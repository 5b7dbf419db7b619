package paystack

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"marketplace-wallet/config"
	"marketplace-wallet/internal/core/domain"
	"marketplace-wallet/internal/core/ports"

	"github.com/rs/zerolog"
)

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client implements ports.PaymentProvider against the Paystack API.
// The shared secret both authenticates outbound calls (bearer token) and
// verifies inbound webhook signatures; it is injected here at construction
// time and read from nowhere else.
type Client struct {
	baseURL     string
	secretKey   string
	callbackURL string
	http        HTTPClient
	log         zerolog.Logger
}

// NewClient creates a Paystack API client.
func NewClient(cfg config.PaystackConfig, httpClient HTTPClient, log zerolog.Logger) *Client {
	return &Client{
		baseURL:     cfg.BaseURL,
		secretKey:   cfg.SecretKey,
		callbackURL: cfg.CallbackURL,
		http:        httpClient,
		log:         log,
	}
}

// envelope is Paystack's standard response wrapper.
type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type initializeRequest struct {
	Email       string               `json:"email"`
	Amount      int64                `json:"amount"` // minor units
	CallbackURL string               `json:"callback_url,omitempty"`
	Metadata    domain.EventMetadata `json:"metadata"`
}

type initializeData struct {
	AuthorizationURL string `json:"authorization_url"`
	Reference        string `json:"reference"`
}

// CreatePaymentLink initializes a checkout for an order and returns the
// authorization URL. The order and cart ids ride in the request metadata so
// the provider's webhook event can be correlated back to the order.
func (c *Client) CreatePaymentLink(ctx context.Context, order *domain.Order, payer *domain.User) (string, error) {
	req := initializeRequest{
		Email:       payer.Email,
		Amount:      domain.AmountToMinorUnits(order.Total),
		CallbackURL: c.callbackURL,
		Metadata: domain.EventMetadata{
			OrderID: order.ID,
			CartID:  order.CartID,
		},
	}

	var data initializeData
	if err := c.post(ctx, "/transaction/initialize", req, &data); err != nil {
		return "", fmt.Errorf("initialize transaction: %w", err)
	}
	if data.AuthorizationURL == "" {
		return "", fmt.Errorf("initialize transaction: empty authorization url")
	}

	c.log.Info().
		Str("order_id", order.ID.String()).
		Str("reference", data.Reference).
		Msg("payment link created")

	return data.AuthorizationURL, nil
}

type recipientRequest struct {
	Type          string `json:"type"`
	Name          string `json:"name"`
	AccountNumber string `json:"account_number"`
	BankCode      string `json:"bank_code"`
	Currency      string `json:"currency"`
}

type recipientData struct {
	RecipientCode string `json:"recipient_code"`
}

type transferRequest struct {
	Source    string `json:"source"`
	Amount    int64  `json:"amount"` // minor units
	Recipient string `json:"recipient"`
	Reason    string `json:"reason,omitempty"`
}

type transferData struct {
	TransferCode string `json:"transfer_code"`
	Reference    string `json:"reference"`
}

// InitiatePayout creates a transfer recipient for the destination account
// and dispatches the transfer. The returned reference identifies the
// transfer on the provider side and is recorded on the withdrawal ledger
// entry. A timeout here is an unknown outcome: the error is surfaced and no
// local debit happens.
func (c *Client) InitiatePayout(ctx context.Context, req ports.PayoutRequest) (string, error) {
	var recipient recipientData
	err := c.post(ctx, "/transferrecipient", recipientRequest{
		Type:          "nuban",
		Name:          req.AccountName,
		AccountNumber: req.AccountNumber,
		BankCode:      req.BankCode,
		Currency:      "NGN",
	}, &recipient)
	if err != nil {
		return "", fmt.Errorf("create transfer recipient: %w", err)
	}
	if recipient.RecipientCode == "" {
		return "", fmt.Errorf("create transfer recipient: empty recipient code")
	}

	var transfer transferData
	err = c.post(ctx, "/transfer", transferRequest{
		Source:    "balance",
		Amount:    domain.AmountToMinorUnits(req.Amount),
		Recipient: recipient.RecipientCode,
		Reason:    req.Reason,
	}, &transfer)
	if err != nil {
		return "", fmt.Errorf("initiate transfer: %w", err)
	}

	ref := transfer.Reference
	if ref == "" {
		ref = transfer.TransferCode
	}
	if ref == "" {
		return "", fmt.Errorf("initiate transfer: empty transfer reference")
	}

	c.log.Info().
		Str("recipient", recipient.RecipientCode).
		Str("reference", ref).
		Msg("payout dispatched")

	return ref, nil
}

// VerifyWebhookSignature checks the hex-encoded HMAC-SHA512 signature of a
// raw webhook body. The provided signature is hex-decoded and compared in
// constant time over raw bytes; string comparison would accept case
// variants of the same digest. Must run before the body is parsed.
func (c *Client) VerifyWebhookSignature(rawBody []byte, signatureHex string) bool {
	provided, err := hex.DecodeString(signatureHex)
	if err != nil {
		return false
	}
	mac := hmac.New(sha512.New, []byte(c.secretKey))
	mac.Write(rawBody)
	return hmac.Equal(mac.Sum(nil), provided)
}

// post sends an authenticated JSON request and decodes the data payload.
func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("provider request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read provider response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Warn().
			Int("status", resp.StatusCode).
			Str("path", path).
			Msg("provider returned non-success status")
		return fmt.Errorf("provider status %d", resp.StatusCode)
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return fmt.Errorf("decode provider response: %w", err)
	}
	if !env.Status {
		return fmt.Errorf("provider rejected request: %s", env.Message)
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode provider data: %w", err)
		}
	}
	return nil
}
