package paystack

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"marketplace-wallet/config"
	"marketplace-wallet/internal/core/domain"
	"marketplace-wallet/internal/core/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeHTTPClient replays canned responses and records requests.
type fakeHTTPClient struct {
	requests  []*http.Request
	bodies    [][]byte
	responses []*http.Response
	err       error
}

func (f *fakeHTTPClient) Do(req *http.Request) (*http.Response, error) {
	body, _ := io.ReadAll(req.Body)
	f.requests = append(f.requests, req)
	f.bodies = append(f.bodies, body)
	if f.err != nil {
		return nil, f.err
	}
	resp := f.responses[0]
	f.responses = f.responses[1:]
	return resp, nil
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func newTestClient(fake *fakeHTTPClient) *Client {
	return NewClient(config.PaystackConfig{
		SecretKey:   "sk_test_secret",
		BaseURL:     "https://api.paystack.test",
		CallbackURL: "https://marketplace.test/payments/callback",
	}, fake, zerolog.Nop())
}

func TestCreatePaymentLink(t *testing.T) {
	fake := &fakeHTTPClient{responses: []*http.Response{
		jsonResponse(200, `{"status":true,"message":"Authorization URL created","data":{"authorization_url":"https://checkout.paystack.test/abc","reference":"ref_1"}}`),
	}}
	client := newTestClient(fake)

	order := &domain.Order{
		ID:     uuid.New(),
		CartID: uuid.New(),
		Total:  decimal.RequireFromString("50.00"),
	}
	payer := &domain.User{ID: uuid.New(), Email: "ada@example.com"}

	url, err := client.CreatePaymentLink(context.Background(), order, payer)
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.paystack.test/abc", url)

	require.Len(t, fake.requests, 1)
	req := fake.requests[0]
	assert.Equal(t, "https://api.paystack.test/transaction/initialize", req.URL.String())
	assert.Equal(t, "Bearer sk_test_secret", req.Header.Get("Authorization"))

	var sent initializeRequest
	require.NoError(t, json.Unmarshal(fake.bodies[0], &sent))
	assert.Equal(t, "ada@example.com", sent.Email)
	// 50.00 major units must go out as 5000 minor units.
	assert.Equal(t, int64(5000), sent.Amount)
	assert.Equal(t, order.ID, sent.Metadata.OrderID)
	assert.Equal(t, order.CartID, sent.Metadata.CartID)
}

func TestCreatePaymentLink_ProviderRejects(t *testing.T) {
	fake := &fakeHTTPClient{responses: []*http.Response{
		jsonResponse(200, `{"status":false,"message":"Invalid key"}`),
	}}
	client := newTestClient(fake)

	_, err := client.CreatePaymentLink(context.Background(),
		&domain.Order{ID: uuid.New(), Total: decimal.NewFromInt(10)},
		&domain.User{Email: "a@b.c"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid key")
}

func TestCreatePaymentLink_HTTPError(t *testing.T) {
	fake := &fakeHTTPClient{responses: []*http.Response{
		jsonResponse(502, `bad gateway`),
	}}
	client := newTestClient(fake)

	_, err := client.CreatePaymentLink(context.Background(),
		&domain.Order{ID: uuid.New(), Total: decimal.NewFromInt(10)},
		&domain.User{Email: "a@b.c"})
	assert.Error(t, err)
}

func TestInitiatePayout(t *testing.T) {
	fake := &fakeHTTPClient{responses: []*http.Response{
		jsonResponse(201, `{"status":true,"data":{"recipient_code":"RCP_1"}}`),
		jsonResponse(200, `{"status":true,"data":{"transfer_code":"TRF_1","reference":"trf_ref_1"}}`),
	}}
	client := newTestClient(fake)

	ref, err := client.InitiatePayout(context.Background(), ports.PayoutRequest{
		AccountNumber: "0123456789",
		BankCode:      "058",
		AccountName:   "Ada L",
		Amount:        decimal.RequireFromString("40.00"),
		Reason:        "wallet withdrawal",
	})
	require.NoError(t, err)
	assert.Equal(t, "trf_ref_1", ref)

	require.Len(t, fake.requests, 2)
	assert.Equal(t, "https://api.paystack.test/transferrecipient", fake.requests[0].URL.String())
	assert.Equal(t, "https://api.paystack.test/transfer", fake.requests[1].URL.String())

	var transfer transferRequest
	require.NoError(t, json.Unmarshal(fake.bodies[1], &transfer))
	assert.Equal(t, int64(4000), transfer.Amount)
	assert.Equal(t, "RCP_1", transfer.Recipient)
	assert.Equal(t, "balance", transfer.Source)
}

func TestInitiatePayout_RecipientFails(t *testing.T) {
	fake := &fakeHTTPClient{responses: []*http.Response{
		jsonResponse(400, `{"status":false,"message":"Invalid bank code"}`),
	}}
	client := newTestClient(fake)

	_, err := client.InitiatePayout(context.Background(), ports.PayoutRequest{
		AccountNumber: "0123456789",
		BankCode:      "000",
		AccountName:   "Ada L",
		Amount:        decimal.NewFromInt(40),
	})
	require.Error(t, err)
	// The transfer call must never happen after a failed recipient call.
	assert.Len(t, fake.requests, 1)
}

func TestInitiatePayout_Timeout(t *testing.T) {
	fake := &fakeHTTPClient{err: context.DeadlineExceeded}
	client := newTestClient(fake)

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()

	_, err := client.InitiatePayout(ctx, ports.PayoutRequest{
		AccountNumber: "0123456789",
		BankCode:      "058",
		AccountName:   "Ada L",
		Amount:        decimal.NewFromInt(40),
	})
	assert.Error(t, err, "timeout is an unknown outcome and must surface as an error")
}

func signBody(secret string, body []byte) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyWebhookSignature(t *testing.T) {
	client := newTestClient(&fakeHTTPClient{})
	body := []byte(`{"event":"transaction.successful","data":{}}`)

	assert.True(t, client.VerifyWebhookSignature(body, signBody("sk_test_secret", body)))
}

func TestVerifyWebhookSignature_WrongBody(t *testing.T) {
	client := newTestClient(&fakeHTTPClient{})
	body := []byte(`{"event":"transaction.successful","data":{}}`)
	other := []byte(`{"event":"transaction.successful","data":{"amount":1}}`)

	// Signature computed over a different body must not verify.
	assert.False(t, client.VerifyWebhookSignature(body, signBody("sk_test_secret", other)))
}

func TestVerifyWebhookSignature_WrongSecret(t *testing.T) {
	client := newTestClient(&fakeHTTPClient{})
	body := []byte(`{"event":"transaction.successful"}`)

	assert.False(t, client.VerifyWebhookSignature(body, signBody("sk_other", body)))
}

func TestVerifyWebhookSignature_CorruptedHex(t *testing.T) {
	client := newTestClient(&fakeHTTPClient{})
	body := []byte(`{}`)

	assert.False(t, client.VerifyWebhookSignature(body, "zz-not-hex"))
	assert.False(t, client.VerifyWebhookSignature(body, ""))
}

func TestVerifyWebhookSignature_UppercaseHexAccepted(t *testing.T) {
	client := newTestClient(&fakeHTTPClient{})
	body := []byte(`{"event":"x"}`)

	sig := signBody("sk_test_secret", body)
	upper := bytes.ToUpper([]byte(sig))
	// Comparison happens over decoded bytes, so hex case does not matter.
	assert.True(t, client.VerifyWebhookSignature(body, string(upper)))
}
