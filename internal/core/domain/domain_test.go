package domain

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmountFromMinorUnits(t *testing.T) {
	tests := []struct {
		minor int64
		want  string
	}{
		{5000, "50"},
		{5001, "50.01"},
		{1, "0.01"},
		{0, "0"},
		{1234567, "12345.67"},
	}
	for _, tt := range tests {
		got := AmountFromMinorUnits(tt.minor)
		assert.True(t, got.Equal(decimal.RequireFromString(tt.want)),
			"minor %d: got %s want %s", tt.minor, got, tt.want)
	}
}

func TestAmountToMinorUnits(t *testing.T) {
	tests := []struct {
		major string
		want  int64
	}{
		{"50", 5000},
		{"50.01", 5001},
		{"0.01", 1},
		{"0", 0},
		{"12345.67", 1234567},
	}
	for _, tt := range tests {
		got := AmountToMinorUnits(decimal.RequireFromString(tt.major))
		assert.Equal(t, tt.want, got, "major %s", tt.major)
	}
}

func TestAmountRoundTrip(t *testing.T) {
	for _, minor := range []int64{1, 99, 100, 5000, 999999} {
		back := AmountToMinorUnits(AmountFromMinorUnits(minor))
		assert.Equal(t, minor, back)
	}
}

func TestWallet_CanDebit(t *testing.T) {
	w := &Wallet{Balance: decimal.RequireFromString("100.00")}

	assert.True(t, w.CanDebit(decimal.RequireFromString("100.00")))
	assert.True(t, w.CanDebit(decimal.RequireFromString("40.00")))
	assert.False(t, w.CanDebit(decimal.RequireFromString("100.01")))
	assert.False(t, w.CanDebit(decimal.RequireFromString("150.00")))
}

func TestNewWallet(t *testing.T) {
	ownerID := uuid.New()
	w := NewWallet(ownerID, OwnerTypeKitchen)

	assert.Equal(t, ownerID, w.OwnerID)
	assert.Equal(t, OwnerTypeKitchen, w.OwnerType)
	assert.True(t, w.Balance.IsZero())
	assert.Nil(t, w.VirtualAccount)
}

func TestTransaction_Signed(t *testing.T) {
	amount := decimal.RequireFromString("40.00")

	credit := &Transaction{Direction: DirectionCredit, Amount: amount}
	assert.True(t, credit.Signed().Equal(amount))

	debit := &Transaction{Direction: DirectionDebit, Amount: amount}
	assert.True(t, debit.Signed().Equal(amount.Neg()))
}

func TestParseWebhookEvent_ChargeSucceeded(t *testing.T) {
	orderID := uuid.New()
	cartID := uuid.New()
	body := fmt.Sprintf(`{
		"event": "transaction.successful",
		"data": {
			"reference": "PSK_REF_123",
			"amount": 5000,
			"metadata": {"order_id": %q, "cart_id": %q}
		}
	}`, orderID, cartID)

	ev, err := ParseWebhookEvent([]byte(body))
	require.NoError(t, err)
	require.NotNil(t, ev.ChargeSucceeded)
	assert.False(t, ev.IsUnknown())
	assert.Equal(t, int64(5000), ev.ChargeSucceeded.Amount)
	assert.Equal(t, orderID, ev.ChargeSucceeded.Metadata.OrderID)
	assert.Equal(t, "PSK_REF_123", ev.ChargeSucceeded.Reference)
}

func TestParseWebhookEvent_ChargeMissingOrderID(t *testing.T) {
	body := `{"event": "transaction.successful", "data": {"reference": "r", "amount": 5000, "metadata": {}}}`
	_, err := ParseWebhookEvent([]byte(body))
	assert.Error(t, err)
}

func TestParseWebhookEvent_AccountAssigned(t *testing.T) {
	body := `{
		"event": "dedicated_account.assigned",
		"data": {
			"customer": {"email": "ada@example.com", "customer_code": "CUS_1"},
			"dedicated_account": {"account_number": "0123456789", "account_name": "Ada L", "bank_name": "Wema Bank"}
		}
	}`

	ev, err := ParseWebhookEvent([]byte(body))
	require.NoError(t, err)
	require.NotNil(t, ev.AccountAssigned)
	assert.Equal(t, "ada@example.com", ev.AccountAssigned.Customer.Email)
	assert.Equal(t, "0123456789", ev.AccountAssigned.Account.AccountNumber)
}

func TestParseWebhookEvent_AccountAssignmentFailed(t *testing.T) {
	body := `{"event": "dedicated_account.assignment_failed", "data": {"customer": {"email": "ada@example.com"}}}`

	ev, err := ParseWebhookEvent([]byte(body))
	require.NoError(t, err)
	require.NotNil(t, ev.AccountFailed)
	assert.Equal(t, "ada@example.com", ev.AccountFailed.Customer.Email)
}

func TestParseWebhookEvent_UnknownKindAccepted(t *testing.T) {
	body := `{"event": "transfer.success", "data": {"whatever": true}}`

	ev, err := ParseWebhookEvent([]byte(body))
	require.NoError(t, err)
	assert.True(t, ev.IsUnknown())
	assert.Equal(t, "transfer.success", ev.Kind)
}

func TestParseWebhookEvent_Malformed(t *testing.T) {
	_, err := ParseWebhookEvent([]byte(`{not json`))
	assert.Error(t, err)

	_, err = ParseWebhookEvent([]byte(`{"data": {}}`))
	assert.Error(t, err, "missing event kind must be rejected")
}

func TestOrderSettlementRef(t *testing.T) {
	id := uuid.New()
	assert.Equal(t, "order:"+id.String(), OrderSettlementRef(id))
}

func TestWalletJSON_IncludesVirtualAccount(t *testing.T) {
	w := NewWallet(uuid.New(), OwnerTypeUser)
	w.VirtualAccount = &VirtualAccount{
		CustomerCode:  "CUS_1",
		AccountNumber: "0123456789",
		AccountName:   "Ada L",
		BankName:      "Wema Bank",
	}

	raw, err := json.Marshal(w)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"account_number":"0123456789"`)
}
