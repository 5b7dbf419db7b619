package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Direction is the side of a ledger entry relative to the wallet.
type Direction string

const (
	DirectionCredit Direction = "CREDIT"
	DirectionDebit  Direction = "DEBIT"
)

// Purpose classifies why a ledger entry exists.
type Purpose string

const (
	PurposeOrderPayment Purpose = "ORDER_PAYMENT"
	PurposeWithdrawal   Purpose = "WITHDRAWAL"
	PurposeTopup        Purpose = "TOPUP"
	PurposeOther        Purpose = "OTHER"
)

// Transaction is an immutable, append-only ledger entry. It is never updated
// or deleted; the wallet balance is the fold of its entries (credits - debits).
type Transaction struct {
	ID          uuid.UUID       `json:"id"`
	WalletID    uuid.UUID       `json:"wallet_id"`
	Direction   Direction       `json:"direction"`
	Amount      decimal.Decimal `json:"amount"` // always positive, major units
	Purpose     Purpose         `json:"purpose"`
	ExternalRef *string         `json:"external_ref,omitempty"` // provider/order reference, the idempotency key
	Note        string          `json:"note,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Signed returns the entry amount with its direction applied.
func (t *Transaction) Signed() decimal.Decimal {
	if t.Direction == DirectionDebit {
		return t.Amount.Neg()
	}
	return t.Amount
}

// OrderSettlementRef builds the external reference stored on the ledger entry
// that settles an order, used to detect replayed webhook deliveries.
func OrderSettlementRef(orderID uuid.UUID) string {
	return "order:" + orderID.String()
}
