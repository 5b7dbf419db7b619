package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OwnerType identifies which kind of entity owns a wallet.
// A wallet belongs to exactly one owner.
type OwnerType string

const (
	OwnerTypeUser    OwnerType = "USER"
	OwnerTypeKitchen OwnerType = "KITCHEN"
)

// VirtualAccount is the payment provider's dedicated account linkage for a
// wallet. Set once by a webhook event and replaced only as a whole object.
type VirtualAccount struct {
	CustomerCode  string `json:"customer_code"`
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name"`
	BankName      string `json:"bank_name"`
}

// Wallet holds a non-negative monetary balance for a user or kitchen.
// The balance is mutated exclusively through the settlement orchestrator,
// always paired with a ledger entry in the same database transaction.
type Wallet struct {
	ID             uuid.UUID       `json:"id"`
	OwnerID        uuid.UUID       `json:"owner_id"`
	OwnerType      OwnerType       `json:"owner_type"`
	Balance        decimal.Decimal `json:"balance"`
	VirtualAccount *VirtualAccount `json:"virtual_account,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// CanDebit reports whether the wallet holds at least amount.
func (w *Wallet) CanDebit(amount decimal.Decimal) bool {
	return w.Balance.GreaterThanOrEqual(amount)
}

// NewWallet creates a zero-balance wallet for an owner.
func NewWallet(ownerID uuid.UUID, ownerType OwnerType) *Wallet {
	now := time.Now().UTC()
	return &Wallet{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		OwnerType: ownerType,
		Balance:   decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
