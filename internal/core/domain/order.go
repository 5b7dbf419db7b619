package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is owned by the catalog side of the marketplace; the settlement
// engine consults it to validate paid amounts and marks it paid on success.
type Order struct {
	ID        uuid.UUID       `json:"id"`
	CartID    uuid.UUID       `json:"cart_id"`
	KitchenID uuid.UUID       `json:"kitchen_id"`
	Total     decimal.Decimal `json:"total"`
	Paid      bool            `json:"paid"`
	CreatedAt time.Time       `json:"created_at"`
}

// Cart links an order back to the user who is paying for it.
type Cart struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"user_id"`
}
