package postgres

import (
	"context"
	"errors"
	"fmt"

	"marketplace-wallet/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// OrderRepo implements ports.OrderRepository. Orders are owned by the
// catalog side; settlement only reads them and flips the paid flag.
type OrderRepo struct {
	pool Pool
}

// NewOrderRepo creates a new OrderRepo.
func NewOrderRepo(pool Pool) *OrderRepo {
	return &OrderRepo{pool: pool}
}

// GetByID fetches an order by UUID.
func (r *OrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `SELECT id, cart_id, kitchen_id, total, paid, created_at FROM orders WHERE id = $1`

	o := &domain.Order{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&o.ID, &o.CartID, &o.KitchenID, &o.Total, &o.Paid, &o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order by id: %w", err)
	}
	return o, nil
}

// MarkPaid flags an order as paid within the settlement transaction, so the
// ledger entry and the order state commit together.
func (r *OrderRepo) MarkPaid(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	query := `UPDATE orders SET paid = TRUE, updated_at = NOW() WHERE id = $1`

	tag, err := tx.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("mark order paid: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("order not found: %s", id)
	}
	return nil
}
