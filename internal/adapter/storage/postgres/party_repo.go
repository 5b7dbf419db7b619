package postgres

import (
	"context"
	"errors"
	"fmt"

	"marketplace-wallet/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CartRepo implements ports.CartRepository.
type CartRepo struct {
	pool Pool
}

// NewCartRepo creates a new CartRepo.
func NewCartRepo(pool Pool) *CartRepo {
	return &CartRepo{pool: pool}
}

// GetByID fetches a cart by UUID.
func (r *CartRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Cart, error) {
	query := `SELECT id, user_id FROM carts WHERE id = $1`

	c := &domain.Cart{}
	err := r.pool.QueryRow(ctx, query, id).Scan(&c.ID, &c.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cart by id: %w", err)
	}
	return c, nil
}

// UserRepo implements ports.UserRepository.
type UserRepo struct {
	pool Pool
}

// NewUserRepo creates a new UserRepo.
func NewUserRepo(pool Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

// GetByID fetches a user by UUID.
func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT id, email, name FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

// GetByEmail fetches a user by the email a provider event references.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT id, email, name FROM users WHERE email = $1`
	return scanUser(r.pool.QueryRow(ctx, query, email))
}

func scanUser(row pgx.Row) (*domain.User, error) {
	u := &domain.User{}
	err := row.Scan(&u.ID, &u.Email, &u.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}

// KitchenRepo implements ports.KitchenRepository.
type KitchenRepo struct {
	pool Pool
}

// NewKitchenRepo creates a new KitchenRepo.
func NewKitchenRepo(pool Pool) *KitchenRepo {
	return &KitchenRepo{pool: pool}
}

// GetByOwner fetches the kitchen owned by a user.
func (r *KitchenRepo) GetByOwner(ctx context.Context, ownerUserID uuid.UUID) (*domain.Kitchen, error) {
	query := `SELECT id, owner_user_id, name FROM kitchens WHERE owner_user_id = $1`

	k := &domain.Kitchen{}
	err := r.pool.QueryRow(ctx, query, ownerUserID).Scan(&k.ID, &k.OwnerUserID, &k.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get kitchen by owner: %w", err)
	}
	return k, nil
}
