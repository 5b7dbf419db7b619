package ports

import (
	"context"
	"time"

	"marketplace-wallet/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=repositories.go -destination=mocks/repositories_mock.go -package=mocks

// WalletRepository defines persistence operations for wallets.
// Methods accepting pgx.Tx run inside transaction blocks so the row lock
// taken by GetForUpdate serializes concurrent balance mutations per wallet.
type WalletRepository interface {
	Create(ctx context.Context, wallet *domain.Wallet) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error)
	GetByOwner(ctx context.Context, ownerType domain.OwnerType, ownerID uuid.UUID) (*domain.Wallet, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Wallet, error)
	GetByOwnerForUpdate(ctx context.Context, tx pgx.Tx, ownerType domain.OwnerType, ownerID uuid.UUID) (*domain.Wallet, error)
	UpdateBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, balance decimal.Decimal) error
	UpdateVirtualAccount(ctx context.Context, walletID uuid.UUID, account *domain.VirtualAccount) error
}

// LedgerRepository defines persistence for the append-only transaction ledger.
// There is deliberately no update or delete.
type LedgerRepository interface {
	Append(ctx context.Context, tx pgx.Tx, entry *domain.Transaction) error
	GetByExternalRef(ctx context.Context, ref string) (*domain.Transaction, error)
	ListByWallet(ctx context.Context, params LedgerListParams) ([]domain.Transaction, int64, error)
}

// LedgerListParams holds filter + pagination for wallet statements.
type LedgerListParams struct {
	WalletID uuid.UUID
	Purpose  *domain.Purpose
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}

// OrderRepository resolves and settles orders owned by the catalog side.
type OrderRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	MarkPaid(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
}

// CartRepository resolves the cart that links an order to its paying user.
type CartRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Cart, error)
}

// UserRepository resolves users referenced by webhook events.
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// KitchenRepository resolves the kitchen a user withdraws on behalf of.
type KitchenRepository interface {
	GetByOwner(ctx context.Context, ownerUserID uuid.UUID) (*domain.Kitchen, error)
}

// DBTransactor provides database transaction management. A pgx.Tx returned
// by Begin is the atomic scope: the ledger append and the balance mutation
// for one settlement always commit or abort together.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
