package postgres

import (
	"context"
	"errors"
	"fmt"

	"marketplace-wallet/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// WalletRepo implements ports.WalletRepository.
type WalletRepo struct {
	pool Pool
}

// NewWalletRepo creates a new WalletRepo.
func NewWalletRepo(pool Pool) *WalletRepo {
	return &WalletRepo{pool: pool}
}

const walletColumns = `id, owner_id, owner_type, balance, customer_code, account_number, account_name, bank_name, created_at, updated_at`

// Create inserts a new wallet into the database.
func (r *WalletRepo) Create(ctx context.Context, w *domain.Wallet) error {
	query := `INSERT INTO wallets (` + walletColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	var code, number, name, bank *string
	if va := w.VirtualAccount; va != nil {
		code, number, name, bank = &va.CustomerCode, &va.AccountNumber, &va.AccountName, &va.BankName
	}

	_, err := r.pool.Exec(ctx, query,
		w.ID, w.OwnerID, w.OwnerType, w.Balance,
		code, number, name, bank,
		w.CreatedAt, w.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert wallet: %w", err)
	}
	return nil
}

// GetByID fetches a wallet by its UUID (without locking).
func (r *WalletRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE id = $1`
	return scanWallet(r.pool.QueryRow(ctx, query, id))
}

// GetByOwner fetches a wallet by its owning entity (non-locking read).
func (r *WalletRepo) GetByOwner(ctx context.Context, ownerType domain.OwnerType, ownerID uuid.UUID) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE owner_type = $1 AND owner_id = $2`
	return scanWallet(r.pool.QueryRow(ctx, query, ownerType, ownerID))
}

// GetByIDForUpdate fetches a wallet by ID with a row lock.
// This MUST be called within a transaction; the lock is the per-wallet
// serialization point for every balance check-then-write.
func (r *WalletRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE id = $1 FOR UPDATE`
	return scanWallet(tx.QueryRow(ctx, query, id))
}

// GetByOwnerForUpdate fetches a wallet by owner with a row lock.
// This MUST be called within a transaction.
func (r *WalletRepo) GetByOwnerForUpdate(ctx context.Context, tx pgx.Tx, ownerType domain.OwnerType, ownerID uuid.UUID) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE owner_type = $1 AND owner_id = $2 FOR UPDATE`
	return scanWallet(tx.QueryRow(ctx, query, ownerType, ownerID))
}

// UpdateBalance writes a wallet's new balance within a transaction. The
// caller computed the balance from the row it locked, so this never loses a
// concurrent update.
func (r *WalletRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, balance decimal.Decimal) error {
	query := `UPDATE wallets SET balance = $1, updated_at = NOW() WHERE id = $2`

	tag, err := tx.Exec(ctx, query, balance, walletID)
	if err != nil {
		return fmt.Errorf("update wallet balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("wallet not found: %s", walletID)
	}
	return nil
}

// UpdateVirtualAccount replaces the provider metadata as a whole object.
// Idempotent: repeating the same assignment leaves the same row.
func (r *WalletRepo) UpdateVirtualAccount(ctx context.Context, walletID uuid.UUID, account *domain.VirtualAccount) error {
	query := `UPDATE wallets SET customer_code = $1, account_number = $2, account_name = $3, bank_name = $4, updated_at = NOW()
		WHERE id = $5`

	tag, err := r.pool.Exec(ctx, query,
		account.CustomerCode, account.AccountNumber, account.AccountName, account.BankName, walletID)
	if err != nil {
		return fmt.Errorf("update wallet virtual account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("wallet not found: %s", walletID)
	}
	return nil
}

func scanWallet(row pgx.Row) (*domain.Wallet, error) {
	w := &domain.Wallet{}
	var code, number, name, bank *string
	err := row.Scan(
		&w.ID, &w.OwnerID, &w.OwnerType, &w.Balance,
		&code, &number, &name, &bank,
		&w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan wallet: %w", err)
	}
	if code != nil && number != nil {
		w.VirtualAccount = &domain.VirtualAccount{
			CustomerCode:  *code,
			AccountNumber: *number,
		}
		if name != nil {
			w.VirtualAccount.AccountName = *name
		}
		if bank != nil {
			w.VirtualAccount.BankName = *bank
		}
	}
	return w, nil
}
