package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"marketplace-wallet/internal/core/domain"
	"marketplace-wallet/internal/core/ports"

	"github.com/jackc/pgx/v5"
)

// LedgerRepo implements ports.LedgerRepository. The transactions table is
// append-only: this type exposes no update or delete, and the schema has no
// path to mutate a committed row.
type LedgerRepo struct {
	pool Pool
}

// NewLedgerRepo creates a new LedgerRepo.
func NewLedgerRepo(pool Pool) *LedgerRepo {
	return &LedgerRepo{pool: pool}
}

const ledgerColumns = `id, wallet_id, direction, amount, purpose, external_ref, note, created_at`

// Append inserts exactly one immutable ledger entry within the given
// database transaction.
func (r *LedgerRepo) Append(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	query := `INSERT INTO transactions (` + ledgerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := tx.Exec(ctx, query,
		t.ID, t.WalletID, t.Direction, t.Amount,
		t.Purpose, t.ExternalRef, t.Note, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}

// GetByExternalRef fetches a ledger entry by its external reference.
// Used to detect replayed webhook events before applying any mutation.
func (r *LedgerRepo) GetByExternalRef(ctx context.Context, ref string) (*domain.Transaction, error) {
	query := `SELECT ` + ledgerColumns + ` FROM transactions WHERE external_ref = $1`

	t := &domain.Transaction{}
	err := r.pool.QueryRow(ctx, query, ref).Scan(
		&t.ID, &t.WalletID, &t.Direction, &t.Amount,
		&t.Purpose, &t.ExternalRef, &t.Note, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get ledger entry by external ref: %w", err)
	}
	return t, nil
}

// ListByWallet fetches ledger entries with filtering and pagination,
// newest first.
func (r *LedgerRepo) ListByWallet(ctx context.Context, params ports.LedgerListParams) ([]domain.Transaction, int64, error) {
	var conditions []string
	var args []any
	argIdx := 1

	conditions = append(conditions, fmt.Sprintf("wallet_id = $%d", argIdx))
	args = append(args, params.WalletID)
	argIdx++

	if params.Purpose != nil {
		conditions = append(conditions, fmt.Sprintf("purpose = $%d", argIdx))
		args = append(args, *params.Purpose)
		argIdx++
	}
	if params.From != nil {
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", argIdx))
		args = append(args, *params.From)
		argIdx++
	}
	if params.To != nil {
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", argIdx))
		args = append(args, *params.To)
		argIdx++
	}

	where := "WHERE " + strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM transactions %s", where)
	var total int64
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count ledger entries: %w", err)
	}

	offset := (params.Page - 1) * params.PageSize
	dataQuery := fmt.Sprintf(`SELECT `+ledgerColumns+` FROM transactions %s
		ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, where, argIdx, argIdx+1)
	args = append(args, params.PageSize, offset)

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.Transaction
	for rows.Next() {
		t := domain.Transaction{}
		err := rows.Scan(
			&t.ID, &t.WalletID, &t.Direction, &t.Amount,
			&t.Purpose, &t.ExternalRef, &t.Note, &t.CreatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan ledger row: %w", err)
		}
		entries = append(entries, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate ledger rows: %w", err)
	}
	return entries, total, nil
}
