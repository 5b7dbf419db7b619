package postgres

import (
	"context"
	"testing"
	"time"

	"marketplace-wallet/internal/core/domain"
	"marketplace-wallet/internal/core/ports"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEntry(walletID uuid.UUID) *domain.Transaction {
	ref := domain.OrderSettlementRef(uuid.New())
	return &domain.Transaction{
		ID:          uuid.New(),
		WalletID:    walletID,
		Direction:   domain.DirectionCredit,
		Amount:      decimal.RequireFromString("50.00"),
		Purpose:     domain.PurposeOrderPayment,
		ExternalRef: &ref,
		Note:        "settlement for order",
		CreatedAt:   time.Now().UTC().Truncate(time.Microsecond),
	}
}

func ledgerTestColumns() []string {
	return []string{"id", "wallet_id", "direction", "amount", "purpose", "external_ref", "note", "created_at"}
}

func ledgerRow(t *domain.Transaction) *pgxmock.Rows {
	return pgxmock.NewRows(ledgerTestColumns()).AddRow(
		t.ID, t.WalletID, t.Direction, t.Amount,
		t.Purpose, t.ExternalRef, t.Note, t.CreatedAt,
	)
}

func TestLedgerRepo_Append(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewLedgerRepo(mock)
	entry := newTestEntry(uuid.New())

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO transactions").
		WithArgs(entry.ID, entry.WalletID, entry.Direction, entry.Amount,
			entry.Purpose, entry.ExternalRef, entry.Note, entry.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Append(context.Background(), tx, entry)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepo_GetByExternalRef(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewLedgerRepo(mock)
	entry := newTestEntry(uuid.New())

	mock.ExpectQuery("SELECT .+ FROM transactions WHERE external_ref").
		WithArgs(*entry.ExternalRef).
		WillReturnRows(ledgerRow(entry))

	result, err := repo.GetByExternalRef(context.Background(), *entry.ExternalRef)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, entry.ID, result.ID)
	assert.True(t, result.Amount.Equal(entry.Amount))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepo_GetByExternalRef_Absent(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewLedgerRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM transactions WHERE external_ref").
		WithArgs("order:nope").
		WillReturnRows(pgxmock.NewRows(ledgerTestColumns()))

	result, err := repo.GetByExternalRef(context.Background(), "order:nope")
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepo_ListByWallet(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewLedgerRepo(mock)
	walletID := uuid.New()
	entry := newTestEntry(walletID)

	mock.ExpectQuery("SELECT COUNT").
		WithArgs(walletID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))
	mock.ExpectQuery("SELECT .+ FROM transactions WHERE wallet_id").
		WithArgs(walletID, 20, 0).
		WillReturnRows(ledgerRow(entry))

	entries, total, err := repo.ListByWallet(context.Background(), ports.LedgerListParams{
		WalletID: walletID,
		Page:     1,
		PageSize: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, entries, 1)
	assert.Equal(t, entry.ID, entries[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepo_ListByWallet_Filters(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewLedgerRepo(mock)
	walletID := uuid.New()
	purpose := domain.PurposeWithdrawal
	from := time.Now().Add(-24 * time.Hour).UTC()
	to := time.Now().UTC()

	mock.ExpectQuery("SELECT COUNT").
		WithArgs(walletID, purpose, from, to).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(0)))
	mock.ExpectQuery("SELECT .+ FROM transactions WHERE wallet_id").
		WithArgs(walletID, purpose, from, to, 10, 10).
		WillReturnRows(pgxmock.NewRows(ledgerTestColumns()))

	entries, total, err := repo.ListByWallet(context.Background(), ports.LedgerListParams{
		WalletID: walletID,
		Purpose:  &purpose,
		From:     &from,
		To:       &to,
		Page:     2,
		PageSize: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
	assert.Empty(t, entries)
	assert.NoError(t, mock.ExpectationsWereMet())
}
