package integration

import (
	"net/http"
	"sync"
	"testing"

	"marketplace-wallet/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConcurrentWithdrawals fires parallel withdrawals against one wallet
// and checks the invariants: the balance never goes negative, every
// successful request produced exactly one debit entry, and the final balance
// equals the starting balance minus the successful debits.
func TestConcurrentWithdrawals(t *testing.T) {
	app := newTestApp(t)
	user := &domain.User{ID: uuid.New(), Email: "ada@example.com"}
	app.userRepo.seed(user)
	wallet := app.seedWallet(t, domain.OwnerTypeUser, user.ID, "100.00")

	const workers = 10
	amount := decimal.RequireFromString("30.00")

	var wg sync.WaitGroup
	var mu sync.Mutex
	successes := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp := app.postAuthed(t, user.ID, "/api/v1/wallets/withdraw", withdrawBody(t, "30.00"))
			readBody(t, resp)
			if resp.StatusCode == http.StatusCreated {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	// 100.00 covers at most three 30.00 withdrawals.
	require.Greater(t, successes, 0)
	assert.LessOrEqual(t, successes, 3)

	got, err := app.walletRepo.GetByID(t.Context(), wallet.ID)
	require.NoError(t, err)
	assert.False(t, got.Balance.IsNegative(), "balance went negative: %s", got.Balance)

	expected := decimal.RequireFromString("100.00").Sub(amount.Mul(decimal.NewFromInt(int64(successes))))
	assert.True(t, got.Balance.Equal(expected),
		"balance is %s, want %s after %d successful withdrawals", got.Balance, expected, successes)

	entries := app.ledgerRepo.byWallet(wallet.ID)
	assert.Len(t, entries, successes, "one ledger entry per successful withdrawal")
	for _, e := range entries {
		assert.Equal(t, domain.DirectionDebit, e.Direction)
	}
}

// TestConcurrentWebhookReplays delivers the same settlement event from many
// goroutines at once; the ledger's external-reference guard must keep the
// credit single.
func TestConcurrentWebhookReplays(t *testing.T) {
	app := newTestApp(t)
	user, order := app.seedUserWithOrder(t, "50.00")

	body := chargeEvent(t, order, 5000)
	sig := signWebhook(body)

	const workers = 8
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp := app.postWebhook(t, body, sig)
			readBody(t, resp)
		}()
	}
	wg.Wait()

	wallet, err := app.walletRepo.GetByOwner(t.Context(), domain.OwnerTypeUser, user.ID)
	require.NoError(t, err)
	require.NotNil(t, wallet)
	assert.True(t, wallet.Balance.Equal(decimal.RequireFromString("50.00")),
		"balance is %s, want 50.00 after %d replays", wallet.Balance, workers)
	assert.Len(t, app.ledgerRepo.byWallet(wallet.ID), 1)
}
