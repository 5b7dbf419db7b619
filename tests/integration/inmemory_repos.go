package integration

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"marketplace-wallet/internal/core/domain"
	"marketplace-wallet/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// --- In-Memory Wallet Repo ---

type inMemoryWalletRepo struct {
	mu      sync.RWMutex
	wallets map[uuid.UUID]*domain.Wallet
}

func newInMemoryWalletRepo() *inMemoryWalletRepo {
	return &inMemoryWalletRepo{wallets: make(map[uuid.UUID]*domain.Wallet)}
}

func (r *inMemoryWalletRepo) Create(ctx context.Context, w *domain.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.wallets {
		if existing.OwnerType == w.OwnerType && existing.OwnerID == w.OwnerID {
			return fmt.Errorf("wallet already exists for owner")
		}
	}
	cp := *w
	r.wallets[w.ID] = &cp
	return nil
}

func (r *inMemoryWalletRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.wallets[id]
	if !ok {
		return nil, nil
	}
	cp := *w
	return &cp, nil
}

func (r *inMemoryWalletRepo) GetByOwner(ctx context.Context, ownerType domain.OwnerType, ownerID uuid.UUID) (*domain.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, w := range r.wallets {
		if w.OwnerType == ownerType && w.OwnerID == ownerID {
			cp := *w
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryWalletRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Wallet, error) {
	return r.GetByID(ctx, id)
}

func (r *inMemoryWalletRepo) GetByOwnerForUpdate(ctx context.Context, tx pgx.Tx, ownerType domain.OwnerType, ownerID uuid.UUID) (*domain.Wallet, error) {
	return r.GetByOwner(ctx, ownerType, ownerID)
}

func (r *inMemoryWalletRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, balance decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[walletID]
	if !ok {
		return fmt.Errorf("wallet not found")
	}
	if balance.IsNegative() {
		return fmt.Errorf("balance check constraint violated")
	}
	w.Balance = balance
	return nil
}

func (r *inMemoryWalletRepo) UpdateVirtualAccount(ctx context.Context, walletID uuid.UUID, account *domain.VirtualAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[walletID]
	if !ok {
		return fmt.Errorf("wallet not found")
	}
	cp := *account
	w.VirtualAccount = &cp
	return nil
}

// seed inserts a wallet directly, bypassing uniqueness checks.
func (r *inMemoryWalletRepo) seed(w *domain.Wallet) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *w
	r.wallets[w.ID] = &cp
}

// --- In-Memory Ledger Repo ---

type inMemoryLedgerRepo struct {
	mu      sync.RWMutex
	entries []domain.Transaction
}

func newInMemoryLedgerRepo() *inMemoryLedgerRepo {
	return &inMemoryLedgerRepo{}
}

func (r *inMemoryLedgerRepo) Append(ctx context.Context, tx pgx.Tx, entry *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry.ExternalRef != nil {
		for i := range r.entries {
			if r.entries[i].ExternalRef != nil && *r.entries[i].ExternalRef == *entry.ExternalRef {
				return fmt.Errorf("duplicate external ref %q", *entry.ExternalRef)
			}
		}
	}
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *inMemoryLedgerRepo) GetByExternalRef(ctx context.Context, ref string) (*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.entries {
		if r.entries[i].ExternalRef != nil && *r.entries[i].ExternalRef == ref {
			cp := r.entries[i]
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryLedgerRepo) ListByWallet(ctx context.Context, params ports.LedgerListParams) ([]domain.Transaction, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var filtered []domain.Transaction
	for i := range r.entries {
		e := r.entries[i]
		if e.WalletID != params.WalletID {
			continue
		}
		if params.Purpose != nil && e.Purpose != *params.Purpose {
			continue
		}
		if params.From != nil && e.CreatedAt.Before(*params.From) {
			continue
		}
		if params.To != nil && e.CreatedAt.After(*params.To) {
			continue
		}
		filtered = append(filtered, e)
	}
	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})

	total := int64(len(filtered))
	start := (params.Page - 1) * params.PageSize
	if start >= len(filtered) {
		return nil, total, nil
	}
	end := start + params.PageSize
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[start:end], total, nil
}

func (r *inMemoryLedgerRepo) byWallet(walletID uuid.UUID) []domain.Transaction {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Transaction
	for i := range r.entries {
		if r.entries[i].WalletID == walletID {
			out = append(out, r.entries[i])
		}
	}
	return out
}

// --- In-Memory Order / Cart / User / Kitchen Repos ---

type inMemoryOrderRepo struct {
	mu     sync.RWMutex
	orders map[uuid.UUID]*domain.Order
}

func newInMemoryOrderRepo() *inMemoryOrderRepo {
	return &inMemoryOrderRepo{orders: make(map[uuid.UUID]*domain.Order)}
}

func (r *inMemoryOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (r *inMemoryOrderRepo) MarkPaid(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return fmt.Errorf("order not found")
	}
	o.Paid = true
	return nil
}

func (r *inMemoryOrderRepo) seed(o *domain.Order) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *o
	r.orders[o.ID] = &cp
}

type inMemoryCartRepo struct {
	mu    sync.RWMutex
	carts map[uuid.UUID]*domain.Cart
}

func newInMemoryCartRepo() *inMemoryCartRepo {
	return &inMemoryCartRepo{carts: make(map[uuid.UUID]*domain.Cart)}
}

func (r *inMemoryCartRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.carts[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *inMemoryCartRepo) seed(c *domain.Cart) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	r.carts[c.ID] = &cp
}

type inMemoryUserRepo struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*domain.User
}

func newInMemoryUserRepo() *inMemoryUserRepo {
	return &inMemoryUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (r *inMemoryUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *inMemoryUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryUserRepo) seed(u *domain.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.users[u.ID] = &cp
}

type inMemoryKitchenRepo struct {
	mu       sync.RWMutex
	kitchens map[uuid.UUID]*domain.Kitchen
}

func newInMemoryKitchenRepo() *inMemoryKitchenRepo {
	return &inMemoryKitchenRepo{kitchens: make(map[uuid.UUID]*domain.Kitchen)}
}

func (r *inMemoryKitchenRepo) GetByOwner(ctx context.Context, ownerUserID uuid.UUID) (*domain.Kitchen, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, k := range r.kitchens {
		if k.OwnerUserID == ownerUserID {
			cp := *k
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryKitchenRepo) seed(k *domain.Kitchen) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *k
	r.kitchens[k.ID] = &cp
}

// --- In-Memory Transactor ---

// inMemoryTransactor serializes transaction blocks with one global mutex,
// standing in for the row lock a SELECT ... FOR UPDATE takes in postgres.
type inMemoryTransactor struct {
	mu sync.Mutex
}

func newInMemoryTransactor() *inMemoryTransactor {
	return &inMemoryTransactor{}
}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	t.mu.Lock()
	return &lockedTx{release: &t.mu}, nil
}

// lockedTx is a pgx.Tx that holds the transactor lock until the first
// Commit or Rollback.
type lockedTx struct {
	release *sync.Mutex
	once    sync.Once
}

func (t *lockedTx) done() {
	t.once.Do(t.release.Unlock)
}

func (t *lockedTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *lockedTx) Commit(ctx context.Context) error          { t.done(); return nil }
func (t *lockedTx) Rollback(ctx context.Context) error        { t.done(); return nil }
func (t *lockedTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *lockedTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *lockedTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *lockedTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *lockedTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *lockedTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *lockedTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *lockedTx) Conn() *pgx.Conn { return nil }
