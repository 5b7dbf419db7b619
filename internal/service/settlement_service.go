package service

import (
	"context"
	"fmt"
	"time"

	"marketplace-wallet/internal/core/domain"
	"marketplace-wallet/internal/core/ports"
	"marketplace-wallet/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const settledCacheTTL = 24 * time.Hour

// SettlementServiceImpl implements ports.SettlementService. It owns no
// storage itself; it coordinates the wallet store, the ledger and the
// payment provider so that every balance mutation commits together with
// exactly one ledger entry.
type SettlementServiceImpl struct {
	walletRepo  ports.WalletRepository
	ledgerRepo  ports.LedgerRepository
	orderRepo   ports.OrderRepository
	cartRepo    ports.CartRepository
	userRepo    ports.UserRepository
	kitchenRepo ports.KitchenRepository
	provider    ports.PaymentProvider
	settled     ports.SettledOrderCache
	notifier    ports.Notifier
	transactor  ports.DBTransactor
	log         zerolog.Logger
}

// NewSettlementService creates a new SettlementServiceImpl.
func NewSettlementService(
	walletRepo ports.WalletRepository,
	ledgerRepo ports.LedgerRepository,
	orderRepo ports.OrderRepository,
	cartRepo ports.CartRepository,
	userRepo ports.UserRepository,
	kitchenRepo ports.KitchenRepository,
	provider ports.PaymentProvider,
	settled ports.SettledOrderCache,
	notifier ports.Notifier,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *SettlementServiceImpl {
	return &SettlementServiceImpl{
		walletRepo:  walletRepo,
		ledgerRepo:  ledgerRepo,
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		userRepo:    userRepo,
		kitchenRepo: kitchenRepo,
		provider:    provider,
		settled:     settled,
		notifier:    notifier,
		transactor:  transactor,
		log:         log,
	}
}

// SettleOrderPayment reconciles a verified transaction.successful event with
// internal order and wallet state, exactly once. Replays of an
// already-settled order return nil without touching anything.
func (s *SettlementServiceImpl) SettleOrderPayment(ctx context.Context, ev *domain.ChargeSucceededEvent) error {
	order, err := s.orderRepo.GetByID(ctx, ev.Metadata.OrderID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("resolve order: %w", err))
	}
	if order == nil {
		return apperror.ErrNotFound("order")
	}

	// Provider amounts are minor units; normalize before comparing.
	paid := domain.AmountFromMinorUnits(ev.Amount)
	if paid.LessThan(order.Total) {
		s.log.Warn().
			Str("order_id", order.ID.String()).
			Str("paid", paid.String()).
			Str("total", order.Total.String()).
			Msg("webhook amount does not cover order total")
		return apperror.ErrAmountMismatch()
	}

	cart, err := s.cartRepo.GetByID(ctx, order.CartID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("resolve cart: %w", err))
	}
	if cart == nil {
		return apperror.ErrNotFound("cart")
	}
	user, err := s.userRepo.GetByID(ctx, cart.UserID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("resolve user: %w", err))
	}
	if user == nil {
		return apperror.ErrNotFound("user")
	}

	ref := domain.OrderSettlementRef(order.ID)

	// Layer 1: Redis fast path. Best effort only.
	cached, err := s.settled.IsSettled(ctx, ref)
	if err != nil {
		s.log.Warn().Err(err).Str("ref", ref).Msg("settled cache check failed, falling through to ledger")
	}
	if cached {
		return nil
	}

	// Layer 2: the ledger is the authoritative replay guard.
	existing, err := s.ledgerRepo.GetByExternalRef(ctx, ref)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("ledger idempotency check: %w", err))
	}
	if existing != nil || order.Paid {
		s.markSettled(ctx, ref)
		return nil
	}

	wallet, err := s.getOrCreateWallet(ctx, domain.OwnerTypeUser, user.ID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("resolve wallet: %w", err))
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	locked, err := s.walletRepo.GetByIDForUpdate(ctx, dbTx, wallet.ID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}
	if locked == nil {
		return apperror.ErrNotFound("wallet")
	}

	entry := &domain.Transaction{
		ID:          uuid.New(),
		WalletID:    locked.ID,
		Direction:   domain.DirectionCredit,
		Amount:      paid,
		Purpose:     domain.PurposeOrderPayment,
		ExternalRef: &ref,
		Note:        fmt.Sprintf("settlement for order %s (provider ref %s)", order.ID, ev.Reference),
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.ledgerRepo.Append(ctx, dbTx, entry); err != nil {
		return apperror.InternalError(fmt.Errorf("append settlement entry: %w", err))
	}
	if err := s.walletRepo.UpdateBalance(ctx, dbTx, locked.ID, locked.Balance.Add(paid)); err != nil {
		return apperror.InternalError(fmt.Errorf("update balance: %w", err))
	}
	if err := s.orderRepo.MarkPaid(ctx, dbTx, order.ID); err != nil {
		return apperror.InternalError(fmt.Errorf("mark order paid: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.markSettled(ctx, ref)
	s.notifier.Notify(ctx, user.ID, "Payment received",
		fmt.Sprintf("Your payment for order %s has been confirmed.", order.ID))

	s.log.Info().
		Str("order_id", order.ID.String()).
		Str("wallet_id", locked.ID.String()).
		Str("amount", paid.String()).
		Msg("order payment settled")

	return nil
}

// AssignVirtualAccount replaces the wallet's provider metadata after a
// dedicated_account.assigned event. The replace is a whole-object write and
// is idempotent under redelivery.
func (s *SettlementServiceImpl) AssignVirtualAccount(ctx context.Context, ev *domain.AccountAssignedEvent) error {
	user, err := s.userRepo.GetByEmail(ctx, ev.Customer.Email)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("resolve user by email: %w", err))
	}
	if user == nil {
		return apperror.ErrNotFound("user")
	}

	wallet, err := s.getOrCreateWallet(ctx, domain.OwnerTypeUser, user.ID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("resolve wallet: %w", err))
	}

	account := &domain.VirtualAccount{
		CustomerCode:  ev.Customer.CustomerCode,
		AccountNumber: ev.Account.AccountNumber,
		AccountName:   ev.Account.AccountName,
		BankName:      ev.Account.BankName,
	}
	if err := s.walletRepo.UpdateVirtualAccount(ctx, wallet.ID, account); err != nil {
		return apperror.InternalError(fmt.Errorf("update virtual account: %w", err))
	}

	s.notifier.Notify(ctx, user.ID, "Virtual account ready",
		fmt.Sprintf("Your dedicated account %s (%s) is now active.", account.AccountNumber, account.BankName))

	s.log.Info().
		Str("user_id", user.ID.String()).
		Str("wallet_id", wallet.ID.String()).
		Msg("virtual account assigned")

	return nil
}

// HandleAccountAssignmentFailed notifies the user; no wallet mutation occurs.
func (s *SettlementServiceImpl) HandleAccountAssignmentFailed(ctx context.Context, ev *domain.AccountAssignmentFailedEvent) error {
	user, err := s.userRepo.GetByEmail(ctx, ev.Customer.Email)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("resolve user by email: %w", err))
	}
	if user == nil {
		return apperror.ErrNotFound("user")
	}

	s.notifier.Notify(ctx, user.ID, "Virtual account assignment failed",
		"We could not set up your dedicated account. Please try again or contact support.")

	s.log.Warn().Str("user_id", user.ID.String()).Msg("virtual account assignment failed")
	return nil
}

// Withdraw moves wallet funds to an external bank account. The payout call
// happens before the local ledger write: a bank transfer cannot be rolled
// back by our database, so the local commit records a transfer that has
// already been dispatched. The provider reference on the entry is the
// reconciliation handle if the process dies between the two steps.
func (s *SettlementServiceImpl) Withdraw(ctx context.Context, req ports.WithdrawRequest) (*domain.Transaction, error) {
	if !req.Amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount()
	}

	ownerType := domain.OwnerTypeUser
	ownerID := req.UserID
	if req.AsKitchen {
		kitchen, err := s.kitchenRepo.GetByOwner(ctx, req.UserID)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("resolve kitchen: %w", err))
		}
		if kitchen == nil {
			return nil, apperror.ErrNotFound("kitchen")
		}
		ownerType = domain.OwnerTypeKitchen
		ownerID = kitchen.ID
	}

	wallet, err := s.walletRepo.GetByOwner(ctx, ownerType, ownerID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("resolve wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.InternalError(fmt.Errorf("no wallet for %s %s", ownerType, ownerID))
	}

	// Checked before the payout so an obviously short wallet never triggers
	// an external call. The authoritative check happens again under the lock.
	if !wallet.CanDebit(req.Amount) {
		return nil, apperror.ErrInsufficientFunds()
	}

	providerRef, err := s.provider.InitiatePayout(ctx, ports.PayoutRequest{
		AccountNumber: req.AccountNumber,
		BankCode:      req.BankCode,
		AccountName:   req.AccountName,
		Amount:        req.Amount,
		Reason:        "wallet withdrawal",
	})
	if err != nil {
		// Nothing was recorded yet, so nothing needs compensating.
		return nil, apperror.ErrWithdrawalFailed(fmt.Errorf("initiate payout: %w", err))
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.ErrWithdrawalFailed(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	locked, err := s.walletRepo.GetByIDForUpdate(ctx, dbTx, wallet.ID)
	if err != nil {
		return nil, apperror.ErrWithdrawalFailed(fmt.Errorf("lock wallet: %w", err))
	}
	if locked == nil {
		return nil, apperror.ErrWithdrawalFailed(fmt.Errorf("wallet disappeared: %s", wallet.ID))
	}
	newBalance := locked.Balance.Sub(req.Amount)
	if newBalance.IsNegative() {
		// A concurrent debit won the race after the payout was dispatched.
		// The payout is already out; this is the flagged unrecorded-transfer
		// window, logged with the provider reference for reconciliation.
		s.log.Error().
			Str("wallet_id", locked.ID.String()).
			Str("provider_ref", providerRef).
			Msg("balance insufficient after payout dispatch")
		return nil, apperror.ErrWithdrawalFailed(fmt.Errorf("balance changed during payout"))
	}

	entry := &domain.Transaction{
		ID:          uuid.New(),
		WalletID:    locked.ID,
		Direction:   domain.DirectionDebit,
		Amount:      req.Amount,
		Purpose:     domain.PurposeWithdrawal,
		ExternalRef: &providerRef,
		Note:        fmt.Sprintf("payout to %s / %s (%s)", req.BankCode, req.AccountNumber, req.AccountName),
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.ledgerRepo.Append(ctx, dbTx, entry); err != nil {
		return nil, apperror.ErrWithdrawalFailed(fmt.Errorf("append withdrawal entry: %w", err))
	}
	if err := s.walletRepo.UpdateBalance(ctx, dbTx, locked.ID, newBalance); err != nil {
		return nil, apperror.ErrWithdrawalFailed(fmt.Errorf("update balance: %w", err))
	}
	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.ErrWithdrawalFailed(fmt.Errorf("commit tx: %w", err))
	}

	s.notifier.Notify(ctx, req.UserID, "Withdrawal placed",
		fmt.Sprintf("Your withdrawal of %s to account %s has been placed.", req.Amount, req.AccountNumber))

	s.log.Info().
		Str("wallet_id", locked.ID.String()).
		Str("amount", req.Amount.String()).
		Str("provider_ref", providerRef).
		Msg("withdrawal placed")

	return entry, nil
}

// markSettled records the fast-path dedupe key. Failures only cost a ledger
// lookup on the next replay.
func (s *SettlementServiceImpl) markSettled(ctx context.Context, ref string) {
	if err := s.settled.MarkSettled(ctx, ref, settledCacheTTL); err != nil {
		s.log.Warn().Err(err).Str("ref", ref).Msg("failed to mark order settled in cache")
	}
}

func (s *SettlementServiceImpl) getOrCreateWallet(ctx context.Context, ownerType domain.OwnerType, ownerID uuid.UUID) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.GetByOwner(ctx, ownerType, ownerID)
	if err != nil {
		return nil, err
	}
	if wallet != nil {
		return wallet, nil
	}
	wallet = domain.NewWallet(ownerID, ownerType)
	if err := s.walletRepo.Create(ctx, wallet); err != nil {
		return nil, err
	}
	return wallet, nil
}
