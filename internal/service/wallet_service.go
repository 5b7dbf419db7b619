package service

import (
	"context"
	"fmt"

	"marketplace-wallet/internal/core/domain"
	"marketplace-wallet/internal/core/ports"
	"marketplace-wallet/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// WalletServiceImpl implements ports.WalletService: wallet reads, lazy
// creation and the checkout-link path. Balance mutations live in the
// settlement service only.
type WalletServiceImpl struct {
	walletRepo ports.WalletRepository
	ledgerRepo ports.LedgerRepository
	orderRepo  ports.OrderRepository
	cartRepo   ports.CartRepository
	userRepo   ports.UserRepository
	provider   ports.PaymentProvider
	log        zerolog.Logger
}

// NewWalletService creates a new WalletServiceImpl.
func NewWalletService(
	walletRepo ports.WalletRepository,
	ledgerRepo ports.LedgerRepository,
	orderRepo ports.OrderRepository,
	cartRepo ports.CartRepository,
	userRepo ports.UserRepository,
	provider ports.PaymentProvider,
	log zerolog.Logger,
) *WalletServiceImpl {
	return &WalletServiceImpl{
		walletRepo: walletRepo,
		ledgerRepo: ledgerRepo,
		orderRepo:  orderRepo,
		cartRepo:   cartRepo,
		userRepo:   userRepo,
		provider:   provider,
		log:        log,
	}
}

// GetOrCreate returns the wallet for an owner, creating a zero-balance one
// on first access.
func (s *WalletServiceImpl) GetOrCreate(ctx context.Context, ownerType domain.OwnerType, ownerID uuid.UUID) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.GetByOwner(ctx, ownerType, ownerID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get wallet: %w", err))
	}
	if wallet != nil {
		return wallet, nil
	}

	wallet = domain.NewWallet(ownerID, ownerType)
	if err := s.walletRepo.Create(ctx, wallet); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create wallet: %w", err))
	}

	s.log.Info().
		Str("wallet_id", wallet.ID.String()).
		Str("owner_type", string(ownerType)).
		Str("owner_id", ownerID.String()).
		Msg("wallet created")

	return wallet, nil
}

// GetForUser returns the authenticated user's wallet, creating it lazily.
func (s *WalletServiceImpl) GetForUser(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error) {
	return s.GetOrCreate(ctx, domain.OwnerTypeUser, userID)
}

// Statement lists ledger entries for the user's wallet, newest first, with
// optional purpose and time-range filters.
func (s *WalletServiceImpl) Statement(ctx context.Context, userID uuid.UUID, params ports.StatementParams) ([]domain.Transaction, int64, error) {
	wallet, err := s.GetForUser(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	page := params.Page
	if page < 1 {
		page = 1
	}
	pageSize := params.PageSize
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	entries, total, err := s.ledgerRepo.ListByWallet(ctx, ports.LedgerListParams{
		WalletID: wallet.ID,
		Purpose:  params.Purpose,
		From:     params.From,
		To:       params.To,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return nil, 0, apperror.InternalError(fmt.Errorf("list ledger entries: %w", err))
	}
	return entries, total, nil
}

// CreatePaymentLink initializes a provider checkout for an unpaid order
// belonging to the requesting user.
func (s *WalletServiceImpl) CreatePaymentLink(ctx context.Context, userID, orderID uuid.UUID) (string, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return "", apperror.InternalError(fmt.Errorf("get order: %w", err))
	}
	if order == nil {
		return "", apperror.ErrNotFound("order")
	}
	if order.Paid {
		return "", apperror.Validation("order is already paid")
	}

	cart, err := s.cartRepo.GetByID(ctx, order.CartID)
	if err != nil {
		return "", apperror.InternalError(fmt.Errorf("get cart: %w", err))
	}
	if cart == nil {
		return "", apperror.ErrNotFound("cart")
	}
	if cart.UserID != userID {
		// Do not leak the order's existence to other users.
		return "", apperror.ErrNotFound("order")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return "", apperror.InternalError(fmt.Errorf("get user: %w", err))
	}
	if user == nil {
		return "", apperror.ErrNotFound("user")
	}

	url, err := s.provider.CreatePaymentLink(ctx, order, user)
	if err != nil {
		return "", apperror.ErrProviderFailure(err)
	}
	return url, nil
}
