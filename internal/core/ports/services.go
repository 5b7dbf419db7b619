package ports

import (
	"context"
	"time"

	"marketplace-wallet/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=services.go -destination=mocks/services_mock.go -package=mocks

// PaymentProvider is the outbound integration with the payment provider.
type PaymentProvider interface {
	// CreatePaymentLink initializes a provider checkout for an order and
	// returns the authorization URL. The order id is embedded in the request
	// metadata so the provider's webhook can be correlated back to it.
	CreatePaymentLink(ctx context.Context, order *domain.Order, payer *domain.User) (string, error)

	// InitiatePayout dispatches a bank transfer and returns the provider's
	// transfer reference. A timeout is an unknown outcome and is returned as
	// an error; callers must never assume success on timeout.
	InitiatePayout(ctx context.Context, req PayoutRequest) (string, error)

	// VerifyWebhookSignature checks the HMAC-SHA512 signature of a raw,
	// unparsed webhook body. It must be called before any parsing.
	VerifyWebhookSignature(rawBody []byte, signatureHex string) bool
}

// PayoutRequest holds the destination and amount for a payout.
type PayoutRequest struct {
	AccountNumber string
	BankCode      string
	AccountName   string
	Amount        decimal.Decimal
	Reason        string
}

// SettlementService is the transactional workflow coordinating the wallet
// store, the ledger and the payment provider as one atomic unit.
type SettlementService interface {
	SettleOrderPayment(ctx context.Context, ev *domain.ChargeSucceededEvent) error
	AssignVirtualAccount(ctx context.Context, ev *domain.AccountAssignedEvent) error
	HandleAccountAssignmentFailed(ctx context.Context, ev *domain.AccountAssignmentFailedEvent) error
	Withdraw(ctx context.Context, req WithdrawRequest) (*domain.Transaction, error)
}

// WithdrawRequest holds validated input for a user-initiated withdrawal.
type WithdrawRequest struct {
	UserID        uuid.UUID
	AsKitchen     bool
	Amount        decimal.Decimal
	AccountNumber string
	BankCode      string
	AccountName   string
}

// WalletService covers wallet reads and lifecycle outside settlement.
type WalletService interface {
	GetOrCreate(ctx context.Context, ownerType domain.OwnerType, ownerID uuid.UUID) (*domain.Wallet, error)
	GetForUser(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error)
	Statement(ctx context.Context, userID uuid.UUID, params StatementParams) ([]domain.Transaction, int64, error)
	CreatePaymentLink(ctx context.Context, userID, orderID uuid.UUID) (string, error)
}

// StatementParams is the read-path filter set exposed over HTTP.
type StatementParams struct {
	Purpose  *domain.Purpose
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}

// Notifier delivers user-facing notifications. Dispatch is fire-and-forget
// relative to settlement: failures are logged, never awaited or propagated.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, title, body string)
}

// NotificationQueue is the transport the Notifier publishes to.
type NotificationQueue interface {
	Enqueue(ctx context.Context, payload []byte) error
}

// SettledOrderCache is the fast-path idempotency layer for webhook replays.
// The ledger's external-reference lookup stays authoritative; the cache only
// short-circuits obvious duplicates.
type SettledOrderCache interface {
	IsSettled(ctx context.Context, ref string) (bool, error)
	MarkSettled(ctx context.Context, ref string, ttl time.Duration) error
}

// TokenService handles bearer tokens for the authenticated endpoints.
type TokenService interface {
	Generate(userID uuid.UUID) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed token claims.
type TokenClaims struct {
	UserID uuid.UUID
}
