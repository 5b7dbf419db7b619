package handler

import (
	"net/http"
	"strconv"
	"time"

	"marketplace-wallet/internal/adapter/http/dto"
	"marketplace-wallet/internal/adapter/http/middleware"
	"marketplace-wallet/internal/core/domain"
	"marketplace-wallet/internal/core/ports"
	"marketplace-wallet/pkg/apperror"
	"marketplace-wallet/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WalletHandler handles the authenticated wallet endpoints.
type WalletHandler struct {
	walletSvc     ports.WalletService
	settlementSvc ports.SettlementService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletSvc ports.WalletService, settlementSvc ports.SettlementService) *WalletHandler {
	return &WalletHandler{walletSvc: walletSvc, settlementSvc: settlementSvc}
}

func authedUserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(middleware.CtxUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// GetWallet handles GET /api/v1/wallets/me.
func (h *WalletHandler) GetWallet(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	wallet, err := h.walletSvc.GetForUser(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toWalletResponse(wallet))
}

// Withdraw handles POST /api/v1/wallets/withdraw.
func (h *WalletHandler) Withdraw(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		response.Error(c, apperror.ErrInvalidAmount())
		return
	}

	entry, err := h.settlementSvc.Withdraw(c.Request.Context(), ports.WithdrawRequest{
		UserID:        userID,
		AsKitchen:     req.AsKitchen,
		Amount:        amount,
		AccountNumber: req.AccountNumber,
		BankCode:      req.BankCode,
		AccountName:   req.AccountName,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toTransactionResponse(entry))
}

// Statement handles GET /api/v1/wallets/me/transactions.
// Filters: purpose, from, to (RFC3339); pagination: page, page_size.
func (h *WalletHandler) Statement(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	params := ports.StatementParams{
		Page:     intQuery(c, "page", 1),
		PageSize: intQuery(c, "page_size", 20),
	}
	if p := c.Query("purpose"); p != "" {
		purpose := domain.Purpose(p)
		switch purpose {
		case domain.PurposeOrderPayment, domain.PurposeWithdrawal, domain.PurposeTopup, domain.PurposeOther:
			params.Purpose = &purpose
		default:
			response.Error(c, apperror.Validation("unknown purpose filter"))
			return
		}
	}
	if v := c.Query("from"); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			response.Error(c, apperror.Validation("invalid 'from' timestamp"))
			return
		}
		params.From = &ts
	}
	if v := c.Query("to"); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			response.Error(c, apperror.Validation("invalid 'to' timestamp"))
			return
		}
		params.To = &ts
	}

	entries, total, err := h.walletSvc.Statement(c.Request.Context(), userID, params)
	if err != nil {
		response.Error(c, err)
		return
	}

	out := dto.StatementResponse{
		Entries:  make([]dto.TransactionResponse, 0, len(entries)),
		Total:    total,
		Page:     params.Page,
		PageSize: params.PageSize,
	}
	for i := range entries {
		out.Entries = append(out.Entries, toTransactionResponse(&entries[i]))
	}

	response.OK(c, out)
}

// CreatePaymentLink handles POST /api/v1/payments/link.
func (h *WalletHandler) CreatePaymentLink(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.PaymentLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		response.Error(c, apperror.Validation("invalid order id"))
		return
	}

	url, err := h.walletSvc.CreatePaymentLink(c.Request.Context(), userID, orderID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.PaymentLinkResponse{AuthorizationURL: url})
}

// HealthCheck returns a deep health handler verifying backing dependencies.
func HealthCheck(checkers ...ports.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		type depStatus struct {
			Status string `json:"status"`
			Error  string `json:"error,omitempty"`
		}

		deps := make(map[string]depStatus)
		allHealthy := true

		for _, checker := range checkers {
			if err := checker.Check(c.Request.Context()); err != nil {
				deps[checker.Name()] = depStatus{Status: "unhealthy", Error: err.Error()}
				allHealthy = false
			} else {
				deps[checker.Name()] = depStatus{Status: "healthy"}
			}
		}

		status := "healthy"
		httpCode := http.StatusOK
		if !allHealthy {
			status = "degraded"
			httpCode = http.StatusServiceUnavailable
		}

		c.JSON(httpCode, gin.H{
			"status":       status,
			"dependencies": deps,
		})
	}
}

func intQuery(c *gin.Context, key string, fallback int) int {
	v := c.Query(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func toWalletResponse(w *domain.Wallet) dto.WalletResponse {
	out := dto.WalletResponse{
		ID:        w.ID.String(),
		OwnerType: string(w.OwnerType),
		Balance:   w.Balance.StringFixed(2),
	}
	if w.VirtualAccount != nil {
		out.VirtualAccount = &dto.VirtualAccountResponse{
			AccountNumber: w.VirtualAccount.AccountNumber,
			AccountName:   w.VirtualAccount.AccountName,
			BankName:      w.VirtualAccount.BankName,
		}
	}
	return out
}

func toTransactionResponse(t *domain.Transaction) dto.TransactionResponse {
	return dto.TransactionResponse{
		ID:          t.ID.String(),
		Direction:   string(t.Direction),
		Amount:      t.Amount.StringFixed(2),
		Purpose:     string(t.Purpose),
		ExternalRef: t.ExternalRef,
		Note:        t.Note,
		CreatedAt:   t.CreatedAt.UTC().Format(time.RFC3339),
	}
}
