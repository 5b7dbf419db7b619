package handler

import (
	"io"

	"marketplace-wallet/internal/core/domain"
	"marketplace-wallet/internal/core/ports"
	"marketplace-wallet/pkg/apperror"
	"marketplace-wallet/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// HeaderPaystackSignature carries the hex HMAC-SHA512 of the raw body.
const HeaderPaystackSignature = "X-Paystack-Signature"

// WebhookHandler receives provider event deliveries.
type WebhookHandler struct {
	provider      ports.PaymentProvider
	settlementSvc ports.SettlementService
	log           zerolog.Logger
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(provider ports.PaymentProvider, settlementSvc ports.SettlementService, log zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{provider: provider, settlementSvc: settlementSvc, log: log}
}

// HandlePaystackEvent handles POST /api/v1/webhooks/paystack.
// Order is fixed: signature over the raw body first, parsing second,
// dispatch last. A body that fails verification is never parsed.
func (h *WebhookHandler) HandlePaystackEvent(c *gin.Context) {
	signature := c.GetHeader(HeaderPaystackSignature)
	if signature == "" {
		response.Error(c, apperror.ErrMissingSignature())
		return
	}

	rawBody, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.Error(c, apperror.Validation("cannot read request body"))
		return
	}

	if !h.provider.VerifyWebhookSignature(rawBody, signature) {
		h.log.Warn().Str("client_ip", c.ClientIP()).Msg("webhook signature verification failed")
		response.Error(c, apperror.ErrInvalidSignature())
		return
	}

	event, err := domain.ParseWebhookEvent(rawBody)
	if err != nil {
		h.log.Warn().Err(err).Msg("malformed webhook event")
		response.Error(c, apperror.ErrMalformedEvent())
		return
	}

	ctx := c.Request.Context()
	switch {
	case event.ChargeSucceeded != nil:
		err = h.settlementSvc.SettleOrderPayment(ctx, event.ChargeSucceeded)
	case event.AccountAssigned != nil:
		err = h.settlementSvc.AssignVirtualAccount(ctx, event.AccountAssigned)
	case event.AccountFailed != nil:
		err = h.settlementSvc.HandleAccountAssignmentFailed(ctx, event.AccountFailed)
	default:
		// Unrecognized kinds are acknowledged so the provider stops retrying.
		h.log.Info().Str("kind", event.Kind).Msg("ignoring unhandled webhook event kind")
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"received": true})
}
