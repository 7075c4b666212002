package handler

import (
	"io"

	"custodial-wallet/internal/core/ports"
	"custodial-wallet/pkg/apperror"
	"custodial-wallet/pkg/response"

	"github.com/gin-gonic/gin"
)

// HeaderPaystackSignature carries the provider's HMAC over the raw body.
const HeaderPaystackSignature = "x-paystack-signature"

// WebhookHandler receives provider payment notifications.
type WebhookHandler struct {
	walletSvc ports.WalletService
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(walletSvc ports.WalletService) *WebhookHandler {
	return &WebhookHandler{walletSvc: walletSvc}
}

// HandlePaystack handles POST /api/v1/webhook/paystack.
// The raw body must reach the service untouched; the signature covers the
// exact bytes the provider sent.
func (h *WebhookHandler) HandlePaystack(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.Error(c, apperror.Validation("unreadable request body"))
		return
	}

	signature := c.GetHeader(HeaderPaystackSignature)
	if err := h.walletSvc.HandleProviderWebhook(c.Request.Context(), payload, signature); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"status": "acknowledged"})
}
