package handler

import (
	"time"

	"custodial-wallet/internal/adapter/http/dto"
	"custodial-wallet/internal/adapter/http/middleware"
	"custodial-wallet/internal/core/ports"
	"custodial-wallet/pkg/apperror"
	"custodial-wallet/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// WalletHandler handles wallet and deposit endpoints.
type WalletHandler struct {
	walletSvc ports.WalletService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletSvc ports.WalletService) *WalletHandler {
	return &WalletHandler{walletSvc: walletSvc}
}

func callerID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(middleware.CtxUserID)
	if !ok {
		response.Error(c, apperror.ErrUnauthenticated())
		return uuid.Nil, false
	}
	return v.(uuid.UUID), true
}

// InitiateDeposit handles POST /api/v1/wallet/deposit.
func (h *WalletHandler) InitiateDeposit(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var req dto.DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	intent, err := h.walletSvc.InitiateDeposit(c.Request.Context(), userID, req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.DepositResponse{
		Reference:        intent.Reference,
		AuthorizationURL: intent.AuthorizationURL,
	})
}

// GetDepositStatus handles GET /api/v1/wallet/deposit/:reference.
func (h *WalletHandler) GetDepositStatus(c *gin.Context) {
	if _, ok := callerID(c); !ok {
		return
	}

	status, err := h.walletSvc.GetDepositStatus(c.Request.Context(), c.Param("reference"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.DepositStatusResponse{
		Reference: status.Reference,
		Status:    string(status.Status),
		Amount:    status.Amount,
	})
}

// Transfer handles POST /api/v1/wallet/transfer.
func (h *WalletHandler) Transfer(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	if err := h.walletSvc.Transfer(c.Request.Context(), userID, req.WalletNumber, req.Amount); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"status": "success"})
}

// GetWalletInfo handles GET /api/v1/wallet.
func (h *WalletHandler) GetWalletInfo(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	info, err := h.walletSvc.GetWalletInfo(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.WalletResponse{
		WalletNumber: info.WalletNumber,
		Balance:      info.Balance,
		CreatedAt:    info.CreatedAt.Format(time.RFC3339),
	})
}

// GetBalance handles GET /api/v1/wallet/balance.
func (h *WalletHandler) GetBalance(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	balance, err := h.walletSvc.GetBalance(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.BalanceResponse{Balance: balance})
}

// ListTransactions handles GET /api/v1/wallet/transactions.
func (h *WalletHandler) ListTransactions(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	entries, err := h.walletSvc.ListTransactions(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.TransactionResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, toTransactionResponse(e))
	}
	response.OK(c, items)
}

func toTransactionResponse(e ports.LedgerEntry) dto.TransactionResponse {
	return dto.TransactionResponse{
		ID:                    e.ID.String(),
		Type:                  string(e.Type),
		Status:                string(e.Status),
		Amount:                e.Amount,
		Reference:             e.Reference,
		RecipientWalletNumber: e.RecipientWalletNumber,
		Metadata:              e.Metadata,
		CreatedAt:             e.CreatedAt.Format(time.RFC3339),
	}
}
