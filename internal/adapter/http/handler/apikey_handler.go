package handler

import (
	"time"

	"custodial-wallet/internal/adapter/http/dto"
	"custodial-wallet/internal/core/domain"
	"custodial-wallet/internal/core/ports"
	"custodial-wallet/pkg/apperror"
	"custodial-wallet/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ApiKeyHandler handles API-key lifecycle endpoints.
type ApiKeyHandler struct {
	keySvc ports.ApiKeyService
}

// NewApiKeyHandler creates a new ApiKeyHandler.
func NewApiKeyHandler(keySvc ports.ApiKeyService) *ApiKeyHandler {
	return &ApiKeyHandler{keySvc: keySvc}
}

// CreateKey handles POST /api/v1/api-keys.
func (h *ApiKeyHandler) CreateKey(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var req dto.CreateKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	perms := make([]domain.Permission, 0, len(req.Permissions))
	for _, p := range req.Permissions {
		perms = append(perms, domain.Permission(p))
	}

	result, err := h.keySvc.CreateKey(c.Request.Context(), userID, ports.CreateKeyRequest{
		Name:        req.Name,
		Permissions: perms,
		Expiry:      domain.KeyExpiry(req.Expiry),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.CreateKeyResponse{
		Key:       result.Key,
		ExpiresAt: result.ExpiresAt.Unix(),
	})
}

// RolloverKey handles POST /api/v1/api-keys/rollover.
func (h *ApiKeyHandler) RolloverKey(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var req dto.RolloverKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	if req.Key == "" && req.KeyID == "" {
		response.Error(c, apperror.Validation("either key or key_id is required"))
		return
	}

	var keyID *uuid.UUID
	if req.KeyID != "" {
		id, err := uuid.Parse(req.KeyID)
		if err != nil {
			response.Error(c, apperror.Validation("key_id must be a valid UUID"))
			return
		}
		keyID = &id
	}

	result, err := h.keySvc.RolloverKey(c.Request.Context(), userID, ports.RolloverKeyRequest{
		RawKey:       req.Key,
		ExpiredKeyID: keyID,
		Expiry:       domain.KeyExpiry(req.Expiry),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.CreateKeyResponse{
		Key:       result.Key,
		ExpiresAt: result.ExpiresAt.Unix(),
	})
}

// ListKeys handles GET /api/v1/api-keys.
func (h *ApiKeyHandler) ListKeys(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	keys, err := h.keySvc.ListKeys(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.KeyResponse, 0, len(keys))
	for _, k := range keys {
		perms := make([]string, 0, len(k.Permissions))
		for _, p := range k.Permissions {
			perms = append(perms, string(p))
		}
		items = append(items, dto.KeyResponse{
			ID:          k.ID.String(),
			Name:        k.Name,
			Permissions: perms,
			Active:      k.IsActive,
			ExpiresAt:   k.ExpiresAt.Unix(),
			CreatedAt:   k.CreatedAt.Format(time.RFC3339),
		})
	}
	response.OK(c, items)
}
