package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"custodial-wallet/internal/core/domain"
	"custodial-wallet/internal/core/ports"
	"custodial-wallet/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// keySecretPrefix marks raw API-key secrets. The random part is 32 bytes
// hex-encoded, so a full secret is 72 characters.
const keySecretPrefix = "sk_live_"

// ApiKeyServiceImpl implements ports.ApiKeyService.
type ApiKeyServiceImpl struct {
	keyRepo ports.ApiKeyRepository
	hashSvc ports.HashService
	log     zerolog.Logger
}

// NewApiKeyService creates a new ApiKeyServiceImpl.
func NewApiKeyService(keyRepo ports.ApiKeyRepository, hashSvc ports.HashService, log zerolog.Logger) *ApiKeyServiceImpl {
	return &ApiKeyServiceImpl{
		keyRepo: keyRepo,
		hashSvc: hashSvc,
		log:     log,
	}
}

// generateKeySecret produces a new raw API-key secret.
func generateKeySecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating key secret: %w", err)
	}
	return keySecretPrefix + hex.EncodeToString(buf), nil
}

// CreateKey mints a new API key for the user, enforcing the active-key quota.
// The raw secret is returned exactly once and never stored.
func (s *ApiKeyServiceImpl) CreateKey(ctx context.Context, userID uuid.UUID, req ports.CreateKeyRequest) (*ports.CreateKeyResponse, error) {
	if req.Name == "" {
		return nil, apperror.Validation("Key name is required")
	}
	if len(req.Permissions) == 0 {
		return nil, apperror.Validation("At least one permission is required")
	}
	for _, p := range req.Permissions {
		if !domain.ValidPermission(p) {
			return nil, apperror.Validation(fmt.Sprintf("Unknown permission: %s", p))
		}
	}
	lifetime, ok := req.Expiry.Duration()
	if !ok {
		return nil, apperror.Validation(fmt.Sprintf("Unknown expiry: %s", req.Expiry))
	}

	now := time.Now().UTC()
	active, err := s.keyRepo.CountActive(ctx, userID, now)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("count active keys: %w", err))
	}
	if active >= domain.MaxActiveKeysPerUser {
		return nil, apperror.ErrKeyQuotaExceeded()
	}

	rawKey, err := generateKeySecret()
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	keyHash, err := s.hashSvc.Hash(rawKey)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("hash key secret: %w", err))
	}

	key := &domain.ApiKey{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        req.Name,
		KeyHash:     keyHash,
		Permissions: req.Permissions,
		ExpiresAt:   now.Add(lifetime),
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.keyRepo.Create(ctx, key); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create api key: %w", err))
	}

	s.log.Info().
		Str("key_id", key.ID.String()).
		Str("user_id", userID.String()).
		Time("expires_at", key.ExpiresAt).
		Msg("api key created")

	return &ports.CreateKeyResponse{
		Key:       rawKey,
		ExpiresAt: key.ExpiresAt,
	}, nil
}

// RolloverKey replaces a key that is expired or expiring within the rollover
// window. The old key is deactivated and a new secret is issued with the same
// name and permissions.
func (s *ApiKeyServiceImpl) RolloverKey(ctx context.Context, userID uuid.UUID, req ports.RolloverKeyRequest) (*ports.CreateKeyResponse, error) {
	lifetime, ok := req.Expiry.Duration()
	if !ok {
		return nil, apperror.Validation(fmt.Sprintf("Unknown expiry: %s", req.Expiry))
	}

	old, err := s.resolveRolloverTarget(ctx, userID, req)
	if err != nil {
		return nil, err
	}
	if old == nil || !old.IsActive {
		return nil, apperror.ErrKeyNotFound()
	}

	now := time.Now().UTC()
	if old.ExpiresAt.After(now.Add(domain.RolloverWindow)) {
		return nil, apperror.ErrKeyNotRollable()
	}

	if err := s.keyRepo.Deactivate(ctx, old.ID); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("deactivate old key: %w", err))
	}

	// The replacement counts against the same quota as a fresh key. The old
	// key is already deactivated, so rolling an expiring key frees its own
	// slot, while an expired key never held one.
	active, err := s.keyRepo.CountActive(ctx, userID, now)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("count active keys: %w", err))
	}
	if active >= domain.MaxActiveKeysPerUser {
		return nil, apperror.ErrKeyQuotaExceeded()
	}

	rawKey, err := generateKeySecret()
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	keyHash, err := s.hashSvc.Hash(rawKey)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("hash key secret: %w", err))
	}

	replacement := &domain.ApiKey{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        old.Name,
		KeyHash:     keyHash,
		Permissions: old.Permissions,
		ExpiresAt:   now.Add(lifetime),
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.keyRepo.Create(ctx, replacement); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create replacement key: %w", err))
	}

	s.log.Info().
		Str("old_key_id", old.ID.String()).
		Str("new_key_id", replacement.ID.String()).
		Str("user_id", userID.String()).
		Msg("api key rolled over")

	return &ports.CreateKeyResponse{
		Key:       rawKey,
		ExpiresAt: replacement.ExpiresAt,
	}, nil
}

// resolveRolloverTarget finds the key being rolled over. A raw secret is
// matched by hash against the caller's own keys only.
func (s *ApiKeyServiceImpl) resolveRolloverTarget(ctx context.Context, userID uuid.UUID, req ports.RolloverKeyRequest) (*domain.ApiKey, error) {
	if req.RawKey != "" {
		keys, err := s.keyRepo.ListByUser(ctx, userID)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("list keys: %w", err))
		}
		for i := range keys {
			if s.hashSvc.Verify(req.RawKey, keys[i].KeyHash) {
				return &keys[i], nil
			}
		}
		return nil, nil
	}

	if req.ExpiredKeyID != nil {
		key, err := s.keyRepo.GetByIDForUser(ctx, *req.ExpiredKeyID, userID)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("get key: %w", err))
		}
		return key, nil
	}

	return nil, apperror.Validation("Either the raw key or the key id is required")
}

// ValidateKey resolves a presented raw secret to its owner. The scan covers
// every active, unexpired key because the secret is stored only as a bcrypt
// hash. An empty requiredPermission skips the permission check.
func (s *ApiKeyServiceImpl) ValidateKey(ctx context.Context, rawKey string, requiredPermission domain.Permission) (*ports.KeyValidation, error) {
	now := time.Now().UTC()
	keys, err := s.keyRepo.ListActive(ctx, now)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list active keys: %w", err))
	}

	for i := range keys {
		if !s.hashSvc.Verify(rawKey, keys[i].KeyHash) {
			continue
		}
		if !keys[i].IsUsable(now) {
			break
		}
		if requiredPermission != "" && !keys[i].HasPermission(requiredPermission) {
			break
		}
		return &ports.KeyValidation{Valid: true, UserID: keys[i].UserID}, nil
	}
	return &ports.KeyValidation{Valid: false}, nil
}

// ListKeys returns all of the user's keys, including inactive and expired ones.
func (s *ApiKeyServiceImpl) ListKeys(ctx context.Context, userID uuid.UUID) ([]domain.ApiKey, error) {
	keys, err := s.keyRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list keys: %w", err))
	}
	return keys, nil
}
