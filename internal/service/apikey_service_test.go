package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"custodial-wallet/internal/core/domain"
	"custodial-wallet/internal/core/ports"
	"custodial-wallet/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type apiKeyTestDeps struct {
	svc     *ApiKeyServiceImpl
	keyRepo *mocks.MockApiKeyRepository
	hashSvc *mocks.MockHashService
	ctrl    *gomock.Controller
}

func setupApiKeyService(t *testing.T) *apiKeyTestDeps {
	ctrl := gomock.NewController(t)
	d := &apiKeyTestDeps{
		keyRepo: mocks.NewMockApiKeyRepository(ctrl),
		hashSvc: mocks.NewMockHashService(ctrl),
		ctrl:    ctrl,
	}
	d.svc = NewApiKeyService(d.keyRepo, d.hashSvc, zerolog.Nop())
	return d
}

// ==================== CreateKey Tests ====================

func TestApiKeyService_CreateKey_Success(t *testing.T) {
	d := setupApiKeyService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()

	d.keyRepo.EXPECT().CountActive(ctx, userID, gomock.Any()).Return(2, nil)
	d.hashSvc.EXPECT().Hash(gomock.Any()).DoAndReturn(func(secret string) (string, error) {
		assert.True(t, strings.HasPrefix(secret, "sk_live_"))
		assert.Len(t, secret, 72)
		return "hashed-secret", nil
	})
	d.keyRepo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, key *domain.ApiKey) error {
		assert.Equal(t, userID, key.UserID)
		assert.Equal(t, "ci pipeline", key.Name)
		assert.Equal(t, "hashed-secret", key.KeyHash)
		assert.True(t, key.IsActive)
		return nil
	})

	resp, err := d.svc.CreateKey(ctx, userID, ports.CreateKeyRequest{
		Name:        "ci pipeline",
		Permissions: []domain.Permission{domain.PermissionDeposit},
		Expiry:      domain.KeyExpiry1Day,
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.Key, "sk_live_"))
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), resp.ExpiresAt, time.Minute)
}

func TestApiKeyService_CreateKey_QuotaExceeded(t *testing.T) {
	d := setupApiKeyService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()

	d.keyRepo.EXPECT().CountActive(ctx, userID, gomock.Any()).Return(domain.MaxActiveKeysPerUser, nil)

	_, err := d.svc.CreateKey(ctx, userID, ports.CreateKeyRequest{
		Name:        "one too many",
		Permissions: []domain.Permission{domain.PermissionRead},
		Expiry:      domain.KeyExpiry1Hour,
	})
	assertAppError(t, err, "KEY_001")
}

func TestApiKeyService_CreateKey_Validation(t *testing.T) {
	d := setupApiKeyService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()

	tests := []struct {
		name string
		req  ports.CreateKeyRequest
	}{
		{"missing name", ports.CreateKeyRequest{Permissions: []domain.Permission{domain.PermissionRead}, Expiry: domain.KeyExpiry1Hour}},
		{"no permissions", ports.CreateKeyRequest{Name: "k", Expiry: domain.KeyExpiry1Hour}},
		{"unknown permission", ports.CreateKeyRequest{Name: "k", Permissions: []domain.Permission{"admin"}, Expiry: domain.KeyExpiry1Hour}},
		{"unknown expiry", ports.CreateKeyRequest{Name: "k", Permissions: []domain.Permission{domain.PermissionRead}, Expiry: "2W"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.svc.CreateKey(ctx, userID, tt.req)
			assertAppError(t, err, "VAL_001")
		})
	}
}

// ==================== RolloverKey Tests ====================

func TestApiKeyService_RolloverKey_ByRawKey(t *testing.T) {
	d := setupApiKeyService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()
	oldKeyID := uuid.New()
	rawOld := "sk_live_" + strings.Repeat("a", 64)

	expired := domain.ApiKey{
		ID:          oldKeyID,
		UserID:      userID,
		Name:        "ci pipeline",
		KeyHash:     "old-hash",
		Permissions: []domain.Permission{domain.PermissionTransfer},
		ExpiresAt:   time.Now().Add(-time.Hour),
		IsActive:    true,
	}

	d.keyRepo.EXPECT().ListByUser(ctx, userID).Return([]domain.ApiKey{expired}, nil)
	d.hashSvc.EXPECT().Verify(rawOld, "old-hash").Return(true)
	d.keyRepo.EXPECT().Deactivate(ctx, oldKeyID).Return(nil)
	d.keyRepo.EXPECT().CountActive(ctx, userID, gomock.Any()).Return(1, nil)
	d.hashSvc.EXPECT().Hash(gomock.Any()).Return("new-hash", nil)
	d.keyRepo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, key *domain.ApiKey) error {
		assert.Equal(t, "ci pipeline", key.Name)
		assert.Equal(t, expired.Permissions, key.Permissions)
		assert.NotEqual(t, oldKeyID, key.ID)
		return nil
	})

	resp, err := d.svc.RolloverKey(ctx, userID, ports.RolloverKeyRequest{
		RawKey: rawOld,
		Expiry: domain.KeyExpiry1Month,
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.Key, "sk_live_"))
	assert.NotEqual(t, rawOld, resp.Key)
}

func TestApiKeyService_RolloverKey_ByID_WithinWindow(t *testing.T) {
	d := setupApiKeyService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()
	keyID := uuid.New()

	// Expires in 3 days: inside the 7-day rollover window.
	d.keyRepo.EXPECT().GetByIDForUser(ctx, keyID, userID).Return(&domain.ApiKey{
		ID:          keyID,
		UserID:      userID,
		Name:        "reporting",
		Permissions: []domain.Permission{domain.PermissionRead},
		ExpiresAt:   time.Now().Add(3 * 24 * time.Hour),
		IsActive:    true,
	}, nil)
	d.keyRepo.EXPECT().Deactivate(ctx, keyID).Return(nil)
	d.keyRepo.EXPECT().CountActive(ctx, userID, gomock.Any()).Return(4, nil)
	d.hashSvc.EXPECT().Hash(gomock.Any()).Return("new-hash", nil)
	d.keyRepo.EXPECT().Create(ctx, gomock.Any()).Return(nil)

	_, err := d.svc.RolloverKey(ctx, userID, ports.RolloverKeyRequest{
		ExpiredKeyID: &keyID,
		Expiry:       domain.KeyExpiry1Year,
	})
	assert.NoError(t, err)
}

func TestApiKeyService_RolloverKey_QuotaExceeded(t *testing.T) {
	d := setupApiKeyService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()
	keyID := uuid.New()

	// The expired key never counted toward the quota, so deactivating it
	// frees nothing: five other active keys still block the replacement.
	d.keyRepo.EXPECT().GetByIDForUser(ctx, keyID, userID).Return(&domain.ApiKey{
		ID:        keyID,
		UserID:    userID,
		ExpiresAt: time.Now().Add(-time.Hour),
		IsActive:  true,
	}, nil)
	d.keyRepo.EXPECT().Deactivate(ctx, keyID).Return(nil)
	d.keyRepo.EXPECT().CountActive(ctx, userID, gomock.Any()).Return(domain.MaxActiveKeysPerUser, nil)

	_, err := d.svc.RolloverKey(ctx, userID, ports.RolloverKeyRequest{
		ExpiredKeyID: &keyID,
		Expiry:       domain.KeyExpiry1Month,
	})
	assertAppError(t, err, "KEY_001")
}

func TestApiKeyService_RolloverKey_NotExpiringSoon(t *testing.T) {
	d := setupApiKeyService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()
	keyID := uuid.New()

	d.keyRepo.EXPECT().GetByIDForUser(ctx, keyID, userID).Return(&domain.ApiKey{
		ID:        keyID,
		UserID:    userID,
		ExpiresAt: time.Now().Add(30 * 24 * time.Hour),
		IsActive:  true,
	}, nil)

	_, err := d.svc.RolloverKey(ctx, userID, ports.RolloverKeyRequest{
		ExpiredKeyID: &keyID,
		Expiry:       domain.KeyExpiry1Month,
	})
	assertAppError(t, err, "KEY_003")
}

func TestApiKeyService_RolloverKey_NotFound(t *testing.T) {
	d := setupApiKeyService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()
	keyID := uuid.New()

	d.keyRepo.EXPECT().GetByIDForUser(ctx, keyID, userID).Return(nil, nil)

	_, err := d.svc.RolloverKey(ctx, userID, ports.RolloverKeyRequest{
		ExpiredKeyID: &keyID,
		Expiry:       domain.KeyExpiry1Month,
	})
	assertAppError(t, err, "KEY_002")
}

func TestApiKeyService_RolloverKey_OtherUsersKeyInvisible(t *testing.T) {
	d := setupApiKeyService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	callerID := uuid.New()
	rawKey := "sk_live_" + strings.Repeat("b", 64)

	// The scan is scoped to the caller's keys: someone else's secret
	// never matches.
	d.keyRepo.EXPECT().ListByUser(ctx, callerID).Return([]domain.ApiKey{
		{ID: uuid.New(), UserID: callerID, KeyHash: "caller-hash"},
	}, nil)
	d.hashSvc.EXPECT().Verify(rawKey, "caller-hash").Return(false)

	_, err := d.svc.RolloverKey(ctx, callerID, ports.RolloverKeyRequest{
		RawKey: rawKey,
		Expiry: domain.KeyExpiry1Month,
	})
	assertAppError(t, err, "KEY_002")
}

// ==================== ValidateKey Tests ====================

func TestApiKeyService_ValidateKey_Match(t *testing.T) {
	d := setupApiKeyService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	ownerID := uuid.New()
	rawKey := "sk_live_" + strings.Repeat("c", 64)

	d.keyRepo.EXPECT().ListActive(ctx, gomock.Any()).Return([]domain.ApiKey{
		{UserID: uuid.New(), KeyHash: "other-hash", IsActive: true, ExpiresAt: time.Now().Add(time.Hour), Permissions: []domain.Permission{domain.PermissionRead}},
		{UserID: ownerID, KeyHash: "owner-hash", IsActive: true, ExpiresAt: time.Now().Add(time.Hour), Permissions: []domain.Permission{domain.PermissionDeposit}},
	}, nil)
	d.hashSvc.EXPECT().Verify(rawKey, "other-hash").Return(false)
	d.hashSvc.EXPECT().Verify(rawKey, "owner-hash").Return(true)

	result, err := d.svc.ValidateKey(ctx, rawKey, domain.PermissionDeposit)
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Equal(t, ownerID, result.UserID)
}

func TestApiKeyService_ValidateKey_MissingPermission(t *testing.T) {
	d := setupApiKeyService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	rawKey := "sk_live_" + strings.Repeat("d", 64)

	d.keyRepo.EXPECT().ListActive(ctx, gomock.Any()).Return([]domain.ApiKey{
		{UserID: uuid.New(), KeyHash: "h", IsActive: true, ExpiresAt: time.Now().Add(time.Hour), Permissions: []domain.Permission{domain.PermissionRead}},
	}, nil)
	d.hashSvc.EXPECT().Verify(rawKey, "h").Return(true)

	result, err := d.svc.ValidateKey(ctx, rawKey, domain.PermissionTransfer)
	require.NoError(t, err)
	assert.False(t, result.Valid)
}

func TestApiKeyService_ValidateKey_NoMatch(t *testing.T) {
	d := setupApiKeyService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	rawKey := "sk_live_" + strings.Repeat("e", 64)

	d.keyRepo.EXPECT().ListActive(ctx, gomock.Any()).Return([]domain.ApiKey{}, nil)

	result, err := d.svc.ValidateKey(ctx, rawKey, domain.PermissionRead)
	require.NoError(t, err)
	assert.False(t, result.Valid)
}

// ==================== ListKeys Tests ====================

func TestApiKeyService_ListKeys(t *testing.T) {
	d := setupApiKeyService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()

	d.keyRepo.EXPECT().ListByUser(ctx, userID).Return([]domain.ApiKey{
		{ID: uuid.New(), Name: "active"},
		{ID: uuid.New(), Name: "expired"},
	}, nil)

	keys, err := d.svc.ListKeys(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, keys, 2)
}
