package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"custodial-wallet/internal/core/domain"
	"custodial-wallet/internal/core/ports"
	"custodial-wallet/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type authTestDeps struct {
	svc        *AuthServiceImpl
	userRepo   *mocks.MockUserRepository
	walletRepo *mocks.MockWalletRepository
	idVerifier *mocks.MockIdentityVerifier
	tokenSvc   *mocks.MockTokenService
	transactor *mocks.MockDBTransactor
	ctrl       *gomock.Controller
}

func setupAuthService(t *testing.T) *authTestDeps {
	ctrl := gomock.NewController(t)
	d := &authTestDeps{
		userRepo:   mocks.NewMockUserRepository(ctrl),
		walletRepo: mocks.NewMockWalletRepository(ctrl),
		idVerifier: mocks.NewMockIdentityVerifier(ctrl),
		tokenSvc:   mocks.NewMockTokenService(ctrl),
		transactor: mocks.NewMockDBTransactor(ctrl),
		ctrl:       ctrl,
	}
	d.svc = NewAuthService(d.userRepo, d.walletRepo, d.idVerifier, d.tokenSvc, d.transactor, zerolog.Nop())
	return d
}

func TestAuthService_LoginWithGoogle_ExistingUser(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()
	expiresAt := time.Now().Add(24 * time.Hour)

	d.idVerifier.EXPECT().Verify(ctx, "valid-id-token").Return(&ports.ExternalIdentity{
		GoogleID: "108234567890123456789",
		Email:    "ada@example.com",
		Name:     "Ada Lovelace",
	}, nil)
	d.userRepo.EXPECT().GetByGoogleID(ctx, "108234567890123456789").Return(&domain.User{
		ID:    userID,
		Email: "ada@example.com",
	}, nil)
	d.tokenSvc.EXPECT().Generate(userID, "ada@example.com").Return("jwt-token", expiresAt, nil)

	result, err := d.svc.LoginWithGoogle(ctx, "valid-id-token")
	require.NoError(t, err)
	assert.Equal(t, "jwt-token", result.Token)
	assert.Equal(t, userID, result.User.ID)
}

func TestAuthService_LoginWithGoogle_FirstLoginProvisionsWallet(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}

	d.idVerifier.EXPECT().Verify(ctx, "new-user-token").Return(&ports.ExternalIdentity{
		GoogleID: "999888777",
		Email:    "grace@example.com",
		Name:     "Grace Hopper",
	}, nil)
	d.userRepo.EXPECT().GetByGoogleID(ctx, "999888777").Return(nil, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)

	var createdUserID uuid.UUID
	d.userRepo.EXPECT().Create(ctx, tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ pgx.Tx, user *domain.User) error {
			assert.Equal(t, "grace@example.com", user.Email)
			assert.Equal(t, "999888777", user.GoogleID)
			createdUserID = user.ID
			return nil
		})
	d.walletRepo.EXPECT().Create(ctx, tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ pgx.Tx, wallet *domain.Wallet) error {
			assert.Equal(t, createdUserID, wallet.UserID)
			assert.Len(t, wallet.WalletNumber, 13)
			assert.True(t, wallet.Balance.IsZero())
			return nil
		})
	d.tokenSvc.EXPECT().Generate(gomock.Any(), "grace@example.com").Return("jwt", time.Now().Add(time.Hour), nil)

	result, err := d.svc.LoginWithGoogle(ctx, "new-user-token")
	require.NoError(t, err)
	assert.Equal(t, createdUserID, result.User.ID)
}

func TestAuthService_LoginWithGoogle_InvalidToken(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.idVerifier.EXPECT().Verify(ctx, "garbage").Return(nil, fmt.Errorf("tokeninfo status 400"))

	_, err := d.svc.LoginWithGoogle(ctx, "garbage")
	assertAppError(t, err, "AUTH_003")
}
