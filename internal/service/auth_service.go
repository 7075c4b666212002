package service

import (
	"context"
	"fmt"
	"time"

	"custodial-wallet/internal/core/domain"
	"custodial-wallet/internal/core/ports"
	"custodial-wallet/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// AuthServiceImpl implements ports.AuthService.
type AuthServiceImpl struct {
	userRepo   ports.UserRepository
	walletRepo ports.WalletRepository
	idVerifier ports.IdentityVerifier
	tokenSvc   ports.TokenService
	transactor ports.DBTransactor
	log        zerolog.Logger
}

// NewAuthService creates a new AuthServiceImpl.
func NewAuthService(
	userRepo ports.UserRepository,
	walletRepo ports.WalletRepository,
	idVerifier ports.IdentityVerifier,
	tokenSvc ports.TokenService,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		userRepo:   userRepo,
		walletRepo: walletRepo,
		idVerifier: idVerifier,
		tokenSvc:   tokenSvc,
		transactor: transactor,
		log:        log,
	}
}

// LoginWithGoogle verifies a Google ID token, provisioning the user and
// their wallet on first login, and issues a session JWT.
func (s *AuthServiceImpl) LoginWithGoogle(ctx context.Context, idToken string) (*ports.LoginResult, error) {
	identity, err := s.idVerifier.Verify(ctx, idToken)
	if err != nil {
		s.log.Warn().Err(err).Msg("google id token rejected")
		return nil, apperror.ErrInvalidToken()
	}

	user, err := s.userRepo.GetByGoogleID(ctx, identity.GoogleID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lookup user: %w", err))
	}
	if user == nil {
		user, err = s.provisionUser(ctx, identity)
		if err != nil {
			return nil, err
		}
	}

	token, expiresAt, err := s.tokenSvc.Generate(user.ID, user.Email)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("generate session token: %w", err))
	}

	return &ports.LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
	}, nil
}

// provisionUser creates a user and their wallet in one database transaction,
// so a login never observes a user without a wallet.
func (s *AuthServiceImpl) provisionUser(ctx context.Context, identity *ports.ExternalIdentity) (*domain.User, error) {
	now := time.Now().UTC()
	user := &domain.User{
		ID:        uuid.New(),
		Email:     identity.Email,
		GoogleID:  identity.GoogleID,
		Name:      identity.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	wallet := &domain.Wallet{
		ID:           uuid.New(),
		UserID:       user.ID,
		WalletNumber: domain.GenerateWalletNumber(),
		Balance:      decimal.Zero,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.userRepo.Create(ctx, dbTx, user); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create user: %w", err))
	}
	if err := s.walletRepo.Create(ctx, dbTx, wallet); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create wallet: %w", err))
	}
	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("user_id", user.ID.String()).
		Str("wallet_number", wallet.WalletNumber).
		Msg("user provisioned on first login")

	return user, nil
}
