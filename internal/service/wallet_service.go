package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"custodial-wallet/internal/core/domain"
	"custodial-wallet/internal/core/ports"
	"custodial-wallet/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// minorUnitsFactor converts major currency units to the provider's minor
// units (amount x 100).
var minorUnitsFactor = decimal.NewFromInt(100)

// WalletServiceImpl implements ports.WalletService.
type WalletServiceImpl struct {
	userRepo      ports.UserRepository
	walletRepo    ports.WalletRepository
	txRepo        ports.TransactionRepository
	provider      ports.PaymentProvider
	verifier      ports.SignatureVerifier
	transactor    ports.DBTransactor
	verifyWebhook bool
	baseURL       string
	log           zerolog.Logger
}

// NewWalletService creates a new WalletServiceImpl. verifyWebhook disables
// signature checks only in non-release environments.
func NewWalletService(
	userRepo ports.UserRepository,
	walletRepo ports.WalletRepository,
	txRepo ports.TransactionRepository,
	provider ports.PaymentProvider,
	verifier ports.SignatureVerifier,
	transactor ports.DBTransactor,
	verifyWebhook bool,
	baseURL string,
	log zerolog.Logger,
) *WalletServiceImpl {
	return &WalletServiceImpl{
		userRepo:      userRepo,
		walletRepo:    walletRepo,
		txRepo:        txRepo,
		provider:      provider,
		verifier:      verifier,
		transactor:    transactor,
		verifyWebhook: verifyWebhook,
		baseURL:       baseURL,
		log:           log,
	}
}

// InitiateDeposit records a pending deposit and asks the provider for a
// hosted checkout URL. The pending row exists before the provider is called,
// so a webhook can never arrive for an unknown reference.
func (s *WalletServiceImpl) InitiateDeposit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*ports.DepositIntent, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, apperror.Validation("Amount must be greater than zero")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get user: %w", err))
	}
	if user == nil {
		return nil, apperror.ErrNotFound("User")
	}

	wallet, err := s.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("Wallet")
	}

	reference := domain.GenerateReference()
	now := time.Now().UTC()
	txn := &domain.Transaction{
		ID:        uuid.New(),
		WalletID:  wallet.ID,
		Type:      domain.TransactionTypeDeposit,
		Amount:    amount,
		Status:    domain.TransactionStatusPending,
		Reference: &reference,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.txRepo.Create(ctx, txn); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create pending deposit: %w", err))
	}

	resp, err := s.provider.InitializeTransaction(ctx, ports.InitializeRequest{
		Email:       user.Email,
		AmountMinor: amount.Mul(minorUnitsFactor).IntPart(),
		Reference:   reference,
		CallbackURL: fmt.Sprintf("%s/wallet/deposit/%s/status", s.baseURL, reference),
	})
	if err != nil {
		if updErr := s.txRepo.UpdateStatus(ctx, txn.ID, domain.TransactionStatusFailed); updErr != nil {
			s.log.Error().Err(updErr).Str("reference", reference).Msg("failed to mark deposit failed")
		}
		return nil, apperror.ErrPaymentInit(err)
	}

	s.log.Info().
		Str("reference", reference).
		Str("user_id", userID.String()).
		Str("amount", amount.String()).
		Msg("deposit initiated")

	return &ports.DepositIntent{
		Reference:        reference,
		AuthorizationURL: resp.AuthorizationURL,
	}, nil
}

// HandleProviderWebhook processes a provider event. Only charge.success
// credits a wallet, and only when the referenced deposit is still pending.
// Unknown references and replays are acknowledged without side effect.
func (s *WalletServiceImpl) HandleProviderWebhook(ctx context.Context, payload []byte, signature string) error {
	if s.verifyWebhook && !s.verifier.Verify(payload, signature) {
		return apperror.ErrInvalidSignature()
	}

	var event domain.ProviderWebhook
	if err := json.Unmarshal(payload, &event); err != nil {
		return apperror.Validation("Malformed webhook payload")
	}

	if event.Event != domain.ProviderEventChargeSuccess {
		s.log.Debug().Str("event", event.Event).Msg("ignoring webhook event")
		return nil
	}

	txn, err := s.txRepo.GetByReference(ctx, event.Data.Reference)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("get transaction: %w", err))
	}
	if txn == nil {
		s.log.Warn().Str("reference", event.Data.Reference).Msg("webhook for unknown reference")
		return nil
	}
	if txn.Type != domain.TransactionTypeDeposit {
		return nil
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	credited, err := s.txRepo.MarkSuccessIfPending(ctx, dbTx, txn.ID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("mark deposit success: %w", err))
	}
	if !credited {
		s.log.Info().Str("reference", event.Data.Reference).Msg("webhook replay ignored")
		return nil
	}

	// The pending row's amount is authoritative, not the webhook payload.
	if err := s.walletRepo.Credit(ctx, dbTx, txn.WalletID, txn.Amount); err != nil {
		return apperror.InternalError(fmt.Errorf("credit wallet: %w", err))
	}
	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("reference", event.Data.Reference).
		Str("wallet_id", txn.WalletID.String()).
		Str("amount", txn.Amount.String()).
		Msg("deposit credited")

	return nil
}

// GetDepositStatus returns the current state of a deposit. Polling never
// triggers crediting.
func (s *WalletServiceImpl) GetDepositStatus(ctx context.Context, reference string) (*ports.DepositStatus, error) {
	txn, err := s.txRepo.GetByReference(ctx, reference)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get transaction: %w", err))
	}
	if txn == nil {
		return nil, apperror.ErrNotFound("Transaction")
	}
	return &ports.DepositStatus{
		Reference: reference,
		Status:    txn.Status,
		Amount:    txn.Amount,
	}, nil
}

// Transfer moves funds between wallets. The sender's row is locked for the
// balance check; the recipient is credited with a relative update and is
// never locked.
func (s *WalletServiceImpl) Transfer(ctx context.Context, senderUserID uuid.UUID, recipientWalletNumber string, amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return apperror.Validation("Amount must be greater than zero")
	}

	recipient, err := s.walletRepo.GetByWalletNumber(ctx, recipientWalletNumber)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("get recipient wallet: %w", err))
	}
	if recipient == nil {
		return apperror.ErrInvalidWalletNumber()
	}

	senderWallet, err := s.walletRepo.GetByUserID(ctx, senderUserID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("get sender wallet: %w", err))
	}
	if senderWallet == nil {
		return apperror.ErrNotFound("Wallet")
	}
	if senderWallet.ID == recipient.ID {
		return apperror.ErrSelfTransfer()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	sender, err := s.walletRepo.GetByIDForUpdate(ctx, dbTx, senderWallet.ID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("lock sender wallet: %w", err))
	}
	if sender == nil {
		return apperror.ErrNotFound("Wallet")
	}

	if sender.Balance.LessThan(amount) {
		return apperror.ErrInsufficientFunds()
	}

	if err := s.walletRepo.UpdateBalance(ctx, dbTx, sender.ID, sender.Balance.Sub(amount)); err != nil {
		return apperror.InternalError(fmt.Errorf("debit sender: %w", err))
	}
	if err := s.walletRepo.Credit(ctx, dbTx, recipient.ID, amount); err != nil {
		return apperror.InternalError(fmt.Errorf("credit recipient: %w", err))
	}

	now := time.Now().UTC()
	out := &domain.Transaction{
		ID:                uuid.New(),
		WalletID:          sender.ID,
		Type:              domain.TransactionTypeTransferOut,
		Amount:            amount,
		Status:            domain.TransactionStatusSuccess,
		RecipientWalletID: &recipient.ID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	in := &domain.Transaction{
		ID:       uuid.New(),
		WalletID: recipient.ID,
		Type:     domain.TransactionTypeTransferIn,
		Amount:   amount,
		Status:   domain.TransactionStatusSuccess,
		Metadata: map[string]any{
			"sender_wallet_number": sender.WalletNumber,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.txRepo.CreateInTx(ctx, dbTx, out); err != nil {
		return apperror.InternalError(fmt.Errorf("record outbound transfer: %w", err))
	}
	if err := s.txRepo.CreateInTx(ctx, dbTx, in); err != nil {
		return apperror.InternalError(fmt.Errorf("record inbound transfer: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("sender_wallet", sender.WalletNumber).
		Str("recipient_wallet", recipient.WalletNumber).
		Str("amount", amount.String()).
		Msg("transfer completed")

	return nil
}

// GetWalletInfo returns the wallet's public projection.
func (s *WalletServiceImpl) GetWalletInfo(ctx context.Context, userID uuid.UUID) (*ports.WalletInfo, error) {
	wallet, err := s.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("Wallet")
	}
	return &ports.WalletInfo{
		WalletNumber: wallet.WalletNumber,
		Balance:      wallet.Balance,
		CreatedAt:    wallet.CreatedAt,
	}, nil
}

// GetBalance returns the current wallet balance.
func (s *WalletServiceImpl) GetBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	wallet, err := s.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		return decimal.Zero, apperror.InternalError(fmt.Errorf("get wallet: %w", err))
	}
	if wallet == nil {
		return decimal.Zero, apperror.ErrNotFound("Wallet")
	}
	return wallet.Balance, nil
}

// ListTransactions returns the wallet's ledger, newest first.
func (s *WalletServiceImpl) ListTransactions(ctx context.Context, userID uuid.UUID) ([]ports.LedgerEntry, error) {
	wallet, err := s.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("Wallet")
	}

	entries, err := s.txRepo.ListByWallet(ctx, wallet.ID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list transactions: %w", err))
	}
	return entries, nil
}
