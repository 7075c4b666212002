package ports

import (
	"context"
	"time"

	"custodial-wallet/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	// Create inserts a user inside a transaction block so the user and
	// their wallet commit atomically.
	Create(ctx context.Context, tx pgx.Tx, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByGoogleID(ctx context.Context, googleID string) (*domain.User, error)
}

// WalletRepository defines persistence operations for wallets.
// Methods accepting pgx.Tx are used inside transaction blocks for pessimistic locking.
type WalletRepository interface {
	Create(ctx context.Context, tx pgx.Tx, wallet *domain.Wallet) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error)
	GetByWalletNumber(ctx context.Context, walletNumber string) (*domain.Wallet, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Wallet, error)
	// UpdateBalance sets an absolute balance; the caller must hold the row lock.
	UpdateBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, balance decimal.Decimal) error
	// Credit adds amount to the wallet balance as a relative update, which
	// serializes at the row without requiring a prior lock.
	Credit(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, amount decimal.Decimal) error
}

// LedgerEntry is a transaction annotated with the counterparty's public
// wallet number where one exists (outbound transfers only).
type LedgerEntry struct {
	domain.Transaction
	RecipientWalletNumber *string
}

// TransactionRepository defines persistence operations for ledger entries.
type TransactionRepository interface {
	Create(ctx context.Context, t *domain.Transaction) error
	CreateInTx(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error
	GetByReference(ctx context.Context, reference string) (*domain.Transaction, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TransactionStatus) error
	// MarkSuccessIfPending flips the row to success only when it is still
	// pending. Returns false when the row was already terminal, which is the
	// webhook idempotency guard.
	MarkSuccessIfPending(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error)
	ListByWallet(ctx context.Context, walletID uuid.UUID) ([]LedgerEntry, error)
}

// ApiKeyRepository defines persistence operations for API keys.
type ApiKeyRepository interface {
	Create(ctx context.Context, key *domain.ApiKey) error
	CountActive(ctx context.Context, userID uuid.UUID, now time.Time) (int, error)
	// ListActive returns every active, unexpired key system-wide. Key
	// validation scans this set linearly.
	ListActive(ctx context.Context, now time.Time) ([]domain.ApiKey, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.ApiKey, error)
	GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*domain.ApiKey, error)
	// Deactivate permanently disables a key. There is no reactivation path.
	Deactivate(ctx context.Context, id uuid.UUID) error
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
