package postgres

import (
	"context"
	"errors"
	"fmt"

	"custodial-wallet/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// WalletRepo implements ports.WalletRepository.
type WalletRepo struct {
	pool Pool
}

// NewWalletRepo creates a new WalletRepo.
func NewWalletRepo(pool Pool) *WalletRepo {
	return &WalletRepo{pool: pool}
}

// Create inserts a new wallet within a transaction. The caller commits
// the wallet together with its owning user.
func (r *WalletRepo) Create(ctx context.Context, tx pgx.Tx, w *domain.Wallet) error {
	query := `INSERT INTO wallets (id, user_id, wallet_number, balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := tx.Exec(ctx, query,
		w.ID, w.UserID, w.WalletNumber, w.Balance,
		w.CreatedAt, w.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert wallet: %w", err)
	}
	return nil
}

// GetByUserID fetches a wallet by its owner (non-locking read).
func (r *WalletRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error) {
	query := `SELECT id, user_id, wallet_number, balance, created_at, updated_at
		FROM wallets WHERE user_id = $1`

	w := &domain.Wallet{}
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&w.ID, &w.UserID, &w.WalletNumber, &w.Balance, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get wallet by user id: %w", err)
	}
	return w, nil
}

// GetByWalletNumber fetches a wallet by its public wallet number (non-locking read).
func (r *WalletRepo) GetByWalletNumber(ctx context.Context, walletNumber string) (*domain.Wallet, error) {
	query := `SELECT id, user_id, wallet_number, balance, created_at, updated_at
		FROM wallets WHERE wallet_number = $1`

	w := &domain.Wallet{}
	err := r.pool.QueryRow(ctx, query, walletNumber).Scan(
		&w.ID, &w.UserID, &w.WalletNumber, &w.Balance, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get wallet by wallet number: %w", err)
	}
	return w, nil
}

// GetByIDForUpdate fetches a wallet by ID with pessimistic locking.
// This MUST be called within a transaction.
func (r *WalletRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Wallet, error) {
	query := `SELECT id, user_id, wallet_number, balance, created_at, updated_at
		FROM wallets WHERE id = $1 FOR UPDATE`

	w := &domain.Wallet{}
	err := tx.QueryRow(ctx, query, id).Scan(
		&w.ID, &w.UserID, &w.WalletNumber, &w.Balance, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get wallet for update: %w", err)
	}
	return w, nil
}

// UpdateBalance sets a wallet's balance within a transaction. The caller
// must hold the row lock.
func (r *WalletRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, balance decimal.Decimal) error {
	query := `UPDATE wallets SET balance = $1, updated_at = NOW() WHERE id = $2`

	tag, err := tx.Exec(ctx, query, balance, walletID)
	if err != nil {
		return fmt.Errorf("update wallet balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("wallet not found: %s", walletID)
	}
	return nil
}

// Credit adds amount to a wallet's balance as a relative update, which
// serializes at the row without a prior lock.
func (r *WalletRepo) Credit(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, amount decimal.Decimal) error {
	query := `UPDATE wallets SET balance = balance + $1, updated_at = NOW() WHERE id = $2`

	tag, err := tx.Exec(ctx, query, amount, walletID)
	if err != nil {
		return fmt.Errorf("credit wallet: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("wallet not found: %s", walletID)
	}
	return nil
}
