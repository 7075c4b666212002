package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"custodial-wallet/internal/core/domain"
	"custodial-wallet/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TransactionRepo implements ports.TransactionRepository.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

const insertTransactionQuery = `INSERT INTO transactions (id, wallet_id, type, amount, status, reference,
	recipient_wallet_id, metadata, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

// Create inserts a new ledger entry outside of any enclosing transaction.
func (r *TransactionRepo) Create(ctx context.Context, t *domain.Transaction) error {
	_, err := r.pool.Exec(ctx, insertTransactionQuery,
		t.ID, t.WalletID, t.Type, t.Amount, t.Status,
		t.Reference, t.RecipientWalletID, t.Metadata,
		t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// CreateInTx inserts a new ledger entry within a database transaction.
func (r *TransactionRepo) CreateInTx(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	_, err := tx.Exec(ctx, insertTransactionQuery,
		t.ID, t.WalletID, t.Type, t.Amount, t.Status,
		t.Reference, t.RecipientWalletID, t.Metadata,
		t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// GetByReference fetches a transaction by its provider reference.
func (r *TransactionRepo) GetByReference(ctx context.Context, reference string) (*domain.Transaction, error) {
	query := `SELECT id, wallet_id, type, amount, status, reference, recipient_wallet_id, metadata, created_at, updated_at
		FROM transactions WHERE reference = $1`

	t := &domain.Transaction{}
	err := r.pool.QueryRow(ctx, query, reference).Scan(
		&t.ID, &t.WalletID, &t.Type, &t.Amount, &t.Status,
		&t.Reference, &t.RecipientWalletID, &t.Metadata,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction by reference: %w", err)
	}
	return t, nil
}

// UpdateStatus updates a transaction's status.
func (r *TransactionRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TransactionStatus) error {
	query := `UPDATE transactions SET status = $1, updated_at = $2 WHERE id = $3`

	tag, err := r.pool.Exec(ctx, query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("update transaction status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("transaction not found: %s", id)
	}
	return nil
}

// MarkSuccessIfPending flips a transaction to success only when it is still
// pending. Returns false when the row was already terminal, so a replayed
// webhook cannot credit twice.
func (r *TransactionRepo) MarkSuccessIfPending(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error) {
	query := `UPDATE transactions SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`

	tag, err := tx.Exec(ctx, query, domain.TransactionStatusSuccess, time.Now(), id, domain.TransactionStatusPending)
	if err != nil {
		return false, fmt.Errorf("mark transaction success: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListByWallet fetches a wallet's ledger entries, newest first, joining the
// recipient's wallet number for outbound transfers.
func (r *TransactionRepo) ListByWallet(ctx context.Context, walletID uuid.UUID) ([]ports.LedgerEntry, error) {
	query := `SELECT t.id, t.wallet_id, t.type, t.amount, t.status, t.reference,
		t.recipient_wallet_id, t.metadata, t.created_at, t.updated_at, rw.wallet_number
		FROM transactions t
		LEFT JOIN wallets rw ON rw.id = t.recipient_wallet_id
		WHERE t.wallet_id = $1 ORDER BY t.created_at DESC`

	rows, err := r.pool.Query(ctx, query, walletID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var entries []ports.LedgerEntry
	for rows.Next() {
		e := ports.LedgerEntry{}
		err := rows.Scan(
			&e.ID, &e.WalletID, &e.Type, &e.Amount, &e.Status,
			&e.Reference, &e.RecipientWalletID, &e.Metadata,
			&e.CreatedAt, &e.UpdatedAt, &e.RecipientWalletNumber,
		)
		if err != nil {
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction rows: %w", err)
	}
	return entries, nil
}
