package domain

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType represents the kind of money movement.
type TransactionType string

const (
	TransactionTypeDeposit     TransactionType = "deposit"
	TransactionTypeTransferIn  TransactionType = "transfer_in"
	TransactionTypeTransferOut TransactionType = "transfer_out"
)

// TransactionStatus represents the lifecycle state of a transaction.
// Deposits start pending and transition exactly once to success or failed;
// transfer entries are written already successful.
type TransactionStatus string

const (
	TransactionStatusPending TransactionStatus = "pending"
	TransactionStatusSuccess TransactionStatus = "success"
	TransactionStatusFailed  TransactionStatus = "failed"
)

// Transaction is an entry in the per-wallet ledger.
type Transaction struct {
	ID                uuid.UUID         `json:"id"`
	WalletID          uuid.UUID         `json:"wallet_id"`
	Type              TransactionType   `json:"type"`
	Amount            decimal.Decimal   `json:"amount"`
	Status            TransactionStatus `json:"status"`
	Reference         *string           `json:"reference,omitempty"`
	RecipientWalletID *uuid.UUID        `json:"recipient_wallet_id,omitempty"`
	Metadata          map[string]any    `json:"metadata,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// IsTerminal returns true once the transaction reached a final state.
func (t *Transaction) IsTerminal() bool {
	return t.Status == TransactionStatusSuccess || t.Status == TransactionStatusFailed
}

// GenerateReference produces a globally unique deposit reference:
// TXN_<unix-millis>_<16 hex chars>.
func GenerateReference() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failure is unrecoverable for reference generation
		panic(fmt.Sprintf("generate reference: %v", err))
	}
	return fmt.Sprintf("TXN_%d_%s", time.Now().UnixMilli(), hex.EncodeToString(buf))
}
