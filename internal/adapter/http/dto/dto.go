package dto

import (
	"github.com/shopspring/decimal"
)

// GoogleLoginRequest is the request body for Google sign-in.
type GoogleLoginRequest struct {
	IDToken string `json:"id_token" binding:"required"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt int64        `json:"expires_at"` // Unix timestamp
	User      UserResponse `json:"user"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// DepositRequest is the request body for initiating a deposit.
type DepositRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// DepositResponse carries the provider checkout details.
type DepositResponse struct {
	Reference        string `json:"reference"`
	AuthorizationURL string `json:"authorization_url"`
}

// DepositStatusResponse is the response for a deposit status query.
type DepositStatusResponse struct {
	Reference string          `json:"reference"`
	Status    string          `json:"status"`
	Amount    decimal.Decimal `json:"amount"`
}

// TransferRequest is the request body for a wallet-to-wallet transfer.
type TransferRequest struct {
	WalletNumber string          `json:"wallet_number" binding:"required,wallet_number"`
	Amount       decimal.Decimal `json:"amount" binding:"required"`
}

// WalletResponse is the response for wallet info queries.
type WalletResponse struct {
	WalletNumber string          `json:"wallet_number"`
	Balance      decimal.Decimal `json:"balance"`
	CreatedAt    string          `json:"created_at"`
}

// BalanceResponse is the response for balance queries.
type BalanceResponse struct {
	Balance decimal.Decimal `json:"balance"`
}

// TransactionResponse is the public view of a ledger entry.
type TransactionResponse struct {
	ID                    string          `json:"id"`
	Type                  string          `json:"type"`
	Status                string          `json:"status"`
	Amount                decimal.Decimal `json:"amount"`
	Reference             *string         `json:"reference,omitempty"`
	RecipientWalletNumber *string         `json:"recipient_wallet_number,omitempty"`
	Metadata              map[string]any  `json:"metadata,omitempty"`
	CreatedAt             string          `json:"created_at"`
}

// CreateKeyRequest is the request body for creating an API key.
type CreateKeyRequest struct {
	Name        string   `json:"name" binding:"required,min=1,max=100"`
	Permissions []string `json:"permissions" binding:"required,min=1,dive,oneof=deposit transfer read"`
	Expiry      string   `json:"expiry" binding:"required,oneof=1H 1D 1M 1Y"`
}

// RolloverKeyRequest is the request body for rolling an expiring key.
// Exactly one of Key or KeyID identifies the key being replaced.
type RolloverKeyRequest struct {
	Key    string `json:"key,omitempty"`
	KeyID  string `json:"key_id,omitempty" binding:"omitempty,uuid"`
	Expiry string `json:"expiry" binding:"required,oneof=1H 1D 1M 1Y"`
}

// CreateKeyResponse returns the plaintext key exactly once.
type CreateKeyResponse struct {
	Key       string `json:"key"`
	ExpiresAt int64  `json:"expires_at"`
}

// KeyResponse is the public view of an API key. The secret is never included.
type KeyResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
	Active      bool     `json:"active"`
	ExpiresAt   int64    `json:"expires_at"`
	CreatedAt   string   `json:"created_at"`
}
