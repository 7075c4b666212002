package ports

import (
	"context"
	"time"

	"custodial-wallet/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// HashService handles one-way hashing of API-key secrets.
type HashService interface {
	Hash(secret string) (string, error)
	// Verify compares a presented secret against a stored hash in constant time.
	Verify(secret string, hash string) bool
}

// SignatureVerifier checks webhook authenticity: HMAC-SHA512 over the exact
// received payload bytes, hex-compared against the signature header.
type SignatureVerifier interface {
	Verify(payload []byte, signature string) bool
}

// TokenService handles session JWT operations for browser principals.
type TokenService interface {
	Generate(userID uuid.UUID, email string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed session token claims.
type TokenClaims struct {
	UserID uuid.UUID
	Email  string
}

// ExternalIdentity is a verified identity from the external login provider.
type ExternalIdentity struct {
	GoogleID string
	Email    string
	Name     string
}

// IdentityVerifier validates an external ID token and resolves the identity
// behind it. Implemented by the Google tokeninfo adapter.
type IdentityVerifier interface {
	Verify(ctx context.Context, idToken string) (*ExternalIdentity, error)
}

// InitializeRequest is the outbound payment-initialization call input.
// AmountMinor is in the provider's minor-unit convention (amount x 100).
type InitializeRequest struct {
	Email       string
	AmountMinor int64
	Reference   string
	CallbackURL string
}

// InitializeResponse holds the provider's hosted-checkout handle.
type InitializeResponse struct {
	AuthorizationURL string
	AccessCode       string
	Reference        string
}

// PaymentProvider initializes hosted checkouts with the external payment
// provider.
type PaymentProvider interface {
	InitializeTransaction(ctx context.Context, req InitializeRequest) (*InitializeResponse, error)
}

// --- Service Ports (Business Logic) ---

// CreateKeyRequest holds validated input for API-key creation.
type CreateKeyRequest struct {
	Name        string
	Permissions []domain.Permission
	Expiry      domain.KeyExpiry
}

// RolloverKeyRequest selects the key to roll over by raw secret or by id.
// When both are present the secret wins.
type RolloverKeyRequest struct {
	RawKey       string
	ExpiredKeyID *uuid.UUID
	Expiry       domain.KeyExpiry
}

// CreateKeyResponse carries the raw secret, shown exactly once.
type CreateKeyResponse struct {
	Key       string
	ExpiresAt time.Time
}

// KeyValidation is the outcome of validating a presented raw key.
type KeyValidation struct {
	Valid  bool
	UserID uuid.UUID
}

// ApiKeyService defines the API-key lifecycle and the credential validation
// path used by the request authorizer.
type ApiKeyService interface {
	CreateKey(ctx context.Context, userID uuid.UUID, req CreateKeyRequest) (*CreateKeyResponse, error)
	RolloverKey(ctx context.Context, userID uuid.UUID, req RolloverKeyRequest) (*CreateKeyResponse, error)
	// ValidateKey scans active, unexpired keys for a hash match. An empty
	// requiredPermission skips the permission check.
	ValidateKey(ctx context.Context, rawKey string, requiredPermission domain.Permission) (*KeyValidation, error)
	ListKeys(ctx context.Context, userID uuid.UUID) ([]domain.ApiKey, error)
}

// LoginResult is the session issued after external-identity verification.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// AuthService provisions users on first external login and issues sessions.
type AuthService interface {
	LoginWithGoogle(ctx context.Context, idToken string) (*LoginResult, error)
}

// DepositIntent is the result of initiating a deposit.
type DepositIntent struct {
	Reference        string
	AuthorizationURL string
}

// DepositStatus is the read-only deposit projection; polling it never
// triggers crediting.
type DepositStatus struct {
	Reference string
	Status    domain.TransactionStatus
	Amount    decimal.Decimal
}

// WalletInfo is the read-only wallet projection.
type WalletInfo struct {
	WalletNumber string
	Balance      decimal.Decimal
	CreatedAt    time.Time
}

// WalletService defines the ledger transaction engine: deposit lifecycle,
// webhook crediting, transfers, and read projections.
type WalletService interface {
	InitiateDeposit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*DepositIntent, error)
	// HandleProviderWebhook verifies authenticity and credits the matching
	// pending deposit exactly once. Unknown references and non-pending
	// transactions are acknowledged without side effect.
	HandleProviderWebhook(ctx context.Context, payload []byte, signature string) error
	GetDepositStatus(ctx context.Context, reference string) (*DepositStatus, error)
	Transfer(ctx context.Context, senderUserID uuid.UUID, recipientWalletNumber string, amount decimal.Decimal) error
	GetWalletInfo(ctx context.Context, userID uuid.UUID) (*WalletInfo, error)
	GetBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error)
	ListTransactions(ctx context.Context, userID uuid.UUID) ([]LedgerEntry, error)
}
