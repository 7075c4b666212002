package domain

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Wallet is a user's single balance-bearing account. The balance is a
// non-negative fixed-point amount (numeric(15,2)) mutated only under a
// row-level lock by the deposit crediting and transfer paths.
type Wallet struct {
	ID           uuid.UUID       `json:"id"`
	UserID       uuid.UUID       `json:"user_id"`
	WalletNumber string          `json:"wallet_number"`
	Balance      decimal.Decimal `json:"balance"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// GenerateWalletNumber produces the 13-digit public wallet identifier: the
// low nine digits of the millisecond clock followed by a four-digit random
// suffix, so two provisions in the same millisecond still differ. The unique
// constraint on wallets.wallet_number backstops the residual collision.
func GenerateWalletNumber() string {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		n = big.NewInt(0)
	}
	return fmt.Sprintf("%09d%04d", time.Now().UnixMilli()%1_000_000_000, n.Int64())
}
