package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is the principal identity behind a wallet. Users are provisioned on
// first successful external login and own exactly one wallet.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	GoogleID  string    `json:"-"` // External identity id, never exposed
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
