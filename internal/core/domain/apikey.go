package domain

import (
	"time"

	"github.com/google/uuid"
)

// Permission is a capability granted to an API key.
type Permission string

const (
	PermissionDeposit  Permission = "deposit"
	PermissionTransfer Permission = "transfer"
	PermissionRead     Permission = "read"
)

// ValidPermission reports whether p is a known permission.
func ValidPermission(p Permission) bool {
	switch p {
	case PermissionDeposit, PermissionTransfer, PermissionRead:
		return true
	}
	return false
}

// KeyExpiry is one of the fixed key lifetimes selectable at creation.
type KeyExpiry string

const (
	KeyExpiry1Hour  KeyExpiry = "1H"
	KeyExpiry1Day   KeyExpiry = "1D"
	KeyExpiry1Month KeyExpiry = "1M"
	KeyExpiry1Year  KeyExpiry = "1Y"
)

// Duration maps the expiry choice to its fixed duration. The second return
// is false for an unknown choice.
func (e KeyExpiry) Duration() (time.Duration, bool) {
	switch e {
	case KeyExpiry1Hour:
		return time.Hour, true
	case KeyExpiry1Day:
		return 24 * time.Hour, true
	case KeyExpiry1Month:
		return 30 * 24 * time.Hour, true
	case KeyExpiry1Year:
		return 365 * 24 * time.Hour, true
	}
	return 0, false
}

// MaxActiveKeysPerUser caps simultaneously active, unexpired keys per user.
const MaxActiveKeysPerUser = 5

// RolloverWindow is how close to expiry a key must be before it may be
// rolled over.
const RolloverWindow = 7 * 24 * time.Hour

// ApiKey is a stored API credential. Only a one-way hash of the raw secret
// is persisted; the raw secret is shown exactly once at creation.
type ApiKey struct {
	ID          uuid.UUID    `json:"id"`
	UserID      uuid.UUID    `json:"user_id"`
	Name        string       `json:"name"`
	KeyHash     string       `json:"-"`
	Permissions []Permission `json:"permissions"`
	ExpiresAt   time.Time    `json:"expires_at"`
	IsActive    bool         `json:"is_active"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// IsUsable reports whether the key is active and unexpired at t.
func (k *ApiKey) IsUsable(t time.Time) bool {
	return k.IsActive && k.ExpiresAt.After(t)
}

// HasPermission reports whether the key grants p.
func (k *ApiKey) HasPermission(p Permission) bool {
	for _, granted := range k.Permissions {
		if granted == p {
			return true
		}
	}
	return false
}
