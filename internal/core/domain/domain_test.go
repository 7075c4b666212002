package domain

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTransaction_IsTerminal(t *testing.T) {
	tests := []struct {
		status   TransactionStatus
		terminal bool
	}{
		{TransactionStatusPending, false},
		{TransactionStatusSuccess, true},
		{TransactionStatusFailed, true},
	}
	for _, tc := range tests {
		tx := &Transaction{Status: tc.status}
		assert.Equal(t, tc.terminal, tx.IsTerminal(), "status %s", tc.status)
	}
}

func TestGenerateReference_Format(t *testing.T) {
	ref := GenerateReference()
	assert.Regexp(t, regexp.MustCompile(`^TXN_\d+_[0-9a-f]{16}$`), ref)

	other := GenerateReference()
	assert.NotEqual(t, ref, other)
}

func TestGenerateWalletNumber(t *testing.T) {
	num := GenerateWalletNumber()
	assert.Len(t, num, 13)
	assert.Regexp(t, regexp.MustCompile(`^\d{13}$`), num)
}

func TestGenerateWalletNumber_RandomSuffixSurvives(t *testing.T) {
	// A burst of generations lands in a handful of milliseconds; if the
	// random suffix were lost to truncation nearly all would collide.
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		seen[GenerateWalletNumber()] = struct{}{}
	}
	assert.Greater(t, len(seen), 90)
}

func TestKeyExpiry_Duration(t *testing.T) {
	tests := []struct {
		expiry KeyExpiry
		want   time.Duration
		ok     bool
	}{
		{KeyExpiry1Hour, time.Hour, true},
		{KeyExpiry1Day, 24 * time.Hour, true},
		{KeyExpiry1Month, 30 * 24 * time.Hour, true},
		{KeyExpiry1Year, 365 * 24 * time.Hour, true},
		{KeyExpiry("2W"), 0, false},
	}
	for _, tc := range tests {
		d, ok := tc.expiry.Duration()
		assert.Equal(t, tc.ok, ok, "expiry %s", tc.expiry)
		assert.Equal(t, tc.want, d, "expiry %s", tc.expiry)
	}
}

func TestApiKey_IsUsable(t *testing.T) {
	now := time.Now()
	key := &ApiKey{IsActive: true, ExpiresAt: now.Add(time.Hour)}
	assert.True(t, key.IsUsable(now))

	key.IsActive = false
	assert.False(t, key.IsUsable(now))

	key.IsActive = true
	key.ExpiresAt = now.Add(-time.Minute)
	assert.False(t, key.IsUsable(now))
}

func TestApiKey_HasPermission(t *testing.T) {
	key := &ApiKey{Permissions: []Permission{PermissionDeposit, PermissionRead}}
	assert.True(t, key.HasPermission(PermissionDeposit))
	assert.True(t, key.HasPermission(PermissionRead))
	assert.False(t, key.HasPermission(PermissionTransfer))
}

func TestValidPermission(t *testing.T) {
	assert.True(t, ValidPermission(PermissionTransfer))
	assert.False(t, ValidPermission(Permission("admin")))
}
