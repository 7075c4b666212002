package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBcryptHashService_HashAndVerify(t *testing.T) {
	svc := NewBcryptHashService()

	secret := "sk_live_" + strings.Repeat("a", 64)
	hash, err := svc.Hash(secret)
	require.NoError(t, err)
	assert.NotEqual(t, secret, hash)
	assert.True(t, strings.HasPrefix(hash, "$2a$"))

	assert.True(t, svc.Verify(secret, hash))
	assert.False(t, svc.Verify("sk_live_"+strings.Repeat("b", 64), hash))
}

func TestBcryptHashService_Verify_MalformedHash(t *testing.T) {
	svc := NewBcryptHashService()
	assert.False(t, svc.Verify("anything", "not-a-bcrypt-hash"))
}

func TestBcryptHashService_DistinctHashes(t *testing.T) {
	svc := NewBcryptHashService()

	h1, err := svc.Hash("same-secret")
	require.NoError(t, err)
	h2, err := svc.Hash("same-secret")
	require.NoError(t, err)

	// Each hash carries its own salt.
	assert.NotEqual(t, h1, h2)
	assert.True(t, svc.Verify("same-secret", h1))
	assert.True(t, svc.Verify("same-secret", h2))
}
