package service

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt encodes the cost into each hash, so stored hashes survive a
// cost change.
const bcryptCost = 10

// BcryptHashService implements ports.HashService using bcrypt.
type BcryptHashService struct{}

// NewBcryptHashService creates a new bcrypt hash service.
func NewBcryptHashService() *BcryptHashService {
	return &BcryptHashService{}
}

// Hash generates a bcrypt hash of the secret.
func (s *BcryptHashService) Hash(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("generating hash: %w", err)
	}
	return string(hash), nil
}

// Verify checks if a secret matches the given bcrypt hash. Malformed
// hashes verify as false.
func (s *BcryptHashService) Verify(secret string, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}
