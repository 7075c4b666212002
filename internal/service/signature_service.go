package service

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
)

// HMACSignatureVerifier implements ports.SignatureVerifier using HMAC-SHA512
// over the raw request body, which is how Paystack signs webhook deliveries.
type HMACSignatureVerifier struct {
	secret []byte
}

// NewHMACSignatureVerifier creates a verifier keyed with the provider secret.
func NewHMACSignatureVerifier(secret string) *HMACSignatureVerifier {
	return &HMACSignatureVerifier{secret: []byte(secret)}
}

// Verify checks if signature matches HMAC-SHA512(secret, payload).
// Uses constant-time comparison to prevent timing attacks.
func (v *HMACSignatureVerifier) Verify(payload []byte, signature string) bool {
	mac := hmac.New(sha512.New, v.secret)
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
