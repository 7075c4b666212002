package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWalletNumber_Valid(t *testing.T) {
	cases := []string{
		"1234567890123",
		"0000000000000",
		"9876543210987",
	}
	for _, tc := range cases {
		assert.True(t, walletNumberRe.MatchString(tc), "expected valid: %s", tc)
	}
}

func TestWalletNumber_Invalid(t *testing.T) {
	cases := []string{
		"123456789012",    // 12 digits
		"12345678901234",  // 14 digits
		"12345678901ab",   // letters
		"1234 56789 0123", // spaces
		"",                // empty
	}
	for _, tc := range cases {
		assert.False(t, walletNumberRe.MatchString(tc), "expected invalid: %s", tc)
	}
}

func TestSanitizeStruct_TrimsWhitespace(t *testing.T) {
	req := CreateKeyRequest{
		Name:        "  billing worker  ",
		Permissions: []string{" deposit "},
		Expiry:      " 1M ",
	}
	SanitizeStruct(&req)

	assert.Equal(t, "billing worker", req.Name)
	assert.Equal(t, []string{"deposit"}, req.Permissions)
	assert.Equal(t, "1M", req.Expiry)
}

func TestSanitizeStruct_EscapesHTML(t *testing.T) {
	req := CreateKeyRequest{Name: "key <script>alert('x')</script>"}
	SanitizeStruct(&req)

	assert.Contains(t, req.Name, "&lt;script&gt;")
	assert.NotContains(t, req.Name, "<script>")
}

func TestSanitizeStruct_NonPointerIsNoOp(t *testing.T) {
	SanitizeStruct("hello") // should not panic
}
