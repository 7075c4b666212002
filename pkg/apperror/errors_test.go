package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	e := New("WAL_001", "Wallet not found", http.StatusNotFound)
	assert.Equal(t, "[WAL_001] Wallet not found", e.Error())

	inner := errors.New("boom")
	wrapped := Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, inner)
	assert.Equal(t, "[SYS_001] Internal server error: boom", wrapped.Error())
}

func TestAppError_Unwrap(t *testing.T) {
	inner := errors.New("pg connection refused")
	wrapped := InternalError(fmt.Errorf("query: %w", inner))
	assert.True(t, errors.Is(wrapped, inner))
}

func TestErrorConstructors_StatusMapping(t *testing.T) {
	tests := []struct {
		err    *AppError
		code   string
		status int
	}{
		{ErrUnauthenticated(), "AUTH_001", http.StatusUnauthorized},
		{ErrForbidden(), "AUTH_002", http.StatusForbidden},
		{ErrInvalidToken(), "AUTH_003", http.StatusUnauthorized},
		{ErrKeyQuotaExceeded(), "KEY_001", http.StatusBadRequest},
		{ErrKeyNotFound(), "KEY_002", http.StatusNotFound},
		{ErrKeyNotRollable(), "KEY_003", http.StatusBadRequest},
		{ErrNotFound("wallet"), "WAL_001", http.StatusNotFound},
		{ErrInvalidWalletNumber(), "WAL_002", http.StatusNotFound},
		{ErrSelfTransfer(), "WAL_003", http.StatusBadRequest},
		{ErrInsufficientFunds(), "PAY_001", http.StatusBadRequest},
		{ErrPaymentInit(errors.New("timeout")), "PAY_002", http.StatusBadGateway},
		{ErrInvalidSignature(), "PAY_003", http.StatusBadRequest},
		{ErrRateLimitExceeded(), "RATE_001", http.StatusTooManyRequests},
		{Validation("amount must be positive"), "VAL_001", http.StatusBadRequest},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.code, tc.err.Code)
		assert.Equal(t, tc.status, tc.err.HTTPStatus, "code %s", tc.code)
	}
}

func TestErrNotFound_Message(t *testing.T) {
	assert.Equal(t, "transaction not found", ErrNotFound("transaction").Message)
}
