package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Authentication & Authorization (AUTH) ----

func ErrUnauthenticated() *AppError {
	return New("AUTH_001", "No authentication provided", http.StatusUnauthorized)
}

func ErrForbidden() *AppError {
	return New("AUTH_002", "Invalid or insufficient API key", http.StatusForbidden)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_003", "Invalid or expired token", http.StatusUnauthorized)
}

// ---- API Keys (KEY) ----

func ErrKeyQuotaExceeded() *AppError {
	return New("KEY_001", fmt.Sprintf("Maximum %d active API keys allowed per user", 5), http.StatusBadRequest)
}

func ErrKeyNotFound() *AppError {
	return New("KEY_002", "API key not found", http.StatusNotFound)
}

func ErrKeyNotRollable() *AppError {
	return New("KEY_003", "API key must be expired or expiring within 7 days to rollover", http.StatusBadRequest)
}

// ---- Wallet & Ledger (WAL) ----

func ErrNotFound(entity string) *AppError {
	return New("WAL_001", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

func ErrInvalidWalletNumber() *AppError {
	return New("WAL_002", "Invalid wallet number", http.StatusNotFound)
}

func ErrSelfTransfer() *AppError {
	return New("WAL_003", "Cannot transfer to yourself", http.StatusBadRequest)
}

// ---- Payments (PAY) ----

func ErrInsufficientFunds() *AppError {
	return New("PAY_001", "Insufficient balance", http.StatusBadRequest)
}

func ErrPaymentInit(err error) *AppError {
	return Wrap("PAY_002", "Failed to initialize payment", http.StatusBadGateway, err)
}

func ErrInvalidSignature() *AppError {
	return New("PAY_003", "Invalid webhook signature", http.StatusBadRequest)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a VAL_001 invalid-request error.
func Validation(message string) *AppError {
	return New("VAL_001", message, http.StatusBadRequest)
}
