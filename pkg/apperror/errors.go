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

// ---- Webhook & Signature (WHK) ----

func ErrMissingSignature() *AppError {
	return New("WHK_001", "Missing webhook signature header", http.StatusBadRequest)
}

func ErrInvalidSignature() *AppError {
	return New("WHK_002", "Invalid webhook signature", http.StatusBadRequest)
}

func ErrMalformedEvent() *AppError {
	return New("WHK_003", "Malformed webhook event body", http.StatusBadRequest)
}

// ---- Wallet & Settlement (WAL) ----

func ErrInsufficientFunds() *AppError {
	return New("WAL_001", "Insufficient funds in wallet", http.StatusBadRequest)
}

func ErrInvalidAmount() *AppError {
	return New("WAL_002", "Invalid amount", http.StatusBadRequest)
}

func ErrAmountMismatch() *AppError {
	return New("WAL_003", "Paid amount does not cover order total", http.StatusBadRequest)
}

func ErrNotFound(entity string) *AppError {
	return New("WAL_004", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

func ErrWithdrawalFailed(err error) *AppError {
	return Wrap("WAL_005", "Failed to withdraw funds", http.StatusInternalServerError, err)
}

// ---- Authentication (AUTH) ----

func ErrInvalidToken() *AppError {
	return New("AUTH_001", "Invalid or expired token", http.StatusUnauthorized)
}

// ---- Provider (PRV) ----

func ErrProviderFailure(err error) *AppError {
	return Wrap("PRV_001", "Payment provider request failed", http.StatusBadGateway, err)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a WAL_002-style validation error with a custom message.
func Validation(message string) *AppError {
	return New("WAL_002", message, http.StatusBadRequest)
}
