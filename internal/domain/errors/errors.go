package errors

import (
	"errors"
	"net/http"
)

// Domain errors
var (
	ErrNotFound            = errors.New("resource not found")
	ErrAlreadyExists       = errors.New("resource already exists")
	ErrInvalidInput        = errors.New("invalid input")
	ErrBadRequest          = errors.New("bad request")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrTokenExpired        = errors.New("token expired")
	ErrSignatureMismatch   = errors.New("signature does not match address")
	ErrNonceInvalid        = errors.New("nonce expired, consumed or unknown")
	ErrMalformedMessage    = errors.New("malformed authentication message")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrDuplicateExternalTx = errors.New("external transaction already credited")
	ErrAlreadyGranted      = errors.New("entitlement already granted")
	ErrTxNotFound          = errors.New("transaction not found on chain")
	ErrWrongChain          = errors.New("unsupported or mismatched chain")
	ErrWrongContract       = errors.New("transaction does not target the payment contract")
	ErrAddressMismatch     = errors.New("payer address does not match account wallet")
	ErrMalformedEvent      = errors.New("purchase event missing or malformed")
)

// Error codes returned to API clients
const (
	CodeNotFound            = "NOT_FOUND"
	CodeConflict            = "CONFLICT"
	CodeBadRequest          = "BAD_REQUEST"
	CodeInvalidInput        = "INVALID_INPUT"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeInvalidCredentials  = "INVALID_CREDENTIALS"
	CodeInternalError       = "INTERNAL_ERROR"
	CodeSignatureMismatch   = "SIGNATURE_MISMATCH"
	CodeNonceInvalid        = "NONCE_INVALID"
	CodeMalformedMessage    = "MALFORMED_MESSAGE"
	CodeInsufficientCredits = "insufficient_credits"
	CodeTxNotFound          = "TX_NOT_FOUND"
	CodeWrongChain          = "WRONG_CHAIN"
	CodeWrongContract       = "WRONG_CONTRACT"
	CodeAddressMismatch     = "ADDRESS_MISMATCH"
	CodeMalformedEvent      = "MALFORMED_EVENT"
)

// AppError represents an application error with HTTP status and client code.
// Retryable marks outcomes where the correct client behavior is to ask again
// shortly (block confirmation is eventually consistent).
type AppError struct {
	Status    int    `json:"-"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable,omitempty"`
	Err       error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new app error
func NewAppError(status int, code, message string, err error) *AppError {
	return &AppError{
		Status:  status,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error constructors
func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, CodeNotFound, message, ErrNotFound)
}

func Conflict(message string) *AppError {
	return NewAppError(http.StatusConflict, CodeConflict, message, ErrAlreadyExists)
}

func BadRequest(message string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeInvalidInput, message, ErrInvalidInput)
}

func Unauthorized(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, CodeUnauthorized, message, ErrUnauthorized)
}

func Forbidden(message string) *AppError {
	return NewAppError(http.StatusForbidden, CodeForbidden, message, ErrForbidden)
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternalError, "internal server error", err)
}

func InternalServerError(message string) *AppError {
	return &AppError{
		Status:  http.StatusInternalServerError,
		Code:    CodeInternalError,
		Message: message,
	}
}

// TxNotFound builds the retryable verification error for transactions the
// chain has not surfaced yet.
func TxNotFound(message string) *AppError {
	return &AppError{
		Status:    http.StatusNotFound,
		Code:      CodeTxNotFound,
		Message:   message,
		Retryable: true,
		Err:       ErrTxNotFound,
	}
}

// InsufficientCreditsError carries the amounts the client needs to render a
// top-up prompt. It renders as 409 with the required and available balances.
type InsufficientCreditsError struct {
	Required  int64 `json:"required"`
	Available int64 `json:"available"`
}

func (e *InsufficientCreditsError) Error() string {
	return ErrInsufficientCredits.Error()
}

func (e *InsufficientCreditsError) Unwrap() error {
	return ErrInsufficientCredits
}

func InsufficientCredits(required, available int64) *InsufficientCreditsError {
	return &InsufficientCreditsError{Required: required, Available: available}
}

// NewError creates a new error with a custom message wrapping an existing error
func NewError(message string, err error) error {
	return &AppError{
		Status:  http.StatusBadRequest,
		Code:    CodeBadRequest,
		Message: message,
		Err:     err,
	}
}
