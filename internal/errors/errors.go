package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrInvalidPlan is returned when the requested plan is not in the catalog.
	ErrInvalidPlan = errors.New("plan not found")
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrTransactionNotFound is returned when no ledger entry matches a receipt.
	ErrTransactionNotFound = errors.New("transaction not found")
	// ErrSignatureMismatch is returned when the gateway signature does not verify.
	ErrSignatureMismatch = errors.New("invalid gateway signature")
	// ErrPaymentNotSettled is returned when the gateway does not report the order as paid.
	ErrPaymentNotSettled = errors.New("payment not settled")
	// ErrAlreadySettled is returned when a transaction was already credited.
	ErrAlreadySettled = errors.New("transaction already settled")
	// ErrGatewayUnavailable is returned when the payment gateway cannot be reached.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	// ErrInsufficientCredits is returned when the user has no credits to spend.
	ErrInsufficientCredits = errors.New("insufficient credits")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. AlreadySettled maps to 409
// so a retrying client can tell "credits already granted" from a real failure.
func MapErrorToHTTP(err error) *HTTPError {
	switch err {
	case ErrInvalidPlan:
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_PLAN")
	case ErrUserNotFound:
		return NewHTTPError(http.StatusNotFound, err.Error(), "USER_NOT_FOUND")
	case ErrTransactionNotFound:
		return NewHTTPError(http.StatusNotFound, err.Error(), "TRANSACTION_NOT_FOUND")
	case ErrSignatureMismatch:
		return NewHTTPError(http.StatusBadRequest, err.Error(), "SIGNATURE_MISMATCH")
	case ErrPaymentNotSettled:
		return NewHTTPError(http.StatusPaymentRequired, err.Error(), "PAYMENT_NOT_SETTLED")
	case ErrAlreadySettled:
		return NewHTTPError(http.StatusConflict, err.Error(), "ALREADY_SETTLED")
	case ErrGatewayUnavailable:
		return NewHTTPError(http.StatusBadGateway, err.Error(), "GATEWAY_UNAVAILABLE")
	case ErrInsufficientCredits:
		return NewHTTPError(http.StatusPaymentRequired, err.Error(), "INSUFFICIENT_CREDITS")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
