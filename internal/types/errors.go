package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode is a typed string for categorizing application errors.
type ErrorCode string

// Complete error code constants. All components MUST use these constants
// instead of hardcoded strings.
const (
	// Validation: malformed construction input. Always surfaced to the
	// caller, synchronously.
	ErrCodeValidationMissingAppID       ErrorCode = "validation_missing_app_id"
	ErrCodeValidationMissingClientToken ErrorCode = "validation_missing_client_token"
	ErrCodeValidationEmptyEventName     ErrorCode = "validation_empty_event_name"
	ErrCodeValidationEmptyItems         ErrorCode = "validation_empty_items"
	ErrCodeValidationInvalidItem        ErrorCode = "validation_invalid_item"
	ErrCodeValidationNegativeValue      ErrorCode = "validation_negative_value"
	ErrCodeValidationInvalidCurrency    ErrorCode = "validation_invalid_currency"
	ErrCodeValidationEmptyScreenName    ErrorCode = "validation_empty_screen_name"
	ErrCodeValidationEmptyQuery         ErrorCode = "validation_empty_query"

	// Facade misuse: the package-level sender used before Bind.
	ErrCodeSenderNotInitialized ErrorCode = "sender_not_initialized"

	// Transport: network/HTTP failure during dispatch. Logged internally,
	// never surfaced to callers (delivery is fire-and-forget).
	ErrCodeTransportRequestFailed ErrorCode = "transport_request_failed"
	ErrCodeTransportBadStatus     ErrorCode = "transport_bad_status"
	ErrCodeTransportCircuitOpen   ErrorCode = "transport_circuit_open"

	// Resolution: platform consent/identifier query failure. Treated as
	// tracking disabled (fail-closed), never surfaced as an error.
	ErrCodeResolutionFailed ErrorCode = "resolution_failed"
)

// AppError is the standard application error type used throughout the module.
// All domain errors are expressed as AppError to enable consistent error
// categorization and error chain support.
type AppError struct {
	Code    ErrorCode      `json:"code"`
	Message string         `json:"message"`
	Err     error          `json:"-"`
	Details map[string]any `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError with the given code, message, and
// optional underlying error. This is the standard constructor for domain
// errors.
func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewAppErrorWithDetails creates a new AppError carrying structured details.
func NewAppErrorWithDetails(code ErrorCode, message string, err error, details map[string]any) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
		Details: details,
	}
}

// HasCode reports whether err is (or wraps) an AppError with the given code.
func HasCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// IsValidation reports whether err carries a validation_* error code.
func IsValidation(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && strings.HasPrefix(string(appErr.Code), "validation_")
}
