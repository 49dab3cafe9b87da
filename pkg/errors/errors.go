package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode classifies an AppError and selects its HTTP status.
type ErrorCode string

const (
	// Request and business errors, safe to show to the operator.
	ErrorCodeValidation       ErrorCode = "VALIDATION_ERROR"
	ErrorCodeInvalidJSON      ErrorCode = "INVALID_JSON"
	ErrorCodeMissingParameter ErrorCode = "MISSING_PARAMETER"
	ErrorCodeNotFound         ErrorCode = "NOT_FOUND"
	ErrorCodeAlreadyExists    ErrorCode = "ALREADY_EXISTS"
	ErrorCodeBusinessRule     ErrorCode = "BUSINESS_RULE_VIOLATION"
	ErrorCodeUnauthorized     ErrorCode = "UNAUTHORIZED"
	ErrorCodeForbidden        ErrorCode = "FORBIDDEN"

	// Technical errors. Their cause is logged, never rendered.
	ErrorCodeInternal  ErrorCode = "INTERNAL_ERROR"
	ErrorCodeDatabase  ErrorCode = "DATABASE_ERROR"
	ErrorCodeTimeout   ErrorCode = "TIMEOUT_ERROR"
	ErrorCodeRateLimit ErrorCode = "RATE_LIMIT_ERROR"
)

var statusByCode = map[ErrorCode]int{
	ErrorCodeValidation:       http.StatusBadRequest,
	ErrorCodeInvalidJSON:      http.StatusBadRequest,
	ErrorCodeMissingParameter: http.StatusBadRequest,
	ErrorCodeNotFound:         http.StatusNotFound,
	ErrorCodeAlreadyExists:    http.StatusConflict,
	ErrorCodeBusinessRule:     http.StatusUnprocessableEntity,
	ErrorCodeUnauthorized:     http.StatusUnauthorized,
	ErrorCodeForbidden:        http.StatusForbidden,
	ErrorCodeTimeout:          http.StatusRequestTimeout,
	ErrorCodeRateLimit:        http.StatusTooManyRequests,
}

// AppError is an error with a code, an operator-facing message and an
// optional cause that stays server side.
type AppError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// GetHTTPStatus maps the code to a status; unknown codes are 500.
func (e *AppError) GetHTTPStatus() int {
	if status, ok := statusByCode[e.Code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// WithDetail attaches a field rendered in the response's details object.
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

func newError(code ErrorCode, message string, cause error) *AppError {
	return &AppError{Code: code, Message: message, Cause: cause}
}

func ValidationError(message string) *AppError {
	return newError(ErrorCodeValidation, message, nil)
}

// NotFoundError names the missing resource: NotFoundError("Asset") reads "Asset not found".
func NotFoundError(resource string) *AppError {
	return newError(ErrorCodeNotFound, fmt.Sprintf("%s not found", resource), nil)
}

// BusinessRuleError is for a well-formed request the entity's current state forbids.
func BusinessRuleError(message string) *AppError {
	return newError(ErrorCodeBusinessRule, message, nil)
}

func ForbiddenError(message string) *AppError {
	return newError(ErrorCodeForbidden, message, nil)
}

func AlreadyExistsError(resource string) *AppError {
	return newError(ErrorCodeAlreadyExists, fmt.Sprintf("%s already exists", resource), nil)
}

// DatabaseError keeps cause for logs; message is what the operator sees.
func DatabaseError(message string, cause error) *AppError {
	return newError(ErrorCodeDatabase, message, cause)
}

// AsAppError finds the first AppError in err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err is an AppError with the given code.
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

// UnknownErrorMessage is reported when a failure carries no message.
const UnknownErrorMessage = "Unknown error"

// UserMessage returns the message suitable for showing to an operator.
// AppErrors yield their Message without code or cause; other errors yield
// their text; nil or empty errors yield UnknownErrorMessage.
func UserMessage(err error) string {
	if err == nil {
		return UnknownErrorMessage
	}
	if appErr, ok := AsAppError(err); ok {
		if appErr.Message != "" {
			return appErr.Message
		}
		return UnknownErrorMessage
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return UnknownErrorMessage
}
