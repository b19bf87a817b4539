package http

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes shared by handlers and clients.
const (
	CodeBadRequest       = "ERR_BAD_REQUEST"
	CodeNotFound         = "ERR_NOT_FOUND"
	CodePayloadTooLarge  = "ERR_PAYLOAD_TOO_LARGE"
	CodeTooManyRequests  = "ERR_TOO_MANY_REQUESTS"
	CodeInternal         = "ERR_INTERNAL"
	CodeRequired         = "ERR_REQUIRED"
	CodeInvalidParameter = "ERR_INVALID_PARAMETER"
	CodeDomainAssumption = "ERR_DOMAIN_ASSUMPTION"
	CodeInvalidTable     = "ERR_INVALID_TABLE"
	CodeEmptyBatch       = "ERR_EMPTY_BATCH"
	CodeUnexpected       = "ERR_HTTP"
	CodeUnknown          = "ERR_UNKNOWN"
)

// AppError is an error answered to clients with its HTTP status.
type AppError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Field   string                 `json:"field,omitempty"`
	Params  map[string]interface{} `json:"params,omitempty"`
	Status  int                    `json:"-"`
	Err     error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// Is matches another *AppError by code, so errors.Is(err, &AppError{Code: c})
// works on errors decoded by Client.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code != "" && t.Code == e.Code
}

// NewAppError creates a new application error.
func NewAppError(code, field, message string, status int) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Field:   field,
		Status:  status,
	}
}

// WithParam sets a single error param.
func (e *AppError) WithParam(key string, value interface{}) *AppError {
	if e.Params == nil {
		e.Params = make(map[string]interface{})
	}
	e.Params[key] = value
	return e
}

// WithError wraps an underlying error.
func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

// StatusOf returns the HTTP status carried by err, or 500.
func StatusOf(err error) int {
	var ae *AppError
	if errors.As(err, &ae) && ae.Status != 0 {
		return ae.Status
	}
	return http.StatusInternalServerError
}

func NotFoundError(message string) *AppError {
	return NewAppError(CodeNotFound, "", message, http.StatusNotFound)
}

func BadRequestError(message string) *AppError {
	return NewAppError(CodeBadRequest, "", message, http.StatusBadRequest)
}

func PayloadTooLargeError(message string) *AppError {
	return NewAppError(CodePayloadTooLarge, "", message, http.StatusRequestEntityTooLarge)
}

func TooManyRequestsError(message string) *AppError {
	return NewAppError(CodeTooManyRequests, "", message, http.StatusTooManyRequests)
}

func InternalError(message string) *AppError {
	return NewAppError(CodeInternal, "", message, http.StatusInternalServerError)
}
