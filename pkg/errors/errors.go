package errors

import (
	"errors"
	"fmt"
	"net/http"
)

type AppError struct {
	Code    string
	Message string
	Status  int
	Err     error
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code string, message string, status int, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

func NotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s not found", resource),
		Status:  http.StatusNotFound,
		Err:     err,
	}
}

func BadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    "BAD_REQUEST",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     err,
	}
}

func Internal(message string, err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: message,
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

func TooManyRequests(message string, waitTime interface{}) *AppError {
	return &AppError{
		Code:    "TOO_MANY_REQUESTS",
		Message: message,
		Status:  http.StatusTooManyRequests,
		Err:     nil,
	}
}

// Directory roster load failed; callers degrade to whatever subset loaded.
func Directory(message string, err error) *AppError {
	return &AppError{
		Code:    "DIRECTORY_ERROR",
		Message: message,
		Status:  http.StatusBadGateway,
		Err:     err,
	}
}

// FetchNetwork covers transport/HTTP failures against a message store.
// Retryable on the next cycle.
func FetchNetwork(message string, err error) *AppError {
	return &AppError{
		Code:    "FETCH_NETWORK",
		Message: message,
		Status:  http.StatusBadGateway,
		Err:     err,
	}
}

// FetchDecode covers malformed store payloads. Not retryable without a
// backend fix, so callers should not loop on it.
func FetchDecode(message string, err error) *AppError {
	return &AppError{
		Code:    "FETCH_DECODE",
		Message: message,
		Status:  http.StatusBadGateway,
		Err:     err,
	}
}

func Send(message string, err error) *AppError {
	return &AppError{
		Code:    "SEND_ERROR",
		Message: message,
		Status:  http.StatusBadGateway,
		Err:     err,
	}
}

// GroupAmbiguous should be unreachable under exact-set matching; guarded
// defensively in the resolver.
func GroupAmbiguous(message string) *AppError {
	return &AppError{
		Code:    "GROUP_RESOLUTION_AMBIGUOUS",
		Message: message,
		Status:  http.StatusConflict,
		Err:     nil,
	}
}

func Is(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
