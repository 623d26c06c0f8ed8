package utils

import (
	"errors"
	"net/http"
)

type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"
	KindNotFound     ErrorKind = "not_found"
	KindUnauthorized ErrorKind = "unauthorized"
	KindAccessDenied ErrorKind = "access_denied"
	KindConflict     ErrorKind = "conflict"
	KindInternal     ErrorKind = "internal"
)

// AppError is an error that knows which HTTP status it maps to.
type AppError struct {
	Kind    ErrorKind
	Status  int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func ValidationError(msg string) *AppError {
	return &AppError{Kind: KindValidation, Status: http.StatusBadRequest, Message: msg}
}

func NotFoundError(msg string) *AppError {
	return &AppError{Kind: KindNotFound, Status: http.StatusNotFound, Message: msg}
}

func UnauthorizedError(msg string) *AppError {
	return &AppError{Kind: KindUnauthorized, Status: http.StatusUnauthorized, Message: msg}
}

func AccessDeniedError(msg string) *AppError {
	return &AppError{Kind: KindAccessDenied, Status: http.StatusForbidden, Message: msg}
}

// ConflictError is reported as 400 to stay compatible with existing clients.
func ConflictError(msg string) *AppError {
	return &AppError{Kind: KindConflict, Status: http.StatusBadRequest, Message: msg}
}

func InternalError(msg string, err error) *AppError {
	return &AppError{Kind: KindInternal, Status: http.StatusInternalServerError, Message: msg, Err: err}
}

// IsKind reports whether err wraps an AppError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}
