package service

import (
	"context"
	"errors"
	"fmt"
)

// ErrorCode is the machine-readable failure class returned to clients
type ErrorCode string

const (
	CodeInvalidInput        ErrorCode = "INVALID_INPUT"
	CodeQuotaExceeded       ErrorCode = "QUOTA_EXCEEDED"
	CodeQuotaCheckFailed    ErrorCode = "QUOTA_CHECK_FAILED"
	CodeUpstreamUnavailable ErrorCode = "UPSTREAM_UNAVAILABLE"
	CodeMalformedOutput     ErrorCode = "MALFORMED_OUTPUT"
	CodePersistenceFailed   ErrorCode = "PERSISTENCE_FAILED"
	CodeCanceled            ErrorCode = "CANCELED"
	CodeNotFound            ErrorCode = "NOT_FOUND"
	CodeForbidden           ErrorCode = "FORBIDDEN"
	CodeFavoriteLimit       ErrorCode = "FAVORITE_LIMIT"
	CodeInternal            ErrorCode = "INTERNAL"
)

// User-facing messages
const (
	MessageQuotaExceeded    = "Quota de génération gratuit dépassé. Passez à Pro pour des générations illimitées."
	MessageGenerationFailed = "Impossible de générer la recette"
)

var (
	ErrCanceled      = errors.New("generation canceled")
	ErrNotFound      = errors.New("not found")
	ErrForbidden     = errors.New("forbidden")
	ErrFavoriteLimit = errors.New("saved recipe limit reached")
)

// InputError reports a missing or invalid request field
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// QuotaCheckError means the usage ledger could not be read; it is not the same as an exceeded quota
type QuotaCheckError struct {
	Err error
}

func (e *QuotaCheckError) Error() string {
	return fmt.Sprintf("failed to check quota: %v", e.Err)
}

func (e *QuotaCheckError) Unwrap() error { return e.Err }

// TransportError is a network-level failure talking to the completion gateway
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("completion transport failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// UpstreamError is a non-success answer from the completion gateway
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("completion gateway returned an unusable response: %s", e.Body)
	}
	return fmt.Sprintf("completion gateway returned status %d: %s", e.StatusCode, e.Body)
}

// Retryable reports whether a retry could succeed
func (e *UpstreamError) Retryable() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}

// MalformedOutputError means the model text did not hold a usable recipe
type MalformedOutputError struct {
	Raw string
	Err error
}

func (e *MalformedOutputError) Error() string {
	return fmt.Sprintf("malformed model output: %v", e.Err)
}

func (e *MalformedOutputError) Unwrap() error { return e.Err }

// PersistenceError means the recipe could not be stored
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// CodeOf maps an error to its ErrorCode
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}

	var (
		inputErr     *InputError
		quotaErr     *QuotaCheckError
		transportErr *TransportError
		upstreamErr  *UpstreamError
		malformedErr *MalformedOutputError
		persistErr   *PersistenceError
	)

	switch {
	case errors.Is(err, ErrCanceled):
		return CodeCanceled
	case errors.As(err, &inputErr):
		return CodeInvalidInput
	case errors.As(err, &quotaErr):
		return CodeQuotaCheckFailed
	case errors.As(err, &transportErr), errors.As(err, &upstreamErr):
		return CodeUpstreamUnavailable
	case errors.As(err, &malformedErr):
		return CodeMalformedOutput
	case errors.As(err, &persistErr):
		return CodePersistenceFailed
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return CodeCanceled
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrForbidden):
		return CodeForbidden
	case errors.Is(err, ErrFavoriteLimit):
		return CodeFavoriteLimit
	default:
		return CodeInternal
	}
}
