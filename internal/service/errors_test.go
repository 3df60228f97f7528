package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"nil", nil, ""},
		{"input", &InputError{Field: "prompt", Message: "must not be empty"}, CodeInvalidInput},
		{"quota check", &QuotaCheckError{Err: errors.New("db down")}, CodeQuotaCheckFailed},
		{"transport", &TransportError{Err: errors.New("connection refused")}, CodeUpstreamUnavailable},
		{"attempt timeout", &TransportError{Err: context.DeadlineExceeded}, CodeUpstreamUnavailable},
		{"upstream", &UpstreamError{StatusCode: 503}, CodeUpstreamUnavailable},
		{"malformed", &MalformedOutputError{Err: errors.New("no json")}, CodeMalformedOutput},
		{"persistence", &PersistenceError{Op: "insert recipe", Err: errors.New("boom")}, CodePersistenceFailed},
		{"canceled sentinel", fmt.Errorf("%w: %w", ErrCanceled, context.Canceled), CodeCanceled},
		{"bare context", context.Canceled, CodeCanceled},
		{"not found", fmt.Errorf("failed to get recipe: %w", ErrNotFound), CodeNotFound},
		{"forbidden", ErrForbidden, CodeForbidden},
		{"favorite limit", ErrFavoriteLimit, CodeFavoriteLimit},
		{"other", errors.New("boom"), CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CodeOf(tt.err))
		})
	}
}

func TestUpstreamErrorRetryable(t *testing.T) {
	assert.True(t, (&UpstreamError{StatusCode: 429}).Retryable())
	assert.True(t, (&UpstreamError{StatusCode: 500}).Retryable())
	assert.True(t, (&UpstreamError{StatusCode: 503}).Retryable())
	assert.False(t, (&UpstreamError{StatusCode: 400}).Retryable())
	assert.False(t, (&UpstreamError{StatusCode: 401}).Retryable())
}
