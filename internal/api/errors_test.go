package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/labelwise/labelwise-api/internal/domain"
	"github.com/labelwise/labelwise-api/internal/service"
	"github.com/labelwise/labelwise-api/internal/service/auth"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil error", err: nil, want: http.StatusInternalServerError},
		{name: "invalid token", err: auth.ErrInvalidToken, want: http.StatusUnauthorized},
		{name: "expired token", err: auth.ErrExpiredToken, want: http.StatusUnauthorized},
		{name: "invalid credentials", err: auth.ErrInvalidCredentials, want: http.StatusUnauthorized},
		{name: "project not found", err: service.ErrProjectNotFound, want: http.StatusNotFound},
		{name: "task not found", err: service.ErrTaskNotFound, want: http.StatusNotFound},
		{name: "email taken", err: service.ErrEmailTaken, want: http.StatusConflict},
		{name: "wrong task state", err: service.ErrWrongTaskState, want: http.StatusConflict},
		{name: "invalid task type", err: domain.ErrInvalidTaskType, want: http.StatusBadRequest},
		{name: "empty content", err: domain.ErrEmptyContent, want: http.StatusBadRequest},
		{name: "unknown error", err: errors.New("boom"), want: http.StatusInternalServerError},
		{
			name: "wrapped sentinel",
			err:  fmt.Errorf("submit review: %w", service.ErrWrongTaskState),
			want: http.StatusConflict,
		},
		{
			name: "sentinel inside service error",
			err: &service.ServiceError{
				Operation: "submit_feedback",
				Message:   "task lookup failed",
				Err:       service.ErrTaskNotFound,
			},
			want: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapErrorToStatusCode(tt.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil error", err: nil, want: "An unexpected error occurred"},
		{name: "invalid credentials", err: auth.ErrInvalidCredentials, want: "Invalid email or password"},
		{name: "task not found", err: service.ErrTaskNotFound, want: "Task not found"},
		{name: "wrong task state", err: service.ErrWrongTaskState, want: "Task is not in the required state for this operation"},
		{
			name: "internal details stay out of the message",
			err:  errors.New("pq: connection refused host=10.0.0.3"),
			want: "An unexpected error occurred",
		},
		{
			name: "service error names the operation only",
			err: &service.ServiceError{
				Operation: "submit_review",
				Message:   "tx begin failed",
				Err:       errors.New("pq: connection refused"),
			},
			want: "Failed to submit review",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetSafeErrorMessage(tt.err))
		})
	}
}

func TestSanitizeValidationError(t *testing.T) {
	t.Parallel()

	err := errors.New(
		"Key: 'LoginRequest.Email' Error:Field validation for 'Email' failed on the 'required' tag",
	)
	assert.Equal(t, "Invalid Email: required field", SanitizeValidationError(err))

	assert.Equal(t, "Validation error", SanitizeValidationError(errors.New("boom")))
}
