package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labelwise/labelwise-api/internal/service/auth"
)

// mockJWTService implements auth.JWTService with function fields.
type mockJWTService struct {
	generateTokenFn func(ctx context.Context, annotatorID int64) (string, error)
	validateTokenFn func(ctx context.Context, token string) (*auth.Claims, error)
}

var _ auth.JWTService = (*mockJWTService)(nil)

func (m *mockJWTService) GenerateToken(ctx context.Context, annotatorID int64) (string, error) {
	if m.generateTokenFn != nil {
		return m.generateTokenFn(ctx, annotatorID)
	}
	return "test-token", nil
}

func (m *mockJWTService) ValidateToken(ctx context.Context, token string) (*auth.Claims, error) {
	return m.validateTokenFn(ctx, token)
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	okValidator := func(ctx context.Context, token string) (*auth.Claims, error) {
		if token == "valid-token" {
			return &auth.Claims{AnnotatorID: 7}, nil
		}
		return nil, auth.ErrInvalidToken
	}

	tests := []struct {
		name            string
		authHeader      string
		validateFn      func(ctx context.Context, token string) (*auth.Claims, error)
		wantStatus      int
		wantAnnotatorID int64
	}{
		{
			name:            "valid bearer token",
			authHeader:      "Bearer valid-token",
			validateFn:      okValidator,
			wantStatus:      http.StatusOK,
			wantAnnotatorID: 7,
		},
		{
			name:       "missing header",
			validateFn: okValidator,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong scheme",
			authHeader: "Basic dXNlcjpwYXNz",
			validateFn: okValidator,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "invalid token",
			authHeader: "Bearer garbage",
			validateFn: okValidator,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "expired token",
			authHeader: "Bearer expired",
			validateFn: func(ctx context.Context, token string) (*auth.Claims, error) {
				return nil, auth.ErrExpiredToken
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "validation infrastructure failure",
			authHeader: "Bearer valid-token",
			validateFn: func(ctx context.Context, token string) (*auth.Claims, error) {
				return nil, errors.New("key store unreachable")
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			middleware := NewAuthMiddleware(&mockJWTService{validateTokenFn: tt.validateFn})

			var gotAnnotatorID int64
			var nextCalled bool
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				id, ok := GetAnnotatorID(r)
				require.True(t, ok)
				gotAnnotatorID = id
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/projects/1/review", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			recorder := httptest.NewRecorder()

			middleware.Authenticate(next).ServeHTTP(recorder, req)

			assert.Equal(t, tt.wantStatus, recorder.Code)

			if tt.wantStatus == http.StatusOK {
				assert.True(t, nextCalled)
				assert.Equal(t, tt.wantAnnotatorID, gotAnnotatorID)
			} else {
				assert.False(t, nextCalled)
			}
		})
	}
}

func TestGetAnnotatorIDMissing(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := GetAnnotatorID(req)
	assert.False(t, ok)
}
