package auth

import (
	"context"
	"time"
)

// JWTService defines operations for managing JWT authentication tokens
// issued to annotator accounts.
type JWTService interface {
	// GenerateToken creates a signed JWT access token for the annotator.
	// Returns the token string or an error if token generation fails.
	GenerateToken(ctx context.Context, annotatorID int64) (string, error)

	// ValidateToken validates the provided token string and extracts the claims.
	// Returns the claims if the token is valid, or an error if validation
	// fails (expired, invalid signature, etc.).
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims represents the custom claims structure for the JWT tokens.
// It extends standard JWT registered claims with application-specific fields.
type Claims struct {
	// AnnotatorID is the unique identifier of the annotator the token was issued for.
	AnnotatorID int64 `json:"aid,omitempty"`

	// Standard registered JWT claims
	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
