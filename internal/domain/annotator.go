package domain

import (
	"errors"
	"regexp"
	"time"
)

// Common validation errors for Annotator
var (
	ErrEmptyAnnotatorName  = errors.New("annotator name cannot be empty")
	ErrEmptyAnnotatorEmail = errors.New("annotator email cannot be empty")
)

var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Annotator represents a human reviewer account. HashedPassword holds a
// bcrypt hash and is never serialized.
type Annotator struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	HashedPassword string `json:"-"`

	// Aggregate performance counters, maintained by the review flow.
	TasksCompleted int       `json:"tasks_completed"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewAnnotator creates a new Annotator with the given identity.
// The password hash is set separately by the auth layer.
func NewAnnotator(name, email string) (*Annotator, error) {
	annotator := &Annotator{
		Name:      name,
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}

	if err := annotator.Validate(); err != nil {
		return nil, err
	}

	return annotator, nil
}

// Validate checks if the Annotator has valid data.
func (a *Annotator) Validate() error {
	if a.Name == "" {
		return ErrEmptyAnnotatorName
	}

	if a.Email == "" {
		return ErrEmptyAnnotatorEmail
	}

	if !emailRegex.MatchString(a.Email) {
		return ErrInvalidEmail
	}

	return nil
}
