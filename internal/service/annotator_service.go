package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/labelwise/labelwise-api/internal/domain"
	"github.com/labelwise/labelwise-api/internal/service/auth"
	"github.com/labelwise/labelwise-api/internal/store"
)

// AnnotatorService provides annotator account operations.
type AnnotatorService interface {
	// Register creates an annotator account and returns it with a signed
	// access token.
	Register(ctx context.Context, name, email, password string) (*domain.Annotator, string, error)

	// Login verifies the credentials and returns the annotator with a signed
	// access token.
	Login(ctx context.Context, email, password string) (*domain.Annotator, string, error)

	// GetAnnotator retrieves an annotator by ID.
	GetAnnotator(ctx context.Context, id int64) (*domain.Annotator, error)
}

// annotatorServiceImpl implements the AnnotatorService interface
type annotatorServiceImpl struct {
	annotatorStore store.AnnotatorStore
	jwtService     auth.JWTService
	passwords      auth.PasswordVerifier
	logger         *slog.Logger
}

// NewAnnotatorService creates a new AnnotatorService.
func NewAnnotatorService(
	annotatorStore store.AnnotatorStore,
	jwtService auth.JWTService,
	passwords auth.PasswordVerifier,
	logger *slog.Logger,
) (AnnotatorService, error) {
	if annotatorStore == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "annotatorStore cannot be nil"}
	}
	if jwtService == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "jwtService cannot be nil"}
	}
	if passwords == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "passwords cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &annotatorServiceImpl{
		annotatorStore: annotatorStore,
		jwtService:     jwtService,
		passwords:      passwords,
		logger:         logger.With("component", "annotator_service"),
	}, nil
}

// Register creates an annotator account with a bcrypt password hash.
func (s *annotatorServiceImpl) Register(
	ctx context.Context,
	name, email, password string,
) (*domain.Annotator, string, error) {
	annotator, err := domain.NewAnnotator(name, email)
	if err != nil {
		return nil, "", err
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, "", &ServiceError{Operation: "register", Message: "failed to hash password", Err: err}
	}
	annotator.HashedPassword = hash

	if err := s.annotatorStore.Create(ctx, annotator); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			return nil, "", ErrEmailTaken
		}
		s.logger.Error("failed to create annotator", "error", err, "email", email)
		return nil, "", &ServiceError{Operation: "register", Message: "failed to save annotator", Err: err}
	}

	token, err := s.jwtService.GenerateToken(ctx, annotator.ID)
	if err != nil {
		return nil, "", &ServiceError{Operation: "register", Message: "failed to issue token", Err: err}
	}

	s.logger.Info("annotator registered", "annotator_id", annotator.ID)
	return annotator, token, nil
}

// Login verifies the credentials and issues an access token.
// A missing account and a wrong password produce the same error, so the
// endpoint does not leak which emails are registered.
func (s *annotatorServiceImpl) Login(
	ctx context.Context,
	email, password string,
) (*domain.Annotator, string, error) {
	annotator, err := s.annotatorStore.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrAnnotatorNotFound) {
			return nil, "", auth.ErrInvalidCredentials
		}
		return nil, "", &ServiceError{Operation: "login", Message: "failed to load annotator", Err: err}
	}

	if err := s.passwords.Compare(annotator.HashedPassword, password); err != nil {
		return nil, "", auth.ErrInvalidCredentials
	}

	token, err := s.jwtService.GenerateToken(ctx, annotator.ID)
	if err != nil {
		return nil, "", &ServiceError{Operation: "login", Message: "failed to issue token", Err: err}
	}

	return annotator, token, nil
}

// GetAnnotator retrieves an annotator by ID.
func (s *annotatorServiceImpl) GetAnnotator(ctx context.Context, id int64) (*domain.Annotator, error) {
	annotator, err := s.annotatorStore.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrAnnotatorNotFound) {
			return nil, ErrAnnotatorNotFound
		}
		return nil, &ServiceError{Operation: "get_annotator", Message: "failed to load annotator", Err: err}
	}
	return annotator, nil
}
