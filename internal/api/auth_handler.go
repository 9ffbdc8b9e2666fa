package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labelwise/labelwise-api/internal/api/shared"
	"github.com/labelwise/labelwise-api/internal/platform/logger"
	"github.com/labelwise/labelwise-api/internal/service"
	"github.com/labelwise/labelwise-api/internal/service/auth"
)

// AuthHandler handles annotator registration and login requests.
type AuthHandler struct {
	annotatorService service.AnnotatorService
	logger           *slog.Logger
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(annotatorService service.AnnotatorService, logger *slog.Logger) *AuthHandler {
	if annotatorService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("annotatorService cannot be nil for AuthHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for AuthHandler")
	}

	return &AuthHandler{
		annotatorService: annotatorService,
		logger:           logger.With(slog.String("component", "auth_handler")),
	}
}

// Register handles POST /auth/register requests.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req RegisterRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	annotator, token, err := h.annotatorService.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		status := MapErrorToStatusCode(err)
		shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err), err)
		return
	}

	log.Info("annotator registered",
		slog.Int64("annotator_id", annotator.ID))

	shared.RespondWithJSON(w, r, http.StatusCreated, AuthResponse{
		AnnotatorID: annotator.ID,
		AccessToken: token,
	})
}

// Login handles POST /auth/login requests.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req LoginRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	annotator, token, err := h.annotatorService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		// Invalid credentials go out without the detailed error log to keep
		// failed login noise out of the error logs.
		if errors.Is(err, auth.ErrInvalidCredentials) {
			shared.RespondWithError(w, r, http.StatusUnauthorized, GetSafeErrorMessage(err))
			return
		}
		status := MapErrorToStatusCode(err)
		shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("annotator logged in",
		slog.Int64("annotator_id", annotator.ID))

	shared.RespondWithJSON(w, r, http.StatusOK, AuthResponse{
		AnnotatorID: annotator.ID,
		AccessToken: token,
	})
}
