package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/labelwise/labelwise-api/internal/api/middleware"
	"github.com/labelwise/labelwise-api/internal/api/shared"
	"github.com/labelwise/labelwise-api/internal/domain"
)

// getPathID extracts a positive int64 identifier from the URL path parameters.
//
// Returns:
//   - (id, nil): The parsed identifier if valid
//   - (0, error): Zero and an appropriate error if the parameter is missing or invalid
func getPathID(r *http.Request, paramName string) (int64, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return 0, domain.ErrInvalidID
	}

	id, err := strconv.ParseInt(pathParam, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidID
	}

	return id, nil
}

// getQueryLimit reads an optional positive "limit" query parameter, falling
// back to defaultLimit when absent or invalid.
func getQueryLimit(r *http.Request, defaultLimit int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultLimit
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return defaultLimit
	}
	return limit
}

// annotatorIDOrUnauthorized extracts the authenticated annotator ID placed in
// the context by the auth middleware, writing a 401 response when absent.
func annotatorIDOrUnauthorized(w http.ResponseWriter, r *http.Request) (int64, bool) {
	annotatorID, ok := middleware.GetAnnotatorID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Annotator ID not found or invalid")
		return 0, false
	}
	return annotatorID, true
}
