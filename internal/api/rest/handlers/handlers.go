// Package handlers implements the HTTP endpoints of the ProTrack API.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/CameronXie/nsa-protrack/internal/api/rest/middlewares"
	"github.com/CameronXie/nsa-protrack/internal/api/rest/response"
	"github.com/CameronXie/nsa-protrack/internal/domain"
	"github.com/CameronXie/nsa-protrack/internal/repository"
)

const (
	maxRequestBodyBytes = 1 << 20

	invalidRequestCode         = "invalid_request"
	invalidRequestBodyMessage  = "Invalid request body"
	invalidIDMessage           = "Invalid id"
	notFoundCode               = "not_found"
	conflictCode               = "conflict"
	unauthorizedCode           = "unauthorized"
	authRequiredMessage        = "Authentication required"
	internalServerErrorCode    = "internal_error"
	internalServerErrorMessage = "An internal error occurred"
)

// decodeJSON reads a JSON body into v. It writes a 400 and returns false on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		response.JSONErrorResponse(w, http.StatusBadRequest, invalidRequestCode, invalidRequestBodyMessage)
		return false
	}
	return true
}

// currentUserID returns the authenticated user's id, writing a 401 when it is absent or malformed.
func currentUserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	subject, ok := middlewares.GetUserIDFromContext(r.Context())
	if !ok {
		response.JSONErrorResponse(w, http.StatusUnauthorized, unauthorizedCode, authRequiredMessage)
		return uuid.Nil, false
	}

	id, err := uuid.Parse(subject)
	if err != nil {
		response.JSONErrorResponse(w, http.StatusUnauthorized, unauthorizedCode, authRequiredMessage)
		return uuid.Nil, false
	}

	return id, true
}

// pathID parses the {id} path value, writing a 400 when it is not a UUID.
func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		response.JSONErrorResponse(w, http.StatusBadRequest, invalidRequestCode, invalidIDMessage)
		return uuid.Nil, false
	}
	return id, true
}

// writeError maps domain and repository errors onto HTTP responses.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, msg string, err error) {
	var (
		validationErr *domain.ValidationError
		notFoundErr   *repository.NotFoundError
		conflictErr   *repository.ConflictError
	)

	switch {
	case errors.As(err, &validationErr):
		response.ValidationErrorResponse(w, validationErr.Fields)
	case errors.As(err, &notFoundErr):
		response.JSONErrorResponse(w, http.StatusNotFound, notFoundCode, fmt.Sprintf("%s not found", notFoundErr.Resource))
	case errors.As(err, &conflictErr):
		response.JSONErrorResponse(w, http.StatusConflict, conflictCode, conflictErr.Error())
	default:
		logger.ErrorContext(r.Context(), msg, "error", err)
		response.JSONErrorResponse(w, http.StatusInternalServerError, internalServerErrorCode, internalServerErrorMessage)
	}
}

func badRequest(w http.ResponseWriter, message string) {
	response.JSONErrorResponse(w, http.StatusBadRequest, invalidRequestCode, message)
}

// queryDate parses an optional YYYY-MM-DD or RFC 3339 query parameter.
func queryDate(r *http.Request, key string) (*domain.Date, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}

	d, err := domain.ParseDate(raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be a date", key)
	}
	return &d, nil
}

// queryFloat parses an optional float query parameter, returning def when absent.
func queryFloat(r *http.Request, key string, def float64) (float64, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%s must be a number", key)
	}
	return f, nil
}
