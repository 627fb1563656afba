package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"loan-engine/internal/api/handler/dto"
	"loan-engine/internal/auth"
	"loan-engine/internal/pkg/apperrors"

	"github.com/go-chi/chi/v5"
)

func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return fmt.Errorf("no request body")
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

// decodeOptionalJSON accepts an empty body for endpoints whose payload is optional.
func decodeOptionalJSON(r *http.Request, v any) error {
	if r.Body == nil || r.Body == http.NoBody || r.ContentLength == 0 {
		return nil
	}
	return decodeJSON(r, v)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Default().Error("Failed to marshal JSON response", "error", err)
		http.Error(w, `{"error":{"message":"Internal server error"}}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response)
}

func respondError(w http.ResponseWriter, err error) {
	status, code, message, field := http.StatusInternalServerError, "INTERNAL", "An unexpected error occurred.", ""
	var validationError *apperrors.ValidationError

	switch {
	case errors.As(err, &validationError):
		status, code, message, field = http.StatusBadRequest, "VALIDATION_FAILED", validationError.Message, validationError.Field
	case errors.Is(err, apperrors.ErrNotFound):
		status, code, message = http.StatusNotFound, "NOT_FOUND", err.Error()
	case errors.Is(err, apperrors.ErrInvalidStateTransition):
		status, code, message = http.StatusBadRequest, "INVALID_STATE_TRANSITION", err.Error()
	case errors.Is(err, apperrors.ErrInvalidArgument), errors.Is(err, apperrors.ErrValidation):
		status, code, message = http.StatusBadRequest, "INVALID_REQUEST", err.Error()
	case errors.Is(err, apperrors.ErrConflict), errors.Is(err, apperrors.ErrAlreadyExists):
		status, code, message = http.StatusConflict, "CONFLICT", err.Error()
	case errors.Is(err, apperrors.ErrUnauthorized):
		status, code, message = http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized"
	case errors.Is(err, apperrors.ErrForbidden):
		status, code, message = http.StatusForbidden, "FORBIDDEN", "You are not allowed to perform this action."
	default:
		slog.Default().Error("Unhandled internal error", "error", err)
	}

	resp := dto.ErrorResponse{
		Error: dto.ErrorDetail{
			Code:    code,
			Message: message,
			Field:   field,
		},
	}
	respondJSON(w, status, resp)
}

func invalidRequest(err error) error {
	return fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err)
}

// actorFromRequest returns the caller placed on the context by the auth middleware.
func actorFromRequest(r *http.Request) (auth.Actor, error) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		return auth.Actor{}, fmt.Errorf("%w: no authenticated actor", apperrors.ErrUnauthorized)
	}
	return actor, nil
}

func getIDFromURL(r *http.Request, param string) (int64, error) {
	idStr := chi.URLParam(r, param)
	if idStr == "" {
		return 0, fmt.Errorf("%s not found in URL path", param)
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer", param)
	}
	return id, nil
}
