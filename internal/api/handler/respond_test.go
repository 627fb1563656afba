package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"loan-engine/internal/pkg/apperrors"

	"github.com/stretchr/testify/assert"
)

func TestRespondErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"loan not found", fmt.Errorf("%w: id 4", apperrors.ErrLoanNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"field validation", apperrors.NewValidationError("principalAmount", "must be greater than zero"), http.StatusBadRequest, "VALIDATION_FAILED"},
		{"invalid date", apperrors.ErrInvalidDate, http.StatusBadRequest, "INVALID_REQUEST"},
		{"state transition", apperrors.NewStateTransitionError("disburse", "pending"), http.StatusBadRequest, "INVALID_STATE_TRANSITION"},
		{"already disbursed", apperrors.ErrAlreadyDisbursed, http.StatusConflict, "CONFLICT"},
		{"duplicate", apperrors.ErrAlreadyExists, http.StatusConflict, "CONFLICT"},
		{"unauthorized", apperrors.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"forbidden", apperrors.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{"database", apperrors.WrapDatabaseError(errors.New("conn refused"), "query failed"), http.StatusInternalServerError, "INTERNAL"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			respondError(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Equal(t, tt.code, decodeError(t, rec).Error.Code)
		})
	}
}

func TestRespondErrorHidesInternalDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	respondError(rec, errors.New("pq: password authentication failed for user loan"))

	resp := decodeError(t, rec)
	assert.Equal(t, "An unexpected error occurred.", resp.Error.Message)
	assert.NotContains(t, rec.Body.String(), "password")
}
