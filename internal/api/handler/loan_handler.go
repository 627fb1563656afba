package handler

import (
	"log/slog"
	"net/http"

	"loan-engine/internal/api/handler/dto"
	"loan-engine/internal/auth"
	"loan-engine/internal/domain/amortization"
	"loan-engine/internal/domain/loan"
	"loan-engine/internal/domain/payment"
)

type LoanHandler struct {
	service          loan.Service
	payments         payment.Service
	defaultFrequency amortization.Frequency
	logger           *slog.Logger
}

func NewLoanHandler(s loan.Service, p payment.Service, defaultFrequency amortization.Frequency, l *slog.Logger) *LoanHandler {
	if !defaultFrequency.Valid() {
		defaultFrequency = amortization.FrequencyMonthly
	}
	return &LoanHandler{
		service:          s,
		payments:         p,
		defaultFrequency: defaultFrequency,
		logger:           l.With("component", "LoanHandler"),
	}
}

// CreateLoan handles loan origination.
//
// @Summary Create a new loan
// @Description Creates a pending loan for a client. Rate, interest type, term, fees and currency are copied from the loan product.
// @Tags Loans
// @Accept json
// @Produce json
// @Param request body dto.CreateLoanRequest true "Loan creation request payload"
// @Success 201 {object} dto.LoanResponse "Loan successfully created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload or validation error"
// @Failure 403 {object} dto.ErrorResponse "Caller may not create loans"
// @Failure 404 {object} dto.ErrorResponse "Loan product or co-signer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans [post]
// @Security BearerAuth
func (h *LoanHandler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req dto.CreateLoanRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, invalidRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, invalidRequest(err))
		return
	}

	createdLoan, err := h.service.CreateLoan(r.Context(), actor, req.ToInput(h.defaultFrequency))
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, dto.NewLoanResponse(createdLoan, false))
}

// ListLoans returns the loans visible to the caller.
//
// @Summary List loans
// @Description Staff see every loan; clients see only their own.
// @Tags Loans
// @Produce json
// @Success 200 {array} dto.LoanResponse "Loans visible to the caller"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans [get]
// @Security BearerAuth
func (h *LoanHandler) ListLoans(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		respondError(w, err)
		return
	}

	loans, err := h.service.ListLoans(r.Context(), actor)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewLoanListResponse(loans))
}

// GetLoan retrieves a loan with its repayment schedule.
//
// @Summary Retrieve loan details
// @Description Retrieves a loan by id. The repayment schedule is included once the loan has been disbursed.
// @Tags Loans
// @Produce json
// @Param loanID path int true "Loan ID"
// @Success 200 {object} dto.LoanResponse "Loan details successfully retrieved"
// @Failure 400 {object} dto.ErrorResponse "Invalid loan ID"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans/{loanID} [get]
// @Security BearerAuth
func (h *LoanHandler) GetLoan(w http.ResponseWriter, r *http.Request) {
	actor, loanID, ok := h.actorAndLoanID(w, r)
	if !ok {
		return
	}

	domainLoan, err := h.service.GetLoan(r.Context(), actor, loanID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewLoanResponse(domainLoan, true))
}

// GetSchedule returns the installments of a loan in order.
//
// @Summary Retrieve repayment schedule
// @Tags Loans
// @Produce json
// @Param loanID path int true "Loan ID"
// @Success 200 {array} dto.ScheduleEntryResponse "Repayment schedule"
// @Failure 400 {object} dto.ErrorResponse "Invalid loan ID"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans/{loanID}/schedule [get]
// @Security BearerAuth
func (h *LoanHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	actor, loanID, ok := h.actorAndLoanID(w, r)
	if !ok {
		return
	}

	entries, err := h.service.GetSchedule(r.Context(), actor, loanID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewScheduleResponse(entries))
}

// ListLoanPayments returns the payments recorded against a loan.
//
// @Summary List payments for a loan
// @Tags Loans
// @Produce json
// @Param loanID path int true "Loan ID"
// @Success 200 {array} dto.PaymentResponse "Payments on the loan"
// @Failure 400 {object} dto.ErrorResponse "Invalid loan ID"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans/{loanID}/payments [get]
// @Security BearerAuth
func (h *LoanHandler) ListLoanPayments(w http.ResponseWriter, r *http.Request) {
	actor, loanID, ok := h.actorAndLoanID(w, r)
	if !ok {
		return
	}

	payments, err := h.payments.ListPaymentsByLoan(r.Context(), actor, loanID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewPaymentListResponse(payments))
}

// ApproveLoan moves a pending or in-review loan to approved.
//
// @Summary Approve a loan
// @Tags Loans
// @Accept json
// @Produce json
// @Param loanID path int true "Loan ID"
// @Param request body dto.LoanDateRequest false "Approval date, defaults to today"
// @Success 200 {object} dto.LoanResponse "Loan approved"
// @Failure 400 {object} dto.ErrorResponse "Invalid date or loan not awaiting approval"
// @Failure 403 {object} dto.ErrorResponse "Caller may not approve loans"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans/{loanID}/approve [post]
// @Security BearerAuth
func (h *LoanHandler) ApproveLoan(w http.ResponseWriter, r *http.Request) {
	actor, loanID, ok := h.actorAndLoanID(w, r)
	if !ok {
		return
	}

	var req dto.LoanDateRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		respondError(w, invalidRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, invalidRequest(err))
		return
	}

	approved, err := h.service.ApproveLoan(r.Context(), actor, loanID, req.Date)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewLoanResponse(approved, false))
}

// DisburseLoan releases funds for an approved loan and generates its schedule.
//
// @Summary Disburse a loan
// @Description One-shot: fails if the loan was already disbursed or already has a schedule.
// @Tags Loans
// @Accept json
// @Produce json
// @Param loanID path int true "Loan ID"
// @Param request body dto.LoanDateRequest false "Disbursement date, defaults to today"
// @Success 200 {object} dto.DisbursementResponse "Loan disbursed"
// @Failure 400 {object} dto.ErrorResponse "Invalid date or loan not approved"
// @Failure 403 {object} dto.ErrorResponse "Caller may not disburse loans"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Failure 409 {object} dto.ErrorResponse "Loan already disbursed or schedule exists"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans/{loanID}/disburse [post]
// @Security BearerAuth
func (h *LoanHandler) DisburseLoan(w http.ResponseWriter, r *http.Request) {
	actor, loanID, ok := h.actorAndLoanID(w, r)
	if !ok {
		return
	}

	var req dto.LoanDateRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		respondError(w, invalidRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, invalidRequest(err))
		return
	}

	result, err := h.service.DisburseLoan(r.Context(), actor, loanID, req.Date)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.DisbursementResponse{
		Loan:              dto.NewLoanResponse(result.Loan, true),
		InstallmentsCount: result.InstallmentsCount,
	})
}

// UpdateLoan applies an administrative partial update.
//
// @Summary Update a loan
// @Description Changing principal, rate, term, interest type, frequency or start date recomputes the installment amount and summary but leaves persisted installments alone.
// @Tags Loans
// @Accept json
// @Produce json
// @Param loanID path int true "Loan ID"
// @Param request body dto.UpdateLoanRequest true "Fields to change"
// @Success 200 {object} dto.LoanResponse "Loan updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid payload or status transition"
// @Failure 403 {object} dto.ErrorResponse "Caller may not update loans"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans/{loanID} [put]
// @Security BearerAuth
func (h *LoanHandler) UpdateLoan(w http.ResponseWriter, r *http.Request) {
	actor, loanID, ok := h.actorAndLoanID(w, r)
	if !ok {
		return
	}

	var req dto.UpdateLoanRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, invalidRequest(err))
		return
	}
	changes, err := req.ToChanges()
	if err != nil {
		respondError(w, err)
		return
	}

	updated, err := h.service.UpdateLoan(r.Context(), actor, loanID, changes)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewLoanResponse(updated, false))
}

// RecalculateSchedule rebuilds the schedule of a disbursed loan.
//
// @Summary Recalculate repayment schedule
// @Description Destructive: every existing installment is deleted and regenerated from the loan terms after applying the overrides.
// @Tags Loans
// @Accept json
// @Produce json
// @Param loanID path int true "Loan ID"
// @Param request body dto.RecalculateRequest false "Term overrides"
// @Success 200 {object} dto.RecalculationResponse "Schedule regenerated"
// @Failure 400 {object} dto.ErrorResponse "Invalid overrides or loan never disbursed"
// @Failure 403 {object} dto.ErrorResponse "Caller may not recalculate schedules"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans/{loanID}/recalculate [post]
// @Security BearerAuth
func (h *LoanHandler) RecalculateSchedule(w http.ResponseWriter, r *http.Request) {
	actor, loanID, ok := h.actorAndLoanID(w, r)
	if !ok {
		return
	}

	var req dto.RecalculateRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		respondError(w, invalidRequest(err))
		return
	}
	overrides, err := req.ToOverrides()
	if err != nil {
		respondError(w, err)
		return
	}

	result, err := h.service.RecalculateSchedule(r.Context(), actor, loanID, overrides)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.RecalculationResponse{
		Loan:              dto.NewLoanResponse(result.Loan, true),
		InstallmentsCount: result.InstallmentsCount,
		RemovedCount:      result.RemovedCount,
	})
}

// DeleteLoan hard-deletes a loan with its schedule and payments.
//
// @Summary Delete a loan
// @Tags Loans
// @Param loanID path int true "Loan ID"
// @Success 204 "Loan deleted"
// @Failure 400 {object} dto.ErrorResponse "Invalid loan ID"
// @Failure 403 {object} dto.ErrorResponse "Caller may not delete loans"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans/{loanID} [delete]
// @Security BearerAuth
func (h *LoanHandler) DeleteLoan(w http.ResponseWriter, r *http.Request) {
	actor, loanID, ok := h.actorAndLoanID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteLoan(r.Context(), actor, loanID); err != nil {
		respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *LoanHandler) actorAndLoanID(w http.ResponseWriter, r *http.Request) (actor auth.Actor, loanID int64, ok bool) {
	actor, err := actorFromRequest(r)
	if err != nil {
		respondError(w, err)
		return actor, 0, false
	}
	loanID, err = getIDFromURL(r, "loanID")
	if err != nil {
		respondError(w, invalidRequest(err))
		return actor, 0, false
	}
	return actor, loanID, true
}
