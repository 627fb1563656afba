package handler

import (
	"log/slog"
	"net/http"

	"loan-engine/internal/api/handler/dto"
	"loan-engine/internal/domain/payment"
)

type PaymentHandler struct {
	service payment.Service
	logger  *slog.Logger
}

func NewPaymentHandler(s payment.Service, l *slog.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: s,
		logger:  l.With("component", "PaymentHandler"),
	}
}

// CreatePayment records a repayment against a disbursed loan.
//
// @Summary Record a payment
// @Description Splits the amount into one month of interest on the outstanding balance and principal, then reduces the balance. Amounts above the outstanding balance are rejected.
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body dto.CreatePaymentRequest true "Payment details"
// @Success 201 {object} dto.PaymentResponse "Payment recorded"
// @Failure 400 {object} dto.ErrorResponse "Invalid amount or loan not repayable"
// @Failure 403 {object} dto.ErrorResponse "Caller may not pay this loan"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Failure 409 {object} dto.ErrorResponse "Duplicate external reference"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /payments [post]
// @Security BearerAuth
func (h *PaymentHandler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req dto.CreatePaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, invalidRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, invalidRequest(err))
		return
	}

	created, err := h.service.CreatePayment(r.Context(), actor, req.ToInput())
	if err != nil {
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Payment accepted", "paymentID", created.ID, "loanID", created.LoanID)
	respondJSON(w, http.StatusCreated, dto.NewPaymentResponse(created))
}

// ListPayments returns the payments visible to the caller.
//
// @Summary List payments
// @Description Staff see every payment; clients see payments on their own loans.
// @Tags Payments
// @Produce json
// @Success 200 {array} dto.PaymentResponse "Payments visible to the caller"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /payments [get]
// @Security BearerAuth
func (h *PaymentHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		respondError(w, err)
		return
	}

	payments, err := h.service.ListPayments(r.Context(), actor)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewPaymentListResponse(payments))
}

// DeletePayment reverses a payment and removes it.
//
// @Summary Delete a payment
// @Description Restores the principal portion to the loan balance and un-allocates the amount from the schedule before deleting the row.
// @Tags Payments
// @Param paymentID path int true "Payment ID"
// @Success 204 "Payment deleted"
// @Failure 400 {object} dto.ErrorResponse "Invalid payment ID"
// @Failure 403 {object} dto.ErrorResponse "Caller may not delete payments"
// @Failure 404 {object} dto.ErrorResponse "Payment not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /payments/{paymentID} [delete]
// @Security BearerAuth
func (h *PaymentHandler) DeletePayment(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		respondError(w, err)
		return
	}
	paymentID, err := getIDFromURL(r, "paymentID")
	if err != nil {
		respondError(w, invalidRequest(err))
		return
	}

	if err := h.service.DeletePayment(r.Context(), actor, paymentID); err != nil {
		respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
