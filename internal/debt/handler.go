package debt

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dcontreras/payables/internal/ledger"
	"github.com/dcontreras/payables/internal/payment"
	"github.com/dcontreras/payables/internal/store"
	"github.com/dcontreras/payables/pkg/response"
	"github.com/dcontreras/payables/pkg/validate"
)

// Handler handles HTTP requests for debt operations
type Handler struct {
	service *Service
}

// NewHandler creates a new debt handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for debt endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/{id}", h.GetByID)
	r.Patch("/{id}", h.Update)
	r.Get("/{id}/payments", h.ListPayments)

	return r
}

// GetByID handles GET /debts/{id}
// @Summary      Get debt by ID
// @Tags         debts
// @Produce      json
// @Param        id path int true "Debt ID"
// @Success      200 {object} response.APIResponse{data=DebtResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /debts/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid debt ID")
		return
	}

	d, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ledger.ErrDebtNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to get debt")
		return
	}

	response.JSON(w, http.StatusOK, NewDebtResponse(d))
}

// Update handles PATCH /debts/{id}
// @Summary      Edit a debt's principal or due date
// @Description  Changing the principal shifts the remaining amount by the same delta and recomputes the supplier total
// @Tags         debts
// @Accept       json
// @Produce      json
// @Param        id path int true "Debt ID"
// @Param        request body UpdateDebtRequest true "Debt update request"
// @Success      200 {object} response.APIResponse{data=DebtResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /debts/{id} [patch]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid debt ID")
		return
	}

	var req UpdateDebtRequest
	if err := validate.DecodeJSON(r, &req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	d, err := h.service.Update(r.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrDebtNotFound):
			response.NotFound(w, err.Error())
		case errors.Is(err, ledger.ErrNoChanges),
			errors.Is(err, ledger.ErrInvalidAmount),
			errors.Is(err, ledger.ErrInvalidDate):
			response.BadRequest(w, err.Error())
		case errors.Is(err, store.ErrConcurrencyConflict):
			response.Conflict(w, err.Error())
		default:
			response.InternalError(w, "Failed to update debt")
		}
		return
	}

	response.JSON(w, http.StatusOK, NewDebtResponse(d))
}

// ListPayments handles GET /debts/{id}/payments
// @Summary      List a debt's payments
// @Description  Soft-deleted payments are excluded unless include_deleted=true
// @Tags         debts
// @Produce      json
// @Param        id path int true "Debt ID"
// @Param        include_deleted query bool false "Include soft-deleted payments"
// @Success      200 {object} response.APIResponse{data=[]payment.PaymentResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /debts/{id}/payments [get]
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid debt ID")
		return
	}

	includeDeleted := r.URL.Query().Get("include_deleted") == "true"

	payments, err := h.service.ListPayments(r.Context(), id, includeDeleted)
	if err != nil {
		if errors.Is(err, ledger.ErrDebtNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to list payments")
		return
	}

	paymentResponses := make([]*payment.PaymentResponse, len(payments))
	for i, p := range payments {
		paymentResponses[i] = payment.NewPaymentResponse(p)
	}

	response.JSON(w, http.StatusOK, paymentResponses)
}
