package payment

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dcontreras/payables/internal/ledger"
	"github.com/dcontreras/payables/internal/store"
	"github.com/dcontreras/payables/pkg/middleware"
	"github.com/dcontreras/payables/pkg/response"
	"github.com/dcontreras/payables/pkg/validate"
)

// maxDeleteBodyBytes caps the optional reason body on DELETE.
const maxDeleteBodyBytes = 1 << 20

// Handler handles HTTP requests for payment operations
type Handler struct {
	service *Service
}

// NewHandler creates a new payment handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for payment endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/{id}", h.GetByID)
	r.Patch("/{id}", h.Update)
	r.Post("/{id}/share", h.MarkShared)
	r.Delete("/{id}", h.SoftDelete)

	return r
}

// writeServiceError maps ledger errors to HTTP responses.
func writeServiceError(w http.ResponseWriter, err error, fallback string) {
	var overpayment *ledger.OverpaymentError
	switch {
	case errors.Is(err, ledger.ErrDebtNotFound),
		errors.Is(err, ledger.ErrPaymentNotFound),
		errors.Is(err, ledger.ErrSupplierNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, ledger.ErrSupplierMismatch),
		errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrInvalidDate),
		errors.Is(err, ledger.ErrConfirmationRequired):
		response.BadRequest(w, err.Error())
	case errors.Is(err, ledger.ErrAlreadySettled),
		errors.Is(err, ledger.ErrAlreadyDeleted):
		response.UnprocessableEntity(w, err.Error())
	case errors.As(err, &overpayment):
		response.UnprocessableEntity(w, err.Error())
	case errors.Is(err, store.ErrDuplicateConfirmation),
		errors.Is(err, store.ErrConcurrencyConflict):
		response.Conflict(w, err.Error())
	default:
		response.InternalError(w, fallback)
	}
}

// Create handles POST /payments
// @Summary      Record a payment against a debt
// @Description  Validates balance, confirmation and duplicate rules, then commits the payment together with the recomputed aggregates
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        request body CreatePaymentRequest true "Payment creation request"
// @Success      201 {object} response.APIResponse{data=PaymentResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Failure      422 {object} response.APIResponse
// @Router       /payments [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreatePaymentRequest
	if err := validate.DecodeJSON(r, &req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	actor := middleware.GetActor(r.Context())
	p, err := h.service.Create(r.Context(), actor, &req)
	if err != nil {
		writeServiceError(w, err, "Failed to create payment")
		return
	}

	response.JSON(w, http.StatusCreated, NewPaymentResponse(p))
}

// GetByID handles GET /payments/{id}
// @Summary      Get payment by ID
// @Description  Returns the payment even when soft-deleted (audit history)
// @Tags         payments
// @Produce      json
// @Param        id path int true "Payment ID"
// @Success      200 {object} response.APIResponse{data=PaymentResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /payments/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid payment ID")
		return
	}

	p, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "Failed to get payment")
		return
	}

	response.JSON(w, http.StatusOK, NewPaymentResponse(p))
}

// Update handles PATCH /payments/{id}
// @Summary      Edit a payment
// @Description  Re-validates balance and confirmation rules; moving the payment to another debt recomputes both sides
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        id path int true "Payment ID"
// @Param        request body UpdatePaymentRequest true "Payment update request"
// @Success      200 {object} response.APIResponse{data=PaymentResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Failure      422 {object} response.APIResponse
// @Router       /payments/{id} [patch]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid payment ID")
		return
	}

	var req UpdatePaymentRequest
	if err := validate.DecodeJSON(r, &req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	p, err := h.service.Update(r.Context(), id, &req)
	if err != nil {
		writeServiceError(w, err, "Failed to update payment")
		return
	}

	response.JSON(w, http.StatusOK, NewPaymentResponse(p))
}

// MarkShared handles POST /payments/{id}/share
// @Summary      Mark a payment as shared
// @Description  Stamps shared_at on first call; idempotent afterwards
// @Tags         payments
// @Produce      json
// @Param        id path int true "Payment ID"
// @Success      200 {object} response.APIResponse{data=PaymentResponse}
// @Failure      404 {object} response.APIResponse
// @Failure      422 {object} response.APIResponse
// @Router       /payments/{id}/share [post]
func (h *Handler) MarkShared(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid payment ID")
		return
	}

	p, err := h.service.MarkShared(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "Failed to share payment")
		return
	}

	response.JSON(w, http.StatusOK, NewPaymentResponse(p))
}

// SoftDelete handles DELETE /payments/{id}
// @Summary      Retract a payment
// @Description  Soft-deletes the payment and restores its amount to the debt's balance; the row is kept for audit
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        id path int true "Payment ID"
// @Param        request body DeletePaymentRequest false "Deletion reason"
// @Success      200 {object} response.APIResponse{data=PaymentResponse}
// @Failure      404 {object} response.APIResponse
// @Failure      422 {object} response.APIResponse
// @Router       /payments/{id} [delete]
func (h *Handler) SoftDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid payment ID")
		return
	}

	// The body is optional on DELETE, capped so a stray upload cannot
	// be buffered in full.
	body, readErr := io.ReadAll(http.MaxBytesReader(w, r.Body, maxDeleteBodyBytes))
	if readErr != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	var req DeletePaymentRequest
	if len(body) > 0 {
		if err := validate.DecodeJSONBytes(body, &req); err != nil {
			response.BadRequest(w, err.Error())
			return
		}
	}

	actor := middleware.GetActor(r.Context())
	p, err := h.service.SoftDelete(r.Context(), actor, id, req.Reason)
	if err != nil {
		writeServiceError(w, err, "Failed to delete payment")
		return
	}

	response.JSON(w, http.StatusOK, NewPaymentResponse(p))
}
