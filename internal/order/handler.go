package order

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dcontreras/payables/internal/ledger"
	"github.com/dcontreras/payables/internal/store"
	"github.com/dcontreras/payables/pkg/middleware"
	"github.com/dcontreras/payables/pkg/response"
	"github.com/dcontreras/payables/pkg/validate"
)

// Handler handles HTTP requests for order operations
type Handler struct {
	service *Service
}

// NewHandler creates a new order handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for order endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/{id}", h.GetByID)
	r.Patch("/{id}", h.Update)

	return r
}

// Create handles POST /orders
// @Summary      Create a new order
// @Description  Registers an order and atomically creates its debt
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        request body CreateOrderRequest true "Order creation request"
// @Success      201 {object} response.APIResponse{data=OrderResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /orders [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := validate.DecodeJSON(r, &req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	actor := middleware.GetActor(r.Context())
	ow, err := h.service.Create(r.Context(), actor, &req)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrSupplierNotFound):
			response.NotFound(w, err.Error())
		case errors.Is(err, ledger.ErrInvalidAmount),
			errors.Is(err, ledger.ErrInvalidDate):
			response.BadRequest(w, err.Error())
		case errors.Is(err, store.ErrConcurrencyConflict):
			response.Conflict(w, err.Error())
		default:
			response.InternalError(w, "Failed to create order")
		}
		return
	}

	response.JSON(w, http.StatusCreated, NewOrderResponse(ow))
}

// GetByID handles GET /orders/{id}
// @Summary      Get order by ID
// @Tags         orders
// @Produce      json
// @Param        id path int true "Order ID"
// @Success      200 {object} response.APIResponse{data=OrderResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /orders/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid order ID")
		return
	}

	ow, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ledger.ErrOrderNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to get order")
		return
	}

	response.JSON(w, http.StatusOK, NewOrderResponse(ow))
}

// Update handles PATCH /orders/{id}
// @Summary      Edit an order
// @Description  Re-derives the due date, propagates amount deltas into the linked debt and recomputes the supplier total
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id path int true "Order ID"
// @Param        request body UpdateOrderRequest true "Order update request"
// @Success      200 {object} response.APIResponse{data=OrderResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /orders/{id} [patch]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid order ID")
		return
	}

	var req UpdateOrderRequest
	if err := validate.DecodeJSON(r, &req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	ow, err := h.service.Update(r.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrOrderNotFound),
			errors.Is(err, ledger.ErrDebtNotFound):
			response.NotFound(w, err.Error())
		case errors.Is(err, ledger.ErrNoChanges),
			errors.Is(err, ledger.ErrInvalidAmount),
			errors.Is(err, ledger.ErrInvalidDate):
			response.BadRequest(w, err.Error())
		case errors.Is(err, store.ErrConcurrencyConflict):
			response.Conflict(w, err.Error())
		default:
			response.InternalError(w, "Failed to update order")
		}
		return
	}

	response.JSON(w, http.StatusOK, NewOrderResponse(ow))
}
